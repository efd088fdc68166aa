package avatar_test

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"io"
	"strings"
	"testing"

	"github.com/goliatone/go-formset/pkg/avatar"
	"github.com/goliatone/go-formset/pkg/element"
	"github.com/goliatone/go-formset/pkg/notify"
	"github.com/goliatone/go-formset/pkg/upload"
)

const profilePage = `
<form>
  <div class="avatar-preview"><div class="avatar-placeholder" id="avatar-preview"><i class="fas fa-user-circle"></i></div></div>
  <input type="file" name="profile-image" id="id_profile-image" accept="image/*">
  <input type="hidden" name="avatar-clear" id="avatar-clear" value="false">
  <div id="file-info" style="display: none"><span id="file-name"></span></div>
  <button type="button" id="remove-avatar" style="display: none">Remove</button>
</form>`

func newWidget(t *testing.T, opts ...avatar.Option) (*avatar.Widget, *element.Element) {
	t.Helper()
	root, err := element.ParseFragmentString(profilePage)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	w, err := avatar.New(avatar.HandlesFrom(root), opts...)
	if err != nil {
		t.Fatalf("new widget: %v", err)
	}
	return w, root
}

func photo(t *testing.T) upload.File {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewGray(image.Rect(0, 0, 8, 8))); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return upload.FromBytes("me.png", "image/png", buf.Bytes())
}

func TestSelect_ShowsPreviewAndResetsClearFlag(t *testing.T) {
	w, root := newWidget(t)
	root.Find(element.ByID(avatar.ClearID)).SetAttr("value", "true")

	if err := w.Select(context.Background(), photo(t)); err != nil {
		t.Fatalf("select: %v", err)
	}
	if w.Cleared() {
		t.Fatalf("expected clear flag reset")
	}
	if got := root.Find(element.ByID(avatar.FileNameID)).TextContent(); got != "me.png" {
		t.Fatalf("expected filename, got %q", got)
	}
	img := root.Find(element.ByID(avatar.PreviewID))
	if img == nil || img.Tag != "img" || !strings.HasPrefix(img.AttrOr("src", ""), "data:image/png;base64,") {
		t.Fatalf("expected image preview, got %v", img)
	}
	if root.Find(element.ByClass(avatar.PlaceholderClass)) != nil {
		t.Fatalf("placeholder should be replaced")
	}
	if got := root.Find(element.ByID(avatar.RemoveID)).AttrOr("style", ""); got != "display: block" {
		t.Fatalf("expected remove button shown, got %q", got)
	}
}

func TestSelect_TypeCheckedBeforeSize(t *testing.T) {
	rec := &notify.Recorder{}
	w, _ := newWidget(t, avatar.WithNotifier(rec))

	huge := upload.NewFile("notes.pdf", 10*1024*1024, "application/pdf", func() (io.ReadCloser, error) {
		return io.NopCloser(strings.NewReader("")), nil
	})
	err := w.Select(context.Background(), huge)
	var violation *upload.Violation
	if !errors.As(err, &violation) || violation.Kind != upload.KindNotImage {
		t.Fatalf("expected not_image first, got %v", err)
	}
	if notice, _ := rec.Last(); notice.Message != "Please select an image file" {
		t.Fatalf("unexpected notice %q", notice.Message)
	}
	if _, ok := w.Selected(); ok {
		t.Fatalf("expected no selection")
	}

	big := upload.NewFile("big.png", 6*1024*1024, "image/png", nil)
	if err := w.Select(context.Background(), big); !errors.As(err, &violation) || violation.Kind != upload.KindFileTooLarge {
		t.Fatalf("expected file_too_large, got %v", err)
	}
	if notice, _ := rec.Last(); notice.Message != "File is too large. Maximum size: 5MB" {
		t.Fatalf("unexpected notice %q", notice.Message)
	}
}

func TestRemove_RequiresConfirmation(t *testing.T) {
	w, root := newWidget(t)
	if err := w.Select(context.Background(), photo(t)); err != nil {
		t.Fatalf("select: %v", err)
	}
	if w.Remove() {
		t.Fatalf("default confirmer must decline")
	}
	if root.Find(element.ByTag("img")) == nil {
		t.Fatalf("declined removal must keep the preview")
	}
}

func TestRemove_RestoresPlaceholder(t *testing.T) {
	var prompt string
	w, root := newWidget(t, avatar.WithConfirmer(notify.ConfirmFunc(func(msg string) bool {
		prompt = msg
		return true
	})))
	if err := w.Select(context.Background(), photo(t)); err != nil {
		t.Fatalf("select: %v", err)
	}

	if !w.Remove() {
		t.Fatalf("expected removal")
	}
	if prompt != "Are you sure you want to remove the photo?" {
		t.Fatalf("unexpected prompt %q", prompt)
	}
	if !w.Cleared() {
		t.Fatalf("expected clear flag set")
	}
	if _, ok := w.Selected(); ok {
		t.Fatalf("expected selection dropped")
	}
	placeholder := root.Find(element.ByID(avatar.PreviewID))
	if placeholder == nil || !placeholder.HasClass(avatar.PlaceholderClass) {
		t.Fatalf("expected placeholder restored, got %v", placeholder)
	}
	if got := root.Find(element.ByID(avatar.FileInfoID)).AttrOr("style", ""); got != "display: none" {
		t.Fatalf("expected file info hidden, got %q", got)
	}
}

func TestNew_MissingInput(t *testing.T) {
	if _, err := avatar.New(avatar.Handles{}); !errors.Is(err, avatar.ErrMissingInput) {
		t.Fatalf("expected ErrMissingInput, got %v", err)
	}
}
