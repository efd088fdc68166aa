package formset

import (
	"bytes"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"net/url"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formset/pkg/element"
	"github.com/goliatone/go-formset/pkg/upload"
)

// formValues collects name/value pairs the way a browser would submit them.
func formValues(root *element.Element) url.Values {
	values := url.Values{}
	for _, input := range root.FindAll(element.All(element.ByTag("input"), element.HasAttr("name"))) {
		if input.AttrOr("type", "") == "file" {
			continue
		}
		values.Add(input.Name(), input.AttrOr("value", ""))
	}
	return values
}

func TestDecode_RoundTripsAddedRows(t *testing.T) {
	g, root, err := Build(PostImagesUpdate(), 1)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	static, _ := g.Row(0)
	static.Hidden[FieldID].SetAttr("value", "41")
	static.Hidden[FieldPost].SetAttr("value", "7")

	for range 2 {
		if _, err := g.AddRow(); err != nil {
			t.Fatalf("add row: %v", err)
		}
	}
	added, _ := g.Row(2)
	if err := added.MarkDeleted(true); err != nil {
		t.Fatalf("mark deleted: %v", err)
	}

	sub, err := Decode(g.Config(), formValues(root), nil)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := &Submission{
		Prefix: "images",
		Total:  3,
		Rows: []SubmittedRow{
			{Index: 0, ID: "41", Post: "7"},
			{Index: 1},
			{Index: 2, Delete: true},
		},
	}
	if diff := cmp.Diff(want, sub); diff != "" {
		t.Fatalf("submission mismatch (-want +got):\n%s", diff)
	}
	if got := len(sub.Kept()); got != 2 {
		t.Fatalf("expected 2 kept rows, got %d", got)
	}
}

func TestDecode_Errors(t *testing.T) {
	cfg := CommentImages()
	cases := []struct {
		name   string
		values url.Values
		check  func(error) bool
	}{
		{name: "missing", values: url.Values{}, check: func(err error) bool { return errors.Is(err, ErrMissingCounter) }},
		{name: "invalid", values: url.Values{"comment_images-TOTAL_FORMS": {"x"}}, check: func(err error) bool { return errors.Is(err, ErrInvalidCounter) }},
		{name: "over max", values: url.Values{"comment_images-TOTAL_FORMS": {"6"}}, check: func(err error) bool {
			var limitErr *LimitError
			return errors.As(err, &limitErr) && limitErr.Max == 5
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Decode(cfg, tc.values, nil)
			if !tc.check(err) {
				t.Fatalf("unexpected error %v", err)
			}
		})
	}
}

func TestDecodeRequest_Multipart(t *testing.T) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if err := mw.WriteField("comment_images-TOTAL_FORMS", "2"); err != nil {
		t.Fatalf("write field: %v", err)
	}
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="comment_images-1-image"; filename="cat.png"`)
	header.Set("Content-Type", "image/png")
	part, err := mw.CreatePart(header)
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	if _, err := part.Write([]byte("\x89PNG\r\n\x1a\n")); err != nil {
		t.Fatalf("write part: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/comments", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	sub, err := DecodeRequest(CommentImages(), req, 0)
	if err != nil {
		t.Fatalf("decode request: %v", err)
	}
	if sub.Total != 2 || len(sub.Rows) != 2 {
		t.Fatalf("unexpected submission %+v", sub)
	}
	if len(sub.Rows[0].Files) != 0 || len(sub.Rows[1].Files) != 1 {
		t.Fatalf("expected the file on row 1 only")
	}
	files, err := sub.Files()
	if err != nil {
		t.Fatalf("files: %v", err)
	}
	if len(files) != 1 || files[0].Name != "cat.png" || files[0].ContentType != "image/png" {
		t.Fatalf("unexpected files %+v", files)
	}
	if err := sub.Check(upload.DefaultRules()); err != nil {
		t.Fatalf("check: %v", err)
	}
}
