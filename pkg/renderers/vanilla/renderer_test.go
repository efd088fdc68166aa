package vanilla_test

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formset/pkg/formset"
	"github.com/goliatone/go-formset/pkg/notify"
	"github.com/goliatone/go-formset/pkg/render"
	"github.com/goliatone/go-formset/pkg/renderers/vanilla"
)

func buildGroup(t *testing.T, cfg formset.Config, initial int) *formset.Group {
	t.Helper()
	g, _, err := formset.Build(cfg, initial)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	return g
}

func renderDoc(t *testing.T, r *vanilla.Renderer, g *formset.Group, opts render.RenderOptions) *goquery.Document {
	t.Helper()
	out, err := r.Render(context.Background(), g, opts)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("parse output: %v", err)
	}
	return doc
}

func TestRender_ManagementInputsAndRows(t *testing.T) {
	r, err := vanilla.New()
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	g := buildGroup(t, formset.PostImagesCreate(), 1)
	if _, err := g.AddRow(); err != nil {
		t.Fatalf("add row: %v", err)
	}

	doc := renderDoc(t, r, g, render.RenderOptions{})

	if doc.Find("form").Length() != 0 {
		t.Fatalf("form wrapper must be omitted without an action")
	}
	wrapper := doc.Find("div.formset[data-formset='images']")
	if wrapper.Length() != 1 {
		t.Fatalf("expected one formset wrapper")
	}
	if got := wrapper.AttrOr("data-formset-remaining", ""); got != "8" {
		t.Fatalf("expected 8 remaining, got %q", got)
	}
	if got := wrapper.AttrOr("data-limit-message", ""); got != "Maximum number of images: 10" {
		t.Fatalf("unexpected limit message %q", got)
	}
	if got := wrapper.AttrOr("data-confirm-delete", ""); got != "Are you sure you want to delete this item?" {
		t.Fatalf("unexpected confirm message %q", got)
	}

	values := map[string]string{}
	doc.Find("input[type='hidden'][name^='images-']").Each(func(_ int, s *goquery.Selection) {
		if name := s.AttrOr("name", ""); strings.HasSuffix(name, "_FORMS") {
			values[name] = s.AttrOr("value", "")
		}
	})
	want := map[string]string{
		"images-TOTAL_FORMS":   "2",
		"images-INITIAL_FORMS": "1",
		"images-MIN_NUM_FORMS": "0",
		"images-MAX_NUM_FORMS": "10",
	}
	if diff := cmp.Diff(want, values); diff != "" {
		t.Fatalf("management inputs mismatch (-want +got):\n%s", diff)
	}

	var names []string
	doc.Find("#image-forms input[type='file']").Each(func(_ int, s *goquery.Selection) {
		names = append(names, s.AttrOr("name", ""))
	})
	if diff := cmp.Diff([]string{"images-0-image", "images-1-image"}, names); diff != "" {
		t.Fatalf("row inputs mismatch (-want +got):\n%s", diff)
	}
	if doc.Find("button#add-image[data-formset-add]").Length() != 1 {
		t.Fatalf("expected add trigger")
	}
}

func TestRender_ErrorsNoticesAndHiddenFields(t *testing.T) {
	r, err := vanilla.New()
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	g := buildGroup(t, formset.PostImagesUpdate(), 2)

	doc := renderDoc(t, r, g, render.RenderOptions{
		Action: "/posts/7/edit",
		Method: "PUT",
		Hidden: render.MergeHiddenFields(nil, render.CSRFToken("csrf_token", "tok")),
		Errors: map[string][]string{
			"images.1.image": {"File \"x.gif\" is not an image"},
			"__all__":        {"Something went wrong"},
		},
		Notices: []notify.Notice{
			notify.Alert(notify.KeyMaxRows, "Maximum number of images: 10"),
			notify.Banner(notify.LevelSuccess, "saved", "Saved"),
		},
	})

	form := doc.Find("form.formset-form")
	if form.AttrOr("action", "") != "/posts/7/edit" || form.AttrOr("enctype", "") != "multipart/form-data" {
		t.Fatalf("unexpected form attrs")
	}
	if got := doc.Find("input[name='_method']").AttrOr("value", ""); got != "PUT" {
		t.Fatalf("expected method override, got %q", got)
	}
	if doc.Find("input[name='csrf_token']").AttrOr("value", "") != "tok" {
		t.Fatalf("expected csrf token field")
	}

	field := doc.Find("input[name='images-1-image']")
	if !field.HasClass("invalid") || field.AttrOr("aria-invalid", "") != "true" {
		t.Fatalf("expected row 1 input marked invalid")
	}
	if got := field.Parent().Find(".field-error").Text(); got != "File \"x.gif\" is not an image" {
		t.Fatalf("unexpected field error %q", got)
	}
	if got := strings.TrimSpace(doc.Find("ul.formset-errors li").Text()); got != "Something went wrong" {
		t.Fatalf("unexpected form error %q", got)
	}

	alert := doc.Find(".alert-blocking")
	if alert.Length() != 1 || alert.AttrOr("data-dismiss-after", "none") != "none" {
		t.Fatalf("blocking alert must not auto-dismiss")
	}
	if got := doc.Find(".alert-banner").AttrOr("data-dismiss-after", ""); got != "5000" {
		t.Fatalf("expected banner dismiss after 5000ms, got %q", got)
	}
}

func TestRender_DeleteTogglesAndSubmitMessages(t *testing.T) {
	r, err := vanilla.New()
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	g := buildGroup(t, formset.PostImagesUpdate(), 2)
	row, _ := g.Row(1)
	if err := row.MarkDeleted(true); err != nil {
		t.Fatalf("mark deleted: %v", err)
	}

	doc := renderDoc(t, r, g, render.RenderOptions{Locale: "ru"})

	var targets, pressed []string
	doc.Find("button.image-delete-toggle[data-formset-delete]").Each(func(_ int, s *goquery.Selection) {
		targets = append(targets, s.AttrOr("data-formset-delete", ""))
		pressed = append(pressed, s.AttrOr("aria-pressed", ""))
		if s.Text() != "Удалить" {
			t.Fatalf("unexpected toggle label %q", s.Text())
		}
		if s.Parent().Find("input[type='hidden'][name='"+s.AttrOr("data-formset-delete", "")+"']").Length() != 1 {
			t.Fatalf("toggle must sit next to its flag")
		}
	})
	if diff := cmp.Diff([]string{"images-0-DELETE", "images-1-DELETE"}, targets); diff != "" {
		t.Fatalf("toggle targets mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"false", "true"}, pressed); diff != "" {
		t.Fatalf("toggle state mismatch (-want +got):\n%s", diff)
	}

	wrapper := doc.Find("div[data-formset='images']")
	if got := wrapper.AttrOr("data-required-message", ""); got != "Пожалуйста, заполните все обязательные поля." {
		t.Fatalf("unexpected required message %q", got)
	}
	if _, ok := wrapper.Attr("data-text-required-message"); ok {
		t.Fatalf("only comment groups carry the text message")
	}

	comment := renderDoc(t, r, buildGroup(t, formset.CommentImages(), 0), render.RenderOptions{})
	if got := comment.Find("div[data-formset]").AttrOr("data-text-required-message", ""); got != "Please enter the comment text" {
		t.Fatalf("unexpected comment text message %q", got)
	}
	if comment.Find("[data-formset-delete]").Length() != 0 {
		t.Fatalf("comment rows have no delete toggle")
	}
}

func TestRender_DoesNotMutateGroup(t *testing.T) {
	r, err := vanilla.New()
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	g := buildGroup(t, formset.PostImagesCreate(), 1)
	before := g.Handles().Container.String()

	renderDoc(t, r, g, render.RenderOptions{Errors: map[string][]string{"images-0-image": {"bad"}}})

	if after := g.Handles().Container.String(); after != before {
		t.Fatalf("group container changed:\nbefore %s\nafter  %s", before, after)
	}
}

func TestRenderRow(t *testing.T) {
	r, err := vanilla.New()
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	g := buildGroup(t, formset.CommentImages(), 0)
	row, err := g.AddRow()
	if err != nil {
		t.Fatalf("add row: %v", err)
	}

	out, err := r.RenderRow(context.Background(), row, render.RenderOptions{})
	if err != nil {
		t.Fatalf("render row: %v", err)
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if doc.Find("input[type='file'][name='comment_images-0-image']").Length() != 1 {
		t.Fatalf("expected comment file input, got %s", out)
	}
	if doc.Find("input[type='hidden']").Length() != 0 {
		t.Fatalf("comment rows carry no hidden fields")
	}
}

func TestNew_CustomTemplates(t *testing.T) {
	files := fstest.MapFS{
		"templates/formset.tmpl": {Data: []byte(`<section data-prefix="{{ prefix }}">{{ translate(locale, "formset.new_row_label") }}</section>`)},
	}
	r, err := vanilla.New(vanilla.WithTemplatesFS(files))
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	g := buildGroup(t, formset.PostImagesCreate(), 0)

	out, err := r.Render(context.Background(), g, render.RenderOptions{Locale: "ru"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got := string(out); got != `<section data-prefix="images">Новое изображение</section>` {
		t.Fatalf("unexpected output %q", got)
	}
}
