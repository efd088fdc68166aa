package formset

import (
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formset/pkg/element"
	"github.com/goliatone/go-formset/pkg/notify"
)

const createPage = `
<form>
  <input type="hidden" name="images-TOTAL_FORMS" id="id_images-TOTAL_FORMS" value="1">
  <div id="image-forms">
    <div class="image-form-item" data-formset-index="0">
      <div class="form-group">
        <label for="id_images-0-image">Image 1</label>
        <input type="file" name="images-0-image" id="id_images-0-image" class="form-control">
        <input type="hidden" name="images-0-id" id="id_images-0-id">
        <input type="hidden" name="images-0-post" id="id_images-0-post">
      </div>
    </div>
  </div>
  <button type="button" id="add-image">+</button>
</form>`

func initPage(t *testing.T, markup string, cfg Config, opts ...Option) (*Group, *element.Element) {
	t.Helper()
	root, err := element.ParseFragmentString(markup)
	if err != nil {
		t.Fatalf("parse page: %v", err)
	}
	g, err := Initialize(cfg, HandlesFrom(root, cfg), opts...)
	if err != nil {
		t.Fatalf("initialize: %v", err)
	}
	return g, root
}

func counterValue(t *testing.T, g *Group) string {
	t.Helper()
	return g.Handles().Counter.AttrOr("value", "")
}

func TestAddRow_CounterOneToMax(t *testing.T) {
	rec := &notify.Recorder{}
	g, _ := initPage(t, createPage, PostImagesCreate(), WithNotifier(rec))

	if got := g.Initial(); got != 1 {
		t.Fatalf("expected initial counter 1, got %d", got)
	}

	var indices []int
	for range 9 {
		row, err := g.AddRow()
		if err != nil {
			t.Fatalf("add row: %v", err)
		}
		indices = append(indices, row.Index)
	}
	if got := counterValue(t, g); got != "10" {
		t.Fatalf("expected counter 10, got %q", got)
	}
	if diff := cmp.Diff([]int{1, 2, 3, 4, 5, 6, 7, 8, 9}, indices); diff != "" {
		t.Fatalf("row indices mismatch (-want +got):\n%s", diff)
	}

	before := g.Handles().Container.String()
	row, err := g.AddRow()
	if row != nil {
		t.Fatalf("expected no row at the maximum, got index %d", row.Index)
	}
	var limitErr *LimitError
	if !errors.As(err, &limitErr) {
		t.Fatalf("expected LimitError, got %v", err)
	}
	if limitErr.Max != DefaultPostMaxRows {
		t.Fatalf("expected max %d, got %d", DefaultPostMaxRows, limitErr.Max)
	}
	if got := counterValue(t, g); got != "10" {
		t.Fatalf("expected counter to stay 10, got %q", got)
	}
	if after := g.Handles().Container.String(); after != before {
		t.Fatalf("container mutated at the maximum")
	}

	notice, ok := rec.Last()
	if !ok {
		t.Fatalf("expected a notice")
	}
	want := notify.Notice{
		Level:    notify.LevelError,
		Key:      notify.KeyMaxRows,
		Message:  "Maximum number of images: 10",
		Blocking: true,
	}
	if diff := cmp.Diff(want, notice); diff != "" {
		t.Fatalf("notice mismatch (-want +got):\n%s", diff)
	}
}

func TestAddRow_IncrementsByN(t *testing.T) {
	for _, cfg := range []Config{PostImagesCreate(), PostImagesUpdate(), CommentImages()} {
		t.Run(string(cfg.Kind), func(t *testing.T) {
			g, _, err := Build(cfg, 2)
			if err != nil {
				t.Fatalf("build: %v", err)
			}
			n := cfg.MaxRows - 2
			seen := map[int]bool{}
			last := 1
			for range n {
				row, err := g.AddRow()
				if err != nil {
					t.Fatalf("add row: %v", err)
				}
				if seen[row.Index] || row.Index <= last {
					t.Fatalf("index %d not strictly increasing after %d", row.Index, last)
				}
				seen[row.Index] = true
				last = row.Index
			}
			if got := g.Total(); got != 2+n {
				t.Fatalf("expected total %d, got %d", 2+n, got)
			}
			if got := counterValue(t, g); got != strconv.Itoa(2+n) {
				t.Fatalf("expected counter %d, got %q", 2+n, got)
			}
			if got := len(g.Rows()); got != g.Total() {
				t.Fatalf("expected %d rows, got %d", g.Total(), got)
			}
			if g.Remaining() != 0 {
				t.Fatalf("expected no remaining rows, got %d", g.Remaining())
			}
		})
	}
}

func TestAddRow_HiddenFieldsPerKind(t *testing.T) {
	cases := []struct {
		name   string
		cfg    Config
		fields []string
		accept string
		label  string
	}{
		{name: "create", cfg: PostImagesCreate(), fields: []string{"images-0-id", "images-0-post"}, label: "Image 1"},
		{name: "update", cfg: PostImagesUpdate(), fields: []string{"images-0-id", "images-0-post", "images-0-DELETE"}, label: "New image"},
		{name: "comment", cfg: CommentImages(), accept: "image/*", label: "Image 1"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			g, _, err := Build(tc.cfg, 0)
			if err != nil {
				t.Fatalf("build: %v", err)
			}
			row, err := g.AddRow()
			if err != nil {
				t.Fatalf("add row: %v", err)
			}

			var hidden []string
			for _, el := range row.Element.FindAll(element.All(element.ByTag("input"), func(el *element.Element) bool {
				return el.AttrOr("type", "") == "hidden"
			})) {
				hidden = append(hidden, el.Name())
			}
			if diff := cmp.Diff(tc.fields, hidden); diff != "" {
				t.Fatalf("hidden fields mismatch (-want +got):\n%s", diff)
			}

			file := row.File.Element
			if got := file.Name(); got != FieldName(tc.cfg.Prefix, 0, FieldImage) {
				t.Fatalf("unexpected file input name %q", got)
			}
			if got := file.AttrOr("accept", ""); got != tc.accept {
				t.Fatalf("expected accept %q, got %q", tc.accept, got)
			}
			if label := row.Element.Find(element.ByTag("label")); label == nil || label.TextContent() != tc.label {
				t.Fatalf("expected label %q, got %v", tc.label, label)
			}
			if row.File.Handler() != g.SelectionHandler() {
				t.Fatalf("expected the group selection handler on the new row")
			}
		})
	}
}

func TestInitialize_MissingHandleIsNoop(t *testing.T) {
	root, err := element.ParseFragmentString(`<div id="image-forms"></div><input id="id_images-TOTAL_FORMS" value="0">`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	before := root.String()
	g, err := Initialize(PostImagesCreate(), HandlesFrom(root, PostImagesCreate()))
	if !errors.Is(err, ErrMissingHandle) {
		t.Fatalf("expected ErrMissingHandle, got %v", err)
	}
	if g != nil {
		t.Fatalf("expected no group")
	}
	if root.String() != before {
		t.Fatalf("tree mutated")
	}
}

func TestInitialize_InvalidCounter(t *testing.T) {
	for _, value := range []string{"", "abc", "-1", "2.5"} {
		t.Run(value, func(t *testing.T) {
			cfg := PostImagesCreate()
			handles := Handles{
				Trigger:   element.Button("button", cfg.TriggerID, "+"),
				Container: element.Div(""),
				Counter:   element.Hidden(TotalFormsName(cfg.Prefix), cfg.CounterID, value),
			}
			if _, err := Initialize(cfg, handles); !errors.Is(err, ErrInvalidCounter) {
				t.Fatalf("expected ErrInvalidCounter, got %v", err)
			}
		})
	}
}

func TestInitialize_AdoptsStaticRows(t *testing.T) {
	g, _ := initPage(t, createPage, PostImagesCreate())
	rows := g.Rows()
	if len(rows) != 1 {
		t.Fatalf("expected 1 static row, got %d", len(rows))
	}
	row := rows[0]
	if !row.Static || row.Index != 0 {
		t.Fatalf("unexpected static row %+v", row)
	}
	if row.File.Handler() != g.SelectionHandler() {
		t.Fatalf("static row is missing the selection handler")
	}
	if _, ok := row.Hidden[FieldPost]; !ok {
		t.Fatalf("expected the post hidden field to be adopted")
	}

	// Adopting again finds nothing new.
	if n := g.Adopt(); n != 0 {
		t.Fatalf("expected no new rows, got %d", n)
	}
}

func TestRow_MarkDeleted(t *testing.T) {
	g, _, err := Build(PostImagesUpdate(), 1)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	row, ok := g.Row(0)
	if !ok {
		t.Fatalf("expected row 0")
	}
	if err := row.MarkDeleted(true); err != nil {
		t.Fatalf("mark deleted: %v", err)
	}
	if !row.Deleted() || !row.Element.HasClass("is-deleted") {
		t.Fatalf("expected row flagged for deletion")
	}
	if row.Element.Parent() == nil {
		t.Fatalf("soft delete must keep the row node")
	}
	if err := row.MarkDeleted(false); err != nil {
		t.Fatalf("unmark: %v", err)
	}
	if row.Deleted() {
		t.Fatalf("expected flag cleared")
	}

	g, _, err = Build(PostImagesCreate(), 1)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	row, _ = g.Row(0)
	if err := row.MarkDeleted(true); !errors.Is(err, ErrNoDeleteFlag) {
		t.Fatalf("expected ErrNoDeleteFlag, got %v", err)
	}
}

func TestAddRow_ConcurrentCallsSerialise(t *testing.T) {
	g, _, err := Build(CommentImages(), 0)
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		indices = map[int]bool{}
		limited int
	)
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			row, err := g.AddRow()
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				limited++
				return
			}
			indices[row.Index] = true
		}()
	}
	wg.Wait()

	if len(indices) != DefaultCommentMaxRows {
		t.Fatalf("expected %d unique rows, got %d", DefaultCommentMaxRows, len(indices))
	}
	if limited != 20-DefaultCommentMaxRows {
		t.Fatalf("expected %d rejected adds, got %d", 20-DefaultCommentMaxRows, limited)
	}
	if got := counterValue(t, g); got != "5" {
		t.Fatalf("expected counter 5, got %q", got)
	}
}

func TestAddRow_NotifierMayReadGroup(t *testing.T) {
	var g *Group
	var seen []int
	notifier := notify.NotifierFunc(func(n notify.Notice) {
		seen = append(seen, g.Total(), len(g.Rows()))
	})
	g, _, err := Build(CommentImages(), DefaultCommentMaxRows, WithNotifier(notifier))
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	done := make(chan error, 1)
	go func() {
		_, err := g.AddRow()
		done <- err
	}()

	select {
	case err := <-done:
		var limit *LimitError
		if !errors.As(err, &limit) {
			t.Fatalf("expected LimitError, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("AddRow blocked while notifying")
	}
	if diff := cmp.Diff([]int{5, 5}, seen); diff != "" {
		t.Fatalf("notifier view mismatch (-want +got):\n%s", diff)
	}
}

func TestParseFieldName(t *testing.T) {
	prefix, index, field, ok := ParseFieldName("comment_images-12-image")
	if !ok || prefix != "comment_images" || index != 12 || field != "image" {
		t.Fatalf("unexpected parse: %q %d %q %v", prefix, index, field, ok)
	}
	if _, _, _, ok := ParseFieldName("images-TOTAL_FORMS"); ok {
		t.Fatalf("management field must not parse as a row field")
	}
}
