package render_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formset/pkg/render"
)

func TestMergeAndSortHiddenFields(t *testing.T) {
	base := map[string]string{
		" existing ": "keep",
		"":           "ignored",
	}
	override, ok := render.MethodOverride("patch")
	if !ok {
		t.Fatalf("expected PATCH to need an override")
	}

	merged := render.MergeHiddenFields(base,
		render.CSRFToken("csrfmiddlewaretoken", "token123"),
		override,
		render.Hidden("  ", "skip"),
	)

	wantMerged := map[string]string{
		"existing":            "keep",
		"csrfmiddlewaretoken": "token123",
		"_method":             "PATCH",
	}
	if diff := cmp.Diff(wantMerged, merged); diff != "" {
		t.Fatalf("merged hidden fields mismatch (-want +got):\n%s", diff)
	}

	sorted := render.SortedHiddenFields(merged)
	wantSorted := []render.HiddenField{
		{Name: "_method", Value: "PATCH"},
		{Name: "csrfmiddlewaretoken", Value: "token123"},
		{Name: "existing", Value: "keep"},
	}
	if diff := cmp.Diff(wantSorted, sorted); diff != "" {
		t.Fatalf("sorted hidden fields mismatch (-want +got):\n%s", diff)
	}

	elements := render.HiddenElements(merged)
	if len(elements) != 3 || elements[0].Name() != "_method" || elements[0].AttrOr("value", "") != "PATCH" {
		t.Fatalf("unexpected hidden elements %v", elements)
	}
}

func TestMethodOverride_PostNeedsNone(t *testing.T) {
	for _, method := range []string{"", "get", "POST"} {
		if _, ok := render.MethodOverride(method); ok {
			t.Fatalf("expected no override for %q", method)
		}
	}
}
