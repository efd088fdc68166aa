package formset

import (
	"io/fs"
	"strings"
	"testing"
)

func TestRuntimeAssetsFSBehaviorsBundleIncludesAutoResize(t *testing.T) {
	fsys := RuntimeAssetsFS()
	data, err := fs.ReadFile(fsys, "formset-behaviors.js")
	if err != nil {
		t.Fatalf("expected behaviors bundle to be readable: %v", err)
	}
	if !strings.Contains(string(data), "autoResize") {
		t.Fatalf("expected behaviors bundle to include autoResize")
	}
}

func TestRuntimeAssetsFSBehaviorsBundleSendsCounter(t *testing.T) {
	data, err := fs.ReadFile(RuntimeAssetsFS(), "formset-behaviors.js")
	if err != nil {
		t.Fatalf("read bundle: %v", err)
	}
	for _, needle := range []string{"X-Formset-Total", "data-formset-add", "limitMessage", "previewGeneration"} {
		if !strings.Contains(string(data), needle) {
			t.Fatalf("expected bundle to reference %q", needle)
		}
	}
}

func TestRuntimeAssetsFSBehaviorsBundleConfirmsDeletesAndChecksSubmit(t *testing.T) {
	data, err := fs.ReadFile(RuntimeAssetsFS(), "formset-behaviors.js")
	if err != nil {
		t.Fatalf("read bundle: %v", err)
	}
	for _, needle := range []string{
		"[data-formset-delete]",
		`a[href*="delete"]`,
		".dropdown-item.delete",
		".delete-form",
		"data-required-message",
		"textRequiredMessage",
		"'submit'",
	} {
		if !strings.Contains(string(data), needle) {
			t.Fatalf("expected bundle to reference %q", needle)
		}
	}
}
