package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formset/pkg/formset"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Fatalf("defaults mismatch (-want +got):\n%s", diff)
	}
	if cfg.Server.Address != ":8080" || cfg.Locale != "en" || cfg.Limits.MaxFiles != 10 {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if diff := cmp.Diff([]string{"comment", "post-create", "post-update"}, cfg.GroupNames()); diff != "" {
		t.Fatalf("group names mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_OverlaysPresetsAndAddsGroups(t *testing.T) {
	path := writeFile(t, "formset.yaml", `
server:
  address: 127.0.0.1:9000
log:
  level: debug
  format: json
locale: ru
groups:
  comment:
    maxRows: 3
  gallery:
    prefix: gallery
    kind: create
    triggerId: add-gallery
    containerId: gallery-forms
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	comment, err := cfg.Group("comment")
	if err != nil {
		t.Fatalf("group: %v", err)
	}
	want := formset.CommentImages()
	want.MaxRows = 3
	if diff := cmp.Diff(want, comment); diff != "" {
		t.Fatalf("comment group mismatch (-want +got):\n%s", diff)
	}

	gallery, err := cfg.Group("gallery")
	if err != nil {
		t.Fatalf("group: %v", err)
	}
	if gallery.CounterID != "id_gallery-TOTAL_FORMS" || gallery.MaxRows != formset.DefaultPostMaxRows {
		t.Fatalf("expected derived defaults, got %+v", gallery)
	}
	if cfg.Log.Format != "json" || cfg.Locale != "ru" || cfg.Server.Address != "127.0.0.1:9000" {
		t.Fatalf("unexpected settings %+v", cfg)
	}
}

func TestLoad_RejectsInvalidSettings(t *testing.T) {
	cases := map[string]string{
		"level":  "log:\n  level: loud\n",
		"format": "log:\n  format: xml\n",
		"kind":   "groups:\n  comment:\n    kind: gallery\n",
		"yaml":   "groups: [",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := Load(writeFile(t, "formset.yaml", body)); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestSave_RoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Locale = "ru"
	path := filepath.Join(t.TempDir(), "nested", "formset.yaml")
	if err := cfg.Save(path); err != nil {
		t.Fatalf("save: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if diff := cmp.Diff(cfg, loaded); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestGroup_Unknown(t *testing.T) {
	_, err := Default().Group("nope")
	if err == nil || !strings.Contains(err.Error(), "post-create") {
		t.Fatalf("expected error listing groups, got %v", err)
	}
}

func TestTranslator_MergesCatalogFile(t *testing.T) {
	cfg := Default()
	cfg.Catalog = writeFile(t, "messages.yaml", "en:\n  formset.max_rows: \"At most %d pictures\"\n")
	tr, err := cfg.Translator()
	if err != nil {
		t.Fatalf("translator: %v", err)
	}
	msg, err := tr.Translate("en", "formset.max_rows", 10)
	if err != nil || msg != "At most 10 pictures" {
		t.Fatalf("unexpected message %q (%v)", msg, err)
	}
	if msg, _ := tr.Translate("ru", "formset.row_label", 2); msg != "Изображение 2" {
		t.Fatalf("expected embedded messages kept, got %q", msg)
	}
}
