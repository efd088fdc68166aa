package ui

import (
	"strings"
	"testing"

	"github.com/goliatone/go-formset/pkg/notify"
)

func TestTableRender_PadsColumns(t *testing.T) {
	table := NewTable("#", "FILE")
	table.AddRow("0", "photo.png")
	table.AddRow("10", "a.gif")

	lines := strings.Split(strings.TrimRight(table.Render(), "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected header, separator and two rows, got %q", lines)
	}
	if !strings.Contains(lines[2], "0   photo.png") {
		t.Fatalf("unexpected first row %q", lines[2])
	}
	if !strings.Contains(lines[3], "10  a.gif") {
		t.Fatalf("unexpected second row %q", lines[3])
	}
}

func TestFormatNotice_BlockingUsesErrorIcon(t *testing.T) {
	got := FormatNotice(notify.Alert(notify.KeyMaxRows, "Maximum number of images: 10"))
	if !strings.Contains(got, IconError) || !strings.Contains(got, "Maximum number of images: 10") {
		t.Fatalf("unexpected notice %q", got)
	}
	if got := FormatNotice(notify.Banner(notify.LevelSuccess, "saved", "Saved")); !strings.Contains(got, IconSuccess) {
		t.Fatalf("expected success icon, got %q", got)
	}
}
