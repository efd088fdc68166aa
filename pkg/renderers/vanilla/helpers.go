package vanilla

import (
	"strconv"

	"github.com/goliatone/go-formset/pkg/notify"
	"github.com/goliatone/go-formset/pkg/render"
)

// Template data goes through a JSON round trip in the engine, so views are
// plain maps with string values.

func noticeViews(notices []notify.Notice) []any {
	if len(notices) == 0 {
		return nil
	}
	out := make([]any, 0, len(notices))
	for _, n := range notices {
		level := n.Level
		if level == "" {
			level = notify.LevelInfo
		}
		dismiss := n.DismissAfter
		if dismiss <= 0 && !n.Blocking {
			dismiss = notify.DefaultDismissAfter
		}
		out = append(out, map[string]any{
			"level":        string(level),
			"key":          n.Key,
			"message":      n.Message,
			"blocking":     n.Blocking,
			"dismissAfter": strconv.FormatInt(dismiss.Milliseconds(), 10),
		})
	}
	return out
}

func hiddenViews(fields map[string]string) []any {
	sorted := render.SortedHiddenFields(fields)
	if len(sorted) == 0 {
		return nil
	}
	out := make([]any, 0, len(sorted))
	for _, field := range sorted {
		out = append(out, map[string]any{"name": field.Name, "value": field.Value})
	}
	return out
}

func stringsToAny(values []string) []any {
	if len(values) == 0 {
		return nil
	}
	out := make([]any, 0, len(values))
	for _, value := range values {
		out = append(out, value)
	}
	return out
}
