package render

import (
	"slices"
	"strconv"
	"strings"

	"github.com/goliatone/go-formset/pkg/formset"
)

// ErrorMapping splits a server error payload into field-level and form-level
// messages keyed by submitted field names ("images-3-image").
type ErrorMapping struct {
	Fields map[string][]string
	Form   []string
}

// MergeFormErrors concatenates and normalises multiple form-level error
// slices, trimming whitespace and removing duplicates while preserving order.
func MergeFormErrors(existing []string, extras ...string) []string {
	combined := make([]string, 0, len(existing)+len(extras))
	combined = append(combined, existing...)
	combined = append(combined, extras...)
	return normalizeMessages(combined)
}

// FieldNames lists the submitted names a group renders: the management
// counter plus every row field.
func FieldNames(group *formset.Group) []string {
	if group == nil {
		return nil
	}
	cfg := group.Config()
	names := []string{formset.TotalFormsName(cfg.Prefix)}
	for _, row := range group.Rows() {
		names = append(names, formset.FieldName(cfg.Prefix, row.Index, formset.FieldImage))
		for _, field := range cfg.HiddenFields() {
			names = append(names, formset.FieldName(cfg.Prefix, row.Index, field))
		}
	}
	return names
}

// MapErrorPayload normalises server error payloads (dotted, bracketed or JSON
// pointer paths such as "images.3.image", "images[3].image" or
// "/body/images/3/image") into the submitted field names renderers use.
// Unknown paths are treated as form-level errors so messages are not lost.
func MapErrorPayload(fields []string, payload map[string][]string) ErrorMapping {
	mapping := ErrorMapping{
		Fields: make(map[string][]string),
	}
	if len(payload) == 0 {
		return mapping
	}

	known := make(map[string]struct{}, len(fields))
	for _, name := range fields {
		if trimmed := strings.TrimSpace(name); trimmed != "" {
			known[trimmed] = struct{}{}
		}
	}

	// Sorted for a stable message order.
	paths := make([]string, 0, len(payload))
	for path := range payload {
		paths = append(paths, path)
	}
	slices.Sort(paths)

	for _, rawPath := range paths {
		messages := normalizeMessages(payload[rawPath])
		if len(messages) == 0 {
			continue
		}
		mapped, formLevel := mapErrorPath(rawPath, known)
		if formLevel {
			mapping.Form = append(mapping.Form, messages...)
			continue
		}
		mapping.Fields[mapped] = append(mapping.Fields[mapped], messages...)
	}

	if len(mapping.Fields) == 0 {
		mapping.Fields = nil
	}
	mapping.Form = normalizeMessages(mapping.Form)
	return mapping
}

func normalizeMessages(messages []string) []string {
	if len(messages) == 0 {
		return nil
	}

	out := make([]string, 0, len(messages))
	seen := make(map[string]struct{}, len(messages))

	for _, message := range messages {
		trimmed := strings.TrimSpace(message)
		if trimmed == "" {
			continue
		}
		if _, exists := seen[trimmed]; exists {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}

	if len(out) == 0 {
		return nil
	}
	return out
}

func mapErrorPath(raw string, known map[string]struct{}) (string, bool) {
	trimmed := strings.TrimSpace(raw)
	if isFormLevelKey(trimmed) {
		return "", true
	}
	if _, ok := known[trimmed]; ok {
		return trimmed, false
	}

	segments := dropWrapperSegments(parsePathSegments(trimmed))
	for end := len(segments); end > 0; end-- {
		for _, candidate := range candidateNames(segments[:end]) {
			if _, ok := known[candidate]; ok {
				return candidate, false
			}
		}
	}
	return "", true
}

// candidateNames renders segments as a submitted name. "images.3.image" can
// only be "images-3-image"; a plain "email" stays as is.
func candidateNames(segments []string) []string {
	if len(segments) == 0 {
		return nil
	}
	out := []string{strings.Join(segments, "-"), strings.Join(segments, ".")}
	if len(segments) == 3 {
		if _, err := strconv.Atoi(segments[1]); err == nil {
			return out[:1]
		}
	}
	return out
}

func parsePathSegments(path string) []string {
	if path == "" {
		return nil
	}

	clean := strings.TrimSpace(path)
	clean = strings.TrimPrefix(clean, "#/")
	clean = strings.TrimPrefix(clean, "$/")
	clean = strings.TrimPrefix(clean, "$.")
	for strings.HasPrefix(clean, "#") || strings.HasPrefix(clean, "/") || strings.HasPrefix(clean, ".") || strings.HasPrefix(clean, "$") {
		clean = strings.TrimPrefix(clean, "#")
		clean = strings.TrimPrefix(clean, "/")
		clean = strings.TrimPrefix(clean, ".")
		clean = strings.TrimPrefix(clean, "$")
	}

	replacer := strings.NewReplacer("[", ".", "]", "", "//", "/")
	clean = replacer.Replace(clean)
	clean = strings.Trim(clean, "./")
	if clean == "" {
		return nil
	}

	parts := strings.FieldsFunc(clean, func(r rune) bool {
		return r == '.' || r == '/'
	})

	out := make([]string, 0, len(parts))
	for _, part := range parts {
		segment := strings.TrimSpace(part)
		if segment == "" {
			continue
		}
		segment = strings.ReplaceAll(segment, "~1", "/")
		segment = strings.ReplaceAll(segment, "~0", "~")
		out = append(out, segment)
	}
	return out
}

func dropWrapperSegments(segments []string) []string {
	wrappers := map[string]struct{}{
		"body":       {},
		"request":    {},
		"payload":    {},
		"data":       {},
		"attributes": {},
	}

	out := segments
	for len(out) > 0 {
		if _, ok := wrappers[strings.ToLower(out[0])]; ok {
			out = out[1:]
			continue
		}
		break
	}
	return out
}

func isFormLevelKey(key string) bool {
	switch strings.ToLower(strings.TrimSpace(key)) {
	case "", ".", "/", "#", "$", "form", "base", "__all__", "non_field_errors", "non-field-errors":
		return true
	default:
		return false
	}
}
