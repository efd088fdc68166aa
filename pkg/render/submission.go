package render

import (
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/goliatone/go-formset/pkg/element"
)

// MethodOverrideField is the hidden input carrying a non-POST verb.
const MethodOverrideField = "_method"

// HiddenField represents a hidden form input emitted alongside the group
// management inputs.
type HiddenField struct {
	Name  string
	Value string
}

// Hidden returns a HiddenField for an arbitrary name/value pair.
func Hidden(name string, value any) HiddenField {
	return HiddenField{
		Name:  strings.TrimSpace(name),
		Value: fmt.Sprint(value),
	}
}

// CSRFToken constructs a hidden field carrying the provided token. Callers
// supply the input name to match their backend ("csrfmiddlewaretoken",
// "_csrf").
func CSRFToken(name, token string) HiddenField {
	return Hidden(name, token)
}

// MethodOverride returns the hidden field browsers need to submit method
// through a POST form, and false when no override is needed.
func MethodOverride(method string) (HiddenField, bool) {
	method = strings.ToUpper(strings.TrimSpace(method))
	switch method {
	case "", http.MethodGet, http.MethodPost:
		return HiddenField{}, false
	default:
		return Hidden(MethodOverrideField, method), true
	}
}

// MergeHiddenFields returns a copy of base with the provided fields applied.
// Empty names are ignored; later fields win on name collisions.
func MergeHiddenFields(base map[string]string, fields ...HiddenField) map[string]string {
	if len(base) == 0 && len(fields) == 0 {
		return nil
	}
	out := make(map[string]string, len(base)+len(fields))
	for key, value := range base {
		if trimmed := strings.TrimSpace(key); trimmed != "" {
			out[trimmed] = value
		}
	}
	for _, field := range fields {
		name := strings.TrimSpace(field.Name)
		if name == "" {
			continue
		}
		out[name] = field.Value
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// SortedHiddenFields normalises and sorts hidden fields for deterministic
// rendering. Empty names are dropped.
func SortedHiddenFields(fields map[string]string) []HiddenField {
	if len(fields) == 0 {
		return nil
	}

	names := make([]string, 0, len(fields))
	clean := make(map[string]string, len(fields))
	for name, value := range fields {
		key := strings.TrimSpace(name)
		if key == "" {
			continue
		}
		if _, seen := clean[key]; !seen {
			names = append(names, key)
		}
		clean[key] = value
	}
	if len(names) == 0 {
		return nil
	}
	sort.Strings(names)

	result := make([]HiddenField, 0, len(names))
	for _, name := range names {
		result = append(result, HiddenField{Name: name, Value: clean[name]})
	}
	return result
}

// HiddenElements builds <input type="hidden"> descriptors in sorted order.
func HiddenElements(fields map[string]string) []*element.Element {
	sorted := SortedHiddenFields(fields)
	out := make([]*element.Element, 0, len(sorted))
	for _, field := range sorted {
		el := element.Input("hidden", field.Name, "")
		el.SetAttr("value", field.Value)
		out = append(out, el)
	}
	return out
}
