package tui

import (
	"fmt"
	"slices"
	"strings"
)

// State tracks collected values and server-provided errors keyed by
// submitted field name. Row files are stored as lists of file names.
type State struct {
	values map[string]any
	errors map[string][]string
}

// NewState seeds the state with errors already mapped to field names.
func NewState(errs map[string][]string) *State {
	return &State{
		values: make(map[string]any),
		errors: cloneErrors(errs),
	}
}

// Values returns the current value map (mutable).
func (s *State) Values() map[string]any {
	if s == nil {
		return nil
	}
	return s.values
}

// ErrorsFor returns the errors attached to a field name.
func (s *State) ErrorsFor(name string) []string {
	if s == nil || len(s.errors) == 0 {
		return nil
	}
	return s.errors[name]
}

// Set writes a scalar value.
func (s *State) Set(name string, value any) error {
	if s == nil {
		return fmt.Errorf("tui: state is nil")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("tui: empty field name")
	}
	s.values[name] = value
	return nil
}

// SetFiles records the file names selected for a row input. An empty
// selection removes the entry.
func (s *State) SetFiles(name string, files []string) error {
	if len(files) == 0 {
		delete(s.values, name)
		return nil
	}
	list := make([]any, 0, len(files))
	for _, file := range files {
		list = append(list, file)
	}
	return s.Set(name, list)
}

// Keys returns the collected field names in sorted order.
func (s *State) Keys() []string {
	keys := make([]string, 0, len(s.values))
	for key := range s.values {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	return keys
}

func cloneErrors(src map[string][]string) map[string][]string {
	if len(src) == 0 {
		return nil
	}
	out := make(map[string][]string, len(src))
	for key, val := range src {
		out[key] = slices.Clone(val)
	}
	return out
}
