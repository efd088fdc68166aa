package formset

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/goliatone/go-formset/internal/logging"
	"github.com/goliatone/go-formset/pkg/element"
	"github.com/goliatone/go-formset/pkg/notify"
	"github.com/goliatone/go-formset/pkg/preview"
	"github.com/goliatone/go-formset/pkg/upload"
)

// SelectionHandler is the file-selection reaction shared by every file input
// of a group, static or added later.
type SelectionHandler struct {
	Rules      upload.Rules
	Previews   *preview.Generator
	Notifier   notify.Notifier
	Translator notify.Translator
	Locale     string
	Logger     logrus.FieldLogger
}

// NewSelectionHandler returns a handler with the default rules.
func NewSelectionHandler() *SelectionHandler {
	return &SelectionHandler{
		Rules:      upload.DefaultRules(),
		Previews:   preview.New(),
		Notifier:   notify.Discard,
		Translator: notify.DefaultCatalog(),
		Logger:     logging.Discard(),
	}
}

// Select applies the rules to files. On a violation the input selection and
// its previews are cleared, a blocking notice names the offending file and the *upload.Violation
// is returned. Otherwise previews replace any earlier preview set.
func (h *SelectionHandler) Select(ctx context.Context, input *FileInput, files []upload.File) error {
	if input == nil {
		return fmt.Errorf("formset: file input is nil")
	}
	h = h.withDefaults()
	log := h.Logger.WithField("input", input.Name())

	generation := input.begin(files)

	if err := h.Rules.Check(files); err != nil {
		input.clearSelection(generation)
		var violation *upload.Violation
		if errors.As(err, &violation) {
			h.Notifier.Notify(violation.Notice(h.Translator, h.Locale))
		}
		log.WithError(err).Debug("file selection rejected")
		return err
	}

	previews, err := h.Previews.Generate(ctx, files)
	if err != nil {
		log.WithError(err).Warn("preview generation failed")
		return fmt.Errorf("formset: previews for %s: %w", input.Name(), err)
	}
	if !input.render(generation, previews) {
		log.WithField("generation", generation).Debug("discarded superseded previews")
	}
	return nil
}

func (h *SelectionHandler) withDefaults() *SelectionHandler {
	if h == nil {
		return NewSelectionHandler()
	}
	out := *h
	if out.Previews == nil {
		out.Previews = preview.New()
	}
	if out.Notifier == nil {
		out.Notifier = notify.Discard
	}
	if out.Translator == nil {
		out.Translator = notify.DefaultCatalog()
	}
	if out.Logger == nil {
		out.Logger = logging.Discard()
	}
	return &out
}

// FileInput is the file slot of a row.
type FileInput struct {
	mu      *sync.Mutex
	Element *element.Element

	handler    *SelectionHandler
	selected   []upload.File
	previews   []preview.Preview
	generation uint64
	rendered   uint64
}

func newFileInput(el *element.Element, mu *sync.Mutex) *FileInput {
	if mu == nil {
		mu = &sync.Mutex{}
	}
	return &FileInput{mu: mu, Element: el}
}

// NewFileInput wraps a standalone file input element.
func NewFileInput(el *element.Element, handler *SelectionHandler) *FileInput {
	input := newFileInput(el, nil)
	input.Attach(handler)
	return input
}

// Attach sets the selection handler.
func (f *FileInput) Attach(handler *SelectionHandler) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handler = handler
}

// Handler returns the attached selection handler.
func (f *FileInput) Handler() *SelectionHandler {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.handler
}

// Name returns the input name.
func (f *FileInput) Name() string {
	return f.Element.Name()
}

// Select runs the attached handler.
func (f *FileInput) Select(ctx context.Context, files []upload.File) error {
	handler := f.Handler()
	if handler == nil {
		return ErrNoSelectionHandler
	}
	return handler.Select(ctx, f, files)
}

// Selected returns the current selection.
func (f *FileInput) Selected() []upload.File {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.selected)
}

// Previews returns the rendered previews.
func (f *FileInput) Previews() []preview.Preview {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.previews)
}

func (f *FileInput) begin(files []upload.File) uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.generation++
	f.selected = slices.Clone(files)
	return f.generation
}

// clearSelection drops the selection and its previews. Previews still in
// flight for older selections are discarded once this generation is marked.
func (f *FileInput) clearSelection(generation uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if generation != f.generation {
		return
	}
	f.selected = nil
	f.previews = nil
	f.rendered = generation
	f.removeContainer()
}

func (f *FileInput) removeContainer() *element.Element {
	parent := f.Element.Parent()
	if parent == nil {
		return nil
	}
	if existing := parent.ChildByClass(preview.ContainerClass); existing != nil {
		parent.Remove(existing)
	}
	return parent
}

// render swaps the preview set next to the input. Results from a selection
// older than the one already on screen are dropped.
func (f *FileInput) render(generation uint64, previews []preview.Preview) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if generation < f.rendered {
		return false
	}
	f.rendered = generation
	f.previews = slices.Clone(previews)

	parent := f.removeContainer()
	if parent == nil {
		return true
	}
	if container := preview.Container(previews); container != nil {
		parent.Append(container)
	}
	return true
}
