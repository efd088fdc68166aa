// Package avatar implements the single-image profile photo flow: selecting a
// new photo with a preview, and removing the current one behind a
// confirmation.
package avatar

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/goliatone/go-formset/internal/logging"
	"github.com/goliatone/go-formset/pkg/element"
	"github.com/goliatone/go-formset/pkg/notify"
	"github.com/goliatone/go-formset/pkg/preview"
	"github.com/goliatone/go-formset/pkg/upload"
)

const (
	InputID    = "id_profile-image"
	RemoveID   = "remove-avatar"
	ClearID    = "avatar-clear"
	FileInfoID = "file-info"
	FileNameID = "file-name"
	PreviewID  = "avatar-preview"

	ContainerClass   = "avatar-preview"
	ImageClass       = "avatar-image"
	PlaceholderClass = "avatar-placeholder"
)

// ErrMissingInput means the page has no avatar file input.
var ErrMissingInput = errors.New("avatar: missing file input")

// Handles are the profile page elements the widget drives. Only Input is
// required; the others are updated when present.
type Handles struct {
	Input     *element.Element
	Remove    *element.Element
	Clear     *element.Element
	FileInfo  *element.Element
	FileName  *element.Element
	Container *element.Element
}

// HandlesFrom looks the handles up by their fixed ids.
func HandlesFrom(root *element.Element) Handles {
	return Handles{
		Input:     root.Find(element.ByID(InputID)),
		Remove:    root.Find(element.ByID(RemoveID)),
		Clear:     root.Find(element.ByID(ClearID)),
		FileInfo:  root.Find(element.ByID(FileInfoID)),
		FileName:  root.Find(element.ByID(FileNameID)),
		Container: root.Find(element.ByClass(ContainerClass)),
	}
}

// Option configures a Widget.
type Option func(*Widget)

func WithNotifier(n notify.Notifier) Option {
	return func(w *Widget) {
		if n != nil {
			w.notifier = n
		}
	}
}

func WithConfirmer(c notify.Confirmer) Option {
	return func(w *Widget) {
		if c != nil {
			w.confirmer = c
		}
	}
}

func WithTranslator(t notify.Translator) Option {
	return func(w *Widget) {
		if t != nil {
			w.translator = t
		}
	}
}

func WithLocale(locale string) Option {
	return func(w *Widget) {
		w.locale = locale
	}
}

func WithRules(rules upload.Rules) Option {
	return func(w *Widget) {
		w.rules = rules
	}
}

func WithPreviews(g *preview.Generator) Option {
	return func(w *Widget) {
		if g != nil {
			w.previews = g
		}
	}
}

func WithLogger(logger logrus.FieldLogger) Option {
	return func(w *Widget) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// Widget is the avatar state object.
type Widget struct {
	mu      sync.Mutex
	handles Handles

	rules      upload.Rules
	previews   *preview.Generator
	notifier   notify.Notifier
	confirmer  notify.Confirmer
	translator notify.Translator
	locale     string
	logger     logrus.FieldLogger

	selected *upload.File
}

// New binds a widget to the page handles.
func New(handles Handles, options ...Option) (*Widget, error) {
	if handles.Input == nil {
		return nil, ErrMissingInput
	}
	w := &Widget{
		handles:    handles,
		rules:      upload.AvatarRules(),
		previews:   preview.New(),
		notifier:   notify.Discard,
		confirmer:  notify.NeverConfirm,
		translator: notify.DefaultCatalog(),
		logger:     logging.Discard(),
	}
	for _, opt := range options {
		if opt != nil {
			opt(w)
		}
	}
	w.logger = logging.Component(w.logger, "avatar")
	return w, nil
}

// Select checks file (type before size), then shows its name, resets the
// clear flag, reveals the remove button and previews the image. A rejected
// file clears the input and raises a blocking notice.
func (w *Widget) Select(ctx context.Context, file upload.File) error {
	if err := w.rules.CheckFile(file); err != nil {
		w.mu.Lock()
		w.selected = nil
		w.mu.Unlock()
		var violation *upload.Violation
		if errors.As(err, &violation) {
			w.notifier.Notify(violation.Notice(w.translator, w.locale))
		}
		w.logger.WithError(err).Debug("avatar rejected")
		return err
	}

	p, err := w.previews.One(ctx, 0, file)
	if err != nil {
		return fmt.Errorf("avatar: preview %q: %w", file.Name, err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	w.selected = &file
	if w.handles.FileName != nil {
		w.handles.FileName.SetText(file.Name)
	}
	show(w.handles.FileInfo)
	show(w.handles.Remove)
	if w.handles.Clear != nil {
		w.handles.Clear.SetAttr("value", "false")
	}
	w.showImage(p.DataURI)
	return nil
}

// Remove asks for confirmation and, when approved, sets the clear flag,
// drops the selection and restores the placeholder. It reports whether the
// photo was removed.
func (w *Widget) Remove() bool {
	if !notify.ConfirmKey(w.confirmer, w.translator, w.locale, notify.KeyConfirmDeleteAvatar) {
		return false
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.handles.Clear != nil {
		w.handles.Clear.SetAttr("value", "true")
	}
	w.selected = nil
	hide(w.handles.FileInfo)
	hide(w.handles.Remove)

	if c := w.handles.Container; c != nil && c.Find(element.ByID(PreviewID)) != nil {
		placeholder := element.Div(PlaceholderClass, element.New("i", element.A("class", "fas fa-user-circle")))
		placeholder.SetAttr("id", PreviewID)
		replaceChildren(c, placeholder)
	}
	w.logger.Debug("avatar removed")
	return true
}

// Selected returns the accepted file, if any.
func (w *Widget) Selected() (upload.File, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.selected == nil {
		return upload.File{}, false
	}
	return *w.selected, true
}

// Cleared reports whether the clear flag is set.
func (w *Widget) Cleared() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.handles.Clear != nil && w.handles.Clear.AttrOr("value", "") == "true"
}

func (w *Widget) showImage(src string) {
	c := w.handles.Container
	if c == nil {
		return
	}
	if current := c.Find(element.ByID(PreviewID)); current != nil && current.Tag == "img" {
		current.SetAttr("src", src)
		return
	}
	img := element.Img(src, "Avatar", element.A("class", ImageClass), element.A("id", PreviewID))
	replaceChildren(c, img)
}

func replaceChildren(parent *element.Element, child *element.Element) {
	for len(parent.Children) > 0 {
		parent.Remove(parent.Children[0])
	}
	parent.Append(child)
}

func show(el *element.Element) {
	if el != nil {
		el.SetAttr("style", "display: block")
	}
}

func hide(el *element.Element) {
	if el != nil {
		el.SetAttr("style", "display: none")
	}
}
