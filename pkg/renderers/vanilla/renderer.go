package vanilla

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/goliatone/go-formset/pkg/element"
	"github.com/goliatone/go-formset/pkg/formset"
	"github.com/goliatone/go-formset/pkg/notify"
	"github.com/goliatone/go-formset/pkg/render"
	rendertemplate "github.com/goliatone/go-formset/pkg/render/template"
	gotemplate "github.com/goliatone/go-formset/pkg/render/template/gotemplate"
	"github.com/goliatone/go-formset/pkg/validation"
)

const groupTemplate = "templates/formset.tmpl"

type Option func(*config)

type config struct {
	templateFS       fs.FS
	templateRenderer rendertemplate.TemplateRenderer
	classes          ChromeClasses
	translator       notify.Translator
}

// WithTemplatesFS supplies an alternate template bundle via fs.FS.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templateFS = files
	}
}

// WithTemplatesDir loads templates from a directory on disk.
func WithTemplatesDir(path string) Option {
	return func(cfg *config) {
		if path == "" {
			return
		}
		cfg.templateFS = os.DirFS(path)
	}
}

// WithTemplateRenderer injects a custom template renderer implementation.
func WithTemplateRenderer(renderer rendertemplate.TemplateRenderer) Option {
	return func(cfg *config) {
		if renderer != nil {
			cfg.templateRenderer = renderer
		}
	}
}

// WithChromeClasses overrides the wrapper classes.
func WithChromeClasses(classes ChromeClasses) Option {
	return func(cfg *config) {
		cfg.classes = classes
	}
}

// WithTranslator sets the catalog behind the template translate helper.
func WithTranslator(t notify.Translator) Option {
	return func(cfg *config) {
		if t != nil {
			cfg.translator = t
		}
	}
}

type Renderer struct {
	templates rendertemplate.TemplateRenderer
	classes   ChromeClasses
}

var (
	_ render.Renderer    = (*Renderer)(nil)
	_ render.RowRenderer = (*Renderer)(nil)
)

// New constructs the vanilla renderer applying any provided options.
func New(options ...Option) (*Renderer, error) {
	cfg := config{templateFS: TemplatesFS(), translator: notify.DefaultCatalog()}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	if cfg.templateFS == nil {
		cfg.templateFS = TemplatesFS()
	}

	renderer := cfg.templateRenderer
	if renderer == nil {
		engine, err := gotemplate.New(
			gotemplate.WithFS(cfg.templateFS),
			gotemplate.WithExtension(".tmpl"),
		)
		if err != nil {
			return nil, fmt.Errorf("vanilla renderer: configure template renderer: %w", err)
		}
		renderer = engine
	}

	if err := renderer.GlobalContext(render.TemplateI18nFuncs(cfg.translator, render.TemplateI18nConfig{})); err != nil {
		return nil, fmt.Errorf("vanilla renderer: register i18n helpers: %w", err)
	}

	return &Renderer{templates: renderer, classes: cfg.classes.withDefaults()}, nil
}

func (r *Renderer) Name() string {
	return "vanilla"
}

func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

// Render writes the group shell: notices, management inputs, the row
// container and the add trigger. Field errors are shown inline on a copy of
// the rows so the group itself is not touched.
func (r *Renderer) Render(_ context.Context, group *formset.Group, options render.RenderOptions) ([]byte, error) {
	if r.templates == nil {
		return nil, fmt.Errorf("vanilla renderer: template renderer is nil")
	}
	if group == nil {
		return nil, fmt.Errorf("vanilla renderer: group is nil")
	}

	cfg := group.Config()
	handles := group.Snapshot()
	if !handles.Complete() {
		return nil, fmt.Errorf("vanilla renderer: %w", formset.ErrMissingHandle)
	}
	container := handles.Container

	mapping := render.MapErrorPayload(render.FieldNames(group), options.Errors)
	for name, messages := range mapping.Fields {
		if field := container.Find(element.ByName(name)); field != nil {
			validation.MarkInvalid(field, messages[0])
		} else {
			mapping.Form = render.MergeFormErrors(mapping.Form, messages...)
		}
	}

	if cfg.Kind == formset.KindUpdate {
		addDeleteToggles(container, options.Message(notify.KeyDeleteRow))
	}

	hidden := options.Hidden
	if override, ok := render.MethodOverride(options.Method); ok {
		hidden = render.MergeHiddenFields(hidden, override)
	}

	counter, err := handles.Counter.HTML()
	if err != nil {
		return nil, fmt.Errorf("vanilla renderer: %w", err)
	}
	rows, err := container.HTML()
	if err != nil {
		return nil, fmt.Errorf("vanilla renderer: %w", err)
	}
	trigger, err := handles.Trigger.HTML()
	if err != nil {
		return nil, fmt.Errorf("vanilla renderer: %w", err)
	}

	result, err := r.templates.RenderTemplate(groupTemplate, map[string]any{
		"action":     options.Action,
		"locale":     options.Locale,
		"limit":      options.Message(cfg.LimitKey, cfg.MaxRows),
		"required":   options.Message(notify.KeyRequired),
		"textNeeded": options.Message(notify.KeyCommentTextRequired),
		"classes":    r.classes.context(),
		"prefix":     cfg.Prefix,
		"kind":       string(cfg.Kind),
		"max":        strconv.Itoa(cfg.MaxRows),
		"initial":    strconv.Itoa(group.Initial()),
		"remaining":  strconv.Itoa(group.Remaining()),
		"notices":    noticeViews(options.Notices),
		"formErrors": stringsToAny(mapping.Form),
		"hidden":     hiddenViews(hidden),
		"counter":    counter,
		"container":  rows,
		"trigger":    trigger,
	})
	if err != nil {
		return nil, fmt.Errorf("vanilla renderer: render template: %w", err)
	}
	return []byte(result), nil
}

// addDeleteToggles places a toggle next to every soft-delete flag. The flag
// stays a hidden input; the runtime sets it after a confirm.
func addDeleteToggles(container *element.Element, label string) {
	for _, flag := range container.FindAll(element.HasAttr("name")) {
		name := flag.Name()
		if !strings.HasSuffix(name, "-"+formset.FieldDelete) || flag.Parent() == nil {
			continue
		}
		toggle := element.Button("button", "", label,
			element.A("class", "image-delete-toggle"),
			element.A("data-formset-delete", name),
			element.A("aria-pressed", strconv.FormatBool(flag.AttrOr("value", "") != "")),
		)
		flag.Parent().Append(toggle)
	}
}

// RenderRow writes a single row fragment.
func (r *Renderer) RenderRow(_ context.Context, row *formset.Row, _ render.RenderOptions) ([]byte, error) {
	if row == nil || row.Element == nil {
		return nil, fmt.Errorf("vanilla renderer: row is nil")
	}
	out, err := row.Element.Clone().HTML()
	if err != nil {
		return nil, fmt.Errorf("vanilla renderer: render row %d: %w", row.Index, err)
	}
	return []byte(out), nil
}
