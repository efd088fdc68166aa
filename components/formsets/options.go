package formsets

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/goliatone/go-formset/internal/logging"
	"github.com/goliatone/go-formset/pkg/formset"
	"github.com/goliatone/go-formset/pkg/notify"
	"github.com/goliatone/go-formset/pkg/preview"
	"github.com/goliatone/go-formset/pkg/render"
	"github.com/goliatone/go-formset/pkg/renderers/vanilla"
	"github.com/goliatone/go-formset/pkg/upload"
)

const (
	DefaultRowsPath     = "/formsets/rows"
	DefaultPreviewsPath = "/formsets/previews"
	DefaultMaxMemory    = formset.DefaultMaxMemory
	// DefaultMaxRequestBytes admits a full selection at the default rules
	// plus room for the multipart envelope.
	DefaultMaxRequestBytes = upload.DefaultMaxFiles*upload.DefaultMaxFileSize + 1<<20
)

type GuardFunc func(r *http.Request) error

type Options struct {
	RowsPath     string
	PreviewsPath string
	MaxMemory    int64
	// MaxRequestBytes bounds the previews request body.
	MaxRequestBytes int64
	Guard        GuardFunc

	// Groups maps a group prefix to its configuration.
	Groups map[string]formset.Config

	RowRenderer render.RowRenderer
	Previews    *preview.Generator
	Translator  notify.Translator
	Locale      string
	Logger      logrus.FieldLogger
}

type OptionFn func(*Options)

// DefaultGroups returns the built-in groups keyed by prefix.
func DefaultGroups() map[string]formset.Config {
	out := make(map[string]formset.Config)
	for _, cfg := range []formset.Config{formset.PostImagesCreate(), formset.CommentImages()} {
		out[cfg.Prefix] = cfg
	}
	return out
}

func DefaultOptions() Options {
	return Options{
		RowsPath:     DefaultRowsPath,
		PreviewsPath: DefaultPreviewsPath,
		MaxMemory:    DefaultMaxMemory,

		MaxRequestBytes: DefaultMaxRequestBytes,
	}
}

func NewOptions(fns ...OptionFn) Options {
	opts := DefaultOptions()
	for _, fn := range fns {
		if fn == nil {
			continue
		}
		fn(&opts)
	}
	if opts.RowsPath == "" {
		opts.RowsPath = DefaultRowsPath
	}
	if opts.PreviewsPath == "" {
		opts.PreviewsPath = DefaultPreviewsPath
	}
	if opts.MaxMemory <= 0 {
		opts.MaxMemory = DefaultMaxMemory
	}
	if opts.MaxRequestBytes <= 0 {
		opts.MaxRequestBytes = DefaultMaxRequestBytes
	}
	if len(opts.Groups) == 0 {
		opts.Groups = DefaultGroups()
	} else {
		groups := make(map[string]formset.Config, len(opts.Groups))
		for prefix, cfg := range opts.Groups {
			groups[prefix] = cfg
		}
		opts.Groups = groups
	}
	if opts.RowRenderer == nil {
		if r, err := vanilla.New(); err == nil {
			opts.RowRenderer = r
		}
	}
	if opts.Previews == nil {
		opts.Previews = preview.New()
	}
	if opts.Translator == nil {
		opts.Translator = notify.DefaultCatalog()
	}
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}
	return opts
}

func WithRowsPath(path string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.RowsPath = path
	}
}

func WithPreviewsPath(path string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.PreviewsPath = path
	}
}

func WithMaxMemory(n int64) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.MaxMemory = n
	}
}

func WithMaxRequestBytes(n int64) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.MaxRequestBytes = n
	}
}

func WithGuard(guard GuardFunc) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Guard = guard
	}
}

// WithGroup registers cfg under its prefix, replacing the defaults on first
// use.
func WithGroup(cfg formset.Config) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		cfg = cfg.Normalize()
		if o.Groups == nil {
			o.Groups = make(map[string]formset.Config)
		}
		o.Groups[cfg.Prefix] = cfg
	}
}

func WithRowRenderer(r render.RowRenderer) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.RowRenderer = r
	}
}

func WithPreviews(g *preview.Generator) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Previews = g
	}
}

func WithTranslator(t notify.Translator) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Translator = t
	}
}

func WithLocale(locale string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Locale = locale
	}
}

func WithLogger(logger logrus.FieldLogger) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Logger = logger
	}
}
