// Package formset is the quick start entry point: it renders the preset
// image subforms and serves the browser runtime that drives them.
package formset

import (
	"context"
	"fmt"

	pkgformset "github.com/goliatone/go-formset/pkg/formset"
	"github.com/goliatone/go-formset/pkg/render"
	vanilla "github.com/goliatone/go-formset/pkg/renderers/vanilla"
)

// Config aliases the subform group configuration.
type Config = pkgformset.Config

// RenderOptions describes per-request data such as locale, errors and
// notices.
type RenderOptions = render.RenderOptions

// Presets returns the built-in groups keyed by name (post-create,
// post-update, comment).
func Presets() map[string]Config {
	return pkgformset.Presets()
}

// GenerateHTML builds a group scaffold with initialRows server rows and
// renders it with the vanilla renderer. It is the simplest entry point for
// callers that just want HTML output.
func GenerateHTML(ctx context.Context, cfg Config, initialRows int, options RenderOptions) ([]byte, error) {
	group, _, err := pkgformset.Build(cfg, initialRows,
		pkgformset.WithTranslator(options.Translator),
		pkgformset.WithLocale(options.Locale),
	)
	if err != nil {
		return nil, err
	}
	var rendererOpts []vanilla.Option
	if options.Translator != nil {
		rendererOpts = append(rendererOpts, vanilla.WithTranslator(options.Translator))
	}
	renderer, err := vanilla.New(rendererOpts...)
	if err != nil {
		return nil, fmt.Errorf("formset: %w", err)
	}
	return renderer.Render(ctx, group, options)
}

// GeneratePreset renders the named preset group.
func GeneratePreset(ctx context.Context, name string, initialRows int, options RenderOptions) ([]byte, error) {
	cfg, ok := Presets()[name]
	if !ok {
		return nil, fmt.Errorf("formset: unknown preset %q", name)
	}
	return GenerateHTML(ctx, cfg, initialRows, options)
}
