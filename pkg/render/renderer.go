package render

import (
	"context"

	"github.com/goliatone/go-formset/pkg/formset"
)

// Renderer converts a subform group into a byte representation.
type Renderer interface {
	Name() string
	ContentType() string
	Render(ctx context.Context, group *formset.Group, options RenderOptions) ([]byte, error)
}

// RowRenderer renders a single row fragment. The fragment endpoint uses it
// when a row is appended without reloading the page.
type RowRenderer interface {
	RenderRow(ctx context.Context, row *formset.Row, options RenderOptions) ([]byte, error)
}
