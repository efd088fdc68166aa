package formsets

import "net/http"

// Component wraps the handlers, their configuration and routing helpers.
type Component struct {
	opts Options
}

// New constructs a new component with default options plus any overrides.
func New(fns ...OptionFn) *Component {
	return &Component{opts: NewOptions(fns...)}
}

// Options returns a copy of the component configuration.
func (c *Component) Options() Options {
	if c == nil {
		return NewOptions()
	}
	return NewOptions(func(o *Options) { *o = c.opts })
}

// RowsHandler returns the add-row handler.
func (c *Component) RowsHandler() http.Handler {
	if c == nil {
		return RowsHandler()
	}
	return RowsHandlerWithOptions(c.opts)
}

// PreviewsHandler returns the preview handler.
func (c *Component) PreviewsHandler() http.Handler {
	if c == nil {
		return PreviewsHandler()
	}
	return PreviewsHandlerWithOptions(c.opts)
}

// RegisterRoutes registers the component handlers under basePath on mux.
func (c *Component) RegisterRoutes(mux Mux, basePath string) (Routes, error) {
	if c == nil {
		return RegisterRoutes(mux, basePath)
	}
	return RegisterRoutesWithOptions(mux, basePath, c.opts)
}
