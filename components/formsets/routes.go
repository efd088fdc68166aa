package formsets

import (
	"fmt"
	"net/http"
	"strings"
)

// Mux is the minimal interface required to register a net/http handler.
// It is satisfied by *http.ServeMux.
type Mux interface {
	Handle(pattern string, handler http.Handler)
}

// Routes are the mounted paths of the component.
type Routes struct {
	Rows     string
	Previews string
}

// MountPaths returns the full mount paths for the component routes under
// basePath.
func MountPaths(basePath string, fns ...OptionFn) Routes {
	opts := NewOptions(fns...)
	return Routes{
		Rows:     mountPath(basePath, opts.RowsPath),
		Previews: mountPath(basePath, opts.PreviewsPath),
	}
}

// RegisterRoutes registers the component handlers under basePath on mux.
func RegisterRoutes(mux Mux, basePath string, fns ...OptionFn) (Routes, error) {
	return RegisterRoutesWithOptions(mux, basePath, NewOptions(fns...))
}

// RegisterRoutesWithOptions registers the handlers under basePath using a
// pre-built Options value.
func RegisterRoutesWithOptions(mux Mux, basePath string, opts Options) (Routes, error) {
	if mux == nil {
		return Routes{}, fmt.Errorf("formsets: missing mux")
	}
	opts = NewOptions(func(o *Options) { *o = opts })
	routes := Routes{
		Rows:     mountPath(basePath, opts.RowsPath),
		Previews: mountPath(basePath, opts.PreviewsPath),
	}
	if routes.Rows == routes.Previews {
		return Routes{}, fmt.Errorf("formsets: rows and previews share path %q", routes.Rows)
	}
	mux.Handle(routes.Rows, RowsHandlerWithOptions(opts))
	mux.Handle(routes.Previews, PreviewsHandlerWithOptions(opts))
	return routes, nil
}

func mountPath(basePath, routePath string) string {
	basePath = strings.TrimSpace(basePath)
	routePath = strings.TrimSpace(routePath)

	if routePath == "" {
		routePath = "/"
	}
	if !strings.HasPrefix(routePath, "/") {
		routePath = "/" + routePath
	}

	if basePath == "" || basePath == "/" {
		return routePath
	}
	if !strings.HasPrefix(basePath, "/") {
		basePath = "/" + basePath
	}
	basePath = strings.TrimRight(basePath, "/")
	return basePath + routePath
}
