package vanilla

import (
	"embed"
	"io/fs"
)

//go:embed templates/*.tmpl
var embeddedTemplates embed.FS

// TemplatesFS exposes the embedded template bundle. Custom bundles passed via
// WithTemplatesFS must provide the same template names.
func TemplatesFS() fs.FS {
	return embeddedTemplates
}
