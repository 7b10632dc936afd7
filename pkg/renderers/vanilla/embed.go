package vanilla

import (
	"embed"
	"io/fs"
)

//go:embed templates/*.tmpl
var embeddedTemplates embed.FS

// FormTemplate is the page template the renderer executes.
const FormTemplate = "templates/form.tmpl"

// TemplatesFS exposes the embedded template bundle so callers can copy and
// override it with WithTemplatesFS or WithTemplatesDir.
func TemplatesFS() fs.FS {
	return embeddedTemplates
}
