package template

import (
	"io"
)

// TemplateRenderer is the seam note generation and page rendering rely on.
// Functions registered through RegisterFunc are scoped to one renderer; there
// is no process-wide helper registry.
type TemplateRenderer interface {
	Render(name string, data any, out ...io.Writer) (string, error)
	RenderTemplate(name string, data any, out ...io.Writer) (string, error)
	RenderString(templateContent string, data any, out ...io.Writer) (string, error)
	RegisterFunc(name string, fn any) error
	GlobalContext(data any) error
}
