package render

import (
	"context"

	"github.com/goliatone/go-clinicform/pkg/model"
)

// Renderer turns a schema and the live answers into a byte representation
// (an HTML form, a plain-text transcript).
type Renderer interface {
	Name() string
	ContentType() string
	Render(ctx context.Context, schema model.FormSchema, options RenderOptions) ([]byte, error)
}
