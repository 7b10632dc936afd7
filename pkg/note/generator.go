package note

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/goliatone/go-clinicform/pkg/model"
	"github.com/goliatone/go-clinicform/pkg/render/template"
	"github.com/goliatone/go-clinicform/pkg/render/template/gotemplate"
)

const (
	// FailureMessage replaces the note when the template cannot be compiled
	// or evaluated.
	FailureMessage = "Erreur lors de la génération du compte rendu : le modèle est invalide."
	// NoTemplateMessage is returned when no template is available.
	NoTemplateMessage = "Aucun modèle de compte rendu n'est disponible pour cette étape."
)

// ErrNoTemplate is returned by RenderErr for an empty template.
var ErrNoTemplate = errors.New("note: no template")

// Option configures a Generator.
type Option func(*Generator)

// WithLogger sets the logger used for recovered template failures.
func WithLogger(logger zerolog.Logger) Option {
	return func(g *Generator) {
		g.logger = logger
	}
}

// WithLocation sets the time zone used by format_date.
func WithLocation(loc *time.Location) Option {
	return func(g *Generator) {
		if loc != nil {
			g.loc = loc
		}
	}
}

// WithRenderer replaces the template engine. The helper table is registered
// on it by New.
func WithRenderer(renderer template.TemplateRenderer) Option {
	return func(g *Generator) {
		g.engine = renderer
	}
}

// Generator renders note templates against answer sets.
type Generator struct {
	engine  template.TemplateRenderer
	helpers map[string]any
	logger  zerolog.Logger
	loc     *time.Location
}

// New builds a Generator backed by a pongo2 engine carrying the helper table.
func New(options ...Option) (*Generator, error) {
	g := &Generator{
		logger: zerolog.Nop(),
		loc:    time.Local,
	}
	for _, opt := range options {
		if opt != nil {
			opt(g)
		}
	}
	g.helpers = Helpers(g.loc)

	if g.engine == nil {
		engine, err := gotemplate.New(
			gotemplate.WithName("note"),
			gotemplate.WithFunctions(g.helpers),
			gotemplate.WithAutoescape(false),
			gotemplate.WithTrimBlocks(true),
		)
		if err != nil {
			return nil, fmt.Errorf("note: template engine: %w", err)
		}
		g.engine = engine
		return g, nil
	}
	for name, fn := range g.helpers {
		if err := g.engine.RegisterFunc(name, fn); err != nil {
			return nil, fmt.Errorf("note: register helper %q: %w", name, err)
		}
	}
	return g, nil
}

// RenderErr renders tpl and reports failures instead of hiding them.
func (g *Generator) RenderErr(tpl string, answers model.AnswerSet) (out string, err error) {
	if strings.TrimSpace(tpl) == "" {
		return "", ErrNoTemplate
	}
	defer func() {
		if r := recover(); r != nil {
			out, err = "", fmt.Errorf("note: template panic: %v", r)
		}
	}()

	rendered, err := g.engine.RenderString(tpl, Context(answers, g.helpers))
	if err != nil {
		return "", fmt.Errorf("note: render: %w", err)
	}
	return Normalize(rendered), nil
}

// Render renders tpl and never fails: an empty template yields
// NoTemplateMessage and any compile or evaluation error yields
// FailureMessage.
func (g *Generator) Render(tpl string, answers model.AnswerSet) string {
	out, err := g.RenderErr(tpl, answers)
	switch {
	case err == nil:
		return out
	case errors.Is(err, ErrNoTemplate):
		return NoTemplateMessage
	default:
		g.logger.Warn().Err(err).Msg("note template failed")
		return FailureMessage
	}
}
