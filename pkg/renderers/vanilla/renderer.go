package vanilla

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/goliatone/go-clinicform/pkg/export"
	"github.com/goliatone/go-clinicform/pkg/model"
	"github.com/goliatone/go-clinicform/pkg/note"
	"github.com/goliatone/go-clinicform/pkg/render"
	rendertemplate "github.com/goliatone/go-clinicform/pkg/render/template"
	gotemplate "github.com/goliatone/go-clinicform/pkg/render/template/gotemplate"
	"github.com/goliatone/go-clinicform/pkg/validation"
)

type Option func(*config)

type config struct {
	templateFS       fs.FS
	templateRenderer rendertemplate.TemplateRenderer
	location         *time.Location
}

// WithTemplatesFS supplies an alternate template bundle via fs.FS. It must
// contain templates/form.tmpl.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templateFS = files
	}
}

// WithTemplatesDir loads templates from a directory on disk.
func WithTemplatesDir(path string) Option {
	return func(cfg *config) {
		if path == "" {
			return
		}
		cfg.templateFS = os.DirFS(path)
	}
}

// WithTemplateRenderer injects a custom template renderer implementation.
func WithTemplateRenderer(renderer rendertemplate.TemplateRenderer) Option {
	return func(cfg *config) {
		if renderer != nil {
			cfg.templateRenderer = renderer
		}
	}
}

// WithLocation sets the time zone read-only dates are shown in.
func WithLocation(loc *time.Location) Option {
	return func(cfg *config) {
		if loc != nil {
			cfg.location = loc
		}
	}
}

// Renderer renders a schema as an HTML form, or as a read-only summary.
type Renderer struct {
	templates rendertemplate.TemplateRenderer
	location  *time.Location
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs the vanilla renderer applying any provided options.
func New(options ...Option) (*Renderer, error) {
	cfg := config{templateFS: TemplatesFS()}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	if cfg.templateFS == nil {
		cfg.templateFS = TemplatesFS()
	}

	renderer := cfg.templateRenderer
	if renderer == nil {
		engine, err := gotemplate.New(
			gotemplate.WithName("vanilla"),
			gotemplate.WithFS(cfg.templateFS),
			gotemplate.WithExtension(".tmpl"),
			gotemplate.WithTrimBlocks(true),
		)
		if err != nil {
			return nil, fmt.Errorf("vanilla renderer: configure template renderer: %w", err)
		}
		renderer = engine
	}

	return &Renderer{templates: renderer, location: cfg.location}, nil
}

func (r *Renderer) Name() string {
	return "vanilla"
}

func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

// Render draws every section with its visible fields. Fields listed in
// options.Missing get an inline marker and appear in the aggregate panel;
// when options.Missing is nil the missing set is computed from the values.
func (r *Renderer) Render(_ context.Context, schema model.FormSchema, options render.RenderOptions) ([]byte, error) {
	if r.templates == nil {
		return nil, fmt.Errorf("vanilla renderer: template renderer is nil")
	}

	values := options.Values
	if values == nil {
		values = model.AnswerSet{}
	}
	report := validation.Report(schema, values)
	missing := options.MissingSet()
	if options.Missing == nil {
		missing = make(map[string]bool, len(report))
		for _, item := range report {
			missing[item.Name] = true
		}
	}

	fields := &fieldRenderer{
		values:   values,
		missing:  missing,
		readOnly: options.ReadOnly,
		format:   export.NewFormatter(options.Translator, options.Locale, r.location),
		markup:   markupPolicy(),
		marker:   options.T(render.KeyMissingMarker),
		noAnswer: options.T(render.KeyNoAnswer),
	}

	sections := make([]any, 0, len(schema.Sections))
	for i, section := range schema.Sections {
		sections = append(sections, map[string]any{
			"id":     fmt.Sprintf("cf-section-%d", i+1),
			"title":  section.Title,
			"fields": fields.renderFields(section.Fields, 0),
		})
	}

	panel := make([]any, 0, len(report))
	for _, item := range report {
		if !missing[item.Name] {
			continue
		}
		panel = append(panel, map[string]any{
			"name":    item.Name,
			"label":   item.Label,
			"section": item.Section,
			"anchor":  FieldAnchor(item.Name),
		})
	}

	hidden := make([]any, 0, len(options.Hidden))
	for _, field := range render.SortedHiddenFields(options.Hidden) {
		hidden = append(hidden, map[string]any{"name": field.Name, "value": field.Value})
	}

	method := strings.ToLower(strings.TrimSpace(options.Method))
	if method == "" {
		method = "post"
	}

	result, err := r.templates.RenderTemplate(FormTemplate, map[string]any{
		"form": map[string]any{
			"name":        schema.Metadata.Name,
			"description": schema.Metadata.Description,
			"action":      options.Action,
			"method":      method,
			"readonly":    options.ReadOnly,
		},
		"sections":  sections,
		"missing":   panel,
		"hidden":    hidden,
		"note":      options.Note,
		"note_html": note.HTML(options.Note),
		"classes":   chromeClasses(),
		"labels": map[string]any{
			"missing_title": options.T(render.KeyMissingTitle),
			"missing_count": options.T(render.KeyMissingCount, len(panel)),
			"complete":      options.T(render.KeyComplete),
			"submit":        options.T(render.KeySubmit),
			"note_title":    options.T(render.KeyNoteTitle),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("vanilla renderer: render template: %w", err)
	}
	return []byte(result), nil
}
