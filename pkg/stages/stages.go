// Package stages is the catalog of consultation stages a patient goes
// through, in order. Each stage pairs a form schema with a note template.
package stages

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-clinicform/pkg/model"
	"github.com/goliatone/go-clinicform/pkg/schema"
	"github.com/goliatone/go-clinicform/pkg/store"
)

//go:embed catalog.yaml schemas/*.yaml templates/*.tpl
var embedded embed.FS

// IndexFile is the catalog index at the root of a stage bundle.
const IndexFile = "catalog.yaml"

// ErrUnknownStage is returned for slugs the catalog does not list.
var ErrUnknownStage = errors.New("stages: unknown stage")

// Stage describes one consultation stage.
type Stage struct {
	Slug        string `yaml:"slug" json:"slug"`
	Title       string `yaml:"title" json:"title"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
	Schema      string `yaml:"schema" json:"-"`
	Template    string `yaml:"template" json:"-"`
}

type index struct {
	Stages []Stage `yaml:"stages"`
}

// Catalog holds the ordered stages with their parsed schemas.
type Catalog struct {
	files   fs.FS
	stages  []Stage
	bySlug  map[string]int
	schemas map[string]model.FormSchema
}

var _ store.TemplateSource = (*Catalog)(nil)

// Default loads the embedded catalog.
func Default(ctx context.Context) (*Catalog, error) {
	return Load(ctx, embedded)
}

// Load reads a stage bundle: catalog.yaml plus the schema and template
// files it names. Every schema must load without error-severity issues.
func Load(ctx context.Context, files fs.FS) (*Catalog, error) {
	data, err := fs.ReadFile(files, IndexFile)
	if err != nil {
		return nil, fmt.Errorf("stages: read %s: %w", IndexFile, err)
	}
	var idx index
	if err := yaml.Unmarshal(data, &idx); err != nil {
		return nil, fmt.Errorf("stages: decode %s: %w", IndexFile, err)
	}
	if len(idx.Stages) == 0 {
		return nil, fmt.Errorf("stages: %s lists no stages", IndexFile)
	}

	c := &Catalog{
		files:   files,
		bySlug:  make(map[string]int, len(idx.Stages)),
		schemas: make(map[string]model.FormSchema, len(idx.Stages)),
	}
	loader := schema.NewLoader(schema.WithFileSystem(files))
	for _, stage := range idx.Stages {
		stage.Slug = strings.TrimSpace(stage.Slug)
		if stage.Slug == "" {
			return nil, fmt.Errorf("stages: stage without slug in %s", IndexFile)
		}
		if _, dup := c.bySlug[stage.Slug]; dup {
			return nil, fmt.Errorf("stages: duplicate stage %q", stage.Slug)
		}
		result, err := loader.Load(ctx, schema.SourceFromFS(stage.Schema))
		if err != nil {
			return nil, fmt.Errorf("stages: %s: %w", stage.Slug, err)
		}
		if err := result.Err(); err != nil {
			return nil, fmt.Errorf("stages: %s: %w", stage.Slug, err)
		}
		if stage.Title == "" {
			stage.Title = result.Schema.Metadata.Name
		}
		c.bySlug[stage.Slug] = len(c.stages)
		c.stages = append(c.stages, stage)
		c.schemas[stage.Slug] = result.Schema
	}
	return c, nil
}

// Stages returns the stages in consultation order.
func (c *Catalog) Stages() []Stage {
	return append([]Stage(nil), c.stages...)
}

// Stage looks up a stage by slug.
func (c *Catalog) Stage(slug string) (Stage, bool) {
	i, ok := c.bySlug[slug]
	if !ok {
		return Stage{}, false
	}
	return c.stages[i], true
}

// Schema returns the form schema of a stage.
func (c *Catalog) Schema(slug string) (model.FormSchema, error) {
	s, ok := c.schemas[slug]
	if !ok {
		return model.FormSchema{}, fmt.Errorf("%w %q", ErrUnknownStage, slug)
	}
	return s, nil
}

// Template returns the note template of a stage. Unknown stages and stages
// without a template report store.ErrNotFound.
func (c *Catalog) Template(ctx context.Context, slug string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	stage, ok := c.Stage(slug)
	if !ok || stage.Template == "" {
		return "", fmt.Errorf("%w: template %q", store.ErrNotFound, slug)
	}
	data, err := fs.ReadFile(c.files, stage.Template)
	if err != nil {
		return "", fmt.Errorf("%w: template %q: %v", store.ErrNotFound, slug, err)
	}
	return string(data), nil
}

// Next returns the stage that follows slug. The last stage has none.
func (c *Catalog) Next(slug string) (Stage, bool) {
	i, ok := c.bySlug[slug]
	if !ok || i+1 >= len(c.stages) {
		return Stage{}, false
	}
	return c.stages[i+1], true
}
