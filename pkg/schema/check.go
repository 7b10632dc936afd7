package schema

import (
	"fmt"

	"github.com/goliatone/go-clinicform/pkg/chart"
	"github.com/goliatone/go-clinicform/pkg/model"
)

// Check runs the semantic load-time checks on a decoded schema. Errors make
// the schema unusable (empty or colliding names, no sections); warnings flag
// authoring mistakes that every walker tolerates.
func Check(schema model.FormSchema) []Issue {
	c := checker{seen: make(map[string]string)}
	if len(schema.Sections) == 0 {
		c.issues = append(c.issues, errorIssue("sections", "", ErrEmptySchema, "schema declares no section"))
	}
	for i, section := range schema.Sections {
		path := fmt.Sprintf("sections[%d]", i)
		if len(section.Fields) == 0 {
			c.issues = append(c.issues, warningIssue(path, "", "section %q has no field", section.Title))
		}
		c.fields(path, section.Fields)
	}
	return c.issues
}

type checker struct {
	seen   map[string]string
	issues []Issue
}

func (c *checker) fields(parent string, fields []model.Field) {
	for i, field := range fields {
		c.field(fmt.Sprintf("%s.fields[%d]", parent, i), field)
	}
}

func (c *checker) field(path string, field model.Field) {
	switch {
	case field.Name == "":
		c.issues = append(c.issues, errorIssue(path, "", ErrEmptyName, "field has no name"))
	default:
		if first, dup := c.seen[field.Name]; dup {
			c.issues = append(c.issues, errorIssue(path, field.Name, ErrNameCollision,
				"name %q already used at %s", field.Name, first))
		} else {
			c.seen[field.Name] = path
		}
	}

	if !field.Kind.Known() {
		c.issues = append(c.issues, warningIssue(path, field.Name,
			"unknown field type %q, field quarantined", field.DeclaredKind))
		return
	}

	switch field.Kind {
	case model.KindSingleChoice, model.KindMultiChoice, model.KindConditionalChoice:
		c.options(path, field)
	case model.KindSteppedRange:
		if len(field.Steps) == 0 {
			c.issues = append(c.issues, warningIssue(path, field.Name, "stepped range has no steps"))
		}
	case model.KindContinuousRange:
		c.continuous(path, field)
	case model.KindConditionalBoolean:
		if len(field.Fields) == 0 {
			c.issues = append(c.issues, warningIssue(path, field.Name, "conditional checkbox reveals no field"))
		}
		c.fields(path, field.Fields)
	case model.KindChart:
		c.states(path, field)
	}
}

func (c *checker) options(path string, field model.Field) {
	if len(field.Options) == 0 {
		c.issues = append(c.issues, warningIssue(path, field.Name, "choice field has no options"))
		return
	}
	values := make(map[string]bool, len(field.Options))
	defaults := 0
	for i, opt := range field.Options {
		optPath := fmt.Sprintf("%s.options[%d]", path, i)
		if values[opt.Value] {
			c.issues = append(c.issues, warningIssue(optPath, field.Name, "duplicate option value %q", opt.Value))
		}
		values[opt.Value] = true
		if opt.Default {
			defaults++
		}
		if len(opt.Fields) > 0 && field.Kind == model.KindMultiChoice {
			c.issues = append(c.issues, warningIssue(optPath, field.Name,
				"nested fields under a multiple choice option are never shown"))
		}
		c.fields(optPath, opt.Fields)
	}
	if defaults > 1 && field.Kind != model.KindMultiChoice {
		c.issues = append(c.issues, warningIssue(path, field.Name, "%d options flagged default, the first one wins", defaults))
	}
}

func (c *checker) continuous(path string, field model.Field) {
	if field.Min != nil && field.Max != nil && *field.Min >= *field.Max {
		c.issues = append(c.issues, warningIssue(path, field.Name, "range min %v is not below max %v", *field.Min, *field.Max))
	}
	if field.Step != nil && *field.Step <= 0 {
		c.issues = append(c.issues, warningIssue(path, field.Name, "range step must be positive, got %v", *field.Step))
	}
}

func (c *checker) states(path string, field model.Field) {
	seen := make(map[string]bool)
	for _, state := range chart.StatesFor(field) {
		if seen[state] {
			c.issues = append(c.issues, warningIssue(path, field.Name, "duplicate chart state %q", state))
		}
		seen[state] = true
	}
	if field.Default == nil {
		return
	}
	if _, err := chart.Parse(field.Default, chart.StatesFor(field)); err != nil {
		c.issues = append(c.issues, warningIssue(path, field.Name, "chart default is unreadable: %v", err))
	}
}
