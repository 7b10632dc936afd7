// Package validation reports required fields that are visible but still
// unanswered. Missing fields are a normal form state, never an error.
package validation

import (
	"github.com/goliatone/go-clinicform/pkg/model"
	"github.com/goliatone/go-clinicform/pkg/visibility"
)

// Missing describes one unanswered required field for the aggregate panel.
type Missing struct {
	Name    string `json:"name"`
	Label   string `json:"label"`
	Section string `json:"section"`
	Depth   int    `json:"depth"`
}

// ComputeMissing returns the names of visible required fields whose value is
// blank, in depth-first schema order. Hidden branches are never reported.
func ComputeMissing(schema model.FormSchema, answers model.AnswerSet) []string {
	report := Report(schema, answers)
	if len(report) == 0 {
		return []string{}
	}
	names := make([]string, 0, len(report))
	for _, item := range report {
		names = append(names, item.Name)
	}
	return names
}

// Report is ComputeMissing with the label and section of each field.
func Report(schema model.FormSchema, answers model.AnswerSet) []Missing {
	var out []Missing
	visibility.WalkSchema(schema, answers, func(section model.Section, field model.Field, depth int) {
		if !field.Required || !model.IsBlank(answers[field.Name]) {
			return
		}
		out = append(out, Missing{
			Name:    field.Name,
			Label:   field.DisplayLabel(),
			Section: section.Title,
			Depth:   depth,
		})
	})
	return out
}

// Complete reports whether no visible required field is blank.
func Complete(schema model.FormSchema, answers model.AnswerSet) bool {
	return len(Report(schema, answers)) == 0
}

// MissingSet indexes a missing list for per-field lookups by renderers.
func MissingSet(names []string) map[string]bool {
	out := make(map[string]bool, len(names))
	for _, name := range names {
		out[name] = true
	}
	return out
}
