// Package visibility decides which nested fields of a schema are revealed by
// the current answers. Validation, rendering, and export share these rules so
// that a field is checked exactly when it is shown.
package visibility

import "github.com/goliatone/go-clinicform/pkg/model"

// Revealed returns the nested fields of field that are visible when the
// field holds value.
//
// A conditional checkbox reveals its fields only for the boolean true. A
// single or conditional choice reveals the fields of the selected option and
// nothing else. Other kinds never reveal children.
func Revealed(field model.Field, value any) []model.Field {
	switch field.Kind {
	case model.KindConditionalBoolean:
		if on, ok := value.(bool); ok && on {
			return field.Fields
		}
	case model.KindConditionalChoice, model.KindSingleChoice:
		selected, ok := value.(string)
		if !ok {
			return nil
		}
		if opt, ok := field.Option(selected); ok {
			return opt.Fields
		}
	}
	return nil
}

// VisitFunc receives each visible field with its nesting depth.
type VisitFunc func(field model.Field, depth int)

// Walk visits the visible fields depth-first in declaration order.
// Quarantined fields are skipped together with anything below them.
func Walk(fields []model.Field, answers model.AnswerSet, fn VisitFunc) {
	walk(fields, answers, 0, fn)
}

func walk(fields []model.Field, answers model.AnswerSet, depth int, fn VisitFunc) {
	for _, field := range fields {
		if !field.Kind.Known() {
			continue
		}
		fn(field, depth)
		if children := Revealed(field, answers[field.Name]); len(children) > 0 {
			walk(children, answers, depth+1, fn)
		}
	}
}

// WalkSchema visits the visible fields of every section in order.
func WalkSchema(schema model.FormSchema, answers model.AnswerSet, fn func(section model.Section, field model.Field, depth int)) {
	for _, section := range schema.Sections {
		Walk(section.Fields, answers, func(field model.Field, depth int) {
			fn(section, field, depth)
		})
	}
}

// Visible returns the set of field names currently visible.
func Visible(schema model.FormSchema, answers model.AnswerSet) map[string]bool {
	out := make(map[string]bool)
	WalkSchema(schema, answers, func(_ model.Section, field model.Field, _ int) {
		out[field.Name] = true
	})
	return out
}
