package export

import (
	"github.com/goliatone/go-clinicform/pkg/model"
	"github.com/goliatone/go-clinicform/pkg/validation"
	"github.com/goliatone/go-clinicform/pkg/visibility"
)

// Entry is one visible field with its formatted value.
type Entry struct {
	Name    string `json:"name"`
	Label   string `json:"label"`
	Value   string `json:"value"`
	Depth   int    `json:"depth"`
	Missing bool   `json:"missing,omitempty"`
}

// Section groups the entries of one schema section.
type Section struct {
	Title   string  `json:"title"`
	Entries []Entry `json:"entries"`
}

// Document is the printable rendition of a filled form. Only visible fields
// appear, nested reveal fields keep their depth.
type Document struct {
	Title    string    `json:"title"`
	Sections []Section `json:"sections"`
	Note     string    `json:"note,omitempty"`
}

// Build lists the visible fields of every section with formatted values.
func (f Formatter) Build(schema model.FormSchema, answers model.AnswerSet) Document {
	missing := validation.MissingSet(validation.ComputeMissing(schema, answers))
	doc := Document{Title: PlainText(schema.Metadata.Name)}
	for _, section := range schema.Sections {
		out := Section{Title: PlainText(section.Title)}
		visibility.Walk(section.Fields, answers, func(field model.Field, depth int) {
			out.Entries = append(out.Entries, Entry{
				Name:    field.Name,
				Label:   PlainText(field.DisplayLabel()),
				Value:   f.Format(field, answers[field.Name]),
				Depth:   depth,
				Missing: missing[field.Name],
			})
		})
		doc.Sections = append(doc.Sections, out)
	}
	return doc
}

// Build uses DefaultFormatter.
func Build(schema model.FormSchema, answers model.AnswerSet) Document {
	return DefaultFormatter.Build(schema, answers)
}
