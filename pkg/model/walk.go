package model

// Children returns every nested field declared under f, across all branches,
// in declaration order. Visibility is not considered.
func (f Field) Children() []Field {
	switch f.Kind {
	case KindConditionalBoolean:
		return f.Fields
	case KindConditionalChoice, KindSingleChoice, KindMultiChoice:
		var out []Field
		for _, opt := range f.Options {
			out = append(out, opt.Fields...)
		}
		return out
	default:
		return nil
	}
}

// WalkFunc receives each field with its nesting depth. Returning false skips
// the field's children.
type WalkFunc func(field Field, depth int) bool

// Walk visits fields depth-first through every declared branch.
func Walk(fields []Field, fn WalkFunc) {
	walk(fields, 0, fn)
}

func walk(fields []Field, depth int, fn WalkFunc) {
	for _, field := range fields {
		if !fn(field, depth) {
			continue
		}
		walk(field.Children(), depth+1, fn)
	}
}

// AllFields flattens the schema into declaration order, every branch included.
func (s FormSchema) AllFields() []Field {
	var out []Field
	for _, section := range s.Sections {
		Walk(section.Fields, func(field Field, _ int) bool {
			out = append(out, field)
			return true
		})
	}
	return out
}

// Lookup finds a field by name anywhere in the schema.
func (s FormSchema) Lookup(name string) (Field, bool) {
	for _, field := range s.AllFields() {
		if field.Name == name {
			return field, true
		}
	}
	return Field{}, false
}

// SectionOf returns the title of the section declaring name.
func (s FormSchema) SectionOf(name string) (string, bool) {
	for _, section := range s.Sections {
		found := false
		Walk(section.Fields, func(field Field, _ int) bool {
			if field.Name == name {
				found = true
			}
			return !found
		})
		if found {
			return section.Title, true
		}
	}
	return "", false
}
