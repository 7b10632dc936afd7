package model

import "reflect"

// AnswerSet is the flat mapping from field name to current value. Values are
// strings, numbers, booleans, string slices (MultiChoice), or the JSON string
// encoding of an anatomical chart.
type AnswerSet map[string]any

// Clone returns a shallow copy; slices are copied so callers can mutate the
// result without touching the receiver.
func (a AnswerSet) Clone() AnswerSet {
	out := make(AnswerSet, len(a))
	for key, value := range a {
		out[key] = cloneValue(value)
	}
	return out
}

// Merge returns a copy of the receiver with every entry of prior applied on
// top. Prior wins key by key.
func (a AnswerSet) Merge(prior map[string]any) AnswerSet {
	out := a.Clone()
	for key, value := range prior {
		out[key] = cloneValue(value)
	}
	return out
}

// String returns the value when it is a string.
func (a AnswerSet) String(name string) (string, bool) {
	s, ok := a[name].(string)
	return s, ok
}

// IsBlank reports whether a value counts as unanswered: nil, the empty
// string, or an empty slice. Zero numbers and false are answers.
func IsBlank(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return v == ""
	case []string:
		return len(v) == 0
	case []any:
		return len(v) == 0
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		return rv.Len() == 0
	case reflect.Pointer, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

func cloneValue(value any) any {
	switch v := value.(type) {
	case []string:
		return append([]string(nil), v...)
	case []any:
		return append([]any(nil), v...)
	default:
		return v
	}
}
