package render

import (
	"github.com/goliatone/go-clinicform/pkg/model"
	"github.com/goliatone/go-clinicform/pkg/validation"
)

// RenderOptions carry the per-request state renderers draw: the answers, the
// missing set, and page chrome.
type RenderOptions struct {
	// Values are the current answers. Renderers never mutate them.
	Values model.AnswerSet
	// Missing lists visible required fields still blank, in schema order.
	Missing []string
	// ReadOnly renders values without editable controls.
	ReadOnly bool
	// Action and Method describe the submission target of HTML forms.
	Action string
	Method string
	// Hidden fields are emitted as hidden inputs in sorted order.
	Hidden map[string]string
	// Note is the current generated note, shown next to the form.
	Note string
	// Locale and Translator resolve chrome strings; see Translate.
	Locale     string
	Translator Translator
}

// MissingSet indexes Missing for per-field lookups.
func (o RenderOptions) MissingSet() map[string]bool {
	return validation.MissingSet(o.Missing)
}

// T resolves a chrome string for the options' locale.
func (o RenderOptions) T(key string, args ...any) string {
	return Translate(o.Translator, o.Locale, key, args...)
}
