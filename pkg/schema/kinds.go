package schema

import (
	"strings"

	"github.com/goliatone/go-clinicform/pkg/model"
)

// kindAliases maps authored type names onto canonical kinds. Text aliases
// also carry the input type they imply.
var kindAliases = map[string]struct {
	kind      model.FieldKind
	inputType string
}{
	"text":                 {model.KindText, model.InputText},
	"string":               {model.KindText, model.InputText},
	"date":                 {model.KindText, model.InputDate},
	"textarea":             {model.KindText, model.InputTextarea},
	"number":               {model.KindText, model.InputNumber},
	"email":                {model.KindText, model.InputEmail},
	"tel":                  {model.KindText, model.InputTel},
	"select":               {model.KindSingleChoice, ""},
	"radio":                {model.KindSingleChoice, ""},
	"single-choice":        {model.KindSingleChoice, ""},
	"multiselect":          {model.KindMultiChoice, ""},
	"multi-select":         {model.KindMultiChoice, ""},
	"multi-choice":         {model.KindMultiChoice, ""},
	"checkboxes":           {model.KindMultiChoice, ""},
	"steps":                {model.KindSteppedRange, ""},
	"stepped-range":        {model.KindSteppedRange, ""},
	"range":                {model.KindContinuousRange, ""},
	"slider":               {model.KindContinuousRange, ""},
	"toggle":               {model.KindBoolean, ""},
	"boolean":              {model.KindBoolean, ""},
	"switch":               {model.KindBoolean, ""},
	"conditional-checkbox": {model.KindConditionalBoolean, ""},
	"conditional-boolean":  {model.KindConditionalBoolean, ""},
	"conditional-select":   {model.KindConditionalChoice, ""},
	"conditional-radio":    {model.KindConditionalChoice, ""},
	"conditional-choice":   {model.KindConditionalChoice, ""},
	"teeth":                {model.KindChart, ""},
	"chart":                {model.KindChart, ""},
	"dental-chart":         {model.KindChart, ""},
}

// resolveKind maps an authored type onto a canonical kind. "checkbox" is a
// MultiChoice when it lists options and a Boolean otherwise. ok is false for
// names the loader does not know.
func resolveKind(declared string, hasOptions bool) (kind model.FieldKind, inputType string, ok bool) {
	name := strings.ToLower(strings.TrimSpace(declared))
	if name == "checkbox" {
		if hasOptions {
			return model.KindMultiChoice, "", true
		}
		return model.KindBoolean, "", true
	}
	alias, ok := kindAliases[name]
	if !ok {
		return model.KindUnknown, "", false
	}
	return alias.kind, alias.inputType, true
}
