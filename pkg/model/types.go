package model

// FieldKind is the closed set of field variants a schema can declare. The
// loader maps authoring aliases onto these canonical values; anything it cannot
// map is quarantined as KindUnknown.
type FieldKind string

const (
	KindText               FieldKind = "text"
	KindSingleChoice       FieldKind = "select"
	KindMultiChoice        FieldKind = "multiselect"
	KindSteppedRange       FieldKind = "steps"
	KindContinuousRange    FieldKind = "range"
	KindBoolean            FieldKind = "checkbox"
	KindConditionalBoolean FieldKind = "conditional-checkbox"
	KindConditionalChoice  FieldKind = "conditional-select"
	KindChart              FieldKind = "teeth"
	KindUnknown            FieldKind = "unknown"
)

// Known reports whether the kind is one of the canonical variants.
func (k FieldKind) Known() bool {
	switch k {
	case KindText, KindSingleChoice, KindMultiChoice, KindSteppedRange,
		KindContinuousRange, KindBoolean, KindConditionalBoolean,
		KindConditionalChoice, KindChart:
		return true
	default:
		return false
	}
}

// HasOptions reports whether the kind carries an option list.
func (k FieldKind) HasOptions() bool {
	return k == KindSingleChoice || k == KindMultiChoice || k == KindConditionalChoice
}

// Text input subtypes understood by renderers and the default resolver.
const (
	InputText     = "text"
	InputDate     = "date"
	InputTextarea = "textarea"
	InputNumber   = "number"
	InputEmail    = "email"
	InputTel      = "tel"
)

// DefaultNow is the sentinel default for date inputs meaning "today".
const DefaultNow = "now"

// Field is one node of the schema tree. Kind discriminates which of the
// variant attributes are meaningful:
//
//   - Options: SingleChoice, MultiChoice, ConditionalChoice
//   - Fields: ConditionalBoolean (revealed when the value is true)
//   - Steps: SteppedRange (the stored value is the step index)
//   - Min/Max/Step/Unit: ContinuousRange
//   - States: AnatomicalChart state override
//   - InputType/Placeholder: Text
//
// Name must be unique across the whole schema because every answer lives in
// one flat AnswerSet.
type Field struct {
	Kind        FieldKind `json:"type" yaml:"type"`
	Name        string    `json:"name" yaml:"name"`
	Label       string    `json:"label,omitempty" yaml:"label,omitempty"`
	Required    bool      `json:"required,omitempty" yaml:"required,omitempty"`
	Help        string    `json:"help,omitempty" yaml:"help,omitempty"`
	Default     any       `json:"default,omitempty" yaml:"default,omitempty"`
	InputType   string    `json:"inputType,omitempty" yaml:"inputType,omitempty"`
	Placeholder string    `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
	Options     []Option  `json:"options,omitempty" yaml:"options,omitempty"`
	Fields      []Field   `json:"fields,omitempty" yaml:"fields,omitempty"`
	Steps       []string  `json:"steps,omitempty" yaml:"steps,omitempty"`
	Min         *float64  `json:"min,omitempty" yaml:"min,omitempty"`
	Max         *float64  `json:"max,omitempty" yaml:"max,omitempty"`
	Step        *float64  `json:"step,omitempty" yaml:"step,omitempty"`
	Unit        string    `json:"unit,omitempty" yaml:"unit,omitempty"`
	States      []string  `json:"states,omitempty" yaml:"states,omitempty"`

	// DeclaredKind keeps the authored kind string when the loader had to
	// quarantine the field.
	DeclaredKind string `json:"-" yaml:"-"`
}

// Option is a selectable value of a choice field. Fields become part of the
// visible tree only while the option is selected.
type Option struct {
	Value   string  `json:"value" yaml:"value"`
	Label   string  `json:"label,omitempty" yaml:"label,omitempty"`
	Default bool    `json:"default,omitempty" yaml:"default,omitempty"`
	Fields  []Field `json:"fields,omitempty" yaml:"fields,omitempty"`
}

// Section groups fields under a title.
type Section struct {
	Title  string  `json:"title" yaml:"title"`
	Fields []Field `json:"fields" yaml:"fields"`
}

// Metadata describes the form itself.
type Metadata struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// FormSchema is the root of a declarative form.
type FormSchema struct {
	Metadata Metadata  `json:"metadata" yaml:"metadata"`
	Sections []Section `json:"sections" yaml:"sections"`
}

// DisplayLabel returns the label, falling back to the name.
func (f Field) DisplayLabel() string {
	if f.Label != "" {
		return f.Label
	}
	return f.Name
}

// IsDate reports whether a text field collects a calendar date.
func (f Field) IsDate() bool {
	return f.Kind == KindText && f.InputType == InputDate
}

// DefaultOption returns the first option flagged as default.
func (f Field) DefaultOption() (Option, bool) {
	for _, opt := range f.Options {
		if opt.Default {
			return opt, true
		}
	}
	return Option{}, false
}

// Option looks up an option by value.
func (f Field) Option(value string) (Option, bool) {
	for _, opt := range f.Options {
		if opt.Value == value {
			return opt, true
		}
	}
	return Option{}, false
}

// HasNestedOptions reports whether any option carries nested fields.
func (f Field) HasNestedOptions() bool {
	for _, opt := range f.Options {
		if len(opt.Fields) > 0 {
			return true
		}
	}
	return false
}

// OptionLabel returns the label of the option matching value, or value
// itself when no option matches.
func (f Field) OptionLabel(value string) string {
	if opt, ok := f.Option(value); ok && opt.Label != "" {
		return opt.Label
	}
	return value
}
