package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-clinicform/pkg/model"
)

type rawDocument struct {
	Metadata    model.Metadata `json:"metadata"`
	Name        string         `json:"name"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Sections    []rawSection   `json:"sections"`
	Fields      []rawField     `json:"fields"`
}

type rawSection struct {
	Title  string     `json:"title"`
	Fields []rawField `json:"fields"`
}

type rawField struct {
	Type        string      `json:"type"`
	Kind        string      `json:"kind"`
	Name        string      `json:"name"`
	Label       string      `json:"label"`
	Required    bool        `json:"required"`
	Help        string      `json:"help"`
	Description string      `json:"description"`
	Default     any         `json:"default"`
	InputType   string      `json:"inputType"`
	Placeholder string      `json:"placeholder"`
	Options     []rawOption `json:"options"`
	Fields      []rawField  `json:"fields"`
	Steps       []any       `json:"steps"`
	Min         *float64    `json:"min"`
	Max         *float64    `json:"max"`
	Step        *float64    `json:"step"`
	Unit        string      `json:"unit"`
	States      []string    `json:"states"`
}

type rawOption struct {
	Value   any        `json:"value"`
	Label   string     `json:"label"`
	Default bool       `json:"default"`
	Fields  []rawField `json:"fields"`
}

// UnmarshalJSON accepts the shorthand of a bare scalar option, used as both
// value and label.
func (o *rawOption) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] != '{' {
		var scalar any
		if err := json.Unmarshal(trimmed, &scalar); err != nil {
			return err
		}
		label := scalarString(scalar)
		*o = rawOption{Value: scalar, Label: label}
		return nil
	}
	type plain rawOption
	var out plain
	if err := json.Unmarshal(trimmed, &out); err != nil {
		return err
	}
	*o = rawOption(out)
	return nil
}

// decodeTree parses JSON, then YAML, into a JSON-compatible tree.
func decodeTree(data []byte) (any, error) {
	var tree any
	if err := json.Unmarshal(data, &tree); err == nil {
		return tree, nil
	}
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("schema: parse: invalid JSON or YAML: %w", err)
	}
	return jsonCompatible(doc), nil
}

// jsonCompatible rewrites YAML decoding results into the shapes
// encoding/json produces.
func jsonCompatible(value any) any {
	switch v := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, item := range v {
			out[key] = jsonCompatible(item)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(v))
		for key, item := range v {
			out[fmt.Sprint(key)] = jsonCompatible(item)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = jsonCompatible(item)
		}
		return out
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case uint64:
		return float64(v)
	case time.Time:
		return v.Format(time.RFC3339)
	default:
		return v
	}
}

func scalarString(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprint(v)
	}
}

// convert builds the closed model from the raw document.
func convert(raw rawDocument) model.FormSchema {
	meta := raw.Metadata
	if meta.Name == "" {
		meta.Name = firstNonEmpty(raw.Name, raw.Title)
	}
	if meta.Description == "" {
		meta.Description = raw.Description
	}

	out := model.FormSchema{Metadata: meta}
	for _, section := range raw.Sections {
		out.Sections = append(out.Sections, model.Section{
			Title:  section.Title,
			Fields: convertFields(section.Fields),
		})
	}
	if len(raw.Sections) == 0 && len(raw.Fields) > 0 {
		out.Sections = []model.Section{{Title: meta.Name, Fields: convertFields(raw.Fields)}}
	}
	return out
}

func convertFields(in []rawField) []model.Field {
	if len(in) == 0 {
		return nil
	}
	out := make([]model.Field, 0, len(in))
	for _, raw := range in {
		out = append(out, convertField(raw))
	}
	return out
}

func convertField(raw rawField) model.Field {
	declared := firstNonEmpty(raw.Type, raw.Kind)
	kind, inputType, ok := resolveKind(declared, len(raw.Options) > 0)

	field := model.Field{
		Kind:        kind,
		Name:        raw.Name,
		Label:       raw.Label,
		Required:    raw.Required,
		Help:        firstNonEmpty(raw.Help, raw.Description),
		Default:     raw.Default,
		InputType:   firstNonEmpty(raw.InputType, inputType),
		Placeholder: raw.Placeholder,
		Min:         raw.Min,
		Max:         raw.Max,
		Step:        raw.Step,
		Unit:        raw.Unit,
		States:      raw.States,
		Fields:      convertFields(raw.Fields),
	}
	if !ok {
		field.DeclaredKind = declared
	}
	if kind != model.KindText {
		field.InputType = raw.InputType
	}
	for _, opt := range raw.Options {
		field.Options = append(field.Options, model.Option{
			Value:   scalarString(opt.Value),
			Label:   opt.Label,
			Default: opt.Default,
			Fields:  convertFields(opt.Fields),
		})
	}
	for _, step := range raw.Steps {
		field.Steps = append(field.Steps, scalarString(step))
	}
	return field
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if value != "" {
			return value
		}
	}
	return ""
}
