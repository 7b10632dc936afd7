package note

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/flosch/pongo2/v6"

	"github.com/goliatone/go-clinicform/pkg/model"
)

// Number wraps numeric answers so they print without trailing zeros.
type Number float64

func (n Number) String() string {
	return formatNumber(float64(n))
}

// Bool wraps boolean answers so they print as "true"/"false".
type Bool bool

func (b Bool) String() string {
	return strconv.FormatBool(bool(b))
}

// List wraps MultiChoice answers so they print comma separated.
type List []string

func (l List) String() string {
	return strings.Join(l, ",")
}

// Context converts answers into template data. Every answer whose name is a
// valid identifier is exposed directly; the complete set is also available
// as "answers". Names shadowing a helper are only reachable through
// "answers".
func Context(answers model.AnswerSet, helpers map[string]any) map[string]any {
	all := make(map[string]any, len(answers))
	out := make(map[string]any, len(answers)+1)
	for key, value := range answers {
		wrapped := wrap(value)
		all[key] = wrapped
		if !isIdentifier(key) {
			continue
		}
		if _, taken := helpers[key]; taken {
			continue
		}
		out[key] = wrapped
	}
	if _, taken := out["answers"]; !taken {
		out["answers"] = all
	}
	return out
}

func wrap(value any) any {
	switch v := value.(type) {
	case float64:
		return Number(v)
	case float32:
		return Number(v)
	case int:
		return Number(v)
	case int64:
		return Number(v)
	case int32:
		return Number(v)
	case bool:
		return Bool(v)
	case []string:
		return List(append([]string(nil), v...))
	case []any:
		out := make(List, 0, len(v))
		for _, item := range v {
			out = append(out, stringify(item))
		}
		return out
	default:
		return value
	}
}

// plain undoes wrap and unpacks pongo2 values so helpers see Go values.
func plain(value any) any {
	if pv, ok := value.(*pongo2.Value); ok {
		if pv == nil {
			return nil
		}
		value = pv.Interface()
	}
	switch v := value.(type) {
	case Number:
		return float64(v)
	case Bool:
		return bool(v)
	case List:
		return []string(v)
	default:
		return value
	}
}

// toFloat reports the numeric value of numeric types only.
func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case int32:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint64:
		return float64(v), true
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	}
	return 0, false
}

// truthy follows the loose truthiness of the authoring language of the
// templates: empty strings, zero, false, and nil are false; any slice or map
// is true.
func truthy(value any) bool {
	switch v := value.(type) {
	case nil:
		return false
	case string:
		return v != ""
	case bool:
		return v
	}
	if f, ok := toFloat(value); ok {
		return f != 0 && f == f
	}
	return true
}

func stringify(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case []string:
		return strings.Join(v, ",")
	}
	if f, ok := toFloat(value); ok {
		return formatNumber(f)
	}
	return fmt.Sprint(value)
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func isIdentifier(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}
