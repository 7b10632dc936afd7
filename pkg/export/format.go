// Package export formats answers for people: option labels instead of
// values, step labels instead of indexes, Oui/Non for booleans, chart
// summaries. The HTML read-only view, the terminal summary, and document
// sinks share these rules.
package export

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/goliatone/go-clinicform/pkg/chart"
	"github.com/goliatone/go-clinicform/pkg/model"
	"github.com/goliatone/go-clinicform/pkg/note"
	"github.com/goliatone/go-clinicform/pkg/render"
)

// Formatter turns stored values into display strings.
type Formatter struct {
	Yes      string
	No       string
	Location *time.Location
}

// NewFormatter resolves the boolean words through t for locale.
func NewFormatter(t render.Translator, locale string, loc *time.Location) Formatter {
	return Formatter{
		Yes:      render.Translate(t, locale, render.KeyYes),
		No:       render.Translate(t, locale, render.KeyNo),
		Location: loc,
	}
}

// DefaultFormatter uses the default French words and local time.
var DefaultFormatter = NewFormatter(nil, render.DefaultLocale, nil)

// FormatValue formats value with DefaultFormatter.
func FormatValue(field model.Field, value any) string {
	return DefaultFormatter.Format(field, value)
}

// Format returns the display string of value for field. Blank values, and
// text made only of whitespace, format as "".
func (f Formatter) Format(field model.Field, value any) string {
	if model.IsBlank(value) {
		return ""
	}
	if text, ok := value.(string); ok && strings.TrimSpace(text) == "" {
		return ""
	}
	switch field.Kind {
	case model.KindText:
		if field.IsDate() {
			return scalar(note.FormatDate(value, f.Location))
		}
		return scalar(value)

	case model.KindSingleChoice, model.KindConditionalChoice:
		return field.OptionLabel(scalar(value))

	case model.KindMultiChoice:
		values := Strings(value)
		labels := make([]string, 0, len(values))
		for _, v := range values {
			labels = append(labels, field.OptionLabel(v))
		}
		return strings.Join(labels, ", ")

	case model.KindSteppedRange:
		if idx, ok := StepIndex(value); ok && idx < len(field.Steps) {
			return field.Steps[idx]
		}
		return scalar(value)

	case model.KindContinuousRange:
		out := scalar(value)
		if field.Unit != "" {
			out += " " + field.Unit
		}
		return out

	case model.KindBoolean, model.KindConditionalBoolean:
		if on, ok := value.(bool); ok {
			if on {
				return f.Yes
			}
			return f.No
		}
		return scalar(value)

	case model.KindChart:
		return chart.FormatTeeth(value)

	default:
		return scalar(value)
	}
}

// Strings reads a MultiChoice value: a string slice, a JSON-decoded slice,
// or a single string.
func Strings(value any) []string {
	switch v := value.(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			out = append(out, scalar(item))
		}
		return out
	case string:
		if v == "" {
			return nil
		}
		return []string{v}
	default:
		return nil
	}
}

// StepIndex reads a SteppedRange value, stored as the step index.
func StepIndex(value any) (int, bool) {
	var f float64
	switch v := value.(type) {
	case float64:
		f = v
	case int:
		f = float64(v)
	case int64:
		f = float64(v)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if f < 0 || f != math.Trunc(f) {
		return 0, false
	}
	return int(f), true
}

func scalar(value any) string {
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
