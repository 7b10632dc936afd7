package note

import (
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/flosch/pongo2/v6"

	"github.com/goliatone/go-clinicform/pkg/chart"
)

const defaultJoinSeparator = ", "

// dateLayouts are tried in order by format_date.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

// Helpers returns the helper table exposed to note templates. Dates are
// interpreted in loc; a nil loc means time.Local.
func Helpers(loc *time.Location) map[string]any {
	if loc == nil {
		loc = time.Local
	}
	return map[string]any{
		"equals":       helperEquals,
		"not_equals":   helperNotEquals,
		"exists":       helperExists,
		"uppercase":    helperUppercase,
		"lowercase":    helperLowercase,
		"capitalize":   helperCapitalize,
		"titlecase":    helperTitlecase,
		"default":      helperDefault,
		"format_date":  formatDateIn(loc),
		"pluralize":    helperPluralize,
		"join":         helperJoin,
		"wrap":         helperWrap,
		"add":          helperAdd,
		"subtract":     helperSubtract,
		"contains":     helperContains,
		"format_teeth": helperFormatTeeth,
	}
}

// Equal is strict: values of different types never match, numbers compare
// by value, and composite values never match.
func Equal(a, b any) bool {
	a, b = plain(a), plain(b)
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	af, aNum := toFloat(a)
	bf, bNum := toFloat(b)
	if aNum || bNum {
		return aNum && bNum && af == bf
	}
	switch av := a.(type) {
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	}
	return false
}

func helperEquals(a, b *pongo2.Value) *pongo2.Value {
	return pongo2.AsValue(Equal(a, b))
}

func helperNotEquals(a, b *pongo2.Value) *pongo2.Value {
	return pongo2.AsValue(!Equal(a, b))
}

func present(value any) bool {
	if s, ok := value.(string); ok {
		return strings.TrimSpace(s) != ""
	}
	return truthy(value)
}

func helperExists(v *pongo2.Value) *pongo2.Value {
	return pongo2.AsValue(present(plain(v)))
}

func helperUppercase(v *pongo2.Value) *pongo2.Value {
	s, ok := plain(v).(string)
	if !ok {
		return pongo2.AsValue("")
	}
	return pongo2.AsValue(strings.ToUpper(s))
}

func helperLowercase(v *pongo2.Value) *pongo2.Value {
	s, ok := plain(v).(string)
	if !ok {
		return pongo2.AsValue("")
	}
	return pongo2.AsValue(strings.ToLower(s))
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 {
		return ""
	}
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}

func helperCapitalize(v *pongo2.Value) *pongo2.Value {
	s, ok := plain(v).(string)
	if !ok {
		return pongo2.AsValue("")
	}
	return pongo2.AsValue(capitalize(s))
}

// helperTitlecase capitalizes each word, keeping the original whitespace.
func helperTitlecase(v *pongo2.Value) *pongo2.Value {
	s, ok := plain(v).(string)
	if !ok {
		return pongo2.AsValue("")
	}
	var b strings.Builder
	word := strings.Builder{}
	flush := func() {
		b.WriteString(capitalize(word.String()))
		word.Reset()
	}
	for _, r := range s {
		if unicode.IsSpace(r) {
			flush()
			b.WriteRune(r)
			continue
		}
		word.WriteRune(r)
	}
	flush()
	return pongo2.AsValue(b.String())
}

func helperDefault(v, fallback *pongo2.Value) *pongo2.Value {
	if present(plain(v)) {
		return v
	}
	return fallback
}

func formatDateIn(loc *time.Location) func(*pongo2.Value) *pongo2.Value {
	return func(v *pongo2.Value) *pongo2.Value {
		return pongo2.AsValue(FormatDate(plain(v), loc))
	}
}

// FormatDate renders a stored date as dd/mm/yyyy in loc. Values that do not
// parse are returned unchanged.
func FormatDate(value any, loc *time.Location) any {
	s, ok := value.(string)
	if !ok || strings.TrimSpace(s) == "" {
		return value
	}
	if loc == nil {
		loc = time.Local
	}
	for _, layout := range dateLayouts {
		t, err := time.ParseInLocation(layout, strings.TrimSpace(s), loc)
		if err != nil {
			continue
		}
		return t.In(loc).Format("02/01/2006")
	}
	return s
}

func helperPluralize(n, singular, plural *pongo2.Value) *pongo2.Value {
	if f, ok := toFloat(plain(n)); ok && f == 1 {
		return singular
	}
	return plural
}

func helperJoin(list *pongo2.Value, sep ...*pongo2.Value) *pongo2.Value {
	separator := defaultJoinSeparator
	if len(sep) > 0 {
		if s, ok := plain(sep[0]).(string); ok {
			separator = s
		}
	}
	var items []string
	switch v := plain(list).(type) {
	case []string:
		items = v
	case []any:
		items = make([]string, 0, len(v))
		for _, item := range v {
			items = append(items, stringify(plain(item)))
		}
	default:
		return pongo2.AsValue("")
	}
	return pongo2.AsValue(strings.Join(items, separator))
}

func helperWrap(v, prefix, suffix *pongo2.Value) *pongo2.Value {
	value := plain(v)
	if !truthy(value) {
		return pongo2.AsValue("")
	}
	return pongo2.AsValue(stringify(plain(prefix)) + stringify(value) + stringify(plain(suffix)))
}

// operand reads numbers and numeric strings; anything else counts as 0.
func operand(v *pongo2.Value) float64 {
	value := plain(v)
	if s, ok := value.(string); ok {
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return 0
		}
		return f
	}
	f, _ := toFloat(value)
	return f
}

func helperAdd(a, b *pongo2.Value) *pongo2.Value {
	return pongo2.AsValue(Number(operand(a) + operand(b)))
}

func helperSubtract(a, b *pongo2.Value) *pongo2.Value {
	return pongo2.AsValue(Number(operand(a) - operand(b)))
}

func helperContains(haystack, needle *pongo2.Value) *pongo2.Value {
	s, ok := plain(haystack).(string)
	if !ok {
		return pongo2.AsValue(false)
	}
	return pongo2.AsValue(strings.Contains(s, stringify(plain(needle))))
}

func helperFormatTeeth(v *pongo2.Value) *pongo2.Value {
	return pongo2.AsValue(chart.FormatTeeth(plain(v)))
}
