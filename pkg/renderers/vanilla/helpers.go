package vanilla

import (
	"html"
	"strconv"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-clinicform/pkg/model"
)

// wideChoiceOptions is the option count above which a single choice takes a
// full grid row.
const wideChoiceOptions = 3

// FieldAnchor is the id of the wrapper element of a field. The missing panel
// links to it.
func FieldAnchor(name string) string {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return ""
	}
	return "cf-" + trimmed
}

func controlID(name string) string {
	return FieldAnchor(name) + "-input"
}

func revealID(name string) string {
	return FieldAnchor(name) + "-reveal"
}

// SiteInputName is the form key of one chart site, e.g. "schema[11]".
func SiteInputName(field, site string) string {
	return field + "[" + site + "]"
}

// FullRow reports whether a field spans the whole grid row.
func FullRow(field model.Field) bool {
	switch field.Kind {
	case model.KindConditionalChoice:
		return field.HasNestedOptions()
	case model.KindSingleChoice:
		return len(field.Options) > wideChoiceOptions
	case model.KindText:
		return field.InputType == model.InputTextarea
	case model.KindChart:
		return true
	default:
		return false
	}
}

// markupPolicy keeps the inline tags schema authors use in labels and help.
func markupPolicy() *bluemonday.Policy {
	return bluemonday.NewPolicy().AllowElements("b", "strong", "i", "em", "u", "sub", "sup", "br", "small")
}

func attr(value string) string {
	return html.EscapeString(value)
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
