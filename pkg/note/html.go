package note

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var htmlPolicy = bluemonday.NewPolicy().AllowElements("p", "br")

// HTML lays a rendered note out as paragraphs for a page. Markup carried in
// from answers is stripped, leaving only the paragraph and line breaks.
func HTML(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	var b strings.Builder
	for _, paragraph := range strings.Split(text, "\n\n") {
		b.WriteString("<p>")
		b.WriteString(strings.Join(strings.Split(paragraph, "\n"), "<br/>"))
		b.WriteString("</p>")
	}
	return htmlPolicy.Sanitize(b.String())
}
