package export

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/goliatone/go-clinicform/pkg/model"
	"github.com/goliatone/go-clinicform/pkg/render"
)

// Sink produces a printable rendition of a filled form. A PDF writer is a
// Sink; TextSink is the built-in one.
type Sink interface {
	Export(ctx context.Context, schema model.FormSchema, answers model.AnswerSet) ([]byte, error)
}

// DefaultLinesPerPage is the page height of TextSink.
const DefaultLinesPerPage = 60

// pageBreak separates pages in text output.
const pageBreak = "\f"

// TextSink lays a Document out as paginated plain text. It also serves as
// the "text" render.Renderer.
type TextSink struct {
	LinesPerPage int
	Formatter    *Formatter
	// Empty replaces blank values; defaults to the translated "no answer".
	Empty string
}

var (
	_ render.Renderer = TextSink{}
	_ Sink            = TextSink{}
)

func (TextSink) Name() string { return "text" }
func (TextSink) ContentType() string { return "text/plain; charset=utf-8" }

// Render formats options.Values for schema and lays the result out.
func (s TextSink) Render(ctx context.Context, schema model.FormSchema, options render.RenderOptions) ([]byte, error) {
	f := NewFormatter(options.Translator, options.Locale, nil)
	doc := f.Build(schema, options.Values)
	doc.Note = options.Note
	if s.Empty == "" {
		s.Empty = options.T(render.KeyNoAnswer)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.Layout(doc)
}

// Export formats answers and lays them out.
func (s TextSink) Export(ctx context.Context, schema model.FormSchema, answers model.AnswerSet) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f := DefaultFormatter
	if s.Formatter != nil {
		f = *s.Formatter
	}
	return s.Layout(f.Build(schema, answers))
}

// Layout lays doc out. A section header keeps at least one entry on its
// page; pages end with a "Page n/N" footer.
func (s TextSink) Layout(doc Document) ([]byte, error) {
	perPage := s.LinesPerPage
	if perPage <= 0 {
		perPage = DefaultLinesPerPage
	}
	// one line is kept for the footer
	body := perPage - 1
	if body < 4 {
		return nil, fmt.Errorf("export: page of %d lines is too short", perPage)
	}
	empty := s.Empty
	if empty == "" {
		empty = render.Translate(nil, render.DefaultLocale, render.KeyNoAnswer)
	}

	var pages [][]string
	var page []string
	flush := func() {
		if len(page) > 0 {
			pages = append(pages, page)
			page = nil
		}
	}
	push := func(line string) {
		if len(page) == body {
			flush()
		}
		page = append(page, line)
	}

	if doc.Title != "" {
		push(doc.Title)
		push(strings.Repeat("=", len([]rune(doc.Title))))
	}
	for _, section := range doc.Sections {
		if len(page) > 0 && body-len(page) < 4 {
			flush()
		}
		if len(page) > 0 {
			push("")
		}
		push(section.Title)
		push(strings.Repeat("-", len([]rune(section.Title))))
		for _, entry := range section.Entries {
			value := entry.Value
			if value == "" {
				value = empty
			}
			push(strings.Repeat("  ", entry.Depth) + entry.Label + " : " + value)
		}
	}
	if doc.Note != "" {
		if len(page) > 0 {
			push("")
		}
		for _, line := range strings.Split(doc.Note, "\n") {
			push(line)
		}
	}
	flush()

	var buf bytes.Buffer
	for i, lines := range pages {
		if i > 0 {
			buf.WriteString(pageBreak)
		}
		for _, line := range lines {
			buf.WriteString(line)
			buf.WriteByte('\n')
		}
		fmt.Fprintf(&buf, "Page %d/%d\n", i+1, len(pages))
	}
	return buf.Bytes(), nil
}
