package vanilla

import (
	"fmt"
	"slices"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-clinicform/pkg/chart"
	"github.com/goliatone/go-clinicform/pkg/export"
	"github.com/goliatone/go-clinicform/pkg/model"
	"github.com/goliatone/go-clinicform/pkg/visibility"
)

// fieldRenderer dispatches each field kind to its control and recurses into
// the fields the current value reveals.
type fieldRenderer struct {
	values   model.AnswerSet
	missing  map[string]bool
	readOnly bool
	format   export.Formatter
	markup   *bluemonday.Policy
	marker   string
	noAnswer string
}

func (r *fieldRenderer) renderFields(fields []model.Field, depth int) string {
	var builder strings.Builder
	for _, field := range fields {
		r.renderField(&builder, field, depth)
	}
	return builder.String()
}

func (r *fieldRenderer) renderField(b *strings.Builder, field model.Field, depth int) {
	if !field.Kind.Known() {
		return
	}
	value := r.values[field.Name]
	missing := r.missing[field.Name]

	classes := []string{string(ClassField)}
	if FullRow(field) {
		classes = append(classes, string(ClassFieldWide))
	}
	if missing {
		classes = append(classes, string(ClassInvalid))
	}
	fmt.Fprintf(b, `<div class="%s" id="%s" data-kind="%s" data-depth="%d">`+"\n",
		strings.Join(classes, " "), attr(FieldAnchor(field.Name)), attr(string(field.Kind)), depth)

	if r.readOnly {
		r.renderValue(b, field, value)
	} else {
		r.renderControl(b, field, value, missing)
	}

	if help := strings.TrimSpace(field.Help); help != "" {
		fmt.Fprintf(b, `<small class="cf-help" id="%s-help">%s</small>`+"\n", attr(FieldAnchor(field.Name)), r.markup.Sanitize(help))
	}
	if missing {
		fmt.Fprintf(b, `<p class="cf-field__error" role="alert">%s</p>`+"\n", attr(r.marker))
	}

	if children := visibility.Revealed(field, value); len(children) > 0 {
		fmt.Fprintf(b, `<div class="%s" id="%s" data-reveal-for="%s">`+"\n", ClassReveal, attr(revealID(field.Name)), attr(field.Name))
		b.WriteString(r.renderFields(children, depth+1))
		b.WriteString("</div>\n")
	}
	b.WriteString("</div>\n")
}

func (r *fieldRenderer) label(field model.Field) string {
	out := r.markup.Sanitize(field.DisplayLabel())
	if field.Required {
		out += ` <span class="cf-required" aria-hidden="true">*</span>`
	}
	return out
}

func (r *fieldRenderer) renderValue(b *strings.Builder, field model.Field, value any) {
	text := r.format.Format(field, value)
	if text == "" {
		text = r.noAnswer
	}
	fmt.Fprintf(b, `<span class="cf-label">%s</span>`+"\n", r.label(field))
	fmt.Fprintf(b, `<div class="cf-value">%s</div>`+"\n", attr(text))
}

func (r *fieldRenderer) renderControl(b *strings.Builder, field model.Field, value any, missing bool) {
	aria := ariaAttrs(field, missing)

	switch field.Kind {
	case model.KindText:
		fmt.Fprintf(b, `<label for="%s">%s</label>`+"\n", attr(controlID(field.Name)), r.label(field))
		current := rawValue(value)
		if field.InputType == model.InputTextarea {
			fmt.Fprintf(b, `<textarea id="%s" name="%s" rows="3"%s%s>%s</textarea>`+"\n",
				attr(controlID(field.Name)), attr(field.Name), placeholder(field), aria, attr(current))
			return
		}
		inputType := field.InputType
		if inputType == "" {
			inputType = model.InputText
		}
		fmt.Fprintf(b, `<input type="%s" id="%s" name="%s" value="%s"%s%s>`+"\n",
			attr(inputType), attr(controlID(field.Name)), attr(field.Name), attr(current), placeholder(field), aria)

	case model.KindSingleChoice, model.KindConditionalChoice:
		selected, _ := value.(string)
		r.openGroup(b, field, aria)
		for _, opt := range field.Options {
			checked := ""
			if opt.Value == selected {
				checked = " checked"
			}
			fmt.Fprintf(b, `<label class="cf-option"><input type="radio" name="%s" value="%s"%s> %s</label>`+"\n",
				attr(field.Name), attr(opt.Value), checked, r.markup.Sanitize(optionLabel(opt)))
		}
		b.WriteString("</fieldset>\n")

	case model.KindMultiChoice:
		selected := export.Strings(value)
		r.openGroup(b, field, aria)
		// an empty marker lets a post with every box unchecked clear the answer
		fmt.Fprintf(b, `<input type="hidden" name="%s" value="">`+"\n", attr(field.Name))
		for _, opt := range field.Options {
			checked := ""
			if slices.Contains(selected, opt.Value) {
				checked = " checked"
			}
			fmt.Fprintf(b, `<label class="cf-option"><input type="checkbox" name="%s" value="%s"%s> %s</label>`+"\n",
				attr(field.Name), attr(opt.Value), checked, r.markup.Sanitize(optionLabel(opt)))
		}
		b.WriteString("</fieldset>\n")

	case model.KindSteppedRange:
		// a select keeps an empty choice, so an untouched control posts ""
		// rather than the first step
		idx, answered := export.StepIndex(value)
		if idx >= len(field.Steps) {
			answered = false
		}
		id := controlID(field.Name)
		fmt.Fprintf(b, `<label for="%s">%s</label>`+"\n", attr(id), r.label(field))
		fmt.Fprintf(b, `<select id="%s" name="%s"%s>`+"\n", attr(id), attr(field.Name), aria)
		blank := ""
		if !answered {
			blank = " selected"
		}
		fmt.Fprintf(b, `<option value=""%s>%s</option>`+"\n", blank, attr(r.noAnswer))
		for i, step := range field.Steps {
			selected := ""
			if answered && i == idx {
				selected = " selected"
			}
			fmt.Fprintf(b, `<option value="%d"%s>%s</option>`+"\n", i, selected, attr(step))
		}
		b.WriteString("</select>\n")

	case model.KindContinuousRange:
		id := controlID(field.Name)
		var bounds strings.Builder
		if field.Min != nil {
			fmt.Fprintf(&bounds, ` min="%s"`, formatFloat(*field.Min))
		}
		if field.Max != nil {
			fmt.Fprintf(&bounds, ` max="%s"`, formatFloat(*field.Max))
		}
		if field.Step != nil {
			fmt.Fprintf(&bounds, ` step="%s"`, formatFloat(*field.Step))
		}
		current := ""
		if !model.IsBlank(value) {
			current = rawValue(value)
		}
		fmt.Fprintf(b, `<label for="%s">%s</label>`+"\n", attr(id), r.label(field))
		fmt.Fprintf(b, `<input type="number" id="%s" name="%s"%s value="%s"%s>`+"\n",
			attr(id), attr(field.Name), bounds.String(), attr(current), aria)
		if field.Unit != "" {
			fmt.Fprintf(b, `<span class="cf-unit">%s</span>`+"\n", attr(field.Unit))
		}

	case model.KindBoolean, model.KindConditionalBoolean:
		on, _ := value.(bool)
		checked := ""
		if on {
			checked = " checked"
		}
		reveals := ""
		if field.Kind == model.KindConditionalBoolean {
			reveals = fmt.Sprintf(` aria-controls="%s"`, attr(revealID(field.Name)))
		}
		fmt.Fprintf(b, `<input type="hidden" name="%s" value="false">`+"\n", attr(field.Name))
		fmt.Fprintf(b, `<label class="cf-toggle"><input type="checkbox" id="%s" name="%s" value="true"%s%s%s> %s</label>`+"\n",
			attr(controlID(field.Name)), attr(field.Name), checked, reveals, aria, r.label(field))

	case model.KindChart:
		r.renderChart(b, field, value, aria)
	}
}

func (r *fieldRenderer) openGroup(b *strings.Builder, field model.Field, aria string) {
	fmt.Fprintf(b, `<fieldset id="%s"%s>`+"\n", attr(controlID(field.Name)), aria)
	fmt.Fprintf(b, `<legend>%s</legend>`+"\n", r.label(field))
}

func (r *fieldRenderer) renderChart(b *strings.Builder, field model.Field, value any, aria string) {
	states := chart.StatesFor(field)
	current, _ := chart.Parse(value, states)

	r.openGroup(b, field, aria)
	fmt.Fprintf(b, `<div class="%s">`+"\n", ClassChart)
	half := len(chart.Sites) / 2
	for row, arch := range []string{"upper", "lower"} {
		fmt.Fprintf(b, `<div class="cf-chart__arch" data-arch="%s">`+"\n", arch)
		for _, site := range chart.Sites[row*half : (row+1)*half] {
			fmt.Fprintf(b, `<label class="cf-chart__site"><span>%s</span><select name="%s">`,
				site, attr(SiteInputName(field.Name, site)))
			for _, state := range states {
				selected := ""
				if current[site] == state {
					selected = " selected"
				}
				fmt.Fprintf(b, `<option value="%s"%s>%s</option>`, attr(state), selected, attr(state))
			}
			b.WriteString("</select></label>\n")
		}
		b.WriteString("</div>\n")
	}
	b.WriteString("</div>\n")
	fmt.Fprintf(b, `<p class="cf-chart__summary">%s</p>`+"\n", attr(chart.FormatGroups(chart.Summarize(current, states))))
	b.WriteString("</fieldset>\n")
}

func ariaAttrs(field model.Field, missing bool) string {
	var out strings.Builder
	if field.Required {
		out.WriteString(` aria-required="true"`)
	}
	if missing {
		out.WriteString(` aria-invalid="true"`)
	}
	if strings.TrimSpace(field.Help) != "" {
		fmt.Fprintf(&out, ` aria-describedby="%s-help"`, attr(FieldAnchor(field.Name)))
	}
	return out.String()
}

func placeholder(field model.Field) string {
	if field.Placeholder == "" {
		return ""
	}
	return fmt.Sprintf(` placeholder="%s"`, attr(field.Placeholder))
}

// rawValue is the value as a form control carries it, without display
// formatting.
func rawValue(value any) string {
	return export.FormatValue(model.Field{Kind: model.KindText}, value)
}

func optionLabel(opt model.Option) string {
	if opt.Label != "" {
		return opt.Label
	}
	return opt.Value
}
