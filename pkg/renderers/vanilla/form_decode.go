package vanilla

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/goliatone/go-clinicform/pkg/chart"
	"github.com/goliatone/go-clinicform/pkg/model"
)

// DecodeForm reads an HTML form post back into answers. Only fields present
// in the post are returned, so branches that were hidden when the form was
// drawn keep their stored values once merged. Boolean and multi-choice
// controls post a marker input, which lets an unchecked box reach the
// decoder.
func DecodeForm(schema model.FormSchema, form url.Values) model.AnswerSet {
	out := model.AnswerSet{}
	for _, field := range schema.AllFields() {
		switch field.Kind {
		case model.KindChart:
			if c, ok := decodeChart(field, form); ok {
				out[field.Name] = c.Encode()
			}
			continue
		case model.KindUnknown:
			continue
		}

		values, ok := form[field.Name]
		if !ok {
			continue
		}
		last := ""
		if len(values) > 0 {
			last = values[len(values)-1]
		}

		switch field.Kind {
		case model.KindText:
			if field.InputType == model.InputNumber {
				if f, err := strconv.ParseFloat(strings.TrimSpace(last), 64); err == nil {
					out[field.Name] = f
					continue
				}
			}
			out[field.Name] = last

		case model.KindSingleChoice, model.KindConditionalChoice:
			out[field.Name] = last

		case model.KindMultiChoice:
			selected := make([]string, 0, len(values))
			for _, v := range values {
				if v != "" {
					selected = append(selected, v)
				}
			}
			out[field.Name] = selected

		case model.KindBoolean, model.KindConditionalBoolean:
			out[field.Name] = last == "true" || last == "on"

		case model.KindSteppedRange, model.KindContinuousRange:
			// the empty choice clears the answer
			out[field.Name] = nil
			if text := strings.TrimSpace(last); text != "" {
				if f, err := strconv.ParseFloat(text, 64); err == nil {
					out[field.Name] = f
				}
			}
		}
	}
	return out
}

func decodeChart(field model.Field, form url.Values) (chart.Chart, bool) {
	states := chart.StatesFor(field)
	c := chart.Baseline(states)
	found := false
	for _, site := range chart.Sites {
		state := form.Get(SiteInputName(field.Name, site))
		if state == "" {
			continue
		}
		found = true
		// states outside the list keep the baseline
		_ = c.Set(site, state, states)
	}
	return c, found
}
