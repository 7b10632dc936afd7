// Package tui fills a form interactively in a terminal. Each visible field
// becomes one prompt; answering a conditional field prompts its revealed
// fields right away, and a final pass offers to complete what is still
// missing.
package tui

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/goliatone/go-clinicform/pkg/chart"
	"github.com/goliatone/go-clinicform/pkg/defaults"
	"github.com/goliatone/go-clinicform/pkg/export"
	"github.com/goliatone/go-clinicform/pkg/model"
	"github.com/goliatone/go-clinicform/pkg/render"
	"github.com/goliatone/go-clinicform/pkg/session"
	"github.com/goliatone/go-clinicform/pkg/visibility"
)

// displayDateLayout is how dates are typed and shown in the terminal.
const displayDateLayout = "02/01/2006"

// Renderer drives a PromptDriver over a session.
type Renderer struct {
	driver       PromptDriver
	outputFormat OutputFormat
	theme        Theme
	translator   render.Translator
	locale       string
	loc          *time.Location
	logger       zerolog.Logger
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs the terminal renderer. Without WithPromptDriver it prompts
// on the process terminal.
func New(options ...Option) *Renderer {
	r := &Renderer{
		outputFormat: OutputFormatJSON,
		theme:        DefaultTheme,
		locale:       render.DefaultLocale,
		loc:          time.Local,
		logger:       zerolog.Nop(),
	}
	for _, opt := range options {
		if opt != nil {
			opt(r)
		}
	}
	if r.driver == nil {
		r.driver = NewSurveyDriver(nil)
	}
	return r
}

func (r *Renderer) Name() string {
	return "tui"
}

func (r *Renderer) ContentType() string {
	if r.outputFormat == OutputFormatPrettyText {
		return "text/plain; charset=utf-8"
	}
	return "application/json"
}

// Render fills schema starting from options.Values and returns the result in
// the configured output format. Read-only options skip the prompts.
func (r *Renderer) Render(ctx context.Context, schema model.FormSchema, options render.RenderOptions) ([]byte, error) {
	if options.Translator != nil || options.Locale != "" {
		clone := *r
		if options.Translator != nil {
			clone.translator = options.Translator
		}
		if options.Locale != "" {
			clone.locale = options.Locale
		}
		r = &clone
	}

	s, err := session.New(schema,
		session.WithPrior(options.Values),
		session.WithReadOnly(options.ReadOnly),
		session.WithLocation(r.loc),
		session.WithLogger(r.logger),
	)
	if err != nil {
		return nil, err
	}
	if !options.ReadOnly {
		if err := r.Fill(ctx, s); err != nil {
			return nil, err
		}
	}
	return r.serialize(ctx, s, options)
}

// Fill prompts every visible field of s in schema order, then offers to
// complete the missing ones until the user declines or nothing is missing.
func (r *Renderer) Fill(ctx context.Context, s *session.Session) error {
	if s.ReadOnly() {
		return session.ErrReadOnly
	}
	if r.driver == nil {
		return ErrNoDriver
	}
	schema := s.Schema()
	for _, section := range schema.Sections {
		if err := r.info(ctx, r.theme.SectionPrefix+r.text(section.Title)); err != nil {
			return err
		}
		if err := r.promptFields(ctx, s, section.Fields); err != nil {
			return err
		}
	}

	for !s.Complete() {
		missing := s.Missing()
		again, err := r.driver.Confirm(ctx, ConfirmConfig{
			Message: r.t(render.KeyFillMissing, len(missing)),
			Default: true,
		})
		if err != nil {
			return err
		}
		if !again {
			return nil
		}
		for _, name := range missing {
			field, ok := schema.Lookup(name)
			if !ok || !s.Visible(name) {
				continue
			}
			if err := r.promptField(ctx, s, field); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *Renderer) promptFields(ctx context.Context, s *session.Session, fields []model.Field) error {
	for _, field := range fields {
		if !field.Kind.Known() {
			continue
		}
		if err := r.promptField(ctx, s, field); err != nil {
			return err
		}
	}
	return nil
}

// promptField asks for one field, stores the answer, and recurses into the
// fields the answer reveals.
func (r *Renderer) promptField(ctx context.Context, s *session.Session, field model.Field) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	current, _ := s.Value(field.Name)

	var (
		value any
		err   error
	)
	switch field.Kind {
	case model.KindText:
		value, err = r.promptText(ctx, field, current)
	case model.KindSingleChoice, model.KindConditionalChoice:
		value, err = r.promptChoice(ctx, field, current)
	case model.KindMultiChoice:
		value, err = r.promptMulti(ctx, field, current)
	case model.KindSteppedRange:
		value, err = r.promptSteps(ctx, field, current)
	case model.KindContinuousRange:
		value, err = r.promptRange(ctx, field, current)
	case model.KindBoolean, model.KindConditionalBoolean:
		value, err = r.promptBoolean(ctx, field, current)
	case model.KindChart:
		return r.promptChart(ctx, s, field)
	default:
		return nil
	}
	if err != nil {
		return err
	}
	if err := s.Set(field.Name, value); err != nil {
		return err
	}
	if field.Required && model.IsBlank(value) {
		if err := r.info(ctx, r.theme.ErrorPrefix+r.t(render.KeyMissingMarker)); err != nil {
			return err
		}
	}
	return r.promptFields(ctx, s, visibility.Revealed(field, value))
}

func (r *Renderer) promptText(ctx context.Context, field model.Field, current any) (any, error) {
	def := export.FormatValue(model.Field{Kind: model.KindText}, current)

	if field.InputType == model.InputTextarea {
		out, err := r.driver.TextArea(ctx, TextAreaConfig{
			Message: r.message(field),
			Default: def,
			Help:    r.text(field.Help),
		})
		if err != nil {
			return nil, err
		}
		return strings.TrimSpace(out), nil
	}

	var parse func(string) (any, error)
	switch {
	case field.IsDate():
		if t, err := time.Parse(defaults.DateLayout, def); err == nil {
			def = t.Format(displayDateLayout)
		}
		parse = r.parseDate
	case field.InputType == model.InputNumber:
		parse = func(raw string) (any, error) {
			f, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", "."), 64)
			if err != nil {
				return nil, errors.New(r.t(render.KeyInvalidNumber))
			}
			return f, nil
		}
	default:
		parse = func(raw string) (any, error) { return raw, nil }
	}

	return r.ask(ctx, InputConfig{
		Message: r.message(field),
		Default: def,
		Help:    r.text(field.Help),
	}, parse)
}

func (r *Renderer) parseDate(raw string) (any, error) {
	for _, layout := range []string{displayDateLayout, defaults.DateLayout} {
		if t, err := time.ParseInLocation(layout, raw, r.loc); err == nil {
			return t.Format(defaults.DateLayout), nil
		}
	}
	return nil, errors.New(r.t(render.KeyInvalidDate))
}

// ask repeats an input prompt until parse accepts the answer. A blank answer
// is always accepted and stored as blank.
func (r *Renderer) ask(ctx context.Context, cfg InputConfig, parse func(string) (any, error)) (any, error) {
	for {
		raw, err := r.driver.Input(ctx, cfg)
		if err != nil {
			return nil, err
		}
		raw = strings.TrimSpace(raw)
		if raw == "" {
			return "", nil
		}
		value, err := parse(raw)
		if err == nil {
			return value, nil
		}
		if err := r.info(ctx, r.theme.ErrorPrefix+err.Error()); err != nil {
			return nil, err
		}
	}
}

func (r *Renderer) promptChoice(ctx context.Context, field model.Field, current any) (any, error) {
	labels := make([]string, len(field.Options))
	def := 0
	selected, _ := current.(string)
	for i, opt := range field.Options {
		labels[i] = r.text(field.OptionLabel(opt.Value))
		if opt.Value == selected {
			def = i
		}
	}
	idx, err := r.driver.Select(ctx, SelectConfig{
		Message:      r.message(field),
		Options:      labels,
		DefaultIndex: def,
		Help:         r.text(field.Help),
	})
	if err != nil {
		return nil, err
	}
	if idx < 0 || idx >= len(field.Options) {
		return "", nil
	}
	return field.Options[idx].Value, nil
}

func (r *Renderer) promptMulti(ctx context.Context, field model.Field, current any) (any, error) {
	labels := make([]string, len(field.Options))
	checked := make(map[string]bool)
	for _, v := range export.Strings(current) {
		checked[v] = true
	}
	var preset []int
	for i, opt := range field.Options {
		labels[i] = r.text(field.OptionLabel(opt.Value))
		if checked[opt.Value] {
			preset = append(preset, i)
		}
	}
	indices, err := r.driver.MultiSelect(ctx, SelectConfig{
		Message:  r.message(field),
		Options:  labels,
		Defaults: preset,
		Help:     r.text(field.Help),
	})
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(indices))
	for _, idx := range indices {
		if idx >= 0 && idx < len(field.Options) {
			out = append(out, field.Options[idx].Value)
		}
	}
	return out, nil
}

func (r *Renderer) promptSteps(ctx context.Context, field model.Field, current any) (any, error) {
	labels := make([]string, len(field.Steps))
	for i, step := range field.Steps {
		labels[i] = r.text(step)
	}
	def, ok := export.StepIndex(current)
	if !ok || def >= len(labels) {
		def = 0
	}
	idx, err := r.driver.Select(ctx, SelectConfig{
		Message:      r.message(field),
		Options:      labels,
		DefaultIndex: def,
		Help:         r.text(field.Help),
	})
	if err != nil {
		return nil, err
	}
	if idx < 0 || idx >= len(field.Steps) {
		return nil, nil
	}
	return float64(idx), nil
}

func (r *Renderer) promptRange(ctx context.Context, field model.Field, current any) (any, error) {
	message := r.message(field)
	if field.Min != nil && field.Max != nil {
		message = fmt.Sprintf("%s (%s-%s%s)", message, formatFloat(*field.Min), formatFloat(*field.Max), unitSuffix(field.Unit))
	}
	def := ""
	if f, ok := current.(float64); ok {
		def = formatFloat(f)
	}
	value, err := r.ask(ctx, InputConfig{
		Message: message,
		Default: def,
		Help:    r.text(field.Help),
	}, func(raw string) (any, error) {
		f, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", "."), 64)
		if err != nil {
			return nil, errors.New(r.t(render.KeyInvalidNumber))
		}
		if (field.Min != nil && f < *field.Min) || (field.Max != nil && f > *field.Max) {
			return nil, errors.New(r.t(render.KeyOutOfRange, bound(field.Min), bound(field.Max)))
		}
		return f, nil
	})
	if err != nil {
		return nil, err
	}
	if value == "" {
		return nil, nil
	}
	return value, nil
}

func (r *Renderer) promptBoolean(ctx context.Context, field model.Field, current any) (any, error) {
	def, _ := current.(bool)
	return r.driver.Confirm(ctx, ConfirmConfig{
		Message: r.message(field),
		Default: def,
		Help:    r.text(field.Help),
	})
}

// promptChart shows the chart summary and edits one site at a time until
// the user stops.
func (r *Renderer) promptChart(ctx context.Context, s *session.Session, field model.Field) error {
	states := chart.StatesFor(field)
	for {
		stored, _ := s.Value(field.Name)
		current, _ := chart.Parse(stored, states)
		summary := chart.FormatGroups(chart.Summarize(current, states))
		if err := r.info(ctx, fmt.Sprintf("%s%s : %s", r.theme.InfoPrefix, r.text(field.DisplayLabel()), summary)); err != nil {
			return err
		}
		edit, err := r.driver.Confirm(ctx, ConfirmConfig{Message: r.t(render.KeyChartEdit)})
		if err != nil {
			return err
		}
		if !edit {
			return nil
		}

		site, err := r.ask(ctx, InputConfig{Message: r.t(render.KeyChartSite)}, func(raw string) (any, error) {
			if !chart.IsSite(raw) {
				return nil, errors.New(r.t(render.KeyUnknownSite))
			}
			return raw, nil
		})
		if err != nil {
			return err
		}
		if site == "" {
			continue
		}
		idx, err := r.driver.Select(ctx, SelectConfig{
			Message: r.t(render.KeyChartState, site),
			Options: states,
		})
		if err != nil {
			return err
		}
		if idx < 0 || idx >= len(states) {
			continue
		}
		if err := s.SetChartSite(field.Name, site.(string), states[idx]); err != nil {
			return err
		}
	}
}

func (r *Renderer) serialize(ctx context.Context, s *session.Session, options render.RenderOptions) ([]byte, error) {
	if r.outputFormat == OutputFormatPrettyText {
		options.Values = s.Answers()
		options.Note = s.Note()
		options.Translator = r.translator
		options.Locale = r.locale
		return export.TextSink{}.Render(ctx, s.Schema(), options)
	}
	return json.MarshalIndent(s.Answers(), "", "  ")
}

func (r *Renderer) info(ctx context.Context, msg string) error {
	return r.driver.Info(ctx, msg)
}

func (r *Renderer) t(key string, args ...any) string {
	return render.Translate(r.translator, r.locale, key, args...)
}

// text strips the inline markup labels may carry.
func (r *Renderer) text(s string) string {
	return export.PlainText(s)
}

func (r *Renderer) message(field model.Field) string {
	label := r.text(field.DisplayLabel())
	if field.Required {
		return label + " *"
	}
	return label
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func bound(f *float64) string {
	if f == nil {
		return "-"
	}
	return formatFloat(*f)
}

func unitSuffix(unit string) string {
	if unit == "" {
		return ""
	}
	return " " + unit
}
