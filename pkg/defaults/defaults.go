// Package defaults computes the initial AnswerSet of a form from the defaults
// declared in its schema.
package defaults

import (
	"time"

	"github.com/goliatone/go-clinicform/pkg/chart"
	"github.com/goliatone/go-clinicform/pkg/model"
)

// DateLayout is the storage layout of date answers.
const DateLayout = "2006-01-02"

// Option configures Resolve.
type Option func(*config)

type config struct {
	now   func() time.Time
	loc   *time.Location
	prior map[string]any
}

// WithClock overrides the time source used for "now" defaults.
func WithClock(now func() time.Time) Option {
	return func(cfg *config) {
		if now != nil {
			cfg.now = now
		}
	}
}

// WithLocation resolves "now" in the given location instead of time.Local.
func WithLocation(loc *time.Location) Option {
	return func(cfg *config) {
		if loc != nil {
			cfg.loc = loc
		}
	}
}

// WithPrior supplies previously saved answers. They override computed
// defaults key by key.
func WithPrior(prior map[string]any) Option {
	return func(cfg *config) {
		cfg.prior = prior
	}
}

// Resolve walks the schema depth-first and returns the initial answers.
// Nested defaults are only computed under the branch a default selection
// opens. The function is pure apart from reading the clock.
func Resolve(schema model.FormSchema, options ...Option) model.AnswerSet {
	cfg := config{now: time.Now, loc: time.Local}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}

	r := resolver{cfg: cfg, out: make(model.AnswerSet)}
	for _, section := range schema.Sections {
		r.fields(section.Fields)
	}
	if len(cfg.prior) == 0 {
		return r.out
	}
	return r.out.Merge(cfg.prior)
}

type resolver struct {
	cfg config
	out model.AnswerSet
}

func (r *resolver) fields(fields []model.Field) {
	for _, field := range fields {
		r.field(field)
	}
}

func (r *resolver) field(field model.Field) {
	switch field.Kind {
	case model.KindText:
		if field.Default == nil {
			return
		}
		if s, ok := field.Default.(string); ok && s == model.DefaultNow && field.IsDate() {
			r.out[field.Name] = r.cfg.now().In(r.cfg.loc).Format(DateLayout)
			return
		}
		r.out[field.Name] = field.Default

	case model.KindSingleChoice, model.KindConditionalChoice:
		if opt, ok := field.DefaultOption(); ok {
			r.out[field.Name] = opt.Value
			r.fields(opt.Fields)
			return
		}
		if field.Default == nil {
			return
		}
		r.out[field.Name] = field.Default
		if s, ok := field.Default.(string); ok {
			if opt, ok := field.Option(s); ok {
				r.fields(opt.Fields)
			}
		}

	case model.KindMultiChoice:
		var selected []string
		for _, opt := range field.Options {
			if opt.Default {
				selected = append(selected, opt.Value)
			}
		}
		if len(selected) > 0 {
			r.out[field.Name] = selected
			return
		}
		if field.Default != nil {
			r.out[field.Name] = field.Default
		}

	case model.KindConditionalBoolean:
		if field.Default == nil {
			return
		}
		r.out[field.Name] = field.Default
		if on, ok := field.Default.(bool); ok && on {
			r.fields(field.Fields)
		}

	case model.KindChart:
		if field.Default == nil {
			return
		}
		c, err := chart.Parse(field.Default, chart.StatesFor(field))
		if err != nil {
			r.out[field.Name] = field.Default
			return
		}
		r.out[field.Name] = c.Encode()

	case model.KindBoolean, model.KindSteppedRange, model.KindContinuousRange:
		if field.Default != nil {
			r.out[field.Name] = field.Default
		}
	}
}
