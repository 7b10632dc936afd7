// Package session holds the live state of one form being filled: the
// answers, and the missing set and note derived from them. A session has a
// single writer; it is not safe for concurrent use.
package session

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/goliatone/go-clinicform/pkg/chart"
	"github.com/goliatone/go-clinicform/pkg/defaults"
	"github.com/goliatone/go-clinicform/pkg/model"
	"github.com/goliatone/go-clinicform/pkg/note"
	"github.com/goliatone/go-clinicform/pkg/validation"
	"github.com/goliatone/go-clinicform/pkg/visibility"
)

// Submitter receives the answers of a complete form, e.g. a record store.
type Submitter interface {
	Submit(ctx context.Context, answers model.AnswerSet) error
}

// SubmitterFunc adapts a function to Submitter.
type SubmitterFunc func(ctx context.Context, answers model.AnswerSet) error

func (f SubmitterFunc) Submit(ctx context.Context, answers model.AnswerSet) error {
	return f(ctx, answers)
}

// TemplateSource fetches the note template of a stage.
type TemplateSource interface {
	Template(ctx context.Context, slug string) (string, error)
}

// Option configures a Session.
type Option func(*Session)

// WithPrior seeds previously saved answers over the schema defaults.
func WithPrior(prior map[string]any) Option {
	return func(s *Session) {
		s.prior = prior
	}
}

// WithReadOnly makes every mutator fail with ErrReadOnly.
func WithReadOnly(readOnly bool) Option {
	return func(s *Session) {
		s.readOnly = readOnly
	}
}

// WithTemplate sets the note template.
func WithTemplate(tpl string) Option {
	return func(s *Session) {
		s.template = tpl
	}
}

// WithGenerator shares a note generator between sessions.
func WithGenerator(g *note.Generator) Option {
	return func(s *Session) {
		s.generator = g
	}
}

// WithClock sets the time source for "now" defaults.
func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLocation sets the time zone for date defaults and note dates.
func WithLocation(loc *time.Location) Option {
	return func(s *Session) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithLogger sets the logger for degraded template loads and chart repairs.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

// Session is one form being filled.
type Session struct {
	schema    model.FormSchema
	fields    map[string]model.Field
	answers   model.AnswerSet
	prior     map[string]any
	readOnly  bool
	template  string
	generator *note.Generator
	now       func() time.Time
	loc       *time.Location
	logger    zerolog.Logger

	report    []validation.Missing
	missing   []string
	visible   map[string]bool
	note      string
	submitted bool
}

// New starts a session with the schema defaults, overlaid by prior answers.
func New(schema model.FormSchema, options ...Option) (*Session, error) {
	s := &Session{
		schema: schema,
		now:    time.Now,
		loc:    time.Local,
		logger: zerolog.Nop(),
	}
	for _, opt := range options {
		if opt != nil {
			opt(s)
		}
	}

	if s.generator == nil {
		g, err := note.New(note.WithLogger(s.logger), note.WithLocation(s.loc))
		if err != nil {
			return nil, fmt.Errorf("session: note generator: %w", err)
		}
		s.generator = g
	}

	s.fields = make(map[string]model.Field)
	for _, field := range schema.AllFields() {
		if field.Kind.Known() {
			s.fields[field.Name] = field
		}
	}

	s.answers = defaults.Resolve(schema,
		defaults.WithClock(s.now),
		defaults.WithLocation(s.loc),
		defaults.WithPrior(s.prior),
	)
	s.refresh()
	return s, nil
}

// refresh recomputes the derived state. Every mutation calls it.
func (s *Session) refresh() {
	s.report = validation.Report(s.schema, s.answers)
	s.missing = make([]string, 0, len(s.report))
	for _, item := range s.report {
		s.missing = append(s.missing, item.Name)
	}
	s.visible = visibility.Visible(s.schema, s.answers)
	s.note = s.generator.Render(s.template, s.answers)
}

func (s *Session) field(name string) (model.Field, error) {
	if s.readOnly {
		return model.Field{}, ErrReadOnly
	}
	field, ok := s.fields[name]
	if !ok {
		return model.Field{}, fmt.Errorf("%w %q", ErrUnknownField, name)
	}
	return field, nil
}

// Set stores value under name. Chart values are normalised to their
// serialised form with every site present. A new edit clears Submitted.
func (s *Session) Set(name string, value any) error {
	value, err := s.normalize(name, value)
	if err != nil {
		return err
	}
	s.answers[name] = value
	s.submitted = false
	s.refresh()
	return nil
}

// SetAll stores every answer with the rules of Set and recomputes the
// derived state once. Nothing is stored when any entry is rejected.
func (s *Session) SetAll(answers map[string]any) error {
	if len(answers) == 0 {
		return nil
	}
	names := make([]string, 0, len(answers))
	for name := range answers {
		names = append(names, name)
	}
	sort.Strings(names)

	values := make(map[string]any, len(answers))
	for _, name := range names {
		value, err := s.normalize(name, answers[name])
		if err != nil {
			return err
		}
		values[name] = value
	}
	for name, value := range values {
		s.answers[name] = value
	}
	s.submitted = false
	s.refresh()
	return nil
}

func (s *Session) normalize(name string, value any) (any, error) {
	field, err := s.field(name)
	if err != nil {
		return nil, err
	}
	if field.Kind == model.KindChart && !model.IsBlank(value) {
		c, err := chart.Parse(value, chart.StatesFor(field))
		if err != nil {
			return nil, fmt.Errorf("session: set %q: %w", name, err)
		}
		return c.Encode(), nil
	}
	return value, nil
}

// SetChartSite changes one site of a chart field.
func (s *Session) SetChartSite(name, site, state string) error {
	field, err := s.field(name)
	if err != nil {
		return err
	}
	if field.Kind != model.KindChart {
		return fmt.Errorf("%w: %q", ErrNotChart, name)
	}
	if _, err := chart.Load(s.answers, field); err != nil {
		s.logger.Warn().Err(err).Str("field", name).Msg("stored chart unreadable, reset to baseline")
	}
	if err := chart.SetState(s.answers, field, site, state); err != nil {
		return fmt.Errorf("session: set %q site %s: %w", name, site, err)
	}
	s.submitted = false
	s.refresh()
	return nil
}

// SetTemplate replaces the note template.
func (s *Session) SetTemplate(tpl string) {
	s.template = tpl
	s.refresh()
}

// LoadTemplate fetches the template of slug from src. On failure the
// session keeps working with no template and the error is returned for the
// caller to report.
func (s *Session) LoadTemplate(ctx context.Context, src TemplateSource, slug string) error {
	tpl, err := src.Template(ctx, slug)
	if err != nil {
		s.logger.Warn().Err(err).Str("stage", slug).Msg("note template unavailable")
		s.SetTemplate("")
		return fmt.Errorf("session: load template %q: %w", slug, err)
	}
	s.SetTemplate(tpl)
	return nil
}

// Schema returns the schema the session fills.
func (s *Session) Schema() model.FormSchema {
	return s.schema
}

// ReadOnly reports whether mutators are refused.
func (s *Session) ReadOnly() bool {
	return s.readOnly
}

// Answers returns a copy of the current answers.
func (s *Session) Answers() model.AnswerSet {
	return s.answers.Clone()
}

// Value returns the answer stored under name.
func (s *Session) Value(name string) (any, bool) {
	v, ok := s.answers[name]
	return v, ok
}

// Missing returns the visible required fields still blank, in schema order.
func (s *Session) Missing() []string {
	return append([]string(nil), s.missing...)
}

// Report is Missing with labels and sections.
func (s *Session) Report() []validation.Missing {
	return append([]validation.Missing(nil), s.report...)
}

// Complete reports whether the missing set is empty.
func (s *Session) Complete() bool {
	return len(s.missing) == 0
}

// Visible reports whether the field is part of the visible tree.
func (s *Session) Visible(name string) bool {
	return s.visible[name]
}

// Note returns the note generated from the current answers.
func (s *Session) Note() string {
	return s.note
}

// Submit hands the answers to sink once the form is complete. Submitted
// only reports true after sink succeeded.
func (s *Session) Submit(ctx context.Context, sink Submitter) error {
	if s.readOnly {
		return ErrReadOnly
	}
	if len(s.missing) > 0 {
		return &IncompleteError{Missing: s.Missing()}
	}
	if err := sink.Submit(ctx, s.Answers()); err != nil {
		return fmt.Errorf("session: submit: %w", err)
	}
	s.submitted = true
	return nil
}

// Submitted reports whether the current answers were accepted by a sink.
func (s *Session) Submitted() bool {
	return s.submitted
}
