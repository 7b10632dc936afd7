// Package server exposes the consultation stages, form sessions, and record
// store over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/goliatone/go-clinicform/pkg/export"
	"github.com/goliatone/go-clinicform/pkg/render"
	"github.com/goliatone/go-clinicform/pkg/renderers/vanilla"
	"github.com/goliatone/go-clinicform/pkg/session"
	"github.com/goliatone/go-clinicform/pkg/stages"
	"github.com/goliatone/go-clinicform/pkg/store"
)

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request and session logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithLocation sets the time zone for date defaults and note dates.
func WithLocation(loc *time.Location) Option {
	return func(s *Server) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithLocale picks the chrome language and its catalog.
func WithLocale(locale string, t render.Translator) Option {
	return func(s *Server) {
		if locale != "" {
			s.locale = locale
		}
		s.translator = t
	}
}

// WithClock sets the time source for "now" defaults.
func WithClock(now func() time.Time) Option {
	return func(s *Server) {
		if now != nil {
			s.now = now
		}
	}
}

// WithHTMLRenderer replaces the form renderer.
func WithHTMLRenderer(r render.Renderer) Option {
	return func(s *Server) {
		if r != nil {
			s.html = r
		}
	}
}

// WithTemplates serves note templates from src instead of the catalog,
// e.g. a store.TemplateChain putting database templates first.
func WithTemplates(src store.TemplateSource) Option {
	return func(s *Server) {
		if src != nil {
			s.templates = src
		}
	}
}

// Server is the HTTP surface.
type Server struct {
	echo       *echo.Echo
	catalog    *stages.Catalog
	store      store.Store
	templates  store.TemplateSource
	html       render.Renderer
	text       export.TextSink
	renderers  *render.Registry
	logger     zerolog.Logger
	loc        *time.Location
	locale     string
	translator render.Translator
	now        func() time.Time
}

// New wires the routes over catalog and st.
func New(catalog *stages.Catalog, st store.Store, options ...Option) (*Server, error) {
	if catalog == nil || st == nil {
		return nil, errors.New("server: catalog and store are required")
	}
	s := &Server{
		catalog:   catalog,
		store:     st,
		templates: catalog,
		logger:    zerolog.Nop(),
		loc:       time.Local,
		locale:    render.DefaultLocale,
		now:       time.Now,
	}
	for _, opt := range options {
		if opt != nil {
			opt(s)
		}
	}
	if s.html == nil {
		html, err := vanilla.New(vanilla.WithLocation(s.loc))
		if err != nil {
			return nil, err
		}
		s.html = html
	}
	renderers, err := render.NewRegistry(s.html, s.text)
	if err != nil {
		return nil, err
	}
	s.renderers = renderers

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(RequestID())
	e.Use(Logger(s.logger))
	e.Use(Recovery(s.logger))

	e.GET("/health", s.health)
	e.GET("/stages", s.listStages)
	e.GET("/stages/:slug/form", s.stageForm)
	e.POST("/stages/:slug/preview", s.preview)
	e.GET("/records", s.listRecords)
	e.POST("/records", s.createRecord)
	e.GET("/records/:id/:section", s.fetchSection)
	e.PUT("/records/:id/:section", s.submitSection)
	e.POST("/records/:id/:section", s.submitForm)
	e.GET("/records/:id/:section/export", s.exportSection)

	s.echo = e
	return s, nil
}

// Handler returns the router, e.g. for httptest.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start listens on addr until Shutdown.
func (s *Server) Start(addr string) error {
	s.logger.Info().Str("addr", addr).Msg("starting server")
	if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// newSession starts a session for the stage with its note template loaded.
// A missing template degrades the note; it never fails the request.
func (s *Server) newSession(ctx context.Context, slug string, prior map[string]any) (*session.Session, error) {
	schema, err := s.catalog.Schema(slug)
	if err != nil {
		return nil, err
	}
	sess, err := session.New(schema,
		session.WithPrior(prior),
		session.WithClock(s.now),
		session.WithLocation(s.loc),
		session.WithLogger(s.logger),
	)
	if err != nil {
		return nil, err
	}
	_ = sess.LoadTemplate(ctx, s.templates, slug)
	return sess, nil
}

// httpError maps domain errors onto status codes.
func httpError(err error) error {
	var incomplete *session.IncompleteError
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrNotFound), errors.Is(err, stages.ErrUnknownStage):
		return echo.NewHTTPError(http.StatusNotFound, err.Error()).SetInternal(err)
	case errors.Is(err, session.ErrUnknownField), errors.Is(err, session.ErrNotChart):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error()).SetInternal(err)
	case errors.As(err, &incomplete):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error()).SetInternal(err)
	case errors.Is(err, session.ErrReadOnly):
		return echo.NewHTTPError(http.StatusForbidden, err.Error()).SetInternal(err)
	default:
		return err
	}
}
