package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/goliatone/go-clinicform/pkg/model"
	"github.com/goliatone/go-clinicform/pkg/render"
	"github.com/goliatone/go-clinicform/pkg/renderers/vanilla"
	"github.com/goliatone/go-clinicform/pkg/session"
	"github.com/goliatone/go-clinicform/pkg/store"
	"github.com/goliatone/go-clinicform/pkg/validation"
)

type stageResponse struct {
	Slug        string `json:"slug"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Next        string `json:"next,omitempty"`
}

// sessionResponse is the derived state of a session.
type sessionResponse struct {
	Complete bool                 `json:"complete"`
	Missing  []validation.Missing `json:"missing"`
	Note     string               `json:"note"`
	Next     string               `json:"next,omitempty"`
}

type createRecordRequest struct {
	Label string `json:"label"`
}

func (s *Server) health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) listStages(c echo.Context) error {
	all := s.catalog.Stages()
	out := make([]stageResponse, 0, len(all))
	for _, stage := range all {
		resp := stageResponse{Slug: stage.Slug, Title: stage.Title, Description: stage.Description}
		if next, ok := s.catalog.Next(stage.Slug); ok {
			resp.Next = next.Slug
		}
		out = append(out, resp)
	}
	return c.JSON(http.StatusOK, out)
}

// stageForm renders the HTML form of a stage, prefilled from the record
// section when ?record= is given.
func (s *Server) stageForm(c echo.Context) error {
	ctx := c.Request().Context()
	slug := c.Param("slug")
	recordID := c.QueryParam("record")

	var prior model.AnswerSet
	if recordID != "" {
		stored, err := s.store.Fetch(ctx, recordID, slug)
		switch {
		case err == nil:
			prior = stored
		case errors.Is(err, store.ErrNotFound):
			// a stage not saved yet starts from its defaults
		default:
			return httpError(err)
		}
	}

	sess, err := s.newSession(ctx, slug, prior)
	if err != nil {
		return httpError(err)
	}
	return s.renderForm(c, http.StatusOK, sess, slug, recordID)
}

func (s *Server) renderForm(c echo.Context, status int, sess *session.Session, slug, recordID string) error {
	options := render.RenderOptions{
		Values:     sess.Answers(),
		Missing:    sess.Missing(),
		Note:       sess.Note(),
		Method:     http.MethodPost,
		Locale:     s.locale,
		Translator: s.translator,
		Hidden:     render.MergeHiddenFields(nil, render.SectionField(slug)),
	}
	if recordID != "" {
		options.Action = fmt.Sprintf("/records/%s/%s", url.PathEscape(recordID), url.PathEscape(slug))
		options.Hidden = render.MergeHiddenFields(options.Hidden, render.RecordField(recordID))
	}
	out, err := s.html.Render(c.Request().Context(), sess.Schema(), options)
	if err != nil {
		return err
	}
	return c.Blob(status, s.html.ContentType(), out)
}

// preview computes the missing set and note of posted answers without
// saving them.
func (s *Server) preview(c echo.Context) error {
	ctx := c.Request().Context()
	slug := c.Param("slug")
	sess, err := s.newSession(ctx, slug, nil)
	if err != nil {
		return httpError(err)
	}
	answers, err := s.readAnswers(c, sess)
	if err != nil {
		return err
	}
	if err := applyAnswers(sess, answers); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, s.describe(sess, slug))
}

func (s *Server) listRecords(c echo.Context) error {
	records, err := s.store.ListRecords(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, records)
}

func (s *Server) createRecord(c echo.Context) error {
	var req createRecordRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	req.Label = strings.TrimSpace(req.Label)
	if req.Label == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "label is required")
	}
	rec, err := s.store.CreateRecord(c.Request().Context(), req.Label)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, rec)
}

func (s *Server) fetchSection(c echo.Context) error {
	answers, err := s.store.Fetch(c.Request().Context(), c.Param("id"), c.Param("section"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, answers)
}

// submitSection replaces a record section with a JSON answer set. Incomplete
// answers are refused with the missing list.
func (s *Server) submitSection(c echo.Context) error {
	ctx := c.Request().Context()
	recordID, slug := c.Param("id"), c.Param("section")

	sess, err := s.newSession(ctx, slug, nil)
	if err != nil {
		return httpError(err)
	}
	answers, err := s.readAnswers(c, sess)
	if err != nil {
		return err
	}
	if err := applyAnswers(sess, answers); err != nil {
		return err
	}

	err = sess.Submit(ctx, store.SectionSink{Store: s.store, RecordID: recordID, Section: slug})
	var incomplete *session.IncompleteError
	if errors.As(err, &incomplete) {
		return c.JSON(http.StatusUnprocessableEntity, s.describe(sess, slug))
	}
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, s.describe(sess, slug))
}

// submitForm handles the HTML form post. The post is applied over the saved
// section so hidden branches keep their answers. An incomplete post
// re-renders the form with the missing panel.
func (s *Server) submitForm(c echo.Context) error {
	ctx := c.Request().Context()
	recordID, slug := c.Param("id"), c.Param("section")

	prior, err := s.store.Fetch(ctx, recordID, slug)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return httpError(err)
	}
	sess, err := s.newSession(ctx, slug, prior)
	if err != nil {
		return httpError(err)
	}
	form, err := c.FormParams()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error()).SetInternal(err)
	}
	if err := applyAnswers(sess, vanilla.DecodeForm(sess.Schema(), form)); err != nil {
		return err
	}

	err = sess.Submit(ctx, store.SectionSink{Store: s.store, RecordID: recordID, Section: slug})
	var incomplete *session.IncompleteError
	if errors.As(err, &incomplete) {
		return s.renderForm(c, http.StatusUnprocessableEntity, sess, slug, recordID)
	}
	if err != nil {
		return httpError(err)
	}

	target := fmt.Sprintf("/records/%s/%s/export", url.PathEscape(recordID), url.PathEscape(slug))
	if next, ok := s.catalog.Next(slug); ok {
		target = fmt.Sprintf("/stages/%s/form?record=%s", url.PathEscape(next.Slug), url.QueryEscape(recordID))
	}
	return c.Redirect(http.StatusSeeOther, target)
}

func (s *Server) exportSection(c echo.Context) error {
	ctx := c.Request().Context()
	recordID, slug := c.Param("id"), c.Param("section")

	// ?format= picks a registered renderer, the transcript by default
	format := c.QueryParam("format")
	if format == "" {
		format = s.text.Name()
	}
	renderer, err := s.renderers.Get(format)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest,
			fmt.Sprintf("unknown format %q, expected one of %s", format, strings.Join(s.renderers.List(), ", "))).SetInternal(err)
	}

	answers, err := s.store.Fetch(ctx, recordID, slug)
	if err != nil {
		return httpError(err)
	}
	sess, err := s.newSession(ctx, slug, answers)
	if err != nil {
		return httpError(err)
	}
	out, err := renderer.Render(ctx, sess.Schema(), render.RenderOptions{
		Values:     sess.Answers(),
		Missing:    sess.Missing(),
		Note:       sess.Note(),
		ReadOnly:   true,
		Locale:     s.locale,
		Translator: s.translator,
	})
	if err != nil {
		return err
	}
	return c.Blob(http.StatusOK, renderer.ContentType(), out)
}

// readAnswers decodes a JSON object or, for form posts, the HTML form
// encoding of the session's schema.
func (s *Server) readAnswers(c echo.Context, sess *session.Session) (model.AnswerSet, error) {
	ctype := c.Request().Header.Get(echo.HeaderContentType)
	if strings.HasPrefix(ctype, echo.MIMEApplicationForm) {
		form, err := c.FormParams()
		if err != nil {
			return nil, echo.NewHTTPError(http.StatusBadRequest, err.Error()).SetInternal(err)
		}
		return vanilla.DecodeForm(sess.Schema(), form), nil
	}
	// Bind would also copy path params into a map destination.
	answers := model.AnswerSet{}
	if err := json.NewDecoder(c.Request().Body).Decode(&answers); err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "answers must be a JSON object").SetInternal(err)
	}
	return answers, nil
}

// applyAnswers sets every answer on sess. Unknown fields and malformed
// chart values are client errors.
func applyAnswers(sess *session.Session, answers model.AnswerSet) error {
	if err := sess.SetAll(answers); err != nil {
		if errors.Is(err, session.ErrReadOnly) {
			return httpError(err)
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error()).SetInternal(err)
	}
	return nil
}

func (s *Server) describe(sess *session.Session, slug string) sessionResponse {
	resp := sessionResponse{
		Complete: sess.Complete(),
		Missing:  sess.Report(),
		Note:     sess.Note(),
	}
	if next, ok := s.catalog.Next(slug); ok {
		resp.Next = next.Slug
	}
	return resp
}
