package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-clinicform/pkg/export"
	"github.com/goliatone/go-clinicform/pkg/model"
	"github.com/goliatone/go-clinicform/pkg/render"
	"github.com/goliatone/go-clinicform/pkg/renderers/tui"
	"github.com/goliatone/go-clinicform/pkg/session"
	"github.com/goliatone/go-clinicform/pkg/store"
)

func fillCmd(a *app) *cobra.Command {
	var (
		priorPath string
		outPath   string
		recordID  string
	)
	cmd := &cobra.Command{
		Use:   "fill <stage>",
		Short: "Fill a stage interactively and print its note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := a.newSession(cmd, args[0], priorPath)
			if err != nil {
				return err
			}

			driver := a.driver
			if driver == nil {
				driver = tui.NewSurveyDriver(cmd.OutOrStdout())
			}
			filler := tui.New(
				tui.WithPromptDriver(driver),
				tui.WithTranslator(render.DefaultCatalog, a.cfg.Locale),
				tui.WithLocation(a.loc),
				tui.WithLogger(a.logger),
			)
			if err := filler.Fill(ctx, s); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if err := a.printNote(out, s); err != nil {
				return err
			}
			if outPath != "" {
				if err := writeAnswers(outPath, s.Answers()); err != nil {
					return err
				}
			}
			if recordID == "" {
				return nil
			}

			db, err := a.openDatabase(ctx)
			if err != nil {
				return err
			}
			defer db.Close()
			if err := s.Submit(ctx, store.SectionSink{Store: db, RecordID: recordID, Section: args[0]}); err != nil {
				return err
			}
			return writef(out, "saved to record %s\n", recordID)
		},
	}
	cmd.Flags().StringVar(&priorPath, "prior", "", "JSON file of previously saved answers")
	cmd.Flags().StringVar(&outPath, "out", "", "write the answers as JSON to this file")
	cmd.Flags().StringVar(&recordID, "record", "", "save the answers to this record (requires a database)")
	addDatabaseFlags(cmd)
	return cmd
}

// newSession starts a session for slug with its note template, seeded from
// the answers file when one is given.
func (a *app) newSession(cmd *cobra.Command, slug, answersPath string) (*session.Session, error) {
	ctx := cmd.Context()
	catalog, err := a.stages(ctx)
	if err != nil {
		return nil, err
	}
	schema, err := catalog.Schema(slug)
	if err != nil {
		return nil, err
	}

	var prior model.AnswerSet
	if answersPath != "" {
		prior, err = readAnswers(cmd.InOrStdin(), answersPath)
		if err != nil {
			return nil, err
		}
	}
	s, err := session.New(schema,
		session.WithPrior(prior),
		session.WithLocation(a.loc),
		session.WithLogger(a.logger),
	)
	if err != nil {
		return nil, err
	}
	if err := s.LoadTemplate(ctx, catalog, slug); err != nil {
		a.logger.Warn().Err(err).Str("stage", slug).Msg("continuing without note template")
	}
	return s, nil
}

// readAnswers decodes a JSON answers file; "-" reads stdin.
func readAnswers(stdin io.Reader, path string) (model.AnswerSet, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read answers: %w", err)
	}
	answers := model.AnswerSet{}
	if err := json.Unmarshal(data, &answers); err != nil {
		return nil, fmt.Errorf("decode answers %s: %w", path, err)
	}
	return answers, nil
}

func writeAnswers(path string, answers model.AnswerSet) error {
	data, err := json.MarshalIndent(answers, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o600)
}

func (a *app) printNote(out io.Writer, s *session.Session) error {
	if missing := s.Report(); len(missing) > 0 {
		labels := make([]string, 0, len(missing))
		for _, m := range missing {
			labels = append(labels, export.PlainText(m.Label))
		}
		title := render.Translate(render.DefaultCatalog, a.cfg.Locale, render.KeyMissingTitle)
		if err := writef(out, "%s : %s\n\n", title, strings.Join(labels, ", ")); err != nil {
			return err
		}
	}
	return writef(out, "%s\n", s.Note())
}
