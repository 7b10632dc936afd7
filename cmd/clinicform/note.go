package main

import (
	"github.com/spf13/cobra"

	"github.com/goliatone/go-clinicform/pkg/export"
	"github.com/goliatone/go-clinicform/pkg/render"
)

func noteCmd(a *app) *cobra.Command {
	var (
		answersPath string
		transcript  bool
		lines       int
	)
	cmd := &cobra.Command{
		Use:   "note <stage>",
		Short: "Generate the note of a stage from a JSON answers file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.newSession(cmd, args[0], answersPath)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if !transcript {
				return a.printNote(out, s)
			}

			sink := export.TextSink{LinesPerPage: lines}
			data, err := sink.Render(cmd.Context(), s.Schema(), render.RenderOptions{
				Values:     s.Answers(),
				Missing:    s.Missing(),
				Note:       s.Note(),
				ReadOnly:   true,
				Locale:     a.cfg.Locale,
				Translator: render.DefaultCatalog,
			})
			if err != nil {
				return err
			}
			_, err = out.Write(data)
			return err
		},
	}
	cmd.Flags().StringVar(&answersPath, "answers", "", `JSON answers file ("-" for stdin)`)
	cmd.Flags().BoolVar(&transcript, "transcript", false, "print the paginated form transcript with the note")
	cmd.Flags().IntVar(&lines, "lines", export.DefaultLinesPerPage, "lines per transcript page")
	_ = cmd.MarkFlagRequired("answers")
	return cmd
}
