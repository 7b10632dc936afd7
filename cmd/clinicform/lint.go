package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-clinicform/pkg/schema"
)

func lintCmd(a *app) *cobra.Command {
	var strict bool
	cmd := &cobra.Command{
		Use:   "lint <schema>...",
		Short: "Check schema files or URLs for errors and warnings",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// issues are printed below, the loader stays quiet
			loader := schema.NewLoader()
			out := cmd.OutOrStdout()

			var failed int
			for _, path := range args {
				a.logger.Debug().Str("schema", path).Msg("linting")
				src := schema.SourceFromFile(path)
				if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
					src = schema.SourceFromURL(path)
				}
				result, err := loader.Load(cmd.Context(), src)
				if err != nil {
					failed++
					if err := writef(out, "%s: %v\n", path, err); err != nil {
						return err
					}
					continue
				}
				for _, issue := range result.Issues {
					if err := writef(out, "%s: %s: %s\n", path, issue.Severity, issue.Error()); err != nil {
						return err
					}
				}
				if result.Err() != nil || (strict && len(result.Warnings()) > 0) {
					failed++
				} else if len(result.Issues) == 0 {
					if err := writef(out, "%s: ok\n", path); err != nil {
						return err
					}
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d schema(s) failed", failed, len(args))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&strict, "strict", false, "treat warnings as failures")
	return cmd
}
