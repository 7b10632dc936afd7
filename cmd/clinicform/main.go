package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-clinicform/internal/config"
	"github.com/goliatone/go-clinicform/internal/logging"
	"github.com/goliatone/go-clinicform/pkg/renderers/tui"
	"github.com/goliatone/go-clinicform/pkg/stages"
)

// app carries what every command needs once the config is loaded.
type app struct {
	configFile string
	// driver replaces the terminal prompts of fill, for tests.
	driver tui.PromptDriver

	cfg     *config.Config
	logger  zerolog.Logger
	loc     *time.Location
	catalog *stages.Catalog
}

func main() {
	if err := newRootCmd(&app{}).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "clinicform",
		Short:        "Dental implant consultation forms and notes",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load(cmd)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.configFile, "config", "", "config file (default ./clinicform.yaml when present)")
	flags.String(config.FlagName(config.KeyEnv), "", "environment: development, test or production")
	flags.String(config.FlagName(config.KeyLogLevel), "", "log level")
	flags.String(config.FlagName(config.KeyLocale), "", "locale of interface strings")
	flags.String(config.FlagName(config.KeyTimezone), "", "time zone of dates")
	flags.String(config.FlagName(config.KeyStagesDir), "", "directory holding a stage catalog (default: embedded)")

	rootCmd.AddCommand(serveCmd(a))
	rootCmd.AddCommand(fillCmd(a))
	rootCmd.AddCommand(noteCmd(a))
	rootCmd.AddCommand(lintCmd(a))
	rootCmd.AddCommand(stagesCmd(a))
	rootCmd.AddCommand(templatesCmd(a))
	return rootCmd
}

func (a *app) load(cmd *cobra.Command) error {
	cfg, err := config.Load(config.WithConfigFile(a.configFile), config.WithFlags(cmd.Flags()))
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg

	// logs go to stderr so command output stays pipeable
	a.logger, err = logging.New(cmd.ErrOrStderr(), cfg.Env, cfg.LogLevel)
	if err != nil {
		return err
	}
	a.loc, err = cfg.Location()
	if err != nil {
		return err
	}
	return nil
}

// stages loads the catalog on first use.
func (a *app) stages(ctx context.Context) (*stages.Catalog, error) {
	if a.catalog != nil {
		return a.catalog, nil
	}
	var (
		catalog *stages.Catalog
		err     error
	)
	if a.cfg.StagesDir != "" {
		catalog, err = stages.Load(ctx, os.DirFS(a.cfg.StagesDir))
	} else {
		catalog, err = stages.Default(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("load stages: %w", err)
	}
	a.catalog = catalog
	return catalog, nil
}

func stagesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stages",
		Short: "List the consultation stages in order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := a.stages(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for i, stage := range catalog.Stages() {
				if err := writef(out, "%d. %-24s %s\n", i+1, stage.Slug, stage.Title); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func writef(w io.Writer, format string, args ...any) error {
	_, err := fmt.Fprintf(w, format, args...)
	return err
}
