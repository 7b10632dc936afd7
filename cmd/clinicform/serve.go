package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-clinicform/internal/config"
	"github.com/goliatone/go-clinicform/internal/server"
	"github.com/goliatone/go-clinicform/pkg/render"
	"github.com/goliatone/go-clinicform/pkg/renderers/vanilla"
	"github.com/goliatone/go-clinicform/pkg/store"
	"github.com/goliatone/go-clinicform/pkg/store/pgstore"
)

func addDatabaseFlags(cmd *cobra.Command) {
	cmd.Flags().String(config.FlagName(config.KeyDatabaseURL), "", "PostgreSQL url (default: in-memory store)")
	cmd.Flags().Int32(config.FlagName(config.KeyDBMaxConns), 0, "maximum pool connections")
	cmd.Flags().Int32(config.FlagName(config.KeyDBMinConns), 0, "minimum pool connections")
}

// openDatabase connects and migrates the PostgreSQL store.
func (a *app) openDatabase(ctx context.Context) (*pgstore.Store, error) {
	if !a.cfg.UsesDatabase() {
		return nil, errors.New("DATABASE_URL is required")
	}
	db, err := pgstore.Open(ctx, a.cfg.DatabaseURL, a.cfg.DBMaxConns, a.cfg.DBMinConns)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	a.logger.Info().Msg("connected to database")
	return db, nil
}

func serveCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runServer(cmd.Context())
		},
	}
	cmd.Flags().String(config.FlagName(config.KeyPort), "", "listen port")
	cmd.Flags().String(config.FlagName(config.KeyFormTemplatesDir), "", "directory holding templates/form.tmpl (default: embedded)")
	addDatabaseFlags(cmd)
	return cmd
}

func (a *app) runServer(ctx context.Context) error {
	catalog, err := a.stages(ctx)
	if err != nil {
		return err
	}

	var (
		records   store.Store          = store.NewMemory()
		templates store.TemplateSource = catalog
	)
	if a.cfg.UsesDatabase() {
		db, err := a.openDatabase(ctx)
		if err != nil {
			return err
		}
		defer db.Close()
		records = db
		templates = store.TemplateChain{db, catalog}
	} else {
		a.logger.Warn().Msg("no DATABASE_URL, records are kept in memory")
	}

	options := []server.Option{
		server.WithLogger(a.logger),
		server.WithLocation(a.loc),
		server.WithLocale(a.cfg.Locale, render.DefaultCatalog),
		server.WithTemplates(templates),
	}
	if dir := a.cfg.FormTemplatesDir; dir != "" {
		html, err := vanilla.New(vanilla.WithTemplatesDir(dir), vanilla.WithLocation(a.loc))
		if err != nil {
			return fmt.Errorf("form templates: %w", err)
		}
		options = append(options, server.WithHTMLRenderer(html))
		a.logger.Info().Str("dir", dir).Msg("using form templates from disk")
	}

	srv, err := server.New(catalog, records, options...)
	if err != nil {
		return err
	}

	errc := make(chan error, 1)
	go func() {
		errc <- srv.Start(":" + a.cfg.Port)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-errc:
		if err != nil {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	case <-quit:
	}

	a.logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	a.logger.Info().Msg("server stopped")
	return nil
}

func templatesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "templates",
		Short: "Manage note templates stored in the database",
	}

	push := &cobra.Command{
		Use:   "push <stage> <file>",
		Short: "Store a note template for a stage, overriding the catalog one",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			catalog, err := a.stages(ctx)
			if err != nil {
				return err
			}
			if _, ok := catalog.Stage(args[0]); !ok {
				return fmt.Errorf("unknown stage %q", args[0])
			}
			body, err := os.ReadFile(args[1])
			if err != nil {
				return err
			}
			db, err := a.openDatabase(ctx)
			if err != nil {
				return err
			}
			defer db.Close()
			if err := db.PutTemplate(ctx, args[0], string(body)); err != nil {
				return err
			}
			return writef(cmd.OutOrStdout(), "template %s stored\n", args[0])
		},
	}
	addDatabaseFlags(push)
	cmd.AddCommand(push)
	return cmd
}
