// Package main is the entry point of the focus API server: the gamified
// focus timer, planner, shop and mentor served over HTTP.
package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/phrazzld/focus-api/internal/config"
	"github.com/phrazzld/focus-api/internal/platform/logger"
	"github.com/phrazzld/focus-api/internal/platform/postgres"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "focus-api",
		Short:         "Gamified focus tracker API",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return loadDotEnv()
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd)
		},
	}
	root.AddCommand(newServeCommand(), newMigrateCommand())
	return root
}

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd)
		},
	}
}

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:       "migrate [up|down|status]",
		Short:     "Apply or inspect the account database schema",
		ValidArgs: []string{postgres.MigrateUp, postgres.MigrateDown, postgres.MigrateStatus},
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := initializeApp()
			if err != nil {
				return report(cmd, err)
			}
			return report(cmd, runMigrations(cmd.Context(), cfg, args[0], log))
		},
	}
}

func runServe(cmd *cobra.Command) error {
	cfg, log, err := initializeApp()
	if err != nil {
		return report(cmd, err)
	}

	app, err := newApplication(cmd.Context(), cfg, log)
	if err != nil {
		return report(cmd, fmt.Errorf("failed to initialize application: %w", err))
	}
	return report(cmd, app.startHTTPServer(cmd.Context(), app.setupRouter()))
}

// initializeApp loads configuration and installs the configured logger as
// the slog default.
func initializeApp() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.Setup(cfg.Server)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to set up logger: %w", err)
	}

	log.Info("configuration loaded",
		slog.Int("port", cfg.Server.Port),
		slog.String("log_level", cfg.Server.LogLevel),
		slog.Bool("database", cfg.Database.URL != ""),
		slog.Bool("cache", cfg.Cache.RedisAddr != ""),
		slog.Bool("gemini", cfg.LLM.GeminiAPIKey != ""))
	return cfg, log, nil
}

// loadDotEnv reads .env when present. Real environment variables win.
func loadDotEnv() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to read .env: %w", err)
	}
	return nil
}

func report(cmd *cobra.Command, err error) error {
	if err != nil {
		cmd.PrintErrln("Error:", err)
	}
	return err
}
