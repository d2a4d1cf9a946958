package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"barkeep"
	"barkeep/service"
	"barkeep/session"
	"barkeep/setup"
)

var (
	verbose   bool
	envFile   string
	sessionID string
	format    string
	dump      bool

	version = "dev"
)

// app is built once per invocation in PersistentPreRunE.
var app struct {
	cfg     setup.Config
	api     *service.API
	journal *barkeep.FileAttemptLogger
	closers []func() error
	otel    barkeep.OtelShutdown
}

var rootCmd = &cobra.Command{
	Use:   "barkeep",
	Short: "Generate, cost and explain cocktail recipes",
	Long: `barkeep asks a language model for a cocktail recipe that uses up a spirit you
have too much of, then costs it against your liquor inventory and projects profit.

State is kept per session. Pass --session (or set BARKEEP_SESSION) to keep working
on the same recipe and inventory across commands.

Quick Start:
  barkeep inventory ingest inventory.csv       # prints a new session id
  barkeep recipe create --spirit Gin --inventory-aware --session <id>
  barkeep cost --price 12 --session <id>`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := loadEnv(envFile); err != nil {
			return err
		}
		configureLogging(verbose)
		if sessionID == "" {
			sessionID = os.Getenv("BARKEEP_SESSION")
		}
		if err := checkFormat(format); err != nil {
			return err
		}
		return build(cmd.Context(), cmd.Name())
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return shutdown(cmd.Context())
	},
}

// Execute runs the root command and exits non-zero on error.
func Execute() {
	ctx := context.Background()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if ms := (*session.MissingStateError)(nil); errors.As(err, &ms) {
			fmt.Fprintln(os.Stderr, "Hint: create a recipe and upload an inventory first.")
		}
		_ = shutdown(ctx)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Load environment variables from this file if it exists")
	rootCmd.PersistentFlags().StringVarP(&sessionID, "session", "s", "", "Session id (default $BARKEEP_SESSION)")
	rootCmd.PersistentFlags().StringVarP(&format, "format", "f", "text", "Output format: text, json or yaml")
	rootCmd.PersistentFlags().BoolVar(&dump, "dump", false, "Dump result structures to stderr")

	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)
}

func loadEnv(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

func configureLogging(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

func build(ctx context.Context, task string) error {
	cfg, err := setup.LoadConfig()
	if err != nil {
		return err
	}
	app.cfg = cfg

	shutdownOtel, err := barkeep.InitOtel(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}
	app.otel = shutdownOtel

	var journal barkeep.AttemptLogger
	if dir := cfg.Engine.AttemptLogDir; dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create attempt log dir: %w", err)
		}
		path := barkeep.NewAttemptLogFilePath(dir, sessionOrAnon(), task)
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
		if err != nil {
			return fmt.Errorf("failed to open attempt log: %w", err)
		}
		app.journal = barkeep.NewFileAttemptLogger(f)
		app.closers = append(app.closers, func() error {
			return errors.Join(app.journal.Flush(), f.Close())
		})
		journal = app.journal
	}

	api, err := setup.NewAPI(ctx, cfg, journal)
	if err != nil {
		return err
	}
	app.api = api
	return nil
}

func shutdown(ctx context.Context) error {
	var errs []error
	for _, c := range app.closers {
		errs = append(errs, c())
	}
	app.closers = nil
	if app.otel != nil {
		errs = append(errs, app.otel(ctx))
		app.otel = nil
	}
	return errors.Join(errs...)
}

func sessionOrAnon() string {
	if sessionID == "" {
		return "new"
	}
	return sessionID
}

// requireSession returns the session id or an error naming the flag.
func requireSession() (session.ID, error) {
	if sessionID == "" {
		return "", errors.New("no session: pass --session or set BARKEEP_SESSION")
	}
	return session.ID(sessionID), nil
}
