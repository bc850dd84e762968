// Package cli wires configuration, storage, and the HTTP surface into the
// wwtravelclub command tree.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/neexbeast/wwtravelclub/internal/config"
	"github.com/neexbeast/wwtravelclub/internal/storage"
	"github.com/neexbeast/wwtravelclub/migrations"
)

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := NewRootCmd(os.Stdout).Execute(); err != nil {
		os.Exit(1)
	}
}

// NewRootCmd builds the command tree. Logs are written to out.
func NewRootCmd(out io.Writer) *cobra.Command {
	var debug bool
	level := new(slog.LevelVar)
	log := slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{Level: level}))

	cmd := &cobra.Command{
		Use:          "wwtravelclub",
		Short:        "WWTravelClub destinations and packages",
		SilenceUsage: true,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			if debug {
				level.Set(slog.LevelDebug)
			}
		},
	}

	cmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	cmd.AddCommand(
		migrateCmd(log),
		populateCmd(log),
		modifyCmd(log),
		serveCmd(log),
	)
	return cmd
}

// openDatabase connects to the PostgreSQL instance cfg points at.
func openDatabase(ctx context.Context, cfg config.Config, log *slog.Logger) (*pgxpool.Pool, error) {
	dsn, err := cfg.DSN()
	if err != nil {
		return nil, fmt.Errorf("resolving database connection: %w", err)
	}

	pool, err := storage.Connect(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	log.Debug("database connected")

	return pool, nil
}

// loadAndOpen loads the environment and connects to the database.
func loadAndOpen(ctx context.Context, log *slog.Logger) (*pgxpool.Pool, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return openDatabase(ctx, cfg, log)
}

func migrateCmd(log *slog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the destinations and packages tables",
		RunE: func(cmd *cobra.Command, _ []string) error {
			pool, err := loadAndOpen(cmd.Context(), log)
			if err != nil {
				return err
			}
			defer pool.Close()

			if err := storage.RunMigrations(cmd.Context(), pool, migrations.FS); err != nil {
				return fmt.Errorf("running migrations: %w", err)
			}
			log.Info("migrations applied")
			return nil
		},
	}
}
