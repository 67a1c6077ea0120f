package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/eleven-am/bistro/internal/app"
	"github.com/eleven-am/bistro/internal/logger"
	"github.com/eleven-am/bistro/internal/migrator"
)

func newMigrateCmd() *cobra.Command {
	var (
		dryRun  bool
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		Long: `Applies the embedded schema and seed migrations to the configured PostgreSQL
database. Each migration runs in its own transaction and is recorded in the
schema_migrations table, so running the command twice is safe.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadedConfig()
			if err != nil {
				return err
			}
			if cfg.Database.URL == "" {
				return fmt.Errorf("database connection required: use --url flag, DATABASE_URL, or specify database.url in bistro.yaml")
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			if verbose {
				cmd.Printf("Using database driver: %s\n", cfg.Database.Driver)
			}

			db, err := app.Connect(ctx, cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			m := migrator.New(db, logger.Migration())
			out := cmd.OutOrStdout()

			if dryRun {
				status, err := m.Status(ctx)
				if err != nil {
					return err
				}
				if len(status.Pending) == 0 {
					fmt.Fprintln(out, "Database is up to date")
					return nil
				}
				fmt.Fprintln(out, "Pending migrations (dry run):")
				for _, name := range status.Pending {
					fmt.Fprintf(out, "  %s\n", name)
				}
				return nil
			}

			applied, err := m.Up(ctx)
			if err != nil {
				return fmt.Errorf("failed to apply migrations: %w", err)
			}
			logger.CLI().Info("migrations complete", zap.Int("applied", len(applied)))

			if len(applied) == 0 {
				fmt.Fprintln(out, "Database is up to date")
				return nil
			}
			for _, name := range applied {
				fmt.Fprintf(out, "Applied %s\n", name)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "List pending migrations without applying them")
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Minute, "Overall timeout for the migration run")

	return cmd
}
