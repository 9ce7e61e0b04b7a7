package app

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/hitoshi/livsmedel/internal/database"
)

// newMigrateCommand は検索ログのスキーママイグレーションを操作する。
// サブコマンドを指定しない場合はupとして動作する。
func newMigrateCommand(w io.Writer, opts *globalOptions) *cobra.Command {
	up := func(cmd *cobra.Command, args []string) error {
		return runMigrate(w, opts)
	}

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply search log database migrations",
		Args:  cobra.NoArgs,
		RunE:  up,
	}

	var steps int
	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back search log migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrateDown(w, opts, steps)
		},
	}
	down.Flags().IntVar(&steps, "steps", 1, "number of migrations to roll back")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			Args:  cobra.NoArgs,
			RunE:  up,
		},
		down,
		&cobra.Command{
			Use:   "version",
			Short: "Print the current migration version",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return runMigrateVersion(cmd.OutOrStdout(), w, opts)
			},
		},
	)

	return cmd
}

// runMigrate はすべての未適用マイグレーションを順番に適用する。
func runMigrate(w io.Writer, opts *globalOptions) error {
	cfg, err := Init(w, opts)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}
	if err := requireDatabase(cfg, "migrate"); err != nil {
		return err
	}

	slog.Info("running database migrations",
		slog.String("database_url", maskDatabaseURL(cfg.DatabaseURL)),
	)

	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	slog.Info("database migrations completed successfully")
	return nil
}

// runMigrateDown は指定した数のマイグレーションを巻き戻す。
func runMigrateDown(w io.Writer, opts *globalOptions, steps int) error {
	cfg, err := Init(w, opts)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}
	if err := requireDatabase(cfg, "migrate down"); err != nil {
		return err
	}

	slog.Info("rolling back database migrations",
		slog.String("database_url", maskDatabaseURL(cfg.DatabaseURL)),
		slog.Int("steps", steps),
	)

	if err := database.RollbackMigrations(cfg.DatabaseURL, steps); err != nil {
		return fmt.Errorf("rollback failed: %w", err)
	}

	slog.Info("database rollback completed successfully")
	return nil
}

// runMigrateVersion は現在のマイグレーションバージョンをoutに出力する。
func runMigrateVersion(out, w io.Writer, opts *globalOptions) error {
	cfg, err := Init(w, opts)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}
	if err := requireDatabase(cfg, "migrate version"); err != nil {
		return err
	}

	version, dirty, err := database.MigrationVersion(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to read migration version: %w", err)
	}

	if dirty {
		fmt.Fprintf(out, "%d (dirty)\n", version)
		return nil
	}
	fmt.Fprintf(out, "%d\n", version)
	return nil
}
