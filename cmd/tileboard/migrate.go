package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nerrad567/tileboard/internal/infrastructure/config"
	"github.com/nerrad567/tileboard/internal/infrastructure/database"
)

// newMigrateCmd manages the value history schema outside of serve, which
// only ever migrates up.
func newMigrateCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the value history schema",
	}

	withDB := func(fn func(cmd *cobra.Command, db *database.DB) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			db, err := database.Open(database.FromConfig(cfg.Database))
			if err != nil {
				return fmt.Errorf("opening database: %w", err)
			}
			defer db.Close() //nolint:errcheck // the command exits right after
			return fn(cmd, db)
		}
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		Args:  cobra.NoArgs,
		RunE: withDB(func(cmd *cobra.Command, db *database.DB) error {
			if err := db.Migrate(cmd.Context()); err != nil {
				return fmt.Errorf("running migrations: %w", err)
			}
			return printMigrationStatus(cmd, db)
		}),
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back the latest migration",
		Args:  cobra.NoArgs,
		RunE: withDB(func(cmd *cobra.Command, db *database.DB) error {
			if err := db.MigrateDown(cmd.Context()); err != nil {
				return fmt.Errorf("rolling back: %w", err)
			}
			return printMigrationStatus(cmd, db)
		}),
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "List applied and pending migrations",
		Args:  cobra.NoArgs,
		RunE:  withDB(printMigrationStatus),
	})
	return cmd
}

func printMigrationStatus(cmd *cobra.Command, db *database.DB) error {
	applied, pending, err := db.GetMigrationStatus(cmd.Context())
	if err != nil {
		return fmt.Errorf("reading migration status: %w", err)
	}
	out := cmd.OutOrStdout()
	for _, r := range applied {
		fmt.Fprintf(out, "applied  %s  %s\n", r.Version, r.AppliedAt.Format("2006-01-02 15:04"))
	}
	for _, m := range pending {
		fmt.Fprintf(out, "pending  %s  %s\n", m.Version, m.Name)
	}
	return nil
}
