package cmd

import (
	"database/sql"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/usedgoods/marketplace/internal/db"
)

func MigrateCmd() *cobra.Command {
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	migrateCmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate(cmd, db.RunMigrations)
		},
	})

	migrateCmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back the most recent migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate(cmd, db.MigrateDown)
		},
	})

	migrateCmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Print the current schema version",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate(cmd, nil)
		},
	})

	return migrateCmd
}

func runMigrate(cmd *cobra.Command, step func(*sql.DB, string) error) error {
	cfg, database, err := openDB()
	if err != nil {
		return err
	}
	defer func() { _ = db.Close(database) }()

	if step != nil {
		err = step(database.DB, cfg.DBDriver)
		if err != nil {
			return err
		}
	}

	version, err := db.Version(database.DB, cfg.DBDriver)
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "schema version: %d\n", version)
	return nil
}
