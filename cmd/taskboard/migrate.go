package main

import (
	"fmt"
	"strconv"

	"taskboard/internal/config"
	"taskboard/internal/migrations"

	"github.com/spf13/cobra"
)

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the Postgres schema",
		Long: `Apply or roll back the embedded schema migrations.

SQLite databases are migrated automatically when opened.

Examples:
  taskboard migrate up
  taskboard migrate down 1
  taskboard migrate version`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cfg := config.Load(); cfg.DBDriver != config.DriverPostgres {
				return fmt.Errorf("migrate only applies to %s, DB_DRIVER is %s", config.DriverPostgres, cfg.DBDriver)
			}
			return nil
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := migrations.Up(config.Load().MigrateURL()); err != nil {
				return err
			}
			fmt.Println("✅ Migrations applied")
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "down [steps]",
		Short: "Roll back migrations (default 1)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			steps := 1
			if len(args) == 1 {
				n, err := strconv.Atoi(args[0])
				if err != nil || n < 1 {
					return fmt.Errorf("steps must be a positive number, got %q", args[0])
				}
				steps = n
			}
			if err := migrations.Down(config.Load().MigrateURL(), steps); err != nil {
				return err
			}
			fmt.Printf("✅ Rolled back %d migration(s)\n", steps)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the applied schema version",
		RunE: func(cmd *cobra.Command, args []string) error {
			v, dirty, err := migrations.Version(config.Load().MigrateURL())
			if err != nil {
				return err
			}
			fmt.Printf("version %d", v)
			if dirty {
				fmt.Print(" (dirty)")
			}
			fmt.Println()
			return nil
		},
	})

	return cmd
}
