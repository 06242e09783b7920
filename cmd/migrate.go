package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/streed/mod-notes/internal/migrations"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Database migration management",
	Long: `Manage database migrations and schema changes.

This command provides utilities to check migration status and manage database schema changes.`,
}

var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the status of database migrations",
	Long:  `Display which database migrations have been applied and which are pending.`,
	RunE:  showMigrationStatus,
}

var migrateRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Run pending database migrations",
	Long: `Manually run any pending database migrations.

Note: Migrations are automatically run when the application starts, so this command
is typically only needed for troubleshooting.`,
	RunE: runMigrations,
}

var migrateRollbackCmd = &cobra.Command{
	Use:   "rollback <migration-id>",
	Short: "Revert a single applied migration",
	Args:  cobra.ExactArgs(1),
	RunE:  rollbackMigration,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.AddCommand(migrateStatusCmd)
	migrateCmd.AddCommand(migrateRunCmd)
	migrateCmd.AddCommand(migrateRollbackCmd)
}

func showMigrationStatus(cmd *cobra.Command, args []string) error {
	if db == nil {
		return fmt.Errorf("database not initialized")
	}

	status, err := migrations.NewRunner(db.Conn()).Status(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to get migration status: %w", err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	fmt.Fprintf(w, "MIGRATION ID\tSTATUS\tDESCRIPTION\n")
	fmt.Fprintf(w, "------------\t------\t-----------\n")

	appliedCount := 0
	for _, migration := range status {
		statusText := color.YellowString("PENDING")
		if migration.Applied {
			statusText = color.GreenString("APPLIED")
			appliedCount++
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", migration.ID, statusText, migration.Description)
	}
	w.Flush()

	fmt.Printf("\nTotal migrations: %d\n", len(status))
	fmt.Printf("Applied: %d\n", appliedCount)
	fmt.Printf("Pending: %d\n", len(status)-appliedCount)
	fmt.Printf("Full-text index: %v\n", db.TextIndexAvailable())

	return nil
}

func runMigrations(cmd *cobra.Command, args []string) error {
	if db == nil {
		return fmt.Errorf("database not initialized")
	}

	applied, err := migrations.NewRunner(db.Conn()).Run(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	color.Green("Migration run completed successfully! (%d applied)", applied)
	return nil
}

func rollbackMigration(cmd *cobra.Command, args []string) error {
	if db == nil {
		return fmt.Errorf("database not initialized")
	}

	if err := migrations.NewRunner(db.Conn()).Rollback(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("failed to roll back migration: %w", err)
	}

	color.Green("Rolled back migration %s", args[0])
	return nil
}
