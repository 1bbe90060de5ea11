package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// migrateCmd creates the watchlist schema
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the database schema",
	Long: `Creates the stock document table, its indexes and the change
notification trigger. Safe to run more than once.`,
	Args: cobra.NoArgs,
	RunE: runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	return withApp(func(ctx context.Context, a *app) error {
		if a.db == nil {
			return fmt.Errorf("migrate requires STORE_BACKEND=postgres")
		}
		if err := a.db.Migrate(ctx); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "✅ Schema up to date")
		return nil
	})
}
