package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tlevesque/meteodb/internal/store/postgres"
)

// newMigrateCmd creates the 'migrate' subcommand, which applies pending
// schema migrations.
func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database schema migrations",

		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := resolveApp(cmd.Context())
			if err != nil {
				return err
			}
			if err := postgres.Migrate(a.Config.DB.DSN); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			a.Logger.Info("migrations applied")
			return nil
		},
	}
}
