package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tlevesque/meteodb/internal/export"
)

// newExportCmd creates the 'export' subcommand, which dumps persisted
// batches as CSV files.
func newExportCmd() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export persisted observation batches to CSV files",

		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := resolveApp(cmd.Context())
			if err != nil {
				return err
			}

			target := a.Config.Export.Dir
			if dir != "" {
				target = dir
			}

			exporter, err := export.New(a.Store, target, a.Logger)
			if err != nil {
				return err
			}
			files, err := exporter.Run(cmd.Context())
			if err != nil {
				return fmt.Errorf("export: %w", err)
			}
			a.Logger.Info("exported batches", zap.Int("files", files))
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "", "target directory (default from config)")

	return cmd
}
