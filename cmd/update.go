package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/tlevesque/meteodb/internal/crawl"
)

// newUpdateCmd creates the 'update' subcommand: the daily incremental
// refresh.
func newUpdateCmd() *cobra.Command {
	var codes []int

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Re-fetch the current day for all known stations",
		Long: `Loads the persisted station set and fetches today's observations for
every station concurrently. Requires a prior init run.`,

		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := resolveApp(cmd.Context())
			if err != nil {
				return err
			}

			opts := crawl.Options{StationCodes: a.Config.Crawler.StationCodes}
			if len(codes) > 0 {
				opts.StationCodes = codes
			}

			started := time.Now()
			report, err := buildCrawler(a).Update(cmd.Context(), opts)
			if err != nil {
				return fmt.Errorf("update run: %w", err)
			}

			finishRun(cmd.Context(), a, "update", report, started)
			return nil
		},
	}

	cmd.Flags().IntSliceVar(&codes, "station-codes", nil, "restrict the refresh to these station codes")

	return cmd
}
