package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/tlevesque/meteodb/internal/crawl"
)

// newInitCmd creates the 'init' subcommand: the one-time bulk historical
// backfill.
func newInitCmd() *cobra.Command {
	var (
		startDate string
		codes     []int
		clean     bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Discover stations and backfill the full observation history",
		Long: `Discovers the station catalogue from the remote selection page, upserts
every station, then crawls observations backward one calendar day at a time
from the start date until the dataset origin is reached.`,

		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := resolveApp(cmd.Context())
			if err != nil {
				return err
			}

			opts := crawl.Options{
				StationCodes: a.Config.Crawler.StationCodes,
				Clean:        a.Config.Crawler.CleanDatabase,
				Start:        a.Config.StartTime(time.Now()),
			}
			if startDate != "" {
				start, err := time.Parse(time.DateOnly, startDate)
				if err != nil {
					return fmt.Errorf("parse --start-date: %w", err)
				}
				opts.Start = start
			}
			if len(codes) > 0 {
				opts.StationCodes = codes
			}
			if cmd.Flags().Changed("clean") {
				opts.Clean = clean
			}

			started := time.Now()
			report, err := buildCrawler(a).Init(cmd.Context(), opts)
			if err != nil {
				return fmt.Errorf("init run: %w", err)
			}

			finishRun(cmd.Context(), a, "init", report, started)
			return nil
		},
	}

	cmd.Flags().StringVar(&startDate, "start-date", "", "first date of the backward walk (YYYY-MM-DD, default today)")
	cmd.Flags().IntSliceVar(&codes, "station-codes", nil, "restrict the crawl to these station codes")
	cmd.Flags().BoolVar(&clean, "clean", false, "drop all persisted stations and batches first")

	return cmd
}
