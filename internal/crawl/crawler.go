// Package crawl implements the crawl engine: station discovery, the
// backward-date walk with end-of-dataset detection, the per-date processing
// strategies, and run report accumulation.
package crawl

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/tlevesque/meteodb/internal/weather"
)

// OriginYear is the earliest year the remote dataset covers. A missing
// observation table while probing this year means the backward walk has
// exhausted the dataset; anywhere else it means the source changed shape.
const OriginYear = 1973

// Options control one crawl run.
type Options struct {
	// Start is the first date of the init-mode backward walk. Zero means
	// the run start time.
	Start time.Time

	// StationCodes restricts the run to the listed station codes. Empty
	// means every known station.
	StationCodes []int

	// Clean drops all persisted stations and batches before an init run.
	Clean bool
}

// Crawler orchestrates a run: it owns the station set, the date iteration,
// and the run report. One Crawler performs one logical run per call.
type Crawler struct {
	source     Source
	store      Store
	sequential Strategy
	concurrent Strategy
	logger     *zap.Logger
	now        func() time.Time
}

// New builds a Crawler. Strategies default to Sequential/Concurrent over the
// given source and store when nil.
func New(source Source, store Store, sequential, concurrent Strategy, logger *zap.Logger) *Crawler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if sequential == nil {
		sequential = NewSequential(source, store, NewExponentialRetryPolicy(), logger)
	}
	if concurrent == nil {
		concurrent = NewConcurrent(source, store, NewExponentialRetryPolicy(), logger)
	}
	return &Crawler{
		source:     source,
		store:      store,
		sequential: sequential,
		concurrent: concurrent,
		logger:     logger,
		now:        time.Now,
	}
}

// Init performs the bulk historical backfill: discover the catalogue, upsert
// every station, then walk backward one calendar day at a time from the start
// date until the dataset is exhausted. Returns the accumulated run report.
func (c *Crawler) Init(ctx context.Context, opts Options) (*Report, error) {
	if opts.Clean {
		c.logger.Info("clearing persisted stations and batches")
		if err := c.store.Clear(ctx); err != nil {
			return nil, fmt.Errorf("clear store: %w", err)
		}
	}

	c.logger.Debug("discovering stations")
	discovered, err := c.source.Stations(ctx)
	if err != nil {
		return nil, fmt.Errorf("discover stations: %w", err)
	}
	c.logger.Info("discovered stations", zap.Int("count", len(discovered)))

	for _, station := range discovered {
		if err := c.store.UpsertStation(ctx, station); err != nil {
			return nil, fmt.Errorf("upsert station %q: %w", station.Name, err)
		}
	}

	stations, err := c.store.Stations(ctx, weather.StationFilter{Codes: opts.StationCodes})
	if err != nil {
		return nil, fmt.Errorf("load stations: %w", err)
	}
	if len(stations) == 0 {
		return nil, fmt.Errorf("no stations match the configured codes %v", opts.StationCodes)
	}

	start := opts.Start
	if start.IsZero() {
		start = c.now()
	}
	return c.walkBackward(ctx, stations, weather.Day(start))
}

// walkBackward crawls day, day-1, day-2, ... until the end-of-dataset
// sentinel fires at the origin year. An explicit loop with a loop-carried
// accumulator; the walk spans tens of thousands of iterations.
func (c *Crawler) walkBackward(ctx context.Context, stations []weather.Station, day time.Time) (*Report, error) {
	total := &Report{}
	for {
		c.logger.Debug("processing date", zap.String("day", day.Format(time.DateOnly)))

		report, err := c.sequential.ProcessDate(ctx, stations, day)
		if err != nil {
			if errors.Is(err, ErrNoObservationTable) && day.Year() == OriginYear {
				c.logger.Info("dataset exhausted",
					zap.String("day", day.Format(time.DateOnly)),
					zap.Int("inserted", total.Inserted),
				)
				return total, nil
			}
			return nil, fmt.Errorf("process %s: %w", day.Format(time.DateOnly), err)
		}

		c.logger.Info("processed date",
			zap.String("day", day.Format(time.DateOnly)),
			zap.Int("inserted", report.Inserted),
			zap.Duration("took", report.Duration),
		)

		total.Add(report)
		day = day.AddDate(0, 0, -1)
	}
}

// Update performs the daily incremental refresh: re-fetch the current date
// for all persisted stations, concurrently. No discovery, no upsert, no
// backward walk.
func (c *Crawler) Update(ctx context.Context, opts Options) (*Report, error) {
	stations, err := c.store.Stations(ctx, weather.StationFilter{Codes: opts.StationCodes})
	if err != nil {
		return nil, fmt.Errorf("load stations: %w", err)
	}
	if len(stations) == 0 {
		return nil, errors.New("no persisted stations; run init first")
	}

	day := weather.Day(c.now())
	report, err := c.concurrent.ProcessDate(ctx, stations, day)
	if err != nil {
		return nil, fmt.Errorf("process %s: %w", day.Format(time.DateOnly), err)
	}
	return report, nil
}
