package crawl

import (
	"context"
	"time"

	"github.com/tlevesque/meteodb/internal/weather"
)

// Source retrieves stations and observations from the remote dataset.
// meteociel.Client is the production implementation; tests substitute fakes.
type Source interface {
	// Stations discovers the full station catalogue from the remote
	// selection page.
	Stations(ctx context.Context) ([]weather.Station, error)

	// Observations fetches one station's hourly readings for one calendar
	// day. It returns ErrNoObservationTable (possibly wrapped) when the page
	// carries no hourly table for that day.
	Observations(ctx context.Context, station weather.Station, day time.Time) (weather.ObservationBatch, error)
}

// Store is the narrow persistence contract the crawl engine depends on. The
// schema (unique station name AND unique station code) is the
// implementation's concern.
type Store interface {
	// UpsertStation inserts the station or, when a station with the same
	// name already exists, updates its code and region.
	UpsertStation(ctx context.Context, s weather.Station) error

	// Stations returns the persisted stations matching the filter, in
	// catalogue (name) order.
	Stations(ctx context.Context, filter weather.StationFilter) ([]weather.Station, error)

	// SaveBatch persists one station/day batch as a single unit.
	SaveBatch(ctx context.Context, batch weather.ObservationBatch) error

	// Clear removes every persisted station and batch. Init-mode cleanup
	// only.
	Clear(ctx context.Context) error
}

// Strategy processes the whole station set for one date and reports the
// rows inserted plus the wall-clock duration. A strategy either persists and
// counts every station's batch or fails the date as a whole.
type Strategy interface {
	ProcessDate(ctx context.Context, stations []weather.Station, day time.Time) (*Report, error)
}
