// Package store defines the persistence contract for stations and
// observation batches. The Postgres implementation lives in the postgres
// subpackage; the memory subpackage backs tests and dry runs.
package store

import (
	"context"

	"github.com/tlevesque/meteodb/internal/weather"
)

// Store persists stations and observation batches. Implementations must
// enforce uniqueness of both station name and station code, and must be
// safe for concurrent writers: the concurrent processing strategy persists
// batches from multiple goroutines at once.
type Store interface {
	// UpsertStation inserts the station, or updates code and region when a
	// station with the same name already exists.
	UpsertStation(ctx context.Context, s weather.Station) error

	// Stations returns persisted stations matching the filter, ordered by
	// name.
	Stations(ctx context.Context, filter weather.StationFilter) ([]weather.Station, error)

	// SaveBatch persists one station/day batch as a single unit, replacing
	// any previously saved batch for the same station and day.
	SaveBatch(ctx context.Context, batch weather.ObservationBatch) error

	// ForEachBatch streams every persisted batch, ordered by station name
	// then day, to fn. Iteration stops on the first error fn returns.
	ForEachBatch(ctx context.Context, fn func(weather.ObservationBatch) error) error

	// Clear removes every persisted station and batch.
	Clear(ctx context.Context) error

	// Close releases the underlying resources.
	Close()
}
