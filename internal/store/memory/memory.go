// Package memory implements an in-memory Store for tests and dry runs.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/tlevesque/meteodb/internal/weather"
)

type batchKey struct {
	code int
	day  string
}

// Store keeps stations and batches in process memory. Safe for concurrent
// use.
type Store struct {
	mu       sync.Mutex
	stations map[string]weather.Station // keyed by name
	batches  map[batchKey]weather.ObservationBatch
}

// New builds an empty Store.
func New() *Store {
	return &Store{
		stations: make(map[string]weather.Station),
		batches:  make(map[batchKey]weather.ObservationBatch),
	}
}

// UpsertStation inserts or replaces the station keyed by name.
func (s *Store) UpsertStation(_ context.Context, st weather.Station) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stations[st.Name] = st
	return nil
}

// Stations returns stations matching the filter, ordered by name.
func (s *Store) Stations(_ context.Context, filter weather.StationFilter) ([]weather.Station, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []weather.Station
	for _, st := range s.stations {
		if filter.Matches(st) {
			out = append(out, st)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// SaveBatch stores the batch, replacing any prior batch for the same
// station and day.
func (s *Store) SaveBatch(_ context.Context, batch weather.ObservationBatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := batchKey{code: batch.Station.Code, day: batch.Day.Format("2006-01-02")}
	s.batches[key] = batch
	return nil
}

// ForEachBatch streams stored batches ordered by station name then day.
func (s *Store) ForEachBatch(_ context.Context, fn func(weather.ObservationBatch) error) error {
	s.mu.Lock()
	batches := make([]weather.ObservationBatch, 0, len(s.batches))
	for _, b := range s.batches {
		batches = append(batches, b)
	}
	s.mu.Unlock()

	sort.Slice(batches, func(i, j int) bool {
		if batches[i].Station.Name != batches[j].Station.Name {
			return batches[i].Station.Name < batches[j].Station.Name
		}
		return batches[i].Day.Before(batches[j].Day)
	})
	for _, b := range batches {
		if err := fn(b); err != nil {
			return err
		}
	}
	return nil
}

// Clear drops every station and batch.
func (s *Store) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stations = make(map[string]weather.Station)
	s.batches = make(map[batchKey]weather.ObservationBatch)
	return nil
}

// Close is a no-op for the memory store.
func (s *Store) Close() {}

// BatchCount reports the number of stored batches. Test helper.
func (s *Store) BatchCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.batches)
}
