// Package postgres provides the Postgres-backed station and observation
// store.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tlevesque/meteodb/internal/weather"
)

// Config controls the connection pool.
type Config struct {
	DSN             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
}

// pgxPool is the pool subset the store uses; pgxmock implements it in tests.
type pgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
	Close()
}

// Store persists stations and observation batches in Postgres.
type Store struct {
	pool pgxPool
}

// New connects a pool using the provided config.
func New(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.DSN == "" {
		return nil, errors.New("db.dsn is required")
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return &Store{pool: pool}, nil
}

// NewWithPool constructs a store from an existing pool (primarily for
// testing).
func NewWithPool(pool pgxPool) (*Store, error) {
	if pool == nil {
		return nil, errors.New("pool is required")
	}
	return &Store{pool: pool}, nil
}

// Close releases the underlying pool resources.
func (s *Store) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

// UpsertStation inserts the station or updates code and region for an
// existing name.
func (s *Store) UpsertStation(ctx context.Context, st weather.Station) error {
	if st.Name == "" {
		return errors.New("station name is required")
	}
	_, err := s.pool.Exec(ctx, `
INSERT INTO stations (name, code, region)
VALUES ($1, $2, $3)
ON CONFLICT (name) DO UPDATE SET
	code = EXCLUDED.code,
	region = EXCLUDED.region`,
		st.Name, st.Code, st.Region,
	)
	if err != nil {
		return fmt.Errorf("upsert station: %w", err)
	}
	return nil
}

// Stations returns persisted stations matching the filter, ordered by name.
func (s *Store) Stations(ctx context.Context, filter weather.StationFilter) ([]weather.Station, error) {
	query := `SELECT name, code, region FROM stations ORDER BY name`
	args := []any{}
	if len(filter.Codes) > 0 {
		query = `SELECT name, code, region FROM stations WHERE code = ANY($1) ORDER BY name`
		args = append(args, filter.Codes)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query stations: %w", err)
	}
	defer rows.Close()

	var stations []weather.Station
	for rows.Next() {
		var st weather.Station
		if err := rows.Scan(&st.Name, &st.Code, &st.Region); err != nil {
			return nil, fmt.Errorf("scan station: %w", err)
		}
		stations = append(stations, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate stations: %w", err)
	}
	return stations, nil
}

// SaveBatch persists one station/day batch in a single transaction,
// replacing any previously saved batch for the same station and day.
func (s *Store) SaveBatch(ctx context.Context, batch weather.ObservationBatch) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin batch transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var dayID int64
	err = tx.QueryRow(ctx, `
INSERT INTO observation_days (station_code, day)
VALUES ($1, $2)
ON CONFLICT (station_code, day) DO UPDATE SET day = EXCLUDED.day
RETURNING id`,
		batch.Station.Code, batch.Day,
	).Scan(&dayID)
	if err != nil {
		return fmt.Errorf("upsert observation day: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM observations WHERE day_id = $1`, dayID); err != nil {
		return fmt.Errorf("replace observations: %w", err)
	}

	for _, obs := range batch.Observations {
		_, err := tx.Exec(ctx, `
INSERT INTO observations (
	day_id, hour, cloud_cover, visibility_km, temperature_c, humidity_pct,
	humidex, wind_chill_c, wind_speed_kmh, pressure_hpa, precipitation
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
			dayID, obs.Hour, obs.CloudCover, obs.Visibility, obs.Temperature,
			obs.Humidity, obs.Humidex, obs.WindChill, obs.WindSpeed,
			obs.Pressure, obs.Precipitation,
		)
		if err != nil {
			return fmt.Errorf("insert observation hour %d: %w", obs.Hour, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit batch: %w", err)
	}
	return nil
}

// ForEachBatch streams every persisted batch to fn, ordered by station name
// then day, hours ascending within a batch.
func (s *Store) ForEachBatch(ctx context.Context, fn func(weather.ObservationBatch) error) error {
	rows, err := s.pool.Query(ctx, `
SELECT s.name, s.code, s.region, d.day, o.hour,
	o.cloud_cover, o.visibility_km, o.temperature_c, o.humidity_pct,
	o.humidex, o.wind_chill_c, o.wind_speed_kmh, o.pressure_hpa,
	o.precipitation
FROM observation_days d
JOIN stations s ON s.code = d.station_code
JOIN observations o ON o.day_id = d.id
ORDER BY s.name, d.day, o.hour`)
	if err != nil {
		return fmt.Errorf("query batches: %w", err)
	}
	defer rows.Close()

	var current weather.ObservationBatch
	flush := func() error {
		if len(current.Observations) == 0 {
			return nil
		}
		return fn(current)
	}

	for rows.Next() {
		var (
			st  weather.Station
			day time.Time
			obs weather.Observation
		)
		err := rows.Scan(
			&st.Name, &st.Code, &st.Region, &day, &obs.Hour,
			&obs.CloudCover, &obs.Visibility, &obs.Temperature, &obs.Humidity,
			&obs.Humidex, &obs.WindChill, &obs.WindSpeed, &obs.Pressure,
			&obs.Precipitation,
		)
		if err != nil {
			return fmt.Errorf("scan observation: %w", err)
		}

		if st.Code != current.Station.Code || !day.Equal(current.Day) {
			if err := flush(); err != nil {
				return err
			}
			current = weather.ObservationBatch{Station: st, Day: day}
		}
		current.Observations = append(current.Observations, obs)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate batches: %w", err)
	}
	return flush()
}

// Clear removes every persisted station and batch.
func (s *Store) Clear(ctx context.Context) error {
	_, err := s.pool.Exec(ctx,
		`TRUNCATE observations, observation_days, stations RESTART IDENTITY CASCADE`)
	if err != nil {
		return fmt.Errorf("clear store: %w", err)
	}
	return nil
}
