// Package export writes persisted observation batches to CSV files, one
// file per station/day.
package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/tlevesque/meteodb/internal/store"
	"github.com/tlevesque/meteodb/internal/weather"
)

var header = []string{
	"hour", "cloud_cover", "visibility_km", "temperature_c", "humidity_pct",
	"humidex", "wind_chill_c", "wind_speed_kmh", "pressure_hpa", "precipitation",
}

// Exporter streams batches from the store into CSV files.
type Exporter struct {
	store  store.Store
	dir    string
	logger *zap.Logger
}

// New builds an Exporter targeting dir.
func New(st store.Store, dir string, logger *zap.Logger) (*Exporter, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("export directory is required")
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create export directory: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Exporter{store: st, dir: dir, logger: logger}, nil
}

// Run writes one CSV file per persisted batch and returns the file count.
func (e *Exporter) Run(ctx context.Context) (int, error) {
	files := 0
	err := e.store.ForEachBatch(ctx, func(batch weather.ObservationBatch) error {
		if err := e.writeBatch(batch); err != nil {
			return err
		}
		files++
		return nil
	})
	if err != nil {
		return files, fmt.Errorf("export batches: %w", err)
	}
	e.logger.Info("export finished", zap.Int("files", files), zap.String("dir", e.dir))
	return files, nil
}

func (e *Exporter) writeBatch(batch weather.ObservationBatch) error {
	name := fmt.Sprintf("%s_%s.csv",
		sanitizeName(batch.Station.Name), batch.Day.Format(time.DateOnly))
	path := filepath.Join(e.dir, name)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	w := csv.NewWriter(f)
	w.Comma = ';'
	if err := w.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, obs := range batch.Observations {
		record := []string{
			strconv.Itoa(obs.Hour),
			formatOptional(obs.CloudCover),
			formatOptional(obs.Visibility),
			formatOptional(obs.Temperature),
			formatOptional(obs.Humidity),
			formatOptional(obs.Humidex),
			formatOptional(obs.WindChill),
			formatOptional(obs.WindSpeed),
			formatOptional(obs.Pressure),
			obs.Precipitation,
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush %s: %w", path, err)
	}
	return nil
}

// formatOptional renders an absent value as an empty cell, never as zero.
func formatOptional(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func sanitizeName(name string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', ' ':
			return '-'
		}
		return r
	}, name)
}
