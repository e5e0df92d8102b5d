package meteociel

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/tlevesque/meteodb/internal/crawl"
	"github.com/tlevesque/meteodb/internal/htmltable"
	"github.com/tlevesque/meteodb/internal/weather"
)

// The hourly table sits at a fixed position among all tables of the page.
const observationTableIndex = 8

// Fixed column positions of the hourly table.
const (
	colHour          = 0
	colCloudCover    = 1
	colVisibility    = 3
	colTemperature   = 4
	colHumidity      = 5
	colHumidex       = 6
	colWindChill     = 7
	colWindSpeed     = 9
	colPressure      = 10
	colPrecipitation = 11
)

var leadingNumber = regexp.MustCompile(`^-?[0-9]+(\.[0-9]+)?`)

// Observations fetches one station's hourly readings for one calendar day.
// Returns ErrNoObservationTable (wrapped with the page URL) when the page
// carries no hourly table, which marks the end of the dataset during the
// backward walk.
func (c *Client) Observations(ctx context.Context, station weather.Station, day time.Time) (weather.ObservationBatch, error) {
	url := c.observationURL(station, day)

	body, err := c.get(ctx, url, "observations")
	if err != nil {
		return weather.ObservationBatch{}, err
	}

	if err := c.archive.Save(ctx, archivePath(station, day), body); err != nil {
		// Archival is best-effort; a failed upload never fails the crawl.
		c.logger.Warn("archive page failed",
			zap.Int("code", station.Code),
			zap.Error(err),
		)
	}

	tables, err := htmltable.Tables(bytes.NewReader(body))
	if err != nil {
		return weather.ObservationBatch{}, &crawl.ParseError{URL: url, Reason: err.Error()}
	}
	if len(tables) <= observationTableIndex {
		return weather.ObservationBatch{}, fmt.Errorf("%s: %w", url, crawl.ErrNoObservationTable)
	}

	rows := tables[observationTableIndex]
	batch := weather.ObservationBatch{
		Station: station,
		Day:     weather.Day(day),
	}

	// Rows are published newest-first; reading bottom-to-top (skipping the
	// header row) yields ascending hours.
	for i := len(rows) - 1; i > 0; i-- {
		row := rows[i]
		if len(row) <= colPrecipitation {
			return weather.ObservationBatch{}, &crawl.ParseError{
				URL:    url,
				Reason: fmt.Sprintf("observation row has %d columns, want at least %d", len(row), colPrecipitation+1),
			}
		}

		hour, ok := parseLeadingInt(row[colHour])
		if !ok {
			return weather.ObservationBatch{}, &crawl.ParseError{
				URL:    url,
				Reason: fmt.Sprintf("unparseable hour cell %q", row[colHour]),
			}
		}

		batch.Observations = append(batch.Observations, weather.Observation{
			Hour:          hour,
			CloudCover:    parseOptionalFloat(row[colCloudCover]),
			Visibility:    parseOptionalFloat(row[colVisibility]),
			Temperature:   parseOptionalFloat(row[colTemperature]),
			Humidity:      parseOptionalFloat(row[colHumidity]),
			Humidex:       parseOptionalFloat(row[colHumidex]),
			WindChill:     parseOptionalFloat(row[colWindChill]),
			WindSpeed:     parseOptionalFloat(row[colWindSpeed]),
			Pressure:      parseOptionalFloat(row[colPressure]),
			Precipitation: row[colPrecipitation],
		})
	}

	sort.SliceStable(batch.Observations, func(i, j int) bool {
		return batch.Observations[i].Hour < batch.Observations[j].Hour
	})
	return batch, nil
}

// observationURL builds the per-day page URL. The month parameter is zero
// based; the parameter names and order are part of the remote contract.
func (c *Client) observationURL(station weather.Station, day time.Time) string {
	return fmt.Sprintf("%s?code2=%d&jour2=%d&mois2=%d&annee2=%d&envoyer=OK",
		c.cfg.BaseURL, station.Code, day.Day(), int(day.Month())-1, day.Year())
}

func archivePath(station weather.Station, day time.Time) string {
	return fmt.Sprintf("%d/%s.html", station.Code, day.Format(time.DateOnly))
}

// parseLeadingInt reads the leading integer of a cell like "23 h".
func parseLeadingInt(cell string) (int, bool) {
	m := leadingNumber.FindString(strings.TrimSpace(cell))
	if m == "" {
		return 0, false
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return 0, false
	}
	return n, true
}

// parseOptionalFloat reads the leading number of a cell like "12.5 °C".
// Cells without a leading number ("—", "aucune", "") are absent, never zero.
func parseOptionalFloat(cell string) *float64 {
	m := leadingNumber.FindString(strings.TrimSpace(cell))
	if m == "" {
		return nil
	}
	f, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return nil
	}
	return &f
}
