// Package weather defines the domain entities shared by the crawl engine,
// the meteociel client, and the persistence layer.
package weather

import (
	"time"
)

// Station is a named geographic observation point. Code is the numeric
// identifier assigned by the remote source; it is stable across crawls.
// Stations are immutable once discovered.
type Station struct {
	Name   string
	Code   int
	Region string
}

// Observation is a single hourly reading. Every numeric field except Hour is
// optional: a nil pointer means the source published no value (or a value
// that does not parse as a number). Absent is never represented as zero.
type Observation struct {
	Hour          int
	CloudCover    *float64
	Visibility    *float64 // km
	Temperature   *float64 // °C
	Humidity      *float64 // %
	Humidex       *float64
	WindChill     *float64 // °C
	WindSpeed     *float64 // km/h
	Pressure      *float64 // hPa
	Precipitation string
}

// ObservationBatch is one station's full set of hourly observations for one
// calendar day. Observations are ordered ascending by hour. A batch is
// persisted as a single unit.
type ObservationBatch struct {
	Station      Station
	Day          time.Time
	Observations []Observation
}

// StationFilter restricts a station query. The zero value matches every
// station; a non-empty Codes slice matches only stations whose code is
// listed.
type StationFilter struct {
	Codes []int
}

// Matches reports whether the station passes the filter.
func (f StationFilter) Matches(s Station) bool {
	if len(f.Codes) == 0 {
		return true
	}
	for _, c := range f.Codes {
		if c == s.Code {
			return true
		}
	}
	return false
}

// Day truncates t to midnight UTC. Batches are keyed by day, never by a
// point in time.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
