package meteociel

import (
	"bytes"
	"context"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/tlevesque/meteodb/internal/crawl"
	"github.com/tlevesque/meteodb/internal/htmltable"
	"github.com/tlevesque/meteodb/internal/weather"
)

// A handful of station codes are shared with a second, unrelated station.
// The legitimate owner of each code is pinned by name; the impostor entry is
// skipped. Dropping by first-occurrence would silently lose the real station,
// so the expected names are spelled out.
var duplicateCodeOwners = map[int]string{
	7314: "Pointe de Chassiron",
	7156: "Montsouris",
	235:  "Trets",
}

// Stations discovers the station catalogue from the selection page. The
// transport has already normalized the Latin-1 page to UTF-8.
func (c *Client) Stations(ctx context.Context) ([]weather.Station, error) {
	body, err := c.get(ctx, c.cfg.BaseURL, "stations")
	if err != nil {
		return nil, err
	}

	options, err := htmltable.SelectOptions(bytes.NewReader(body))
	if err != nil {
		return nil, &crawl.ParseError{URL: c.cfg.BaseURL, Reason: err.Error()}
	}
	if options == nil {
		return nil, &crawl.ParseError{URL: c.cfg.BaseURL, Reason: "station dropdown not found"}
	}

	var stations []weather.Station
	for _, opt := range options {
		code, _ := strconv.Atoi(strings.TrimSpace(opt.Value))
		name, region := splitRegion(opt.Text)

		if expected, dup := duplicateCodeOwners[code]; dup && name != expected {
			c.logger.Debug("skipping duplicate station code",
				zap.Int("code", code),
				zap.String("name", name),
			)
			continue
		}
		if name == "" || code == 0 {
			continue
		}

		stations = append(stations, weather.Station{
			Name:   name,
			Code:   code,
			Region: region,
		})
	}
	return stations, nil
}

// splitRegion separates "Brest-Guipavas (29)" into name "Brest-Guipavas" and
// region "29". Entries without a parenthesized suffix keep an empty region.
func splitRegion(display string) (name, region string) {
	display = strings.TrimSpace(display)
	idx := strings.LastIndex(display, " (")
	if idx < 0 {
		return display, ""
	}
	region = strings.TrimSuffix(display[idx+2:], ")")
	name = strings.TrimSpace(display[:idx])
	return name, region
}
