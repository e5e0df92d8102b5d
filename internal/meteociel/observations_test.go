package meteociel

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tlevesque/meteodb/internal/crawl"
	"github.com/tlevesque/meteodb/internal/weather"
)

var brest = weather.Station{Name: "Brest-Guipavas", Code: 7110, Region: "29"}

// observationPage wraps the hourly rows in enough filler tables to put the
// hourly table at its fixed page position. Rows are given newest-first, the
// way the remote publishes them.
func observationPage(rows ...string) string {
	var b strings.Builder
	b.WriteString("<html><body>")
	for i := 0; i < observationTableIndex; i++ {
		b.WriteString("<table><tr><td>chrome</td></tr></table>")
	}
	b.WriteString("<table><tr>")
	for _, h := range []string{"Heure", "Nebul.", "Icone", "Visib.", "Temp.", "Humi.", "Humidex", "Windchill", "Vent", "Rafales", "Pression", "Precip."} {
		b.WriteString("<th>" + h + "</th>")
	}
	b.WriteString("</tr>")
	for _, row := range rows {
		b.WriteString(row)
	}
	b.WriteString("</table></body></html>")
	return b.String()
}

func observationRow(cells ...string) string {
	var b strings.Builder
	b.WriteString("<tr>")
	for _, c := range cells {
		b.WriteString("<td>" + c + "</td>")
	}
	b.WriteString("</tr>")
	return b.String()
}

func TestObservations(t *testing.T) {
	t.Parallel()

	page := observationPage(
		observationRow("23 h", "8/8", "", "10 km", "12.5 °C", "87 %", "13.1", "11.9", "", "15 km/h", "1013.2 hPa", "0.2 mm"),
		observationRow("22 h", "—", "", "aucune", "-0.5 °C", "", "—", "—", "", "0 km/h", "1013 hPa", "aucune"),
	)

	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(page))
	})

	day := time.Date(2020, time.March, 5, 9, 0, 0, 0, time.UTC)
	batch, err := c.Observations(context.Background(), brest, day)
	require.NoError(t, err)

	require.Equal(t, brest, batch.Station)
	require.Equal(t, time.Date(2020, time.March, 5, 0, 0, 0, 0, time.UTC), batch.Day)
	require.Len(t, batch.Observations, 2)

	// Ascending hours, regardless of publication order.
	first, second := batch.Observations[0], batch.Observations[1]
	require.Equal(t, 22, first.Hour)
	require.Equal(t, 23, second.Hour)

	require.Equal(t, 12.5, *second.Temperature)
	require.Equal(t, 87.0, *second.Humidity)
	require.Equal(t, 8.0, *second.CloudCover)
	require.Equal(t, 1013.2, *second.Pressure)
	require.Equal(t, "0.2 mm", second.Precipitation)

	// A dash or empty cell is absent; a literal zero is a value.
	require.Nil(t, first.CloudCover)
	require.Nil(t, first.Visibility)
	require.Nil(t, first.Humidity)
	require.Nil(t, first.Humidex)
	require.Nil(t, first.WindChill)
	require.Equal(t, -0.5, *first.Temperature)
	require.NotNil(t, first.WindSpeed)
	require.Equal(t, 0.0, *first.WindSpeed)
	require.Equal(t, "aucune", first.Precipitation)
}

func TestObservationURLQuery(t *testing.T) {
	t.Parallel()

	var gotQuery string
	page := observationPage(
		observationRow("0 h", "", "", "", "", "", "", "", "", "", "", ""),
	)

	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Write([]byte(page))
	})

	day := time.Date(2020, time.January, 5, 0, 0, 0, 0, time.UTC)
	_, err := c.Observations(context.Background(), brest, day)
	require.NoError(t, err)

	// The month parameter is zero based: January is 0.
	require.Equal(t, "code2=7110&jour2=5&mois2=0&annee2=2020&envoyer=OK", gotQuery)
}

func TestObservationsMissingTableIsSentinel(t *testing.T) {
	t.Parallel()

	// Pages before the start of the dataset carry the page chrome but no
	// hourly table.
	var b strings.Builder
	b.WriteString("<html><body>")
	for i := 0; i < observationTableIndex; i++ {
		b.WriteString("<table><tr><td>chrome</td></tr></table>")
	}
	b.WriteString("</body></html>")

	c, srv := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(b.String()))
	})

	day := time.Date(1973, time.January, 1, 0, 0, 0, 0, time.UTC)
	_, err := c.Observations(context.Background(), brest, day)
	require.ErrorIs(t, err, crawl.ErrNoObservationTable)
	require.Contains(t, err.Error(), srv.URL)
}

func TestObservationsShortRow(t *testing.T) {
	t.Parallel()

	page := observationPage(observationRow("23 h", "8/8", "truncated"))

	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(page))
	})

	_, err := c.Observations(context.Background(), brest, time.Now())
	var pe *crawl.ParseError
	require.ErrorAs(t, err, &pe)
	require.Contains(t, pe.Reason, "columns")
}

func TestObservationsUnparseableHour(t *testing.T) {
	t.Parallel()

	page := observationPage(
		observationRow("minuit", "", "", "", "", "", "", "", "", "", "", ""),
	)

	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(page))
	})

	_, err := c.Observations(context.Background(), brest, time.Now())
	var pe *crawl.ParseError
	require.ErrorAs(t, err, &pe)
	require.Contains(t, pe.Reason, "hour")
}

type recordingArchive struct {
	mu    sync.Mutex
	saved map[string][]byte
	err   error
}

func (a *recordingArchive) Save(_ context.Context, name string, data []byte) error {
	if a.err != nil {
		return a.err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.saved == nil {
		a.saved = map[string][]byte{}
	}
	a.saved[name] = append([]byte(nil), data...)
	return nil
}

func TestObservationsArchivesRawPage(t *testing.T) {
	t.Parallel()

	page := observationPage(
		observationRow("0 h", "", "", "", "", "", "", "", "", "", "", ""),
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(page))
	}))
	t.Cleanup(srv.Close)
	arch := &recordingArchive{}
	c := New(Config{BaseURL: srv.URL + "/temps-reel/obs_villes.php"}, arch, nil)

	day := time.Date(2020, time.March, 5, 0, 0, 0, 0, time.UTC)
	_, err := c.Observations(context.Background(), brest, day)
	require.NoError(t, err)

	require.Contains(t, arch.saved, "7110/2020-03-05.html")
	require.Equal(t, []byte(page), arch.saved["7110/2020-03-05.html"])
}

func TestObservationsArchiveFailureIsBestEffort(t *testing.T) {
	t.Parallel()

	page := observationPage(
		observationRow("0 h", "", "", "", "", "", "", "", "", "", "", ""),
	)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(page))
	}))
	t.Cleanup(srv.Close)
	arch := &recordingArchive{err: errors.New("bucket unavailable")}
	c := New(Config{BaseURL: srv.URL + "/temps-reel/obs_villes.php"}, arch, nil)

	batch, err := c.Observations(context.Background(), brest, time.Now())
	require.NoError(t, err)
	require.Len(t, batch.Observations, 1)
}
