package export

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tlevesque/meteodb/internal/store/memory"
	"github.com/tlevesque/meteodb/internal/weather"
)

func TestRunWritesOneFilePerBatch(t *testing.T) {
	t.Parallel()

	st := memory.New()
	ctx := context.Background()
	day := time.Date(1998, time.July, 12, 0, 0, 0, 0, time.UTC)

	temp := 21.5
	zero := 0.0
	require.NoError(t, st.SaveBatch(ctx, weather.ObservationBatch{
		Station: weather.Station{Name: "Brest-Guipavas", Code: 7110},
		Day:     day,
		Observations: []weather.Observation{
			{Hour: 0, Temperature: &temp, WindSpeed: &zero, Precipitation: "aucune"},
			{Hour: 1, Precipitation: "0.2 mm"},
		},
	}))
	require.NoError(t, st.SaveBatch(ctx, weather.ObservationBatch{
		Station:      weather.Station{Name: "Nice / Côte d'Azur", Code: 7690},
		Day:          day,
		Observations: []weather.Observation{{Hour: 0, Precipitation: "aucune"}},
	}))

	dir := t.TempDir()
	e, err := New(st, dir, nil)
	require.NoError(t, err)

	files, err := e.Run(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, files)

	data, err := os.ReadFile(filepath.Join(dir, "Brest-Guipavas_1998-07-12.csv"))
	require.NoError(t, err)
	require.Equal(t,
		"hour;cloud_cover;visibility_km;temperature_c;humidity_pct;humidex;wind_chill_c;wind_speed_kmh;pressure_hpa;precipitation\n"+
			"0;;;21.5;;;;0;;aucune\n"+
			"1;;;;;;;;;0.2 mm\n",
		string(data))

	// Separators in station names never leak into the path.
	_, err = os.Stat(filepath.Join(dir, "Nice---Côte-d'Azur_1998-07-12.csv"))
	require.NoError(t, err)
}

func TestAbsentAndZeroAreDistinctCells(t *testing.T) {
	t.Parallel()

	st := memory.New()
	ctx := context.Background()
	zero := 0.0
	require.NoError(t, st.SaveBatch(ctx, weather.ObservationBatch{
		Station: weather.Station{Name: "Brest", Code: 7110},
		Day:     time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC),
		Observations: []weather.Observation{
			{Hour: 3, Temperature: &zero, Precipitation: ""},
		},
	}))

	dir := t.TempDir()
	e, err := New(st, dir, nil)
	require.NoError(t, err)
	_, err = e.Run(ctx)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "Brest_2024-06-01.csv"))
	require.NoError(t, err)
	// Measured zero renders as "0"; an absent reading is an empty cell.
	require.Contains(t, string(data), "\n3;;;0;;;;;;\n")
}

func TestNewRequiresDirectory(t *testing.T) {
	t.Parallel()

	_, err := New(memory.New(), "  ", nil)
	require.Error(t, err)
}

func TestRunEmptyStore(t *testing.T) {
	t.Parallel()

	e, err := New(memory.New(), t.TempDir(), nil)
	require.NoError(t, err)

	files, err := e.Run(context.Background())
	require.NoError(t, err)
	require.Zero(t, files)
}
