package csvstore_test

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tripgrid/taxi-hotspots/internal/adapter/csvstore"
	"github.com/tripgrid/taxi-hotspots/internal/config"
	"github.com/tripgrid/taxi-hotspots/internal/domain"
	"github.com/tripgrid/taxi-hotspots/internal/observability"
)

const sampleCSV = `tpep_pickup_datetime,tpep_dropoff_datetime,pickup_latitude,pickup_longitude,dropoff_latitude,dropoff_longitude,pickup_borough,pickup_zone,trip_distance,total_amount
2016-03-14 08:15:00,2016-03-14 08:35:00,40.758,-73.9855,40.7061,-74.0087,Manhattan,Times Sq,3.2,17.5
2016-03-14 09:00:00,2016-03-14 09:10:00,40.6782,-73.9442,40.6892,-73.9821,Brooklyn,Fort Greene,1.1,8.3
,,,,,,Queens,,1.0,5.0
2016-03-14 10:30:00,2016-03-14 10:50:00,not-a-number,-73.98,40.70,-74.00,Manhattan,Chelsea,2.0,12.0
2016-03-14 11:00:00,,40.7306,-73.9866,,,Manhattan,East Village,0.8,6.0
`

func TestReadTrips_DropsMalformedRows(t *testing.T) {
	trips, dropped, err := csvstore.ReadTrips(strings.NewReader(sampleCSV))
	require.NoError(t, err)

	assert.Equal(t, 2, dropped)
	require.Len(t, trips, 3)
	assert.Equal(t, "Manhattan", trips[0].Borough)
	assert.Equal(t, "Brooklyn", trips[1].Borough)
	assert.Equal(t, "East Village", trips[2].Zone)
	assert.InEpsilon(t, 20.0, trips[0].DurationMinutes, 1e-9)
	assert.Zero(t, trips[2].DurationMinutes) // no dropoff time
}

func TestReadTrips_MissingRequiredColumn(t *testing.T) {
	_, _, err := csvstore.ReadTrips(strings.NewReader("foo,bar\n1,2\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required column")
}

func TestReadTrips_EmptyStream(t *testing.T) {
	_, _, err := csvstore.ReadTrips(strings.NewReader(""))
	assert.Error(t, err)
}

func TestWriteTrips_RoundTrip(t *testing.T) {
	original, dropped, err := csvstore.ReadTrips(strings.NewReader(sampleCSV))
	require.NoError(t, err)
	require.Equal(t, 2, dropped)

	var buf bytes.Buffer
	require.NoError(t, csvstore.WriteTrips(&buf, original))

	reloaded, dropped, err := csvstore.ReadTrips(&buf)
	require.NoError(t, err)
	assert.Zero(t, dropped)

	if diff := cmp.Diff(original, reloaded); diff != "" {
		t.Fatalf("round-trip mismatch (-original +reloaded):\n%s", diff)
	}
}

func TestWriteTrips_EmptyTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, csvstore.WriteTrips(&buf, nil))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1) // header only
	assert.Contains(t, lines[0], domain.ColPickupTime)
}

func TestDownsample(t *testing.T) {
	trips := make([]domain.Trip, 100)
	for i := range trips {
		trips[i] = domain.Trip{PickupTime: time.Date(2016, 3, 14, 0, 0, i, 0, time.UTC)}
	}

	first := csvstore.Downsample(trips, 10)
	second := csvstore.Downsample(trips, 10)

	require.Len(t, first, 10)
	assert.Equal(t, first, second, "downsampling must be deterministic")

	// Survivors keep their original relative order.
	for i := 1; i < len(first); i++ {
		assert.True(t, first[i].PickupTime.After(first[i-1].PickupTime))
	}
}

func TestDownsample_NoopUnderCap(t *testing.T) {
	trips := make([]domain.Trip, 5)
	assert.Len(t, csvstore.Downsample(trips, 10), 5)
}

func TestLoader_Load(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trips.csv")
	require.NoError(t, os.WriteFile(path, []byte(sampleCSV), 0o644))

	cfg := &config.Config{TripsCSV: path, MaxRows: 2}
	loader := csvstore.NewLoader(cfg, slog.Default(), observability.NewMetricsForTesting())

	trips, err := loader.Load()
	require.NoError(t, err)
	assert.Len(t, trips, 2, "table capped at MaxRows")
}

func TestLoader_Load_MissingFile(t *testing.T) {
	cfg := &config.Config{TripsCSV: filepath.Join(t.TempDir(), "absent.csv"), MaxRows: 10}
	loader := csvstore.NewLoader(cfg, slog.Default(), observability.NewMetricsForTesting())

	_, err := loader.Load()
	assert.Error(t, err)
}
