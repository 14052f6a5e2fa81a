// Package csvstore loads the trip table from its CSV source and writes
// filtered tables back out in the same format, so an export re-loads to
// the identical row set.
package csvstore

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"sort"

	"github.com/tripgrid/taxi-hotspots/internal/config"
	"github.com/tripgrid/taxi-hotspots/internal/domain"
	"github.com/tripgrid/taxi-hotspots/internal/observability"
)

// sampleSeed fixes the downsampling permutation so repeated loads of the
// same file produce the same table.
const sampleSeed = 42

// Loader reads the trip dataset from a CSV file.
type Loader struct {
	path    string
	maxRows int
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewLoader creates a Loader for the configured trip CSV.
func NewLoader(cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) *Loader {
	return &Loader{
		path:    cfg.TripsCSV,
		maxRows: cfg.MaxRows,
		logger:  logger,
		metrics: metrics,
	}
}

// Load reads, parses, and bounds the trip table. Malformed rows are
// dropped and counted, never fatal; an unreadable file or missing header
// columns are.
func (l *Loader) Load() ([]domain.Trip, error) {
	f, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("open trips csv: %w", err)
	}
	defer f.Close()

	trips, dropped, err := ReadTrips(f)
	if err != nil {
		return nil, fmt.Errorf("read trips csv %s: %w", l.path, err)
	}
	l.metrics.RowsDropped.Add(float64(dropped))

	if len(trips) > l.maxRows {
		l.logger.Info("downsampling trip table", "rows", len(trips), "max_rows", l.maxRows)
		trips = Downsample(trips, l.maxRows)
	}

	l.logger.Info("trip dataset loaded", "rows", len(trips), "dropped", dropped, "path", l.path)
	return trips, nil
}

// ReadTrips parses a trip CSV stream. It returns the parsed trips and the
// number of malformed rows dropped.
func ReadTrips(r io.Reader) ([]domain.Trip, int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // ragged rows are handled per-field

	header, err := reader.Read()
	if err != nil {
		return nil, 0, fmt.Errorf("read header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[name] = i
	}
	for _, name := range domain.RequiredColumns {
		if _, ok := cols[name]; !ok {
			return nil, 0, fmt.Errorf("missing required column %q", name)
		}
	}

	var trips []domain.Trip
	dropped := 0
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Unreadable line, drop it like any other malformed row.
			dropped++
			continue
		}

		trip, err := domain.ParseTripRow(cols, row)
		if err != nil {
			dropped++
			continue
		}
		trips = append(trips, trip)
	}

	return trips, dropped, nil
}

// Downsample caps the table at maxRows using a seeded permutation,
// preserving the original row order of the survivors.
func Downsample(trips []domain.Trip, maxRows int) []domain.Trip {
	if len(trips) <= maxRows {
		return trips
	}

	rng := rand.New(rand.NewSource(sampleSeed))
	keep := rng.Perm(len(trips))[:maxRows]
	sort.Ints(keep)

	sampled := make([]domain.Trip, maxRows)
	for i, idx := range keep {
		sampled[i] = trips[idx]
	}
	return sampled
}
