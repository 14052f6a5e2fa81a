package pipeline_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tripgrid/taxi-hotspots/internal/domain"
	"github.com/tripgrid/taxi-hotspots/internal/observability"
	"github.com/tripgrid/taxi-hotspots/internal/pipeline"
)

// --- mocks ---

type mockPublisher struct {
	published []pipeline.Result
	err       error
}

func (m *mockPublisher) PublishSnapshot(_ context.Context, result pipeline.Result) error {
	if m.err != nil {
		return m.err
	}
	m.published = append(m.published, result)
	return nil
}

func newTestMetrics() *observability.Metrics {
	// Use a fresh registry to avoid "already registered" panics in tests.
	return observability.NewMetricsForTesting()
}

func trip(hour int, borough string, lat, lon, fare float64) domain.Trip {
	return domain.Trip{
		PickupTime: time.Date(2016, time.March, 14, hour, 0, 0, 0, time.UTC),
		PickupLat:  lat,
		PickupLon:  lon,
		Borough:    borough,
		Fare:       fare,
	}
}

// testTrips holds a dense midtown group of three plus two isolated pickups.
func testTrips() []domain.Trip {
	return []domain.Trip{
		trip(12, "Manhattan", 40.7500, -73.9800, 10),
		trip(12, "Manhattan", 40.7505, -73.9805, 20),
		trip(12, "Manhattan", 40.7502, -73.9797, 30),
		trip(12, "Brooklyn", 40.6000, -73.9500, 40),
		trip(3, "Manhattan", 40.9000, -73.8000, 50),
	}
}

func newPipeline(t *testing.T, trips []domain.Trip, pub pipeline.SnapshotPublisher) *pipeline.Pipeline {
	t.Helper()
	clusterer := domain.NewDBSCAN(0.01, 3, nil)
	return pipeline.New(trips, clusterer, pub, slog.Default(), newTestMetrics())
}

// --- tests ---

func TestProcess_FilterClusterAggregate(t *testing.T) {
	p := newPipeline(t, testTrips(), nil)

	result, err := p.Process(context.Background(), domain.FilterCriteria{
		HourFrom: 10, HourTo: 14, Boroughs: []string{"Manhattan"},
	})
	require.NoError(t, err)

	require.Len(t, result.Rows, 3)
	assert.Equal(t, 3, result.KPIs.TripCount)
	assert.InEpsilon(t, 20.0, result.KPIs.AvgFare, 1e-9)

	require.Len(t, result.Clusters, 1)
	assert.Equal(t, 1, result.KPIs.ClusterCount)
	assert.Equal(t, []int{0, 1, 2}, result.Clusters[0].MemberIndices)
	assert.Empty(t, result.Noise)
}

func TestProcess_ClusterIndicesReferenceFilteredRows(t *testing.T) {
	p := newPipeline(t, testTrips(), nil)

	result, err := p.Process(context.Background(), domain.FilterCriteria{
		HourFrom: 0, HourTo: 23, Boroughs: []string{"Manhattan", "Brooklyn"},
	})
	require.NoError(t, err)

	covered := make(map[int]bool)
	for _, c := range result.Clusters {
		for _, i := range c.MemberIndices {
			require.Less(t, i, len(result.Rows))
			covered[i] = true
		}
	}
	for _, i := range result.Noise {
		require.Less(t, i, len(result.Rows))
		covered[i] = true
	}
	assert.Len(t, covered, len(result.Rows))
}

func TestProcess_EmptyBoroughSelection(t *testing.T) {
	p := newPipeline(t, testTrips(), nil)

	result, err := p.Process(context.Background(), domain.FilterCriteria{HourFrom: 0, HourTo: 23})
	require.NoError(t, err)

	assert.Empty(t, result.Rows)
	assert.Empty(t, result.Clusters)
	assert.Empty(t, result.Noise)
	assert.Zero(t, result.KPIs.TripCount)
	assert.Zero(t, result.KPIs.AvgFare)
	assert.Zero(t, result.KPIs.AvgDuration)
}

func TestProcess_Deterministic(t *testing.T) {
	fakeClock := clockwork.NewFakeClockAt(time.Date(2016, time.March, 15, 9, 0, 0, 0, time.UTC))
	domain.SetClock(fakeClock)
	t.Cleanup(func() { domain.SetClock(nil) })

	p := newPipeline(t, testTrips(), nil)
	criteria := domain.FilterCriteria{HourFrom: 0, HourTo: 23, Boroughs: []string{"Manhattan"}}

	first, err := p.Process(context.Background(), criteria)
	require.NoError(t, err)
	second, err := p.Process(context.Background(), criteria)
	require.NoError(t, err)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("results differ between runs (-first +second):\n%s", diff)
	}
}

func TestProcess_CancelledContext(t *testing.T) {
	p := newPipeline(t, testTrips(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Process(ctx, domain.FilterCriteria{HourFrom: 0, HourTo: 23, Boroughs: []string{"Manhattan"}})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestProcess_PublishesSnapshot(t *testing.T) {
	pub := &mockPublisher{}
	p := newPipeline(t, testTrips(), pub)

	result, err := p.Process(context.Background(), domain.FilterCriteria{
		HourFrom: 10, HourTo: 14, Boroughs: []string{"Manhattan"},
	})
	require.NoError(t, err)

	require.Len(t, pub.published, 1)
	assert.Equal(t, result.KPIs, pub.published[0].KPIs)
}

func TestProcess_PublishErrorDoesNotFailQuery(t *testing.T) {
	pub := &mockPublisher{err: errors.New("broker down")}
	p := newPipeline(t, testTrips(), pub)

	result, err := p.Process(context.Background(), domain.FilterCriteria{
		HourFrom: 10, HourTo: 14, Boroughs: []string{"Manhattan"},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, result.KPIs.TripCount)
}

func TestCheckReadiness(t *testing.T) {
	p := newPipeline(t, testTrips(), nil)
	assert.NoError(t, p.CheckReadiness(context.Background()))
}

func TestDatasetBoroughs(t *testing.T) {
	p := newPipeline(t, testTrips(), nil)
	assert.Equal(t, []string{"Manhattan", "Brooklyn"}, p.DatasetBoroughs())
	assert.Equal(t, 5, p.DatasetSize())
}
