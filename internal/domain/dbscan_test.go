package domain_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tripgrid/taxi-hotspots/internal/domain"
)

func TestDBSCAN_DenseGroupPlusIsolatedPoints(t *testing.T) {
	// Three points within eps=0.01 of each other, two isolated.
	points := []domain.Point{
		{Lat: 40.7500, Lon: -73.9800},
		{Lat: 40.7505, Lon: -73.9805},
		{Lat: 40.7502, Lon: -73.9797},
		{Lat: 40.6000, Lon: -74.1000},
		{Lat: 40.9000, Lon: -73.8000},
	}

	clusterer := domain.NewDBSCAN(0.01, 3, nil)
	labels := clusterer.Fit(points)
	clusters, noise := domain.BuildClusters(points, labels)

	require.Len(t, clusters, 1)
	assert.Equal(t, []int{3, 4}, noise)

	c := clusters[0]
	assert.Equal(t, 0, c.ID)
	assert.Equal(t, 3, c.MemberCount)
	assert.Equal(t, []int{0, 1, 2}, c.MemberIndices)
	assert.InEpsilon(t, (40.7500+40.7505+40.7502)/3, c.Centroid.Lat, 1e-9)
	assert.InEpsilon(t, (-73.9800-73.9805-73.9797)/3, c.Centroid.Lon, 1e-9)
}

func TestDBSCAN_FewerPointsThanMinPtsIsAllNoise(t *testing.T) {
	points := []domain.Point{{Lat: 40.75, Lon: -73.98}, {Lat: 40.75, Lon: -73.98}}

	clusterer := domain.NewDBSCAN(0.01, 3, nil)
	labels := clusterer.Fit(points)

	assert.Equal(t, []int{domain.Noise, domain.Noise}, labels)

	clusters, noise := domain.BuildClusters(points, labels)
	assert.Empty(t, clusters)
	assert.Equal(t, []int{0, 1}, noise)
}

func TestDBSCAN_EmptyInput(t *testing.T) {
	clusterer := domain.NewDBSCAN(0.01, 3, nil)
	labels := clusterer.Fit(nil)
	assert.Empty(t, labels)

	clusters, noise := domain.BuildClusters(nil, labels)
	assert.Empty(t, clusters)
	assert.Empty(t, noise)
}

func TestDBSCAN_BorderPointJoinsCluster(t *testing.T) {
	// Points 0-2 are mutual neighbours (cores with minPts=3); point 3 is
	// within eps of point 2 only, making it a border point of the cluster.
	points := []domain.Point{
		{Lat: 0.000, Lon: 0.000},
		{Lat: 0.003, Lon: 0.000},
		{Lat: 0.006, Lon: 0.000},
		{Lat: 0.014, Lon: 0.000},
	}

	clusterer := domain.NewDBSCAN(0.008, 3, nil)
	labels := clusterer.Fit(points)

	assert.Equal(t, []int{0, 0, 0, 0}, labels)
}

func TestDBSCAN_TwoSeparateClusters(t *testing.T) {
	points := []domain.Point{
		{Lat: 0.000, Lon: 0.000},
		{Lat: 0.001, Lon: 0.000},
		{Lat: 0.002, Lon: 0.000},
		{Lat: 1.000, Lon: 1.000},
		{Lat: 1.001, Lon: 1.000},
		{Lat: 1.002, Lon: 1.000},
	}

	clusterer := domain.NewDBSCAN(0.005, 3, nil)
	labels := clusterer.Fit(points)
	clusters, noise := domain.BuildClusters(points, labels)

	require.Len(t, clusters, 2)
	assert.Empty(t, noise)
	assert.Equal(t, []int{0, 1, 2}, clusters[0].MemberIndices)
	assert.Equal(t, []int{3, 4, 5}, clusters[1].MemberIndices)
}

func TestDBSCAN_Deterministic(t *testing.T) {
	points := []domain.Point{
		{Lat: 40.7500, Lon: -73.9800},
		{Lat: 40.7505, Lon: -73.9805},
		{Lat: 40.7502, Lon: -73.9797},
		{Lat: 40.6000, Lon: -74.1000},
		{Lat: 40.7499, Lon: -73.9801},
	}

	clusterer := domain.NewDBSCAN(0.01, 3, nil)
	first := clusterer.Fit(points)
	second := clusterer.Fit(points)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("labels differ between runs (-first +second):\n%s", diff)
	}
}

func TestBuildClusters_PartitionsFilteredSet(t *testing.T) {
	points := []domain.Point{
		{Lat: 0.000, Lon: 0}, {Lat: 0.001, Lon: 0}, {Lat: 0.002, Lon: 0},
		{Lat: 5, Lon: 5}, {Lat: 9, Lon: 9},
	}

	clusterer := domain.NewDBSCAN(0.005, 3, nil)
	labels := clusterer.Fit(points)
	clusters, noise := domain.BuildClusters(points, labels)

	seen := make(map[int]bool)
	for _, c := range clusters {
		assert.Equal(t, c.MemberCount, len(c.MemberIndices))
		for _, i := range c.MemberIndices {
			require.GreaterOrEqual(t, i, 0)
			require.Less(t, i, len(points))
			require.False(t, seen[i], "index %d in more than one cluster", i)
			seen[i] = true
		}
	}
	for _, i := range noise {
		require.False(t, seen[i], "noise index %d also in a cluster", i)
		seen[i] = true
	}
	assert.Len(t, seen, len(points))
}

func TestHaversineMeters(t *testing.T) {
	// One degree of latitude is ~111.2 km everywhere.
	a := domain.Point{Lat: 40.0, Lon: -74.0}
	b := domain.Point{Lat: 41.0, Lon: -74.0}

	d := domain.HaversineMeters(a, b)
	assert.InDelta(t, 111_195, d, 200)
	assert.Zero(t, domain.HaversineMeters(a, a))
}

func TestDBSCAN_HaversineMetric(t *testing.T) {
	// Three points within ~150m of each other in midtown, one in Brooklyn.
	points := []domain.Point{
		{Lat: 40.7580, Lon: -73.9855},
		{Lat: 40.7585, Lon: -73.9850},
		{Lat: 40.7583, Lon: -73.9860},
		{Lat: 40.6782, Lon: -73.9442},
	}

	clusterer := domain.NewDBSCAN(200, 3, domain.HaversineMeters)
	labels := clusterer.Fit(points)
	clusters, noise := domain.BuildClusters(points, labels)

	require.Len(t, clusters, 1)
	assert.Equal(t, []int{0, 1, 2}, clusters[0].MemberIndices)
	assert.Equal(t, []int{3}, noise)
}
