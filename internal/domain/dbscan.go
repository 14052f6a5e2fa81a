package domain

import (
	"math"
	"sort"
)

// Noise is the label assigned to points not reachable from any dense core.
const Noise = -1

// Clusterer abstracts the clustering implementation so the concrete
// algorithm is swappable without touching the pipeline. Fit returns one
// label per input point in input order; Noise marks unclustered points.
// Implementations must be deterministic for a given point order.
type Clusterer interface {
	Fit(points []Point) []int
}

// DistanceFunc measures the distance between two points. The unit must
// match the Eps the clusterer is configured with.
type DistanceFunc func(a, b Point) float64

// EuclideanDegrees is the planar distance in raw degree coordinates.
func EuclideanDegrees(a, b Point) float64 {
	dLat := a.Lat - b.Lat
	dLon := a.Lon - b.Lon
	return math.Sqrt(dLat*dLat + dLon*dLon)
}

// HaversineMeters is the great-circle distance in meters.
func HaversineMeters(a, b Point) float64 {
	const earthRadiusM = 6_371_000

	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(a.Lat*math.Pi/180)*math.Cos(b.Lat*math.Pi/180)*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	return earthRadiusM * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// DBSCAN groups points into density-based clusters: a point with at least
// MinPts neighbours within Eps (itself included) is a core point, and a
// cluster is the maximal set of points density-connected through cores.
// Everything else is labeled Noise.
type DBSCAN struct {
	Eps      float64
	MinPts   int
	Distance DistanceFunc
}

// NewDBSCAN creates a DBSCAN clusterer. A nil distance defaults to
// EuclideanDegrees.
func NewDBSCAN(eps float64, minPts int, distance DistanceFunc) *DBSCAN {
	if distance == nil {
		distance = EuclideanDegrees
	}
	return &DBSCAN{Eps: eps, MinPts: minPts, Distance: distance}
}

// Fit labels every point with its cluster ID or Noise. Cluster IDs are
// assigned in order of first discovery during the scan, so identical input
// always produces identical labels. Fewer points than MinPts means no
// cluster can form and every point is Noise.
func (d *DBSCAN) Fit(points []Point) []int {
	labels := make([]int, len(points))
	for i := range labels {
		labels[i] = Noise
	}
	if len(points) < d.MinPts {
		return labels
	}

	visited := make([]bool, len(points))
	nextID := 0

	for i := range points {
		if visited[i] {
			continue
		}
		visited[i] = true

		neighbors := d.regionQuery(points, i)
		if len(neighbors) < d.MinPts {
			continue
		}

		d.expandCluster(points, i, neighbors, nextID, labels, visited)
		nextID++
	}

	return labels
}

// expandCluster grows cluster id from core point i by walking the
// neighbour frontier breadth-first. Border points join the cluster but do
// not extend it.
func (d *DBSCAN) expandCluster(points []Point, i int, neighbors []int, id int, labels []int, visited []bool) {
	labels[i] = id

	queue := neighbors
	for qi := 0; qi < len(queue); qi++ {
		j := queue[qi]
		if labels[j] == Noise {
			labels[j] = id
		}
		if visited[j] {
			continue
		}
		visited[j] = true

		jNeighbors := d.regionQuery(points, j)
		if len(jNeighbors) >= d.MinPts {
			queue = append(queue, jNeighbors...)
		}
	}
}

// regionQuery returns the indices of all points within Eps of point i,
// including i itself.
func (d *DBSCAN) regionQuery(points []Point, i int) []int {
	var neighbors []int
	for j := range points {
		if d.Distance(points[i], points[j]) <= d.Eps {
			neighbors = append(neighbors, j)
		}
	}
	return neighbors
}

// BuildClusters groups per-point labels into Cluster records sorted by ID.
// Noise points are excluded; centroids are the arithmetic mean of member
// coordinates. The returned noise slice holds the indices labeled Noise,
// so clusters and noise together partition the input set.
func BuildClusters(points []Point, labels []int) ([]Cluster, []int) {
	members := make(map[int][]int)
	var noise []int
	for i, label := range labels {
		if label == Noise {
			noise = append(noise, i)
			continue
		}
		members[label] = append(members[label], i)
	}

	ids := make([]int, 0, len(members))
	for id := range members {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	clusters := make([]Cluster, 0, len(ids))
	for _, id := range ids {
		idx := members[id]
		sort.Ints(idx)

		var latSum, lonSum float64
		for _, i := range idx {
			latSum += points[i].Lat
			lonSum += points[i].Lon
		}
		n := float64(len(idx))
		clusters = append(clusters, Cluster{
			ID:            id,
			Centroid:      Point{Lat: latSum / n, Lon: lonSum / n},
			MemberCount:   len(idx),
			MemberIndices: idx,
		})
	}

	return clusters, noise
}
