// Package view converts pipeline results into widget-ready structures:
// KPI cards, a GeoJSON marker layer for the map, and chart series. Pure
// transformation, no new computation.
package view

import (
	"fmt"
	"time"

	"github.com/tripgrid/taxi-hotspots/internal/domain"
	"github.com/tripgrid/taxi-hotspots/internal/pipeline"
)

// Dashboard is the JSON payload the UI renders from.
type Dashboard struct {
	Criteria    domain.FilterCriteria `json:"criteria"`
	Cards       []KPICard             `json:"cards"`
	Map         FeatureCollection     `json:"map"`
	Charts      Charts                `json:"charts"`
	GeneratedAt time.Time             `json:"generated_at"`
}

// KPICard is one tile of the KPI row.
type KPICard struct {
	Title string `json:"title"`
	Value string `json:"value"`
}

// Charts holds the bar/line series shown next to the map.
type Charts struct {
	TripsPerHour    []HourCount    `json:"trips_per_hour"`
	TripsPerCluster []ClusterCount `json:"trips_per_cluster"`
}

// HourCount is one point of the trips-per-hour line.
type HourCount struct {
	Hour  int `json:"hour"`
	Trips int `json:"trips"`
}

// ClusterCount is one bar of the trips-per-cluster chart.
type ClusterCount struct {
	Cluster int `json:"cluster"`
	Trips   int `json:"trips"`
}

// FeatureCollection is a GeoJSON feature collection of cluster centroids.
type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

// Feature is a single GeoJSON point feature.
type Feature struct {
	Type       string         `json:"type"`
	Geometry   Geometry       `json:"geometry"`
	Properties map[string]any `json:"properties"`
}

// Geometry holds a GeoJSON point in [lon, lat] order.
type Geometry struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates"`
}

// BuildDashboard assembles the full dashboard payload from a result.
func BuildDashboard(result pipeline.Result) Dashboard {
	return Dashboard{
		Criteria:    result.Criteria,
		Cards:       BuildKPICards(result.KPIs),
		Map:         BuildMarkers(result.Clusters),
		Charts:      BuildCharts(result),
		GeneratedAt: result.GeneratedAt,
	}
}

// BuildKPICards formats the KPI tiles. Empty selections render "N/A" and
// zero amounts rather than blanks so the card row never collapses.
func BuildKPICards(kpis domain.KPISet) []KPICard {
	topZone := kpis.TopZone
	if topZone == "" {
		topZone = "N/A"
	}
	return []KPICard{
		{Title: "Total Trips", Value: fmt.Sprintf("%d", kpis.TripCount)},
		{Title: "Clusters", Value: fmt.Sprintf("%d", kpis.ClusterCount)},
		{Title: "Avg Distance", Value: fmt.Sprintf("%.2f mi", kpis.AvgDistance)},
		{Title: "Avg Fare", Value: fmt.Sprintf("$%.2f", kpis.AvgFare)},
		{Title: "Avg Duration", Value: fmt.Sprintf("%.1f min", kpis.AvgDuration)},
		{Title: "Top Zone", Value: topZone},
	}
}

// BuildMarkers converts clusters to a GeoJSON FeatureCollection of
// centroid markers sized by member count.
func BuildMarkers(clusters []domain.Cluster) FeatureCollection {
	features := make([]Feature, len(clusters))
	for i, c := range clusters {
		features[i] = Feature{
			Type: "Feature",
			Geometry: Geometry{
				Type:        "Point",
				Coordinates: []float64{c.Centroid.Lon, c.Centroid.Lat},
			},
			Properties: map[string]any{
				"cluster_id":  c.ID,
				"point_count": c.MemberCount,
			},
		}
	}
	return FeatureCollection{Type: "FeatureCollection", Features: features}
}

// BuildCharts derives the chart series from the filtered rows and clusters.
// The hour series always spans 0-23 so the x-axis is stable across filters.
func BuildCharts(result pipeline.Result) Charts {
	var hourCounts [24]int
	for _, trip := range result.Rows {
		hourCounts[trip.Hour()]++
	}
	perHour := make([]HourCount, 24)
	for h, n := range hourCounts {
		perHour[h] = HourCount{Hour: h, Trips: n}
	}

	perCluster := make([]ClusterCount, len(result.Clusters))
	for i, c := range result.Clusters {
		perCluster[i] = ClusterCount{Cluster: c.ID, Trips: c.MemberCount}
	}

	return Charts{TripsPerHour: perHour, TripsPerCluster: perCluster}
}
