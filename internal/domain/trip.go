package domain

import "time"

// Trip is one taxi trip record. The table of trips is immutable once loaded;
// every derived structure (filters, clusters, KPIs) references it by index.
type Trip struct {
	PickupTime      time.Time `json:"pickup_time"`
	DropoffTime     time.Time `json:"dropoff_time"`
	PickupLat       float64   `json:"pickup_lat"`
	PickupLon       float64   `json:"pickup_lon"`
	DropoffLat      float64   `json:"dropoff_lat"`
	DropoffLon      float64   `json:"dropoff_lon"`
	Borough         string    `json:"borough"`
	Zone            string    `json:"zone,omitempty"`
	Fare            float64   `json:"fare"`
	DistanceMiles   float64   `json:"distance_miles"`
	DurationMinutes float64   `json:"duration_minutes"`
}

// Hour returns the pickup hour of day, 0-23.
func (t Trip) Hour() int {
	return t.PickupTime.Hour()
}

// Point is a pickup coordinate pair fed to the clusterer.
type Point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// FilterCriteria narrows the trip table by pickup hour and borough.
// HourFrom/HourTo are inclusive. An empty Boroughs set selects nothing;
// an inverted or out-of-range hour range likewise selects nothing.
type FilterCriteria struct {
	HourFrom int      `json:"hour_from"`
	HourTo   int      `json:"hour_to"`
	Boroughs []string `json:"boroughs"`
}

// Valid reports whether the hour range can match any row.
func (c FilterCriteria) Valid() bool {
	return c.HourFrom >= 0 && c.HourTo <= 23 && c.HourFrom <= c.HourTo
}

// Cluster is a detected pickup hotspot. MemberIndices are sorted indices
// into the filtered table the cluster was computed from.
type Cluster struct {
	ID            int   `json:"id"`
	Centroid      Point `json:"centroid"`
	MemberCount   int   `json:"member_count"`
	MemberIndices []int `json:"member_indices"`
}

// KPISet summarizes a filtered trip table. Averages are 0, never NaN, when
// TripCount is 0 so downstream display stays well-defined.
type KPISet struct {
	TripCount    int     `json:"trip_count"`
	ClusterCount int     `json:"cluster_count"`
	AvgFare      float64 `json:"avg_fare"`
	AvgDuration  float64 `json:"avg_duration"`
	AvgDistance  float64 `json:"avg_distance"`
	TopZone      string  `json:"top_zone,omitempty"`
}
