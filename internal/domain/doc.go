// Package domain models NYC taxi trip records and the pure computations
// the dashboard is built from: filtering, hotspot clustering, and KPI
// aggregation.
//
// # Data Source
//
// Trips come from a CSV export of the NYC TLC yellow-cab trip data joined
// with pickup coordinates and borough/zone names. Column names follow the
// TLC convention (tpep_pickup_datetime, pickup_latitude, ...); see the
// Col* constants. Rows missing pickup coordinates, a parseable pickup
// timestamp, or a borough are dropped at load time and counted, never
// fatal. Dropoff-side columns are optional: trip duration is derived from
// the dropoff-pickup timestamp difference when both parse.
//
// # Filtering
//
// A FilterCriteria is an inclusive pickup-hour range plus a borough set.
// Filtering is by predicate only: every returned row satisfies both
// conditions and no satisfying row is excluded. The empty borough set and
// unmatchable hour ranges select nothing rather than erroring, so "no
// data" renders as an empty dashboard state.
//
// # Hotspot Detection
//
// Pickup hotspots are found with DBSCAN over the filtered pickup
// coordinates. Two points are reachable when within Eps of each other; a
// cluster is a maximal density-connected set containing a core point with
// at least MinPts neighbours. Points reachable from no core are Noise and
// excluded from centroid computation. With fewer points than MinPts the
// result degenerates to an empty cluster set, not an error.
//
// The distance metric is pluggable: EuclideanDegrees treats coordinates as
// a plane (Eps in degrees, ~111 km per degree of latitude), HaversineMeters
// is the great-circle distance (Eps in meters). Results are deterministic:
// cluster IDs are assigned in scan order, so identical input yields
// identical labels, centroids, and membership.
//
// # KPIs
//
// ComputeKPIs reduces a filtered table to trip count, average fare,
// duration, and distance, and the most frequent pickup zone. Averages over
// an empty table are defined as zero to keep display logic total.
//
// All derived structures reference the filtered table by index and are
// recomputed from the immutable loaded table on every criteria change;
// nothing is cached across filter changes.
package domain
