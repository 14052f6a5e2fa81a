package domain

// ComputeKPIs aggregates a filtered trip table into a KPISet. All averages
// are defined as 0 for an empty table; TopZone is the most frequent pickup
// zone, ties broken by first occurrence. ClusterCount is filled in by the
// caller once clustering has run.
func ComputeKPIs(trips []Trip) KPISet {
	kpis := KPISet{TripCount: len(trips)}
	if len(trips) == 0 {
		return kpis
	}

	var fareSum, durationSum, distanceSum float64
	zoneCounts := make(map[string]int)
	for _, trip := range trips {
		fareSum += trip.Fare
		durationSum += trip.DurationMinutes
		distanceSum += trip.DistanceMiles
		if trip.Zone != "" {
			zoneCounts[trip.Zone]++
		}
	}

	n := float64(len(trips))
	kpis.AvgFare = fareSum / n
	kpis.AvgDuration = durationSum / n
	kpis.AvgDistance = distanceSum / n
	kpis.TopZone = topZone(trips, zoneCounts)
	return kpis
}

// topZone picks the zone with the highest count, preferring the zone that
// appears first in the table on ties so the result is deterministic.
func topZone(trips []Trip, counts map[string]int) string {
	best := ""
	bestCount := 0
	for _, trip := range trips {
		if trip.Zone == "" {
			continue
		}
		if c := counts[trip.Zone]; c > bestCount {
			best = trip.Zone
			bestCount = c
		}
	}
	return best
}
