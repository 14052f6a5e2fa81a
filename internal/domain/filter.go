package domain

// FilterTrips returns the indices of trips whose pickup hour falls within
// the criteria's inclusive hour range and whose borough is in its set.
// An empty borough set or an unmatchable hour range yields an empty result,
// not an error. The input table is never modified.
func FilterTrips(trips []Trip, criteria FilterCriteria) []int {
	if !criteria.Valid() || len(criteria.Boroughs) == 0 {
		return nil
	}

	boroughs := make(map[string]struct{}, len(criteria.Boroughs))
	for _, b := range criteria.Boroughs {
		boroughs[b] = struct{}{}
	}

	var indices []int
	for i, trip := range trips {
		hour := trip.Hour()
		if hour < criteria.HourFrom || hour > criteria.HourTo {
			continue
		}
		if _, ok := boroughs[trip.Borough]; !ok {
			continue
		}
		indices = append(indices, i)
	}
	return indices
}

// SelectTrips materializes the rows named by indices into a new table.
func SelectTrips(trips []Trip, indices []int) []Trip {
	selected := make([]Trip, len(indices))
	for i, idx := range indices {
		selected[i] = trips[idx]
	}
	return selected
}

// PickupPoints extracts the pickup coordinates of a trip table in row order.
func PickupPoints(trips []Trip) []Point {
	points := make([]Point, len(trips))
	for i, trip := range trips {
		points[i] = Point{Lat: trip.PickupLat, Lon: trip.PickupLon}
	}
	return points
}

// Boroughs returns the distinct boroughs present in the table, in first-seen order.
func Boroughs(trips []Trip) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, trip := range trips {
		if _, ok := seen[trip.Borough]; ok {
			continue
		}
		seen[trip.Borough] = struct{}{}
		out = append(out, trip.Borough)
	}
	return out
}
