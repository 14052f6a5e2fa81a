package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Column names of the source trip CSV, matching the upstream dataset export.
const (
	ColPickupTime  = "tpep_pickup_datetime"
	ColDropoffTime = "tpep_dropoff_datetime"
	ColPickupLat   = "pickup_latitude"
	ColPickupLon   = "pickup_longitude"
	ColDropoffLat  = "dropoff_latitude"
	ColDropoffLon  = "dropoff_longitude"
	ColBorough     = "pickup_borough"
	ColZone        = "pickup_zone"
	ColDistance    = "trip_distance"
	ColFare        = "total_amount"
)

// RequiredColumns are the header columns a trip CSV must carry.
// Zone and dropoff columns are optional.
var RequiredColumns = []string{
	ColPickupTime, ColPickupLat, ColPickupLon, ColBorough, ColDistance, ColFare,
}

// timestampLayouts are accepted pickup/dropoff time formats, most common first.
var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"01/02/2006 03:04:05 PM",
}

// ParseTripRow converts one CSV row into a Trip using the header index.
// Rows missing pickup coordinates, a parseable pickup time, or a borough
// return an error so the loader can drop and count them.
func ParseTripRow(cols map[string]int, row []string) (Trip, error) {
	pickupTime, err := parseTimestamp(field(cols, row, ColPickupTime))
	if err != nil {
		return Trip{}, fmt.Errorf("parse %s: %w", ColPickupTime, err)
	}

	lat, err := parseCoordinate(field(cols, row, ColPickupLat), -90, 90)
	if err != nil {
		return Trip{}, fmt.Errorf("parse %s: %w", ColPickupLat, err)
	}
	lon, err := parseCoordinate(field(cols, row, ColPickupLon), -180, 180)
	if err != nil {
		return Trip{}, fmt.Errorf("parse %s: %w", ColPickupLon, err)
	}

	borough := strings.TrimSpace(field(cols, row, ColBorough))
	if borough == "" {
		return Trip{}, fmt.Errorf("missing %s", ColBorough)
	}

	trip := Trip{
		PickupTime:    pickupTime,
		PickupLat:     lat,
		PickupLon:     lon,
		Borough:       borough,
		Zone:          strings.TrimSpace(field(cols, row, ColZone)),
		DistanceMiles: parseFloatOrZero(field(cols, row, ColDistance)),
		Fare:          parseFloatOrZero(field(cols, row, ColFare)),
	}

	// Dropoff side is best-effort: bad values zero out rather than drop the row.
	if dropoffTime, err := parseTimestamp(field(cols, row, ColDropoffTime)); err == nil {
		trip.DropoffTime = dropoffTime
		if d := dropoffTime.Sub(pickupTime); d > 0 {
			trip.DurationMinutes = d.Minutes()
		}
	}
	if dlat, err := parseCoordinate(field(cols, row, ColDropoffLat), -90, 90); err == nil {
		trip.DropoffLat = dlat
	}
	if dlon, err := parseCoordinate(field(cols, row, ColDropoffLon), -180, 180); err == nil {
		trip.DropoffLon = dlon
	}

	return trip, nil
}

// field returns the named column from the row, or "" when the column is
// absent from the header or the row is short.
func field(cols map[string]int, row []string, name string) string {
	i, ok := cols[name]
	if !ok || i >= len(row) {
		return ""
	}
	return row[i]
}

func parseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

func parseCoordinate(s string, lo, hi float64) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty coordinate")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if v < lo || v > hi {
		return 0, fmt.Errorf("coordinate %g out of range [%g,%g]", v, lo, hi)
	}
	return v, nil
}

// parseFloatOrZero parses a string as float64, returning 0 on failure.
func parseFloatOrZero(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}
