package csvstore

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/tripgrid/taxi-hotspots/internal/domain"
)

const timestampLayout = "2006-01-02 15:04:05"

// exportHeader is the column order of exported CSVs. It carries every
// source column so an export re-loads to the same row set.
var exportHeader = []string{
	domain.ColPickupTime,
	domain.ColDropoffTime,
	domain.ColPickupLat,
	domain.ColPickupLon,
	domain.ColDropoffLat,
	domain.ColDropoffLon,
	domain.ColBorough,
	domain.ColZone,
	domain.ColDistance,
	domain.ColFare,
}

// WriteTrips writes a trip table as CSV in the source column format.
func WriteTrips(w io.Writer, trips []domain.Trip) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(exportHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, trip := range trips {
		dropoffTime := ""
		if !trip.DropoffTime.IsZero() {
			dropoffTime = trip.DropoffTime.Format(timestampLayout)
		}
		row := []string{
			trip.PickupTime.Format(timestampLayout),
			dropoffTime,
			formatFloat(trip.PickupLat),
			formatFloat(trip.PickupLon),
			formatFloat(trip.DropoffLat),
			formatFloat(trip.DropoffLon),
			trip.Borough,
			trip.Zone,
			formatFloat(trip.DistanceMiles),
			formatFloat(trip.Fare),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// formatFloat keeps the shortest representation that round-trips exactly.
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
