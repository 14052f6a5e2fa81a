// Package pdfreport renders a pipeline result as a formatted PDF document:
// the active filter, the KPI summary, the detected hotspots, and a bounded
// preview of the filtered rows.
package pdfreport

import (
	"fmt"
	"io"

	"github.com/go-pdf/fpdf"
	"github.com/tripgrid/taxi-hotspots/internal/pipeline"
	"github.com/tripgrid/taxi-hotspots/internal/view"
)

const timestampLayout = "2006-01-02 15:04:05"

// Reporter generates PDF reports. RowLimit bounds the row preview so a
// 150k-row selection does not produce a 10000-page document.
type Reporter struct {
	rowLimit int
}

// NewReporter creates a Reporter writing at most rowLimit preview rows.
func NewReporter(rowLimit int) *Reporter {
	return &Reporter{rowLimit: rowLimit}
}

// Write renders the report to w. Any generation or write failure is
// returned to the caller; the document is never partially useful.
func (r *Reporter) Write(w io.Writer, result pipeline.Result) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("NYC Taxi Hotspot Report", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, "NYC Taxi Hotspot Report")
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Generated: %s", result.GeneratedAt.UTC().Format(timestampLayout)))
	pdf.Ln(6)
	pdf.Cell(0, 6, fmt.Sprintf("Hours %02d-%02d, boroughs: %s",
		result.Criteria.HourFrom, result.Criteria.HourTo, boroughList(result.Criteria.Boroughs)))
	pdf.Ln(10)

	r.writeKPIs(pdf, result)
	r.writeHotspots(pdf, result)
	r.writeRows(pdf, result)

	return pdf.Output(w)
}

func (r *Reporter) writeKPIs(pdf *fpdf.Fpdf, result pipeline.Result) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Key Metrics")
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "", 10)
	for _, card := range view.BuildKPICards(result.KPIs) {
		pdf.CellFormat(50, 6, card.Title, "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 6, card.Value, "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)
}

func (r *Reporter) writeHotspots(pdf *fpdf.Fpdf, result pipeline.Result) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Hotspots")
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "", 10)
	if len(result.Clusters) == 0 {
		pdf.Cell(0, 6, "No hotspots detected for this selection.")
		pdf.Ln(10)
		return
	}

	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(20, 6, "Cluster", "B", 0, "L", false, 0, "")
	pdf.CellFormat(40, 6, "Centroid Lat", "B", 0, "L", false, 0, "")
	pdf.CellFormat(40, 6, "Centroid Lon", "B", 0, "L", false, 0, "")
	pdf.CellFormat(0, 6, "Pickups", "B", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	for _, c := range result.Clusters {
		pdf.CellFormat(20, 6, fmt.Sprintf("%d", c.ID), "", 0, "L", false, 0, "")
		pdf.CellFormat(40, 6, fmt.Sprintf("%.5f", c.Centroid.Lat), "", 0, "L", false, 0, "")
		pdf.CellFormat(40, 6, fmt.Sprintf("%.5f", c.Centroid.Lon), "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 6, fmt.Sprintf("%d", c.MemberCount), "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)
}

func (r *Reporter) writeRows(pdf *fpdf.Fpdf, result pipeline.Result) {
	limit := r.rowLimit
	if limit > len(result.Rows) {
		limit = len(result.Rows)
	}

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Trips (first %d of %d)", limit, len(result.Rows)))
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(38, 6, "Pickup", "B", 0, "L", false, 0, "")
	pdf.CellFormat(28, 6, "Borough", "B", 0, "L", false, 0, "")
	pdf.CellFormat(40, 6, "Zone", "B", 0, "L", false, 0, "")
	pdf.CellFormat(28, 6, "Distance", "B", 0, "L", false, 0, "")
	pdf.CellFormat(0, 6, "Fare", "B", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	for _, trip := range result.Rows[:limit] {
		pdf.CellFormat(38, 6, trip.PickupTime.Format(timestampLayout), "", 0, "L", false, 0, "")
		pdf.CellFormat(28, 6, trip.Borough, "", 0, "L", false, 0, "")
		pdf.CellFormat(40, 6, trip.Zone, "", 0, "L", false, 0, "")
		pdf.CellFormat(28, 6, fmt.Sprintf("%.2f mi", trip.DistanceMiles), "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 6, fmt.Sprintf("$%.2f", trip.Fare), "", 1, "L", false, 0, "")
	}
}

func boroughList(boroughs []string) string {
	if len(boroughs) == 0 {
		return "none"
	}
	out := boroughs[0]
	for _, b := range boroughs[1:] {
		out += ", " + b
	}
	return out
}
