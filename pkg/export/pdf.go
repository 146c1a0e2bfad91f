package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// BuildPDF renders a one page report of the run. chartPNG, when not empty, is
// embedded below the summary table.
func BuildPDF(doc Document, chartPNG []byte) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()
	pdf.Cell(0, 8, "Shadow Area Report")
	pdf.Ln(10)

	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Site: %s (%.4f, %.4f)", doc.Site.Name, doc.Site.Latitude, doc.Site.Longitude))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Panel: %.2f m x %.2f m at %.2f m", doc.Panel.Height, doc.Panel.Width, doc.Panel.GroundElevation))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Period: %s to %s, every %g min", doc.Start.Format(time.RFC3339), doc.End.Format(time.RFC3339), doc.StepMinutes))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Run: %s", doc.RunID))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Generated: %s", doc.GeneratedAt.Format(time.RFC3339)))
	pdf.Ln(8)

	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(30, 6, "Tilt (deg)", "1", 0, "C", false, 0, "")
	pdf.CellFormat(30, 6, "Samples", "1", 0, "C", false, 0, "")
	pdf.CellFormat(30, 6, "Sun up", "1", 0, "C", false, 0, "")
	pdf.CellFormat(40, 6, "Mean area (m2)", "1", 0, "C", false, 0, "")
	pdf.CellFormat(40, 6, "Peak area (m2)", "1", 0, "C", false, 0, "")
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 10)
	var maxMean float64
	for _, s := range doc.Summaries {
		pdf.CellFormat(30, 6, fmt.Sprintf("%g", s.Tilt), "1", 0, "C", false, 0, "")
		pdf.CellFormat(30, 6, fmt.Sprintf("%d", s.Samples), "1", 0, "R", false, 0, "")
		pdf.CellFormat(30, 6, fmt.Sprintf("%d", s.SunUp), "1", 0, "R", false, 0, "")
		pdf.CellFormat(40, 6, fmt.Sprintf("%.3f", s.Mean), "1", 0, "R", false, 0, "")
		pdf.CellFormat(40, 6, fmt.Sprintf("%.3f", s.Peak), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
		if s.Mean > maxMean {
			maxMean = s.Mean
		}
	}

	// mean area per tilt as horizontal bars
	if maxMean > 0 {
		pdf.Ln(6)
		pdf.SetFont("Arial", "B", 10)
		pdf.Cell(0, 6, "Mean shadow area by tilt")
		pdf.Ln(8)
		pdf.SetFont("Arial", "", 9)
		pdf.SetFillColor(70, 110, 170)
		const barMax = 120.0
		for _, s := range doc.Summaries {
			x, y := pdf.GetXY()
			pdf.CellFormat(20, 5, fmt.Sprintf("%g deg", s.Tilt), "", 0, "L", false, 0, "")
			pdf.Rect(x+22, y+0.5, barMax*s.Mean/maxMean, 4, "F")
			pdf.SetXY(x+24+barMax, y)
			pdf.CellFormat(30, 5, fmt.Sprintf("%.2f", s.Mean), "", 0, "L", false, 0, "")
			pdf.Ln(6)
		}
	}

	if len(chartPNG) > 0 {
		pdf.Ln(4)
		opts := gofpdf.ImageOptions{ImageType: "PNG", ReadDpi: true}
		pdf.RegisterImageOptionsReader("chart", opts, bytes.NewReader(chartPNG))
		pdf.ImageOptions("chart", 10, pdf.GetY(), 190, 0, false, opts, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
