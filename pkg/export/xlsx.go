package export

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/kilianp07/pvshadow/core/model"
	"github.com/kilianp07/pvshadow/core/shadow"
)

const (
	summarySheet = "summary"
	seriesSheet  = "series"
)

// BuildXLSX renders a workbook with a summary sheet and the full series.
func BuildXLSX(doc Document, positions []model.SolarPositionSample, results []shadow.Result) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(seriesSheet); err != nil {
		return nil, err
	}

	_ = f.SetCellValue(summarySheet, "A1", "Shadow area report")
	info := [][2]any{
		{"Run", doc.RunID},
		{"Site", doc.Site.Name},
		{"Latitude", doc.Site.Latitude},
		{"Longitude", doc.Site.Longitude},
		{"Timezone", doc.Site.Timezone},
		{"Panel height (m)", doc.Panel.Height},
		{"Panel width (m)", doc.Panel.Width},
		{"Ground elevation (m)", doc.Panel.GroundElevation},
		{"Start", doc.Start.Format("2006-01-02 15:04 MST")},
		{"End", doc.End.Format("2006-01-02 15:04 MST")},
		{"Step (min)", doc.StepMinutes},
	}
	for i, kv := range info {
		row := i + 3
		_ = f.SetCellValue(summarySheet, fmt.Sprintf("A%d", row), kv[0])
		_ = f.SetCellValue(summarySheet, fmt.Sprintf("B%d", row), kv[1])
	}

	head := len(info) + 4
	for col, title := range []string{"Tilt (°)", "Samples", "Sun up", "Mean area (m²)", "Peak area (m²)"} {
		cell, _ := excelize.CoordinatesToCellName(col+1, head)
		_ = f.SetCellValue(summarySheet, cell, title)
	}
	for i, s := range doc.Summaries {
		row := head + 1 + i
		_ = f.SetCellValue(summarySheet, fmt.Sprintf("A%d", row), s.Tilt)
		_ = f.SetCellValue(summarySheet, fmt.Sprintf("B%d", row), s.Samples)
		_ = f.SetCellValue(summarySheet, fmt.Sprintf("C%d", row), s.SunUp)
		_ = f.SetCellValue(summarySheet, fmt.Sprintf("D%d", row), s.Mean)
		_ = f.SetCellValue(summarySheet, fmt.Sprintf("E%d", row), s.Peak)
	}

	for col, title := range SeriesHeader(results) {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		_ = f.SetCellValue(seriesSheet, cell, title)
	}
	for i, p := range positions {
		row := i + 2
		_ = f.SetCellValue(seriesSheet, fmt.Sprintf("A%d", row), p.Timestamp)
		_ = f.SetCellValue(seriesSheet, fmt.Sprintf("B%d", row), p.ApparentElevation)
		_ = f.SetCellValue(seriesSheet, fmt.Sprintf("C%d", row), p.Azimuth)
		for j, r := range results {
			if i >= len(r.Series) {
				continue
			}
			cell, _ := excelize.CoordinatesToCellName(4+j, row)
			_ = f.SetCellValue(seriesSheet, cell, r.Series[i].AreaSquareMeters)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
