// Package export writes shadow runs as CSV, JSON, YAML, XLSX and PDF documents.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kilianp07/pvshadow/core/model"
	"github.com/kilianp07/pvshadow/core/shadow"
)

// SiteInfo describes the observation site in exported documents.
type SiteInfo struct {
	Name      string  `json:"name" yaml:"name"`
	Latitude  float64 `json:"latitude" yaml:"latitude"`
	Longitude float64 `json:"longitude" yaml:"longitude"`
	Altitude  float64 `json:"altitude" yaml:"altitude"`
	Timezone  string  `json:"timezone" yaml:"timezone"`
}

// PanelInfo describes the panel geometry shared by every tilt of a run.
type PanelInfo struct {
	Height          float64 `json:"height_m" yaml:"height_m"`
	Width           float64 `json:"width_m" yaml:"width_m"`
	GroundElevation float64 `json:"ground_elevation_m" yaml:"ground_elevation_m"`
}

// Document is the summary of a run.
type Document struct {
	RunID       string           `json:"run_id" yaml:"run_id"`
	Site        SiteInfo         `json:"site" yaml:"site"`
	Panel       PanelInfo        `json:"panel" yaml:"panel"`
	Start       time.Time        `json:"start" yaml:"start"`
	End         time.Time        `json:"end" yaml:"end"`
	StepMinutes float64          `json:"step_minutes" yaml:"step_minutes"`
	GeneratedAt time.Time        `json:"generated_at" yaml:"generated_at"`
	Summaries   []shadow.Summary `json:"summaries" yaml:"summaries"`
}

// NewDocument builds the Document of a run.
func NewDocument(runID string, site model.Site, panel model.PanelGeometry, start, end time.Time, step time.Duration, results []shadow.Result, generatedAt time.Time) Document {
	summaries := make([]shadow.Summary, len(results))
	for i, r := range results {
		summaries[i] = r.Summary
	}
	return Document{
		RunID: runID,
		Site: SiteInfo{
			Name:      site.Name,
			Latitude:  site.Latitude,
			Longitude: site.Longitude,
			Altitude:  site.Altitude,
			Timezone:  site.Zone().String(),
		},
		Panel: PanelInfo{
			Height:          panel.Height(),
			Width:           panel.Width(),
			GroundElevation: panel.GroundElevation(),
		},
		Start:       start,
		End:         end,
		StepMinutes: step.Minutes(),
		GeneratedAt: generatedAt,
		Summaries:   summaries,
	}
}

// AverageLines returns one human readable line per tilt.
func AverageLines(summaries []shadow.Summary) []string {
	out := make([]string, len(summaries))
	for i, s := range summaries {
		out[i] = fmt.Sprintf("Average shadow area for tilt angle %g°: %.2f square meters", s.Tilt, s.Mean)
	}
	return out
}

// WriteSummaryJSON writes the document to w in indented JSON format.
func WriteSummaryJSON(w io.Writer, doc Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

// WriteSummaryYAML writes the document to w in YAML format.
func WriteSummaryYAML(w io.Writer, doc Document) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return err
	}
	return enc.Close()
}

// SeriesHeader returns the CSV header for the given results.
func SeriesHeader(results []shadow.Result) []string {
	header := []string{"timestamp", "apparent_elevation", "azimuth"}
	for _, r := range results {
		header = append(header, "area_m2_tilt_"+strconv.FormatFloat(r.Summary.Tilt, 'f', -1, 64))
	}
	return header
}

// WriteSeriesCSV writes one row per instant with the apparent elevation and
// the shadow area of every tilt. Each series must be aligned with positions.
func WriteSeriesCSV(w io.Writer, positions []model.SolarPositionSample, results []shadow.Result) error {
	for _, r := range results {
		if len(r.Series) != len(positions) {
			return fmt.Errorf("tilt %g: series has %d samples, want %d", r.Summary.Tilt, len(r.Series), len(positions))
		}
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(SeriesHeader(results)); err != nil {
		return err
	}
	for i, p := range positions {
		rec := make([]string, 0, 3+len(results))
		rec = append(rec,
			p.Timestamp.Format(time.RFC3339),
			strconv.FormatFloat(p.ApparentElevation, 'f', 6, 64),
			strconv.FormatFloat(p.Azimuth, 'f', 6, 64),
		)
		for _, r := range results {
			rec = append(rec, strconv.FormatFloat(r.Series[i].AreaSquareMeters, 'f', -1, 64))
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WritePositionsCSV writes the solar positions, one row per instant.
func WritePositionsCSV(w io.Writer, positions []model.SolarPositionSample) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"timestamp", "apparent_elevation", "apparent_zenith", "azimuth"}); err != nil {
		return err
	}
	for _, p := range positions {
		rec := []string{
			p.Timestamp.Format(time.RFC3339),
			strconv.FormatFloat(p.ApparentElevation, 'f', 6, 64),
			strconv.FormatFloat(p.ApparentZenith, 'f', 6, 64),
			strconv.FormatFloat(p.Azimuth, 'f', 6, 64),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
