package app

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/kilianp07/pvshadow/config"
	"github.com/kilianp07/pvshadow/pkg/chart"
	"github.com/kilianp07/pvshadow/pkg/export"
)

// Output file names written under OutputConfig.Dir.
const (
	ChartFile   = "shadow_area.png"
	SeriesFile  = "shadow_series.csv"
	JSONFile    = "shadow_summary.json"
	YAMLFile    = "shadow_summary.yaml"
	XLSXFile    = "shadow_report.xlsx"
	PDFFile     = "shadow_report.pdf"
	dirPerm     = 0o755
	filePerm    = 0o644
	chartFormat = "png"
)

// Document returns the exportable summary of the report.
func (r *Report) Document() export.Document {
	return export.NewDocument(r.RunID, r.Site, r.Panel, r.Start, r.End, r.Step, r.Results, r.GeneratedAt)
}

// WriteOutputs writes the files enabled in out and returns their paths.
func WriteOutputs(r *Report, out config.OutputConfig) ([]string, error) {
	if err := os.MkdirAll(out.Dir, dirPerm); err != nil {
		return nil, fmt.Errorf("output dir: %w", err)
	}
	doc := r.Document()
	var written []string
	write := func(name string, render func(io.Writer) error) error {
		var buf bytes.Buffer
		if err := render(&buf); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		path := filepath.Join(out.Dir, name)
		if err := os.WriteFile(path, buf.Bytes(), filePerm); err != nil {
			return err
		}
		written = append(written, path)
		return nil
	}

	var chartPNG []byte
	if out.Chart || out.PDF {
		p, err := chart.ShadowChart(r.Site.Name, r.Site.Zone(), r.Results)
		if err != nil {
			return written, fmt.Errorf("chart: %w", err)
		}
		var buf bytes.Buffer
		if err := chart.Write(p, &buf, chartFormat); err != nil {
			return written, fmt.Errorf("chart: %w", err)
		}
		chartPNG = buf.Bytes()
	}

	steps := []struct {
		enabled bool
		name    string
		render  func(io.Writer) error
	}{
		{out.Chart, ChartFile, func(w io.Writer) error {
			_, err := w.Write(chartPNG)
			return err
		}},
		{out.CSV, SeriesFile, func(w io.Writer) error { return export.WriteSeriesCSV(w, r.Positions, r.Results) }},
		{out.JSON, JSONFile, func(w io.Writer) error { return export.WriteSummaryJSON(w, doc) }},
		{out.YAML, YAMLFile, func(w io.Writer) error { return export.WriteSummaryYAML(w, doc) }},
		{out.XLSX, XLSXFile, func(w io.Writer) error {
			data, err := export.BuildXLSX(doc, r.Positions, r.Results)
			if err != nil {
				return err
			}
			_, err = w.Write(data)
			return err
		}},
		{out.PDF, PDFFile, func(w io.Writer) error {
			data, err := export.BuildPDF(doc, chartPNG)
			if err != nil {
				return err
			}
			_, err = w.Write(data)
			return err
		}},
	}
	for _, st := range steps {
		if !st.enabled {
			continue
		}
		if err := write(st.name, st.render); err != nil {
			return written, err
		}
	}
	return written, nil
}
