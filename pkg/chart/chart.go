// Package chart renders shadow series and sun paths with gonum/plot.
package chart

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"time"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/kilianp07/pvshadow/core/model"
	"github.com/kilianp07/pvshadow/core/shadow"
)

// Default canvas size.
const (
	Width  = 10 * vg.Inch
	Height = 6 * vg.Inch
)

// ErrNoData is returned when there is nothing to plot.
var ErrNoData = errors.New("chart: no data")

// Day is a named sun path drawn as a line on top of the yearly scatter.
type Day struct {
	Label     string
	Positions []model.SolarPositionSample
}

// ShadowChart plots shadow area against local time, one line per tilt.
func ShadowChart(site string, loc *time.Location, results []shadow.Result) (*plot.Plot, error) {
	if len(results) == 0 {
		return nil, ErrNoData
	}
	if loc == nil {
		loc = time.UTC
	}
	p := plot.New()
	p.Title.Text = fmt.Sprintf("Shadow area over time at %s", site)
	p.X.Label.Text = "Time"
	p.Y.Label.Text = "Shadow area (m²)"
	p.X.Tick.Marker = plot.TimeTicks{
		Format: "01-02\n15:04",
		Time:   func(t float64) time.Time { return time.Unix(int64(t), 0).In(loc) },
	}
	p.Add(plotter.NewGrid())

	lines := make([]interface{}, 0, 2*len(results))
	for _, r := range results {
		pts := make(plotter.XYs, len(r.Series))
		for i, s := range r.Series {
			pts[i].X = float64(s.Timestamp.Unix())
			pts[i].Y = s.AreaSquareMeters
		}
		lines = append(lines, fmt.Sprintf("Tilt = %g°", r.Summary.Tilt), pts)
	}
	if err := plotutil.AddLines(p, lines...); err != nil {
		return nil, err
	}
	p.Legend.Top = true
	return p, nil
}

// SunPathChart plots apparent elevation against azimuth. samples are drawn as a
// scatter of daylight points and each day as a labelled line.
func SunPathChart(site string, samples []model.SolarPositionSample, days []Day) (*plot.Plot, error) {
	if len(samples) == 0 && len(days) == 0 {
		return nil, ErrNoData
	}
	p := plot.New()
	p.Title.Text = fmt.Sprintf("Sun path at %s", site)
	p.X.Label.Text = "Azimuth (°)"
	p.Y.Label.Text = "Apparent elevation (°)"
	p.X.Min, p.X.Max = 0, 360
	p.Y.Min = 0
	p.Add(plotter.NewGrid())

	if pts := daylightXYs(samples); len(pts) > 0 {
		sc, err := plotter.NewScatter(pts)
		if err != nil {
			return nil, err
		}
		sc.GlyphStyle.Radius = vg.Points(0.6)
		sc.GlyphStyle.Shape = draw.CircleGlyph{}
		sc.GlyphStyle.Color = color.Gray{Y: 160}
		p.Add(sc)
	}

	if labels := hourLabels(samples); len(labels.XYs) > 0 {
		l, err := plotter.NewLabels(labels)
		if err != nil {
			return nil, err
		}
		p.Add(l)
	}

	lines := make([]interface{}, 0, 2*len(days))
	for _, d := range days {
		pts := daylightXYs(d.Positions)
		if len(pts) == 0 {
			continue
		}
		lines = append(lines, d.Label, pts)
	}
	if len(lines) > 0 {
		if err := plotutil.AddLines(p, lines...); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func daylightXYs(samples []model.SolarPositionSample) plotter.XYs {
	pts := make(plotter.XYs, 0, len(samples))
	for _, s := range samples {
		if s.ApparentElevation <= 0 {
			continue
		}
		pts = append(pts, plotter.XY{X: s.Azimuth, Y: s.ApparentElevation})
	}
	return pts
}

// hourLabels places each local hour at its highest daylight sample.
func hourLabels(samples []model.SolarPositionSample) plotter.XYLabels {
	var best [24]*model.SolarPositionSample
	for i := range samples {
		s := &samples[i]
		if s.ApparentElevation <= 0 {
			continue
		}
		h := s.Timestamp.Hour()
		if best[h] == nil || s.ApparentElevation > best[h].ApparentElevation {
			best[h] = s
		}
	}
	var out plotter.XYLabels
	for h, s := range best {
		if s == nil {
			continue
		}
		out.XYs = append(out.XYs, plotter.XY{X: s.Azimuth, Y: s.ApparentElevation})
		out.Labels = append(out.Labels, fmt.Sprintf("%d", h))
	}
	return out
}

// Save writes the plot to path. The format follows the file extension.
func Save(p *plot.Plot, path string) error {
	return p.Save(Width, Height, path)
}

// Write renders the plot in format ("png", "svg", "pdf", ...) to w.
func Write(p *plot.Plot, w io.Writer, format string) error {
	wt, err := p.WriterTo(Width, Height, format)
	if err != nil {
		return err
	}
	_, err = wt.WriteTo(w)
	return err
}
