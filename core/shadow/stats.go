package shadow

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/kilianp07/pvshadow/core/model"
)

// Summary aggregates a shadow series computed for one tilt angle.
type Summary struct {
	Tilt    float64 `json:"tilt" yaml:"tilt"`
	Samples int     `json:"samples" yaml:"samples"`
	SunUp   int     `json:"sun_up" yaml:"sun_up"`
	Mean    float64 `json:"mean_area_m2" yaml:"mean_area_m2"`
	Peak    float64 `json:"peak_area_m2" yaml:"peak_area_m2"`
}

// Result pairs the series computed for one tilt with its summary.
type Result struct {
	Summary Summary
	Series  []model.ShadowSample
}

func areas(series []model.ShadowSample) []float64 {
	v := make([]float64, len(series))
	for i, s := range series {
		v[i] = s.AreaSquareMeters
	}
	return v
}

// MeanArea is the arithmetic mean over all samples, night included.
func MeanArea(series []model.ShadowSample) float64 {
	if len(series) == 0 {
		return 0
	}
	return stat.Mean(areas(series), nil)
}

// PeakArea is the largest area in the series.
func PeakArea(series []model.ShadowSample) float64 {
	if len(series) == 0 {
		return 0
	}
	return floats.Max(areas(series))
}

// Summarize builds the Summary of a series. positions must be the input the
// series was computed from.
func Summarize(tilt float64, positions []model.SolarPositionSample, series []model.ShadowSample) Summary {
	s := Summary{
		Tilt:    tilt,
		Samples: len(series),
		Mean:    MeanArea(series),
		Peak:    PeakArea(series),
	}
	for _, p := range positions {
		if p.ApparentElevation > 0 {
			s.SunUp++
		}
	}
	return s
}
