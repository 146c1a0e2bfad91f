package shadow

import (
	"math"
	"sync"

	"github.com/kilianp07/pvshadow/core/model"
)

// minChunk is the smallest slice handed to a worker.
const minChunk = 512

func radians(deg float64) float64 { return deg * math.Pi / 180 }

// EffectiveHeight returns the height of the shadow-casting edge above ground.
// A flat panel reduces to its ground elevation and a vertical one to
// height+groundElevation.
func EffectiveHeight(p model.PanelGeometry) float64 {
	return p.GroundElevation() + p.Height()*math.Sin(radians(p.TiltDegrees()))
}

// Area returns the shadow area in square meters for a single apparent
// elevation in degrees. Elevations at or below zero give 0.
func Area(p model.PanelGeometry, apparentElevation float64) float64 {
	if apparentElevation <= 0 {
		return 0
	}
	length := EffectiveHeight(p) / math.Tan(radians(apparentElevation))
	return length * p.Width()
}

// ComputeSeries maps every position to its shadow sample. The output has the
// same length and order as positions.
func ComputeSeries(positions []model.SolarPositionSample, panel model.PanelGeometry) []model.ShadowSample {
	out := make([]model.ShadowSample, len(positions))
	fill(out, positions, panel)
	return out
}

func fill(out []model.ShadowSample, positions []model.SolarPositionSample, panel model.PanelGeometry) {
	for i, pos := range positions {
		out[i] = model.ShadowSample{
			Timestamp:        pos.Timestamp,
			AreaSquareMeters: Area(panel, pos.ApparentElevation),
		}
	}
}

// Engine partitions long series across a fixed number of goroutines.
// The zero value computes sequentially.
type Engine struct {
	Workers int
}

// NewEngine returns an Engine using the given number of workers.
func NewEngine(workers int) *Engine {
	if workers < 1 {
		workers = 1
	}
	return &Engine{Workers: workers}
}

// Compute behaves like ComputeSeries. Each worker writes a disjoint range of
// the output slice so ordering matches the input.
func (e *Engine) Compute(positions []model.SolarPositionSample, panel model.PanelGeometry) []model.ShadowSample {
	workers := 1
	if e != nil && e.Workers > 1 {
		workers = e.Workers
	}
	n := len(positions)
	if workers == 1 || n < 2*minChunk {
		return ComputeSeries(positions, panel)
	}
	chunk := (n + workers - 1) / workers
	if chunk < minChunk {
		chunk = minChunk
	}

	out := make([]model.ShadowSample, n)
	var wg sync.WaitGroup
	for lo := 0; lo < n; lo += chunk {
		hi := lo + chunk
		if hi > n {
			hi = n
		}
		wg.Add(1)
		go func(lo, hi int) {
			defer wg.Done()
			fill(out[lo:hi], positions[lo:hi], panel)
		}(lo, hi)
	}
	wg.Wait()
	return out
}
