// Package solarpos implements the solar position port on top of the
// soniakeys/meeus astronomical algorithms.
package solarpos

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/soniakeys/meeus/v3/julian"
	"github.com/soniakeys/meeus/v3/sidereal"
	"github.com/soniakeys/meeus/v3/solar"
	"github.com/soniakeys/unit"

	"github.com/kilianp07/pvshadow/core/model"
	coresolarpos "github.com/kilianp07/pvshadow/core/solarpos"
)

const (
	DefaultDeltaT       = 67 * time.Second
	DefaultPressureHPa  = 1010.0
	DefaultTemperatureC = 12.0

	// sun radius plus standard refraction at the horizon, degrees
	refractionCutoff = -(0.26667 + 0.5667)
)

// MeeusProvider computes apparent sun positions from the apparent solar
// coordinates and the apparent sidereal time.
type MeeusProvider struct {
	// DeltaT is TT minus UT.
	DeltaT       time.Duration
	PressureHPa  float64
	TemperatureC float64
}

var _ coresolarpos.Provider = (*MeeusProvider)(nil)

// NewMeeusProvider returns a provider using the standard atmosphere defaults.
func NewMeeusProvider() *MeeusProvider {
	return &MeeusProvider{
		DeltaT:       DefaultDeltaT,
		PressureHPa:  DefaultPressureHPa,
		TemperatureC: DefaultTemperatureC,
	}
}

// Positions returns one sample per instant, in the order of times.
func (p *MeeusProvider) Positions(ctx context.Context, site model.Site, times []time.Time) ([]model.SolarPositionSample, error) {
	if err := site.Validate(); err != nil {
		return nil, err
	}
	out := make([]model.SolarPositionSample, len(times))
	for i, t := range times {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("solar position: %w", err)
		}
		out[i] = p.At(site, t)
	}
	return out, nil
}

// At computes the sun position at a single instant.
func (p *MeeusProvider) At(site model.Site, t time.Time) model.SolarPositionSample {
	φ := unit.AngleFromDeg(site.Latitude)
	λ := unit.AngleFromDeg(site.Longitude)

	jd := julian.TimeToJD(t.UTC())
	jde := jd + p.DeltaT.Seconds()/86400
	α, δ := solar.ApparentEquatorial(jde)
	θ := sidereal.Apparent(jd)

	// local hour angle, longitude positive east
	H := unit.Angle(θ.Rad() + λ.Rad() - α.Rad())

	sinφ, cosφ := φ.Sincos()
	sinδ, cosδ := δ.Sincos()
	sinH, cosH := H.Sincos()

	h := unit.Angle(math.Asin(sinφ*sinδ + cosφ*cosδ*cosH))
	// Meeus measures azimuth westward from south.
	A := unit.Angle(math.Atan2(sinH, cosH*sinφ-math.Tan(δ.Rad())*cosφ) + math.Pi).Mod1()

	elev := h.Deg() + p.refraction(h.Deg())
	return model.SolarPositionSample{
		Timestamp:         t,
		ApparentElevation: elev,
		ApparentZenith:    90 - elev,
		Azimuth:           A.Deg(),
	}
}

// refraction returns the correction in degrees added to a true elevation.
func (p *MeeusProvider) refraction(trueElev float64) float64 {
	if trueElev < refractionCutoff {
		return 0
	}
	pressure := p.PressureHPa
	if pressure <= 0 {
		pressure = DefaultPressureHPa
	}
	scale := (pressure / 1010) * (283 / (273 + p.TemperatureC))
	arg := unit.AngleFromDeg(trueElev + 10.3/(trueElev+5.11))
	return scale * 1.02 / (60 * arg.Tan())
}
