// Package solarpos declares the solar position port consumed by the shadow
// engine together with helpers for building sampling instants.
package solarpos

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kilianp07/pvshadow/core/model"
)

// Provider computes the apparent sun position for a site. The returned slice
// is aligned with times.
type Provider interface {
	Positions(ctx context.Context, site model.Site, times []time.Time) ([]model.SolarPositionSample, error)
}

// ProviderFunc adapts a function to the Provider interface.
type ProviderFunc func(ctx context.Context, site model.Site, times []time.Time) ([]model.SolarPositionSample, error)

// Positions calls f.
func (f ProviderFunc) Positions(ctx context.Context, site model.Site, times []time.Time) ([]model.SolarPositionSample, error) {
	return f(ctx, site, times)
}

// ErrInvalidRange is returned by Range for an empty or inverted period.
var ErrInvalidRange = errors.New("invalid time range")

// Range returns every instant from start to end inclusive, step apart.
// Both bounds are kept in their own location.
func Range(start, end time.Time, step time.Duration) ([]time.Time, error) {
	if step <= 0 {
		return nil, fmt.Errorf("%w: step must be positive, got %s", ErrInvalidRange, step)
	}
	if end.Before(start) {
		return nil, fmt.Errorf("%w: end %s before start %s", ErrInvalidRange, end.Format(time.RFC3339), start.Format(time.RFC3339))
	}
	n := int(end.Sub(start)/step) + 1
	out := make([]time.Time, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, start.Add(time.Duration(i)*step))
	}
	return out, nil
}

// Daylight keeps the samples with the sun above the horizon.
func Daylight(samples []model.SolarPositionSample) []model.SolarPositionSample {
	out := make([]model.SolarPositionSample, 0, len(samples))
	for _, s := range samples {
		if s.ApparentElevation > 0 {
			out = append(out, s)
		}
	}
	return out
}
