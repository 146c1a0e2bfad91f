package solarpos

import (
	"context"
	"math"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/pvshadow/core/model"
	coresolarpos "github.com/kilianp07/pvshadow/core/solarpos"
)

var montpellier = model.Site{Name: "Montpellier", Latitude: 43.6109, Longitude: 3.8772, Altitude: 27}

func TestMeeusProvider_SummerSolsticeNoon(t *testing.T) {
	p := NewMeeusProvider()
	s := p.At(montpellier, time.Date(2019, time.June, 21, 12, 0, 0, 0, time.UTC))

	// Culmination is 90 - 43.61 + 23.44 degrees, a few minutes before 12:00 UTC.
	assert.InDelta(t, 69.7, s.ApparentElevation, 0.4)
	assert.InDelta(t, 90-s.ApparentElevation, s.ApparentZenith, 1e-12)
	assert.Greater(t, s.Azimuth, 180.0)
	assert.Less(t, s.Azimuth, 200.0)
}

func TestMeeusProvider_WinterSolsticeNoon(t *testing.T) {
	p := NewMeeusProvider()
	s := p.At(montpellier, time.Date(2019, time.December, 21, 11, 45, 0, 0, time.UTC))
	assert.InDelta(t, 90-43.6109-23.44, s.ApparentElevation, 0.5)
}

func TestMeeusProvider_Night(t *testing.T) {
	p := NewMeeusProvider()
	s := p.At(montpellier, time.Date(2019, time.June, 21, 0, 0, 0, 0, time.UTC))
	assert.Less(t, s.ApparentElevation, -15.0)
	assert.InDelta(t, 0, s.Azimuth, 20)
}

func TestMeeusProvider_MorningEastEveningWest(t *testing.T) {
	p := NewMeeusProvider()
	morning := p.At(montpellier, time.Date(2019, time.March, 21, 7, 0, 0, 0, time.UTC))
	evening := p.At(montpellier, time.Date(2019, time.March, 21, 17, 0, 0, 0, time.UTC))
	assert.Greater(t, morning.ApparentElevation, 0.0)
	assert.Greater(t, evening.ApparentElevation, 0.0)
	assert.InDelta(t, 100, morning.Azimuth, 20)
	assert.InDelta(t, 260, evening.Azimuth, 20)
}

func TestMeeusProvider_RefractionRaisesHorizon(t *testing.T) {
	p := NewMeeusProvider()
	assert.InDelta(t, 0.48, p.refraction(0), 0.05)
	assert.Less(t, p.refraction(45), 0.02)
	assert.Equal(t, 0.0, p.refraction(-5))

	thin := &MeeusProvider{PressureHPa: 505, TemperatureC: 12}
	assert.InDelta(t, p.refraction(10)/2, thin.refraction(10), 1e-9)
}

func TestMeeusProvider_PositionsAligned(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Paris")
	require.NoError(t, err)
	start := time.Date(2019, time.June, 21, 0, 0, 0, 0, loc)
	times, err := coresolarpos.Range(start, start.Add(24*time.Hour), time.Hour)
	require.NoError(t, err)

	out, err := NewMeeusProvider().Positions(context.Background(), montpellier, times)
	require.NoError(t, err)
	require.Len(t, out, len(times))

	var up int
	peak := math.Inf(-1)
	for i, s := range out {
		assert.True(t, s.Timestamp.Equal(times[i]))
		if s.ApparentElevation > 0 {
			up++
		}
		peak = math.Max(peak, s.ApparentElevation)
	}
	assert.InDelta(t, 15, up, 1, "about fifteen daylight hours at the solstice")
	assert.InDelta(t, 69.5, peak, 1)
}

func TestMeeusProvider_Errors(t *testing.T) {
	p := NewMeeusProvider()
	_, err := p.Positions(context.Background(), model.Site{Latitude: 100}, []time.Time{time.Now()})
	assert.ErrorIs(t, err, model.ErrInvalidSite)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = p.Positions(ctx, montpellier, []time.Time{time.Now()})
	assert.ErrorIs(t, err, context.Canceled)
}
