package solarpos

import (
	"context"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/pvshadow/core/model"
)

func TestRangeHourlyDayIsInclusive(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Paris")
	require.NoError(t, err)
	start := time.Date(2019, time.June, 21, 0, 0, 0, 0, loc)
	times, err := Range(start, start.Add(24*time.Hour), time.Hour)
	require.NoError(t, err)
	require.Len(t, times, 25)
	assert.True(t, times[0].Equal(start))
	assert.True(t, times[24].Equal(start.Add(24*time.Hour)))
	assert.Equal(t, loc, times[3].Location())
	for i := 1; i < len(times); i++ {
		assert.Equal(t, time.Hour, times[i].Sub(times[i-1]))
	}
}

func TestRangeUnevenEnd(t *testing.T) {
	start := time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC)
	times, err := Range(start, start.Add(50*time.Minute), 15*time.Minute)
	require.NoError(t, err)
	assert.Len(t, times, 4)
}

func TestRangeSingleInstant(t *testing.T) {
	start := time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC)
	times, err := Range(start, start, time.Minute)
	require.NoError(t, err)
	assert.Len(t, times, 1)
}

func TestRangeErrors(t *testing.T) {
	start := time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC)
	_, err := Range(start, start.Add(time.Hour), 0)
	assert.ErrorIs(t, err, ErrInvalidRange)
	_, err = Range(start, start.Add(-time.Hour), time.Minute)
	assert.ErrorIs(t, err, ErrInvalidRange)
}

func TestDaylight(t *testing.T) {
	in := []model.SolarPositionSample{
		{ApparentElevation: -1},
		{ApparentElevation: 0},
		{ApparentElevation: 0.1},
		{ApparentElevation: 60},
	}
	out := Daylight(in)
	require.Len(t, out, 2)
	assert.Equal(t, 0.1, out[0].ApparentElevation)
	assert.Equal(t, 60.0, out[1].ApparentElevation)
}

func TestProviderFunc(t *testing.T) {
	var called bool
	p := ProviderFunc(func(ctx context.Context, site model.Site, times []time.Time) ([]model.SolarPositionSample, error) {
		called = true
		return make([]model.SolarPositionSample, len(times)), nil
	})
	out, err := p.Positions(context.Background(), model.Site{}, []time.Time{{}, {}})
	require.NoError(t, err)
	assert.True(t, called)
	assert.Len(t, out, 2)
}
