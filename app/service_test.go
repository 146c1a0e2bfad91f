package app

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/pvshadow/config"
	"github.com/kilianp07/pvshadow/core/factory"
	coremetrics "github.com/kilianp07/pvshadow/core/metrics"
	"github.com/kilianp07/pvshadow/core/model"
	"github.com/kilianp07/pvshadow/core/solarpos"
	"github.com/kilianp07/pvshadow/infra/logger"
)

type recordingSink struct {
	mu     sync.Mutex
	events []coremetrics.ShadowRunEvent
	closed bool
}

func (r *recordingSink) RecordShadowRun(_ context.Context, ev coremetrics.ShadowRunEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}

func (r *recordingSink) Close() error {
	r.closed = true
	return nil
}

// hourlyProvider puts the sun 45 degrees up from 08:00 to 16:00 local time.
var hourlyProvider = solarpos.ProviderFunc(func(_ context.Context, _ model.Site, times []time.Time) ([]model.SolarPositionSample, error) {
	out := make([]model.SolarPositionSample, len(times))
	for i, t := range times {
		elev := -10.0
		if h := t.Hour(); h >= 8 && h <= 16 {
			elev = 45
		}
		out[i] = model.SolarPositionSample{Timestamp: t, ApparentElevation: elev, ApparentZenith: 90 - elev, Azimuth: float64(t.Hour() * 15)}
	}
	return out, nil
})

func newTestService(t *testing.T, cfg *config.Config, sink coremetrics.MetricsSink, opts ...Option) *Service {
	t.Helper()
	base := []Option{
		WithProvider(hourlyProvider),
		WithSink(sink),
		WithLogger(logger.NopLogger{}),
		WithRunID(func() string { return "run-test" }),
	}
	svc, err := New(cfg, append(base, opts...)...)
	require.NoError(t, err)
	return svc
}

func defaultConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load("")
	require.NoError(t, err)
	return cfg
}

func TestServiceRun(t *testing.T) {
	sink := &recordingSink{}
	svc := newTestService(t, defaultConfig(t), sink)

	r, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "run-test", r.RunID)
	require.Len(t, r.Times, 25)
	require.Len(t, r.Positions, 25)
	require.Len(t, r.Results, 5)
	assert.Equal(t, "Europe/Paris", r.Site.Zone().String())

	// nine daylight hours on the 21st, none on the 22nd at midnight
	flat := r.Results[0].Summary
	assert.Equal(t, 0.0, flat.Tilt)
	assert.Equal(t, 9, flat.SunUp)
	assert.InDelta(t, 9.0/25, flat.Mean, 1e-9)
	assert.InDelta(t, 1.0, flat.Peak, 1e-9)

	vertical := r.Results[4].Summary
	assert.Equal(t, 90.0, vertical.Tilt)
	assert.InDelta(t, 18.0/25, vertical.Mean, 1e-9)

	require.Len(t, sink.events, 5)
	for i, ev := range sink.events {
		assert.Equal(t, "run-test", ev.RunID)
		assert.Equal(t, "Montpellier", ev.Site)
		assert.Equal(t, r.Results[i].Summary, ev.Summary)
		assert.Len(t, ev.Series, 25)
		assert.Equal(t, time.Hour, ev.Step)
	}
	assert.Equal(t, []float64{0, 30, 45, 60, 90}, func() []float64 {
		var tilts []float64
		for _, s := range r.Summaries() {
			tilts = append(tilts, s.Tilt)
		}
		return tilts
	}())

	require.NoError(t, svc.Close())
	assert.True(t, sink.closed)
}

type mockSink struct {
	mock.Mock
}

func (m *mockSink) RecordShadowRun(ctx context.Context, ev coremetrics.ShadowRunEvent) error {
	return m.Called(ctx, ev).Error(0)
}

func TestServiceRun_SinkErrorIsNotFatal(t *testing.T) {
	sink := &mockSink{}
	sink.On("RecordShadowRun", mock.Anything, mock.MatchedBy(func(ev coremetrics.ShadowRunEvent) bool {
		return ev.RunID == "run-test" && len(ev.Series) == 25
	})).Return(errors.New("broker down")).Times(5)

	svc := newTestService(t, defaultConfig(t), sink)
	r, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.Len(t, r.Results, 5)
	sink.AssertExpectations(t)
}

func TestServiceRun_ProviderError(t *testing.T) {
	boom := errors.New("no ephemeris")
	failing := solarpos.ProviderFunc(func(context.Context, model.Site, []time.Time) ([]model.SolarPositionSample, error) {
		return nil, boom
	})
	svc := newTestService(t, defaultConfig(t), coremetrics.NopSink{}, WithProvider(failing))
	_, err := svc.Run(context.Background())
	assert.ErrorIs(t, err, boom)
}

func TestServiceRun_MisalignedProvider(t *testing.T) {
	short := solarpos.ProviderFunc(func(_ context.Context, _ model.Site, times []time.Time) ([]model.SolarPositionSample, error) {
		return make([]model.SolarPositionSample, len(times)-1), nil
	})
	svc := newTestService(t, defaultConfig(t), coremetrics.NopSink{}, WithProvider(short))
	_, err := svc.Run(context.Background())
	assert.Error(t, err)
}

func TestServiceRun_InvalidGeometry(t *testing.T) {
	cfg := defaultConfig(t)
	cfg.Panel.Width = 0
	svc := newTestService(t, cfg, coremetrics.NopSink{})
	_, err := svc.Run(context.Background())
	assert.ErrorIs(t, err, model.ErrInvalidGeometry)
}

func TestNew_UnknownSink(t *testing.T) {
	cfg := defaultConfig(t)
	cfg.Metrics.Sinks = append(cfg.Metrics.Sinks, factory.ModuleConfig{Type: "carrier-pigeon"})
	_, err := New(cfg, WithLogger(logger.NopLogger{}))
	assert.ErrorIs(t, err, factory.ErrUnknownType)
	assert.ErrorContains(t, err, "sqlite")

	_, err = New(nil)
	assert.Error(t, err)
}

func TestNew_SQLiteSinkFromConfig(t *testing.T) {
	cfg := defaultConfig(t)
	cfg.Metrics.Sinks = append(cfg.Metrics.Sinks, factory.ModuleConfig{Type: "sqlite", Conf: map[string]any{"path": filepath.Join(t.TempDir(), "runs.db")}})
	svc, err := New(cfg, WithProvider(hourlyProvider), WithLogger(logger.NopLogger{}))
	require.NoError(t, err)
	defer func() { _ = svc.Close() }()
	_, err = svc.Run(context.Background())
	require.NoError(t, err)
}

func TestServiceRun_MeeusMontpellier(t *testing.T) {
	svc, err := New(defaultConfig(t), WithSink(coremetrics.NopSink{}), WithLogger(logger.NopLogger{}))
	require.NoError(t, err)
	r, err := svc.Run(context.Background())
	require.NoError(t, err)

	sunUp := r.Results[0].Summary.SunUp
	assert.InDelta(t, 15, sunUp, 1)
	prev := 0.0
	for _, res := range r.Results {
		assert.False(t, math.IsNaN(res.Summary.Mean))
		assert.Greater(t, res.Summary.Mean, prev, "mean grows with tilt")
		prev = res.Summary.Mean
	}
}

func TestWriteOutputs(t *testing.T) {
	svc := newTestService(t, defaultConfig(t), coremetrics.NopSink{})
	r, err := svc.Run(context.Background())
	require.NoError(t, err)

	dir := filepath.Join(t.TempDir(), "out")
	paths, err := WriteOutputs(r, config.OutputConfig{Dir: dir, Chart: true, CSV: true, JSON: true, YAML: true, XLSX: true, PDF: true})
	require.NoError(t, err)
	require.Len(t, paths, 6)
	for _, name := range []string{ChartFile, SeriesFile, JSONFile, YAMLFile, XLSXFile, PDFFile} {
		info, err := os.Stat(filepath.Join(dir, name))
		require.NoError(t, err, name)
		assert.Greater(t, info.Size(), int64(0), name)
	}

	paths, err = WriteOutputs(r, config.OutputConfig{Dir: dir})
	require.NoError(t, err)
	assert.Empty(t, paths)
}

func TestSunPath(t *testing.T) {
	svc := newTestService(t, defaultConfig(t), coremetrics.NopSink{})
	sp, err := svc.SunPath(context.Background(), 2023)
	require.NoError(t, err)

	assert.Equal(t, 2023, sp.Year)
	// 365 days of nine daylight hours
	assert.Len(t, sp.Samples, 365*9)
	require.Len(t, sp.Days, 3)
	assert.Equal(t, "2023-03-21", sp.Days[0].Label)
	assert.Equal(t, "2023-12-21", sp.Days[2].Label)
	// 08:00 through 16:55
	assert.Len(t, sp.Days[1].Positions, 9*12)
	for _, p := range sp.Days[1].Positions {
		assert.Greater(t, p.ApparentElevation, 0.0)
	}
}
