// Package app wires configuration, the solar position provider, the shadow
// engine and the metrics sinks into runnable use cases.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/pvshadow/config"
	coremetrics "github.com/kilianp07/pvshadow/core/metrics"
	"github.com/kilianp07/pvshadow/core/model"
	"github.com/kilianp07/pvshadow/core/shadow"
	"github.com/kilianp07/pvshadow/core/solarpos"
	"github.com/kilianp07/pvshadow/infra/logger"
	_ "github.com/kilianp07/pvshadow/infra/metrics" // registers the built-in sinks
	infrasolarpos "github.com/kilianp07/pvshadow/infra/solarpos"
)

// Service computes shadow runs from the configuration.
type Service struct {
	cfg      *config.Config
	provider solarpos.Provider
	engine   *shadow.Engine
	sink     coremetrics.MetricsSink
	log      logger.Logger
	now      func() time.Time
	newRunID func() string
}

// Option customizes a Service.
type Option func(*Service)

// WithProvider replaces the meeus solar position provider.
func WithProvider(p solarpos.Provider) Option { return func(s *Service) { s.provider = p } }

// WithSink replaces the sinks built from the metrics configuration.
func WithSink(sink coremetrics.MetricsSink) Option { return func(s *Service) { s.sink = sink } }

// WithLogger sets the service logger.
func WithLogger(l logger.Logger) Option { return func(s *Service) { s.log = l } }

// WithClock sets the clock used for run timestamps.
func WithClock(now func() time.Time) Option { return func(s *Service) { s.now = now } }

// WithRunID sets the run identifier generator.
func WithRunID(f func() string) Option { return func(s *Service) { s.newRunID = f } }

// New creates a Service from the configuration.
func New(cfg *config.Config, opts ...Option) (*Service, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	s := &Service{
		cfg:      cfg,
		engine:   shadow.NewEngine(cfg.Engine.Workers),
		now:      time.Now,
		newRunID: uuid.NewString,
	}
	for _, o := range opts {
		o(s)
	}
	if s.log == nil {
		s.log = logger.New("service")
	}
	if s.provider == nil {
		s.provider = &infrasolarpos.MeeusProvider{
			DeltaT:       cfg.Solar.DeltaT(),
			PressureHPa:  cfg.Solar.PressureHPa,
			TemperatureC: cfg.Solar.TemperatureC,
		}
	}
	if s.sink == nil {
		sink, err := coremetrics.NewMetricsSink(cfg.Metrics.Sinks)
		if err != nil {
			return nil, fmt.Errorf("metrics sink: %w", err)
		}
		s.sink = sink
	}
	return s, nil
}

// Run samples the sun over the configured period and computes the shadow
// series of every tilt. Each tilt is reported to the sink; sink failures are
// logged and do not fail the run.
func (s *Service) Run(ctx context.Context) (*Report, error) {
	site, err := s.cfg.Site.Model()
	if err != nil {
		return nil, fmt.Errorf("site: %w", err)
	}
	panels, err := s.cfg.Panels()
	if err != nil {
		return nil, fmt.Errorf("panel: %w", err)
	}
	start, end, err := s.cfg.Period.Bounds(site.Zone())
	if err != nil {
		return nil, fmt.Errorf("period: %w", err)
	}
	step := s.cfg.Period.Step()
	times, err := solarpos.Range(start, end, step)
	if err != nil {
		return nil, err
	}
	positions, err := s.provider.Positions(ctx, site, times)
	if err != nil {
		return nil, err
	}
	if len(positions) != len(times) {
		return nil, fmt.Errorf("solar position: got %d samples for %d instants", len(positions), len(times))
	}

	r := &Report{
		RunID:     s.newRunID(),
		Site:      site,
		Panel:     panels[0],
		Start:     start,
		End:       end,
		Step:      step,
		Times:     times,
		Positions: positions,
		Results:   make([]shadow.Result, 0, len(panels)),
	}
	s.log.Infow("shadow run started", map[string]any{
		"run_id": r.RunID, "site": site.Name, "samples": len(times), "tilts": len(panels),
	})
	for _, panel := range panels {
		began := s.now()
		series := s.engine.Compute(positions, panel)
		summary := shadow.Summarize(panel.TiltDegrees(), positions, series)
		elapsed := s.now().Sub(began)
		r.Results = append(r.Results, shadow.Result{Summary: summary, Series: series})

		ev := coremetrics.ShadowRunEvent{
			RunID:      r.RunID,
			Site:       site.Name,
			Panel:      panel,
			Start:      start,
			End:        end,
			Step:       step,
			Summary:    summary,
			Positions:  positions,
			Series:     series,
			ComputedAt: began,
			Duration:   elapsed,
		}
		if err := s.sink.RecordShadowRun(ctx, ev); err != nil {
			s.log.Errorf("record run %s tilt %g: %v", r.RunID, summary.Tilt, err)
		}
		s.log.Debugw("tilt computed", map[string]any{
			"tilt": summary.Tilt, "mean_area_m2": summary.Mean, "peak_area_m2": summary.Peak, "sun_up": summary.SunUp,
		})
	}
	r.GeneratedAt = s.now()
	return r, nil
}

// Close releases the sinks.
func (s *Service) Close() error { return coremetrics.Close(s.sink) }

// Report is the outcome of a shadow run.
type Report struct {
	RunID string
	Site  model.Site
	// Panel is the geometry of the first tilt; height, width and ground
	// elevation are shared by every result.
	Panel       model.PanelGeometry
	Start       time.Time
	End         time.Time
	Step        time.Duration
	Times       []time.Time
	Positions   []model.SolarPositionSample
	Results     []shadow.Result
	GeneratedAt time.Time
}

// Summaries returns the summary of every tilt, in configuration order.
func (r *Report) Summaries() []shadow.Summary {
	out := make([]shadow.Summary, len(r.Results))
	for i, res := range r.Results {
		out[i] = res.Summary
	}
	return out
}
