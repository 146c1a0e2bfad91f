package metrics

import (
	"context"
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/push"

	coremetrics "github.com/kilianp07/pvshadow/core/metrics"
	"github.com/kilianp07/pvshadow/infra/logger"
)

// PromConfig configures the Prometheus sink. An empty PushgatewayURL keeps the
// metrics in the registry only.
type PromConfig struct {
	PushgatewayURL string `json:"pushgateway_url"`
	Job            string `json:"job"`
}

// Registry is both a Prometheus registerer and gatherer.
type Registry interface {
	prometheus.Registerer
	prometheus.Gatherer
}

// PromSink records shadow runs in Prometheus metrics.
type PromSink struct {
	mean     *prometheus.GaugeVec
	peak     *prometheus.GaugeVec
	runs     *prometheus.CounterVec
	samples  *prometheus.CounterVec
	duration *prometheus.HistogramVec
	pusher   *push.Pusher
	gatherer prometheus.Gatherer
	log      logger.Logger
}

// NewPromSink registers the shadow metrics on a dedicated registry.
func NewPromSink(cfg PromConfig) (*PromSink, error) {
	return NewPromSinkWithRegistry(cfg, prometheus.NewRegistry())
}

// NewPromSinkWithRegistry registers metrics on the provided registry.
// A nil registry defaults to a fresh one.
func NewPromSinkWithRegistry(cfg PromConfig, reg Registry) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	mean, err := register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "pvshadow_mean_shadow_area_square_meters",
		Help: "Mean shadow area over the period of the last run",
	}, []string{"site", "tilt"}))
	if err != nil {
		return nil, err
	}
	peak, err := register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "pvshadow_peak_shadow_area_square_meters",
		Help: "Largest shadow area over the period of the last run",
	}, []string{"site", "tilt"}))
	if err != nil {
		return nil, err
	}
	runs, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pvshadow_runs_total",
		Help: "Total number of shadow series computed",
	}, []string{"site"}))
	if err != nil {
		return nil, err
	}
	samples, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pvshadow_samples_total",
		Help: "Total number of shadow samples computed",
	}, []string{"site"}))
	if err != nil {
		return nil, err
	}
	duration, err := register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pvshadow_compute_duration_seconds",
		Help:    "Time spent computing one shadow series",
		Buckets: prometheus.ExponentialBuckets(1e-5, 4, 10),
	}, []string{"site"}))
	if err != nil {
		return nil, err
	}

	s := &PromSink{
		mean:     mean,
		peak:     peak,
		runs:     runs,
		samples:  samples,
		duration: duration,
		gatherer: reg,
		log:      logger.New("prom-sink"),
	}
	if cfg.PushgatewayURL != "" {
		job := cfg.Job
		if job == "" {
			job = "pvshadow"
		}
		s.pusher = push.New(cfg.PushgatewayURL, job).Gatherer(reg)
	}
	return s, nil
}

// register adds c to reg, reusing an identical collector registered earlier.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RecordShadowRun updates the gauges and counters and pushes them when a
// Pushgateway is configured.
func (s *PromSink) RecordShadowRun(ctx context.Context, ev coremetrics.ShadowRunEvent) error {
	tilt := coremetrics.TiltLabel(ev.Summary.Tilt)
	s.mean.WithLabelValues(ev.Site, tilt).Set(ev.Summary.Mean)
	s.peak.WithLabelValues(ev.Site, tilt).Set(ev.Summary.Peak)
	s.runs.WithLabelValues(ev.Site).Inc()
	s.samples.WithLabelValues(ev.Site).Add(float64(ev.Summary.Samples))
	s.duration.WithLabelValues(ev.Site).Observe(ev.Duration.Seconds())

	if s.pusher == nil {
		return nil
	}
	if err := s.pusher.PushContext(ctx); err != nil {
		s.log.Errorf("pushgateway push failed: %v", err)
		return err
	}
	return nil
}

// Handler exposes the sink registry in the Prometheus text format.
func (s *PromSink) Handler() http.Handler {
	return promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})
}
