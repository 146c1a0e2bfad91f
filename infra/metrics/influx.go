package metrics

import (
	"context"
	"math"
	"net/http"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kilianp07/pvshadow/core/metrics"
	"github.com/kilianp07/pvshadow/infra/logger"
)

// InfluxConfig holds the InfluxDB v2 connection settings.
type InfluxConfig struct {
	URL    string `json:"url"`
	Token  string `json:"token"`
	Org    string `json:"org"`
	Bucket string `json:"bucket"`
}

// InfluxSink writes shadow series to an InfluxDB instance using the official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(cfg InfluxConfig) *InfluxSink {
	base := strings.TrimSuffix(cfg.URL, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, cfg.Token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(cfg.Org, cfg.Bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback tries to ping the InfluxDB instance and
// returns a NopSink if the health check fails.
func NewInfluxSinkWithFallback(cfg InfluxConfig) coremetrics.MetricsSink {
	sink := NewInfluxSink(cfg)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// RecordShadowRun writes one shadow_area point per sample.
func (s *InfluxSink) RecordShadowRun(ctx context.Context, ev coremetrics.ShadowRunEvent) error {
	if len(ev.Series) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	points := make([]*write.Point, len(ev.Series))
	for i := range ev.Series {
		points[i] = shadowPoint(ev, i)
	}
	if err := s.writeAPI.WritePoint(ctx, points...); err != nil {
		s.log.Errorf("write %d points: %v", len(points), err)
		return err
	}
	return nil
}

func shadowPoint(ev coremetrics.ShadowRunEvent, i int) *write.Point {
	sample := ev.Series[i]
	p := write.NewPointWithMeasurement("shadow_area").
		AddTag("run_id", ev.RunID).
		AddTag("site", ev.Site).
		AddTag("tilt", coremetrics.TiltLabel(ev.Summary.Tilt)).
		AddField("area_m2", round3(sample.AreaSquareMeters))
	if i < len(ev.Positions) {
		p = p.AddField("apparent_elevation", round3(ev.Positions[i].ApparentElevation))
	}
	return p.SetTime(sample.Timestamp)
}

// Close releases the HTTP client.
func (s *InfluxSink) Close() error {
	s.client.Close()
	return nil
}

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
