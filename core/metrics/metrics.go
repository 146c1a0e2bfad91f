package metrics

import (
	"context"
	"strconv"
	"time"

	"github.com/kilianp07/pvshadow/core/model"
	"github.com/kilianp07/pvshadow/core/shadow"
)

// ShadowRunEvent is the result of the engine for one tilt angle.
type ShadowRunEvent struct {
	RunID      string
	Site       string
	Panel      model.PanelGeometry
	Start      time.Time
	End        time.Time
	Step       time.Duration
	Summary    shadow.Summary
	Positions  []model.SolarPositionSample
	Series     []model.ShadowSample
	ComputedAt time.Time
	Duration   time.Duration
}

// MetricsSink records shadow runs for observability or history purposes.
type MetricsSink interface {
	RecordShadowRun(ctx context.Context, ev ShadowRunEvent) error
}

// Closer is implemented by sinks holding connections or files.
type Closer interface {
	Close() error
}

// NopSink implements MetricsSink with no-op methods.
type NopSink struct{}

func (NopSink) RecordShadowRun(context.Context, ShadowRunEvent) error { return nil }

// Close releases the sink when it implements Closer.
func Close(s MetricsSink) error {
	if c, ok := s.(Closer); ok {
		return c.Close()
	}
	return nil
}

// TiltLabel formats a tilt angle for labels, tags and topics.
func TiltLabel(tilt float64) string {
	return strconv.FormatFloat(tilt, 'f', -1, 64)
}
