package metrics

import (
	"context"
	"errors"
)

// MultiSink fans out shadow runs to multiple sinks.
type MultiSink struct {
	Sinks []MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordShadowRun forwards the event to all sinks, returning the first error encountered.
func (m *MultiSink) RecordShadowRun(ctx context.Context, ev ShadowRunEvent) error {
	for _, s := range m.Sinks {
		if err := s.RecordShadowRun(ctx, ev); err != nil {
			return err
		}
	}
	return nil
}

// Close closes every sink and joins their errors.
func (m *MultiSink) Close() error {
	var errs []error
	for _, s := range m.Sinks {
		if err := Close(s); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
