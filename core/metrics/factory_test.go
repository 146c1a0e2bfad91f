package metrics

import (
	"context"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/kilianp07/pvshadow/core/factory"
)

func init() {
	_ = RegisterMetricsSink("test-record", func(map[string]any) (MetricsSink, error) {
		return &recordSink{}, nil
	})
}

/*
TestNewMetricsSink_Multi validates NewMetricsSink behavior with zero, one, and multiple configs.
Cases:
  - no config -> NopSink
  - one config -> the sink itself
  - two configs -> MultiSink with two sub-sinks
  - unknown type -> error
*/
func TestNewMetricsSink_Multi(t *testing.T) {
	s, err := NewMetricsSink(nil)
	if err != nil {
		t.Fatalf("create nop default: %v", err)
	}
	if _, ok := s.(NopSink); !ok {
		t.Fatalf("expected NopSink, got %T", s)
	}

	s, err = NewMetricsSink([]factory.ModuleConfig{{Type: "test-record"}})
	if err != nil {
		t.Fatalf("create single: %v", err)
	}
	if _, ok := s.(*recordSink); !ok {
		t.Fatalf("expected recordSink, got %T", s)
	}

	s, err = NewMetricsSink([]factory.ModuleConfig{{Type: "test-record"}, {Type: "test-record"}})
	if err != nil {
		t.Fatalf("create multi: %v", err)
	}
	m, ok := s.(*MultiSink)
	if !ok {
		t.Fatalf("expected MultiSink, got %T", s)
	}
	if len(m.Sinks) != 2 {
		t.Fatalf("expected 2 sinks, got %d", len(m.Sinks))
	}
	if err := m.RecordShadowRun(context.Background(), ShadowRunEvent{}); err != nil {
		t.Fatalf("record: %v", err)
	}

	if _, err := NewMetricsSink([]factory.ModuleConfig{{Type: "test-record"}, {Type: "missing"}}); err == nil {
		t.Fatal("expected error for unknown type")
	}
}

// Test decoding sink definitions from YAML.
func TestMetricsConfigDecodeYAML(t *testing.T) {
	data := `sinks:
  - type: test-record
  - type: test-record
    conf:
      path: runs.db
`
	var cfg Config
	if err := yaml.Unmarshal([]byte(data), &cfg); err != nil {
		t.Fatalf("yaml unmarshal: %v", err)
	}
	if len(cfg.Sinks) != 2 || cfg.Sinks[1].Conf["path"] != "runs.db" {
		t.Fatalf("unexpected config %#v", cfg)
	}
	if _, err := NewMetricsSink(cfg.Sinks); err != nil {
		t.Fatalf("create: %v", err)
	}
}
