package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kilianp07/pvshadow/core/metrics"
)

// EnvPrefix prefixes environment overrides, e.g. PVSHADOW_SITE__LATITUDE=45.
const EnvPrefix = "PVSHADOW_"

type Config struct {
	Site    SiteConfig     `json:"site"`
	Panel   PanelConfig    `json:"panel"`
	Tilts   []float64      `json:"tilts"`
	Period  PeriodConfig   `json:"period"`
	Solar   SolarConfig    `json:"solar"`
	Engine  EngineConfig   `json:"engine"`
	Output  OutputConfig   `json:"output"`
	Metrics metrics.Config `json:"metrics"`
	Logging LoggingConfig  `json:"logging"`
	Sentry  SentryConfig   `json:"sentry"`
}

// Default returns the built-in configuration: a 1 x 1 m panel standing 1 m
// above the ground in Montpellier, sampled hourly over the 2019 summer solstice.
func Default() Config {
	return Config{
		Site: SiteConfig{
			Name:      "Montpellier",
			Latitude:  43.6109,
			Longitude: 3.8772,
			Altitude:  27,
			Timezone:  "Europe/Paris",
		},
		Panel: PanelConfig{Height: 1, Width: 1, GroundElevation: 1},
		Period: PeriodConfig{
			Start:       "2019-06-21",
			StepMinutes: 60,
		},
		Solar: SolarConfig{
			DeltaTSeconds: 67,
			PressureHPa:   1010,
			TemperatureC:  12,
		},
		Engine: EngineConfig{Workers: 1},
		Output: OutputConfig{Dir: "output", Chart: true, CSV: true, JSON: true},
	}
}

// SetDefaults fills the fields left empty by the configuration sources.
func (c *Config) SetDefaults() {
	if len(c.Tilts) == 0 {
		c.Tilts = []float64{0, 30, 45, 60, 90}
	}
	c.Site.SetDefaults()
	c.Period.SetDefaults()
	c.Solar.SetDefaults()
	c.Engine.SetDefaults()
	c.Output.SetDefaults()
	c.Logging.SetDefaults()
}

// Validate checks every section.
func (c Config) Validate() error {
	site, err := c.Site.Model()
	if err != nil {
		return fmt.Errorf("site: %w", err)
	}
	if _, err := c.Panels(); err != nil {
		return fmt.Errorf("panel: %w", err)
	}
	if err := c.Period.Validate(site.Zone()); err != nil {
		return fmt.Errorf("period: %w", err)
	}
	if err := c.Solar.Validate(); err != nil {
		return fmt.Errorf("solar: %w", err)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	return nil
}

// Load reads the configuration file at path, applies environment overrides,
// defaults and validation. An empty path uses the built-in defaults and the
// environment only.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	if path != "" {
		ext := strings.ToLower(filepath.Ext(path))
		var parser koanf.Parser
		switch ext {
		case ".yaml", ".yml":
			parser = yaml.Parser()
		case ".json":
			parser = json.Parser()
		default:
			return nil, fmt.Errorf("unsupported config format: %s", ext)
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, err
		}
	}
	// Optional environment overrides
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), strings.ToLower(EnvPrefix))
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	cfg := Default()
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
