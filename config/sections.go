package config

import (
	"fmt"
	"time"

	"github.com/kilianp07/pvshadow/core/model"
)

// SiteConfig locates the observer.
type SiteConfig struct {
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Altitude  float64 `json:"altitude"`
	// Timezone is an IANA name used for local timestamps.
	Timezone string `json:"timezone"`
}

func (c *SiteConfig) SetDefaults() {
	if c.Timezone == "" {
		c.Timezone = "UTC"
	}
	if c.Name == "" {
		c.Name = fmt.Sprintf("%.4f,%.4f", c.Latitude, c.Longitude)
	}
}

// Model resolves the timezone and returns the validated site.
func (c SiteConfig) Model() (model.Site, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return model.Site{}, fmt.Errorf("timezone %q: %w", c.Timezone, err)
	}
	s := model.Site{
		Name:      c.Name,
		Latitude:  c.Latitude,
		Longitude: c.Longitude,
		Altitude:  c.Altitude,
		Location:  loc,
	}
	if err := s.Validate(); err != nil {
		return model.Site{}, err
	}
	return s, nil
}

// PanelConfig holds the geometry shared by every tilt angle.
type PanelConfig struct {
	Height          float64 `json:"height"`
	Width           float64 `json:"width"`
	GroundElevation float64 `json:"ground_elevation"`
}

// Panels returns one geometry per configured tilt, in order.
func (c Config) Panels() ([]model.PanelGeometry, error) {
	if len(c.Tilts) == 0 {
		return nil, fmt.Errorf("at least one tilt is required")
	}
	out := make([]model.PanelGeometry, len(c.Tilts))
	for i, tilt := range c.Tilts {
		p, err := model.NewPanelGeometry(c.Panel.Height, c.Panel.Width, c.Panel.GroundElevation, tilt)
		if err != nil {
			return nil, err
		}
		out[i] = p
	}
	return out, nil
}

// PeriodConfig bounds the sampling instants. Start and End accept a date
// (YYYY-MM-DD, midnight in the site timezone) or an RFC 3339 timestamp.
type PeriodConfig struct {
	Start string `json:"start"`
	// End defaults to one day after Start. It is inclusive.
	End         string  `json:"end"`
	StepMinutes float64 `json:"step_minutes"`
}

func (c *PeriodConfig) SetDefaults() {
	if c.StepMinutes == 0 {
		c.StepMinutes = 60
	}
}

// Validate checks the bounds parse and are ordered. Date-only bounds are
// resolved in loc, the site timezone.
func (c PeriodConfig) Validate(loc *time.Location) error {
	if loc == nil {
		loc = time.UTC
	}
	_, _, err := c.Bounds(loc)
	if err != nil {
		return err
	}
	if c.StepMinutes <= 0 {
		return fmt.Errorf("step_minutes must be positive, got %v", c.StepMinutes)
	}
	return nil
}

// Step returns the sampling step.
func (c PeriodConfig) Step() time.Duration {
	return time.Duration(c.StepMinutes * float64(time.Minute))
}

// Bounds returns the first and last instants in loc.
func (c PeriodConfig) Bounds(loc *time.Location) (time.Time, time.Time, error) {
	start, err := parseInstant(c.Start, loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("start: %w", err)
	}
	end := start.AddDate(0, 0, 1)
	if c.End != "" {
		if end, err = parseInstant(c.End, loc); err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("end: %w", err)
		}
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("end %s before start %s", c.End, c.Start)
	}
	return start, end, nil
}

func parseInstant(s string, loc *time.Location) (time.Time, error) {
	if s == "" {
		return time.Time{}, fmt.Errorf("value is required")
	}
	if t, err := time.ParseInLocation(time.DateOnly, s, loc); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%q is neither YYYY-MM-DD nor RFC 3339", s)
	}
	return t.In(loc), nil
}

// SolarConfig tunes the solar position algorithm.
type SolarConfig struct {
	DeltaTSeconds float64 `json:"delta_t_seconds"`
	PressureHPa   float64 `json:"pressure_hpa"`
	TemperatureC  float64 `json:"temperature_c"`
}

func (c *SolarConfig) SetDefaults() {
	if c.PressureHPa == 0 {
		c.PressureHPa = 1010
	}
}

func (c SolarConfig) Validate() error {
	if c.PressureHPa < 0 {
		return fmt.Errorf("pressure_hpa must be positive, got %v", c.PressureHPa)
	}
	if c.TemperatureC <= -273 {
		return fmt.Errorf("temperature_c below absolute zero: %v", c.TemperatureC)
	}
	return nil
}

// DeltaT returns TT minus UT.
func (c SolarConfig) DeltaT() time.Duration {
	return time.Duration(c.DeltaTSeconds * float64(time.Second))
}

// EngineConfig sizes the shadow engine.
type EngineConfig struct {
	Workers int `json:"workers"`
}

func (c *EngineConfig) SetDefaults() {
	if c.Workers <= 0 {
		c.Workers = 1
	}
}

// OutputConfig selects the files a shadow run writes under Dir.
type OutputConfig struct {
	Dir   string `json:"dir"`
	Chart bool   `json:"chart"`
	CSV   bool   `json:"csv"`
	JSON  bool   `json:"json"`
	YAML  bool   `json:"yaml"`
	XLSX  bool   `json:"xlsx"`
	PDF   bool   `json:"pdf"`
}

func (c *OutputConfig) SetDefaults() {
	if c.Dir == "" {
		c.Dir = "."
	}
}
