package model

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidSite is returned for coordinates outside the valid range.
var ErrInvalidSite = errors.New("invalid site")

// Site is a fixed observation point.
type Site struct {
	Name      string
	Latitude  float64 // degrees, north positive
	Longitude float64 // degrees, east positive
	Altitude  float64 // meters above sea level
	Location  *time.Location
}

// Validate checks the coordinate ranges.
func (s Site) Validate() error {
	if s.Latitude < -90 || s.Latitude > 90 {
		return fmt.Errorf("%w: latitude %v outside [-90, 90]", ErrInvalidSite, s.Latitude)
	}
	if s.Longitude < -180 || s.Longitude > 180 {
		return fmt.Errorf("%w: longitude %v outside [-180, 180]", ErrInvalidSite, s.Longitude)
	}
	return nil
}

// Zone returns the site time zone, UTC when unset.
func (s Site) Zone() *time.Location {
	if s.Location == nil {
		return time.UTC
	}
	return s.Location
}

// SolarPositionSample is the sun position seen from a site at one instant.
type SolarPositionSample struct {
	Timestamp time.Time `json:"timestamp"`
	// ApparentElevation is the refraction corrected elevation in degrees.
	// Negative values mean the sun is below the horizon.
	ApparentElevation float64 `json:"apparent_elevation"`
	ApparentZenith    float64 `json:"apparent_zenith"`
	// Azimuth in degrees clockwise from north.
	Azimuth float64 `json:"azimuth"`
}

// ShadowSample is the projected shadow area at one instant.
type ShadowSample struct {
	Timestamp        time.Time `json:"timestamp"`
	AreaSquareMeters float64   `json:"area_m2"`
}
