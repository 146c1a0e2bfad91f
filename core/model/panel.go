package model

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidGeometry is returned when a panel description is non-physical.
var ErrInvalidGeometry = errors.New("invalid panel geometry")

// PanelGeometry describes a single rectangular panel. Values are immutable once
// built through NewPanelGeometry.
type PanelGeometry struct {
	height          float64 // extent along the tilt axis, m
	width           float64 // extent perpendicular to the tilt axis, m
	groundElevation float64 // lower edge above ground, m
	tilt            float64 // degrees from horizontal
}

// NewPanelGeometry validates the dimensions and returns the geometry.
// Height and ground elevation must be non-negative, width strictly positive
// and tilt within [0, 90] degrees.
func NewPanelGeometry(height, width, groundElevation, tiltDeg float64) (PanelGeometry, error) {
	for name, v := range map[string]float64{
		"height":           height,
		"width":            width,
		"ground_elevation": groundElevation,
		"tilt":             tiltDeg,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return PanelGeometry{}, fmt.Errorf("%w: %s must be finite, got %v", ErrInvalidGeometry, name, v)
		}
	}
	if height < 0 {
		return PanelGeometry{}, fmt.Errorf("%w: height must be >= 0, got %v", ErrInvalidGeometry, height)
	}
	if width <= 0 {
		return PanelGeometry{}, fmt.Errorf("%w: width must be > 0, got %v", ErrInvalidGeometry, width)
	}
	if groundElevation < 0 {
		return PanelGeometry{}, fmt.Errorf("%w: ground_elevation must be >= 0, got %v", ErrInvalidGeometry, groundElevation)
	}
	if tiltDeg < 0 || tiltDeg > 90 {
		return PanelGeometry{}, fmt.Errorf("%w: tilt must be within [0, 90], got %v", ErrInvalidGeometry, tiltDeg)
	}
	return PanelGeometry{height: height, width: width, groundElevation: groundElevation, tilt: tiltDeg}, nil
}

// WithTilt returns a validated copy of the geometry at another tilt angle.
func (p PanelGeometry) WithTilt(tiltDeg float64) (PanelGeometry, error) {
	return NewPanelGeometry(p.height, p.width, p.groundElevation, tiltDeg)
}

func (p PanelGeometry) Height() float64          { return p.height }
func (p PanelGeometry) Width() float64           { return p.width }
func (p PanelGeometry) GroundElevation() float64 { return p.groundElevation }
func (p PanelGeometry) TiltDegrees() float64     { return p.tilt }

// String renders the geometry for logs.
func (p PanelGeometry) String() string {
	return fmt.Sprintf("panel{h=%.3gm w=%.3gm elev=%.3gm tilt=%g°}", p.height, p.width, p.groundElevation, p.tilt)
}
