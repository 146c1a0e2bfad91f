// Package shadow computes the ground shadow cast by a tilted panel from a
// series of solar elevations.
//
// The model is closed form. For each sample with the sun above the horizon the
// shadow-casting edge stands at
//
//	H_eff = groundElevation + height*sin(tilt)
//
// above the ground and projects a shadow of length H_eff/tan(elevation). The
// shadow area is that length times the panel width. Samples with the sun at or
// below the horizon yield zero. Every sample is independent so the Engine may
// spread a series across goroutines without changing the result.
package shadow
