package geometry

import "math"

// Empirical zoom→FOV calibration. The theoretical 180/2^zoom curve diverges
// visibly from observed viewer behavior at low zoom and makes marker
// placement unstable, so a fitted piecewise curve is used instead. The
// constants match observed horizontal FOV values at integer zooms
// (0→126.5°, 1→89.75°, 2→53°, then the decay branch beyond 2) and must
// not be changed: they encode calibration, not a derivable formula.
const (
	fovBranchZoom = 2.0

	// zoom <= 2: linear descent
	fovLinearBase  = 126.5
	fovLinearSlope = 36.75

	// zoom > 2: inverse-exponential decay
	fovDecayScale = 195.93
	fovDecayBase  = 1.92
)

// FOV returns the horizontal field of view in degrees for a zoom level.
// Zoom may be fractional; both branches interpolate smoothly and agree to
// within a quarter degree at the zoom 2 boundary. The result is strictly
// positive and finite for any zoom >= 0. Negative zoom is a caller contract
// violation; NaN propagates.
func FOV(zoom float64) float64 {
	if zoom <= fovBranchZoom {
		return fovLinearBase - fovLinearSlope*zoom
	}
	return fovDecayScale / math.Pow(fovDecayBase, zoom)
}
