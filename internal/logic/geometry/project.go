package geometry

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

const degToRad = math.Pi / 180.0

// Angle is a viewing direction in degrees. Heading is rotation about the
// vertical axis (0 = reference forward, increasing clockwise), pitch is
// elevation above the horizontal plane. Neither is bounded by the math;
// callers normally keep heading in [0,360) and pitch in [-90,90].
type Angle struct {
	Heading float64
	Pitch   float64
}

// View is a viewer's current state: where it looks and how far it zooms in.
// Zoom must be >= 0; fractional values are valid.
type View struct {
	Angle
	Zoom float64
}

// Viewport is the on-screen size of the viewer's rendering surface in pixels.
// Both dimensions must be > 0; a zero width makes the focal length computation
// divide by zero and is a caller contract violation.
type Viewport struct {
	Width  float64
	Height float64
}

// Offset is a pixel position relative to the viewport's top-left corner.
type Offset struct {
	Left float64
	Top  float64
}

// nDotDEpsilon bounds the degenerate configuration where the target
// direction is perpendicular to the viewing axis: the ray through the target
// never meaningfully intersects the view plane. Comparison is strict.
const nDotDEpsilon = 1e-6

// direction converts an angle to a Cartesian direction vector of magnitude f,
// heading as azimuth and pitch as elevation (x east, y forward, z up).
func direction(a Angle, f float64) r3.Vec {
	h := a.Heading * degToRad
	p := a.Pitch * degToRad
	return r3.Vec{
		X: f * math.Cos(p) * math.Sin(h),
		Y: f * math.Cos(p) * math.Cos(h),
		Z: f * math.Sin(p),
	}
}

// planeUp returns the unit vector pointing "up" inside the image plane of a
// camera looking along angle a: the derivative of the viewing direction with
// respect to pitch. Unit length by the spherical parametrization.
func planeUp(a Angle) r3.Vec {
	h := a.Heading * degToRad
	p := a.Pitch * degToRad
	return r3.Vec{
		X: -math.Sin(p) * math.Sin(h),
		Y: -math.Sin(p) * math.Cos(h),
		Z: math.Cos(p),
	}
}

// Project computes the viewport pixel position at which a marker fixed at
// the target angle must be drawn, given the viewer's current view and
// viewport size. The second return value is false when no valid projection
// exists (target behind the camera, or tangent to the viewing axis); callers
// must treat that as a routine outcome, not a fault.
//
// Pinhole-camera model: the viewer is a camera at the origin with its image
// plane at focal distance f = (width/2) / tan(fov/2), fov taken from the
// viewer's current zoom. The target direction is intersected with that plane
// and the intersection decomposed onto the plane's right/up basis. Pure
// function; inputs are never mutated and NaN propagates unchecked.
func Project(target Angle, view View, vp Viewport) (Offset, bool) {
	fov := FOV(view.Zoom) * degToRad
	f := (vp.Width / 2) / math.Tan(fov/2)

	// Camera direction and target direction, both scaled to focal length.
	cam := direction(view.Angle, f)
	dir := direction(target, f)

	// nDotD = n·d with n the plane normal (camera direction); nDotC is |n|²,
	// algebraically f² but computed from components.
	nDotD := r3.Dot(cam, dir)
	nDotC := r3.Dot(cam, cam)

	// Tangent to the viewing axis: no meaningful plane intersection.
	if math.Abs(nDotD) < nDotDEpsilon {
		return Offset{}, false
	}

	// t scales the target ray to the image plane; negative means the
	// intersection lies behind the camera.
	t := nDotC / nDotD
	if t < 0 {
		return Offset{}, false
	}

	hit := r3.Scale(t, dir)

	// Image-plane basis: up comes out unit length from the parametrization
	// and is trusted as-is; right is a raw cross product and needs
	// normalizing.
	up := planeUp(view.Angle)
	right := r3.Unit(r3.Cross(cam, up))

	du := r3.Dot(hit, right)
	dv := r3.Dot(hit, up)

	// Screen y grows downward while dv grows upward.
	return Offset{
		Left: vp.Width/2 + du,
		Top:  vp.Height/2 - dv,
	}, true
}
