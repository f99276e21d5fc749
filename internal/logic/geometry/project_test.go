package geometry

import (
	"math"
	"testing"
)

const pxEpsilon = 1e-6 // tolerance for pixel comparisons

func offsetNear(a, b Offset) bool {
	return math.Abs(a.Left-b.Left) <= pxEpsilon && math.Abs(a.Top-b.Top) <= pxEpsilon
}

func TestProject_DeadCenter(t *testing.T) {
	// A target at the viewer's exact angle lands on the viewport center for
	// any zoom and any viewport size.
	angles := []Angle{
		{Heading: 0, Pitch: 0},
		{Heading: 90, Pitch: 30},
		{Heading: 271.25, Pitch: -45},
		{Heading: 180, Pitch: 89},
	}
	zooms := []float64{0, 0.5, 1, 2, 3.75, 5}
	viewports := []Viewport{
		{Width: 640, Height: 480},
		{Width: 1920, Height: 1080},
		{Width: 100, Height: 700},
	}
	for _, a := range angles {
		for _, zoom := range zooms {
			for _, vp := range viewports {
				got, ok := Project(a, View{Angle: a, Zoom: zoom}, vp)
				if !ok {
					t.Fatalf("target at viewer angle %+v zoom %v: not visible", a, zoom)
				}
				want := Offset{Left: vp.Width / 2, Top: vp.Height / 2}
				if !offsetNear(got, want) {
					t.Errorf("angle %+v zoom %v vp %+v: got %+v, want %+v", a, zoom, vp, got, want)
				}
			}
		}
	}
}

func TestProject_DirectlyBehind(t *testing.T) {
	vp := Viewport{Width: 640, Height: 480}
	cases := []struct {
		name   string
		viewer Angle
	}{
		{"north", Angle{Heading: 0, Pitch: 0}},
		{"east", Angle{Heading: 90, Pitch: 0}},
		{"tilted", Angle{Heading: 200, Pitch: 25}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			target := Angle{Heading: tc.viewer.Heading + 180, Pitch: -tc.viewer.Pitch}
			if _, ok := Project(target, View{Angle: tc.viewer, Zoom: 1}, vp); ok {
				t.Error("target directly behind the viewer must not be visible")
			}
		})
	}
}

func TestProject_PerpendicularTarget(t *testing.T) {
	// 90 degrees off heading puts the target direction tangent to the
	// viewing axis: nDotD is ~0 and the projection is degenerate.
	vp := Viewport{Width: 640, Height: 480}
	view := View{Angle: Angle{Heading: 0, Pitch: 0}, Zoom: 0}

	if _, ok := Project(Angle{Heading: 90, Pitch: 0}, view, vp); ok {
		t.Error("target at +90° heading must not be visible")
	}
	if _, ok := Project(Angle{Heading: -90, Pitch: 0}, view, vp); ok {
		t.Error("target at -90° heading must not be visible")
	}
	if _, ok := Project(Angle{Heading: 0, Pitch: 90}, view, vp); ok {
		t.Error("target at +90° pitch must not be visible")
	}
}

func TestProject_Scenario640x480(t *testing.T) {
	vp := Viewport{Width: 640, Height: 480}
	view := View{Angle: Angle{Heading: 0, Pitch: 0}, Zoom: 0}

	got, ok := Project(Angle{Heading: 0, Pitch: 0}, view, vp)
	if !ok {
		t.Fatal("dead-center target must be visible")
	}
	if !offsetNear(got, Offset{Left: 320, Top: 240}) {
		t.Errorf("got %+v, want (320, 240)", got)
	}

	if _, ok := Project(Angle{Heading: 90, Pitch: 0}, view, vp); ok {
		t.Error("90° offset at zoom 0 (FOV 126.5°) must not be visible")
	}
}

func TestProject_RotationalSymmetry(t *testing.T) {
	vp := Viewport{Width: 800, Height: 600}
	deltas := []float64{45, 90, 180, -30, 360, 123.456}
	target := Angle{Heading: 20, Pitch: 10}
	viewer := View{Angle: Angle{Heading: 5, Pitch: -3}, Zoom: 1.5}

	base, ok := Project(target, viewer, vp)
	if !ok {
		t.Fatal("base case must be visible")
	}
	for _, d := range deltas {
		shiftedTarget := Angle{Heading: target.Heading + d, Pitch: target.Pitch}
		shiftedViewer := View{
			Angle: Angle{Heading: viewer.Heading + d, Pitch: viewer.Pitch},
			Zoom:  viewer.Zoom,
		}
		got, ok := Project(shiftedTarget, shiftedViewer, vp)
		if !ok {
			t.Fatalf("delta %v: shifted case must be visible", d)
		}
		if math.Abs(got.Left-base.Left) > 1e-6 || math.Abs(got.Top-base.Top) > 1e-6 {
			t.Errorf("delta %v: got %+v, want %+v", d, got, base)
		}
	}
}

func TestProject_OffsetDirections(t *testing.T) {
	vp := Viewport{Width: 640, Height: 480}
	view := View{Angle: Angle{Heading: 0, Pitch: 0}, Zoom: 1}

	right, ok := Project(Angle{Heading: 10, Pitch: 0}, view, vp)
	if !ok {
		t.Fatal("10° right must be visible")
	}
	if right.Left <= vp.Width/2 {
		t.Errorf("target right of viewer heading: left = %v, want > %v", right.Left, vp.Width/2)
	}
	if math.Abs(right.Top-vp.Height/2) > pxEpsilon {
		t.Errorf("pure heading offset must stay on the horizon, top = %v", right.Top)
	}

	up, ok := Project(Angle{Heading: 0, Pitch: 10}, view, vp)
	if !ok {
		t.Fatal("10° up must be visible")
	}
	if up.Top >= vp.Height/2 {
		t.Errorf("target above viewer pitch: top = %v, want < %v", up.Top, vp.Height/2)
	}
	if math.Abs(up.Left-vp.Width/2) > pxEpsilon {
		t.Errorf("pure pitch offset must stay centered, left = %v", up.Left)
	}
}

func TestProject_ResizeScalesAroundCenter(t *testing.T) {
	// Doubling the viewport doubles the focal length, so offsets from the
	// center double too; visibility never changes with viewport size.
	target := Angle{Heading: 15, Pitch: 8}
	view := View{Angle: Angle{Heading: 0, Pitch: 0}, Zoom: 1}

	small, ok := Project(target, view, Viewport{Width: 640, Height: 480})
	if !ok {
		t.Fatal("target must be visible in small viewport")
	}
	big, ok := Project(target, view, Viewport{Width: 1280, Height: 960})
	if !ok {
		t.Fatal("resize must not change visibility")
	}

	dxSmall := small.Left - 320
	dySmall := small.Top - 240
	dxBig := big.Left - 640
	dyBig := big.Top - 480

	if math.Abs(dxBig-2*dxSmall) > 1e-6 {
		t.Errorf("horizontal offset: small=%v big=%v, want 2x", dxSmall, dxBig)
	}
	if math.Abs(dyBig-2*dySmall) > 1e-6 {
		t.Errorf("vertical offset: small=%v big=%v, want 2x", dySmall, dyBig)
	}
}

func TestProject_ZoomNarrowsFOV(t *testing.T) {
	// The same angular offset lands further from the center as zoom grows.
	vp := Viewport{Width: 640, Height: 480}
	target := Angle{Heading: 10, Pitch: 0}

	prev := 0.0
	for _, zoom := range []float64{0, 1, 2, 3} {
		got, ok := Project(target, View{Angle: Angle{}, Zoom: zoom}, vp)
		if !ok {
			t.Fatalf("zoom %v: target must be visible", zoom)
		}
		dx := got.Left - vp.Width/2
		if dx <= prev {
			t.Errorf("zoom %v: offset %v, want larger than %v at previous zoom", zoom, dx, prev)
		}
		prev = dx
	}
}

func TestProject_DoesNotMutateInputs(t *testing.T) {
	target := Angle{Heading: 12, Pitch: 34}
	view := View{Angle: Angle{Heading: 5, Pitch: 6}, Zoom: 1.5}
	vp := Viewport{Width: 640, Height: 480}

	wantTarget, wantView, wantVp := target, view, vp
	Project(target, view, vp)

	if target != wantTarget || view != wantView || vp != wantVp {
		t.Error("Project must not mutate its inputs")
	}
}

func TestProject_NaNPropagates(t *testing.T) {
	// NaN angles are a caller contract violation; the projector neither
	// validates nor panics, it just follows IEEE semantics.
	vp := Viewport{Width: 640, Height: 480}
	view := View{Angle: Angle{Heading: 0, Pitch: 0}, Zoom: 1}

	off, ok := Project(Angle{Heading: math.NaN(), Pitch: 0}, view, vp)
	if ok && !math.IsNaN(off.Left) && !math.IsNaN(off.Top) {
		t.Errorf("NaN heading produced a finite offset: %+v", off)
	}
}
