package main

import (
	"math"
	"testing"

	"github.com/cjeanneret/PanoMark/internal/config"
	"github.com/cjeanneret/PanoMark/internal/logic/geometry"
	"github.com/cjeanneret/PanoMark/internal/overlay"
	"github.com/cjeanneret/PanoMark/internal/viewer"
)

// ---------- validateCLIOverrides ----------

func TestValidateCLIOverrides_AllUnset(t *testing.T) {
	if err := validateCLIOverrides(0, 0, -1); err != nil {
		t.Errorf("unset overrides should be valid (use config defaults), got: %v", err)
	}
}

func TestValidateCLIOverrides_ValidBoundary(t *testing.T) {
	cases := []struct {
		name    string
		h, p, z float64
	}{
		{"min_heading", -360, 0, -1},
		{"max_heading", 360, 0, -1},
		{"min_pitch", 0, -90, -1},
		{"max_pitch", 0, 90, -1},
		{"min_zoom", 0, 0, 0},
		{"max_zoom", 0, 0, 10},
		{"all_set", 180, 45, 3},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := validateCLIOverrides(tc.h, tc.p, tc.z); err != nil {
				t.Errorf("expected valid, got: %v", err)
			}
		})
	}
}

func TestValidateCLIOverrides_SmallValues(t *testing.T) {
	if err := validateCLIOverrides(0.001, 0.001, 0.001); err != nil {
		t.Errorf("very small values should be valid, got: %v", err)
	}
}

func TestValidateCLIOverrides_OutOfRange(t *testing.T) {
	cases := []struct {
		name    string
		h, p, z float64
	}{
		{"heading_too_large", 361, 0, -1},
		{"heading_too_small", -361, 0, -1},
		{"pitch_too_large", 0, 91, -1},
		{"pitch_too_small", 0, -91, -1},
		{"zoom_too_large", 0, 0, 10.5},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := validateCLIOverrides(tc.h, tc.p, tc.z); err == nil {
				t.Error("expected error for out-of-range value, got nil")
			}
		})
	}
}

func TestValidateCLIOverrides_NaN(t *testing.T) {
	nan := math.NaN()
	cases := []struct {
		name    string
		h, p, z float64
	}{
		{"heading_NaN", nan, 0, -1},
		{"pitch_NaN", 0, nan, -1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := validateCLIOverrides(tc.h, tc.p, tc.z); err == nil {
				t.Error("expected error for NaN, got nil")
			}
		})
	}
}

func TestValidateCLIOverrides_Infinity(t *testing.T) {
	posInf := math.Inf(1)
	negInf := math.Inf(-1)
	cases := []struct {
		name    string
		h, p, z float64
	}{
		{"heading_+Inf", posInf, 0, -1},
		{"heading_-Inf", negInf, 0, -1},
		{"pitch_+Inf", 0, posInf, -1},
		{"pitch_-Inf", 0, negInf, -1},
		{"zoom_+Inf", 0, 0, posInf},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := validateCLIOverrides(tc.h, tc.p, tc.z); err == nil {
				t.Error("expected error for Infinity, got nil")
			}
		})
	}
}

// ---------- webPortFlag ----------

func TestWebPortFlag_EmptyString(t *testing.T) {
	w := &webPortFlag{defaultPort: 8080}
	if err := w.Set(""); err != nil {
		t.Fatalf("Set(\"\") error: %v", err)
	}
	if w.port() != 8080 {
		t.Errorf("expected default port 8080, got %d", w.port())
	}
}

func TestWebPortFlag_ValidPorts(t *testing.T) {
	cases := []struct {
		input string
		want  int
	}{
		{"8080", 8080},
		{"1", 1},
		{"65535", 65535},
		{"3000", 3000},
	}
	for _, tc := range cases {
		t.Run(tc.input, func(t *testing.T) {
			w := &webPortFlag{defaultPort: 8080}
			if err := w.Set(tc.input); err != nil {
				t.Fatalf("Set(%q) error: %v", tc.input, err)
			}
			if w.port() != tc.want {
				t.Errorf("port() = %d, want %d", w.port(), tc.want)
			}
		})
	}
}

func TestWebPortFlag_InvalidPorts(t *testing.T) {
	cases := []string{"0", "65536", "-1", "abc", "8080.5"}
	for _, input := range cases {
		t.Run(input, func(t *testing.T) {
			w := &webPortFlag{defaultPort: 8080}
			if err := w.Set(input); err == nil {
				t.Errorf("Set(%q) should fail, got nil", input)
			}
		})
	}
}

func TestWebPortFlag_String(t *testing.T) {
	w := &webPortFlag{val: 0}
	if s := w.String(); s != "0" {
		t.Errorf("String() = %q, want \"0\"", s)
	}
	w.val = 9090
	if s := w.String(); s != "9090" {
		t.Errorf("String() = %q, want \"9090\"", s)
	}
}

// ---------- applyOverrides ----------

func newTestConfig() *config.Config {
	visible := true
	return &config.Config{
		Viewer: config.ViewerConfig{
			WidthPx:    1024,
			HeightPx:   768,
			HeadingDeg: 45,
			PitchDeg:   -10,
			Zoom:       1,
		},
		Markers: []config.MarkerConfig{
			{ID: "summit", HeadingDeg: 90, PitchDeg: 5, Title: "Summit", Visible: &visible},
			{ID: "trailhead", HeadingDeg: 200, PitchDeg: -15},
		},
		Tour: config.TourConfig{
			PanStepDeg:  30,
			StepDelayMs: 250,
		},
		Defaults: config.DefaultsConfig{DebugLevel: 0},
	}
}

func TestApplyOverrides_NonZero(t *testing.T) {
	cfg := newTestConfig()
	applyOverrides(cfg, 270, 30, 2.5)

	if cfg.Viewer.HeadingDeg != 270 {
		t.Errorf("HeadingDeg = %v, want 270", cfg.Viewer.HeadingDeg)
	}
	if cfg.Viewer.PitchDeg != 30 {
		t.Errorf("PitchDeg = %v, want 30", cfg.Viewer.PitchDeg)
	}
	if cfg.Viewer.Zoom != 2.5 {
		t.Errorf("Zoom = %v, want 2.5", cfg.Viewer.Zoom)
	}
}

func TestApplyOverrides_UnsetLeavesUnchanged(t *testing.T) {
	cfg := newTestConfig()
	origH := cfg.Viewer.HeadingDeg
	origP := cfg.Viewer.PitchDeg
	origZ := cfg.Viewer.Zoom

	applyOverrides(cfg, 0, 0, -1)

	if cfg.Viewer.HeadingDeg != origH {
		t.Errorf("HeadingDeg changed: %v != %v", cfg.Viewer.HeadingDeg, origH)
	}
	if cfg.Viewer.PitchDeg != origP {
		t.Errorf("PitchDeg changed: %v != %v", cfg.Viewer.PitchDeg, origP)
	}
	if cfg.Viewer.Zoom != origZ {
		t.Errorf("Zoom changed: %v != %v", cfg.Viewer.Zoom, origZ)
	}
}

func TestApplyOverrides_Partial(t *testing.T) {
	cfg := newTestConfig()
	origP := cfg.Viewer.PitchDeg
	origZ := cfg.Viewer.Zoom

	applyOverrides(cfg, 300, 0, -1)

	if cfg.Viewer.HeadingDeg != 300 {
		t.Errorf("HeadingDeg = %v, want 300", cfg.Viewer.HeadingDeg)
	}
	if cfg.Viewer.PitchDeg != origP {
		t.Errorf("PitchDeg should be unchanged: %v != %v", cfg.Viewer.PitchDeg, origP)
	}
	if cfg.Viewer.Zoom != origZ {
		t.Errorf("Zoom should be unchanged: %v != %v", cfg.Viewer.Zoom, origZ)
	}
}

func TestApplyOverrides_ZeroZoomApplies(t *testing.T) {
	cfg := newTestConfig()
	applyOverrides(cfg, 0, 0, 0)
	if cfg.Viewer.Zoom != 0 {
		t.Errorf("Zoom = %v, want 0 (zoom 0 is a real value, -1 means unset)", cfg.Viewer.Zoom)
	}
}

// ---------- buildMarkers ----------

func TestBuildMarkers_FromConfig(t *testing.T) {
	cfg := newTestConfig()
	markers := buildMarkers(cfg)

	if len(markers) != 2 {
		t.Fatalf("got %d markers, want 2", len(markers))
	}
	if markers[0].ID() != "summit" {
		t.Errorf("ID = %q, want \"summit\"", markers[0].ID())
	}
	if markers[0].Title() != "Summit" {
		t.Errorf("Title = %q, want \"Summit\"", markers[0].Title())
	}
	pos := markers[1].Position()
	if pos.Heading != 200 || pos.Pitch != -15 {
		t.Errorf("position = %+v, want heading 200 pitch -15", pos)
	}
}

func TestBuildMarkers_SizeAndAnchor(t *testing.T) {
	cfg := newTestConfig()
	cfg.Markers = []config.MarkerConfig{
		{ID: "pin", WidthPx: 24, HeightPx: 40, Anchor: &config.AnchorConfig{X: 12, Y: 40}},
	}

	markers := buildMarkers(cfg)
	if len(markers) != 1 {
		t.Fatalf("got %d markers, want 1", len(markers))
	}

	// Bind to a fixed viewer and check the configured size made it through.
	surf := &captureSurface{}
	pano := viewer.NewPanorama(
		geometry.View{Zoom: 1},
		geometry.Viewport{Width: 640, Height: 480},
	)
	markers[0].Bind(pano, surf)
	defer markers[0].Unbind()

	if surf.last == nil {
		t.Fatal("no placement recorded after Bind")
	}
	if surf.last.Size.Width != 24 || surf.last.Size.Height != 40 {
		t.Errorf("size = %+v, want 24x40", surf.last.Size)
	}
}

type captureSurface struct {
	last *overlay.Placement
}

func (s *captureSurface) Upsert(id string, p overlay.Placement) { s.last = &p }
func (s *captureSurface) Remove(id string)                      {}
