package config

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ViewerConfig describes the simulated panorama viewer: its rendering
// surface size in pixels and the initial point of view.
type ViewerConfig struct {
	WidthPx    float64 `yaml:"width_px"`    // viewport width (default: 1024)
	HeightPx   float64 `yaml:"height_px"`   // viewport height (default: 768)
	HeadingDeg float64 `yaml:"heading_deg"` // initial heading, 0 = reference forward, clockwise
	PitchDeg   float64 `yaml:"pitch_deg"`   // initial pitch, -90 (down) to 90 (up)
	Zoom       float64 `yaml:"zoom"`        // initial zoom level (>= 0, fractional allowed)
}

// AnchorConfig is an optional anchor override, in pixels from the marker's
// top-left corner.
type AnchorConfig struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

// MarkerConfig describes one marker pinned at a viewing angle.
type MarkerConfig struct {
	ID         string        `yaml:"id"`                 // optional; generated when empty
	HeadingDeg float64       `yaml:"heading_deg"`        // target heading
	PitchDeg   float64       `yaml:"pitch_deg"`          // target pitch, -90 to 90
	Title      string        `yaml:"title"`              // tooltip text
	Icon       string        `yaml:"icon"`               // icon URL
	Class      string        `yaml:"class"`              // CSS class for the demo page
	WidthPx    float64       `yaml:"width_px"`           // 0 = default (32)
	HeightPx   float64       `yaml:"height_px"`          // 0 = default (32)
	Anchor     *AnchorConfig `yaml:"anchor,omitempty"`   // optional; defaults to the size center
	Visible    *bool         `yaml:"visible,omitempty"`  // optional; defaults to true
}

// TourConfig contains parameters for the scripted orbit.
type TourConfig struct {
	PanStepDeg   float64  `yaml:"pan_step_deg"`   // heading increment (default: 30)
	PitchMinDeg  float64  `yaml:"pitch_min_deg"`  // vertical sweep lower bound
	PitchMaxDeg  float64  `yaml:"pitch_max_deg"`  // vertical sweep upper bound
	PitchStepDeg float64  `yaml:"pitch_step_deg"` // vertical increment; 0 = no sweep
	StepDelayMs  int      `yaml:"step_delay_ms"`  // pause per stop (default: 250)
	Zoom         *float64 `yaml:"zoom,omitempty"` // zoom during the tour; omitted = keep current
}

// DefaultsConfig contains generic parameters.
type DefaultsConfig struct {
	DebugLevel int `yaml:"debug_level"` // debug level 0-4 (0=off, 1=info, 2=live, 3=verbose, 4=trace)
}

// Config aggregates all application configuration.
type Config struct {
	Viewer   ViewerConfig   `yaml:"viewer"`
	Markers  []MarkerConfig `yaml:"markers"`
	Tour     TourConfig     `yaml:"tour"`
	Defaults DefaultsConfig `yaml:"defaults"`
}

// Load reads a YAML file and returns the configuration.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal yaml: %w", err)
	}

	// Basic validation
	if cfg.Viewer.WidthPx == 0 {
		cfg.Viewer.WidthPx = 1024
	}
	if cfg.Viewer.HeightPx == 0 {
		cfg.Viewer.HeightPx = 768
	}
	if cfg.Viewer.WidthPx < 0 || cfg.Viewer.HeightPx < 0 {
		return nil, fmt.Errorf("viewer dimensions must be > 0, got %.0fx%.0f", cfg.Viewer.WidthPx, cfg.Viewer.HeightPx)
	}
	if !isFinite(cfg.Viewer.HeadingDeg) || !isFinite(cfg.Viewer.PitchDeg) || !isFinite(cfg.Viewer.Zoom) {
		return nil, fmt.Errorf("viewer angles and zoom must be finite numbers")
	}
	if cfg.Viewer.Zoom < 0 {
		return nil, fmt.Errorf("viewer.zoom must be >= 0, got %.2f", cfg.Viewer.Zoom)
	}
	if cfg.Viewer.PitchDeg < -90 || cfg.Viewer.PitchDeg > 90 {
		return nil, fmt.Errorf("viewer.pitch_deg must be between -90 and 90, got %.2f", cfg.Viewer.PitchDeg)
	}

	seen := make(map[string]bool)
	for i, m := range cfg.Markers {
		if !isFinite(m.HeadingDeg) || !isFinite(m.PitchDeg) {
			return nil, fmt.Errorf("marker %d: angles must be finite numbers", i)
		}
		if m.PitchDeg < -90 || m.PitchDeg > 90 {
			return nil, fmt.Errorf("marker %d: pitch_deg must be between -90 and 90, got %.2f", i, m.PitchDeg)
		}
		if m.WidthPx < 0 || m.HeightPx < 0 {
			return nil, fmt.Errorf("marker %d: size must be >= 0", i)
		}
		if m.ID != "" {
			if seen[m.ID] {
				return nil, fmt.Errorf("duplicate marker id %q", m.ID)
			}
			seen[m.ID] = true
		}
	}

	if cfg.Tour.PanStepDeg < 0 || cfg.Tour.PanStepDeg > 360 {
		return nil, fmt.Errorf("tour.pan_step_deg must be between 0 and 360, got %.2f", cfg.Tour.PanStepDeg)
	}
	if cfg.Tour.PanStepDeg == 0 {
		cfg.Tour.PanStepDeg = 30 // reasonable default
	}
	if cfg.Tour.PitchStepDeg > 0 && cfg.Tour.PitchMinDeg > cfg.Tour.PitchMaxDeg {
		return nil, fmt.Errorf("tour.pitch_min_deg (%.2f) must not exceed tour.pitch_max_deg (%.2f)",
			cfg.Tour.PitchMinDeg, cfg.Tour.PitchMaxDeg)
	}
	if cfg.Tour.StepDelayMs <= 0 {
		cfg.Tour.StepDelayMs = 250 // reasonable default
	}
	if cfg.Tour.Zoom != nil && (*cfg.Tour.Zoom < 0 || !isFinite(*cfg.Tour.Zoom)) {
		return nil, fmt.Errorf("tour.zoom must be >= 0")
	}

	return &cfg, nil
}

// ValidateConfigPath checks that a config path is a .yaml file inside a
// configs/ directory and contains no traversal segments.
func ValidateConfigPath(path string) error {
	if strings.Contains(path, "..") {
		return fmt.Errorf("config path must not contain traversal segments: %q", path)
	}
	if filepath.Ext(path) != ".yaml" {
		return fmt.Errorf("config path must end in .yaml: %q", path)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve config path: %w", err)
	}
	if filepath.Base(filepath.Dir(abs)) != "configs" {
		return fmt.Errorf("config path must live in a configs/ directory: %q", path)
	}
	return nil
}

// StepDelay returns the tour pause per stop.
func (c *Config) StepDelay() time.Duration {
	return time.Duration(c.Tour.StepDelayMs) * time.Millisecond
}

// TourZoom returns the zoom applied during the tour, or -1 to keep the
// viewer's current zoom when none is configured.
func (c *Config) TourZoom() float64 {
	if c.Tour.Zoom == nil {
		return -1
	}
	return *c.Tour.Zoom
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
