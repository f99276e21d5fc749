package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strconv"
	"sync"
	"syscall"

	"github.com/cjeanneret/PanoMark/internal/config"
	"github.com/cjeanneret/PanoMark/internal/debug"
	"github.com/cjeanneret/PanoMark/internal/logic/geometry"
	"github.com/cjeanneret/PanoMark/internal/logic/tour"
	"github.com/cjeanneret/PanoMark/internal/overlay"
	"github.com/cjeanneret/PanoMark/internal/viewer"
	"github.com/cjeanneret/PanoMark/internal/web"
)

func main() {
	// CLI flags
	webPort := &webPortFlag{defaultPort: 8080}
	flag.Var(webPort, "web", "start web server on port; -web= for default 8080, -web 8980 for custom port")
	cfgPath := flag.String("config", filepath.Join("configs", "default.yaml"), "path to config file")
	headingDeg := flag.Float64("heading_deg", 0, "override initial heading in degrees (0 = use config default)")
	pitchDeg := flag.Float64("pitch_deg", 0, "override initial pitch in degrees (0 = use config default)")
	zoom := flag.Float64("zoom", -1, "override initial zoom level (-1 = use config default)")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Load configuration
	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("load config failed: %v", err)
	}

	// Validate CLI overrides (zero heading/pitch and -1 zoom mean "use config default")
	if err := validateCLIOverrides(*headingDeg, *pitchDeg, *zoom); err != nil {
		log.Fatalf("invalid CLI override: %v", err)
	}
	applyOverrides(cfg, *headingDeg, *pitchDeg, *zoom)

	// Initialize debug system
	debug.Init(cfg.Defaults.DebugLevel)
	debug.Section("Initialization")
	debug.Value("Config path", *cfgPath)
	debug.Value("Debug level", cfg.Defaults.DebugLevel)

	// Create the simulated panorama viewer
	debug.Step(1, "Creating panorama viewer")
	pano := viewer.NewPanorama(
		geometry.View{
			Angle: geometry.Angle{Heading: cfg.Viewer.HeadingDeg, Pitch: cfg.Viewer.PitchDeg},
			Zoom:  cfg.Viewer.Zoom,
		},
		geometry.Viewport{Width: cfg.Viewer.WidthPx, Height: cfg.Viewer.HeightPx},
	)
	debug.PrintStruct("Viewer config", cfg.Viewer)

	// Create markers from config
	debug.Step(2, "Creating markers")
	markers := buildMarkers(cfg)
	debug.Markers(len(markers))

	// Scripted tour closure over the viewer and base config
	seq := tour.NewSequence(pano)
	runTour := func(ctx context.Context) error {
		return seq.RunOrbit(ctx, tour.Params{
			PanStepDeg:   cfg.Tour.PanStepDeg,
			PitchMinDeg:  cfg.Tour.PitchMinDeg,
			PitchMaxDeg:  cfg.Tour.PitchMaxDeg,
			PitchStepDeg: cfg.Tour.PitchStepDeg,
			StepDelay:    cfg.StepDelay(),
			Zoom:         cfg.TourZoom(),
		})
	}

	if port := webPort.port(); port > 0 {
		webAddr := fmt.Sprintf(":%d", port)
		broadcaster := web.NewBroadcaster()
		debug.SetOutput(io.MultiWriter(os.Stdout, web.BroadcastWriter(broadcaster)))

		surf := web.NewMarkerSurface(broadcaster)
		bindAll(markers, pano, surf)

		// Mirror viewer state into the stream so clients track pans and resizes.
		stopView := pano.OnViewChange(func(geometry.View) { broadcaster.BroadcastView(viewState(pano)) })
		defer stopView()
		stopResize := pano.OnResize(func(geometry.Viewport) { broadcaster.BroadcastView(viewState(pano)) })
		defer stopResize()

		handlers := web.NewHandlers(broadcaster, pano, surf, runTour, formDefaults(cfg), web.StaticFS())
		srv := web.NewServer(webAddr, handlers)
		if err := srv.Run(ctx); err != nil {
			log.Fatalf("web server: %v", err)
		}
		return
	}

	{
		// Run the tour once against a console surface
		surf := newConsoleSurface()
		bindAll(markers, pano, surf)
		if err := runTour(ctx); err != nil {
			log.Fatalf("tour failed: %v", err)
		}
		printFinalPlacements(surf)
	}
}

// buildMarkers creates the configured markers, unbound.
func buildMarkers(cfg *config.Config) []*overlay.Marker {
	markers := make([]*overlay.Marker, 0, len(cfg.Markers))
	for _, mc := range cfg.Markers {
		opts := overlay.Options{
			ID:        mc.ID,
			Position:  geometry.Angle{Heading: mc.HeadingDeg, Pitch: mc.PitchDeg},
			Icon:      mc.Icon,
			Title:     mc.Title,
			ClassName: mc.Class,
			Visible:   mc.Visible,
		}
		if mc.WidthPx > 0 && mc.HeightPx > 0 {
			opts.Size = &overlay.Size{Width: mc.WidthPx, Height: mc.HeightPx}
		}
		if mc.Anchor != nil {
			opts.Anchor = &overlay.Anchor{X: mc.Anchor.X, Y: mc.Anchor.Y}
		}
		markers = append(markers, overlay.New(opts))
	}
	return markers
}

func bindAll(markers []*overlay.Marker, pano *viewer.Panorama, surf overlay.Surface) {
	for _, m := range markers {
		m.Bind(pano, surf)
	}
}

func viewState(pano *viewer.Panorama) web.ViewState {
	view := pano.View()
	vp := pano.Viewport()
	return web.ViewState{
		HeadingDeg: view.Heading,
		PitchDeg:   view.Pitch,
		Zoom:       view.Zoom,
		WidthPx:    vp.Width,
		HeightPx:   vp.Height,
	}
}

func formDefaults(cfg *config.Config) web.FormConfig {
	return web.FormConfig{
		HeadingDeg: cfg.Viewer.HeadingDeg,
		PitchDeg:   cfg.Viewer.PitchDeg,
		Zoom:       cfg.Viewer.Zoom,
		WidthPx:    cfg.Viewer.WidthPx,
		HeightPx:   cfg.Viewer.HeightPx,
	}
}

// validateCLIOverrides checks that CLI overrides are within valid ranges.
// Zero heading/pitch and negative zoom are ignored (they mean "use config default").
func validateCLIOverrides(heading, pitch, zoom float64) error {
	if heading != 0 {
		if math.IsNaN(heading) || math.IsInf(heading, 0) || heading < -360 || heading > 360 {
			return fmt.Errorf("heading_deg must be between -360 and 360, got %g", heading)
		}
	}
	if pitch != 0 {
		if math.IsNaN(pitch) || math.IsInf(pitch, 0) || pitch < -90 || pitch > 90 {
			return fmt.Errorf("pitch_deg must be between -90 and 90, got %g", pitch)
		}
	}
	if zoom >= 0 {
		if math.IsNaN(zoom) || zoom > 10 {
			return fmt.Errorf("zoom must be between 0 and 10, got %g", zoom)
		}
	}
	return nil
}

// applyOverrides mutates cfg with CLI overrides. Zero heading/pitch and
// negative zoom leave the config values untouched.
func applyOverrides(cfg *config.Config, heading, pitch, zoom float64) {
	if heading != 0 {
		cfg.Viewer.HeadingDeg = heading
	}
	if pitch != 0 {
		cfg.Viewer.PitchDeg = pitch
	}
	if zoom >= 0 {
		cfg.Viewer.Zoom = zoom
	}
}

// webPortFlag implements flag.Value for -web: 0 = disabled, -web= or -web 8080 → 8080, -web 8980 → 8980.
type webPortFlag struct {
	val         int
	defaultPort int
}

func (w *webPortFlag) String() string {
	if w.val == 0 {
		return "0"
	}
	return strconv.Itoa(w.val)
}

func (w *webPortFlag) Set(s string) error {
	if s == "" {
		w.val = w.defaultPort
		return nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return err
	}
	if v <= 0 || v > 65535 {
		return fmt.Errorf("port must be 1-65535, got %d", v)
	}
	w.val = v
	return nil
}

func (w *webPortFlag) port() int { return w.val }

// consoleSurface is the CLI-mode display: placements land in the debug log
// (the marker emits those) and the final state is kept for the summary.
type consoleSurface struct {
	mu         sync.Mutex
	placements map[string]overlay.Placement
}

func newConsoleSurface() *consoleSurface {
	return &consoleSurface{placements: make(map[string]overlay.Placement)}
}

func (s *consoleSurface) Upsert(id string, p overlay.Placement) {
	s.mu.Lock()
	s.placements[id] = p
	s.mu.Unlock()
}

func (s *consoleSurface) Remove(id string) {
	s.mu.Lock()
	delete(s.placements, id)
	s.mu.Unlock()
}

func printFinalPlacements(s *consoleSurface) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]string, 0, len(s.placements))
	for id := range s.placements {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	debug.Summary("Final Marker Placements")
	for _, id := range ids {
		p := s.placements[id]
		if p.Visible {
			debug.Value(id, debug.Fmt("(%.1f, %.1f)", p.Left, p.Top))
		} else {
			debug.Value(id, "hidden")
		}
	}
}
