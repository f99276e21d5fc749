package web

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"log"
	"math"
	"net/http"
	"sync"
	"time"

	"github.com/cjeanneret/PanoMark/internal/viewer"
)

// ViewRequest carries a partial view update: nil fields keep the viewer's
// current value.
type ViewRequest struct {
	HeadingDeg *float64 `json:"heading_deg"`
	PitchDeg   *float64 `json:"pitch_deg"`
	Zoom       *float64 `json:"zoom"`
}

// ViewportRequest resizes the rendering surface.
type ViewportRequest struct {
	WidthPx  float64 `json:"width_px"`
	HeightPx float64 `json:"height_px"`
}

// RunTourFunc runs the scripted tour. It is called from the POST /run
// handler in a goroutine.
type RunTourFunc func(ctx context.Context) error

// FormConfig holds default values for the demo page controls (from config).
type FormConfig struct {
	HeadingDeg float64 `json:"heading_deg"`
	PitchDeg   float64 `json:"pitch_deg"`
	Zoom       float64 `json:"zoom"`
	WidthPx    float64 `json:"width_px"`
	HeightPx   float64 `json:"height_px"`
}

// Handlers holds dependencies for HTTP handlers.
type Handlers struct {
	Broadcaster  *Broadcaster
	Pano         *viewer.Panorama
	Markers      *MarkerSurface
	RunTour      RunTourFunc
	FormDefaults FormConfig
	runningMu    sync.Mutex
	running      bool
	staticFS     fs.FS
}

// NewHandlers creates handlers with the given dependencies.
// If runTour is nil, POST /run will return 503 Service Unavailable.
func NewHandlers(broadcaster *Broadcaster, pano *viewer.Panorama, markers *MarkerSurface, runTour RunTourFunc, formDefaults FormConfig, staticFS fs.FS) *Handlers {
	return &Handlers{
		Broadcaster:  broadcaster,
		Pano:         pano,
		Markers:      markers,
		RunTour:      runTour,
		FormDefaults: formDefaults,
		staticFS:     staticFS,
	}
}

// ValidateViewRequest checks that the provided fields of a view update are
// usable. Nil fields are ignored (they mean "keep the current value").
func ValidateViewRequest(req ViewRequest) error {
	if req.HeadingDeg != nil {
		if math.IsNaN(*req.HeadingDeg) || math.IsInf(*req.HeadingDeg, 0) {
			return fmt.Errorf("heading_deg must be a finite number")
		}
	}
	if req.PitchDeg != nil {
		if math.IsNaN(*req.PitchDeg) || math.IsInf(*req.PitchDeg, 0) || *req.PitchDeg < -90 || *req.PitchDeg > 90 {
			return fmt.Errorf("pitch_deg must be between -90 and 90")
		}
	}
	if req.Zoom != nil {
		if math.IsNaN(*req.Zoom) || math.IsInf(*req.Zoom, 0) || *req.Zoom < 0 || *req.Zoom > 10 {
			return fmt.Errorf("zoom must be between 0 and 10")
		}
	}
	return nil
}

// ValidateViewportRequest checks a resize request. Both dimensions are
// required; a zero-size surface would break the projection contract.
func ValidateViewportRequest(req ViewportRequest) error {
	for name, v := range map[string]float64{"width_px": req.WidthPx, "height_px": req.HeightPx} {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 1 || v > 16384 {
			return fmt.Errorf("%s must be between 1 and 16384", name)
		}
	}
	return nil
}

// currentView snapshots the panorama into a ViewState.
func (h *Handlers) currentView() ViewState {
	view := h.Pano.View()
	vp := h.Pano.Viewport()
	return ViewState{
		HeadingDeg: view.Heading,
		PitchDeg:   view.Pitch,
		Zoom:       view.Zoom,
		WidthPx:    vp.Width,
		HeightPx:   vp.Height,
	}
}

// HandleConfig returns the demo page default values (from config) as JSON.
func (h *Handlers) HandleConfig(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(h.FormDefaults)
}

// HandleGetView returns the current viewer state as JSON.
func (h *Handlers) HandleGetView(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(h.currentView())
}

// HandleSetView handles POST /view to pan or zoom the viewer.
func (h *Handlers) HandleSetView(w http.ResponseWriter, r *http.Request) {
	var req ViewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if err := ValidateViewRequest(req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	view := h.Pano.View()
	heading, pitch := view.Heading, view.Pitch
	if req.HeadingDeg != nil {
		heading = *req.HeadingDeg
	}
	if req.PitchDeg != nil {
		pitch = *req.PitchDeg
	}
	if heading != view.Heading || pitch != view.Pitch {
		h.Pano.LookAt(heading, pitch)
	}
	if req.Zoom != nil && *req.Zoom != view.Zoom {
		h.Pano.SetZoom(*req.Zoom)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(h.currentView())
}

// HandleSetViewport handles POST /viewport to resize the rendering surface.
func (h *Handlers) HandleSetViewport(w http.ResponseWriter, r *http.Request) {
	var req ViewportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if err := ValidateViewportRequest(req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	h.Pano.SetViewportSize(req.WidthPx, req.HeightPx)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(h.currentView())
}

// HandleMarkers returns the current marker placements as JSON.
func (h *Handlers) HandleMarkers(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(h.Markers.Snapshot())
}

// ServeIndex serves the main HTML page (root path only).
func (h *Handlers) ServeIndex(w http.ResponseWriter, r *http.Request) {
	data, err := fs.ReadFile(h.staticFS, "index.html")
	if err != nil {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(data)
}

// HandleRun handles POST /run to start the scripted tour.
func (h *Handlers) HandleRun(w http.ResponseWriter, r *http.Request) {
	if h.RunTour == nil {
		http.Error(w, "tour not configured", http.StatusServiceUnavailable)
		return
	}

	h.runningMu.Lock()
	if h.running {
		h.runningMu.Unlock()
		http.Error(w, "tour already in progress", http.StatusConflict)
		return
	}
	h.running = true
	h.runningMu.Unlock()

	// Run in goroutine; clear running when done
	go func() {
		defer func() {
			h.runningMu.Lock()
			h.running = false
			h.runningMu.Unlock()
		}()

		ctx := context.Background()
		if err := h.RunTour(ctx); err != nil {
			h.Broadcaster.BroadcastStatus("error", "Tour failed: "+err.Error())
			log.Printf("tour failed: %v", err)
		} else {
			h.Broadcaster.BroadcastStatus("info", "Tour complete")
		}
	}()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]string{"status": "started"})
}

// HandleStatusStream handles GET /status/stream for SSE.
func (h *Handlers) HandleStatusStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // nginx

	ch, unsub := h.Broadcaster.Subscribe()
	defer unsub()

	// Send initial comment to establish connection
	w.Write([]byte(": connected\n\n"))
	flusher.Flush()

	// Heartbeat while idle
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return
			}
			w.Write([]byte("data: " + msg + "\n\n"))
			flusher.Flush()

		case <-ticker.C:
			w.Write([]byte(": heartbeat\n\n"))
			flusher.Flush()

		case <-r.Context().Done():
			return
		}
	}
}
