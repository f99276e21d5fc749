package web

import (
	"sort"
	"sync"

	"github.com/cjeanneret/PanoMark/internal/overlay"
)

// MarkerSurface implements overlay.Surface on top of the broadcaster: every
// placement write is pushed to SSE clients, and a snapshot is kept so new
// clients (and GET /markers) can catch up.
type MarkerSurface struct {
	mu         sync.Mutex
	b          *Broadcaster
	placements map[string]overlay.Placement
}

// NewMarkerSurface creates a surface broadcasting through b.
func NewMarkerSurface(b *Broadcaster) *MarkerSurface {
	return &MarkerSurface{
		b:          b,
		placements: make(map[string]overlay.Placement),
	}
}

// Upsert stores and broadcasts a placement.
func (s *MarkerSurface) Upsert(id string, p overlay.Placement) {
	s.mu.Lock()
	s.placements[id] = p
	s.mu.Unlock()

	s.b.BroadcastMarker(markerState(id, p))
}

// Remove drops a marker and tells clients to delete its element. Removing
// an unknown id is a no-op broadcastwise as well.
func (s *MarkerSurface) Remove(id string) {
	s.mu.Lock()
	_, known := s.placements[id]
	delete(s.placements, id)
	s.mu.Unlock()

	if known {
		s.b.BroadcastMarker(MarkerState{ID: id, Removed: true})
	}
}

// Snapshot returns the current placements, sorted by id.
func (s *MarkerSurface) Snapshot() []MarkerState {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]MarkerState, 0, len(s.placements))
	for id, p := range s.placements {
		out = append(out, markerState(id, p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func markerState(id string, p overlay.Placement) MarkerState {
	return MarkerState{
		ID:       id,
		Left:     p.Left,
		Top:      p.Top,
		Visible:  p.Visible,
		Icon:     p.Icon,
		Title:    p.Title,
		Class:    p.ClassName,
		WidthPx:  p.Size.Width,
		HeightPx: p.Size.Height,
	}
}
