package web

import (
	"encoding/json"
	"strings"
	"sync"
	"time"
)

// ViewState is the viewer state as exposed to web clients.
type ViewState struct {
	HeadingDeg float64 `json:"heading_deg"`
	PitchDeg   float64 `json:"pitch_deg"`
	Zoom       float64 `json:"zoom"`
	WidthPx    float64 `json:"width_px"`
	HeightPx   float64 `json:"height_px"`
}

// MarkerState is one marker placement as exposed to web clients.
type MarkerState struct {
	ID       string  `json:"id"`
	Left     float64 `json:"left"`
	Top      float64 `json:"top"`
	Visible  bool    `json:"visible"`
	Icon     string  `json:"icon,omitempty"`
	Title    string  `json:"title,omitempty"`
	Class    string  `json:"class,omitempty"`
	WidthPx  float64 `json:"width_px"`
	HeightPx float64 `json:"height_px"`
	Removed  bool    `json:"removed,omitempty"`
}

// Event represents a single SSE message: a status line, a view change or a
// marker placement.
type Event struct {
	Time   string       `json:"t"`
	Type   string       `json:"type"`
	Level  string       `json:"l,omitempty"`
	Msg    string       `json:"msg,omitempty"`
	View   *ViewState   `json:"view,omitempty"`
	Marker *MarkerState `json:"marker,omitempty"`
}

// Broadcaster distributes events to multiple SSE clients.
type Broadcaster struct {
	mu      sync.RWMutex
	clients map[chan string]struct{}
}

// NewBroadcaster creates a new broadcaster.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		clients: make(map[chan string]struct{}),
	}
}

// Subscribe returns a channel that receives broadcast messages and a cleanup function.
// The caller must call the returned cleanup when done (e.g. on client disconnect).
func (b *Broadcaster) Subscribe() (<-chan string, func()) {
	ch := make(chan string, 64)
	b.mu.Lock()
	b.clients[ch] = struct{}{}
	b.mu.Unlock()

	unsub := func() {
		b.mu.Lock()
		delete(b.clients, ch)
		b.mu.Unlock()
		close(ch)
	}
	return ch, unsub
}

// broadcast sends an event to all subscribed clients as JSON.
// Slow clients may miss messages (non-blocking, buffered).
func (b *Broadcaster) broadcast(evt Event) {
	evt.Time = time.Now().Format(time.RFC3339)
	data, err := json.Marshal(evt)
	if err != nil {
		return
	}
	payload := string(data)

	b.mu.RLock()
	defer b.mu.RUnlock()
	for ch := range b.clients {
		select {
		case ch <- payload:
		default:
			// channel full, skip
		}
	}
}

// BroadcastStatus sends a status line.
func (b *Broadcaster) BroadcastStatus(level, msg string) {
	b.broadcast(Event{Type: "status", Level: level, Msg: msg})
}

// BroadcastView sends a viewer state change.
func (b *Broadcaster) BroadcastView(v ViewState) {
	b.broadcast(Event{Type: "view", View: &v})
}

// BroadcastMarker sends a marker placement update.
func (b *Broadcaster) BroadcastMarker(m MarkerState) {
	b.broadcast(Event{Type: "marker", Marker: &m})
}

// BroadcastWriter implements io.Writer; each Write broadcasts the content as
// a status event. Used to mirror the debug log into the stream.
func BroadcastWriter(b *Broadcaster) *broadcastWriter {
	return &broadcastWriter{b: b}
}

type broadcastWriter struct {
	b *Broadcaster
}

func (w *broadcastWriter) Write(p []byte) (n int, err error) {
	msg := strings.TrimSpace(string(p))
	if msg != "" {
		w.b.BroadcastStatus("info", msg)
	}
	return len(p), nil
}
