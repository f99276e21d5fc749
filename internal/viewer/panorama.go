package viewer

import (
	"sync"

	"github.com/cjeanneret/PanoMark/internal/debug"
	"github.com/cjeanneret/PanoMark/internal/logic/geometry"
)

// Panorama is an in-process Viewer implementation: it holds view state and
// viewport size and fans out change notifications to subscribers. It backs
// the web demo and the scripted tours, and doubles as the test viewer.
//
// Callbacks run synchronously on the mutating goroutine, outside the state
// lock.
type Panorama struct {
	mu       sync.Mutex
	view     geometry.View
	viewport geometry.Viewport

	nextSub  int
	viewSubs map[int]func(geometry.View)
	sizeSubs map[int]func(geometry.Viewport)
}

// NewPanorama creates a simulated viewer with the given initial view and
// viewport size. Zoom below 0 is clamped to 0.
func NewPanorama(view geometry.View, viewport geometry.Viewport) *Panorama {
	if view.Zoom < 0 {
		view.Zoom = 0
	}
	return &Panorama{
		view:     view,
		viewport: viewport,
		viewSubs: make(map[int]func(geometry.View)),
		sizeSubs: make(map[int]func(geometry.Viewport)),
	}
}

// View returns the current viewing angle and zoom.
func (p *Panorama) View() geometry.View {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.view
}

// Viewport returns the current surface size in pixels.
func (p *Panorama) Viewport() geometry.Viewport {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.viewport
}

// OnViewChange registers a view-change callback and returns its cancel
// function. Cancel is safe to call more than once.
func (p *Panorama) OnViewChange(fn func(geometry.View)) (cancel func()) {
	p.mu.Lock()
	id := p.nextSub
	p.nextSub++
	p.viewSubs[id] = fn
	p.mu.Unlock()

	return func() {
		p.mu.Lock()
		delete(p.viewSubs, id)
		p.mu.Unlock()
	}
}

// OnResize registers a viewport-change callback and returns its cancel
// function. Cancel is safe to call more than once.
func (p *Panorama) OnResize(fn func(geometry.Viewport)) (cancel func()) {
	p.mu.Lock()
	id := p.nextSub
	p.nextSub++
	p.sizeSubs[id] = fn
	p.mu.Unlock()

	return func() {
		p.mu.Lock()
		delete(p.sizeSubs, id)
		p.mu.Unlock()
	}
}

// LookAt points the viewer at the given heading and pitch, in degrees.
func (p *Panorama) LookAt(heading, pitch float64) {
	p.mu.Lock()
	p.view.Heading = heading
	p.view.Pitch = pitch
	view := p.view
	subs := p.viewSubscribers()
	p.mu.Unlock()

	debug.View(view.Heading, view.Pitch, view.Zoom)
	notifyView(subs, view)
}

// PanBy rotates the view by the given heading and pitch deltas, in degrees.
func (p *Panorama) PanBy(dHeading, dPitch float64) {
	p.mu.Lock()
	p.view.Heading += dHeading
	p.view.Pitch += dPitch
	view := p.view
	subs := p.viewSubscribers()
	p.mu.Unlock()

	debug.View(view.Heading, view.Pitch, view.Zoom)
	notifyView(subs, view)
}

// SetZoom sets the zoom level. Values below 0 are clamped to 0; fractional
// zoom is valid and interpolates smoothly in the FOV model.
func (p *Panorama) SetZoom(zoom float64) {
	if zoom < 0 {
		zoom = 0
	}
	p.mu.Lock()
	p.view.Zoom = zoom
	view := p.view
	subs := p.viewSubscribers()
	p.mu.Unlock()

	debug.View(view.Heading, view.Pitch, view.Zoom)
	notifyView(subs, view)
}

// SetViewportSize resizes the rendering surface and notifies resize
// subscribers.
func (p *Panorama) SetViewportSize(width, height float64) {
	p.mu.Lock()
	p.viewport = geometry.Viewport{Width: width, Height: height}
	vp := p.viewport
	subs := make([]func(geometry.Viewport), 0, len(p.sizeSubs))
	for _, fn := range p.sizeSubs {
		subs = append(subs, fn)
	}
	p.mu.Unlock()

	debug.Verbose("Viewport resized to %gx%g", width, height)
	for _, fn := range subs {
		fn(vp)
	}
}

// viewSubscribers snapshots the view callbacks; caller must hold p.mu.
func (p *Panorama) viewSubscribers() []func(geometry.View) {
	subs := make([]func(geometry.View), 0, len(p.viewSubs))
	for _, fn := range p.viewSubs {
		subs = append(subs, fn)
	}
	return subs
}

func notifyView(subs []func(geometry.View), view geometry.View) {
	for _, fn := range subs {
		fn(view)
	}
}
