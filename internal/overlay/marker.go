package overlay

import (
	"sync"

	"github.com/google/uuid"

	"github.com/cjeanneret/PanoMark/internal/debug"
	"github.com/cjeanneret/PanoMark/internal/logic/geometry"
	"github.com/cjeanneret/PanoMark/internal/viewer"
)

// Default marker footprint when no size is configured: a small square with
// its anchor at the center.
const (
	DefaultWidth  = 32.0
	DefaultHeight = 32.0
)

// Options configures a new marker. Zero values select the defaults: a
// generated ID, 32x32 size, anchor at the size's center, visible.
type Options struct {
	ID        string
	Position  geometry.Angle
	Icon      string
	Title     string
	ClassName string
	Size      *Size
	Anchor    *Anchor
	Visible   *bool
}

// Marker keeps a visual marker fixed at a viewing angle of a panorama. Once
// bound to a viewer and a surface, it re-projects its target angle on every
// view change and viewport resize and writes the result to the surface.
//
// The screen position is always derived from the last projection, never
// tracked incrementally. When the projector reports the angle is not
// currently projectable, the marker is hidden until it comes back into the
// frustum.
//
// All methods are safe for concurrent use; a single mutex serializes
// attribute access and placement writes in case the bound viewer delivers
// events from multiple goroutines.
type Marker struct {
	mu        sync.Mutex
	id        string
	position  geometry.Angle
	icon      string
	title     string
	className string
	size      Size
	anchor    Anchor
	visible   bool

	viewer       viewer.Viewer
	surface      Surface
	cancelView   func()
	cancelResize func()

	lastOffset geometry.Offset // anchor-adjusted, from the last successful projection
	onScreen   bool
}

// New creates an unbound marker from the given options.
func New(opts Options) *Marker {
	id := opts.ID
	if id == "" {
		id = uuid.NewString()
	}

	size := Size{Width: DefaultWidth, Height: DefaultHeight}
	if opts.Size != nil {
		size = *opts.Size
	}

	anchor := Anchor{X: size.Width / 2, Y: size.Height / 2}
	if opts.Anchor != nil {
		anchor = *opts.Anchor
	}

	visible := true
	if opts.Visible != nil {
		visible = *opts.Visible
	}

	return &Marker{
		id:        id,
		position:  opts.Position,
		icon:      opts.Icon,
		title:     opts.Title,
		className: opts.ClassName,
		size:      size,
		anchor:    anchor,
		visible:   visible,
	}
}

// ID returns the marker's identifier.
func (m *Marker) ID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.id
}

// Bind attaches the marker to a viewer and a display surface: it subscribes
// to the viewer's view-change and resize notifications, inserts the marker
// into the surface, and projects immediately. A marker bound elsewhere is
// unbound from its previous viewer first.
func (m *Marker) Bind(v viewer.Viewer, s Surface) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.unbindLocked()

	m.viewer = v
	m.surface = s
	m.cancelView = v.OnViewChange(func(geometry.View) { m.Refresh() })
	m.cancelResize = v.OnResize(func(geometry.Viewport) { m.Refresh() })
	debug.Trace("Marker %s bound", m.id)

	m.refreshLocked()
}

// Unbind cancels the event subscriptions and removes the marker from its
// surface. Unbinding an already-unbound marker is a no-op.
func (m *Marker) Unbind() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.unbindLocked()
}

// unbindLocked releases subscriptions and the surface element; m.mu held.
func (m *Marker) unbindLocked() {
	if m.viewer == nil {
		return
	}
	m.cancelView()
	m.cancelResize()
	m.cancelView = nil
	m.cancelResize = nil
	m.surface.Remove(m.id)
	m.viewer = nil
	m.surface = nil
	m.onScreen = false
	debug.Trace("Marker %s unbound", m.id)
}

// Bound reports whether the marker is currently attached to a viewer.
func (m *Marker) Bound() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.viewer != nil
}

// Position returns the target viewing angle.
func (m *Marker) Position() geometry.Angle {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.position
}

// SetPosition moves the marker to a new target angle and re-projects
// immediately.
func (m *Marker) SetPosition(a geometry.Angle) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.position = a
	m.refreshLocked()
}

// Visible returns the marker's visibility flag. Note the flag is the
// caller's toggle only; a visible marker may still be hidden on screen while
// outside the frustum.
func (m *Marker) Visible() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.visible
}

// SetVisible toggles display of the marker without detaching it from any
// events.
func (m *Marker) SetVisible(visible bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.visible = visible
	m.writePlacementLocked()
}

// Title returns the marker title.
func (m *Marker) Title() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.title
}

// SetTitle updates the title. Cosmetic only: the placement is rewritten
// without re-projecting.
func (m *Marker) SetTitle(title string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.title = title
	m.writePlacementLocked()
}

// Icon returns the marker icon URL.
func (m *Marker) Icon() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.icon
}

// SetIcon updates the icon URL. Cosmetic only.
func (m *Marker) SetIcon(icon string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.icon = icon
	m.writePlacementLocked()
}

// Refresh re-reads the viewer state, re-projects the target angle and
// writes the result to the surface. It is invoked automatically on view
// changes and resizes; callers only need it after out-of-band changes.
func (m *Marker) Refresh() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.refreshLocked()
}

// refreshLocked projects and writes the placement; m.mu held.
func (m *Marker) refreshLocked() {
	if m.viewer == nil {
		return
	}

	view := m.viewer.View()
	vp := m.viewer.Viewport()

	off, ok := geometry.Project(m.position, view, vp)
	if debug.IsEnabled(debug.LevelVerbose) {
		debug.Projection(m.id, m.position.Heading, m.position.Pitch, geometry.FOV(view.Zoom), ok)
	}

	if ok {
		m.lastOffset = geometry.Offset{
			Left: off.Left - m.anchor.X,
			Top:  off.Top - m.anchor.Y,
		}
	} else if m.onScreen {
		debug.Hide(m.id)
	}
	m.onScreen = ok

	m.writePlacementLocked()
}

// writePlacementLocked pushes the current state to the surface without
// re-projecting; m.mu held.
func (m *Marker) writePlacementLocked() {
	if m.surface == nil {
		return
	}

	visible := m.visible && m.onScreen
	if visible {
		debug.Place(m.id, m.lastOffset.Left, m.lastOffset.Top)
	}
	m.surface.Upsert(m.id, Placement{
		Left:      m.lastOffset.Left,
		Top:       m.lastOffset.Top,
		Visible:   visible,
		Icon:      m.icon,
		Title:     m.title,
		ClassName: m.className,
		Size:      m.size,
	})
}
