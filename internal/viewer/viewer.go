package viewer

import (
	"github.com/cjeanneret/PanoMark/internal/logic/geometry"
)

// Viewer is the abstract panorama viewer that overlays bind to. It exposes
// the current view state and viewport size on demand and notifies
// subscribers when either changes. This allows plugging in the in-process
// Panorama simulator or an adapter over a real rendering frontend.
//
// Both subscription methods return a cancel function; callers own the
// subscription and must cancel it when done. Cancel is idempotent.
type Viewer interface {
	// View returns the current viewing angle and zoom level.
	View() geometry.View

	// Viewport returns the current pixel size of the rendering surface.
	// It is read fresh on every projection; the size can change
	// independently of the view via container resize.
	Viewport() geometry.Viewport

	// OnViewChange registers a callback invoked after every pan, tilt or
	// zoom change, with the new view.
	OnViewChange(fn func(geometry.View)) (cancel func())

	// OnResize registers a callback invoked after every viewport size
	// change, with the new size.
	OnResize(fn func(geometry.Viewport)) (cancel func())
}
