package overlay

// Size is a marker's on-screen footprint in pixels.
type Size struct {
	Width  float64
	Height float64
}

// Anchor is the pixel offset, from the marker's top-left corner, of the
// point that must land on the projected position.
type Anchor struct {
	X float64
	Y float64
}

// Placement is everything a display surface needs to draw one marker.
// Left/Top are already anchor-adjusted: they position the marker's top-left
// corner. Visible false means the marker must not be drawn (either toggled
// off or currently outside the visible frustum).
type Placement struct {
	Left      float64
	Top       float64
	Visible   bool
	Icon      string
	Title     string
	ClassName string
	Size      Size
}

// Surface abstracts the display a marker is drawn on. Implementations must
// tolerate Upsert for an id they have not seen (insertion) and Remove for an
// id they no longer hold (no-op). This keeps bind/unbind idempotent on the
// marker side.
type Surface interface {
	Upsert(id string, p Placement)
	Remove(id string)
}
