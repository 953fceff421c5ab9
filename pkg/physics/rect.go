// pkg/physics/rect.go
package physics

// Rect is an immutable axis-aligned rectangle described by its bounds.
// XMin <= XMax and YMin <= YMax always hold.
type Rect struct {
	XMin float64
	XMax float64
	YMin float64
	YMax float64
}

// NewRect creates a rectangle from an origin and its extents.
// Negative extents are normalised so the bounds stay ordered.
func NewRect(x, y, width, height float64) Rect {
	r := Rect{
		XMin: x,
		XMax: x + width,
		YMin: y,
		YMax: y + height,
	}
	if r.XMax < r.XMin {
		r.XMin, r.XMax = r.XMax, r.XMin
	}
	if r.YMax < r.YMin {
		r.YMin, r.YMax = r.YMax, r.YMin
	}
	return r
}

// Width returns the horizontal extent
func (r Rect) Width() float64 {
	return r.XMax - r.XMin
}

// Height returns the vertical extent
func (r Rect) Height() float64 {
	return r.YMax - r.YMin
}

// Intersects reports whether the interiors of two rectangles overlap.
// Rectangles that only share an edge or a corner do not intersect.
func (r Rect) Intersects(other Rect) bool {
	return r.XMin < other.XMax &&
		r.XMax > other.XMin &&
		r.YMin < other.YMax &&
		r.YMax > other.YMin
}
