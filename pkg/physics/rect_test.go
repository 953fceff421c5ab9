// pkg/physics/rect_test.go
package physics

import "testing"

func TestNewRect(t *testing.T) {
	tests := []struct {
		name     string
		x, y     float64
		w, h     float64
		expected Rect
	}{
		{
			name:     "positive_extents",
			x:        10, y: 20, w: 30, h: 40,
			expected: Rect{XMin: 10, XMax: 40, YMin: 20, YMax: 60},
		},
		{
			name:     "zero_extents",
			x:        5, y: 5, w: 0, h: 0,
			expected: Rect{XMin: 5, XMax: 5, YMin: 5, YMax: 5},
		},
		{
			name:     "negative_extents_normalised",
			x:        10, y: 10, w: -4, h: -6,
			expected: Rect{XMin: 6, XMax: 10, YMin: 4, YMax: 10},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRect(tt.x, tt.y, tt.w, tt.h)
			if r != tt.expected {
				t.Errorf("NewRect() = %+v, expected %+v", r, tt.expected)
			}
			if r.XMin > r.XMax || r.YMin > r.YMax {
				t.Errorf("bounds out of order: %+v", r)
			}
		})
	}
}

func TestRect_Intersects(t *testing.T) {
	tests := []struct {
		name     string
		a        Rect
		b        Rect
		expected bool
	}{
		{"overlapping", NewRect(0, 0, 10, 10), NewRect(5, 5, 10, 10), true},
		{"contained", NewRect(0, 0, 10, 10), NewRect(2, 2, 3, 3), true},
		{"touching_edge", NewRect(0, 0, 10, 10), NewRect(10, 0, 10, 10), false},
		{"touching_corner", NewRect(0, 0, 10, 10), NewRect(10, 10, 5, 5), false},
		{"separate_x", NewRect(0, 0, 10, 10), NewRect(20, 0, 5, 5), false},
		{"separate_y", NewRect(0, 0, 10, 10), NewRect(0, 20, 5, 5), false},
		{"overlap_x_only", NewRect(0, 0, 10, 10), NewRect(5, 15, 10, 10), false},
		{"zero_area", NewRect(5, 5, 0, 0), NewRect(5, 5, 0, 0), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Intersects(tt.b); got != tt.expected {
				t.Errorf("a.Intersects(b) = %v, expected %v", got, tt.expected)
			}
			if got := tt.b.Intersects(tt.a); got != tt.expected {
				t.Errorf("b.Intersects(a) = %v, expected %v (symmetry)", got, tt.expected)
			}
		})
	}
}

func TestRect_IntersectsSelf(t *testing.T) {
	rects := []Rect{
		NewRect(0, 0, 1, 1),
		NewRect(-50, -20, 7.5, 0.25),
		NewRect(600, 400, 170, 178),
	}

	for _, r := range rects {
		if !r.Intersects(r) {
			t.Errorf("%+v does not intersect itself", r)
		}
	}
}

func TestRect_WidthHeight(t *testing.T) {
	r := NewRect(3, 4, 12, 5)
	if r.Width() != 12 {
		t.Errorf("Width() = %v, expected 12", r.Width())
	}
	if r.Height() != 5 {
		t.Errorf("Height() = %v, expected 5", r.Height())
	}
}
