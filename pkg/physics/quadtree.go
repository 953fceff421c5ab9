// pkg/physics/quadtree.go
package physics

// Default subdivision limits for a QuadTree
const (
	DefaultNodeCapacity = 10
	DefaultMaxDepth     = 5
)

// Quadrant indices in the order Split creates the children.
const (
	NoQuadrant          = -1
	QuadrantBottomLeft  = 0
	QuadrantTopLeft     = 1
	QuadrantBottomRight = 2
	QuadrantTopRight    = 3
)

// Bounded is anything with an area that can be stored in a QuadTree.
// Area is read again on every classification, so it must not change
// while the item is in the tree.
type Bounded interface {
	Area() Rect
}

// QuadTree is a recursive spatial partition over a fixed region.
// Items that do not fit a single quadrant stay at the node that
// classified them.
type QuadTree[T Bounded] struct {
	level    int
	bounds   Rect
	capacity int
	maxDepth int
	items    []T
	nodes    []*QuadTree[T]
}

// NewQuadTree creates an empty node with the default limits
func NewQuadTree[T Bounded](level int, bounds Rect) *QuadTree[T] {
	return NewQuadTreeWithLimits[T](level, bounds, DefaultNodeCapacity, DefaultMaxDepth)
}

// NewQuadTreeWithLimits creates an empty node that splits once it holds more
// than capacity items, down to maxDepth levels.
func NewQuadTreeWithLimits[T Bounded](level int, bounds Rect, capacity, maxDepth int) *QuadTree[T] {
	if capacity < 1 {
		capacity = DefaultNodeCapacity
	}
	if maxDepth < 0 {
		maxDepth = DefaultMaxDepth
	}
	return &QuadTree[T]{
		level:    level,
		bounds:   bounds,
		capacity: capacity,
		maxDepth: maxDepth,
	}
}

// Level returns the depth of this node, the root being 0
func (qt *QuadTree[T]) Level() int {
	return qt.level
}

// Bounds returns the region covered by this node
func (qt *QuadTree[T]) Bounds() Rect {
	return qt.bounds
}

// Items returns the items held directly by this node
func (qt *QuadTree[T]) Items() []T {
	return qt.items
}

// Children returns the quadrants of this node, or nil before a split
func (qt *QuadTree[T]) Children() []*QuadTree[T] {
	return qt.nodes
}

// Clear drops every item and child, leaving the node as constructed.
func (qt *QuadTree[T]) Clear() {
	clear(qt.items)
	qt.items = qt.items[:0]
	qt.nodes = nil
}

// Split replaces the children with four equal quadrants of the node bounds.
func (qt *QuadTree[T]) Split() {
	subWidth := qt.bounds.Width() / 2
	subHeight := qt.bounds.Height() / 2
	x := qt.bounds.XMin
	y := qt.bounds.YMin

	qt.nodes = []*QuadTree[T]{
		qt.child(NewRect(x, y, subWidth, subHeight)),
		qt.child(NewRect(x, y+subHeight, subWidth, subHeight)),
		qt.child(NewRect(x+subWidth, y, subWidth, subHeight)),
		qt.child(NewRect(x+subWidth, y+subHeight, subWidth, subHeight)),
	}
}

func (qt *QuadTree[T]) child(bounds Rect) *QuadTree[T] {
	return NewQuadTreeWithLimits[T](qt.level+1, bounds, qt.capacity, qt.maxDepth)
}

// middles returns the vertical and horizontal split lines of the node
func (qt *QuadTree[T]) middles() (vertical, horizontal float64) {
	vertical = qt.bounds.XMin + qt.bounds.Width()/2
	horizontal = qt.bounds.YMin + qt.bounds.Height()/2
	return vertical, horizontal
}

// Index returns the quadrant that fully contains area, or NoQuadrant if the
// area crosses or touches either middle line.
func (qt *QuadTree[T]) Index(area Rect) int {
	vertical, horizontal := qt.middles()

	top := area.YMin > horizontal
	bottom := area.YMax < horizontal
	left := area.XMax < vertical
	right := area.XMin > vertical

	switch {
	case bottom && left:
		return QuadrantBottomLeft
	case top && left:
		return QuadrantTopLeft
	case bottom && right:
		return QuadrantBottomRight
	case top && right:
		return QuadrantTopRight
	}
	return NoQuadrant
}

// Insert stores item in the deepest node whose quadrant fully contains it.
func (qt *QuadTree[T]) Insert(item T) {
	if len(qt.nodes) > 0 {
		if index := qt.Index(item.Area()); index != NoQuadrant {
			qt.nodes[index].Insert(item)
			return
		}
	}

	qt.items = append(qt.items, item)

	if len(qt.items) <= qt.capacity || qt.level >= qt.maxDepth {
		return
	}
	if len(qt.nodes) == 0 {
		qt.Split()
	}

	kept := qt.items[:0]
	for _, held := range qt.items {
		if index := qt.Index(held.Area()); index != NoQuadrant {
			qt.nodes[index].Insert(held)
			continue
		}
		kept = append(kept, held)
	}
	clear(qt.items[len(kept):])
	qt.items = kept
}

// Retrieve returns every item that could overlap area. The result is a
// superset of the true overlaps and is not collision tested.
func (qt *QuadTree[T]) Retrieve(area Rect) []T {
	return qt.retrieve(area, nil)
}

func (qt *QuadTree[T]) retrieve(area Rect, result []T) []T {
	if len(qt.nodes) > 0 {
		if index := qt.Index(area); index != NoQuadrant {
			result = qt.nodes[index].retrieve(area, result)
		} else {
			for index, node := range qt.nodes {
				if qt.reaches(area, index) {
					result = node.retrieve(area, result)
				}
			}
		}
	}
	return append(result, qt.items...)
}

// reaches reports whether area extends onto the side of the middle lines
// covered by quadrant index. Items stored in that quadrant lie strictly on
// that side, so a quadrant that is not reached cannot hold an overlap.
func (qt *QuadTree[T]) reaches(area Rect, index int) bool {
	vertical, horizontal := qt.middles()

	left := area.XMin <= vertical
	right := area.XMax >= vertical
	bottom := area.YMin <= horizontal
	top := area.YMax >= horizontal

	switch index {
	case QuadrantBottomLeft:
		return bottom && left
	case QuadrantTopLeft:
		return top && left
	case QuadrantBottomRight:
		return bottom && right
	case QuadrantTopRight:
		return top && right
	}
	return false
}

// Len returns the number of items in this node and all of its descendants
func (qt *QuadTree[T]) Len() int {
	n := len(qt.items)
	for _, node := range qt.nodes {
		n += node.Len()
	}
	return n
}

// Nodes returns the number of nodes in the tree rooted here
func (qt *QuadTree[T]) Nodes() int {
	n := 1
	for _, node := range qt.nodes {
		n += node.Nodes()
	}
	return n
}

// Depth returns the level of the deepest node in the tree rooted here
func (qt *QuadTree[T]) Depth() int {
	depth := qt.level
	for _, node := range qt.nodes {
		if d := node.Depth(); d > depth {
			depth = d
		}
	}
	return depth
}
