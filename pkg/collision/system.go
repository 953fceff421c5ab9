package collision

import (
	"github.com/EngoEngine/ecs"
)

// SystemPriority orders the collision pass after movement systems
const SystemPriority = -10

// System runs a World as an ecs.System. Removing an entity from the ecs
// world deregisters its collider.
type System struct {
	world *World
}

// NewSystem wraps w
func NewSystem(w *World) *System {
	return &System{world: w}
}

// World returns the collision world driven by the system
func (s *System) World() *World {
	return s.world
}

// Add registers c with the system's world
func (s *System) Add(c *Collider, handler Handler) error {
	return c.Register(s.world, handler)
}

// Remove satisfies the ecs.System interface
func (s *System) Remove(basic ecs.BasicEntity) {
	s.world.Remove(ID(basic.ID()))
}

// Update satisfies the ecs.System interface. dt is unused: detection only
// looks at where things are now.
func (s *System) Update(dt float32) {
	s.world.Step()
}

// Priority satisfies the ecs.Prioritizer interface
func (s *System) Priority() int {
	return SystemPriority
}
