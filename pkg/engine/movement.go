// pkg/engine/movement.go
package engine

import (
	"github.com/EngoEngine/ecs"

	"github.com/opd-ai/go-hitbox/pkg/entity"
)

// MovementPriority runs movement before collision detection
const MovementPriority = 10

// MovementSystem integrates the velocity of active objects
type MovementSystem struct {
	objects []*entity.Object
}

// NewMovementSystem creates an empty movement system
func NewMovementSystem() *MovementSystem {
	return &MovementSystem{}
}

// Add starts moving obj
func (m *MovementSystem) Add(obj *entity.Object) {
	m.objects = append(m.objects, obj)
}

// Remove satisfies the ecs.System interface
func (m *MovementSystem) Remove(basic ecs.BasicEntity) {
	for i, obj := range m.objects {
		if obj.ID() == basic.ID() {
			m.objects = append(m.objects[:i], m.objects[i+1:]...)
			return
		}
	}
}

// Update satisfies the ecs.System interface
func (m *MovementSystem) Update(dt float32) {
	for _, obj := range m.objects {
		if obj.Active() {
			obj.Update(float64(dt))
		}
	}
}

// Priority satisfies the ecs.Prioritizer interface
func (m *MovementSystem) Priority() int {
	return MovementPriority
}
