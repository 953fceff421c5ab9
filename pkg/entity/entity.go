// pkg/entity/entity.go
package entity

import (
	"errors"

	"github.com/EngoEngine/ecs"

	"github.com/opd-ai/go-hitbox/pkg/physics"
)

// ErrParentCycle is returned when attaching an object would make it its own ancestor
var ErrParentCycle = errors.New("entity: parent cycle")

// Object is a game object: an ECS entity with a transform, an active flag
// and a set of named components resolved by sibling components at setup.
type Object struct {
	ecs.BasicEntity

	Name     string
	Position physics.Vector2D // relative to the parent, or the world when detached
	Velocity physics.Vector2D

	parent     *Object
	inactive   bool
	components map[string]any
}

// New creates an active, detached object at the given position
func New(name string, position physics.Vector2D) *Object {
	return &Object{
		BasicEntity: ecs.NewBasic(),
		Name:        name,
		Position:    position,
		components:  make(map[string]any),
	}
}

// Active reports whether the object and all of its ancestors are active
func (o *Object) Active() bool {
	for cur := o; cur != nil; cur = cur.parent {
		if cur.inactive {
			return false
		}
	}
	return true
}

// SetActive toggles the object. Components stay attached while inactive.
func (o *Object) SetActive(active bool) {
	o.inactive = !active
}

// Attach makes parent the transform parent of o. A nil parent detaches it.
func (o *Object) Attach(parent *Object) error {
	for cur := parent; cur != nil; cur = cur.parent {
		if cur == o {
			return ErrParentCycle
		}
	}
	o.parent = parent
	return nil
}

// Parent returns the transform parent, nil when detached
func (o *Object) Parent() *Object {
	return o.parent
}

// WorldPosition returns the position after applying every parent offset
func (o *Object) WorldPosition() physics.Vector2D {
	pos := o.Position
	for cur := o.parent; cur != nil; cur = cur.parent {
		pos = pos.Add(cur.Position)
	}
	return pos
}

// AddComponent attaches a component under name, replacing any previous one
func (o *Object) AddComponent(name string, component any) {
	o.components[name] = component
}

// Component looks up a component by name
func (o *Object) Component(name string) (any, bool) {
	c, ok := o.components[name]
	return c, ok
}

// Update moves the object along its velocity
func (o *Object) Update(deltaTime float64) {
	o.Position = o.Position.Add(o.Velocity.Scale(deltaTime))
}
