// pkg/engine/state.go
package engine

import (
	"github.com/opd-ai/go-hitbox/pkg/physics"
)

// Summary totals a simulation run
type Summary struct {
	Ticks         int
	Objects       int
	Notifications int
	Dropped       int
	Contacts      map[string]int
}

// ObjectState is a snapshot of one object
type ObjectState struct {
	Name     string
	Position physics.Vector2D // world space
	Area     physics.Rect
	Active   bool
	Enabled  bool
	Contacts int
}

// State is a snapshot of the simulation
type State struct {
	Tick    uint64
	Objects []ObjectState
}

// Summary returns the totals accumulated by Tick, plus contacts per
// notifying object.
func (s *Simulation) Summary() Summary {
	s.EntityLock.RLock()
	defer s.EntityLock.RUnlock()

	summary := s.totals
	summary.Objects = len(s.bodies)
	summary.Contacts = make(map[string]int)
	for name, body := range s.bodies {
		if body.Contacts != nil {
			summary.Contacts[name] = body.Contacts.Total()
		}
	}
	return summary
}

// GetState returns a snapshot of every object in spawn order
func (s *Simulation) GetState() *State {
	s.EntityLock.RLock()
	defer s.EntityLock.RUnlock()

	state := &State{
		Tick:    s.CurrentTick,
		Objects: make([]ObjectState, 0, len(s.order)),
	}
	for _, name := range s.order {
		body := s.bodies[name]
		obj := ObjectState{
			Name:     name,
			Position: body.Object.WorldPosition(),
			Area:     body.Collider.Area(),
			Active:   body.Object.Active(),
			Enabled:  body.Collider.Enabled(),
		}
		if body.Contacts != nil {
			obj.Contacts = body.Contacts.Total()
		}
		state.Objects = append(state.Objects, obj)
	}
	return state
}
