// pkg/engine/contacts.go
package engine

import (
	"github.com/opd-ai/go-hitbox/pkg/collision"
	"github.com/opd-ai/go-hitbox/pkg/entity"
)

// Contacts is the collision handler of objects spawned with Notify. It counts
// the overlaps reported for its object, per other object name.
type Contacts struct {
	sim   *Simulation
	owner *entity.Object
	total int
	with  map[string]int
}

func newContacts(sim *Simulation, owner *entity.Object) *Contacts {
	return &Contacts{
		sim:   sim,
		owner: owner,
		with:  make(map[string]int),
	}
}

// OnCollision records one overlap with other
func (c *Contacts) OnCollision(other *collision.Collider) {
	name := "unknown"
	if obj, ok := other.Owner().(*entity.Object); ok {
		name = obj.Name
	}
	c.total++
	c.with[name]++

	c.sim.logger.Debug(c.sim.ctx, "contact",
		"object", c.owner.Name,
		"other", name,
		"tick", c.sim.CurrentTick+1,
	)
}

// Total returns the number of overlaps recorded so far
func (c *Contacts) Total() int {
	return c.total
}

// With returns the number of overlaps recorded with the named object
func (c *Contacts) With(name string) int {
	return c.with[name]
}
