// Package collision decides, once per simulation tick, which hitboxes
// overlap and tells the interested game objects about it.
//
// A Collider is attached to a game object (its Owner). It carries a
// category flag describing what the object is, a filter mask describing
// what it reacts to, and an optional Handler. Colliders without a Handler
// are passive: they can be hit but never look for hits themselves.
// Colliders live in a World, which rebuilds a quadtree broad phase for
// every querying collider and confirms each candidate with an exact
// rectangle test before notifying.
package collision

import (
	"errors"
	"fmt"

	"github.com/opd-ai/go-hitbox/pkg/physics"
)

// Errors returned while setting colliders up
var (
	ErrNilOwner          = errors.New("collision: collider has no owner")
	ErrNotConfigured     = errors.New("collision: collider is not configured")
	ErrAlreadyRegistered = errors.New("collision: collider already registered")
	ErrNoLookup          = errors.New("collision: owner has no component lookup")
	ErrHandlerNotFound   = errors.New("collision: handler component not found")
	ErrNotAHandler       = errors.New("collision: component does not handle collisions")
)

// ID identifies a collider. It is the ECS entity ID of the owner.
type ID uint64

// Category is a collision category bitmask
type Category uint32

// Size is the extent of a hitbox in local space
type Size struct {
	W float64
	H float64
}

// Owner is the game object a collider is attached to. WorldPosition is read
// on every tick because parent transforms can move the object at any time.
type Owner interface {
	ID() uint64
	Active() bool
	WorldPosition() physics.Vector2D
}

// ComponentLookup resolves sibling components by name
type ComponentLookup interface {
	Component(name string) (any, bool)
}

// Handler receives confirmed overlaps
type Handler interface {
	OnCollision(other *Collider)
}

// HandlerFunc adapts a function to the Handler interface
type HandlerFunc func(other *Collider)

// OnCollision calls f(other)
func (f HandlerFunc) OnCollision(other *Collider) {
	f(other)
}

// Collider is the hitbox of one game object.
type Collider struct {
	owner      Owner
	flag       Category
	mask       Category
	size       Size
	configured bool
	handler    Handler
	disabled   bool
	world      *World
}

// NewCollider creates an enabled, unconfigured collider for owner
func NewCollider(owner Owner) *Collider {
	return &Collider{owner: owner}
}

// Configure sets what the collider is, what it reacts to, and its size.
// It is called once while the owner is being assembled.
func (c *Collider) Configure(flag, mask Category, size Size) {
	c.flag = flag
	c.mask = mask
	c.size = size
	c.configured = true
}

// Register stores handler and adds the collider to w. A nil handler
// registers a passive collider.
func (c *Collider) Register(w *World, handler Handler) error {
	if c.world != nil {
		return fmt.Errorf("%w: collider %d", ErrAlreadyRegistered, c.ID())
	}
	c.handler = handler
	return w.Add(c)
}

// RegisterByName resolves the owner's component called name as the handler
// and registers the collider with w. The lookup happens once, here; an empty
// name registers a passive collider.
func (c *Collider) RegisterByName(w *World, name string) error {
	if name == "" {
		return c.Register(w, nil)
	}

	lookup, ok := c.owner.(ComponentLookup)
	if !ok {
		return fmt.Errorf("%w: resolving %q", ErrNoLookup, name)
	}
	component, ok := lookup.Component(name)
	if !ok {
		return fmt.Errorf("%w: %q", ErrHandlerNotFound, name)
	}
	handler, ok := component.(Handler)
	if !ok {
		return fmt.Errorf("%w: %q is %T", ErrNotAHandler, name, component)
	}
	return c.Register(w, handler)
}

// Update runs this collider's detection pass against its world. It does
// nothing for passive, disabled, inactive or unregistered colliders.
func (c *Collider) Update() {
	if c.world == nil {
		return
	}
	c.world.update(c)
}

// Area returns the hitbox in world space, computed from the owner's
// current position.
func (c *Collider) Area() physics.Rect {
	pos := c.owner.WorldPosition()
	return physics.NewRect(pos.X, pos.Y, c.size.W, c.size.H)
}

// ID returns the collider identity
func (c *Collider) ID() ID {
	return ID(c.owner.ID())
}

// Owner returns the game object the collider belongs to
func (c *Collider) Owner() Owner {
	return c.owner
}

// Flag returns the category bits of this collider
func (c *Collider) Flag() Category {
	return c.flag
}

// Mask returns the categories this collider reacts to
func (c *Collider) Mask() Category {
	return c.mask
}

// Size returns the local extent of the hitbox
func (c *Collider) Size() Size {
	return c.size
}

// Passive reports whether the collider has no handler
func (c *Collider) Passive() bool {
	return c.handler == nil
}

// Enabled reports the collider's own enabled flag
func (c *Collider) Enabled() bool {
	return !c.disabled
}

// SetEnabled toggles the collider. A disabled collider is skipped both as
// querier and as candidate, from the next check on.
func (c *Collider) SetEnabled(enabled bool) {
	c.disabled = !enabled
}

// Registered reports whether the collider currently belongs to a world
func (c *Collider) Registered() bool {
	return c.world != nil
}

// Accepts reports whether other's category passes this collider's mask
func (c *Collider) Accepts(other *Collider) bool {
	return other.flag&c.mask != 0
}

// live reports whether the collider takes part in detection at all
func (c *Collider) live() bool {
	return !c.disabled && c.owner.Active()
}

// querying reports whether the collider looks for overlaps itself
func (c *Collider) querying() bool {
	return c.handler != nil && c.live()
}
