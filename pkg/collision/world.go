package collision

import (
	"context"
	"fmt"

	"github.com/opd-ai/go-hitbox/pkg/config"
	"github.com/opd-ai/go-hitbox/pkg/event"
	"github.com/opd-ai/go-hitbox/pkg/logging"
	"github.com/opd-ai/go-hitbox/pkg/physics"
)

// Stats describes the most recent detection pass
type Stats struct {
	Tick          uint64
	Queriers      int
	Candidates    int
	Notifications int
	Dropped       int
}

// World owns every registered collider and runs detection over them.
// It is not safe for concurrent use: everything happens on the tick.
type World struct {
	bounds      physics.Rect
	shared      bool
	index       *physics.QuadTree[*Collider]
	stepping    bool
	sharedBuilt bool

	colliders map[ID]*Collider
	order     []ID
	seen      map[ID]struct{}
	scratch   []*Collider

	dispatch dispatcher
	logger   *logging.Logger
	bus      *event.Bus
	ctx      context.Context

	tick  uint64
	stats Stats
}

// Option customises a World
type Option func(*World)

// WithLogger sets the logger used by the world
func WithLogger(logger *logging.Logger) Option {
	return func(w *World) {
		w.logger = logger
	}
}

// WithEventBus publishes registration and collision events on bus
func WithEventBus(bus *event.Bus) Option {
	return func(w *World) {
		w.bus = bus
	}
}

// WithContext sets the base context used for log entries
func WithContext(ctx context.Context) Option {
	return func(w *World) {
		w.ctx = ctx
	}
}

// NewWorld creates an empty collision world. A nil cfg uses config.DefaultConfig.
func NewWorld(cfg *config.Config, opts ...Option) *World {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	b := cfg.World.Bounds

	w := &World{
		bounds:    physics.NewRect(b.X, b.Y, b.Width, b.Height),
		shared:    cfg.World.SharedIndex,
		colliders: make(map[ID]*Collider),
		seen:      make(map[ID]struct{}),
		logger:    logging.Discard(),
		ctx:       context.Background(),
	}
	w.index = physics.NewQuadTreeWithLimits[*Collider](0, w.bounds, cfg.World.NodeCapacity, cfg.World.MaxDepth)

	for _, opt := range opts {
		opt(w)
	}

	if cfg.Guard.Enabled {
		w.dispatch = newGuardedDispatcher(w, cfg.Guard)
	} else {
		w.dispatch = directDispatcher{}
	}
	return w
}

// Bounds returns the region covered by the spatial index
func (w *World) Bounds() physics.Rect {
	return w.bounds
}

// Tick returns the number of completed Step calls
func (w *World) Tick() uint64 {
	return w.tick
}

// Stats returns the figures of the last Step
func (w *World) Stats() Stats {
	return w.stats
}

// Add registers c under its owner's ID.
func (w *World) Add(c *Collider) error {
	if c.owner == nil {
		return ErrNilOwner
	}
	if !c.configured {
		return fmt.Errorf("%w: collider %d", ErrNotConfigured, c.ID())
	}
	id := c.ID()
	if _, exists := w.colliders[id]; exists || c.world != nil {
		return fmt.Errorf("%w: collider %d", ErrAlreadyRegistered, id)
	}

	c.world = w
	w.colliders[id] = c
	w.order = append(w.order, id)
	w.sharedBuilt = false

	w.logger.Debug(w.ctx, "collider registered",
		"collider_id", uint64(id),
		"flag", uint32(c.flag),
		"mask", uint32(c.mask),
		"passive", c.Passive(),
	)
	if w.bus != nil {
		w.bus.Publish(event.NewColliderEvent(event.ColliderRegistered, w, uint64(id), uint32(c.flag)))
	}
	return nil
}

// Remove deregisters the collider with the given ID. It reports whether a
// collider was removed.
func (w *World) Remove(id ID) bool {
	c, ok := w.colliders[id]
	if !ok {
		return false
	}

	delete(w.colliders, id)
	for i, cur := range w.order {
		if cur == id {
			w.order = append(w.order[:i], w.order[i+1:]...)
			break
		}
	}
	c.world = nil
	w.sharedBuilt = false
	w.dispatch.forget(id)

	w.logger.Debug(w.ctx, "collider removed", "collider_id", uint64(id))
	if w.bus != nil {
		w.bus.Publish(event.NewColliderEvent(event.ColliderRemoved, w, uint64(id), uint32(c.flag)))
	}
	return true
}

// Get returns the collider registered under id
func (w *World) Get(id ID) (*Collider, bool) {
	c, ok := w.colliders[id]
	return c, ok
}

// Len returns the number of registered colliders
func (w *World) Len() int {
	return len(w.colliders)
}

// Colliders returns the registered colliders in registration order
func (w *World) Colliders() []*Collider {
	out := make([]*Collider, 0, len(w.order))
	for _, id := range w.order {
		out = append(out, w.colliders[id])
	}
	return out
}

// Step runs one detection pass for every querying collider, in
// registration order, and advances the tick counter.
func (w *World) Step() {
	w.tick++
	ctx := logging.WithTick(w.ctx, w.tick)
	w.stats = Stats{Tick: w.tick}
	w.stepping = true
	w.sharedBuilt = false
	defer func() { w.stepping = false }()

	// Handlers may add or remove colliders, so walk a snapshot.
	queriers := w.scratch[:0]
	for _, id := range w.order {
		if c := w.colliders[id]; c.querying() {
			queriers = append(queriers, c)
		}
	}

	for _, c := range queriers {
		if c.world != w || !c.querying() {
			continue
		}
		w.update(c)
	}

	clear(queriers)
	w.scratch = queriers[:0]

	w.logger.Debug(ctx, "collision step",
		"colliders", len(w.colliders),
		"queriers", w.stats.Queriers,
		"candidates", w.stats.Candidates,
		"notifications", w.stats.Notifications,
		"dropped", w.stats.Dropped,
	)
	if w.bus != nil {
		w.bus.Publish(event.NewTickEvent(w, w.tick, w.stats.Queriers, w.stats.Candidates, w.stats.Notifications))
	}
}

// Candidates returns the broad-phase candidates for c: every live collider
// other than c whose category passes c's mask and that the index places
// near c. Each collider appears at most once. The list is not overlap tested.
func (w *World) Candidates(c *Collider) []*Collider {
	if c.world != w {
		return nil
	}
	w.build(c)
	return w.candidates(c, c.Area())
}

// update runs the detection pass for a single querier
func (w *World) update(c *Collider) {
	if !c.querying() {
		return
	}
	w.build(c)

	area := c.Area()
	candidates := w.candidates(c, area)
	w.stats.Queriers++
	w.stats.Candidates += len(candidates)

	for _, other := range candidates {
		// A handler earlier in this pass may have disabled or removed other.
		if other.world != w || !other.live() {
			continue
		}
		if !area.Intersects(other.Area()) {
			continue
		}
		if !w.notify(c, other) {
			return
		}
	}
}

// notify delivers one overlap. It returns false when c can no longer query,
// for example because its own handler disabled or removed it.
func (w *World) notify(c, other *Collider) bool {
	if err := w.dispatch.dispatch(c, other); err != nil {
		w.stats.Dropped++
		if w.bus != nil {
			w.bus.Publish(event.NewDroppedEvent(w, uint64(c.ID()), uint64(other.ID()), err.Error()))
		}
	} else {
		w.stats.Notifications++
		if w.bus != nil {
			w.bus.Publish(event.NewCollisionEvent(w, uint64(c.ID()), uint64(other.ID())))
		}
	}
	return c.world == w && c.querying()
}

// build fills the index for querier c. Per-querier mode inserts only the
// live colliders c's mask accepts. Shared mode inserts every registered
// collider, enabled or not, and leaves liveness and mask to candidates, so a
// collider re-enabled by a handler mid-step is still found. Within a Step the
// shared index is built once and reused by every querier.
func (w *World) build(c *Collider) {
	if w.shared {
		if w.stepping && w.sharedBuilt {
			return
		}
		w.index.Clear()
		for _, id := range w.order {
			w.index.Insert(w.colliders[id])
		}
		w.sharedBuilt = w.stepping
		return
	}

	w.index.Clear()
	for _, id := range w.order {
		other := w.colliders[id]
		if other == c || !other.live() || !c.Accepts(other) {
			continue
		}
		w.index.Insert(other)
	}
}

// candidates collects deduplicated, mask-filtered candidates for c
func (w *World) candidates(c *Collider, area physics.Rect) []*Collider {
	clear(w.seen)
	retrieved := w.index.Retrieve(area)

	out := retrieved[:0]
	for _, other := range retrieved {
		if other == c || !other.live() || !c.Accepts(other) {
			continue
		}
		if _, dup := w.seen[other.ID()]; dup {
			continue
		}
		w.seen[other.ID()] = struct{}{}
		out = append(out, other)
	}
	return out
}
