// pkg/engine/simulation.go
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/EngoEngine/ecs"

	"github.com/opd-ai/go-hitbox/pkg/collision"
	"github.com/opd-ai/go-hitbox/pkg/config"
	"github.com/opd-ai/go-hitbox/pkg/entity"
	"github.com/opd-ai/go-hitbox/pkg/event"
	"github.com/opd-ai/go-hitbox/pkg/logging"
	"github.com/opd-ai/go-hitbox/pkg/physics"
)

// ContactsComponent is the component name the contact recorder is stored
// under and resolved by when colliders register.
const ContactsComponent = "contacts"

var (
	// ErrDuplicateObject is returned when a scenario reuses an object name
	ErrDuplicateObject = errors.New("engine: duplicate object name")
	// ErrUnknownObject is returned when an object name cannot be resolved
	ErrUnknownObject = errors.New("engine: unknown object")
)

// Body is a spawned game object with its hitbox
type Body struct {
	Object   *entity.Object
	Collider *collision.Collider
	Contacts *Contacts
}

// Simulation drives game objects and their hitboxes through an ecs.World:
// a movement system integrates velocities, then the collision system runs
// one detection pass.
type Simulation struct {
	Config      *config.Config
	World       *ecs.World
	Collisions  *collision.World
	EventBus    *event.Bus
	CurrentTick uint64
	EntityLock  sync.RWMutex

	movement *MovementSystem
	bodies   map[string]*Body
	order    []string
	totals   Summary

	logger *logging.Logger
	ctx    context.Context
}

// NewSimulation creates an empty simulation. A nil cfg uses config.DefaultConfig.
func NewSimulation(ctx context.Context, cfg *config.Config, logger *logging.Logger) *Simulation {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if logger == nil {
		logger = logging.Discard()
	}

	bus := event.NewEventBus()
	collisions := collision.NewWorld(cfg,
		collision.WithLogger(logger),
		collision.WithEventBus(bus),
		collision.WithContext(ctx),
	)

	sim := &Simulation{
		Config:     cfg,
		World:      &ecs.World{},
		Collisions: collisions,
		EventBus:   bus,
		movement:   NewMovementSystem(),
		bodies:     make(map[string]*Body),
		logger:     logger,
		ctx:        ctx,
	}

	sim.World.AddSystem(sim.movement)
	sim.World.AddSystem(collision.NewSystem(collisions))
	return sim
}

// Load validates a scenario and spawns all of its objects. Parents are
// spawned before their children regardless of the order in the file. If any
// object fails to spawn, the objects spawned so far are destroyed again and
// the simulation is left as it was.
func (s *Simulation) Load(scenario *config.Scenario) error {
	if err := scenario.Validate(s.Config); err != nil {
		return err
	}

	var spawned []string
	rollback := func(err error) error {
		for i := len(spawned) - 1; i >= 0; i-- {
			_ = s.Destroy(spawned[i])
		}
		s.logger.Warn(s.ctx, "scenario load failed",
			"scenario", scenario.Name,
			"rolled_back", len(spawned),
			"error", err.Error(),
		)
		return err
	}

	pending := append([]config.ObjectConfig(nil), scenario.Objects...)
	for len(pending) > 0 {
		var deferred []config.ObjectConfig
		for _, obj := range pending {
			if obj.Parent != "" && s.Body(obj.Parent) == nil {
				deferred = append(deferred, obj)
				continue
			}
			if _, err := s.Spawn(obj); err != nil {
				return rollback(err)
			}
			spawned = append(spawned, obj.Name)
		}
		if len(deferred) == len(pending) {
			return rollback(fmt.Errorf("%w: parent cycle involving %q", entity.ErrParentCycle, deferred[0].Name))
		}
		pending = deferred
	}

	s.logger.Info(s.ctx, "scenario loaded",
		"scenario", scenario.Name,
		"objects", len(scenario.Objects),
	)
	return nil
}

// Spawn creates one object, attaches it to its parent and registers its
// collider. Objects with Notify get a contact recorder as their handler.
func (s *Simulation) Spawn(cfg config.ObjectConfig) (*Body, error) {
	s.EntityLock.Lock()
	defer s.EntityLock.Unlock()

	if _, exists := s.bodies[cfg.Name]; exists {
		return nil, fmt.Errorf("%w: %q", ErrDuplicateObject, cfg.Name)
	}

	flag, err := s.Config.Mask(cfg.Categories...)
	if err != nil {
		return nil, fmt.Errorf("object %q: %w", cfg.Name, err)
	}
	mask, err := s.Config.Mask(cfg.Mask...)
	if err != nil {
		return nil, fmt.Errorf("object %q mask: %w", cfg.Name, err)
	}

	obj := entity.New(cfg.Name, physics.Vector2D{X: cfg.X, Y: cfg.Y})
	obj.Velocity = physics.Vector2D{X: cfg.VX, Y: cfg.VY}
	obj.SetActive(!cfg.Inactive)

	if cfg.Parent != "" {
		parent, ok := s.bodies[cfg.Parent]
		if !ok {
			return nil, fmt.Errorf("%w: parent %q of %q", ErrUnknownObject, cfg.Parent, cfg.Name)
		}
		if err := obj.Attach(parent.Object); err != nil {
			return nil, err
		}
	}

	body := &Body{Object: obj, Collider: collision.NewCollider(obj)}
	body.Collider.Configure(collision.Category(flag), collision.Category(mask), collision.Size{W: cfg.Width, H: cfg.Height})

	handlerName := ""
	if cfg.Notify {
		body.Contacts = newContacts(s, obj)
		obj.AddComponent(ContactsComponent, body.Contacts)
		handlerName = ContactsComponent
	}
	if err := body.Collider.RegisterByName(s.Collisions, handlerName); err != nil {
		return nil, fmt.Errorf("object %q: %w", cfg.Name, err)
	}

	s.movement.Add(obj)
	s.bodies[cfg.Name] = body
	s.order = append(s.order, cfg.Name)
	return body, nil
}

// Body returns the spawned object called name, or nil
func (s *Simulation) Body(name string) *Body {
	s.EntityLock.RLock()
	defer s.EntityLock.RUnlock()
	return s.bodies[name]
}

// Destroy removes an object from every system. Its children are detached
// and keep their current world position.
func (s *Simulation) Destroy(name string) error {
	s.EntityLock.Lock()
	defer s.EntityLock.Unlock()

	body, ok := s.bodies[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownObject, name)
	}

	for _, other := range s.bodies {
		if other.Object.Parent() == body.Object {
			other.Object.Position = other.Object.WorldPosition()
			_ = other.Object.Attach(nil)
		}
	}

	s.World.RemoveEntity(body.Object.BasicEntity)
	delete(s.bodies, name)
	for i, cur := range s.order {
		if cur == name {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}

	s.logger.Debug(s.ctx, "object destroyed", "object", name)
	return nil
}

// Tick advances the simulation by dt seconds. Collision handlers and event
// subscribers run while the entity lock is held and must not call back into
// the simulation.
func (s *Simulation) Tick(dt float64) {
	s.EntityLock.Lock()
	defer s.EntityLock.Unlock()

	s.World.Update(float32(dt))
	s.CurrentTick++

	stats := s.Collisions.Stats()
	s.totals.Ticks++
	s.totals.Notifications += stats.Notifications
	s.totals.Dropped += stats.Dropped
}

// Run advances the simulation ticks times and returns the totals so far
func (s *Simulation) Run(ticks int, dt float64) Summary {
	for i := 0; i < ticks; i++ {
		s.Tick(dt)
	}
	return s.Summary()
}
