// pkg/event/event.go
package event

import (
	"sync"
)

// Type represents the type of event
type Type string

// Event types published by the collision world and the simulation
const (
	ColliderRegistered  Type = "collider_registered"
	ColliderRemoved     Type = "collider_removed"
	EntityCollision     Type = "entity_collision"
	NotificationDropped Type = "notification_dropped"
	TickCompleted       Type = "tick_completed"
)

// Event is the base interface for all events
type Event interface {
	GetType() Type
	GetSource() interface{}
}

// BaseEvent provides common functionality for all events
type BaseEvent struct {
	EventType Type
	Source    interface{}
}

// GetType returns the event type
func (e *BaseEvent) GetType() Type {
	return e.EventType
}

// GetSource returns the event source
func (e *BaseEvent) GetSource() interface{} {
	return e.Source
}

// Handler is a function that handles events
type Handler func(Event)

// Subscription identifies a registered handler. Cancel removes it.
type Subscription struct {
	ID     uint64
	Cancel func()
}

type subscriber struct {
	id      uint64
	handler Handler
}

// Bus manages event subscriptions and dispatching
type Bus struct {
	handlers map[Type][]subscriber
	nextID   uint64
	mu       sync.RWMutex
}

// NewEventBus creates a new event bus
func NewEventBus() *Bus {
	return &Bus{
		handlers: make(map[Type][]subscriber),
		nextID:   1,
	}
}

// Subscribe registers a handler for a specific event type
func (b *Bus) Subscribe(eventType Type, handler Handler) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	b.handlers[eventType] = append(b.handlers[eventType], subscriber{id: id, handler: handler})

	return &Subscription{
		ID:     id,
		Cancel: func() { b.unsubscribe(eventType, id) },
	}
}

func (b *Bus) unsubscribe(eventType Type, id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.handlers[eventType]
	for i, s := range subs {
		if s.id == id {
			b.handlers[eventType] = append(subs[:i:i], subs[i+1:]...)
			break
		}
	}
	if len(b.handlers[eventType]) == 0 {
		delete(b.handlers, eventType)
	}
}

// Publish sends an event to all subscribed handlers. Handlers run on the
// caller's goroutine, in subscription order.
func (b *Bus) Publish(event Event) {
	b.mu.RLock()
	subs := b.handlers[event.GetType()]
	b.mu.RUnlock()

	for _, s := range subs {
		s.handler(event)
	}
}

// HasSubscribers reports whether anything listens for eventType
func (b *Bus) HasSubscribers(eventType Type) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.handlers[eventType]) > 0
}

// ColliderEvent reports a collider joining or leaving a collision world
type ColliderEvent struct {
	BaseEvent
	ColliderID uint64
	Flag       uint32
}

// NewColliderEvent creates a new collider event
func NewColliderEvent(eventType Type, source interface{}, colliderID uint64, flag uint32) *ColliderEvent {
	return &ColliderEvent{
		BaseEvent: BaseEvent{
			EventType: eventType,
			Source:    source,
		},
		ColliderID: colliderID,
		Flag:       flag,
	}
}

// CollisionEvent reports a confirmed overlap seen by Querier.
// Querier and Other are collider IDs.
type CollisionEvent struct {
	BaseEvent
	Querier uint64
	Other   uint64
}

// NewCollisionEvent creates a new collision event
func NewCollisionEvent(source interface{}, querier, other uint64) *CollisionEvent {
	return &CollisionEvent{
		BaseEvent: BaseEvent{
			EventType: EntityCollision,
			Source:    source,
		},
		Querier: querier,
		Other:   other,
	}
}

// DroppedEvent reports a notification that was not delivered because the
// querier's dispatch guard was open or its handler failed.
type DroppedEvent struct {
	BaseEvent
	Querier uint64
	Other   uint64
	Reason  string
}

// NewDroppedEvent creates a new dropped notification event
func NewDroppedEvent(source interface{}, querier, other uint64, reason string) *DroppedEvent {
	return &DroppedEvent{
		BaseEvent: BaseEvent{
			EventType: NotificationDropped,
			Source:    source,
		},
		Querier: querier,
		Other:   other,
		Reason:  reason,
	}
}

// TickEvent summarises one detection pass
type TickEvent struct {
	BaseEvent
	Tick          uint64
	Queriers      int
	Candidates    int
	Notifications int
}

// NewTickEvent creates a new tick summary event
func NewTickEvent(source interface{}, tick uint64, queriers, candidates, notifications int) *TickEvent {
	return &TickEvent{
		BaseEvent: BaseEvent{
			EventType: TickCompleted,
			Source:    source,
		},
		Tick:          tick,
		Queriers:      queriers,
		Candidates:    candidates,
		Notifications: notifications,
	}
}
