package collision

import (
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker"

	"github.com/opd-ai/go-hitbox/pkg/config"
)

// ErrHandlerPanic wraps a panic recovered from a guarded handler
var ErrHandlerPanic = errors.New("collision: handler panicked")

// dispatcher delivers a confirmed overlap to the querier's handler
type dispatcher interface {
	dispatch(querier, other *Collider) error
	forget(id ID)
}

// directDispatcher calls the handler with no protection
type directDispatcher struct{}

func (directDispatcher) dispatch(querier, other *Collider) error {
	querier.handler.OnCollision(other)
	return nil
}

func (directDispatcher) forget(ID) {}

// guardedDispatcher runs each querier's handler behind its own circuit
// breaker. Panics count as failures; once the breaker opens the querier's
// notifications are dropped until the timeout elapses.
type guardedDispatcher struct {
	world    *World
	settings config.GuardConfig
	breakers map[ID]*gobreaker.CircuitBreaker
}

func newGuardedDispatcher(w *World, settings config.GuardConfig) *guardedDispatcher {
	return &guardedDispatcher{
		world:    w,
		settings: settings,
		breakers: make(map[ID]*gobreaker.CircuitBreaker),
	}
}

func (g *guardedDispatcher) breaker(id ID) *gobreaker.CircuitBreaker {
	if cb, ok := g.breakers[id]; ok {
		return cb
	}

	maxFailures := uint32(g.settings.MaxConsecutiveFailures)
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        fmt.Sprintf("collider-%d", id),
		MaxRequests: 1,
		Timeout:     time.Duration(g.settings.Timeout),
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			g.world.logger.Info(g.world.ctx, "notification guard state changed",
				"name", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	})
	g.breakers[id] = cb
	return cb
}

func (g *guardedDispatcher) dispatch(querier, other *Collider) error {
	id := querier.ID()
	_, err := g.breaker(id).Execute(func() (result interface{}, err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("%w: %v", ErrHandlerPanic, r)
			}
		}()
		querier.handler.OnCollision(other)
		return nil, nil
	})
	if err == nil {
		return nil
	}

	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		g.world.logger.Warn(g.world.ctx, "collision notification dropped",
			"querier", uint64(id),
			"other", uint64(other.ID()),
			"reason", err.Error(),
		)
	} else {
		g.world.logger.Error(g.world.ctx, "collision handler failed", err,
			"querier", uint64(id),
			"other", uint64(other.ID()),
		)
	}
	return err
}

// state returns the breaker state for a querier, closed if it has none yet
func (g *guardedDispatcher) state(id ID) gobreaker.State {
	if cb, ok := g.breakers[id]; ok {
		return cb.State()
	}
	return gobreaker.StateClosed
}

func (g *guardedDispatcher) forget(id ID) {
	delete(g.breakers, id)
}
