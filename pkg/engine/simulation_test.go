// Package engine provides unit tests for simulation.go
package engine

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/opd-ai/go-hitbox/pkg/config"
	"github.com/opd-ai/go-hitbox/pkg/event"
	"github.com/opd-ai/go-hitbox/pkg/physics"
)

func newSimulation(t *testing.T) *Simulation {
	t.Helper()
	return NewSimulation(context.Background(), config.DefaultConfig(), nil)
}

func load(t *testing.T, sim *Simulation, objects ...config.ObjectConfig) {
	t.Helper()
	scenario := &config.Scenario{Name: t.Name(), TimeStep: 0.1, Objects: objects}
	if err := sim.Load(scenario); err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
}

func TestNewSimulation_InitializesState(t *testing.T) {
	sim := NewSimulation(context.Background(), nil, nil)
	if sim.Config == nil || sim.World == nil || sim.Collisions == nil || sim.EventBus == nil {
		t.Fatal("NewSimulation left a field unset")
	}
	if sim.Collisions.Len() != 0 {
		t.Errorf("expected no colliders, got %d", sim.Collisions.Len())
	}
}

func TestSimulation_ContactEveryTick(t *testing.T) {
	sim := newSimulation(t)
	load(t, sim,
		config.ObjectConfig{Name: "a", Width: 10, Height: 10, Categories: []string{"player"}, Mask: []string{"enemy"}, Notify: true},
		config.ObjectConfig{Name: "b", X: 5, Y: 5, Width: 10, Height: 10, Categories: []string{"enemy"}},
	)

	summary := sim.Run(3, 0.1)

	if got := sim.Body("a").Contacts.With("b"); got != 3 {
		t.Errorf("a recorded %d contacts with b, expected 3", got)
	}
	if sim.Body("b").Contacts != nil {
		t.Error("object without notify got a contact recorder")
	}
	if summary.Ticks != 3 || summary.Notifications != 3 || summary.Objects != 2 {
		t.Errorf("Summary() = %+v, expected 3 ticks, 3 notifications, 2 objects", summary)
	}
	if summary.Contacts["a"] != 3 {
		t.Errorf("Summary().Contacts[a] = %d, expected 3", summary.Contacts["a"])
	}
	if sim.CurrentTick != 3 || sim.Collisions.Tick() != 3 {
		t.Errorf("ticks = %d/%d, expected 3", sim.CurrentTick, sim.Collisions.Tick())
	}
}

func TestSimulation_MovementRunsBeforeCollision(t *testing.T) {
	sim := newSimulation(t)
	load(t, sim,
		config.ObjectConfig{Name: "runner", VX: 10, Width: 10, Height: 10, Categories: []string{"player"}, Mask: []string{"enemy"}, Notify: true},
		config.ObjectConfig{Name: "post", X: 25, Width: 10, Height: 10, Categories: []string{"enemy"}},
	)

	expected := []int{0, 1, 2, 2, 2}
	for i, want := range expected {
		sim.Tick(1)
		if got := sim.Body("runner").Contacts.Total(); got != want {
			t.Errorf("after tick %d: %d contacts, expected %d", i+1, got, want)
		}
	}

	if pos := sim.Body("runner").Object.Position; pos != (physics.Vector2D{X: 50}) {
		t.Errorf("runner position = %+v, expected {50 0}", pos)
	}
}

func TestSimulation_ParentsSpawnFirst(t *testing.T) {
	sim := newSimulation(t)
	load(t, sim,
		config.ObjectConfig{Name: "sword", Parent: "hero", X: 12, Width: 6, Height: 6, Categories: []string{"projectile"}, Mask: []string{"enemy"}, Notify: true},
		config.ObjectConfig{Name: "hero", X: 100, Y: 100, Width: 10, Height: 10, Categories: []string{"player"}},
		config.ObjectConfig{Name: "slime", X: 115, Y: 100, Width: 10, Height: 10, Categories: []string{"enemy"}},
	)

	sword := sim.Body("sword")
	if sword.Object.Parent() != sim.Body("hero").Object {
		t.Fatal("sword not attached to hero")
	}
	if got := sword.Collider.Area(); got != physics.NewRect(112, 100, 6, 6) {
		t.Errorf("sword area = %+v, expected offset from hero", got)
	}

	sim.Tick(0.1)
	if got := sword.Contacts.With("slime"); got != 1 {
		t.Errorf("sword hit slime %d times, expected 1", got)
	}
}

func TestSimulation_InactiveObjects(t *testing.T) {
	sim := newSimulation(t)
	load(t, sim,
		config.ObjectConfig{Name: "a", Width: 10, Height: 10, Categories: []string{"player"}, Mask: []string{"enemy"}, Notify: true},
		config.ObjectConfig{Name: "ghost", X: 5, Y: 5, VX: 100, Width: 10, Height: 10, Categories: []string{"enemy"}, Inactive: true},
	)

	sim.Tick(0.1)

	if got := sim.Body("a").Contacts.Total(); got != 0 {
		t.Errorf("inactive object reported %d times", got)
	}
	if pos := sim.Body("ghost").Object.Position; pos.X != 5 {
		t.Errorf("inactive object moved to %+v", pos)
	}
}

func TestSimulation_Destroy(t *testing.T) {
	sim := newSimulation(t)
	load(t, sim,
		config.ObjectConfig{Name: "hero", X: 100, Y: 100, Width: 10, Height: 10, Categories: []string{"player"}, Mask: []string{"enemy"}, Notify: true},
		config.ObjectConfig{Name: "shield", Parent: "hero", X: 12, Width: 4, Height: 10, Categories: []string{"pickup"}},
		config.ObjectConfig{Name: "slime", X: 105, Y: 100, Width: 10, Height: 10, Categories: []string{"enemy"}},
	)

	var removed []uint64
	sim.EventBus.Subscribe(event.ColliderRemoved, func(e event.Event) {
		removed = append(removed, e.(*event.ColliderEvent).ColliderID)
	})

	slimeID := sim.Body("slime").Object.ID()
	if err := sim.Destroy("slime"); err != nil {
		t.Fatalf("Destroy() failed: %v", err)
	}
	if len(removed) != 1 || removed[0] != slimeID {
		t.Errorf("removed colliders = %v, expected [%d]", removed, slimeID)
	}
	if sim.Body("slime") != nil {
		t.Error("destroyed object still resolvable")
	}
	if sim.Collisions.Len() != 2 {
		t.Errorf("expected 2 colliders left, got %d", sim.Collisions.Len())
	}

	sim.Tick(0.1)
	if got := sim.Body("hero").Contacts.Total(); got != 0 {
		t.Errorf("destroyed object reported %d times", got)
	}

	if err := sim.Destroy("hero"); err != nil {
		t.Fatalf("Destroy() failed: %v", err)
	}
	shield := sim.Body("shield").Object
	if shield.Parent() != nil {
		t.Error("child still attached to destroyed parent")
	}
	if shield.Position != (physics.Vector2D{X: 112, Y: 100}) {
		t.Errorf("detached child position = %+v, expected its last world position", shield.Position)
	}

	if err := sim.Destroy("hero"); !errors.Is(err, ErrUnknownObject) {
		t.Errorf("second Destroy() error = %v, expected ErrUnknownObject", err)
	}
}

func TestSimulation_SpawnErrors(t *testing.T) {
	sim := newSimulation(t)
	if _, err := sim.Spawn(config.ObjectConfig{Name: "a", Width: 1, Height: 1, Categories: []string{"player"}}); err != nil {
		t.Fatalf("Spawn() failed: %v", err)
	}

	tests := []struct {
		name    string
		obj     config.ObjectConfig
		wantErr error
	}{
		{"duplicate", config.ObjectConfig{Name: "a", Width: 1, Height: 1, Categories: []string{"player"}}, ErrDuplicateObject},
		{"unknown_parent", config.ObjectConfig{Name: "b", Parent: "nobody", Width: 1, Height: 1, Categories: []string{"player"}}, ErrUnknownObject},
		{"unknown_category", config.ObjectConfig{Name: "c", Width: 1, Height: 1, Categories: []string{"dragon"}}, config.ErrUnknownCategory},
		{"unknown_mask", config.ObjectConfig{Name: "d", Width: 1, Height: 1, Categories: []string{"player"}, Mask: []string{"dragon"}}, config.ErrUnknownCategory},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := sim.Spawn(tt.obj); !errors.Is(err, tt.wantErr) {
				t.Errorf("Spawn() error = %v, expected %v", err, tt.wantErr)
			}
		})
	}

	if sim.Collisions.Len() != 1 {
		t.Errorf("failed spawns left colliders behind: %d registered", sim.Collisions.Len())
	}
}

func TestSimulation_LoadRejectsInvalidScenario(t *testing.T) {
	sim := newSimulation(t)
	scenario := &config.Scenario{
		Name:     "broken",
		TimeStep: 0.1,
		Objects: []config.ObjectConfig{
			{Name: "a", Width: 1, Height: 1, Categories: []string{"nope"}},
		},
	}
	if err := sim.Load(scenario); !errors.Is(err, config.ErrInvalidConfig) {
		t.Errorf("Load() error = %v, expected ErrInvalidConfig", err)
	}
	if sim.Collisions.Len() != 0 {
		t.Error("invalid scenario spawned objects")
	}
}

func TestSimulation_FailedLoadRollsBack(t *testing.T) {
	sim := newSimulation(t)
	load(t, sim,
		config.ObjectConfig{Name: "hero", Width: 10, Height: 10, Categories: []string{"player"}},
	)

	var removed int
	sim.EventBus.Subscribe(event.ColliderRemoved, func(event.Event) { removed++ })

	scenario := &config.Scenario{
		Name:     "second_wave",
		TimeStep: 0.1,
		Objects: []config.ObjectConfig{
			{Name: "slime", X: 50, Width: 10, Height: 10, Categories: []string{"enemy"}},
			{Name: "bat", X: 80, VX: 5, Width: 10, Height: 10, Categories: []string{"enemy"}},
			{Name: "hero", X: 120, Width: 10, Height: 10, Categories: []string{"player"}},
		},
	}
	if err := sim.Load(scenario); !errors.Is(err, ErrDuplicateObject) {
		t.Fatalf("Load() error = %v, expected ErrDuplicateObject", err)
	}

	if removed != 2 {
		t.Errorf("expected 2 colliders removed by the rollback, got %d", removed)
	}
	if sim.Body("slime") != nil || sim.Body("bat") != nil {
		t.Error("objects from the failed load are still resolvable")
	}
	if sim.Collisions.Len() != 1 {
		t.Errorf("expected only the original collider, got %d", sim.Collisions.Len())
	}
	if len(sim.movement.objects) != 1 {
		t.Errorf("expected only the original object to move, got %d", len(sim.movement.objects))
	}
	if state := sim.GetState(); len(state.Objects) != 1 || state.Objects[0].Name != "hero" {
		t.Errorf("GetState() after failed load = %+v", state.Objects)
	}
}

func TestSimulation_DefaultScenario(t *testing.T) {
	sim := newSimulation(t)
	scenario := config.DefaultScenario()
	if err := sim.Load(scenario); err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	summary := sim.Run(scenario.Ticks, scenario.TimeStep)

	if summary.Objects != len(scenario.Objects) {
		t.Errorf("Summary().Objects = %d, expected %d", summary.Objects, len(scenario.Objects))
	}
	if summary.Contacts["player"] == 0 {
		t.Error("expected the player to touch something in the default scenario")
	}
	if sim.Body("player").Contacts.With("wall") != 0 {
		t.Error("player mask excludes walls but a wall contact was recorded")
	}

	state := sim.GetState()
	if state.Tick != uint64(scenario.Ticks) || len(state.Objects) != len(scenario.Objects) {
		t.Errorf("GetState() = tick %d with %d objects", state.Tick, len(state.Objects))
	}
	if state.Objects[0].Name != "player" {
		t.Errorf("expected spawn order in state, first object is %q", state.Objects[0].Name)
	}
}

// TestSimulationConcurrentReads ticks while other goroutines read snapshots
func TestSimulationConcurrentReads(t *testing.T) {
	sim := newSimulation(t)
	if err := sim.Load(config.DefaultScenario()); err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				_ = sim.GetState()
				_ = sim.Summary()
			}
		}()
	}

	for i := 0; i < 50; i++ {
		sim.Tick(1.0 / 60.0)
	}
	wg.Wait()

	if sim.CurrentTick != 50 {
		t.Errorf("CurrentTick = %d, expected 50", sim.CurrentTick)
	}
}
