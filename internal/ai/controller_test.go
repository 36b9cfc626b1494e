package ai

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	state "rescue-sim/server/internal/state"
	worldpkg "rescue-sim/server/internal/world"
	"rescue-sim/server/logging"
	rescuelog "rescue-sim/server/logging/rescue"
)

type eventRecorder struct {
	mu     sync.Mutex
	events []logging.Event
}

func (r *eventRecorder) Publish(_ context.Context, event logging.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *eventRecorder) types() []logging.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]logging.EventType, 0, len(r.events))
	for _, event := range r.events {
		out = append(out, event.Type)
	}
	return out
}

var defaultStep = Step{Tuning: state.Tuning{MaxSpeed: 25, MaxForce: 10}, DT: 0.16}

// corridorWorld is an obstacle-free map with three waypoints on a line and a
// hospital at the far end.
func corridorWorld(t *testing.T, victims ...Vec2) *worldpkg.World {
	t.Helper()
	layout := worldpkg.Layout{
		Name:      "corridor",
		Hospitals: []Vec2{{X: 600, Y: 300}},
		Spawns:    worldpkg.Spawns{NPC: Vec2{X: 100, Y: 300}, Player: Vec2{X: 100, Y: 500}},
		Waypoints: []worldpkg.NamedWaypoint{
			{Name: "a", X: 100, Y: 300},
			{Name: "b", X: 300, Y: 300},
			{Name: "c", X: 600, Y: 300},
		},
		Edges: [][2]string{{"a", "b"}, {"b", "c"}},
	}
	cfg := worldpkg.DefaultConfig()
	cfg.VictimCount = 1
	w, err := worldpkg.New(cfg, worldpkg.Deps{Layout: &layout})
	require.NoError(t, err)
	w.Victims().Replace(victims)
	return w
}

func newController(t *testing.T, env Environment, pub logging.Publisher) *RescueController {
	t.Helper()
	controller, err := NewRescueController(RescueConfig{Env: env, Publisher: pub})
	require.NoError(t, err)
	return controller
}

func TestNPCRescuesVictimEndToEnd(t *testing.T) {
	victim := Vec2{X: 300, Y: 300}
	w := corridorWorld(t, victim)
	recorder := &eventRecorder{}
	controller := newController(t, w, recorder)
	npc := state.NewNPCState("npc-1", Vec2{X: 100, Y: 300})

	perTick := defaultStep.Tuning.MaxSpeed * defaultStep.DT
	pickupBudget := int(3 * 200 / perTick)

	pickedAt := -1
	for tick := 0; tick < pickupBudget; tick++ {
		step := defaultStep
		step.Tick = uint64(tick)
		out := controller.Update(context.Background(), npc, step)
		if out.PickedUp != nil {
			pickedAt = tick
			assert.Equal(t, victim, *out.PickedUp)
			break
		}
	}
	require.NotEqual(t, -1, pickedAt, "npc never reached the victim")
	require.True(t, npc.CarryingVictim())
	assert.Equal(t, state.NPCModeDelivering, npc.Mode)
	assert.Equal(t, Vec2{X: 600, Y: 300}, *npc.Target)
	assert.Zero(t, w.Victims().Len())

	delivered := false
	for tick := 0; tick < 3*int(300/perTick); tick++ {
		out := controller.Update(context.Background(), npc, defaultStep)
		if out.Delivered != nil {
			delivered = true
			break
		}
	}
	require.True(t, delivered, "npc never reached the hospital")
	assert.Equal(t, 1, npc.Rescued)
	assert.False(t, npc.CarryingVictim())
	assert.Equal(t, state.NPCModeSearching, npc.Mode)
	assert.Nil(t, npc.Target)
	assert.Empty(t, npc.Path)

	assert.Contains(t, recorder.types(), rescuelog.EventVictimPickedUp)
	assert.Contains(t, recorder.types(), rescuelog.EventVictimDelivered)

	// Nothing left to rescue: the NPC parks.
	before := npc.Position
	controller.Update(context.Background(), npc, defaultStep)
	assert.Equal(t, before, npc.Position)
	assert.True(t, npc.Velocity.IsZero())
}

func TestNPCRetargetsWhenVictimClaimed(t *testing.T) {
	near := Vec2{X: 320, Y: 300}
	far := Vec2{X: 500, Y: 320}
	w := corridorWorld(t, near, far)
	controller := newController(t, w, nil)
	npc := state.NewNPCState("npc-1", Vec2{X: 100, Y: 300})

	controller.Update(context.Background(), npc, defaultStep)
	require.NotNil(t, npc.Target)
	assert.Equal(t, near, *npc.Target)

	require.True(t, w.Victims().Remove(near))
	out := controller.Update(context.Background(), npc, defaultStep)
	assert.True(t, out.Retargeted)
	assert.Equal(t, far, *npc.Target)
	assert.Equal(t, far, npc.Path[len(npc.Path)-1])
}

func TestNPCParksWhenLastVictimClaimed(t *testing.T) {
	victim := Vec2{X: 320, Y: 300}
	w := corridorWorld(t, victim)
	recorder := &eventRecorder{}
	controller := newController(t, w, recorder)
	npc := state.NewNPCState("npc-1", Vec2{X: 100, Y: 300})

	controller.Update(context.Background(), npc, defaultStep)
	require.NotNil(t, npc.Target)
	before := len(recorder.types())

	require.True(t, w.Victims().Remove(victim))
	out := controller.Update(context.Background(), npc, defaultStep)
	assert.False(t, out.Retargeted)
	assert.Nil(t, npc.Target)
	assert.Empty(t, npc.Path)
	assert.Equal(t, Vec2{}, npc.Velocity)
	assert.Equal(t, state.NPCModeSearching, npc.Mode)
	assert.Len(t, recorder.types(), before)
}

func TestDeliveringNPCRecoversInvalidTarget(t *testing.T) {
	w := corridorWorld(t)
	controller := newController(t, w, nil)
	npc := state.NewNPCState("npc-1", Vec2{X: 300, Y: 300})
	npc.Mode = state.NPCModeDelivering
	npc.Carrying = vecPtr(Vec2{X: 1, Y: 1})
	npc.Target = vecPtr(Vec2{X: 50, Y: 50})

	out := controller.Update(context.Background(), npc, defaultStep)
	assert.True(t, out.Retargeted)
	assert.Equal(t, Vec2{X: 600, Y: 300}, *npc.Target)
	assert.Equal(t, state.NPCModeDelivering, npc.Mode)
}

func TestNPCFollowsWaypointChain(t *testing.T) {
	w := corridorWorld(t, Vec2{X: 600, Y: 320})
	controller := newController(t, w, nil)
	npc := state.NewNPCState("npc-1", Vec2{X: 110, Y: 300})

	controller.Update(context.Background(), npc, defaultStep)
	require.Len(t, npc.Path, 5)
	assert.Equal(t, Vec2{X: 100, Y: 300}, npc.Path[1])
	assert.Equal(t, Vec2{X: 300, Y: 300}, npc.Path[2])
	assert.Equal(t, 1, npc.PathIndex)
}

func TestBlockedNPCReportsStuck(t *testing.T) {
	layout := worldpkg.Layout{
		Name:      "cage",
		Obstacles: []worldpkg.Obstacle{{ID: "cage", X: 0, Y: 0, Width: 200, Height: 200}},
		Hospitals: []Vec2{{X: 700, Y: 500}},
		Waypoints: []worldpkg.NamedWaypoint{{Name: "a", X: 700, Y: 500}},
	}
	cfg := worldpkg.DefaultConfig()
	cfg.VictimCount = 0
	w, err := worldpkg.New(cfg, worldpkg.Deps{Layout: &layout})
	require.NoError(t, err)
	w.Victims().Replace([]Vec2{{X: 600, Y: 500}})

	recorder := &eventRecorder{}
	controller := newController(t, w, recorder)
	npc := state.NewNPCState("npc-1", Vec2{X: 100, Y: 100})

	out := controller.Update(context.Background(), npc, defaultStep)
	assert.True(t, out.Blocked)
	assert.True(t, out.Stuck)
	assert.True(t, npc.Stuck)
	assert.InDelta(t, defaultStep.Tuning.MaxSpeed, npc.Velocity.Len(), 1e-9)
	assert.Equal(t, Vec2{X: 100, Y: 100}, npc.Position)
	assert.Contains(t, recorder.types(), rescuelog.EventNPCStuck)
}

func TestNewRescueControllerRequiresEnvironment(t *testing.T) {
	_, err := NewRescueController(RescueConfig{})
	require.Error(t, err)
}
