package ai

import (
	"context"
	"errors"

	state "rescue-sim/server/internal/state"
	steering "rescue-sim/server/internal/steering"
	worldpkg "rescue-sim/server/internal/world"
	"rescue-sim/server/logging"
	rescuelog "rescue-sim/server/logging/rescue"
)

// RescueConfig bundles the collaborators of a RescueController.
type RescueConfig struct {
	Env       Environment
	Avoider   Avoider
	Publisher logging.Publisher
}

// RescueController drives an NPC through the searching and delivering states,
// following waypoint paths and recovering from blocked moves.
type RescueController struct {
	env       Environment
	avoider   Avoider
	publisher logging.Publisher
}

// NewRescueController validates cfg and fills in defaults.
func NewRescueController(cfg RescueConfig) (*RescueController, error) {
	if cfg.Env == nil {
		return nil, errors.New("rescue controller requires an environment")
	}
	avoider := cfg.Avoider
	if avoider == nil {
		avoider = &WaypointReroute{rng: worldpkg.NewDeterministicRNG(worldpkg.DefaultSeed, "avoidance")}
	}
	publisher := cfg.Publisher
	if publisher == nil {
		publisher = logging.NopPublisher()
	}
	return &RescueController{env: cfg.Env, avoider: avoider, publisher: publisher}, nil
}

// Avoider returns the active blocked-move strategy.
func (c *RescueController) Avoider() Avoider {
	return c.avoider
}

// Update runs one tick of the state machine for npc and then moves it along
// its path.
func (c *RescueController) Update(ctx context.Context, npc *state.NPCState, step Step) Outcome {
	var out Outcome
	if npc == nil {
		return out
	}

	switch npc.Mode {
	case state.NPCModeDelivering:
		c.deliver(ctx, npc, step, &out)
	default:
		npc.Mode = state.NPCModeSearching
		c.search(ctx, npc, step, &out)
	}

	c.moveAlongPath(ctx, npc, step, &out)
	npc.UpdateFacing()
	return out
}

func (c *RescueController) search(ctx context.Context, npc *state.NPCState, step Step, out *Outcome) {
	victims := c.env.Victims()
	switch {
	case npc.Target != nil && !victims.Contains(*npc.Target):
		npc.Target = nil
		if !c.targetVictim(ctx, npc, step, out, "claimed") {
			return
		}
	case npc.Target == nil:
		if !c.targetVictim(ctx, npc, step, out, "idle") {
			return
		}
	}

	if npc.Position.DistanceTo(*npc.Target) >= RescueRadius {
		return
	}
	victim := *npc.Target
	if !victims.Remove(victim) {
		npc.Target = nil
		c.targetVictim(ctx, npc, step, out, "claimed")
		return
	}

	npc.Carrying = vecPtr(victim)
	npc.Mode = state.NPCModeDelivering
	out.PickedUp = vecPtr(victim)
	rescuelog.VictimPickedUp(ctx, c.publisher, step.Tick, npcRef(npc), rescuelog.VictimPayload{X: victim.X, Y: victim.Y}, nil)
	c.targetHospital(ctx, npc, step, out, "picked up")
}

func (c *RescueController) deliver(ctx context.Context, npc *state.NPCState, step Step, out *Outcome) {
	if npc.Target == nil || !c.env.IsHospital(*npc.Target) {
		c.targetHospital(ctx, npc, step, out, "invalid target")
	}
	if npc.Target == nil || npc.Position.DistanceTo(*npc.Target) >= RescueRadius {
		return
	}

	hospital := *npc.Target
	npc.Carrying = nil
	npc.Rescued++
	npc.Mode = state.NPCModeSearching
	out.Delivered = vecPtr(hospital)
	rescuelog.VictimDelivered(ctx, c.publisher, step.Tick, npcRef(npc), rescuelog.VictimPayload{X: hospital.X, Y: hospital.Y, Rescued: npc.Rescued}, nil)

	npc.Target = nil
	c.targetVictim(ctx, npc, step, out, "delivered")
}

// targetVictim points npc at the closest remaining victim. It returns false
// and clears the path when none are left.
func (c *RescueController) targetVictim(ctx context.Context, npc *state.NPCState, step Step, out *Outcome, reason string) bool {
	victim, ok := c.env.Victims().Closest(npc.Position)
	if !ok {
		npc.Target = nil
		npc.Clear()
		return false
	}
	c.retarget(ctx, npc, victim, step, out, reason)
	return true
}

func (c *RescueController) targetHospital(ctx context.Context, npc *state.NPCState, step Step, out *Outcome, reason string) {
	hospital, ok := c.env.ClosestHospital(npc.Position)
	if !ok {
		npc.Target = nil
		npc.Clear()
		return
	}
	c.retarget(ctx, npc, hospital, step, out, reason)
}

func (c *RescueController) retarget(ctx context.Context, npc *state.NPCState, goal Vec2, step Step, out *Outcome, reason string) {
	npc.Target = vecPtr(goal)
	npc.Assign(c.env.FindPath(npc.Position, goal))
	out.Retargeted = true
	rescuelog.NPCRetargeted(ctx, c.publisher, step.Tick, npcRef(npc), rescuelog.RetargetPayload{
		Mode:    string(npc.Mode),
		TargetX: goal.X,
		TargetY: goal.Y,
		Hops:    len(npc.Path) - 1,
		Reason:  reason,
	}, nil)
}

func (c *RescueController) moveAlongPath(ctx context.Context, npc *state.NPCState, step Step, out *Outcome) {
	waypoint, ok := npc.Current()
	if !ok {
		npc.Velocity = Vec2{}
		return
	}
	if npc.Position.DistanceTo(waypoint) < PathAdvanceRadius && npc.PathIndex < len(npc.Path)-1 {
		npc.PathIndex++
		waypoint, _ = npc.Current()
	}

	force := steering.Seek{}.Calculate(npc.Kinematic, state.Kinematic{Position: waypoint}, step.Tuning)
	proposal := worldpkg.ProposeMove(c.env.Field(), npc.Kinematic, force, step.Tuning.MaxSpeed, step.DT)
	if proposal.Valid {
		npc.Kinematic = proposal.Next
		npc.Stuck = false
		return
	}

	out.Blocked = true
	result := c.avoider.Avoid(AvoidRequest{
		Agent:  npc.Kinematic,
		Tuning: step.Tuning,
		DT:     step.DT,
		Field:  c.env.Field(),
		Graph:  c.env.Graph(),
	})
	npc.Kinematic = result.Agent
	npc.Stuck = !result.Resolved
	if npc.Stuck {
		out.Stuck = true
		rescuelog.NPCStuck(ctx, c.publisher, step.Tick, npcRef(npc), rescuelog.StuckPayload{
			X:        npc.Position.X,
			Y:        npc.Position.Y,
			Strategy: string(c.avoider.Name()),
		}, nil)
	}
}

func npcRef(npc *state.NPCState) logging.EntityRef {
	return logging.EntityRef{ID: npc.ID, Kind: logging.EntityKindNPC}
}
