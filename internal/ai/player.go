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

// ErrBlockedTarget is returned when a requested target sits inside an
// obstacle or outside the world.
var ErrBlockedTarget = errors.New("target position is blocked")

// PlayerController moves the human-controlled rescuer toward its click target
// and handles pickup and drop-off.
type PlayerController struct {
	env       Environment
	publisher logging.Publisher
}

// NewPlayerController builds a controller for env.
func NewPlayerController(env Environment, publisher logging.Publisher) (*PlayerController, error) {
	if env == nil {
		return nil, errors.New("player controller requires an environment")
	}
	if publisher == nil {
		publisher = logging.NopPublisher()
	}
	return &PlayerController{env: env, publisher: publisher}, nil
}

// SetTarget accepts target for player when the obstacle field allows it.
func (c *PlayerController) SetTarget(player *state.PlayerState, target Vec2) error {
	if player == nil {
		return errors.New("player is nil")
	}
	if !c.env.Field().Valid(target) {
		return ErrBlockedTarget
	}
	player.Target = vecPtr(target)
	return nil
}

// Update moves player one tick and resolves pickup or drop-off.
func (c *PlayerController) Update(ctx context.Context, player *state.PlayerState, step Step) Outcome {
	var out Outcome
	if player == nil {
		return out
	}

	if player.Target != nil {
		force := steering.Arrival{}.Calculate(player.Kinematic, state.Kinematic{Position: *player.Target}, step.Tuning)
		proposal := worldpkg.ProposeMove(c.env.Field(), player.Kinematic, force, step.Tuning.MaxSpeed, step.DT)
		if proposal.Valid {
			player.Kinematic = proposal.Next
		} else {
			player.Velocity = Vec2{}
			out.Blocked = true
		}
	}

	ref := logging.EntityRef{ID: player.ID, Kind: logging.EntityKindPlayer}
	if player.Carrying == nil {
		victims := c.env.Victims()
		if victim, ok := victims.ClosestWithin(player.Position, RescueRadius); ok && victims.Remove(victim) {
			player.Carrying = vecPtr(victim)
			out.PickedUp = vecPtr(victim)
			rescuelog.VictimPickedUp(ctx, c.publisher, step.Tick, ref, rescuelog.VictimPayload{X: victim.X, Y: victim.Y}, nil)
		}
	} else if hospital, ok := c.env.ClosestHospital(player.Position); ok && player.Position.DistanceTo(hospital) < RescueRadius {
		player.Carrying = nil
		player.Rescued++
		out.Delivered = vecPtr(hospital)
		rescuelog.VictimDelivered(ctx, c.publisher, step.Tick, ref, rescuelog.VictimPayload{X: hospital.X, Y: hospital.Y, Rescued: player.Rescued}, nil)
	}

	player.UpdateFacing()
	return out
}
