package ai

import (
	"fmt"
	"math/rand"

	state "rescue-sim/server/internal/state"
	steering "rescue-sim/server/internal/steering"
	worldpkg "rescue-sim/server/internal/world"
)

// AvoidanceStrategy names a blocked-move recovery policy.
type AvoidanceStrategy string

const (
	// AvoidReroute steers toward the nearest waypoint and falls back to a
	// random heading.
	AvoidReroute AvoidanceStrategy = "reroute"
	// AvoidRotate sweeps the velocity through a full turn and then tries
	// small random nudges.
	AvoidRotate AvoidanceStrategy = "rotate"
)

const (
	rerouteForceScale = 2.0

	rotateStepDegrees = 10.0
	rotateAttempts    = 36
	nudgeAttempts     = 50
	nudgeMagnitude    = 5.0
)

// AvoidRequest describes a move the obstacle field rejected.
type AvoidRequest struct {
	Agent  state.Kinematic
	Tuning state.Tuning
	DT     float64
	Field  *worldpkg.ObstacleField
	Graph  *worldpkg.WaypointGraph
}

// AvoidResult is the kinematic state to commit. Resolved is false when the
// strategy had to fall back to a move it could not verify.
type AvoidResult struct {
	Agent    state.Kinematic
	Resolved bool
}

// Avoider recovers from a blocked move.
type Avoider interface {
	Name() AvoidanceStrategy
	Avoid(req AvoidRequest) AvoidResult
}

// NewAvoider builds the named strategy around rng.
func NewAvoider(strategy AvoidanceStrategy, rng *rand.Rand) (Avoider, error) {
	switch strategy {
	case AvoidReroute, "":
		return &WaypointReroute{rng: rng}, nil
	case AvoidRotate:
		return &RotateRetry{rng: rng}, nil
	default:
		return nil, fmt.Errorf("unknown avoidance strategy %q", strategy)
	}
}

// WaypointReroute is the default recovery: head for the closest waypoint with
// twice the usual force; failing that, pick a random heading at full speed.
type WaypointReroute struct {
	rng *rand.Rand
}

// Name implements Avoider.
func (a *WaypointReroute) Name() AvoidanceStrategy { return AvoidReroute }

// Avoid implements Avoider.
func (a *WaypointReroute) Avoid(req AvoidRequest) AvoidResult {
	if waypoint, ok := req.Graph.ClosestPosition(req.Agent.Position); ok {
		boosted := req.Tuning.WithForceScale(rerouteForceScale)
		force := steering.Seek{}.Calculate(req.Agent, state.Kinematic{Position: waypoint}, boosted)
		proposal := worldpkg.ProposeMove(req.Field, req.Agent, force, req.Tuning.MaxSpeed, req.DT)
		if proposal.Valid {
			return AvoidResult{Agent: proposal.Next, Resolved: true}
		}
	}

	nudged := req.Agent
	nudged.Velocity = worldpkg.RandomUnit(a.rng).Scale(req.Tuning.MaxSpeed)
	return AvoidResult{Agent: nudged, Resolved: false}
}

// RotateRetry turns the current velocity in fixed steps looking for a clear
// heading, then tries small random offsets, then gives up in place.
type RotateRetry struct {
	rng *rand.Rand
}

// Name implements Avoider.
func (a *RotateRetry) Name() AvoidanceStrategy { return AvoidRotate }

// Avoid implements Avoider.
func (a *RotateRetry) Avoid(req AvoidRequest) AvoidResult {
	velocity := req.Agent.Velocity
	if velocity.IsZero() {
		velocity = Vec2{X: req.Tuning.MaxSpeed}
	}

	for i := 0; i < rotateAttempts; i++ {
		velocity.Rotate(rotateStepDegrees)
		next := req.Agent.Position.Add(velocity.Scale(req.DT))
		if req.Field.Valid(next) {
			return AvoidResult{
				Agent:    state.Kinematic{Position: next, Velocity: velocity},
				Resolved: true,
			}
		}
	}

	for i := 0; i < nudgeAttempts; i++ {
		offset := Vec2{
			X: worldpkg.RandomDistance(a.rng, -nudgeMagnitude, nudgeMagnitude),
			Y: worldpkg.RandomDistance(a.rng, -nudgeMagnitude, nudgeMagnitude),
		}
		next := req.Agent.Position.Add(offset)
		if req.Field.Valid(next) {
			return AvoidResult{
				Agent:    state.Kinematic{Position: next, Velocity: req.Agent.Velocity},
				Resolved: true,
			}
		}
	}

	return AvoidResult{Agent: state.Kinematic{Position: req.Agent.Position}, Resolved: false}
}
