// Package steering implements the force-based velocity controllers that move
// agents toward or away from their goals.
package steering

import state "rescue-sim/server/internal/state"

// Vec2 aliases the shared state vector type.
type Vec2 = state.Vec2

// Kinematic aliases the shared position/velocity pair.
type Kinematic = state.Kinematic

// Tuning aliases the per-tick speed and force limits.
type Tuning = state.Tuning

// Behavior computes a steering force for an agent relative to a target. The
// returned vector is a force, not a velocity, and its length never exceeds
// tuning.MaxForce.
type Behavior interface {
	Calculate(agent, target Kinematic, tuning Tuning) Vec2
}

// Stateful is implemented by behaviors that keep a waypoint cursor between
// ticks. Reset rewinds the cursor to its initial position.
type Stateful interface {
	Behavior
	Reset()
}

// Route is implemented by behaviors that follow a fixed list of waypoints.
type Route interface {
	Waypoints() []Vec2
	CurrentIndex() int
}

// BehaviorFunc adapts a plain function into a Behavior.
type BehaviorFunc func(agent, target Kinematic, tuning Tuning) Vec2

// Calculate implements Behavior.
func (f BehaviorFunc) Calculate(agent, target Kinematic, tuning Tuning) Vec2 {
	if f == nil {
		return Vec2{}
	}
	return f(agent, target, tuning)
}

// clampForce converts a desired velocity into a steering force bounded by
// maxForce.
func clampForce(desired, velocity Vec2, maxForce float64) Vec2 {
	steering := desired.Sub(velocity)
	if steering.Len() > maxForce {
		steering = steering.Normalized().Scale(maxForce)
	}
	return steering
}

// predictionHorizon is the look-ahead in seconds used by Pursuit and Evade.
const predictionHorizon = 1.0

func predict(target Kinematic) Vec2 {
	return target.Position.Add(target.Velocity.Scale(predictionHorizon))
}

func copyWaypoints(points []Vec2) []Vec2 {
	return append([]Vec2(nil), points...)
}
