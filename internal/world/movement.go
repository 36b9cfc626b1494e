package world

import state "rescue-sim/server/internal/state"

// BounceDamping scales a velocity component that carried an actor past the
// world edge.
const BounceDamping = -0.5

// Integrate applies a steering force to k: the force is added to the
// velocity, the velocity is capped at maxSpeed and the position advances by
// velocity*dt.
func Integrate(k state.Kinematic, force Vec2, maxSpeed, dt float64) state.Kinematic {
	velocity := k.Velocity.Add(force).Limit(maxSpeed)
	return state.Kinematic{
		Position: k.Position.Add(velocity.Scale(dt)),
		Velocity: velocity,
	}
}

// Bounce clamps k into [0,width]x[0,height] and reflects, with damping, any
// velocity component that pushed it outside.
func Bounce(k state.Kinematic, width, height float64) state.Kinematic {
	out := k
	if out.Position.X < 0 || out.Position.X > width {
		out.Position.X = Clamp(out.Position.X, 0, width)
		out.Velocity.X *= BounceDamping
	}
	if out.Position.Y < 0 || out.Position.Y > height {
		out.Position.Y = Clamp(out.Position.Y, 0, height)
		out.Velocity.Y *= BounceDamping
	}
	return out
}

// Proposal is a candidate move checked against the obstacle field before it
// is committed.
type Proposal struct {
	Next  state.Kinematic
	Valid bool
}

// ProposeMove integrates k and reports whether the resulting position is
// acceptable to field.
func ProposeMove(field *ObstacleField, k state.Kinematic, force Vec2, maxSpeed, dt float64) Proposal {
	next := Integrate(k, force, maxSpeed, dt)
	return Proposal{Next: next, Valid: field.Valid(next.Position)}
}
