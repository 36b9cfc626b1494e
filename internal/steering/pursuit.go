package steering

// Pursuit seeks the position the target will occupy one second from now,
// assuming it keeps its current velocity.
type Pursuit struct{}

// Calculate implements Behavior.
func (Pursuit) Calculate(agent, target Kinematic, tuning Tuning) Vec2 {
	return seekPoint(agent, predict(target), tuning)
}

// Evade flees from the same predicted position Pursuit would chase.
type Evade struct{}

// Calculate implements Behavior.
func (Evade) Calculate(agent, target Kinematic, tuning Tuning) Vec2 {
	return fleePoint(agent, predict(target), tuning)
}
