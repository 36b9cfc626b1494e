package steering

// Seek steers straight toward the target at full speed.
type Seek struct{}

// Calculate implements Behavior.
func (Seek) Calculate(agent, target Kinematic, tuning Tuning) Vec2 {
	return seekPoint(agent, target.Position, tuning)
}

func seekPoint(agent Kinematic, point Vec2, tuning Tuning) Vec2 {
	desired := point.Sub(agent.Position).Normalized().Scale(tuning.MaxSpeed)
	return clampForce(desired, agent.Velocity, tuning.MaxForce)
}

// Flee steers directly away from the target at full speed.
type Flee struct{}

// Calculate implements Behavior.
func (Flee) Calculate(agent, target Kinematic, tuning Tuning) Vec2 {
	return fleePoint(agent, target.Position, tuning)
}

func fleePoint(agent Kinematic, point Vec2, tuning Tuning) Vec2 {
	desired := agent.Position.Sub(point).Normalized().Scale(tuning.MaxSpeed)
	return clampForce(desired, agent.Velocity, tuning.MaxForce)
}
