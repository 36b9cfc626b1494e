package steering

// SlowingRadius is the distance inside which Arrival scales its desired speed
// down linearly.
const SlowingRadius = 100.0

// Arrival seeks the target but slows down inside SlowingRadius so the agent
// comes to rest on it.
type Arrival struct{}

// Calculate implements Behavior.
func (Arrival) Calculate(agent, target Kinematic, tuning Tuning) Vec2 {
	return arrivePoint(agent, target.Position, tuning)
}

func arrivePoint(agent Kinematic, point Vec2, tuning Tuning) Vec2 {
	direction := point.Sub(agent.Position)
	desired := direction.Normalized().Scale(ArrivalSpeed(direction.Len(), tuning.MaxSpeed))
	return clampForce(desired, agent.Velocity, tuning.MaxForce)
}

// ArrivalSpeed returns the desired speed at the given distance from the goal.
func ArrivalSpeed(distance, maxSpeed float64) float64 {
	if distance < SlowingRadius {
		return maxSpeed * (distance / SlowingRadius)
	}
	return maxSpeed
}
