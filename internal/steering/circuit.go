package steering

// CircuitThreshold is the distance at which Circuit moves on to the next
// waypoint.
const CircuitThreshold = 20.0

// Circuit patrols a closed loop of waypoints forever.
type Circuit struct {
	waypoints []Vec2
	current   int
}

// NewCircuit builds a circuit over the provided waypoints.
func NewCircuit(waypoints []Vec2) *Circuit {
	return &Circuit{waypoints: copyWaypoints(waypoints)}
}

// Calculate implements Behavior. The target argument is ignored.
func (c *Circuit) Calculate(agent, _ Kinematic, tuning Tuning) Vec2 {
	if c == nil || len(c.waypoints) == 0 {
		return Vec2{}
	}
	if agent.Position.DistanceTo(c.waypoints[c.current]) < CircuitThreshold {
		c.current = (c.current + 1) % len(c.waypoints)
	}
	return seekPoint(agent, c.waypoints[c.current], tuning)
}

// Reset implements Stateful.
func (c *Circuit) Reset() {
	if c == nil {
		return
	}
	c.current = 0
}

// Waypoints implements Route.
func (c *Circuit) Waypoints() []Vec2 {
	if c == nil {
		return nil
	}
	return copyWaypoints(c.waypoints)
}

// CurrentIndex implements Route.
func (c *Circuit) CurrentIndex() int {
	if c == nil {
		return 0
	}
	return c.current
}
