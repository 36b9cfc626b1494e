package steering

// TwoWay walks back and forth along a list of waypoints, reversing at either
// end.
type TwoWay struct {
	waypoints []Vec2
	current   int
	direction int
}

// NewTwoWay builds a ping-pong route over the provided waypoints.
func NewTwoWay(waypoints []Vec2) *TwoWay {
	return &TwoWay{waypoints: copyWaypoints(waypoints), direction: 1}
}

// Calculate implements Behavior. The target argument is ignored.
func (t *TwoWay) Calculate(agent, _ Kinematic, tuning Tuning) Vec2 {
	if t == nil || len(t.waypoints) == 0 {
		return Vec2{}
	}
	if agent.Position.DistanceTo(t.waypoints[t.current]) < RouteThreshold {
		t.advance()
	}
	return arrivePoint(agent, t.waypoints[t.current], tuning)
}

// advance reverses at an endpoint and steps in the same call, so the
// index never lingers on an end waypoint for an extra tick.
func (t *TwoWay) advance() {
	last := len(t.waypoints) - 1
	if last == 0 {
		return
	}
	if t.current == last {
		t.direction = -1
	} else if t.current == 0 {
		t.direction = 1
	}
	t.current += t.direction
}

// Direction reports +1 while walking forward and -1 while walking back.
func (t *TwoWay) Direction() int {
	if t == nil {
		return 0
	}
	return t.direction
}

// Reset implements Stateful.
func (t *TwoWay) Reset() {
	if t == nil {
		return
	}
	t.current = 0
	t.direction = 1
}

// Waypoints implements Route.
func (t *TwoWay) Waypoints() []Vec2 {
	if t == nil {
		return nil
	}
	return copyWaypoints(t.waypoints)
}

// CurrentIndex implements Route.
func (t *TwoWay) CurrentIndex() int {
	if t == nil {
		return 0
	}
	return t.current
}
