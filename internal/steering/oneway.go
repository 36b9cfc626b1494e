package steering

// RouteThreshold is the advance distance shared by OneWay and TwoWay.
const RouteThreshold = 5.0

// OneWay walks an open list of waypoints once and then parks on the last one.
type OneWay struct {
	waypoints []Vec2
	current   int
	finished  bool
}

// NewOneWay builds a one-way route over the provided waypoints.
func NewOneWay(waypoints []Vec2) *OneWay {
	return &OneWay{waypoints: copyWaypoints(waypoints)}
}

// Calculate implements Behavior. The target argument is ignored.
func (o *OneWay) Calculate(agent, _ Kinematic, tuning Tuning) Vec2 {
	if o == nil || len(o.waypoints) == 0 {
		return Vec2{}
	}
	last := len(o.waypoints) - 1
	if o.finished {
		return arrivePoint(agent, o.waypoints[last], tuning)
	}
	if agent.Position.DistanceTo(o.waypoints[o.current]) < RouteThreshold && o.current < last {
		o.current++
		if o.current == last {
			o.finished = true
		}
	}
	if o.finished {
		return arrivePoint(agent, o.waypoints[last], tuning)
	}
	return seekPoint(agent, o.waypoints[o.current], tuning)
}

// Finished reports whether the route has switched to its final waypoint.
func (o *OneWay) Finished() bool {
	return o != nil && o.finished
}

// Reset implements Stateful.
func (o *OneWay) Reset() {
	if o == nil {
		return
	}
	o.current = 0
	o.finished = false
}

// Waypoints implements Route.
func (o *OneWay) Waypoints() []Vec2 {
	if o == nil {
		return nil
	}
	return copyWaypoints(o.waypoints)
}

// CurrentIndex implements Route.
func (o *OneWay) CurrentIndex() int {
	if o == nil {
		return 0
	}
	return o.current
}
