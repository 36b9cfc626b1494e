package ai

import (
	state "rescue-sim/server/internal/state"
	worldpkg "rescue-sim/server/internal/world"
)

// Vec2 aliases the shared vector type.
type Vec2 = worldpkg.Vec2

const (
	// RescueRadius is how close an actor must get to pick up or drop off.
	RescueRadius = 15.0
	// PathAdvanceRadius is how close the NPC must get to a path node before
	// it heads for the next one.
	PathAdvanceRadius = 10.0
)

// Environment is the world surface the rescue actors read and mutate.
type Environment interface {
	Field() *worldpkg.ObstacleField
	Graph() *worldpkg.WaypointGraph
	Victims() *worldpkg.VictimSet
	ClosestHospital(p Vec2) (Vec2, bool)
	IsHospital(p Vec2) bool
	FindPath(start, end Vec2) []Vec2
}

// Step carries the per-tick inputs shared by every controller.
type Step struct {
	Tick   uint64
	Tuning state.Tuning
	DT     float64
}

// Outcome reports what happened to an actor during one tick.
type Outcome struct {
	PickedUp   *Vec2
	Delivered  *Vec2
	Retargeted bool
	Blocked    bool
	Stuck      bool
}

func vecPtr(v Vec2) *Vec2 {
	cloned := v
	return &cloned
}
