package state

import "math"

// EntityKind labels the actors exposed to snapshot consumers.
type EntityKind string

const (
	EntityKindAgent  EntityKind = "agent"
	EntityKindTarget EntityKind = "target"
	EntityKindNPC    EntityKind = "npc"
	EntityKindPlayer EntityKind = "player"
)

// Actor captures the shared state for any moving entity in the world.
type Actor struct {
	ID     string          `json:"id"`
	Kind   EntityKind      `json:"kind"`
	Facing FacingDirection `json:"facing"`
	Kinematic
}

type FacingDirection string

const (
	FacingUp    FacingDirection = "up"
	FacingDown  FacingDirection = "down"
	FacingLeft  FacingDirection = "left"
	FacingRight FacingDirection = "right"

	DefaultFacing FacingDirection = FacingDown
)

// DeriveFacing picks the facing direction that best matches the movement
// vector, falling back to the last known facing when idle.
func DeriveFacing(dx, dy float64, fallback FacingDirection) FacingDirection {
	if fallback == "" {
		fallback = DefaultFacing
	}

	const epsilon = 1e-6

	if math.Abs(dx) < epsilon {
		dx = 0
	}
	if math.Abs(dy) < epsilon {
		dy = 0
	}

	if dx == 0 && dy == 0 {
		return fallback
	}

	absX := math.Abs(dx)
	absY := math.Abs(dy)

	if absY >= absX && dy != 0 {
		if dy > 0 {
			return FacingDown
		}
		return FacingUp
	}

	if dx > 0 {
		return FacingRight
	}
	return FacingLeft
}

// UpdateFacing refreshes the actor facing from its current velocity.
func (a *Actor) UpdateFacing() {
	if a == nil {
		return
	}
	a.Facing = DeriveFacing(a.Velocity.X, a.Velocity.Y, a.Facing)
}

// PlayerState is the human-controlled rescuer. Target is the last accepted
// click position; Carrying holds the victim currently transported.
type PlayerState struct {
	Actor
	Target   *Vec2
	Carrying *Vec2
	Rescued  int
}

// Player is the serialized view of a PlayerState.
type Player struct {
	Actor
	Target   *Vec2 `json:"target,omitempty"`
	Carrying *Vec2 `json:"carrying,omitempty"`
	Rescued  int   `json:"rescued"`
}

// Snapshot returns a sanitized player snapshot for serialization.
func (s *PlayerState) Snapshot() Player {
	actor := s.Actor
	if actor.Facing == "" {
		actor.Facing = DefaultFacing
	}
	return Player{
		Actor:    actor,
		Target:   cloneVec(s.Target),
		Carrying: cloneVec(s.Carrying),
		Rescued:  s.Rescued,
	}
}

func cloneVec(v *Vec2) *Vec2 {
	if v == nil {
		return nil
	}
	copied := *v
	return &copied
}
