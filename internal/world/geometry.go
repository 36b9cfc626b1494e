package world

import state "rescue-sim/server/internal/state"

// Vec2 aliases the shared state vector type for world helpers.
type Vec2 = state.Vec2

// Clamp limits value to the range [min, max].
func Clamp(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

// ObstaclesOverlap checks for AABB overlap with optional padding.
func ObstaclesOverlap(a, b Obstacle, padding float64) bool {
	return a.X-padding < b.X+b.Width+padding &&
		a.X+a.Width+padding > b.X-padding &&
		a.Y-padding < b.Y+b.Height+padding &&
		a.Y+a.Height+padding > b.Y-padding
}

// InsideExpanded reports whether p falls within obs grown by margin on every
// side. Points on the expanded edge count as inside.
func InsideExpanded(p Vec2, obs Obstacle, margin float64) bool {
	return p.X >= obs.X-margin && p.X <= obs.X+obs.Width+margin &&
		p.Y >= obs.Y-margin && p.Y <= obs.Y+obs.Height+margin
}
