package world

import (
	"fmt"
	"math/rand"
)

const (
	// DefaultClearance is the radius an actor keeps from every obstacle.
	DefaultClearance = 15.0

	ObstacleTypeBlock = "block"
)

// Obstacle is an axis-aligned blocking rectangle anchored at its top-left
// corner.
type Obstacle struct {
	ID     string  `json:"id" yaml:"id"`
	Type   string  `json:"type,omitempty" yaml:"type,omitempty"`
	X      float64 `json:"x" yaml:"x"`
	Y      float64 `json:"y" yaml:"y"`
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
}

// ObstacleField answers whether a position is free of obstacles. The field is
// immutable once built.
type ObstacleField struct {
	obstacles []Obstacle
	width     float64
	height    float64
	bounded   bool
}

// NewObstacleField builds an unbounded field over the provided obstacles.
func NewObstacleField(obstacles []Obstacle) *ObstacleField {
	return &ObstacleField{obstacles: append([]Obstacle(nil), obstacles...)}
}

// NewBoundedObstacleField builds a field that also rejects points outside the
// world rectangle.
func NewBoundedObstacleField(obstacles []Obstacle, width, height float64) *ObstacleField {
	field := NewObstacleField(obstacles)
	field.width = width
	field.height = height
	field.bounded = true
	return field
}

// IsValidPosition reports whether a circle of the given radius centred on p
// stays clear of every obstacle and, for bounded fields, inside the world.
func (f *ObstacleField) IsValidPosition(p Vec2, radius float64) bool {
	if f == nil {
		return true
	}
	if f.bounded && !InBounds(p, f.width, f.height) {
		return false
	}
	for _, obs := range f.obstacles {
		if InsideExpanded(p, obs, radius) {
			return false
		}
	}
	return true
}

// Valid checks p using DefaultClearance.
func (f *ObstacleField) Valid(p Vec2) bool {
	return f.IsValidPosition(p, DefaultClearance)
}

// Obstacles returns a copy of the obstacle set.
func (f *ObstacleField) Obstacles() []Obstacle {
	if f == nil {
		return nil
	}
	return append([]Obstacle(nil), f.obstacles...)
}

// Len reports the number of obstacles.
func (f *ObstacleField) Len() int {
	if f == nil {
		return 0
	}
	return len(f.obstacles)
}

// GridSpec lays blocks out on a regular lattice. DropRate is the chance a
// cell is left open.
type GridSpec struct {
	Origin   Vec2    `yaml:"origin"`
	Columns  int     `yaml:"columns"`
	Rows     int     `yaml:"rows"`
	Spacing  Vec2    `yaml:"spacing"`
	Width    float64 `yaml:"width"`
	Height   float64 `yaml:"height"`
	DropRate float64 `yaml:"dropRate"`
}

// ObstacleGenerator describes the world surface required to lay out grid
// obstacles deterministically.
type ObstacleGenerator interface {
	Dimensions() (float64, float64)
	SubsystemRNG(label string) *rand.Rand
}

// GenerateGridObstacles places one block per grid cell, skipping cells the
// RNG drops, cells outside the world and cells that would make any of the
// keepClear points invalid.
func GenerateGridObstacles(gen ObstacleGenerator, grid GridSpec, keepClear []Vec2) []Obstacle {
	if gen == nil || grid.Columns <= 0 || grid.Rows <= 0 || grid.Width <= 0 || grid.Height <= 0 {
		return nil
	}

	worldW, worldH := gen.Dimensions()
	rng := gen.SubsystemRNG("obstacles.grid")
	obstacles := make([]Obstacle, 0, grid.Columns*grid.Rows)

	for row := 0; row < grid.Rows; row++ {
		for col := 0; col < grid.Columns; col++ {
			// Draw for every cell so the sequence does not depend on skips.
			roll := rng.Float64()

			candidate := Obstacle{
				ID:     fmt.Sprintf("block-%d-%d", row, col),
				Type:   ObstacleTypeBlock,
				X:      grid.Origin.X + float64(col)*grid.Spacing.X,
				Y:      grid.Origin.Y + float64(row)*grid.Spacing.Y,
				Width:  grid.Width,
				Height: grid.Height,
			}
			if roll < grid.DropRate {
				continue
			}
			if candidate.X < 0 || candidate.Y < 0 || candidate.X+candidate.Width > worldW || candidate.Y+candidate.Height > worldH {
				continue
			}

			blocksAnchor := false
			for _, point := range keepClear {
				if InsideExpanded(point, candidate, DefaultClearance) {
					blocksAnchor = true
					break
				}
			}
			if blocksAnchor {
				continue
			}

			overlapsExisting := false
			for _, obs := range obstacles {
				if ObstaclesOverlap(candidate, obs, 0) {
					overlapsExisting = true
					break
				}
			}
			if overlapsExisting {
				continue
			}

			obstacles = append(obstacles, candidate)
		}
	}

	return obstacles
}
