package world

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubGenerator struct {
	width, height float64
}

func (g stubGenerator) Dimensions() (float64, float64) { return g.width, g.height }

func (g stubGenerator) SubsystemRNG(label string) *rand.Rand {
	return NewDeterministicRNG("stub", label)
}

func TestIsValidPositionUsesExpandedRectangle(t *testing.T) {
	field := NewObstacleField([]Obstacle{{ID: "a", X: 100, Y: 100, Width: 50, Height: 50}})

	cases := []struct {
		name  string
		point Vec2
		valid bool
	}{
		{name: "centre", point: Vec2{X: 125, Y: 125}, valid: false},
		{name: "inside margin left", point: Vec2{X: 90, Y: 120}, valid: false},
		{name: "on expanded edge", point: Vec2{X: 85, Y: 120}, valid: false},
		{name: "outside margin left", point: Vec2{X: 84, Y: 120}, valid: true},
		{name: "inside margin corner", point: Vec2{X: 86, Y: 86}, valid: false},
		{name: "outside below", point: Vec2{X: 125, Y: 166}, valid: true},
		{name: "far away", point: Vec2{X: 500, Y: 500}, valid: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.valid, field.IsValidPosition(tc.point, DefaultClearance))
		})
	}

	assert.True(t, field.IsValidPosition(Vec2{X: 95, Y: 120}, 0))
}

func TestBoundedFieldRejectsOutsidePoints(t *testing.T) {
	field := NewBoundedObstacleField(nil, 800, 600)
	assert.True(t, field.Valid(Vec2{X: 0, Y: 0}))
	assert.True(t, field.Valid(Vec2{X: 800, Y: 600}))
	assert.False(t, field.Valid(Vec2{X: -1, Y: 10}))
	assert.False(t, field.Valid(Vec2{X: 10, Y: 601}))

	var nilField *ObstacleField
	assert.True(t, nilField.Valid(Vec2{X: -100}))
}

func TestGenerateGridObstaclesLaysOutCells(t *testing.T) {
	grid := GridSpec{
		Origin:  Vec2{X: 50, Y: 60},
		Columns: 4,
		Rows:    3,
		Spacing: Vec2{X: 200, Y: 200},
		Width:   100,
		Height:  80,
	}
	obstacles := GenerateGridObstacles(stubGenerator{800, 600}, grid, nil)
	require.Len(t, obstacles, 12)
	assert.Equal(t, Obstacle{ID: "block-1-2", Type: ObstacleTypeBlock, X: 450, Y: 260, Width: 100, Height: 80}, obstacles[6])

	anchored := GenerateGridObstacles(stubGenerator{800, 600}, grid, []Vec2{{X: 100, Y: 100}})
	assert.Len(t, anchored, 11)
	for _, obs := range anchored {
		assert.NotEqual(t, "block-0-0", obs.ID)
	}

	clipped := GenerateGridObstacles(stubGenerator{400, 600}, grid, nil)
	assert.Len(t, clipped, 6)
}

func TestGenerateGridObstaclesIsDeterministic(t *testing.T) {
	grid := GridSpec{Columns: 5, Rows: 5, Spacing: Vec2{X: 100, Y: 100}, Width: 50, Height: 50, DropRate: 0.5}
	first := GenerateGridObstacles(stubGenerator{800, 600}, grid, nil)
	second := GenerateGridObstacles(stubGenerator{800, 600}, grid, nil)
	assert.Equal(t, first, second)
	assert.Less(t, len(first), 25)

	all := GenerateGridObstacles(stubGenerator{800, 600}, GridSpec{Columns: 5, Rows: 5, Spacing: Vec2{X: 100, Y: 100}, Width: 50, Height: 50, DropRate: 1}, nil)
	assert.Empty(t, all)
}

func TestGeometryHelpers(t *testing.T) {
	obs := Obstacle{X: 0, Y: 0, Width: 10, Height: 10}
	assert.True(t, ObstaclesOverlap(obs, Obstacle{X: 9, Y: 9, Width: 5, Height: 5}, 0))
	assert.False(t, ObstaclesOverlap(obs, Obstacle{X: 12, Y: 0, Width: 5, Height: 5}, 0))
	assert.True(t, ObstaclesOverlap(obs, Obstacle{X: 12, Y: 0, Width: 5, Height: 5}, 2))
	assert.Equal(t, 5.0, Clamp(7, 0, 5))
}
