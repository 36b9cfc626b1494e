package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	state "rescue-sim/server/internal/state"
	worldpkg "rescue-sim/server/internal/world"
)

func avoidRequest(t *testing.T, agent state.Kinematic, obstacles []worldpkg.Obstacle, waypoints []Vec2) AvoidRequest {
	t.Helper()
	graph, err := worldpkg.NewWaypointGraph(waypoints, nil)
	require.NoError(t, err)
	return AvoidRequest{
		Agent:  agent,
		Tuning: state.Tuning{MaxSpeed: 25, MaxForce: 10},
		DT:     0.16,
		Field:  worldpkg.NewObstacleField(obstacles),
		Graph:  graph,
	}
}

var wall = []worldpkg.Obstacle{{ID: "wall", X: 110, Y: 0, Width: 50, Height: 100}}

func TestRerouteHeadsForClosestWaypoint(t *testing.T) {
	agent := state.Kinematic{Position: Vec2{X: 92, Y: 50}, Velocity: Vec2{X: 25}}
	req := avoidRequest(t, agent, wall, []Vec2{{X: 20, Y: 50}, {X: 400, Y: 400}})
	require.False(t, req.Field.Valid(agent.Position.Add(agent.Velocity.Scale(req.DT))))

	avoider, err := NewAvoider(AvoidReroute, worldpkg.NewDeterministicRNG("test", "avoid"))
	require.NoError(t, err)
	result := avoider.Avoid(req)

	assert.True(t, result.Resolved)
	assert.InDelta(t, 5, result.Agent.Velocity.X, 1e-9)
	assert.InDelta(t, 92.8, result.Agent.Position.X, 1e-9)
	assert.True(t, req.Field.Valid(result.Agent.Position))
}

func TestRerouteFallsBackToSeededRandomHeading(t *testing.T) {
	cage := []worldpkg.Obstacle{{X: 0, Y: 0, Width: 100, Height: 100}}
	agent := state.Kinematic{Position: Vec2{X: 50, Y: 50}}
	req := avoidRequest(t, agent, cage, []Vec2{{X: 500, Y: 500}})

	first := (&WaypointReroute{rng: worldpkg.NewDeterministicRNG("seed", "avoid")}).Avoid(req)
	second := (&WaypointReroute{rng: worldpkg.NewDeterministicRNG("seed", "avoid")}).Avoid(req)

	assert.False(t, first.Resolved)
	assert.Equal(t, agent.Position, first.Agent.Position)
	assert.InDelta(t, 25, first.Agent.Velocity.Len(), 1e-9)
	assert.Equal(t, first, second)
}

func TestRotateRetryFindsClearHeading(t *testing.T) {
	agent := state.Kinematic{Position: Vec2{X: 92, Y: 50}, Velocity: Vec2{X: 25}}
	req := avoidRequest(t, agent, wall, []Vec2{{}})

	avoider, err := NewAvoider(AvoidRotate, worldpkg.NewDeterministicRNG("test", "avoid"))
	require.NoError(t, err)
	result := avoider.Avoid(req)

	assert.True(t, result.Resolved)
	assert.True(t, req.Field.Valid(result.Agent.Position))
	assert.InDelta(t, 25, result.Agent.Velocity.Len(), 1e-9)
	assert.Less(t, result.Agent.Velocity.X, 25.0)
	assert.Greater(t, result.Agent.Velocity.Y, 0.0)
}

func TestRotateRetryGivesUpInsideObstacle(t *testing.T) {
	cage := []worldpkg.Obstacle{{X: 0, Y: 0, Width: 100, Height: 100}}
	agent := state.Kinematic{Position: Vec2{X: 50, Y: 50}, Velocity: Vec2{X: 3, Y: 4}}
	req := avoidRequest(t, agent, cage, []Vec2{{}})

	result := (&RotateRetry{rng: worldpkg.NewDeterministicRNG("test", "avoid")}).Avoid(req)
	assert.False(t, result.Resolved)
	assert.Equal(t, agent.Position, result.Agent.Position)
	assert.True(t, result.Agent.Velocity.IsZero())
}

func TestNewAvoiderRejectsUnknownStrategy(t *testing.T) {
	_, err := NewAvoider("teleport", nil)
	require.Error(t, err)

	avoider, err := NewAvoider("", nil)
	require.NoError(t, err)
	assert.Equal(t, AvoidReroute, avoider.Name())
}
