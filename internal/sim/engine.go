package sim

import (
	"context"

	state "rescue-sim/server/internal/state"
	worldpkg "rescue-sim/server/internal/world"
)

// Scenario names.
const (
	ScenarioSteering = "steering"
	ScenarioRescue   = "rescue"
)

// Engine defines the minimal surface area exposed to non-simulation callers.
type Engine interface {
	Validate(Command) string
	Apply(context.Context, []Command) error
	Step(context.Context, uint64)
	Snapshot() Snapshot
	Layout() WorldLayout
}

// EngineCore is an Engine that also exposes its dependencies to the loop.
type EngineCore interface {
	Engine
	Deps() Deps
	Scenario() string
	// Done reports whether the scenario has reached a terminal state.
	Done() bool
}

// WorldLayout is the static description sent to clients when they connect.
type WorldLayout struct {
	Scenario  string              `json:"scenario"`
	Width     float64             `json:"width"`
	Height    float64             `json:"height"`
	Obstacles []worldpkg.Obstacle `json:"obstacles,omitempty"`
	Hospitals []state.Vec2        `json:"hospitals,omitempty"`
	Waypoints []state.Vec2        `json:"waypoints,omitempty"`
	Edges     []worldpkg.Edge     `json:"edges,omitempty"`
	Behaviors []string            `json:"behaviors,omitempty"`
}
