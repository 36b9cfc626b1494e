package sim

import (
	"context"
	"errors"
	"fmt"

	state "rescue-sim/server/internal/state"
	steering "rescue-sim/server/internal/steering"
	worldpkg "rescue-sim/server/internal/world"
	"rescue-sim/server/logging"
	steeringlog "rescue-sim/server/logging/steering"
)

// Initial positions of the steering scenario actors.
var (
	DefaultAgentSpawn  = state.Vec2{X: 400, Y: 300}
	DefaultTargetSpawn = state.Vec2{X: 600, Y: 300}
)

// SteeringConfig tunes the single-agent steering scenario.
type SteeringConfig struct {
	Width       float64
	Height      float64
	Tuning      state.Tuning
	StepSeconds float64
	Behavior    steering.ID
	Routes      *steering.Routes
}

// SteeringEngine moves one agent toward (or away from) a target with the
// selected behavior. The agent bounces off the world edges.
type SteeringEngine struct {
	cfg     SteeringConfig
	deps    Deps
	library *steering.Library

	agent  state.Actor
	target state.Actor
	tuning state.Tuning
	tick   uint64
}

// NewSteeringEngine builds the scenario and selects the configured behavior.
func NewSteeringEngine(cfg SteeringConfig, deps Deps) (*SteeringEngine, error) {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, errors.New("steering engine requires positive bounds")
	}
	if !cfg.Tuning.Valid() {
		return nil, fmt.Errorf("steering engine: invalid tuning %+v", cfg.Tuning)
	}
	if cfg.StepSeconds <= 0 {
		return nil, errors.New("steering engine requires a positive step")
	}

	routes := cfg.Routes
	if routes == nil {
		defaults, err := steering.DefaultRoutes()
		if err != nil {
			return nil, err
		}
		routes = &defaults
	}
	library, err := steering.NewLibrary(*routes)
	if err != nil {
		return nil, err
	}
	if _, err := library.Select(cfg.Behavior); err != nil {
		return nil, err
	}

	engine := &SteeringEngine{
		cfg:     cfg,
		deps:    deps,
		library: library,
		tuning:  cfg.Tuning,
	}
	engine.resetActors()
	return engine, nil
}

func (e *SteeringEngine) resetActors() {
	e.agent = state.Actor{ID: "agent", Kind: state.EntityKindAgent, Facing: state.DefaultFacing, Kinematic: state.Kinematic{Position: DefaultAgentSpawn}}
	e.target = state.Actor{ID: "target", Kind: state.EntityKindTarget, Facing: state.DefaultFacing, Kinematic: state.Kinematic{Position: DefaultTargetSpawn}}
}

// Deps returns the injected dependencies.
func (e *SteeringEngine) Deps() Deps { return e.deps }

// Scenario implements EngineCore.
func (e *SteeringEngine) Scenario() string { return ScenarioSteering }

// Done implements EngineCore. Steering runs until stopped.
func (e *SteeringEngine) Done() bool { return false }

// Validate implements Engine.
func (e *SteeringEngine) Validate(cmd Command) string {
	if reason := validateShape(cmd); reason != "" {
		return reason
	}
	switch cmd.Type {
	case CommandTarget:
		if !worldpkg.InBounds(cmd.Target.Position, e.cfg.Width, e.cfg.Height) {
			return CommandRejectBlockedTarget
		}
	case CommandBehavior:
		if _, err := steering.ParseID(cmd.Behavior.Name); err != nil {
			return CommandRejectUnknownBehavior
		}
	}
	return ""
}

// Apply implements Engine. Commands that fail validation are skipped.
func (e *SteeringEngine) Apply(ctx context.Context, cmds []Command) error {
	var errs []error
	for _, cmd := range cmds {
		if reason := e.Validate(cmd); reason != "" {
			if cmd.Type == CommandTarget && cmd.Target != nil {
				steeringlog.TargetRejected(ctx, e.deps.publisher(), e.tick, actorRef(&e.target), steeringlog.TargetRejectedPayload{
					X: cmd.Target.Position.X, Y: cmd.Target.Position.Y, Reason: reason,
				}, nil)
			}
			errs = append(errs, fmt.Errorf("%s command: %s", cmd.Type, reason))
			continue
		}
		switch cmd.Type {
		case CommandTarget:
			e.target.Position = cmd.Target.Position
			e.target.Velocity = cmd.Target.Velocity
		case CommandBehavior:
			id, _ := steering.ParseID(cmd.Behavior.Name)
			e.selectBehavior(ctx, id)
		case CommandTuning:
			e.tuning = cmd.Tuning.Tuning()
		case CommandReset:
			e.resetActors()
			id, _ := e.library.Active()
			e.selectBehavior(ctx, id)
		}
	}
	return errors.Join(errs...)
}

func (e *SteeringEngine) selectBehavior(ctx context.Context, id steering.ID) {
	previous, _ := e.library.Active()
	if _, err := e.library.Select(id); err != nil {
		return
	}
	e.agent.Velocity = state.Vec2{}
	steeringlog.BehaviorSelected(ctx, e.deps.publisher(), e.tick, actorRef(&e.agent), steeringlog.BehaviorSelectedPayload{
		Behavior: id.String(),
		Previous: previous.String(),
	}, nil)
}

// Step implements Engine.
func (e *SteeringEngine) Step(_ context.Context, tick uint64) {
	e.tick = tick
	_, behavior := e.library.Active()
	force := behavior.Calculate(e.agent.Kinematic, e.target.Kinematic, e.tuning)
	next := worldpkg.Integrate(e.agent.Kinematic, force, e.tuning.MaxSpeed, e.cfg.StepSeconds)
	e.agent.Kinematic = worldpkg.Bounce(next, e.cfg.Width, e.cfg.Height)
	e.agent.UpdateFacing()
}

// Snapshot implements Engine.
func (e *SteeringEngine) Snapshot() Snapshot {
	id, _ := e.library.Active()
	route, index := e.library.ActiveWaypoints()
	agent := e.agent
	target := e.target
	return Snapshot{
		Scenario:   ScenarioSteering,
		Tick:       e.tick,
		Tuning:     e.tuning,
		Agent:      &agent,
		Target:     &target,
		Behavior:   id.String(),
		Route:      route,
		RouteIndex: index,
	}
}

// Layout implements Engine.
func (e *SteeringEngine) Layout() WorldLayout {
	return WorldLayout{
		Scenario:  ScenarioSteering,
		Width:     e.cfg.Width,
		Height:    e.cfg.Height,
		Behaviors: steering.Names(),
	}
}

func actorRef(actor *state.Actor) logging.EntityRef {
	return logging.EntityRef{ID: actor.ID, Kind: logging.EntityKind(actor.Kind)}
}
