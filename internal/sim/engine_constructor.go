package sim

import (
	"errors"
	"fmt"

	worldpkg "rescue-sim/server/internal/world"
)

var (
	// ErrMissingWorld indicates the rescue scenario was requested without a world.
	ErrMissingWorld = errors.New("sim: world is nil")
	// ErrUnknownScenario indicates NewEngine was asked for a scenario it cannot build.
	ErrUnknownScenario = errors.New("sim: unknown scenario")
)

// EngineOption configures NewEngine behaviour. Options are applied in order;
// later options override earlier ones.
type EngineOption interface {
	apply(*engineConfig)
}

type engineOptionFunc func(*engineConfig)

func (f engineOptionFunc) apply(cfg *engineConfig) {
	if f != nil {
		f(cfg)
	}
}

type engineConfig struct {
	deps       Deps
	world      *worldpkg.World
	steering   SteeringConfig
	rescue     RescueConfig
	loopConfig LoopConfig
	loopHooks  LoopHooks
}

// WithDeps injects shared infrastructure dependencies used by the engine core
// and loop orchestration.
func WithDeps(deps Deps) EngineOption {
	return engineOptionFunc(func(cfg *engineConfig) {
		cfg.deps = deps
	})
}

// WithWorld supplies the world backing the rescue scenario.
func WithWorld(world *worldpkg.World) EngineOption {
	return engineOptionFunc(func(cfg *engineConfig) {
		cfg.world = world
	})
}

func WithSteeringConfig(steering SteeringConfig) EngineOption {
	return engineOptionFunc(func(cfg *engineConfig) {
		cfg.steering = steering
	})
}

func WithRescueConfig(rescue RescueConfig) EngineOption {
	return engineOptionFunc(func(cfg *engineConfig) {
		cfg.rescue = rescue
	})
}

// WithLoopConfig overrides the default command queue and tick loop sizing.
func WithLoopConfig(config LoopConfig) EngineOption {
	return engineOptionFunc(func(cfg *engineConfig) {
		cfg.loopConfig = config
	})
}

// WithLoopHooks supplies custom loop callbacks.
func WithLoopHooks(hooks LoopHooks) EngineOption {
	return engineOptionFunc(func(cfg *engineConfig) {
		cfg.loopHooks = hooks
	})
}

// NewEngine builds the engine core for scenario and wraps it in a Loop.
func NewEngine(scenario string, opts ...EngineOption) (*Loop, error) {
	cfg := engineConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt.apply(&cfg)
		}
	}

	var (
		core EngineCore
		err  error
	)
	switch scenario {
	case ScenarioSteering:
		core, err = NewSteeringEngine(cfg.steering, cfg.deps)
	case ScenarioRescue:
		if cfg.world == nil {
			return nil, ErrMissingWorld
		}
		core, err = NewRescueEngine(cfg.world, cfg.rescue, cfg.deps)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownScenario, scenario)
	}
	if err != nil {
		return nil, fmt.Errorf("build %s engine: %w", scenario, err)
	}
	return NewLoop(core, cfg.loopConfig, cfg.loopHooks), nil
}
