package sim

import (
	"context"
	"errors"
	"fmt"

	ai "rescue-sim/server/internal/ai"
	state "rescue-sim/server/internal/state"
	worldpkg "rescue-sim/server/internal/world"
	rescuelog "rescue-sim/server/logging/rescue"
	steeringlog "rescue-sim/server/logging/steering"
)

const (
	rescueNPCID    = "npc-1"
	rescuePlayerID = "player-1"
)

// RescueConfig tunes the rescue scenario.
type RescueConfig struct {
	Tuning      state.Tuning
	StepSeconds float64
	Avoidance   ai.AvoidanceStrategy
}

// RescueEngine runs the rescue scenario: an autonomous NPC and a
// click-driven player share one victim collection.
type RescueEngine struct {
	cfg   RescueConfig
	deps  Deps
	world *worldpkg.World

	npcController    *ai.RescueController
	playerController *ai.PlayerController

	npc    *state.NPCState
	player *state.PlayerState
	tuning state.Tuning
	tick   uint64

	announced bool
}

// NewRescueEngine wires the controllers around w.
func NewRescueEngine(w *worldpkg.World, cfg RescueConfig, deps Deps) (*RescueEngine, error) {
	if w == nil {
		return nil, errors.New("rescue engine requires a world")
	}
	if !cfg.Tuning.Valid() {
		return nil, fmt.Errorf("rescue engine: invalid tuning %+v", cfg.Tuning)
	}
	if cfg.StepSeconds <= 0 {
		return nil, errors.New("rescue engine requires a positive step")
	}

	rng := deps.RNG
	if rng == nil {
		rng = w.SubsystemRNG("avoidance")
	}
	avoider, err := ai.NewAvoider(cfg.Avoidance, rng)
	if err != nil {
		return nil, err
	}
	npcController, err := ai.NewRescueController(ai.RescueConfig{Env: w, Avoider: avoider, Publisher: deps.publisher()})
	if err != nil {
		return nil, err
	}
	playerController, err := ai.NewPlayerController(w, deps.publisher())
	if err != nil {
		return nil, err
	}

	engine := &RescueEngine{
		cfg:              cfg,
		deps:             deps,
		world:            w,
		npcController:    npcController,
		playerController: playerController,
		tuning:           cfg.Tuning,
	}
	engine.resetActors()
	return engine, nil
}

func (e *RescueEngine) resetActors() {
	spawns := e.world.Spawns()
	e.npc = state.NewNPCState(rescueNPCID, spawns.NPC)
	e.player = &state.PlayerState{Actor: state.Actor{
		ID:        rescuePlayerID,
		Kind:      state.EntityKindPlayer,
		Facing:    state.DefaultFacing,
		Kinematic: state.Kinematic{Position: spawns.Player},
	}}
	e.announced = false
}

// Deps returns the injected dependencies.
func (e *RescueEngine) Deps() Deps { return e.deps }

// Scenario implements EngineCore.
func (e *RescueEngine) Scenario() string { return ScenarioRescue }

// World exposes the underlying world.
func (e *RescueEngine) World() *worldpkg.World { return e.world }

// NPC exposes the live NPC record. Callers must not retain it across ticks.
func (e *RescueEngine) NPC() *state.NPCState { return e.npc }

// Player exposes the live player record. Callers must not retain it across ticks.
func (e *RescueEngine) Player() *state.PlayerState { return e.player }

// Done implements EngineCore: every victim has been delivered.
func (e *RescueEngine) Done() bool {
	return e.world.Victims().Len() == 0 && !e.npc.CarryingVictim() && e.player.Carrying == nil
}

// Validate implements Engine.
func (e *RescueEngine) Validate(cmd Command) string {
	if reason := validateShape(cmd); reason != "" {
		return reason
	}
	switch cmd.Type {
	case CommandTarget:
		if !e.world.Field().Valid(cmd.Target.Position) {
			return CommandRejectBlockedTarget
		}
	case CommandBehavior:
		return CommandRejectUnknownCommand
	}
	return ""
}

// Apply implements Engine.
func (e *RescueEngine) Apply(ctx context.Context, cmds []Command) error {
	var errs []error
	for _, cmd := range cmds {
		if reason := e.Validate(cmd); reason != "" {
			errs = append(errs, fmt.Errorf("%s command: %s", cmd.Type, reason))
			continue
		}
		switch cmd.Type {
		case CommandTarget:
			if err := e.playerController.SetTarget(e.player, cmd.Target.Position); err != nil {
				steeringlog.TargetRejected(ctx, e.deps.publisher(), e.tick, actorRef(&e.player.Actor), steeringlog.TargetRejectedPayload{
					X: cmd.Target.Position.X, Y: cmd.Target.Position.Y, Reason: CommandRejectBlockedTarget,
				}, nil)
				errs = append(errs, err)
			}
		case CommandTuning:
			e.tuning = cmd.Tuning.Tuning()
		case CommandReset:
			e.world.ResetVictims(ctx, e.tick)
			e.resetActors()
		}
	}
	return errors.Join(errs...)
}

// Step implements Engine: the NPC moves first, then the player.
func (e *RescueEngine) Step(ctx context.Context, tick uint64) {
	e.tick = tick
	step := ai.Step{Tick: tick, Tuning: e.tuning, DT: e.cfg.StepSeconds}

	npcOutcome := e.npcController.Update(ctx, e.npc, step)
	playerOutcome := e.playerController.Update(ctx, e.player, step)

	if e.deps.Metrics != nil {
		if npcOutcome.Delivered != nil || playerOutcome.Delivered != nil {
			e.deps.Metrics.Add("rescue_delivered_total", 1)
		}
		if npcOutcome.Stuck {
			e.deps.Metrics.Add("rescue_npc_stuck_total", 1)
		}
	}

	if !e.announced && e.Done() {
		e.announced = true
		rescuelog.AllRescued(ctx, e.deps.publisher(), tick, rescuelog.AllRescuedPayload{Rescued: e.rescued()}, nil)
	}
}

func (e *RescueEngine) rescued() int {
	return e.npc.Rescued + e.player.Rescued
}

// Snapshot implements Engine.
func (e *RescueEngine) Snapshot() Snapshot {
	npc := e.npc.Snapshot()
	player := e.player.Snapshot()
	victims := e.world.Victims().Snapshot()
	return Snapshot{
		Scenario:  ScenarioRescue,
		Tick:      e.tick,
		Tuning:    e.tuning,
		NPC:       &npc,
		Player:    &player,
		Victims:   victims,
		Rescued:   e.rescued(),
		Remaining: len(victims),
	}
}

// Layout implements Engine.
func (e *RescueEngine) Layout() WorldLayout {
	width, height := e.world.Dimensions()
	graph := e.world.Graph()
	return WorldLayout{
		Scenario:  ScenarioRescue,
		Width:     width,
		Height:    height,
		Obstacles: e.world.Field().Obstacles(),
		Hospitals: e.world.Hospitals(),
		Waypoints: graph.Nodes(),
		Edges:     graph.Edges(),
	}
}
