package sim

import (
	"time"

	state "rescue-sim/server/internal/state"
)

// CommandType enumerates the supported simulation commands.
type CommandType string

const (
	CommandTarget   CommandType = "target"
	CommandBehavior CommandType = "behavior"
	CommandTuning   CommandType = "tuning"
	CommandReset    CommandType = "reset"
)

// Rejection reasons surfaced to clients.
const (
	CommandRejectBlockedTarget   = "blocked_target"
	CommandRejectUnknownBehavior = "unknown_behavior"
	CommandRejectInvalidTuning   = "invalid_tuning"
	CommandRejectUnknownCommand  = "unknown_command"
)

// TargetCommand moves the click target. Velocity feeds Pursuit and Evade.
type TargetCommand struct {
	Position state.Vec2 `json:"position"`
	Velocity state.Vec2 `json:"velocity"`
}

// BehaviorCommand selects a steering behavior by display name.
type BehaviorCommand struct {
	Name string `json:"name"`
}

// TuningCommand replaces the speed and force limits.
type TuningCommand struct {
	MaxSpeed float64 `json:"maxSpeed"`
	MaxForce float64 `json:"maxForce"`
}

// Tuning converts the command to the shared tuning record.
func (c TuningCommand) Tuning() state.Tuning {
	return state.Tuning{MaxSpeed: c.MaxSpeed, MaxForce: c.MaxForce}
}

// Command represents an intent captured for processing on the next tick.
type Command struct {
	OriginTick uint64           `json:"originTick"`
	ActorID    string           `json:"actorId"`
	Type       CommandType      `json:"type"`
	IssuedAt   time.Time        `json:"issuedAt"`
	Seq        uint64           `json:"seq,omitempty"`
	Target     *TargetCommand   `json:"target,omitempty"`
	Behavior   *BehaviorCommand `json:"behavior,omitempty"`
	Tuning     *TuningCommand   `json:"tuning,omitempty"`
}

// validateShape catches commands missing the payload their type requires.
func validateShape(cmd Command) string {
	switch cmd.Type {
	case CommandTarget:
		if cmd.Target == nil {
			return CommandRejectUnknownCommand
		}
	case CommandBehavior:
		if cmd.Behavior == nil {
			return CommandRejectUnknownBehavior
		}
	case CommandTuning:
		if cmd.Tuning == nil || !cmd.Tuning.Tuning().Valid() {
			return CommandRejectInvalidTuning
		}
	case CommandReset:
	default:
		return CommandRejectUnknownCommand
	}
	return ""
}
