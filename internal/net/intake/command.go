package intake

import (
	"time"

	"rescue-sim/server/internal/net/proto"
	"rescue-sim/server/internal/sim"
)

// Enqueuer accepts staged commands. *sim.Loop satisfies it.
type Enqueuer interface {
	Enqueue(sim.Command) (bool, string)
}

type CommandContext struct {
	Engine Enqueuer
	Tick   func() uint64
	Now    func() time.Time
}

// StageClientCommand converts msg into a simulation command on behalf of
// actorID and queues it for the next tick. The reject reason is empty when
// the command was accepted.
func StageClientCommand(ctx CommandContext, actorID string, msg proto.ClientMessage) (sim.Command, bool, string) {
	var zero sim.Command

	command, ok := proto.ClientCommand(msg)
	if !ok {
		if msg.Type == proto.TypeBehavior {
			return zero, false, sim.CommandRejectUnknownBehavior
		}
		return zero, false, sim.CommandRejectUnknownCommand
	}

	command.ActorID = actorID
	command.Seq = msg.Seq()
	if ctx.Tick != nil {
		command.OriginTick = ctx.Tick()
	}
	if ctx.Now != nil {
		command.IssuedAt = ctx.Now()
	} else {
		command.IssuedAt = time.Now()
	}

	if ctx.Engine == nil {
		return zero, false, sim.CommandRejectQueueFull
	}
	if ok, reason := ctx.Engine.Enqueue(command); !ok {
		return zero, false, reason
	}

	return command, true, ""
}
