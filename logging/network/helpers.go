package network

import (
	"context"

	"rescue-sim/server/logging"
)

// EventCommandRejected is emitted when an inbound client command is refused.
const EventCommandRejected logging.EventType = "network.command_rejected"

// CommandRejectedPayload captures the refused command and the reason.
type CommandRejectedPayload struct {
	Command string `json:"command"`
	Reason  string `json:"reason"`
	Seq     uint64 `json:"seq,omitempty"`
}

// CommandRejected publishes a warning when a client command is refused.
func CommandRejected(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload CommandRejectedPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	event := logging.Event{
		Type:     EventCommandRejected,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityWarn,
		Category: logging.CategoryNetwork,
		Payload:  payload,
		Extra:    extra,
	}
	pub.Publish(ctx, event)
}
