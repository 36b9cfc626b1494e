package steering

import (
	"context"

	"rescue-sim/server/logging"
)

const (
	// EventBehaviorSelected is emitted when the steering scenario switches behavior.
	EventBehaviorSelected logging.EventType = "steering.behavior_selected"
	// EventTargetRejected is emitted when a requested target lands inside an obstacle or off the map.
	EventTargetRejected logging.EventType = "steering.target_rejected"
)

// BehaviorSelectedPayload names the newly active behavior.
type BehaviorSelectedPayload struct {
	Behavior string `json:"behavior"`
	Previous string `json:"previous,omitempty"`
}

// TargetRejectedPayload captures the refused target position.
type TargetRejectedPayload struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Reason string  `json:"reason"`
}

// BehaviorSelected publishes a behavior switch.
func BehaviorSelected(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload BehaviorSelectedPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventBehaviorSelected,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryGameplay,
		Payload:  payload,
		Extra:    extra,
	})
}

// TargetRejected publishes a warning for a refused target.
func TargetRejected(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload TargetRejectedPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventTargetRejected,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityWarn,
		Category: logging.CategoryGameplay,
		Payload:  payload,
		Extra:    extra,
	})
}
