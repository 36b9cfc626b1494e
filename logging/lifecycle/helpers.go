package lifecycle

import (
	"context"

	"rescue-sim/server/logging"
)

const (
	// EventSubscriberJoined is emitted when a viewer subscribes to simulation updates.
	EventSubscriberJoined logging.EventType = "lifecycle.subscriber_joined"
	// EventSubscriberLeft is emitted when a viewer disconnects.
	EventSubscriberLeft logging.EventType = "lifecycle.subscriber_left"
)

// SubscriberJoinedPayload captures connection metadata for a new subscriber.
type SubscriberJoinedPayload struct {
	Format     string `json:"format"`
	RemoteAddr string `json:"remoteAddr,omitempty"`
}

// SubscriberLeftPayload captures the reason a subscriber left.
type SubscriberLeftPayload struct {
	Reason string `json:"reason"`
}

// SubscriberJoined publishes a subscriber join event.
func SubscriberJoined(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload SubscriberJoinedPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	event := logging.Event{
		Type:     EventSubscriberJoined,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: "lifecycle",
		Payload:  payload,
		Extra:    extra,
	}
	pub.Publish(ctx, event)
}

// SubscriberLeft publishes a subscriber disconnect event.
func SubscriberLeft(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload SubscriberLeftPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	event := logging.Event{
		Type:     EventSubscriberLeft,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: "lifecycle",
		Payload:  payload,
		Extra:    extra,
	}
	pub.Publish(ctx, event)
}
