package rescue

import (
	"context"

	"rescue-sim/server/logging"
)

const (
	// EventVictimPickedUp is emitted when an actor claims a victim.
	EventVictimPickedUp logging.EventType = "rescue.victim_picked_up"
	// EventVictimDelivered is emitted when an actor drops a victim at a hospital.
	EventVictimDelivered logging.EventType = "rescue.victim_delivered"
	// EventNPCStuck is emitted when obstacle avoidance could not find a valid move.
	EventNPCStuck logging.EventType = "rescue.npc_stuck"
	// EventNPCRetargeted is emitted when the NPC picks a new goal.
	EventNPCRetargeted logging.EventType = "rescue.npc_retargeted"
	// EventAllRescued is emitted once the victim collection empties.
	EventAllRescued logging.EventType = "rescue.all_rescued"
	// EventVictimsSpawned is emitted when a reset scatters a new victim set.
	EventVictimsSpawned logging.EventType = "rescue.victims_spawned"
)

// VictimPayload locates the victim involved in a pickup or delivery.
type VictimPayload struct {
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Rescued int     `json:"rescued,omitempty"`
}

// StuckPayload captures where avoidance gave up and which strategy ran.
type StuckPayload struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Strategy string  `json:"strategy"`
}

// RetargetPayload captures the new NPC goal.
type RetargetPayload struct {
	Mode    string  `json:"mode"`
	TargetX float64 `json:"targetX"`
	TargetY float64 `json:"targetY"`
	Hops    int     `json:"hops"`
	Reason  string  `json:"reason,omitempty"`
}

// AllRescuedPayload summarises a completed run.
type AllRescuedPayload struct {
	Rescued int `json:"rescued"`
}

// VictimPickedUp publishes a pickup event.
func VictimPickedUp(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload VictimPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventVictimPickedUp,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryGameplay,
		Payload:  payload,
		Extra:    extra,
	})
}

// VictimDelivered publishes a delivery event.
func VictimDelivered(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload VictimPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventVictimDelivered,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryGameplay,
		Payload:  payload,
		Extra:    extra,
	})
}

// NPCStuck publishes a warning when avoidance failed to resolve a blocked move.
func NPCStuck(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload StuckPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventNPCStuck,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityWarn,
		Category: logging.CategoryGameplay,
		Payload:  payload,
		Extra:    extra,
	})
}

// NPCRetargeted publishes a debug event when the NPC chooses a new goal.
func NPCRetargeted(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload RetargetPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventNPCRetargeted,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityDebug,
		Category: logging.CategoryGameplay,
		Payload:  payload,
		Extra:    extra,
	})
}

// AllRescued publishes the completion event.
func AllRescued(ctx context.Context, pub logging.Publisher, tick uint64, payload AllRescuedPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventAllRescued,
		Tick:     tick,
		Actor:    logging.EntityRef{ID: "world", Kind: logging.EntityKindWorld},
		Severity: logging.SeverityInfo,
		Category: logging.CategoryGameplay,
		Payload:  payload,
		Extra:    extra,
	})
}

// VictimsSpawnedPayload reports a fresh victim scatter.
type VictimsSpawnedPayload struct {
	Count int    `json:"count"`
	Seed  string `json:"seed"`
}

// VictimsSpawned publishes the event raised when a reset scatters new victims.
func VictimsSpawned(ctx context.Context, pub logging.Publisher, tick uint64, payload VictimsSpawnedPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventVictimsSpawned,
		Tick:     tick,
		Actor:    logging.EntityRef{ID: "world", Kind: logging.EntityKindWorld},
		Severity: logging.SeverityInfo,
		Category: logging.CategoryGameplay,
		Payload:  payload,
		Extra:    extra,
	})
}
