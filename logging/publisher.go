package logging

import (
	"context"
	"time"
)

// EventType names an event, namespaced by domain ("rescue.victim_delivered").
type EventType string

// Severity orders events for sink filtering.
type Severity int

const (
	SeverityDebug Severity = iota
	SeverityInfo
	SeverityWarn
	SeverityError
)

// EntityKind classifies the actor an event is about.
type EntityKind string

const (
	EntityKindPlayer EntityKind = "player"
	EntityKindNPC    EntityKind = "npc"
	EntityKindAgent  EntityKind = "agent"
	EntityKindWorld  EntityKind = "world"
)

// Event categories.
const (
	CategoryGameplay = "gameplay"
	CategoryNetwork  = "network"
	CategorySystem   = "system"
)

// EntityRef identifies the actor or target of an event.
type EntityRef struct {
	ID   string     `json:"id"`
	Kind EntityKind `json:"kind"`
}

// Event is a single structured simulation or transport occurrence. Payload
// holds the domain struct; Extra carries loose context such as the scenario.
type Event struct {
	Type      EventType      `json:"type"`
	Tick      uint64         `json:"tick"`
	Time      time.Time      `json:"time"`
	Actor     EntityRef      `json:"actor"`
	Targets   []EntityRef    `json:"targets,omitempty"`
	Severity  Severity       `json:"severity"`
	Category  string         `json:"category,omitempty"`
	Payload   any            `json:"payload,omitempty"`
	Extra     map[string]any `json:"extra,omitempty"`
	TraceID   string         `json:"traceId,omitempty"`
	CommandID string         `json:"commandId,omitempty"`
}

// Clone returns a copy of e whose Targets and Extra no longer alias the
// original. Payload is shared.
func (e Event) Clone() Event {
	out := e
	if len(e.Targets) > 0 {
		out.Targets = append([]EntityRef(nil), e.Targets...)
	}
	if e.Extra != nil {
		out.Extra = make(map[string]any, len(e.Extra))
		for k, v := range e.Extra {
			out.Extra[k] = v
		}
	}
	return out
}

// Publisher accepts events. Implementations must not block the caller for
// long; the simulation publishes from inside the tick.
type Publisher interface {
	Publish(ctx context.Context, event Event)
}

// PublisherFunc adapts a function to Publisher.
type PublisherFunc func(ctx context.Context, event Event)

func (f PublisherFunc) Publish(ctx context.Context, event Event) {
	if f != nil {
		f(ctx, event)
	}
}

// NopPublisher discards every event.
func NopPublisher() Publisher {
	return PublisherFunc(func(context.Context, Event) {})
}

type decorated struct {
	next   Publisher
	fields map[string]any
}

func (d decorated) Publish(ctx context.Context, event Event) {
	event = event.Clone()
	if event.Extra == nil {
		event.Extra = make(map[string]any, len(d.fields))
	}
	for k, v := range d.fields {
		if _, set := event.Extra[k]; !set {
			event.Extra[k] = v
		}
	}
	d.next.Publish(ctx, event)
}

// WithFields wraps p so every event carries fields in Extra. Keys the event
// already sets win.
func WithFields(p Publisher, fields map[string]any) Publisher {
	if p == nil {
		return NopPublisher()
	}
	if len(fields) == 0 {
		return p
	}
	copied := make(map[string]any, len(fields))
	for k, v := range fields {
		copied[k] = v
	}
	return decorated{next: p, fields: copied}
}
