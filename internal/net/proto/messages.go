package proto

import (
	"fmt"
	"time"

	jsoniter "github.com/json-iterator/go"
	protobuf "google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"rescue-sim/server/internal/sim"
	state "rescue-sim/server/internal/state"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	// Version tracks the wire-protocol revision expected by clients.
	Version = 1

	typeWorld         = "world"
	typeState         = "state"
	typeCommandAck    = "commandAck"
	typeCommandReject = "commandReject"
	typeHeartbeat     = "heartbeat"
)

// Client message type identifiers.
const (
	TypeTarget    = "target"
	TypeBehavior  = "behavior"
	TypeTuning    = "tuning"
	TypeReset     = "reset"
	TypeHeartbeat = "heartbeat"
)

// Exported aliases for outbound message type identifiers.
const (
	TypeWorld         = typeWorld
	TypeState         = typeState
	TypeCommandAck    = typeCommandAck
	TypeCommandReject = typeCommandReject
)

// Format selects how frames are written to a subscriber.
type Format string

const (
	FormatJSON  Format = "json"
	FormatProto Format = "proto"
)

// ParseFormat maps the ?format= query value onto a Format.
func ParseFormat(value string) (Format, error) {
	switch Format(value) {
	case "", FormatJSON:
		return FormatJSON, nil
	case FormatProto:
		return FormatProto, nil
	default:
		return "", fmt.Errorf("unsupported frame format %q", value)
	}
}

// ClientMessage is every field any inbound message may carry.
type ClientMessage struct {
	Ver        int     `json:"ver,omitempty"`
	Type       string  `json:"type"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	VX         float64 `json:"vx"`
	VY         float64 `json:"vy"`
	Behavior   string  `json:"behavior"`
	MaxSpeed   float64 `json:"maxSpeed"`
	MaxForce   float64 `json:"maxForce"`
	SentAt     int64   `json:"sentAt"`
	CommandSeq *uint64 `json:"seq,omitempty"`
}

// Seq reports the client sequence number, or zero when absent.
func (m ClientMessage) Seq() uint64 {
	if m.CommandSeq == nil {
		return 0
	}
	return *m.CommandSeq
}

// DecodeClientMessage converts raw websocket payloads into a structured message.
func DecodeClientMessage(payload []byte) (ClientMessage, error) {
	var msg ClientMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		return msg, err
	}
	if msg.Ver == 0 {
		msg.Ver = Version
	}
	if msg.Ver != Version {
		return msg, fmt.Errorf("unsupported client protocol version %d", msg.Ver)
	}
	return msg, nil
}

// ClientCommand captures the simulation command carried by a websocket
// message. Origin metadata is populated by the intake when the command is
// accepted.
func ClientCommand(msg ClientMessage) (sim.Command, bool) {
	switch msg.Type {
	case TypeTarget:
		return sim.Command{
			Type: sim.CommandTarget,
			Target: &sim.TargetCommand{
				Position: state.Vec2{X: msg.X, Y: msg.Y},
				Velocity: state.Vec2{X: msg.VX, Y: msg.VY},
			},
		}, true
	case TypeBehavior:
		if msg.Behavior == "" {
			return sim.Command{}, false
		}
		return sim.Command{
			Type:     sim.CommandBehavior,
			Behavior: &sim.BehaviorCommand{Name: msg.Behavior},
		}, true
	case TypeTuning:
		return sim.Command{
			Type:   sim.CommandTuning,
			Tuning: &sim.TuningCommand{MaxSpeed: msg.MaxSpeed, MaxForce: msg.MaxForce},
		}, true
	case TypeReset:
		return sim.Command{Type: sim.CommandReset}, true
	default:
		return sim.Command{}, false
	}
}

// WorldMessage is sent once when a subscriber connects.
type WorldMessage struct {
	Ver  int    `json:"ver"`
	Type string `json:"type"`
	ID   string `json:"id"`
	sim.WorldLayout
}

// NewWorldMessage wraps layout for subscriber id.
func NewWorldMessage(id string, layout sim.WorldLayout) WorldMessage {
	return WorldMessage{Ver: Version, Type: typeWorld, ID: id, WorldLayout: layout}
}

// StateMessage carries one tick of simulation output.
type StateMessage struct {
	Ver        int    `json:"ver"`
	Type       string `json:"type"`
	ServerTime int64  `json:"serverTime"`
	sim.Snapshot
}

// NewStateMessage stamps snapshot with the server clock.
func NewStateMessage(snapshot sim.Snapshot, now time.Time) StateMessage {
	return StateMessage{Ver: Version, Type: typeState, ServerTime: now.UnixMilli(), Snapshot: snapshot}
}

// CommandAck acknowledges an accepted command.
type CommandAck struct {
	Ver  int    `json:"ver"`
	Type string `json:"type"`
	Seq  uint64 `json:"seq"`
	Tick uint64 `json:"tick,omitempty"`
}

func NewCommandAck(seq, tick uint64) CommandAck {
	return CommandAck{Ver: Version, Type: typeCommandAck, Seq: seq, Tick: tick}
}

// CommandReject notifies the client that a command was refused.
type CommandReject struct {
	Ver    int    `json:"ver"`
	Type   string `json:"type"`
	Seq    uint64 `json:"seq"`
	Reason string `json:"reason"`
	Retry  bool   `json:"retry,omitempty"`
}

func NewCommandReject(seq uint64, reason string, retry bool) CommandReject {
	return CommandReject{Ver: Version, Type: typeCommandReject, Seq: seq, Reason: reason, Retry: retry}
}

// Heartbeat echoes timing metadata back to the client.
type Heartbeat struct {
	Ver        int    `json:"ver"`
	Type       string `json:"type"`
	ServerTime int64  `json:"serverTime"`
	ClientTime int64  `json:"clientTime"`
	RTTMillis  int64  `json:"rtt"`
}

func NewHeartbeat(now time.Time, clientSent int64) Heartbeat {
	msg := Heartbeat{Ver: Version, Type: typeHeartbeat, ServerTime: now.UnixMilli(), ClientTime: clientSent}
	if clientSent > 0 {
		if rtt := now.UnixMilli() - clientSent; rtt > 0 {
			msg.RTTMillis = rtt
		}
	}
	return msg
}

// Encode renders msg in the requested format. JSON frames are text; proto
// frames are a binary google.protobuf.Struct mirroring the JSON document.
func Encode(format Format, msg any) ([]byte, error) {
	data, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("encode json frame: %w", err)
	}
	if format != FormatProto {
		return data, nil
	}
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("flatten frame: %w", err)
	}
	frame, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, fmt.Errorf("build proto frame: %w", err)
	}
	out, err := protobuf.Marshal(frame)
	if err != nil {
		return nil, fmt.Errorf("encode proto frame: %w", err)
	}
	return out, nil
}

// DecodeProtoFrame parses a binary frame back into a generic document.
func DecodeProtoFrame(data []byte) (map[string]any, error) {
	var frame structpb.Struct
	if err := protobuf.Unmarshal(data, &frame); err != nil {
		return nil, err
	}
	return frame.AsMap(), nil
}
