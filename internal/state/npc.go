package state

// NPCMode enumerates the rescue NPC state machine states.
type NPCMode string

const (
	NPCModeSearching  NPCMode = "searching"
	NPCModeDelivering NPCMode = "delivering"
)

// NPCState is the rescue NPC record. It is mutated exclusively by the rescue
// controller.
type NPCState struct {
	Actor
	Mode     NPCMode
	Carrying *Vec2
	Target   *Vec2
	Rescued  int
	Stuck    bool
	NPCPathState
}

// NPC is the serialized view of an NPCState.
type NPC struct {
	Actor
	Mode      NPCMode `json:"mode"`
	Carrying  *Vec2   `json:"carrying,omitempty"`
	Target    *Vec2   `json:"target,omitempty"`
	Path      []Vec2  `json:"path,omitempty"`
	PathIndex int     `json:"pathIndex"`
	Rescued   int     `json:"rescued"`
	Stuck     bool    `json:"stuck,omitempty"`
}

// NewNPCState builds a searching NPC at the given position.
func NewNPCState(id string, position Vec2) *NPCState {
	return &NPCState{
		Actor: Actor{
			ID:        id,
			Kind:      EntityKindNPC,
			Facing:    DefaultFacing,
			Kinematic: Kinematic{Position: position},
		},
		Mode: NPCModeSearching,
	}
}

// CarryingVictim reports whether the NPC currently transports a victim.
func (s *NPCState) CarryingVictim() bool {
	return s != nil && s.Carrying != nil
}

// Snapshot returns a sanitized NPC snapshot for serialization.
func (s *NPCState) Snapshot() NPC {
	actor := s.Actor
	if actor.Facing == "" {
		actor.Facing = DefaultFacing
	}
	return NPC{
		Actor:     actor,
		Mode:      s.Mode,
		Carrying:  cloneVec(s.Carrying),
		Target:    cloneVec(s.Target),
		Path:      append([]Vec2(nil), s.Path...),
		PathIndex: s.PathIndex,
		Rescued:   s.Rescued,
		Stuck:     s.Stuck,
	}
}
