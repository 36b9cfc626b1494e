package sim

import state "rescue-sim/server/internal/state"

// Snapshot is the per-tick output of an engine.
type Snapshot struct {
	Scenario string       `json:"scenario"`
	Tick     uint64       `json:"tick"`
	Tuning   state.Tuning `json:"tuning"`

	// Steering scenario.
	Agent      *state.Actor `json:"agent,omitempty"`
	Target     *state.Actor `json:"target,omitempty"`
	Behavior   string       `json:"behavior,omitempty"`
	Route      []state.Vec2 `json:"route,omitempty"`
	RouteIndex int          `json:"routeIndex,omitempty"`

	// Rescue scenario.
	NPC       *state.NPC    `json:"npc,omitempty"`
	Player    *state.Player `json:"player,omitempty"`
	Victims   []state.Vec2  `json:"victims,omitempty"`
	Rescued   int           `json:"rescued"`
	Remaining int           `json:"remaining"`
}

// Clone returns a deep copy safe to hand to another goroutine.
func (s Snapshot) Clone() Snapshot {
	cloned := s
	if s.Agent != nil {
		agent := *s.Agent
		cloned.Agent = &agent
	}
	if s.Target != nil {
		target := *s.Target
		cloned.Target = &target
	}
	cloned.Route = append([]state.Vec2(nil), s.Route...)
	cloned.Victims = append([]state.Vec2(nil), s.Victims...)
	if s.NPC != nil {
		npc := *s.NPC
		npc.Path = append([]state.Vec2(nil), s.NPC.Path...)
		npc.Carrying = cloneVec(s.NPC.Carrying)
		npc.Target = cloneVec(s.NPC.Target)
		cloned.NPC = &npc
	}
	if s.Player != nil {
		player := *s.Player
		player.Carrying = cloneVec(s.Player.Carrying)
		player.Target = cloneVec(s.Player.Target)
		cloned.Player = &player
	}
	return cloned
}

func cloneVec(v *state.Vec2) *state.Vec2 {
	if v == nil {
		return nil
	}
	copied := *v
	return &copied
}
