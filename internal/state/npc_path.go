package state

// NPCPathState tracks the path-following metadata for a single NPC.
type NPCPathState struct {
	Path      []Vec2
	PathIndex int
}

// Clear drops the current path.
func (p *NPCPathState) Clear() {
	p.Path = nil
	p.PathIndex = 0
}

// Assign replaces the current path and rewinds the cursor.
func (p *NPCPathState) Assign(path []Vec2) {
	p.Path = append([]Vec2(nil), path...)
	p.PathIndex = 0
}

// Current returns the waypoint the NPC is steering toward. Once the cursor
// runs past the end the final node is returned so the NPC keeps homing in on
// its goal.
func (p *NPCPathState) Current() (Vec2, bool) {
	if len(p.Path) == 0 {
		return Vec2{}, false
	}
	if p.PathIndex >= len(p.Path) {
		return p.Path[len(p.Path)-1], true
	}
	if p.PathIndex < 0 {
		p.PathIndex = 0
	}
	return p.Path[p.PathIndex], true
}
