package world

import "sync"

// VictimSet is the shared collection of victims awaiting rescue. Removal is
// idempotent so two actors reaching the same victim in one tick cannot both
// claim it.
type VictimSet struct {
	mu      sync.RWMutex
	victims []Vec2
}

// NewVictimSet copies the provided positions into a new set.
func NewVictimSet(victims []Vec2) *VictimSet {
	return &VictimSet{victims: append([]Vec2(nil), victims...)}
}

// Len reports the number of victims remaining.
func (s *VictimSet) Len() int {
	if s == nil {
		return 0
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.victims)
}

// Contains reports whether v is still waiting for rescue.
func (s *VictimSet) Contains(v Vec2) bool {
	if s == nil {
		return false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.indexOf(v) >= 0
}

// Remove claims v. It returns false when v was already gone.
func (s *VictimSet) Remove(v Vec2) bool {
	if s == nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.indexOf(v)
	if idx < 0 {
		return false
	}
	s.victims = append(s.victims[:idx], s.victims[idx+1:]...)
	return true
}

// Closest returns the remaining victim nearest to pos.
func (s *VictimSet) Closest(pos Vec2) (Vec2, bool) {
	if s == nil {
		return Vec2{}, false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return closestPoint(s.victims, pos)
}

// ClosestWithin returns the nearest victim strictly closer than radius.
func (s *VictimSet) ClosestWithin(pos Vec2, radius float64) (Vec2, bool) {
	victim, ok := s.Closest(pos)
	if !ok || pos.DistanceTo(victim) >= radius {
		return Vec2{}, false
	}
	return victim, true
}

// Snapshot returns a copy of the remaining victims.
func (s *VictimSet) Snapshot() []Vec2 {
	if s == nil {
		return nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Vec2(nil), s.victims...)
}

// Replace swaps the whole collection, used when the world is reset.
func (s *VictimSet) Replace(victims []Vec2) {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.victims = append([]Vec2(nil), victims...)
}

func (s *VictimSet) indexOf(v Vec2) int {
	for i, candidate := range s.victims {
		if candidate == v {
			return i
		}
	}
	return -1
}

func closestPoint(points []Vec2, pos Vec2) (Vec2, bool) {
	if len(points) == 0 {
		return Vec2{}, false
	}
	best := points[0]
	bestDist := pos.DistanceTo(best)
	for _, candidate := range points[1:] {
		if d := pos.DistanceTo(candidate); d < bestDist {
			best = candidate
			bestDist = d
		}
	}
	return best, true
}

// ClosestPoint returns the element of points nearest to pos.
func ClosestPoint(points []Vec2, pos Vec2) (Vec2, bool) {
	return closestPoint(points, pos)
}
