package world

import "math/rand"

const (
	victimSpawnMargin   = 20.0
	victimSpawnAttempts = 200
)

// VictimSpawner exposes the world surface needed to scatter victims.
type VictimSpawner interface {
	Dimensions() (float64, float64)
	SubsystemRNG(label string) *rand.Rand
	Field() *ObstacleField
}

// SpawnVictims places up to count victims at random valid positions. Each
// victim gets a bounded number of attempts; fewer victims are returned when
// the map is too crowded.
func SpawnVictims(spawner VictimSpawner, count int, avoid []Vec2) []Vec2 {
	if spawner == nil || count <= 0 {
		return nil
	}

	width, height := spawner.Dimensions()
	field := spawner.Field()
	rng := spawner.SubsystemRNG("victims")

	victims := make([]Vec2, 0, count)
	for len(victims) < count {
		placed := false
		for attempt := 0; attempt < victimSpawnAttempts; attempt++ {
			candidate := RandomPoint(rng, width, height, victimSpawnMargin)
			if !field.Valid(candidate) {
				continue
			}
			if tooClose(candidate, avoid, DefaultClearance*2) || tooClose(candidate, victims, DefaultClearance*2) {
				continue
			}
			victims = append(victims, candidate)
			placed = true
			break
		}
		if !placed {
			break
		}
	}
	return victims
}

func tooClose(p Vec2, others []Vec2, radius float64) bool {
	for _, other := range others {
		if p.DistanceTo(other) < radius {
			return true
		}
	}
	return false
}
