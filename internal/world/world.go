package world

import (
	"context"
	"fmt"
	"math/rand"

	"rescue-sim/server/logging"
	rescuelog "rescue-sim/server/logging/rescue"
)

// RNGFactory produces deterministic RNG instances for world subsystems.
type RNGFactory func(rootSeed, label string) *rand.Rand

// Deps bundles runtime dependencies required to construct a World instance.
type Deps struct {
	Publisher logging.Publisher
	RNG       RNGFactory
	// Layout overrides the bundled layout named by Config.Layout.
	Layout *Layout
}

// World owns the static map (obstacles, hospitals, waypoint graph) and the
// mutable victim collection shared by the rescue actors.
type World struct {
	config Config
	seed   string

	publisher  logging.Publisher
	rngFactory RNGFactory

	layout  Layout
	field   *ObstacleField
	graph   *WaypointGraph
	victims *VictimSet
}

// New constructs a world instance with normalized configuration and seeded RNG.
func New(cfg Config, deps Deps) (*World, error) {
	normalized := cfg.normalized()

	factory := deps.RNG
	if factory == nil {
		factory = NewDeterministicRNG
	}

	publisher := deps.Publisher
	if publisher == nil {
		publisher = logging.NopPublisher()
	}

	var layout Layout
	if deps.Layout != nil {
		layout = *deps.Layout
		if err := layout.Validate(); err != nil {
			return nil, fmt.Errorf("layout %q: %w", layout.Name, err)
		}
	} else {
		loaded, err := LoadLayout(normalized.Layout)
		if err != nil {
			return nil, err
		}
		layout = loaded
	}

	graph, err := layout.Graph()
	if err != nil {
		return nil, fmt.Errorf("build waypoint graph: %w", err)
	}

	world := &World{
		config:     normalized,
		seed:       normalized.Seed,
		publisher:  publisher,
		rngFactory: factory,
		layout:     layout,
		graph:      graph,
		victims:    NewVictimSet(nil),
	}

	obstacles := append([]Obstacle(nil), layout.Obstacles...)
	obstacles = append(obstacles, GenerateGridObstacles(world, layout.Grid, layout.Anchors())...)
	world.field = NewBoundedObstacleField(obstacles, normalized.Width, normalized.Height)

	world.victims.Replace(world.spawnVictims())
	return world, nil
}

// Config returns the normalized configuration captured at construction time.
func (w *World) Config() Config {
	if w == nil {
		return Config{}
	}
	return w.config
}

// Dimensions reports the world width and height.
func (w *World) Dimensions() (float64, float64) {
	if w == nil {
		return DefaultWidth, DefaultHeight
	}
	return Dimensions(w.config)
}

// SubsystemRNG returns a deterministic RNG derived from the world seed.
func (w *World) SubsystemRNG(label string) *rand.Rand {
	if w == nil {
		return NewDeterministicRNG(DefaultSeed, label)
	}
	seed := w.seed
	if seed == "" {
		seed = DefaultSeed
	}
	return w.ensureFactory()(seed, label)
}

func (w *World) ensureFactory() RNGFactory {
	if w == nil || w.rngFactory == nil {
		return NewDeterministicRNG
	}
	return w.rngFactory
}

// Layout returns the static layout the world was built from.
func (w *World) Layout() Layout {
	if w == nil {
		return Layout{}
	}
	return w.layout
}

// Field returns the obstacle field.
func (w *World) Field() *ObstacleField {
	if w == nil {
		return nil
	}
	return w.field
}

// Graph returns the waypoint graph.
func (w *World) Graph() *WaypointGraph {
	if w == nil {
		return nil
	}
	return w.graph
}

// Hospitals returns the fixed drop-off points.
func (w *World) Hospitals() []Vec2 {
	if w == nil {
		return nil
	}
	return append([]Vec2(nil), w.layout.Hospitals...)
}

// IsHospital reports whether p is one of the drop-off points.
func (w *World) IsHospital(p Vec2) bool {
	if w == nil {
		return false
	}
	for _, h := range w.layout.Hospitals {
		if h == p {
			return true
		}
	}
	return false
}

// ClosestHospital returns the drop-off point nearest to p.
func (w *World) ClosestHospital(p Vec2) (Vec2, bool) {
	if w == nil {
		return Vec2{}, false
	}
	return ClosestPoint(w.layout.Hospitals, p)
}

// Victims returns the shared victim collection.
func (w *World) Victims() *VictimSet {
	if w == nil {
		return nil
	}
	return w.victims
}

// ResetVictims scatters a fresh set of victims using the world seed. The same
// seed always reproduces the same victims.
func (w *World) ResetVictims(ctx context.Context, tick uint64) {
	if w == nil {
		return
	}
	victims := w.spawnVictims()
	w.victims.Replace(victims)
	rescuelog.VictimsSpawned(ctx, w.publisher, tick, rescuelog.VictimsSpawnedPayload{Count: len(victims), Seed: w.seed}, nil)
}

func (w *World) spawnVictims() []Vec2 {
	avoid := append(w.Hospitals(), w.layout.Spawns.NPC, w.layout.Spawns.Player)
	return SpawnVictims(w, w.config.VictimCount, avoid)
}

// Spawns returns the starting positions of the rescue actors.
func (w *World) Spawns() Spawns {
	if w == nil {
		return Spawns{}
	}
	return w.layout.Spawns
}

// FindPath plans a route over the waypoint graph.
func (w *World) FindPath(start, end Vec2) []Vec2 {
	if w == nil || w.graph == nil {
		return []Vec2{start, end}
	}
	return w.graph.FindPath(start, end)
}
