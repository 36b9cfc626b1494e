package world

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rescue-sim/server/logging"
	rescuelog "rescue-sim/server/logging/rescue"
)

func newTestWorld(t *testing.T, cfg Config) *World {
	t.Helper()
	w, err := New(cfg, Deps{})
	require.NoError(t, err)
	return w
}

func TestNewWorldBuildsDefaultLayout(t *testing.T) {
	w := newTestWorld(t, DefaultConfig())

	width, height := w.Dimensions()
	assert.Equal(t, 800.0, width)
	assert.Equal(t, 600.0, height)
	assert.Equal(t, 20, w.Graph().Len())
	assert.Len(t, w.Hospitals(), 2)
	assert.LessOrEqual(t, w.Field().Len(), 12)
	assert.Positive(t, w.Field().Len())

	for _, wp := range w.Graph().Nodes() {
		assert.Truef(t, w.Field().Valid(wp), "waypoint %+v blocked", wp)
	}
	for _, h := range w.Hospitals() {
		assert.Truef(t, w.Field().Valid(h), "hospital %+v blocked", h)
		assert.True(t, w.IsHospital(h))
	}
	assert.True(t, w.Field().Valid(w.Spawns().NPC))
	assert.True(t, w.Field().Valid(w.Spawns().Player))

	victims := w.Victims().Snapshot()
	assert.Len(t, victims, DefaultVictimCount)
	for _, v := range victims {
		assert.True(t, w.Field().Valid(v))
	}
}

func TestWorldIsDeterministicPerSeed(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Seed = "replay"
	first := newTestWorld(t, cfg)
	second := newTestWorld(t, cfg)

	assert.Equal(t, first.Field().Obstacles(), second.Field().Obstacles())
	assert.Equal(t, first.Victims().Snapshot(), second.Victims().Snapshot())

	before := first.Victims().Snapshot()
	first.Victims().Remove(before[0])
	first.ResetVictims(context.Background(), 0)
	assert.Equal(t, before, first.Victims().Snapshot())
}

func TestResetVictimsPublishesSpawn(t *testing.T) {
	var events []logging.Event
	pub := logging.PublisherFunc(func(_ context.Context, event logging.Event) {
		events = append(events, event)
	})
	cfg := DefaultConfig()
	cfg.Seed = "spawn"
	w, err := New(cfg, Deps{Publisher: pub})
	require.NoError(t, err)
	assert.Empty(t, events, "construction scatters silently")

	w.ResetVictims(context.Background(), 42)
	require.Len(t, events, 1)
	assert.Equal(t, rescuelog.EventVictimsSpawned, events[0].Type)
	assert.Equal(t, uint64(42), events[0].Tick)
	assert.Equal(t, rescuelog.VictimsSpawnedPayload{Count: w.Victims().Len(), Seed: "spawn"}, events[0].Payload)
}

func TestNormalizedConfigFillsDefaults(t *testing.T) {
	cfg := Config{Seed: "  ", VictimCount: -3}.Normalized()
	assert.Equal(t, DefaultSeed, cfg.Seed)
	assert.Equal(t, DefaultLayout, cfg.Layout)
	assert.Equal(t, 0, cfg.VictimCount)
	assert.Equal(t, DefaultWidth, cfg.Width)
	assert.Equal(t, DefaultHeight, cfg.Height)
}

func TestNewWorldRejectsUnknownLayout(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Layout = "swamp"
	_, err := New(cfg, Deps{})
	require.Error(t, err)
}

func TestNewWorldAcceptsInjectedLayout(t *testing.T) {
	layout := Layout{
		Name:      "pair",
		Hospitals: []Vec2{{X: 700, Y: 300}},
		Spawns:    Spawns{NPC: Vec2{X: 100, Y: 300}},
		Waypoints: []NamedWaypoint{{Name: "a", X: 100, Y: 300}, {Name: "b", X: 700, Y: 300}},
		Edges:     [][2]string{{"a", "b"}},
	}
	cfg := DefaultConfig()
	cfg.VictimCount = 2
	w, err := New(cfg, Deps{Layout: &layout})
	require.NoError(t, err)
	assert.Zero(t, w.Field().Len())
	assert.Equal(t, 2, w.Victims().Len())

	hospital, ok := w.ClosestHospital(Vec2{})
	require.True(t, ok)
	assert.Equal(t, Vec2{X: 700, Y: 300}, hospital)
}

func TestLayoutValidation(t *testing.T) {
	assert.ElementsMatch(t, []string{"default", "open"}, LayoutNames())

	_, err := ParseLayout([]byte(`
name: broken
waypoints:
  - {name: a, x: 1, y: 1}
  - {name: a, x: 2, y: 2}
edges:
  - [a, zz]
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no hospitals")
	assert.Contains(t, err.Error(), `duplicate waypoint "a"`)
	assert.Contains(t, err.Error(), `unknown waypoint "zz"`)

	open, err := LoadLayout("open")
	require.NoError(t, err)
	assert.Zero(t, open.Grid.Columns)
	graph, err := open.Graph()
	require.NoError(t, err)
	assert.Len(t, graph.Edges(), 12)
}
