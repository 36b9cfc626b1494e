package world

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lattice(t *testing.T, cols, rows int, spacing float64) *WaypointGraph {
	t.Helper()
	var nodes []Vec2
	var edges []Edge
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			nodes = append(nodes, Vec2{X: float64(c) * spacing, Y: float64(r) * spacing})
			idx := r*cols + c
			if c > 0 {
				edges = append(edges, Edge{From: idx - 1, To: idx})
			}
			if r > 0 {
				edges = append(edges, Edge{From: idx - cols, To: idx})
			}
		}
	}
	graph, err := NewWaypointGraph(nodes, edges)
	require.NoError(t, err)
	return graph
}

func TestFindPathShortCircuitsNearbyGoals(t *testing.T) {
	graph, err := NewWaypointGraph([]Vec2{{X: 0, Y: 0}, {X: 50, Y: 0}}, []Edge{{From: 0, To: 1}})
	require.NoError(t, err)

	a := Vec2{X: 10, Y: 10}
	b := Vec2{X: 40, Y: 10}
	assert.Equal(t, []Vec2{a, b}, graph.FindPath(a, b))
}

func TestFindPathWrapsWaypointChain(t *testing.T) {
	graph := lattice(t, 4, 4, 100)
	start := Vec2{X: -5, Y: 2}
	end := Vec2{X: 310, Y: 305}

	path := graph.FindPath(start, end)
	require.GreaterOrEqual(t, len(path), 3)
	assert.Equal(t, start, path[0])
	assert.Equal(t, end, path[len(path)-1])

	chain := path[1 : len(path)-1]
	assert.Equal(t, Vec2{X: 0, Y: 0}, chain[0])
	assert.Equal(t, Vec2{X: 300, Y: 300}, chain[len(chain)-1])
	// Manhattan distance across a 4x4 lattice is six hops.
	assert.Len(t, chain, 7)

	index := make(map[Vec2]int)
	for i, node := range graph.Nodes() {
		index[node] = i
	}
	for i := 1; i < len(chain); i++ {
		assert.Truef(t, graph.Adjacent(index[chain[i-1]], index[chain[i]]), "hop %d not adjacent", i)
	}
}

func TestShortestHopsPrefersFewestEdges(t *testing.T) {
	nodes := []Vec2{{X: 0}, {X: 100}, {X: 200}, {X: 300}, {X: 400}}
	edges := []Edge{{0, 1}, {1, 2}, {2, 3}, {3, 4}, {0, 4}}
	graph, err := NewWaypointGraph(nodes, edges)
	require.NoError(t, err)

	hops, ok := graph.ShortestHops(0, 4)
	require.True(t, ok)
	assert.Equal(t, []int{0, 4}, hops)

	hops, ok = graph.ShortestHops(1, 3)
	require.True(t, ok)
	assert.Equal(t, []int{1, 2, 3}, hops)

	hops, ok = graph.ShortestHops(2, 2)
	require.True(t, ok)
	assert.Equal(t, []int{2}, hops)
}

func TestShortestHopsTerminatesOnCycles(t *testing.T) {
	nodes := []Vec2{{X: 0}, {X: 100}, {X: 200}, {X: 900}}
	edges := []Edge{{0, 1}, {1, 2}, {2, 0}}
	graph, err := NewWaypointGraph(nodes, edges)
	require.NoError(t, err)

	_, ok := graph.ShortestHops(0, 3)
	assert.False(t, ok)
}

func TestFindPathFallsBackWhenDisconnected(t *testing.T) {
	nodes := []Vec2{{X: 0, Y: 0}, {X: 500, Y: 0}}
	graph, err := NewWaypointGraph(nodes, nil)
	require.NoError(t, err)

	start := Vec2{X: 1, Y: 1}
	end := Vec2{X: 499, Y: 1}
	assert.Equal(t, []Vec2{start, end}, graph.FindPath(start, end))
}

func TestClosestBreaksTiesByIndex(t *testing.T) {
	graph, err := NewWaypointGraph([]Vec2{{X: -10}, {X: 10}, {X: 30}}, nil)
	require.NoError(t, err)

	idx, ok := graph.Closest(Vec2{})
	require.True(t, ok)
	assert.Equal(t, 0, idx)

	idx, _ = graph.Closest(Vec2{X: 25})
	assert.Equal(t, 2, idx)
}

func TestNewWaypointGraphValidation(t *testing.T) {
	_, err := NewWaypointGraph(nil, nil)
	require.ErrorIs(t, err, ErrEmptyGraph)

	_, err = NewWaypointGraph([]Vec2{{}}, []Edge{{From: 0, To: 3}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing waypoint")

	graph, err := NewWaypointGraph([]Vec2{{}, {X: 1}}, []Edge{{0, 1}, {1, 0}, {0, 1}, {1, 1}})
	require.NoError(t, err)
	assert.Equal(t, []Edge{{From: 0, To: 1}}, graph.Edges())
	assert.Equal(t, []int{1}, graph.Neighbors(0))
	assert.Equal(t, []int{0}, graph.Neighbors(1))
}

func TestDefaultLayoutGraphRoutesAcrossMap(t *testing.T) {
	layout, err := LoadLayout(DefaultLayout)
	require.NoError(t, err)
	graph, err := layout.Graph()
	require.NoError(t, err)
	require.Equal(t, 20, graph.Len())

	start := Vec2{X: 30, Y: 35}
	end := Vec2{X: 770, Y: 565}
	path := graph.FindPath(start, end)

	want := []Vec2{start, {X: 25, Y: 30}}
	got := path[:2]
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected path head (-want +got):\n%s", diff)
	}
	// a1 to d5 takes four column steps and three row steps.
	assert.Len(t, path, 2+8)
}
