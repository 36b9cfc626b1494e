package world

import (
	"errors"
	"fmt"
)

// DirectPathDistance is the distance under which FindPath skips the graph and
// returns the two endpoints.
const DirectPathDistance = 100.0

// ErrEmptyGraph is returned when a graph is built without waypoints.
var ErrEmptyGraph = errors.New("waypoint graph has no nodes")

// Edge joins two waypoint indices. Edges are undirected.
type Edge struct {
	From int `json:"from"`
	To   int `json:"to"`
}

// WaypointGraph is a fixed table of waypoints connected by undirected edges.
// Nodes are identified by their index into the table.
type WaypointGraph struct {
	nodes     []Vec2
	adjacency [][]int
	edges     []Edge
}

// NewWaypointGraph validates the edge list against the node table and builds
// the adjacency lists. Duplicate edges and self loops are ignored.
func NewWaypointGraph(nodes []Vec2, edges []Edge) (*WaypointGraph, error) {
	if len(nodes) == 0 {
		return nil, ErrEmptyGraph
	}

	graph := &WaypointGraph{
		nodes:     append([]Vec2(nil), nodes...),
		adjacency: make([][]int, len(nodes)),
	}

	seen := make(map[Edge]struct{}, len(edges))
	var errs []error
	for _, edge := range edges {
		if edge.From < 0 || edge.From >= len(nodes) || edge.To < 0 || edge.To >= len(nodes) {
			errs = append(errs, fmt.Errorf("edge %d-%d references a missing waypoint", edge.From, edge.To))
			continue
		}
		if edge.From == edge.To {
			continue
		}
		key := edge
		if key.From > key.To {
			key.From, key.To = key.To, key.From
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		graph.edges = append(graph.edges, key)
		graph.adjacency[key.From] = append(graph.adjacency[key.From], key.To)
		graph.adjacency[key.To] = append(graph.adjacency[key.To], key.From)
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	return graph, nil
}

// Len reports the number of waypoints.
func (g *WaypointGraph) Len() int {
	if g == nil {
		return 0
	}
	return len(g.nodes)
}

// Node returns the position of waypoint i.
func (g *WaypointGraph) Node(i int) (Vec2, bool) {
	if g == nil || i < 0 || i >= len(g.nodes) {
		return Vec2{}, false
	}
	return g.nodes[i], true
}

// Nodes returns a copy of the waypoint table.
func (g *WaypointGraph) Nodes() []Vec2 {
	if g == nil {
		return nil
	}
	return append([]Vec2(nil), g.nodes...)
}

// Edges returns a copy of the deduplicated edge list.
func (g *WaypointGraph) Edges() []Edge {
	if g == nil {
		return nil
	}
	return append([]Edge(nil), g.edges...)
}

// Neighbors returns the indices adjacent to waypoint i.
func (g *WaypointGraph) Neighbors(i int) []int {
	if g == nil || i < 0 || i >= len(g.adjacency) {
		return nil
	}
	return append([]int(nil), g.adjacency[i]...)
}

// Adjacent reports whether an edge joins a and b.
func (g *WaypointGraph) Adjacent(a, b int) bool {
	if g == nil || a < 0 || a >= len(g.adjacency) {
		return false
	}
	for _, n := range g.adjacency[a] {
		if n == b {
			return true
		}
	}
	return false
}

// Closest returns the index of the waypoint nearest to pos. Ties resolve to
// the lowest index.
func (g *WaypointGraph) Closest(pos Vec2) (int, bool) {
	if g == nil || len(g.nodes) == 0 {
		return 0, false
	}
	best := 0
	bestDist := pos.DistanceTo(g.nodes[0])
	for i := 1; i < len(g.nodes); i++ {
		if d := pos.DistanceTo(g.nodes[i]); d < bestDist {
			best = i
			bestDist = d
		}
	}
	return best, true
}

// ClosestPosition returns the waypoint nearest to pos.
func (g *WaypointGraph) ClosestPosition(pos Vec2) (Vec2, bool) {
	idx, ok := g.Closest(pos)
	if !ok {
		return Vec2{}, false
	}
	return g.nodes[idx], true
}

// ShortestHops runs a breadth-first search from one waypoint to another and
// returns the index chain with the fewest edges, inclusive of both ends.
func (g *WaypointGraph) ShortestHops(from, to int) ([]int, bool) {
	if g == nil || from < 0 || from >= len(g.nodes) || to < 0 || to >= len(g.nodes) {
		return nil, false
	}
	if from == to {
		return []int{from}, true
	}

	visited := make([]bool, len(g.nodes))
	parent := make([]int, len(g.nodes))
	queue := make([]int, 0, len(g.nodes))
	visited[from] = true
	parent[from] = -1
	queue = append(queue, from)

	for head := 0; head < len(queue); head++ {
		current := queue[head]
		for _, next := range g.adjacency[current] {
			if visited[next] {
				continue
			}
			visited[next] = true
			parent[next] = current
			if next == to {
				return unwindParents(parent, to), true
			}
			queue = append(queue, next)
		}
	}

	return nil, false
}

func unwindParents(parent []int, end int) []int {
	var reversed []int
	for node := end; node != -1; node = parent[node] {
		reversed = append(reversed, node)
	}
	path := make([]int, len(reversed))
	for i, node := range reversed {
		path[len(reversed)-1-i] = node
	}
	return path
}

// FindPath plans a route between two world positions. Nearby endpoints and
// disconnected waypoints produce the direct two-point path; otherwise the
// route runs start, the closest waypoint to start, the fewest-hop chain, the
// closest waypoint to end, then end.
func (g *WaypointGraph) FindPath(start, end Vec2) []Vec2 {
	direct := []Vec2{start, end}
	if start.DistanceTo(end) < DirectPathDistance {
		return direct
	}
	from, ok := g.Closest(start)
	if !ok {
		return direct
	}
	to, _ := g.Closest(end)
	hops, ok := g.ShortestHops(from, to)
	if !ok {
		return direct
	}

	path := make([]Vec2, 0, len(hops)+2)
	path = append(path, start)
	for _, idx := range hops {
		path = append(path, g.nodes[idx])
	}
	return append(path, end)
}
