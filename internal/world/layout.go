package world

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed layouts/*.yaml
var embeddedLayouts embed.FS

// NamedWaypoint is a waypoint entry in a layout file.
type NamedWaypoint struct {
	Name string  `yaml:"name"`
	X    float64 `yaml:"x"`
	Y    float64 `yaml:"y"`
}

// Spawns holds the starting positions of the rescue actors.
type Spawns struct {
	NPC    Vec2 `yaml:"npc"`
	Player Vec2 `yaml:"player"`
}

// Layout describes a static map: the obstacle grid, explicit obstacles,
// hospitals, spawn points and the waypoint road network.
type Layout struct {
	Name      string          `yaml:"name"`
	Width     float64         `yaml:"width"`
	Height    float64         `yaml:"height"`
	Grid      GridSpec        `yaml:"grid"`
	Obstacles []Obstacle      `yaml:"obstacles"`
	Hospitals []Vec2          `yaml:"hospitals"`
	Spawns    Spawns          `yaml:"spawns"`
	Waypoints []NamedWaypoint `yaml:"waypoints"`
	Edges     [][2]string     `yaml:"edges"`
}

// ParseLayout decodes and validates a YAML layout document.
func ParseLayout(data []byte) (Layout, error) {
	var layout Layout
	if err := yaml.Unmarshal(data, &layout); err != nil {
		return Layout{}, fmt.Errorf("decode layout: %w", err)
	}
	if err := layout.Validate(); err != nil {
		return Layout{}, fmt.Errorf("layout %q: %w", layout.Name, err)
	}
	return layout, nil
}

// LoadLayout reads one of the bundled layouts by name.
func LoadLayout(name string) (Layout, error) {
	data, err := embeddedLayouts.ReadFile(path.Join("layouts", name+".yaml"))
	if err != nil {
		return Layout{}, fmt.Errorf("load layout %q: %w", name, err)
	}
	return ParseLayout(data)
}

// LayoutNames lists the bundled layouts.
func LayoutNames() []string {
	entries, err := fs.ReadDir(embeddedLayouts, "layouts")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		names = append(names, strings.TrimSuffix(entry.Name(), ".yaml"))
	}
	sort.Strings(names)
	return names
}

// Validate reports every structural problem with the layout.
func (l Layout) Validate() error {
	var errs []error
	if len(l.Hospitals) == 0 {
		errs = append(errs, errors.New("no hospitals"))
	}
	if len(l.Waypoints) == 0 {
		errs = append(errs, errors.New("no waypoints"))
	}
	names := make(map[string]struct{}, len(l.Waypoints))
	for _, wp := range l.Waypoints {
		if wp.Name == "" {
			errs = append(errs, fmt.Errorf("waypoint at (%g,%g) has no name", wp.X, wp.Y))
			continue
		}
		if _, dup := names[wp.Name]; dup {
			errs = append(errs, fmt.Errorf("duplicate waypoint %q", wp.Name))
		}
		names[wp.Name] = struct{}{}
	}
	for _, edge := range l.Edges {
		for _, end := range edge {
			if _, ok := names[end]; !ok {
				errs = append(errs, fmt.Errorf("edge %s-%s references unknown waypoint %q", edge[0], edge[1], end))
			}
		}
	}
	return errors.Join(errs...)
}

// WaypointPositions returns the waypoint table in file order.
func (l Layout) WaypointPositions() []Vec2 {
	positions := make([]Vec2, len(l.Waypoints))
	for i, wp := range l.Waypoints {
		positions[i] = Vec2{X: wp.X, Y: wp.Y}
	}
	return positions
}

// Graph resolves named edges to indices and builds the waypoint graph.
func (l Layout) Graph() (*WaypointGraph, error) {
	index := make(map[string]int, len(l.Waypoints))
	for i, wp := range l.Waypoints {
		index[wp.Name] = i
	}
	edges := make([]Edge, 0, len(l.Edges))
	for _, pair := range l.Edges {
		from, okFrom := index[pair[0]]
		to, okTo := index[pair[1]]
		if !okFrom || !okTo {
			return nil, fmt.Errorf("edge %s-%s references an unknown waypoint", pair[0], pair[1])
		}
		edges = append(edges, Edge{From: from, To: to})
	}
	return NewWaypointGraph(l.WaypointPositions(), edges)
}

// Anchors lists the points obstacle generation must keep reachable.
func (l Layout) Anchors() []Vec2 {
	anchors := make([]Vec2, 0, len(l.Hospitals)+len(l.Waypoints)+2)
	anchors = append(anchors, l.Hospitals...)
	anchors = append(anchors, l.WaypointPositions()...)
	return append(anchors, l.Spawns.NPC, l.Spawns.Player)
}
