package steering

import (
	_ "embed"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed routes/default.yaml
var defaultRoutesYAML []byte

// ID enumerates the selectable behaviors.
type ID uint8

const (
	IDSeek ID = iota
	IDFlee
	IDPursuit
	IDEvade
	IDArrival
	IDCircuit
	IDOneWay
	IDTwoWay
	idCount
)

var idNames = [...]string{
	IDSeek:    "Seek",
	IDFlee:    "Flee",
	IDPursuit: "Pursuit",
	IDEvade:   "Evade",
	IDArrival: "Arrival",
	IDCircuit: "Circuit",
	IDOneWay:  "One Way",
	IDTwoWay:  "Two Ways",
}

// String returns the display name of the behavior.
func (id ID) String() string {
	if id >= idCount {
		return fmt.Sprintf("ID(%d)", uint8(id))
	}
	return idNames[id]
}

// Valid reports whether id names a known behavior.
func (id ID) Valid() bool { return id < idCount }

// ErrUnknownBehavior is returned when a behavior name does not resolve.
var ErrUnknownBehavior = errors.New("unknown steering behavior")

// ParseID resolves a display name to its behavior ID.
func ParseID(name string) (ID, error) {
	for id, candidate := range idNames {
		if candidate == name {
			return ID(id), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownBehavior, name)
}

// Names lists every behavior display name in ID order.
func Names() []string {
	return append([]string(nil), idNames[:]...)
}

// Routes holds the waypoint lists used by the patrol behaviors.
type Routes struct {
	Circuit []Vec2 `yaml:"circuit"`
	OneWay  []Vec2 `yaml:"oneWay"`
	TwoWay  []Vec2 `yaml:"twoWay"`
}

// DefaultRoutes decodes the bundled route file.
func DefaultRoutes() (Routes, error) {
	var routes Routes
	if err := yaml.Unmarshal(defaultRoutesYAML, &routes); err != nil {
		return Routes{}, fmt.Errorf("decode default routes: %w", err)
	}
	return routes, nil
}

// Library maps behavior IDs to instances. Entries are built once; stateful
// instances are reset every time they are selected.
type Library struct {
	behaviors [idCount]Behavior
	active    ID
}

// NewLibrary builds the dispatch table for the supplied routes.
func NewLibrary(routes Routes) (*Library, error) {
	var errs []error
	if len(routes.Circuit) == 0 {
		errs = append(errs, errors.New("circuit route is empty"))
	}
	if len(routes.OneWay) == 0 {
		errs = append(errs, errors.New("one-way route is empty"))
	}
	if len(routes.TwoWay) == 0 {
		errs = append(errs, errors.New("two-way route is empty"))
	}
	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("steering library: %w", err)
	}

	lib := &Library{active: IDSeek}
	lib.behaviors[IDSeek] = Seek{}
	lib.behaviors[IDFlee] = Flee{}
	lib.behaviors[IDPursuit] = Pursuit{}
	lib.behaviors[IDEvade] = Evade{}
	lib.behaviors[IDArrival] = Arrival{}
	lib.behaviors[IDCircuit] = NewCircuit(routes.Circuit)
	lib.behaviors[IDOneWay] = NewOneWay(routes.OneWay)
	lib.behaviors[IDTwoWay] = NewTwoWay(routes.TwoWay)
	return lib, nil
}

// MustLoadLibrary builds a library from the bundled routes and panics on
// failure.
func MustLoadLibrary() *Library {
	routes, err := DefaultRoutes()
	if err != nil {
		panic(err)
	}
	lib, err := NewLibrary(routes)
	if err != nil {
		panic(err)
	}
	return lib
}

// Select makes id the active behavior and resets it when stateful.
func (l *Library) Select(id ID) (Behavior, error) {
	if l == nil {
		return nil, errors.New("steering library is nil")
	}
	if !id.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrUnknownBehavior, id)
	}
	behavior := l.behaviors[id]
	if stateful, ok := behavior.(Stateful); ok {
		stateful.Reset()
	}
	l.active = id
	return behavior, nil
}

// Active returns the selected behavior and its ID.
func (l *Library) Active() (ID, Behavior) {
	if l == nil {
		return 0, nil
	}
	return l.active, l.behaviors[l.active]
}

// ActiveWaypoints returns the route of the active behavior, or nil when it
// does not follow one.
func (l *Library) ActiveWaypoints() ([]Vec2, int) {
	_, behavior := l.Active()
	route, ok := behavior.(Route)
	if !ok {
		return nil, 0
	}
	return route.Waypoints(), route.CurrentIndex()
}
