package state

// Kinematic holds the position and velocity of a moving agent. It is mutated
// once per tick by the simulation driver after a steering computation.
type Kinematic struct {
	Position Vec2 `json:"position"`
	Velocity Vec2 `json:"velocity"`
}

// Tuning carries the externally supplied speed and force limits for a tick.
type Tuning struct {
	MaxSpeed float64 `json:"maxSpeed"`
	MaxForce float64 `json:"maxForce"`
}

// Valid reports whether both limits are strictly positive.
func (t Tuning) Valid() bool {
	return t.MaxSpeed > 0 && t.MaxForce > 0
}

// WithForceScale returns a copy of t with the force limit multiplied by factor.
func (t Tuning) WithForceScale(factor float64) Tuning {
	t.MaxForce *= factor
	return t
}
