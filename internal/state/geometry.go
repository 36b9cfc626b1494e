package state

import "math"

// Vec2 represents a 2D point or direction used across agent, NPC and world
// state. All operations except Rotate return new values.
type Vec2 struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Add returns v + other.
func (v Vec2) Add(other Vec2) Vec2 {
	return Vec2{X: v.X + other.X, Y: v.Y + other.Y}
}

// Sub returns v - other.
func (v Vec2) Sub(other Vec2) Vec2 {
	return Vec2{X: v.X - other.X, Y: v.Y - other.Y}
}

// Scale returns v multiplied by scalar.
func (v Vec2) Scale(scalar float64) Vec2 {
	return Vec2{X: v.X * scalar, Y: v.Y * scalar}
}

// Div returns v divided by scalar. Dividing by zero yields the zero vector.
func (v Vec2) Div(scalar float64) Vec2 {
	if scalar == 0 {
		return Vec2{}
	}
	return Vec2{X: v.X / scalar, Y: v.Y / scalar}
}

// Len reports the Euclidean length of v.
func (v Vec2) Len() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y)
}

// LenSq reports the squared length of v.
func (v Vec2) LenSq() float64 {
	return v.X*v.X + v.Y*v.Y
}

// DistanceTo reports the Euclidean distance between v and other.
func (v Vec2) DistanceTo(other Vec2) float64 {
	return other.Sub(v).Len()
}

// Normalized returns the unit vector pointing along v, or the zero vector
// when v has no length.
func (v Vec2) Normalized() Vec2 {
	length := v.Len()
	if length == 0 {
		return Vec2{}
	}
	return v.Div(length)
}

// Dot returns the scalar product of v and other.
func (v Vec2) Dot(other Vec2) float64 {
	return v.X*other.X + v.Y*other.Y
}

// Cross returns the z component of the 3D cross product of v and other.
func (v Vec2) Cross(other Vec2) float64 {
	return v.X*other.Y - v.Y*other.X
}

// Limit caps the length of v at max while preserving its direction.
func (v Vec2) Limit(max float64) Vec2 {
	if v.Len() > max {
		return v.Normalized().Scale(max)
	}
	return v
}

// IsZero reports whether both components are zero.
func (v Vec2) IsZero() bool {
	return v.X == 0 && v.Y == 0
}

// Rotate turns v in place counter-clockwise by angle degrees.
func (v *Vec2) Rotate(angle float64) {
	if v == nil {
		return
	}
	rad := angle * math.Pi / 180
	cos := math.Cos(rad)
	sin := math.Sin(rad)
	x := v.X*cos - v.Y*sin
	y := v.X*sin + v.Y*cos
	v.X, v.Y = x, y
}
