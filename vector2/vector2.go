// Package vector2 provides the 2D vector type and sheet coordinate frames
// shared by every other curling package.
package vector2

import "math"

// Vector2 is a pair of 32-bit floats. All physics quantities in this module
// are float32 to match the simulator's numeric contract.
type Vector2 struct {
	X, Y float32
}

// Add returns v+other.
func (v Vector2) Add(other Vector2) Vector2 {
	return Vector2{v.X + other.X, v.Y + other.Y}
}

// Sub returns v-other.
func (v Vector2) Sub(other Vector2) Vector2 {
	return Vector2{v.X - other.X, v.Y - other.Y}
}

// Scale returns v*s.
func (v Vector2) Scale(s float32) Vector2 {
	return Vector2{v.X * s, v.Y * s}
}

// Div returns v/s.
func (v Vector2) Div(s float32) Vector2 {
	return Vector2{v.X / s, v.Y / s}
}

// Length returns |v| using hypot for numerical stability.
func (v Vector2) Length() float32 {
	return float32(math.Hypot(float64(v.X), float64(v.Y)))
}

// Dot returns the dot product of v and other.
func (v Vector2) Dot(other Vector2) float32 {
	return v.X*other.X + v.Y*other.Y
}

// Rotated90 returns v rotated +90 degrees (the tangent's normal).
func (v Vector2) Rotated90() Vector2 {
	return Vector2{-v.Y, v.X}
}

// Equal is bitwise equality on components, as specified.
func (v Vector2) Equal(other Vector2) bool {
	return math.Float32bits(v.X) == math.Float32bits(other.X) &&
		math.Float32bits(v.Y) == math.Float32bits(other.Y)
}

// IsZero reports whether both components are exactly zero.
func (v Vector2) IsZero() bool {
	return v.X == 0 && v.Y == 0
}
