package spatialmath

import (
	"fmt"
	"math"

	"github.com/golang/geo/r2"
)

// Vector2 is a 2D vector with float64 components. It is a plain value and can be copied freely.
type Vector2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// NewVector2FromR2 converts a golang/geo r2.Point into a Vector2.
func NewVector2FromR2(p r2.Point) Vector2 {
	return Vector2{X: p.X, Y: p.Y}
}

// R2 returns the vector as an r2.Point.
func (v Vector2) R2() r2.Point {
	return r2.Point{X: v.X, Y: v.Y}
}

// Add returns the componentwise sum v + ov.
func (v Vector2) Add(ov Vector2) Vector2 {
	return NewVector2FromR2(v.R2().Add(ov.R2()))
}

// Sub returns the componentwise difference v - ov.
func (v Vector2) Sub(ov Vector2) Vector2 {
	return NewVector2FromR2(v.R2().Sub(ov.R2()))
}

// Mul returns v scaled by m.
func (v Vector2) Mul(m float64) Vector2 {
	return NewVector2FromR2(v.R2().Mul(m))
}

// Neg returns -v.
func (v Vector2) Neg() Vector2 {
	return Vector2{X: -v.X, Y: -v.Y}
}

// Div divides every component by s. Dividing by exactly zero returns ErrDivisionByZero
// instead of producing infinities.
func (v Vector2) Div(s float64) (Vector2, error) {
	if s == 0 {
		return Vector2{}, ErrDivisionByZero
	}
	inv := 1 / s
	return v.Mul(inv), nil
}

// Dot returns the dot product of v and ov.
func (v Vector2) Dot(ov Vector2) float64 {
	return v.R2().Dot(ov.R2())
}

// Norm2 returns the squared length of v.
func (v Vector2) Norm2() float64 {
	return v.X*v.X + v.Y*v.Y
}

// Norm returns the length of v. It is NaN if any component is NaN.
func (v Vector2) Norm() float64 {
	return math.Sqrt(v.Norm2())
}

// Normalize returns a unit vector in the direction of v.
func (v Vector2) Normalize() (Vector2, error) {
	return v.Div(v.Norm())
}

// Abs returns the vector with nonnegative components.
func (v Vector2) Abs() Vector2 {
	return Vector2{X: math.Abs(v.X), Y: math.Abs(v.Y)}
}

// HasNaNs reports whether any component of v is NaN.
func (v Vector2) HasNaNs() bool {
	return math.IsNaN(v.X) || math.IsNaN(v.Y)
}

func (v Vector2) String() string {
	return fmt.Sprintf("(%g, %g)", v.X, v.Y)
}
