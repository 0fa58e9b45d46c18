package spatialmath

import (
	"fmt"
	"math"

	"github.com/golang/geo/r3"
)

// Vector3 is a 3D vector with float64 components.
type Vector3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// NewVector3FromR3 converts an r3.Vector into a Vector3.
func NewVector3FromR3(v r3.Vector) Vector3 {
	return Vector3{X: v.X, Y: v.Y, Z: v.Z}
}

// R3 returns the vector as an r3.Vector.
func (v Vector3) R3() r3.Vector {
	return r3.Vector{X: v.X, Y: v.Y, Z: v.Z}
}

// Add returns the componentwise sum v + ov.
func (v Vector3) Add(ov Vector3) Vector3 {
	return NewVector3FromR3(v.R3().Add(ov.R3()))
}

// Sub returns the componentwise difference v - ov.
func (v Vector3) Sub(ov Vector3) Vector3 {
	return NewVector3FromR3(v.R3().Sub(ov.R3()))
}

// Mul returns v scaled by m.
func (v Vector3) Mul(m float64) Vector3 {
	return NewVector3FromR3(v.R3().Mul(m))
}

// Neg returns -v.
func (v Vector3) Neg() Vector3 {
	return Vector3{X: -v.X, Y: -v.Y, Z: -v.Z}
}

// Div divides every component by s, returning ErrDivisionByZero when s is zero.
func (v Vector3) Div(s float64) (Vector3, error) {
	if s == 0 {
		return Vector3{}, ErrDivisionByZero
	}
	inv := 1 / s
	return v.Mul(inv), nil
}

// Dot returns the dot product of v and ov.
func (v Vector3) Dot(ov Vector3) float64 {
	return v.R3().Dot(ov.R3())
}

// Norm2 returns the squared length of v.
func (v Vector3) Norm2() float64 {
	return v.X*v.X + v.Y*v.Y + v.Z*v.Z
}

// Norm returns the length of v.
func (v Vector3) Norm() float64 {
	return math.Sqrt(v.Norm2())
}

// Normalize returns a unit vector pointing the same direction as v.
// A zero-length vector returns ErrDivisionByZero.
func (v Vector3) Normalize() (Vector3, error) {
	return v.Div(v.Norm())
}

// Abs returns the vector with nonnegative components.
func (v Vector3) Abs() Vector3 {
	return NewVector3FromR3(v.R3().Abs())
}

// HasNaNs reports whether any component of v is NaN.
func (v Vector3) HasNaNs() bool {
	return math.IsNaN(v.X) || math.IsNaN(v.Y) || math.IsNaN(v.Z)
}

func (v Vector3) isFinite() bool {
	for _, c := range []float64{v.X, v.Y, v.Z} {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

// Cross returns the cross product v x ov. The products are formed in arbitrary precision and
// only rounded to float64 once per component, which keeps nearly parallel and very small inputs
// from cancelling to garbage. Non-finite inputs cannot be represented exactly, so they are crossed
// in float64 and NaN propagates as usual.
func (v Vector3) Cross(ov Vector3) Vector3 {
	if !v.isFinite() || !ov.isFinite() {
		return NewVector3FromR3(v.R3().Cross(ov.R3()))
	}
	// PreciseVector.Vector normalizes its result, so the components are narrowed here instead.
	pc := r3.PreciseVectorFromVector(v.R3()).Cross(r3.PreciseVectorFromVector(ov.R3()))
	x, _ := pc.X.Float64()
	y, _ := pc.Y.Float64()
	z, _ := pc.Z.Float64()
	return Vector3{X: x, Y: y, Z: z}
}

func (v Vector3) String() string {
	return fmt.Sprintf("(%g, %g, %g)", v.X, v.Y, v.Z)
}
