package trajectory

import (
	"math"

	"go.viam.com/casterdrive/spatialmath"
)

// CircularPath moves around the unit circle at one radian per second while the heading turns at
// the same rate: position (cos t, sin t), angle t.
func CircularPath(t float64) (spatialmath.Vector2, float64, error) {
	return spatialmath.Vector2{X: math.Cos(t), Y: math.Sin(t)}, t, nil
}

// ForwardSpinningPath drives along +Y at one unit per second while spinning counterclockwise at
// one radian per second: position (0, t), angle t.
func ForwardSpinningPath(t float64) (spatialmath.Vector2, float64, error) {
	return spatialmath.Vector2{X: 0, Y: t}, t, nil
}

// StraightPath drives along +Y at one unit per second without turning: position (0, t), angle 0.
func StraightPath(t float64) (spatialmath.Vector2, float64, error) {
	return spatialmath.Vector2{X: 0, Y: t}, 0, nil
}

// NewCircular returns the closed form of a body circling the origin at the given radius while its
// heading, and its angular position on the circle, advance at rate radians per second.
func NewCircular(radius, rate float64) (Trajectory, error) {
	return NewAnalytic(AnalyticFuncs{
		Position: func(t float64) spatialmath.Vector2 {
			return spatialmath.Vector2{X: radius * math.Cos(rate*t), Y: radius * math.Sin(rate*t)}
		},
		Angle: func(t float64) float64 { return rate * t },
		Velocity: func(t float64) spatialmath.Vector2 {
			return spatialmath.Vector2{X: -radius * rate * math.Sin(rate*t), Y: radius * rate * math.Cos(rate*t)}
		},
		Acceleration: func(t float64) spatialmath.Vector2 {
			w2 := rate * rate
			return spatialmath.Vector2{X: -radius * w2 * math.Cos(rate*t), Y: -radius * w2 * math.Sin(rate*t)}
		},
		AngularSpeed:        func(float64) float64 { return rate },
		AngularAcceleration: func(float64) float64 { return 0 },
	})
}

// NewForwardSpinning returns the closed form of a body driving along +Y at speed while spinning
// at spinRate radians per second.
func NewForwardSpinning(speed, spinRate float64) (Trajectory, error) {
	return NewAnalytic(AnalyticFuncs{
		Position:            func(t float64) spatialmath.Vector2 { return spatialmath.Vector2{X: 0, Y: speed * t} },
		Angle:               func(t float64) float64 { return spinRate * t },
		Velocity:            func(float64) spatialmath.Vector2 { return spatialmath.Vector2{X: 0, Y: speed} },
		Acceleration:        func(float64) spatialmath.Vector2 { return spatialmath.Vector2{} },
		AngularSpeed:        func(float64) float64 { return spinRate },
		AngularAcceleration: func(float64) float64 { return 0 },
	})
}
