// Package trajectory describes rigid-body motion in the plane as functions of time.
//
// A Trajectory answers six queries at any time t (seconds, any real value): position, heading
// angle, and their first and second derivatives. Implementations are stateless with respect to t:
// the same query at the same t always returns the same value.
package trajectory

import (
	"math"

	"github.com/pkg/errors"

	"go.viam.com/casterdrive/spatialmath"
	"go.viam.com/casterdrive/utils"
)

// DefaultStep is the finite difference step, in seconds, used when none is configured.
const DefaultStep = 0.01

// ErrNilPath is returned when a trajectory is constructed without a path function.
var ErrNilPath = errors.New("trajectory requires a path function")

// PathFunc returns the position and heading (radians) of a body at time t. It may fail, for
// example when the path is undefined at t; that failure is passed through every query unchanged
// apart from added context.
type PathFunc func(t float64) (spatialmath.Vector2, float64, error)

// Trajectory is a time-parameterized planar pose together with its derivatives.
type Trajectory interface {
	// Position returns the body position at t.
	Position(t float64) (spatialmath.Vector2, error)
	// Angle returns the body heading at t, in radians. It is not wrapped to any range.
	Angle(t float64) (float64, error)
	// Velocity returns the time derivative of Position at t.
	Velocity(t float64) (spatialmath.Vector2, error)
	// Acceleration returns the time derivative of Velocity at t.
	Acceleration(t float64) (spatialmath.Vector2, error)
	// AngularSpeed returns the time derivative of Angle at t, in radians per second.
	AngularSpeed(t float64) (float64, error)
	// AngularAcceleration returns the time derivative of AngularSpeed at t.
	AngularAcceleration(t float64) (float64, error)
}

// State is every quantity a Trajectory reports, sampled at a single time.
type State struct {
	Time                float64
	Position            spatialmath.Vector2
	Angle               float64
	Velocity            spatialmath.Vector2
	Acceleration        spatialmath.Vector2
	AngularSpeed        float64
	AngularAcceleration float64
}

// HasNaNs reports whether any sampled quantity is NaN.
func (s State) HasNaNs() bool {
	for _, f := range []float64{s.Angle, s.AngularSpeed, s.AngularAcceleration} {
		if math.IsNaN(f) {
			return true
		}
	}
	return s.Position.HasNaNs() || s.Velocity.HasNaNs() || s.Acceleration.HasNaNs()
}

// Sample queries traj for all of its quantities at t. The first failing query aborts the sample.
func Sample(traj Trajectory, t float64) (State, error) {
	var err error
	s := State{Time: t}
	if s.Position, err = traj.Position(t); err != nil {
		return State{}, err
	}
	if s.Angle, err = traj.Angle(t); err != nil {
		return State{}, err
	}
	if s.Velocity, err = traj.Velocity(t); err != nil {
		return State{}, err
	}
	if s.Acceleration, err = traj.Acceleration(t); err != nil {
		return State{}, err
	}
	if s.AngularSpeed, err = traj.AngularSpeed(t); err != nil {
		return State{}, err
	}
	if s.AngularAcceleration, err = traj.AngularAcceleration(t); err != nil {
		return State{}, err
	}
	return s, nil
}

// divide is the scalar counterpart of spatialmath.Vector2.Div.
func divide(num, den float64) (float64, error) {
	if den == 0 {
		return 0, spatialmath.ErrDivisionByZero
	}
	return num * (1 / den), nil
}

func checkStep(dt float64) error {
	if !utils.IsFinite(dt) {
		return errors.Errorf("finite difference step must be finite, got %v", dt)
	}
	return nil
}

// evaluate calls path and attaches the query time to any failure.
func evaluate(path PathFunc, t float64) (spatialmath.Vector2, float64, error) {
	pos, angle, err := path(t)
	if err != nil {
		return spatialmath.Vector2{}, 0, errors.Wrapf(err, "evaluating path at t=%v", t)
	}
	return pos, angle, nil
}
