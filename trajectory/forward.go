package trajectory

import (
	"go.viam.com/casterdrive/spatialmath"
)

// forwardDifference derives velocity and angular rates from a PathFunc with first-order forward
// differences:
//
//	velocity(t)             = (position(t+dt) - position(t)) / dt
//	acceleration(t)         = (velocity(t+dt) - velocity(t)) / dt
//	angularSpeed(t)         = (angle(t+dt) - angle(t)) / dt
//	angularAcceleration(t)  = (angularSpeed(t+dt) - angularSpeed(t)) / dt
//
// Results lag the true derivative by roughly dt/2.
type forwardDifference struct {
	path PathFunc
	dt   float64
}

// NewForwardDifference returns a Trajectory that differentiates path numerically with forward
// differences of step dt. A zero dt is accepted, but every derivative query then fails with
// spatialmath.ErrDivisionByZero.
func NewForwardDifference(path PathFunc, dt float64) (Trajectory, error) {
	if path == nil {
		return nil, ErrNilPath
	}
	if err := checkStep(dt); err != nil {
		return nil, err
	}
	return &forwardDifference{path: path, dt: dt}, nil
}

func (fwd *forwardDifference) Position(t float64) (spatialmath.Vector2, error) {
	pos, _, err := evaluate(fwd.path, t)
	return pos, err
}

func (fwd *forwardDifference) Angle(t float64) (float64, error) {
	_, angle, err := evaluate(fwd.path, t)
	return angle, err
}

// samples evaluates the path at t, t+dt, (t+dt)+dt, ... n times. Successive times are built by
// repeated addition so that shared samples match what a nested evaluation would compute.
func (fwd *forwardDifference) samples(t float64, n int) ([]spatialmath.Vector2, []float64, error) {
	positions := make([]spatialmath.Vector2, n)
	angles := make([]float64, n)
	for i := 0; i < n; i++ {
		pos, angle, err := evaluate(fwd.path, t)
		if err != nil {
			return nil, nil, err
		}
		positions[i], angles[i] = pos, angle
		t += fwd.dt
	}
	return positions, angles, nil
}

func (fwd *forwardDifference) Velocity(t float64) (spatialmath.Vector2, error) {
	positions, _, err := fwd.samples(t, 2)
	if err != nil {
		return spatialmath.Vector2{}, err
	}
	return positions[1].Sub(positions[0]).Div(fwd.dt)
}

func (fwd *forwardDifference) Acceleration(t float64) (spatialmath.Vector2, error) {
	positions, _, err := fwd.samples(t, 3)
	if err != nil {
		return spatialmath.Vector2{}, err
	}
	v0, err := positions[1].Sub(positions[0]).Div(fwd.dt)
	if err != nil {
		return spatialmath.Vector2{}, err
	}
	v1, err := positions[2].Sub(positions[1]).Div(fwd.dt)
	if err != nil {
		return spatialmath.Vector2{}, err
	}
	return v1.Sub(v0).Div(fwd.dt)
}

func (fwd *forwardDifference) AngularSpeed(t float64) (float64, error) {
	_, angles, err := fwd.samples(t, 2)
	if err != nil {
		return 0, err
	}
	return divide(angles[1]-angles[0], fwd.dt)
}

func (fwd *forwardDifference) AngularAcceleration(t float64) (float64, error) {
	_, angles, err := fwd.samples(t, 3)
	if err != nil {
		return 0, err
	}
	w0, err := divide(angles[1]-angles[0], fwd.dt)
	if err != nil {
		return 0, err
	}
	w1, err := divide(angles[2]-angles[1], fwd.dt)
	if err != nil {
		return 0, err
	}
	return divide(w1-w0, fwd.dt)
}
