package trajectory

import (
	"math"

	"gonum.org/v1/gonum/diff/fd"

	"go.viam.com/casterdrive/spatialmath"
)

// centralDifference differentiates a PathFunc with the second-order accurate centered stencils
// from gonum's diff/fd package, sampling the path symmetrically around t.
type centralDifference struct {
	path PathFunc
	dt   float64
}

// NewCentralDifference returns a Trajectory that differentiates path with centered differences of
// step dt. Like NewForwardDifference, a zero dt makes derivative queries fail with
// spatialmath.ErrDivisionByZero.
func NewCentralDifference(path PathFunc, dt float64) (Trajectory, error) {
	if path == nil {
		return nil, ErrNilPath
	}
	if err := checkStep(dt); err != nil {
		return nil, err
	}
	return &centralDifference{path: path, dt: dt}, nil
}

func (cd *centralDifference) Position(t float64) (spatialmath.Vector2, error) {
	pos, _, err := evaluate(cd.path, t)
	return pos, err
}

func (cd *centralDifference) Angle(t float64) (float64, error) {
	_, angle, err := evaluate(cd.path, t)
	return angle, err
}

// stencil applies formula to both the position and the angle of the path around t. Each stencil
// point is evaluated once.
func (cd *centralDifference) stencil(formula fd.Formula, t float64) (spatialmath.Vector2, float64, error) {
	if cd.dt == 0 {
		return spatialmath.Vector2{}, 0, spatialmath.ErrDivisionByZero
	}
	var posSum spatialmath.Vector2
	var angleSum float64
	for _, pt := range formula.Stencil {
		pos, angle, err := evaluate(cd.path, t+cd.dt*pt.Loc)
		if err != nil {
			return spatialmath.Vector2{}, 0, err
		}
		posSum = posSum.Add(pos.Mul(pt.Coeff))
		angleSum += pt.Coeff * angle
	}
	scale := math.Pow(cd.dt, float64(formula.Derivative))
	pos, err := posSum.Div(scale)
	if err != nil {
		return spatialmath.Vector2{}, 0, err
	}
	angle, err := divide(angleSum, scale)
	if err != nil {
		return spatialmath.Vector2{}, 0, err
	}
	return pos, angle, nil
}

func (cd *centralDifference) Velocity(t float64) (spatialmath.Vector2, error) {
	v, _, err := cd.stencil(fd.Central, t)
	return v, err
}

func (cd *centralDifference) Acceleration(t float64) (spatialmath.Vector2, error) {
	a, _, err := cd.stencil(fd.Central2nd, t)
	return a, err
}

func (cd *centralDifference) AngularSpeed(t float64) (float64, error) {
	_, w, err := cd.stencil(fd.Central, t)
	return w, err
}

func (cd *centralDifference) AngularAcceleration(t float64) (float64, error) {
	_, alpha, err := cd.stencil(fd.Central2nd, t)
	return alpha, err
}
