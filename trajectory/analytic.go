package trajectory

import (
	"github.com/pkg/errors"

	"go.viam.com/casterdrive/spatialmath"
)

// AnalyticFuncs holds closed-form descriptions of a trajectory. Position and Angle are required.
// Any derivative left nil is computed by forward differencing the next lower order function, so a
// path with a known velocity but no known acceleration still gets an exact velocity.
type AnalyticFuncs struct {
	Position            func(t float64) spatialmath.Vector2
	Angle               func(t float64) float64
	Velocity            func(t float64) spatialmath.Vector2
	Acceleration        func(t float64) spatialmath.Vector2
	AngularSpeed        func(t float64) float64
	AngularAcceleration func(t float64) float64

	// Step is the finite difference step for missing derivatives. Zero means DefaultStep.
	Step float64
}

type analytic struct {
	funcs AnalyticFuncs
	dt    float64
}

// NewAnalytic returns a Trajectory backed by closed-form functions.
func NewAnalytic(funcs AnalyticFuncs) (Trajectory, error) {
	if funcs.Position == nil || funcs.Angle == nil {
		return nil, errors.New("analytic trajectory requires both a position and an angle function")
	}
	dt := funcs.Step
	if dt == 0 {
		dt = DefaultStep
	}
	if err := checkStep(dt); err != nil {
		return nil, err
	}
	return &analytic{funcs: funcs, dt: dt}, nil
}

func (a *analytic) Position(t float64) (spatialmath.Vector2, error) {
	return a.funcs.Position(t), nil
}

func (a *analytic) Angle(t float64) (float64, error) {
	return a.funcs.Angle(t), nil
}

func (a *analytic) Velocity(t float64) (spatialmath.Vector2, error) {
	if a.funcs.Velocity != nil {
		return a.funcs.Velocity(t), nil
	}
	return a.funcs.Position(t + a.dt).Sub(a.funcs.Position(t)).Div(a.dt)
}

func (a *analytic) Acceleration(t float64) (spatialmath.Vector2, error) {
	if a.funcs.Acceleration != nil {
		return a.funcs.Acceleration(t), nil
	}
	v1, err := a.Velocity(t + a.dt)
	if err != nil {
		return spatialmath.Vector2{}, err
	}
	v0, err := a.Velocity(t)
	if err != nil {
		return spatialmath.Vector2{}, err
	}
	return v1.Sub(v0).Div(a.dt)
}

func (a *analytic) AngularSpeed(t float64) (float64, error) {
	if a.funcs.AngularSpeed != nil {
		return a.funcs.AngularSpeed(t), nil
	}
	return divide(a.funcs.Angle(t+a.dt)-a.funcs.Angle(t), a.dt)
}

func (a *analytic) AngularAcceleration(t float64) (float64, error) {
	if a.funcs.AngularAcceleration != nil {
		return a.funcs.AngularAcceleration(t), nil
	}
	w1, err := a.AngularSpeed(t + a.dt)
	if err != nil {
		return 0, err
	}
	w0, err := a.AngularSpeed(t)
	if err != nil {
		return 0, err
	}
	return divide(w1-w0, a.dt)
}
