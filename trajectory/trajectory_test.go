package trajectory

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/pkg/errors"
	"go.viam.com/test"

	"go.viam.com/casterdrive/spatialmath"
)

var sampleTimes = []float64{-7.3, -1, 0, 0.25, 1, math.Pi / 2, 3, 12.5}

func countingPath(path PathFunc) (PathFunc, *int) {
	calls := 0
	return func(t float64) (spatialmath.Vector2, float64, error) {
		calls++
		return path(t)
	}, &calls
}

// referenceVelocity and friends spell out the nested forward difference formulas without any
// sample sharing.
func referencePosition(t float64) spatialmath.Vector2 {
	pos, _, _ := CircularPath(t)
	return pos
}

func referenceVelocity(t, dt float64) spatialmath.Vector2 {
	v, _ := referencePosition(t + dt).Sub(referencePosition(t)).Div(dt)
	return v
}

func referenceAcceleration(t, dt float64) spatialmath.Vector2 {
	a, _ := referenceVelocity(t+dt, dt).Sub(referenceVelocity(t, dt)).Div(dt)
	return a
}

func TestForwardDifferenceCircle(t *testing.T) {
	const dt = DefaultStep
	traj, err := NewForwardDifference(CircularPath, dt)
	test.That(t, err, test.ShouldBeNil)

	for _, tm := range sampleTimes {
		pos, err := traj.Position(tm)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, pos, test.ShouldResemble, spatialmath.Vector2{X: math.Cos(tm), Y: math.Sin(tm)})

		angle, err := traj.Angle(tm)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, angle, test.ShouldEqual, tm)

		vel, err := traj.Velocity(tm)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, vel.X, test.ShouldAlmostEqual, -math.Sin(tm), dt)
		test.That(t, vel.Y, test.ShouldAlmostEqual, math.Cos(tm), dt)

		acc, err := traj.Acceleration(tm)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, acc.X, test.ShouldAlmostEqual, -math.Cos(tm), 2*dt)
		test.That(t, acc.Y, test.ShouldAlmostEqual, -math.Sin(tm), 2*dt)

		w, err := traj.AngularSpeed(tm)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, w, test.ShouldAlmostEqual, 1, dt)

		alpha, err := traj.AngularAcceleration(tm)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, alpha, test.ShouldAlmostEqual, 0, dt)
	}
}

func TestForwardDifferenceErrorShrinksWithStep(t *testing.T) {
	const tm = 0.7
	var prevErr float64
	for i, dt := range []float64{0.1, 0.01, 0.001} {
		traj, err := NewForwardDifference(CircularPath, dt)
		test.That(t, err, test.ShouldBeNil)
		vel, err := traj.Velocity(tm)
		test.That(t, err, test.ShouldBeNil)
		velErr := vel.Sub(spatialmath.Vector2{X: -math.Sin(tm), Y: math.Cos(tm)}).Norm()
		// first order: the error is about dt/2 for a unit circle
		test.That(t, velErr, test.ShouldBeLessThan, dt)
		test.That(t, velErr, test.ShouldBeGreaterThan, dt/4)
		if i > 0 {
			test.That(t, velErr, test.ShouldBeLessThan, prevErr/5)
		}
		prevErr = velErr
	}
}

func TestForwardDifferenceMatchesNestedFormula(t *testing.T) {
	const dt = DefaultStep
	path, calls := countingPath(CircularPath)
	traj, err := NewForwardDifference(path, dt)
	test.That(t, err, test.ShouldBeNil)

	for _, tm := range sampleTimes {
		*calls = 0
		vel, err := traj.Velocity(tm)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, *calls, test.ShouldEqual, 2)
		test.That(t, vel, test.ShouldResemble, referenceVelocity(tm, dt))

		*calls = 0
		acc, err := traj.Acceleration(tm)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, *calls, test.ShouldEqual, 3)
		test.That(t, acc, test.ShouldResemble, referenceAcceleration(tm, dt))
	}
}

func TestCentralDifferenceCircle(t *testing.T) {
	const dt = DefaultStep
	traj, err := NewCentralDifference(CircularPath, dt)
	test.That(t, err, test.ShouldBeNil)

	for _, tm := range sampleTimes {
		vel, err := traj.Velocity(tm)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, vel.X, test.ShouldAlmostEqual, -math.Sin(tm), 1e-4)
		test.That(t, vel.Y, test.ShouldAlmostEqual, math.Cos(tm), 1e-4)

		acc, err := traj.Acceleration(tm)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, acc.X, test.ShouldAlmostEqual, -math.Cos(tm), 1e-4)
		test.That(t, acc.Y, test.ShouldAlmostEqual, -math.Sin(tm), 1e-4)

		w, err := traj.AngularSpeed(tm)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, w, test.ShouldAlmostEqual, 1, 1e-9)

		alpha, err := traj.AngularAcceleration(tm)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, alpha, test.ShouldAlmostEqual, 0, 1e-6)
	}
}

func TestZeroStep(t *testing.T) {
	forward, err := NewForwardDifference(CircularPath, 0)
	test.That(t, err, test.ShouldBeNil)
	central, err := NewCentralDifference(CircularPath, 0)
	test.That(t, err, test.ShouldBeNil)

	for _, traj := range []Trajectory{forward, central} {
		_, err := traj.Position(1)
		test.That(t, err, test.ShouldBeNil)
		_, err = traj.Angle(1)
		test.That(t, err, test.ShouldBeNil)

		_, err = traj.Velocity(1)
		test.That(t, err, test.ShouldWrap, spatialmath.ErrDivisionByZero)
		_, err = traj.Acceleration(1)
		test.That(t, err, test.ShouldWrap, spatialmath.ErrDivisionByZero)
		_, err = traj.AngularSpeed(1)
		test.That(t, err, test.ShouldWrap, spatialmath.ErrDivisionByZero)
		_, err = traj.AngularAcceleration(1)
		test.That(t, err, test.ShouldWrap, spatialmath.ErrDivisionByZero)
	}
}

func TestPathFailurePropagates(t *testing.T) {
	errUndefined := errors.New("path undefined before t=0")
	partial := func(t float64) (spatialmath.Vector2, float64, error) {
		if t < 0 {
			return spatialmath.Vector2{}, 0, errUndefined
		}
		return CircularPath(t)
	}

	forward, err := NewForwardDifference(partial, DefaultStep)
	test.That(t, err, test.ShouldBeNil)
	central, err := NewCentralDifference(partial, DefaultStep)
	test.That(t, err, test.ShouldBeNil)

	for _, traj := range []Trajectory{forward, central} {
		_, err := traj.Position(-1)
		test.That(t, err, test.ShouldWrap, errUndefined)
		test.That(t, errors.Cause(err), test.ShouldEqual, errUndefined)
		_, err = traj.Angle(-1)
		test.That(t, err, test.ShouldWrap, errUndefined)
		_, err = traj.Velocity(-1)
		test.That(t, err, test.ShouldWrap, errUndefined)
		_, err = traj.Acceleration(-1)
		test.That(t, err, test.ShouldWrap, errUndefined)
		_, err = traj.AngularSpeed(-1)
		test.That(t, err, test.ShouldWrap, errUndefined)
		_, err = traj.AngularAcceleration(-1)
		test.That(t, err, test.ShouldWrap, errUndefined)

		_, err = Sample(traj, -5)
		test.That(t, err, test.ShouldWrap, errUndefined)
	}

	// the centered stencil reaches back to t-dt
	_, err = central.Velocity(0)
	test.That(t, err, test.ShouldWrap, errUndefined)
	_, err = forward.Velocity(0)
	test.That(t, err, test.ShouldBeNil)
}

func TestDeterminism(t *testing.T) {
	forward, err := NewForwardDifference(CircularPath, DefaultStep)
	test.That(t, err, test.ShouldBeNil)
	central, err := NewCentralDifference(CircularPath, DefaultStep)
	test.That(t, err, test.ShouldBeNil)
	circle, err := NewCircular(1, 1)
	test.That(t, err, test.ShouldBeNil)

	for _, traj := range []Trajectory{forward, central, circle} {
		for _, tm := range sampleTimes {
			first, err := Sample(traj, tm)
			test.That(t, err, test.ShouldBeNil)
			second, err := Sample(traj, tm)
			test.That(t, err, test.ShouldBeNil)
			test.That(t, second, test.ShouldResemble, first)
			test.That(t, first.HasNaNs(), test.ShouldBeFalse)
		}
	}
}

func TestAnalytic(t *testing.T) {
	circle, err := NewCircular(2, 0.5)
	test.That(t, err, test.ShouldBeNil)
	for _, tm := range sampleTimes {
		s, err := Sample(circle, tm)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, s.Position.Norm(), test.ShouldAlmostEqual, 2, 1e-12)
		test.That(t, s.Velocity.Norm(), test.ShouldAlmostEqual, 1, 1e-12)
		test.That(t, s.Velocity.Dot(s.Position), test.ShouldAlmostEqual, 0, 1e-12)
		test.That(t, s.Acceleration.Norm(), test.ShouldAlmostEqual, 0.5, 1e-12)
		test.That(t, s.Angle, test.ShouldEqual, 0.5*tm)
		test.That(t, s.AngularSpeed, test.ShouldEqual, 0.5)
		test.That(t, s.AngularAcceleration, test.ShouldEqual, 0.)
	}

	spin, err := NewForwardSpinning(3, -2)
	test.That(t, err, test.ShouldBeNil)
	s, err := Sample(spin, 4)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, s.Position, test.ShouldResemble, spatialmath.Vector2{X: 0, Y: 12})
	test.That(t, s.Velocity, test.ShouldResemble, spatialmath.Vector2{X: 0, Y: 3})
	test.That(t, s.Angle, test.ShouldEqual, -8.)
	test.That(t, s.AngularSpeed, test.ShouldEqual, -2.)
}

func TestVariantsAgree(t *testing.T) {
	exact, err := NewCircular(1, 1)
	test.That(t, err, test.ShouldBeNil)
	forward, err := NewForwardDifference(CircularPath, DefaultStep)
	test.That(t, err, test.ShouldBeNil)
	central, err := NewCentralDifference(CircularPath, DefaultStep)
	test.That(t, err, test.ShouldBeNil)

	for _, tm := range sampleTimes {
		want, err := Sample(exact, tm)
		test.That(t, err, test.ShouldBeNil)
		for _, tc := range []struct {
			traj      Trajectory
			tolerance float64
		}{
			{forward, 2 * DefaultStep},
			{central, 1e-4},
		} {
			got, err := Sample(tc.traj, tm)
			test.That(t, err, test.ShouldBeNil)
			diff := cmp.Diff(want, got, cmpopts.EquateApprox(0, tc.tolerance))
			test.That(t, diff, test.ShouldBeEmpty)
		}
	}
}

func TestAnalyticFallsBackToForwardDifference(t *testing.T) {
	partial, err := NewAnalytic(AnalyticFuncs{
		Position: referencePosition,
		Angle:    func(t float64) float64 { return t },
	})
	test.That(t, err, test.ShouldBeNil)
	forward, err := NewForwardDifference(CircularPath, DefaultStep)
	test.That(t, err, test.ShouldBeNil)

	for _, tm := range sampleTimes {
		got, err := Sample(partial, tm)
		test.That(t, err, test.ShouldBeNil)
		want, err := Sample(forward, tm)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, got, test.ShouldResemble, want)
	}

	withVelocity, err := NewAnalytic(AnalyticFuncs{
		Position: referencePosition,
		Angle:    func(t float64) float64 { return t },
		Velocity: func(t float64) spatialmath.Vector2 { return spatialmath.Vector2{X: -math.Sin(t), Y: math.Cos(t)} },
		Step:     1e-5,
	})
	test.That(t, err, test.ShouldBeNil)
	acc, err := withVelocity.Acceleration(1)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, acc.X, test.ShouldAlmostEqual, -math.Cos(1), 1e-4)
	test.That(t, acc.Y, test.ShouldAlmostEqual, -math.Sin(1), 1e-4)

	_, err = NewAnalytic(AnalyticFuncs{Angle: func(t float64) float64 { return t }})
	test.That(t, err, test.ShouldNotBeNil)
	_, err = NewAnalytic(AnalyticFuncs{Position: referencePosition, Angle: func(float64) float64 { return 0 }, Step: math.Inf(1)})
	test.That(t, err, test.ShouldNotBeNil)
}

func TestExamplePaths(t *testing.T) {
	pos, angle, err := ForwardSpinningPath(2)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, pos, test.ShouldResemble, spatialmath.Vector2{X: 0, Y: 2})
	test.That(t, angle, test.ShouldEqual, 2.)

	pos, angle, err = StraightPath(-3)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, pos, test.ShouldResemble, spatialmath.Vector2{X: 0, Y: -3})
	test.That(t, angle, test.ShouldEqual, 0.)
}

func TestSampleNaNs(t *testing.T) {
	nanPath := func(t float64) (spatialmath.Vector2, float64, error) {
		return spatialmath.Vector2{X: math.NaN(), Y: t}, 0, nil
	}
	traj, err := NewForwardDifference(nanPath, DefaultStep)
	test.That(t, err, test.ShouldBeNil)
	s, err := Sample(traj, 1)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, s.HasNaNs(), test.ShouldBeTrue)
}

func TestConfig(t *testing.T) {
	for _, tc := range []struct {
		cfg Config
		ok  bool
	}{
		{Config{}, true},
		{Config{Method: MethodForward, Step: 0.05}, true},
		{Config{Method: MethodCentral}, true},
		{Config{Method: "backward"}, false},
		{Config{Step: -0.01}, false},
		{Config{Step: math.NaN()}, false},
		{Config{Step: math.Inf(1)}, false},
	} {
		err := tc.cfg.Validate("trajectory")
		if tc.ok {
			test.That(t, err, test.ShouldBeNil)
		} else {
			test.That(t, err, test.ShouldNotBeNil)
			test.That(t, err.Error(), test.ShouldStartWith, `error validating "trajectory"`)
		}
	}

	traj, err := New(CircularPath, nil)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, traj, test.ShouldHaveSameTypeAs, &forwardDifference{})
	test.That(t, traj.(*forwardDifference).dt, test.ShouldEqual, DefaultStep)

	traj, err = New(CircularPath, &Config{Method: MethodCentral, Step: 0.001})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, traj, test.ShouldHaveSameTypeAs, &centralDifference{})
	test.That(t, traj.(*centralDifference).dt, test.ShouldEqual, 0.001)

	_, err = New(nil, nil)
	test.That(t, err, test.ShouldBeError, ErrNilPath)
	_, err = New(CircularPath, &Config{Method: "spline"})
	test.That(t, err, test.ShouldNotBeNil)
	_, err = NewForwardDifference(CircularPath, math.NaN())
	test.That(t, err, test.ShouldNotBeNil)
}
