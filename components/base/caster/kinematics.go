// Package caster computes steering and spin commands for the free-swiveling wheels of a base
// that follows a planar trajectory. A caster wheel always turns to face its own velocity, so each
// command depends only on where the wheel is mounted and how the body is moving.
package caster

import (
	"context"
	"fmt"
	"math"

	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"go.viam.com/casterdrive/spatialmath"
	"go.viam.com/casterdrive/trajectory"
	"go.viam.com/casterdrive/utils"
)

// ErrNaNTrajectory is returned when the trajectory reports a NaN heading, angular speed or velocity.
var ErrNaNTrajectory = errors.New("trajectory produced NaN")

// WheelMount is the fixed placement of one wheel on the body. Position is in the body frame,
// relative to the pivot. Radius is the physical wheel radius and must be positive.
type WheelMount struct {
	Position spatialmath.Vector2 `json:"position"`
	Radius   float64             `json:"radius"`
}

// Validate reports whether the mount describes a physical wheel.
func (wm WheelMount) Validate() error {
	if wm.Position.HasNaNs() {
		return errors.New("position must not be NaN")
	}
	if !utils.IsFinite(wm.Radius) || wm.Radius <= 0 {
		return errors.Errorf("radius must be a positive number, got %v", wm.Radius)
	}
	return nil
}

// WheelCommand is what a wheel actuator has to realize at one instant.
type WheelCommand struct {
	// Angle is the steering angle in radians, measured from the body's +Y axis toward +X.
	Angle float64
	// AngularVelocity is the wheel spin rate.
	AngularVelocity float64
}

// WheelError is a failure confined to a single wheel of a batch.
type WheelError struct {
	Index int
	Err   error
}

func (e *WheelError) Error() string {
	return fmt.Sprintf("wheel %d: %v", e.Index, e.Err)
}

func (e *WheelError) Unwrap() error {
	return e.Err
}

// TangentDirection selects the direction given to the velocity a wheel picks up from body rotation.
type TangentDirection string

const (
	// TangentHeading points the rotational contribution along the body heading (cos θ, sin θ).
	TangentHeading = TangentDirection("heading")
	// TangentMount points it perpendicular to the mount vector once rotated into the world by the
	// heading, which is the rigid-body velocity of the mount point.
	TangentMount = TangentDirection("mount")
)

// SpinFormula selects how a wheel's spin rate is derived from its speed.
type SpinFormula string

const (
	// SpinRolling is the rolling-without-slip rate |v| / r in radians per second.
	SpinRolling = SpinFormula("rolling")
	// SpinReference is (2πr / |v|) * 2π. It grows as the wheel slows down.
	SpinReference = SpinFormula("reference")
)

// Solver turns a trajectory query into one command per wheel.
type Solver struct {
	tangent  TangentDirection
	spin     SpinFormula
	parallel bool
}

var defaultSolver = &Solver{tangent: TangentHeading, spin: SpinRolling}

// WheelCommands computes the command of every wheel at time t with the default policies: heading
// tangent direction, rolling spin rate, sequential evaluation. See Solver.WheelCommands.
func WheelCommands(wheels []WheelMount, traj trajectory.Trajectory, t float64) ([]WheelCommand, error) {
	return defaultSolver.WheelCommands(context.Background(), wheels, traj, t)
}

// bodyMotion is the part of the trajectory every wheel shares.
type bodyMotion struct {
	angle        float64
	angularSpeed float64
	velocity     spatialmath.Vector2
}

func queryBody(traj trajectory.Trajectory, t float64) (bodyMotion, error) {
	var body bodyMotion
	var err error
	if body.angle, err = traj.Angle(t); err != nil {
		return bodyMotion{}, err
	}
	if body.angularSpeed, err = traj.AngularSpeed(t); err != nil {
		return bodyMotion{}, err
	}
	if body.velocity, err = traj.Velocity(t); err != nil {
		return bodyMotion{}, err
	}
	if math.IsNaN(body.angle) || math.IsNaN(body.angularSpeed) || body.velocity.HasNaNs() {
		return bodyMotion{}, errors.Wrapf(ErrNaNTrajectory, "at t=%v", t)
	}
	return body, nil
}

// WheelCommands returns exactly one command per wheel, in the order of wheels.
//
// A failing trajectory query or an invalid mount fails the whole batch and no commands are
// returned. A wheel whose contact point is not moving has no defined steering angle; it gets a
// zero command and a *WheelError wrapping spatialmath.ErrDivisionByZero, while every other wheel
// is still computed. Per-wheel errors are combined with multierr, in wheel order.
func (s *Solver) WheelCommands(
	ctx context.Context, wheels []WheelMount, traj trajectory.Trajectory, t float64,
) ([]WheelCommand, error) {
	for i, wheel := range wheels {
		if err := wheel.Validate(); err != nil {
			return nil, errors.Wrapf(err, "invalid mount for wheel %d", i)
		}
	}
	if len(wheels) == 0 {
		return []WheelCommand{}, nil
	}
	body, err := queryBody(traj, t)
	if err != nil {
		return nil, err
	}

	commands := make([]WheelCommand, len(wheels))
	wheelErrs := make([]error, len(wheels))
	compute := func(i int) {
		cmd, err := s.command(wheels[i], body)
		if err != nil {
			wheelErrs[i] = &WheelError{Index: i, Err: err}
			return
		}
		commands[i] = cmd
	}

	if s.parallel {
		if err := utils.RunIndexedInParallel(ctx, len(wheels), func(_ context.Context, i int) error {
			compute(i)
			return nil
		}); err != nil {
			return nil, err
		}
	} else {
		for i := range wheels {
			compute(i)
		}
	}
	return commands, multierr.Combine(wheelErrs...)
}

// wheelVelocity is the velocity of the wheel's contact point: the body velocity plus the
// contribution of body rotation at the mount.
func (s *Solver) wheelVelocity(wheel WheelMount, body bodyMotion) spatialmath.Vector2 {
	if s.tangent == TangentMount {
		// ω × R(θ)p, with the perpendicular taken before rotating
		sin, cos := math.Sincos(body.angle)
		perp := spatialmath.Vector2{X: -wheel.Position.Y, Y: wheel.Position.X}
		rotated := spatialmath.Vector2{X: perp.X*cos - perp.Y*sin, Y: perp.X*sin + perp.Y*cos}
		return body.velocity.Add(rotated.Mul(body.angularSpeed))
	}
	tangentialSpeed := wheel.Position.Norm() * body.angularSpeed
	direction := spatialmath.Vector2{X: math.Cos(body.angle), Y: math.Sin(body.angle)}
	return body.velocity.Add(direction.Mul(tangentialSpeed))
}

func (s *Solver) command(wheel WheelMount, body bodyMotion) (WheelCommand, error) {
	velocity := s.wheelVelocity(wheel, body)
	speed := velocity.Norm()
	if speed == 0 {
		return WheelCommand{}, spatialmath.ErrDivisionByZero
	}

	cmd := WheelCommand{Angle: math.Atan2(velocity.X, velocity.Y)}
	switch s.spin {
	case SpinReference:
		circumference := 2 * math.Pi * wheel.Radius
		cmd.AngularVelocity = (circumference / speed) * (2 * math.Pi)
	default:
		cmd.AngularVelocity = speed / wheel.Radius
	}
	return cmd, nil
}
