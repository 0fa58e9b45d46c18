package caster

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"go.viam.com/casterdrive/logging"
	"go.viam.com/casterdrive/spatialmath"
	"go.viam.com/casterdrive/trajectory"
)

// Holder wraps a Solver for a fixed set of wheels and recovers from stationary wheels: a wheel
// that is not moving keeps the last steering angle it was commanded and stops spinning. Before any
// wheel has moved its held angle is zero. A Holder is safe for concurrent use.
type Holder struct {
	solver *Solver
	wheels []WheelMount
	logger logging.Logger

	mu   sync.Mutex
	last []WheelCommand
}

// NewHolder returns a Holder for wheels.
func NewHolder(solver *Solver, wheels []WheelMount, logger logging.Logger) *Holder {
	return &Holder{
		solver: solver,
		wheels: append([]WheelMount(nil), wheels...),
		logger: logger,
		last:   make([]WheelCommand, len(wheels)),
	}
}

// Commands returns one command per wheel at time t. Stationary wheels are held instead of
// reported; any other failure is returned as is.
func (h *Holder) Commands(ctx context.Context, traj trajectory.Trajectory, t float64) ([]WheelCommand, error) {
	commands, err := h.solver.WheelCommands(ctx, h.wheels, traj, t)
	if commands == nil {
		return nil, err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	var unhandled []error
	held := make([]bool, len(commands))
	failed := make([]bool, len(commands))
	for _, wheelErr := range multierr.Errors(err) {
		var we *WheelError
		if !errors.As(wheelErr, &we) {
			unhandled = append(unhandled, wheelErr)
			continue
		}
		if errors.Is(we.Err, spatialmath.ErrDivisionByZero) {
			held[we.Index] = true
			continue
		}
		failed[we.Index] = true
		unhandled = append(unhandled, wheelErr)
	}
	for i := range commands {
		if failed[i] {
			continue
		}
		if held[i] {
			commands[i] = WheelCommand{Angle: h.last[i].Angle}
			h.logger.Debugw("holding stationary wheel", "wheel", i, "t", t, "angle", commands[i].Angle)
			continue
		}
		h.last[i] = commands[i]
	}
	return commands, multierr.Combine(unhandled...)
}

// Reset forgets every held angle.
func (h *Holder) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for i := range h.last {
		h.last[i] = WheelCommand{}
	}
}
