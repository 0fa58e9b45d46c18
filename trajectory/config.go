package trajectory

import (
	"math"

	"github.com/pkg/errors"

	"go.viam.com/casterdrive/utils"
)

// Method names a numerical differentiation scheme.
type Method string

const (
	// MethodForward uses first-order forward differences. It is the default.
	MethodForward = Method("forward")
	// MethodCentral uses second-order centered differences.
	MethodCentral = Method("central")
)

// Config selects how a PathFunc is differentiated.
type Config struct {
	Method Method  `json:"method,omitempty"`
	Step   float64 `json:"step,omitempty"`
}

// Validate ensures all parts of the config are valid.
func (cfg *Config) Validate(path string) error {
	switch cfg.Method {
	case "", MethodForward, MethodCentral:
	default:
		return utils.NewConfigValidationError(path, errors.Errorf("unknown differentiation method %q", cfg.Method))
	}
	if math.IsNaN(cfg.Step) || math.IsInf(cfg.Step, 0) || cfg.Step < 0 {
		return utils.NewConfigValidationError(path, errors.Errorf("step must be a positive number of seconds, got %v", cfg.Step))
	}
	return nil
}

func (cfg *Config) step() float64 {
	if cfg.Step == 0 {
		return DefaultStep
	}
	return cfg.Step
}

// New wraps path in the numerical Trajectory selected by cfg. A nil cfg gives forward differences
// with DefaultStep.
func New(path PathFunc, cfg *Config) (Trajectory, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	if err := cfg.Validate("trajectory"); err != nil {
		return nil, err
	}
	if cfg.Method == MethodCentral {
		return NewCentralDifference(path, cfg.step())
	}
	return NewForwardDifference(path, cfg.step())
}
