package caster

import (
	"fmt"
	"sort"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pkg/errors"

	"go.viam.com/casterdrive/logging"
	"go.viam.com/casterdrive/trajectory"
	"go.viam.com/casterdrive/utils"
)

// Config is how you configure a caster base.
type Config struct {
	Wheels           []WheelMount       `json:"wheels"`
	TangentDirection TangentDirection   `json:"tangent_direction,omitempty"`
	SpinFormula      SpinFormula        `json:"spin_formula,omitempty"`
	Parallel         bool               `json:"parallel,omitempty"`
	Trajectory       *trajectory.Config `json:"trajectory,omitempty"`
}

// Validate ensures all parts of the config are valid.
func (cfg *Config) Validate(path string) error {
	if len(cfg.Wheels) == 0 {
		return utils.NewConfigValidationFieldRequiredError(path, "wheels")
	}
	for i, wheel := range cfg.Wheels {
		if err := wheel.Validate(); err != nil {
			return utils.NewConfigValidationError(fmt.Sprintf("%s.wheels.%d", path, i), err)
		}
	}

	switch cfg.TangentDirection {
	case "", TangentHeading, TangentMount:
	default:
		return utils.NewConfigValidationError(path,
			errors.Errorf("unknown tangent_direction %q, expected %q or %q", cfg.TangentDirection, TangentHeading, TangentMount))
	}
	switch cfg.SpinFormula {
	case "", SpinRolling, SpinReference:
	default:
		return utils.NewConfigValidationError(path,
			errors.Errorf("unknown spin_formula %q, expected %q or %q", cfg.SpinFormula, SpinRolling, SpinReference))
	}

	if cfg.Trajectory != nil {
		return cfg.Trajectory.Validate(path + ".trajectory")
	}
	return nil
}

// AttributesToConfig decodes a loosely typed attribute map, as found in JSON configuration, into a
// Config. Unknown attributes are an error.
func AttributesToConfig(attributes map[string]interface{}) (*Config, error) {
	var conf Config
	var md mapstructure.Metadata
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:  "json",
		Result:   &conf,
		Metadata: &md,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(attributes); err != nil {
		return nil, err
	}
	if len(md.Unused) > 0 {
		sort.Strings(md.Unused)
		return nil, errors.Errorf("unknown caster attributes: %s", strings.Join(md.Unused, ", "))
	}
	return &conf, nil
}

// String prints out a table of the wheel layout followed by the configured policies.
func (cfg Config) String() string {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"#", "X", "Y", "Radius", "Mount Radius"})
	for i, wheel := range cfg.Wheels {
		t.AppendRow(table.Row{
			i,
			fmt.Sprintf("%.3f", wheel.Position.X),
			fmt.Sprintf("%.3f", wheel.Position.Y),
			fmt.Sprintf("%.3f", wheel.Radius),
			fmt.Sprintf("%.3f", wheel.Position.Norm()),
		})
	}
	t.AppendFooter(table.Row{"", "tangent", cfg.tangent(), "spin", cfg.spin()})
	return t.Render()
}

func (cfg *Config) tangent() TangentDirection {
	if cfg.TangentDirection == "" {
		return TangentHeading
	}
	return cfg.TangentDirection
}

func (cfg *Config) spin() SpinFormula {
	if cfg.SpinFormula == "" {
		return SpinRolling
	}
	return cfg.SpinFormula
}

// NewSolver returns a Solver with the policies of cfg. The wheel list itself is not part of the
// solver; it is passed to every WheelCommands call.
func NewSolver(cfg *Config, logger logging.Logger) (*Solver, error) {
	if err := cfg.Validate("caster"); err != nil {
		return nil, err
	}
	s := &Solver{tangent: cfg.tangent(), spin: cfg.spin(), parallel: cfg.Parallel}
	logger.Debugw("caster solver created",
		"wheels", len(cfg.Wheels),
		"tangent_direction", string(s.tangent),
		"spin_formula", string(s.spin),
		"parallel", s.parallel)
	return s, nil
}
