// Package main is castersim, which prints the steering and spin commands of a caster base as it
// follows one of the built-in paths.
package main

import (
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/montanaflynn/stats"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/spf13/cast"
	"github.com/urfave/cli/v2"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"go.viam.com/casterdrive/components/base/caster"
	"go.viam.com/casterdrive/logging"
	"go.viam.com/casterdrive/spatialmath"
	"go.viam.com/casterdrive/trajectory"
	"go.viam.com/casterdrive/utils"
)

const (
	// Flags.
	flagPath     = "path"
	flagMethod   = "method"
	flagStep     = "step"
	flagDuration = "duration"
	flagTick     = "tick"
	flagWheel    = "wheel"
	flagTangent  = "tangent"
	flagSpin     = "spin"
	flagParallel = "parallel"
	flagPlot     = "plot"
	flagDebug    = "debug"

	pathCircular = "circular"
	pathSpin     = "spin"
	pathStraight = "straight"

	methodAnalytic = "analytic"
)

var defaultWheels = []string{"0.3,0.3,0.05", "-0.3,0.3,0.05", "-0.3,-0.3,0.05", "0.3,-0.3,0.05"}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		logging.Global().Error(err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	var logger logging.Logger

	return &cli.App{
		Name:  "castersim",
		Usage: "tabulate caster wheel commands along a path",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  flagPath,
				Value: pathCircular,
				Usage: "path to follow: circular, spin or straight",
			},
			&cli.StringFlag{
				Name:  flagMethod,
				Value: string(trajectory.MethodForward),
				Usage: "how derivatives are computed: forward, central or analytic",
			},
			&cli.Float64Flag{
				Name:  flagStep,
				Usage: "finite difference step in seconds (0 for the default)",
			},
			&cli.Float64Flag{
				Name:  flagDuration,
				Value: 2,
				Usage: "seconds to simulate",
			},
			&cli.Float64Flag{
				Name:  flagTick,
				Value: 0.25,
				Usage: "seconds between printed rows",
			},
			&cli.StringSliceFlag{
				Name:  flagWheel,
				Usage: "wheel mount as `X,Y,RADIUS`; repeat for more wheels (default: a square base)",
			},
			&cli.StringFlag{
				Name:  flagTangent,
				Value: string(caster.TangentHeading),
				Usage: "direction of the rotational velocity: heading or mount",
			},
			&cli.StringFlag{
				Name:  flagSpin,
				Value: string(caster.SpinRolling),
				Usage: "wheel spin formula: rolling or reference",
			},
			&cli.BoolFlag{
				Name:  flagParallel,
				Usage: "compute wheels concurrently",
			},
			&cli.StringFlag{
				Name:  flagPlot,
				Usage: "also write the steering angles to `FILE` (png, svg or pdf)",
			},
			&cli.BoolFlag{
				Name:  flagDebug,
				Usage: "enable debug logging",
			},
		},
		Before: func(c *cli.Context) error {
			if c.Bool(flagDebug) {
				logger = logging.NewDebugLogger("castersim")
			} else {
				logger = logging.NewLogger("castersim")
			}
			logging.ReplaceGlobal(logger)
			return nil
		},
		Action: func(c *cli.Context) error {
			return simulate(c, logger)
		},
	}
}

func simulate(c *cli.Context, logger logging.Logger) error {
	cfg, err := configFromFlags(c)
	if err != nil {
		return err
	}
	if err := cfg.Validate("castersim"); err != nil {
		return err
	}
	logger.Debugf("wheel layout:\n%s", cfg)

	traj, err := pathTrajectory(c.String(flagPath), c.String(flagMethod), cfg.Trajectory)
	if err != nil {
		return err
	}
	solver, err := caster.NewSolver(cfg, logger.Sublogger("caster"))
	if err != nil {
		return err
	}
	holder := caster.NewHolder(solver, cfg.Wheels, logger.Sublogger("holder"))

	duration, tick := c.Float64(flagDuration), c.Float64(flagTick)
	if !utils.IsFinite(tick) || tick <= 0 {
		return errors.Errorf("--%s must be positive, got %v", flagTick, tick)
	}
	if !utils.IsFinite(duration) || duration < 0 {
		return errors.Errorf("--%s must not be negative, got %v", flagDuration, duration)
	}

	ticks := int(math.Floor(duration/tick+1e-9)) + 1
	times := make([]float64, ticks)
	history := make([][]caster.WheelCommand, ticks)
	for i := range times {
		times[i] = float64(i) * tick
		commands, err := holder.Commands(c.Context, traj, times[i])
		if err != nil {
			return errors.Wrapf(err, "computing wheel commands at t=%v", times[i])
		}
		history[i] = commands
	}

	rendered, err := renderTable(times, history, len(cfg.Wheels))
	if err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, rendered)

	if file := c.String(flagPlot); file != "" {
		if err := writePlot(file, times, history, len(cfg.Wheels)); err != nil {
			return errors.Wrapf(err, "writing plot to %q", file)
		}
		logger.Infof("wrote steering plot to %s", file)
	}
	return nil
}

// renderTable prints one row per tick, with a footer holding the largest steering angle and spin
// rate each wheel was commanded.
func renderTable(times []float64, history [][]caster.WheelCommand, wheels int) (string, error) {
	out := table.NewWriter()
	header := table.Row{"t"}
	footer := table.Row{"max"}
	for w := 0; w < wheels; w++ {
		header = append(header, fmt.Sprintf("w%d steer (deg)", w), fmt.Sprintf("w%d spin", w))

		steer, err := stats.Max(lo.Map(history, func(commands []caster.WheelCommand, _ int) float64 {
			return math.Abs(utils.RadToDeg(commands[w].Angle))
		}))
		if err != nil {
			return "", err
		}
		spin, err := stats.Max(lo.Map(history, func(commands []caster.WheelCommand, _ int) float64 {
			return math.Abs(commands[w].AngularVelocity)
		}))
		if err != nil {
			return "", err
		}
		footer = append(footer, fmt.Sprintf("%.2f", steer), fmt.Sprintf("%.3f", spin))
	}
	out.AppendHeader(header)
	for i, commands := range history {
		row := table.Row{fmt.Sprintf("%.3f", times[i])}
		for _, cmd := range commands {
			row = append(row, fmt.Sprintf("%.2f", utils.RadToDeg(cmd.Angle)), fmt.Sprintf("%.3f", cmd.AngularVelocity))
		}
		out.AppendRow(row)
	}
	out.AppendFooter(footer)
	return out.Render(), nil
}

func writePlot(file string, times []float64, history [][]caster.WheelCommand, wheels int) error {
	p := plot.New()
	p.Title.Text = "caster steering"
	p.X.Label.Text = "t (s)"
	p.Y.Label.Text = "steer (deg)"
	for w := 0; w < wheels; w++ {
		xys := make(plotter.XYs, len(times))
		for i, t := range times {
			xys[i].X = t
			xys[i].Y = utils.RadToDeg(history[i][w].Angle)
		}
		line, err := plotter.NewLine(xys)
		if err != nil {
			return err
		}
		line.Color = plotutil.Color(w)
		p.Add(line)
		p.Legend.Add(fmt.Sprintf("w%d", w), line)
	}
	return p.Save(6*vg.Inch, 4*vg.Inch, file)
}

func configFromFlags(c *cli.Context) (*caster.Config, error) {
	wheelArgs := c.StringSlice(flagWheel)
	if len(wheelArgs) == 0 {
		wheelArgs = defaultWheels
	}
	cfg := &caster.Config{
		TangentDirection: caster.TangentDirection(c.String(flagTangent)),
		SpinFormula:      caster.SpinFormula(c.String(flagSpin)),
		Parallel:         c.Bool(flagParallel),
	}
	for _, arg := range wheelArgs {
		wheel, err := parseWheel(arg)
		if err != nil {
			return nil, err
		}
		cfg.Wheels = append(cfg.Wheels, wheel)
	}
	if method := c.String(flagMethod); method != methodAnalytic {
		cfg.Trajectory = &trajectory.Config{Method: trajectory.Method(method), Step: c.Float64(flagStep)}
	}
	return cfg, nil
}

// parseWheel reads an "x,y,radius" triple.
func parseWheel(arg string) (caster.WheelMount, error) {
	parts := strings.Split(arg, ",")
	if len(parts) != 3 {
		return caster.WheelMount{}, errors.Errorf("wheel %q must be x,y,radius", arg)
	}
	values := make([]float64, 3)
	for i, part := range parts {
		v, err := cast.ToFloat64E(strings.TrimSpace(part))
		if err != nil {
			return caster.WheelMount{}, errors.Wrapf(err, "wheel %q", arg)
		}
		values[i] = v
	}
	return caster.WheelMount{Position: spatialmath.Vector2{X: values[0], Y: values[1]}, Radius: values[2]}, nil
}

func pathTrajectory(path, method string, cfg *trajectory.Config) (trajectory.Trajectory, error) {
	if method == methodAnalytic {
		switch path {
		case pathCircular:
			return trajectory.NewCircular(1, 1)
		case pathSpin:
			return trajectory.NewForwardSpinning(1, 1)
		case pathStraight:
			return trajectory.NewForwardSpinning(1, 0)
		}
		return nil, errors.Errorf("unknown path %q", path)
	}

	var pathFunc trajectory.PathFunc
	switch path {
	case pathCircular:
		pathFunc = trajectory.CircularPath
	case pathSpin:
		pathFunc = trajectory.ForwardSpinningPath
	case pathStraight:
		pathFunc = trajectory.StraightPath
	default:
		return nil, errors.Errorf("unknown path %q", path)
	}
	return trajectory.New(pathFunc, cfg)
}
