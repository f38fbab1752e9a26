package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/alecthomas/kong"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/tigerbot-team/linefollower/pkg/config"
	"github.com/tigerbot-team/linefollower/pkg/geometry"
	"github.com/tigerbot-team/linefollower/pkg/linesensor"
	"github.com/tigerbot-team/linefollower/pkg/pid"
	"github.com/tigerbot-team/linefollower/pkg/render"
	"github.com/tigerbot-team/linefollower/pkg/sim"
	"github.com/tigerbot-team/linefollower/pkg/telemetry"
	"github.com/tigerbot-team/linefollower/pkg/track"
	"github.com/tigerbot-team/linefollower/pkg/tuner"
	"github.com/tigerbot-team/linefollower/pkg/tunable"
)

type cli struct {
	Config string `help:"Config file." default:"linefollower.yaml" type:"path"`
	Track  string `help:"Track CSV, overrides the config file." type:"path"`
	Debug  bool   `help:"Debug logging."`

	Run        RunCmd        `cmd:"" help:"Simulate one run and print the cumulative absolute error."`
	Sweep      SweepCmd      `cmd:"" help:"Grid search over the gains."`
	Tune       TuneCmd       `cmd:"" help:"Nelder-Mead search over the gains."`
	Frames     FramesCmd     `cmd:"" help:"Write the sensor frames the car would send during a run."`
	Intersect  IntersectCmd  `cmd:"" passthrough:"" help:"Intersect the lines through two pairs of points."`
	DumpConfig DumpConfigCmd `cmd:"" help:"Write out the config in use."`
}

var CLI cli

type Context struct {
	cfg config.Config
}

func (c *Context) loadTrack() (*track.Track, error) {
	tr, err := track.Load(c.cfg.Track)
	if err != nil {
		return nil, err
	}
	log.Info().Str("path", c.cfg.Track).Int("waypoints", tr.Len()).Msg("Loaded track")
	return tr, nil
}

type GainFlags struct {
	Kp float64 `help:"Proportional gain."`
	Ki float64 `help:"Integral gain."`
	Kd float64 `help:"Derivative gain."`
}

func (g GainFlags) Gains() pid.Gains {
	return pid.Gains{Kp: g.Kp, Ki: g.Ki, Kd: g.Kd}
}

type RunCmd struct {
	GainFlags `embed:""`

	FixedSteps int    `help:"Bound the run by this many steps instead of wall-clock time."`
	Trace      string `help:"Write a PNG of the run here." type:"path"`
}

func (r *RunCmd) Run(ctx *Context) error {
	tr, err := ctx.loadTrack()
	if err != nil {
		return err
	}
	cfg := ctx.cfg.SimConfig()
	if r.FixedSteps > 0 {
		cfg.Mode = sim.FixedStep
		cfg.MaxSteps = r.FixedSteps
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	cfg.RecordTrace = r.Trace != ""

	res := sim.Run(tr, r.Gains(), cfg)
	log.Info().
		Int("steps", res.Steps).
		Stringer("reason", res.Reason).
		Float64("x", res.Final.Position.X).
		Float64("y", res.Final.Position.Y).
		Msg("Run complete")
	fmt.Println(res.CumulativeAbsError)

	if r.Trace != "" {
		if err := render.SavePNG(r.Trace, tr, res.Trace, render.DefaultOptions()); err != nil {
			return err
		}
		log.Info().Str("path", r.Trace).Msg("Wrote trace")
	}
	return nil
}

type SweepCmd struct {
	Kp    []float64 `help:"Kp range as min,max,step." default:"0,1,0.1"`
	Ki    []float64 `help:"Ki range as min,max,step." default:"0,0,1"`
	Kd    []float64 `help:"Kd range as min,max,step." default:"0,5,0.5"`
	Steps int       `help:"Step budget per run." default:"2000"`
}

func parseRange(name string, v []float64) (tunable.Tunable, error) {
	if len(v) != 3 {
		return tunable.Tunable{}, errors.Errorf("--%s needs min,max,step", name)
	}
	return tunable.Tunable{Name: name, Min: v[0], Max: v[1], Step: v[2]}, nil
}

func (s *SweepCmd) Run(ctx *Context) error {
	var ranges [3]tunable.Tunable
	for i, r := range []struct {
		name string
		v    []float64
	}{{"kp", s.Kp}, {"ki", s.Ki}, {"kd", s.Kd}} {
		t, err := parseRange(r.name, r.v)
		if err != nil {
			return err
		}
		ranges[i] = t
	}
	tr, err := ctx.loadTrack()
	if err != nil {
		return err
	}
	cfg := ctx.cfg.SimConfig()
	cfg.MaxSteps = s.Steps

	best, err := tuner.Sweep(tr, cfg, ranges[0], ranges[1], ranges[2])
	if err != nil {
		return err
	}
	fmt.Printf("%v score=%v\n", best.Gains, best.Score)
	return nil
}

type TuneCmd struct {
	GainFlags `embed:"" prefix:"start-"`

	Steps    int `help:"Step budget per run." default:"2000"`
	MaxEvals int `help:"Maximum number of simulation runs." default:"500"`
}

func (t *TuneCmd) Run(ctx *Context) error {
	tr, err := ctx.loadTrack()
	if err != nil {
		return err
	}
	cfg := ctx.cfg.SimConfig()
	cfg.MaxSteps = t.Steps

	best, err := tuner.Minimize(tr, cfg, t.Gains(), tuner.Settings{MaxEvaluations: t.MaxEvals})
	if err != nil {
		return err
	}
	fmt.Printf("%v score=%v\n", best.Gains, best.Score)
	return nil
}

type FramesCmd struct {
	GainFlags `embed:""`

	Steps   int    `help:"Number of steps to simulate." default:"500"`
	Sensors int    `help:"Sensors in the simulated IR array." default:"8"`
	Out     string `arg:"" help:"Where to write the frames." type:"path"`
}

func (f *FramesCmd) Run(ctx *Context) error {
	if f.Sensors < 1 {
		return errors.Errorf("need at least one sensor, got %d", f.Sensors)
	}
	tr, err := ctx.loadTrack()
	if err != nil {
		return err
	}
	cfg := ctx.cfg.SimConfig()
	cfg.Mode = sim.FixedStep
	cfg.MaxSteps = f.Steps
	cfg.RecordTrace = true
	if err := cfg.Validate(); err != nil {
		return err
	}
	res := sim.Run(tr, f.Gains(), cfg)

	out, err := os.Create(f.Out)
	if err != nil {
		return errors.Wrap(err, "failed to create frame file")
	}
	defer out.Close()

	w := bufio.NewWriter(out)
	tc := ctx.cfg.Telemetry
	n, err := writeFrames(w, res.Trace, cfg.Chassis.SensorLength, f.Sensors, tc.StartBuffer, tc.EndBuffer)
	if err != nil {
		return err
	}
	if err := w.Flush(); err != nil {
		return errors.Wrap(err, "failed to write frames")
	}
	log.Info().Int("frames", n).Str("path", f.Out).Msg("Wrote frames")
	return errors.Wrap(out.Close(), "failed to close frame file")
}

// writeFrames encodes one frame per step as the car would send it.  The sim's
// error is negative when the line is to the car's right, which is towards the
// last sensor of the array.
func writeFrames(w io.Writer, trace []sim.Step, sensorLength float64, sensors, startLen, endLen int) (int, error) {
	for i, s := range trace {
		frame, err := telemetry.EncodeFrame(linesensor.Simulate(-s.Error, sensorLength, sensors), startLen, endLen)
		if err != nil {
			return i, err
		}
		if _, err := w.Write(frame); err != nil {
			return i, errors.Wrap(err, "failed to write frame")
		}
	}
	return len(trace), nil
}

// IntersectCmd takes its coordinates verbatim so that negative numbers aren't
// read as flags.
type IntersectCmd struct {
	Coords []string `arg:"" optional:"" name:"coord" help:"x1 y1 x2 y2 x3 y3 x4 y4: two points on each line."`
}

func parseCoords(args []string) ([]float64, error) {
	if len(args) > 0 && args[0] == "--" {
		args = args[1:]
	}
	if len(args) != 8 {
		return nil, errors.Errorf("need 8 coordinates, got %d", len(args))
	}
	coords := make([]float64, len(args))
	for i, a := range args {
		v, err := strconv.ParseFloat(a, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "bad coordinate %q", a)
		}
		coords[i] = v
	}
	return coords, nil
}

func (i *IntersectCmd) Run(ctx *Context) error {
	c, err := parseCoords(i.Coords)
	if err != nil {
		return err
	}
	p1 := geometry.NewPath(geometry.NewNode(c[0], c[1]), geometry.NewNode(c[2], c[3]))
	p2 := geometry.NewPath(geometry.NewNode(c[4], c[5]), geometry.NewNode(c[6], c[7]))

	ok, x, y := geometry.PathsIntersect(p1, p2)
	if !ok {
		fmt.Println("parallel")
		return nil
	}
	fmt.Printf("%v %v\n", x, y)
	return nil
}

type DumpConfigCmd struct {
	Out string `arg:"" help:"Where to write the config." type:"path"`
}

func (d *DumpConfigCmd) Run(ctx *Context) error {
	return config.Dump(d.Out, ctx.cfg)
}

func main() {
	k := kong.Parse(&CLI,
		kong.Name("pidsim"),
		kong.Description("Line follower PID simulator."),
		kong.UsageOnError(),
	)

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if CLI.Debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load(CLI.Config)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}
	if CLI.Track != "" {
		cfg.Track = CLI.Track
	}

	err = k.Run(&Context{cfg: cfg})
	if err != nil {
		log.Fatal().Err(err).Str("command", k.Command()).Msg("Command failed")
	}
}
