package sim

import (
	"fmt"
	"math"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/tigerbot-team/linefollower/pkg/chassis"
	"github.com/tigerbot-team/linefollower/pkg/kinematics"
	"github.com/tigerbot-team/linefollower/pkg/pid"
	"github.com/tigerbot-team/linefollower/pkg/track"
)

// Mode selects how a run is bounded when the car never reaches the finish.
type Mode string

const (
	// RealTime stops the run after Config.Timeout of wall-clock time.  The
	// number of steps depends on machine speed.
	RealTime Mode = "realtime"
	// FixedStep stops the run after Config.MaxSteps steps.
	FixedStep Mode = "fixed"
)

const (
	DefaultFinishX = 260
	DefaultTimeout = 2 * time.Second
)

type Config struct {
	Chassis chassis.Config

	Start        r2.Vec
	StartHeading float64

	// The run ends once the car's x position reaches FinishX.
	FinishX float64

	Mode     Mode
	Timeout  time.Duration
	MaxSteps int

	// Clock is used in RealTime mode; nil means the system clock.
	Clock Clock

	// RecordTrace stores every step in Result.Trace.
	RecordTrace bool
}

func DefaultConfig() Config {
	return Config{
		Chassis:      chassis.Default(),
		Start:        r2.Vec{X: 0, Y: -12},
		StartHeading: math.Pi / 2,
		FinishX:      DefaultFinishX,
		Mode:         RealTime,
		Timeout:      DefaultTimeout,
	}
}

// withDefaults fills in a zero chassis and an unset mode.  An unset mode means
// RealTime, with DefaultTimeout if no timeout is given either.
func (c Config) withDefaults() Config {
	if c.Chassis == (chassis.Config{}) {
		c.Chassis = chassis.Default()
	}
	if c.Mode == "" {
		c.Mode = RealTime
		if c.Timeout == 0 {
			c.Timeout = DefaultTimeout
		}
	}
	return c
}

func (c Config) Validate() error {
	if err := c.Chassis.Validate(); err != nil {
		return err
	}
	switch c.Mode {
	case RealTime:
		if c.Timeout < 0 {
			return errors.Errorf("timeout must not be negative, got %v", c.Timeout)
		}
	case FixedStep:
		if c.MaxSteps <= 0 {
			return errors.Errorf("fixed step mode needs a positive step budget, got %d", c.MaxSteps)
		}
	default:
		return errors.Errorf("unknown mode %q", c.Mode)
	}
	return nil
}

type StopReason int

const (
	ReachedFinish StopReason = iota
	TimedOut
	StepBudgetExhausted
)

func (r StopReason) String() string {
	switch r {
	case ReachedFinish:
		return "finished"
	case TimedOut:
		return "timed out"
	case StepBudgetExhausted:
		return "step budget exhausted"
	}
	return fmt.Sprintf("StopReason(%d)", int(r))
}

// Step is the state of the car at the end of one cycle.
type Step struct {
	Position       r2.Vec
	Heading        float64
	Error          float64
	WheelSpeedDiff float64

	// Wheel speeds, per cycle, that the car's motor mixing would command for
	// WheelSpeedDiff.
	LeftWheel, RightWheel float64
}

type Result struct {
	// CumulativeAbsError is the sum of |cross-track error| over all steps.
	// Lower is better.
	CumulativeAbsError float64
	Steps              int
	Reason             StopReason
	Final              Step
	Trace              []Step
}

// Run drives the simulated car round the track under PID steering until it
// crosses the finish or the run's budget is used up.  Every call starts from
// fresh state.
//
// A zero chassis and an empty mode are defaulted; anything else in cfg is
// expected to have passed Validate.
func Run(tr *track.Track, gains pid.Gains, cfg Config) Result {
	cfg = cfg.withDefaults()
	model := kinematics.New(cfg.Chassis)
	controller := pid.New(gains)
	b := newBudget(cfg)

	var res Result
	pos := cfg.Start
	heading := cfg.StartHeading
	var wheelSpeedDiff float64

	for {
		if pos.X >= cfg.FinishX {
			res.Reason = ReachedFinish
			break
		}
		if reason, done := b.exhausted(res.Steps); done {
			res.Reason = reason
			break
		}

		heading = model.AdvanceHeading(wheelSpeedDiff, heading)
		pos = model.AdvancePosition(heading, pos)
		e := tr.CrossTrackError(pos, cfg.Chassis.SensorLength)
		wheelSpeedDiff = controller.Update(e)

		res.CumulativeAbsError += math.Abs(e)
		res.Steps++
		left, right := model.WheelSpeeds(wheelSpeedDiff)
		res.Final = Step{
			Position:       pos,
			Heading:        heading,
			Error:          e,
			WheelSpeedDiff: wheelSpeedDiff,
			LeftWheel:      left,
			RightWheel:     right,
		}
		if cfg.RecordTrace {
			res.Trace = append(res.Trace, res.Final)
		}
	}

	log.Debug().
		Stringer("gains", gains).
		Int("steps", res.Steps).
		Stringer("reason", res.Reason).
		Float64("absErr", res.CumulativeAbsError).
		Msg("Simulation finished")
	return res
}

// CumulativeError runs the simulation and returns only the tracking score.
func CumulativeError(tr *track.Track, gains pid.Gains, cfg Config) float64 {
	return Run(tr, gains, cfg).CumulativeAbsError
}
