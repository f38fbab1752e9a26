package tuner

import (
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/optimize"

	"github.com/tigerbot-team/linefollower/pkg/pid"
	"github.com/tigerbot-team/linefollower/pkg/sim"
	"github.com/tigerbot-team/linefollower/pkg/track"
	"github.com/tigerbot-team/linefollower/pkg/tunable"
)

// DefaultSteps bounds each tuning run when the config doesn't set a step
// budget.  A straight 260cm run at the reference speed takes 520 steps.
const DefaultSteps = 2000

type Candidate struct {
	Gains pid.Gains
	Score float64
}

// Objective wraps the simulation as a function of the gains.  Runs are always
// bounded by a step budget so that scores are repeatable.
type Objective struct {
	Track  *track.Track
	Config sim.Config

	Evaluations int
}

func NewObjective(tr *track.Track, cfg sim.Config) *Objective {
	cfg.Mode = sim.FixedStep
	if cfg.MaxSteps <= 0 {
		cfg.MaxSteps = DefaultSteps
	}
	cfg.RecordTrace = false
	return &Objective{Track: tr, Config: cfg}
}

func (o *Objective) Score(g pid.Gains) float64 {
	o.Evaluations++
	return sim.CumulativeError(o.Track, g, o.Config)
}

// Sweep scores every combination of the three tunables and returns the best.
// Ties keep the earliest candidate in sweep order.
func Sweep(tr *track.Track, cfg sim.Config, kp, ki, kd tunable.Tunable) (Candidate, error) {
	ts := tunable.Tunables{All: []tunable.Tunable{kp, ki, kd}}
	if err := ts.Validate(); err != nil {
		return Candidate{}, err
	}
	obj := NewObjective(tr, cfg)
	total := ts.Combinations()
	log.Info().Int("combinations", total).Msg("Starting gain sweep")

	var best Candidate
	found := false
	ts.Each(func(v []float64) {
		g := pid.Gains{Kp: v[0], Ki: v[1], Kd: v[2]}
		score := obj.Score(g)
		if !found || score < best.Score {
			best = Candidate{Gains: g, Score: score}
			found = true
			log.Debug().Stringer("gains", g).Float64("score", score).Msg("New best")
		}
		if obj.Evaluations%1000 == 0 {
			log.Info().Int("done", obj.Evaluations).Int("of", total).Msg("Sweep progress")
		}
	})
	return best, nil
}

type Settings struct {
	MaxIterations  int
	MaxEvaluations int
}

// Minimize searches for gains with Nelder-Mead, starting from initial.
func Minimize(tr *track.Track, cfg sim.Config, initial pid.Gains, s Settings) (Candidate, error) {
	obj := NewObjective(tr, cfg)
	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			return obj.Score(pid.Gains{Kp: x[0], Ki: x[1], Kd: x[2]})
		},
	}
	settings := &optimize.Settings{
		MajorIterations: s.MaxIterations,
		FuncEvaluations: s.MaxEvaluations,
	}

	res, err := optimize.Minimize(problem, []float64{initial.Kp, initial.Ki, initial.Kd}, settings, &optimize.NelderMead{})
	if res == nil {
		return Candidate{}, errors.Wrap(err, "optimisation failed")
	}
	if err != nil {
		log.Warn().Err(err).Stringer("status", res.Status).Msg("Optimiser stopped early")
	}
	best := Candidate{
		Gains: pid.Gains{Kp: res.X[0], Ki: res.X[1], Kd: res.X[2]},
		Score: res.F,
	}
	log.Info().
		Stringer("gains", best.Gains).
		Float64("score", best.Score).
		Int("evaluations", obj.Evaluations).
		Stringer("status", res.Status).
		Msg("Optimiser finished")
	return best, nil
}
