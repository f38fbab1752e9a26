package tuner

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tigerbot-team/linefollower/pkg/pid"
	"github.com/tigerbot-team/linefollower/pkg/sim"
	"github.com/tigerbot-team/linefollower/pkg/track"
	"github.com/tigerbot-team/linefollower/pkg/tunable"
)

func verticalLine() *track.Track {
	tr := &track.Track{}
	for i := 0; i < 600; i++ {
		tr.X = append(tr.X, 3)
		tr.Y = append(tr.Y, -20+0.25*float64(i))
	}
	return tr
}

func shortRun() sim.Config {
	cfg := sim.DefaultConfig()
	cfg.MaxSteps = 200
	return cfg
}

func TestObjectiveForcesFixedStep(t *testing.T) {
	obj := NewObjective(verticalLine(), sim.DefaultConfig())
	assert.Equal(t, sim.FixedStep, obj.Config.Mode)
	assert.Equal(t, DefaultSteps, obj.Config.MaxSteps)

	a := obj.Score(pid.Gains{Kp: 0.1, Kd: 0.5})
	b := obj.Score(pid.Gains{Kp: 0.1, Kd: 0.5})
	assert.Equal(t, a, b)
	assert.Equal(t, 2, obj.Evaluations)
}

func TestSweep(t *testing.T) {
	best, err := Sweep(verticalLine(), shortRun(),
		tunable.Tunable{Name: "kp", Min: 0, Max: 0.2, Step: 0.2},
		tunable.Fixed("ki", 0),
		tunable.Tunable{Name: "kd", Min: 0, Max: 1, Step: 1},
	)
	require.NoError(t, err)

	// Of the four candidates, derivative-only steering tracks this line best.
	assert.Equal(t, pid.Gains{Kp: 0, Ki: 0, Kd: 1}, best.Gains)
	assert.Less(t, best.Score, 100.0)

	cfg := shortRun()
	cfg.Mode = sim.FixedStep
	assert.Equal(t, sim.CumulativeError(verticalLine(), best.Gains, cfg), best.Score)
}

func TestSweepRejectsBadTunable(t *testing.T) {
	for _, kp := range []tunable.Tunable{
		{Name: "kp", Min: 1, Max: 0, Step: 0.1},
		{Name: "kp", Min: 0, Max: math.Inf(1), Step: 1},
		{Name: "kp", Min: 0, Max: 1e9, Step: 1e-9},
	} {
		_, err := Sweep(verticalLine(), shortRun(), kp, tunable.Fixed("ki", 0), tunable.Fixed("kd", 0))
		assert.Error(t, err, "kp=%+v", kp)
	}
}

func TestMinimizeImprovesOnStart(t *testing.T) {
	cfg := shortRun()
	start := pid.Gains{Kp: 0.05}
	obj := NewObjective(verticalLine(), cfg)
	startScore := obj.Score(start)

	best, err := Minimize(verticalLine(), cfg, start, Settings{MaxEvaluations: 150})
	require.NoError(t, err)
	assert.LessOrEqual(t, best.Score, startScore)
	assert.Equal(t, obj.Score(best.Gains), best.Score)
}
