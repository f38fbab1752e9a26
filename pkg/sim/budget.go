package sim

import "time"

// Clock abstracts the wall clock so that real-time runs can be tested.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now()
}

type budget interface {
	// exhausted is checked before each step with the number of steps run so
	// far.
	exhausted(steps int) (StopReason, bool)
}

func newBudget(cfg Config) budget {
	if cfg.Mode == FixedStep {
		return stepBudget(cfg.MaxSteps)
	}
	clock := cfg.Clock
	if clock == nil {
		clock = systemClock{}
	}
	return &wallClockBudget{
		clock:   clock,
		start:   clock.Now(),
		timeout: cfg.Timeout,
	}
}

type stepBudget int

func (b stepBudget) exhausted(steps int) (StopReason, bool) {
	return StepBudgetExhausted, steps >= int(b)
}

type wallClockBudget struct {
	clock   Clock
	start   time.Time
	timeout time.Duration
}

func (b *wallClockBudget) exhausted(int) (StopReason, bool) {
	return TimedOut, b.clock.Now().Sub(b.start) >= b.timeout
}
