package tunable

import (
	"math"

	"github.com/pkg/errors"
)

const (
	// MaxValues bounds the grid along one tunable.
	MaxValues = 1000000
	// MaxCombinations bounds the whole grid.
	MaxCombinations = 10000000
)

// Tunable is one parameter to sweep, from Min to Max inclusive in increments
// of Step.
type Tunable struct {
	Name string  `yaml:"name"`
	Min  float64 `yaml:"min"`
	Max  float64 `yaml:"max"`
	Step float64 `yaml:"step"`
}

// Fixed is a tunable with a single value.
func Fixed(name string, value float64) Tunable {
	return Tunable{Name: name, Min: value, Max: value, Step: 1}
}

func (t Tunable) Validate() error {
	for _, v := range []float64{t.Min, t.Max, t.Step} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return errors.Errorf("tunable %s: bounds must be finite, got %v,%v,%v", t.Name, t.Min, t.Max, t.Step)
		}
	}
	if t.Step <= 0 {
		return errors.Errorf("tunable %s: step must be positive, got %v", t.Name, t.Step)
	}
	if t.Max < t.Min {
		return errors.Errorf("tunable %s: max %v is below min %v", t.Name, t.Max, t.Min)
	}
	if n := t.span(); n+1 > MaxValues {
		return errors.Errorf("tunable %s: %v values is more than the limit of %d", t.Name, n+1, MaxValues)
	}
	return nil
}

// span is the number of steps from Min to Max, as a float so that it can be
// range checked before conversion.
func (t Tunable) span() float64 {
	return math.Floor((t.Max-t.Min)/t.Step + 1e-9)
}

// Count is the number of swept values.  Only meaningful for a valid tunable.
func (t Tunable) Count() int {
	return int(t.span()) + 1
}

// Values lists the swept values.  Max is included when it lies on the grid,
// allowing for rounding.  The tunable must be valid.
func (t Tunable) Values() []float64 {
	values := make([]float64, t.Count())
	for i := range values {
		values[i] = t.Min + float64(i)*t.Step
	}
	return values
}

type Tunables struct {
	All []Tunable
}

func (t *Tunables) Validate() error {
	n := 1
	for _, tu := range t.All {
		if err := tu.Validate(); err != nil {
			return err
		}
		if tu.Count() > MaxCombinations/n {
			return errors.Errorf("sweep has more than %d combinations", MaxCombinations)
		}
		n *= tu.Count()
	}
	return nil
}

// Combinations is the number of points in the full grid.
func (t *Tunables) Combinations() int {
	n := 1
	for _, tu := range t.All {
		n *= tu.Count()
	}
	return n
}

// Each calls fn with every point of the grid, the last tunable varying
// fastest.
func (t *Tunables) Each(fn func(values []float64)) {
	values := make([]float64, len(t.All))
	var walk func(i int)
	walk = func(i int) {
		if i == len(t.All) {
			fn(values)
			return
		}
		for _, v := range t.All[i].Values() {
			values[i] = v
			walk(i + 1)
		}
	}
	walk(0)
}
