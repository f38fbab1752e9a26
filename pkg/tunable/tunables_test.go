package tunable

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValues(t *testing.T) {
	assert.Equal(t, []float64{0, 0.5, 1}, Tunable{Name: "kp", Min: 0, Max: 1, Step: 0.5}.Values())
	assert.Equal(t, []float64{2}, Fixed("ki", 2).Values())
	// Max off the grid is not included.
	assert.Equal(t, []float64{0, 2}, Tunable{Name: "kd", Min: 0, Max: 3, Step: 2}.Values())
	// Rounding does not drop the end point.
	assert.Len(t, Tunable{Name: "kd", Min: 0, Max: 0.3, Step: 0.1}.Values(), 4)
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Fixed("kp", 1).Validate())

	for _, tc := range []struct {
		name string
		tu   Tunable
	}{
		{"zero step", Tunable{Name: "kp", Min: 0, Max: 1, Step: 0}},
		{"negative step", Tunable{Name: "kp", Min: 0, Max: 1, Step: -1}},
		{"max below min", Tunable{Name: "kp", Min: 2, Max: 1, Step: 1}},
		{"NaN", Tunable{Name: "kp", Min: math.NaN(), Max: 1, Step: 1}},
		{"infinite max", Tunable{Name: "kp", Min: 0, Max: math.Inf(1), Step: 1}},
		{"infinite min", Tunable{Name: "kp", Min: math.Inf(-1), Max: 0, Step: 1}},
		{"infinite step", Tunable{Name: "kp", Min: 0, Max: 1, Step: math.Inf(1)}},
		{"too many values", Tunable{Name: "kp", Min: 0, Max: 1e9, Step: 1e-9}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			assert.Error(t, tc.tu.Validate())
		})
	}

	assert.NoError(t, Tunable{Name: "kp", Min: 0, Max: MaxValues - 1, Step: 1}.Validate())
	assert.Error(t, Tunable{Name: "kp", Min: 0, Max: MaxValues, Step: 1}.Validate())
}

func TestTunablesValidate(t *testing.T) {
	ts := Tunables{All: []Tunable{
		{Name: "kp", Min: 0, Max: 1, Step: 1},
		{Name: "ki", Min: 0, Max: 1, Step: -1},
	}}
	assert.Error(t, ts.Validate())

	// Each axis is within bounds but the grid is not.
	ts = Tunables{All: []Tunable{
		{Name: "kp", Min: 0, Max: 9999, Step: 1},
		{Name: "ki", Min: 0, Max: 9999, Step: 1},
	}}
	assert.Error(t, ts.Validate())
}

func TestEach(t *testing.T) {
	ts := Tunables{All: []Tunable{
		{Name: "a", Min: 0, Max: 1, Step: 1},
		{Name: "b", Min: 10, Max: 30, Step: 10},
	}}
	require.NoError(t, ts.Validate())
	assert.Equal(t, 6, ts.Combinations())

	var seen [][]float64
	ts.Each(func(values []float64) {
		seen = append(seen, append([]float64(nil), values...))
	})
	assert.Equal(t, [][]float64{
		{0, 10}, {0, 20}, {0, 30},
		{1, 10}, {1, 20}, {1, 30},
	}, seen)
}
