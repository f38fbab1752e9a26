package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tigerbot-team/linefollower/pkg/linesensor"
	"github.com/tigerbot-team/linefollower/pkg/pid"
	"github.com/tigerbot-team/linefollower/pkg/sim"
	"github.com/tigerbot-team/linefollower/pkg/telemetry"
	"github.com/tigerbot-team/linefollower/pkg/track"
)

func TestParseRange(t *testing.T) {
	tu, err := parseRange("kd", []float64{0, 5, 0.5})
	require.NoError(t, err)
	assert.Equal(t, "kd", tu.Name)
	assert.Len(t, tu.Values(), 11)

	_, err = parseRange("kp", []float64{0, 1})
	assert.Error(t, err)
}

func TestIntersectTakesNegativeCoordinates(t *testing.T) {
	for _, args := range [][]string{
		{"intersect", "0", "0", "0", "10", "-5", "5", "5", "5"},
		{"intersect", "--", "0", "0", "0", "10", "-5", "5", "5", "5"},
	} {
		var c cli
		parser, err := kong.New(&c)
		require.NoError(t, err)
		_, err = parser.Parse(args)
		require.NoError(t, err, "args=%v", args)

		coords, err := parseCoords(c.Intersect.Coords)
		require.NoError(t, err)
		assert.Equal(t, []float64{0, 0, 0, 10, -5, 5, 5, 5}, coords)
	}
}

func TestParseCoordsErrors(t *testing.T) {
	_, err := parseCoords([]string{"1", "2", "3"})
	assert.Error(t, err)
	_, err = parseCoords([]string{"0", "0", "0", "10", "-5", "x", "5", "5"})
	assert.Error(t, err)
}

func TestWriteFramesReadBack(t *testing.T) {
	tr := &track.Track{}
	for i := 0; i < 600; i++ {
		tr.X = append(tr.X, 3)
		tr.Y = append(tr.Y, -20+0.25*float64(i))
	}
	cfg := sim.DefaultConfig()
	cfg.Mode = sim.FixedStep
	cfg.MaxSteps = 20
	cfg.RecordTrace = true
	res := sim.Run(tr, pid.Gains{}, cfg)

	var buf bytes.Buffer
	n, err := writeFrames(&buf, res.Trace, cfg.Chassis.SensorLength, 8, 3, 2)
	require.NoError(t, err)
	assert.Equal(t, 20, n)

	r := telemetry.NewReader(&buf, telemetry.Config{})
	for i := 0; i < n; i++ {
		f, err := r.ReadFrame(context.Background())
		require.NoError(t, err)
		require.Len(t, f.Sensor, 8)
		// The line is 3cm to the car's right throughout.
		pos, ok := linesensor.Position(f.Sensor)
		require.True(t, ok)
		assert.Greater(t, pos, linesensor.Centre(8))
	}
	_, err = r.ReadFrame(context.Background())
	assert.Error(t, err)
}

func TestWriteFramesBadBuffers(t *testing.T) {
	trace := []sim.Step{{Error: 1}}
	_, err := writeFrames(&bytes.Buffer{}, trace, 7, 8, 0, 3)
	assert.Error(t, err)
}
