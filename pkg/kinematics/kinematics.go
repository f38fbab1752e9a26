package kinematics

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/tigerbot-team/linefollower/pkg/chassis"
)

// Model is a differential-drive car advancing by one control cycle per call.
// Headings are in radians, anticlockwise from the positive x axis.
type Model struct {
	trackWidth    float64
	speedPerCycle float64
}

func New(c chassis.Config) Model {
	return Model{
		trackWidth:    c.TrackWidth,
		speedPerCycle: c.SpeedPerCycle(),
	}
}

// AdvanceHeading applies a wheel speed differential for one cycle.
func (m Model) AdvanceHeading(wheelSpeedDiff, heading float64) float64 {
	return heading + (2/m.trackWidth)*wheelSpeedDiff
}

// Velocity is the displacement per cycle at the given heading.
func (m Model) Velocity(heading float64) r2.Vec {
	return r2.Vec{
		X: m.speedPerCycle * math.Cos(heading),
		Y: m.speedPerCycle * math.Sin(heading),
	}
}

// AdvancePosition moves pos one cycle along heading.  There is no bounds
// checking.
func (m Model) AdvancePosition(heading float64, pos r2.Vec) r2.Vec {
	return r2.Add(pos, m.Velocity(heading))
}

// Mix splits a forward speed and a wheel speed differential into left and
// right wheel speeds the way the car's motor driver does: the faster wheel
// never exceeds forward, and the slower one gives up the whole differential.
// A positive differential speeds up the right wheel, turning anticlockwise as
// in AdvanceHeading.  Speeds are floored at zero since the motors don't
// reverse.
func Mix(forward, wheelSpeedDiff float64) (left, right float64) {
	v := forward - 0.5*math.Abs(wheelSpeedDiff)
	left = math.Max(0, v-0.5*wheelSpeedDiff)
	right = math.Max(0, v+0.5*wheelSpeedDiff)
	return left, right
}

// WheelSpeeds mixes a differential at the model's cruising speed.
func (m Model) WheelSpeeds(wheelSpeedDiff float64) (left, right float64) {
	return Mix(m.speedPerCycle, wheelSpeedDiff)
}
