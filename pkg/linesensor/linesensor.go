// Package linesensor interprets frames from the car's IR reflectance array.
package linesensor

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

const (
	// FullScale is the reading of a sensor directly over the line.
	FullScale = 1000

	// Peaks below this mean no sensor can see the line.
	minPeak = 10
	// Frames whose mean is within this fraction of the peak are flat.
	minDeviation = 0.15
)

// Position estimates where the line sits under the array, in sensor units
// counted from 1, by weighting the positions of the two strongest readings.
// ok is false when every reading is zero.
func Position(values []float64) (pos float64, ok bool) {
	i1, i2 := -1, -1
	for i, v := range values {
		if i1 < 0 || v > values[i1] {
			i1 = i
		}
	}
	if i1 < 0 {
		return 0, false
	}
	for i, v := range values {
		if i == i1 {
			continue
		}
		if i2 < 0 || v > values[i2] {
			i2 = i
		}
	}

	max1 := values[i1]
	weighted := max1 * float64(i1+1)
	norm := max1
	if i2 >= 0 {
		weighted += values[i2] * float64(i2+1)
		norm += values[i2]
	}
	if norm == 0 {
		return 0, false
	}
	return weighted / norm, true
}

// Centre is the position reported when the line is midway along an array of n
// sensors.
func Centre(n int) float64 {
	return float64(n+1) / 2
}

// IsCrossbar reports whether a frame is flat: either nothing sees the line or
// every sensor sees it, as happens over a crossbar at the end of the track.
func IsCrossbar(values []float64) bool {
	if len(values) == 0 {
		return true
	}
	peak := floats.Max(values)
	if peak < minPeak {
		return true
	}
	mean := floats.Norm(values, 1) / float64(len(values))
	return math.Abs(mean-peak)/mean < minDeviation
}

// Simulate produces the readings of n sensors spread evenly across
// [-halfSpan, halfSpan] with the line at offset, measured from the centre of
// the array towards the last sensor.  Each sensor's response falls off as a
// Gaussian one sensor spacing wide.
func Simulate(offset, halfSpan float64, n int) []float64 {
	if n < 1 {
		return nil
	}
	spacing := halfSpan
	if n > 1 {
		spacing = 2 * halfSpan / float64(n-1)
	}
	if spacing <= 0 {
		spacing = 1
	}
	values := make([]float64, n)
	for i := range values {
		x := -halfSpan + float64(i)*spacing
		if n == 1 {
			x = 0
		}
		d := (x - offset) / spacing
		values[i] = math.Round(FullScale * math.Exp(-0.5*d*d))
	}
	return values
}
