package track

import (
	"encoding/csv"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r2"
)

const (
	ColumnX = "X"
	ColumnY = "Y"
)

// Track is the recorded line as an ordered list of waypoints, held as two
// parallel slices.  A loaded Track always has at least one waypoint and is
// never modified.
type Track struct {
	X []float64
	Y []float64
}

// Load reads a track from a CSV file with a header row naming the "X" and "Y"
// columns.
func Load(path string) (*Track, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open track")
	}
	defer f.Close()

	t, err := Read(f)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load track %s", path)
	}
	return t, nil
}

func Read(r io.Reader) (*Track, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, errors.New("track is empty")
	} else if err != nil {
		return nil, errors.Wrap(err, "failed to read header")
	}
	xCol, yCol := -1, -1
	for i, name := range header {
		switch strings.TrimSpace(name) {
		case ColumnX:
			xCol = i
		case ColumnY:
			yCol = i
		}
	}
	if xCol < 0 || yCol < 0 {
		return nil, errors.Errorf("header %q is missing column %q or %q", header, ColumnX, ColumnY)
	}

	t := &Track{}
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, errors.Wrap(err, "malformed row")
		}
		line, _ := cr.FieldPos(0)
		x, err := parseCoord(record[xCol])
		if err != nil {
			return nil, errors.Wrapf(err, "line %d: bad %s", line, ColumnX)
		}
		y, err := parseCoord(record[yCol])
		if err != nil {
			return nil, errors.Wrapf(err, "line %d: bad %s", line, ColumnY)
		}
		t.X = append(t.X, x)
		t.Y = append(t.Y, y)
	}
	if t.Len() == 0 {
		return nil, errors.New("track has no waypoints")
	}
	if floats.HasNaN(t.X) || floats.HasNaN(t.Y) {
		return nil, errors.New("track contains NaN waypoints")
	}
	return t, nil
}

func parseCoord(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, err
	}
	if math.IsInf(v, 0) {
		return 0, errors.Errorf("infinite coordinate %q", s)
	}
	return v, nil
}

func (t *Track) Len() int {
	return len(t.X)
}

func (t *Track) Point(i int) r2.Vec {
	return r2.Vec{X: t.X[i], Y: t.Y[i]}
}

// Bounds returns the corners of the axis-aligned box around the waypoints.
func (t *Track) Bounds() (bottomLeft, topRight r2.Vec) {
	return r2.Vec{X: floats.Min(t.X), Y: floats.Min(t.Y)},
		r2.Vec{X: floats.Max(t.X), Y: floats.Max(t.Y)}
}

// NearestPoint returns the waypoint closest to pos.  Ties go to the earliest
// waypoint.
//
// This is a linear scan on every call; fine for recorded tracks of a few
// thousand points.
func (t *Track) NearestPoint(pos r2.Vec) r2.Vec {
	minDistSq := math.Inf(1)
	closestIdx := 0

	for i := range t.X {
		dx := t.X[i] - pos.X
		dy := t.Y[i] - pos.Y
		distSq := dx*dx + dy*dy
		if distSq < minDistSq {
			minDistSq = distSq
			closestIdx = i
		}
	}
	return t.Point(closestIdx)
}

// CrossTrackError is the distance from pos to the nearest waypoint, saturated
// at sensorLength.  It is negative when the waypoint is at or to the right of
// pos in x and positive when it is to the left.
func (t *Track) CrossTrackError(pos r2.Vec, sensorLength float64) float64 {
	closest := t.NearestPoint(pos)
	ex := closest.X - pos.X
	ey := closest.Y - pos.Y

	e := lo.Clamp(math.Sqrt(ex*ex+ey*ey), 0, sensorLength)
	if ex >= 0 {
		return -e
	}
	return e
}
