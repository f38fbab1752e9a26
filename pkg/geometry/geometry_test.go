package geometry

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPath(t *testing.T) {
	p := NewPath(NewNode(1, 1), NewNode(4, 5))
	assert.Equal(t, 5.0, p.Length)
	assert.InDelta(t, 4.0/3.0, p.Slope, 1e-12)
	b, ok := p.YIntercept()
	assert.True(t, ok)
	assert.InDelta(t, 1-4.0/3.0, b, 1e-12)
	assert.False(t, p.Vertical())
}

func TestNewPathVertical(t *testing.T) {
	up := NewPath(NewNode(2, 0), NewNode(2, 3))
	assert.True(t, math.IsInf(up.Slope, 1))
	assert.True(t, up.Vertical())
	_, ok := up.YIntercept()
	assert.False(t, ok)

	down := NewPath(NewNode(2, 3), NewNode(2, 0))
	assert.True(t, math.IsInf(down.Slope, -1))

	// A zero-length path counts as pointing up.
	point := NewPath(NewNode(1, 1), NewNode(1, 1))
	assert.True(t, math.IsInf(point.Slope, 1))
	assert.Equal(t, 0.0, point.Length)
}

func TestParallelPathsNeverIntersect(t *testing.T) {
	for _, tc := range []struct {
		name   string
		p1, p2 Path
	}{
		{"distinct", NewPath(NewNode(0, 0), NewNode(1, 1)), NewPath(NewNode(0, 5), NewNode(3, 8))},
		{"coincident", NewPath(NewNode(0, 0), NewNode(1, 1)), NewPath(NewNode(2, 2), NewNode(5, 5))},
		{"horizontal", NewPath(NewNode(-3, 2), NewNode(3, 2)), NewPath(NewNode(10, -1), NewNode(20, -1))},
		{"both vertical", NewPath(NewNode(1, 0), NewNode(1, 5)), NewPath(NewNode(4, 5), NewNode(4, 0))},
		{"same vertical", NewPath(NewNode(1, 0), NewNode(1, 5)), NewPath(NewNode(1, 7), NewNode(1, 9))},
	} {
		t.Run(tc.name, func(t *testing.T) {
			ok, x, y := PathsIntersect(tc.p1, tc.p2)
			assert.False(t, ok)
			assert.Equal(t, 0.0, x)
			assert.Equal(t, 0.0, y)
		})
	}
}

func TestPerpendicularIntersection(t *testing.T) {
	vertical := NewPath(NewNode(0, 0), NewNode(0, 10))
	horizontal := NewPath(NewNode(-5, 5), NewNode(5, 5))

	ok, x, y := PathsIntersect(vertical, horizontal)
	assert.True(t, ok)
	assert.Equal(t, 0.0, x)
	assert.Equal(t, 5.0, y)
}

func TestGeneralIntersection(t *testing.T) {
	p1 := NewPath(NewNode(0, 0), NewNode(2, 2))
	p2 := NewPath(NewNode(0, 4), NewNode(4, 0))

	ok, x, y := PathsIntersect(p1, p2)
	assert.True(t, ok)
	assert.InDelta(t, 2.0, x, 1e-12)
	assert.InDelta(t, 2.0, y, 1e-12)
}

func TestIntersectionOutsideSegments(t *testing.T) {
	// Lines are treated as unbounded.
	p1 := NewPath(NewNode(0, 0), NewNode(1, 0))
	p2 := NewPath(NewNode(5, 1), NewNode(5, 2))

	ok, x, y := PathsIntersect(p1, p2)
	assert.True(t, ok)
	assert.Equal(t, 5.0, x)
	assert.Equal(t, 0.0, y)
}

func TestIntersectionSymmetry(t *testing.T) {
	paths := []Path{
		NewPath(NewNode(0, 0), NewNode(0, 10)),
		NewPath(NewNode(-5, 5), NewNode(5, 5)),
		NewPath(NewNode(1, 2), NewNode(3, 7)),
		NewPath(NewNode(-2, 4), NewNode(6, -1)),
		NewPath(NewNode(3, 3), NewNode(3, -3)),
		NewPath(NewNode(0, 1), NewNode(2, 5)),
	}
	for i, p1 := range paths {
		for j, p2 := range paths {
			ok1, x1, y1 := PathsIntersect(p1, p2)
			ok2, x2, y2 := PathsIntersect(p2, p1)
			assert.Equal(t, ok1, ok2, "paths %d and %d", i, j)
			assert.InDelta(t, x1, x2, 1e-9, "paths %d and %d", i, j)
			assert.InDelta(t, y1, y2, 1e-9, "paths %d and %d", i, j)
		}
	}
}
