package geometry

import "math"

// Node is a point in the plane.
type Node struct {
	X, Y float64
}

func NewNode(x, y float64) Node {
	return Node{X: x, Y: y}
}

// Path is the line through two nodes.  Vertical paths have a slope of
// +Inf (or -Inf when Node2 is below Node1) and no y-intercept.
type Path struct {
	Node1, Node2 Node
	Length       float64
	Slope        float64

	yIntercept float64
}

func NewPath(node1, node2 Node) Path {
	dx := node2.X - node1.X
	dy := node2.Y - node1.Y

	p := Path{
		Node1:  node1,
		Node2:  node2,
		Length: math.Hypot(dx, dy),
	}
	if dx == 0 {
		if dy >= 0 {
			p.Slope = math.Inf(1)
		} else {
			p.Slope = math.Inf(-1)
		}
		return p
	}
	p.Slope = dy / dx
	p.yIntercept = node1.Y - p.Slope*node1.X
	return p
}

func (p Path) Vertical() bool {
	return math.IsInf(p.Slope, 0)
}

// YIntercept returns the y-intercept of the path; ok is false for vertical
// paths.
func (p Path) YIntercept() (b float64, ok bool) {
	if p.Vertical() {
		return 0, false
	}
	return p.yIntercept, true
}

// PathsIntersect reports whether the lines through two paths cross, and where.
// Paths with the same slope never intersect, even when they are coincident.
func PathsIntersect(path1, path2 Path) (bool, float64, float64) {
	switch {
	case path1.Vertical() && path2.Vertical():
		return false, 0, 0
	case path1.Slope == path2.Slope:
		return false, 0, 0
	case path1.Vertical():
		x := path1.Node1.X
		return true, x, path2.Slope*x + path2.yIntercept
	case path2.Vertical():
		x := path2.Node1.X
		return true, x, path1.Slope*x + path1.yIntercept
	}
	x := (path2.yIntercept - path1.yIntercept) / (path1.Slope - path2.Slope)
	return true, x, path1.Slope*x + path1.yIntercept
}
