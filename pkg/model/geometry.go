package model

import "github.com/limaJavier/floorplanning/pkg/cp"

// newAbsDiff returns a variable equal to |a - b|. Both the difference and its
// absolute value are bounded by bound.
func newAbsDiff(m *cp.Model, a, b cp.LinearExpr, bound int64, name string) cp.IntVar {
	diff := m.NewIntVar(-bound, bound, name+"_diff")
	m.AddEquality(a.Sub(b).AddTerm(diff, -1), 0)

	abs := m.NewIntVar(0, bound, name)
	m.AddAbsEquality(abs, diff)
	return abs
}

// newManhattan returns |ax - bx| + |ay - by|, bounded by the grid perimeter.
func newManhattan(m *cp.Model, site Site, ax, ay, bx, by cp.LinearExpr, name string) cp.IntVar {
	dx := newAbsDiff(m, ax, bx, int64(site.GridWidth), name+"_dx")
	dy := newAbsDiff(m, ay, by, int64(site.GridHeight), name+"_dy")

	distance := m.NewIntVar(0, int64(site.GridWidth+site.GridHeight), name)
	m.AddEquality(cp.Sum(dx, dy).AddTerm(distance, -1), 0)
	return distance
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
