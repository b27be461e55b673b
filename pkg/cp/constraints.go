package cp

import (
	"fmt"
	"math"
)

// Constraint is a registered constraint; linear, clause and capacity
// constraints can be made conditional with OnlyEnforceIf.
type Constraint struct {
	kind  string
	prop  propagator
	model *Model
}

// enforceable propagators only apply while all their enforcement literals are true.
type enforceable interface {
	enforce(l Literal)
}

// OnlyEnforceIf makes the constraint hold only when every given literal is true.
func (c *Constraint) OnlyEnforceIf(lits ...Lit) *Constraint {
	e, ok := c.prop.(enforceable)
	if !ok {
		c.model.errs = append(c.model.errs, fmt.Errorf("%s constraint does not support enforcement literals", c.kind))
		return c
	}
	for _, l := range lits {
		lit := l.literal()
		if c.model.checkVar(lit.Var()) {
			e.enforce(lit)
		}
	}
	return c
}

func (c *Constraint) Kind() string { return c.kind }

func (m *Model) add(kind string, prop propagator) *Constraint {
	c := &Constraint{kind: kind, prop: prop, model: m}
	m.constraints = append(m.constraints, c)
	return c
}

// AddLinear constrains lo <= expr <= hi.
func (m *Model) AddLinear(expr LinearExpr, lo, hi int64) *Constraint {
	expr = expr.normalized()
	vars := make([]int32, len(expr.Terms))
	coefs := make([]int64, len(expr.Terms))
	for i, term := range expr.Terms {
		m.checkVar(term.Var)
		vars[i] = int32(term.Var)
		coefs[i] = term.Coef
	}
	prop := &linear{
		vars:  vars,
		coefs: coefs,
		lo:    lo,
		hi:    hi,
		hasLo: lo != math.MinInt64,
		hasHi: hi != math.MaxInt64,
	}
	// Offsets are folded into the bounds.
	if prop.hasLo {
		prop.lo -= expr.Offset
	}
	if prop.hasHi {
		prop.hi -= expr.Offset
	}
	return m.add("linear", prop)
}

func (m *Model) AddLessOrEqual(expr LinearExpr, value int64) *Constraint {
	return m.AddLinear(expr, math.MinInt64, value)
}

func (m *Model) AddGreaterOrEqual(expr LinearExpr, value int64) *Constraint {
	return m.AddLinear(expr, value, math.MaxInt64)
}

func (m *Model) AddEquality(expr LinearExpr, value int64) *Constraint {
	return m.AddLinear(expr, value, value)
}

// AddBoolOr requires at least one literal to be true.
func (m *Model) AddBoolOr(lits ...Lit) *Constraint {
	return m.AddGreaterOrEqual(literalSum(lits), 1)
}

func (m *Model) AddExactlyOne(lits ...Lit) *Constraint {
	return m.AddEquality(literalSum(lits), 1)
}

func (m *Model) AddAtMostOne(lits ...Lit) *Constraint {
	return m.AddLessOrEqual(literalSum(lits), 1)
}

// AddImplication requires a => b.
func (m *Model) AddImplication(a, b Lit) *Constraint {
	return m.AddBoolOr(a.literal().Not(), b)
}

func literalSum(lits []Lit) LinearExpr {
	expr := NewLinearExpr()
	for _, l := range lits {
		expr = expr.AddLiteral(l, 1)
	}
	return expr
}

// AddElement requires target == table[index].
func (m *Model) AddElement(index IntVar, table []int64, target IntVar) *Constraint {
	if len(table) == 0 {
		m.errs = append(m.errs, fmt.Errorf("element constraint on %q has an empty table", m.names[index]))
	}
	m.checkVar(index)
	m.checkVar(target)
	return m.add("element", &element{index: int32(index), target: int32(target), table: table})
}

// AddAbsEquality requires target == |x|.
func (m *Model) AddAbsEquality(target, x IntVar) *Constraint {
	m.checkVar(target)
	m.checkVar(x)
	return m.add("abs", &absolute{target: int32(target), x: int32(x)})
}

// AddMaxEquality requires target == max(vars).
func (m *Model) AddMaxEquality(target IntVar, vars []IntVar) *Constraint {
	return m.add("max", m.extremum(target, vars, true))
}

// AddMinEquality requires target == min(vars).
func (m *Model) AddMinEquality(target IntVar, vars []IntVar) *Constraint {
	return m.add("min", m.extremum(target, vars, false))
}

func (m *Model) extremum(target IntVar, vars []IntVar, isMax bool) *extremum {
	if len(vars) == 0 {
		m.errs = append(m.errs, fmt.Errorf("min/max constraint on %q has no arguments", m.names[target]))
	}
	m.checkVar(target)
	args := make([]int32, len(vars))
	for i, v := range vars {
		m.checkVar(v)
		args[i] = int32(v)
	}
	return &extremum{target: int32(target), vars: args, max: isMax}
}

// AddDivisionEquality requires target == floor(expr / divisor) for a positive divisor.
func (m *Model) AddDivisionEquality(target IntVar, expr LinearExpr, divisor int64) {
	if divisor <= 0 {
		m.errs = append(m.errs, fmt.Errorf("division of %q by non-positive divisor %d", m.names[target], divisor))
		return
	}
	// divisor·target <= expr <= divisor·target + divisor - 1
	diff := expr.AddTerm(target, -divisor)
	m.AddLinear(diff, 0, divisor-1)
}

// Rect is an axis-aligned rectangle whose origin and size are variables.
type Rect struct {
	X, Width  IntVar
	Y, Height IntVar
}

// AddNoOverlap2D forbids any two rectangles from sharing a cell.
func (m *Model) AddNoOverlap2D(rects []Rect) *Constraint {
	boxes := make([]box, len(rects))
	for i, r := range rects {
		for _, v := range []IntVar{r.X, r.Width, r.Y, r.Height} {
			m.checkVar(v)
		}
		boxes[i] = box{x: int32(r.X), w: int32(r.Width), y: int32(r.Y), h: int32(r.Height)}
	}
	return m.add("no_overlap_2d", &noOverlap2D{boxes: boxes})
}

// Point is a pair of coordinate variables.
type Point struct {
	X, Y IntVar
}

// Region is an inclusive cell range.
type Region struct {
	X0, Y0, X1, Y1 int64
}

// AddPointCapacity allows at most limit points on any single cell of the region.
func (m *Model) AddPointCapacity(points []Point, region Region, limit int) *Constraint {
	args := make([]pointVars, len(points))
	for i, p := range points {
		m.checkVar(p.X)
		m.checkVar(p.Y)
		args[i] = pointVars{x: int32(p.X), y: int32(p.Y)}
	}
	return m.add("point_capacity", &pointCapacity{points: args, region: region, limit: limit})
}
