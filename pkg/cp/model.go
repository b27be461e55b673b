package cp

import (
	"errors"
	"fmt"
)

// IntVar is a handle to a bounded integer variable of a Model.
type IntVar int32

// BoolVar is an integer variable with domain [0, 1].
type BoolVar int32

// Literal is a signed reference to a boolean variable, encoded like a DIMACS literal:
// variable index i maps to i+1 when positive and to -(i+1) when negated.
type Literal int32

// Lit is implemented by BoolVar and Literal so both can be passed where a literal is expected.
type Lit interface {
	literal() Literal
}

func (v IntVar) Index() int { return int(v) }

func (b BoolVar) IntVar() IntVar   { return IntVar(b) }
func (b BoolVar) Literal() Literal { return Literal(int32(b) + 1) }
func (b BoolVar) Not() Literal     { return Literal(-(int32(b) + 1)) }
func (b BoolVar) literal() Literal { return b.Literal() }

func (l Literal) Var() IntVar {
	if l < 0 {
		return IntVar(-l - 1)
	}
	return IntVar(l - 1)
}

func (l Literal) Negated() bool    { return l < 0 }
func (l Literal) Not() Literal     { return -l }
func (l Literal) literal() Literal { return l }

type domain struct {
	lo, hi int64
}

// Model holds variables, constraints, search hints and the objective of one
// optimization problem. A Model is built once and may be solved many times.
type Model struct {
	name        string
	domains     []domain
	names       []string
	constants   map[int64]IntVar
	constraints []*Constraint
	strategies  []DecisionStrategy
	objective   *LinearExpr
	minimize    bool
	errs        []error
}

func NewModel(name string) *Model {
	return &Model{
		name:      name,
		constants: make(map[int64]IntVar),
	}
}

func (m *Model) Name() string { return m.name }

func (m *Model) NewIntVar(lo, hi int64, name string) IntVar {
	if lo > hi {
		m.errs = append(m.errs, fmt.Errorf("variable %q has an empty domain [%d, %d]", name, lo, hi))
		hi = lo
	}
	m.domains = append(m.domains, domain{lo, hi})
	m.names = append(m.names, name)
	return IntVar(len(m.domains) - 1)
}

func (m *Model) NewBoolVar(name string) BoolVar {
	return BoolVar(m.NewIntVar(0, 1, name))
}

// NewConstant returns a fixed variable; equal constants share the same variable.
func (m *Model) NewConstant(value int64) IntVar {
	if v, ok := m.constants[value]; ok {
		return v
	}
	v := m.NewIntVar(value, value, fmt.Sprintf("const_%d", value))
	m.constants[value] = v
	return v
}

func (m *Model) NumVars() int        { return len(m.domains) }
func (m *Model) NumConstraints() int { return len(m.constraints) }

func (m *Model) Domain(v IntVar) (lo, hi int64) {
	d := m.domains[v]
	return d.lo, d.hi
}

func (m *Model) VarName(v IntVar) string { return m.names[v] }

// Err reports every construction error collected while the model was built.
func (m *Model) Err() error {
	return errors.Join(m.errs...)
}

// Bounds returns the smallest and largest values an expression can take given the
// declared variable domains.
func (m *Model) Bounds(expr LinearExpr) (lo, hi int64) {
	lo, hi = expr.Offset, expr.Offset
	for _, term := range expr.Terms {
		d := m.domains[term.Var]
		if term.Coef > 0 {
			lo += term.Coef * d.lo
			hi += term.Coef * d.hi
		} else {
			lo += term.Coef * d.hi
			hi += term.Coef * d.lo
		}
	}
	return lo, hi
}

func (m *Model) Maximize(expr LinearExpr) {
	m.objective = &expr
	m.minimize = false
}

func (m *Model) Minimize(expr LinearExpr) {
	m.objective = &expr
	m.minimize = true
}

func (m *Model) HasObjective() bool { return m.objective != nil }

func (m *Model) checkVar(v IntVar) bool {
	if int(v) < 0 || int(v) >= len(m.domains) {
		m.errs = append(m.errs, fmt.Errorf("unknown variable %d", v))
		return false
	}
	return true
}

// ValueStrategy selects the value tried first when branching on a variable.
type ValueStrategy int

const (
	SelectMin ValueStrategy = iota
	SelectMax
	SelectMedian
)

// DecisionStrategy is a search hint: its variables are branched on in order,
// before any variable that belongs to a later strategy. Strategies are also the
// unit of relaxation for large neighborhood search.
type DecisionStrategy struct {
	Vars  []IntVar
	Value ValueStrategy
}

func (m *Model) AddDecisionStrategy(vars []IntVar, value ValueStrategy) {
	for _, v := range vars {
		if !m.checkVar(v) {
			return
		}
	}
	m.strategies = append(m.strategies, DecisionStrategy{Vars: vars, Value: value})
}

// Bools converts boolean variables to their integer handles.
func Bools(bools ...BoolVar) []IntVar {
	vars := make([]IntVar, len(bools))
	for i, b := range bools {
		vars[i] = b.IntVar()
	}
	return vars
}
