package cp

import "slices"

type decision struct {
	v     int32
	value ValueStrategy
	group int
}

// program is the immutable, compiled form of a Model shared by all workers.
type program struct {
	lo, hi    []int64
	props     []propagator
	watch     [][]int32
	order     []decision
	groups    [][]int32
	objective int32
	minimize  bool
}

func compile(m *Model) *program {
	p := &program{objective: -1, minimize: m.minimize}
	for _, d := range m.domains {
		p.lo = append(p.lo, d.lo)
		p.hi = append(p.hi, d.hi)
	}

	for _, c := range m.constraints {
		p.props = append(p.props, c.prop)
	}

	if m.objective != nil {
		// The objective becomes a variable tied to its expression; it is always maximized.
		expr := *m.objective
		if m.minimize {
			expr = expr.Scale(-1)
		}
		lo, hi := m.Bounds(expr)
		p.objective = int32(len(p.lo))
		p.lo = append(p.lo, lo)
		p.hi = append(p.hi, hi)
		eq := expr.AddTerm(IntVar(p.objective), -1).normalized()
		prop := &linear{hasLo: true, hasHi: true, lo: -eq.Offset, hi: -eq.Offset}
		for _, term := range eq.Terms {
			prop.vars = append(prop.vars, int32(term.Var))
			prop.coefs = append(prop.coefs, term.Coef)
		}
		p.props = append(p.props, prop)
	}

	p.watch = make([][]int32, len(p.lo))
	for i, prop := range p.props {
		for _, v := range uniqueVars(prop.watched()) {
			p.watch[v] = append(p.watch[v], int32(i))
		}
	}

	seen := make([]bool, len(p.lo))
	for g, strategy := range m.strategies {
		var group []int32
		for _, v := range strategy.Vars {
			group = append(group, int32(v))
			if seen[v] {
				continue
			}
			seen[v] = true
			p.order = append(p.order, decision{v: int32(v), value: strategy.Value, group: g})
		}
		p.groups = append(p.groups, group)
	}
	for v := range p.lo {
		if !seen[v] && int32(v) != p.objective {
			p.order = append(p.order, decision{v: int32(v), value: SelectMin, group: -1})
		}
	}
	if p.objective >= 0 {
		p.order = append(p.order, decision{v: p.objective, value: SelectMax, group: -1})
	}
	return p
}

func uniqueVars(vars []int32) []int32 {
	vars = slices.Clone(vars)
	slices.Sort(vars)
	return slices.Compact(vars)
}

// objectiveValue converts the internal maximized value back to the model's sense.
func (p *program) objectiveValue(internal int64) int64 {
	if p.minimize {
		return -internal
	}
	return internal
}

// boolVars lists the decision variables with a 0/1 domain, in decision order.
func (p *program) boolVars(all bool) []int32 {
	var vars []int32
	for _, d := range p.order {
		if !all && d.group < 0 {
			continue
		}
		if p.lo[d.v] == 0 && p.hi[d.v] == 1 {
			vars = append(vars, d.v)
		}
	}
	return vars
}
