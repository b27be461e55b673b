package cp

type propagator interface {
	watched() []int32
	propagate(s *state) bool
}

// enforcementStatus scans enforcement literals. It reports whether the constraint is
// switched off, how many literals are still unassigned and the last of them.
func enforcementStatus(s *state, lits []Literal) (off bool, free int, last Literal) {
	for _, l := range lits {
		switch s.literalValue(l) {
		case 0:
			return true, 0, 0
		case -1:
			free++
			last = l
		}
	}
	return false, free, last
}

// violatedUnder handles a constraint that is known to be violated: with every
// enforcement literal true it is a conflict, with exactly one open literal that
// literal must be false.
func violatedUnder(s *state, free int, last Literal) bool {
	switch free {
	case 0:
		return false
	case 1:
		return s.setLiteral(last, false)
	default:
		return true
	}
}

func literalVars(lits []Literal) []int32 {
	vars := make([]int32, len(lits))
	for i, l := range lits {
		vars[i] = int32(l.Var())
	}
	return vars
}

//** Linear

type linear struct {
	vars         []int32
	coefs        []int64
	lo, hi       int64
	hasLo, hasHi bool
	enforcement  []Literal
}

func (c *linear) enforce(l Literal) { c.enforcement = append(c.enforcement, l) }

func (c *linear) watched() []int32 {
	return append(append([]int32{}, c.vars...), literalVars(c.enforcement)...)
}

func (c *linear) propagate(s *state) bool {
	off, free, last := enforcementStatus(s, c.enforcement)
	if off {
		return true
	}

	var minSum, maxSum int64
	for i, v := range c.vars {
		if coef := c.coefs[i]; coef > 0 {
			minSum += coef * s.lo[v]
			maxSum += coef * s.hi[v]
		} else {
			minSum += coef * s.hi[v]
			maxSum += coef * s.lo[v]
		}
	}

	if (c.hasHi && minSum > c.hi) || (c.hasLo && maxSum < c.lo) {
		return violatedUnder(s, free, last)
	}
	if free > 0 {
		return true
	}

	for i, v := range c.vars {
		coef := c.coefs[i]
		if c.hasHi {
			slack := c.hi - minSum
			if coef > 0 {
				if !s.setHi(v, s.lo[v]+slack/coef) {
					return false
				}
			} else if !s.setLo(v, s.hi[v]-slack/(-coef)) {
				return false
			}
		}
		if c.hasLo {
			slack := maxSum - c.lo
			if coef > 0 {
				if !s.setLo(v, s.hi[v]-slack/coef) {
					return false
				}
			} else if !s.setHi(v, s.lo[v]+slack/(-coef)) {
				return false
			}
		}
	}
	return true
}

//** Element

type element struct {
	index, target int32
	table         []int64
}

func (c *element) watched() []int32 { return []int32{c.index, c.target} }

func (c *element) propagate(s *state) bool {
	lo := max(s.lo[c.index], 0)
	hi := min(s.hi[c.index], int64(len(c.table)-1))
	tlo, thi := s.lo[c.target], s.hi[c.target]

	first, last := int64(-1), int64(-1)
	var vmin, vmax int64
	for i := lo; i <= hi; i++ {
		value := c.table[i]
		if value < tlo || value > thi {
			continue
		}
		if first < 0 {
			first = i
			vmin, vmax = value, value
		}
		last = i
		vmin = min(vmin, value)
		vmax = max(vmax, value)
	}
	if first < 0 {
		return false
	}
	return s.restrict(c.index, first, last) && s.restrict(c.target, vmin, vmax)
}

//** Absolute value

type absolute struct {
	target, x int32
}

func (c *absolute) watched() []int32 { return []int32{c.target, c.x} }

func (c *absolute) propagate(s *state) bool {
	xlo, xhi := s.lo[c.x], s.hi[c.x]
	var tlo, thi int64
	switch {
	case xlo >= 0:
		tlo, thi = xlo, xhi
	case xhi <= 0:
		tlo, thi = -xhi, -xlo
	default:
		tlo, thi = 0, max(-xlo, xhi)
	}
	if !s.restrict(c.target, tlo, thi) {
		return false
	}

	tlo, thi = s.lo[c.target], s.hi[c.target]
	if !s.restrict(c.x, -thi, thi) {
		return false
	}
	if tlo > 0 {
		// x cannot lie strictly between -tlo and tlo.
		if s.lo[c.x] > -tlo && !s.setLo(c.x, tlo) {
			return false
		}
		if s.hi[c.x] < tlo && !s.setHi(c.x, -tlo) {
			return false
		}
	}
	return true
}

//** Min / Max

type extremum struct {
	target int32
	vars   []int32
	max    bool
}

func (c *extremum) watched() []int32 {
	return append([]int32{c.target}, c.vars...)
}

func (c *extremum) propagate(s *state) bool {
	if c.max {
		return c.propagateMax(s)
	}
	return c.propagateMin(s)
}

func (c *extremum) propagateMax(s *state) bool {
	lo, hi := s.lo[c.vars[0]], s.hi[c.vars[0]]
	for _, v := range c.vars[1:] {
		lo = max(lo, s.lo[v])
		hi = max(hi, s.hi[v])
	}
	if !s.restrict(c.target, lo, hi) {
		return false
	}

	tlo, thi := s.lo[c.target], s.hi[c.target]
	support, candidates := int32(-1), 0
	for _, v := range c.vars {
		if !s.setHi(v, thi) {
			return false
		}
		if s.hi[v] >= tlo {
			support = v
			candidates++
		}
	}
	switch candidates {
	case 0:
		return false
	case 1:
		return s.setLo(support, tlo)
	}
	return true
}

func (c *extremum) propagateMin(s *state) bool {
	lo, hi := s.lo[c.vars[0]], s.hi[c.vars[0]]
	for _, v := range c.vars[1:] {
		lo = min(lo, s.lo[v])
		hi = min(hi, s.hi[v])
	}
	if !s.restrict(c.target, lo, hi) {
		return false
	}

	tlo, thi := s.lo[c.target], s.hi[c.target]
	support, candidates := int32(-1), 0
	for _, v := range c.vars {
		if !s.setLo(v, tlo) {
			return false
		}
		if s.lo[v] <= thi {
			support = v
			candidates++
		}
	}
	switch candidates {
	case 0:
		return false
	case 1:
		return s.setHi(support, thi)
	}
	return true
}
