package cp

type box struct {
	x, w, y, h int32
}

// noOverlap2D propagates pairwise: when only one relative position (left, right,
// below, above) remains possible for a pair of boxes, it is imposed.
type noOverlap2D struct {
	boxes []box
}

func (c *noOverlap2D) watched() []int32 {
	vars := make([]int32, 0, 4*len(c.boxes))
	for _, b := range c.boxes {
		vars = append(vars, b.x, b.w, b.y, b.h)
	}
	return vars
}

func (c *noOverlap2D) propagate(s *state) bool {
	for i := range c.boxes {
		for j := i + 1; j < len(c.boxes); j++ {
			if !separate(s, c.boxes[i], c.boxes[j]) {
				return false
			}
		}
	}
	return true
}

func separate(s *state, a, b box) bool {
	aLeft := s.lo[a.x]+s.lo[a.w] <= s.hi[b.x]
	bLeft := s.lo[b.x]+s.lo[b.w] <= s.hi[a.x]
	aBelow := s.lo[a.y]+s.lo[a.h] <= s.hi[b.y]
	bBelow := s.lo[b.y]+s.lo[b.h] <= s.hi[a.y]

	options := 0
	for _, possible := range []bool{aLeft, bLeft, aBelow, bBelow} {
		if possible {
			options++
		}
	}
	if options != 1 {
		return options > 0
	}

	switch {
	case aLeft:
		return precede(s, a.x, a.w, b.x)
	case bLeft:
		return precede(s, b.x, b.w, a.x)
	case aBelow:
		return precede(s, a.y, a.h, b.y)
	default:
		return precede(s, b.y, b.h, a.y)
	}
}

// precede imposes start1 + size1 <= start2.
func precede(s *state, start1, size1, start2 int32) bool {
	return s.setLo(start2, s.lo[start1]+s.lo[size1]) &&
		s.setHi(start1, s.hi[start2]-s.lo[size1]) &&
		s.setHi(size1, s.hi[start2]-s.lo[start1])
}

type pointVars struct {
	x, y int32
}

// pointCapacity counts fixed points per cell of its region.
type pointCapacity struct {
	points      []pointVars
	region      Region
	limit       int
	enforcement []Literal
}

func (c *pointCapacity) enforce(l Literal) { c.enforcement = append(c.enforcement, l) }

func (c *pointCapacity) watched() []int32 {
	vars := make([]int32, 0, 2*len(c.points)+len(c.enforcement))
	for _, p := range c.points {
		vars = append(vars, p.x, p.y)
	}
	return append(vars, literalVars(c.enforcement)...)
}

func (c *pointCapacity) inside(s *state, p pointVars) bool {
	if !s.fixed(p.x) || !s.fixed(p.y) {
		return false
	}
	x, y := s.lo[p.x], s.lo[p.y]
	return x >= c.region.X0 && x <= c.region.X1 && y >= c.region.Y0 && y <= c.region.Y1
}

func (c *pointCapacity) propagate(s *state) bool {
	off, free, last := enforcementStatus(s, c.enforcement)
	if off {
		return true
	}

	for i, p := range c.points {
		if !c.inside(s, p) {
			continue
		}
		count := 1
		for _, q := range c.points[i+1:] {
			if c.inside(s, q) && s.lo[q.x] == s.lo[p.x] && s.lo[q.y] == s.lo[p.y] {
				count++
			}
		}
		if count > c.limit {
			return violatedUnder(s, free, last)
		}
	}
	return true
}
