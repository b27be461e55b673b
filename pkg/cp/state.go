package cp

type trailEntry struct {
	v      int32
	lo, hi int64
}

// state is the mutable search state of one worker: current bounds, the trail used
// to undo them on backtrack and the propagation queue.
type state struct {
	p      *program
	lo, hi []int64
	trail  []trailEntry
	queue  []int32
	head   int
	queued []bool
}

func newState(p *program) *state {
	s := &state{
		p:      p,
		lo:     make([]int64, len(p.lo)),
		hi:     make([]int64, len(p.hi)),
		queued: make([]bool, len(p.props)),
	}
	copy(s.lo, p.lo)
	copy(s.hi, p.hi)
	return s
}

// fork copies the current bounds into a fresh state with an empty trail.
func (s *state) fork() *state {
	other := newState(s.p)
	copy(other.lo, s.lo)
	copy(other.hi, s.hi)
	return other
}

func (s *state) fixed(v int32) bool { return s.lo[v] == s.hi[v] }

func (s *state) setLo(v int32, value int64) bool {
	if value <= s.lo[v] {
		return true
	}
	if value > s.hi[v] {
		return false
	}
	s.trail = append(s.trail, trailEntry{v, s.lo[v], s.hi[v]})
	s.lo[v] = value
	s.schedule(v)
	return true
}

func (s *state) setHi(v int32, value int64) bool {
	if value >= s.hi[v] {
		return true
	}
	if value < s.lo[v] {
		return false
	}
	s.trail = append(s.trail, trailEntry{v, s.lo[v], s.hi[v]})
	s.hi[v] = value
	s.schedule(v)
	return true
}

func (s *state) restrict(v int32, lo, hi int64) bool {
	return s.setLo(v, lo) && s.setHi(v, hi)
}

// literalValue returns 1 for true, 0 for false and -1 while unassigned.
func (s *state) literalValue(l Literal) int {
	v := int32(l.Var())
	if !s.fixed(v) {
		return -1
	}
	value := s.lo[v] != 0
	if l.Negated() {
		value = !value
	}
	if value {
		return 1
	}
	return 0
}

func (s *state) setLiteral(l Literal, value bool) bool {
	if l.Negated() {
		value = !value
	}
	v := int32(l.Var())
	if value {
		return s.setLo(v, 1)
	}
	return s.setHi(v, 0)
}

func (s *state) schedule(v int32) {
	for _, p := range s.p.watch[v] {
		if !s.queued[p] {
			s.queued[p] = true
			s.queue = append(s.queue, p)
		}
	}
}

func (s *state) scheduleAll() {
	for p := range s.p.props {
		if !s.queued[p] {
			s.queued[p] = true
			s.queue = append(s.queue, int32(p))
		}
	}
}

// propagate runs queued propagators to a fixpoint; false means a conflict.
func (s *state) propagate() bool {
	for s.head < len(s.queue) {
		p := s.queue[s.head]
		s.head++
		s.queued[p] = false
		if !s.p.props[p].propagate(s) {
			s.clearQueue()
			return false
		}
	}
	s.queue = s.queue[:0]
	s.head = 0
	return true
}

func (s *state) clearQueue() {
	for _, p := range s.queue[s.head:] {
		s.queued[p] = false
	}
	s.queue = s.queue[:0]
	s.head = 0
}

func (s *state) mark() int { return len(s.trail) }

// undo restores every bound changed since mark.
func (s *state) undo(mark int) {
	for i := len(s.trail) - 1; i >= mark; i-- {
		e := s.trail[i]
		s.lo[e.v] = e.lo
		s.hi[e.v] = e.hi
	}
	s.trail = s.trail[:mark]
	s.clearQueue()
}
