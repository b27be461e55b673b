package cp

import (
	"context"
	"math/rand/v2"
	"slices"
)

type outcome int

const (
	exhausted outcome = iota
	limited
	interrupted
	satisfied
)

type choice struct {
	v      int32
	lo, hi int64
}

type frame struct {
	mark   int
	cursor int
	alts   [3]choice
	n      int
	next   int
}

// worker runs restarted depth-first branch and bound on its own copy of the state.
// Odd workers of a portfolio switch to large neighborhood search once an incumbent
// exists.
type worker struct {
	id     int
	p      *program
	s      *state
	shared *incumbent
	rng    *rand.Rand
	frames []frame
	stats  Stats

	noise     float64
	failLimit int64
	growth    float64
	lns       bool
}

func newWorker(id int, p *program, s *state, shared *incumbent, params Parameters) *worker {
	w := &worker{
		id:        id,
		p:         p,
		s:         s,
		shared:    shared,
		rng:       rand.New(rand.NewPCG(uint64(params.Seed), uint64(id)+1)),
		failLimit: 1000,
		growth:    1.5,
	}
	if params.Randomize || id > 0 {
		w.noise = 0.05 + 0.05*float64(id%3)
	}
	if id > 0 {
		w.failLimit = 300 + 100*int64(id%4)
		w.growth = 1.3
	}
	w.lns = params.Portfolio && id%2 == 1
	return w
}

func (w *worker) run(ctx context.Context, stop context.CancelFunc) {
	limit := w.failLimit
	noise := w.noise
	for restart := 0; ctx.Err() == nil; restart++ {
		w.s.undo(0)
		w.stats.Restarts++

		relaxed := false
		if w.lns && restart > 0 && w.shared.has.Load() {
			ok := w.neighborhood()
			w.stats.Neighborhoods++
			if !ok {
				continue
			}
			relaxed = true
		}

		budget := limit
		if relaxed {
			budget = 200 + int64(w.rng.IntN(300))
		}
		switch w.dfs(ctx, budget, noise) {
		case satisfied:
			w.shared.prove()
			stop()
			return
		case exhausted:
			if !relaxed {
				// The whole tree under the shared bound has been explored.
				w.shared.prove()
				stop()
				return
			}
		case interrupted:
			return
		}

		if !relaxed {
			limit = int64(float64(limit) * w.growth)
			// After the first complete-order attempt every restart diversifies.
			noise = max(noise, 0.05)
		}
	}
}

// neighborhood fixes a random subset of decision strategies to the incumbent values.
func (w *worker) neighborhood() bool {
	values, ok := w.shared.snapshot()
	if !ok || len(w.p.groups) == 0 {
		return false
	}
	relax := 0.2 + 0.3*w.rng.Float64()
	keep := make([]bool, len(w.p.groups))
	relaxedAny := false
	for g := range w.p.groups {
		keep[g] = w.rng.Float64() >= relax
		relaxedAny = relaxedAny || !keep[g]
	}
	if !relaxedAny {
		keep[w.rng.IntN(len(keep))] = false
	}

	for g, vars := range w.p.groups {
		if !keep[g] {
			continue
		}
		for _, v := range vars {
			if !w.s.restrict(v, values[v], values[v]) {
				return false
			}
		}
	}
	return w.s.propagate()
}

func (w *worker) boundObjective() bool {
	if w.p.objective < 0 || !w.shared.has.Load() {
		return true
	}
	return w.s.setLo(w.p.objective, w.shared.best.Load()+1)
}

func (w *worker) dfs(ctx context.Context, failLimit int64, noise float64) outcome {
	s := w.s
	w.frames = w.frames[:0]
	cursor := 0
	var fails int64
	ok := s.propagate()

	for {
		w.stats.Nodes++
		if w.stats.Nodes%256 == 0 && ctx.Err() != nil {
			return interrupted
		}

		if ok {
			ok = w.boundObjective() && s.propagate()
		}
		if ok {
			i, found := w.nextDecision(cursor)
			if !found {
				w.record()
				if w.p.objective < 0 {
					return satisfied
				}
				ok = false
			} else {
				f := w.branch(i, noise)
				f.mark = s.mark()
				w.frames = append(w.frames, f)
				cursor = i
				a := f.alts[0]
				ok = s.restrict(a.v, a.lo, a.hi)
				continue
			}
		}

		fails++
		w.stats.Fails++
		if failLimit > 0 && fails > failLimit {
			return limited
		}
		if !w.backtrack(&cursor) {
			return exhausted
		}
		ok = true
	}
}

// backtrack moves to the next untried alternative; false when the tree is exhausted.
func (w *worker) backtrack(cursor *int) bool {
	s := w.s
	for len(w.frames) > 0 {
		f := &w.frames[len(w.frames)-1]
		s.undo(f.mark)
		f.next++
		if f.next >= f.n {
			w.frames = w.frames[:len(w.frames)-1]
			continue
		}
		*cursor = f.cursor
		a := f.alts[f.next]
		if s.restrict(a.v, a.lo, a.hi) {
			return true
		}
	}
	return false
}

func (w *worker) nextDecision(cursor int) (int, bool) {
	for i := cursor; i < len(w.p.order); i++ {
		if !w.s.fixed(w.p.order[i].v) {
			return i, true
		}
	}
	return 0, false
}

func (w *worker) branch(i int, noise float64) frame {
	d := w.p.order[i]
	v := d.v
	lo, hi := w.s.lo[v], w.s.hi[v]

	var value int64
	switch d.value {
	case SelectMax:
		value = hi
	case SelectMedian:
		value = lo + (hi-lo)/2
	default:
		value = lo
	}
	if noise > 0 && w.rng.Float64() < noise {
		value = lo + w.rng.Int64N(hi-lo+1)
	}

	f := frame{cursor: i}
	switch value {
	case lo:
		f.alts[0], f.alts[1], f.n = choice{v, lo, lo}, choice{v, lo + 1, hi}, 2
	case hi:
		f.alts[0], f.alts[1], f.n = choice{v, hi, hi}, choice{v, lo, hi - 1}, 2
	default:
		below, above := choice{v, lo, value - 1}, choice{v, value + 1, hi}
		if d.value == SelectMax {
			below, above = above, below
		}
		f.alts[0], f.alts[1], f.alts[2], f.n = choice{v, value, value}, below, above, 3
	}
	return f
}

func (w *worker) record() {
	objective := int64(0)
	if w.p.objective >= 0 {
		objective = w.s.lo[w.p.objective]
	}
	w.shared.offer(objective, slices.Clone(w.s.lo), w.id)
}
