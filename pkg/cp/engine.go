package cp

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"
)

type Status int

const (
	Unknown Status = iota
	ModelInvalid
	Feasible
	Infeasible
	Optimal
)

var statusNames = map[Status]string{
	Unknown:      "UNKNOWN",
	ModelInvalid: "MODEL_INVALID",
	Feasible:     "FEASIBLE",
	Infeasible:   "INFEASIBLE",
	Optimal:      "OPTIMAL",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// Feasible reports whether the status carries an assignment.
func (s Status) Feasible() bool { return s == Optimal || s == Feasible }

// ParseStatus is the inverse of Status.String.
func ParseStatus(name string) (Status, error) {
	for status, n := range statusNames {
		if n == name {
			return status, nil
		}
	}
	return Unknown, fmt.Errorf("unknown solver status %q", name)
}

// Parameters configure one Solve call. LinearizationLevel, SymmetryLevel and Cuts are
// carried for engines with a relaxation; the native engine records them only.
type Parameters struct {
	MaxTime            time.Duration // zero means no limit
	Workers            int
	Seed               int64
	Randomize          bool
	LogProgress        bool
	ProbingLevel       int
	LinearizationLevel int
	SymmetryLevel      int
	Portfolio          bool
	Cuts               bool
}

func DefaultParameters() Parameters {
	return Parameters{Workers: 1, ProbingLevel: 2}
}

type Stats struct {
	Workers       int
	Nodes         int64
	Fails         int64
	Restarts      int64
	Neighborhoods int64
	Solutions     int64
	Probed        int64
}

type Response struct {
	Status    Status
	Objective int64
	Values    []int64
	WallTime  time.Duration
	Stats     Stats
}

func (r Response) Value(v IntVar) int64 { return r.Values[v] }

func (r Response) BoolValue(b BoolVar) bool { return r.Values[b] != 0 }

// Engine solves a Model; it blocks until a proof, the deadline or cancellation.
type Engine interface {
	Solve(ctx context.Context, model *Model, params Parameters) (Response, error)
}

type EngineOption func(*NativeEngine)

func WithLogger(logger *log.Logger) EngineOption {
	return func(e *NativeEngine) { e.logger = logger }
}

// NativeEngine is a pure Go propagation and search engine: bounds propagation,
// branch and bound with restarts, a portfolio of workers and large neighborhood
// search over the model's decision strategies.
type NativeEngine struct {
	logger *log.Logger
}

func NewNativeEngine(opts ...EngineOption) *NativeEngine {
	e := &NativeEngine{logger: log.Default()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *NativeEngine) Solve(ctx context.Context, model *Model, params Parameters) (Response, error) {
	start := time.Now()
	if err := model.Err(); err != nil {
		return Response{Status: ModelInvalid}, fmt.Errorf("invalid model %q: %w", model.Name(), err)
	}

	searchCtx := ctx
	if params.MaxTime > 0 {
		var cancel context.CancelFunc
		searchCtx, cancel = context.WithTimeout(ctx, params.MaxTime)
		defer cancel()
	}

	prog := compile(model)
	root := newState(prog)
	root.scheduleAll()
	if !root.propagate() {
		return Response{Status: Infeasible, WallTime: time.Since(start)}, nil
	}

	shared := &incumbent{prog: prog, logger: e.logger, logProgress: params.LogProgress, start: start}
	if params.ProbingLevel > 0 {
		probed, ok := probe(searchCtx, root, params.ProbingLevel)
		shared.stats.Probed = probed
		if !ok {
			return Response{Status: Infeasible, WallTime: time.Since(start), Stats: shared.stats}, nil
		}
	}

	workers := max(1, params.Workers)
	shared.stats.Workers = workers
	workerCtx, stop := context.WithCancel(searchCtx)
	defer stop()

	group, groupCtx := errgroup.WithContext(workerCtx)
	for id := range workers {
		w := newWorker(id, prog, root.fork(), shared, params)
		group.Go(func() error {
			w.run(groupCtx, stop)
			shared.merge(w.stats)
			return nil
		})
	}
	_ = group.Wait()

	response := shared.response()
	response.WallTime = time.Since(start)
	e.logger.Debug("search finished", "model", model.Name(), "status", response.Status,
		"nodes", response.Stats.Nodes, "fails", response.Stats.Fails, "time", response.WallTime.Round(time.Millisecond))

	// A deadline is an expected outcome; external cancellation is not.
	if err := ctx.Err(); err != nil {
		return response, err
	}
	return response, nil
}

// incumbent is the best assignment shared by all workers.
type incumbent struct {
	prog        *program
	logger      *log.Logger
	logProgress bool
	start       time.Time

	has  atomic.Bool
	best atomic.Int64

	mu        sync.Mutex
	values    []int64
	objective int64
	found     bool
	proven    bool
	stats     Stats
}

// offer records a solution if it improves the incumbent.
func (in *incumbent) offer(objective int64, values []int64, worker int) bool {
	in.mu.Lock()
	defer in.mu.Unlock()
	if in.found && in.prog.objective >= 0 && objective <= in.objective {
		return false
	}
	in.found = true
	in.objective = objective
	in.values = values
	in.stats.Solutions++
	in.best.Store(objective)
	in.has.Store(true)

	logf := in.logger.Debug
	if in.logProgress {
		logf = in.logger.Info
	}
	logf("new incumbent", "objective", in.prog.objectiveValue(objective), "worker", worker,
		"elapsed", time.Since(in.start).Round(time.Millisecond))
	return true
}

func (in *incumbent) prove() {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.proven = true
}

func (in *incumbent) snapshot() ([]int64, bool) {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.values, in.found
}

func (in *incumbent) merge(stats Stats) {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.stats.Nodes += stats.Nodes
	in.stats.Fails += stats.Fails
	in.stats.Restarts += stats.Restarts
	in.stats.Neighborhoods += stats.Neighborhoods
}

func (in *incumbent) response() Response {
	in.mu.Lock()
	defer in.mu.Unlock()

	response := Response{Stats: in.stats}
	switch {
	case in.found && in.proven:
		response.Status = Optimal
	case in.found:
		response.Status = Feasible
	case in.proven:
		response.Status = Infeasible
	default:
		response.Status = Unknown
	}
	if in.found {
		// Drop the internal objective variable.
		response.Values = in.values[:len(in.values)-objectiveSlots(in.prog)]
		response.Objective = in.prog.objectiveValue(in.objective)
	}
	return response
}

func objectiveSlots(p *program) int {
	if p.objective >= 0 {
		return 1
	}
	return 0
}

// probe tries both values of boolean decision variables at the root and fixes the
// ones where a value fails immediately. Level 3 and above repeat over all booleans
// until nothing changes.
func probe(ctx context.Context, s *state, level int) (int64, bool) {
	vars := s.p.boolVars(level >= 3)
	rounds := 1
	if level >= 3 {
		rounds = 3
	}

	var probed int64
	for range rounds {
		changed := false
		for i, v := range vars {
			if i%64 == 0 && ctx.Err() != nil {
				return probed, true
			}
			if s.fixed(v) {
				continue
			}
			probed++
			mark := s.mark()
			one := s.setLo(v, 1) && s.propagate()
			s.undo(mark)
			zero := s.setHi(v, 0) && s.propagate()
			s.undo(mark)

			switch {
			case !one && !zero:
				return probed, false
			case !one:
				changed = true
				if !(s.setHi(v, 0) && s.propagate()) {
					return probed, false
				}
			case !zero:
				changed = true
				if !(s.setLo(v, 1) && s.propagate()) {
					return probed, false
				}
			}
		}
		if !changed {
			break
		}
	}
	// Root fixings are permanent.
	s.trail = s.trail[:0]
	return probed, true
}
