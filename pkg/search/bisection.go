package search

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/charmbracelet/log"
	"github.com/limaJavier/floorplanning/pkg/cp"
	"github.com/limaJavier/floorplanning/pkg/model"
	"github.com/samber/lo"
)

const (
	explorationSamples  = 4
	maxIterations       = 12
	explorationCap      = 600 * time.Second
	explorationShare    = 0.4
	fallbackShare       = 0.2
	bracketWidth        = 0.05
	defaultMinIteration = 5 * time.Second
)

// Solver plans one layout per call. *model.Planner implements it.
type Solver interface {
	Plan(ctx context.Context, opts model.PlanOptions) (model.Solution, error)
	Verify(solution model.Solution) model.Validation
}

type Options struct {
	TimeLimit          time.Duration
	Threads            int
	Seed               int64
	Randomize          bool
	LogProgress        bool
	Precision          bool // precision mode for the unconstrained fallback
	RhoLo, RhoHi       float64
	Tolerance          float64
	MinIterationBudget time.Duration
	Logger             *log.Logger
}

func DefaultOptions() Options {
	return Options{
		TimeLimit:          time.Hour,
		Threads:            runtime.NumCPU(),
		Seed:               42,
		RhoLo:              0.45,
		RhoHi:              0.65,
		Tolerance:          1e-4,
		MinIterationBudget: defaultMinIteration,
	}
}

func (o Options) logger() *log.Logger {
	if o.Logger == nil {
		return log.Default()
	}
	return o.Logger
}

func (o Options) validate() error {
	switch {
	case o.TimeLimit <= 0:
		return fmt.Errorf("time limit must be positive, got %v", o.TimeLimit)
	case o.RhoLo < 0 || o.RhoHi > 1 || o.RhoLo > o.RhoHi:
		return fmt.Errorf("invalid utilization range [%v, %v]", o.RhoLo, o.RhoHi)
	case o.Tolerance <= 0:
		return fmt.Errorf("tolerance must be positive, got %v", o.Tolerance)
	}
	return nil
}

func (o Options) plan(limit time.Duration, seed int64, precision bool, target *float64) model.PlanOptions {
	return model.PlanOptions{
		TimeLimit:   limit,
		Threads:     o.Threads,
		Seed:        seed,
		Randomize:   o.Randomize,
		LogProgress: o.LogProgress,
		Precision:   precision,
		Target:      target,
	}
}

const (
	StageExploration = "exploration"
	StageBisection   = "bisection"
	StageFallback    = "fallback"
)

// Step records one solver call of the search.
type Step struct {
	Stage       string
	Target      float64
	Status      cp.Status
	Objective   int64
	Utilization float64
	Duration    time.Duration
}

type Result struct {
	Best           model.Solution
	LastInfeasible model.Solution // informational; equals Best when every probe succeeded
	Trace          []Step
}

// FeasibleTargets lists the utilization targets proven feasible, in search order.
func (r Result) FeasibleTargets() []float64 {
	return lo.FilterMap(r.Trace, func(step Step, _ int) (float64, bool) {
		return step.Target, step.Stage != StageFallback && step.Status.Feasible()
	})
}

// Bisect searches for the largest feasible utilization target. It samples the
// range coarsely, then bisects a narrow bracket above the best sample with
// precision mode on. Infeasible and inconclusive probes only move the bracket.
func Bisect(ctx context.Context, solver Solver, opts Options) (Result, error) {
	if err := opts.validate(); err != nil {
		return Result{}, err
	}
	logger := opts.logger()
	start := time.Now()

	var (
		result         Result
		best           *model.Solution
		lastInfeasible *model.Solution
	)
	probe := func(stage string, limit time.Duration, seed int64, precision bool, target *float64) (model.Solution, error) {
		began := time.Now()
		solution, err := solver.Plan(ctx, opts.plan(limit, seed, precision, target))
		if ctxErr := ctx.Err(); ctxErr != nil {
			return model.Solution{}, ctxErr
		}
		if err != nil {
			return model.Solution{}, fmt.Errorf("%s probe: %w", stage, err)
		}
		result.Trace = append(result.Trace, Step{
			Stage:       stage,
			Target:      solution.Target,
			Status:      solution.Status,
			Objective:   solution.Objective,
			Utilization: solution.Utilization,
			Duration:    time.Since(began),
		})
		return solution, nil
	}

	//** Stage 1: exploration
	exploration := min(explorationCap, time.Duration(explorationShare*float64(opts.TimeLimit)))
	bestRho := -1.0
	for i := range explorationSamples {
		rho := opts.RhoLo + float64(i)*(opts.RhoHi-opts.RhoLo)/float64(explorationSamples-1)
		solution, err := probe(StageExploration, exploration/explorationSamples, opts.Seed+int64(i), false, lo.ToPtr(rho))
		if err != nil {
			return Result{}, err
		}
		logger.Info("exploration sample", "rho", fmt.Sprintf("%.4f", rho), "status", solution.Status,
			"utilization", fmt.Sprintf("%.4f", solution.Utilization))
		if solution.Feasible() && rho > bestRho {
			bestRho = rho
			best = &solution
		}
	}

	//** Stage 2: bisection
	low, high := opts.RhoLo, opts.RhoLo+(opts.RhoHi-opts.RhoLo)/2
	if best != nil {
		low, high = bestRho, min(bestRho+bracketWidth, opts.RhoHi)
	}
	minIteration := opts.MinIterationBudget
	if minIteration <= 0 {
		minIteration = defaultMinIteration
	}
	bisection := opts.TimeLimit - time.Since(start)
	bisectionStart := time.Now()

	for k := 0; k < maxIterations && high-low >= opts.Tolerance; k++ {
		allowance := max(minIteration, bisection-time.Since(bisectionStart)) / time.Duration(maxIterations-k)
		mid := (low + high) / 2
		solution, err := probe(StageBisection, allowance, opts.Seed+int64(k), true, lo.ToPtr(mid))
		if err != nil {
			return Result{}, err
		}

		if solution.Feasible() {
			logger.Info("feasible", "iteration", k+1, "rho", fmt.Sprintf("%.4f", mid), "objective", solution.Objective,
				"utilization", fmt.Sprintf("%.4f", solution.Utilization))
			low = mid + opts.Tolerance/10
			best = &solution
			continue
		}
		if solution.Status == cp.Unknown {
			logger.Warn("inconclusive", "iteration", k+1, "rho", fmt.Sprintf("%.4f", mid), "allowance", allowance.Round(time.Millisecond))
		} else {
			logger.Info("infeasible", "iteration", k+1, "rho", fmt.Sprintf("%.4f", mid))
		}
		high = mid - opts.Tolerance/10
		lastInfeasible = &solution
	}

	//** Fallback: no target at all
	if best == nil {
		logger.Warn("no feasible target found, solving without a utilization target")
		limit := time.Duration(fallbackShare * float64(opts.TimeLimit))
		solution, err := probe(StageFallback, limit, opts.Seed, opts.Precision, nil)
		if err != nil {
			return Result{}, err
		}
		best = &solution
	}

	result.Best = *best
	result.LastInfeasible = *best
	if lastInfeasible != nil {
		result.LastInfeasible = *lastInfeasible
	}
	return result, nil
}
