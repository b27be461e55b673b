package search

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/limaJavier/floorplanning/pkg/model"
	"github.com/samber/lo"
)

var (
	ErrNoFeasibleSolution = errors.New("no feasible solution found")
	ErrValidationFailure  = errors.New("solution failed validation")
)

var selfTestTargets = []float64{0.45, 0.50, 0.55}

const selfTestCap = 180 * time.Second

type Run struct {
	Index  int
	Seed   int64
	Result Result
	Err    error
}

func (r Run) Feasible() bool { return r.Err == nil && r.Result.Best.Feasible() }

type Runs struct {
	Runs []Run
	Best int // index into Runs
}

func (r Runs) Solution() model.Solution { return r.Runs[r.Best].Result.Best }

// RunMany runs independent bisections, one seed per run, and picks the feasible
// run with the highest objective. A failing run is recorded and the others go on.
func RunMany(ctx context.Context, solver Solver, opts Options, runs int) (Runs, error) {
	out := Runs{Best: -1}
	if err := opts.validate(); err != nil {
		return out, err
	}
	logger := opts.logger()
	runs = max(runs, 1)

	for r := 1; r <= runs; r++ {
		runOpts := opts
		runOpts.Seed = opts.Seed + int64(r)
		logger.Info("starting run", "run", r, "of", runs, "seed", runOpts.Seed)

		result, err := Bisect(ctx, solver, runOpts)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return out, ctxErr
		}
		run := Run{Index: r, Seed: runOpts.Seed, Result: result, Err: err}
		out.Runs = append(out.Runs, run)

		if err != nil {
			logger.Error("run failed", "run", r, "err", err)
			continue
		}
		best := result.Best
		logger.Info("run finished",
			"run", r,
			"status", best.Status,
			"objective", best.Objective,
			"rho", fmt.Sprintf("%.4f", best.Target),
			"utilization", fmt.Sprintf("%.2f%%", best.Utilization*100),
			"room_area", best.RoomArea,
			"corridor_area", best.CorridorArea,
			"efficiency", fmt.Sprintf("%.3f", best.PreferredRatio))
	}

	feasible := lo.Filter(out.Runs, func(run Run, _ int) bool { return run.Feasible() })
	if len(feasible) == 0 {
		return out, ErrNoFeasibleSolution
	}
	winner := lo.MaxBy(feasible, func(a, b Run) bool {
		return a.Result.Best.Objective > b.Result.Best.Objective
	})
	out.Best = winner.Index - 1
	return out, nil
}

// SelfTest solves a few fixed targets quickly and validates the best of them.
func SelfTest(ctx context.Context, solver Solver, opts Options) (model.Solution, error) {
	logger := opts.logger()
	budget := min(selfTestCap, opts.TimeLimit) / time.Duration(len(selfTestTargets))

	var best *model.Solution
	for i, rho := range selfTestTargets {
		solution, err := solver.Plan(ctx, opts.plan(budget, opts.Seed+int64(i), false, lo.ToPtr(rho)))
		if ctxErr := ctx.Err(); ctxErr != nil {
			return model.Solution{}, ctxErr
		}
		if err != nil {
			logger.Error("self-test probe failed", "rho", rho, "err", err)
			continue
		}
		logger.Info("self-test probe", "rho", rho, "status", solution.Status, "objective", solution.Objective)
		if solution.Feasible() && (best == nil || solution.Objective > best.Objective) {
			best = &solution
		}
	}
	if best == nil {
		return model.Solution{}, ErrNoFeasibleSolution
	}
	return Accept(solver, *best)
}

// Accept re-validates a solution. An invalid solution is never returned.
func Accept(solver Solver, solution model.Solution) (model.Solution, error) {
	if !solution.Feasible() {
		return model.Solution{}, ErrNoFeasibleSolution
	}
	validation := solver.Verify(solution)
	if err := validation.Err(); err != nil {
		return model.Solution{}, fmt.Errorf("%w: %w", ErrValidationFailure, err)
	}
	return solution, nil
}
