package search

import (
	"context"
	"errors"
	"io"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/limaJavier/floorplanning/pkg/cp"
	"github.com/limaJavier/floorplanning/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// thresholdSolver is feasible for every target up to threshold. Targets above
// it are infeasible, or inconclusive when unknownAbove is set.
type thresholdSolver struct {
	threshold    float64
	unknownAbove bool
	invalid      bool
	plan         func(opts model.PlanOptions) error

	mu    sync.Mutex
	calls []model.PlanOptions
}

func (s *thresholdSolver) Plan(_ context.Context, opts model.PlanOptions) (model.Solution, error) {
	s.mu.Lock()
	s.calls = append(s.calls, opts)
	s.mu.Unlock()
	if s.plan != nil {
		if err := s.plan(opts); err != nil {
			return model.Solution{}, err
		}
	}

	if opts.Target == nil {
		status := cp.Feasible
		if s.threshold <= 0 {
			status = cp.Infeasible
		}
		return model.Solution{Status: status, Target: s.threshold, Utilization: s.threshold, Objective: 1}, nil
	}

	target := *opts.Target
	if target > s.threshold {
		status := cp.Infeasible
		if s.unknownAbove {
			status = cp.Unknown
		}
		return model.Solution{Status: status, Target: target, Constrained: true}, nil
	}
	return model.Solution{
		Status:      cp.Feasible,
		Objective:   int64(target*10000) + opts.Seed,
		Target:      target,
		Constrained: true,
		Utilization: target,
	}, nil
}

func (s *thresholdSolver) Verify(model.Solution) model.Validation {
	return model.Validation{
		DoorsOnCorridors: true,
		NoRoomOverlap:    !s.invalid,
		BandConnection:   true,
		BandSpacing:      true,
		DoorClusters:     true,
		MinRoomSize:      true,
		AllValid:         !s.invalid,
	}
}

func testOptions() Options {
	opts := DefaultOptions()
	opts.TimeLimit = time.Minute
	opts.Threads = 1
	opts.MinIterationBudget = time.Millisecond
	opts.Logger = log.New(io.Discard)
	return opts
}

func TestBisect(t *testing.T) {
	t.Run("Converges below the feasibility threshold", func(t *testing.T) {
		//** Arrange
		solver := &thresholdSolver{threshold: 0.58}
		opts := testOptions()

		//** Act
		result, err := Bisect(context.Background(), solver, opts)

		//** Assert
		require.NoError(t, err)
		assert.True(t, result.Best.Feasible())
		assert.InDelta(t, 0.5667, result.Best.Target, 1e-3)
		assert.Equal(t, result.Best, result.LastInfeasible)
		assert.True(t, slices.IsSorted(result.FeasibleTargets()))
		assert.Len(t, result.FeasibleTargets(), len(result.Trace)-2)

		for i, call := range solver.calls[:explorationSamples] {
			assert.False(t, call.Precision)
			assert.Equal(t, opts.Seed+int64(i), call.Seed)
			assert.Equal(t, 6*time.Second, call.TimeLimit)
		}
		for _, call := range solver.calls[explorationSamples:] {
			assert.True(t, call.Precision)
			assert.GreaterOrEqual(t, *call.Target, 0.5166)
		}
		assert.LessOrEqual(t, len(solver.calls), explorationSamples+maxIterations)
	})

	t.Run("Keeps the last infeasible witness", func(t *testing.T) {
		//** Arrange
		solver := &thresholdSolver{threshold: 0.60, unknownAbove: true}

		//** Act
		result, err := Bisect(context.Background(), solver, testOptions())

		//** Assert
		require.NoError(t, err)
		assert.LessOrEqual(t, result.Best.Target, 0.60)
		assert.Greater(t, result.Best.Target, 0.599)
		assert.Equal(t, cp.Unknown, result.LastInfeasible.Status)
		assert.Greater(t, result.LastInfeasible.Target, 0.60)
		assert.True(t, slices.IsSorted(result.FeasibleTargets()))
	})

	t.Run("Falls back to an unconstrained solve", func(t *testing.T) {
		//** Arrange
		solver := &thresholdSolver{threshold: 0.30}
		opts := testOptions()

		//** Act
		result, err := Bisect(context.Background(), solver, opts)

		//** Assert
		require.NoError(t, err)
		assert.True(t, result.Best.Feasible())
		assert.False(t, result.Best.Constrained)
		assert.Empty(t, result.FeasibleTargets())
		assert.Equal(t, StageFallback, result.Trace[len(result.Trace)-1].Stage)
		assert.Equal(t, cp.Infeasible, result.LastInfeasible.Status)

		fallback := solver.calls[len(solver.calls)-1]
		assert.Nil(t, fallback.Target)
		assert.Equal(t, 12*time.Second, fallback.TimeLimit)
		for _, call := range solver.calls[explorationSamples : len(solver.calls)-1] {
			assert.LessOrEqual(t, *call.Target, opts.RhoLo+(opts.RhoHi-opts.RhoLo)/2)
		}
	})

	t.Run("Stops on cancellation", func(t *testing.T) {
		//** Arrange
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		solver := &thresholdSolver{threshold: 0.5, plan: func(model.PlanOptions) error {
			cancel()
			return ctx.Err()
		}}

		//** Act
		_, err := Bisect(ctx, solver, testOptions())

		//** Assert
		assert.ErrorIs(t, err, context.Canceled)
		assert.Len(t, solver.calls, 1)
	})

	t.Run("Solver errors abort the search", func(t *testing.T) {
		//** Arrange
		broken := errors.New("broken model")
		solver := &thresholdSolver{plan: func(model.PlanOptions) error { return broken }}

		//** Act
		_, err := Bisect(context.Background(), solver, testOptions())

		//** Assert
		assert.ErrorIs(t, err, broken)
	})

	t.Run("Invalid options", func(t *testing.T) {
		//** Arrange
		opts := testOptions()
		opts.RhoLo, opts.RhoHi = 0.7, 0.6

		//** Act
		_, err := Bisect(context.Background(), &thresholdSolver{}, opts)

		//** Assert
		assert.Error(t, err)
	})
}

func TestRunMany(t *testing.T) {
	t.Run("Isolates failing runs and keeps the best objective", func(t *testing.T) {
		//** Arrange
		failure := errors.New("solver crashed")
		solver := &thresholdSolver{threshold: 0.58, plan: func(opts model.PlanOptions) error {
			if opts.Seed == 44 && opts.Target != nil && *opts.Target == 0.45 {
				return failure
			}
			return nil
		}}

		//** Act
		runs, err := RunMany(context.Background(), solver, testOptions(), 3)

		//** Assert
		require.NoError(t, err)
		require.Len(t, runs.Runs, 3)
		assert.Equal(t, []int64{43, 44, 45}, []int64{runs.Runs[0].Seed, runs.Runs[1].Seed, runs.Runs[2].Seed})
		assert.ErrorIs(t, runs.Runs[1].Err, failure)
		assert.False(t, runs.Runs[1].Feasible())
		assert.Equal(t, 2, runs.Best)
		assert.Equal(t, runs.Runs[2].Result.Best, runs.Solution())
	})

	t.Run("No feasible run", func(t *testing.T) {
		//** Arrange
		solver := &thresholdSolver{threshold: 0}

		//** Act
		runs, err := RunMany(context.Background(), solver, testOptions(), 2)

		//** Assert
		assert.ErrorIs(t, err, ErrNoFeasibleSolution)
		assert.Len(t, runs.Runs, 2)
		assert.Equal(t, -1, runs.Best)
	})
}

func TestSelfTest(t *testing.T) {
	t.Run("Returns the best validated probe", func(t *testing.T) {
		//** Arrange
		solver := &thresholdSolver{threshold: 0.52}
		opts := testOptions()
		opts.TimeLimit = 10 * time.Minute

		//** Act
		solution, err := SelfTest(context.Background(), solver, opts)

		//** Assert
		require.NoError(t, err)
		assert.Equal(t, 0.50, solution.Target)
		require.Len(t, solver.calls, 3)
		for i, call := range solver.calls {
			assert.Equal(t, time.Minute, call.TimeLimit)
			assert.Equal(t, opts.Seed+int64(i), call.Seed)
			assert.False(t, call.Precision)
		}
	})

	t.Run("Rejects an invalid solution", func(t *testing.T) {
		//** Arrange
		solver := &thresholdSolver{threshold: 0.52, invalid: true}

		//** Act
		_, err := SelfTest(context.Background(), solver, testOptions())

		//** Assert
		assert.ErrorIs(t, err, ErrValidationFailure)
		var validation *model.ValidationError
		require.ErrorAs(t, err, &validation)
		assert.Equal(t, []string{"no_room_overlap"}, validation.Failed)
	})
}

func TestAccept(t *testing.T) {
	//** Act
	_, err := Accept(&thresholdSolver{}, model.Solution{Status: cp.Unknown})

	//** Assert
	assert.ErrorIs(t, err, ErrNoFeasibleSolution)
}
