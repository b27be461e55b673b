package search

import (
	"context"
	"io"
	"slices"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/limaJavier/floorplanning/pkg/cp"
	"github.com/limaJavier/floorplanning/pkg/model"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBisectDefaultCatalog(t *testing.T) {
	if testing.Short() {
		t.Skip("full catalog search takes minutes")
	}

	//** Arrange
	logger := log.New(io.Discard)
	planner := model.NewPlanner(cp.NewNativeEngine(cp.WithLogger(logger)),
		model.DefaultCatalog(), model.DefaultSite(), model.DefaultWeights(), model.WithLogger(logger))
	opts := DefaultOptions()
	opts.TimeLimit = 2 * time.Minute
	opts.Tolerance = 1e-3
	opts.Logger = logger

	//** Act
	result, err := Bisect(context.Background(), planner, opts)

	//** Assert
	require.NoError(t, err)
	require.True(t, result.Best.Feasible(), result.Best.Status.String())
	assert.Len(t, result.Best.Rooms, 20)
	assert.True(t, slices.IsSorted(result.FeasibleTargets()))

	raised := lo.Filter(result.Trace, func(step Step, _ int) bool {
		return step.Stage != StageFallback && step.Status.Feasible()
	})
	for i, step := range raised {
		assert.GreaterOrEqual(t, step.Utilization, step.Target, "step %d", i)
		if i > 0 {
			assert.Greater(t, step.Target, raised[i-1].Target, "step %d", i)
		}
	}
	if len(raised) > 0 {
		assert.Equal(t, raised[len(raised)-1].Objective, result.Best.Objective)
	}

	solution, err := Accept(planner, result.Best)
	require.NoError(t, err)
	assert.Equal(t, result.Best.Objective, solution.Objective)
}
