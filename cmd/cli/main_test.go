package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/limaJavier/floorplanning/pkg/cp"
	"github.com/limaJavier/floorplanning/pkg/model"
	"github.com/limaJavier/floorplanning/pkg/report"
	"github.com/limaJavier/floorplanning/pkg/search"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	root := newRootCmd(&stdout, &stderr)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return stdout.String(), err
}

func writeReport(t *testing.T, rooms ...model.PlacedRoom) string {
	t.Helper()
	solution := model.Solution{
		Status:         cp.Feasible,
		EntranceLength: 30,
		Bands:          []int{0, 10, 20},
		Rooms:          rooms,
	}
	catalog, site := model.DefaultCatalog(), model.DefaultSite()
	path := filepath.Join(t.TempDir(), "floorplan.json")
	rep := report.Build(solution, model.Validate(solution, catalog, site), catalog, site, model.DefaultWeights())
	require.NoError(t, report.Write(path, rep))
	return path
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, exitOK, exitCode(nil))
	assert.Equal(t, exitInterrupt, exitCode(fmt.Errorf("bisection probe: %w", context.Canceled)))
	assert.Equal(t, exitNoSolution, exitCode(search.ErrNoFeasibleSolution))
	assert.Equal(t, exitError, exitCode(fmt.Errorf("%w: %w", search.ErrValidationFailure, &model.ValidationError{Failed: []string{"no_room_overlap"}})))
	assert.Equal(t, exitError, exitCode(errors.New("boom")))
}

func TestCatalogCmd(t *testing.T) {
	//** Act
	out, err := execute(t, "catalog")

	//** Assert
	require.NoError(t, err)
	assert.Contains(t, out, "Storeroom")
	assert.Contains(t, out, "16x8")
	assert.Contains(t, out, "20 rooms in 13 groups")
}

func TestValidateCmd(t *testing.T) {
	console := model.PlacedRoom{Name: "Console", Group: model.Console, X: 0, Y: 0, Width: 10, Height: 8, Door: model.Point{X: 5, Y: 0}}
	server := model.PlacedRoom{Name: "Server", Group: model.Server, X: 10, Y: 0, Width: 10, Height: 10, Door: model.Point{X: 15, Y: 0}}

	t.Run("Valid report", func(t *testing.T) {
		//** Arrange
		path := writeReport(t, console, server)

		//** Act
		out, err := execute(t, "validate", path)

		//** Assert
		require.NoError(t, err)
		assert.Contains(t, out, "doors_on_corridors")
		assert.NotContains(t, out, "FAILED")
	})

	t.Run("Overlapping rooms", func(t *testing.T) {
		//** Arrange
		server.X = 5
		path := writeReport(t, console, server)

		//** Act
		out, err := execute(t, "validate", path)

		//** Assert
		assert.ErrorIs(t, err, search.ErrValidationFailure)
		assert.Equal(t, exitError, exitCode(err))
		assert.Contains(t, out, "FAILED")
	})

	t.Run("Missing report", func(t *testing.T) {
		//** Act
		_, err := execute(t, "validate", filepath.Join(t.TempDir(), "missing.json"))

		//** Assert
		assert.ErrorIs(t, err, report.ErrExport)
	})

	t.Run("Missing argument", func(t *testing.T) {
		//** Act
		_, err := execute(t, "validate")

		//** Assert
		assert.Error(t, err)
	})
}

func TestSolveCmd(t *testing.T) {
	t.Run("Unsupported weight file", func(t *testing.T) {
		//** Arrange
		path := filepath.Join(t.TempDir(), "weights.yaml")
		require.NoError(t, os.WriteFile(path, []byte("W_BORDER: 1\n"), 0o644))

		//** Act
		_, err := execute(t, "solve", "--weights", path, "--outdir", t.TempDir())

		//** Assert
		assert.ErrorContains(t, err, "unsupported weights file")
		assert.Equal(t, exitError, exitCode(err))
	})

	t.Run("Inverted utilization range", func(t *testing.T) {
		//** Act
		_, err := execute(t, "solve", "--rho-lo", "0.7", "--rho-hi", "0.6", "--outdir", t.TempDir())

		//** Assert
		assert.Error(t, err)
		assert.Equal(t, exitError, exitCode(err))
	})
}
