package report

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/limaJavier/floorplanning/pkg/cp"
	"github.com/limaJavier/floorplanning/pkg/model"
	. "github.com/onsi/gomega"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSolution() model.Solution {
	return model.Solution{
		Status:         cp.Feasible,
		Objective:      123456,
		Target:         0.55,
		Constrained:    true,
		EntranceLength: 20,
		Bands:          []int{0, 12},
		Rooms: []model.PlacedRoom{
			{Name: "Console", Group: model.Console, Priority: 7, X: 0, Y: 0, Width: 10, Height: 8, Preferred: true, Door: model.Point{X: 5, Y: 0}, Center: model.Point{X: 5, Y: 4}},
			{Name: "Server", Group: model.Server, Priority: 8, X: 10, Y: 0, Width: 10, Height: 10, Preferred: true, Door: model.Point{X: 15, Y: 0}, Center: model.Point{X: 15, Y: 5}},
			{Name: "Storeroom", Group: model.Storage, Priority: 9, X: 35, Y: 0, Width: 11, Height: 10, Preferred: true, Door: model.Point{X: 40, Y: 0}, Center: model.Point{X: 40, Y: 5}},
			{Name: "Prod1", Group: model.Production, Priority: 8, X: 40, Y: 3, Width: 12, Height: 10, Preferred: true, Door: model.Point{X: 40, Y: 3}, Center: model.Point{X: 45, Y: 5}},
			{Name: "Prod2", Group: model.Production, Priority: 8, X: 52, Y: 3, Width: 11, Height: 10, Door: model.Point{X: 52, Y: 3}, Center: model.Point{X: 57, Y: 5}},
			{Name: "Dev", Group: model.Dev, Priority: 10, X: 60, Y: 30, Width: 6, Height: 7, Door: model.Point{X: 60, Y: 30}, Center: model.Point{X: 63, Y: 33}},
		},
		RoomArea:       522,
		CorridorArea:   696,
		Utilization:    0.172,
		SolveTime:      1500 * time.Millisecond,
		PreferredRatio: 4.0 / 6.0,
		Terms:          map[string]int64{"corridor_area": 696, "symmetry": 12},
		Parameters:     model.SolverParameters{MaxTime: time.Minute, Seed: 42, Workers: 4, Precision: true},
		Runtime:        model.RuntimeInfo{WallTime: 1500 * time.Millisecond, Workers: 4, Nodes: 1000, Solutions: 3},
	}
}

func TestPairScoreFor(t *testing.T) {
	site := model.DefaultSite()

	assert.Equal(t, 8000.0, PairScoreFor(80, 5, site))
	assert.Equal(t, 4000.0, PairScoreFor(80, 6, site))
	assert.Equal(t, 4000.0, PairScoreFor(80, 15, site))
	assert.InDelta(t, 80*93.6, PairScoreFor(80, 16, site), 1e-9)
	assert.Zero(t, PairScoreFor(80, 250, site))
	assert.Zero(t, PairScoreFor(80, 300, site))
}

func TestBuild(t *testing.T) {
	catalog, site, weights := model.DefaultCatalog(), model.DefaultSite(), model.DefaultWeights()

	t.Run("Metrics", func(t *testing.T) {
		g := NewWithT(t)

		//** Arrange
		solution := sampleSolution()
		validation := model.Validate(solution, catalog, site)
		now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

		//** Act
		report := Build(solution, validation, catalog, site, weights,
			WithClock(func() time.Time { return now }),
			WithRunID("run-1"),
			WithArgs([]string{"solve", "--time", "60s"}),
			WithArtifacts("floorplan.png"))

		//** Assert
		g.Expect(report.Metadata.Generator).To(Equal(Generator))
		g.Expect(report.Metadata.RunID).To(Equal("run-1"))
		g.Expect(report.Metadata.Timestamp).To(Equal(now))
		g.Expect(report.Metadata.Grid).To(Equal(Grid{Width: 77, Height: 50, TotalArea: 3850}))
		g.Expect(report.Metadata.Args).To(ConsistOf("solve", "--time", "60s"))
		g.Expect(report.Artifacts).To(ConsistOf("floorplan.png"))

		g.Expect(report.Outcome.Status).To(Equal("FEASIBLE"))
		g.Expect(report.Outcome.ComputationTime).To(Equal(1.5))
		g.Expect(report.Outcome.Validation).To(HaveLen(7))
		g.Expect(report.Outcome.Valid).To(Equal(validation.AllValid))

		g.Expect(report.Layout.Entrance).To(Equal(Entrance{XRange: [2]int{55, 59}, Length: 20, MaxLength: 35, Area: 80}))
		g.Expect(report.Layout.Bands).To(Equal(Bands{Count: 2, Positions: []int{0, 12}, Area: 616}))
		g.Expect(report.Metrics.Space.FreeArea).To(Equal(3850 - 696))

		adjacency := report.Metrics.Adjacency
		g.Expect(adjacency.Pairs).To(Equal(4))
		g.Expect(adjacency.TotalScore).To(Equal(43300.0))
		g.Expect(adjacency.AverageScore).To(Equal(10825.0))
		g.Expect(adjacency.Top).To(HaveLen(4))
		g.Expect(adjacency.Top[0]).To(Equal(PairScore{
			Rooms:    [2]string{"Storeroom", "Prod1"},
			Groups:   [2]model.Group{model.Storage, model.Production},
			Weight:   240,
			Distance: 3,
			Score:    24000,
		}))
		g.Expect([]float64{adjacency.Top[1].Score, adjacency.Top[2].Score, adjacency.Top[3].Score}).
			To(Equal([]float64{12000, 4000, 3300}))

		g.Expect(report.Metrics.Groups).To(HaveLen(5))
		g.Expect(report.Metrics.Groups).To(HaveKeyWithValue(model.Production, GroupMetrics{
			Rooms:          []string{"Prod1", "Prod2"},
			TotalArea:      230,
			PreferredSizes: 1,
			AvgPriority:    8,
			CenterOfMass:   [2]float64{51, 5},
			PreferredRatio: 0.5,
		}))

		g.Expect(report.Weights).To(HaveKeyWithValue("W_DOOR_ADJ", int64(12000)))
		g.Expect(report.Weights).To(HaveLen(12))
		g.Expect(report.Thresholds.DoorBonus).To(Equal(250))
	})

	t.Run("Top pairs are capped", func(t *testing.T) {
		g := NewWithT(t)

		//** Arrange
		solution := sampleSolution()
		solution.Rooms = nil
		for _, room := range catalog.Rooms {
			solution.Rooms = append(solution.Rooms, model.PlacedRoom{Name: room.Name, Group: room.Group})
		}

		//** Act
		report := Build(solution, model.Validation{}, catalog, site, weights)

		//** Assert
		adjacency := report.Metrics.Adjacency
		g.Expect(adjacency.Pairs).To(BeNumerically(">", topPairs))
		g.Expect(adjacency.Top).To(HaveLen(topPairs))
		for i := 1; i < len(adjacency.Top); i++ {
			g.Expect(adjacency.Top[i-1].Score).To(BeNumerically(">=", adjacency.Top[i].Score))
		}
		g.Expect(uuid.Parse(report.Metadata.RunID)).Error().NotTo(HaveOccurred())
		g.Expect(report.Outcome.Valid).To(BeFalse())
	})

	t.Run("No related rooms", func(t *testing.T) {
		//** Arrange
		solution := sampleSolution()
		solution.Rooms = solution.Rooms[:1]

		//** Act
		report := Build(solution, model.Validation{}, catalog, site, weights)

		//** Assert
		assert.Zero(t, report.Metrics.Adjacency.TotalScore)
		assert.Zero(t, report.Metrics.Adjacency.AverageScore)
		assert.Empty(t, report.Metrics.Adjacency.Top)
	})
}

func TestWriteRead(t *testing.T) {
	catalog, site, weights := model.DefaultCatalog(), model.DefaultSite(), model.DefaultWeights()

	t.Run("Round trip", func(t *testing.T) {
		//** Arrange
		solution := sampleSolution()
		path := filepath.Join(t.TempDir(), "out", "floorplan.json")
		report := Build(solution, model.Validate(solution, catalog, site), catalog, site, weights)

		//** Act
		err := Write(path, report)
		require.NoError(t, err)
		read, err := Read(path)
		require.NoError(t, err)
		restored, err := read.Solution()

		//** Assert
		require.NoError(t, err)
		assert.Equal(t, solution, restored)
		assert.Equal(t, report.Metrics, read.Metrics)
		assert.True(t, report.Metadata.Timestamp.Equal(read.Metadata.Timestamp))
		assert.Equal(t, model.Validate(solution, catalog, site), model.Validate(restored, catalog, site))
	})

	t.Run("Group summary", func(t *testing.T) {
		//** Arrange
		solution := sampleSolution()
		report := Build(solution, model.Validation{}, catalog, site, weights)

		//** Act
		lines := report.GroupSummary()

		//** Assert
		require.Len(t, lines, 5)
		assert.Equal(t, model.Console, lines[0].Group)
		assert.Equal(t, GroupLine{Group: model.Production, Rooms: 2, Area: 230, PreferredRatio: 0.5}, lines[2])
	})

	t.Run("Missing file", func(t *testing.T) {
		//** Act
		_, err := Read(filepath.Join(t.TempDir(), "missing.json"))

		//** Assert
		assert.ErrorIs(t, err, ErrExport)
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("Malformed file", func(t *testing.T) {
		//** Arrange
		path := filepath.Join(t.TempDir(), "broken.json")
		require.NoError(t, os.WriteFile(path, []byte("{"), 0o644))

		//** Act
		_, err := Read(path)

		//** Assert
		assert.ErrorIs(t, err, ErrExport)
	})

	t.Run("Unknown status", func(t *testing.T) {
		//** Arrange
		report := Build(sampleSolution(), model.Validation{}, catalog, site, weights)
		report.Outcome.Status = "DONE"

		//** Act
		_, err := report.Solution()

		//** Assert
		assert.Error(t, err)
	})

	t.Run("Unwritable directory", func(t *testing.T) {
		//** Arrange
		blocker := filepath.Join(t.TempDir(), "file")
		require.NoError(t, os.WriteFile(blocker, nil, 0o644))

		//** Act
		err := Write(filepath.Join(blocker, "floorplan.json"), Report{})

		//** Assert
		assert.ErrorIs(t, err, ErrExport)
	})
}
