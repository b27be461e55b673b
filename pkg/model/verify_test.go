package model

import (
	"testing"

	"github.com/limaJavier/floorplanning/pkg/cp"
	"github.com/stretchr/testify/assert"
)

func validSolution(t *testing.T) (Solution, *Catalog) {
	t.Helper()
	catalog, err := DefaultCatalog().Subset("Server", "Console", "Toilet1")
	if err != nil {
		t.Fatalf("cannot build catalog: %v", err)
	}
	return Solution{
		Status:         cp.Feasible,
		EntranceLength: 30,
		Bands:          []int{0, 10, 20},
		Rooms: []PlacedRoom{
			{Name: "Console", X: 0, Y: 0, Width: 10, Height: 8, Door: Point{5, 0}},
			{Name: "Server", X: 10, Y: 0, Width: 10, Height: 10, Door: Point{15, 0}},
			{Name: "Toilet1", X: 60, Y: 12, Width: 6, Height: 4, Door: Point{63, 12}},
		},
	}, catalog
}

func TestValidate(t *testing.T) {
	site := DefaultSite()

	t.Run("Valid layout", func(t *testing.T) {
		//** Arrange
		solution, catalog := validSolution(t)

		//** Act
		validation := Validate(solution, catalog, site)

		//** Assert
		assert.True(t, validation.AllValid)
		assert.Empty(t, validation.Failed())
		assert.NoError(t, validation.Err())
		assert.Len(t, validation.AsMap(), 7)
	})

	scenarios := []struct {
		name    string
		corrupt func(s *Solution)
		failed  string
	}{
		{"door off corridor", func(s *Solution) { s.Rooms[2].Door = Point{63, 16} }, "doors_on_corridors"},
		{"door in entrance below its end", func(s *Solution) { s.Rooms[2].Door = Point{56, 31} }, "doors_on_corridors"},
		{"overlap", func(s *Solution) { s.Rooms[1].X = 9 }, "no_room_overlap"},
		{"band past entrance", func(s *Solution) { s.Bands = []int{0, 10, 30} }, "band_connection"},
		{"bands too close", func(s *Solution) { s.Bands = []int{0, 10, 17} }, "band_spacing"},
		{"room below minimum", func(s *Solution) { s.Rooms[0].Width = 9 }, "min_room_size"},
		{"unknown room", func(s *Solution) { s.Rooms[2].Name = "Kitchen" }, "min_room_size"},
	}

	for _, scenario := range scenarios {
		t.Run(scenario.name, func(t *testing.T) {
			//** Arrange
			solution, catalog := validSolution(t)
			scenario.corrupt(&solution)

			//** Act
			validation := Validate(solution, catalog, site)

			//** Assert
			assert.False(t, validation.AllValid)
			assert.Equal(t, []string{scenario.failed}, validation.Failed())
			assert.False(t, validation.AsMap()[scenario.failed])

			var err *ValidationError
			assert.ErrorAs(t, validation.Err(), &err)
			assert.Equal(t, []string{scenario.failed}, err.Failed)
		})
	}

	t.Run("Door cluster", func(t *testing.T) {
		//** Arrange
		solution, catalog := validSolution(t)
		site := DefaultSite()
		site.DoorClusterLimit = 1
		solution.Rooms[1].Door = Point{5, 0}
		solution.Rooms[1].X = 20

		//** Act
		validation := Validate(solution, catalog, site)

		//** Assert
		assert.Equal(t, []string{"door_clusters"}, validation.Failed())
	})
}
