package model

import (
	"github.com/samber/lo"
)

// Validation is the outcome of re-checking a Solution from its geometry alone.
type Validation struct {
	DoorsOnCorridors bool
	NoRoomOverlap    bool
	BandConnection   bool
	BandSpacing      bool
	DoorClusters     bool
	MinRoomSize      bool
	AllValid         bool
}

func (v Validation) checks() []lo.Tuple2[string, bool] {
	return []lo.Tuple2[string, bool]{
		lo.T2("doors_on_corridors", v.DoorsOnCorridors),
		lo.T2("no_room_overlap", v.NoRoomOverlap),
		lo.T2("band_connection", v.BandConnection),
		lo.T2("band_spacing", v.BandSpacing),
		lo.T2("door_clusters", v.DoorClusters),
		lo.T2("min_room_size", v.MinRoomSize),
	}
}

// Failed lists the names of the failing checks.
func (v Validation) Failed() []string {
	return lo.FilterMap(v.checks(), func(check lo.Tuple2[string, bool], _ int) (string, bool) {
		return check.A, !check.B
	})
}

func (v Validation) AsMap() map[string]bool {
	out := lo.FromPairs(lo.Map(v.checks(), func(check lo.Tuple2[string, bool], _ int) lo.Entry[string, bool] {
		return lo.Entry[string, bool]{Key: check.A, Value: check.B}
	}))
	out["all_valid"] = v.AllValid
	return out
}

// Err returns a *ValidationError naming the failed checks, or nil.
func (v Validation) Err() error {
	if v.AllValid {
		return nil
	}
	return &ValidationError{Failed: v.Failed()}
}

// Validate never trusts solver internals: every check is recomputed from room
// rectangles, doors and corridor rows.
func Validate(solution Solution, catalog *Catalog, site Site) Validation {
	v := Validation{
		DoorsOnCorridors: doorsOnCorridors(solution, site),
		NoRoomOverlap:    noRoomOverlap(solution.Rooms),
		BandConnection:   bandConnection(solution),
		BandSpacing:      bandSpacing(solution.Bands, site),
		DoorClusters:     doorClusters(solution.Rooms, site),
		MinRoomSize:      minRoomSize(solution.Rooms, catalog),
	}
	v.AllValid = lo.EveryBy(v.checks(), func(check lo.Tuple2[string, bool]) bool { return check.B })
	return v
}

func doorsOnCorridors(solution Solution, site Site) bool {
	return lo.EveryBy(solution.Rooms, func(room PlacedRoom) bool {
		door := room.Door
		if door.X >= site.EntranceX && door.X < site.EntranceEnd() && door.Y >= 0 && door.Y < solution.EntranceLength {
			return true
		}
		if door.X < 0 || door.X >= site.GridWidth {
			return false
		}
		return lo.SomeBy(solution.Bands, func(row int) bool {
			return door.Y >= row && door.Y < row+site.BandHeight
		})
	})
}

func noRoomOverlap(rooms []PlacedRoom) bool {
	for i, a := range rooms {
		for _, b := range rooms[i+1:] {
			if a.Overlaps(b) {
				return false
			}
		}
	}
	return true
}

func bandConnection(solution Solution) bool {
	return lo.EveryBy(solution.Bands, func(row int) bool {
		return row < solution.EntranceLength
	})
}

func bandSpacing(bands []int, site Site) bool {
	for i, a := range bands {
		for _, b := range bands[i+1:] {
			if abs(a-b) < site.MinBandSpacing {
				return false
			}
		}
	}
	return true
}

func doorClusters(rooms []PlacedRoom, site Site) bool {
	counts := lo.CountValuesBy(rooms, func(room PlacedRoom) Point { return room.Door })
	return lo.EveryBy(lo.Values(counts), func(count int) bool {
		return count <= site.DoorClusterLimit
	})
}

func minRoomSize(rooms []PlacedRoom, catalog *Catalog) bool {
	types := lo.KeyBy(catalog.Rooms, func(room RoomType) string { return room.Name })
	return lo.EveryBy(rooms, func(room PlacedRoom) bool {
		kind, ok := types[room.Name]
		return ok && room.Width >= kind.MinWidth && room.Height >= kind.MinHeight
	})
}
