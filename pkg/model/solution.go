package model

import (
	"time"

	"github.com/limaJavier/floorplanning/pkg/cp"
	"github.com/samber/lo"
)

type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

type PlacedRoom struct {
	Name       string   `json:"name"`
	Group      Group    `json:"group"`
	Priority   int      `json:"priority"`
	Efficiency float64  `json:"efficiency"`
	X          int      `json:"x"`
	Y          int      `json:"y"`
	Width      int      `json:"width"`
	Height     int      `json:"height"`
	Preferred  bool     `json:"preferred"`
	DoorSide   DoorSide `json:"door_side"`
	Door       Point    `json:"door"`
	Center     Point    `json:"center"`
}

func (r PlacedRoom) Area() int { return r.Width * r.Height }

// Overlaps reports whether two rooms share at least one cell.
func (r PlacedRoom) Overlaps(other PlacedRoom) bool {
	return r.X < other.X+other.Width && other.X < r.X+r.Width &&
		r.Y < other.Y+other.Height && other.Y < r.Y+r.Height
}

type SolverParameters struct {
	MaxTime   time.Duration `json:"max_time"`
	Seed      int64         `json:"seed"`
	Workers   int           `json:"workers"`
	Randomize bool          `json:"randomize"`
	Precision bool          `json:"precision"`
}

type RuntimeInfo struct {
	WallTime      time.Duration `json:"wall_time"`
	Workers       int           `json:"workers"`
	Nodes         int64         `json:"nodes"`
	Fails         int64         `json:"fails"`
	Restarts      int64         `json:"restarts"`
	Neighborhoods int64         `json:"neighborhoods"`
	Solutions     int64         `json:"solutions"`
	Variables     int           `json:"variables"`
	Constraints   int           `json:"constraints"`
}

// Solution is the snapshot of one solver call. It is never modified after
// extraction.
type Solution struct {
	Status         cp.Status
	Objective      int64
	Target         float64 // requested ratio, or the realized utilization when unconstrained
	Constrained    bool
	EntranceLength int
	Bands          []int
	Rooms          []PlacedRoom
	RoomArea       int
	CorridorArea   int
	Utilization    float64
	SolveTime      time.Duration
	PreferredRatio float64
	Terms          map[string]int64 // unweighted objective terms
	Parameters     SolverParameters
	Runtime        RuntimeInfo
}

func (s Solution) Feasible() bool { return s.Status.Feasible() }

// Utilization is the room area over the area left free by the corridors.
func Utilization(site Site, roomArea, corridorArea int) float64 {
	free := site.TotalArea() - corridorArea
	if free <= 0 {
		return 0
	}
	return float64(roomArea) / float64(free)
}

func preferredRatio(rooms []PlacedRoom) float64 {
	if len(rooms) == 0 {
		return 0
	}
	preferred := lo.CountBy(rooms, func(room PlacedRoom) bool { return room.Preferred })
	return float64(preferred) / float64(len(rooms))
}
