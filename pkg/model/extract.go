package model

import (
	"github.com/limaJavier/floorplanning/pkg/cp"
	"github.com/samber/lo"
)

// Extract reads a feasible response into a Solution.
func (l *Layout) Extract(resp cp.Response) Solution {
	corridor := l.corridor

	var bands []int
	for i, row := range corridor.rows {
		if resp.BoolValue(corridor.active[i]) {
			bands = append(bands, row)
		}
	}

	rooms := lo.Map(l.rooms, func(r *roomVars, _ int) PlacedRoom {
		return PlacedRoom{
			Name:       r.room.Name,
			Group:      r.room.Group,
			Priority:   r.room.Priority,
			Efficiency: r.room.Efficiency,
			X:          int(resp.Value(r.x)),
			Y:          int(resp.Value(r.y)),
			Width:      int(resp.Value(r.width)),
			Height:     int(resp.Value(r.height)),
			Preferred:  resp.BoolValue(r.preferred),
			DoorSide:   DoorSide(resp.Value(r.side)),
			Door:       Point{int(resp.Value(r.doorX)), int(resp.Value(r.doorY))},
			Center:     Point{int(resp.Value(r.centerX)), int(resp.Value(r.centerY))},
		}
	})

	roomArea := lo.SumBy(rooms, func(room PlacedRoom) int { return room.Area() })
	corridorArea := int(resp.Value(corridor.area))
	utilization := Utilization(l.site, roomArea, corridorArea)

	terms := make(map[string]int64, len(l.terms))
	for _, term := range l.terms {
		terms[term.Name] = term.Expr.Evaluate(resp.Values)
	}

	solution := Solution{
		Status:         resp.Status,
		Objective:      resp.Objective,
		EntranceLength: int(resp.Value(corridor.length)),
		Bands:          bands,
		Rooms:          rooms,
		RoomArea:       roomArea,
		CorridorArea:   corridorArea,
		Utilization:    utilization,
		SolveTime:      resp.WallTime,
		PreferredRatio: preferredRatio(rooms),
		Terms:          terms,
	}
	l.stampTarget(&solution)
	return solution
}

// Failure is the snapshot of a solve without an assignment: empty geometry and
// zero areas.
func (l *Layout) Failure(resp cp.Response) Solution {
	rooms := lo.Map(l.rooms, func(r *roomVars, _ int) PlacedRoom {
		return PlacedRoom{
			Name:       r.room.Name,
			Group:      r.room.Group,
			Priority:   r.room.Priority,
			Efficiency: r.room.Efficiency,
		}
	})
	solution := Solution{
		Status:         resp.Status,
		EntranceLength: l.site.EntranceMinLength,
		Rooms:          rooms,
		Utilization:    Utilization(l.site, 0, 0),
		SolveTime:      resp.WallTime,
	}
	l.stampTarget(&solution)
	return solution
}

func (l *Layout) stampTarget(solution *Solution) {
	if l.target != nil {
		solution.Target = *l.target
		solution.Constrained = true
		return
	}
	solution.Target = solution.Utilization
}
