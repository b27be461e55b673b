package model

import (
	"fmt"
	"math"

	"github.com/limaJavier/floorplanning/pkg/cp"
	"github.com/samber/lo"
)

// ObjectiveTerm is one weighted component of the maximized objective. Penalties
// carry a negated expression.
type ObjectiveTerm struct {
	Name   string
	Weight int64
	Expr   cp.LinearExpr
}

func objectiveTerms(state layoutState, weights Weights) []ObjectiveTerm {
	corridor := state.corridor
	doors, centers, critical := adjacencyTerms(state)

	return []ObjectiveTerm{
		{"corridor_area", weights.CorridorArea, cp.Scaled(corridor.area, -1)},
		{"entrance_length", weights.EntranceLength, cp.Scaled(corridor.length, -1)},
		{"border", weights.Border, cp.SumBools(corridor.border...).Scale(-1)},
		{"band_count", weights.BandCount, cp.Scaled(corridor.count, -1)},
		{"door_adjacency", weights.DoorAdjacency, doors},
		{"center_adjacency", weights.CenterAdjacency, centers},
		{"critical_pair", weights.CriticalPair, critical},
		{"room_efficiency", weights.RoomEfficiency, efficiencyTerm(state)},
		{"priority", weights.Priority, priorityTerm(state)},
		{"horizontal_preference", weights.HorizontalPreference, bandPreferenceTerm(state)},
		{"compactness", weights.Compactness, compactnessTerm(state)},
		{"symmetry", weights.Symmetry, symmetryTerm(state)},
	}
}

// newAtMost returns a literal true exactly when v <= limit.
func newAtMost(m *cp.Model, v cp.IntVar, limit int64, name string) cp.BoolVar {
	b := m.NewBoolVar(name)
	m.AddLessOrEqual(cp.Scaled(v, 1), limit).OnlyEnforceIf(b)
	m.AddGreaterOrEqual(cp.Scaled(v, 1), limit+1).OnlyEnforceIf(b.Not())
	return b
}

// PairWeight is the adjacency weight of two rooms scaled by their priorities.
func PairWeight(catalog *Catalog, a, b RoomType) int64 {
	return int64(catalog.Weight(a.Group, b.Group) * (a.Priority + b.Priority) / 10)
}

func isCriticalPair(site Site, a, b Group) bool {
	first, second := site.CriticalPair[0], site.CriticalPair[1]
	return (a == first && b == second) || (a == second && b == first)
}

// adjacencyTerms scores every related pair of rooms by door distance and center
// distance. The door bonus is staged: K when very close, K/2 when close.
func adjacencyTerms(state layoutState) (doors, centers, critical cp.LinearExpr) {
	m, site := state.model, state.site
	bonus := int64(site.DoorBonus)

	for i, a := range state.rooms {
		for _, b := range state.rooms[i+1:] {
			if state.catalog.Weight(a.room.Group, b.room.Group) == 0 {
				continue
			}
			weight := PairWeight(state.catalog, a.room, b.room)
			name := a.room.Name + "_" + b.room.Name

			distance := newManhattan(m, site,
				cp.Scaled(a.doorX, 1), cp.Scaled(a.doorY, 1),
				cp.Scaled(b.doorX, 1), cp.Scaled(b.doorY, 1),
				name+"_door_distance")
			veryClose := newAtMost(m, distance, int64(site.VeryCloseDoors), name+"_very_close")
			nearby := newAtMost(m, distance, int64(site.CloseDoors), name+"_close")

			closeBonus := m.NewIntVar(0, bonus, name+"_close_bonus")
			mediumBonus := m.NewIntVar(0, bonus/2, name+"_medium_bonus")
			m.AddEquality(cp.Scaled(closeBonus, 1).AddLiteral(veryClose, -bonus), 0)
			m.AddEquality(cp.Scaled(mediumBonus, 1).AddLiteral(nearby, -bonus/2), 0)
			staged := m.NewIntVar(0, bonus, name+"_door_bonus")
			m.AddMaxEquality(staged, []cp.IntVar{closeBonus, mediumBonus})
			doors = doors.AddTerm(staged, weight)

			if isCriticalPair(site, a.room.Group, b.room.Group) {
				critical = critical.Add(staged)
			}

			centerDistance := newManhattan(m, site,
				cp.Scaled(a.centerX, 1), cp.Scaled(a.centerY, 1),
				cp.Scaled(b.centerX, 1), cp.Scaled(b.centerY, 1),
				name+"_center_distance")
			near := newAtMost(m, centerDistance, int64(site.CenterAdjacency), name+"_near")
			centers = centers.AddLiteral(near, weight*(bonus/4))
		}
	}
	return doors, centers, critical
}

func efficiencyTerm(state layoutState) cp.LinearExpr {
	expr := cp.NewLinearExpr()
	for _, r := range state.rooms {
		expr = expr.AddLiteral(r.preferred, int64(math.Round(r.room.Efficiency*1000)))
	}
	return expr
}

// priorityTerm rewards high priority rooms centered near the entrance.
func priorityTerm(state layoutState) cp.LinearExpr {
	m, site := state.model, state.site
	entranceX, entranceY := site.EntranceCenter()

	expr := cp.NewLinearExpr()
	for _, r := range state.rooms {
		if r.room.Priority < site.PriorityThreshold {
			continue
		}
		distance := newManhattan(m, site,
			cp.Scaled(r.centerX, 1), cp.Scaled(r.centerY, 1),
			cp.Constant(int64(entranceX)), cp.Constant(int64(entranceY)),
			r.room.Name+"_entrance_distance")
		central := newAtMost(m, distance, int64(site.PriorityDistance), r.room.Name+"_central")
		expr = expr.AddLiteral(central, int64(r.room.Priority*100))
	}
	return expr
}

// bandPreferenceTerm rewards rooms of band-bound groups whose door sits close to
// the center of an active band. Inactive bands count as far away.
func bandPreferenceTerm(state layoutState) cp.LinearExpr {
	m, site, corridor := state.model, state.site, state.corridor
	inactive := int64(site.InactiveBandDistance)
	decay := int64(site.BandPreferenceDecay)

	expr := cp.NewLinearExpr()
	for _, r := range state.rooms {
		multiplier, ok := site.BandPreference[r.room.Group]
		if !ok {
			continue
		}
		base := int64(float64(site.BandPreferenceBase) * multiplier)

		distances := make([]cp.IntVar, len(corridor.rows))
		for i, row := range corridor.rows {
			name := fmt.Sprintf("%s_band_%d", r.room.Name, row)
			offset := newAbsDiff(m,
				cp.Scaled(r.doorY, 1), cp.Constant(int64(row+site.BandHeight/2)),
				int64(site.GridHeight), name+"_offset")

			// distance = offset + inactive·(1 - active)
			distances[i] = m.NewIntVar(0, int64(site.GridHeight)+inactive, name+"_distance")
			m.AddEquality(cp.Scaled(distances[i], 1).AddTerm(offset, -1).AddLiteral(corridor.active[i].Not(), -inactive), 0)
		}

		nearest := m.NewIntVar(0, int64(site.GridHeight)+inactive, r.room.Name+"_nearest_band")
		m.AddMinEquality(nearest, distances)

		raw := m.NewIntVar(base-decay*(int64(site.GridHeight)+inactive), base, r.room.Name+"_band_raw")
		m.AddEquality(cp.Scaled(raw, 1).AddTerm(nearest, decay), base)

		bonus := m.NewIntVar(0, base, r.room.Name+"_band_bonus")
		m.AddMaxEquality(bonus, []cp.IntVar{m.NewConstant(0), raw})
		expr = expr.Add(bonus)
	}
	return expr
}

// compactnessTerm rewards rooms close to the centroid of their group.
func compactnessTerm(state layoutState) cp.LinearExpr {
	m, site := state.model, state.site

	expr := cp.NewLinearExpr()
	for _, group := range state.catalog.Groups() {
		members := state.catalog.GroupMembers(group)
		if len(members) < 2 {
			continue
		}
		rooms := lo.Map(members, func(i int, _ int) *roomVars { return state.rooms[i] })
		n := int64(len(rooms))

		centroidX := m.NewIntVar(0, int64(site.GridWidth-1), string(group)+"_centroid_x")
		centroidY := m.NewIntVar(0, int64(site.GridHeight-1), string(group)+"_centroid_y")
		m.AddDivisionEquality(centroidX, cp.Sum(lo.Map(rooms, func(r *roomVars, _ int) cp.IntVar { return r.centerX })...), n)
		m.AddDivisionEquality(centroidY, cp.Sum(lo.Map(rooms, func(r *roomVars, _ int) cp.IntVar { return r.centerY })...), n)

		for _, r := range rooms {
			distance := newManhattan(m, site,
				cp.Scaled(r.centerX, 1), cp.Scaled(r.centerY, 1),
				cp.Scaled(centroidX, 1), cp.Scaled(centroidY, 1),
				r.room.Name+"_centroid_distance")
			compact := newAtMost(m, distance, int64(site.CompactDistance), r.room.Name+"_compact")
			expr = expr.AddLiteral(compact, int64(site.CompactBonus))
		}
	}
	return expr
}

// symmetryTerm rewards an even split of rooms around the vertical midline.
func symmetryTerm(state layoutState) cp.LinearExpr {
	m, site := state.model, state.site
	total := int64(len(state.rooms))

	lefts := cp.NewLinearExpr()
	for _, r := range state.rooms {
		isLeft := newAtMost(m, r.centerX, int64(site.GridWidth/2-1), r.room.Name+"_west")
		lefts = lefts.AddLiteral(isLeft, 2)
	}
	imbalance := newAbsDiff(m, lefts, cp.Constant(total), total, "imbalance")
	balanced := newAtMost(m, imbalance, int64(site.BalanceTolerance), "balanced")
	return cp.NewLinearExpr().AddLiteral(balanced, int64(site.BalanceBonus))
}
