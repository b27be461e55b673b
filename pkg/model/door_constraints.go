package model

import (
	"github.com/limaJavier/floorplanning/pkg/cp"
	"github.com/samber/lo"
)

// doorConstraints attaches every door to exactly one corridor: the entrance or a
// single active band.
func doorConstraints(state layoutState) error {
	m, site, corridor := state.model, state.site, state.corridor

	for _, r := range state.rooms {
		m.AddEquality(cp.SumBools(r.bands...).AddTerm(r.vertical.IntVar(), 1), 1)

		// Entrance: inside its x-range and below its length
		m.AddLinear(cp.Scaled(r.doorX, 1), int64(site.EntranceX), int64(site.EntranceEnd()-1)).OnlyEnforceIf(r.vertical)
		m.AddLessOrEqual(cp.Scaled(r.doorY, 1).AddTerm(corridor.length, -1), -1).OnlyEnforceIf(r.vertical)

		// Band: inside its rows, and the band must exist
		for i, row := range corridor.rows {
			m.AddLinear(cp.Scaled(r.doorY, 1), int64(row), int64(row+site.BandHeight-1)).OnlyEnforceIf(r.bands[i])
			m.AddImplication(r.bands[i], corridor.active[i])
		}
	}
	return nil
}

// clusterConstraints caps the doors sharing a corridor cell. Each cap only holds
// while its row or band is reachable.
func clusterConstraints(state layoutState) error {
	m, site, corridor := state.model, state.site, state.corridor
	doors := lo.Map(state.rooms, func(r *roomVars, _ int) cp.Point {
		return cp.Point{X: r.doorX, Y: r.doorY}
	})

	for row, reached := range corridor.rowActive {
		region := cp.Region{
			X0: int64(site.EntranceX),
			Y0: int64(row),
			X1: int64(site.EntranceEnd() - 1),
			Y1: int64(row),
		}
		m.AddPointCapacity(doors, region, site.DoorClusterLimit).OnlyEnforceIf(reached)
	}

	for i, row := range corridor.rows {
		region := cp.Region{
			X0: 0,
			Y0: int64(row),
			X1: int64(site.GridWidth - 1),
			Y1: int64(row + site.BandHeight - 1),
		}
		m.AddPointCapacity(doors, region, site.DoorClusterLimit).OnlyEnforceIf(corridor.active[i])
	}
	return nil
}
