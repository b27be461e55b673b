package model

import (
	"errors"

	"github.com/limaJavier/floorplanning/pkg/cp"
)

func corridorConstraints(state layoutState) error {
	m, site, corridor := state.model, state.site, state.corridor
	if len(corridor.rows) == 0 {
		return errors.New("no candidate band rows")
	}

	//** Band count
	m.AddEquality(cp.SumBools(corridor.active...).AddTerm(corridor.count, -1), 0)

	//** Spacing: two active bands must be at least MinBandSpacing rows apart
	for a := range corridor.rows {
		for b := a + 1; b < len(corridor.rows); b++ {
			if corridor.rows[b]-corridor.rows[a] >= site.MinBandSpacing {
				break
			}
			m.AddAtMostOne(corridor.active[a], corridor.active[b])
		}
	}

	for i, row := range corridor.rows {
		active := corridor.active[i]

		// A band is reachable only when the entrance passes its row
		m.AddGreaterOrEqual(cp.Scaled(corridor.length, 1), int64(row+1)).OnlyEnforceIf(active)

		// border(y) = active(y) near the border, false elsewhere
		if row <= site.BorderRows {
			m.AddEquality(cp.SumBools(corridor.border[i]).AddLiteral(active, -1), 0)
		} else {
			m.AddEquality(cp.SumBools(corridor.border[i]), 0)
		}
	}

	//** Entrance rows, true exactly while the entrance reaches them
	for row, reached := range corridor.rowActive {
		m.AddGreaterOrEqual(cp.Scaled(corridor.length, 1), int64(row+1)).OnlyEnforceIf(reached)
		m.AddLessOrEqual(cp.Scaled(corridor.length, 1), int64(row)).OnlyEnforceIf(reached.Not())
	}

	//** Area
	area := cp.Scaled(corridor.length, int64(site.EntranceWidth)).
		AddTerm(corridor.count, int64(site.BandArea())).
		AddTerm(corridor.area, -1)
	m.AddEquality(area, 0)

	return nil
}
