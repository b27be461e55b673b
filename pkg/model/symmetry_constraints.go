package model

import (
	"fmt"

	"github.com/limaJavier/floorplanning/pkg/cp"
)

// symmetryConstraints orders interchangeable rooms lexicographically by (x, y).
func symmetryConstraints(state layoutState) error {
	m := state.model

	for _, set := range state.catalog.DuplicateSets() {
		for k := 1; k < len(set); k++ {
			a, b := state.rooms[set[k-1]], state.rooms[set[k]]

			// x(a) <= x(b)
			m.AddLessOrEqual(cp.Scaled(a.x, 1).AddTerm(b.x, -1), 0)

			// tie <=> x(a) == x(b); a tie is broken by y
			tie := m.NewBoolVar(fmt.Sprintf("%s_%s_tie", a.room.Name, b.room.Name))
			m.AddEquality(cp.Scaled(a.x, 1).AddTerm(b.x, -1), 0).OnlyEnforceIf(tie)
			m.AddLessOrEqual(cp.Scaled(a.x, 1).AddTerm(b.x, -1), -1).OnlyEnforceIf(tie.Not())
			m.AddLessOrEqual(cp.Scaled(a.y, 1).AddTerm(b.y, -1), 0).OnlyEnforceIf(tie)
		}
	}
	return nil
}
