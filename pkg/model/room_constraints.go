package model

import (
	"fmt"

	"github.com/limaJavier/floorplanning/pkg/cp"
	"github.com/samber/lo"
)

func roomConstraints(state layoutState) error {
	m, site := state.model, state.site

	for _, r := range state.rooms {
		if len(r.sizes) == 0 {
			return fmt.Errorf("room %q has no size options", r.room.Name)
		}

		//** Size selection
		widths := lo.Map(r.sizes, func(size Size, _ int) int64 { return int64(size.Width) })
		heights := lo.Map(r.sizes, func(size Size, _ int) int64 { return int64(size.Height) })
		areas := lo.Map(r.sizes, func(size Size, _ int) int64 { return int64(size.Area()) })
		m.AddElement(r.selector, widths, r.width)
		m.AddElement(r.selector, heights, r.height)
		m.AddElement(r.selector, areas, r.area)

		// preferred <=> selector == preferred index
		if preferred := r.room.PreferredIndex(); preferred < 0 {
			m.AddEquality(cp.SumBools(r.preferred), 0)
		} else {
			below := m.NewBoolVar(r.room.Name + "_below_preferred")
			above := m.NewBoolVar(r.room.Name + "_above_preferred")
			m.AddExactlyOne(r.preferred, below, above)
			m.AddEquality(cp.Scaled(r.selector, 1), int64(preferred)).OnlyEnforceIf(r.preferred)
			m.AddLessOrEqual(cp.Scaled(r.selector, 1), int64(preferred-1)).OnlyEnforceIf(below)
			m.AddGreaterOrEqual(cp.Scaled(r.selector, 1), int64(preferred+1)).OnlyEnforceIf(above)
		}

		//** Inside the grid
		m.AddLessOrEqual(cp.Sum(r.x, r.width), int64(site.GridWidth))
		m.AddLessOrEqual(cp.Sum(r.y, r.height), int64(site.GridHeight))

		//** Door offsets, looked up per (size, side)
		var doorDX, doorDY []int64
		for _, size := range r.sizes {
			dx, dy := DoorOffsets(size)
			for side := range doorSides {
				doorDX = append(doorDX, int64(dx[side]))
				doorDY = append(doorDY, int64(dy[side]))
			}
		}
		m.AddEquality(cp.Scaled(r.selector, int64(doorSides)).Add(r.side).AddTerm(r.combined, -1), 0)
		offsetX := m.NewIntVar(0, int64(r.room.PreferredWidth-1), r.room.Name+"_door_dx")
		offsetY := m.NewIntVar(0, int64(r.room.PreferredHeight-1), r.room.Name+"_door_dy")
		m.AddElement(r.combined, doorDX, offsetX)
		m.AddElement(r.combined, doorDY, offsetY)
		m.AddEquality(cp.Sum(r.x, offsetX).AddTerm(r.doorX, -1), 0)
		m.AddEquality(cp.Sum(r.y, offsetY).AddTerm(r.doorY, -1), 0)

		//** Center
		halfWidths := lo.Map(r.sizes, func(size Size, _ int) int64 { return int64(size.Width / 2) })
		halfHeights := lo.Map(r.sizes, func(size Size, _ int) int64 { return int64(size.Height / 2) })
		halfWidth := m.NewIntVar(0, int64(r.room.PreferredWidth/2), r.room.Name+"_half_w")
		halfHeight := m.NewIntVar(0, int64(r.room.PreferredHeight/2), r.room.Name+"_half_h")
		m.AddElement(r.selector, halfWidths, halfWidth)
		m.AddElement(r.selector, halfHeights, halfHeight)
		m.AddEquality(cp.Sum(r.x, halfWidth).AddTerm(r.centerX, -1), 0)
		m.AddEquality(cp.Sum(r.y, halfHeight).AddTerm(r.centerY, -1), 0)
	}

	return nil
}

func overlapConstraints(state layoutState) error {
	rects := lo.Map(state.rooms, func(r *roomVars, _ int) cp.Rect {
		return cp.Rect{X: r.x, Width: r.width, Y: r.y, Height: r.height}
	})
	state.model.AddNoOverlap2D(rects)
	return nil
}

// sideConstraints keeps every room entirely left or entirely right of the
// entrance corridor.
func sideConstraints(state layoutState) error {
	m, site := state.model, state.site

	for _, r := range state.rooms {
		m.AddLessOrEqual(cp.Sum(r.x, r.width), int64(site.EntranceX)).OnlyEnforceIf(r.left)
		m.AddGreaterOrEqual(cp.Scaled(r.x, 1), int64(site.EntranceEnd())).OnlyEnforceIf(r.right)
		m.AddBoolOr(r.left, r.right)
	}
	return nil
}
