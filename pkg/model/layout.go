package model

import (
	"cmp"
	"fmt"
	"math"
	"slices"

	"github.com/limaJavier/floorplanning/pkg/cp"
)

type corridorVars struct {
	length    cp.IntVar
	rows      []int
	active    []cp.BoolVar // one per candidate row
	border    []cp.BoolVar
	count     cp.IntVar
	area      cp.IntVar
	rowActive []cp.BoolVar // vertical corridor rows below the longest entrance
}

type roomVars struct {
	room  RoomType
	sizes []Size

	selector, width, height, area cp.IntVar
	x, y                          cp.IntVar
	side, combined                cp.IntVar
	doorX, doorY                  cp.IntVar
	centerX, centerY              cp.IntVar

	preferred   cp.BoolVar
	left, right cp.BoolVar
	vertical    cp.BoolVar
	bands       []cp.BoolVar // parallel to corridorVars.rows
}

type layoutState struct {
	model    *cp.Model
	catalog  *Catalog
	site     Site
	corridor *corridorVars
	rooms    []*roomVars
}

// Layout is a built floorplan model: variables, hard constraints, objective and
// search hints over one catalog and site.
type Layout struct {
	model    *cp.Model
	catalog  *Catalog
	site     Site
	weights  Weights
	target   *float64
	corridor *corridorVars
	rooms    []*roomVars
	terms    []ObjectiveTerm
}

// NewLayout builds the model. A non-nil target requires the realized utilization
// to reach it.
func NewLayout(catalog *Catalog, site Site, weights Weights, target *float64) (*Layout, error) {
	if err := catalog.Validate(); err != nil {
		return nil, err
	}
	if err := site.Validate(); err != nil {
		return nil, err
	}
	if target != nil && (*target < 0 || *target > 1 || math.IsNaN(*target)) {
		return nil, fmt.Errorf("%w: utilization target %v outside [0, 1]", ErrModelConstruction, *target)
	}

	m := cp.NewModel("floorplan")
	state := layoutState{
		model:   m,
		catalog: catalog,
		site:    site,
	}
	state.corridor = newCorridorVars(m, site)
	for _, room := range catalog.Rooms {
		state.rooms = append(state.rooms, newRoomVars(m, site, state.corridor, room))
	}

	// Constraints functions
	constraints := []func(state layoutState) error{
		corridorConstraints,
		roomConstraints,
		overlapConstraints,
		sideConstraints,
		doorConstraints,
		clusterConstraints,
		symmetryConstraints,
	}
	for _, constraint := range constraints {
		if err := constraint(state); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrModelConstruction, err)
		}
	}

	layout := &Layout{
		model:    m,
		catalog:  catalog,
		site:     site,
		weights:  weights,
		target:   target,
		corridor: state.corridor,
		rooms:    state.rooms,
	}
	if target != nil {
		layout.requireUtilization(*target)
	}

	layout.terms = objectiveTerms(state, weights)
	objective := cp.NewLinearExpr()
	for _, term := range layout.terms {
		objective = objective.AddExpr(term.Expr.Scale(term.Weight))
	}
	m.Maximize(objective)

	addSearchHints(state)

	if err := m.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrModelConstruction, err)
	}
	return layout, nil
}

func (l *Layout) Model() *cp.Model { return l.model }

func (l *Layout) ObjectiveTerms() []ObjectiveTerm { return slices.Clone(l.terms) }

func newCorridorVars(m *cp.Model, site Site) *corridorVars {
	c := &corridorVars{
		length: m.NewIntVar(int64(site.EntranceMinLength), int64(site.EntranceMaxLength), "entrance_length"),
		rows:   site.BandRows(),
		count:  m.NewIntVar(int64(site.MinBands), int64(site.MaxBands), "band_count"),
	}
	for _, row := range c.rows {
		c.active = append(c.active, m.NewBoolVar(fmt.Sprintf("band_%d", row)))
		c.border = append(c.border, m.NewBoolVar(fmt.Sprintf("border_%d", row)))
	}
	for row := range site.EntranceMaxLength {
		c.rowActive = append(c.rowActive, m.NewBoolVar(fmt.Sprintf("entrance_row_%d", row)))
	}

	minArea := site.CorridorArea(site.EntranceMinLength, site.MinBands)
	maxArea := site.CorridorArea(site.EntranceMaxLength, site.MaxBands)
	c.area = m.NewIntVar(int64(minArea), int64(maxArea), "corridor_area")
	return c
}

func newRoomVars(m *cp.Model, site Site, corridor *corridorVars, room RoomType) *roomVars {
	name := room.Name
	sizes := room.SizeOptions()
	r := &roomVars{
		room:  room,
		sizes: sizes,

		selector: m.NewIntVar(0, int64(len(sizes)-1), name+"_size"),
		width:    m.NewIntVar(int64(room.MinWidth), int64(room.PreferredWidth), name+"_w"),
		height:   m.NewIntVar(int64(room.MinHeight), int64(room.PreferredHeight), name+"_h"),
		area:     m.NewIntVar(int64(room.MinArea()), int64(room.PreferredArea()), name+"_area"),

		x: m.NewIntVar(0, int64(site.GridWidth-room.MinWidth), name+"_x"),
		y: m.NewIntVar(0, int64(site.GridHeight-room.MinHeight), name+"_y"),

		side:     m.NewIntVar(0, int64(doorSides-1), name+"_door_side"),
		combined: m.NewIntVar(0, int64(len(sizes))*int64(doorSides)-1, name+"_door_option"),

		doorX:   m.NewIntVar(0, int64(site.GridWidth-1), name+"_door_x"),
		doorY:   m.NewIntVar(0, int64(site.GridHeight-1), name+"_door_y"),
		centerX: m.NewIntVar(0, int64(site.GridWidth-1), name+"_center_x"),
		centerY: m.NewIntVar(0, int64(site.GridHeight-1), name+"_center_y"),

		preferred: m.NewBoolVar(name + "_preferred"),
		left:      m.NewBoolVar(name + "_left"),
		right:     m.NewBoolVar(name + "_right"),
		vertical:  m.NewBoolVar(name + "_door_entrance"),
	}
	for _, row := range corridor.rows {
		r.bands = append(r.bands, m.NewBoolVar(fmt.Sprintf("%s_door_band_%d", name, row)))
	}
	return r
}

// requireUtilization encodes roomArea / (total - corridorArea) >= target in
// integers, rounding the ratio up so the realized utilization never falls short.
func (l *Layout) requireUtilization(target float64) {
	ratio := int64(math.Ceil(target * 10000))
	roomArea := cp.NewLinearExpr()
	for _, r := range l.rooms {
		roomArea = roomArea.Add(r.area)
	}
	expr := roomArea.Scale(10000).AddTerm(l.corridor.area, ratio)
	l.model.AddGreaterOrEqual(expr, ratio*int64(l.site.TotalArea()))
}

// addSearchHints branches on the corridor first, then on rooms from the largest
// preferred area down: side, size, door corridor, door side, y, x.
func addSearchHints(state layoutState) {
	m, corridor := state.model, state.corridor

	m.AddDecisionStrategy(append([]cp.IntVar{corridor.length}, cp.Bools(corridor.active...)...), cp.SelectMax)

	rooms := slices.Clone(state.rooms)
	slices.SortStableFunc(rooms, func(a, b *roomVars) int {
		return cmp.Compare(b.room.PreferredArea(), a.room.PreferredArea())
	})
	for _, r := range rooms {
		m.AddDecisionStrategy(cp.Bools(r.left, r.right), cp.SelectMax)
		m.AddDecisionStrategy([]cp.IntVar{r.selector}, cp.SelectMax)
		m.AddDecisionStrategy(cp.Bools(append(slices.Clone(r.bands), r.vertical)...), cp.SelectMax)
		m.AddDecisionStrategy([]cp.IntVar{r.side}, cp.SelectMin)
		m.AddDecisionStrategy([]cp.IntVar{r.y}, cp.SelectMin)
		m.AddDecisionStrategy([]cp.IntVar{r.x}, cp.SelectMin)
	}
}
