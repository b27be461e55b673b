package model

import (
	"fmt"

	"github.com/samber/lo"
)

type Group string

const (
	Dev        Group = "Dev"
	Studio     Group = "Studio"
	QA         Group = "QA"
	Admin      Group = "Admin"
	Marketing  Group = "Marketing"
	Support    Group = "Support"
	Console    Group = "Console"
	Server     Group = "Server"
	Production Group = "Production"
	Storage    Group = "Storage"
	Research   Group = "Research"
	Training   Group = "Training"
	Facilities Group = "Facilities"
)

// RoomType is an immutable catalog entry. Rooms sharing a DuplicateGroup are
// structurally identical and interchangeable.
type RoomType struct {
	Name            string
	Group           Group
	PreferredWidth  int
	PreferredHeight int
	MinWidth        int
	MinHeight       int
	StepWidth       int
	StepHeight      int
	Priority        int
	Efficiency      float64
	DuplicateGroup  string
}

type Size struct {
	Width  int
	Height int
}

func (s Size) Area() int { return s.Width * s.Height }

// SizeOptions enumerates every (width, height) stepping from the minimum to the
// preferred dimension, both inclusive; width is the outer loop.
func (r RoomType) SizeOptions() []Size {
	var sizes []Size
	for w := r.MinWidth; w <= r.PreferredWidth; w += r.StepWidth {
		for h := r.MinHeight; h <= r.PreferredHeight; h += r.StepHeight {
			sizes = append(sizes, Size{w, h})
		}
	}
	return sizes
}

// PreferredIndex is the position of the preferred size among SizeOptions, or -1
// when the steps never reach it.
func (r RoomType) PreferredIndex() int {
	preferred := Size{r.PreferredWidth, r.PreferredHeight}
	_, index, ok := lo.FindIndexOf(r.SizeOptions(), func(size Size) bool {
		return size == preferred
	})
	if !ok {
		return -1
	}
	return index
}

func (r RoomType) PreferredArea() int { return r.PreferredWidth * r.PreferredHeight }

func (r RoomType) MinArea() int { return r.MinWidth * r.MinHeight }

type DoorSide int

const (
	DoorLeft DoorSide = iota
	DoorRight
	DoorBottom
	DoorTop
	DoorBottomLeft
	DoorBottomRight
	DoorTopLeft
	DoorTopRight
	doorSides
)

// DoorOffsets returns the door cell offsets, relative to the room origin, of the
// four side midpoints and the four corners.
func DoorOffsets(size Size) (dx, dy [doorSides]int) {
	w, h := size.Width, size.Height
	midW, midH := w/2, h/2
	dx = [doorSides]int{0, w - 1, midW, midW, 0, w - 1, 0, w - 1}
	dy = [doorSides]int{midH, midH, 0, h - 1, 0, 0, h - 1, h - 1}
	return dx, dy
}

// Catalog is the frozen room table and the directed group adjacency matrix.
// A Catalog is shared read-only; use Subset to derive a reduced one.
type Catalog struct {
	Rooms     []RoomType
	Adjacency map[Group]map[Group]int
}

// Weight is the combined adjacency of both directions.
func (c *Catalog) Weight(a, b Group) int {
	return c.Adjacency[a][b] + c.Adjacency[b][a]
}

// Groups lists groups in order of first appearance.
func (c *Catalog) Groups() []Group {
	return lo.Uniq(lo.Map(c.Rooms, func(room RoomType, _ int) Group {
		return room.Group
	}))
}

// GroupMembers returns the room indices of a group, in catalog order.
func (c *Catalog) GroupMembers(group Group) []int {
	var members []int
	for i, room := range c.Rooms {
		if room.Group == group {
			members = append(members, i)
		}
	}
	return members
}

// DuplicateSets returns the room indices of every duplicate group, ordered by the
// first member's position in the catalog.
func (c *Catalog) DuplicateSets() [][]int {
	var order []string
	sets := make(map[string][]int)
	for i, room := range c.Rooms {
		if room.DuplicateGroup == "" {
			continue
		}
		if _, ok := sets[room.DuplicateGroup]; !ok {
			order = append(order, room.DuplicateGroup)
		}
		sets[room.DuplicateGroup] = append(sets[room.DuplicateGroup], i)
	}
	return lo.Map(order, func(id string, _ int) []int { return sets[id] })
}

// Subset returns a new catalog holding only the named rooms, in catalog order.
// The adjacency matrix is shared.
func (c *Catalog) Subset(names ...string) (*Catalog, error) {
	rooms := lo.Filter(c.Rooms, func(room RoomType, _ int) bool {
		return lo.Contains(names, room.Name)
	})
	if len(rooms) != len(lo.Uniq(names)) {
		missing, _ := lo.Difference(names, lo.Map(rooms, func(room RoomType, _ int) string { return room.Name }))
		return nil, fmt.Errorf("%w: unknown rooms %v", ErrModelConstruction, missing)
	}

	// A duplicate group reduced to one member no longer needs symmetry breaking.
	counts := lo.CountValuesBy(rooms, func(room RoomType) string { return room.DuplicateGroup })
	for i := range rooms {
		if counts[rooms[i].DuplicateGroup] < 2 {
			rooms[i].DuplicateGroup = ""
		}
	}
	return &Catalog{Rooms: rooms, Adjacency: c.Adjacency}, nil
}

func (c *Catalog) Validate() error {
	if len(c.Rooms) == 0 {
		return fmt.Errorf("%w: empty room catalog", ErrModelConstruction)
	}

	names := make(map[string]bool)
	for _, room := range c.Rooms {
		if names[room.Name] {
			return fmt.Errorf("%w: duplicate room name %q", ErrModelConstruction, room.Name)
		}
		names[room.Name] = true

		if room.MinWidth <= 0 || room.MinHeight <= 0 || room.StepWidth <= 0 || room.StepHeight <= 0 {
			return fmt.Errorf("%w: room %q has non-positive dimensions or steps", ErrModelConstruction, room.Name)
		}
		if room.PreferredWidth < room.MinWidth || room.PreferredHeight < room.MinHeight {
			return fmt.Errorf("%w: room %q prefers a size below its minimum", ErrModelConstruction, room.Name)
		}
		if room.Priority < 1 || room.Priority > 10 {
			return fmt.Errorf("%w: room %q has priority %d outside 1..10", ErrModelConstruction, room.Name, room.Priority)
		}
	}

	for _, set := range c.DuplicateSets() {
		if len(set) < 2 {
			return fmt.Errorf("%w: duplicate group of %q has a single member", ErrModelConstruction, c.Rooms[set[0]].Name)
		}
		first := c.Rooms[set[0]]
		for _, i := range set[1:] {
			other := c.Rooms[i]
			other.Name = first.Name
			if other != first {
				return fmt.Errorf("%w: room %q differs from its duplicate %q", ErrModelConstruction, c.Rooms[i].Name, first.Name)
			}
		}
	}

	groups := c.Groups()
	known := func(g Group) bool { return knownGroups[g] || lo.Contains(groups, g) }
	for from, row := range c.Adjacency {
		for to, weight := range row {
			if weight < 0 {
				return fmt.Errorf("%w: negative adjacency %s->%s", ErrModelConstruction, from, to)
			}
			if !known(from) || !known(to) {
				return fmt.Errorf("%w: adjacency %s->%s names an unknown group", ErrModelConstruction, from, to)
			}
		}
	}
	return nil
}

var knownGroups = lo.Associate(
	[]Group{Dev, Studio, QA, Admin, Marketing, Support, Console, Server, Production, Storage, Research, Training, Facilities},
	func(g Group) (Group, bool) { return g, true },
)

var defaultCatalog = &Catalog{
	Rooms: []RoomType{
		{"Dev", Dev, 8, 8, 6, 7, 2, 1, 10, 1.5, ""},
		{"Graphics", Studio, 8, 6, 6, 6, 2, 1, 9, 1.3, ""},
		{"Sound", Studio, 8, 7, 6, 6, 2, 1, 9, 1.3, ""},
		{"MoCap", Studio, 16, 8, 12, 8, 4, 1, 8, 1.2, ""},
		{"QA", QA, 8, 8, 6, 6, 2, 1, 9, 1.4, ""},
		{"Research", Research, 8, 6, 6, 6, 2, 1, 8, 1.1, ""},
		{"Head Office", Admin, 6, 6, 6, 6, 1, 1, 9, 1.3, ""},
		{"Marketing", Marketing, 10, 6, 6, 6, 1, 1, 7, 1.1, ""},
		{"Support1", Support, 10, 8, 8, 6, 1, 1, 6, 1.0, "Support"},
		{"Support2", Support, 10, 8, 8, 6, 1, 1, 6, 1.0, "Support"},
		{"Console", Console, 10, 8, 10, 8, 1, 1, 7, 1.1, ""},
		{"Server", Server, 10, 10, 8, 8, 1, 1, 8, 1.2, ""},
		{"Prod1", Production, 12, 10, 11, 10, 1, 1, 8, 1.3, "Prod"},
		{"Prod2", Production, 12, 10, 11, 10, 1, 1, 8, 1.3, "Prod"},
		{"Storeroom", Storage, 11, 10, 11, 8, 1, 1, 9, 1.4, ""},
		{"Training", Training, 11, 8, 11, 6, 1, 1, 6, 1.1, ""},
		{"Toilet1", Facilities, 6, 4, 3, 3, 1, 1, 5, 0.8, "Toilet"},
		{"Toilet2", Facilities, 6, 4, 3, 3, 1, 1, 5, 0.8, "Toilet"},
		{"Staff1", Facilities, 8, 8, 6, 6, 1, 1, 6, 1.0, "Staff"},
		{"Staff2", Facilities, 8, 8, 6, 6, 1, 1, 6, 1.0, "Staff"},
	},
	Adjacency: map[Group]map[Group]int{
		Production: {Storage: 120, Marketing: 60, Admin: 50, QA: 40},
		Storage:    {Production: 120, Marketing: 40},
		Dev:        {Studio: 90, QA: 90, Research: 70, Admin: 40},
		Studio:     {Dev: 90, QA: 70, Research: 30},
		QA:         {Dev: 90, Studio: 70, Support: 50, Production: 30},
		Admin:      {Marketing: 80, Support: 80, Production: 50, Console: 60, Dev: 40},
		Marketing:  {Admin: 80, Production: 60, Console: 40},
		Support:    {Admin: 80, QA: 50, Server: 60, Dev: 30},
		Server:     {Support: 60, Console: 40},
		Research:   {Dev: 70, Studio: 30, Admin: 30},
		Console:    {Admin: 60, Dev: 50, Marketing: 40, Server: 40},
		Training:   {Dev: 50, Admin: 50, Studio: 40, Support: 30},
		Facilities: {Dev: 60, Production: 60, Support: 60, Admin: 60, Studio: 40},
	},
}

// DefaultCatalog returns the shared studio catalog. Callers must not modify it.
func DefaultCatalog() *Catalog {
	return defaultCatalog
}
