package model

import "fmt"

// Site holds the grid, the corridor geometry and the distance thresholds the
// layout is scored with.
type Site struct {
	GridWidth  int
	GridHeight int

	EntranceX         int
	EntranceWidth     int
	EntranceMinLength int
	EntranceMaxLength int

	BandHeight     int
	MinBands       int
	MaxBands       int
	MinBandSpacing int
	BorderRows     int // bands starting at or below this row count as near the border

	DoorClusterLimit int

	DoorBonus         int // staged door bonus at very close range; half of it when close
	VeryCloseDoors    int
	CloseDoors        int
	CenterAdjacency   int
	PriorityThreshold int
	PriorityDistance  int
	CompactDistance   int
	CompactBonus      int
	BalanceTolerance  int
	BalanceBonus      int
	BandDistance      int

	BandPreference       map[Group]float64
	BandPreferenceBase   int
	BandPreferenceDecay  int
	InactiveBandDistance int

	CriticalPair [2]Group
}

func DefaultSite() Site {
	return Site{
		GridWidth:  77,
		GridHeight: 50,

		EntranceX:         55,
		EntranceWidth:     4,
		EntranceMinLength: 10,
		EntranceMaxLength: 35,

		BandHeight:     4,
		MinBands:       2,
		MaxBands:       4,
		MinBandSpacing: 8,
		BorderRows:     2,

		DoorClusterLimit: 3,

		DoorBonus:         250,
		VeryCloseDoors:    5,
		CloseDoors:        15,
		CenterAdjacency:   20,
		PriorityThreshold: 8,
		PriorityDistance:  25,
		CompactDistance:   15,
		CompactBonus:      500,
		BalanceTolerance:  3,
		BalanceBonus:      1000,
		BandDistance:      8,

		BandPreference:       map[Group]float64{Production: 1.5, Storage: 1.5, Server: 1.2},
		BandPreferenceBase:   1500,
		BandPreferenceDecay:  10,
		InactiveBandDistance: 1000,

		CriticalPair: [2]Group{Production, Storage},
	}
}

func (s Site) TotalArea() int { return s.GridWidth * s.GridHeight }

// EntranceEnd is the first column right of the entrance corridor.
func (s Site) EntranceEnd() int { return s.EntranceX + s.EntranceWidth }

// EntranceCenter is the entrance point the priority bonus measures distances from.
func (s Site) EntranceCenter() (x, y int) { return s.EntranceX + s.EntranceWidth/2, 0 }

// BandRows lists every row a band may start at.
func (s Site) BandRows() []int {
	rows := make([]int, 0, s.GridHeight-s.BandHeight+1)
	for y := 0; y <= s.GridHeight-s.BandHeight; y++ {
		rows = append(rows, y)
	}
	return rows
}

func (s Site) BandArea() int { return s.BandHeight * s.GridWidth }

// CorridorArea is the area of an entrance of the given length plus the given bands.
func (s Site) CorridorArea(length, bands int) int {
	return s.EntranceWidth*length + bands*s.BandArea()
}

func (s Site) Validate() error {
	switch {
	case s.GridWidth <= 0 || s.GridHeight <= 0:
		return fmt.Errorf("%w: grid %dx%d is empty", ErrModelConstruction, s.GridWidth, s.GridHeight)
	case s.EntranceX < 0 || s.EntranceEnd() > s.GridWidth || s.EntranceWidth <= 0:
		return fmt.Errorf("%w: entrance [%d,%d) outside the grid", ErrModelConstruction, s.EntranceX, s.EntranceEnd())
	case s.EntranceMinLength < 1 || s.EntranceMinLength > s.EntranceMaxLength || s.EntranceMaxLength > s.GridHeight:
		return fmt.Errorf("%w: entrance length range [%d,%d] is invalid", ErrModelConstruction, s.EntranceMinLength, s.EntranceMaxLength)
	case s.BandHeight <= 0 || s.BandHeight > s.GridHeight:
		return fmt.Errorf("%w: band height %d is invalid", ErrModelConstruction, s.BandHeight)
	case s.MinBands < 0 || s.MinBands > s.MaxBands:
		return fmt.Errorf("%w: band count range [%d,%d] is invalid", ErrModelConstruction, s.MinBands, s.MaxBands)
	case s.DoorClusterLimit < 1:
		return fmt.Errorf("%w: door cluster limit %d is below one", ErrModelConstruction, s.DoorClusterLimit)
	}
	return nil
}
