package report

import (
	"cmp"
	"errors"
	"math"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/limaJavier/floorplanning/pkg/model"
	"github.com/samber/lo"
)

var ErrExport = errors.New("export failed")

const (
	Generator = "floorplanning"
	Version   = "1.0"

	topPairs = 20
)

type Option func(*builder)

type builder struct {
	now       func() time.Time
	runID     string
	args      []string
	artifacts []string
}

func WithArgs(args []string) Option         { return func(b *builder) { b.args = args } }
func WithRunID(id string) Option            { return func(b *builder) { b.runID = id } }
func WithClock(now func() time.Time) Option { return func(b *builder) { b.now = now } }

// WithArtifacts records the paths of files exported next to the report.
func WithArtifacts(paths ...string) Option {
	return func(b *builder) { b.artifacts = paths }
}

type Report struct {
	Metadata   Metadata         `json:"metadata"`
	Outcome    Outcome          `json:"solution"`
	Layout     Layout           `json:"layout"`
	Metrics    Metrics          `json:"metrics"`
	Weights    map[string]int64 `json:"optimization_weights"`
	Thresholds Thresholds       `json:"thresholds"`
	Artifacts  []string         `json:"artifacts,omitempty"`
}

type Metadata struct {
	Generator  string                 `json:"generator"`
	Version    string                 `json:"version"`
	Timestamp  time.Time              `json:"timestamp"`
	RunID      string                 `json:"run_id"`
	Grid       Grid                   `json:"grid_size"`
	Parameters model.SolverParameters `json:"solver_parameters"`
	Runtime    model.RuntimeInfo      `json:"runtime"`
	Args       []string               `json:"argv,omitempty"`
}

type Grid struct {
	Width     int `json:"width"`
	Height    int `json:"height"`
	TotalArea int `json:"total_area"`
}

type Outcome struct {
	Status          string           `json:"status"`
	Objective       int64            `json:"objective"`
	ComputationTime float64          `json:"computation_time"`
	Target          float64          `json:"target_rho"`
	Constrained     bool             `json:"constrained"`
	Validation      map[string]bool  `json:"validation"`
	Valid           bool             `json:"valid"`
	Terms           map[string]int64 `json:"objective_terms,omitempty"`
}

type Layout struct {
	Entrance Entrance           `json:"entrance"`
	Bands    Bands              `json:"horizontal_bands"`
	Rooms    []model.PlacedRoom `json:"rooms"`
}

type Entrance struct {
	XRange    [2]int `json:"x_range"`
	Length    int    `json:"length"`
	MaxLength int    `json:"max_length"`
	Area      int    `json:"area"`
}

type Bands struct {
	Count     int   `json:"count"`
	Positions []int `json:"positions"`
	Area      int   `json:"area"`
}

type Metrics struct {
	Space     SpaceUtilization             `json:"space_utilization"`
	Adjacency Adjacency                    `json:"adjacency"`
	Groups    map[model.Group]GroupMetrics `json:"group_analysis"`
}

type SpaceUtilization struct {
	TargetRho         float64 `json:"target_rho"`
	ActualUtilization float64 `json:"actual_utilization"`
	RoomArea          int     `json:"room_area"`
	CorridorArea      int     `json:"corridor_area"`
	FreeArea          int     `json:"free_area"`
	EfficiencyScore   float64 `json:"efficiency_score"`
}

type Adjacency struct {
	TotalScore   float64     `json:"total_score"`
	AverageScore float64     `json:"average_score"`
	Pairs        int         `json:"pairs"`
	Top          []PairScore `json:"details_top20"`
}

// PairScore is the door distance score of two rooms whose groups are related.
type PairScore struct {
	Rooms    [2]string      `json:"rooms"`
	Groups   [2]model.Group `json:"groups"`
	Weight   int            `json:"weight"`
	Distance int            `json:"distance"`
	Score    float64        `json:"score"`
}

type GroupMetrics struct {
	Rooms          []string   `json:"rooms"`
	TotalArea      int        `json:"total_area"`
	PreferredSizes int        `json:"preferred_sizes"`
	AvgPriority    float64    `json:"avg_priority"`
	CenterOfMass   [2]float64 `json:"center_of_mass"`
	PreferredRatio float64    `json:"preferred_size_ratio"`
}

type Thresholds struct {
	VeryCloseDoors    int `json:"very_close_doors"`
	CloseDoors        int `json:"close_doors"`
	CenterAdjacency   int `json:"center_adjacency"`
	PriorityThreshold int `json:"priority_threshold"`
	PriorityDistance  int `json:"priority_distance"`
	CompactDistance   int `json:"compact_distance"`
	BalanceTolerance  int `json:"balance_tolerance"`
	BandDistance      int `json:"band_distance"`
	DoorClusterLimit  int `json:"door_cluster_limit"`
	DoorBonus         int `json:"door_bonus"`
}

// Build assembles the export document of a solution. It only reads its inputs.
func Build(solution model.Solution, validation model.Validation, catalog *model.Catalog, site model.Site, weights model.Weights, opts ...Option) Report {
	b := builder{now: time.Now}
	for _, opt := range opts {
		opt(&b)
	}
	if b.runID == "" {
		b.runID = uuid.NewString()
	}

	return Report{
		Metadata: Metadata{
			Generator:  Generator,
			Version:    Version,
			Timestamp:  b.now(),
			RunID:      b.runID,
			Grid:       Grid{Width: site.GridWidth, Height: site.GridHeight, TotalArea: site.TotalArea()},
			Parameters: solution.Parameters,
			Runtime:    solution.Runtime,
			Args:       b.args,
		},
		Outcome: Outcome{
			Status:          solution.Status.String(),
			Objective:       solution.Objective,
			ComputationTime: round(solution.SolveTime.Seconds(), 2),
			Target:          solution.Target,
			Constrained:     solution.Constrained,
			Validation:      validation.AsMap(),
			Valid:           validation.AllValid,
			Terms:           solution.Terms,
		},
		Layout: Layout{
			Entrance: Entrance{
				XRange:    [2]int{site.EntranceX, site.EntranceEnd()},
				Length:    solution.EntranceLength,
				MaxLength: site.EntranceMaxLength,
				Area:      site.EntranceWidth * solution.EntranceLength,
			},
			Bands: Bands{
				Count:     len(solution.Bands),
				Positions: solution.Bands,
				Area:      site.BandArea() * len(solution.Bands),
			},
			Rooms: solution.Rooms,
		},
		Metrics: Metrics{
			Space: SpaceUtilization{
				TargetRho:         solution.Target,
				ActualUtilization: solution.Utilization,
				RoomArea:          solution.RoomArea,
				CorridorArea:      solution.CorridorArea,
				FreeArea:          site.TotalArea() - solution.CorridorArea,
				EfficiencyScore:   solution.PreferredRatio,
			},
			Adjacency: adjacency(solution.Rooms, catalog, site),
			Groups:    groups(solution.Rooms),
		},
		Weights: weights.AsMap(),
		Thresholds: Thresholds{
			VeryCloseDoors:    site.VeryCloseDoors,
			CloseDoors:        site.CloseDoors,
			CenterAdjacency:   site.CenterAdjacency,
			PriorityThreshold: site.PriorityThreshold,
			PriorityDistance:  site.PriorityDistance,
			CompactDistance:   site.CompactDistance,
			BalanceTolerance:  site.BalanceTolerance,
			BandDistance:      site.BandDistance,
			DoorClusterLimit:  site.DoorClusterLimit,
			DoorBonus:         site.DoorBonus,
		},
		Artifacts: b.artifacts,
	}
}

// PairScoreFor scores a door distance: full marks when very close, half when
// close, then a linear decay that reaches zero at the door bonus distance.
func PairScoreFor(weight, distance int, site model.Site) float64 {
	w := float64(weight)
	switch {
	case distance <= site.VeryCloseDoors:
		return w * 100
	case distance <= site.CloseDoors:
		return w * 50
	}
	k := float64(site.DoorBonus)
	return w * max(0, (k-float64(distance))/k*100)
}

func adjacency(rooms []model.PlacedRoom, catalog *model.Catalog, site model.Site) Adjacency {
	var pairs []PairScore
	for i, a := range rooms {
		for _, b := range rooms[i+1:] {
			weight := catalog.Weight(a.Group, b.Group)
			if weight <= 0 {
				continue
			}
			distance := abs(a.Door.X-b.Door.X) + abs(a.Door.Y-b.Door.Y)
			pairs = append(pairs, PairScore{
				Rooms:    [2]string{a.Name, b.Name},
				Groups:   [2]model.Group{a.Group, b.Group},
				Weight:   weight,
				Distance: distance,
				Score:    round(PairScoreFor(weight, distance, site), 1),
			})
		}
	}

	out := Adjacency{Pairs: len(pairs), Top: []PairScore{}}
	if len(pairs) == 0 {
		return out
	}
	total := lo.SumBy(pairs, func(pair PairScore) float64 { return pair.Score })
	out.TotalScore = round(total, 1)
	out.AverageScore = round(total/float64(len(pairs)), 1)

	slices.SortStableFunc(pairs, func(a, b PairScore) int { return cmp.Compare(b.Score, a.Score) })
	out.Top = pairs[:min(topPairs, len(pairs))]
	return out
}

func groups(rooms []model.PlacedRoom) map[model.Group]GroupMetrics {
	return lo.MapValues(lo.GroupBy(rooms, func(room model.PlacedRoom) model.Group { return room.Group }),
		func(members []model.PlacedRoom, _ model.Group) GroupMetrics {
			n := float64(len(members))
			preferred := lo.CountBy(members, func(room model.PlacedRoom) bool { return room.Preferred })
			return GroupMetrics{
				Rooms:          lo.Map(members, func(room model.PlacedRoom, _ int) string { return room.Name }),
				TotalArea:      lo.SumBy(members, func(room model.PlacedRoom) int { return room.Area() }),
				PreferredSizes: preferred,
				AvgPriority:    float64(lo.SumBy(members, func(room model.PlacedRoom) int { return room.Priority })) / n,
				CenterOfMass: [2]float64{
					float64(lo.SumBy(members, func(room model.PlacedRoom) int { return room.Center.X })) / n,
					float64(lo.SumBy(members, func(room model.PlacedRoom) int { return room.Center.Y })) / n,
				},
				PreferredRatio: float64(preferred) / n,
			}
		})
}

func round(value float64, digits int) float64 {
	scale := math.Pow(10, float64(digits))
	return math.Round(value*scale) / scale
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
