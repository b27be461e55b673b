package render

import (
	"errors"
	"fmt"

	"github.com/limaJavier/floorplanning/pkg/model"
	"github.com/samber/lo"
)

var ErrRender = errors.New("render failed")

const (
	defaultScale = 12.0
	margin       = 16.0
	titleHeight  = 32.0
	statsHeight  = 64.0

	priorityMark = 8
	fallbackFill = "#CCCCCC"
)

var groupColors = map[model.Group]string{
	model.Dev:        "#FF6B6B",
	model.Studio:     "#4ECDC4",
	model.QA:         "#45B7D1",
	model.Admin:      "#96CEB4",
	model.Marketing:  "#FFEAA7",
	model.Support:    "#DDA0DD",
	model.Console:    "#98D8C8",
	model.Server:     "#F7DC6F",
	model.Production: "#BB8FCE",
	model.Storage:    "#85C1E9",
	model.Research:   "#F8C471",
	model.Training:   "#82E0AA",
	model.Facilities: "#D5DBDB",
}

// Option configures both the PNG and the SVG renderer.
type Option func(*renderer)

type renderer struct {
	scale  float64
	labels bool
	grid   bool
}

// WithScale sets the size of one grid cell in pixels.
func WithScale(s float64) Option  { return func(r *renderer) { r.scale = s } }
func WithLabels(show bool) Option { return func(r *renderer) { r.labels = show } }
func WithGrid(show bool) Option   { return func(r *renderer) { r.grid = show } }

func newRenderer(opts ...Option) renderer {
	r := renderer{scale: defaultScale, labels: true, grid: true}
	for _, opt := range opts {
		opt(&r)
	}
	if r.scale <= 0 {
		r.scale = defaultScale
	}
	return r
}

type box struct {
	X, Y, W, H float64
	Fill       string
	Stroke     string
	Opacity    float64
	Lines      []string
	Bold       bool
}

type dot struct {
	X, Y float64
}

type segment struct {
	X1, Y1, X2, Y2 float64
}

// scene is the pixel-space drawing shared by every output format. Grid rows grow
// upwards, so y is flipped on the way in.
type scene struct {
	Width, Height float64
	Title         string
	Grid          []segment
	Corridors     []box
	Links         []segment
	Rooms         []box
	Doors         []dot
	Centers       []dot
	Stats         []string
}

func buildScene(solution model.Solution, site model.Site, r renderer) scene {
	s := r.scale
	plotW, plotH := float64(site.GridWidth)*s, float64(site.GridHeight)*s
	originY := titleHeight + plotH

	toBox := func(x, y, w, h int) (float64, float64, float64, float64) {
		return margin + float64(x)*s, originY - float64(y+h)*s, float64(w) * s, float64(h) * s
	}
	toPoint := func(p model.Point) dot {
		return dot{X: margin + (float64(p.X)+0.5)*s, Y: originY - (float64(p.Y)+0.5)*s}
	}

	sc := scene{
		Width:  plotW + 2*margin,
		Height: originY + statsHeight,
		Title:  fmt.Sprintf("Floorplan (rho=%.4f, util=%.2f%%)", solution.Target, solution.Utilization*100),
	}

	if r.grid {
		for x := 0; x <= site.GridWidth; x++ {
			px := margin + float64(x)*s
			sc.Grid = append(sc.Grid, segment{px, titleHeight, px, originY})
		}
		for y := 0; y <= site.GridHeight; y++ {
			py := originY - float64(y)*s
			sc.Grid = append(sc.Grid, segment{margin, py, margin + plotW, py})
		}
	}

	x, y, w, h := toBox(site.EntranceX, 0, site.EntranceWidth, solution.EntranceLength)
	sc.Corridors = append(sc.Corridors, box{X: x, Y: y, W: w, H: h, Fill: "#AACCFF", Stroke: "#3366CC", Opacity: 0.8, Lines: []string{"ENTRANCE"}, Bold: true})
	for i, row := range solution.Bands {
		x, y, w, h := toBox(0, row, site.GridWidth, site.BandHeight)
		sc.Corridors = append(sc.Corridors, box{X: x, Y: y, W: w, H: h, Fill: "#DDEEFF", Stroke: "#6699CC", Opacity: 0.7, Lines: []string{fmt.Sprintf("BAND %d", i+1)}})
		if row < solution.EntranceLength {
			py := originY - float64(row)*s
			sc.Links = append(sc.Links, segment{margin, py, margin + float64(site.EntranceX)*s, py})
		}
	}

	for _, room := range solution.Rooms {
		x, y, w, h := toBox(room.X, room.Y, room.Width, room.Height)
		fill, ok := groupColors[room.Group]
		if !ok {
			fill = fallbackFill
		}
		label := fmt.Sprintf("%dx%d", room.Width, room.Height)
		if room.Priority >= priorityMark {
			label += " *"
		}
		sc.Rooms = append(sc.Rooms, box{
			X: x, Y: y, W: w, H: h,
			Fill:    fill,
			Stroke:  "#333333",
			Opacity: lo.Ternary(room.Preferred, 0.85, 0.6),
			Lines:   []string{room.Name, label},
			Bold:    room.Priority >= priorityMark,
		})
		sc.Doors = append(sc.Doors, toPoint(room.Door))
		if room.Priority >= priorityMark {
			sc.Centers = append(sc.Centers, toPoint(room.Center))
		}
	}

	if !r.labels {
		for i := range sc.Corridors {
			sc.Corridors[i].Lines = nil
		}
		for i := range sc.Rooms {
			sc.Rooms[i].Lines = nil
		}
	}

	total := float64(site.TotalArea())
	sc.Stats = []string{
		fmt.Sprintf("Room area: %d / %d (%.1f%%)", solution.RoomArea, site.TotalArea(), float64(solution.RoomArea)/total*100),
		fmt.Sprintf("Corridor area: %d (%.1f%%)", solution.CorridorArea, float64(solution.CorridorArea)/total*100),
		fmt.Sprintf("Status: %s  Objective: %d  Time: %.1fs", solution.Status, solution.Objective, solution.SolveTime.Seconds()),
	}
	return sc
}
