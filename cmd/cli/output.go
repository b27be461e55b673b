package main

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/limaJavier/floorplanning/pkg/model"
	"github.com/limaJavier/floorplanning/pkg/report"
	"github.com/samber/lo"
)

func newTable(headers ...string) *table.Table {
	return table.New().Border(lipgloss.NormalBorder()).Headers(headers...)
}

func printSummary(w io.Writer, solution model.Solution) {
	fmt.Fprintf(w, "status:        %s\n", solution.Status)
	fmt.Fprintf(w, "objective:     %d\n", solution.Objective)
	fmt.Fprintf(w, "rho:           %.4f\n", solution.Target)
	fmt.Fprintf(w, "utilization:   %.2f%%\n", solution.Utilization*100)
	fmt.Fprintf(w, "room area:     %d\n", solution.RoomArea)
	fmt.Fprintf(w, "corridor area: %d (entrance %d, %d bands)\n", solution.CorridorArea, solution.EntranceLength, len(solution.Bands))
	fmt.Fprintf(w, "efficiency:    %.3f\n", solution.PreferredRatio)
}

func printValidation(w io.Writer, checks map[string]bool) {
	t := newTable("CHECK", "RESULT")
	for _, name := range slices.Sorted(maps.Keys(checks)) {
		t.Row(name, lo.Ternary(checks[name], "ok", "FAILED"))
	}
	fmt.Fprintln(w, t.String())
}

func printAnalysis(w io.Writer, rep report.Report) {
	printValidation(w, rep.Outcome.Validation)

	groups := newTable("GROUP", "ROOMS", "AREA", "PREFERRED")
	for _, line := range rep.GroupSummary() {
		groups.Row(string(line.Group), strconv.Itoa(line.Rooms), strconv.Itoa(line.Area), fmt.Sprintf("%.0f%%", line.PreferredRatio*100))
	}
	fmt.Fprintln(w, groups.String())

	adjacency := rep.Metrics.Adjacency
	fmt.Fprintf(w, "adjacency score: %.1f total, %.1f average over %d pairs\n", adjacency.TotalScore, adjacency.AverageScore, adjacency.Pairs)
	pairs := newTable("ROOMS", "WEIGHT", "DISTANCE", "SCORE")
	for _, pair := range adjacency.Top {
		pairs.Row(pair.Rooms[0]+" / "+pair.Rooms[1], strconv.Itoa(pair.Weight), strconv.Itoa(pair.Distance), fmt.Sprintf("%.1f", pair.Score))
	}
	fmt.Fprintln(w, pairs.String())
}
