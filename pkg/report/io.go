package report

import (
	"cmp"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/limaJavier/floorplanning/pkg/cp"
	"github.com/limaJavier/floorplanning/pkg/model"
	"github.com/samber/lo"
)

// Write stores the report as indented JSON, creating parent directories.
func Write(path string, report Report) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encode %s: %w", ErrExport, path, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("%w: %w", ErrExport, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("%w: %w", ErrExport, err)
	}
	return nil
}

func Read(path string) (Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Report{}, fmt.Errorf("%w: %w", ErrExport, err)
	}
	var report Report
	if err := json.Unmarshal(data, &report); err != nil {
		return Report{}, fmt.Errorf("%w: decode %s: %w", ErrExport, path, err)
	}
	return report, nil
}

// Solution rebuilds the solution snapshot so that it can be validated again.
func (r Report) Solution() (model.Solution, error) {
	status, err := cp.ParseStatus(r.Outcome.Status)
	if err != nil {
		return model.Solution{}, err
	}
	return model.Solution{
		Status:         status,
		Objective:      r.Outcome.Objective,
		Target:         r.Outcome.Target,
		Constrained:    r.Outcome.Constrained,
		EntranceLength: r.Layout.Entrance.Length,
		Bands:          r.Layout.Bands.Positions,
		Rooms:          r.Layout.Rooms,
		RoomArea:       r.Metrics.Space.RoomArea,
		CorridorArea:   r.Metrics.Space.CorridorArea,
		Utilization:    r.Metrics.Space.ActualUtilization,
		SolveTime:      time.Duration(r.Outcome.ComputationTime * float64(time.Second)),
		PreferredRatio: r.Metrics.Space.EfficiencyScore,
		Terms:          r.Outcome.Terms,
		Parameters:     r.Metadata.Parameters,
		Runtime:        r.Metadata.Runtime,
	}, nil
}

type GroupLine struct {
	Group          model.Group
	Rooms          int
	Area           int
	PreferredRatio float64
}

// GroupSummary lists the group analysis sorted by group name.
func (r Report) GroupSummary() []GroupLine {
	lines := lo.MapToSlice(r.Metrics.Groups, func(group model.Group, metrics GroupMetrics) GroupLine {
		return GroupLine{
			Group:          group,
			Rooms:          len(metrics.Rooms),
			Area:           metrics.TotalArea,
			PreferredRatio: metrics.PreferredRatio,
		}
	})
	slices.SortFunc(lines, func(a, b GroupLine) int { return cmp.Compare(a.Group, b.Group) })
	return lines
}
