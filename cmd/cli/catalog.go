package main

import (
	"fmt"
	"strconv"

	"github.com/limaJavier/floorplanning/pkg/model"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func newCatalogCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "catalog",
		Short: "List the room catalog with its size options",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog := model.DefaultCatalog()
			t := newTable("ROOM", "GROUP", "PREFERRED", "MINIMUM", "STEP", "OPTIONS", "PRIORITY", "EFFICIENCY")
			for _, room := range catalog.Rooms {
				t.Row(
					room.Name,
					string(room.Group),
					size(room.PreferredWidth, room.PreferredHeight),
					size(room.MinWidth, room.MinHeight),
					size(room.StepWidth, room.StepHeight),
					strconv.Itoa(len(room.SizeOptions())),
					strconv.Itoa(room.Priority),
					fmt.Sprintf("%.1f", room.Efficiency),
				)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, t.String())
			fmt.Fprintf(out, "%d rooms in %d groups, preferred area %d\n", len(catalog.Rooms), len(catalog.Groups()),
				lo.SumBy(catalog.Rooms, func(room model.RoomType) int { return room.PreferredArea() }))
			return nil
		},
	}
}

func size(w, h int) string { return fmt.Sprintf("%dx%d", w, h) }
