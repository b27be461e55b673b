package main

import (
	"fmt"

	"github.com/limaJavier/floorplanning/pkg/model"
	"github.com/limaJavier/floorplanning/pkg/report"
	"github.com/limaJavier/floorplanning/pkg/search"
	"github.com/spf13/cobra"
)

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <report.json>",
		Short: "Re-check an exported layout against the hard rules",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := loggerFromContext(cmd.Context())

			rep, err := report.Read(args[0])
			if err != nil {
				return err
			}
			solution, err := rep.Solution()
			if err != nil {
				return fmt.Errorf("cannot restore solution from %s: %w", args[0], err)
			}

			validation := model.Validate(solution, model.DefaultCatalog(), model.DefaultSite())
			printValidation(cmd.OutOrStdout(), validation.AsMap())
			if err := validation.Err(); err != nil {
				return fmt.Errorf("%w: %w", search.ErrValidationFailure, err)
			}
			logger.Info("layout is valid", "path", args[0], "rooms", len(solution.Rooms))
			return nil
		},
	}
}
