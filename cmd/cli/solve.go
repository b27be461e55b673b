package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/charmbracelet/log"
	"github.com/limaJavier/floorplanning/pkg/cp"
	"github.com/limaJavier/floorplanning/pkg/model"
	"github.com/limaJavier/floorplanning/pkg/render"
	"github.com/limaJavier/floorplanning/pkg/report"
	"github.com/limaJavier/floorplanning/pkg/search"
	"github.com/spf13/cobra"
)

const (
	reportFile = "floorplan.json"
	pngFile    = "floorplan.png"
	svgFile    = "floorplan.svg"
)

type solveOpts struct {
	timeLimit   time.Duration
	threads     int
	seed        int64
	outdir      string
	precision   bool
	analysis    bool
	multiRun    int
	logProgress bool
	randomize   bool
	weights     string
	rhoLo       float64
	rhoHi       float64
	tolerance   float64
	selftest    bool
}

func newSolveCmd() *cobra.Command {
	var opts solveOpts

	cmd := &cobra.Command{
		Use:   "solve",
		Short: "Search the highest feasible utilization and export the best layout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSolve(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}

	addSearchFlags(cmd, &opts, time.Hour)
	cmd.Flags().BoolVar(&opts.precision, "precision", false, "use precision mode for the unconstrained fallback")
	cmd.Flags().IntVar(&opts.multiRun, "multi-run", 1, "number of independent runs, each with its own seed")
	cmd.Flags().BoolVar(&opts.logProgress, "log", false, "log solver progress")
	cmd.Flags().BoolVar(&opts.randomize, "randomize", false, "randomize the search")
	cmd.Flags().StringVar(&opts.weights, "weights", "", "weight override file (.json or .toml)")
	cmd.Flags().Float64Var(&opts.rhoLo, "rho-lo", 0.45, "lower end of the utilization range")
	cmd.Flags().Float64Var(&opts.rhoHi, "rho-hi", 0.65, "upper end of the utilization range")
	cmd.Flags().Float64Var(&opts.tolerance, "tolerance", 1e-4, "bisection stops once the bracket is narrower than this")
	cmd.Flags().BoolVar(&opts.selftest, "selftest", false, "solve a few fixed targets quickly instead of searching")
	return cmd
}

func newSelftestCmd() *cobra.Command {
	var opts solveOpts

	cmd := &cobra.Command{
		Use:   "selftest",
		Short: "Solve a few fixed utilization targets and validate the best layout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.selftest = true
			opts.rhoLo, opts.rhoHi, opts.tolerance = 0.45, 0.65, 1e-4
			return runSolve(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}
	addSearchFlags(cmd, &opts, 180*time.Second)
	return cmd
}

func addSearchFlags(cmd *cobra.Command, opts *solveOpts, timeLimit time.Duration) {
	cmd.Flags().DurationVar(&opts.timeLimit, "time", timeLimit, "total time budget")
	cmd.Flags().IntVar(&opts.threads, "threads", runtime.NumCPU(), "solver workers")
	cmd.Flags().Int64Var(&opts.seed, "seed", 42, "random seed")
	cmd.Flags().StringVar(&opts.outdir, "outdir", "output", "directory for exported files")
	cmd.Flags().BoolVar(&opts.analysis, "analysis", false, "print validation and group analysis")
}

func runSolve(ctx context.Context, w io.Writer, opts solveOpts) error {
	logger := loggerFromContext(ctx)

	weights := model.DefaultWeights()
	if opts.weights != "" {
		var err error
		if weights, err = model.LoadWeights(opts.weights); err != nil {
			return err
		}
		logger.Info("loaded weights", "path", opts.weights)
	}
	catalog, site := model.DefaultCatalog(), model.DefaultSite()
	planner := model.NewPlanner(cp.NewNativeEngine(cp.WithLogger(logger)), catalog, site, weights, model.WithLogger(logger))

	searchOpts := search.Options{
		TimeLimit:          opts.timeLimit,
		Threads:            opts.threads,
		Seed:               opts.seed,
		Randomize:          opts.randomize,
		LogProgress:        opts.logProgress,
		Precision:          opts.precision,
		RhoLo:              opts.rhoLo,
		RhoHi:              opts.rhoHi,
		Tolerance:          opts.tolerance,
		MinIterationBudget: search.DefaultOptions().MinIterationBudget,
		Logger:             logger,
	}

	prog := newProgress(logger)
	solution, err := solveBest(ctx, planner, searchOpts, opts)
	if err != nil {
		return err
	}
	prog.done("search finished", "objective", solution.Objective, "rho", fmt.Sprintf("%.4f", solution.Target))

	validation := planner.Verify(solution)
	rep := export(logger, opts.outdir, solution, validation, planner)

	printSummary(w, solution)
	if opts.analysis {
		printAnalysis(w, rep)
	}
	return nil
}

func solveBest(ctx context.Context, planner *model.Planner, searchOpts search.Options, opts solveOpts) (model.Solution, error) {
	if opts.selftest {
		return search.SelfTest(ctx, planner, searchOpts)
	}
	runs, err := search.RunMany(ctx, planner, searchOpts, opts.multiRun)
	if err != nil {
		return model.Solution{}, err
	}
	return search.Accept(planner, runs.Solution())
}

// export writes the report and both drawings. Failures are logged and never
// invalidate the solution.
func export(logger *log.Logger, outdir string, solution model.Solution, validation model.Validation, planner *model.Planner) report.Report {
	paths := map[string]string{
		reportFile: filepath.Join(outdir, reportFile),
		pngFile:    filepath.Join(outdir, pngFile),
		svgFile:    filepath.Join(outdir, svgFile),
	}
	rep := report.Build(solution, validation, planner.Catalog(), planner.Site(), planner.Weights(),
		report.WithArgs(os.Args),
		report.WithArtifacts(paths[pngFile], paths[svgFile]))

	if err := report.Write(paths[reportFile], rep); err != nil {
		logger.Error("cannot export report", "err", err)
	} else {
		logger.Info("exported report", "path", paths[reportFile])
	}

	if err := render.SavePNG(paths[pngFile], solution, planner.Site()); err != nil {
		logger.Error("cannot export png", "err", err)
	} else {
		logger.Info("exported png", "path", paths[pngFile])
	}
	if err := render.SaveSVG(paths[svgFile], solution, planner.Site()); err != nil {
		logger.Error("cannot export svg", "err", err)
	} else {
		logger.Info("exported svg", "path", paths[svgFile])
	}
	return rep
}
