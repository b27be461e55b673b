package model

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/limaJavier/floorplanning/pkg/cp"
)

type PlanOptions struct {
	TimeLimit   time.Duration // zero means unbounded
	Threads     int
	Seed        int64
	Randomize   bool
	LogProgress bool
	Precision   bool
	Target      *float64 // minimum utilization; nil leaves it free
}

// Parameters translates the options into engine parameters. Precision mode
// probes deeper and runs a diversified portfolio with neighborhood search.
func (o PlanOptions) Parameters() cp.Parameters {
	params := cp.DefaultParameters()
	params.MaxTime = o.TimeLimit
	params.Workers = max(o.Threads, 1)
	params.Seed = o.Seed
	params.Randomize = o.Randomize
	params.LogProgress = o.LogProgress
	if o.Precision {
		params.ProbingLevel = 3
		params.LinearizationLevel = 2
		params.SymmetryLevel = 2
		params.Portfolio = true
		params.Cuts = true
	}
	return params
}

type PlannerOption func(*Planner)

func WithLogger(logger *log.Logger) PlannerOption {
	return func(p *Planner) { p.logger = logger }
}

// Planner builds a fresh layout per call and solves it with its engine.
type Planner struct {
	engine  cp.Engine
	catalog *Catalog
	site    Site
	weights Weights
	logger  *log.Logger
}

func NewPlanner(engine cp.Engine, catalog *Catalog, site Site, weights Weights, opts ...PlannerOption) *Planner {
	p := &Planner{
		engine:  engine,
		catalog: catalog,
		site:    site,
		weights: weights,
		logger:  log.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Planner) Catalog() *Catalog { return p.catalog }
func (p *Planner) Site() Site        { return p.site }
func (p *Planner) Weights() Weights  { return p.weights }

// Plan solves once. Infeasible and inconclusive outcomes are not errors: they
// come back as a Solution without geometry.
func (p *Planner) Plan(ctx context.Context, opts PlanOptions) (Solution, error) {
	layout, err := NewLayout(p.catalog, p.site, p.weights, opts.Target)
	if err != nil {
		return Solution{}, err
	}

	params := opts.Parameters()
	stats := layout.Model().Stats()
	p.logger.Debug("solving layout",
		"variables", stats.Variables,
		"constraints", layout.Model().NumConstraints(),
		"target", targetString(opts.Target),
		"time", opts.TimeLimit,
		"workers", params.Workers,
		"precision", opts.Precision)

	resp, err := p.engine.Solve(ctx, layout.Model(), params)
	if err != nil {
		return Solution{}, fmt.Errorf("solve layout: %w", err)
	}

	var solution Solution
	if resp.Status.Feasible() {
		solution = layout.Extract(resp)
	} else {
		solution = layout.Failure(resp)
	}
	solution.Parameters = SolverParameters{
		MaxTime:   opts.TimeLimit,
		Seed:      opts.Seed,
		Workers:   params.Workers,
		Randomize: opts.Randomize,
		Precision: opts.Precision,
	}
	solution.Runtime = RuntimeInfo{
		WallTime:      resp.WallTime,
		Workers:       resp.Stats.Workers,
		Nodes:         resp.Stats.Nodes,
		Fails:         resp.Stats.Fails,
		Restarts:      resp.Stats.Restarts,
		Neighborhoods: resp.Stats.Neighborhoods,
		Solutions:     resp.Stats.Solutions,
		Variables:     stats.Variables,
		Constraints:   layout.Model().NumConstraints(),
	}

	p.logger.Debug("layout solved",
		"status", solution.Status,
		"objective", solution.Objective,
		"utilization", fmt.Sprintf("%.4f", solution.Utilization),
		"wall", resp.WallTime)
	return solution, nil
}

// Verify re-checks a solution against the planner's catalog and site.
func (p *Planner) Verify(solution Solution) Validation {
	return Validate(solution, p.catalog, p.site)
}

func targetString(target *float64) string {
	if target == nil {
		return "none"
	}
	return fmt.Sprintf("%.4f", *target)
}
