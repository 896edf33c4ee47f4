package calculation

import (
	"context"
	"fmt"

	"github.com/aldenbrook/retiresim/internal/domain"
)

// EngineOptions configures the batch run beyond what RunConfig carries in
// the plan-facing contract: a parallelism knob that is deliberately kept
// out of domain.RunConfig because it tunes execution, not the simulation
// itself.
type EngineOptions struct {
	// Parallelism is the worker-pool size. 0 or 1 forces sequential
	// execution, required for bit-for-bit reproducible tests per
	// spec.md §5.
	Parallelism int
	Log         Logger
}

// Engine wires the historical-return service, year engine, and aggregator
// together into the top-level simulate(plan, config, seed) entrypoint of
// spec.md §6.
type Engine struct {
	historical *HistoricalReturnService
	year       *YearEngine
	opts       EngineOptions
}

func NewEngine(historical *HistoricalReturnService, taxes FederalBracketTable, opts EngineOptions) *Engine {
	if opts.Log == nil {
		opts.Log = NopLogger{}
	}
	return &Engine{historical: historical, year: NewYearEngine(taxes), opts: opts}
}

// RunBatch drives config.NumRuns independent runs to completion, aggregates
// them, and returns the persisted aggregate shape of spec.md §6. ctx is
// checked between runs only, per spec.md §5; a cancellation mid-batch still
// returns the partial aggregate over whatever runs completed, wrapped with
// domain.ErrCancelled.
func (e *Engine) RunBatch(ctx context.Context, plan *domain.Plan, config domain.RunConfig) (*domain.AggregateResult, error) {
	if errs := domain.ValidatePlan(plan); len(errs) > 0 {
		return nil, errs.AsError()
	}
	if errs := domain.ValidateRunConfig(&config); len(errs) > 0 {
		return nil, errs.AsError()
	}

	re := NewRunEngine(e.historical, e.year)

	runs := make([]domain.RunResult, 0, config.NumRuns)
	var cancelled bool

	if e.opts.Parallelism <= 1 {
		for i := 0; i < config.NumRuns; i++ {
			if err := ctx.Err(); err != nil {
				cancelled = true
				break
			}
			r, err := re.Run(plan, config, i)
			if err != nil {
				return nil, fmt.Errorf("run %d: %w", i, err)
			}
			runs = append(runs, r)
		}
	} else {
		var err error
		runs, cancelled, err = e.runParallel(ctx, re, plan, config)
		if err != nil {
			return nil, err
		}
	}

	e.opts.Log.Infof("batch complete: %d/%d runs, cancelled=%v", len(runs), config.NumRuns, cancelled)

	result := Aggregate(runs, config.LowerPct, config.UpperPct)
	if cancelled {
		return result, fmt.Errorf("%w: completed %d/%d runs", domain.ErrCancelled, len(runs), config.NumRuns)
	}
	return result, nil
}

// runParallel runs the batch across a bounded worker pool, the same
// buffered-channel-semaphore shape as the teacher's
// MonteCarloSimulator.RunSimulation. Cancellation is checked before a run
// is dispatched, not mid-run, per spec.md §5.
func (e *Engine) runParallel(ctx context.Context, re *RunEngine, plan *domain.Plan, config domain.RunConfig) ([]domain.RunResult, bool, error) {
	type indexedResult struct {
		idx int
		res domain.RunResult
		err error
	}

	sem := make(chan struct{}, e.opts.Parallelism)
	out := make(chan indexedResult, config.NumRuns)
	dispatched := 0

	for i := 0; i < config.NumRuns; i++ {
		if err := ctx.Err(); err != nil {
			break
		}
		sem <- struct{}{}
		dispatched++
		go func(idx int) {
			defer func() { <-sem }()
			r, err := re.Run(plan, config, idx)
			out <- indexedResult{idx: idx, res: r, err: err}
		}(i)
	}

	runs := make([]domain.RunResult, 0, dispatched)
	for i := 0; i < dispatched; i++ {
		ir := <-out
		if ir.err != nil {
			return nil, false, fmt.Errorf("run %d: %w", ir.idx, ir.err)
		}
		runs = append(runs, ir.res)
	}

	cancelled := dispatched < config.NumRuns
	return runs, cancelled, nil
}
