package calculation

import (
	"context"
	"strings"
	"testing"

	"github.com/aldenbrook/retiresim/internal/domain"
	"github.com/shopspring/decimal"
)

func newTestEngine(t *testing.T, parallelism int) *Engine {
	t.Helper()
	svc := testHistoricalService(t)
	return NewEngine(svc, DefaultFederalBracketTable(), EngineOptions{Parallelism: parallelism})
}

func TestEngine_ValidatesPlanBeforeRunning(t *testing.T) {
	engine := newTestEngine(t, 0)
	plan := wellFundedPlan()
	plan.CurrentAge = -1
	_, err := engine.RunBatch(context.Background(), plan, domain.RunConfig{NumRuns: 10, LowerPct: 10, UpperPct: 90})
	if err == nil {
		t.Fatal("expected validation error")
	}
}

func TestEngine_SequentialAndParallelAgree(t *testing.T) {
	plan := wellFundedPlan()
	config := domain.RunConfig{NumRuns: 20, LowerPct: 10, UpperPct: 90, Seed: 123, InitialRegime: domain.RegimeNone}

	seqEngine := newTestEngine(t, 0)
	seqResult, err := seqEngine.RunBatch(context.Background(), plan, config)
	if err != nil {
		t.Fatalf("sequential run failed: %v", err)
	}

	parEngine := newTestEngine(t, 4)
	parResult, err := parEngine.RunBatch(context.Background(), plan, config)
	if err != nil {
		t.Fatalf("parallel run failed: %v", err)
	}

	if !seqResult.SuccessRate.Equal(parResult.SuccessRate) {
		t.Fatalf("sequential and parallel success rates diverged: %s vs %s", seqResult.SuccessRate, parResult.SuccessRate)
	}
}

func TestEngine_CancellationReturnsPartialAggregate(t *testing.T) {
	engine := newTestEngine(t, 0)
	plan := wellFundedPlan()
	config := domain.RunConfig{NumRuns: 10000, LowerPct: 10, UpperPct: 90, Seed: 1}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := engine.RunBatch(ctx, plan, config)
	if err == nil {
		t.Fatal("expected a cancellation error")
	}
	if result == nil {
		t.Fatal("expected a partial result even when cancelled")
	}
}

func TestEngine_ForcedDepletionLowersSuccessRate(t *testing.T) {
	engine := newTestEngine(t, 0)
	plan := wellFundedPlan()
	plan.Accounts[0].StartingBalance = decimal.NewFromInt(1000)
	config := domain.RunConfig{NumRuns: 30, LowerPct: 10, UpperPct: 90, Seed: 5}

	result, err := engine.RunBatch(context.Background(), plan, config)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.SuccessRate.GreaterThan(decimal.NewFromFloat(0.5)) {
		t.Fatalf("expected a badly underfunded plan to fail most runs, got success rate %s", result.SuccessRate)
	}
}

func TestEngine_RejectsEmptyHistoricalData(t *testing.T) {
	_, err := LoadHistoricalReturns(strings.NewReader(""), false, NopLogger{})
	if err == nil {
		t.Fatal("expected an error constructing the engine from empty historical data")
	}
}
