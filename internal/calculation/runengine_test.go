package calculation

import (
	"strings"
	"testing"

	"github.com/aldenbrook/retiresim/internal/domain"
	"github.com/shopspring/decimal"
)

func testHistoricalService(t *testing.T) *HistoricalReturnService {
	t.Helper()
	svc, err := LoadHistoricalReturns(strings.NewReader(syntheticMonthlySeries(15)), false, NopLogger{})
	if err != nil {
		t.Fatalf("unexpected error building historical service: %v", err)
	}
	return svc
}

func wellFundedPlan() *domain.Plan {
	return &domain.Plan{
		CurrentAge:           65,
		PlanningHorizonYears: 10,
		FilingStatus:         domain.Single,
		StateTax:             domain.StateTax{Kind: domain.StateTaxNone},
		Accounts: []domain.Account{
			{ID: domain.NewAccountID(), Name: "cash", TaxTreatment: domain.CashSavings, AssetClass: domain.Savings, StartingBalance: decimal.NewFromInt(2000000)},
		},
		IncomeSources: []domain.IncomeSource{
			{Name: "ss", Kind: domain.SocialSecurity, AnnualAmount: decimal.NewFromInt(20000), StartAge: 65, EndAge: 99},
		},
		Expenses: []domain.Expense{
			{Name: "living", AnnualAmount: decimal.NewFromInt(40000), StartAge: 65, EndAge: 99, InflationRate: decimal.NewFromFloat(0.02)},
		},
	}
}

func TestRunEngine_SuccessfulRunCoversFullHorizon(t *testing.T) {
	svc := testHistoricalService(t)
	re := NewRunEngine(svc, NewYearEngine(DefaultFederalBracketTable()))
	plan := wellFundedPlan()
	config := domain.RunConfig{NumRuns: 1, LowerPct: 10, UpperPct: 90, Seed: 7, InitialRegime: domain.RegimeNone}

	result, err := re.Run(plan, config, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Success {
		t.Fatalf("expected success for a well-funded plan")
	}
	if len(result.Trace) != plan.PlanningHorizonYears {
		t.Fatalf("expected %d trace years, got %d", plan.PlanningHorizonYears, len(result.Trace))
	}
	if result.Trace[0].Age != 65 || result.Trace[len(result.Trace)-1].Age != 74 {
		t.Fatalf("unexpected age range: first %d last %d", result.Trace[0].Age, result.Trace[len(result.Trace)-1].Age)
	}
	if result.State != domain.Finalized {
		t.Fatalf("expected a completed run to finalize, got state %s", result.State)
	}
}

func TestRunEngine_DepletedRunStillFinalizes(t *testing.T) {
	svc := testHistoricalService(t)
	re := NewRunEngine(svc, NewYearEngine(DefaultFederalBracketTable()))
	plan := wellFundedPlan()
	plan.Accounts[0].StartingBalance = decimal.NewFromInt(1000)
	config := domain.RunConfig{NumRuns: 1, LowerPct: 10, UpperPct: 90, Seed: 7}

	result, err := re.Run(plan, config, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Success {
		t.Fatalf("expected depletion given a starting balance of 1000 against 40000 of expenses")
	}
	if result.State != domain.Finalized {
		t.Fatalf("expected depleted runs to still reach Finalized (terminal), got %s", result.State)
	}
}

func TestRunEngine_DeterministicReplay(t *testing.T) {
	svc := testHistoricalService(t)
	re := NewRunEngine(svc, NewYearEngine(DefaultFederalBracketTable()))
	plan := wellFundedPlan()
	config := domain.RunConfig{NumRuns: 1, LowerPct: 10, UpperPct: 90, Seed: 99, InitialRegime: domain.RegimeBull}

	a, err := re.Run(plan, config, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := re.Run(plan, config, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !a.FinalPortfolio.Equal(b.FinalPortfolio) {
		t.Fatalf("same (seed, run index) should replay identically: %s vs %s", a.FinalPortfolio, b.FinalPortfolio)
	}
	for i := range a.Trace {
		if !a.Trace[i].EndBalance[plan.Accounts[0].ID].Equal(b.Trace[i].EndBalance[plan.Accounts[0].ID]) {
			t.Fatalf("trace diverged at year %d", i)
		}
	}
}

func TestRunEngine_DifferentRunIndicesDiverge(t *testing.T) {
	svc := testHistoricalService(t)
	re := NewRunEngine(svc, NewYearEngine(DefaultFederalBracketTable()))
	plan := wellFundedPlan()
	// Give the account market exposure so the sampled returns reach the balance.
	plan.Accounts[0].AssetClass = domain.Stocks
	config := domain.RunConfig{NumRuns: 2, LowerPct: 10, UpperPct: 90, Seed: 99, InitialRegime: domain.RegimeBull}

	a, _ := re.Run(plan, config, 0)
	b, _ := re.Run(plan, config, 1)
	if a.FinalPortfolio.Equal(b.FinalPortfolio) {
		t.Fatalf("expected different run indices to diverge given regime sampling")
	}
}
