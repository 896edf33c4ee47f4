package calculation

import (
	"testing"

	"github.com/aldenbrook/retiresim/internal/domain"
	"github.com/shopspring/decimal"
)

func newState(treatment domain.TaxTreatment, class domain.AssetClass, balance float64, gainsFraction float64) *domain.AccountState {
	return &domain.AccountState{
		Account: domain.Account{
			ID:            domain.NewAccountID(),
			TaxTreatment:  treatment,
			AssetClass:    class,
			GainsFraction: decimal.NewFromFloat(gainsFraction),
		},
		Balance: decimal.NewFromFloat(balance),
	}
}

func TestWithdraw_NegativeNeedRejected(t *testing.T) {
	_, err := Withdraw(nil, decimal.NewFromInt(-1))
	if err == nil {
		t.Fatal("expected error for negative need")
	}
}

func TestWithdraw_ZeroNeedNoAllocations(t *testing.T) {
	states := []*domain.AccountState{newState(domain.CashSavings, domain.Savings, 1000, 0)}
	res, err := Withdraw(states, decimal.Zero)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Allocations) != 0 {
		t.Fatalf("expected no allocations, got %v", res.Allocations)
	}
}

func TestWithdraw_PriorityOrder(t *testing.T) {
	cash := newState(domain.CashSavings, domain.Savings, 1000, 0)
	stocks := newState(domain.TaxableBrokerage, domain.Stocks, 1000, 0.5)
	bonds := newState(domain.TaxableBrokerage, domain.Bonds, 1000, 0)
	traditional := newState(domain.Traditional, domain.Bonds, 1000, 0)
	states := []*domain.AccountState{traditional, bonds, stocks, cash}

	res, err := Withdraw(states, decimal.NewFromInt(2500))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Shortfall.IsZero() {
		t.Fatalf("expected no shortfall, got %s", res.Shortfall)
	}
	// Drains cash (1000), then stocks-brokerage (1000), then the remaining
	// 500 from non-stock brokerage, never touching traditional.
	if !cash.Balance.IsZero() {
		t.Fatalf("expected cash exhausted first, balance %s", cash.Balance)
	}
	if !stocks.Balance.IsZero() {
		t.Fatalf("expected stocks-brokerage exhausted second, balance %s", stocks.Balance)
	}
	if !bonds.Balance.Equal(decimal.NewFromInt(500)) {
		t.Fatalf("expected bonds-brokerage to cover the remainder, balance %s", bonds.Balance)
	}
	if !traditional.Balance.Equal(decimal.NewFromInt(1000)) {
		t.Fatalf("expected traditional untouched, balance %s", traditional.Balance)
	}
}

func TestWithdraw_Shortfall(t *testing.T) {
	states := []*domain.AccountState{newState(domain.CashSavings, domain.Savings, 100, 0)}
	res, err := Withdraw(states, decimal.NewFromInt(500))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Shortfall.Equal(decimal.NewFromInt(400)) {
		t.Fatalf("expected shortfall of 400, got %s", res.Shortfall)
	}
}

func TestWithdraw_IncomeComponents(t *testing.T) {
	stocks := newState(domain.TaxableBrokerage, domain.Stocks, 1000, 0.4)
	traditional := newState(domain.Traditional, domain.Bonds, 1000, 0)
	states := []*domain.AccountState{stocks, traditional}

	res, err := Withdraw(states, decimal.NewFromInt(1500))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// stocks (1000) fully drawn: LTCG = 1000*0.4 = 400.
	// traditional covers the remaining 500, all ordinary.
	if !res.TotalLTCG.Equal(decimal.NewFromInt(400)) {
		t.Fatalf("expected LTCG 400, got %s", res.TotalLTCG)
	}
	if !res.TotalOrdinary.Equal(decimal.NewFromInt(500)) {
		t.Fatalf("expected ordinary 500, got %s", res.TotalOrdinary)
	}
}

func TestWithdraw_NonStockBrokerageFullyLTCG(t *testing.T) {
	bonds := newState(domain.TaxableBrokerage, domain.Bonds, 1000, 0)
	res, err := Withdraw([]*domain.AccountState{bonds}, decimal.NewFromInt(300))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.TotalLTCG.Equal(decimal.NewFromInt(300)) {
		t.Fatalf("expected full draw taxed as LTCG, got %s", res.TotalLTCG)
	}
}
