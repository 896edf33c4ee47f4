package calculation

import (
	"testing"

	"github.com/aldenbrook/retiresim/internal/domain"
	"github.com/shopspring/decimal"
)

func TestFederalOrdinaryTax_BelowStandardDeduction(t *testing.T) {
	table := DefaultFederalBracketTable()
	tax := FederalOrdinaryTax(table, domain.Single, decimal.NewFromInt(10000))
	if !tax.IsZero() {
		t.Fatalf("expected zero tax below standard deduction, got %s", tax)
	}
}

func TestFederalOrdinaryTax_ProgressiveBrackets(t *testing.T) {
	table := DefaultFederalBracketTable()
	// Single, 60000 gross - 15000 std deduction = 45000 taxable.
	tax := FederalOrdinaryTax(table, domain.Single, decimal.NewFromInt(60000))
	want := decimal.NewFromInt(11600).Mul(decimal.NewFromFloat(0.10)).
		Add(decimal.NewFromInt(45000 - 11600).Mul(decimal.NewFromFloat(0.12)))
	if !tax.Equal(want) {
		t.Fatalf("got %s want %s", tax, want)
	}
}

func TestFederalLTCGTax_StackedOnTopOfOrdinary(t *testing.T) {
	table := DefaultFederalBracketTable()
	// ordinaryTaxable already fills the 0% LTCG bracket (47025 for Single);
	// all LTCG should land in the 15% bracket.
	ordinaryTaxable := decimal.NewFromInt(50000)
	ltcg := decimal.NewFromInt(10000)
	tax := FederalLTCGTax(table, domain.Single, ordinaryTaxable, ltcg)
	want := ltcg.Mul(decimal.NewFromFloat(0.15))
	if !tax.Equal(want) {
		t.Fatalf("got %s want %s", tax, want)
	}
}

func TestFederalLTCGTax_ZeroWhenNoGains(t *testing.T) {
	table := DefaultFederalBracketTable()
	tax := FederalLTCGTax(table, domain.Single, decimal.NewFromInt(50000), decimal.Zero)
	if !tax.IsZero() {
		t.Fatalf("expected zero, got %s", tax)
	}
}

func TestFederalLTCGTax_SpansTwoBrackets(t *testing.T) {
	table := DefaultFederalBracketTable()
	// ordinaryTaxable just under the 20% threshold; ltcg straddles 15%/20%.
	ordinaryTaxable := decimal.NewFromInt(518000)
	ltcg := decimal.NewFromInt(2000)
	tax := FederalLTCGTax(table, domain.Single, ordinaryTaxable, ltcg)
	// 900 at 15%, 1100 at 20%.
	want := decimal.NewFromInt(900).Mul(decimal.NewFromFloat(0.15)).
		Add(decimal.NewFromInt(1100).Mul(decimal.NewFromFloat(0.20)))
	if !tax.Equal(want) {
		t.Fatalf("got %s want %s", tax, want)
	}
}

func TestStateTaxCalc_None(t *testing.T) {
	table := DefaultFederalBracketTable()
	tax := StateTaxCalc(domain.StateTax{Kind: domain.StateTaxNone}, table, domain.Single, decimal.NewFromInt(100000), decimal.NewFromInt(5000))
	if !tax.IsZero() {
		t.Fatalf("expected zero, got %s", tax)
	}
}

func TestStateTaxCalc_Flat(t *testing.T) {
	table := DefaultFederalBracketTable()
	st := domain.StateTax{Kind: domain.StateTaxFlat, Rate: decimal.NewFromFloat(0.05)}
	tax := StateTaxCalc(st, table, domain.Single, decimal.NewFromInt(100000), decimal.NewFromInt(10000))
	want := decimal.NewFromInt(110000).Mul(decimal.NewFromFloat(0.05))
	if !tax.Equal(want) {
		t.Fatalf("got %s want %s", tax, want)
	}
}

func TestStateTaxCalc_California(t *testing.T) {
	table := DefaultFederalBracketTable()
	st := domain.StateTax{Kind: domain.StateTaxCalifornia}
	tax := StateTaxCalc(st, table, domain.Single, decimal.NewFromInt(30000), decimal.Zero)
	if !tax.GreaterThan(decimal.Zero) {
		t.Fatalf("expected positive California tax, got %s", tax)
	}
}

func TestSocialSecurityTaxableFraction_Thresholds(t *testing.T) {
	cases := []struct {
		name       string
		provisionalBasis decimal.Decimal
		ssGross    decimal.Decimal
		want       decimal.Decimal
	}{
		{"below lower threshold", decimal.Zero, decimal.NewFromInt(10000), decimal.Zero},
		{"between thresholds", decimal.NewFromInt(28000), decimal.NewFromInt(10000), decimal.NewFromFloat(0.5)},
		{"above upper threshold", decimal.NewFromInt(60000), decimal.NewFromInt(10000), decimal.NewFromFloat(0.85)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := SocialSecurityTaxableFraction(domain.Single, tc.provisionalBasis, decimal.Zero, tc.ssGross)
			if !got.Equal(tc.want) {
				t.Fatalf("got %s want %s", got, tc.want)
			}
		})
	}
}
