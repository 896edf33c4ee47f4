package calculation

import (
	"github.com/aldenbrook/retiresim/internal/domain"
	"github.com/shopspring/decimal"
)

// TaxBracket is one progressive-rate slice, matching the teacher's
// TaxBracket shape in taxes.go.
type TaxBracket struct {
	Min  decimal.Decimal
	Max  decimal.Decimal
	Rate decimal.Decimal
}

// FederalBracketTable holds the per-filing-status bracket tables and
// standard deductions. Bracket constants live in configuration, never in
// logic, so annual updates touch only data (spec.md §4.2).
type FederalBracketTable struct {
	StandardDeduction map[domain.FilingStatus]decimal.Decimal
	OrdinaryBrackets  map[domain.FilingStatus][]TaxBracket
	LTCGBrackets      map[domain.FilingStatus][]TaxBracket // thresholds only; rates 0/0.15/0.20
}

// DefaultFederalBracketTable returns a 2025-vintage bracket table, in the
// same spirit as the teacher's NewFederalTaxCalculator2025 defaults.
func DefaultFederalBracketTable() FederalBracketTable {
	million := decimal.NewFromInt(999999999)
	return FederalBracketTable{
		StandardDeduction: map[domain.FilingStatus]decimal.Decimal{
			domain.Single:         decimal.NewFromInt(15000),
			domain.MarriedJointly: decimal.NewFromInt(30000),
		},
		OrdinaryBrackets: map[domain.FilingStatus][]TaxBracket{
			domain.Single: {
				{decimal.Zero, decimal.NewFromInt(11600), decimal.NewFromFloat(0.10)},
				{decimal.NewFromInt(11600), decimal.NewFromInt(47150), decimal.NewFromFloat(0.12)},
				{decimal.NewFromInt(47150), decimal.NewFromInt(100525), decimal.NewFromFloat(0.22)},
				{decimal.NewFromInt(100525), decimal.NewFromInt(191950), decimal.NewFromFloat(0.24)},
				{decimal.NewFromInt(191950), decimal.NewFromInt(243725), decimal.NewFromFloat(0.32)},
				{decimal.NewFromInt(243725), decimal.NewFromInt(609350), decimal.NewFromFloat(0.35)},
				{decimal.NewFromInt(609350), million, decimal.NewFromFloat(0.37)},
			},
			domain.MarriedJointly: {
				{decimal.Zero, decimal.NewFromInt(23200), decimal.NewFromFloat(0.10)},
				{decimal.NewFromInt(23200), decimal.NewFromInt(94300), decimal.NewFromFloat(0.12)},
				{decimal.NewFromInt(94300), decimal.NewFromInt(201050), decimal.NewFromFloat(0.22)},
				{decimal.NewFromInt(201050), decimal.NewFromInt(383900), decimal.NewFromFloat(0.24)},
				{decimal.NewFromInt(383900), decimal.NewFromInt(487450), decimal.NewFromFloat(0.32)},
				{decimal.NewFromInt(487450), decimal.NewFromInt(731200), decimal.NewFromFloat(0.35)},
				{decimal.NewFromInt(731200), million, decimal.NewFromFloat(0.37)},
			},
		},
		LTCGBrackets: map[domain.FilingStatus][]TaxBracket{
			domain.Single: {
				{decimal.Zero, decimal.NewFromInt(47025), decimal.Zero},
				{decimal.NewFromInt(47025), decimal.NewFromInt(518900), decimal.NewFromFloat(0.15)},
				{decimal.NewFromInt(518900), million, decimal.NewFromFloat(0.20)},
			},
			domain.MarriedJointly: {
				{decimal.Zero, decimal.NewFromInt(94050), decimal.Zero},
				{decimal.NewFromInt(94050), decimal.NewFromInt(583750), decimal.NewFromFloat(0.15)},
				{decimal.NewFromInt(583750), million, decimal.NewFromFloat(0.20)},
			},
		},
	}
}

// FederalOrdinaryTax is a progressive piecewise-linear function of
// max(0, ordinaryIncome - standardDeduction), per spec.md §4.2.
func FederalOrdinaryTax(table FederalBracketTable, filingStatus domain.FilingStatus, ordinaryIncome decimal.Decimal) decimal.Decimal {
	taxable := ordinaryIncome.Sub(table.StandardDeduction[filingStatus])
	if taxable.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	return applyBrackets(table.OrdinaryBrackets[filingStatus], taxable)
}

func applyBrackets(brackets []TaxBracket, taxable decimal.Decimal) decimal.Decimal {
	tax := decimal.Zero
	for _, b := range brackets {
		if taxable.LessThanOrEqual(b.Min) {
			break
		}
		inBracket := decimal.Min(taxable, b.Max).Sub(b.Min)
		if inBracket.GreaterThan(decimal.Zero) {
			tax = tax.Add(inBracket.Mul(b.Rate))
		}
	}
	return tax
}

// FederalLTCGTax implements the stacking rule of spec.md §4.2: LTCG is
// stacked on top of ordinary taxable income, so ordinary fully consumes
// its share of the progressive scale before LTCG is assessed.
// ordinaryTaxable is ordinary income already net of the standard
// deduction (unlike the gross income FederalOrdinaryTax takes); ltcg is
// not reduced by any deduction.
func FederalLTCGTax(table FederalBracketTable, filingStatus domain.FilingStatus, ordinaryTaxable, ltcg decimal.Decimal) decimal.Decimal {
	if ltcg.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	if ordinaryTaxable.IsNegative() {
		ordinaryTaxable = decimal.Zero
	}

	brackets := table.LTCGBrackets[filingStatus]
	total := ordinaryTaxable.Add(ltcg)
	tax := decimal.Zero

	for _, b := range brackets {
		lo := decimal.Max(b.Min, ordinaryTaxable)
		hi := decimal.Max(b.Max, ordinaryTaxable)
		hi = decimal.Min(hi, total)
		if hi.LessThanOrEqual(lo) {
			continue
		}
		tax = tax.Add(hi.Sub(lo).Mul(b.Rate))
	}
	return tax
}

// StateTaxCalc computes state tax across the three regimes of spec.md
// §4.2. Social-Security taxable portion is never included in
// ordinaryStateTaxable, regardless of regime.
func StateTaxCalc(st domain.StateTax, table FederalBracketTable, filingStatus domain.FilingStatus, ordinaryStateTaxable, ltcg decimal.Decimal) decimal.Decimal {
	switch st.Kind {
	case domain.StateTaxNone:
		return decimal.Zero
	case domain.StateTaxFlat:
		return ordinaryStateTaxable.Add(ltcg).Mul(st.Rate).Round(2)
	case domain.StateTaxCalifornia:
		return californiaStateTax(filingStatus, ordinaryStateTaxable.Add(ltcg))
	default:
		return decimal.Zero
	}
}

// californiaBrackets are California's own progressive brackets, separate
// from the federal table; long-term gains are taxed as ordinary income at
// the state level per spec.md §4.2.
func californiaBrackets(filingStatus domain.FilingStatus) []TaxBracket {
	million := decimal.NewFromInt(999999999)
	if filingStatus == domain.MarriedJointly {
		return []TaxBracket{
			{decimal.Zero, decimal.NewFromInt(20198), decimal.NewFromFloat(0.01)},
			{decimal.NewFromInt(20198), decimal.NewFromInt(47884), decimal.NewFromFloat(0.02)},
			{decimal.NewFromInt(47884), decimal.NewFromInt(75576), decimal.NewFromFloat(0.04)},
			{decimal.NewFromInt(75576), decimal.NewFromInt(104910), decimal.NewFromFloat(0.06)},
			{decimal.NewFromInt(104910), decimal.NewFromInt(132590), decimal.NewFromFloat(0.08)},
			{decimal.NewFromInt(132590), decimal.NewFromInt(677278), decimal.NewFromFloat(0.093)},
			{decimal.NewFromInt(677278), decimal.NewFromInt(812728), decimal.NewFromFloat(0.103)},
			{decimal.NewFromInt(812728), decimal.NewFromInt(1354550), decimal.NewFromFloat(0.113)},
			{decimal.NewFromInt(1354550), million, decimal.NewFromFloat(0.123)},
		}
	}
	return []TaxBracket{
		{decimal.Zero, decimal.NewFromInt(10099), decimal.NewFromFloat(0.01)},
		{decimal.NewFromInt(10099), decimal.NewFromInt(23942), decimal.NewFromFloat(0.02)},
		{decimal.NewFromInt(23942), decimal.NewFromInt(37788), decimal.NewFromFloat(0.04)},
		{decimal.NewFromInt(37788), decimal.NewFromInt(52455), decimal.NewFromFloat(0.06)},
		{decimal.NewFromInt(52455), decimal.NewFromInt(66295), decimal.NewFromFloat(0.08)},
		{decimal.NewFromInt(66295), decimal.NewFromInt(338639), decimal.NewFromFloat(0.093)},
		{decimal.NewFromInt(338639), decimal.NewFromInt(406364), decimal.NewFromFloat(0.103)},
		{decimal.NewFromInt(406364), decimal.NewFromInt(677275), decimal.NewFromFloat(0.113)},
		{decimal.NewFromInt(677275), million, decimal.NewFromFloat(0.123)},
	}
}

func californiaStateTax(filingStatus domain.FilingStatus, taxable decimal.Decimal) decimal.Decimal {
	if taxable.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	return applyBrackets(californiaBrackets(filingStatus), taxable).Round(2)
}

// ssThresholds are the two-threshold IRS provisional-income breakpoints
// by filing status, per spec.md §4.2.
var ssThresholds = map[domain.FilingStatus][2]decimal.Decimal{
	domain.Single:         {decimal.NewFromInt(25000), decimal.NewFromInt(34000)},
	domain.MarriedJointly: {decimal.NewFromInt(32000), decimal.NewFromInt(44000)},
}

// SocialSecurityTaxableFraction returns the fraction of ssGross that is
// taxable, using provisional income and the two-threshold rule, per
// spec.md §4.2.
func SocialSecurityTaxableFraction(filingStatus domain.FilingStatus, adjustedGrossWithoutSS, taxExemptInterest, ssGross decimal.Decimal) decimal.Decimal {
	provisional := adjustedGrossWithoutSS.Add(taxExemptInterest).Add(ssGross.Mul(decimal.NewFromFloat(0.5)))
	thresholds := ssThresholds[filingStatus]
	switch {
	case provisional.LessThanOrEqual(thresholds[0]):
		return decimal.Zero
	case provisional.LessThanOrEqual(thresholds[1]):
		return decimal.NewFromFloat(0.5)
	default:
		return decimal.NewFromFloat(0.85)
	}
}

// ProvisionalIncome is exposed separately so the year engine can record it
// on the trace, per spec.md §3 ("provisional-income used to derive it").
func ProvisionalIncome(adjustedGrossWithoutSS, taxExemptInterest, ssGross decimal.Decimal) decimal.Decimal {
	return adjustedGrossWithoutSS.Add(taxExemptInterest).Add(ssGross.Mul(decimal.NewFromFloat(0.5)))
}
