package calculation

import (
	"github.com/aldenbrook/retiresim/internal/domain"
	"github.com/shopspring/decimal"
)

// YearEngine executes the single-year state transition of spec.md §4.5.
// The phases below run in a fixed order that must not change.
type YearEngine struct {
	Taxes FederalBracketTable
}

func NewYearEngine(taxes FederalBracketTable) *YearEngine {
	return &YearEngine{Taxes: taxes}
}

// RunYear advances states in place by one year and returns the trace
// record for age. marketMultiplier is the compounded annual return drawn
// once per run-year for every Stocks account (the historical-return
// service models a single equity series, not per-account series).
func (ye *YearEngine) RunYear(plan *domain.Plan, states []*domain.AccountState, age int, marketMultiplier decimal.Decimal) *domain.YearRecord {
	rec := domain.NewYearRecord(age, len(states), len(plan.IncomeSources), len(plan.Expenses))

	// Phase 1: opening snapshot.
	for _, st := range states {
		rec.StartBalance[st.Account.ID] = st.Balance
	}

	// Phase 2: growth.
	for _, st := range states {
		var rate decimal.Decimal
		if st.Account.AssetClass == domain.Stocks {
			rate = marketMultiplier.Sub(decimal.NewFromInt(1))
		} else {
			rate = st.Account.AnnualReturnRate
		}
		st.Balance = st.Balance.Mul(decimal.NewFromInt(1).Add(rate))
		rec.GrowthRate[st.Account.ID] = rate
	}

	// Phase 3: income collection.
	var ssGross, otherOrdinaryTaxable, otherNontaxable decimal.Decimal
	for _, src := range plan.IncomeSources {
		if !src.ActiveAt(age) {
			continue
		}
		amt := src.AnnualAmount
		rec.IncomeGross[src.Name] = amt
		switch src.Kind {
		case domain.SocialSecurity:
			ssGross = ssGross.Add(amt)
		case domain.Employment, domain.Pension, domain.Rental, domain.TraditionalDistrib:
			otherOrdinaryTaxable = otherOrdinaryTaxable.Add(amt)
		case domain.Other:
			if src.ExplicitTaxable {
				otherOrdinaryTaxable = otherOrdinaryTaxable.Add(amt)
			} else {
				otherNontaxable = otherNontaxable.Add(amt)
			}
		}
	}

	// ordinaryTaxTally accumulates the *taxable* ordinary basis across
	// phases 3-8; availableIncome (phase 6) is a separate cash-flow
	// concept so RMD cash is counted exactly once in each.
	ordinaryTaxTally := otherOrdinaryTaxable

	// Phase 4: required distributions.
	var rmdTotal decimal.Decimal
	for _, st := range states {
		if st.Account.TaxTreatment != domain.Traditional {
			continue
		}
		rmd := RequiredDistribution(st.Balance, age)
		if rmd.IsZero() {
			continue
		}
		st.Balance = st.Balance.Sub(rmd)
		rec.RequiredDistributionByAccount[st.Account.ID] = rmd
		rmdTotal = rmdTotal.Add(rmd)
		ordinaryTaxTally = ordinaryTaxTally.Add(rmd)
	}
	rec.RequiredDistributionTotal = rmdTotal

	// Phase 5: Social-Security taxability.
	provisional := ProvisionalIncome(ordinaryTaxTally, otherNontaxable, ssGross)
	ssFraction := SocialSecurityTaxableFraction(plan.FilingStatus, ordinaryTaxTally.Add(otherNontaxable), decimal.Zero, ssGross)
	taxableSS := ssFraction.Mul(ssGross)
	rec.ProvisionalIncome = provisional
	rec.SSTaxablePortion = taxableSS
	ordinaryTaxTally = ordinaryTaxTally.Add(taxableSS)

	// Phase 6: available cash. Each of ss_gross / otherOrdinaryTaxable /
	// otherNontaxable / rmdTotal is added exactly once.
	availableIncome := ssGross.Add(otherOrdinaryTaxable).Add(otherNontaxable).Add(rmdTotal)

	// Phase 7: expenses.
	var totalExpenses decimal.Decimal
	for _, exp := range plan.Expenses {
		if !exp.ActiveAt(age) {
			continue
		}
		years := age - plan.CurrentAge
		factor := decimal.NewFromInt(1).Add(exp.InflationRate).Pow(decimal.NewFromInt(int64(years)))
		adjusted := exp.AnnualAmount.Mul(factor)
		rec.ExpenseAdjusted[exp.Name] = adjusted
		totalExpenses = totalExpenses.Add(adjusted)
	}
	rec.NetCashNeed = decimal.Max(decimal.Zero, totalExpenses.Sub(availableIncome))

	// Phase 8: expense withdrawal.
	expenseResult, _ := Withdraw(states, rec.NetCashNeed)
	expenseResult.ApplyTo(rec, BucketExpense)
	ordinaryTaxTally = ordinaryTaxTally.Add(expenseResult.TotalOrdinary)
	ltcgTally := expenseResult.TotalLTCG

	// Phase 9: tax computation.
	stdDed := ye.Taxes.StandardDeduction[plan.FilingStatus]
	ordinaryTaxablePostDeduction := decimal.Max(decimal.Zero, ordinaryTaxTally.Sub(stdDed))
	federalOrdinary := FederalOrdinaryTax(ye.Taxes, plan.FilingStatus, ordinaryTaxTally)
	federalLTCG := FederalLTCGTax(ye.Taxes, plan.FilingStatus, ordinaryTaxablePostDeduction, ltcgTally)
	ordinaryStateTaxable := ordinaryTaxTally.Sub(taxableSS)
	stateTax := StateTaxCalc(plan.StateTax, ye.Taxes, plan.FilingStatus, ordinaryStateTaxable, ltcgTally)

	totalTax := federalOrdinary.Add(federalLTCG).Add(stateTax)
	denominator := ordinaryTaxTally.Add(ltcgTally)
	effectiveRate := decimal.Zero
	if denominator.GreaterThan(decimal.Zero) {
		effectiveRate = totalTax.Div(denominator)
	}
	rec.OrdinaryIncome = ordinaryTaxTally
	rec.LTCGIncome = ltcgTally
	rec.Tax = domain.TaxBreakdown{
		FederalOrdinary: federalOrdinary,
		FederalLTCG:     federalLTCG,
		State:           stateTax,
		Total:           totalTax,
		EffectiveRate:   effectiveRate,
	}

	// Phase 10: tax withdrawal. These realizations deliberately do not
	// feed back into this year's tax basis (see design notes, §9).
	expenseWithdrawn := rec.NetCashNeed.Sub(expenseResult.Shortfall)
	surplus := decimal.Max(decimal.Zero, availableIncome.Add(expenseWithdrawn).Sub(totalExpenses))
	taxNeed := decimal.Max(decimal.Zero, totalTax.Sub(surplus))
	taxResult, _ := Withdraw(states, taxNeed)
	taxResult.ApplyTo(rec, BucketTax)
	rec.Shortfall = taxResult.Shortfall

	// Phase 11: failure check.
	var total decimal.Decimal
	for _, st := range states {
		total = total.Add(st.Balance)
	}
	if total.LessThanOrEqual(decimal.Zero) {
		rec.Failed = true
		for _, st := range states {
			st.Balance = decimal.Zero
		}
	}

	// Phase 12: commit record.
	for _, st := range states {
		rec.EndBalance[st.Account.ID] = st.Balance
	}

	return rec
}
