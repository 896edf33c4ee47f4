package calculation

import (
	"github.com/aldenbrook/retiresim/internal/domain"
	"github.com/shopspring/decimal"
)

// WithdrawalBucket labels which trace field a withdrawal is attributed
// to, per spec.md §4.4.
type WithdrawalBucket string

const (
	BucketExpense WithdrawalBucket = "expense"
	BucketTax     WithdrawalBucket = "tax"
)

// WithdrawalAllocation is one account's realized draw for a single
// sequencer call.
type WithdrawalAllocation struct {
	AccountID domain.AccountID
	Gross     decimal.Decimal
	Ordinary  decimal.Decimal
	LTCG      decimal.Decimal
}

// WithdrawalResult is the full outcome of one sequencer call: every
// account touched, the resulting income components, and any unmet need.
type WithdrawalResult struct {
	Allocations    []WithdrawalAllocation
	TotalOrdinary  decimal.Decimal
	TotalLTCG      decimal.Decimal
	Shortfall      decimal.Decimal
}

// accountPriority implements the fixed four-tier order of spec.md §4.4:
// cash_savings, then taxable_brokerage+stocks, then taxable_brokerage
// non-stocks, then traditional. Ties within a tier are resolved by input
// order (the stable iteration over states).
func accountPriority(a domain.Account) int {
	switch {
	case a.TaxTreatment == domain.CashSavings:
		return 0
	case a.TaxTreatment == domain.TaxableBrokerage && a.AssetClass == domain.Stocks:
		return 1
	case a.TaxTreatment == domain.TaxableBrokerage:
		return 2
	case a.TaxTreatment == domain.Traditional:
		return 3
	default:
		return 99
	}
}

// Withdraw covers need by debiting states in fixed-priority order,
// crediting each withdrawal's ordinary/LTCG income component per the
// rules of spec.md §4.4. It mutates the balances in states and appends
// its allocations into bucket-tagged trace detail via the caller.
func Withdraw(states []*domain.AccountState, need decimal.Decimal) (WithdrawalResult, error) {
	if need.IsNegative() {
		return WithdrawalResult{}, domain.ErrNegativeNeed
	}

	result := WithdrawalResult{}
	remaining := need

	// Stable-sort indices by priority tier, preserving input order within
	// a tier (accountPriority ties resolved by original position).
	order := make([]int, len(states))
	for i := range states {
		order[i] = i
	}
	for i := 1; i < len(order); i++ {
		for j := i; j > 0 && accountPriority(states[order[j-1]].Account) > accountPriority(states[order[j]].Account); j-- {
			order[j-1], order[j] = order[j], order[j-1]
		}
	}

	for _, idx := range order {
		if remaining.LessThanOrEqual(decimal.Zero) {
			break
		}
		st := states[idx]
		if st.Balance.LessThanOrEqual(decimal.Zero) {
			continue
		}

		draw := decimal.Min(remaining, st.Balance)
		st.Balance = st.Balance.Sub(draw)
		remaining = remaining.Sub(draw)

		alloc := WithdrawalAllocation{AccountID: st.Account.ID, Gross: draw}
		switch {
		case st.Account.TaxTreatment == domain.CashSavings:
			// pure cash, no tax event
		case st.Account.TaxTreatment == domain.TaxableBrokerage && st.Account.AssetClass == domain.Stocks:
			alloc.LTCG = draw.Mul(st.Account.GainsFraction)
		case st.Account.TaxTreatment == domain.TaxableBrokerage:
			alloc.LTCG = draw
		case st.Account.TaxTreatment == domain.Traditional:
			alloc.Ordinary = draw
		}

		result.Allocations = append(result.Allocations, alloc)
		result.TotalOrdinary = result.TotalOrdinary.Add(alloc.Ordinary)
		result.TotalLTCG = result.TotalLTCG.Add(alloc.LTCG)
	}

	result.Shortfall = remaining
	return result, nil
}

// ApplyTo merges a WithdrawalResult's allocations into a year's trace
// record under the given bucket (expense or tax withdrawal).
func (wr WithdrawalResult) ApplyTo(rec *domain.YearRecord, bucket WithdrawalBucket) {
	for _, a := range wr.Allocations {
		detail := rec.Withdrawals[a.AccountID]
		detail.AccountID = a.AccountID
		switch bucket {
		case BucketExpense:
			detail.WithdrawnExpense = detail.WithdrawnExpense.Add(a.Gross)
		case BucketTax:
			detail.WithdrawnTax = detail.WithdrawnTax.Add(a.Gross)
		}
		rec.Withdrawals[a.AccountID] = detail
	}
}
