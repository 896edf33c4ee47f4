package domain

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PercentileBand is one age's {lower, median, upper} portfolio-value slice.
type PercentileBand struct {
	Lower  decimal.Decimal
	Median decimal.Decimal
	Upper  decimal.Decimal
}

// AggregateResult is simulate()'s output: success rate, percentile
// timelines for charting, and per-band representative-run detail for
// audit/debug, per spec.md §3 and §6.
type AggregateResult struct {
	BatchID uuid.UUID

	SuccessRate decimal.Decimal

	// PortfolioTimeline[age] is the cross-sectional percentile band of
	// total portfolio value at that age. Map iteration order is not
	// defined; the output package sorts ages ascending.
	PortfolioTimeline map[int]PercentileBand

	// AccountTimeline[band][accountID][age] is the representative run's
	// balance for that band.
	AccountTimeline map[Band]map[AccountID]map[int]decimal.Decimal

	// AnnualDetail[band][age] is the representative run's full trace row.
	AnnualDetail map[Band]map[int]*YearRecord

	// RepresentativeRunIndex[band] is the run index chosen for that band,
	// kept for audit alongside AnnualDetail.
	RepresentativeRunIndex map[Band]int
}

func NewAggregateResult(batchID uuid.UUID) *AggregateResult {
	return &AggregateResult{
		BatchID:                batchID,
		PortfolioTimeline:      make(map[int]PercentileBand),
		AccountTimeline:        make(map[Band]map[AccountID]map[int]decimal.Decimal),
		AnnualDetail:           make(map[Band]map[int]*YearRecord),
		RepresentativeRunIndex: make(map[Band]int),
	}
}
