package calculation

import (
	"sort"

	"github.com/google/uuid"
	"github.com/aldenbrook/retiresim/internal/domain"
	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/stat"
)

// Aggregate reduces a batch of run results into the persisted aggregate
// shape of spec.md §4.7: success rate, per-age percentile bands, and
// per-band representative-run detail.
func Aggregate(runs []domain.RunResult, lowerPct, upperPct int) *domain.AggregateResult {
	result := domain.NewAggregateResult(uuid.New())
	if len(runs) == 0 {
		return result
	}

	successCount := 0
	lastAge := 0
	for _, r := range runs {
		if r.Success {
			successCount++
		}
		if n := len(r.Trace); n > 0 {
			if end := r.Trace[n-1].Age; end > lastAge {
				lastAge = end
			}
		}
	}
	result.SuccessRate = decimal.NewFromInt(int64(successCount)).Div(decimal.NewFromInt(int64(len(runs))))

	firstAge := runs[0].Trace[0].Age
	for age := firstAge; age <= lastAge; age++ {
		values := make([]float64, len(runs))
		for i, r := range runs {
			values[i] = portfolioValueAt(r, age)
		}
		sorted := append([]float64(nil), values...)
		sort.Float64s(sorted)
		result.PortfolioTimeline[age] = domain.PercentileBand{
			Lower:  decimal.NewFromFloat(stat.Quantile(float64(lowerPct)/100, stat.LinInterp, sorted, nil)),
			Median: decimal.NewFromFloat(stat.Quantile(0.5, stat.LinInterp, sorted, nil)),
			Upper:  decimal.NewFromFloat(stat.Quantile(float64(upperPct)/100, stat.LinInterp, sorted, nil)),
		}
	}

	order := rankByFinalPortfolio(runs)
	n := len(order)
	bandRank := map[domain.Band]int{
		domain.BandLower:  round(float64(lowerPct) / 100 * float64(n-1)),
		domain.BandMedian: round(float64(n-1) / 2),
		domain.BandUpper:  round(float64(upperPct) / 100 * float64(n-1)),
	}

	for _, band := range domain.Bands {
		rank := clamp(bandRank[band], 0, n-1)
		runIdx := order[rank]
		run := runs[runIdx]
		result.RepresentativeRunIndex[band] = run.RunIndex

		accountSeries := make(map[domain.AccountID]map[int]decimal.Decimal)
		ageDetail := make(map[int]*domain.YearRecord)
		for _, rec := range run.Trace {
			ageDetail[rec.Age] = rec
			for accID, bal := range rec.EndBalance {
				series, ok := accountSeries[accID]
				if !ok {
					series = make(map[int]decimal.Decimal)
					accountSeries[accID] = series
				}
				series[rec.Age] = bal
			}
		}
		result.AnnualDetail[band] = ageDetail
		result.AccountTimeline[band] = accountSeries
	}

	return result
}

// portfolioValueAt returns the total portfolio balance for a run at age,
// treating ages after a run's failure (or beyond its last recorded age)
// as zero, per spec.md §4.7.
func portfolioValueAt(r domain.RunResult, age int) float64 {
	for _, rec := range r.Trace {
		if rec.Age == age {
			var total decimal.Decimal
			for _, bal := range rec.EndBalance {
				total = total.Add(bal)
			}
			return total.InexactFloat64()
		}
	}
	return 0
}

// rankByFinalPortfolio returns run indices into runs, ascending by final
// portfolio total, ties broken by smaller run index.
func rankByFinalPortfolio(runs []domain.RunResult) []int {
	order := make([]int, len(runs))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		a, b := runs[order[i]], runs[order[j]]
		if !a.FinalPortfolio.Equal(b.FinalPortfolio) {
			return a.FinalPortfolio.LessThan(b.FinalPortfolio)
		}
		return a.RunIndex < b.RunIndex
	})
	return order
}

func round(x float64) int {
	if x < 0 {
		return int(x - 0.5)
	}
	return int(x + 0.5)
}

func clamp(x, lo, hi int) int {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
