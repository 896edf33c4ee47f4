package calculation

import (
	"bufio"
	"fmt"
	"io"
	"math/rand"
	"sort"
	"strconv"
	"strings"

	"github.com/aldenbrook/retiresim/internal/domain"
	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/stat"
)

// HistoricalReturnService owns the fixed monthly-return vector and the
// derived regime pools, per spec.md §4.1. It is read-only after
// initialization and safe to share across concurrent runs.
type HistoricalReturnService struct {
	monthly []float64 // 1+r multipliers, oldest->newest

	bearStarts []int
	bullStarts []int

	pBullStayBull decimal.Decimal
	pBearStayBear decimal.Decimal
}

// LoadHistoricalReturns parses a line-oriented monthly-percentage table
// (one value per line; blank lines and unparseable rows are skipped with
// a counted warning) and builds the service. Rows are normalized to
// oldest->newest order; callers pass newestFirst=true when the source
// file is ordered newest-to-oldest, per spec.md §6.
func LoadHistoricalReturns(r io.Reader, newestFirst bool, log Logger) (*HistoricalReturnService, error) {
	scanner := bufio.NewScanner(r)
	var multipliers []float64
	skipped := 0

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		pct, err := strconv.ParseFloat(line, 64)
		if err != nil {
			skipped++
			continue
		}
		multipliers = append(multipliers, 1+pct/100)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading historical return data: %w", err)
	}
	if skipped > 0 && log != nil {
		log.Warnf("historical return loader: skipped %d unparseable rows", skipped)
	}
	if len(multipliers) == 0 {
		return nil, fmt.Errorf("%w: zero rows parsed", domain.ErrEmptyHistoricalData)
	}

	if newestFirst {
		for i, j := 0, len(multipliers)-1; i < j; i, j = i+1, j-1 {
			multipliers[i], multipliers[j] = multipliers[j], multipliers[i]
		}
	}

	svc := &HistoricalReturnService{monthly: multipliers}
	svc.precompute()
	if log != nil {
		log.Infof("historical return service: %d monthly observations, %d bear windows, %d bull windows, P(bull|bull)=%s P(bear|bear)=%s",
			len(svc.monthly), len(svc.bearStarts), len(svc.bullStarts),
			svc.pBullStayBull.StringFixed(4), svc.pBearStayBear.StringFixed(4))
	}
	return svc, nil
}

// precompute builds the bear/bull start-index pools over every contiguous
// twelve-month window, and the two Markov stay-probabilities over
// non-overlapping, month-aligned annual windows.
func (s *HistoricalReturnService) precompute() {
	n := len(s.monthly)
	for start := 0; start+12 <= n; start++ {
		if s.compoundedReturn(start) < 0 {
			s.bearStarts = append(s.bearStarts, start)
		} else {
			s.bullStarts = append(s.bullStarts, start)
		}
	}

	bullToBull, bullTotal := 0, 0
	bearToBear, bearTotal := 0, 0
	var prevBull bool
	var havePrev bool
	for start := 0; start+12 <= n; start += 12 {
		curBull := s.compoundedReturn(start) >= 0
		if havePrev {
			if prevBull {
				bullTotal++
				if curBull {
					bullToBull++
				}
			} else {
				bearTotal++
				if !curBull {
					bearToBear++
				}
			}
		}
		prevBull = curBull
		havePrev = true
	}

	s.pBullStayBull = mleProbability(bullToBull, bullTotal)
	s.pBearStayBear = mleProbability(bearToBear, bearTotal)
}

func mleProbability(hits, total int) decimal.Decimal {
	if total == 0 {
		return decimal.NewFromFloat(0.5)
	}
	return decimal.NewFromFloat(float64(hits) / float64(total))
}

// compoundedReturn returns the fractional annual return (not the
// multiplier) of the twelve-month window beginning at start.
func (s *HistoricalReturnService) compoundedReturn(start int) float64 {
	product := 1.0
	for i := start; i < start+12; i++ {
		product *= s.monthly[i]
	}
	return product - 1
}

// windowMultiplier returns the compounded annual growth multiplier for
// the twelve-month window beginning at start.
func (s *HistoricalReturnService) windowMultiplier(start int) decimal.Decimal {
	product := 1.0
	for i := start; i < start+12; i++ {
		product *= s.monthly[i]
	}
	return decimal.NewFromFloat(product)
}

// AnnualReturnQuantiles reports diagnostic quantiles of every twelve-month
// window's compounded annual return, for operator sanity-checking at
// startup; it does not feed the simulation itself.
func (s *HistoricalReturnService) AnnualReturnQuantiles(qs []float64) []float64 {
	n := len(s.monthly)
	if n < 12 {
		return make([]float64, len(qs))
	}
	returns := make([]float64, 0, n-11)
	for start := 0; start+12 <= n; start++ {
		returns = append(returns, s.compoundedReturn(start))
	}
	sorted := append([]float64(nil), returns...)
	sort.Float64s(sorted)
	out := make([]float64, len(qs))
	for i, q := range qs {
		out[i] = stat.Quantile(q, stat.Empirical, sorted, nil)
	}
	return out
}

// SampleAnnualReturns draws n_years compounded annual growth multipliers,
// per spec.md §4.1.
func (s *HistoricalReturnService) SampleAnnualReturns(nYears int, rng *rand.Rand, firstYearRegime domain.Regime) ([]decimal.Decimal, error) {
	if firstYearRegime != "" && !firstYearRegime.Valid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidRegime, firstYearRegime)
	}

	out := make([]decimal.Decimal, nYears)

	if firstYearRegime == "" || firstYearRegime == domain.RegimeNone {
		for y := 0; y < nYears; y++ {
			start := rng.Intn(len(s.monthly) - 11)
			out[y] = s.windowMultiplier(start)
		}
		return out, nil
	}

	regime := firstYearRegime
	for y := 0; y < nYears; y++ {
		if y > 0 {
			regime = s.nextRegime(regime, rng)
		}
		pool := s.poolFor(regime)
		start := pool[rng.Intn(len(pool))]
		out[y] = s.windowMultiplier(start)
	}
	return out, nil
}

func (s *HistoricalReturnService) poolFor(r domain.Regime) []int {
	if r == domain.RegimeBear {
		return s.bearStarts
	}
	return s.bullStarts
}

// nextRegime applies the Markov transition: stay with the regime's
// stay-probability, else flip.
func (s *HistoricalReturnService) nextRegime(current domain.Regime, rng *rand.Rand) domain.Regime {
	stay := s.pBullStayBull
	if current == domain.RegimeBear {
		stay = s.pBearStayBear
	}
	if rng.Float64() < stay.InexactFloat64() {
		return current
	}
	if current == domain.RegimeBull {
		return domain.RegimeBear
	}
	return domain.RegimeBull
}
