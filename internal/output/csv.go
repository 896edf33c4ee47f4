// Package output renders an AggregateResult into the persisted aggregate
// shape of spec.md §6: a header row plus normalized child sections, one
// CSV table per concern, grounded in the teacher's CSVSummarizer
// (bytes.Buffer + encoding/csv, sorted rows for deterministic output).
package output

import (
	"bytes"
	"encoding/csv"
	"sort"
	"strconv"

	"github.com/aldenbrook/retiresim/internal/domain"
)

// Section is one table in the persisted shape: a name and its own header
// plus rows, so a caller can write each to its own file or sheet.
type Section struct {
	Name   string
	Header []string
	Rows   [][]string
}

// Render builds every section of the persisted aggregate shape: the batch
// header, the portfolio timeline, and per-band account/tax/income/expense/
// return detail. numRuns and timestamp are carried in separately since
// AggregateResult itself doesn't track them.
func Render(agg *domain.AggregateResult, numRuns, lowerPct, upperPct int, timestamp string) []Section {
	sections := []Section{
		headerSection(agg, numRuns, lowerPct, upperPct, timestamp),
		portfolioTimelineSection(agg),
	}
	for _, band := range domain.Bands {
		sections = append(sections,
			accountTimelineSection(agg, band),
			taxDetailSection(agg, band),
			incomeDetailSection(agg, band),
			expenseDetailSection(agg, band),
			returnDetailSection(agg, band),
		)
	}
	return sections
}

func headerSection(agg *domain.AggregateResult, numRuns, lowerPct, upperPct int, timestamp string) Section {
	return Section{
		Name:   "batch",
		Header: []string{"BatchID", "NumRuns", "LowerPct", "UpperPct", "SuccessRate", "Timestamp"},
		Rows: [][]string{{
			agg.BatchID.String(),
			strconv.Itoa(numRuns),
			strconv.Itoa(lowerPct),
			strconv.Itoa(upperPct),
			agg.SuccessRate.StringFixed(4),
			timestamp,
		}},
	}
}

func portfolioTimelineSection(agg *domain.AggregateResult) Section {
	ages := sortedAges(agg.PortfolioTimeline)
	rows := make([][]string, 0, len(ages))
	for _, age := range ages {
		band := agg.PortfolioTimeline[age]
		rows = append(rows, []string{
			strconv.Itoa(age),
			band.Lower.StringFixed(2),
			band.Median.StringFixed(2),
			band.Upper.StringFixed(2),
		})
	}
	return Section{Name: "portfolio_timeline", Header: []string{"Age", "Lower", "Median", "Upper"}, Rows: rows}
}

func accountTimelineSection(agg *domain.AggregateResult, band domain.Band) Section {
	byAccount := agg.AccountTimeline[band]
	accountIDs := make([]domain.AccountID, 0, len(byAccount))
	for id := range byAccount {
		accountIDs = append(accountIDs, id)
	}
	sort.Slice(accountIDs, func(i, j int) bool { return accountIDs[i].String() < accountIDs[j].String() })

	var rows [][]string
	for _, id := range accountIDs {
		series := byAccount[id]
		for _, age := range sortedAges(series) {
			rows = append(rows, []string{id.String(), strconv.Itoa(age), series[age].StringFixed(2)})
		}
	}
	return Section{
		Name:   string(band) + "_account_timeline",
		Header: []string{"AccountID", "Age", "Balance"},
		Rows:   rows,
	}
}

func taxDetailSection(agg *domain.AggregateResult, band domain.Band) Section {
	ages := sortedRecordAges(agg.AnnualDetail[band])
	rows := make([][]string, 0, len(ages))
	for _, age := range ages {
		rec := agg.AnnualDetail[band][age]
		rows = append(rows, []string{
			strconv.Itoa(age),
			rec.Tax.FederalOrdinary.StringFixed(2),
			rec.Tax.FederalLTCG.StringFixed(2),
			rec.Tax.State.StringFixed(2),
			rec.Tax.Total.StringFixed(2),
			rec.Tax.EffectiveRate.StringFixed(4),
		})
	}
	return Section{
		Name:   string(band) + "_tax_detail",
		Header: []string{"Age", "FederalOrdinary", "FederalLTCG", "State", "Total", "EffectiveRate"},
		Rows:   rows,
	}
}

func incomeDetailSection(agg *domain.AggregateResult, band domain.Band) Section {
	ages := sortedRecordAges(agg.AnnualDetail[band])
	var rows [][]string
	for _, age := range ages {
		rec := agg.AnnualDetail[band][age]
		names := make([]string, 0, len(rec.IncomeGross))
		for name := range rec.IncomeGross {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			rows = append(rows, []string{strconv.Itoa(age), name, rec.IncomeGross[name].StringFixed(2)})
		}
	}
	return Section{Name: string(band) + "_income_detail", Header: []string{"Age", "Source", "GrossAmount"}, Rows: rows}
}

func expenseDetailSection(agg *domain.AggregateResult, band domain.Band) Section {
	ages := sortedRecordAges(agg.AnnualDetail[band])
	var rows [][]string
	for _, age := range ages {
		rec := agg.AnnualDetail[band][age]
		names := make([]string, 0, len(rec.ExpenseAdjusted))
		for name := range rec.ExpenseAdjusted {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			rows = append(rows, []string{strconv.Itoa(age), name, rec.ExpenseAdjusted[name].StringFixed(2)})
		}
	}
	return Section{Name: string(band) + "_expense_detail", Header: []string{"Age", "Expense", "AdjustedAmount"}, Rows: rows}
}

func returnDetailSection(agg *domain.AggregateResult, band domain.Band) Section {
	ages := sortedRecordAges(agg.AnnualDetail[band])
	var rows [][]string
	for _, age := range ages {
		rec := agg.AnnualDetail[band][age]
		ids := make([]domain.AccountID, 0, len(rec.GrowthRate))
		for id := range rec.GrowthRate {
			ids = append(ids, id)
		}
		sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
		for _, id := range ids {
			rows = append(rows, []string{strconv.Itoa(age), id.String(), rec.GrowthRate[id].StringFixed(4)})
		}
	}
	return Section{Name: string(band) + "_return_detail", Header: []string{"Age", "AccountID", "Rate"}, Rows: rows}
}

// Encode writes a Section as CSV bytes, header first.
func Encode(s Section) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	if err := w.Write(s.Header); err != nil {
		return nil, err
	}
	for _, row := range s.Rows {
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

func sortedAges(m map[int]domain.PercentileBand) []int {
	ages := make([]int, 0, len(m))
	for age := range m {
		ages = append(ages, age)
	}
	sort.Ints(ages)
	return ages
}

func sortedRecordAges(m map[int]*domain.YearRecord) []int {
	ages := make([]int, 0, len(m))
	for age := range m {
		ages = append(ages, age)
	}
	sort.Ints(ages)
	return ages
}
