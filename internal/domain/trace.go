package domain

import "github.com/shopspring/decimal"

// AccountState is the mutable per-run balance and metadata for one
// account. A run owns its AccountStates exclusively; the aggregator only
// reads the trace produced from them, never the live states.
type AccountState struct {
	Account Account
	Balance decimal.Decimal
}

// WithdrawalDetail is one account's split of a withdrawal into
// expense-funding and tax-funding portions for a single year.
type WithdrawalDetail struct {
	AccountID        AccountID
	WithdrawnExpense decimal.Decimal
	WithdrawnTax     decimal.Decimal
}

// TaxBreakdown is the itemized tax bill for one year.
type TaxBreakdown struct {
	FederalOrdinary decimal.Decimal
	FederalLTCG     decimal.Decimal
	State           decimal.Decimal
	Total           decimal.Decimal
	EffectiveRate   decimal.Decimal
}

// YearRecord is the full trace row for one simulated age, per spec.md §3.
type YearRecord struct {
	Age int

	StartBalance map[AccountID]decimal.Decimal
	EndBalance   map[AccountID]decimal.Decimal
	GrowthRate   map[AccountID]decimal.Decimal

	IncomeGross map[string]decimal.Decimal // by income source name

	SSTaxablePortion  decimal.Decimal
	ProvisionalIncome decimal.Decimal

	RequiredDistributionTotal     decimal.Decimal
	RequiredDistributionByAccount map[AccountID]decimal.Decimal

	ExpenseAdjusted map[string]decimal.Decimal // by expense name
	NetCashNeed     decimal.Decimal

	Withdrawals map[AccountID]WithdrawalDetail

	OrdinaryIncome decimal.Decimal
	LTCGIncome     decimal.Decimal

	Tax TaxBreakdown

	Shortfall decimal.Decimal
	Failed    bool
}

// NewYearRecord allocates an empty trace record for age, sized for the
// plan's account/income/expense counts, for calculation packages that
// build the record incrementally across the year-engine phases.
func NewYearRecord(age int, numAccounts, numIncome, numExpense int) *YearRecord {
	return &YearRecord{
		Age:                           age,
		StartBalance:                  make(map[AccountID]decimal.Decimal, numAccounts),
		EndBalance:                    make(map[AccountID]decimal.Decimal, numAccounts),
		GrowthRate:                    make(map[AccountID]decimal.Decimal, numAccounts),
		IncomeGross:                   make(map[string]decimal.Decimal, numIncome),
		RequiredDistributionByAccount: make(map[AccountID]decimal.Decimal, numAccounts),
		ExpenseAdjusted:               make(map[string]decimal.Decimal, numExpense),
		Withdrawals:                   make(map[AccountID]WithdrawalDetail, numAccounts),
	}
}

// RunResult is one Monte Carlo run's full output: the per-age trace plus
// the final portfolio total and success flag. A run owns this value; the
// aggregator only reads it.
type RunResult struct {
	RunIndex       int
	Trace          []*YearRecord
	FinalPortfolio decimal.Decimal
	Success        bool
	// State is the lifecycle state the run ended in. Every run that
	// returns ends in Finalized, including one that passed through
	// Depleted; Success tells the two apart.
	State RunState
}
