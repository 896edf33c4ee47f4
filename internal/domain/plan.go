package domain

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AccountID stably identifies an account across a plan's lifetime, so a
// caller's persistence layer can correlate trace rows back to the account
// that produced them.
type AccountID uuid.UUID

func NewAccountID() AccountID { return AccountID(uuid.New()) }

func (id AccountID) String() string { return uuid.UUID(id).String() }

// Account is one investment account in a plan. AnnualReturnRate is
// required for non-stock asset classes and ignored for Stocks, which
// draws its growth from the historical-return service instead.
// GainsFraction only applies to TaxableBrokerage+Stocks accounts.
type Account struct {
	ID               AccountID       `yaml:"id,omitempty" json:"id,omitempty"`
	Name             string          `yaml:"name" json:"name"`
	TaxTreatment     TaxTreatment    `yaml:"tax_treatment" json:"tax_treatment"`
	AssetClass       AssetClass      `yaml:"asset_class" json:"asset_class"`
	StartingBalance  decimal.Decimal `yaml:"starting_balance" json:"starting_balance"`
	AnnualReturnRate decimal.Decimal `yaml:"annual_return_rate" json:"annual_return_rate"`
	GainsFraction    decimal.Decimal `yaml:"gains_fraction" json:"gains_fraction"`
}

// IncomeSource is a time-bounded, face-value annual income stream.
// ExplicitTaxable is only consulted when Kind is Other.
type IncomeSource struct {
	Name            string          `yaml:"name" json:"name"`
	Kind            IncomeKind      `yaml:"kind" json:"kind"`
	AnnualAmount    decimal.Decimal `yaml:"annual_amount" json:"annual_amount"`
	StartAge        int             `yaml:"start_age" json:"start_age"`
	EndAge          int             `yaml:"end_age" json:"end_age"`
	ExplicitTaxable bool            `yaml:"explicit_taxable,omitempty" json:"explicit_taxable,omitempty"`
}

func (s IncomeSource) ActiveAt(age int) bool {
	return age >= s.StartAge && age <= s.EndAge
}

// Expense is a time-bounded annual expense in today's dollars, compounded
// from CurrentAge at InflationRate.
type Expense struct {
	Name          string          `yaml:"name" json:"name"`
	AnnualAmount  decimal.Decimal `yaml:"annual_amount" json:"annual_amount"`
	StartAge      int             `yaml:"start_age" json:"start_age"`
	EndAge        int             `yaml:"end_age" json:"end_age"`
	InflationRate decimal.Decimal `yaml:"inflation_rate" json:"inflation_rate"`
}

func (e Expense) ActiveAt(age int) bool {
	return age >= e.StartAge && age <= e.EndAge
}

// StateTax configures the state-tax regime; Rate is only meaningful when
// Kind is StateTaxFlat.
type StateTax struct {
	Kind StateTaxKind    `yaml:"kind" json:"kind"`
	Rate decimal.Decimal `yaml:"rate,omitempty" json:"rate,omitempty"`
}

// Plan is the immutable input to a simulation batch.
type Plan struct {
	CurrentAge           int            `yaml:"current_age" json:"current_age"`
	PlanningHorizonYears int            `yaml:"planning_horizon_years" json:"planning_horizon_years"`
	FilingStatus         FilingStatus   `yaml:"filing_status" json:"filing_status"`
	StateTax             StateTax       `yaml:"state_tax" json:"state_tax"`
	Accounts             []Account      `yaml:"accounts" json:"accounts"`
	IncomeSources        []IncomeSource `yaml:"income_sources" json:"income_sources"`
	Expenses             []Expense      `yaml:"expenses" json:"expenses"`
}

// LastSimulatedAge is current_age + horizon - 1, per spec.md §3.
func (p Plan) LastSimulatedAge() int {
	return p.CurrentAge + p.PlanningHorizonYears - 1
}

// RunConfig is the run-batch configuration.
type RunConfig struct {
	NumRuns       int    `yaml:"num_runs" json:"num_runs"`
	LowerPct      int    `yaml:"lower_pct" json:"lower_pct"`
	UpperPct      int    `yaml:"upper_pct" json:"upper_pct"`
	InitialRegime Regime `yaml:"initial_regime,omitempty" json:"initial_regime,omitempty"`
	Seed          int64  `yaml:"seed" json:"seed"`
}
