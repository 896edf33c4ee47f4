package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ValidatePlan checks every field spec.md §7 calls out as "input
// validation" and collects all offending fields, mirroring the teacher's
// config.ValidateConfiguration pattern of reporting every problem at once
// rather than failing on the first.
func ValidatePlan(p *Plan) ValidationErrors {
	var errs ValidationErrors

	if p.PlanningHorizonYears <= 0 {
		errs = append(errs, &ValidationError{"planning_horizon_years", "must be positive"})
	}
	if p.CurrentAge <= 0 {
		errs = append(errs, &ValidationError{"current_age", "must be positive"})
	}
	if !p.FilingStatus.Valid() {
		errs = append(errs, &ValidationError{"filing_status", fmt.Sprintf("invalid value %q", p.FilingStatus)})
	}
	if !p.StateTax.Kind.Valid() {
		errs = append(errs, &ValidationError{"state_tax.kind", fmt.Sprintf("invalid value %q", p.StateTax.Kind)})
	}

	for i, a := range p.Accounts {
		field := fmt.Sprintf("accounts[%d]", i)
		if !a.TaxTreatment.Valid() {
			errs = append(errs, &ValidationError{field + ".tax_treatment", fmt.Sprintf("invalid value %q", a.TaxTreatment)})
		}
		if !a.AssetClass.Valid() {
			errs = append(errs, &ValidationError{field + ".asset_class", fmt.Sprintf("invalid value %q", a.AssetClass)})
		}
		if a.StartingBalance.IsNegative() {
			errs = append(errs, &ValidationError{field + ".starting_balance", "must not be negative"})
		}
		if a.GainsFraction.IsNegative() || a.GainsFraction.GreaterThan(decimal.NewFromInt(1)) {
			errs = append(errs, &ValidationError{field + ".gains_fraction", "must be within [0, 1]"})
		}
	}

	for i, s := range p.IncomeSources {
		field := fmt.Sprintf("income_sources[%d]", i)
		if !s.Kind.Valid() {
			errs = append(errs, &ValidationError{field + ".kind", fmt.Sprintf("invalid value %q", s.Kind)})
		}
		if s.StartAge > s.EndAge {
			errs = append(errs, &ValidationError{field, "start_age must not exceed end_age"})
		}
	}

	for i, e := range p.Expenses {
		field := fmt.Sprintf("expenses[%d]", i)
		if e.StartAge > e.EndAge {
			errs = append(errs, &ValidationError{field, "start_age must not exceed end_age"})
		}
	}

	return errs
}

// ValidateRunConfig checks the run-batch parameters named in spec.md §3.
func ValidateRunConfig(c *RunConfig) ValidationErrors {
	var errs ValidationErrors

	if c.NumRuns < 10 || c.NumRuns > 10000 {
		errs = append(errs, &ValidationError{"num_runs", "must be between 10 and 10000"})
	}
	if c.LowerPct < 1 || c.UpperPct > 99 || c.LowerPct >= c.UpperPct {
		errs = append(errs, &ValidationError{"lower_pct/upper_pct", "must satisfy 1 <= lower_pct < upper_pct <= 99"})
	}
	if c.InitialRegime != "" && !c.InitialRegime.Valid() {
		errs = append(errs, &ValidationError{"initial_regime", fmt.Sprintf("invalid value %q", c.InitialRegime)})
	}

	return errs
}
