package calculation

import (
	"fmt"
	"math/rand"

	"github.com/aldenbrook/retiresim/internal/domain"
	"github.com/shopspring/decimal"
)

// RunEngine owns one run's lifecycle: initializing account state from the
// plan, stepping the year engine forward, and latching depleted/finalized.
type RunEngine struct {
	historical *HistoricalReturnService
	year       *YearEngine
}

func NewRunEngine(historical *HistoricalReturnService, year *YearEngine) *RunEngine {
	return &RunEngine{historical: historical, year: year}
}

// childRNG derives a per-run generator deterministically from the batch
// master seed and run index, so any run can be replayed in isolation
// given only (masterSeed, runIndex), per spec.md §4.6.
func childRNG(masterSeed int64, runIndex int) *rand.Rand {
	source := rand.NewSource(masterSeed + int64(runIndex)*1_000_003)
	return rand.New(source)
}

// Run executes one full run: initializing -> stepping -> (depleted) ->
// finalized. It does not check ctx itself; callers cancel between runs,
// not mid-run, per spec.md §7.
func (re *RunEngine) Run(plan *domain.Plan, config domain.RunConfig, runIndex int) (domain.RunResult, error) {
	rng := childRNG(config.Seed, runIndex)

	state := domain.Initializing

	states := make([]*domain.AccountState, len(plan.Accounts))
	for i, a := range plan.Accounts {
		states[i] = &domain.AccountState{Account: a, Balance: a.StartingBalance}
	}

	multipliers, err := re.historical.SampleAnnualReturns(plan.PlanningHorizonYears, rng, config.InitialRegime)
	if err != nil {
		return domain.RunResult{}, err
	}

	result := domain.RunResult{
		RunIndex: runIndex,
		Trace:    make([]*domain.YearRecord, 0, plan.PlanningHorizonYears),
		Success:  true,
	}

	state = domain.Stepping
	for y := 0; y < plan.PlanningHorizonYears; y++ {
		age := plan.CurrentAge + y
		rec := re.year.RunYear(plan, states, age, multipliers[y])
		result.Trace = append(result.Trace, rec)
		if err := checkInvariants(states, age); err != nil {
			return domain.RunResult{}, err
		}
		if rec.Failed {
			result.Success = false
			state = domain.Depleted // one-way; never returns to Stepping
			break
		}
	}
	state = domain.Finalized

	var final decimal.Decimal
	for _, st := range states {
		final = final.Add(st.Balance)
	}
	result.FinalPortfolio = final
	result.State = state

	return result, nil
}

// checkInvariants guards the balance-conservation invariant of spec.md §3:
// an account balance must never go negative. A violation here means the
// year engine or sequencer has a bug, not an expected depletion (that path
// latches Failed and zeroes balances instead), so it is reported distinctly
// per spec.md §7 ("Internal invariants") rather than folded into Success.
func checkInvariants(states []*domain.AccountState, age int) error {
	for _, st := range states {
		if st.Balance.IsNegative() {
			return fmt.Errorf("%w: account %s negative balance %s at age %d", domain.ErrInvariantViolation, st.Account.ID, st.Balance, age)
		}
	}
	return nil
}
