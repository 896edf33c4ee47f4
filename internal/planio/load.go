// Package planio loads a plan from a YAML file for CLI and test use. It is
// a convenience collaborator, not part of the engine's contract: simulate
// still takes an in-memory domain.Plan value.
package planio

import (
	"fmt"
	"os"

	"github.com/aldenbrook/retiresim/internal/domain"
	"gopkg.in/yaml.v3"
)

// LoadFromFile reads and validates a plan, following the teacher's
// InputParser.LoadFromFile shape: read, unmarshal, validate every field
// before returning instead of failing on the first bad one.
func LoadFromFile(path string) (*domain.Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading plan file %s: %w", path, err)
	}

	var plan domain.Plan
	if err := yaml.Unmarshal(data, &plan); err != nil {
		return nil, fmt.Errorf("parsing plan YAML: %w", err)
	}

	for i := range plan.Accounts {
		if plan.Accounts[i].ID == (domain.AccountID{}) {
			plan.Accounts[i].ID = domain.NewAccountID()
		}
	}

	if errs := domain.ValidatePlan(&plan); len(errs) > 0 {
		return nil, fmt.Errorf("plan validation failed: %w", errs.AsError())
	}

	return &plan, nil
}

// LoadRunConfigFromFile reads a run-batch configuration from its own small
// YAML document, kept separate from the plan file since it configures
// execution, not the household being modeled.
func LoadRunConfigFromFile(path string) (*domain.RunConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading run config file %s: %w", path, err)
	}

	var cfg domain.RunConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing run config YAML: %w", err)
	}

	if errs := domain.ValidateRunConfig(&cfg); len(errs) > 0 {
		return nil, fmt.Errorf("run config validation failed: %w", errs.AsError())
	}

	return &cfg, nil
}
