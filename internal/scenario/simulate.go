// Package scenario generates alternative dividend-distribution strategies
// across partners. Simulation is a pure function: partner configurations
// are never mutated and scenarios are never persisted as engine state.
package scenario

import (
	"github.com/shopspring/decimal"

	"github.com/tribgo/tribgo/internal/domain"
)

// Strategy identifiers.
const (
	StrategyProportional      = "proportional"
	StrategyEqualSplit        = "equal_split"
	StrategyMaximizeExemption = "maximize_exemption"
)

// Simulate produces the named distribution strategies for the distributable
// profit. The maximize-exemption strategy is only offered when the naive
// proportional distribution would exceed the exemption threshold for every
// partner.
func Simulate(availableProfit decimal.Decimal, partners []domain.PartnerConfig, payoutFraction decimal.Decimal, personal domain.PersonalParams) []domain.Scenario {
	if len(partners) == 0 {
		return nil
	}
	distributable := availableProfit.Mul(payoutFraction)
	if distributable.IsNegative() {
		distributable = decimal.Zero
	}

	proportional := proportionalAllocations(distributable, partners)

	scenarios := []domain.Scenario{
		buildScenario("Proportional to participation", StrategyProportional, partners, proportional, distributable, personal),
		buildScenario("Equal split", StrategyEqualSplit, partners, equalAllocations(distributable, len(partners)), distributable, personal),
	}

	if allExceedExemption(proportional, personal.DividendExemption) {
		capped := make([]decimal.Decimal, len(partners))
		for i := range partners {
			capped[i] = personal.DividendExemption
		}
		scenarios = append(scenarios,
			buildScenario("Maximize exemption (retain remainder)", StrategyMaximizeExemption, partners, capped, distributable, personal))
	}
	return scenarios
}

// MinWithholding returns the index of the scenario with the lowest
// aggregate withholding, or -1 for an empty list. Earlier scenarios win
// ties so the choice is deterministic.
func MinWithholding(scenarios []domain.Scenario) int {
	best := -1
	for i, s := range scenarios {
		if best < 0 || s.TotalWithheld.LessThan(scenarios[best].TotalWithheld) {
			best = i
		}
	}
	return best
}

func proportionalAllocations(distributable decimal.Decimal, partners []domain.PartnerConfig) []decimal.Decimal {
	out := make([]decimal.Decimal, len(partners))
	for i, p := range partners {
		out[i] = distributable.Mul(p.ParticipationFraction())
	}
	return out
}

func equalAllocations(distributable decimal.Decimal, n int) []decimal.Decimal {
	share := distributable.Div(decimal.NewFromInt(int64(n)))
	out := make([]decimal.Decimal, n)
	for i := range out {
		out[i] = share
	}
	return out
}

func allExceedExemption(allocations []decimal.Decimal, exemption decimal.Decimal) bool {
	for _, a := range allocations {
		if a.LessThanOrEqual(exemption) {
			return false
		}
	}
	return len(allocations) > 0
}

func buildScenario(name, strategy string, partners []domain.PartnerConfig, allocations []decimal.Decimal, distributable decimal.Decimal, personal domain.PersonalParams) domain.Scenario {
	s := domain.Scenario{Name: name, Strategy: strategy}
	allocated := decimal.Zero

	for i, partner := range partners {
		gross := allocations[i]
		exempt := decimal.Min(gross, personal.DividendExemption)
		taxable := gross.Sub(exempt)
		withheld := taxable.Mul(personal.DividendWithholdingRate)

		s.Allocations = append(s.Allocations, domain.ScenarioAllocation{
			Name:     partner.Name,
			Gross:    gross,
			Exempt:   exempt,
			Taxable:  taxable,
			Withheld: withheld,
			Net:      gross.Sub(withheld),
		})
		s.TotalWithheld = s.TotalWithheld.Add(withheld)
		allocated = allocated.Add(gross)
	}

	retained := distributable.Sub(allocated)
	if retained.IsNegative() {
		retained = decimal.Zero
	}
	s.TotalRetained = retained
	return s
}
