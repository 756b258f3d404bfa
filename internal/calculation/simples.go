// Package calculation implements the three regime calculators, the
// per-partner impact calculator, input validation and the orchestration
// engine. Everything here is a pure function over an immutable input
// snapshot; results are built fresh per run and never mutated afterwards.
package calculation

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/tribgo/tribgo/internal/domain"
)

// SimplesCalculator computes the unified-regime (Simples Nacional)
// liability.
type SimplesCalculator struct {
	Tables *domain.TaxTables
}

// NewSimplesCalculator creates a simplified-regime calculator.
func NewSimplesCalculator(tables *domain.TaxTables) *SimplesCalculator {
	return &SimplesCalculator{Tables: tables}
}

// simplesRun is the mutable-within-call accumulator threaded through the
// adjustment pipeline. Later steps depend on components already zeroed by
// earlier ones, so the step order is load-bearing.
type simplesRun struct {
	inputs     domain.CompanyInputs
	rules      domain.RegimeRules
	regional   domain.RegionalRates
	annex      domain.AnnexID
	bracket    int // 1-based
	components domain.ComponentSet
	outside    domain.ComponentSet
	alerts     []domain.Alert
	// substitutionApplied records that the goods consumption tax was zeroed
	// by the substitution step; the sub-ceiling push-out must not recreate
	// a component that was already collected upstream.
	substitutionApplied bool
}

func (r *simplesRun) alert(severity domain.AlertSeverity, code, message string) {
	r.alerts = append(r.alerts, domain.Alert{Severity: severity, Code: code, Message: message})
}

// adjustment is one named step of the post-split pipeline.
type adjustment struct {
	name  string
	apply func(*simplesRun)
}

// Calculate returns the regime result, or an exclusion when the company is
// ineligible. An error means a malformed bracket table and aborts the run.
func (c *SimplesCalculator) Calculate(inputs domain.CompanyInputs, rules domain.RegimeRules, regional domain.RegionalRates) (*domain.RegimeResult, *domain.Exclusion, error) {
	if rules.Barred {
		reason := rules.BarredReason
		if reason == "" {
			reason = "activity barred from the simplified regime"
		}
		return nil, &domain.Exclusion{Kind: domain.RegimeSimples, Reason: reason}, nil
	}

	annual := inputs.AnnualizedRevenue()
	if annual.GreaterThan(c.Tables.SimplesCeiling) {
		return nil, &domain.Exclusion{
			Kind:   domain.RegimeSimples,
			Reason: fmt.Sprintf("annualized revenue %s exceeds the regime ceiling %s", annual.StringFixed(2), c.Tables.SimplesCeiling.StringFixed(2)),
		}, nil
	}

	run := &simplesRun{
		inputs:     inputs,
		rules:      rules,
		regional:   regional,
		components: domain.ComponentSet{},
		outside:    domain.ComponentSet{},
	}

	annex, excl := c.selectAnnex(run)
	if excl != nil {
		return nil, excl, nil
	}
	run.annex = annex

	brackets, ok := c.Tables.Annexes[annex]
	if !ok || len(brackets) == 0 {
		return nil, nil, fmt.Errorf("simples: no bracket table for annex %s", annex)
	}

	idx := selectBracket(brackets, annual)
	run.bracket = idx + 1
	row := brackets[idx]

	effective := effectiveRate(row, annual)
	gross := inputs.MonthlyRevenue.Mul(effective)
	for _, comp := range domain.ComponentOrder {
		share := row.Split.Share(comp)
		if share.IsPositive() {
			run.components[comp] = gross.Mul(share)
		}
	}

	for _, step := range c.pipeline() {
		step.apply(run)
	}

	total := run.components.Sum().Add(run.outside.Sum())
	return &domain.RegimeResult{
		Kind:            domain.RegimeSimples,
		Components:      run.components,
		OutsideUnified:  run.outside,
		TotalLiability:  total,
		EffectiveRate:   effective,
		SelectedAnnex:   annex,
		SelectedBracket: run.bracket,
		Alerts:          run.alerts,
	}, nil, nil
}

// selectAnnex applies the payroll-ratio (Fator R) test for ratio-sensitive
// activities: the cheaper family at or above the threshold, the costlier one
// below it. A hard step, no interpolation.
func (c *SimplesCalculator) selectAnnex(run *simplesRun) (domain.AnnexID, *domain.Exclusion) {
	annex := run.rules.Annex
	if run.rules.PayrollRatioSensitive {
		ratio := run.inputs.PayrollRatio()
		if ratio.GreaterThanOrEqual(c.Tables.FatorRThreshold) {
			annex = domain.AnnexIII
		} else {
			annex = domain.AnnexV
			run.alert(domain.SeverityWarn, "fator_r_below_threshold",
				fmt.Sprintf("payroll ratio %s below %s: the costlier bracket family %s applies",
					ratio.StringFixed(4), c.Tables.FatorRThreshold.StringFixed(2), annex))
		}
	}
	if !annex.Valid() {
		return "", &domain.Exclusion{Kind: domain.RegimeSimples, Reason: fmt.Sprintf("bracket family %s is not admitted", annex)}
	}
	return annex, nil
}

// selectBracket returns the index of the smallest bracket whose ceiling
// covers the annualized revenue. The last bracket is the catch-all.
func selectBracket(brackets []domain.SimplesBracket, annual decimal.Decimal) int {
	for i, b := range brackets {
		if annual.LessThanOrEqual(b.Ceiling) {
			return i
		}
	}
	return len(brackets) - 1
}

// effectiveRate applies the progressive formula
// (annual*rate - deduction) / annual, floored at zero.
func effectiveRate(row domain.SimplesBracket, annual decimal.Decimal) decimal.Decimal {
	if annual.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	rate := annual.Mul(row.Rate).Sub(row.Deduction).Div(annual)
	if rate.IsNegative() {
		return decimal.Zero
	}
	return rate
}

// pipeline returns the ordered adjustment steps. Order matters: the
// sub-ceiling push-out must see components already zeroed by the
// single-phase and substitution steps.
func (c *SimplesCalculator) pipeline() []adjustment {
	return []adjustment{
		{name: "monophase", apply: c.applyMonophase},
		{name: "substitution", apply: c.applySubstitution},
		{name: "patronal_exclusion", apply: c.applyPatronalExclusion},
		{name: "sublimite", apply: c.applySublimite},
	}
}

// applyMonophase zeroes the two turnover-tax components for single-phase
// products, whose PIS/COFINS were already collected upstream.
func (c *SimplesCalculator) applyMonophase(run *simplesRun) {
	if !run.rules.Monophase {
		return
	}
	run.components[domain.ComponentPIS] = decimal.Zero
	run.components[domain.ComponentCOFINS] = decimal.Zero
	run.alert(domain.SeverityInfo, "monophase_product",
		"single-phase products: turnover taxes collected upstream were removed from the unified document")
}

// applySubstitution zeroes the goods consumption-tax component when the
// company sells under tax substitution.
func (c *SimplesCalculator) applySubstitution(run *simplesRun) {
	if !run.inputs.TaxSubstitution {
		return
	}
	if v, ok := run.components[domain.ComponentICMS]; ok && v.IsPositive() {
		run.components[domain.ComponentICMS] = decimal.Zero
		run.substitutionApplied = true
		run.alert(domain.SeverityInfo, "tax_substitution",
			"tax substitution: the goods consumption tax was removed from the unified document")
	}
}

// applyPatronalExclusion recomputes the payroll charge outside the unified
// document for Annex IV, whose split carries no CPP share.
func (c *SimplesCalculator) applyPatronalExclusion(run *simplesRun) {
	if run.annex != domain.AnnexIV {
		return
	}
	run.components[domain.ComponentCPP] = decimal.Zero
	run.outside[domain.ComponentCPP] = run.inputs.Payroll.Mul(c.Tables.PatronalRate)
	run.alert(domain.SeverityWarn, "patronal_outside_unified",
		fmt.Sprintf("bracket family %s collects the patronal payroll charge outside the unified document", run.annex))
}

// applySublimite pushes the consumption-tax components out of the unified
// document when annualized revenue exceeds the regional sub-ceiling. The
// replacement is computed on full monthly revenue, matching the historical
// behavior, not only on the portion above the sub-ceiling.
func (c *SimplesCalculator) applySublimite(run *simplesRun) {
	annual := run.inputs.AnnualizedRevenue()
	if annual.LessThanOrEqual(run.regional.Sublimite) {
		return
	}

	run.components[domain.ComponentICMS] = decimal.Zero
	run.components[domain.ComponentISS] = decimal.Zero

	if run.rules.Category.IsService() {
		run.outside[domain.ComponentISS] = run.inputs.MonthlyRevenue.Mul(run.inputs.ServiceTaxRate)
	} else if !run.substitutionApplied {
		rate := run.regional.StandardRate
		if run.inputs.ReducedBasket {
			rate = run.regional.ReducedRate
		}
		run.outside[domain.ComponentICMS] = run.inputs.MonthlyRevenue.Mul(rate)
	}
	run.alert(domain.SeverityWarn, "sublimite_exceeded",
		fmt.Sprintf("annualized revenue %s exceeds the regional sub-ceiling %s: consumption taxes are collected outside the unified document",
			annual.StringFixed(2), run.regional.Sublimite.StringFixed(2)))
}
