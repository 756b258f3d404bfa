package calculation

import (
	"github.com/shopspring/decimal"

	"github.com/tribgo/tribgo/internal/domain"
)

// RealCalculator computes the real-profit regime liability. Identical in
// structure to the presumed-profit calculator, except that the profit base
// comes from the declared margin and the two turnover taxes are
// non-cumulative with input credits.
type RealCalculator struct {
	Tables *domain.TaxTables
}

// NewRealCalculator creates a real-profit calculator.
func NewRealCalculator(tables *domain.TaxTables) *RealCalculator {
	return &RealCalculator{Tables: tables}
}

// Calculate computes the real-profit result. Always eligible.
func (c *RealCalculator) Calculate(inputs domain.CompanyInputs, rules domain.RegimeRules, regional domain.RegionalRates) (*domain.RegimeResult, *domain.Exclusion, error) {
	p := c.Tables.Presumido
	r := c.Tables.Real
	components := domain.ComponentSet{}
	var alerts []domain.Alert

	profitBase := inputs.MonthlyRevenue.Mul(inputs.DeclaredMargin)

	irpj := incomeTaxWithSurtax(profitBase, p.IRPJRate, p.SurtaxRate, p.SurtaxMonthlyExempt)
	irpj, alerts = applyRegionalIncentive(irpj, inputs, regional, c.Tables.IncentiveIRPJReduction, alerts)
	components[domain.ComponentIRPJ] = irpj
	components[domain.ComponentCSLL] = profitBase.Mul(p.CSLLRate)

	creditBase := inputs.CostOfGoods.Add(inputs.OperatingExpenses.Mul(r.OpexCreditFraction))
	components[domain.ComponentPIS] = nonCumulative(inputs.MonthlyRevenue, creditBase, r.PISRate)
	components[domain.ComponentCOFINS] = nonCumulative(inputs.MonthlyRevenue, creditBase, r.COFINSRate)
	components[domain.ComponentCPP] = inputs.Payroll.Mul(c.Tables.PatronalRate)

	addConsumptionTaxes(components, inputs, rules, regional)

	if alert := mandatoryRealAlert(inputs, c.Tables, "this regime applies"); alert != nil {
		alerts = append(alerts, *alert)
	}

	total := components.Sum()
	return &domain.RegimeResult{
		Kind:           domain.RegimeReal,
		Components:     components,
		OutsideUnified: domain.ComponentSet{},
		TotalLiability: total,
		EffectiveRate:  rateOverRevenue(total, inputs.MonthlyRevenue),
		Alerts:         alerts,
	}, nil, nil
}

// nonCumulative computes a turnover tax on gross revenue net of the input
// credit at the same rate, floored at zero.
func nonCumulative(revenue, creditBase, rate decimal.Decimal) decimal.Decimal {
	tax := revenue.Mul(rate).Sub(creditBase.Mul(rate))
	if tax.IsNegative() {
		return decimal.Zero
	}
	return tax
}
