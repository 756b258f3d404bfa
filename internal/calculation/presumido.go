package calculation

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/tribgo/tribgo/internal/domain"
)

// PresumidoCalculator computes the presumed-profit regime liability. The
// regime is always eligible; the real-profit obligation above the mandatory
// ceiling is reported as an alert, not an ineligibility.
type PresumidoCalculator struct {
	Tables *domain.TaxTables
}

// NewPresumidoCalculator creates a presumed-profit calculator.
func NewPresumidoCalculator(tables *domain.TaxTables) *PresumidoCalculator {
	return &PresumidoCalculator{Tables: tables}
}

// Calculate computes the presumed-profit result.
func (c *PresumidoCalculator) Calculate(inputs domain.CompanyInputs, rules domain.RegimeRules, regional domain.RegionalRates) (*domain.RegimeResult, *domain.Exclusion, error) {
	p := c.Tables.Presumido
	components := domain.ComponentSet{}
	var alerts []domain.Alert

	baseIRPJ := inputs.MonthlyRevenue.Mul(rules.PresumptionIRPJ)
	baseCSLL := inputs.MonthlyRevenue.Mul(rules.PresumptionCSLL)

	irpj := incomeTaxWithSurtax(baseIRPJ, p.IRPJRate, p.SurtaxRate, p.SurtaxMonthlyExempt)
	irpj, alerts = applyRegionalIncentive(irpj, inputs, regional, c.Tables.IncentiveIRPJReduction, alerts)
	components[domain.ComponentIRPJ] = irpj
	components[domain.ComponentCSLL] = baseCSLL.Mul(p.CSLLRate)

	components[domain.ComponentPIS] = inputs.MonthlyRevenue.Mul(p.PISRate)
	components[domain.ComponentCOFINS] = inputs.MonthlyRevenue.Mul(p.COFINSRate)
	components[domain.ComponentCPP] = inputs.Payroll.Mul(c.Tables.PatronalRate)

	addConsumptionTaxes(components, inputs, rules, regional)

	if alert := mandatoryRealAlert(inputs, c.Tables, "the presumed-profit option is unavailable at this size"); alert != nil {
		alerts = append(alerts, *alert)
	}

	total := components.Sum()
	return &domain.RegimeResult{
		Kind:           domain.RegimePresumido,
		Components:     components,
		OutsideUnified: domain.ComponentSet{},
		TotalLiability: total,
		EffectiveRate:  rateOverRevenue(total, inputs.MonthlyRevenue),
		Alerts:         alerts,
	}, nil, nil
}

// incomeTaxWithSurtax applies the flat corporate income-tax rate plus the
// progressive surtax on the portion of the monthly base above the exempt
// threshold.
func incomeTaxWithSurtax(base, rate, surtaxRate, exempt decimal.Decimal) decimal.Decimal {
	tax := base.Mul(rate)
	excess := base.Sub(exempt)
	if excess.IsPositive() {
		tax = tax.Add(excess.Mul(surtaxRate))
	}
	return tax
}

// applyRegionalIncentive cuts the income-tax component (surtax included) by
// the statutory fraction when the company claims the incentive and the state
// is an incentive area. A claim outside an incentive area is flagged and
// ignored.
func applyRegionalIncentive(irpj decimal.Decimal, inputs domain.CompanyInputs, regional domain.RegionalRates, reduction decimal.Decimal, alerts []domain.Alert) (decimal.Decimal, []domain.Alert) {
	if !inputs.RegionalIncentive {
		return irpj, alerts
	}
	if !regional.IncentiveArea {
		return irpj, append(alerts, domain.Alert{
			Severity: domain.SeverityWarn,
			Code:     "incentive_outside_area",
			Message:  fmt.Sprintf("regional incentive claimed but %s is not an incentive area; no discount applied", regional.State),
		})
	}
	discounted := irpj.Mul(decimal.NewFromInt(1).Sub(reduction))
	return discounted, append(alerts, domain.Alert{
		Severity: domain.SeverityInfo,
		Code:     "regional_incentive",
		Message:  fmt.Sprintf("regional incentive reduced the income-tax component by %s%%", reduction.Mul(decimal.NewFromInt(100)).StringFixed(0)),
	})
}

// addConsumptionTaxes computes the goods or services consumption tax on
// gross revenue: services use the declared municipal rate, goods use the
// state standard or reduced-basket rate.
func addConsumptionTaxes(components domain.ComponentSet, inputs domain.CompanyInputs, rules domain.RegimeRules, regional domain.RegionalRates) {
	if rules.Category.IsService() {
		components[domain.ComponentISS] = inputs.MonthlyRevenue.Mul(inputs.ServiceTaxRate)
		return
	}
	rate := regional.StandardRate
	if inputs.ReducedBasket {
		rate = regional.ReducedRate
	}
	components[domain.ComponentICMS] = inputs.MonthlyRevenue.Mul(rate)
}

// mandatoryRealAlert warns when annualized revenue is above the ceiling that
// makes the real-profit regime mandatory.
func mandatoryRealAlert(inputs domain.CompanyInputs, tables *domain.TaxTables, note string) *domain.Alert {
	annual := inputs.AnnualizedRevenue()
	if annual.LessThanOrEqual(tables.RealMandatoryCeiling) {
		return nil
	}
	return &domain.Alert{
		Severity: domain.SeverityWarn,
		Code:     "real_profit_mandatory",
		Message: fmt.Sprintf("annualized revenue %s exceeds %s: the real-profit regime is mandatory; %s",
			annual.StringFixed(2), tables.RealMandatoryCeiling.StringFixed(2), note),
	}
}

// rateOverRevenue divides the total liability by monthly revenue, guarding
// against a zero-revenue snapshot.
func rateOverRevenue(total, revenue decimal.Decimal) decimal.Decimal {
	if revenue.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	return total.Div(revenue)
}
