package calculation

import (
	"github.com/shopspring/decimal"

	"github.com/tribgo/tribgo/internal/domain"
)

var twelve = decimal.NewFromInt(12)

// PersonalImpactCalculator converts a regime's corporate liability into
// per-partner net cash: taxed withdrawal plus proportional dividends, with
// the minimum-tax backstop applied per partner.
type PersonalImpactCalculator struct {
	Tables *domain.TaxTables
}

// NewPersonalImpactCalculator creates a personal-impact calculator.
func NewPersonalImpactCalculator(tables *domain.TaxTables) *PersonalImpactCalculator {
	return &PersonalImpactCalculator{Tables: tables}
}

// Calculate computes the personal impact of one regime result for every
// partner. Partners are independent of each other; the backstop offsets each
// partner's own withheld tax, not a household aggregate.
func (c *PersonalImpactCalculator) Calculate(regime *domain.RegimeResult, inputs domain.CompanyInputs, partners []domain.PartnerConfig) *domain.PersonalImpactResult {
	raw := inputs.MonthlyRevenue.
		Sub(regime.TotalLiability).
		Sub(inputs.Payroll).
		Sub(inputs.CostOfGoods).
		Sub(inputs.OperatingExpenses)

	available := raw
	if available.IsNegative() {
		available = decimal.Zero
	}

	payout := inputs.PayoutPolicy.Fraction()

	result := &domain.PersonalImpactResult{
		Kind:            regime.Kind,
		AvailableProfit: available,
		RawProfit:       raw,
		Partners:        make([]domain.PartnerPersonalResult, 0, len(partners)),
	}

	for _, partner := range partners {
		pr := c.calculatePartner(partner, raw, payout)
		result.Partners = append(result.Partners, pr)
		result.TotalNetCash = result.TotalNetCash.Add(pr.NetCash)
		result.TotalPersonalTax = result.TotalPersonalTax.
			Add(pr.SocialContribution).
			Add(pr.WithdrawalTax).
			Add(pr.DividendTax).
			Add(pr.MinimumTaxTopUp)
	}
	return result
}

func (c *PersonalImpactCalculator) calculatePartner(partner domain.PartnerConfig, rawProfit, payout decimal.Decimal) domain.PartnerPersonalResult {
	p := c.Tables.Personal
	w := partner.Withdrawal

	// Withdrawal: capped social contribution, then the progressive monthly
	// table on the contribution-reduced base, then the statutory relief.
	contributionBase := decimal.Min(w, p.INSSCeiling)
	contribution := contributionBase.Mul(p.INSSRate)
	taxBase := w.Sub(contribution)

	grossTax := monthlyIncomeTax(p.IRPFTable, taxBase)
	relief := withdrawalRelief(p, w)
	withdrawalTax := grossTax.Sub(relief)
	if withdrawalTax.IsNegative() {
		withdrawalTax = decimal.Zero
	}
	netWithdrawal := w.Sub(contribution).Sub(withdrawalTax)

	// Dividends: the raw profit feeds the calculation, but a loss
	// distributes nothing.
	grossDividend := rawProfit.Mul(payout).Mul(partner.ParticipationFraction())
	if grossDividend.IsNegative() {
		grossDividend = decimal.Zero
	}
	exempt := decimal.Min(grossDividend, p.DividendExemption)
	taxable := grossDividend.Sub(exempt)
	dividendTax := taxable.Mul(p.DividendWithholdingRate)
	netDividend := grossDividend.Sub(dividendTax)

	topUp := c.minimumTaxTopUp(w, grossDividend, withdrawalTax, dividendTax)

	return domain.PartnerPersonalResult{
		Name:               partner.Name,
		GrossWithdrawal:    w,
		SocialContribution: contribution,
		WithdrawalTax:      withdrawalTax,
		NetWithdrawal:      netWithdrawal,
		GrossDividend:      grossDividend,
		ExemptDividend:     exempt,
		TaxableDividend:    taxable,
		DividendTax:        dividendTax,
		NetDividend:        netDividend,
		MinimumTaxTopUp:    topUp,
		NetCash:            netWithdrawal.Add(netDividend).Sub(topUp),
	}
}

// monthlyIncomeTax looks up the progressive monthly table: smallest bracket
// whose ceiling covers the base, last bracket as the catch-all, tax never
// negative.
func monthlyIncomeTax(table []domain.IRPFBracket, base decimal.Decimal) decimal.Decimal {
	if base.LessThanOrEqual(decimal.Zero) || len(table) == 0 {
		return decimal.Zero
	}
	row := table[len(table)-1]
	for i := 0; i < len(table)-1; i++ {
		if base.LessThanOrEqual(table[i].Ceiling) {
			row = table[i]
			break
		}
	}
	tax := base.Mul(row.Rate).Sub(row.Deduction)
	if tax.IsNegative() {
		return decimal.Zero
	}
	return tax
}

// withdrawalRelief returns the statutory relief for a withdrawal amount:
// the full cap below the low threshold, linearly decreasing across the
// transition band, zero above it.
func withdrawalRelief(p domain.PersonalParams, withdrawal decimal.Decimal) decimal.Decimal {
	if withdrawal.LessThanOrEqual(p.ReliefFullBelow) {
		return p.ReliefCap
	}
	if withdrawal.GreaterThanOrEqual(p.ReliefZeroAt) {
		return decimal.Zero
	}
	band := p.ReliefZeroAt.Sub(p.ReliefFullBelow)
	remaining := p.ReliefZeroAt.Sub(withdrawal)
	return p.ReliefCap.Mul(remaining).Div(band)
}

// minimumTaxTopUp computes the monthly-equivalent shortfall of the annual
// minimum tax over the taxes already withheld for this partner. Never a
// rebate.
func (c *PersonalImpactCalculator) minimumTaxTopUp(withdrawal, grossDividend, withdrawalTax, dividendTax decimal.Decimal) decimal.Decimal {
	p := c.Tables.Personal
	annualIncome := withdrawal.Add(grossDividend).Mul(twelve)
	if annualIncome.LessThanOrEqual(p.MinTaxFloor) {
		return decimal.Zero
	}

	// Rate ramps linearly from zero at the floor to the capped maximum at
	// the upper breakpoint.
	progress := annualIncome.Sub(p.MinTaxFloor).Div(p.MinTaxFullAt.Sub(p.MinTaxFloor))
	if progress.GreaterThan(decimal.NewFromInt(1)) {
		progress = decimal.NewFromInt(1)
	}
	rate := p.MinTaxMaxRate.Mul(progress)

	minimumTax := annualIncome.Mul(rate)
	alreadyPaid := withdrawalTax.Add(dividendTax).Mul(twelve)
	shortfall := minimumTax.Sub(alreadyPaid)
	if shortfall.IsNegative() {
		return decimal.Zero
	}
	return shortfall.Div(twelve)
}
