package calculation

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/tribgo/tribgo/internal/domain"
)

// participationTolerance is the accepted drift of the participation sum
// around 100 percentage points.
var participationTolerance = decimal.NewFromFloat(0.5)

// Validate runs the cross-field consistency checks over the raw inputs.
// Alerts with error severity block calculation; warn and info alerts are
// advisory and the run proceeds.
func Validate(inputs domain.CompanyInputs, partners []domain.PartnerConfig) []domain.Alert {
	var alerts []domain.Alert
	add := func(severity domain.AlertSeverity, code, message string) {
		alerts = append(alerts, domain.Alert{Severity: severity, Code: code, Message: message})
	}

	// Checked in a fixed order so the alert list is identical run to run.
	monetary := []struct {
		name  string
		value decimal.Decimal
	}{
		{"monthly_revenue", inputs.MonthlyRevenue},
		{"payroll", inputs.Payroll},
		{"cost_of_goods", inputs.CostOfGoods},
		{"operating_expenses", inputs.OperatingExpenses},
	}
	for _, f := range monetary {
		if f.value.IsNegative() {
			add(domain.SeverityError, "negative_amount", fmt.Sprintf("%s cannot be negative", f.name))
		}
	}

	if inputs.DeclaredMargin.IsNegative() || inputs.DeclaredMargin.GreaterThan(decimal.NewFromInt(1)) {
		add(domain.SeverityError, "margin_out_of_range", "declared margin must be a ratio between 0 and 1")
	}
	if inputs.ServiceTaxRate.IsNegative() || inputs.ServiceTaxRate.GreaterThan(decimal.NewFromInt(1)) {
		add(domain.SeverityError, "service_rate_out_of_range", "service tax rate must be a ratio between 0 and 1")
	}

	if len(partners) == 0 {
		add(domain.SeverityError, "no_partners", "at least one partner is required")
	}

	sum := decimal.Zero
	withdrawals := decimal.Zero
	for _, p := range partners {
		if p.Participation.IsNegative() || p.Participation.GreaterThan(decimal.NewFromInt(100)) {
			add(domain.SeverityError, "participation_out_of_range",
				fmt.Sprintf("partner %s: participation %s must be between 0 and 100", p.Name, p.Participation))
		}
		if p.Withdrawal.IsNegative() {
			add(domain.SeverityError, "negative_withdrawal",
				fmt.Sprintf("partner %s: withdrawal cannot be negative", p.Name))
		}
		if p.Withdrawal.IsZero() {
			add(domain.SeverityWarn, "missing_withdrawal",
				fmt.Sprintf("partner %s has no fixed withdrawal; personal taxation will cover dividends only", p.Name))
		}
		sum = sum.Add(p.Participation)
		withdrawals = withdrawals.Add(p.Withdrawal)
	}

	if len(partners) > 0 {
		drift := sum.Sub(decimal.NewFromInt(100)).Abs()
		if drift.GreaterThan(participationTolerance) {
			add(domain.SeverityError, "participation_sum",
				fmt.Sprintf("partner participations sum to %s, expected 100 (±%s)", sum, participationTolerance))
		}
	}

	if withdrawals.GreaterThan(inputs.MonthlyRevenue) {
		add(domain.SeverityError, "withdrawals_exceed_revenue",
			fmt.Sprintf("total withdrawals %s exceed monthly revenue %s", withdrawals.StringFixed(2), inputs.MonthlyRevenue.StringFixed(2)))
	}

	costs := inputs.Payroll.Add(inputs.CostOfGoods).Add(inputs.OperatingExpenses)
	if costs.GreaterThan(inputs.MonthlyRevenue) {
		add(domain.SeverityWarn, "operating_loss",
			fmt.Sprintf("monthly costs %s exceed revenue %s: the company operates at a loss and no profit is distributable",
				costs.StringFixed(2), inputs.MonthlyRevenue.StringFixed(2)))
	}

	if inputs.EmployeeCount == 0 && inputs.Payroll.IsPositive() {
		add(domain.SeverityWarn, "payroll_without_employees",
			"payroll is positive but the employee count is zero")
	}

	if inputs.DeclaredMargin.IsZero() {
		add(domain.SeverityInfo, "zero_margin",
			"declared margin is zero: the real-profit regime will carry no profit taxes")
	}

	if inputs.InterstateSales {
		add(domain.SeverityInfo, "interstate_sales",
			"interstate sales declared: destination-state rate splits are not modeled; origin-state rates apply throughout")
	}

	return alerts
}
