package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ActivityCategory is the declared business category of the company.
type ActivityCategory string

const (
	CategoryCommerce     ActivityCategory = "commerce"
	CategoryIndustry     ActivityCategory = "industry"
	CategoryService      ActivityCategory = "service"
	CategoryConstruction ActivityCategory = "construction"
)

// IsService reports whether the category is taxed as a service activity
// (ISS on revenue instead of ICMS).
func (c ActivityCategory) IsService() bool {
	return c == CategoryService || c == CategoryConstruction
}

// PayoutPolicy controls what share of the available profit is distributed
// to partners as dividends.
type PayoutPolicy string

const (
	PayoutFull PayoutPolicy = "full"
	PayoutHalf PayoutPolicy = "half"
	PayoutNone PayoutPolicy = "none"
)

// Fraction returns the distributed share of available profit for the policy.
// Unknown policies distribute everything.
func (p PayoutPolicy) Fraction() decimal.Decimal {
	switch p {
	case PayoutHalf:
		return decimal.NewFromFloat(0.5)
	case PayoutNone:
		return decimal.Zero
	default:
		return decimal.NewFromInt(1)
	}
}

// CompanyInputs is the immutable per-run snapshot of the company.
// All monetary fields are monthly decimal currency amounts; rates are
// unitless ratios in [0, 1].
type CompanyInputs struct {
	MonthlyRevenue    decimal.Decimal  `yaml:"monthly_revenue" json:"monthly_revenue"`
	Payroll           decimal.Decimal  `yaml:"payroll" json:"payroll"`
	CostOfGoods       decimal.Decimal  `yaml:"cost_of_goods" json:"cost_of_goods"`
	OperatingExpenses decimal.Decimal  `yaml:"operating_expenses" json:"operating_expenses"`
	EmployeeCount     int              `yaml:"employee_count" json:"employee_count"`
	DeclaredMargin    decimal.Decimal  `yaml:"declared_margin" json:"declared_margin"`
	GrowthRate        decimal.Decimal  `yaml:"growth_rate" json:"growth_rate"`
	ActivityCode      string           `yaml:"activity_code" json:"activity_code"`
	Category          ActivityCategory `yaml:"category" json:"category"`
	State             string           `yaml:"state" json:"state"`
	Municipality      string           `yaml:"municipality" json:"municipality"`
	ServiceTaxRate    decimal.Decimal  `yaml:"service_tax_rate" json:"service_tax_rate"`
	TaxSubstitution   bool             `yaml:"tax_substitution" json:"tax_substitution"`
	ReducedBasket     bool             `yaml:"reduced_basket" json:"reduced_basket"`
	RegionalIncentive bool             `yaml:"regional_incentive" json:"regional_incentive"`
	InterstateSales   bool             `yaml:"interstate_sales" json:"interstate_sales"`
	PayoutPolicy      PayoutPolicy     `yaml:"payout_policy" json:"payout_policy"`
	SnapshotDate      time.Time        `yaml:"snapshot_date" json:"snapshot_date"`
}

// AnnualizedRevenue projects the monthly revenue over twelve months. Bracket
// tables and ceilings are expressed against this figure.
func (c CompanyInputs) AnnualizedRevenue() decimal.Decimal {
	return c.MonthlyRevenue.Mul(decimal.NewFromInt(12))
}

// PayrollRatio returns payroll divided by revenue (the "Fator R").
// A company with no revenue has a ratio of zero.
func (c CompanyInputs) PayrollRatio() decimal.Decimal {
	if c.MonthlyRevenue.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	return c.Payroll.Div(c.MonthlyRevenue)
}

// PartnerConfig describes one equity partner. Participation is a percentage
// in [0, 100]; Withdrawal is the fixed monthly pro-labore amount.
type PartnerConfig struct {
	Name          string          `yaml:"name" json:"name"`
	Participation decimal.Decimal `yaml:"participation" json:"participation"`
	Withdrawal    decimal.Decimal `yaml:"withdrawal" json:"withdrawal"`
}

// ParticipationFraction converts the percentage participation into a ratio.
func (p PartnerConfig) ParticipationFraction() decimal.Decimal {
	return p.Participation.Div(decimal.NewFromInt(100))
}

// EqualizePartners returns a copy of the partner set with participation
// rebalanced to an even split that sums to exactly 100. This is the only
// path that adjusts participations; the validator rejects any other set
// that does not sum to 100 within tolerance.
func EqualizePartners(partners []PartnerConfig) []PartnerConfig {
	if len(partners) == 0 {
		return nil
	}
	out := make([]PartnerConfig, len(partners))
	copy(out, partners)

	hundred := decimal.NewFromInt(100)
	share := hundred.Div(decimal.NewFromInt(int64(len(partners)))).RoundDown(2)
	for i := range out {
		out[i].Participation = share
	}
	// Put the rounding remainder on the last partner so the sum is exact.
	allocated := share.Mul(decimal.NewFromInt(int64(len(partners) - 1)))
	out[len(out)-1].Participation = hundred.Sub(allocated)
	return out
}
