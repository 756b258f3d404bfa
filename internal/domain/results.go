package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AlertSeverity grades an alert. Only error severity blocks calculation.
type AlertSeverity string

const (
	SeverityError AlertSeverity = "error"
	SeverityWarn  AlertSeverity = "warn"
	SeverityInfo  AlertSeverity = "info"
)

// Alert is an advisory or blocking message attached to a run or a regime.
type Alert struct {
	Severity AlertSeverity `json:"severity"`
	Code     string        `json:"code"`
	Message  string        `json:"message"`
}

// HasBlocking reports whether any alert in the list carries error severity.
func HasBlocking(alerts []Alert) bool {
	for _, a := range alerts {
		if a.Severity == SeverityError {
			return true
		}
	}
	return false
}

// TaxComponent names one liability component inside a regime result.
type TaxComponent string

const (
	ComponentIRPJ   TaxComponent = "irpj"   // corporate income tax
	ComponentCSLL   TaxComponent = "csll"   // social contribution on profit
	ComponentPIS    TaxComponent = "pis"    // turnover tax
	ComponentCOFINS TaxComponent = "cofins" // turnover tax
	ComponentCPP    TaxComponent = "cpp"    // patronal payroll charge
	ComponentICMS   TaxComponent = "icms"   // goods consumption tax
	ComponentISS    TaxComponent = "iss"    // services consumption tax
)

// ComponentOrder fixes the presentation and iteration order of components.
var ComponentOrder = []TaxComponent{
	ComponentIRPJ, ComponentCSLL, ComponentPIS, ComponentCOFINS,
	ComponentCPP, ComponentICMS, ComponentISS,
}

// ComponentSet is a liability breakdown keyed by component.
type ComponentSet map[TaxComponent]decimal.Decimal

// Sum adds every component amount.
func (cs ComponentSet) Sum() decimal.Decimal {
	total := decimal.Zero
	for _, c := range ComponentOrder {
		if v, ok := cs[c]; ok {
			total = total.Add(v)
		}
	}
	return total
}

// Clone returns an independent copy of the set.
func (cs ComponentSet) Clone() ComponentSet {
	out := make(ComponentSet, len(cs))
	for k, v := range cs {
		out[k] = v
	}
	return out
}

// RegimeResult is the corporate liability outcome for one regime. Instances
// are created fresh per run and never mutated after creation.
type RegimeResult struct {
	Kind RegimeKind `json:"kind"`
	// Components holds the amounts collected inside the regime's unified or
	// ordinary document; OutsideUnified holds amounts pushed out of it
	// (sub-ceiling ICMS/ISS, Annex IV patronal charge).
	Components     ComponentSet    `json:"components"`
	OutsideUnified ComponentSet    `json:"outside_unified,omitempty"`
	TotalLiability decimal.Decimal `json:"total_liability"`
	EffectiveRate  decimal.Decimal `json:"effective_rate"`
	// SelectedAnnex and SelectedBracket are set for the simplified regime
	// only; SelectedBracket is 1-based.
	SelectedAnnex   AnnexID `json:"selected_annex,omitempty"`
	SelectedBracket int     `json:"selected_bracket,omitempty"`
	Alerts          []Alert `json:"alerts,omitempty"`
}

// LiabilitySum recomputes the total from the component breakdown. It must
// equal TotalLiability within floating tolerance.
func (r *RegimeResult) LiabilitySum() decimal.Decimal {
	return r.Components.Sum().Add(r.OutsideUnified.Sum())
}

// Exclusion reports a regime that was ineligible for this company. An
// exclusion is a valid outcome, not an error.
type Exclusion struct {
	Kind   RegimeKind `json:"kind"`
	Reason string     `json:"reason"`
}

// PartnerPersonalResult is the per-partner net cash breakdown for one regime.
type PartnerPersonalResult struct {
	Name string `json:"name"`

	GrossWithdrawal    decimal.Decimal `json:"gross_withdrawal"`
	SocialContribution decimal.Decimal `json:"social_contribution"`
	WithdrawalTax      decimal.Decimal `json:"withdrawal_tax"`
	NetWithdrawal      decimal.Decimal `json:"net_withdrawal"`

	GrossDividend   decimal.Decimal `json:"gross_dividend"`
	ExemptDividend  decimal.Decimal `json:"exempt_dividend"`
	TaxableDividend decimal.Decimal `json:"taxable_dividend"`
	DividendTax     decimal.Decimal `json:"dividend_tax"`
	NetDividend     decimal.Decimal `json:"net_dividend"`

	MinimumTaxTopUp decimal.Decimal `json:"minimum_tax_top_up"`
	NetCash         decimal.Decimal `json:"net_cash"`
}

// PersonalImpactResult aggregates partner outcomes for one regime result.
// The ranking engine sorts on TotalNetCash, never on a single partner.
type PersonalImpactResult struct {
	Kind RegimeKind `json:"kind"`
	// AvailableProfit is floored at zero for reporting; RawProfit keeps the
	// unfloored value that feeds the personal calculation.
	AvailableProfit  decimal.Decimal         `json:"available_profit"`
	RawProfit        decimal.Decimal         `json:"raw_profit"`
	Partners         []PartnerPersonalResult `json:"partners"`
	TotalNetCash     decimal.Decimal         `json:"total_net_cash"`
	TotalPersonalTax decimal.Decimal         `json:"total_personal_tax"`
}

// RankedRegime pairs a regime result with its personal impact and rank.
type RankedRegime struct {
	Rank     int                   `json:"rank"`
	Regime   *RegimeResult         `json:"regime"`
	Personal *PersonalImpactResult `json:"personal"`
}

// ScenarioAllocation is one partner's slice of a distribution strategy.
type ScenarioAllocation struct {
	Name     string          `json:"name"`
	Gross    decimal.Decimal `json:"gross"`
	Exempt   decimal.Decimal `json:"exempt"`
	Taxable  decimal.Decimal `json:"taxable"`
	Withheld decimal.Decimal `json:"withheld"`
	Net      decimal.Decimal `json:"net"`
}

// Scenario is a named dividend-distribution strategy. Scenarios are pure
// outputs; they are never persisted as engine state.
type Scenario struct {
	Name          string               `json:"name"`
	Strategy      string               `json:"strategy"`
	Allocations   []ScenarioAllocation `json:"allocations"`
	TotalWithheld decimal.Decimal      `json:"total_withheld"`
	TotalRetained decimal.Decimal      `json:"total_retained"`
}

// CalculationRun is the immutable envelope returned by one engine run. It
// echoes the company and partner snapshot so a serialized run is
// self-describing.
type CalculationRun struct {
	ID           string          `json:"id"`
	SnapshotDate time.Time       `json:"snapshot_date"`
	Company      CompanyInputs   `json:"company"`
	Partners     []PartnerConfig `json:"partners"`
	Alerts       []Alert         `json:"alerts,omitempty"`
	Rules        RegimeRules     `json:"rules"`
	Regional     RegionalRates   `json:"regional"`
	Ranked       []RankedRegime  `json:"ranked"`
	Exclusions   []Exclusion     `json:"exclusions,omitempty"`
	Scenarios    []Scenario      `json:"scenarios,omitempty"`
}

// Winner returns the rank-1 regime, or nil when every regime was excluded.
func (r *CalculationRun) Winner() *RankedRegime {
	if len(r.Ranked) == 0 {
		return nil
	}
	return &r.Ranked[0]
}
