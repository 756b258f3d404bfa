package domain

import "github.com/shopspring/decimal"

// RegimeKind identifies one of the three mutually exclusive fiscal regimes.
type RegimeKind string

const (
	RegimeSimples   RegimeKind = "simples"
	RegimePresumido RegimeKind = "presumido"
	RegimeReal      RegimeKind = "real"
)

// AllRegimes lists the regimes in canonical order.
var AllRegimes = []RegimeKind{RegimeSimples, RegimePresumido, RegimeReal}

// AnnexID identifies a Simples Nacional bracket family. The set is closed:
// unknown identifiers are rejected at resolution time, not at use time.
type AnnexID string

const (
	AnnexI   AnnexID = "I"
	AnnexII  AnnexID = "II"
	AnnexIII AnnexID = "III"
	AnnexIV  AnnexID = "IV"
	AnnexV   AnnexID = "V"
)

// KnownAnnexes lists every valid bracket family.
var KnownAnnexes = []AnnexID{AnnexI, AnnexII, AnnexIII, AnnexIV, AnnexV}

// Valid reports whether the identifier names a known bracket family.
func (a AnnexID) Valid() bool {
	for _, k := range KnownAnnexes {
		if a == k {
			return true
		}
	}
	return false
}

// Provenance records how a rule record was obtained.
type Provenance string

const (
	// ProvenanceExact means the activity code matched the classification table.
	ProvenanceExact Provenance = "exact"
	// ProvenanceEstimated means category-level defaults were used because the
	// activity code was unknown. Non-fatal; surfaced as an advisory.
	ProvenanceEstimated Provenance = "estimated"
)

// RegimeRules is the resolved rule record for an activity code. Immutable
// once resolved for a given code.
type RegimeRules struct {
	ActivityCode string           `json:"activity_code"`
	Category     ActivityCategory `json:"category"`
	Annex        AnnexID          `json:"annex"`
	// PresumptionIRPJ and PresumptionCSLL are the two presumed-profit base
	// percentages applied to gross revenue.
	PresumptionIRPJ decimal.Decimal `json:"presumption_irpj"`
	PresumptionCSLL decimal.Decimal `json:"presumption_csll"`
	Barred          bool            `json:"barred"`
	BarredReason    string          `json:"barred_reason,omitempty"`
	Monophase       bool            `json:"monophase"`
	// PayrollRatioSensitive marks activities whose bracket family depends on
	// the Fator R test (Annex III vs Annex V).
	PayrollRatioSensitive bool       `json:"payroll_ratio_sensitive"`
	Provenance            Provenance `json:"provenance"`
}

// RegionalRates carries the per-state parameters used by the calculators.
type RegionalRates struct {
	State string `json:"state"`
	// StandardRate and ReducedRate are the goods consumption-tax (ICMS)
	// rates applied to revenue when a component leaves the unified document.
	StandardRate decimal.Decimal `json:"standard_rate"`
	ReducedRate  decimal.Decimal `json:"reduced_rate"`
	// Sublimite is the annual regional revenue sub-ceiling; above it the two
	// consumption-tax components are collected outside the unified document.
	Sublimite     decimal.Decimal `json:"sublimite"`
	IncentiveArea bool            `json:"incentive_area"`
	Provenance    Provenance      `json:"provenance"`
}
