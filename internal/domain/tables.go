package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ComponentSplit is the fixed redistribution of a Simples bracket's gross
// liability across the named components. The shares must sum to 1.
type ComponentSplit struct {
	IRPJ   decimal.Decimal `yaml:"irpj" json:"irpj"`
	CSLL   decimal.Decimal `yaml:"csll" json:"csll"`
	PIS    decimal.Decimal `yaml:"pis" json:"pis"`
	COFINS decimal.Decimal `yaml:"cofins" json:"cofins"`
	CPP    decimal.Decimal `yaml:"cpp" json:"cpp"`
	ICMS   decimal.Decimal `yaml:"icms" json:"icms"`
	ISS    decimal.Decimal `yaml:"iss" json:"iss"`
}

// Share returns the split share for a component.
func (s ComponentSplit) Share(c TaxComponent) decimal.Decimal {
	switch c {
	case ComponentIRPJ:
		return s.IRPJ
	case ComponentCSLL:
		return s.CSLL
	case ComponentPIS:
		return s.PIS
	case ComponentCOFINS:
		return s.COFINS
	case ComponentCPP:
		return s.CPP
	case ComponentICMS:
		return s.ICMS
	case ComponentISS:
		return s.ISS
	}
	return decimal.Zero
}

// Sum adds every share of the split.
func (s ComponentSplit) Sum() decimal.Decimal {
	return s.IRPJ.Add(s.CSLL).Add(s.PIS).Add(s.COFINS).Add(s.CPP).Add(s.ICMS).Add(s.ISS)
}

// SimplesBracket is one row of an annex's progressive table. Ceiling is an
// annualized-revenue ceiling; Deduction is the progressive deduction used by
// the effective-rate formula.
type SimplesBracket struct {
	Ceiling   decimal.Decimal `yaml:"ceiling" json:"ceiling"`
	Rate      decimal.Decimal `yaml:"rate" json:"rate"`
	Deduction decimal.Decimal `yaml:"deduction" json:"deduction"`
	Split     ComponentSplit  `yaml:"split" json:"split"`
}

// PresumidoParams holds the presumed-profit regime constants.
type PresumidoParams struct {
	IRPJRate              decimal.Decimal `yaml:"irpj_rate" json:"irpj_rate"`
	SurtaxRate            decimal.Decimal `yaml:"surtax_rate" json:"surtax_rate"`
	SurtaxMonthlyExempt   decimal.Decimal `yaml:"surtax_monthly_exempt" json:"surtax_monthly_exempt"`
	CSLLRate              decimal.Decimal `yaml:"csll_rate" json:"csll_rate"`
	PISRate               decimal.Decimal `yaml:"pis_rate" json:"pis_rate"`
	COFINSRate            decimal.Decimal `yaml:"cofins_rate" json:"cofins_rate"`
}

// RealParams holds the real-profit regime constants. PIS and COFINS are
// non-cumulative: credits accrue on cost of goods plus a fraction of
// operating expenses.
type RealParams struct {
	PISRate            decimal.Decimal `yaml:"pis_rate" json:"pis_rate"`
	COFINSRate         decimal.Decimal `yaml:"cofins_rate" json:"cofins_rate"`
	OpexCreditFraction decimal.Decimal `yaml:"opex_credit_fraction" json:"opex_credit_fraction"`
}

// IRPFBracket is one row of the monthly personal income-tax table. The last
// row is the catch-all and its ceiling is ignored.
type IRPFBracket struct {
	Ceiling   decimal.Decimal `yaml:"ceiling" json:"ceiling"`
	Rate      decimal.Decimal `yaml:"rate" json:"rate"`
	Deduction decimal.Decimal `yaml:"deduction" json:"deduction"`
}

// PersonalParams holds every constant used by the partner-impact calculator.
type PersonalParams struct {
	INSSRate    decimal.Decimal `yaml:"inss_rate" json:"inss_rate"`
	INSSCeiling decimal.Decimal `yaml:"inss_ceiling" json:"inss_ceiling"`

	IRPFTable []IRPFBracket `yaml:"irpf_table" json:"irpf_table"`

	// Relief: full relief (capped at ReliefCap) for withdrawals at or below
	// ReliefFullBelow, decreasing linearly to zero at ReliefZeroAt.
	ReliefCap       decimal.Decimal `yaml:"relief_cap" json:"relief_cap"`
	ReliefFullBelow decimal.Decimal `yaml:"relief_full_below" json:"relief_full_below"`
	ReliefZeroAt    decimal.Decimal `yaml:"relief_zero_at" json:"relief_zero_at"`

	DividendExemption       decimal.Decimal `yaml:"dividend_exemption" json:"dividend_exemption"`
	DividendWithholdingRate decimal.Decimal `yaml:"dividend_withholding_rate" json:"dividend_withholding_rate"`

	// Minimum-tax backstop on annualized personal income: zero at
	// MinTaxFloor, scaling linearly to MinTaxMaxRate at MinTaxFullAt.
	MinTaxFloor   decimal.Decimal `yaml:"min_tax_floor" json:"min_tax_floor"`
	MinTaxFullAt  decimal.Decimal `yaml:"min_tax_full_at" json:"min_tax_full_at"`
	MinTaxMaxRate decimal.Decimal `yaml:"min_tax_max_rate" json:"min_tax_max_rate"`
}

// TaxTables is the full statutory parameter set. Defaults are bundled in
// code and may be overridden from a YAML file; Validate rejects malformed
// tables before any calculation uses them.
type TaxTables struct {
	SimplesCeiling   decimal.Decimal `yaml:"simples_ceiling" json:"simples_ceiling"`
	DefaultSublimite decimal.Decimal `yaml:"default_sublimite" json:"default_sublimite"`
	FatorRThreshold  decimal.Decimal `yaml:"fator_r_threshold" json:"fator_r_threshold"`
	PatronalRate     decimal.Decimal `yaml:"patronal_rate" json:"patronal_rate"`

	Annexes map[AnnexID][]SimplesBracket `yaml:"annexes" json:"annexes"`

	Presumido PresumidoParams `yaml:"presumido" json:"presumido"`
	Real      RealParams      `yaml:"real" json:"real"`

	// IncentiveIRPJReduction is the fraction by which the regional incentive
	// cuts the income-tax component, surtax included.
	IncentiveIRPJReduction decimal.Decimal `yaml:"incentive_irpj_reduction" json:"incentive_irpj_reduction"`

	// RealMandatoryCeiling is the annual revenue above which real profit is
	// the mandatory regime. Reported as an alert, never an ineligibility.
	RealMandatoryCeiling decimal.Decimal `yaml:"real_mandatory_ceiling" json:"real_mandatory_ceiling"`

	Personal PersonalParams `yaml:"personal" json:"personal"`
}

// DefaultTaxTables returns the bundled statutory parameter set.
func DefaultTaxTables() *TaxTables {
	splitI := ComponentSplit{
		IRPJ:   decimal.NewFromFloat(0.055),
		CSLL:   decimal.NewFromFloat(0.035),
		PIS:    decimal.NewFromFloat(0.0276),
		COFINS: decimal.NewFromFloat(0.1274),
		CPP:    decimal.NewFromFloat(0.415),
		ICMS:   decimal.NewFromFloat(0.34),
	}
	splitII := ComponentSplit{
		IRPJ:   decimal.NewFromFloat(0.055),
		CSLL:   decimal.NewFromFloat(0.035),
		PIS:    decimal.NewFromFloat(0.0249),
		COFINS: decimal.NewFromFloat(0.1151),
		CPP:    decimal.NewFromFloat(0.375),
		ICMS:   decimal.NewFromFloat(0.395),
	}
	splitIII := ComponentSplit{
		IRPJ:   decimal.NewFromFloat(0.04),
		CSLL:   decimal.NewFromFloat(0.035),
		PIS:    decimal.NewFromFloat(0.0278),
		COFINS: decimal.NewFromFloat(0.1282),
		CPP:    decimal.NewFromFloat(0.434),
		ISS:    decimal.NewFromFloat(0.335),
	}
	// Annex IV has no CPP share: the patronal charge is collected outside
	// the unified document and recomputed on payroll.
	splitIV := ComponentSplit{
		IRPJ:   decimal.NewFromFloat(0.188),
		CSLL:   decimal.NewFromFloat(0.152),
		PIS:    decimal.NewFromFloat(0.0383),
		COFINS: decimal.NewFromFloat(0.1767),
		ISS:    decimal.NewFromFloat(0.445),
	}
	splitV := ComponentSplit{
		IRPJ:   decimal.NewFromFloat(0.25),
		CSLL:   decimal.NewFromFloat(0.15),
		PIS:    decimal.NewFromFloat(0.0305),
		COFINS: decimal.NewFromFloat(0.141),
		CPP:    decimal.NewFromFloat(0.2885),
		ISS:    decimal.NewFromFloat(0.14),
	}

	annex := func(split ComponentSplit, rows [6][3]float64) []SimplesBracket {
		out := make([]SimplesBracket, 0, len(rows))
		for _, r := range rows {
			out = append(out, SimplesBracket{
				Ceiling:   decimal.NewFromFloat(r[0]),
				Rate:      decimal.NewFromFloat(r[1]),
				Deduction: decimal.NewFromFloat(r[2]),
				Split:     split,
			})
		}
		return out
	}

	return &TaxTables{
		SimplesCeiling:   decimal.NewFromInt(4800000),
		DefaultSublimite: decimal.NewFromInt(3600000),
		FatorRThreshold:  decimal.NewFromFloat(0.28),
		PatronalRate:     decimal.NewFromFloat(0.20),

		Annexes: map[AnnexID][]SimplesBracket{
			AnnexI: annex(splitI, [6][3]float64{
				{180000, 0.04, 0},
				{360000, 0.073, 5940},
				{720000, 0.095, 13860},
				{1800000, 0.107, 22500},
				{3600000, 0.143, 87300},
				{4800000, 0.19, 378000},
			}),
			AnnexII: annex(splitII, [6][3]float64{
				{180000, 0.045, 0},
				{360000, 0.078, 5940},
				{720000, 0.10, 13860},
				{1800000, 0.112, 22500},
				{3600000, 0.147, 85500},
				{4800000, 0.30, 720000},
			}),
			AnnexIII: annex(splitIII, [6][3]float64{
				{180000, 0.06, 0},
				{360000, 0.112, 9360},
				{720000, 0.135, 17640},
				{1800000, 0.16, 35640},
				{3600000, 0.21, 125640},
				{4800000, 0.33, 648000},
			}),
			AnnexIV: annex(splitIV, [6][3]float64{
				{180000, 0.045, 0},
				{360000, 0.09, 8100},
				{720000, 0.102, 12420},
				{1800000, 0.14, 39780},
				{3600000, 0.22, 183780},
				{4800000, 0.33, 828000},
			}),
			AnnexV: annex(splitV, [6][3]float64{
				{180000, 0.155, 0},
				{360000, 0.18, 4500},
				{720000, 0.195, 9900},
				{1800000, 0.205, 17100},
				{3600000, 0.23, 62100},
				{4800000, 0.305, 540000},
			}),
		},

		Presumido: PresumidoParams{
			IRPJRate:            decimal.NewFromFloat(0.15),
			SurtaxRate:          decimal.NewFromFloat(0.10),
			SurtaxMonthlyExempt: decimal.NewFromInt(20000),
			CSLLRate:            decimal.NewFromFloat(0.09),
			PISRate:             decimal.NewFromFloat(0.0065),
			COFINSRate:          decimal.NewFromFloat(0.03),
		},
		Real: RealParams{
			PISRate:            decimal.NewFromFloat(0.0165),
			COFINSRate:         decimal.NewFromFloat(0.076),
			OpexCreditFraction: decimal.NewFromFloat(0.60),
		},

		IncentiveIRPJReduction: decimal.NewFromFloat(0.75),
		RealMandatoryCeiling:   decimal.NewFromInt(78000000),

		Personal: PersonalParams{
			INSSRate:    decimal.NewFromFloat(0.11),
			INSSCeiling: decimal.NewFromFloat(8157.41),
			IRPFTable: []IRPFBracket{
				{Ceiling: decimal.NewFromFloat(2259.20), Rate: decimal.Zero, Deduction: decimal.Zero},
				{Ceiling: decimal.NewFromFloat(2826.65), Rate: decimal.NewFromFloat(0.075), Deduction: decimal.NewFromFloat(169.44)},
				{Ceiling: decimal.NewFromFloat(3751.05), Rate: decimal.NewFromFloat(0.15), Deduction: decimal.NewFromFloat(381.44)},
				{Ceiling: decimal.NewFromFloat(4664.68), Rate: decimal.NewFromFloat(0.225), Deduction: decimal.NewFromFloat(662.77)},
				{Ceiling: decimal.Zero, Rate: decimal.NewFromFloat(0.275), Deduction: decimal.NewFromFloat(896.00)},
			},
			ReliefCap:       decimal.NewFromFloat(564.80),
			ReliefFullBelow: decimal.NewFromFloat(3036.00),
			ReliefZeroAt:    decimal.NewFromFloat(4664.68),

			DividendExemption:       decimal.NewFromInt(28000),
			DividendWithholdingRate: decimal.NewFromFloat(0.10),

			MinTaxFloor:   decimal.NewFromInt(600000),
			MinTaxFullAt:  decimal.NewFromInt(1200000),
			MinTaxMaxRate: decimal.NewFromFloat(0.10),
		},
	}
}

// splitTolerance bounds the allowed drift of a component split away from 1.
var splitTolerance = decimal.NewFromFloat(0.000001)

// Validate checks structural invariants of the tables. A violation here is
// an internal fault: the whole calculation aborts rather than producing a
// partial result.
func (t *TaxTables) Validate() error {
	if t.SimplesCeiling.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("simples ceiling must be positive, got %s", t.SimplesCeiling)
	}
	if t.DefaultSublimite.GreaterThan(t.SimplesCeiling) {
		return fmt.Errorf("default sublimite %s exceeds simples ceiling %s", t.DefaultSublimite, t.SimplesCeiling)
	}
	for _, id := range KnownAnnexes {
		rows, ok := t.Annexes[id]
		if !ok || len(rows) == 0 {
			return fmt.Errorf("annex %s: bracket table missing", id)
		}
		prev := decimal.Zero
		for i, row := range rows {
			if row.Ceiling.LessThanOrEqual(prev) {
				return fmt.Errorf("annex %s bracket %d: ceiling %s not increasing", id, i+1, row.Ceiling)
			}
			prev = row.Ceiling
			if row.Rate.IsNegative() || row.Rate.GreaterThan(decimal.NewFromInt(1)) {
				return fmt.Errorf("annex %s bracket %d: rate %s out of range", id, i+1, row.Rate)
			}
			if row.Deduction.IsNegative() {
				return fmt.Errorf("annex %s bracket %d: negative deduction", id, i+1)
			}
			drift := row.Split.Sum().Sub(decimal.NewFromInt(1)).Abs()
			if drift.GreaterThan(splitTolerance) {
				return fmt.Errorf("annex %s bracket %d: component split sums to %s", id, i+1, row.Split.Sum())
			}
		}
		if !rows[len(rows)-1].Ceiling.Equal(t.SimplesCeiling) {
			return fmt.Errorf("annex %s: last bracket ceiling %s must match the regime ceiling", id, rows[len(rows)-1].Ceiling)
		}
	}
	if len(t.Personal.IRPFTable) == 0 {
		return fmt.Errorf("personal income-tax table missing")
	}
	for i := 1; i < len(t.Personal.IRPFTable)-1; i++ {
		if t.Personal.IRPFTable[i].Ceiling.LessThanOrEqual(t.Personal.IRPFTable[i-1].Ceiling) {
			return fmt.Errorf("personal income-tax bracket %d: ceiling not increasing", i+1)
		}
	}
	if t.Personal.ReliefZeroAt.LessThanOrEqual(t.Personal.ReliefFullBelow) {
		return fmt.Errorf("relief band: zero-at %s must exceed full-below %s", t.Personal.ReliefZeroAt, t.Personal.ReliefFullBelow)
	}
	if t.Personal.MinTaxFullAt.LessThanOrEqual(t.Personal.MinTaxFloor) {
		return fmt.Errorf("minimum-tax ramp: full-at %s must exceed floor %s", t.Personal.MinTaxFullAt, t.Personal.MinTaxFloor)
	}
	return nil
}
