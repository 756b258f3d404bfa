// Package rules resolves activity codes and states into the rule records the
// calculators consume. Resolution is deterministic and side-effect free;
// unknown inputs degrade to category or modal defaults with their provenance
// marked as estimated, never a fatal condition.
package rules

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/tribgo/tribgo/internal/domain"
)

// activityEntry is one row of the classification table.
type activityEntry struct {
	Category              domain.ActivityCategory
	Annex                 domain.AnnexID
	PresumptionIRPJ       decimal.Decimal
	PresumptionCSLL       decimal.Decimal
	Barred                bool
	BarredReason          string
	Monophase             bool
	PayrollRatioSensitive bool
}

// activityTable maps CNAE class prefixes (four digits) to rule rows.
var activityTable = map[string]activityEntry{
	// Commerce
	"4711": {Category: domain.CategoryCommerce, Annex: domain.AnnexI, PresumptionIRPJ: p8, PresumptionCSLL: p12},
	"4771": {Category: domain.CategoryCommerce, Annex: domain.AnnexI, PresumptionIRPJ: p8, PresumptionCSLL: p12, Monophase: true},
	"4731": {Category: domain.CategoryCommerce, Annex: domain.AnnexI, PresumptionIRPJ: p16, PresumptionCSLL: p12, Monophase: true},
	"4772": {Category: domain.CategoryCommerce, Annex: domain.AnnexI, PresumptionIRPJ: p8, PresumptionCSLL: p12, Monophase: true},
	"5611": {Category: domain.CategoryCommerce, Annex: domain.AnnexI, PresumptionIRPJ: p8, PresumptionCSLL: p12},

	// Industry
	"1091": {Category: domain.CategoryIndustry, Annex: domain.AnnexII, PresumptionIRPJ: p8, PresumptionCSLL: p12},
	"1412": {Category: domain.CategoryIndustry, Annex: domain.AnnexII, PresumptionIRPJ: p8, PresumptionCSLL: p12},
	"2063": {Category: domain.CategoryIndustry, Annex: domain.AnnexII, PresumptionIRPJ: p8, PresumptionCSLL: p12, Monophase: true},
	"1113": {Category: domain.CategoryIndustry, Annex: domain.AnnexII, PresumptionIRPJ: p8, PresumptionCSLL: p12, Monophase: true},

	// Services
	"6201": {Category: domain.CategoryService, Annex: domain.AnnexIII, PresumptionIRPJ: p32, PresumptionCSLL: p32, PayrollRatioSensitive: true},
	"6202": {Category: domain.CategoryService, Annex: domain.AnnexIII, PresumptionIRPJ: p32, PresumptionCSLL: p32, PayrollRatioSensitive: true},
	"8630": {Category: domain.CategoryService, Annex: domain.AnnexIII, PresumptionIRPJ: p32, PresumptionCSLL: p32, PayrollRatioSensitive: true},
	"7020": {Category: domain.CategoryService, Annex: domain.AnnexIII, PresumptionIRPJ: p32, PresumptionCSLL: p32, PayrollRatioSensitive: true},
	"6920": {Category: domain.CategoryService, Annex: domain.AnnexIII, PresumptionIRPJ: p32, PresumptionCSLL: p32},
	"8599": {Category: domain.CategoryService, Annex: domain.AnnexIII, PresumptionIRPJ: p32, PresumptionCSLL: p32},
	"6911": {Category: domain.CategoryService, Annex: domain.AnnexIV, PresumptionIRPJ: p32, PresumptionCSLL: p32},
	"4930": {Category: domain.CategoryService, Annex: domain.AnnexIII, PresumptionIRPJ: p16, PresumptionCSLL: p12},

	// Construction
	"4120": {Category: domain.CategoryConstruction, Annex: domain.AnnexIV, PresumptionIRPJ: p8, PresumptionCSLL: p12},
	"4399": {Category: domain.CategoryConstruction, Annex: domain.AnnexIV, PresumptionIRPJ: p8, PresumptionCSLL: p12},

	// Barred from the simplified regime
	"6422": {Category: domain.CategoryService, Annex: domain.AnnexV, PresumptionIRPJ: p32, PresumptionCSLL: p32, Barred: true, BarredReason: "financial institutions may not opt into the simplified regime"},
	"6491": {Category: domain.CategoryService, Annex: domain.AnnexV, PresumptionIRPJ: p32, PresumptionCSLL: p32, Barred: true, BarredReason: "credit and factoring activities may not opt into the simplified regime"},
	"1220": {Category: domain.CategoryIndustry, Annex: domain.AnnexII, PresumptionIRPJ: p8, PresumptionCSLL: p12, Barred: true, BarredReason: "tobacco manufacturing may not opt into the simplified regime"},
}

var (
	p8  = decimal.NewFromFloat(0.08)
	p12 = decimal.NewFromFloat(0.12)
	p16 = decimal.NewFromFloat(0.16)
	p32 = decimal.NewFromFloat(0.32)
)

// categoryDefaults is the fallback row per declared category, used when the
// activity code is not in the table.
var categoryDefaults = map[domain.ActivityCategory]activityEntry{
	domain.CategoryCommerce:     {Annex: domain.AnnexI, PresumptionIRPJ: p8, PresumptionCSLL: p12},
	domain.CategoryIndustry:     {Annex: domain.AnnexII, PresumptionIRPJ: p8, PresumptionCSLL: p12},
	domain.CategoryService:      {Annex: domain.AnnexIII, PresumptionIRPJ: p32, PresumptionCSLL: p32, PayrollRatioSensitive: true},
	domain.CategoryConstruction: {Annex: domain.AnnexIV, PresumptionIRPJ: p8, PresumptionCSLL: p12},
}

// Resolver resolves activity codes into RegimeRules records.
type Resolver struct{}

// NewResolver creates a rule resolver over the bundled classification table.
func NewResolver() *Resolver {
	return &Resolver{}
}

// Resolve returns the rule record for an activity code and declared
// category. Unknown codes fall back to the category defaults with
// estimated provenance.
func (r *Resolver) Resolve(activityCode string, category domain.ActivityCategory) domain.RegimeRules {
	key := normalizeCode(activityCode)
	if entry, ok := activityTable[key]; ok {
		return ruleFromEntry(activityCode, entry.Category, entry, domain.ProvenanceExact)
	}

	entry, ok := categoryDefaults[category]
	if !ok {
		// Unknown category: treat as a service company, the most
		// conservative presumption base.
		entry = categoryDefaults[domain.CategoryService]
		category = domain.CategoryService
	}
	return ruleFromEntry(activityCode, category, entry, domain.ProvenanceEstimated)
}

func ruleFromEntry(code string, category domain.ActivityCategory, e activityEntry, prov domain.Provenance) domain.RegimeRules {
	return domain.RegimeRules{
		ActivityCode:          code,
		Category:              category,
		Annex:                 e.Annex,
		PresumptionIRPJ:       e.PresumptionIRPJ,
		PresumptionCSLL:       e.PresumptionCSLL,
		Barred:                e.Barred,
		BarredReason:          e.BarredReason,
		Monophase:             e.Monophase,
		PayrollRatioSensitive: e.PayrollRatioSensitive,
		Provenance:            prov,
	}
}

// normalizeCode strips punctuation from a CNAE code and keeps the four-digit
// class prefix: "62.01-5/01" and "6201501" both key as "6201".
func normalizeCode(code string) string {
	var b strings.Builder
	for _, r := range code {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if len(digits) > 4 {
		digits = digits[:4]
	}
	return digits
}
