package rules

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/tribgo/tribgo/internal/domain"
)

func TestResolveKnownCode(t *testing.T) {
	r := NewResolver()

	rules := r.Resolve("6201", domain.CategoryService)
	assert.Equal(t, domain.ProvenanceExact, rules.Provenance)
	assert.Equal(t, domain.AnnexIII, rules.Annex)
	assert.True(t, rules.PayrollRatioSensitive)
	assert.True(t, rules.PresumptionIRPJ.Equal(decimal.NewFromFloat(0.32)))
	assert.False(t, rules.Barred)
}

func TestResolveNormalizesCodes(t *testing.T) {
	r := NewResolver()

	tests := []struct {
		code string
	}{
		{"62.01-5/01"},
		{"6201501"},
		{"6201"},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			rules := r.Resolve(tt.code, domain.CategoryService)
			assert.Equal(t, domain.ProvenanceExact, rules.Provenance)
			assert.Equal(t, domain.AnnexIII, rules.Annex)
			assert.Equal(t, tt.code, rules.ActivityCode)
		})
	}
}

func TestResolveUnknownCodeFallsBackToCategory(t *testing.T) {
	r := NewResolver()

	tests := []struct {
		category  domain.ActivityCategory
		annex     domain.AnnexID
		presumpt  float64
		ratioTest bool
	}{
		{domain.CategoryCommerce, domain.AnnexI, 0.08, false},
		{domain.CategoryIndustry, domain.AnnexII, 0.08, false},
		{domain.CategoryService, domain.AnnexIII, 0.32, true},
		{domain.CategoryConstruction, domain.AnnexIV, 0.08, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.category), func(t *testing.T) {
			rules := r.Resolve("9999", tt.category)
			assert.Equal(t, domain.ProvenanceEstimated, rules.Provenance)
			assert.Equal(t, tt.annex, rules.Annex)
			assert.Equal(t, tt.ratioTest, rules.PayrollRatioSensitive)
			assert.True(t, rules.PresumptionIRPJ.Equal(decimal.NewFromFloat(tt.presumpt)))
		})
	}
}

func TestResolveUnknownCategoryDefaultsToService(t *testing.T) {
	r := NewResolver()

	rules := r.Resolve("0000", domain.ActivityCategory("agriculture"))
	assert.Equal(t, domain.ProvenanceEstimated, rules.Provenance)
	assert.Equal(t, domain.CategoryService, rules.Category)
}

func TestResolveBarredActivity(t *testing.T) {
	r := NewResolver()

	rules := r.Resolve("6422", domain.CategoryService)
	assert.True(t, rules.Barred)
	assert.NotEmpty(t, rules.BarredReason)
}

func TestRegionalLookup(t *testing.T) {
	tables := domain.DefaultTaxTables()
	rt := NewRegionalTable(tables)

	sp := rt.Lookup("sp")
	assert.Equal(t, "SP", sp.State)
	assert.Equal(t, domain.ProvenanceExact, sp.Provenance)
	assert.True(t, sp.StandardRate.Equal(decimal.NewFromFloat(0.18)))
	assert.True(t, sp.Sublimite.Equal(tables.DefaultSublimite))
	assert.False(t, sp.IncentiveArea)
}

func TestRegionalLookupLoweredSublimite(t *testing.T) {
	rt := NewRegionalTable(domain.DefaultTaxTables())

	ap := rt.Lookup("AP")
	assert.True(t, ap.Sublimite.Equal(decimal.NewFromInt(1800000)))
	assert.True(t, ap.IncentiveArea)
}

func TestRegionalLookupUnknownState(t *testing.T) {
	tables := domain.DefaultTaxTables()
	rt := NewRegionalTable(tables)

	got := rt.Lookup("XX")
	assert.Equal(t, domain.ProvenanceEstimated, got.Provenance)
	assert.True(t, got.StandardRate.Equal(decimal.NewFromFloat(0.18)))
	assert.True(t, got.Sublimite.Equal(tables.DefaultSublimite))
}
