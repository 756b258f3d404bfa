package rules

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/tribgo/tribgo/internal/domain"
)

// stateEntry holds the per-state rate parameters.
type stateEntry struct {
	StandardRate  float64
	ReducedRate   float64
	Sublimite     int64
	IncentiveArea bool
}

// stateTable covers every federative unit. Sublimite zero means the default
// sublimite from the tax tables applies.
var stateTable = map[string]stateEntry{
	"AC": {StandardRate: 0.19, ReducedRate: 0.12, Sublimite: 1800000, IncentiveArea: true},
	"AL": {StandardRate: 0.19, ReducedRate: 0.12, IncentiveArea: true},
	"AM": {StandardRate: 0.20, ReducedRate: 0.12, IncentiveArea: true},
	"AP": {StandardRate: 0.18, ReducedRate: 0.12, Sublimite: 1800000, IncentiveArea: true},
	"BA": {StandardRate: 0.19, ReducedRate: 0.12, IncentiveArea: true},
	"CE": {StandardRate: 0.18, ReducedRate: 0.12, IncentiveArea: true},
	"DF": {StandardRate: 0.18, ReducedRate: 0.12},
	"ES": {StandardRate: 0.17, ReducedRate: 0.12},
	"GO": {StandardRate: 0.17, ReducedRate: 0.12},
	"MA": {StandardRate: 0.20, ReducedRate: 0.12, IncentiveArea: true},
	"MG": {StandardRate: 0.18, ReducedRate: 0.12},
	"MS": {StandardRate: 0.17, ReducedRate: 0.12},
	"MT": {StandardRate: 0.17, ReducedRate: 0.12},
	"PA": {StandardRate: 0.19, ReducedRate: 0.12, IncentiveArea: true},
	"PB": {StandardRate: 0.18, ReducedRate: 0.12, IncentiveArea: true},
	"PE": {StandardRate: 0.18, ReducedRate: 0.12, IncentiveArea: true},
	"PI": {StandardRate: 0.21, ReducedRate: 0.12, IncentiveArea: true},
	"PR": {StandardRate: 0.195, ReducedRate: 0.12},
	"RJ": {StandardRate: 0.20, ReducedRate: 0.12},
	"RN": {StandardRate: 0.18, ReducedRate: 0.12, IncentiveArea: true},
	"RO": {StandardRate: 0.195, ReducedRate: 0.12, IncentiveArea: true},
	"RR": {StandardRate: 0.20, ReducedRate: 0.12, Sublimite: 1800000, IncentiveArea: true},
	"RS": {StandardRate: 0.17, ReducedRate: 0.12},
	"SC": {StandardRate: 0.17, ReducedRate: 0.12},
	"SE": {StandardRate: 0.19, ReducedRate: 0.12, IncentiveArea: true},
	"SP": {StandardRate: 0.18, ReducedRate: 0.12},
	"TO": {StandardRate: 0.20, ReducedRate: 0.12, IncentiveArea: true},
}

// defaultState is the modal fallback for unknown federative units.
var defaultState = stateEntry{StandardRate: 0.18, ReducedRate: 0.12}

// RegionalTable answers per-state rate lookups.
type RegionalTable struct {
	tables *domain.TaxTables
}

// NewRegionalTable creates a regional rate table bound to the given
// statutory tables (for the default sublimite).
func NewRegionalTable(tables *domain.TaxTables) *RegionalTable {
	return &RegionalTable{tables: tables}
}

// Lookup returns the rates for a federative unit. Unknown units fall back
// to modal defaults with estimated provenance.
func (rt *RegionalTable) Lookup(state string) domain.RegionalRates {
	uf := strings.ToUpper(strings.TrimSpace(state))
	entry, ok := stateTable[uf]
	prov := domain.ProvenanceExact
	if !ok {
		entry = defaultState
		prov = domain.ProvenanceEstimated
	}

	sublimite := rt.tables.DefaultSublimite
	if entry.Sublimite > 0 {
		sublimite = decimal.NewFromInt(entry.Sublimite)
	}
	return domain.RegionalRates{
		State:         uf,
		StandardRate:  decimal.NewFromFloat(entry.StandardRate),
		ReducedRate:   decimal.NewFromFloat(entry.ReducedRate),
		Sublimite:     sublimite,
		IncentiveArea: entry.IncentiveArea,
		Provenance:    prov,
	}
}
