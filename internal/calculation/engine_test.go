package calculation

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tribgo/tribgo/internal/domain"
)

func engineInputs() domain.CompanyInputs {
	inputs := validInputs()
	inputs.ActivityCode = "6201-5/01"
	return inputs
}

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	engine, err := NewEngine()
	require.NoError(t, err)
	return engine
}

func TestEngineFullRun(t *testing.T) {
	engine := newTestEngine(t)

	run, err := engine.Run(context.Background(), engineInputs(), validPartners())
	require.NoError(t, err)
	require.NotNil(t, run)

	// All three regimes are eligible for a 50,000/month software company.
	require.Len(t, run.Ranked, 3)
	assert.Empty(t, run.Exclusions)

	// Payroll ratio 0.30 clears the payroll-ratio threshold, so the
	// simplified regime lands the company in Annex III and wins outright.
	winner := run.Winner()
	require.NotNil(t, winner)
	assert.Equal(t, 1, winner.Rank)
	assert.Equal(t, domain.RegimeSimples, winner.Regime.Kind)
	assert.Equal(t, domain.AnnexIII, winner.Regime.SelectedAnnex)
	assert.True(t, winner.Regime.TotalLiability.Equal(decimal.NewFromInt(5280)),
		"simplified liability %s", winner.Regime.TotalLiability)

	for i, r := range run.Ranked {
		assert.Equal(t, i+1, r.Rank)
		require.NotNil(t, r.Personal)
		if i > 0 {
			prev := run.Ranked[i-1]
			assert.True(t, prev.Personal.TotalNetCash.GreaterThanOrEqual(r.Personal.TotalNetCash),
				"ranking not ordered at position %d", i+1)
		}
	}
}

func TestEngineDeterministicRuns(t *testing.T) {
	engine := newTestEngine(t)
	inputs := engineInputs()
	partners := validPartners()

	first, err := engine.Run(context.Background(), inputs, partners)
	require.NoError(t, err)
	second, err := engine.Run(context.Background(), inputs, partners)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	require.Equal(t, len(first.Ranked), len(second.Ranked))
	for i := range first.Ranked {
		assert.Equal(t, first.Ranked[i].Regime.Kind, second.Ranked[i].Regime.Kind)
		assert.True(t, first.Ranked[i].Regime.TotalLiability.Equal(second.Ranked[i].Regime.TotalLiability))
		assert.True(t, first.Ranked[i].Personal.TotalNetCash.Equal(second.Ranked[i].Personal.TotalNetCash))
	}
}

func TestEngineBlockingValidation(t *testing.T) {
	engine := newTestEngine(t)

	inputs := engineInputs()
	inputs.MonthlyRevenue = decimal.NewFromInt(-100)

	run, err := engine.Run(context.Background(), inputs, validPartners())
	assert.Nil(t, run)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.True(t, domain.HasBlocking(verr.Alerts))
	assert.Contains(t, verr.Error(), "cannot be negative")
}

func TestEngineReportsExclusions(t *testing.T) {
	engine := newTestEngine(t)

	// Banking activity is barred from the simplified regime; the other two
	// still rank.
	inputs := engineInputs()
	inputs.ActivityCode = "6422-1/00"

	run, err := engine.Run(context.Background(), inputs, validPartners())
	require.NoError(t, err)

	require.Len(t, run.Exclusions, 1)
	assert.Equal(t, domain.RegimeSimples, run.Exclusions[0].Kind)
	assert.Len(t, run.Ranked, 2)
}

func TestEngineEstimatedProvenanceAlerts(t *testing.T) {
	engine := newTestEngine(t)

	inputs := engineInputs()
	inputs.ActivityCode = "9999-9/99"
	inputs.State = "XX"

	run, err := engine.Run(context.Background(), inputs, validPartners())
	require.NoError(t, err)

	assert.True(t, hasAlert(run.Alerts, "rules_estimated"))
	assert.True(t, hasAlert(run.Alerts, "regional_estimated"))
	assert.False(t, domain.HasBlocking(run.Alerts))
	assert.Equal(t, domain.ProvenanceEstimated, run.Rules.Provenance)
	assert.Equal(t, domain.ProvenanceEstimated, run.Regional.Provenance)
}

func TestEngineCancelledContext(t *testing.T) {
	engine := newTestEngine(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	run, err := engine.Run(ctx, engineInputs(), validPartners())
	assert.Nil(t, run)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEngineRejectsMalformedTables(t *testing.T) {
	tables := domain.DefaultTaxTables()
	tables.Annexes[domain.AnnexI][0].Split.IRPJ = decimal.NewFromFloat(0.9)

	engine, err := NewEngineWithTables(tables)
	assert.Nil(t, engine)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tax tables")
}
