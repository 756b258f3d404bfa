package ranking

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tribgo/tribgo/internal/domain"
)

func pair(kind domain.RegimeKind, netCash, liability float64) Pair {
	return Pair{
		Regime: &domain.RegimeResult{
			Kind:           kind,
			TotalLiability: decimal.NewFromFloat(liability),
		},
		Personal: &domain.PersonalImpactResult{
			Kind:         kind,
			TotalNetCash: decimal.NewFromFloat(netCash),
		},
	}
}

func TestRankByNetCash(t *testing.T) {
	ranked := Rank([]Pair{
		pair(domain.RegimePresumido, 30000, 11000),
		pair(domain.RegimeSimples, 34000, 5000),
		pair(domain.RegimeReal, 28000, 14000),
	})

	require.Len(t, ranked, 3)
	assert.Equal(t, domain.RegimeSimples, ranked[0].Regime.Kind)
	assert.Equal(t, domain.RegimePresumido, ranked[1].Regime.Kind)
	assert.Equal(t, domain.RegimeReal, ranked[2].Regime.Kind)
	for i, r := range ranked {
		assert.Equal(t, i+1, r.Rank)
	}
}

func TestRankTieBrokenByLiability(t *testing.T) {
	ranked := Rank([]Pair{
		pair(domain.RegimeReal, 30000, 9000),
		pair(domain.RegimePresumido, 30000, 11000),
	})

	require.Len(t, ranked, 2)
	assert.Equal(t, domain.RegimeReal, ranked[0].Regime.Kind)
}

func TestRankFullTieUsesRegimeOrder(t *testing.T) {
	// Identical outcomes in every dimension: the fixed regime order decides,
	// whatever order the pairs arrive in.
	forward := Rank([]Pair{
		pair(domain.RegimeSimples, 30000, 9000),
		pair(domain.RegimeReal, 30000, 9000),
	})
	reversed := Rank([]Pair{
		pair(domain.RegimeReal, 30000, 9000),
		pair(domain.RegimeSimples, 30000, 9000),
	})

	assert.Equal(t, domain.RegimeSimples, forward[0].Regime.Kind)
	assert.Equal(t, domain.RegimeSimples, reversed[0].Regime.Kind)
}

func TestRankDoesNotMutateInput(t *testing.T) {
	pairs := []Pair{
		pair(domain.RegimeReal, 20000, 14000),
		pair(domain.RegimeSimples, 34000, 5000),
	}
	_ = Rank(pairs)

	assert.Equal(t, domain.RegimeReal, pairs[0].Regime.Kind)
	assert.Equal(t, domain.RegimeSimples, pairs[1].Regime.Kind)
}

func TestRankEmpty(t *testing.T) {
	assert.Empty(t, Rank(nil))
}
