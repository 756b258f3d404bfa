// Package ranking orders regime outcomes by what the partners actually take
// home. The ranked list is recomputed fully on every call; it is never
// incrementally patched.
package ranking

import (
	"sort"

	"github.com/tribgo/tribgo/internal/domain"
)

// Pair is one eligible regime with its personal impact.
type Pair struct {
	Regime   *domain.RegimeResult
	Personal *domain.PersonalImpactResult
}

// regimeOrder fixes the final tie-break so the ranking is a total order
// regardless of input ordering.
var regimeOrder = map[domain.RegimeKind]int{
	domain.RegimeSimples:   0,
	domain.RegimePresumido: 1,
	domain.RegimeReal:      2,
}

// Rank sorts the pairs descending by aggregate partner net cash, ties
// broken by ascending total liability, and assigns 1-based rank positions.
func Rank(pairs []Pair) []domain.RankedRegime {
	sorted := make([]Pair, len(pairs))
	copy(sorted, pairs)

	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if !a.Personal.TotalNetCash.Equal(b.Personal.TotalNetCash) {
			return a.Personal.TotalNetCash.GreaterThan(b.Personal.TotalNetCash)
		}
		if !a.Regime.TotalLiability.Equal(b.Regime.TotalLiability) {
			return a.Regime.TotalLiability.LessThan(b.Regime.TotalLiability)
		}
		return regimeOrder[a.Regime.Kind] < regimeOrder[b.Regime.Kind]
	})

	ranked := make([]domain.RankedRegime, 0, len(sorted))
	for i, p := range sorted {
		ranked = append(ranked, domain.RankedRegime{
			Rank:     i + 1,
			Regime:   p.Regime,
			Personal: p.Personal,
		})
	}
	return ranked
}
