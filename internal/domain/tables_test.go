package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultTaxTablesValidate(t *testing.T) {
	tables := DefaultTaxTables()
	assert.NoError(t, tables.Validate())
}

func TestDefaultTaxTablesSplitsSumToOne(t *testing.T) {
	tables := DefaultTaxTables()
	one := decimal.NewFromInt(1)

	for _, annex := range KnownAnnexes {
		rows := tables.Annexes[annex]
		require.Len(t, rows, 6, "annex %s", annex)
		for i, row := range rows {
			assert.True(t, row.Split.Sum().Equal(one),
				"annex %s bracket %d: split sums to %s", annex, i+1, row.Split.Sum())
		}
	}
}

func TestTaxTablesValidateRejectsMalformed(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*TaxTables)
	}{
		{
			name:   "missing annex",
			mutate: func(t *TaxTables) { delete(t.Annexes, AnnexIII) },
		},
		{
			name: "non-increasing ceilings",
			mutate: func(t *TaxTables) {
				t.Annexes[AnnexI][1].Ceiling = decimal.NewFromInt(100)
			},
		},
		{
			name: "split drift",
			mutate: func(t *TaxTables) {
				t.Annexes[AnnexV][0].Split.ISS = decimal.NewFromFloat(0.5)
			},
		},
		{
			name: "rate above one",
			mutate: func(t *TaxTables) {
				t.Annexes[AnnexII][2].Rate = decimal.NewFromInt(2)
			},
		},
		{
			name: "relief band inverted",
			mutate: func(t *TaxTables) {
				t.Personal.ReliefZeroAt = t.Personal.ReliefFullBelow
			},
		},
		{
			name: "minimum-tax ramp inverted",
			mutate: func(t *TaxTables) {
				t.Personal.MinTaxFullAt = t.Personal.MinTaxFloor
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tables := DefaultTaxTables()
			tt.mutate(tables)
			assert.Error(t, tables.Validate())
		})
	}
}

func TestEqualizePartners(t *testing.T) {
	partners := []PartnerConfig{
		{Name: "Ana", Participation: decimal.NewFromInt(90)},
		{Name: "Bruno", Participation: decimal.NewFromInt(5)},
		{Name: "Carla", Participation: decimal.NewFromInt(5)},
	}

	equalized := EqualizePartners(partners)
	require.Len(t, equalized, 3)

	sum := decimal.Zero
	for _, p := range equalized {
		sum = sum.Add(p.Participation)
	}
	assert.True(t, sum.Equal(decimal.NewFromInt(100)), "sum is %s", sum)
	assert.True(t, equalized[0].Participation.Equal(decimal.NewFromFloat(33.33)))
	assert.True(t, equalized[2].Participation.Equal(decimal.NewFromFloat(33.34)))

	// The original set is untouched.
	assert.True(t, partners[0].Participation.Equal(decimal.NewFromInt(90)))
}

func TestPayoutPolicyFraction(t *testing.T) {
	assert.True(t, PayoutFull.Fraction().Equal(decimal.NewFromInt(1)))
	assert.True(t, PayoutHalf.Fraction().Equal(decimal.NewFromFloat(0.5)))
	assert.True(t, PayoutNone.Fraction().Equal(decimal.Zero))
}

func TestRegimeResultLiabilitySum(t *testing.T) {
	r := &RegimeResult{
		Components: ComponentSet{
			ComponentIRPJ: decimal.NewFromInt(100),
			ComponentISS:  decimal.NewFromInt(50),
		},
		OutsideUnified: ComponentSet{
			ComponentCPP: decimal.NewFromInt(25),
		},
	}
	assert.True(t, r.LiabilitySum().Equal(decimal.NewFromInt(175)))
}
