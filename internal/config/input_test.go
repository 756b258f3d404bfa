package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tribgo/tribgo/internal/domain"
)

const sampleInput = `
company:
  monthly_revenue: 50000
  payroll: 15000
  cost_of_goods: 0
  operating_expenses: 8000.50
  employee_count: 3
  declared_margin: 0.2
  activity_code: "6201-5/01"
  category: service
  state: SP
  service_tax_rate: 0.05
partners:
  - name: Ana
    participation: 70
    withdrawal: 5000
  - name: Bruno
    participation: 30
    withdrawal: 3000
options:
  scenarios: true
`

func TestParseInput(t *testing.T) {
	parser := NewInputParser()
	input, err := parser.Parse([]byte(sampleInput))
	require.NoError(t, err)

	c := input.Company
	assert.True(t, c.MonthlyRevenue.Equal(decimal.NewFromInt(50000)))
	assert.True(t, c.OperatingExpenses.Equal(decimal.NewFromFloat(8000.50)))
	assert.Equal(t, 3, c.EmployeeCount)
	assert.True(t, c.DeclaredMargin.Equal(decimal.NewFromFloat(0.2)))
	assert.Equal(t, "6201-5/01", c.ActivityCode)
	assert.Equal(t, domain.CategoryService, c.Category)
	assert.Equal(t, "SP", c.State)

	require.Len(t, input.Partners, 2)
	assert.Equal(t, "Ana", input.Partners[0].Name)
	assert.True(t, input.Partners[0].Participation.Equal(decimal.NewFromInt(70)))
	assert.True(t, input.Partners[1].Withdrawal.Equal(decimal.NewFromInt(3000)))

	assert.True(t, input.Options.Scenarios)
	assert.False(t, input.Options.EqualizePartners)
}

func TestParseDefaultsPayoutPolicy(t *testing.T) {
	parser := NewInputParser()
	input, err := parser.Parse([]byte(sampleInput))
	require.NoError(t, err)
	assert.Equal(t, domain.PayoutFull, input.Company.PayoutPolicy)
}

func TestParseEqualizesPartners(t *testing.T) {
	doc := `
company:
  monthly_revenue: 50000
partners:
  - name: Ana
    participation: 90
  - name: Bruno
    participation: 90
  - name: Carla
    participation: 90
options:
  equalize_partners: true
`
	parser := NewInputParser()
	input, err := parser.Parse([]byte(doc))
	require.NoError(t, err)

	require.Len(t, input.Partners, 3)
	assert.True(t, input.Partners[0].Participation.Equal(decimal.NewFromFloat(33.33)))
	assert.True(t, input.Partners[1].Participation.Equal(decimal.NewFromFloat(33.33)))
	assert.True(t, input.Partners[2].Participation.Equal(decimal.NewFromFloat(33.34)))
}

func TestParseInvalidYAML(t *testing.T) {
	parser := NewInputParser()
	_, err := parser.Parse([]byte("company: [not a mapping"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "input.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleInput), 0o644))

	parser := NewInputParser()
	input, err := parser.LoadFromFile(path)
	require.NoError(t, err)
	assert.Len(t, input.Partners, 2)

	t.Run("missing file", func(t *testing.T) {
		_, err := parser.LoadFromFile(filepath.Join(t.TempDir(), "absent.yaml"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to read file")
	})
}

func TestLoadTablesDefaults(t *testing.T) {
	tables, err := LoadTables("")
	require.NoError(t, err)
	require.NoError(t, tables.Validate())
}

func TestLoadTablesOverride(t *testing.T) {
	override := `
fator_r_threshold: 0.30
patronal_rate: 0.22
`
	path := filepath.Join(t.TempDir(), "tables.yaml")
	require.NoError(t, os.WriteFile(path, []byte(override), 0o644))

	tables, err := LoadTables(path)
	require.NoError(t, err)

	// Overridden fields take the file's values; everything else keeps the
	// bundled defaults.
	assert.True(t, tables.FatorRThreshold.Equal(decimal.NewFromFloat(0.30)))
	assert.True(t, tables.PatronalRate.Equal(decimal.NewFromFloat(0.22)))
	assert.True(t, tables.SimplesCeiling.Equal(decimal.NewFromInt(4800000)))
	require.NoError(t, tables.Validate())
}
