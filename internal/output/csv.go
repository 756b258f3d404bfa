package output

import (
	"encoding/csv"
	"strconv"
	"strings"

	"github.com/tribgo/tribgo/internal/domain"
)

// CSVFormatter renders the ranked regimes and partner breakdowns as CSV.
type CSVFormatter struct{}

// Format writes one row per regime plus one row per partner per regime.
func (cf *CSVFormatter) Format(run *domain.CalculationRun) (string, error) {
	var sb strings.Builder
	w := csv.NewWriter(&sb)

	header := []string{"rank", "regime", "partner", "total_liability", "effective_rate",
		"net_withdrawal", "net_dividend", "min_tax_top_up", "net_cash"}
	if err := w.Write(header); err != nil {
		return "", err
	}

	for _, r := range run.Ranked {
		row := []string{
			strconv.Itoa(r.Rank),
			string(r.Regime.Kind),
			"",
			r.Regime.TotalLiability.StringFixed(2),
			r.Regime.EffectiveRate.StringFixed(6),
			"", "", "",
			r.Personal.TotalNetCash.StringFixed(2),
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
		for _, p := range r.Personal.Partners {
			row := []string{
				strconv.Itoa(r.Rank),
				string(r.Regime.Kind),
				p.Name,
				"", "",
				p.NetWithdrawal.StringFixed(2),
				p.NetDividend.StringFixed(2),
				p.MinimumTaxTopUp.StringFixed(2),
				p.NetCash.StringFixed(2),
			}
			if err := w.Write(row); err != nil {
				return "", err
			}
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}
	return sb.String(), nil
}
