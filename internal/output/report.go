// Package output renders a calculation run for the terminal, JSON and CSV.
// Formatters only consume the engine's output structures.
package output

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/tribgo/tribgo/internal/domain"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	sectionStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("246"))
	winnerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// regimeLabels maps regime kinds to display names.
var regimeLabels = map[domain.RegimeKind]string{
	domain.RegimeSimples:   "Simples Nacional",
	domain.RegimePresumido: "Lucro Presumido",
	domain.RegimeReal:      "Lucro Real",
}

// ConsoleFormatter renders a run as a styled terminal report.
type ConsoleFormatter struct{}

// Format renders the ranked regimes, per-partner breakdowns, exclusions,
// alerts and scenarios.
func (cf *ConsoleFormatter) Format(run *domain.CalculationRun) string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render("TAX REGIME COMPARISON") + "\n")
	sb.WriteString(mutedStyle.Render(fmt.Sprintf("run %s", run.ID)) + "\n\n")

	if len(run.Ranked) == 0 {
		sb.WriteString("No eligible regime for this company.\n")
	} else {
		sb.WriteString(fmt.Sprintf("%-4s %-18s %16s %16s %14s\n",
			"Rank", "Regime", "Total liability", "Partner net", "Effective"))
		sb.WriteString(strings.Repeat("-", 72) + "\n")
		for _, r := range run.Ranked {
			line := fmt.Sprintf("%-4d %-18s %16s %16s %13s%%",
				r.Rank,
				regimeLabels[r.Regime.Kind],
				money(r.Regime.TotalLiability),
				money(r.Personal.TotalNetCash),
				r.Regime.EffectiveRate.Mul(decimal.NewFromInt(100)).StringFixed(2))
			if r.Rank == 1 {
				line = winnerStyle.Render(line)
			}
			sb.WriteString(line + "\n")
		}
	}

	for _, r := range run.Ranked {
		sb.WriteString("\n" + sectionStyle.Render(regimeLabels[r.Regime.Kind]) + "\n")
		cf.writeRegime(&sb, r)
	}

	if len(run.Exclusions) > 0 {
		sb.WriteString("\n" + sectionStyle.Render("EXCLUDED REGIMES") + "\n")
		for _, ex := range run.Exclusions {
			sb.WriteString(fmt.Sprintf("  %-18s %s\n", regimeLabels[ex.Kind], ex.Reason))
		}
	}

	if len(run.Alerts) > 0 {
		sb.WriteString("\n" + sectionStyle.Render("ALERTS") + "\n")
		for _, a := range run.Alerts {
			sb.WriteString("  " + renderAlert(a) + "\n")
		}
	}

	if len(run.Scenarios) > 0 {
		sb.WriteString("\n" + sectionStyle.Render("DISTRIBUTION SCENARIOS") + "\n")
		cf.writeScenarios(&sb, run.Scenarios)
	}

	return sb.String()
}

func (cf *ConsoleFormatter) writeRegime(sb *strings.Builder, r domain.RankedRegime) {
	if r.Regime.SelectedAnnex != "" {
		sb.WriteString(fmt.Sprintf("  bracket family %s, bracket %d\n", r.Regime.SelectedAnnex, r.Regime.SelectedBracket))
	}
	for _, comp := range domain.ComponentOrder {
		v, ok := r.Regime.Components[comp]
		if !ok || v.IsZero() {
			continue
		}
		sb.WriteString(fmt.Sprintf("  %-8s %14s\n", strings.ToUpper(string(comp)), money(v)))
	}
	for _, comp := range domain.ComponentOrder {
		v, ok := r.Regime.OutsideUnified[comp]
		if !ok || v.IsZero() {
			continue
		}
		sb.WriteString(fmt.Sprintf("  %-8s %14s %s\n", strings.ToUpper(string(comp)), money(v), mutedStyle.Render("(outside unified)")))
	}

	sb.WriteString(fmt.Sprintf("  available profit %s\n", money(r.Personal.AvailableProfit)))
	for _, p := range r.Personal.Partners {
		sb.WriteString(fmt.Sprintf("  %-14s withdrawal %12s  dividends %12s  top-up %10s  net %14s\n",
			p.Name, money(p.NetWithdrawal), money(p.NetDividend), money(p.MinimumTaxTopUp), money(p.NetCash)))
	}
	for _, a := range r.Regime.Alerts {
		sb.WriteString("  " + renderAlert(a) + "\n")
	}
}

func (cf *ConsoleFormatter) writeScenarios(sb *strings.Builder, scenarios []domain.Scenario) {
	for _, s := range scenarios {
		sb.WriteString(fmt.Sprintf("  %s (withheld %s, retained %s)\n",
			s.Name, money(s.TotalWithheld), money(s.TotalRetained)))
		for _, a := range s.Allocations {
			sb.WriteString(fmt.Sprintf("    %-14s gross %12s  exempt %12s  taxable %12s  net %12s\n",
				a.Name, money(a.Gross), money(a.Exempt), money(a.Taxable), money(a.Net)))
		}
	}
}

func renderAlert(a domain.Alert) string {
	label := fmt.Sprintf("[%s] %s", a.Severity, a.Message)
	switch a.Severity {
	case domain.SeverityError:
		return errorStyle.Render(label)
	case domain.SeverityWarn:
		return warnStyle.Render(label)
	default:
		return infoStyle.Render(label)
	}
}

func money(v decimal.Decimal) string {
	return "R$ " + v.StringFixed(2)
}
