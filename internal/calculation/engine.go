package calculation

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/tribgo/tribgo/internal/domain"
	"github.com/tribgo/tribgo/internal/ranking"
	"github.com/tribgo/tribgo/internal/rules"
)

// ValidationError carries the blocking alerts that stopped a run before any
// regime was computed.
type ValidationError struct {
	Alerts []domain.Alert
}

func (e *ValidationError) Error() string {
	var msgs []string
	for _, a := range e.Alerts {
		if a.Severity == domain.SeverityError {
			msgs = append(msgs, a.Message)
		}
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(msgs, "; "))
}

// regimeCalculator is the shared contract of the three regime calculators.
type regimeCalculator interface {
	Calculate(inputs domain.CompanyInputs, rules domain.RegimeRules, regional domain.RegionalRates) (*domain.RegimeResult, *domain.Exclusion, error)
}

// Engine orchestrates one full calculation run: validation, rule
// resolution, the three regime calculators, the per-partner impact and the
// ranking. The engine holds no mutable state across runs.
type Engine struct {
	Tables   *domain.TaxTables
	Resolver *rules.Resolver
	Regional *rules.RegionalTable
	Personal *PersonalImpactCalculator

	calculators map[domain.RegimeKind]regimeCalculator
}

// NewEngine creates an engine over the bundled statutory tables.
func NewEngine() (*Engine, error) {
	return NewEngineWithTables(domain.DefaultTaxTables())
}

// NewEngineWithTables creates an engine over the given tables, validating
// them first. Malformed tables are an internal fault and refuse to build an
// engine at all.
func NewEngineWithTables(tables *domain.TaxTables) (*Engine, error) {
	if err := tables.Validate(); err != nil {
		return nil, fmt.Errorf("tax tables: %w", err)
	}
	return &Engine{
		Tables:   tables,
		Resolver: rules.NewResolver(),
		Regional: rules.NewRegionalTable(tables),
		Personal: NewPersonalImpactCalculator(tables),
		calculators: map[domain.RegimeKind]regimeCalculator{
			domain.RegimeSimples:   NewSimplesCalculator(tables),
			domain.RegimePresumido: NewPresumidoCalculator(tables),
			domain.RegimeReal:      NewRealCalculator(tables),
		},
	}, nil
}

// runID derives a stable identifier from the input snapshot. Identical
// inputs produce identical runs, identifier included.
func runID(inputs domain.CompanyInputs, partners []domain.PartnerConfig) string {
	fingerprint := fmt.Sprintf("%+v|%+v", inputs, partners)
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(fingerprint)).String()
}

// regimeOutcome is one calculator's verdict, collected across goroutines.
type regimeOutcome struct {
	kind      domain.RegimeKind
	result    *domain.RegimeResult
	exclusion *domain.Exclusion
	err       error
}

// Run executes one calculation over an immutable input snapshot. Blocking
// validation alerts return a *ValidationError before any regime is
// computed; an internal fault in any calculator aborts the whole run so a
// partial result is never mixed with a faulted one.
func (e *Engine) Run(ctx context.Context, inputs domain.CompanyInputs, partners []domain.PartnerConfig) (*domain.CalculationRun, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	alerts := Validate(inputs, partners)
	if domain.HasBlocking(alerts) {
		return nil, &ValidationError{Alerts: alerts}
	}

	resolved := e.Resolver.Resolve(inputs.ActivityCode, inputs.Category)
	if resolved.Provenance == domain.ProvenanceEstimated {
		alerts = append(alerts, domain.Alert{
			Severity: domain.SeverityInfo,
			Code:     "rules_estimated",
			Message:  fmt.Sprintf("activity code %q is unknown; category defaults for %s were used", inputs.ActivityCode, resolved.Category),
		})
	}
	regional := e.Regional.Lookup(inputs.State)
	if regional.Provenance == domain.ProvenanceEstimated {
		alerts = append(alerts, domain.Alert{
			Severity: domain.SeverityInfo,
			Code:     "regional_estimated",
			Message:  fmt.Sprintf("state %q is unknown; modal consumption-tax rates were used", inputs.State),
		})
	}

	// The three calculators are independent pure functions over the same
	// snapshot; run them in parallel.
	outcomes := make([]regimeOutcome, len(domain.AllRegimes))
	var wg sync.WaitGroup
	for i, kind := range domain.AllRegimes {
		wg.Add(1)
		go func(i int, kind domain.RegimeKind) {
			defer wg.Done()
			result, exclusion, err := e.calculators[kind].Calculate(inputs, resolved, regional)
			outcomes[i] = regimeOutcome{kind: kind, result: result, exclusion: exclusion, err: err}
		}(i, kind)
	}
	wg.Wait()

	var pairs []ranking.Pair
	var exclusions []domain.Exclusion
	for _, o := range outcomes {
		if o.err != nil {
			return nil, fmt.Errorf("%s regime: %w", o.kind, o.err)
		}
		if o.exclusion != nil {
			exclusions = append(exclusions, *o.exclusion)
			continue
		}
		pairs = append(pairs, ranking.Pair{
			Regime:   o.result,
			Personal: e.Personal.Calculate(o.result, inputs, partners),
		})
	}

	return &domain.CalculationRun{
		ID:           runID(inputs, partners),
		SnapshotDate: inputs.SnapshotDate,
		Company:      inputs,
		Partners:     partners,
		Alerts:       alerts,
		Rules:        resolved,
		Regional:     regional,
		Ranked:       ranking.Rank(pairs),
		Exclusions:   exclusions,
	}, nil
}
