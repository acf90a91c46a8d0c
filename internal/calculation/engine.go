package calculation

import (
	"time"

	"github.com/rgehrsitz/payrate/internal/domain"
	"github.com/rgehrsitz/payrate/internal/ratetable"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// TableSource hands out the current rate table snapshot. *ratetable.Store
// satisfies it.
type TableSource interface {
	Current() *ratetable.Table
}

// Engine resolves and evaluates statutory components against the snapshot
// published by its source. It holds no mutable state of its own and is safe
// for concurrent use once the logger is set.
type Engine struct {
	source TableSource
	logger Logger
}

// NewEngine creates an engine reading snapshots from source.
func NewEngine(source TableSource) *Engine {
	return &Engine{source: source, logger: NopLogger{}}
}

// SetLogger sets the logger used for resolution traces and skipped-component
// warnings. A nil logger restores the NopLogger.
func (e *Engine) SetLogger(l Logger) {
	if l == nil {
		l = NopLogger{}
	}
	e.logger = l
}

func (e *Engine) snapshot() (*ratetable.Table, error) {
	t := e.source.Current()
	if t == nil {
		return nil, domain.ErrNoRateTable
	}
	return t, nil
}

// Resolve selects the bracket of code that applies to amount on asOf in the
// current snapshot.
func (e *Engine) Resolve(code domain.ComponentCode, amount decimal.Decimal, asOf time.Time) (domain.RateBracket, error) {
	t, err := e.snapshot()
	if err != nil {
		return domain.RateBracket{}, err
	}
	return Resolve(t, code, amount, asOf)
}

// EvaluateComponents resolves and calculates every requested component for
// one compensation basis. An empty code list evaluates every component in
// the table.
//
// A mandatory component that cannot be resolved or calculated aborts the
// evaluation with a *domain.ComponentCalculationFailedError and no partial
// result. Optional components that fail are omitted and reported as
// warnings; the totals cover only the results returned.
func (e *Engine) EvaluateComponents(basis domain.CompensationBasis, codes []domain.ComponentCode) (*domain.Evaluation, error) {
	t, err := e.snapshot()
	if err != nil {
		return nil, err
	}
	return e.evaluate(t, basis, codes)
}

func (e *Engine) evaluate(t *ratetable.Table, basis domain.CompensationBasis, codes []domain.ComponentCode) (*domain.Evaluation, error) {
	if len(codes) == 0 {
		codes = t.ComponentCodes()
	}
	codes = lo.Uniq(codes)
	basis.AsOf = domain.DateOf(basis.AsOf)

	ev := &domain.Evaluation{
		Basis:    basis,
		Results:  make([]domain.CalculationResult, 0, len(codes)),
		Warnings: []domain.Warning{},
	}
	for _, code := range codes {
		component := t.Component(code)
		result, err := e.evaluateOne(t, component, basis)
		if err != nil {
			if component.Optional {
				e.logger.Warnf("skipping optional component %s for %s: %v", code, describe(basis), err)
				ev.Warnings = append(ev.Warnings, domain.Warning{ComponentCode: code, Reason: err.Error()})
				continue
			}
			e.logger.Errorf("mandatory component %s failed for %s: %v", code, describe(basis), err)
			return nil, &domain.ComponentCalculationFailedError{ComponentCode: code, Cause: err}
		}
		ev.Results = append(ev.Results, result)
		ev.Totals = ev.Totals.Add(result)
	}
	return ev, nil
}

func (e *Engine) evaluateOne(t *ratetable.Table, component domain.Component, basis domain.CompensationBasis) (domain.CalculationResult, error) {
	bracket, err := Resolve(t, component.Code, basis.Amount, basis.AsOf)
	if err != nil {
		return domain.CalculationResult{}, err
	}
	e.logger.Debugf("%s: %s resolved to bracket %s (%s, %s)",
		describe(basis), component.Code, bracket.ID, bracket.Label(), bracket.Mode)
	return CalculatorFor(component).Calculate(bracket, basis.Amount)
}

func describe(basis domain.CompensationBasis) string {
	if basis.Reference != "" {
		return basis.Reference
	}
	return basis.Amount.StringFixed(2) + " on " + domain.FormatDate(basis.AsOf)
}
