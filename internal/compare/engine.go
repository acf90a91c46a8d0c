package compare

import (
	"context"
	"fmt"
	"time"

	"github.com/rgehrsitz/payrate/internal/calculation"
	"github.com/rgehrsitz/payrate/internal/domain"
	"github.com/shopspring/decimal"
)

// CompareEngine evaluates one compensation basis on several dates to show
// the effect of a change in statutory schedules.
type CompareEngine struct {
	CalcEngine        *calculation.Engine
	MetricsCalculator *MetricsCalculator
}

// NewCompareEngine creates a new comparison engine
func NewCompareEngine(calcEngine *calculation.Engine) *CompareEngine {
	return &CompareEngine{
		CalcEngine:        calcEngine,
		MetricsCalculator: NewMetricsCalculator(),
	}
}

// CompareOptions configures comparison behavior
type CompareOptions struct {
	Reference  string
	Amount     decimal.Decimal
	BaseDate   time.Time
	Dates      []time.Time            // alternative dates compared against BaseDate
	Components []domain.ComponentCode // empty means every configured component
}

// Compare evaluates the basis on the base date and on every alternative date.
// All dates are evaluated against the same rate table snapshot.
func (ce *CompareEngine) Compare(ctx context.Context, options CompareOptions) (*ComparisonSet, error) {
	if len(options.Dates) == 0 {
		return nil, fmt.Errorf("at least one date to compare against is required")
	}

	bases := make([]domain.CompensationBasis, 0, len(options.Dates)+1)
	for _, asOf := range append([]time.Time{options.BaseDate}, options.Dates...) {
		bases = append(bases, domain.CompensationBasis{
			Reference: options.Reference,
			Amount:    options.Amount,
			AsOf:      asOf,
		})
	}

	evals, err := calculation.NewBatchEvaluator(ce.CalcEngine, 0).EvaluateAll(ctx, bases, options.Components)
	if err != nil {
		return nil, fmt.Errorf("failed to evaluate comparison: %w", err)
	}

	baseResult := ce.MetricsCalculator.CalculateMetrics(&evals[0])
	baseResult = ce.MetricsCalculator.CalculateComparison(baseResult, baseResult)

	alternatives := make([]ComparisonResult, 0, len(evals)-1)
	for i := 1; i < len(evals); i++ {
		alt := ce.MetricsCalculator.CalculateMetrics(&evals[i])
		alternatives = append(alternatives, ce.MetricsCalculator.CalculateComparison(alt, baseResult))
	}

	compSet := &ComparisonSet{
		Reference:          options.Reference,
		Basis:              options.Amount,
		BaseResult:         &baseResult,
		AlternativeResults: alternatives,
	}
	compSet.Highlights = GenerateHighlights(compSet)

	return compSet, nil
}
