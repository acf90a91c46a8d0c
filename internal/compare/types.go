package compare

import (
	"fmt"
	"time"

	"github.com/rgehrsitz/payrate/internal/domain"
	"github.com/shopspring/decimal"
)

// ComponentDiff is the change in one component between the base evaluation
// and another date. A component skipped on one side counts as zero there.
type ComponentDiff struct {
	ComponentCode  domain.ComponentCode `json:"componentCode"`
	BaseEmployee   decimal.Decimal      `json:"baseEmployee"`
	Employee       decimal.Decimal      `json:"employee"`
	EmployeeDiff   decimal.Decimal      `json:"employeeDiff"`
	BaseEmployer   decimal.Decimal      `json:"baseEmployer"`
	Employer       decimal.Decimal      `json:"employer"`
	EmployerDiff   decimal.Decimal      `json:"employerDiff"`
	BracketChanged bool                 `json:"bracketChanged"`
}

// Changed reports whether either side's amount moved.
func (d ComponentDiff) Changed() bool {
	return !d.EmployeeDiff.IsZero() || !d.EmployerDiff.IsZero()
}

// ComparisonResult is the evaluation of the basis on one date with its
// change from the base date.
type ComparisonResult struct {
	Label      string             `json:"label"`
	AsOf       time.Time          `json:"asOf"`
	Evaluation *domain.Evaluation `json:"evaluation"`

	EmployeeTotal decimal.Decimal `json:"employeeTotal"`
	EmployerTotal decimal.Decimal `json:"employerTotal"`

	// Comparison to base
	EmployeeDiffFromBase decimal.Decimal `json:"employeeDiffFromBase"`
	EmployeePctFromBase  decimal.Decimal `json:"employeePctFromBase"`
	EmployerDiffFromBase decimal.Decimal `json:"employerDiffFromBase"`
	EmployerPctFromBase  decimal.Decimal `json:"employerPctFromBase"`
	ComponentDiffs       []ComponentDiff `json:"componentDiffs"`
}

// ComparisonSet is one basis amount evaluated on a base date and on each
// alternative date.
type ComparisonSet struct {
	Reference          string             `json:"reference,omitempty"`
	Basis              decimal.Decimal    `json:"basis"`
	BaseResult         *ComparisonResult  `json:"baseResult"`
	AlternativeResults []ComparisonResult `json:"alternativeResults"`
	Highlights         []string           `json:"highlights"`
}

// MetricsCalculator derives totals and deltas from evaluations.
type MetricsCalculator struct{}

// NewMetricsCalculator creates a new metrics calculator
func NewMetricsCalculator() *MetricsCalculator {
	return &MetricsCalculator{}
}

// CalculateMetrics wraps an evaluation with its totals.
func (mc *MetricsCalculator) CalculateMetrics(ev *domain.Evaluation) ComparisonResult {
	return ComparisonResult{
		Label:         domain.FormatDate(ev.Basis.AsOf),
		AsOf:          ev.Basis.AsOf,
		Evaluation:    ev,
		EmployeeTotal: ev.Totals.Employee,
		EmployerTotal: ev.Totals.Employer,
	}
}

// CalculateComparison fills in the deltas of result against base.
// Components appear in base order followed by any only the result has.
func (mc *MetricsCalculator) CalculateComparison(result, base ComparisonResult) ComparisonResult {
	result.EmployeeDiffFromBase = result.EmployeeTotal.Sub(base.EmployeeTotal)
	result.EmployerDiffFromBase = result.EmployerTotal.Sub(base.EmployerTotal)
	result.EmployeePctFromBase = percentChange(result.EmployeeDiffFromBase, base.EmployeeTotal)
	result.EmployerPctFromBase = percentChange(result.EmployerDiffFromBase, base.EmployerTotal)

	codes := make([]domain.ComponentCode, 0, len(base.Evaluation.Results)+len(result.Evaluation.Results))
	seen := map[domain.ComponentCode]bool{}
	for _, r := range append(append([]domain.CalculationResult(nil), base.Evaluation.Results...), result.Evaluation.Results...) {
		if !seen[r.ComponentCode] {
			seen[r.ComponentCode] = true
			codes = append(codes, r.ComponentCode)
		}
	}

	result.ComponentDiffs = make([]ComponentDiff, 0, len(codes))
	for _, code := range codes {
		before, hadBefore := base.Evaluation.Result(code)
		after, hadAfter := result.Evaluation.Result(code)
		result.ComponentDiffs = append(result.ComponentDiffs, ComponentDiff{
			ComponentCode:  code,
			BaseEmployee:   before.EmployeeAmount,
			Employee:       after.EmployeeAmount,
			EmployeeDiff:   after.EmployeeAmount.Sub(before.EmployeeAmount),
			BaseEmployer:   before.EmployerAmount,
			Employer:       after.EmployerAmount,
			EmployerDiff:   after.EmployerAmount.Sub(before.EmployerAmount),
			BracketChanged: hadBefore != hadAfter || before.BracketID != after.BracketID,
		})
	}
	return result
}

func percentChange(diff, base decimal.Decimal) decimal.Decimal {
	if base.IsZero() {
		return decimal.Zero
	}
	return diff.Div(base).Mul(decimal.NewFromInt(100)).Round(2)
}

// GenerateHighlights summarizes the comparison in a few sentences.
func GenerateHighlights(compSet *ComparisonSet) []string {
	highlights := []string{}

	if len(compSet.AlternativeResults) == 0 {
		return highlights
	}

	for _, alt := range compSet.AlternativeResults {
		if alt.EmployeeDiffFromBase.IsZero() && alt.EmployerDiffFromBase.IsZero() {
			highlights = append(highlights, fmt.Sprintf("%s: no change from %s", alt.Label, compSet.BaseResult.Label))
			continue
		}
		highlights = append(highlights, fmt.Sprintf("%s: employee deductions %s (%s%%), employer contributions %s (%s%%)",
			alt.Label,
			signed(alt.EmployeeDiffFromBase), signed(alt.EmployeePctFromBase),
			signed(alt.EmployerDiffFromBase), signed(alt.EmployerPctFromBase)))
	}

	// Largest single component move on the employee side
	var largest *ComponentDiff
	var largestAt string
	for i := range compSet.AlternativeResults {
		alt := &compSet.AlternativeResults[i]
		for j := range alt.ComponentDiffs {
			diff := &alt.ComponentDiffs[j]
			if largest == nil || diff.EmployeeDiff.Abs().GreaterThan(largest.EmployeeDiff.Abs()) {
				largest, largestAt = diff, alt.Label
			}
		}
	}
	if largest != nil && !largest.EmployeeDiff.IsZero() {
		highlights = append(highlights, fmt.Sprintf("Largest employee change: %s on %s (%s)",
			largest.ComponentCode, largestAt, signed(largest.EmployeeDiff)))
	}

	return highlights
}

func signed(d decimal.Decimal) string {
	if d.IsPositive() {
		return "+" + d.StringFixed(2)
	}
	return d.StringFixed(2)
}
