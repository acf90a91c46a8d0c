package domain

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// CompensationBasis is the input of one evaluation: the amount deductions are
// computed against and the pay date that selects the rates in force.
// Reference is an opaque caller key (employee number, payroll line id).
type CompensationBasis struct {
	Reference string          `json:"reference,omitempty"`
	Amount    decimal.Decimal `json:"amount"`
	AsOf      time.Time       `json:"asOf"`
}

// CalculationResult is the outcome of evaluating one bracket. BracketID only
// identifies the bracket used; the result does not own it.
type CalculationResult struct {
	ComponentCode  ComponentCode   `json:"componentCode"`
	BasisAmount    decimal.Decimal `json:"basisAmount"`
	EmployeeAmount decimal.Decimal `json:"employeeAmount"`
	EmployerAmount decimal.Decimal `json:"employerAmount"`
	BracketID      string          `json:"bracketId"`
	Mode           CalculationMode `json:"mode"`
}

// Totals sums employee and employer amounts.
type Totals struct {
	Employee decimal.Decimal `json:"totalEmployeeAmount"`
	Employer decimal.Decimal `json:"totalEmployerAmount"`
}

// Add returns the totals with one result added.
func (t Totals) Add(r CalculationResult) Totals {
	return Totals{
		Employee: t.Employee.Add(r.EmployeeAmount),
		Employer: t.Employer.Add(r.EmployerAmount),
	}
}

// Merge returns the sum of two totals.
func (t Totals) Merge(o Totals) Totals {
	return Totals{Employee: t.Employee.Add(o.Employee), Employer: t.Employer.Add(o.Employer)}
}

// Combined is the employee plus employer cost.
func (t Totals) Combined() decimal.Decimal {
	return t.Employee.Add(t.Employer)
}

// Warning records an optional component that was skipped.
type Warning struct {
	ComponentCode ComponentCode `json:"componentCode"`
	Reason        string        `json:"reason"`
}

// Evaluation is the aggregate result for one compensation basis.
type Evaluation struct {
	Basis    CompensationBasis   `json:"basis"`
	Results  []CalculationResult `json:"results"`
	Totals   Totals              `json:"totals"`
	Warnings []Warning           `json:"warnings"`
}

// Result returns the result for a component, if it was evaluated.
func (e *Evaluation) Result(code ComponentCode) (CalculationResult, bool) {
	for _, r := range e.Results {
		if r.ComponentCode == code {
			return r, true
		}
	}
	return CalculationResult{}, false
}

// BatchSummary rolls up many evaluations, e.g. one payroll run.
type BatchSummary struct {
	Lines       int                      `json:"lines"`
	Warnings    int                      `json:"warnings"`
	Totals      Totals                   `json:"totals"`
	ByComponent map[ComponentCode]Totals `json:"byComponent"`
}

// Summarize totals a set of evaluations overall and per component.
func Summarize(evals []Evaluation) BatchSummary {
	summary := BatchSummary{ByComponent: map[ComponentCode]Totals{}}
	for _, ev := range evals {
		summary.Lines++
		summary.Warnings += len(ev.Warnings)
		summary.Totals = summary.Totals.Merge(ev.Totals)
		for _, r := range ev.Results {
			summary.ByComponent[r.ComponentCode] = summary.ByComponent[r.ComponentCode].Add(r)
		}
	}
	return summary
}

// ComponentCodes returns the summarized components in code order.
func (s BatchSummary) ComponentCodes() []ComponentCode {
	codes := make([]ComponentCode, 0, len(s.ByComponent))
	for code := range s.ByComponent {
		codes = append(codes, code)
	}
	sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })
	return codes
}
