package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ComponentCode identifies a statutory scheme (a social-insurance fund, a
// housing fund, a tax authority).
type ComponentCode string

// CalculationMode selects how a bracket turns a basis amount into
// employee/employer amounts. The set is closed: every switch over it must
// handle all three modes.
type CalculationMode int

const (
	FixedAmount CalculationMode = iota + 1
	PercentageOfBasis
	ProgressiveBracket
)

func (m CalculationMode) String() string {
	switch m {
	case FixedAmount:
		return "fixed_amount"
	case PercentageOfBasis:
		return "percentage_of_basis"
	case ProgressiveBracket:
		return "progressive_bracket"
	default:
		return "unknown"
	}
}

// ParseCalculationMode accepts the snake_case names used in seed files.
func ParseCalculationMode(s string) (CalculationMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "fixed_amount", "fixed":
		return FixedAmount, nil
	case "percentage_of_basis", "percentage", "percent":
		return PercentageOfBasis, nil
	case "progressive_bracket", "progressive":
		return ProgressiveBracket, nil
	default:
		return 0, fmt.Errorf("unknown calculation mode %q", s)
	}
}

func (m CalculationMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *CalculationMode) UnmarshalText(text []byte) error {
	parsed, err := ParseCalculationMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// RateBracket is one effective rule for one statutory component.
//
// The amount range is closed on both ends. Adjacent brackets may share a
// boundary value; an amount equal to that boundary belongs to the lower
// bracket. A nil RangeMax means the bracket is open-ended at the top.
//
// The effective window is inclusive calendar dates. A nil EffectiveEnd keeps
// the bracket in force until a later generation of the same component starts.
//
// Only the parameters of the bracket's Mode are meaningful:
//   - FixedAmount: EmployeeAmount, EmployerAmount
//   - PercentageOfBasis: EmployeeRate, EmployerRate
//   - ProgressiveBracket: BaseAmount, ExcessRate
type RateBracket struct {
	ID            string           `json:"id"`
	ComponentCode ComponentCode    `json:"componentCode"`
	RangeMin      decimal.Decimal  `json:"rangeMin"`
	RangeMax      *decimal.Decimal `json:"rangeMax,omitempty"`
	Mode          CalculationMode  `json:"mode"`

	EmployeeAmount decimal.Decimal `json:"employeeAmount"`
	EmployerAmount decimal.Decimal `json:"employerAmount"`
	EmployeeRate   decimal.Decimal `json:"employeeRate"`
	EmployerRate   decimal.Decimal `json:"employerRate"`
	BaseAmount     decimal.Decimal `json:"baseAmount"`
	ExcessRate     decimal.Decimal `json:"excessRate"`

	// Caps applied after rounding, independent of the mode.
	EmployeeCeiling *decimal.Decimal `json:"employeeCeiling,omitempty"`
	EmployerCeiling *decimal.Decimal `json:"employerCeiling,omitempty"`

	EffectiveStart time.Time  `json:"effectiveStart"`
	EffectiveEnd   *time.Time `json:"effectiveEnd,omitempty"`
}

// IsOpenEnded reports whether the bracket has no upper amount bound.
func (b RateBracket) IsOpenEnded() bool {
	return b.RangeMax == nil
}

// ContainsAmount reports whether amount lies in [RangeMin, RangeMax].
func (b RateBracket) ContainsAmount(amount decimal.Decimal) bool {
	if amount.LessThan(b.RangeMin) {
		return false
	}
	return b.RangeMax == nil || amount.LessThanOrEqual(*b.RangeMax)
}

// RangeOverlaps reports whether two amount ranges share more than a single
// boundary value.
func (b RateBracket) RangeOverlaps(other RateBracket) bool {
	if b.RangeMax != nil && !other.RangeMin.LessThan(*b.RangeMax) {
		return false
	}
	if other.RangeMax != nil && !b.RangeMin.LessThan(*other.RangeMax) {
		return false
	}
	return true
}

// InEffect reports whether the bracket's declared window contains the
// calendar date of asOf. Open windows are treated as unbounded here; the rate
// table closes them when a later generation exists.
func (b RateBracket) InEffect(asOf time.Time) bool {
	day := DateOf(asOf)
	if day.Before(b.EffectiveStart) {
		return false
	}
	return b.EffectiveEnd == nil || !day.After(*b.EffectiveEnd)
}

// Validate checks the bracket in isolation: bounds, dates and the parameters
// required by its mode.
func (b RateBracket) Validate() error {
	if b.ComponentCode == "" {
		return invalidBracket(b, "component code is required")
	}
	if b.RangeMin.IsNegative() {
		return invalidBracket(b, "range minimum cannot be negative")
	}
	if b.RangeMax != nil && b.RangeMax.LessThan(b.RangeMin) {
		return invalidBracket(b, "range maximum is below range minimum")
	}
	if b.EffectiveStart.IsZero() {
		return invalidBracket(b, "effective start is required")
	}
	if b.EffectiveEnd != nil && b.EffectiveEnd.Before(b.EffectiveStart) {
		return invalidBracket(b, "effective end is before effective start")
	}
	if b.EmployeeCeiling != nil && b.EmployeeCeiling.IsNegative() {
		return invalidBracket(b, "employee ceiling cannot be negative")
	}
	if b.EmployerCeiling != nil && b.EmployerCeiling.IsNegative() {
		return invalidBracket(b, "employer ceiling cannot be negative")
	}

	switch b.Mode {
	case FixedAmount:
		if b.EmployeeAmount.IsNegative() || b.EmployerAmount.IsNegative() {
			return invalidBracket(b, "fixed amounts cannot be negative")
		}
	case PercentageOfBasis:
		if !isFraction(b.EmployeeRate) || !isFraction(b.EmployerRate) {
			return invalidBracket(b, "rates must be between 0 and 1")
		}
	case ProgressiveBracket:
		if b.BaseAmount.IsNegative() {
			return invalidBracket(b, "base amount cannot be negative")
		}
		if !isFraction(b.ExcessRate) {
			return invalidBracket(b, "excess rate must be between 0 and 1")
		}
	default:
		return invalidBracket(b, fmt.Sprintf("unsupported calculation mode %d", int(b.Mode)))
	}
	return nil
}

// ProgressiveLiability evaluates base + (basis - RangeMin) * ExcessRate
// without rounding. Callers round the final figure only.
func (b RateBracket) ProgressiveLiability(basis decimal.Decimal) decimal.Decimal {
	return b.BaseAmount.Add(basis.Sub(b.RangeMin).Mul(b.ExcessRate))
}

// Label renders the amount range for messages and reports.
func (b RateBracket) Label() string {
	if b.RangeMax == nil {
		return fmt.Sprintf("%s and over", b.RangeMin.StringFixed(2))
	}
	return fmt.Sprintf("%s - %s", b.RangeMin.StringFixed(2), b.RangeMax.StringFixed(2))
}

// WindowLabel renders the declared effective window.
func (b RateBracket) WindowLabel() string {
	end := "open"
	if b.EffectiveEnd != nil {
		end = FormatDate(*b.EffectiveEnd)
	}
	return FormatDate(b.EffectiveStart) + " .. " + end
}

func isFraction(d decimal.Decimal) bool {
	return !d.IsNegative() && d.LessThanOrEqual(decimal.NewFromInt(1))
}

func invalidBracket(b RateBracket, reason string) error {
	return &InvalidBracketError{ComponentCode: b.ComponentCode, Range: b.Label(), Reason: reason}
}
