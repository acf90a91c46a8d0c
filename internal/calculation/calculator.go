package calculation

import (
	"fmt"

	"github.com/rgehrsitz/payrate/internal/domain"
	"github.com/shopspring/decimal"
)

// Calculator turns a resolved bracket and a basis amount into employee and
// employer amounts.
//
// Amounts are rounded half-up to Places decimals, each side independently,
// and then capped by the lower of the bracket's and the component's ceiling.
// Results are never negative.
type Calculator struct {
	Places          int32
	EmployeeCeiling *decimal.Decimal
	EmployerCeiling *decimal.Decimal
}

// NewCalculator creates a calculator with two-place rounding and no
// component ceilings.
func NewCalculator() *Calculator {
	return &Calculator{Places: domain.DefaultMinorUnitPlaces}
}

// CalculatorFor creates a calculator using a component's rounding precision
// and ceilings.
func CalculatorFor(c domain.Component) *Calculator {
	return &Calculator{
		Places:          c.Places(),
		EmployeeCeiling: c.EmployeeCeiling,
		EmployerCeiling: c.EmployerCeiling,
	}
}

// Calculate evaluates a bracket of any mode.
func (c *Calculator) Calculate(b domain.RateBracket, basis decimal.Decimal) (domain.CalculationResult, error) {
	var employee, employer decimal.Decimal
	switch b.Mode {
	case domain.FixedAmount:
		employee = c.round(b.EmployeeAmount)
		employer = c.round(b.EmployerAmount)
	case domain.PercentageOfBasis:
		employee = c.round(basis.Mul(b.EmployeeRate))
		employer = c.round(basis.Mul(b.EmployerRate))
	case domain.ProgressiveBracket:
		return c.CalculateProgressive(b, basis)
	default:
		return domain.CalculationResult{}, fmt.Errorf("bracket %s of %s: unsupported calculation mode %d",
			b.Label(), b.ComponentCode, int(b.Mode))
	}
	return c.result(b, basis, employee, employer), nil
}

// CalculateProgressive applies base + (basis - floor) * excess rate. Only the
// final figure is rounded. There is no employer share.
func (c *Calculator) CalculateProgressive(b domain.RateBracket, basis decimal.Decimal) (domain.CalculationResult, error) {
	if b.Mode != domain.ProgressiveBracket {
		return domain.CalculationResult{}, fmt.Errorf("bracket %s of %s is %s, not progressive",
			b.Label(), b.ComponentCode, b.Mode)
	}
	employee := c.round(b.ProgressiveLiability(basis))
	return c.result(b, basis, employee, decimal.Zero), nil
}

func (c *Calculator) result(b domain.RateBracket, basis, employee, employer decimal.Decimal) domain.CalculationResult {
	employee = clamp(employee, b.EmployeeCeiling, c.EmployeeCeiling)
	employer = clamp(employer, b.EmployerCeiling, c.EmployerCeiling)
	return domain.CalculationResult{
		ComponentCode:  b.ComponentCode,
		BasisAmount:    basis,
		EmployeeAmount: employee,
		EmployerAmount: employer,
		BracketID:      b.ID,
		Mode:           b.Mode,
	}
}

// round is half away from zero, which is half-up for the non-negative
// amounts that reach it.
func (c *Calculator) round(d decimal.Decimal) decimal.Decimal {
	return d.Round(c.Places)
}

// clamp bounds an amount to [0, lowest ceiling].
func clamp(amount decimal.Decimal, ceilings ...*decimal.Decimal) decimal.Decimal {
	if amount.IsNegative() {
		return decimal.Zero
	}
	for _, ceiling := range ceilings {
		if ceiling != nil && amount.GreaterThan(*ceiling) {
			amount = *ceiling
		}
	}
	return amount
}
