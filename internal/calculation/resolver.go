package calculation

import (
	"time"

	"github.com/rgehrsitz/payrate/internal/domain"
	"github.com/shopspring/decimal"
)

// RateTable is the read side of a rate table snapshot that resolution needs.
// *ratetable.Table satisfies it.
type RateTable interface {
	Effective(code domain.ComponentCode, asOf time.Time) ([]domain.RateBracket, error)
	Component(code domain.ComponentCode) domain.Component
}

// Resolve selects the single bracket of a component that applies to amount on
// asOf.
//
// Ranges are closed, so an amount on a shared boundary matches the lower
// bracket first. Amounts below every range fall to a bracket starting at zero
// when one exists. A gap of at most one minor unit between consecutive
// brackets (4249.99 then 4250.00) belongs to the lower bracket. Anything else
// outside every range is a *domain.BracketNotFoundError.
func Resolve(table RateTable, code domain.ComponentCode, amount decimal.Decimal, asOf time.Time) (domain.RateBracket, error) {
	brackets, err := table.Effective(code, asOf)
	if err != nil {
		return domain.RateBracket{}, err
	}
	notFound := &domain.BracketNotFoundError{ComponentCode: code, Amount: amount, AsOf: domain.DateOf(asOf)}
	if len(brackets) == 0 {
		return domain.RateBracket{}, notFound
	}

	if amount.LessThan(brackets[0].RangeMin) {
		if brackets[0].RangeMin.IsZero() {
			return brackets[0], nil
		}
		return domain.RateBracket{}, notFound
	}

	unit := table.Component(code).MinorUnit()
	for i, b := range brackets {
		if b.ContainsAmount(amount) {
			return b, nil
		}
		if b.RangeMax == nil || i+1 == len(brackets) {
			continue
		}
		next := brackets[i+1]
		if amount.GreaterThan(*b.RangeMax) && amount.LessThan(next.RangeMin) &&
			next.RangeMin.Sub(*b.RangeMax).LessThanOrEqual(unit) {
			return b, nil
		}
	}
	return domain.RateBracket{}, notFound
}
