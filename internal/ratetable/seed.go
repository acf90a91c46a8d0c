package ratetable

import (
	"errors"
	"fmt"

	"github.com/rgehrsitz/payrate/internal/domain"
)

// FromSeed builds a table from a parsed seed. Components without their own
// rounding precision inherit the seed's, then the two-place default.
func FromSeed(seed *domain.RateSeed) (*Table, error) {
	if seed == nil {
		return nil, errors.New("rate seed is nil")
	}

	b := NewBuilder()
	b.SetCurrency(seed.Metadata.Currency)
	if seed.Metadata.MinorUnitPlaces != nil {
		b.SetDefaultMinorUnitPlaces(*seed.Metadata.MinorUnitPlaces)
	}
	for _, c := range seed.Components {
		if err := b.AddComponent(c); err != nil {
			return nil, fmt.Errorf("failed to add component: %w", err)
		}
	}
	for i, g := range seed.Generations {
		if err := b.AddGeneration(g); err != nil {
			return nil, fmt.Errorf("generation %d (%s from %s): %w",
				i+1, g.Component, domain.FormatDate(g.EffectiveStart), err)
		}
	}

	table, err := b.Build()
	if err != nil {
		return nil, fmt.Errorf("rate table validation failed: %w", err)
	}
	return table, nil
}
