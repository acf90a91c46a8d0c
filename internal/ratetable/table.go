// Package ratetable holds validated, immutable snapshots of statutory rate
// brackets and the builder that produces them.
package ratetable

import (
	"sort"
	"time"

	"github.com/rgehrsitz/payrate/internal/domain"
	"github.com/samber/lo"
)

// Table is an immutable snapshot of every bracket generation known for a set
// of components. It is safe for concurrent readers; refreshes publish a new
// Table rather than editing this one.
type Table struct {
	version    uint64
	loadedAt   time.Time
	currency   string
	components map[domain.ComponentCode]domain.Component
	schedules  map[domain.ComponentCode][]scheduled
}

// scheduled is a bracket together with the last day it is in force once open
// windows have been closed by later generations.
type scheduled struct {
	bracket domain.RateBracket
	until   *time.Time
}

func (s scheduled) inForce(day time.Time) bool {
	if day.Before(s.bracket.EffectiveStart) {
		return false
	}
	return s.until == nil || !day.After(*s.until)
}

// Version increases with every table built in this process.
func (t *Table) Version() uint64 { return t.version }

// LoadedAt is when the table was built.
func (t *Table) LoadedAt() time.Time { return t.loadedAt }

// Currency is the seed's currency code, empty when the seed names none.
func (t *Table) Currency() string { return t.currency }

// ComponentCodes lists the components that have at least one bracket, in code
// order.
func (t *Table) ComponentCodes() []domain.ComponentCode {
	codes := lo.Keys(t.schedules)
	sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })
	return codes
}

// Component returns the metadata for code, falling back to the mandatory
// two-place default when the seed did not define it.
func (t *Table) Component(code domain.ComponentCode) domain.Component {
	if c, ok := t.components[code]; ok {
		return c
	}
	return domain.DefaultComponent(code)
}

// Load returns every bracket of a component, all generations included,
// ordered by effective start and then by range minimum.
func (t *Table) Load(code domain.ComponentCode) ([]domain.RateBracket, error) {
	entries, ok := t.schedules[code]
	if !ok || len(entries) == 0 {
		return nil, &domain.ComponentNotConfiguredError{ComponentCode: code}
	}
	return lo.Map(entries, func(s scheduled, _ int) domain.RateBracket { return s.bracket }), nil
}

// Effective returns the brackets of a component in force on asOf, ordered by
// range minimum. The slice is empty when the component is configured but no
// generation covers the date.
func (t *Table) Effective(code domain.ComponentCode, asOf time.Time) ([]domain.RateBracket, error) {
	entries, ok := t.schedules[code]
	if !ok || len(entries) == 0 {
		return nil, &domain.ComponentNotConfiguredError{ComponentCode: code}
	}
	day := domain.DateOf(asOf)
	inForce := lo.Filter(entries, func(s scheduled, _ int) bool { return s.inForce(day) })
	brackets := lo.Map(inForce, func(s scheduled, _ int) domain.RateBracket { return s.bracket })
	sort.SliceStable(brackets, func(i, j int) bool {
		return brackets[i].RangeMin.LessThan(brackets[j].RangeMin)
	})
	return brackets, nil
}

// InForceUntil returns the last day a bracket applies, after open windows are
// closed by later generations. A nil result means the bracket is current with
// no end.
func (t *Table) InForceUntil(code domain.ComponentCode, bracketID string) (*time.Time, bool) {
	for _, s := range t.schedules[code] {
		if s.bracket.ID == bracketID {
			return s.until, true
		}
	}
	return nil, false
}

// Generations lists the distinct effective starts of a component, oldest
// first.
func (t *Table) Generations(code domain.ComponentCode) []time.Time {
	starts := lo.UniqBy(t.schedules[code], func(s scheduled) time.Time { return s.bracket.EffectiveStart })
	out := lo.Map(starts, func(s scheduled, _ int) time.Time { return s.bracket.EffectiveStart })
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

// BracketCount is the number of brackets across all components.
func (t *Table) BracketCount() int {
	n := 0
	for _, entries := range t.schedules {
		n += len(entries)
	}
	return n
}
