package ratetable

import (
	"errors"
	"fmt"
	"sort"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rgehrsitz/payrate/internal/domain"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// bracketNamespace scopes derived bracket IDs so the same bracket always gets
// the same ID across processes and reloads.
var bracketNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/rgehrsitz/payrate/bracket"))

var tableVersion atomic.Uint64

// Builder accumulates components and brackets and produces an immutable
// Table. It is not safe for concurrent use.
type Builder struct {
	defaultPlaces int32
	currency      string
	components    map[domain.ComponentCode]domain.Component
	brackets      map[domain.ComponentCode][]domain.RateBracket
	ids           map[string]struct{}
}

// NewBuilder creates an empty builder using two-place rounding.
func NewBuilder() *Builder {
	return &Builder{
		defaultPlaces: domain.DefaultMinorUnitPlaces,
		components:    make(map[domain.ComponentCode]domain.Component),
		brackets:      make(map[domain.ComponentCode][]domain.RateBracket),
		ids:           make(map[string]struct{}),
	}
}

// SetDefaultMinorUnitPlaces sets the rounding precision for components that
// do not declare their own.
func (b *Builder) SetDefaultMinorUnitPlaces(places int32) {
	b.defaultPlaces = places
}

// SetCurrency records the ISO currency code the table's amounts are in.
func (b *Builder) SetCurrency(code string) {
	b.currency = code
}

// AddComponent registers metadata for a component.
func (b *Builder) AddComponent(c domain.Component) error {
	if c.Code == "" {
		return errors.New("component code is required")
	}
	if _, exists := b.components[c.Code]; exists {
		return fmt.Errorf("component %s defined twice", c.Code)
	}
	if c.MinorUnitPlaces != nil && *c.MinorUnitPlaces < 0 {
		return fmt.Errorf("component %s: minor unit places cannot be negative", c.Code)
	}
	if c.EmployeeCeiling != nil && c.EmployeeCeiling.IsNegative() {
		return fmt.Errorf("component %s: employee ceiling cannot be negative", c.Code)
	}
	if c.EmployerCeiling != nil && c.EmployerCeiling.IsNegative() {
		return fmt.Errorf("component %s: employer ceiling cannot be negative", c.Code)
	}
	if c.Name == "" {
		c.Name = string(c.Code)
	}
	if c.Kind == "" {
		c.Kind = domain.KindOther
	}
	b.components[c.Code] = c
	return nil
}

// AddBracket validates a bracket and adds it. Brackets of the same component
// whose effective windows overlap must not share more than a boundary value.
func (b *Builder) AddBracket(br domain.RateBracket) error {
	br = normalize(br)
	if err := br.Validate(); err != nil {
		return err
	}
	if br.ID == "" {
		br.ID = bracketID(br)
	}

	// Overlap first: a repeated row derives the same ID as the row it repeats.
	existing := b.brackets[br.ComponentCode]
	starts := effectiveStarts(append(existing[:len(existing):len(existing)], br))
	for _, other := range existing {
		if conflicts(other, br, starts) {
			return &domain.OverlappingBracketRangeError{
				ComponentCode: br.ComponentCode,
				Existing:      other,
				Candidate:     br,
			}
		}
	}
	if _, dup := b.ids[br.ID]; dup {
		return &domain.InvalidBracketError{
			ComponentCode: br.ComponentCode,
			Range:         br.Label(),
			Reason:        fmt.Sprintf("duplicate bracket id %s", br.ID),
		}
	}

	b.brackets[br.ComponentCode] = append(existing, br)
	b.ids[br.ID] = struct{}{}
	return nil
}

// AddGeneration adds every bracket of a seed generation.
func (b *Builder) AddGeneration(g domain.BracketGeneration) error {
	if g.Component == "" {
		return errors.New("generation component is required")
	}
	if len(g.Brackets) == 0 {
		return fmt.Errorf("%s generation %s has no brackets", g.Component, domain.FormatDate(g.EffectiveStart))
	}
	for _, br := range g.RateBrackets() {
		if err := b.AddBracket(br); err != nil {
			return err
		}
	}
	return nil
}

// Build validates the whole table and returns an immutable snapshot. Beyond
// the per-bracket checks it requires every generation to have exactly one
// open-ended top bracket, and progressive generations to agree at shared
// boundaries within one minor unit.
func (b *Builder) Build() (*Table, error) {
	components := make(map[domain.ComponentCode]domain.Component, len(b.components))
	for code, c := range b.components {
		if c.MinorUnitPlaces == nil {
			places := b.defaultPlaces
			c.MinorUnitPlaces = &places
		}
		components[code] = c
	}

	schedules := make(map[domain.ComponentCode][]scheduled, len(b.brackets))
	for code, brackets := range b.brackets {
		component, ok := components[code]
		if !ok {
			component = domain.DefaultComponent(code)
			places := b.defaultPlaces
			component.MinorUnitPlaces = &places
			components[code] = component
		}

		starts := effectiveStarts(brackets)
		for i := range brackets {
			for j := i + 1; j < len(brackets); j++ {
				if conflicts(brackets[i], brackets[j], starts) {
					return nil, &domain.OverlappingBracketRangeError{
						ComponentCode: code,
						Existing:      brackets[i],
						Candidate:     brackets[j],
					}
				}
			}
		}

		generations := lo.GroupBy(brackets, func(br domain.RateBracket) string { return br.WindowLabel() })
		for _, label := range sortedKeys(generations) {
			gen := sortByMin(generations[label])
			if err := checkTopBracket(code, gen); err != nil {
				return nil, err
			}
			if err := checkContinuity(code, gen, component.MinorUnit()); err != nil {
				return nil, err
			}
		}

		entries := make([]scheduled, 0, len(brackets))
		for _, br := range brackets {
			entries = append(entries, scheduled{bracket: clone(br), until: windowEnd(br, starts)})
		}
		sort.SliceStable(entries, func(i, j int) bool {
			a, c := entries[i].bracket, entries[j].bracket
			if !a.EffectiveStart.Equal(c.EffectiveStart) {
				return a.EffectiveStart.Before(c.EffectiveStart)
			}
			return a.RangeMin.LessThan(c.RangeMin)
		})
		schedules[code] = entries
	}

	return &Table{
		version:    tableVersion.Add(1),
		loadedAt:   time.Now().UTC(),
		currency:   b.currency,
		components: components,
		schedules:  schedules,
	}, nil
}

func checkTopBracket(code domain.ComponentCode, gen []domain.RateBracket) error {
	open := lo.Filter(gen, func(br domain.RateBracket, _ int) bool { return br.IsOpenEnded() })
	switch {
	case len(open) == 0:
		return &domain.TopBracketError{ComponentCode: code, EffectiveStart: gen[0].EffectiveStart, Reason: "no open-ended top bracket"}
	case len(open) > 1:
		return &domain.TopBracketError{
			ComponentCode:  code,
			EffectiveStart: gen[0].EffectiveStart,
			Reason:         fmt.Sprintf("%d open-ended brackets", len(open)),
		}
	case !gen[len(gen)-1].IsOpenEnded():
		return &domain.TopBracketError{
			ComponentCode:  code,
			EffectiveStart: gen[0].EffectiveStart,
			Reason:         fmt.Sprintf("open-ended bracket %s is not the highest range", open[0].Label()),
		}
	}
	return nil
}

// checkContinuity compares neighbouring progressive brackets at the upper
// bracket's floor. Neighbours are those sharing a boundary or separated by a
// single minor unit; wider gaps are not evaluated.
func checkContinuity(code domain.ComponentCode, gen []domain.RateBracket, unit decimal.Decimal) error {
	places := -unit.Exponent()
	for i := 0; i+1 < len(gen); i++ {
		lower, upper := gen[i], gen[i+1]
		if lower.Mode != domain.ProgressiveBracket || upper.Mode != domain.ProgressiveBracket || lower.RangeMax == nil {
			continue
		}
		if upper.RangeMin.Sub(*lower.RangeMax).GreaterThan(unit) {
			continue
		}
		boundary := upper.RangeMin
		lowerAmount := lower.ProgressiveLiability(boundary).Round(places)
		upperAmount := upper.ProgressiveLiability(boundary).Round(places)
		if lowerAmount.Sub(upperAmount).Abs().GreaterThan(unit) {
			return &domain.DiscontinuityError{
				ComponentCode:  code,
				EffectiveStart: upper.EffectiveStart,
				Boundary:       boundary,
				LowerAmount:    lowerAmount,
				UpperAmount:    upperAmount,
			}
		}
	}
	return nil
}

// conflicts reports whether two brackets of a component apply to the same
// amounts on some day.
func conflicts(a, b domain.RateBracket, starts []time.Time) bool {
	if !windowsOverlap(a, b, starts) {
		return false
	}
	return a.RangeOverlaps(b)
}

func windowsOverlap(a, b domain.RateBracket, starts []time.Time) bool {
	aEnd, bEnd := windowEnd(a, starts), windowEnd(b, starts)
	if aEnd != nil && aEnd.Before(b.EffectiveStart) {
		return false
	}
	if bEnd != nil && bEnd.Before(a.EffectiveStart) {
		return false
	}
	return true
}

// windowEnd is the declared end, or for an open window the day before the
// next later effective start of the component.
func windowEnd(b domain.RateBracket, starts []time.Time) *time.Time {
	if b.EffectiveEnd != nil {
		end := *b.EffectiveEnd
		return &end
	}
	for _, s := range starts {
		if s.After(b.EffectiveStart) {
			end := s.AddDate(0, 0, -1)
			return &end
		}
	}
	return nil
}

// effectiveStarts returns the distinct starts in ascending order.
func effectiveStarts(brackets []domain.RateBracket) []time.Time {
	starts := lo.UniqBy(
		lo.Map(brackets, func(br domain.RateBracket, _ int) time.Time { return br.EffectiveStart }),
		func(t time.Time) int64 { return t.Unix() },
	)
	sort.Slice(starts, func(i, j int) bool { return starts[i].Before(starts[j]) })
	return starts
}

func sortByMin(brackets []domain.RateBracket) []domain.RateBracket {
	out := append([]domain.RateBracket(nil), brackets...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].RangeMin.LessThan(out[j].RangeMin) })
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := lo.Keys(m)
	sort.Strings(keys)
	return keys
}

func bracketID(br domain.RateBracket) string {
	name := fmt.Sprintf("%s|%s|%s", br.ComponentCode, domain.FormatDate(br.EffectiveStart), br.RangeMin.StringFixed(4))
	return uuid.NewSHA1(bracketNamespace, []byte(name)).String()
}

func normalize(br domain.RateBracket) domain.RateBracket {
	if !br.EffectiveStart.IsZero() {
		br.EffectiveStart = domain.DateOf(br.EffectiveStart)
	}
	if br.EffectiveEnd != nil {
		end := domain.DateOf(*br.EffectiveEnd)
		br.EffectiveEnd = &end
	}
	return clone(br)
}

// clone copies the pointer fields so later edits to the caller's values do
// not reach the table.
func clone(br domain.RateBracket) domain.RateBracket {
	if br.RangeMax != nil {
		v := *br.RangeMax
		br.RangeMax = &v
	}
	if br.EmployeeCeiling != nil {
		v := *br.EmployeeCeiling
		br.EmployeeCeiling = &v
	}
	if br.EmployerCeiling != nil {
		v := *br.EmployerCeiling
		br.EmployerCeiling = &v
	}
	if br.EffectiveEnd != nil {
		v := *br.EffectiveEnd
		br.EffectiveEnd = &v
	}
	return br
}
