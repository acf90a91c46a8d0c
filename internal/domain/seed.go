package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// RateSeed is the structured record shape supplied by rate-table ingestion:
// component metadata plus bracket generations. It is loaded from seed YAML
// files (one per authority or fiscal year) and merged.
type RateSeed struct {
	Metadata    SeedMetadata        `yaml:"metadata" json:"metadata"`
	Components  []Component         `yaml:"components" json:"components"`
	Generations []BracketGeneration `yaml:"generations" json:"generations"`
}

// SeedMetadata describes where a seed's figures come from.
type SeedMetadata struct {
	Jurisdiction    string `yaml:"jurisdiction" json:"jurisdiction"`
	Authority       string `yaml:"authority" json:"authority"`
	Currency        string `yaml:"currency" json:"currency"`
	MinorUnitPlaces *int32 `yaml:"minor_unit_places,omitempty" json:"minor_unit_places,omitempty"`
	LastUpdated     string `yaml:"last_updated" json:"last_updated"`
	Description     string `yaml:"description" json:"description"`
	Source          string `yaml:"source" json:"source"`
}

// BracketGeneration is the set of brackets one component publishes for one
// effective period. A later generation supersedes an earlier one from its
// effective start; the earlier one stays for historical recomputation.
type BracketGeneration struct {
	Component      ComponentCode `yaml:"component" json:"component"`
	EffectiveStart time.Time     `yaml:"effective_start" json:"effective_start"`
	EffectiveEnd   *time.Time    `yaml:"effective_end,omitempty" json:"effective_end,omitempty"`
	Notes          string        `yaml:"notes,omitempty" json:"notes,omitempty"`
	Brackets       []SeedBracket `yaml:"brackets" json:"brackets"`
}

// SeedBracket is one bracket row inside a generation.
type SeedBracket struct {
	ID              string           `yaml:"id,omitempty" json:"id,omitempty"`
	Min             decimal.Decimal  `yaml:"min" json:"min"`
	Max             *decimal.Decimal `yaml:"max,omitempty" json:"max,omitempty"`
	Mode            CalculationMode  `yaml:"mode" json:"mode"`
	EmployeeAmount  decimal.Decimal  `yaml:"employee_amount" json:"employee_amount"`
	EmployerAmount  decimal.Decimal  `yaml:"employer_amount" json:"employer_amount"`
	EmployeeRate    decimal.Decimal  `yaml:"employee_rate" json:"employee_rate"`
	EmployerRate    decimal.Decimal  `yaml:"employer_rate" json:"employer_rate"`
	BaseAmount      decimal.Decimal  `yaml:"base_amount" json:"base_amount"`
	ExcessRate      decimal.Decimal  `yaml:"excess_rate" json:"excess_rate"`
	EmployeeCeiling *decimal.Decimal `yaml:"employee_ceiling,omitempty" json:"employee_ceiling,omitempty"`
	EmployerCeiling *decimal.Decimal `yaml:"employer_ceiling,omitempty" json:"employer_ceiling,omitempty"`
}

// RateBrackets expands the generation into standalone brackets carrying the
// generation's component and effective window.
func (g BracketGeneration) RateBrackets() []RateBracket {
	start := DateOf(g.EffectiveStart)
	var end *time.Time
	if g.EffectiveEnd != nil {
		e := DateOf(*g.EffectiveEnd)
		end = &e
	}

	brackets := make([]RateBracket, 0, len(g.Brackets))
	for _, sb := range g.Brackets {
		brackets = append(brackets, RateBracket{
			ID:              sb.ID,
			ComponentCode:   g.Component,
			RangeMin:        sb.Min,
			RangeMax:        sb.Max,
			Mode:            sb.Mode,
			EmployeeAmount:  sb.EmployeeAmount,
			EmployerAmount:  sb.EmployerAmount,
			EmployeeRate:    sb.EmployeeRate,
			EmployerRate:    sb.EmployerRate,
			BaseAmount:      sb.BaseAmount,
			ExcessRate:      sb.ExcessRate,
			EmployeeCeiling: sb.EmployeeCeiling,
			EmployerCeiling: sb.EmployerCeiling,
			EffectiveStart:  start,
			EffectiveEnd:    end,
		})
	}
	return brackets
}

// Merge appends another seed's components and generations. Metadata of the
// receiver wins; empty fields are filled from other.
func (s *RateSeed) Merge(other *RateSeed) {
	if other == nil {
		return
	}
	if s.Metadata.Jurisdiction == "" {
		s.Metadata.Jurisdiction = other.Metadata.Jurisdiction
	}
	if s.Metadata.Currency == "" {
		s.Metadata.Currency = other.Metadata.Currency
	}
	if s.Metadata.MinorUnitPlaces == nil {
		s.Metadata.MinorUnitPlaces = other.Metadata.MinorUnitPlaces
	}
	s.Components = append(s.Components, other.Components...)
	s.Generations = append(s.Generations, other.Generations...)
}
