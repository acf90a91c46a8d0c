package config

import (
	"fmt"
	"os"
	"time"

	"github.com/rgehrsitz/payrate/internal/domain"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// BasisFile is a batch of compensation lines, typically one payroll run.
//
//	as_of: 2024-03-31
//	components: [SSS, PHILHEALTH]
//	lines:
//	  - reference: E-001
//	    amount: 25000
type BasisFile struct {
	AsOf       time.Time              `yaml:"as_of"`
	Components []domain.ComponentCode `yaml:"components,omitempty"`
	Lines      []BasisLine            `yaml:"lines"`
}

// BasisLine is one compensation line. AsOf overrides the file date.
type BasisLine struct {
	Reference string          `yaml:"reference"`
	Amount    decimal.Decimal `yaml:"amount"`
	AsOf      *time.Time      `yaml:"as_of,omitempty"`
}

// LoadBasisFile reads and validates a batch file.
func LoadBasisFile(filename string) (*BasisFile, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read batch file %s: %w", filename, err)
	}

	var file BasisFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if err := file.Validate(); err != nil {
		return nil, fmt.Errorf("batch file validation failed: %w", err)
	}
	return &file, nil
}

// Validate requires a date for every line and a non-negative amount.
func (f *BasisFile) Validate() error {
	if len(f.Lines) == 0 {
		return fmt.Errorf("at least one line is required")
	}
	for i, l := range f.Lines {
		if l.AsOf == nil && f.AsOf.IsZero() {
			return fmt.Errorf("line %d (%s): as_of is required when the file has none", i+1, l.Reference)
		}
		if l.Amount.IsNegative() {
			return fmt.Errorf("line %d (%s): amount cannot be negative", i+1, l.Reference)
		}
	}
	return nil
}

// Bases converts the lines into compensation bases.
func (f *BasisFile) Bases() []domain.CompensationBasis {
	bases := make([]domain.CompensationBasis, 0, len(f.Lines))
	for _, l := range f.Lines {
		asOf := f.AsOf
		if l.AsOf != nil {
			asOf = *l.AsOf
		}
		bases = append(bases, domain.CompensationBasis{
			Reference: l.Reference,
			Amount:    l.Amount,
			AsOf:      domain.DateOf(asOf),
		})
	}
	return bases
}
