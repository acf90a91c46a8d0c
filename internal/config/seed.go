package config

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rgehrsitz/payrate/internal/domain"
	"github.com/rgehrsitz/payrate/internal/ratetable"
	"gopkg.in/yaml.v3"
)

//go:embed seeds/*.yaml
var defaultSeeds embed.FS

// SeedParser reads rate seed files.
type SeedParser struct{}

// NewSeedParser creates a new seed parser
func NewSeedParser() *SeedParser {
	return &SeedParser{}
}

// LoadFromFile loads and validates a single YAML (or JSON) seed file.
func (sp *SeedParser) LoadFromFile(filename string) (*domain.RateSeed, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file %s: %w", filename, err)
	}
	seed, err := sp.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return seed, nil
}

// Parse decodes and validates seed content.
func (sp *SeedParser) Parse(data []byte) (*domain.RateSeed, error) {
	var seed domain.RateSeed
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if err := sp.ValidateSeed(&seed); err != nil {
		return nil, fmt.Errorf("seed validation failed: %w", err)
	}
	return &seed, nil
}

// LoadDir merges every *.yaml and *.yml seed in a directory, in file name
// order.
func (sp *SeedParser) LoadDir(dir string) (*domain.RateSeed, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed directory %s: %w", dir, err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || !isSeedFile(e.Name()) {
			continue
		}
		names = append(names, e.Name())
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("no seed files in %s", dir)
	}
	sort.Strings(names)

	merged := &domain.RateSeed{}
	for _, name := range names {
		seed, err := sp.LoadFromFile(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		merged.Merge(seed)
	}
	return merged, nil
}

// Load reads a seed file or a directory of seed files. An empty path loads
// the embedded default seed.
func (sp *SeedParser) Load(path string) (*domain.RateSeed, error) {
	if path == "" {
		return sp.DefaultSeed()
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open seed %s: %w", path, err)
	}
	if info.IsDir() {
		return sp.LoadDir(path)
	}
	return sp.LoadFromFile(path)
}

// DefaultSeed returns the built-in Philippine statutory tables (SSS with MPF,
// PhilHealth, Pag-IBIG and BIR withholding tax).
func (sp *SeedParser) DefaultSeed() (*domain.RateSeed, error) {
	names, err := fs.Glob(defaultSeeds, "seeds/*.yaml")
	if err != nil {
		return nil, fmt.Errorf("failed to list embedded seeds: %w", err)
	}
	sort.Strings(names)

	merged := &domain.RateSeed{}
	for _, name := range names {
		data, err := defaultSeeds.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("failed to read embedded seed %s: %w", name, err)
		}
		seed, err := sp.Parse(data)
		if err != nil {
			return nil, fmt.Errorf("embedded seed %s: %w", name, err)
		}
		merged.Merge(seed)
	}
	return merged, nil
}

// LoadTable loads a seed from path (see Load) and builds a rate table from
// it. It is the loader used for store refreshes.
func (sp *SeedParser) LoadTable(path string) (*ratetable.Table, error) {
	seed, err := sp.Load(path)
	if err != nil {
		return nil, err
	}
	return ratetable.FromSeed(seed)
}

// ValidateSeed checks the structure of a seed. Range overlaps and
// cross-bracket rules are left to the rate table builder.
func (sp *SeedParser) ValidateSeed(seed *domain.RateSeed) error {
	if seed.Metadata.MinorUnitPlaces != nil && *seed.Metadata.MinorUnitPlaces < 0 {
		return fmt.Errorf("minor_unit_places cannot be negative")
	}

	seen := make(map[domain.ComponentCode]bool)
	for i, c := range seed.Components {
		if c.Code == "" {
			return fmt.Errorf("component %d: code is required", i+1)
		}
		if seen[c.Code] {
			return fmt.Errorf("component %s is defined more than once", c.Code)
		}
		seen[c.Code] = true
	}

	for i, g := range seed.Generations {
		if err := sp.validateGeneration(g); err != nil {
			return fmt.Errorf("generation %d (%s) validation failed: %w", i+1, g.Component, err)
		}
	}
	return nil
}

func (sp *SeedParser) validateGeneration(g domain.BracketGeneration) error {
	if g.Component == "" {
		return fmt.Errorf("component is required")
	}
	if g.EffectiveStart.IsZero() {
		return fmt.Errorf("effective_start is required")
	}
	if len(g.Brackets) == 0 {
		return fmt.Errorf("at least one bracket is required")
	}
	for _, b := range g.RateBrackets() {
		if err := b.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func isSeedFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".yaml" || ext == ".yml"
}
