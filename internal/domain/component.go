package domain

import (
	"github.com/shopspring/decimal"
)

// DefaultMinorUnitPlaces is the rounding precision for the currencies in
// scope (centavos, cents).
const DefaultMinorUnitPlaces int32 = 2

// ComponentKind classifies a statutory component for reporting.
type ComponentKind string

const (
	KindSocialInsurance ComponentKind = "social_insurance"
	KindHealthInsurance ComponentKind = "health_insurance"
	KindHousingFund     ComponentKind = "housing_fund"
	KindWithholdingTax  ComponentKind = "withholding_tax"
	KindOther           ComponentKind = "other"
)

// Component carries per-scheme metadata that applies to every bracket
// generation of that scheme.
//
// Optional components that have no applicable bracket are skipped with a
// warning; mandatory ones (the zero value) abort the evaluation.
type Component struct {
	Code            ComponentCode    `yaml:"code" json:"code"`
	Name            string           `yaml:"name" json:"name"`
	Kind            ComponentKind    `yaml:"kind" json:"kind"`
	Optional        bool             `yaml:"optional" json:"optional"`
	EmployeeCeiling *decimal.Decimal `yaml:"employee_ceiling,omitempty" json:"employeeCeiling,omitempty"`
	EmployerCeiling *decimal.Decimal `yaml:"employer_ceiling,omitempty" json:"employerCeiling,omitempty"`
	MinorUnitPlaces *int32           `yaml:"minor_unit_places,omitempty" json:"minorUnitPlaces,omitempty"`
}

// Places returns the rounding precision for the component.
func (c Component) Places() int32 {
	if c.MinorUnitPlaces == nil {
		return DefaultMinorUnitPlaces
	}
	return *c.MinorUnitPlaces
}

// MinorUnit returns the smallest currency increment, e.g. 0.01.
func (c Component) MinorUnit() decimal.Decimal {
	return decimal.New(1, -c.Places())
}

// DefaultComponent is the metadata assumed for a component that has brackets
// but no explicit definition: mandatory, two-place rounding, no ceilings.
func DefaultComponent(code ComponentCode) Component {
	return Component{Code: code, Name: string(code), Kind: KindOther}
}
