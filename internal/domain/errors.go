package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Sentinel errors. Structured errors below unwrap to one of these so callers
// can branch with errors.Is and still get the details with errors.As.
var (
	// ErrComponentNotConfigured: no brackets exist at all for a component.
	ErrComponentNotConfigured = errors.New("component not configured")

	// ErrBracketNotFound: the basis amount or date falls outside every
	// bracket of a configured component.
	ErrBracketNotFound = errors.New("no applicable rate bracket")

	// ErrOverlappingBracketRange: two brackets of the same component cover the
	// same amounts during overlapping effective windows.
	ErrOverlappingBracketRange = errors.New("overlapping bracket range")

	// ErrDiscontinuousBrackets: adjacent progressive brackets disagree at
	// their shared boundary by more than one minor unit.
	ErrDiscontinuousBrackets = errors.New("discontinuous progressive brackets")

	// ErrOpenEndedTopBracket: a generation does not have exactly one
	// open-ended top bracket.
	ErrOpenEndedTopBracket = errors.New("generation needs exactly one open-ended top bracket")

	// ErrInvalidBracket: a bracket fails field validation.
	ErrInvalidBracket = errors.New("invalid rate bracket")

	// ErrComponentCalculationFailed: a mandatory component could not be
	// evaluated, so the whole aggregate evaluation was abandoned.
	ErrComponentCalculationFailed = errors.New("component calculation failed")

	// ErrNoRateTable: no rate table snapshot has been published yet.
	ErrNoRateTable = errors.New("no rate table published")
)

// ComponentNotConfiguredError names the unknown component.
type ComponentNotConfiguredError struct {
	ComponentCode ComponentCode
}

func (e *ComponentNotConfiguredError) Error() string {
	return fmt.Sprintf("component %s not configured", e.ComponentCode)
}

func (e *ComponentNotConfiguredError) Unwrap() error {
	return ErrComponentNotConfigured
}

// BracketNotFoundError records the lookup that failed to resolve.
type BracketNotFoundError struct {
	ComponentCode ComponentCode
	Amount        decimal.Decimal
	AsOf          time.Time
}

func (e *BracketNotFoundError) Error() string {
	return fmt.Sprintf("no bracket of %s covers %s on %s",
		e.ComponentCode, e.Amount.StringFixed(2), FormatDate(e.AsOf))
}

func (e *BracketNotFoundError) Unwrap() error {
	return ErrBracketNotFound
}

// OverlappingBracketRangeError identifies the two conflicting brackets.
type OverlappingBracketRangeError struct {
	ComponentCode ComponentCode
	Existing      RateBracket
	Candidate     RateBracket
}

func (e *OverlappingBracketRangeError) Error() string {
	return fmt.Sprintf("%s bracket %s (%s) overlaps %s (%s)",
		e.ComponentCode,
		e.Candidate.Label(), e.Candidate.WindowLabel(),
		e.Existing.Label(), e.Existing.WindowLabel())
}

func (e *OverlappingBracketRangeError) Unwrap() error {
	return ErrOverlappingBracketRange
}

// DiscontinuityError reports the boundary where the progressive formula of
// two adjacent brackets disagrees.
type DiscontinuityError struct {
	ComponentCode  ComponentCode
	EffectiveStart time.Time
	Boundary       decimal.Decimal
	LowerAmount    decimal.Decimal
	UpperAmount    decimal.Decimal
}

func (e *DiscontinuityError) Error() string {
	return fmt.Sprintf("%s generation %s: lower bracket yields %s but upper bracket yields %s at %s",
		e.ComponentCode, FormatDate(e.EffectiveStart),
		e.LowerAmount.StringFixed(2), e.UpperAmount.StringFixed(2), e.Boundary.StringFixed(2))
}

func (e *DiscontinuityError) Unwrap() error {
	return ErrDiscontinuousBrackets
}

// TopBracketError reports a generation without a single open-ended top.
type TopBracketError struct {
	ComponentCode  ComponentCode
	EffectiveStart time.Time
	Reason         string
}

func (e *TopBracketError) Error() string {
	return fmt.Sprintf("%s generation %s: %s", e.ComponentCode, FormatDate(e.EffectiveStart), e.Reason)
}

func (e *TopBracketError) Unwrap() error {
	return ErrOpenEndedTopBracket
}

// InvalidBracketError explains why a single bracket was rejected.
type InvalidBracketError struct {
	ComponentCode ComponentCode
	Range         string
	Reason        string
}

func (e *InvalidBracketError) Error() string {
	return fmt.Sprintf("%s bracket %s: %s", e.ComponentCode, e.Range, e.Reason)
}

func (e *InvalidBracketError) Unwrap() error {
	return ErrInvalidBracket
}

// ComponentCalculationFailedError wraps the failure of a mandatory component.
// It matches both ErrComponentCalculationFailed and the underlying cause.
type ComponentCalculationFailedError struct {
	ComponentCode ComponentCode
	Cause         error
}

func (e *ComponentCalculationFailedError) Error() string {
	return fmt.Sprintf("component %s calculation failed: %v", e.ComponentCode, e.Cause)
}

func (e *ComponentCalculationFailedError) Unwrap() []error {
	return []error{ErrComponentCalculationFailed, e.Cause}
}

// IsNotFound reports whether err means a component or bracket could not be
// resolved.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrBracketNotFound) || errors.Is(err, ErrComponentNotConfigured)
}

// IsTableError reports whether err means the rate table itself is malformed.
func IsTableError(err error) bool {
	return errors.Is(err, ErrOverlappingBracketRange) ||
		errors.Is(err, ErrDiscontinuousBrackets) ||
		errors.Is(err, ErrOpenEndedTopBracket) ||
		errors.Is(err, ErrInvalidBracket)
}
