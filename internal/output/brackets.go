package output

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rgehrsitz/payrate/internal/domain"
	"github.com/shopspring/decimal"
)

// BracketListing is the generation of one component in force on a date.
// EffectiveEnd on each bracket is the last day it applies once later
// generations close open windows.
type BracketListing struct {
	Component domain.Component     `json:"component"`
	AsOf      time.Time            `json:"asOf"`
	Brackets  []domain.RateBracket `json:"brackets"`
}

// FormatBrackets renders bracket listings as table, csv or json.
func FormatBrackets(format string, listings []BracketListing) ([]byte, error) {
	switch strings.ToLower(format) {
	case "", "table", "console", "text":
		return bracketTable(listings), nil
	case "csv":
		return bracketCSV(listings)
	case "json":
		data, err := json.MarshalIndent(listings, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	default:
		return nil, fmt.Errorf("unsupported bracket listing format %q", format)
	}
}

func bracketTable(listings []BracketListing) []byte {
	var sb strings.Builder
	for i, l := range listings {
		if i > 0 {
			sb.WriteString("\n")
		}
		optional := ""
		if l.Component.Optional {
			optional = ", optional"
		}
		sb.WriteString(titleStyle.Render(fmt.Sprintf("%s (%s%s)", l.Component.Code, l.Component.Name, optional)) + "\n")
		if len(l.Brackets) == 0 {
			sb.WriteString(mutedStyle.Render(fmt.Sprintf("in force on %s", domain.FormatDate(l.AsOf))) + "\n")
			sb.WriteString(warningStyle.Render("  no generation in force") + "\n")
			continue
		}
		sb.WriteString(mutedStyle.Render(fmt.Sprintf("in force on %s, %s", domain.FormatDate(l.AsOf), window(l.Brackets[0]))) + "\n")
		places := l.Component.Places()
		sb.WriteString(fmt.Sprintf("%-28s %-20s %s\n", "Range", "Mode", "Parameters"))
		sb.WriteString(strings.Repeat("-", 80) + "\n")
		for _, b := range l.Brackets {
			sb.WriteString(fmt.Sprintf("%-28s %-20s %s\n", b.Label(), b.Mode, parameters(b, places)))
		}
	}
	return []byte(sb.String())
}

func bracketCSV(listings []BracketListing) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	if err := w.Write([]string{"Component", "ID", "Min", "Max", "Mode", "Parameters", "EffectiveStart", "EffectiveEnd"}); err != nil {
		return nil, err
	}
	for _, l := range listings {
		places := l.Component.Places()
		for _, b := range l.Brackets {
			upper, end := "", ""
			if b.RangeMax != nil {
				upper = b.RangeMax.StringFixed(places)
			}
			if b.EffectiveEnd != nil {
				end = domain.FormatDate(*b.EffectiveEnd)
			}
			row := []string{
				string(b.ComponentCode), b.ID, b.RangeMin.StringFixed(places), upper, b.Mode.String(), parameters(b, places),
				domain.FormatDate(b.EffectiveStart), end,
			}
			if err := w.Write(row); err != nil {
				return nil, err
			}
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

func window(b domain.RateBracket) string {
	if b.EffectiveEnd == nil {
		return "generation from " + domain.FormatDate(b.EffectiveStart)
	}
	return fmt.Sprintf("generation %s to %s", domain.FormatDate(b.EffectiveStart), domain.FormatDate(*b.EffectiveEnd))
}

func parameters(b domain.RateBracket, places int32) string {
	amount := func(d decimal.Decimal) string { return FormatAmountPlaces(d, places) }
	var s string
	switch b.Mode {
	case domain.FixedAmount:
		s = fmt.Sprintf("EE %s / ER %s", amount(b.EmployeeAmount), amount(b.EmployerAmount))
	case domain.PercentageOfBasis:
		s = fmt.Sprintf("EE %s%% / ER %s%%", percent(b.EmployeeRate), percent(b.EmployerRate))
	case domain.ProgressiveBracket:
		s = fmt.Sprintf("%s + %s%% over %s", amount(b.BaseAmount), percent(b.ExcessRate), amount(b.RangeMin))
	}
	if b.EmployeeCeiling != nil {
		s += ", EE cap " + amount(*b.EmployeeCeiling)
	}
	if b.EmployerCeiling != nil {
		s += ", ER cap " + amount(*b.EmployerCeiling)
	}
	return s
}

// percent renders a rate such as 0.045 as "4.5".
func percent(rate decimal.Decimal) string {
	return rate.Mul(decimal.NewFromInt(100)).String()
}
