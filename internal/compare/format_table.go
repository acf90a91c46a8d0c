package compare

import (
	"fmt"
	"strings"

	"github.com/rgehrsitz/payrate/internal/output"
	"github.com/shopspring/decimal"
)

// TableFormatter formats comparison results as a console table
type TableFormatter struct{}

// Format generates a table of totals per date followed by the component
// changes from the base date.
func (tf *TableFormatter) Format(compSet *ComparisonSet) string {
	var sb strings.Builder

	// Header
	sb.WriteString("DEDUCTION COMPARISON\n")
	sb.WriteString(strings.Repeat("=", 80) + "\n")
	basis := output.FormatAmount(compSet.Basis)
	if compSet.Reference != "" {
		basis += " (" + compSet.Reference + ")"
	}
	sb.WriteString(fmt.Sprintf("Basis:     %s\n", basis))
	sb.WriteString(fmt.Sprintf("Base date: %s\n", compSet.BaseResult.Label))
	sb.WriteString("\n")

	// Column widths
	labelWidth := 18
	numWidth := 14

	sb.WriteString(fmt.Sprintf("%-*s %*s %*s %*s %*s\n",
		labelWidth, "Date",
		numWidth, "Employee",
		numWidth, "Employer",
		numWidth, "EE change",
		numWidth, "ER change"))
	sb.WriteString(strings.Repeat("-", 80) + "\n")

	sb.WriteString(tf.formatRow(compSet.BaseResult, labelWidth, numWidth, true))
	for _, alt := range compSet.AlternativeResults {
		sb.WriteString(tf.formatRow(&alt, labelWidth, numWidth, false))
	}
	sb.WriteString(strings.Repeat("=", 80) + "\n")

	// Component changes
	for _, alt := range compSet.AlternativeResults {
		changed := false
		for _, diff := range alt.ComponentDiffs {
			if !diff.Changed() {
				continue
			}
			if !changed {
				sb.WriteString(fmt.Sprintf("\nCHANGES ON %s\n", alt.Label))
				sb.WriteString(strings.Repeat("-", 80) + "\n")
				changed = true
			}
			note := ""
			if diff.BracketChanged {
				note = "  (bracket changed)"
			}
			sb.WriteString(fmt.Sprintf("  %-14s EE %s -> %s (%s)   ER %s -> %s (%s)%s\n",
				diff.ComponentCode,
				output.FormatAmount(diff.BaseEmployee), output.FormatAmount(diff.Employee), tf.delta(diff.EmployeeDiff),
				output.FormatAmount(diff.BaseEmployer), output.FormatAmount(diff.Employer), tf.delta(diff.EmployerDiff),
				note))
		}
	}

	if len(compSet.Highlights) > 0 {
		sb.WriteString("\nHIGHLIGHTS\n")
		sb.WriteString(strings.Repeat("-", 80) + "\n")
		for _, h := range compSet.Highlights {
			sb.WriteString(fmt.Sprintf("- %s\n", h))
		}
	}

	return sb.String()
}

// formatRow formats a single date row
func (tf *TableFormatter) formatRow(result *ComparisonResult, labelWidth, numWidth int, isBase bool) string {
	label := result.Label
	eeChange, erChange := tf.delta(result.EmployeeDiffFromBase), tf.delta(result.EmployerDiffFromBase)
	if isBase {
		label += " (base)"
		eeChange, erChange = "", ""
	}
	return fmt.Sprintf("%-*s %*s %*s %*s %*s\n",
		labelWidth, label,
		numWidth, output.FormatAmount(result.EmployeeTotal),
		numWidth, output.FormatAmount(result.EmployerTotal),
		numWidth, eeChange,
		numWidth, erChange)
}

// delta renders a change with an explicit sign
func (tf *TableFormatter) delta(d decimal.Decimal) string {
	if d.IsPositive() {
		return "+" + output.FormatAmount(d)
	}
	return output.FormatAmount(d)
}

// FormatCompact creates a compact single-line summary for each date
func (tf *TableFormatter) FormatCompact(compSet *ComparisonSet) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Base: %s | ", compSet.BaseResult.Label))

	for i, alt := range compSet.AlternativeResults {
		if i > 0 {
			sb.WriteString(" | ")
		}
		change := "="
		if !alt.EmployeeDiffFromBase.IsZero() {
			change = tf.delta(alt.EmployeeDiffFromBase)
		}
		sb.WriteString(fmt.Sprintf("%s: %s", alt.Label, change))
	}

	return sb.String()
}
