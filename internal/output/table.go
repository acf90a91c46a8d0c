package output

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rgehrsitz/payrate/internal/domain"
)

var (
	colorPrimary = lipgloss.Color("#2E86AB")
	colorWarning = lipgloss.Color("#F18F01")
	colorMuted   = lipgloss.Color("#6C757D")

	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorPrimary)
	headingStyle = lipgloss.NewStyle().Bold(true)
	warningStyle = lipgloss.NewStyle().Foreground(colorWarning)
	mutedStyle   = lipgloss.NewStyle().Foreground(colorMuted)
)

const (
	codeWidth   = 14
	modeWidth   = 20
	amountWidth = 14
	ruleWidth   = codeWidth + modeWidth + 3*amountWidth + 4
)

// TableFormatter renders a report as a console table.
type TableFormatter struct{}

func (TableFormatter) Name() string { return "table" }

func (tf TableFormatter) Format(r *Report) ([]byte, error) {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render(strings.ToUpper(r.Title)) + "\n")
	sb.WriteString(strings.Repeat("=", ruleWidth) + "\n")
	header := fmt.Sprintf("Rate table v%d, generated %s", r.TableVersion, r.GeneratedAt.Format("2006-01-02 15:04 MST"))
	if r.Currency != "" {
		header += ", amounts in " + r.Currency
	}
	sb.WriteString(mutedStyle.Render(header) + "\n")

	for _, ev := range r.Evaluations {
		sb.WriteString("\n")
		tf.writeEvaluation(&sb, r, ev)
	}

	if len(r.Evaluations) > 1 {
		sb.WriteString("\n")
		tf.writeSummary(&sb, r)
	}
	return []byte(sb.String()), nil
}

func (tf TableFormatter) writeEvaluation(sb *strings.Builder, r *Report, ev domain.Evaluation) {
	total := r.totalPlaces()
	label := ev.Basis.Reference
	if label == "" {
		label = "Basis"
	}
	sb.WriteString(headingStyle.Render(fmt.Sprintf("%s: %s as of %s",
		label, FormatAmountPlaces(ev.Basis.Amount, total), domain.FormatDate(ev.Basis.AsOf))) + "\n")
	sb.WriteString(fmt.Sprintf("%-*s %-*s %*s %*s %*s\n",
		codeWidth, "Component",
		modeWidth, "Mode",
		amountWidth, "Employee",
		amountWidth, "Employer",
		amountWidth, "Total"))
	sb.WriteString(strings.Repeat("-", ruleWidth) + "\n")

	for _, res := range ev.Results {
		places := r.placesFor(res.ComponentCode)
		sb.WriteString(fmt.Sprintf("%-*s %-*s %*s %*s %*s\n",
			codeWidth, res.ComponentCode,
			modeWidth, res.Mode,
			amountWidth, FormatAmountPlaces(res.EmployeeAmount, places),
			amountWidth, FormatAmountPlaces(res.EmployerAmount, places),
			amountWidth, FormatAmountPlaces(res.EmployeeAmount.Add(res.EmployerAmount), places)))
	}
	sb.WriteString(strings.Repeat("-", ruleWidth) + "\n")
	sb.WriteString(fmt.Sprintf("%-*s %*s %*s %*s\n",
		codeWidth+modeWidth+1, "TOTAL",
		amountWidth, FormatAmountPlaces(ev.Totals.Employee, total),
		amountWidth, FormatAmountPlaces(ev.Totals.Employer, total),
		amountWidth, FormatAmountPlaces(ev.Totals.Combined(), total)))

	for _, w := range ev.Warnings {
		sb.WriteString(warningStyle.Render(fmt.Sprintf("  skipped %s: %s", w.ComponentCode, w.Reason)) + "\n")
	}
}

func (tf TableFormatter) writeSummary(sb *strings.Builder, r *Report) {
	s := r.Summary
	total := r.totalPlaces()
	sb.WriteString(headingStyle.Render(fmt.Sprintf("SUMMARY (%d lines, %d warnings)", s.Lines, s.Warnings)) + "\n")
	sb.WriteString(strings.Repeat("-", ruleWidth) + "\n")
	for _, code := range s.ComponentCodes() {
		t := s.ByComponent[code]
		places := r.placesFor(code)
		sb.WriteString(fmt.Sprintf("%-*s %*s %*s %*s\n",
			codeWidth+modeWidth+1, code,
			amountWidth, FormatAmountPlaces(t.Employee, places),
			amountWidth, FormatAmountPlaces(t.Employer, places),
			amountWidth, FormatAmountPlaces(t.Combined(), places)))
	}
	sb.WriteString(strings.Repeat("=", ruleWidth) + "\n")
	sb.WriteString(fmt.Sprintf("%-*s %*s %*s %*s\n",
		codeWidth+modeWidth+1, "TOTAL",
		amountWidth, FormatAmountPlaces(s.Totals.Employee, total),
		amountWidth, FormatAmountPlaces(s.Totals.Employer, total),
		amountWidth, FormatAmountPlaces(s.Totals.Combined(), total)))
}
