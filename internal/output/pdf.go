package output

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/rgehrsitz/payrate/internal/domain"
	"github.com/shopspring/decimal"
)

// PDFFormatter renders a printable deduction statement: a summary by
// component followed by one block per compensation line.
type PDFFormatter struct{}

func (PDFFormatter) Name() string { return "pdf" }

func (PDFFormatter) Format(r *Report) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	pdf.Cell(0, 8, r.Title)
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Generated: %s", r.GeneratedAt.Format(time.RFC3339)))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Rate table version: %d", r.TableVersion))
	pdf.Ln(5)
	if r.Currency != "" {
		pdf.Cell(0, 6, fmt.Sprintf("Currency: %s", r.Currency))
		pdf.Ln(5)
	}
	pdf.Cell(0, 6, fmt.Sprintf("Lines: %d   Warnings: %d", r.Summary.Lines, r.Summary.Warnings))
	pdf.Ln(8)

	header := func(cols ...string) {
		pdf.SetFont("Arial", "B", 10)
		widths := []float64{50, 45, 45, 45}
		for i, c := range cols {
			pdf.CellFormat(widths[i], 6, c, "1", 0, "C", false, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Arial", "", 10)
	}
	line := func(label string, ee, er, total string) {
		pdf.CellFormat(50, 6, label, "1", 0, "L", false, 0, "")
		pdf.CellFormat(45, 6, ee, "1", 0, "R", false, 0, "")
		pdf.CellFormat(45, 6, er, "1", 0, "R", false, 0, "")
		pdf.CellFormat(45, 6, total, "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}

	amounts := func(places int32, ee, er decimal.Decimal) (string, string, string) {
		return FormatAmountPlaces(ee, places), FormatAmountPlaces(er, places), FormatAmountPlaces(ee.Add(er), places)
	}
	total := r.totalPlaces()

	header("Component", "Employee", "Employer", "Total")
	for _, code := range r.Summary.ComponentCodes() {
		t := r.Summary.ByComponent[code]
		ee, er, sum := amounts(r.placesFor(code), t.Employee, t.Employer)
		line(string(code), ee, er, sum)
	}
	pdf.SetFont("Arial", "B", 10)
	ee, er, sum := amounts(total, r.Summary.Totals.Employee, r.Summary.Totals.Employer)
	line("TOTAL", ee, er, sum)
	pdf.Ln(6)

	for _, ev := range r.Evaluations {
		pdf.SetFont("Arial", "B", 10)
		pdf.Cell(0, 6, fmt.Sprintf("%s  basis %s  as of %s",
			ev.Basis.Reference, FormatAmountPlaces(ev.Basis.Amount, total), domain.FormatDate(ev.Basis.AsOf)))
		pdf.Ln(7)
		header("Component", "Employee", "Employer", "Total")
		for _, res := range ev.Results {
			ee, er, sum := amounts(r.placesFor(res.ComponentCode), res.EmployeeAmount, res.EmployerAmount)
			line(string(res.ComponentCode), ee, er, sum)
		}
		for _, w := range ev.Warnings {
			pdf.SetFont("Arial", "I", 9)
			pdf.Cell(0, 5, fmt.Sprintf("Skipped %s: %s", w.ComponentCode, w.Reason))
			pdf.Ln(5)
		}
		pdf.Ln(4)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
