package output

import (
	"bytes"
	"fmt"

	"github.com/rgehrsitz/payrate/internal/domain"
	"github.com/xuri/excelize/v2"
)

// XLSXFormatter writes a contribution register workbook: a summary sheet,
// one row per component result and a sheet of skipped components.
type XLSXFormatter struct{}

func (XLSXFormatter) Name() string { return "xlsx" }

func (XLSXFormatter) Format(r *Report) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	summarySheet := "summary"
	registerSheet := "register"
	warningSheet := "warnings"
	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(registerSheet); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(warningSheet); err != nil {
		return nil, err
	}

	_ = f.SetCellValue(summarySheet, "A1", r.Title)
	_ = f.SetCellValue(summarySheet, "A2", "Generated")
	_ = f.SetCellValue(summarySheet, "B2", r.GeneratedAt.Format("2006-01-02 15:04:05"))
	_ = f.SetCellValue(summarySheet, "A3", "Rate table version")
	_ = f.SetCellValue(summarySheet, "B3", r.TableVersion)
	_ = f.SetCellValue(summarySheet, "A4", "Lines")
	_ = f.SetCellValue(summarySheet, "B4", r.Summary.Lines)
	_ = f.SetCellValue(summarySheet, "A5", "Warnings")
	_ = f.SetCellValue(summarySheet, "B5", r.Summary.Warnings)
	_ = f.SetCellValue(summarySheet, "A6", "Currency")
	_ = f.SetCellValue(summarySheet, "B6", r.Currency)

	_ = f.SetSheetRow(summarySheet, "A7", &[]interface{}{"Component", "Employee", "Employer", "Total"})
	row := 8
	for _, code := range r.Summary.ComponentCodes() {
		t := r.Summary.ByComponent[code]
		_ = f.SetSheetRow(summarySheet, fmt.Sprintf("A%d", row), &[]interface{}{
			string(code), t.Employee.InexactFloat64(), t.Employer.InexactFloat64(), t.Combined().InexactFloat64(),
		})
		row++
	}
	_ = f.SetSheetRow(summarySheet, fmt.Sprintf("A%d", row), &[]interface{}{
		"TOTAL", r.Summary.Totals.Employee.InexactFloat64(), r.Summary.Totals.Employer.InexactFloat64(),
		r.Summary.Totals.Combined().InexactFloat64(),
	})

	_ = f.SetSheetRow(registerSheet, "A1", &[]interface{}{
		"Reference", "As of", "Basis", "Component", "Mode", "Employee", "Employer", "Bracket",
	})
	row = 2
	warnRow := 2
	_ = f.SetSheetRow(warningSheet, "A1", &[]interface{}{"Reference", "As of", "Component", "Reason"})
	for _, ev := range r.Evaluations {
		for _, res := range ev.Results {
			_ = f.SetSheetRow(registerSheet, fmt.Sprintf("A%d", row), &[]interface{}{
				ev.Basis.Reference,
				domain.FormatDate(ev.Basis.AsOf),
				ev.Basis.Amount.InexactFloat64(),
				string(res.ComponentCode),
				res.Mode.String(),
				res.EmployeeAmount.InexactFloat64(),
				res.EmployerAmount.InexactFloat64(),
				res.BracketID,
			})
			row++
		}
		for _, w := range ev.Warnings {
			_ = f.SetSheetRow(warningSheet, fmt.Sprintf("A%d", warnRow), &[]interface{}{
				ev.Basis.Reference, domain.FormatDate(ev.Basis.AsOf), string(w.ComponentCode), w.Reason,
			})
			warnRow++
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
