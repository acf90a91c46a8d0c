package compare

import (
	"encoding/csv"
	"strconv"
	"strings"
)

// CSVFormatter formats comparison results as CSV
type CSVFormatter struct{}

// Format writes a TOTAL row and one row per component for every date.
func (cf *CSVFormatter) Format(compSet *ComparisonSet) (string, error) {
	var sb strings.Builder
	writer := csv.NewWriter(&sb)

	header := []string{
		"Date",
		"Type",
		"Component",
		"Base Employee",
		"Employee",
		"Employee Diff",
		"Base Employer",
		"Employer",
		"Employer Diff",
		"Bracket Changed",
	}
	if err := writer.Write(header); err != nil {
		return "", err
	}

	if err := cf.writeResult(writer, compSet.BaseResult, compSet.BaseResult, "base"); err != nil {
		return "", err
	}
	for _, alt := range compSet.AlternativeResults {
		if err := cf.writeResult(writer, &alt, compSet.BaseResult, "alternative"); err != nil {
			return "", err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", err
	}

	return sb.String(), nil
}

func (cf *CSVFormatter) writeResult(writer *csv.Writer, result, base *ComparisonResult, kind string) error {
	total := []string{
		result.Label,
		kind,
		"TOTAL",
		base.EmployeeTotal.StringFixed(2),
		result.EmployeeTotal.StringFixed(2),
		result.EmployeeDiffFromBase.StringFixed(2),
		base.EmployerTotal.StringFixed(2),
		result.EmployerTotal.StringFixed(2),
		result.EmployerDiffFromBase.StringFixed(2),
		"",
	}
	if err := writer.Write(total); err != nil {
		return err
	}
	for _, diff := range result.ComponentDiffs {
		row := []string{
			result.Label,
			kind,
			string(diff.ComponentCode),
			diff.BaseEmployee.StringFixed(2),
			diff.Employee.StringFixed(2),
			diff.EmployeeDiff.StringFixed(2),
			diff.BaseEmployer.StringFixed(2),
			diff.Employer.StringFixed(2),
			diff.EmployerDiff.StringFixed(2),
			strconv.FormatBool(diff.BracketChanged),
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	return nil
}
