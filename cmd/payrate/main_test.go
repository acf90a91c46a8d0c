package main

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rgehrsitz/payrate/internal/domain"
	"github.com/rgehrsitz/payrate/internal/output"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testdata = filepath.Join("..", "..", "internal", "config", "testdata")

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func decodeReport(t *testing.T, data string) output.Report {
	t.Helper()
	var r output.Report
	require.NoError(t, json.Unmarshal([]byte(data), &r))
	return r
}

func TestRootCommand(t *testing.T) {
	cmd := newRootCmd()

	assert.Equal(t, "payrate", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
	assert.NotEmpty(t, cmd.Long)
	assert.NotNil(t, cmd.PersistentFlags().Lookup("seed"))
	assert.NotNil(t, cmd.PersistentFlags().Lookup("format"))
	assert.NotNil(t, cmd.PersistentFlags().Lookup("log-level"))
}

func TestRootCommand_Help(t *testing.T) {
	stdout, _, err := execute(t, "--help")
	require.NoError(t, err)
	assert.Contains(t, stdout, "payrate")
	assert.Contains(t, stdout, "evaluate")
}

func TestCommandSubcommands(t *testing.T) {
	expected := []string{"evaluate", "batch", "brackets", "compare", "validate", "version"}

	registered := map[string]bool{}
	for _, c := range newRootCmd().Commands() {
		registered[c.Name()] = true
	}
	for _, name := range expected {
		assert.True(t, registered[name], "Expected command '%s' to be registered", name)
	}
}

func TestRootCommand_InvalidCommandAndFlag(t *testing.T) {
	_, _, err := execute(t, "invalid-command")
	assert.Error(t, err)

	_, _, err = execute(t, "--invalid-flag")
	assert.Error(t, err)
}

func TestVersionCommand(t *testing.T) {
	stdout, _, err := execute(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(stdout, "payrate dev"))
}

func TestEvaluateCommand_JSON(t *testing.T) {
	stdout, _, err := execute(t, "evaluate", "25000", "--date", "2024-03-31", "--reference", "E-001", "--format", "json")
	require.NoError(t, err)

	report := decodeReport(t, stdout)
	require.Len(t, report.Evaluations, 1)
	ev := report.Evaluations[0]
	assert.Equal(t, "E-001", ev.Basis.Reference)
	assert.True(t, ev.Totals.Employee.Equal(decimal.RequireFromString("2575.05")), ev.Totals.Employee.String())
	assert.True(t, ev.Totals.Employer.Equal(decimal.RequireFromString("3200")), ev.Totals.Employer.String())
	assert.Empty(t, ev.Warnings)
	assert.Equal(t, "PHP", report.Currency)
	assert.Equal(t, int32(2), report.Places["SSS"])
}

func TestEvaluateCommand_WholeUnitSeed(t *testing.T) {
	// 12345 * 0.045 = 555.525 and 12345 * 0.095 = 1172.775, rounded to whole units
	stdout, _, err := execute(t, "evaluate", "12345", "--date", "2024-06-30", "--seed", filepath.Join(testdata, "whole_units_seed.yaml"))
	require.NoError(t, err)
	assert.Contains(t, stdout, "amounts in JPY")
	assert.Contains(t, stdout, "Basis: 12,345 as of 2024-06-30")
	assert.Contains(t, stdout, "1,729")
	assert.NotContains(t, stdout, "556.00")
}

func TestEvaluateCommand_SelectedComponents(t *testing.T) {
	stdout, _, err := execute(t, "evaluate", "25000", "-d", "2024-03-31", "-c", "philhealth,PHILHEALTH", "-f", "json")
	require.NoError(t, err)

	ev := decodeReport(t, stdout).Evaluations[0]
	require.Len(t, ev.Results, 1)
	assert.Equal(t, domain.ComponentCode("PHILHEALTH"), ev.Results[0].ComponentCode)
	assert.True(t, ev.Results[0].EmployeeAmount.Equal(decimal.RequireFromString("625")))
}

func TestEvaluateCommand_OptionalWarningIsLogged(t *testing.T) {
	stdout, stderr, err := execute(t, "evaluate", "15000", "--date", "2024-03-31")
	require.NoError(t, err)
	assert.Contains(t, stdout, "skipped SSS_MPF")
	assert.Contains(t, stderr, "skipping optional component SSS_MPF")
	assert.Contains(t, stderr, "module=payrate")
}

func TestEvaluateCommand_Errors(t *testing.T) {
	_, _, err := execute(t, "evaluate", "abc")
	assert.ErrorContains(t, err, "invalid amount")

	_, _, err = execute(t, "evaluate", "25000", "--date", "31/03/2024")
	assert.ErrorContains(t, err, "invalid date")

	_, _, err = execute(t, "evaluate", "25000", "--format", "html")
	assert.ErrorContains(t, err, "unknown format")

	_, _, err = execute(t, "evaluate", "25000", "--log-level", "loud")
	assert.ErrorContains(t, err, "log level must be one of")

	_, stderr, err := execute(t, "evaluate", "25000", "--date", "2024-03-31", "-c", "NOPE")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrComponentCalculationFailed)
	assert.ErrorIs(t, err, domain.ErrComponentNotConfigured)
	assert.Contains(t, stderr, "mandatory component NOPE failed")

	_, _, err = execute(t, "evaluate", "25000", "--date", "2024-03-31", "--seed", filepath.Join(testdata, "overlapping_seed.yaml"))
	assert.ErrorIs(t, err, domain.ErrOverlappingBracketRange)
}

func TestEvaluateCommand_SeedFile(t *testing.T) {
	stdout, _, err := execute(t, "evaluate", "1000", "--date", "2024-06-30", "--seed", filepath.Join(testdata, "valid_seed.yaml"), "-f", "json")
	require.NoError(t, err)

	ev := decodeReport(t, stdout).Evaluations[0]
	_, ok := ev.Result("FUND")
	assert.True(t, ok, "FUND should be evaluated from the seed file")
}

func TestBatchCommand_CSV(t *testing.T) {
	stdout, stderr, err := execute(t, "batch", filepath.Join(testdata, "batch.yaml"), "--format", "csv", "--workers", "2", "--log-level", "info")
	require.NoError(t, err)
	assert.Contains(t, stderr, "evaluated 3 lines")

	rows, err := csv.NewReader(strings.NewReader(stdout)).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 1+5+5+5, "three lines of five components, one as a warning")

	refs := make([]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		refs = append(refs, row[0])
	}
	assert.Equal(t, "E-001", refs[0])
	assert.Equal(t, "E-003", refs[len(refs)-1], "Input order is preserved")

	var warning []string
	for _, row := range rows {
		if row[8] != "" {
			warning = row
		}
	}
	require.NotNil(t, warning)
	assert.Equal(t, "E-002", warning[0])
	assert.Equal(t, "SSS_MPF", warning[3])
}

func TestBatchCommand_JSONTotals(t *testing.T) {
	stdout, _, err := execute(t, "batch", filepath.Join(testdata, "batch.yaml"), "-f", "json")
	require.NoError(t, err)

	report := decodeReport(t, stdout)
	require.Len(t, report.Evaluations, 3)
	assert.Equal(t, 3, report.Summary.Lines)
	assert.Equal(t, 1, report.Summary.Warnings)
	// 2575.05 + 1250 + 2700.05
	assert.True(t, report.Summary.Totals.Employee.Equal(decimal.RequireFromString("6525.10")), report.Summary.Totals.Employee.String())
}

func TestBatchCommand_BinaryOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "register.xlsx")
	stdout, _, err := execute(t, "batch", filepath.Join(testdata, "batch.yaml"), "-f", "excel", "-o", path)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Report written to "+path)
	assert.FileExists(t, path)
}

func TestBatchCommand_InvalidFile(t *testing.T) {
	_, _, err := execute(t, "batch", filepath.Join(testdata, "batch_missing_date.yaml"))
	assert.ErrorContains(t, err, "as_of is required")

	_, _, err = execute(t, "batch")
	assert.Error(t, err)
}

func TestBracketsCommand(t *testing.T) {
	stdout, _, err := execute(t, "brackets", "PHILHEALTH", "--date", "2024-03-31", "--format", "csv")
	require.NoError(t, err)

	rows, err := csv.NewReader(strings.NewReader(stdout)).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "10000.00", rows[2][2])
	assert.Equal(t, "percentage_of_basis", rows[2][4])
	assert.Equal(t, "EE 2.5% / ER 2.5%, EE cap 2,500.00, ER cap 2,500.00", rows[2][5])
	assert.Equal(t, "2024-01-01", rows[2][6])
	assert.Equal(t, "", rows[2][7], "current generation has no end")

	stdout, _, err = execute(t, "brackets", "PHILHEALTH", "--date", "2023-06-30")
	require.NoError(t, err)
	assert.Contains(t, stdout, "in force on 2023-06-30, generation 2023-01-01 to 2023-12-31",
		"the open 2023 window ends the day before the 2024 generation")
	assert.Contains(t, stdout, "EE 200.00 / ER 200.00")

	_, _, err = execute(t, "brackets", "NOPE")
	assert.ErrorIs(t, err, domain.ErrComponentNotConfigured)
}

func TestBracketsCommand_AllComponents(t *testing.T) {
	stdout, _, err := execute(t, "brackets", "--date", "2024-03-31", "--format", "json")
	require.NoError(t, err)

	var listings []output.BracketListing
	require.NoError(t, json.Unmarshal([]byte(stdout), &listings))
	codes := make([]domain.ComponentCode, 0, len(listings))
	for _, l := range listings {
		codes = append(codes, l.Component.Code)
		assert.NotEmpty(t, l.Brackets, l.Component.Code)
	}
	assert.Equal(t, []domain.ComponentCode{"BIR", "PAGIBIG", "PHILHEALTH", "SSS", "SSS_MPF"}, codes)
}

func TestValidateCommand(t *testing.T) {
	stdout, _, err := execute(t, "validate")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Rate table OK: 5 components")
	assert.Contains(t, stdout, "currency PHP, built ")
	assert.Contains(t, stdout, "SSS_MPF")
	assert.Contains(t, stdout, "optional")

	stdout, _, err = execute(t, "validate", filepath.Join(testdata, "seeddir"))
	require.NoError(t, err)
	assert.Contains(t, stdout, "Rate table OK")
	assert.Contains(t, stdout, "currency XXX")

	_, _, err = execute(t, "validate", filepath.Join(testdata, "discontinuous_seed.yaml"))
	assert.ErrorIs(t, err, domain.ErrDiscontinuousBrackets)
}

func TestCompareCommand(t *testing.T) {
	stdout, _, err := execute(t, "compare", "25000", "--date", "2024-03-31", "--against", "2025-02-15,2024-06-30", "-r", "E-001")
	require.NoError(t, err)
	assert.Contains(t, stdout, "DEDUCTION COMPARISON")
	assert.Contains(t, stdout, "Basis:     25,000.00 (E-001)")
	assert.Contains(t, stdout, "CHANGES ON 2025-02-15")
	assert.Contains(t, stdout, "2024-06-30: no change from 2024-03-31")

	// 2575.05 on 2024-03-31, 2700.05 on 2025-02-15
	stdout, _, err = execute(t, "compare", "25000", "-d", "2024-03-31", "-a", "2025-02-15", "-f", "compact")
	require.NoError(t, err)
	assert.Equal(t, "Base: 2024-03-31 | 2025-02-15: +125.00\n", stdout)

	_, _, err = execute(t, "compare", "25000", "-d", "2024-03-31")
	assert.Error(t, err, "--against is required")

	_, _, err = execute(t, "compare", "25000", "-a", "2025-02-15", "-f", "pdf")
	assert.ErrorContains(t, err, "unsupported comparison format")
}
