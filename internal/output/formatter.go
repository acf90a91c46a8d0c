package output

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/rgehrsitz/payrate/internal/domain"
	"github.com/rgehrsitz/payrate/internal/ratetable"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// Report is what every formatter renders: one or more evaluations against a
// single rate table snapshot.
type Report struct {
	Title        string              `json:"title"`
	GeneratedAt  time.Time           `json:"generatedAt"`
	TableVersion uint64              `json:"tableVersion"`
	Currency     string              `json:"currency,omitempty"`
	Evaluations  []domain.Evaluation `json:"evaluations"`
	Summary      domain.BatchSummary `json:"summary"`

	// Places is the rounding precision of each component. Components not
	// listed render with two decimals.
	Places map[domain.ComponentCode]int32 `json:"places,omitempty"`
}

// NewReport builds a report and its summary.
func NewReport(title string, evals []domain.Evaluation, tableVersion uint64) *Report {
	return &Report{
		Title:        title,
		GeneratedAt:  time.Now().UTC(),
		TableVersion: tableVersion,
		Evaluations:  evals,
		Summary:      domain.Summarize(evals),
	}
}

// NewTableReport builds a report that takes its version, currency and amount
// precision from the table the evaluations ran against.
func NewTableReport(title string, evals []domain.Evaluation, t *ratetable.Table) *Report {
	r := NewReport(title, evals, t.Version())
	r.Currency = t.Currency()
	r.Places = make(map[domain.ComponentCode]int32)
	for _, code := range t.ComponentCodes() {
		r.Places[code] = t.Component(code).Places()
	}
	return r
}

func (r *Report) placesFor(code domain.ComponentCode) int32 {
	if p, ok := r.Places[code]; ok {
		return p
	}
	return domain.DefaultMinorUnitPlaces
}

// totalPlaces is the widest component precision; totals and basis amounts
// use it.
func (r *Report) totalPlaces() int32 {
	if len(r.Places) == 0 {
		return domain.DefaultMinorUnitPlaces
	}
	return lo.Max(lo.Values(r.Places))
}

// Formatter renders a report into bytes.
type Formatter interface {
	Name() string
	Format(r *Report) ([]byte, error)
}

// FormatterFunc adapts a function to the Formatter interface.
type FormatterFunc struct {
	ID string
	F  func(r *Report) ([]byte, error)
}

func (f FormatterFunc) Name() string { return f.ID }

func (f FormatterFunc) Format(r *Report) ([]byte, error) { return f.F(r) }

var formatters = map[string]Formatter{
	"table": TableFormatter{},
	"csv":   CSVFormatter{},
	"json":  JSONFormatter{},
	"xlsx":  XLSXFormatter{},
	"pdf":   PDFFormatter{},
}

var aliases = map[string]string{
	"console": "table",
	"text":    "table",
	"excel":   "xlsx",
}

// GetFormatterByName returns the formatter registered under name, or nil.
func GetFormatterByName(name string) Formatter {
	name = strings.ToLower(strings.TrimSpace(name))
	if alias, ok := aliases[name]; ok {
		name = alias
	}
	return formatters[name]
}

// FormatterNames lists the registered formats.
func FormatterNames() []string {
	names := make([]string, 0, len(formatters))
	for name := range formatters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsBinary reports whether a format should be written to a file rather than
// a terminal.
func IsBinary(name string) bool {
	f := GetFormatterByName(name)
	return f != nil && (f.Name() == "xlsx" || f.Name() == "pdf")
}

// WriteFormatted renders r and writes it to path. An empty path writes
// payrate_report_<timestamp>.<ext> in the working directory. It returns the
// file written.
func WriteFormatted(f Formatter, r *Report, path string) (string, error) {
	data, err := f.Format(r)
	if err != nil {
		return "", fmt.Errorf("failed to format report: %w", err)
	}
	if path == "" {
		path = fmt.Sprintf("payrate_report_%s.%s", time.Now().Format("20060102_150405"), extension(f.Name()))
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}

func extension(format string) string {
	if format == "table" {
		return "txt"
	}
	return format
}

// FormatAmount renders an amount with two decimals and thousands separators.
func FormatAmount(amount decimal.Decimal) string {
	return FormatAmountPlaces(amount, domain.DefaultMinorUnitPlaces)
}

// FormatAmountPlaces renders an amount with the given number of decimals and
// thousands separators.
func FormatAmountPlaces(amount decimal.Decimal, places int32) string {
	s := amount.StringFixed(places)
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	whole, frac, hasFrac := strings.Cut(s, ".")
	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if hasFrac {
		return sign + b.String() + "." + frac
	}
	return sign + b.String()
}
