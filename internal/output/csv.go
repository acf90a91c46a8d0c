package output

import (
	"bytes"
	"encoding/csv"

	"github.com/rgehrsitz/payrate/internal/domain"
)

// CSVFormatter writes one row per component result, plus one row per skipped
// optional component with empty amounts.
type CSVFormatter struct{}

func (CSVFormatter) Name() string { return "csv" }

func (CSVFormatter) Format(r *Report) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	header := []string{"Reference", "AsOf", "Basis", "Component", "Mode", "EmployeeAmount", "EmployerAmount", "BracketID", "Warning"}
	if err := w.Write(header); err != nil {
		return nil, err
	}
	for _, ev := range r.Evaluations {
		prefix := []string{ev.Basis.Reference, domain.FormatDate(ev.Basis.AsOf), ev.Basis.Amount.StringFixed(r.totalPlaces())}
		for _, res := range ev.Results {
			places := r.placesFor(res.ComponentCode)
			row := append(append([]string(nil), prefix...),
				string(res.ComponentCode),
				res.Mode.String(),
				res.EmployeeAmount.StringFixed(places),
				res.EmployerAmount.StringFixed(places),
				res.BracketID,
				"",
			)
			if err := w.Write(row); err != nil {
				return nil, err
			}
		}
		for _, warn := range ev.Warnings {
			row := append(append([]string(nil), prefix...), string(warn.ComponentCode), "", "", "", "", warn.Reason)
			if err := w.Write(row); err != nil {
				return nil, err
			}
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
