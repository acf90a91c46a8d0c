package compare

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// JSONFormatter renders a comparison set as JSON. Amounts are decimal strings.
type JSONFormatter struct {
	Indent string // empty for one-line output
}

// Format encodes the comparison set followed by a newline.
func (jf *JSONFormatter) Format(compSet *ComparisonSet) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", jf.Indent)
	if err := enc.Encode(compSet); err != nil {
		return "", fmt.Errorf("failed to encode comparison: %w", err)
	}
	return buf.String(), nil
}
