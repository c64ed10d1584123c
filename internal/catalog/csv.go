package catalog

import (
	"fmt"
	"strings"

	"github.com/mesh-intelligence/partlabels/pkg/types"
)

// SplitCSV splits one line of a bulk table into exactly n columns. A double
// quote toggles quoted mode, commas inside quotes are literal, and the quotes
// themselves are dropped. There is no escape handling: the bulk tables never
// contain escaped quotes.
func SplitCSV(line string, n int) ([]string, error) {
	cols := make([]string, 0, n)
	var sb strings.Builder
	inQuote := false
	for _, c := range line {
		switch {
		case c == '"':
			inQuote = !inQuote
		case c == ',' && !inQuote:
			cols = append(cols, sb.String())
			sb.Reset()
		default:
			sb.WriteRune(c)
		}
	}
	cols = append(cols, sb.String())

	if len(cols) != n {
		return nil, fmt.Errorf("parsing %d columns from %q: got %d: %w", n, line, len(cols), types.ErrParse)
	}
	return cols, nil
}
