// Part entity and identifier normalization.
package types

import (
	"regexp"
	"strconv"
)

// printSuffix matches a trailing print ("pr") or pattern ("pat") marker with
// an optional letter and a numeric suffix, e.g. "3622pr0004", "16709pats01".
var printSuffix = regexp.MustCompile(`^(.+)(pr|pat)[a-z]?\d+$`)

// Part is a distinct physical component type.
type Part struct {
	ID          string // Catalog identifier, may carry print/pattern suffixes.
	BaseID      string // ID with print/pattern suffixes stripped.
	NumericID   *int   // Integer form of BaseID; nil when BaseID is not numeric.
	Description string
	CategoryID  string
}

// NewPart builds a Part, deriving BaseID and NumericID from id.
func NewPart(id, description, categoryID string) *Part {
	base := BaseID(id)
	p := &Part{
		ID:          id,
		BaseID:      base,
		Description: description,
		CategoryID:  categoryID,
	}
	if n, ok := parseInt32(base); ok {
		p.NumericID = &n
	}
	return p
}

// IsPrintVariant reports whether the part ID carries a print or pattern suffix.
func (p *Part) IsPrintVariant() bool {
	return p.ID != p.BaseID
}

// BaseID strips print and pattern suffixes from a part identifier. Purely
// numeric identifiers are returned unchanged. Stacked suffixes such as
// "16709pats01pr0001" are stripped one at a time until none remain, so the
// result is stable under repeated application.
func BaseID(id string) string {
	if _, ok := parseInt32(id); ok {
		return id
	}
	m := printSuffix.FindStringSubmatch(id)
	if m == nil {
		return id
	}
	return BaseID(m[1])
}

// IsPrintVariant reports whether id differs from its base identifier.
func IsPrintVariant(id string) bool {
	return BaseID(id) != id
}

// TrimLeadingZeros removes leading '0' characters from id, always keeping at
// least one character of a non-empty input.
func TrimLeadingZeros(id string) string {
	if id == "" || id[0] != '0' {
		return id
	}
	i := 0
	for i < len(id)-1 && id[i] == '0' {
		i++
	}
	return id[i:]
}

func parseInt32(s string) (int, bool) {
	n, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return 0, false
	}
	return int(n), true
}
