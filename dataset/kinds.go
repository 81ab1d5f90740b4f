package dataset

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ============================================================================
// COLUMN KINDS — numeric vs text classification
// ============================================================================
// A column is numeric when every non-null cell parses as a number.
// Nothing else is inferred: dates, booleans and codes stay text.
// ============================================================================

var nullTokens = map[string]bool{
	"":     true,
	"na":   true,
	"n/a":  true,
	"#n/a": true,
	"nan":  true,
	"null": true,
	"none": true,
}

// IsNull reports whether a cell holds a missing value.
func IsNull(cell string) bool {
	return nullTokens[strings.ToLower(strings.TrimSpace(cell))]
}

// Number parses a cell as an exact decimal. Accepts thousands separators and a
// leading currency symbol ("$1,234.50", "-€12").
func Number(cell string) (decimal.Decimal, bool) {
	s := strings.TrimSpace(cell)
	if s == "" {
		return decimal.Zero, false
	}
	s = strings.ReplaceAll(s, ",", "")

	negative := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	for _, sym := range []string{"$", "€", "£"} {
		s = strings.TrimPrefix(s, sym)
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	if negative {
		d = d.Neg()
	}
	return d, true
}

func inferKind(rows [][]string, col int) Kind {
	seen := false
	for _, row := range rows {
		cell := row[col]
		if IsNull(cell) {
			continue
		}
		if _, ok := Number(cell); !ok {
			return KindText
		}
		seen = true
	}
	if !seen {
		return KindText
	}
	return KindNumber
}
