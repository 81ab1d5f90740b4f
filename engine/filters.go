package engine

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spektr-org/askdata/dataset"
)

// ============================================================================
// FILTERS — Equality predicates via dataset views
// ============================================================================
// Single-pass filter: checks ALL predicates per row in one loop.
// Returns a SubView (index list into parent); the input is never modified.
// ============================================================================

// ApplyFilters keeps rows whose cell equals the filter value for every filter,
// compared case-insensitively on string representations. Numeric columns
// also match numerically equal spellings ("100.50" vs 100.5).
// An unresolvable filter column fails the whole call. Empty filters return
// the input table.
func ApplyFilters(t dataset.Table, filters map[string]any) (dataset.Table, error) {
	if len(filters) == 0 {
		return t, nil
	}

	keys := make([]string, 0, len(filters))
	for k := range filters {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	type predicate struct {
		column  string
		want    string
		numeric bool
	}
	preds := make([]predicate, 0, len(keys))
	for _, k := range keys {
		col, err := ResolveColumn(k, t.Columns())
		if err != nil {
			return nil, err
		}
		preds = append(preds, predicate{
			column:  col,
			want:    strings.ToLower(Stringify(filters[k])),
			numeric: t.Kind(col) == dataset.KindNumber,
		})
	}

	n := t.Len()
	indices := make([]int, 0, n)
	for i := 0; i < n; i++ {
		pass := true
		for _, p := range preds {
			cell := t.Cell(i, p.column)
			if strings.ToLower(cell) == p.want {
				continue
			}
			if p.numeric && numericEqual(cell, p.want) {
				continue
			}
			pass = false
			break
		}
		if pass {
			indices = append(indices, i)
		}
	}

	return dataset.Select(t, indices), nil
}

// Stringify renders a filter value the way it would print in a table cell.
// Integral floats print without a fraction (2023.0 → "2023").
func Stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case json.Number:
		return val.String()
	case bool:
		return strconv.FormatBool(val)
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%d", val)
	default:
		return fmt.Sprintf("%v", val)
	}
}

func numericEqual(cell, want string) bool {
	a, ok := dataset.Number(cell)
	if !ok {
		return false
	}
	b, ok := dataset.Number(want)
	if !ok {
		return false
	}
	return a.Equal(b)
}
