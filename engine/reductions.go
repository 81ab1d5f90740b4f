package engine

import (
	"math"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/spektr-org/askdata/dataset"
)

// ============================================================================
// REDUCTIONS — column → scalar
// ============================================================================
// Sum and mean are computed in exact decimal arithmetic and converted to
// float64 only at the end, so 0.1 + 0.2 totals 0.3. Null cells are skipped.
// ============================================================================

// Reduce applies fn to column across t.
// Count returns an int (row count, nulls included). Other reductions return a
// float64, or nil when the column has no numeric input. Sum of nothing is 0.
func Reduce(t dataset.Table, column string, fn AggFunc) (any, error) {
	if fn == AggCount {
		return t.Len(), nil
	}

	values, err := NumericValues(t, column)
	if err != nil {
		return nil, err
	}

	if len(values) == 0 {
		if fn == AggSum {
			return 0.0, nil
		}
		return nil, nil
	}

	var d decimal.Decimal
	switch fn {
	case AggSum:
		d = decimal.Sum(values[0], values[1:]...)
	case AggMean:
		d = decimal.Avg(values[0], values[1:]...)
	case AggMin:
		d = decimal.Min(values[0], values[1:]...)
	case AggMax:
		d = decimal.Max(values[0], values[1:]...)
	case AggMedian:
		d = median(values)
	default:
		return nil, Validation("unsupported aggregation function: %s", fn)
	}
	f := d.InexactFloat64()
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return nil, Unexpected("%s of column '%s' is out of range", fn, column)
	}
	return f, nil
}

// NumericValues parses every non-null cell of column. A cell that is neither
// null nor a number fails the whole column.
func NumericValues(t dataset.Table, column string) ([]decimal.Decimal, error) {
	n := t.Len()
	values := make([]decimal.Decimal, 0, n)
	for i := 0; i < n; i++ {
		cell := t.Cell(i, column)
		if dataset.IsNull(cell) {
			continue
		}
		d, ok := dataset.Number(cell)
		if !ok {
			return nil, Unexpected("column '%s' contains non-numeric value '%s'", column, cell)
		}
		values = append(values, d)
	}
	return values, nil
}

func median(values []decimal.Decimal) decimal.Decimal {
	sorted := sortedCopy(values)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return sorted[mid-1].Add(sorted[mid]).Div(decimal.NewFromInt(2))
}

func sortedCopy(values []decimal.Decimal) []decimal.Decimal {
	sorted := make([]decimal.Decimal, len(values))
	copy(sorted, values)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].LessThan(sorted[j]) })
	return sorted
}

// toFloat converts a reduction result for ordering and charting.
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	}
	return 0, false
}
