package engine

import (
	"sort"
	"strings"

	"github.com/spektr-org/askdata/dataset"
)

// ============================================================================
// AGGREGATORS — Grouping, Aggregation, and Sorting via dataset views
// ============================================================================
// All functions operate on dataset.Table, giving zero-copy access to any source.
// Grouping produces SubViews (index lists into parent table).
// ============================================================================

// ResultField is the column holding the reduced value in grouped output.
const ResultField = "result"

// AggregateSpec describes one grouped reduction. Columns are already resolved.
// An empty Order keeps partitions in first-seen order.
type AggregateSpec struct {
	GroupBy []string
	Target  string
	Func    AggFunc
	Limit   int
	Order   SortOrder
}

// Group is one partition of the input plus its reduced value.
type Group struct {
	Key   []any // one value per group-by column; nil for null cells
	View  dataset.Table
	Value any // int for count, float64 otherwise, nil without numeric input
}

// Aggregate is the main entry point for the aggregation pipeline.
// Pipeline: group → aggregate → sort → limit.
func Aggregate(t dataset.Table, spec AggregateSpec) ([]Group, error) {
	if spec.Func != AggCount && spec.Target == "" {
		return nil, MissingParameter("a target column is required for the '%s' operation", spec.Func)
	}

	// 1. Group
	groups := Partition(t, spec.GroupBy)

	// 2. Aggregate
	for i := range groups {
		v, err := Reduce(groups[i].View, spec.Target, spec.Func)
		if err != nil {
			return nil, err
		}
		groups[i].Value = v
	}

	// 3. Sort
	if spec.Order != "" {
		SortGroups(groups, spec.Order)
	}

	// 4. Limit
	if spec.Limit > 0 && len(groups) > spec.Limit {
		groups = groups[:spec.Limit]
	}
	return groups, nil
}

// ============================================================================
// GROUPING
// ============================================================================

// Partition splits t by the tuple of values in columns, in first-seen order.
// Numeric columns group by value, so "100" and "100.0" share a partition.
func Partition(t dataset.Table, columns []string) []Group {
	if len(columns) == 0 {
		return []Group{{View: t}}
	}

	kinds := make([]dataset.Kind, len(columns))
	for c, col := range columns {
		kinds[c] = t.Kind(col)
	}

	grouped := make(map[string][]int)
	keys := make(map[string][]any)
	order := make([]string, 0)

	var sb strings.Builder
	for i := 0; i < t.Len(); i++ {
		sb.Reset()
		for c, col := range columns {
			if c > 0 {
				sb.WriteByte(0x1f)
			}
			sb.WriteString(groupToken(t.Cell(i, col), kinds[c]))
		}
		k := sb.String()
		if _, exists := grouped[k]; !exists {
			order = append(order, k)
			keys[k] = keyValues(t, i, columns, kinds)
		}
		grouped[k] = append(grouped[k], i)
	}

	groups := make([]Group, 0, len(order))
	for _, k := range order {
		groups = append(groups, Group{
			Key:  keys[k],
			View: dataset.Select(t, grouped[k]),
		})
	}
	return groups
}

func groupToken(cell string, kind dataset.Kind) string {
	if dataset.IsNull(cell) {
		return "\x00"
	}
	if kind == dataset.KindNumber {
		if d, ok := dataset.Number(cell); ok {
			return d.String()
		}
	}
	return cell
}

func keyValues(t dataset.Table, row int, columns []string, kinds []dataset.Kind) []any {
	key := make([]any, len(columns))
	for c, col := range columns {
		key[c] = CellValue(t.Cell(row, col), kinds[c])
	}
	return key
}

// CellValue types a cell for output: nil for nulls, float64 for numeric
// columns, the raw string otherwise.
func CellValue(cell string, kind dataset.Kind) any {
	if dataset.IsNull(cell) {
		return nil
	}
	if kind == dataset.KindNumber {
		if d, ok := dataset.Number(cell); ok {
			return d.InexactFloat64()
		}
	}
	return cell
}

// ============================================================================
// SORTING
// ============================================================================

// SortGroups orders groups by value. The sort is stable so ties keep
// first-seen order; groups without a numeric value go last in both
// directions.
func SortGroups(groups []Group, order SortOrder) {
	sort.SliceStable(groups, func(i, j int) bool {
		a, aok := toFloat(groups[i].Value)
		b, bok := toFloat(groups[j].Value)
		switch {
		case !aok:
			return false
		case !bok:
			return true
		case order == SortAscending:
			return a < b
		default:
			return a > b
		}
	})
}

// ============================================================================
// RECORDS
// ============================================================================

// GroupColumns returns the output column order for grouped results.
func GroupColumns(groupBy []string) []string {
	cols := make([]string, 0, len(groupBy)+1)
	cols = append(cols, groupBy...)
	return append(cols, ResultField)
}

// Records converts groups into ordered table rows: one field per group-by
// column followed by result.
func Records(groups []Group, groupBy []string) []Record {
	records := make([]Record, 0, len(groups))
	for _, g := range groups {
		rec := make(Record, 0, len(groupBy)+1)
		for c, col := range groupBy {
			rec = append(rec, Field{Name: col, Value: g.Key[c]})
		}
		rec = append(rec, Field{Name: ResultField, Value: g.Value})
		records = append(records, rec)
	}
	return records
}
