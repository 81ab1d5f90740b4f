package engine

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/spektr-org/askdata/dataset"
)

// ============================================================================
// DESCRIBE — per-column summary statistics
// ============================================================================
// One row per column. Text columns fill unique/top/freq, numeric columns
// fill mean/std/min/quartiles/max. Statistics that do not apply are "N/A".
// ============================================================================

// NotApplicable fills describe cells that have no value for a column.
const NotApplicable = "N/A"

// DescribeColumns is the field order of a describe table.
var DescribeColumns = []string{
	"column", "count", "unique", "top", "freq",
	"mean", "std", "min", "25%", "50%", "75%", "max",
}

// Describe summarizes every column of t.
func Describe(t dataset.Table) ([]Record, error) {
	records := make([]Record, 0, len(t.Columns()))
	for _, col := range t.Columns() {
		var (
			rec Record
			err error
		)
		if t.Kind(col) == dataset.KindNumber {
			rec, err = describeNumber(t, col)
		} else {
			rec = describeText(t, col)
		}
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

func describeText(t dataset.Table, col string) Record {
	counts := ValueCounts(t, col, SortDescending, 1)

	stats := map[string]any{
		"count":  nonNullCount(t, col),
		"unique": distinctCount(t, col),
	}
	if len(counts) > 0 {
		stats["top"] = counts[0].Get(col)
		stats["freq"] = counts[0].Get(CountField)
	}
	return describeRecord(col, stats)
}

func describeNumber(t dataset.Table, col string) (Record, error) {
	values, err := NumericValues(t, col)
	if err != nil {
		return nil, err
	}
	stats := map[string]any{"count": len(values)}
	if len(values) == 0 {
		return describeRecord(col, stats), nil
	}

	sorted := sortedCopy(values)
	mean := decimal.Avg(sorted[0], sorted[1:]...)

	stats["mean"] = mean.InexactFloat64()
	if len(sorted) > 1 {
		stats["std"] = sampleStd(sorted, mean)
	}
	stats["min"] = sorted[0].InexactFloat64()
	stats["25%"] = quantile(sorted, 0.25)
	stats["50%"] = quantile(sorted, 0.5)
	stats["75%"] = quantile(sorted, 0.75)
	stats["max"] = sorted[len(sorted)-1].InexactFloat64()
	return describeRecord(col, stats), nil
}

func describeRecord(col string, stats map[string]any) Record {
	rec := make(Record, 0, len(DescribeColumns))
	rec = append(rec, Field{Name: "column", Value: col})
	for _, name := range DescribeColumns[1:] {
		v, ok := stats[name]
		if !ok || v == nil {
			v = NotApplicable
		}
		rec = append(rec, Field{Name: name, Value: v})
	}
	return rec
}

// sampleStd uses the n-1 denominator.
func sampleStd(values []decimal.Decimal, mean decimal.Decimal) float64 {
	var ss decimal.Decimal
	for _, v := range values {
		d := v.Sub(mean)
		ss = ss.Add(d.Mul(d))
	}
	variance := ss.Div(decimal.NewFromInt(int64(len(values) - 1)))
	return math.Sqrt(variance.InexactFloat64())
}

// quantile interpolates linearly between closest ranks of sorted values.
func quantile(sorted []decimal.Decimal, p float64) float64 {
	pos := decimal.NewFromFloat(p).Mul(decimal.NewFromInt(int64(len(sorted) - 1)))
	lo := int(pos.IntPart())
	if lo >= len(sorted)-1 {
		return sorted[len(sorted)-1].InexactFloat64()
	}
	frac := pos.Sub(decimal.NewFromInt(int64(lo)))
	v := sorted[lo].Add(sorted[lo+1].Sub(sorted[lo]).Mul(frac))
	return v.InexactFloat64()
}

func nonNullCount(t dataset.Table, col string) int {
	n := 0
	for i := 0; i < t.Len(); i++ {
		if !dataset.IsNull(t.Cell(i, col)) {
			n++
		}
	}
	return n
}

func distinctCount(t dataset.Table, col string) int {
	seen := make(map[string]bool)
	for i := 0; i < t.Len(); i++ {
		cell := t.Cell(i, col)
		if !dataset.IsNull(cell) {
			seen[cell] = true
		}
	}
	return len(seen)
}
