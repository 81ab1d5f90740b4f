package engine

import (
	"github.com/spektr-org/askdata/dataset"
)

// CountField is the frequency column of a value-count table.
const CountField = "count"

// ValueCounts tallies the distinct non-null values of column. Rows are ranked
// by frequency (ties keep first-seen order) and truncated to limit when
// limit > 0.
func ValueCounts(t dataset.Table, column string, order SortOrder, limit int) []Record {
	groups := Partition(t, []string{column})

	kept := groups[:0]
	for _, g := range groups {
		if g.Key[0] == nil {
			continue
		}
		g.Value = g.View.Len()
		kept = append(kept, g)
	}

	if order == "" {
		order = SortDescending
	}
	SortGroups(kept, order)

	if limit > 0 && len(kept) > limit {
		kept = kept[:limit]
	}

	records := make([]Record, 0, len(kept))
	for _, g := range kept {
		records = append(records, Record{
			{Name: column, Value: g.Key[0]},
			{Name: CountField, Value: g.Value},
		})
	}
	return records
}
