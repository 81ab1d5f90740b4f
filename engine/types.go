package engine

import "strings"

// ============================================================================
// ASKDATA ENGINE TYPES
// ============================================================================
// Intent is the contract between the language-model parser and the engine.
// The parser produces it; the catalog validates it; operations consume it.
// ============================================================================

// Operation names understood by the catalog.
const (
	OpSum         = "sum"
	OpMean        = "mean"
	OpMedian      = "median"
	OpMin         = "min"
	OpMax         = "max"
	OpCount       = "count"
	OpValueCounts = "value_counts"
	OpDescribe    = "describe"
	OpPlot        = "plot"
)

// AggFunc is a reduction applied per partition.
type AggFunc string

const (
	AggSum    AggFunc = "sum"
	AggMean   AggFunc = "mean"
	AggMedian AggFunc = "median"
	AggMin    AggFunc = "min"
	AggMax    AggFunc = "max"
	AggCount  AggFunc = "count"
)

// AggFuncs lists every supported reduction in catalog order.
var AggFuncs = []AggFunc{AggSum, AggMean, AggMedian, AggMin, AggMax, AggCount}

// ParseAggFunc accepts a reduction name, case-insensitively.
// "avg"/"average" are accepted as mean.
func ParseAggFunc(s string) (AggFunc, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sum":
		return AggSum, true
	case "mean", "avg", "average":
		return AggMean, true
	case "median":
		return AggMedian, true
	case "min":
		return AggMin, true
	case "max":
		return AggMax, true
	case "count":
		return AggCount, true
	}
	return "", false
}

// SortOrder controls ranking direction. Empty means "not specified".
type SortOrder string

const (
	SortAscending  SortOrder = "ascending"
	SortDescending SortOrder = "descending"
)

// ParseSortOrder canonicalizes "asc"/"ascending"/"desc"/"descending".
func ParseSortOrder(s string) (SortOrder, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "asc", "ascending", "lowest", "bottom":
		return SortAscending, true
	case "desc", "descending", "highest", "top":
		return SortDescending, true
	}
	return "", false
}

// Intent is a structured, partially-validated description of what the user
// wants. Zero values mean "absent".
type Intent struct {
	Operation    string         `json:"operation"`
	TargetColumn string         `json:"target_column,omitempty"`
	GroupBy      []string       `json:"group_by,omitempty"`
	Filters      map[string]any `json:"filters,omitempty"`
	Limit        int            `json:"limit,omitempty"`
	SortOrder    SortOrder      `json:"sort_order,omitempty"`
	PlotType     string         `json:"plot_type,omitempty"`
	Description  string         `json:"description,omitempty"`
}

// Normalize returns a copy with a lower-cased operation, trimmed names and a
// canonical sort order. Unknown sort orders are kept so validation can
// reject them. Slices and maps are copied.
func (in Intent) Normalize() Intent {
	out := in
	out.Operation = strings.ToLower(strings.TrimSpace(in.Operation))
	out.TargetColumn = strings.TrimSpace(in.TargetColumn)
	out.PlotType = strings.ToLower(strings.TrimSpace(in.PlotType))
	out.Description = strings.TrimSpace(in.Description)

	out.GroupBy = nil
	for _, g := range in.GroupBy {
		if g = strings.TrimSpace(g); g != "" {
			out.GroupBy = append(out.GroupBy, g)
		}
	}

	out.Filters = nil
	if len(in.Filters) > 0 {
		out.Filters = make(map[string]any, len(in.Filters))
		for k, v := range in.Filters {
			out.Filters[strings.TrimSpace(k)] = v
		}
	}

	if in.SortOrder != "" {
		if so, ok := ParseSortOrder(string(in.SortOrder)); ok {
			out.SortOrder = so
		}
	}
	return out
}

// Order returns the effective sort order (descending when unset).
func (in Intent) Order() SortOrder {
	if in.SortOrder == SortAscending {
		return SortAscending
	}
	return SortDescending
}
