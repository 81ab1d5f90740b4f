package catalog

import (
	"strings"

	"github.com/spektr-org/askdata/engine"
)

// ============================================================================
// PARAMETER SCHEMA — structural validation of an Intent
// ============================================================================

// Parameter names as they appear on the Intent and in the parser's output.
const (
	ParamTargetColumn = "target_column"
	ParamGroupBy      = "group_by"
	ParamFilters      = "filters"
	ParamLimit        = "limit"
	ParamSortOrder    = "sort_order"
	ParamPlotType     = "plot_type"
)

// Param declares one accepted parameter.
type Param struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Required    bool   `json:"required"`
	Description string `json:"description"`
}

// Schema is the full parameter contract of an operation.
type Schema []Param

// Validate checks in against the schema: required parameters must be set,
// parameters the schema does not declare must be absent, and limit and
// sort_order must be well formed. Description is always accepted.
func (s Schema) Validate(op string, in engine.Intent) error {
	set := presentParams(in)
	accepted := make(map[string]bool, len(s))

	for _, p := range s {
		accepted[p.Name] = true
		if p.Required && !set[p.Name] {
			return engine.MissingParameter("the '%s' operation requires '%s'", op, p.Name)
		}
	}

	var unexpected []string
	for _, name := range paramOrder {
		if set[name] && !accepted[name] {
			unexpected = append(unexpected, name)
		}
	}
	if len(unexpected) > 0 {
		return engine.Validation("the '%s' operation does not accept: %s", op, strings.Join(unexpected, ", "))
	}

	if in.Limit < 0 {
		return engine.Validation("limit must be a positive integer, got %d", in.Limit)
	}
	if in.SortOrder != "" {
		if _, ok := engine.ParseSortOrder(string(in.SortOrder)); !ok {
			return engine.Validation("sort_order must be 'ascending' or 'descending', got '%s'", in.SortOrder)
		}
	}
	return nil
}

var paramOrder = []string{
	ParamTargetColumn, ParamGroupBy, ParamFilters, ParamLimit, ParamSortOrder, ParamPlotType,
}

func presentParams(in engine.Intent) map[string]bool {
	return map[string]bool{
		ParamTargetColumn: in.TargetColumn != "",
		ParamGroupBy:      len(in.GroupBy) > 0,
		ParamFilters:      len(in.Filters) > 0,
		ParamLimit:        in.Limit != 0,
		ParamSortOrder:    in.SortOrder != "",
		ParamPlotType:     in.PlotType != "",
	}
}

// Shared parameter declarations.
var (
	filtersParam = Param{
		Name:        ParamFilters,
		Type:        "object",
		Description: "Equality filters applied before computing, e.g. {\"Region\": \"North\"}.",
	}
	groupByParam = Param{
		Name:        ParamGroupBy,
		Type:        "array<string>",
		Description: "Columns to group the data by.",
	}
	limitParam = Param{
		Name:        ParamLimit,
		Type:        "integer",
		Description: "The number of rows to return (for top/lowest queries).",
	}
	sortOrderParam = Param{
		Name:        ParamSortOrder,
		Type:        "string",
		Description: "'ascending' for lowest first or 'descending' for highest first (default).",
	}
)
