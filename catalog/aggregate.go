package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/spektr-org/askdata/dataset"
	"github.com/spektr-org/askdata/engine"
)

// ============================================================================
// AGGREGATE — sum, mean, median, min, max, count
// ============================================================================
// One entry per reduction, sharing this implementation. Used for totals,
// per-group breakdowns, and all "top N" / "lowest N" ranking queries.
// ============================================================================

// AggregateParams are the bound parameters of an aggregate entry.
type AggregateParams struct {
	Func    engine.AggFunc
	Target  string
	GroupBy []string
	Filters map[string]any
	Limit   int
	Order   engine.SortOrder
}

type aggregateOp struct {
	fn engine.AggFunc
}

// Aggregate returns the catalog entry for fn.
func Aggregate(fn engine.AggFunc) Operation {
	return &aggregateOp{fn: fn}
}

func (o *aggregateOp) Name() string { return string(o.fn) }

func (o *aggregateOp) Description() string {
	if o.fn == engine.AggCount {
		return "Counts rows, optionally grouped by other columns. Use for 'how many' questions and to rank groups by size."
	}
	return fmt.Sprintf("Computes the %s of a numeric column, optionally grouped by other columns. Used for all 'top N' or 'lowest N' ranking queries on the %s.", aggNoun(o.fn), aggNoun(o.fn))
}

func (o *aggregateOp) TriggerWords() []string {
	switch o.fn {
	case engine.AggSum:
		return []string{"total", "sum", "overall", "top", "highest", "lowest", "bottom"}
	case engine.AggMean:
		return []string{"average", "mean", "avg", "typical"}
	case engine.AggMedian:
		return []string{"median", "middle"}
	case engine.AggMin:
		return []string{"minimum", "min", "smallest", "least"}
	case engine.AggMax:
		return []string{"maximum", "max", "largest", "biggest"}
	default:
		return []string{"count", "how many", "number of"}
	}
}

func (o *aggregateOp) Schema() Schema {
	target := Param{
		Name:        ParamTargetColumn,
		Type:        "string",
		Description: "The numeric column to aggregate.",
	}
	if o.fn == engine.AggCount {
		target.Description = "Optional. Rows are counted regardless of this column."
	}
	return Schema{target, groupByParam, filtersParam, limitParam, sortOrderParam}
}

func (o *aggregateOp) Bind(in engine.Intent) (Params, error) {
	if err := o.Schema().Validate(o.Name(), in); err != nil {
		return nil, err
	}
	return AggregateParams{
		Func:    o.fn,
		Target:  in.TargetColumn,
		GroupBy: in.GroupBy,
		Filters: in.Filters,
		Limit:   in.Limit,
		Order:   in.Order(),
	}, nil
}

func (o *aggregateOp) Execute(_ context.Context, params Params, t dataset.Table) (*engine.Result, error) {
	p, ok := params.(AggregateParams)
	if !ok {
		return nil, engine.Unexpected("aggregate: unexpected params type %T", params)
	}

	if len(p.GroupBy) == 0 && p.Func != engine.AggCount && p.Target == "" {
		return nil, missingTarget(p.Func)
	}

	groupBy, err := engine.ResolveColumns(p.GroupBy, t.Columns())
	if err != nil {
		return nil, err
	}
	filtered, err := engine.ApplyFilters(t, p.Filters)
	if err != nil {
		return nil, err
	}

	if len(groupBy) == 0 {
		return o.scalar(filtered, p)
	}

	target := ""
	if p.Func != engine.AggCount && p.Target != "" {
		if target, err = engine.ResolveColumn(p.Target, t.Columns()); err != nil {
			return nil, err
		}
	}

	if filtered.Len() == 0 {
		return engine.TableResult(engine.GroupColumns(groupBy), nil, "No rows matched the filters."), nil
	}
	if p.Func != engine.AggCount && target == "" {
		return nil, missingTarget(p.Func)
	}

	groups, err := engine.Aggregate(filtered, engine.AggregateSpec{
		GroupBy: groupBy,
		Target:  target,
		Func:    p.Func,
		Limit:   p.Limit,
		Order:   p.Order,
	})
	if err != nil {
		return nil, err
	}

	msg := fmt.Sprintf("Successfully performed '%s' grouped by %s.", p.Func, strings.Join(groupBy, ", "))
	if target != "" {
		msg = fmt.Sprintf("Successfully performed '%s' on '%s' grouped by %s.", p.Func, target, strings.Join(groupBy, ", "))
	}
	return engine.TableResult(engine.GroupColumns(groupBy), engine.Records(groups, groupBy), msg), nil
}

func (o *aggregateOp) scalar(t dataset.Table, p AggregateParams) (*engine.Result, error) {
	if p.Func == engine.AggCount {
		n := t.Len()
		return engine.ValueResult(n, fmt.Sprintf("The result of 'count' is %d.", n)), nil
	}

	target, err := engine.ResolveColumn(p.Target, t.Columns())
	if err != nil {
		return nil, err
	}
	v, err := engine.Reduce(t, target, p.Func)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return engine.ValueResult(nil, fmt.Sprintf("Column '%s' has no numeric values to compute '%s'.", target, p.Func)), nil
	}
	return engine.ValueResult(v, fmt.Sprintf("The result of '%s' on '%s' is %s.", p.Func, target, engine.Stringify(v))), nil
}

func missingTarget(fn engine.AggFunc) error {
	return engine.MissingParameter("a target column is required for the '%s' operation", fn)
}

func aggNoun(fn engine.AggFunc) string {
	switch fn {
	case engine.AggSum:
		return "total"
	case engine.AggMean:
		return "average"
	case engine.AggMedian:
		return "median"
	case engine.AggMin:
		return "minimum"
	case engine.AggMax:
		return "maximum"
	}
	return string(fn)
}
