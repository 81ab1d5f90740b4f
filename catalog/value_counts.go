package catalog

import (
	"context"
	"fmt"

	"github.com/spektr-org/askdata/dataset"
	"github.com/spektr-org/askdata/engine"
)

// ValueCountsParams are the bound parameters of value_counts.
type ValueCountsParams struct {
	Target  string
	Filters map[string]any
	Limit   int
	Order   engine.SortOrder
}

type valueCountsOp struct{}

// ValueCounts returns the value_counts catalog entry.
func ValueCounts() Operation { return valueCountsOp{} }

func (valueCountsOp) Name() string { return engine.OpValueCounts }

func (valueCountsOp) Description() string {
	return "Counts how often each distinct value appears in a column. Use for frequency and 'most common' questions."
}

func (valueCountsOp) TriggerWords() []string {
	return []string{"frequency", "distribution", "most common", "occurrences", "breakdown", "unique values"}
}

func (valueCountsOp) Schema() Schema {
	return Schema{
		{Name: ParamTargetColumn, Type: "string", Required: true, Description: "The column whose values are counted."},
		filtersParam,
		limitParam,
		sortOrderParam,
	}
}

func (o valueCountsOp) Bind(in engine.Intent) (Params, error) {
	if err := o.Schema().Validate(o.Name(), in); err != nil {
		return nil, err
	}
	return ValueCountsParams{
		Target:  in.TargetColumn,
		Filters: in.Filters,
		Limit:   in.Limit,
		Order:   in.Order(),
	}, nil
}

func (valueCountsOp) Execute(_ context.Context, params Params, t dataset.Table) (*engine.Result, error) {
	p, ok := params.(ValueCountsParams)
	if !ok {
		return nil, engine.Unexpected("value_counts: unexpected params type %T", params)
	}

	target, err := engine.ResolveColumn(p.Target, t.Columns())
	if err != nil {
		return nil, err
	}
	filtered, err := engine.ApplyFilters(t, p.Filters)
	if err != nil {
		return nil, err
	}

	records := engine.ValueCounts(filtered, target, p.Order, p.Limit)
	msg := fmt.Sprintf("Counted %d distinct values of '%s'.", len(records), target)
	return engine.TableResult([]string{target, engine.CountField}, records, msg), nil
}
