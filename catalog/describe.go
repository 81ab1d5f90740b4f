package catalog

import (
	"context"

	"github.com/spektr-org/askdata/dataset"
	"github.com/spektr-org/askdata/engine"
)

// DescribeParams are the bound parameters of describe.
type DescribeParams struct {
	Filters map[string]any
}

type describeOp struct{}

// Describe returns the describe catalog entry.
func Describe() Operation { return describeOp{} }

func (describeOp) Name() string { return engine.OpDescribe }

func (describeOp) Description() string {
	return "Provides a statistical summary (mean, std, etc.) of the numerical columns and counts for categorical columns in the dataset. Use this for general overview questions about the data's properties."
}

func (describeOp) TriggerWords() []string {
	return []string{"describe", "summary", "statistics", "overview"}
}

func (describeOp) Schema() Schema { return Schema{filtersParam} }

func (o describeOp) Bind(in engine.Intent) (Params, error) {
	if err := o.Schema().Validate(o.Name(), in); err != nil {
		return nil, err
	}
	return DescribeParams{Filters: in.Filters}, nil
}

func (describeOp) Execute(_ context.Context, params Params, t dataset.Table) (*engine.Result, error) {
	p, ok := params.(DescribeParams)
	if !ok {
		return nil, engine.Unexpected("describe: unexpected params type %T", params)
	}
	filtered, err := engine.ApplyFilters(t, p.Filters)
	if err != nil {
		return nil, err
	}
	records, err := engine.Describe(filtered)
	if err != nil {
		return nil, err
	}
	return engine.TableResult(engine.DescribeColumns, records, "Successfully described the dataset."), nil
}
