package catalog

import (
	"context"

	"github.com/spektr-org/askdata/dataset"
	"github.com/spektr-org/askdata/engine"
)

// PlotParams are the bound parameters of plot. Order is empty unless the
// intent asked for a ranking.
type PlotParams struct {
	Type    string
	Target  string
	GroupBy []string
	Filters map[string]any
	Limit   int
	Order   engine.SortOrder
}

type plotOp struct{}

// Plot returns the plot catalog entry.
func Plot() Operation { return plotOp{} }

func (plotOp) Name() string { return engine.OpPlot }

func (plotOp) Description() string {
	return "Generates data for a plot or chart. Use this when the user explicitly asks to 'plot', 'chart', 'draw', or 'visualize' data."
}

func (plotOp) TriggerWords() []string {
	return []string{"plot", "chart", "graph", "draw", "visualize"}
}

func (plotOp) Schema() Schema {
	return Schema{
		{Name: ParamTargetColumn, Type: "string", Required: true, Description: "The numerical column to plot on the y-axis."},
		{Name: ParamGroupBy, Type: "array<string>", Required: true, Description: "The categorical column to plot on the x-axis."},
		{Name: ParamPlotType, Type: "string", Description: "The type of chart to generate (e.g., 'bar', 'line'). Defaults to 'bar'."},
		filtersParam,
		limitParam,
		sortOrderParam,
	}
}

func (o plotOp) Bind(in engine.Intent) (Params, error) {
	if err := o.Schema().Validate(o.Name(), in); err != nil {
		return nil, err
	}
	return PlotParams{
		Type:    in.PlotType,
		Target:  in.TargetColumn,
		GroupBy: in.GroupBy,
		Filters: in.Filters,
		Limit:   in.Limit,
		Order:   in.SortOrder,
	}, nil
}

func (plotOp) Execute(_ context.Context, params Params, t dataset.Table) (*engine.Result, error) {
	p, ok := params.(PlotParams)
	if !ok {
		return nil, engine.Unexpected("plot: unexpected params type %T", params)
	}
	if len(p.GroupBy) == 0 {
		return nil, engine.MissingParameter("the 'plot' operation requires '%s'", ParamGroupBy)
	}

	category, err := engine.ResolveColumn(p.GroupBy[0], t.Columns())
	if err != nil {
		return nil, err
	}
	target, err := engine.ResolveColumn(p.Target, t.Columns())
	if err != nil {
		return nil, err
	}
	filtered, err := engine.ApplyFilters(t, p.Filters)
	if err != nil {
		return nil, err
	}

	data, err := engine.BuildPlot(filtered, engine.PlotSpec{
		Category: category,
		Target:   target,
		Type:     p.Type,
		Order:    p.Order,
		Limit:    p.Limit,
	})
	if err != nil {
		return nil, err
	}
	return engine.PlotResult(data, "Plot data generated successfully."), nil
}
