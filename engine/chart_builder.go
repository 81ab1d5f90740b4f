package engine

import (
	"fmt"
	"strings"

	"github.com/spektr-org/askdata/dataset"
)

// ============================================================================
// CHART BUILDER — Produces PlotData from a table + PlotSpec
// ============================================================================
// Plots always sum the target per category. Only the first group-by column
// becomes the x-axis; extra group-by columns are ignored.
// ============================================================================

// DefaultPlotType is used when the intent names no chart type.
const DefaultPlotType = "bar"

// SeriesColor is the fill color of the single plot series.
const SeriesColor = "#4F46E5"

// PlotSpec describes a chart over resolved columns. An empty Order keeps
// categories in first-seen order.
type PlotSpec struct {
	Category string
	Target   string
	Type     string
	Order    SortOrder
	Limit    int
}

// BuildPlot sums Target per Category and shapes the totals into one series.
func BuildPlot(t dataset.Table, spec PlotSpec) (*PlotData, error) {
	if spec.Target == "" {
		return nil, MissingParameter("a target column is required for plotting")
	}
	if spec.Category == "" {
		return nil, MissingParameter("a group_by column is required for plotting")
	}

	groups, err := Aggregate(t, AggregateSpec{
		GroupBy: []string{spec.Category},
		Target:  spec.Target,
		Func:    AggSum,
		Limit:   spec.Limit,
		Order:   spec.Order,
	})
	if err != nil {
		return nil, err
	}

	chartType := spec.Type
	if chartType == "" {
		chartType = DefaultPlotType
	}

	data := &PlotData{
		Type:   chartType,
		Labels: make([]any, 0, len(groups)),
		Series: []Series{buildSingleSeries(groups, SeriesLabel(AggSum, spec.Target, spec.Category))},
	}
	for _, g := range groups {
		data.Labels = append(data.Labels, g.Key[0])
	}
	return data, nil
}

// SeriesLabel renders "Sum of Sales by Region".
func SeriesLabel(fn AggFunc, target, category string) string {
	name := string(fn)
	if name != "" {
		name = strings.ToUpper(name[:1]) + name[1:]
	}
	return fmt.Sprintf("%s of %s by %s", name, target, category)
}

// ============================================================================
// SERIES BUILDERS
// ============================================================================

func buildSingleSeries(groups []Group, label string) Series {
	values := make([]float64, 0, len(groups))
	for _, g := range groups {
		v, _ := toFloat(g.Value)
		values = append(values, v)
	}
	return Series{
		Label:  label,
		Values: values,
		Color:  SeriesColor,
	}
}
