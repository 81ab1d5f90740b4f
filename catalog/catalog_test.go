package catalog

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spektr-org/askdata/dataset"
	"github.com/spektr-org/askdata/engine"
)

func run(t *testing.T, in engine.Intent, tbl dataset.Table) (*engine.Result, error) {
	t.Helper()
	in = in.Normalize()
	op, err := Default().Get(in.Operation)
	if err != nil {
		return nil, err
	}
	p, err := op.Bind(in)
	if err != nil {
		return nil, err
	}
	return op.Execute(context.Background(), p, tbl)
}

func TestDefaultRegistry(t *testing.T) {
	assert.Equal(t,
		[]string{"sum", "mean", "median", "min", "max", "count", "value_counts", "describe", "plot"},
		Default().Names())
	assert.Same(t, Default(), Default())

	_, err := Default().Get("pivot")
	require.Error(t, err)
	assert.True(t, engine.IsKind(err, engine.KindNotFound))
	assert.Equal(t, "unknown operation: pivot", err.Error())
}

func TestRegisterDuplicate(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(Describe()))
	assert.Error(t, r.Register(Describe()))
	assert.Panics(t, func() { r.MustRegister(Describe()) })
}

func TestConcurrentGet(t *testing.T) {
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for _, name := range Default().Names() {
				_, err := Default().Get(name)
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()
}

func TestDescribeAll(t *testing.T) {
	text := DescribeAll()
	for _, name := range Default().Names() {
		assert.Contains(t, text, "Operation: \""+name+"\"")
	}
	assert.Contains(t, text, "Trigger words: plot, chart, graph, draw, visualize")
	assert.Contains(t, text, `"name": "target_column"`)
	assert.Contains(t, text, `"required": true`)
	assert.Contains(t, text, "RESPONSE RULES")
}

// ============================================================================
// VALIDATION
// ============================================================================

func TestBindValidation(t *testing.T) {
	cases := []struct {
		name string
		in   engine.Intent
		kind engine.ErrorKind
	}{
		{"plot without target", engine.Intent{Operation: "plot", GroupBy: []string{"Region"}}, engine.KindMissingParameter},
		{"plot without group", engine.Intent{Operation: "plot", TargetColumn: "Sales"}, engine.KindMissingParameter},
		{"value_counts without target", engine.Intent{Operation: "value_counts"}, engine.KindMissingParameter},
		{"describe with group_by", engine.Intent{Operation: "describe", GroupBy: []string{"Region"}}, engine.KindValidation},
		{"sum with plot_type", engine.Intent{Operation: "sum", TargetColumn: "Sales", PlotType: "bar"}, engine.KindValidation},
		{"negative limit", engine.Intent{Operation: "sum", TargetColumn: "Sales", Limit: -1}, engine.KindValidation},
		{"bad sort order", engine.Intent{Operation: "sum", TargetColumn: "Sales", SortOrder: "sideways"}, engine.KindValidation},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := run(t, tc.in, dataset.Sample())
			require.Error(t, err)
			assert.Equal(t, tc.kind, engine.KindOf(err), err.Error())
		})
	}
}

func TestBindAcceptsDescription(t *testing.T) {
	res, err := run(t, engine.Intent{Operation: "describe", Description: "overview"}, dataset.Sample())
	require.NoError(t, err)
	assert.Equal(t, engine.ResultTable, res.Type)
}

func TestAggregateBindDefaultsDescending(t *testing.T) {
	p, err := Aggregate(engine.AggSum).Bind(engine.Intent{Operation: "sum", TargetColumn: "Sales"})
	require.NoError(t, err)
	assert.Equal(t, engine.SortDescending, p.(AggregateParams).Order)
}

// ============================================================================
// AGGREGATE
// ============================================================================

func TestAggregateScenarioA(t *testing.T) {
	tbl := dataset.New([]string{"Region", "Sales"}, [][]string{{"North", "100"}, {"South", "200"}})
	res, err := run(t, engine.Intent{
		Operation:    "sum",
		TargetColumn: "Sales",
		GroupBy:      []string{"Region"},
		SortOrder:    engine.SortDescending,
	}, tbl)
	require.NoError(t, err)

	assert.Equal(t, engine.ResultTable, res.Type)
	assert.Equal(t, []string{"Region", "result"}, res.Columns)
	recs := res.Records()
	require.Len(t, recs, 2)
	assert.Equal(t, engine.Record{{Name: "Region", Value: "South"}, {Name: "result", Value: 200.0}}, recs[0])
	assert.Equal(t, engine.Record{{Name: "Region", Value: "North"}, {Name: "result", Value: 100.0}}, recs[1])
	assert.Equal(t, "Successfully performed 'sum' on 'Sales' grouped by Region.", res.Message)
}

func TestAggregateCountScalar(t *testing.T) {
	tbl := dataset.New([]string{"Region"}, [][]string{{"a"}, {"b"}, {"c"}, {"d"}, {"e"}})
	res, err := run(t, engine.Intent{Operation: "count"}, tbl)
	require.NoError(t, err)
	assert.Equal(t, engine.ResultValue, res.Type)
	assert.Equal(t, 5, res.Data)
}

func TestAggregateResolvesTargetCase(t *testing.T) {
	res, err := run(t, engine.Intent{Operation: "sum", TargetColumn: "sales"}, dataset.Sample())
	require.NoError(t, err)
	assert.Equal(t, engine.ResultValue, res.Type)
	assert.Equal(t, 1500.0, res.Data)
	assert.Equal(t, "The result of 'sum' on 'Sales' is 1500.", res.Message)
}

func TestAggregateEmptyPartition(t *testing.T) {
	for _, target := range []string{"", "Sales"} {
		res, err := run(t, engine.Intent{
			Operation:    "sum",
			TargetColumn: target,
			GroupBy:      []string{"Region"},
			Filters:      map[string]any{"Region": "unknown-value"},
		}, dataset.Sample())
		require.NoError(t, err)
		assert.Equal(t, engine.ResultTable, res.Type)
		assert.Empty(t, res.Records())
		assert.NotNil(t, res.Data)
	}
}

func TestAggregateEmptyPartitionUnknownTarget(t *testing.T) {
	_, err := run(t, engine.Intent{
		Operation:    "sum",
		TargetColumn: "NoSuchColumn",
		GroupBy:      []string{"Region"},
		Filters:      map[string]any{"Region": "nowhere"},
	}, dataset.Sample())
	require.Error(t, err)
	assert.True(t, engine.IsKind(err, engine.KindNotFound))
	assert.Contains(t, err.Error(), "NoSuchColumn")
}

func TestAggregateMissingTarget(t *testing.T) {
	_, err := run(t, engine.Intent{Operation: "mean"}, dataset.Sample())
	require.Error(t, err)
	assert.True(t, engine.IsKind(err, engine.KindMissingParameter))

	_, err = run(t, engine.Intent{Operation: "mean", GroupBy: []string{"Region"}}, dataset.Sample())
	require.Error(t, err)
	assert.True(t, engine.IsKind(err, engine.KindMissingParameter))
}

func TestAggregateFilteredTopN(t *testing.T) {
	res, err := run(t, engine.Intent{
		Operation:    "sum",
		TargetColumn: "Sales",
		GroupBy:      []string{"region"},
		Filters:      map[string]any{"year": 2024.0},
		Limit:        1,
		SortOrder:    "asc",
	}, dataset.Sample())
	require.NoError(t, err)
	recs := res.Records()
	require.Len(t, recs, 1)
	assert.Equal(t, "West", recs[0].Get("Region"))
	assert.Equal(t, 300.0, recs[0].Get("result"))
}

func TestAggregateGroupedCount(t *testing.T) {
	res, err := run(t, engine.Intent{Operation: "count", GroupBy: []string{"Year"}}, dataset.Sample())
	require.NoError(t, err)
	assert.Equal(t, []string{"Year", "result"}, res.Columns)
	recs := res.Records()
	require.Len(t, recs, 2)
	assert.Equal(t, 2023.0, recs[0].Get("Year"))
	assert.Equal(t, 4, recs[0].Get("result"))
}

func TestAggregateNonNumericTarget(t *testing.T) {
	_, err := run(t, engine.Intent{Operation: "sum", TargetColumn: "Region"}, dataset.Sample())
	require.Error(t, err)
	assert.True(t, engine.IsKind(err, engine.KindUnexpected))
}

// ============================================================================
// VALUE COUNTS / DESCRIBE / PLOT
// ============================================================================

func TestValueCountsOperation(t *testing.T) {
	res, err := run(t, engine.Intent{Operation: "value_counts", TargetColumn: "product"}, dataset.Sample())
	require.NoError(t, err)
	assert.Equal(t, []string{"Product", "count"}, res.Columns)
	recs := res.Records()
	require.Len(t, recs, 2)
	assert.Equal(t, "A", recs[0].Get("Product"))
	assert.Equal(t, 4, recs[0].Get("count"))
}

func TestDescribeOperation(t *testing.T) {
	res, err := run(t, engine.Intent{Operation: "describe"}, dataset.Sample())
	require.NoError(t, err)
	assert.Equal(t, engine.DescribeColumns, res.Columns)
	require.Len(t, res.Records(), 4)
	assert.Equal(t, "Sales", res.Records()[2].Get("column"))
	assert.Equal(t, 187.5, res.Records()[2].Get("mean"))
}

func TestPlotOperation(t *testing.T) {
	res, err := run(t, engine.Intent{
		Operation:    "plot",
		TargetColumn: "Sales",
		GroupBy:      []string{"Region", "Product"},
	}, dataset.Sample())
	require.NoError(t, err)
	assert.Equal(t, engine.ResultPlot, res.Type)

	p := res.Plot()
	require.NotNil(t, p)
	assert.Equal(t, "bar", p.Type)
	assert.Equal(t, []any{"North", "South", "West", "East"}, p.Labels)
	assert.Equal(t, "Sum of Sales by Region", p.Series[0].Label)
	assert.Len(t, p.Series[0].Values, len(p.Labels))
}
