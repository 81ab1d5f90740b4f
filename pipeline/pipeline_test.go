package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spektr-org/askdata/catalog"
	"github.com/spektr-org/askdata/dataset"
	"github.com/spektr-org/askdata/engine"
)

func fixedParser(in engine.Intent) Parser {
	return ParserFunc(func(context.Context, string, []string) (engine.Intent, error) {
		return in, nil
	})
}

func fiveRows() dataset.Table {
	return dataset.New([]string{"Region", "Sales"}, [][]string{
		{"North", "100"}, {"South", "200"}, {"North", "50"}, {"East", "10"}, {"West", "5"},
	})
}

func TestRunCountScalar(t *testing.T) {
	p := New(fixedParser(engine.Intent{Operation: "count"}))
	res := p.Run(context.Background(), "how many rows?", fiveRows())
	require.NotNil(t, res)
	assert.Equal(t, engine.ResultValue, res.Type)
	assert.Equal(t, 5, res.Data)
}

func TestRunMissingTarget(t *testing.T) {
	p := New(fixedParser(engine.Intent{Operation: "mean"}))
	res := p.Run(context.Background(), "average?", fiveRows())
	require.NotNil(t, res)
	assert.Equal(t, engine.ResultError, res.Type)
	assert.Equal(t, engine.KindMissingParameter, res.ErrorKind)
	assert.Contains(t, res.Message, "target column is required")
}

func TestRunParserFailure(t *testing.T) {
	p := New(ParserFunc(func(context.Context, string, []string) (engine.Intent, error) {
		return engine.Intent{}, errors.New("connection refused")
	}))
	res := p.Run(context.Background(), "total sales", fiveRows())
	assert.Equal(t, engine.ResultError, res.Type)
	assert.Equal(t, engine.KindUpstream, res.ErrorKind)
	assert.Contains(t, res.Message, "connection refused")
}

func TestRunParserClassifiedError(t *testing.T) {
	p := New(ParserFunc(func(context.Context, string, []string) (engine.Intent, error) {
		return engine.Intent{}, engine.Validation("unsupported aggregation function: mode")
	}))
	res := p.Run(context.Background(), "mode of sales", fiveRows())
	assert.Equal(t, engine.KindValidation, res.ErrorKind)
}

func TestRunWithoutParser(t *testing.T) {
	res := New(nil).Run(context.Background(), "total", fiveRows())
	assert.Equal(t, engine.KindUpstream, res.ErrorKind)
}

func TestRunUnknownOperation(t *testing.T) {
	p := New(fixedParser(engine.Intent{Operation: "pivot"}))
	res := p.Run(context.Background(), "pivot it", fiveRows())
	assert.Equal(t, engine.ResultError, res.Type)
	assert.Equal(t, engine.KindNotFound, res.ErrorKind)
	assert.Equal(t, "unknown operation: pivot", res.Message)
}

func TestRunPassesColumnsToParser(t *testing.T) {
	var seen []string
	p := New(ParserFunc(func(_ context.Context, _ string, columns []string) (engine.Intent, error) {
		seen = columns
		return engine.Intent{Operation: "describe"}, nil
	}))
	res := p.Run(context.Background(), "describe", fiveRows())
	assert.Equal(t, engine.ResultTable, res.Type)
	assert.Equal(t, []string{"Region", "Sales"}, seen)
}

func TestRunIntentIdempotent(t *testing.T) {
	p := New(nil)
	in := engine.Intent{
		Operation:    "SUM",
		TargetColumn: "sales",
		GroupBy:      []string{"region"},
		SortOrder:    "desc",
		Limit:        2,
	}
	tbl := fiveRows()

	first := p.RunIntent(context.Background(), in, tbl)
	second := p.RunIntent(context.Background(), in, tbl)
	assert.Equal(t, first, second)

	require.Equal(t, engine.ResultTable, first.Type)
	recs := first.Records()
	require.Len(t, recs, 2)
	assert.Equal(t, "South", recs[0].Get("Region"))
	assert.Equal(t, "North", recs[1].Get("Region"))
	assert.Equal(t, 150.0, recs[1].Get("result"))
}

func TestRunCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res := New(nil).RunIntent(ctx, engine.Intent{Operation: "count"}, fiveRows())
	assert.Equal(t, engine.ResultError, res.Type)
	assert.Equal(t, engine.KindUnexpected, res.ErrorKind)
}

// ============================================================================
// PANIC RECOVERY
// ============================================================================

type panicOp struct{}

func (panicOp) Name() string                               { return "explode" }
func (panicOp) Description() string                        { return "always panics" }
func (panicOp) TriggerWords() []string                     { return nil }
func (panicOp) Schema() catalog.Schema                     { return nil }
func (panicOp) Bind(engine.Intent) (catalog.Params, error) { return nil, nil }
func (panicOp) Execute(context.Context, catalog.Params, dataset.Table) (*engine.Result, error) {
	panic("index out of range")
}

type nilOp struct{ panicOp }

func (nilOp) Name() string { return "nothing" }
func (nilOp) Execute(context.Context, catalog.Params, dataset.Table) (*engine.Result, error) {
	return nil, nil
}

func TestRunRecoversPanic(t *testing.T) {
	reg := catalog.NewRegistry().MustRegister(panicOp{}, nilOp{})
	p := New(nil, WithRegistry(reg))
	assert.Same(t, reg, p.Registry())

	var res *engine.Result
	require.NotPanics(t, func() {
		res = p.RunIntent(context.Background(), engine.Intent{Operation: "explode"}, fiveRows())
	})
	require.NotNil(t, res)
	assert.Equal(t, engine.ResultError, res.Type)
	assert.Equal(t, engine.KindUnexpected, res.ErrorKind)
	assert.Contains(t, res.Message, "index out of range")

	res = p.RunIntent(context.Background(), engine.Intent{Operation: "nothing"}, fiveRows())
	assert.Equal(t, engine.ResultError, res.Type)
	assert.Equal(t, engine.KindUnexpected, res.ErrorKind)
}

func TestRunNilTable(t *testing.T) {
	p := New(fixedParser(engine.Intent{Operation: "count"}))

	var res *engine.Result
	require.NotPanics(t, func() {
		res = p.RunIntent(context.Background(), engine.Intent{Operation: "count"}, nil)
	})
	require.NotNil(t, res)
	assert.Equal(t, engine.ResultError, res.Type)
	assert.Equal(t, engine.KindUnexpected, res.ErrorKind)
	assert.Contains(t, res.Message, "no dataset provided")

	require.NotPanics(t, func() {
		res = p.Run(context.Background(), "how many rows?", nil)
	})
	assert.Equal(t, engine.KindUnexpected, res.ErrorKind)

	var frame *dataset.Frame
	require.NotPanics(t, func() {
		res = p.RunIntent(context.Background(), engine.Intent{Operation: "count"}, frame)
	})
	assert.Equal(t, engine.ResultError, res.Type)
}

func TestRunStates(t *testing.T) {
	p := New(nil)

	r := p.newRun()
	res := p.execute(context.Background(), r, engine.Intent{Operation: "sum", TargetColumn: "Profit"}, fiveRows())
	assert.Equal(t, engine.KindNotFound, res.ErrorKind)
	assert.Equal(t, StateErrored, r.state)
	assert.Equal(t, StateValidated, r.failedAt)

	r = p.newRun()
	res = p.execute(context.Background(), r, engine.Intent{Operation: "sum", TargetColumn: "Sales"}, fiveRows())
	assert.Equal(t, engine.ResultValue, res.Type)
	assert.Equal(t, StateResponded, r.state)
	assert.Empty(t, r.failedAt)
}
