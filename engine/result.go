package engine

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ============================================================================
// RESULT — The only artifact handed back across the boundary
// ============================================================================

// ResultType discriminates the Result variants.
type ResultType string

const (
	ResultTable ResultType = "table"
	ResultValue ResultType = "value"
	ResultPlot  ResultType = "plot"
	ResultError ResultType = "error"
)

// Result is a tagged union. Data holds:
//
//	table → []Record
//	value → scalar (int for counts, float64 otherwise, nil for no numeric input)
//	plot  → *PlotData
//	error → nil (Message carries the reason, ErrorKind the class)
type Result struct {
	Type      ResultType `json:"result_type"`
	Message   string     `json:"message"`
	Columns   []string   `json:"columns,omitempty"`
	Data      any        `json:"data"`
	ErrorKind ErrorKind  `json:"error_kind,omitempty"`
}

// TableResult builds a table Result. A nil record slice becomes empty.
func TableResult(columns []string, records []Record, message string) *Result {
	if records == nil {
		records = []Record{}
	}
	return &Result{Type: ResultTable, Message: message, Columns: columns, Data: records}
}

// ValueResult builds a scalar Result.
func ValueResult(v any, message string) *Result {
	return &Result{Type: ResultValue, Message: message, Data: v}
}

// PlotResult builds a chart Result.
func PlotResult(p *PlotData, message string) *Result {
	return &Result{Type: ResultPlot, Message: message, Data: p}
}

// ErrorResult converts any error into an error Result.
func ErrorResult(err error) *Result {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	return &Result{Type: ResultError, Message: msg, ErrorKind: KindOf(err)}
}

// Records returns the table payload, or nil for other variants.
func (r *Result) Records() []Record {
	recs, _ := r.Data.([]Record)
	return recs
}

// Plot returns the chart payload, or nil for other variants.
func (r *Result) Plot() *PlotData {
	p, _ := r.Data.(*PlotData)
	return p
}

// ============================================================================
// RECORD — ordered key/value row
// ============================================================================

// Field is one named value in a Record.
type Field struct {
	Name  string
	Value any
}

// Record is an ordered row. Marshals as a JSON object in field order.
type Record []Field

// Get returns the value for name, or nil.
func (r Record) Get(name string) any {
	for _, f := range r {
		if f.Name == name {
			return f.Value
		}
	}
	return nil
}

// Map converts the record to an unordered map.
func (r Record) Map() map[string]any {
	m := make(map[string]any, len(r))
	for _, f := range r {
		m[f.Name] = f.Value
	}
	return m
}

func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range r {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(f.Name)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(f.Value)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", f.Name, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// ============================================================================
// PLOT — chart-ready series
// ============================================================================

// PlotData describes a chart: one label per category and one value per label
// in every series.
type PlotData struct {
	Type   string   `json:"type"`
	Labels []any    `json:"labels"`
	Series []Series `json:"series"`
}

// Series is a named run of values aligned with PlotData.Labels.
type Series struct {
	Label  string    `json:"label"`
	Values []float64 `json:"values"`
	Color  string    `json:"color,omitempty"`
}
