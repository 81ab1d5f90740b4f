package dataset

import (
	"fmt"
	"strings"
)

// ============================================================================
// TABLE — Read-only access to a request-time dataset
// ============================================================================
// The engine never owns caller data. It reads through this interface and
// narrows it with index-based views, so the caller's table is never mutated.
//
// Implementations:
//   Frame    — columns + string rows, kinds inferred once at construction
//   SubView  — subset of a parent table (indices into parent, zero-copy)
// ============================================================================

// Kind classifies a column for reductions and result typing.
type Kind int

const (
	KindText Kind = iota
	KindNumber
)

func (k Kind) String() string {
	if k == KindNumber {
		return "number"
	}
	return "text"
}

// Table provides indexed access to a dataset whose schema is only known at
// request time. Cell is called in tight loops; keep implementations fast.
type Table interface {
	Len() int
	Columns() []string
	Cell(row int, column string) string
	Kind(column string) Kind
}

// ============================================================================
// FRAME — in-memory table
// ============================================================================

// Frame is an immutable in-memory table. Safe for concurrent readers.
type Frame struct {
	columns []string
	index   map[string]int
	rows    [][]string
	kinds   []Kind
}

// New builds a Frame from a header and rows. Blank and duplicate header names
// are made unique; short rows are padded and long rows truncated.
func New(columns []string, rows [][]string) *Frame {
	headers := uniqueHeaders(columns)
	f := &Frame{
		columns: headers,
		index:   make(map[string]int, len(headers)),
		rows:    make([][]string, 0, len(rows)),
	}
	for i, h := range headers {
		f.index[h] = i
	}
	for _, row := range rows {
		f.rows = append(f.rows, padRow(row, len(headers)))
	}
	f.kinds = make([]Kind, len(headers))
	for i := range headers {
		f.kinds[i] = inferKind(f.rows, i)
	}
	return f
}

func (f *Frame) Len() int { return len(f.rows) }

// Columns returns the column names in source order. Callers must not modify it.
func (f *Frame) Columns() []string { return f.columns }

func (f *Frame) Cell(i int, column string) string {
	if i < 0 || i >= len(f.rows) {
		return ""
	}
	c, ok := f.index[column]
	if !ok {
		return ""
	}
	return f.rows[i][c]
}

func (f *Frame) Kind(column string) Kind {
	c, ok := f.index[column]
	if !ok {
		return KindText
	}
	return f.kinds[c]
}

// Shape returns (rows, columns).
func (f *Frame) Shape() (int, int) { return len(f.rows), len(f.columns) }

// ============================================================================
// SUB VIEW — subset of a parent table (zero-copy)
// ============================================================================

// SubView is a subset of a parent Table. Holds indices into the parent.
type SubView struct {
	parent  Table
	indices []int
}

// Select returns a view over the parent rows at indices, in the given order.
func Select(parent Table, indices []int) Table {
	if sv, ok := parent.(*SubView); ok {
		flat := make([]int, len(indices))
		for i, idx := range indices {
			flat[i] = sv.indices[idx]
		}
		return &SubView{parent: sv.parent, indices: flat}
	}
	return &SubView{parent: parent, indices: indices}
}

func (v *SubView) Len() int { return len(v.indices) }

func (v *SubView) Columns() []string { return v.parent.Columns() }

func (v *SubView) Cell(i int, column string) string {
	if i < 0 || i >= len(v.indices) {
		return ""
	}
	return v.parent.Cell(v.indices[i], column)
}

func (v *SubView) Kind(column string) Kind { return v.parent.Kind(column) }

// ============================================================================
// HELPERS
// ============================================================================

func uniqueHeaders(raw []string) []string {
	headers := make([]string, len(raw))
	seen := make(map[string]int, len(raw))
	for i, h := range raw {
		name := h
		if strings.TrimSpace(name) == "" {
			name = fmt.Sprintf("column_%d", i+1)
		}
		candidate := name
		for n := 1; seen[candidate] > 0; {
			n++
			candidate = fmt.Sprintf("%s_%d", name, n)
		}
		seen[name]++
		seen[candidate]++
		headers[i] = candidate
	}
	return headers
}

func padRow(row []string, length int) []string {
	if len(row) >= length {
		return row[:length]
	}
	padded := make([]string, length)
	copy(padded, row)
	return padded
}
