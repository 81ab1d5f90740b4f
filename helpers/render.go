// Package helpers renders Results for terminals, files and spreadsheets.
package helpers

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/spektr-org/askdata/engine"
)

// ============================================================================
// RENDER — Result → json / pretty / text / csv / table
// ============================================================================

// Output formats.
const (
	FormatJSON   = "json"
	FormatPretty = "pretty"
	FormatText   = "text"
	FormatCSV    = "csv"
	FormatTable  = "table"
)

// Formats lists every supported output format.
var Formats = []string{FormatJSON, FormatPretty, FormatText, FormatCSV, FormatTable}

// Render writes res to w in the named format.
func Render(w io.Writer, res *engine.Result, format string) error {
	if res == nil {
		res = engine.ErrorResult(nil)
	}
	switch format {
	case "", FormatJSON, FormatPretty:
		return WriteJSON(w, res, format == FormatPretty)
	case FormatText:
		return WriteText(w, res)
	case FormatCSV:
		return WriteCSV(w, res)
	case FormatTable:
		return WriteTable(w, res)
	}
	return fmt.Errorf("unknown format %q (want one of %s)", format, strings.Join(Formats, ", "))
}

// ============================================================================
// JSON OUTPUT
// ============================================================================

// WriteJSON writes v as one JSON document followed by a newline.
func WriteJSON(w io.Writer, v any, pretty bool) error {
	var out []byte
	var err error

	if pretty {
		out, err = json.MarshalIndent(v, "", "  ")
	} else {
		out, err = json.Marshal(v)
	}
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}

// ============================================================================
// TEXT OUTPUT
// ============================================================================

// WriteText writes the message, then the value or a row count.
func WriteText(w io.Writer, res *engine.Result) error {
	lines := []string{}
	switch res.Type {
	case engine.ResultError:
		lines = append(lines, "Error: "+res.Message)
	case engine.ResultValue:
		lines = append(lines, res.Message)
	case engine.ResultTable:
		lines = append(lines, res.Message, fmt.Sprintf("%s rows", FormatInt(len(res.Records()))))
	case engine.ResultPlot:
		lines = append(lines, res.Message)
		if p := res.Plot(); p != nil {
			for _, s := range p.Series {
				lines = append(lines, fmt.Sprintf("%s (%s, %d points)", s.Label, p.Type, len(s.Values)))
			}
		}
	}
	_, err := fmt.Fprintln(w, strings.Join(lines, "\n"))
	return err
}

// ============================================================================
// CSV OUTPUT — Sheets-ready
// ============================================================================

// WriteCSV writes tables row by row, plots as label + one column per series,
// and values as a single Summary/Value row.
func WriteCSV(w io.Writer, res *engine.Result) error {
	cw := csv.NewWriter(w)
	header, rows := Rows(res)
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, row := range rows {
		for i := range row {
			row[i] = sanitizeCell(row[i])
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV writer: %w", err)
	}
	return nil
}

// ============================================================================
// TABLE OUTPUT — ASCII grid for terminals
// ============================================================================

// WriteTable draws the same rows as WriteCSV as an ASCII grid.
func WriteTable(w io.Writer, res *engine.Result) error {
	header, rows := Rows(res)
	tw := tablewriter.NewWriter(w)
	tw.SetAutoFormatHeaders(false)
	tw.SetHeader(header)
	tw.AppendBulk(rows)
	tw.Render()
	if res.Message != "" && res.Type != engine.ResultValue && res.Type != engine.ResultError {
		_, err := fmt.Fprintln(w, res.Message)
		return err
	}
	return nil
}

// Rows flattens any Result into a header and string rows.
func Rows(res *engine.Result) ([]string, [][]string) {
	switch res.Type {
	case engine.ResultTable:
		rows := make([][]string, 0, len(res.Records()))
		for _, rec := range res.Records() {
			row := make([]string, len(res.Columns))
			for i, col := range res.Columns {
				row[i] = FormatValue(rec.Get(col))
			}
			rows = append(rows, row)
		}
		return append([]string(nil), res.Columns...), rows

	case engine.ResultPlot:
		p := res.Plot()
		header := []string{"Label"}
		if p == nil {
			return header, nil
		}
		for _, s := range p.Series {
			header = append(header, s.Label)
		}
		rows := make([][]string, 0, len(p.Labels))
		for i, label := range p.Labels {
			row := []string{FormatValue(label)}
			for _, s := range p.Series {
				if i < len(s.Values) {
					row = append(row, FmtNum(s.Values[i]))
				} else {
					row = append(row, "")
				}
			}
			rows = append(rows, row)
		}
		return header, rows

	case engine.ResultValue:
		return []string{"Summary", "Value"}, [][]string{{res.Message, FormatValue(res.Data)}}
	}
	return []string{"Error", "Kind"}, [][]string{{res.Message, string(res.ErrorKind)}}
}

// ============================================================================
// HELPERS
// ============================================================================

// FormatValue renders a record value for CSV and tables.
func FormatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case float64:
		return FmtNum(val)
	case int:
		return fmt.Sprintf("%d", val)
	default:
		return engine.Stringify(val)
	}
}

// FmtNum prints whole numbers without decimals and fractions with up to
// four.
func FmtNum(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	s := fmt.Sprintf("%.4f", v)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}

// FormatInt formats an integer with comma separators.
func FormatInt(n int) string {
	if n < 0 {
		return "-" + FormatInt(-n)
	}
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}
	return fmt.Sprintf("%s,%03d", FormatInt(n/1000), n%1000)
}

// sanitizeCell neutralizes cells a spreadsheet would evaluate as formulas.
func sanitizeCell(s string) string {
	if s == "" {
		return s
	}
	switch s[0] {
	case '=', '+', '-', '@', '\t', '\r', '\n', '|':
		if _, err := strconv.ParseFloat(s, 64); err == nil {
			return s
		}
		return "'" + strings.ReplaceAll(s, "'", "''")
	}
	return s
}
