package dataset

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ============================================================================
// CSV LOADER — Parses CSV bytes into a Frame
// ============================================================================
// Consumer reads the CSV from wherever it lives (upload, file, S3).
// The header row is kept verbatim: column-name drift is the resolver's job.
// ============================================================================

var byteOrderMark = []byte{0xEF, 0xBB, 0xBF}

// LoadCSV reads a CSV stream with a header row into a Frame.
func LoadCSV(r io.Reader) (*Frame, error) {
	reader := bufio.NewReader(r)
	if prefix, err := reader.Peek(len(byteOrderMark)); err == nil && bytes.Equal(prefix, byteOrderMark) {
		_, _ = reader.Discard(len(byteOrderMark))
	}

	csvReader := csv.NewReader(reader)
	csvReader.TrimLeadingSpace = true
	csvReader.FieldsPerRecord = -1

	records, err := csvReader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}
	return fromRecords(records)
}

// LoadCSVBytes is LoadCSV over an in-memory payload.
func LoadCSVBytes(data []byte) (*Frame, error) {
	return LoadCSV(bytes.NewReader(data))
}

// fromRecords treats the first non-empty record as the header and drops
// blank rows.
func fromRecords(records [][]string) (*Frame, error) {
	var header []string
	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		if isBlankRow(rec) {
			continue
		}
		if header == nil {
			header = rec
			continue
		}
		rows = append(rows, rec)
	}
	if header == nil {
		return nil, errors.New("no header row found")
	}
	return New(header, rows), nil
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
