package dataset

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ErrUnsupportedFormat is returned for files that are not csv, xlsx or parquet.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// Load reads r according to the extension of name.
func Load(name string, r io.Reader) (*Frame, error) {
	ext := strings.ToLower(filepath.Ext(name))
	switch ext {
	case ".csv":
		return LoadCSV(r)
	case ".xlsx":
		return LoadExcel(r)
	case ".parquet":
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("failed to read parquet payload: %w", err)
		}
		return loadParquet(bytes.NewReader(data), int64(len(data)))
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

// LoadFile opens path and loads it according to its extension.
func LoadFile(path string) (*Frame, error) {
	if strings.EqualFold(filepath.Ext(path), ".parquet") {
		return LoadParquet(path)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() { _ = f.Close() }()
	return Load(path, f)
}

// Sample returns the built-in demo table.
func Sample() *Frame {
	return New(
		[]string{"Region", "Product", "Sales", "Year"},
		[][]string{
			{"North", "A", "100", "2023"},
			{"North", "B", "150", "2023"},
			{"South", "A", "200", "2023"},
			{"South", "B", "250", "2023"},
			{"West", "A", "120", "2024"},
			{"West", "B", "180", "2024"},
			{"East", "A", "220", "2024"},
			{"East", "B", "280", "2024"},
		},
	)
}
