package dataset

import (
	"errors"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// LoadExcel reads the first sheet of an .xlsx workbook into a Frame.
func LoadExcel(r io.Reader) (*Frame, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open xlsx: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("excel file has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read rows from xlsx: %w", err)
	}
	return fromRecords(rows)
}
