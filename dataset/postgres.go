package dataset

import (
	"context"
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// LoadPostgres runs query against the database at dsn and materializes the
// result set. Intended for sample data and small extracts.
func LoadPostgres(ctx context.Context, dsn, query string) (*Frame, error) {
	conn, err := pgx.Connect(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	defer func() { _ = conn.Close(ctx) }()

	rows, err := conn.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to run query: %w", err)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	columns := make([]string, len(fields))
	for i, fd := range fields {
		columns[i] = fd.Name
	}

	var records [][]string
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		cells := make([]string, len(values))
		for i, v := range values {
			cells[i] = pgCell(v)
		}
		records = append(records, cells)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}

	return New(columns, records), nil
}

func pgCell(v any) string {
	switch val := v.(type) {
	case time.Time:
		return val.Format(time.RFC3339)
	case driver.Valuer:
		// pgtype.Numeric and friends
		dv, err := val.Value()
		if err != nil {
			return ""
		}
		if t, ok := dv.(time.Time); ok {
			return t.Format(time.RFC3339)
		}
		return formatValue(dv)
	default:
		return formatValue(val)
	}
}
