package sql

import (
	"fmt"
	"reflect"

	"github.com/syssam/keel/schema"
)

// ScanEach maps every remaining row of rows through m and calls fn with the
// mapped (addressable) value. It stops at the first error, including one
// returned by fn. Rows are not closed.
func ScanEach(rows ColumnScanner, m *schema.RowMapper, fn func(reflect.Value) error) error {
	columns, err := rows.Columns()
	if err != nil {
		return fmt.Errorf("dialect/sql: columns: %w", err)
	}
	values := make([]any, len(columns))
	dest := make([]any, len(columns))
	for i := range values {
		dest[i] = &values[i]
	}
	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return fmt.Errorf("dialect/sql: scan: %w", err)
		}
		v, err := m.Map(columns, values)
		if err != nil {
			return err
		}
		if err := fn(v); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("dialect/sql: rows: %w", err)
	}
	return nil
}

// ScanInt64 returns the int64 value of the single column of the first row.
// It is used to read COUNT(*) results.
func ScanInt64(rows ColumnScanner) (int64, error) {
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return 0, fmt.Errorf("dialect/sql: rows: %w", err)
		}
		return 0, fmt.Errorf("dialect/sql: no rows in result set")
	}
	var v any
	if err := rows.Scan(&v); err != nil {
		return 0, fmt.Errorf("dialect/sql: scan: %w", err)
	}
	var n int64
	if err := schema.Assign(reflect.ValueOf(&n).Elem(), v); err != nil {
		return 0, fmt.Errorf("dialect/sql: scan: %w", err)
	}
	return n, rows.Err()
}
