package orm

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"reflect"

	"github.com/syssam/keel/dialect/sql"
	"github.com/syssam/keel/schema"
)

// Select runs a custom query and maps each row into a T. T may be any
// struct (a table association is not required), a scalar type, or a
// sql.Scanner. Single-column rows of scalar targets are assigned directly.
//
//	names, err := orm.Select[string](ctx, client, `SELECT "name" FROM "users"`)
//	stats, err := orm.Select[struct {
//		Day   string
//		Total int64
//	}](ctx, client, `SELECT day, COUNT(*) AS total FROM events GROUP BY day`)
func Select[T any](ctx context.Context, c *Client, query string, args ...any) ([]T, error) {
	return collect(SelectSeq[T](ctx, c, query, args...))
}

// SelectSeq is the streaming form of Select.
func SelectSeq[T any](ctx context.Context, c *Client, query string, args ...any) iter.Seq2[T, error] {
	m, err := c.registry.Mapper(reflect.TypeFor[T]())
	if err != nil {
		return failed[T](err)
	}
	if args == nil {
		args = []any{}
	}
	return rows(ctx, c, m, query, args, func(v reflect.Value) T {
		var out T
		reflect.ValueOf(&out).Elem().Set(v)
		return out
	})
}

// errStop ends a row scan when the consumer stops iterating.
var errStop = errors.New("orm: iteration stopped")

// rows runs query when the iteration starts and yields every mapped row.
// A failure is yielded once, as the last element.
func rows[T any](ctx context.Context, c *Client, m *schema.RowMapper, query string, args []any, conv func(reflect.Value) T) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		err := c.scan(ctx, m, query, args, func(v reflect.Value) error {
			if !yield(conv(v), nil) {
				return errStop
			}
			return nil
		})
		if err != nil && !errors.Is(err, errStop) {
			var zero T
			yield(zero, err)
		}
	}
}

func failed[T any](err error) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		var zero T
		yield(zero, err)
	}
}

func collect[T any](seq iter.Seq2[T, error]) ([]T, error) {
	var out []T
	for v, err := range seq {
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// scan runs query and calls fn for every mapped row. The rows are closed
// before scan returns.
func (c *Client) scan(ctx context.Context, m *schema.RowMapper, query string, args []any, fn func(reflect.Value) error) (err error) {
	rows := &sql.Rows{}
	if err := c.driver.Query(ctx, query, args, rows); err != nil {
		return err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("dialect/sql: close rows: %w", cerr)
		}
	}()
	return sql.ScanEach(rows, m, fn)
}

// count runs a COUNT(*) query.
func (c *Client) count(ctx context.Context, q sql.Querier) (n int64, err error) {
	query, args := q.Query()
	rows := &sql.Rows{}
	if err := c.driver.Query(ctx, query, args, rows); err != nil {
		return 0, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("dialect/sql: close rows: %w", cerr)
		}
	}()
	return sql.ScanInt64(rows)
}

// affected executes q and returns the number of affected rows.
func (c *Client) affected(ctx context.Context, q sql.Querier) (int64, error) {
	query, args := q.Query()
	var res sql.Result
	if err := c.driver.Exec(ctx, query, args, &res); err != nil {
		return 0, err
	}
	return rowsAffected(res)
}
