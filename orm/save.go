package orm

import (
	"context"
	"reflect"

	"github.com/syssam/keel"
	"github.com/syssam/keel/dialect"
	"github.com/syssam/keel/dialect/sql"
	"github.com/syssam/keel/schema"
)

// Save states, as logged.
const (
	stateNoKey     = "no-key"
	stateNullKey   = "null-key"
	stateKeyExists = "key-exists"
	stateKeyAbsent = "key-absent"
)

func (c *Client) save(ctx context.Context, t *schema.TableInfo, e reflect.Value) error {
	if !t.HasKey() {
		c.logSave(ctx, t, stateNoKey)
		return c.insert(ctx, t, e)
	}
	null, err := t.IsKeyNull(e)
	if err != nil {
		return err
	}
	if null {
		if t.AutoIncrement() == nil {
			return keel.Errorf(keel.KindSave, t.Label(), "key is null and not auto-generated")
		}
		c.logSave(ctx, t, stateNullKey)
		return c.insertGenerated(ctx, t, e)
	}
	exists, err := c.clauses.CountEntity(t, e)
	if err != nil {
		return err
	}
	n, err := c.count(ctx, exists)
	if err != nil {
		return err
	}
	if n > 0 {
		c.logSave(ctx, t, stateKeyExists)
		q, ok, err := c.clauses.Update(t, e)
		if err != nil || !ok {
			return err
		}
		_, err = c.affected(ctx, q)
		return err
	}
	c.logSave(ctx, t, stateKeyAbsent)
	if t.AutoIncrement() != nil {
		return c.insertGenerated(ctx, t, e)
	}
	return c.insert(ctx, t, e)
}

func (c *Client) logSave(ctx context.Context, t *schema.TableInfo, state string) {
	c.logger.DebugContext(ctx, "save", "table", t.Name, "state", state)
}

func (c *Client) insert(ctx context.Context, t *schema.TableInfo, e reflect.Value) error {
	q, err := c.clauses.Insert(t, e, false)
	if err != nil {
		return err
	}
	_, err = c.affected(ctx, q)
	return err
}

// insertGenerated inserts e and stores the key generated for its
// auto-increment column, read in the form the dialect reports it.
func (c *Client) insertGenerated(ctx context.Context, t *schema.TableInfo, e reflect.Value) error {
	var (
		id  int64
		err error
	)
	if c.clauses.Syntax().GeneratedKey == dialect.LastInsertID {
		id, err = c.lastInsertID(ctx, t, e)
	} else {
		id, err = c.returningID(ctx, t, e)
	}
	if err != nil {
		return err
	}
	return t.SetGenerated(e, id)
}

func (c *Client) lastInsertID(ctx context.Context, t *schema.TableInfo, e reflect.Value) (int64, error) {
	q, err := c.clauses.Insert(t, e, false)
	if err != nil {
		return 0, err
	}
	query, args := q.Query()
	var res sql.Result
	if err := c.driver.Exec(ctx, query, args, &res); err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, keel.Wrap(keel.KindSave, t.Label(), err, "reading generated key [%s]", t.AutoIncrement().Name)
	}
	return id, nil
}

func (c *Client) returningID(ctx context.Context, t *schema.TableInfo, e reflect.Value) (id int64, err error) {
	q, err := c.clauses.Insert(t, e, true)
	if err != nil {
		return 0, err
	}
	query, args := q.Query()
	rows := &sql.Rows{}
	if err := c.driver.Query(ctx, query, args, rows); err != nil {
		return 0, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil && err == nil {
			err = keel.Wrap(keel.KindSave, t.Label(), cerr, "closing generated key rows")
		}
	}()
	id, err = sql.ScanInt64(rows)
	if err != nil {
		return 0, keel.Wrap(keel.KindSave, t.Label(), err, "reading generated key [%s]", t.AutoIncrement().Name)
	}
	return id, nil
}
