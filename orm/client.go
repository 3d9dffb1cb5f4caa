package orm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/syssam/keel"
	"github.com/syssam/keel/config"
	"github.com/syssam/keel/dialect"
	"github.com/syssam/keel/dialect/sql"
	"github.com/syssam/keel/dialect/sql/connect"
	"github.com/syssam/keel/schema"
)

// options holds the configuration of the client.
type options struct {
	// dialect overrides the dialect reported by the driver.
	dialect  string
	registry *schema.Registry
	logger   *slog.Logger
	debug    bool
}

// Option function to configure the client.
type Option func(*options)

// Dialect sets the dialect used for identifier quoting and placeholders,
// instead of the one reported by the driver.
func Dialect(name string) Option {
	return func(o *options) {
		o.dialect = name
	}
}

// Logger sets the logger of the client. Default slog.Default().
func Logger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// Debug enables statement logging on the client.
func Debug() Option {
	return func(o *options) {
		o.debug = true
	}
}

// Registry sets the metadata registry. Default schema.Default().
func Registry(r *schema.Registry) Option {
	return func(o *options) {
		o.registry = r
	}
}

// Client executes the mapping operations against one driver. It is safe
// for concurrent use.
type Client struct {
	driver   dialect.Driver
	clauses  *sql.Clauses
	registry *schema.Registry
	logger   *slog.Logger
}

// New creates a new client on top of drv.
func New(drv dialect.Driver, opts ...Option) (*Client, error) {
	if drv == nil {
		return nil, keel.Errorf(keel.KindArgument, "", "driver must not be nil")
	}
	o := &options{registry: schema.Default(), logger: slog.Default()}
	for _, opt := range opts {
		opt(o)
	}
	name := o.dialect
	if name == "" {
		name = drv.Dialect()
	}
	s, err := dialect.Lookup(name)
	if err != nil {
		return nil, keel.Wrap(keel.KindConfiguration, "", err, "invalid dialect")
	}
	if o.debug {
		drv = sql.NewDebugDriver(drv, sql.DebugWithLogger(o.logger))
	}
	return &Client{
		driver:   drv,
		clauses:  sql.NewClauses(s),
		registry: o.registry,
		logger:   o.logger,
	}, nil
}

// Open opens the database described by cfg and returns a client for it.
// The statement decorators enabled in cfg log to the client logger.
func Open(ctx context.Context, cfg config.Database, opts ...Option) (*Client, error) {
	o := &options{logger: slog.Default()}
	for _, opt := range opts {
		opt(o)
	}
	drv, err := connect.Open(ctx, cfg, connect.WithLogger(o.logger))
	if err != nil {
		return nil, err
	}
	c, err := New(drv, opts...)
	if err != nil {
		drv.Close()
		return nil, err
	}
	return c, nil
}

// Driver returns the underlying driver.
func (c *Client) Driver() dialect.Driver {
	return c.driver
}

// Syntax returns the dialect syntax statements are built with.
func (c *Client) Syntax() dialect.Syntax {
	return c.clauses.Syntax()
}

// Debug returns a new client that logs every statement.
func (c *Client) Debug() *Client {
	if _, ok := c.driver.(*sql.DebugDriver); ok {
		return c
	}
	cp := *c
	cp.driver = sql.NewDebugDriver(c.driver, sql.DebugWithLogger(c.logger))
	return &cp
}

// Close closes the database connection.
func (c *Client) Close() error {
	return c.driver.Close()
}

// Exec executes a raw statement and returns its result. A typed null
// argument is passed as sql.TypedNull.
func (c *Client) Exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	if args == nil {
		args = []any{}
	}
	var res sql.Result
	if err := c.driver.Exec(ctx, query, args, &res); err != nil {
		return nil, err
	}
	return res, nil
}

// Update executes a raw statement and returns the number of affected rows.
func (c *Client) Update(ctx context.Context, query string, args ...any) (int64, error) {
	res, err := c.Exec(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return rowsAffected(res)
}

// Query executes a raw query. The caller must close the returned rows.
func (c *Client) Query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	if args == nil {
		args = []any{}
	}
	rows := &sql.Rows{}
	if err := c.driver.Query(ctx, query, args, rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// Tx returns a new transactional client. Repositories created from
// tx.Client run inside the transaction.
func (c *Client) Tx(ctx context.Context) (*Tx, error) {
	if _, ok := c.driver.(*txDriver); ok {
		return nil, errors.New("orm: cannot start a transaction within a transaction")
	}
	tx, err := c.driver.Tx(ctx)
	if err != nil {
		return nil, fmt.Errorf("orm: starting a transaction: %w", err)
	}
	cp := *c
	cp.driver = &txDriver{tx: tx, drv: c.driver}
	return &Tx{Client: &cp, tx: tx}, nil
}

// WithTx runs fn in a transaction. The transaction is rolled back if fn
// returns an error or panics, and committed otherwise.
//
//	err := client.WithTx(ctx, func(tx *orm.Tx) error {
//		users := orm.For[User](tx.Client)
//		if err := users.Save(ctx, u); err != nil {
//			return err
//		}
//		_, err := orm.For[Audit](tx.Client).DeleteByID(ctx, u.ID)
//		return err
//	})
func (c *Client) WithTx(ctx context.Context, fn func(tx *Tx) error) error {
	tx, err := c.Tx(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if v := recover(); v != nil {
			tx.Rollback()
			panic(v)
		}
	}()
	if err := fn(tx); err != nil {
		if rerr := tx.Rollback(); rerr != nil {
			err = fmt.Errorf("%w: rolling back transaction: %v", err, rerr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("orm: committing transaction: %w", err)
	}
	return nil
}

// Tx is a transactional client.
type Tx struct {
	*Client
	tx dialect.Tx
}

// Commit commits the transaction.
func (tx *Tx) Commit() error {
	return tx.tx.Commit()
}

// Rollback rolls back the transaction.
func (tx *Tx) Rollback() error {
	return tx.tx.Rollback()
}

// txDriver is the driver of a transactional client.
type txDriver struct {
	tx  dialect.Tx
	drv dialect.Driver
}

// Exec executes the statement in the transaction.
func (d *txDriver) Exec(ctx context.Context, query string, args, v any) error {
	return d.tx.Exec(ctx, query, args, v)
}

// Query executes the query in the transaction.
func (d *txDriver) Query(ctx context.Context, query string, args, v any) error {
	return d.tx.Query(ctx, query, args, v)
}

// Tx returns the transaction itself, with no-op Commit and Rollback, so
// that only the owner of Tx ends it.
func (d *txDriver) Tx(context.Context) (dialect.Tx, error) { return nopTx{d.tx}, nil }

// Dialect returns the dialect of the parent driver.
func (d *txDriver) Dialect() string { return d.drv.Dialect() }

// Close is a no-op; the parent driver owns the connection.
func (*txDriver) Close() error { return nil }

type nopTx struct{ dialect.Tx }

func (nopTx) Commit() error   { return nil }
func (nopTx) Rollback() error { return nil }

var _ dialect.Driver = (*txDriver)(nil)

func rowsAffected(res sql.Result) (int64, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("dialect/sql: rows affected: %w", err)
	}
	return n, nil
}
