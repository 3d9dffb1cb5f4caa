// Package connect opens keel drivers from configuration. It links the
// database/sql drivers of the supported back-ends: go-sql-driver/mysql,
// lib/pq and modernc.org/sqlite.
package connect

import (
	"context"
	stdsql "database/sql"
	"fmt"
	"log/slog"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
	_ "modernc.org/sqlite" // registers "sqlite"

	"github.com/syssam/keel/config"
	"github.com/syssam/keel/dialect"
	"github.com/syssam/keel/dialect/sql"
)

// Option configures Open.
type Option func(*options)

type options struct {
	logger *slog.Logger
	hook   sql.SlowQueryHook
}

// WithLogger sets the logger of the debug and stats decorators.
// Default slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithSlowQueryHook calls hook for every slow statement instead of logging
// it. It only applies when stats are enabled.
func WithSlowQueryHook(hook sql.SlowQueryHook) Option {
	return func(o *options) {
		o.hook = hook
	}
}

// Open opens the database described by cfg, verifies the connection and
// returns its driver, decorated with a StatsDriver when cfg.Stats is set
// and a DebugDriver when cfg.Debug is set.
func Open(ctx context.Context, cfg config.Database, opts ...Option) (dialect.Driver, error) {
	o := &options{logger: slog.Default()}
	for _, opt := range opts {
		opt(o)
	}
	drv, err := OpenDriver(cfg)
	if err != nil {
		return nil, err
	}
	if err := drv.DB().PingContext(ctx); err != nil {
		drv.Close()
		return nil, fmt.Errorf("connect: ping %s: %w", drv.Dialect(), err)
	}
	var d dialect.Driver = drv
	if cfg.Stats {
		slow := sql.WithSlowQueryLog(o.logger)
		if o.hook != nil {
			slow = sql.WithSlowQueryHook(o.hook)
		}
		d = sql.NewStatsDriver(d, sql.WithSlowThreshold(cfg.SlowQueryThreshold), slow)
	}
	if cfg.Debug {
		d = sql.NewDebugDriver(d, sql.DebugWithLogger(o.logger))
	}
	return d, nil
}

// OpenDriver opens the database described by cfg without connecting and
// applies the pool settings. Zero settings are left unlimited.
func OpenDriver(cfg config.Database) (*sql.Driver, error) {
	s, err := dialect.Lookup(cfg.Dialect)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	db, err := openDB(s.Name, cfg.DSN)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	// Zero keeps the database/sql default; SetMaxIdleConns(0) would close
	// every connection after use.
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)
	return sql.OpenDB(s.Name, db), nil
}

func openDB(name, dsn string) (*stdsql.DB, error) {
	switch name {
	case dialect.MySQL:
		mc, err := mysql.ParseDSN(dsn)
		if err != nil {
			return nil, fmt.Errorf("connect: mysql dsn: %w", err)
		}
		// Scan DATETIME and TIMESTAMP columns into time.Time.
		mc.ParseTime = true
		c, err := mysql.NewConnector(mc)
		if err != nil {
			return nil, fmt.Errorf("connect: mysql: %w", err)
		}
		return stdsql.OpenDB(c), nil
	case dialect.Postgres:
		c, err := pq.NewConnector(dsn)
		if err != nil {
			return nil, fmt.Errorf("connect: postgres dsn: %w", err)
		}
		return stdsql.OpenDB(c), nil
	case dialect.SQLite:
		db, err := stdsql.Open("sqlite", dsn)
		if err != nil {
			return nil, fmt.Errorf("connect: sqlite: %w", err)
		}
		return db, nil
	default:
		return nil, fmt.Errorf("connect: no database/sql driver linked for dialect %q, use sql.OpenDB", name)
	}
}
