// Package dialect provides database dialect abstraction for keel.
//
// This package defines the driver contract used by the mapping core and the
// per-dialect SQL syntax. The clause builder is identical for every back-end;
// only identifier quoting, placeholder style and the way a generated key is
// reported differ, and those are captured by the Syntax value object.
//
// # Supported Dialects
//
//	dialect.MySQL     = "mysql"      `ident`   ?     LastInsertId
//	dialect.Postgres  = "postgres"   "ident"   $1    RETURNING
//	dialect.SQLite    = "sqlite3"    "ident"   ?     LastInsertId
//	dialect.SQLServer = "sqlserver"  [ident]   @p1   OUTPUT INSERTED
//	dialect.H2        = "h2"         "ident"   ?     LastInsertId
//
// # Driver Interface
//
//	type Driver interface {
//	    Exec(ctx context.Context, query string, args, v any) error
//	    Query(ctx context.Context, query string, args, v any) error
//	    Tx(ctx context.Context) (Tx, error)
//	    Close() error
//	    Dialect() string
//	}
//
// # Usage
//
//	s, err := dialect.Lookup(drv.Dialect())
//	if err != nil {
//	    return err
//	}
//	s.Quote("users")      // "users" on Postgres, `users` on MySQL
//	s.Param(2)            // $2 on Postgres, ? on MySQL
package dialect
