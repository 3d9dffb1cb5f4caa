// Package sql provides the database/sql based driver of keel, the SQL
// statement builders and the clause builder of the mapping core.
//
// # Driver
//
// Driver adapts a *sql.DB to the dialect.Driver contract:
//
//	drv := sql.OpenDB(dialect.Postgres, db)
//	var res sql.Result
//	err := drv.Exec(ctx, `DELETE FROM "users"`, []any{}, &res)
//
// StatsDriver and DebugDriver decorate any dialect.Driver with statement
// statistics (slow query detection included) and log/slog statement logging.
//
// # Builders
//
// Builders write quoted identifiers and positional parameters for one
// dialect syntax:
//
//	s, _ := dialect.Lookup(dialect.MySQL)
//	sql.Dialect(s).Select("id", "name").From("users").Where(sql.EQ("id", 1)).Query()
//	// SELECT `id`, `name` FROM `users` WHERE `id` = ?   [1]
//
// # Clauses
//
// Clauses turns entity metadata (schema.TableInfo) and entity values into
// statements. Keyed entities are matched by primary key, keyless entities by
// all of their columns:
//
//	single key:     DELETE FROM "users" WHERE "id" IN (?, ?, ?)
//	composite key:  DELETE FROM "m" WHERE ("a" = ? AND "b" = ?) OR ("a" = ? AND "b" = ?)
//	no key:         DELETE FROM "e" WHERE ("x" = ? AND "y" IS NULL) OR (...)
//
// Arguments are always in entity-major, column-minor order.
package sql
