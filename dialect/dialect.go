package dialect

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/lib/pq"
)

// Dialect names.
const (
	MySQL     = "mysql"
	SQLite    = "sqlite3"
	Postgres  = "postgres"
	SQLServer = "sqlserver"
	H2        = "h2"
)

// ExecQuerier wraps the 2 database operations.
type ExecQuerier interface {
	// Exec executes a query that does not return records. For example, in SQL, INSERT or UPDATE.
	// It scans the result into the pointer v. For SQL drivers, it is dialect/sql.Result.
	Exec(ctx context.Context, query string, args, v any) error
	// Query executes a query that returns rows, typically a SELECT in SQL.
	// It scans the result into the pointer v. For SQL drivers, it is *dialect/sql.Rows.
	Query(ctx context.Context, query string, args, v any) error
}

// Driver is the interface that wraps all necessary operations for the mapping core.
type Driver interface {
	ExecQuerier
	// Tx starts and returns a new transaction.
	Tx(context.Context) (Tx, error)
	// Close closes the underlying connection.
	Close() error
	// Dialect returns the dialect name of the driver.
	Dialect() string
}

// Tx wraps the Exec and Query operations in transaction.
type Tx interface {
	ExecQuerier
	Commit() error
	Rollback() error
}

// Placeholder is the positional parameter style of a dialect.
type Placeholder uint8

// Placeholder styles.
const (
	Question Placeholder = iota // ?
	Dollar                      // $1, $2, ...
	AtP                         // @p1, @p2, ...
)

// GeneratedKey is how a dialect reports the value of an auto-increment column.
type GeneratedKey uint8

// Generated key strategies.
const (
	// LastInsertID reads sql.Result.LastInsertId after an Exec.
	LastInsertID GeneratedKey = iota
	// Returning appends RETURNING <col> and reads the single returned row.
	Returning
	// OutputInserted inserts OUTPUT INSERTED.<col> before VALUES.
	OutputInserted
)

// Syntax holds the textual conventions that distinguish one SQL back-end
// from another. It is a value object; the clause builder is the same for
// every dialect.
type Syntax struct {
	Name         string
	OpenQuote    string
	CloseQuote   string
	Placeholder  Placeholder
	GeneratedKey GeneratedKey
	// EmptyInsert follows "INSERT INTO <table> " when no column is bound.
	EmptyInsert string
	quote       func(string) string
}

var syntaxes = map[string]Syntax{
	MySQL: {
		Name:         MySQL,
		OpenQuote:    "`",
		CloseQuote:   "`",
		Placeholder:  Question,
		GeneratedKey: LastInsertID,
		EmptyInsert:  "() VALUES ()",
	},
	Postgres: {
		Name:         Postgres,
		OpenQuote:    `"`,
		CloseQuote:   `"`,
		Placeholder:  Dollar,
		GeneratedKey: Returning,
		EmptyInsert:  "DEFAULT VALUES",
		quote:        pq.QuoteIdentifier,
	},
	SQLite: {
		Name:         SQLite,
		OpenQuote:    `"`,
		CloseQuote:   `"`,
		Placeholder:  Question,
		GeneratedKey: LastInsertID,
		EmptyInsert:  "DEFAULT VALUES",
	},
	SQLServer: {
		Name:         SQLServer,
		OpenQuote:    "[",
		CloseQuote:   "]",
		Placeholder:  AtP,
		GeneratedKey: OutputInserted,
		EmptyInsert:  "DEFAULT VALUES",
	},
	H2: {
		Name:         H2,
		OpenQuote:    `"`,
		CloseQuote:   `"`,
		Placeholder:  Question,
		GeneratedKey: LastInsertID,
		EmptyInsert:  "DEFAULT VALUES",
	},
}

var aliases = map[string]string{
	"sqlite":     SQLite,
	"postgresql": Postgres,
	"pgx":        Postgres,
	"mssql":      SQLServer,
	"mariadb":    MySQL,
}

// Lookup returns the syntax of the named dialect. Driver names wrapped by
// telemetry packages (e.g. "postgres-otel") resolve by prefix.
func Lookup(name string) (Syntax, error) {
	n := strings.ToLower(name)
	if a, ok := aliases[n]; ok {
		n = a
	}
	if s, ok := syntaxes[n]; ok {
		return s, nil
	}
	for _, known := range []string{MySQL, SQLite, Postgres, SQLServer, H2} {
		if strings.HasPrefix(n, known) {
			return syntaxes[known], nil
		}
	}
	return Syntax{}, fmt.Errorf("dialect: unsupported dialect %q", name)
}

// Quote wraps an identifier in the dialect's quote characters, doubling any
// embedded closing quote. Dotted names are quoted per part.
func (s Syntax) Quote(ident string) string {
	if !strings.Contains(ident, ".") {
		return s.quoteOne(ident)
	}
	parts := strings.Split(ident, ".")
	for i, p := range parts {
		parts[i] = s.quoteOne(p)
	}
	return strings.Join(parts, ".")
}

func (s Syntax) quoteOne(ident string) string {
	if s.quote != nil {
		return s.quote(ident)
	}
	return s.OpenQuote + strings.ReplaceAll(ident, s.CloseQuote, s.CloseQuote+s.CloseQuote) + s.CloseQuote
}

// Param returns the placeholder for the n-th (1-based) parameter.
func (s Syntax) Param(n int) string {
	switch s.Placeholder {
	case Dollar:
		return "$" + strconv.Itoa(n)
	case AtP:
		return "@p" + strconv.Itoa(n)
	default:
		return "?"
	}
}
