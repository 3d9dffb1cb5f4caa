package connect

import (
	"errors"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// Violation is the class of a database constraint violation.
type Violation uint8

// Violation classes.
const (
	NoViolation Violation = iota
	UniqueViolation
	ForeignKeyViolation
	CheckViolation
	NotNullViolation
)

var violationNames = [...]string{"none", "unique", "foreign key", "check", "not null"}

// String returns the violation name.
func (v Violation) String() string {
	if int(v) < len(violationNames) {
		return violationNames[v]
	}
	return "unknown"
}

// PostgreSQL SQLSTATE codes, class 23.
var pgViolations = map[pq.ErrorCode]Violation{
	"23505": UniqueViolation,
	"23503": ForeignKeyViolation,
	"23514": CheckViolation,
	"23502": NotNullViolation,
}

// MySQL server error numbers.
var mysqlViolations = map[uint16]Violation{
	1062: UniqueViolation,     // ER_DUP_ENTRY
	1451: ForeignKeyViolation, // ER_ROW_IS_REFERENCED_2
	1452: ForeignKeyViolation, // ER_NO_REFERENCED_ROW_2
	3819: CheckViolation,      // ER_CHECK_CONSTRAINT_VIOLATED
	1048: NotNullViolation,    // ER_BAD_NULL_ERROR
}

// SQLite extended result codes.
var sqliteViolations = map[int]Violation{
	sqlite3.SQLITE_CONSTRAINT_UNIQUE:     UniqueViolation,
	sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY: UniqueViolation,
	sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY: ForeignKeyViolation,
	sqlite3.SQLITE_CONSTRAINT_CHECK:      CheckViolation,
	sqlite3.SQLITE_CONSTRAINT_NOTNULL:    NotNullViolation,
}

// ViolationOf classifies a driver error returned by a statement. keel
// returns driver errors untouched; ViolationOf is for callers that want to
// react to, for example, a duplicate key after Save.
func ViolationOf(err error) Violation {
	var (
		pgErr     *pq.Error
		mysqlErr  *mysql.MySQLError
		sqliteErr *sqlite.Error
	)
	switch {
	case err == nil:
		return NoViolation
	case errors.As(err, &pgErr):
		return pgViolations[pgErr.Code]
	case errors.As(err, &mysqlErr):
		return mysqlViolations[mysqlErr.Number]
	case errors.As(err, &sqliteErr):
		return sqliteViolations[sqliteErr.Code()]
	}
	return NoViolation
}

// IsUniqueViolation reports whether err is a unique or primary key violation.
func IsUniqueViolation(err error) bool { return ViolationOf(err) == UniqueViolation }

// IsForeignKeyViolation reports whether err is a foreign key violation.
func IsForeignKeyViolation(err error) bool { return ViolationOf(err) == ForeignKeyViolation }

// IsConstraintViolation reports whether err is any constraint violation.
func IsConstraintViolation(err error) bool { return ViolationOf(err) != NoViolation }
