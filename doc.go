// Package keel maps Go structs onto relational tables at run time.
//
// keel derives table metadata from struct tags, synthesizes the SQL for CRUD
// operations, binds positional parameters and converts result rows back into
// struct values. Entities may have no primary key, a single key or a
// composite key; a single Save entry point decides between INSERT and
// UPDATE.
//
// # Declaring entities
//
//	type User struct {
//	    ID    int64   `db:"id,pk,autoincr"`
//	    Name  string  `db:"name,nodefault"`
//	    Email *string `db:"email,nullable"`
//	}
//
//	func (User) TableName() string { return "users" }
//
// Composite keys name their key type through KeyType:
//
//	type MemberKey struct {
//	    GroupID int64 `db:"group_id"`
//	    UserID  int64 `db:"user_id"`
//	}
//
//	type Member struct {
//	    GroupID int64  `db:"group_id,pk"`
//	    UserID  int64  `db:"user_id,pk"`
//	    Role    string `db:"role"`
//	}
//
//	func (Member) TableName() string { return "members" }
//	func (Member) KeyType() any      { return MemberKey{} }
//
// # Packages
//
//   - schema: metadata extraction, field access, row mapping
//   - dialect: dialect names and per-dialect SQL syntax
//   - dialect/sql: database/sql driver, clause builder, row scanning
//   - dialect/sql/connect: opening MySQL, Postgres and SQLite drivers
//   - config: YAML configuration
//   - orm: the Client and typed repositories
//
// # Errors
//
// Every error raised by the core is a *Error carrying a Kind. Driver errors
// pass through wrapped but otherwise untouched.
//
//	u, err := users.FindByID(ctx, 42)
//	switch {
//	case keel.IsNotFound(err):
//	case keel.IsMappingError(err):
//	}
package keel
