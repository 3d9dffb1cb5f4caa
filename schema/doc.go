// Package schema derives table metadata from Go entity types and maps
// result rows back into values.
//
// # Declaring Entities
//
// An entity is a struct whose value or pointer type implements Tabler.
// Columns are the fields tagged with `db`:
//
//	type User struct {
//	    ID        int64      `db:"id,pk,autoincr"`
//	    Email     string     `db:"email,nodefault,size=255"`
//	    Nickname  *string    `db:",nullable"`           // column "nickname"
//	    CreatedAt time.Time  `db:"created_at"`
//	    cache     string                                 // not a column
//	}
//
//	func (User) TableName() string { return "users" }
//
// Tag options:
//
//   - pk: part of the primary key, in field declaration order.
//   - autoincr: the key is generated by the database (integer fields only).
//   - nullable: a null value is inserted as NULL.
//   - nodefault: a null value fails the insert instead of falling back to
//     the column default.
//   - size=N, scale=N, precision=N: reference only.
//
// Composite keys may declare a key struct whose fields carry the same
// column names. Its field order does not matter:
//
//	type MemberKey struct {
//	    User uuid.UUID `db:"user_id"`
//	    Team uuid.UUID `db:"team_id"`
//	}
//
//	func (Member) KeyType() any { return MemberKey{} }
//
// Views implement Viewer and are read-only. Types that need more control
// implement Describer and adjust the extracted TableInfo.
//
// # Fields
//
// Exported fields are accessed directly. Unexported fields are accessed
// through GetX()/X() and SetX(v) methods on the pointer receiver.
//
// # Row Mapping
//
// RowMapper maps result columns onto fields: by declared column name first,
// then by converting the column label to lowerCamelCase ("user_name" maps to
// field userName or UserName). Single-column rows of scalar targets are
// assigned directly.
//
// Metadata is computed once per type and cached in a Registry.
package schema
