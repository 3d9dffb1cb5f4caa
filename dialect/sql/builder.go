package sql

import (
	"strings"

	"github.com/syssam/keel/dialect"
)

// Querier wraps the basic Query method that is implemented
// by the different builders in this file.
type Querier interface {
	// Query returns the query representation of the element
	// and its arguments (if any).
	Query() (string, []any)
}

// Builder is the base query builder. It writes SQL text, quotes
// identifiers and numbers positional parameters for one dialect.
type Builder struct {
	sb     strings.Builder
	syntax dialect.Syntax
	args   []any
}

// WriteString appends s to the query.
func (b *Builder) WriteString(s string) *Builder {
	b.sb.WriteString(s)
	return b
}

// WriteByte appends c to the query.
func (b *Builder) WriteByte(c byte) *Builder {
	b.sb.WriteByte(c)
	return b
}

// Pad appends a space.
func (b *Builder) Pad() *Builder {
	return b.WriteByte(' ')
}

// Comma appends ", ".
func (b *Builder) Comma() *Builder {
	return b.WriteString(", ")
}

// Ident appends a quoted identifier.
func (b *Builder) Ident(name string) *Builder {
	return b.WriteString(b.syntax.Quote(name))
}

// IdentComma appends the quoted identifiers separated by commas.
func (b *Builder) IdentComma(names ...string) *Builder {
	for i, n := range names {
		if i > 0 {
			b.Comma()
		}
		b.Ident(n)
	}
	return b
}

// Arg appends a placeholder and records v as its argument.
func (b *Builder) Arg(v any) *Builder {
	b.args = append(b.args, v)
	return b.WriteString(b.syntax.Param(len(b.args)))
}

// Args appends comma separated placeholders for vs.
func (b *Builder) Args(vs ...any) *Builder {
	for i, v := range vs {
		if i > 0 {
			b.Comma()
		}
		b.Arg(v)
	}
	return b
}

// Query implements the Querier interface.
func (b *Builder) Query() (string, []any) {
	return b.sb.String(), b.args
}

// reset clears the written text so statement builders can rebuild on
// every Query call.
func (b *Builder) reset() *Builder {
	b.sb.Reset()
	b.args = nil
	return b
}

// Predicate writes a boolean SQL expression into a Builder.
type Predicate func(*Builder)

// EQ returns a "col = ?" predicate.
func EQ(col string, v any) Predicate {
	return func(b *Builder) {
		b.Ident(col).WriteString(" = ").Arg(v)
	}
}

// IsNull returns a "col IS NULL" predicate.
func IsNull(col string) Predicate {
	return func(b *Builder) {
		b.Ident(col).WriteString(" IS NULL")
	}
}

// In returns a "col IN (?, ...)" predicate.
func In(col string, vs ...any) Predicate {
	return func(b *Builder) {
		b.Ident(col).WriteString(" IN (").Args(vs...).WriteByte(')')
	}
}

// And joins predicates with AND.
func And(ps ...Predicate) Predicate {
	return func(b *Builder) {
		for i, p := range ps {
			if i > 0 {
				b.WriteString(" AND ")
			}
			p(b)
		}
	}
}

// Or joins predicates with OR, each operand in parentheses.
func Or(ps ...Predicate) Predicate {
	return func(b *Builder) {
		for i, p := range ps {
			if i > 0 {
				b.WriteString(" OR ")
			}
			b.WriteByte('(')
			p(b)
			b.WriteByte(')')
		}
	}
}

// DialectBuilder prefixes all root builders with the dialect syntax.
type DialectBuilder struct {
	syntax dialect.Syntax
}

// Dialect creates a new DialectBuilder with the given dialect syntax.
//
//	s, _ := dialect.Lookup(dialect.Postgres)
//	sql.Dialect(s).Select("id", "name").From("users").Where(sql.EQ("id", 1))
func Dialect(s dialect.Syntax) *DialectBuilder {
	return &DialectBuilder{syntax: s}
}

// Syntax returns the dialect syntax of the builder.
func (d *DialectBuilder) Syntax() dialect.Syntax {
	return d.syntax
}

// Select starts a SELECT of the given columns.
func (d *DialectBuilder) Select(columns ...string) *Selector {
	return &Selector{Builder: Builder{syntax: d.syntax}, columns: columns}
}

// SelectCount starts a SELECT COUNT(*).
func (d *DialectBuilder) SelectCount() *Selector {
	return &Selector{Builder: Builder{syntax: d.syntax}, count: true}
}

// Insert starts an INSERT into table.
func (d *DialectBuilder) Insert(table string) *InsertBuilder {
	return &InsertBuilder{Builder: Builder{syntax: d.syntax}, table: table}
}

// Update starts an UPDATE of table.
func (d *DialectBuilder) Update(table string) *UpdateBuilder {
	return &UpdateBuilder{Builder: Builder{syntax: d.syntax}, table: table}
}

// Delete starts a DELETE from table.
func (d *DialectBuilder) Delete(table string) *DeleteBuilder {
	return &DeleteBuilder{Builder: Builder{syntax: d.syntax}, table: table}
}

// Selector is a builder for the SELECT statement.
type Selector struct {
	Builder
	columns []string
	count   bool
	table   string
	where   Predicate
}

// From sets the source table.
func (s *Selector) From(table string) *Selector {
	s.table = table
	return s
}

// Where sets the WHERE predicate.
func (s *Selector) Where(p Predicate) *Selector {
	s.where = p
	return s
}

// Query implements the Querier interface.
func (s *Selector) Query() (string, []any) {
	b := s.Builder.reset()
	b.WriteString("SELECT ")
	switch {
	case s.count:
		b.WriteString("COUNT(*)")
	case len(s.columns) == 0:
		b.WriteByte('*')
	default:
		b.IdentComma(s.columns...)
	}
	b.WriteString(" FROM ").Ident(s.table)
	if s.where != nil {
		b.WriteString(" WHERE ")
		s.where(b)
	}
	return b.Query()
}

// InsertBuilder is a builder for the INSERT statement.
type InsertBuilder struct {
	Builder
	table     string
	columns   []string
	values    []any
	returning string
}

// Set adds a column and its value.
func (i *InsertBuilder) Set(column string, v any) *InsertBuilder {
	i.columns = append(i.columns, column)
	i.values = append(i.values, v)
	return i
}

// Returning asks the database to report the value of column after the
// insert, in the dialect's form (RETURNING or OUTPUT INSERTED). Dialects
// reporting generated keys through LastInsertId ignore it.
func (i *InsertBuilder) Returning(column string) *InsertBuilder {
	i.returning = column
	return i
}

// Query implements the Querier interface.
func (i *InsertBuilder) Query() (string, []any) {
	b := i.Builder.reset()
	b.WriteString("INSERT INTO ").Ident(i.table).Pad()
	if len(i.columns) > 0 {
		b.WriteByte('(').IdentComma(i.columns...).WriteString(") ")
	}
	output := i.returning != "" && b.syntax.GeneratedKey == dialect.OutputInserted
	if output {
		b.WriteString("OUTPUT INSERTED.").Ident(i.returning).Pad()
	}
	if len(i.columns) == 0 {
		b.WriteString(b.syntax.EmptyInsert)
	} else {
		b.WriteString("VALUES (").Args(i.values...).WriteByte(')')
	}
	if i.returning != "" && b.syntax.GeneratedKey == dialect.Returning {
		b.WriteString(" RETURNING ").Ident(i.returning)
	}
	return b.Query()
}

// UpdateBuilder is a builder for the UPDATE statement.
type UpdateBuilder struct {
	Builder
	table   string
	columns []string
	values  []any
	where   Predicate
}

// Set adds a column assignment.
func (u *UpdateBuilder) Set(column string, v any) *UpdateBuilder {
	u.columns = append(u.columns, column)
	u.values = append(u.values, v)
	return u
}

// Empty reports whether the statement has no assignment.
func (u *UpdateBuilder) Empty() bool {
	return len(u.columns) == 0
}

// Where sets the WHERE predicate.
func (u *UpdateBuilder) Where(p Predicate) *UpdateBuilder {
	u.where = p
	return u
}

// Query implements the Querier interface.
func (u *UpdateBuilder) Query() (string, []any) {
	b := u.Builder.reset()
	b.WriteString("UPDATE ").Ident(u.table).WriteString(" SET ")
	for i, c := range u.columns {
		if i > 0 {
			b.Comma()
		}
		b.Ident(c).WriteString(" = ").Arg(u.values[i])
	}
	if u.where != nil {
		b.WriteString(" WHERE ")
		u.where(b)
	}
	return b.Query()
}

// DeleteBuilder is a builder for the DELETE statement.
type DeleteBuilder struct {
	Builder
	table string
	where Predicate
}

// Where sets the WHERE predicate.
func (d *DeleteBuilder) Where(p Predicate) *DeleteBuilder {
	d.where = p
	return d
}

// Query implements the Querier interface.
func (d *DeleteBuilder) Query() (string, []any) {
	b := d.Builder.reset()
	b.WriteString("DELETE FROM ").Ident(d.table)
	if d.where != nil {
		b.WriteString(" WHERE ")
		d.where(b)
	}
	return b.Query()
}
