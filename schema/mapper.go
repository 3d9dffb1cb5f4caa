package schema

import (
	"reflect"

	"github.com/syssam/keel"
)

// StructInfo is the field layout of a struct type used to map result rows.
// Unlike TableInfo it covers every field, tagged or not, and does not
// require a table association.
type StructInfo struct {
	Type reflect.Type

	columns  []*Column
	byColumn map[string]*Column
	byField  map[string]*Column
}

// Columns returns the tagged columns in declaration order.
func (s *StructInfo) Columns() []*Column {
	return s.columns
}

// Resolve finds the field a result column maps to: first by declared column
// name, then by the column label converted to lowerCamelCase, matched as-is
// or with an upper-case first letter.
func (s *StructInfo) Resolve(column string) (*Column, bool) {
	if c, ok := s.byColumn[column]; ok {
		return c, true
	}
	name := LowerCamel(column)
	if c, ok := s.byField[name]; ok {
		return c, true
	}
	c, ok := s.byField[UpperFirst(name)]
	return c, ok
}

// RowMapper builds values of one target type from result rows.
type RowMapper struct {
	typ    reflect.Type
	fields *StructInfo // nil for non-struct targets.
	scan   bool        // *typ implements sql.Scanner.
}

// NewRowMapper returns a mapper for values of type t using fields, the
// layout of t, for struct targets.
func NewRowMapper(t reflect.Type, fields *StructInfo) *RowMapper {
	return &RowMapper{
		typ:    t,
		fields: fields,
		scan:   reflect.PointerTo(t).Implements(scannerType),
	}
}

// Type returns the target type.
func (m *RowMapper) Type() reflect.Type {
	return m.typ
}

// Map builds one value from a row. columns are the result column labels and
// values the row values at the same positions. The returned value is
// addressable.
func (m *RowMapper) Map(columns []string, values []any) (reflect.Value, error) {
	out := reflect.New(m.typ).Elem()
	if len(columns) == 1 && m.direct(values[0]) {
		if err := Assign(out, values[0]); err != nil {
			return reflect.Value{}, keel.Wrap(keel.KindMapping, m.typ.String(), err, "column [%s]", columns[0])
		}
		return out, nil
	}
	if m.fields == nil {
		return reflect.Value{}, keel.Errorf(keel.KindMapping, m.typ.String(), "cannot map %d columns into %s", len(columns), m.typ)
	}
	for i, name := range columns {
		c, ok := m.fields.Resolve(name)
		if !ok {
			return reflect.Value{}, keel.Errorf(keel.KindMapping, m.typ.String(), "field [%s] not found for column [%s]", LowerCamel(name), name)
		}
		if err := c.Set(out, values[i]); err != nil {
			if keel.KindOf(err) != 0 {
				return reflect.Value{}, err
			}
			return reflect.Value{}, keel.Wrap(keel.KindMapping, m.typ.String(), err, "column [%s]", name)
		}
	}
	return out, nil
}

// direct reports whether a single-column row is assigned to the target as a
// whole instead of field by field.
func (m *RowMapper) direct(v any) bool {
	if m.fields == nil || m.scan {
		return true
	}
	return v != nil && reflect.TypeOf(v) == m.typ
}
