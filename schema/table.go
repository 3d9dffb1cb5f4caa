package schema

import (
	"reflect"

	"github.com/syssam/keel"
)

// Kind is the kind of relation an entity type maps to.
type Kind uint8

// Relation kinds.
const (
	Table Kind = iota
	View
)

// String returns "TABLE" or "VIEW".
func (k Kind) String() string {
	if k == View {
		return "VIEW"
	}
	return "TABLE"
}

// Tabler is implemented by entity types associated with a table.
type Tabler interface {
	TableName() string
}

// Viewer is implemented by entity types whose relation is not a plain table.
type Viewer interface {
	TableKind() Kind
}

// Keyed is implemented by entity types with a composite key type. KeyType
// returns a value, or pointer, of the key struct.
type Keyed interface {
	KeyType() any
}

// Describer lets an entity type adjust its extracted metadata explicitly,
// e.g. to pick the table name from configuration.
type Describer interface {
	DescribeTable(*TableInfo) error
}

// Column describes one mapped field.
type Column struct {
	Name          string       // Column name.
	Field         string       // Go field name.
	Type          reflect.Type // Declared field type.
	PrimaryKey    bool
	AutoIncrement bool
	Nullable      bool
	NoDefault     bool
	// Reference only, never used to build SQL.
	Size      int64
	Scale     int
	Precision int

	index  []int
	access Accessor
}

// Get reads the column's field from entity (an addressable struct value).
func (c *Column) Get(entity reflect.Value) (any, error) {
	return c.access.Get(entity)
}

// Set writes v into the column's field on entity (an addressable struct value).
func (c *Column) Set(entity reflect.Value, v any) error {
	return c.access.Set(entity, v)
}

// IsNull reports whether v, read from this column, is null. The zero value
// of a non-pointer auto-increment column counts as null.
func (c *Column) IsNull(v any) bool {
	if IsNull(v) {
		return true
	}
	return c.AutoIncrement && c.Type.Kind() != reflect.Pointer && reflect.ValueOf(v).IsZero()
}

// Accessor returns the accessor resolved for the column's field.
func (c *Column) Accessor() Accessor {
	return c.access
}

// TableInfo is the metadata of one entity type. It is immutable after
// extraction and safe for concurrent use.
type TableInfo struct {
	Type reflect.Type // Entity struct type.
	Name string       // Table name.
	Kind Kind

	columns       []*Column
	byName        map[string]*Column
	primaryKey    []*Column
	autoIncrement *Column
	keyType       reflect.Type
	keyColumns    map[string]*Column
	fields        *StructInfo
}

// Label returns the name used in error messages.
func (t *TableInfo) Label() string {
	return t.Type.String()
}

// Columns returns the mapped columns in declaration order.
func (t *TableInfo) Columns() []*Column {
	return t.columns
}

// Column returns the column with the given name.
func (t *TableInfo) Column(name string) (*Column, bool) {
	c, ok := t.byName[name]
	return c, ok
}

// PrimaryKey returns the primary-key columns in declaration order.
func (t *TableInfo) PrimaryKey() []*Column {
	return t.primaryKey
}

// PrimaryKeyNames returns the primary-key column names in declaration order.
func (t *TableInfo) PrimaryKeyNames() []string {
	names := make([]string, len(t.primaryKey))
	for i, c := range t.primaryKey {
		names[i] = c.Name
	}
	return names
}

// HasKey reports whether the entity declares at least one primary-key column.
func (t *TableInfo) HasKey() bool {
	return len(t.primaryKey) > 0
}

// IsPrimaryKey reports whether name is a primary-key column.
func (t *TableInfo) IsPrimaryKey(name string) bool {
	c, ok := t.byName[name]
	return ok && c.PrimaryKey
}

// AutoIncrement returns the auto-increment column, or nil.
func (t *TableInfo) AutoIncrement() *Column {
	return t.autoIncrement
}

// KeyType returns the composite key type, or nil.
func (t *TableInfo) KeyType() reflect.Type {
	return t.keyType
}

// Fields returns the struct layout used by the row mapper.
func (t *TableInfo) Fields() *StructInfo {
	return t.fields
}

// CheckWritable fails for relations that are not plain tables.
func (t *TableInfo) CheckWritable() error {
	if t.Kind != Table {
		return keel.Errorf(keel.KindConfiguration, t.Label(), "[%s] is a %s, not a TABLE", t.Name, t.Kind)
	}
	return nil
}

// SetName renames the table. It is meant for Describer implementations.
func (t *TableInfo) SetName(name string) {
	t.Name = name
}

// Entity returns the addressable struct value behind v. v must be a non-nil
// pointer to, or a value of, the entity type.
func (t *TableInfo) Entity(v any) (reflect.Value, error) {
	if v == nil {
		return reflect.Value{}, keel.Errorf(keel.KindArgument, t.Label(), "entity must not be nil")
	}
	rv := reflect.ValueOf(v)
	switch {
	case rv.Kind() == reflect.Pointer && rv.Type().Elem() == t.Type:
		if rv.IsNil() {
			return reflect.Value{}, keel.Errorf(keel.KindArgument, t.Label(), "entity must not be nil")
		}
		return rv.Elem(), nil
	case rv.Type() == t.Type:
		cp := reflect.New(t.Type).Elem()
		cp.Set(rv)
		return cp, nil
	default:
		return reflect.Value{}, keel.Errorf(keel.KindArgument, t.Label(), "entity of type %s, expect %s", rv.Type(), t.Type)
	}
}

// IsKeyNull reports whether every primary-key field of entity is null.
// Entities without a key report false.
func (t *TableInfo) IsKeyNull(entity reflect.Value) (bool, error) {
	if len(t.primaryKey) == 0 {
		return false, nil
	}
	for _, c := range t.primaryKey {
		v, err := c.Get(entity)
		if err != nil {
			return false, err
		}
		if !c.IsNull(v) {
			return false, nil
		}
	}
	return true, nil
}

