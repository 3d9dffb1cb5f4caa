package schema

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/syssam/keel"
)

// KeyKind tells how an entity is identified.
type KeyKind uint8

// Key kinds.
const (
	NoKey KeyKind = iota
	ScalarKey
	CompositeKey
)

// KeyPart is one column of a key.
type KeyPart struct {
	Column string
	Value  any
}

// Key is a primary-key value. It is either absent, a single column value or
// an ordered list of column values.
type Key struct {
	kind  KeyKind
	parts []KeyPart
}

// Scalar returns a single-column key.
func Scalar(column string, v any) Key {
	return Key{kind: ScalarKey, parts: []KeyPart{{Column: column, Value: v}}}
}

// Composite returns a multi-column key. Parts are reordered to match the
// table's primary key when the key is resolved against a table.
func Composite(parts ...KeyPart) Key {
	return Key{kind: CompositeKey, parts: parts}
}

// Kind returns the key kind.
func (k Key) Kind() KeyKind { return k.kind }

// Parts returns the key columns and values in primary-key order.
func (k Key) Parts() []KeyPart { return k.parts }

// Len returns the number of key columns.
func (k Key) Len() int { return len(k.parts) }

// Values returns the key values in primary-key order.
func (k Key) Values() []any {
	vs := make([]any, len(k.parts))
	for i, p := range k.parts {
		vs[i] = p.Value
	}
	return vs
}

// String implements the fmt.Stringer interface.
func (k Key) String() string {
	var b strings.Builder
	for i, p := range k.parts {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(p.Column)
		b.WriteByte('=')
		b.WriteString(fmt.Sprint(p.Value))
	}
	return b.String()
}

// KeyOf resolves a caller-supplied key value against the table. id may be
// a Key, a value or pointer of the table's key type, or a plain value for a
// single-column key.
func (t *TableInfo) KeyOf(id any) (Key, error) {
	if IsNull(id) {
		return Key{}, keel.Errorf(keel.KindArgument, t.Label(), "key must not be nil")
	}
	if !t.HasKey() {
		return Key{}, keel.Errorf(keel.KindConfiguration, t.Label(), "[%s] has no primary key", t.Name)
	}
	if k, ok := id.(Key); ok {
		return t.normalize(k)
	}
	if t.keyType != nil {
		rv := reflect.ValueOf(id)
		if rv.Kind() == reflect.Pointer {
			rv = rv.Elem()
		}
		if rv.Type() != t.keyType {
			return Key{}, keel.Errorf(keel.KindConfiguration, t.Label(), "invalid key type %T (should be %s)", id, t.keyType)
		}
		if !rv.CanAddr() {
			cp := reflect.New(t.keyType).Elem()
			cp.Set(rv)
			rv = cp
		}
		parts := make([]KeyPart, len(t.primaryKey))
		for i, c := range t.primaryKey {
			v, err := t.keyColumns[c.Name].Get(rv)
			if err != nil {
				return Key{}, err
			}
			parts[i] = KeyPart{Column: c.Name, Value: v}
		}
		return Key{kind: CompositeKey, parts: parts}, nil
	}
	if len(t.primaryKey) > 1 {
		return Key{}, keel.Errorf(keel.KindConfiguration, t.Label(), "composite primary key requires KeyType() or a schema.Key, got %T", id)
	}
	return Scalar(t.primaryKey[0].Name, id), nil
}

func (t *TableInfo) normalize(k Key) (Key, error) {
	if k.Len() != len(t.primaryKey) {
		return Key{}, keel.Errorf(keel.KindConfiguration, t.Label(), "key has %d columns, primary key has %d", k.Len(), len(t.primaryKey))
	}
	byName := make(map[string]any, k.Len())
	for _, p := range k.parts {
		byName[p.Column] = p.Value
	}
	parts := make([]KeyPart, len(t.primaryKey))
	for i, c := range t.primaryKey {
		v, ok := byName[c.Name]
		if !ok {
			return Key{}, keel.Errorf(keel.KindConfiguration, t.Label(), "key column [%s] not found", c.Name)
		}
		parts[i] = KeyPart{Column: c.Name, Value: v}
	}
	kind := ScalarKey
	if len(parts) > 1 {
		kind = CompositeKey
	}
	return Key{kind: kind, parts: parts}, nil
}

// KeyFromEntity reads the primary key of entity (an addressable struct value).
func (t *TableInfo) KeyFromEntity(entity reflect.Value) (Key, error) {
	if !t.HasKey() {
		return Key{}, nil
	}
	parts := make([]KeyPart, len(t.primaryKey))
	for i, c := range t.primaryKey {
		v, err := c.Get(entity)
		if err != nil {
			return Key{}, err
		}
		parts[i] = KeyPart{Column: c.Name, Value: v}
	}
	kind := ScalarKey
	if len(parts) > 1 {
		kind = CompositeKey
	}
	return Key{kind: kind, parts: parts}, nil
}

// IDOf returns the identity of entity in the form callers pass to KeyOf:
// nil without a key, the field value for a single-column key, a value of
// the key type when declared, or a Key otherwise.
func (t *TableInfo) IDOf(entity reflect.Value) (any, error) {
	k, err := t.KeyFromEntity(entity)
	if err != nil {
		return nil, err
	}
	switch {
	case k.Kind() == NoKey:
		return nil, nil
	case k.Kind() == ScalarKey:
		return k.parts[0].Value, nil
	case t.keyType != nil:
		id := reflect.New(t.keyType).Elem()
		for _, p := range k.parts {
			if err := t.keyColumns[p.Column].Set(id, p.Value); err != nil {
				return nil, err
			}
		}
		return id.Interface(), nil
	default:
		return k, nil
	}
}
