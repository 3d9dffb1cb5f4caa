package schema

import (
	"reflect"

	"github.com/syssam/keel"
)

// GeneratedValue converts a database-generated key into a value of the
// column's declared type. A value that does not fit the type is reported as
// a SaveError, never truncated.
func (t *TableInfo) GeneratedValue(c *Column, id int64) (any, error) {
	typ := c.Type
	ptr := typ.Kind() == reflect.Pointer
	if ptr {
		typ = typ.Elem()
	}
	v := reflect.New(typ).Elem()
	switch typ.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if v.OverflowInt(id) {
			return nil, keel.Errorf(keel.KindSave, t.Label(), "generated key %d overflows column [%s] of type %s", id, c.Name, c.Type)
		}
		v.SetInt(id)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if id < 0 || v.OverflowUint(uint64(id)) {
			return nil, keel.Errorf(keel.KindSave, t.Label(), "generated key %d overflows column [%s] of type %s", id, c.Name, c.Type)
		}
		v.SetUint(uint64(id))
	default:
		return nil, keel.Errorf(keel.KindConfiguration, t.Label(), "auto-increment column [%s] has non-integer type %s", c.Name, c.Type)
	}
	if ptr {
		p := reflect.New(typ)
		p.Elem().Set(v)
		return p.Interface(), nil
	}
	return v.Interface(), nil
}

// SetGenerated stores a generated key into the auto-increment field of entity.
func (t *TableInfo) SetGenerated(entity reflect.Value, id int64) error {
	c := t.autoIncrement
	if c == nil {
		return keel.Errorf(keel.KindConfiguration, t.Label(), "no auto-increment column declared")
	}
	v, err := t.GeneratedValue(c, id)
	if err != nil {
		return err
	}
	if err := c.Set(entity, v); err != nil {
		if keel.KindOf(err) != 0 {
			return err
		}
		return keel.Wrap(keel.KindSave, t.Label(), err, "failed to populate generated key [%s]", c.Name)
	}
	return nil
}
