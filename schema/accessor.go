package schema

import (
	"fmt"
	"reflect"

	"github.com/syssam/keel"
)

// Accessor reads and writes one field of an entity. The entity passed to
// Get and Set is an addressable struct value.
//
// Exported fields are accessed directly. Unexported fields go through
// methods on the pointer receiver: a getter named GetX or X and a setter
// named SetX, X being the field name with its first letter upper-cased.
type Accessor interface {
	Get(entity reflect.Value) (any, error)
	Set(entity reflect.Value, v any) error
}

// newAccessor picks the access strategy for a struct field.
func newAccessor(owner reflect.Type, sf reflect.StructField, index []int) Accessor {
	if sf.IsExported() {
		return &fieldAccessor{owner: owner, name: sf.Name, index: index}
	}
	upper := UpperFirst(sf.Name)
	return &methodAccessor{
		owner:   owner,
		name:    sf.Name,
		typ:     sf.Type,
		getters: []string{"Get" + upper, upper},
		setter:  "Set" + upper,
	}
}

type fieldAccessor struct {
	owner reflect.Type
	name  string
	index []int
}

func (a *fieldAccessor) Get(entity reflect.Value) (any, error) {
	f, err := entity.FieldByIndexErr(a.index)
	if err != nil {
		return nil, keel.Wrap(keel.KindAccess, a.owner.String(), err, "failed to get field [%s] value", a.name)
	}
	return f.Interface(), nil
}

func (a *fieldAccessor) Set(entity reflect.Value, v any) error {
	f, err := entity.FieldByIndexErr(a.index)
	if err != nil {
		return keel.Wrap(keel.KindAccess, a.owner.String(), err, "failed to set field [%s] value", a.name)
	}
	if !f.CanSet() {
		return keel.Errorf(keel.KindAccess, a.owner.String(), "field [%s] is not settable", a.name)
	}
	if err := Assign(f, v); err != nil {
		return keel.Wrap(keel.KindMapping, a.owner.String(), err, "field [%s]", a.name)
	}
	return nil
}

type methodAccessor struct {
	owner   reflect.Type
	name    string
	typ     reflect.Type
	getters []string
	setter  string
}

func (a *methodAccessor) Get(entity reflect.Value) (any, error) {
	if !entity.CanAddr() {
		return nil, keel.Errorf(keel.KindAccess, a.owner.String(), "field [%s] is unexported and the entity is not addressable", a.name)
	}
	recv := entity.Addr()
	for _, name := range a.getters {
		m := recv.MethodByName(name)
		if !m.IsValid() {
			continue
		}
		mt := m.Type()
		if mt.NumIn() != 0 || mt.NumOut() == 0 || mt.NumOut() > 2 || (mt.NumOut() == 2 && mt.Out(1) != errorType) {
			continue
		}
		out, err := invoke(m, nil)
		if err != nil {
			return nil, keel.Wrap(keel.KindAccess, a.owner.String(), err, "failed to invoke getter %s()", name)
		}
		if len(out) == 2 && !out[1].IsNil() {
			return nil, keel.Wrap(keel.KindAccess, a.owner.String(), out[1].Interface().(error), "getter %s() failed", name)
		}
		return out[0].Interface(), nil
	}
	return nil, keel.Errorf(keel.KindAccess, a.owner.String(), "field [%s] is unexported and getter %s() not found", a.name, a.getters[0])
}

func (a *methodAccessor) Set(entity reflect.Value, v any) error {
	if !entity.CanAddr() {
		return keel.Errorf(keel.KindAccess, a.owner.String(), "field [%s] is unexported and the entity is not addressable", a.name)
	}
	m := entity.Addr().MethodByName(a.setter)
	if !m.IsValid() {
		return keel.Errorf(keel.KindAccess, a.owner.String(), "field [%s] is unexported and setter %s(%s) not found", a.name, a.setter, a.typ)
	}
	mt := m.Type()
	if mt.NumIn() != 1 || mt.NumOut() > 1 || (mt.NumOut() == 1 && mt.Out(0) != errorType) {
		return keel.Errorf(keel.KindAccess, a.owner.String(), "setter %s has signature %s, expect func(%s)", a.setter, mt, a.typ)
	}
	arg := reflect.New(mt.In(0)).Elem()
	if err := Assign(arg, v); err != nil {
		return keel.Wrap(keel.KindMapping, a.owner.String(), err, "field [%s]", a.name)
	}
	out, err := invoke(m, []reflect.Value{arg})
	if err != nil {
		return keel.Wrap(keel.KindAccess, a.owner.String(), err, "failed to invoke setter %s(%s)", a.setter, a.typ)
	}
	if len(out) == 1 && !out[0].IsNil() {
		return keel.Wrap(keel.KindAccess, a.owner.String(), out[0].Interface().(error), "setter %s(%s) failed", a.setter, a.typ)
	}
	return nil
}

var errorType = reflect.TypeFor[error]()

// invoke calls m, turning a panic into an error.
func invoke(m reflect.Value, args []reflect.Value) (out []reflect.Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok {
				err = e
				return
			}
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return m.Call(args), nil
}
