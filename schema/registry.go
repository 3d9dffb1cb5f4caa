package schema

import (
	"fmt"
	"reflect"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Registry caches extracted metadata per Go type. Concurrent first uses of
// the same type extract it once. A Registry is safe for concurrent use.
type Registry struct {
	tables  sync.Map // reflect.Type => *TableInfo
	mappers sync.Map // reflect.Type => *RowMapper
	group   singleflight.Group
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

var defaultRegistry = NewRegistry()

// Default returns the process-wide registry.
func Default() *Registry {
	return defaultRegistry
}

// Table returns the metadata of entity type t, extracting it on first use.
// Extraction errors are not cached.
func (r *Registry) Table(t reflect.Type) (*TableInfo, error) {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if v, ok := r.tables.Load(t); ok {
		return v.(*TableInfo), nil
	}
	v, err, _ := r.group.Do(groupKey("table", t), func() (any, error) {
		if v, ok := r.tables.Load(t); ok {
			return v, nil
		}
		info, err := Extract(t)
		if err != nil {
			return nil, err
		}
		r.tables.Store(t, info)
		return info, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*TableInfo), nil
}

// Mapper returns the row mapper for target type t. Entity types reuse
// their table layout; any other type gets its own.
func (r *Registry) Mapper(t reflect.Type) (*RowMapper, error) {
	if v, ok := r.mappers.Load(t); ok {
		return v.(*RowMapper), nil
	}
	v, err, _ := r.group.Do(groupKey("mapper", t), func() (any, error) {
		if v, ok := r.mappers.Load(t); ok {
			return v, nil
		}
		var (
			fields *StructInfo
			err    error
		)
		if v, ok := r.tables.Load(t); ok {
			fields = v.(*TableInfo).fields
		} else if fields, err = StructOf(t); err != nil {
			return nil, err
		}
		m := NewRowMapper(t, fields)
		r.mappers.Store(t, m)
		return m, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*RowMapper), nil
}

// TableOf returns the metadata of T from r.
func TableOf[T any](r *Registry) (*TableInfo, error) {
	return r.Table(reflect.TypeFor[T]())
}

func groupKey(prefix string, t reflect.Type) string {
	return fmt.Sprintf("%s:%p", prefix, t)
}
