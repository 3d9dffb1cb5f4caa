package schema

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/syssam/keel"
)

// TagName is the struct tag read by the extractor.
//
//	ID    int64  `db:"id,pk,autoincr"`
//	Email string `db:",nodefault,size=255"`
//	Note  string `db:"-"`
//
// The first element is the column name; empty means the snake_case field
// name. Options: pk, autoincr, nullable, nodefault, size=N, scale=N and
// precision=N. Untagged fields are not columns. Anonymous struct fields
// without a tag are flattened.
const TagName = "db"

type tagOptions struct {
	name      string
	pk        bool
	autoIncr  bool
	nullable  bool
	noDefault bool
	size      int64
	scale     int
	precision int
}

func parseTag(tag string) (tagOptions, error) {
	parts := strings.Split(tag, ",")
	opts := tagOptions{name: strings.TrimSpace(parts[0])}
	for _, p := range parts[1:] {
		p = strings.TrimSpace(p)
		key, value, hasValue := strings.Cut(p, "=")
		switch key {
		case "":
		case "pk":
			opts.pk = true
		case "autoincr":
			opts.autoIncr = true
		case "nullable":
			opts.nullable = true
		case "nodefault":
			opts.noDefault = true
		case "size", "scale", "precision":
			if !hasValue {
				return opts, fmt.Errorf("option %q requires a value", key)
			}
			n, err := strconv.ParseInt(value, 10, 64)
			if err != nil || n < 0 {
				return opts, fmt.Errorf("invalid %s %q", key, value)
			}
			switch key {
			case "size":
				opts.size = n
			case "scale":
				opts.scale = int(n)
			default:
				opts.precision = int(n)
			}
		default:
			return opts, fmt.Errorf("unknown option %q", key)
		}
	}
	return opts, nil
}

// isStructTarget reports whether values of t are mapped field by field.
func isStructTarget(t reflect.Type) bool {
	return t.Kind() == reflect.Struct && t != timeType && !reflect.PointerTo(t).Implements(scannerType)
}

// StructOf returns the field layout of t. Non-struct types, time.Time and
// sql.Scanner implementations have no layout and yield nil.
func StructOf(t reflect.Type) (*StructInfo, error) {
	if !isStructTarget(t) {
		return nil, nil
	}
	s := &StructInfo{
		Type:     t,
		byColumn: make(map[string]*Column),
		byField:  make(map[string]*Column),
	}
	if err := s.walk(t, t, nil); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *StructInfo) walk(root, t reflect.Type, index []int) error {
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		tag, tagged := sf.Tag.Lookup(TagName)
		if tag == "-" {
			continue
		}
		path := append(append(make([]int, 0, len(index)+1), index...), i)
		if sf.Anonymous && !tagged && isStructTarget(sf.Type) {
			if err := s.walk(root, sf.Type, path); err != nil {
				return err
			}
			continue
		}
		c := &Column{
			Field:  sf.Name,
			Type:   sf.Type,
			index:  path,
			access: newAccessor(root, sf, path),
		}
		if tagged {
			opts, err := parseTag(tag)
			if err != nil {
				return keel.Wrap(keel.KindConfiguration, root.String(), err, "field [%s]", sf.Name)
			}
			c.Name = opts.name
			if c.Name == "" {
				c.Name = ColumnName(sf.Name)
			}
			c.PrimaryKey = opts.pk
			c.AutoIncrement = opts.autoIncr
			c.Nullable = opts.nullable
			c.NoDefault = opts.noDefault
			c.Size = opts.size
			c.Scale = opts.scale
			c.Precision = opts.precision
			if prev, ok := s.byColumn[c.Name]; ok {
				return keel.Errorf(keel.KindConfiguration, root.String(), "duplicate column [%s] on fields %s and %s", c.Name, prev.Field, c.Field)
			}
			s.columns = append(s.columns, c)
			s.byColumn[c.Name] = c
		}
		// Outer fields shadow promoted ones.
		if _, ok := s.byField[sf.Name]; !ok || len(path) < len(s.byField[sf.Name].index) {
			s.byField[sf.Name] = c
		}
	}
	return nil
}

// Extract builds the metadata of an entity type. t may be the struct type
// or a pointer to it. The entity must implement Tabler, on its value or
// pointer receiver.
func Extract(t reflect.Type) (*TableInfo, error) {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, keel.Errorf(keel.KindConfiguration, t.String(), "entity must be a struct")
	}
	zero := reflect.New(t).Interface()
	tabler, ok := zero.(Tabler)
	if !ok {
		return nil, keel.Errorf(keel.KindConfiguration, t.String(), "no table association, implement TableName() string")
	}
	info := &TableInfo{
		Type:   t,
		Name:   tabler.TableName(),
		byName: make(map[string]*Column),
	}
	if info.Name == "" {
		return nil, keel.Errorf(keel.KindConfiguration, t.String(), "empty table name")
	}
	if v, ok := zero.(Viewer); ok {
		info.Kind = v.TableKind()
	}
	fields, err := StructOf(t)
	if err != nil {
		return nil, err
	}
	if fields == nil {
		return nil, keel.Errorf(keel.KindConfiguration, t.String(), "entity must be a plain struct")
	}
	info.fields = fields
	info.columns = fields.columns
	if len(info.columns) == 0 {
		return nil, keel.Errorf(keel.KindConfiguration, t.String(), "no column declared, tag fields with `db:\"...\"`")
	}
	for _, c := range info.columns {
		info.byName[c.Name] = c
		if c.PrimaryKey {
			info.primaryKey = append(info.primaryKey, c)
		}
		if !c.AutoIncrement {
			continue
		}
		switch {
		case info.autoIncrement != nil:
			return nil, keel.Errorf(keel.KindConfiguration, t.String(), "multiple auto-increment columns [%s] and [%s]", info.autoIncrement.Name, c.Name)
		case !c.PrimaryKey:
			return nil, keel.Errorf(keel.KindConfiguration, t.String(), "auto-increment column [%s] is not a primary key", c.Name)
		case !isInteger(c.Type):
			return nil, keel.Errorf(keel.KindConfiguration, t.String(), "auto-increment column [%s] has non-integer type %s", c.Name, c.Type)
		}
		info.autoIncrement = c
	}
	if k, ok := zero.(Keyed); ok {
		if err := info.bindKeyType(k.KeyType()); err != nil {
			return nil, err
		}
	}
	if d, ok := zero.(Describer); ok {
		if err := d.DescribeTable(info); err != nil {
			return nil, keel.Wrap(keel.KindConfiguration, t.String(), err, "describe table")
		}
		if info.Name == "" {
			return nil, keel.Errorf(keel.KindConfiguration, t.String(), "empty table name")
		}
	}
	return info, nil
}

func (t *TableInfo) bindKeyType(v any) error {
	kt := reflect.TypeOf(v)
	if kt == nil {
		return nil
	}
	if kt.Kind() == reflect.Pointer {
		kt = kt.Elem()
	}
	if kt.Kind() != reflect.Struct {
		return keel.Errorf(keel.KindConfiguration, t.Label(), "key type %s is not a struct", kt)
	}
	if !t.HasKey() {
		return keel.Errorf(keel.KindConfiguration, t.Label(), "key type %s declared without primary-key columns", kt)
	}
	ks, err := StructOf(kt)
	if err != nil {
		return err
	}
	t.keyColumns = make(map[string]*Column, len(t.primaryKey))
	for _, c := range t.primaryKey {
		kc, ok := ks.byColumn[c.Name]
		if !ok {
			// Untagged key fields match by field name.
			kc, ok = ks.byField[c.Field]
		}
		if !ok {
			return keel.Errorf(keel.KindConfiguration, t.Label(), "primary key [%s] not found in key type %s", c.Name, kt)
		}
		t.keyColumns[c.Name] = kc
	}
	t.keyType = kt
	return nil
}
