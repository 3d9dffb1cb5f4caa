package sql

import (
	"database/sql/driver"
	"reflect"

	"github.com/syssam/keel"
	"github.com/syssam/keel/dialect"
	"github.com/syssam/keel/schema"
)

// TypedNull is a null argument carrying the declared type of its column.
// It reaches the driver as nil.
type TypedNull struct {
	Type reflect.Type
}

// Value implements the driver.Valuer interface.
func (TypedNull) Value() (driver.Value, error) {
	return nil, nil
}

// Clauses builds the statements of the mapping core for one dialect. The
// statement shapes are the same for every dialect; only identifier quoting,
// placeholders and the generated-key form differ.
type Clauses struct {
	*DialectBuilder
}

// NewClauses returns a Clauses for the given dialect syntax.
func NewClauses(s dialect.Syntax) *Clauses {
	return &Clauses{DialectBuilder: Dialect(s)}
}

// KeyPredicate returns "k1 = ? AND k2 = ? ..." in primary-key order.
func KeyPredicate(k schema.Key) Predicate {
	ps := make([]Predicate, 0, k.Len())
	for _, p := range k.Parts() {
		ps = append(ps, EQ(p.Column, schema.Bindable(p.Value)))
	}
	return And(ps...)
}

// NullablePredicate returns "col IS NULL" when v is null and "col = ?"
// otherwise.
func NullablePredicate(c *schema.Column, v any) Predicate {
	if c.IsNull(v) {
		return IsNull(c.Name)
	}
	return EQ(c.Name, schema.Bindable(v))
}

// RowPredicate matches every declared column of entity. Null fields match
// with IS NULL.
func RowPredicate(t *schema.TableInfo, entity reflect.Value) (Predicate, error) {
	ps := make([]Predicate, 0, len(t.Columns()))
	for _, c := range t.Columns() {
		v, err := c.Get(entity)
		if err != nil {
			return nil, err
		}
		ps = append(ps, NullablePredicate(c, v))
	}
	return And(ps...), nil
}

// KeyColumnsPredicate matches the key columns of entity with IS NULL or
// "= ?" per column, in primary-key order.
func KeyColumnsPredicate(t *schema.TableInfo, entity reflect.Value) (Predicate, error) {
	ps := make([]Predicate, 0, len(t.PrimaryKey()))
	for _, c := range t.PrimaryKey() {
		v, err := c.Get(entity)
		if err != nil {
			return nil, err
		}
		ps = append(ps, NullablePredicate(c, v))
	}
	return And(ps...), nil
}

// EntityPredicate matches entity by its primary key, or by all of its
// columns when the type has no key.
func EntityPredicate(t *schema.TableInfo, entity reflect.Value) (Predicate, error) {
	if !t.HasKey() {
		return RowPredicate(t, entity)
	}
	return KeyColumnsPredicate(t, entity)
}

// BatchPredicate matches all entities. A single key column yields one IN
// list; otherwise the per-entity key (or whole-row) predicates are joined
// with OR. Arguments are in entity-major, column-minor order.
func BatchPredicate(t *schema.TableInfo, entities []reflect.Value) (Predicate, error) {
	if len(entities) == 0 {
		return nil, keel.Errorf(keel.KindArgument, t.Label(), "entities must not be empty")
	}
	if pk := t.PrimaryKey(); len(pk) == 1 {
		vs := make([]any, len(entities))
		for i, e := range entities {
			v, err := pk[0].Get(e)
			if err != nil {
				return nil, err
			}
			vs[i] = schema.Bindable(v)
		}
		return In(pk[0].Name, vs...), nil
	}
	ps := make([]Predicate, len(entities))
	for i, e := range entities {
		p, err := EntityPredicate(t, e)
		if err != nil {
			return nil, err
		}
		ps[i] = p
	}
	return Or(ps...), nil
}

// Count returns SELECT COUNT(*) over the whole table.
func (c *Clauses) Count(t *schema.TableInfo) Querier {
	return c.SelectCount().From(t.Name)
}

// CountByKey returns SELECT COUNT(*) of the rows matching k.
func (c *Clauses) CountByKey(t *schema.TableInfo, k schema.Key) Querier {
	return c.SelectCount().From(t.Name).Where(KeyPredicate(k))
}

// CountEntity returns SELECT COUNT(*) of the rows holding the key of
// entity. It matches the same rows as the WHERE of Update.
func (c *Clauses) CountEntity(t *schema.TableInfo, entity reflect.Value) (Querier, error) {
	if !t.HasKey() {
		return nil, keel.Errorf(keel.KindConfiguration, t.Label(), "[%s] has no primary key", t.Name)
	}
	p, err := KeyColumnsPredicate(t, entity)
	if err != nil {
		return nil, err
	}
	return c.SelectCount().From(t.Name).Where(p), nil
}

// SelectAll returns SELECT of every declared column over the whole table.
func (c *Clauses) SelectAll(t *schema.TableInfo) Querier {
	return c.Select(columnNames(t)...).From(t.Name)
}

// SelectByKey returns SELECT of every declared column of the row matching k.
func (c *Clauses) SelectByKey(t *schema.TableInfo, k schema.Key) Querier {
	return c.Select(columnNames(t)...).From(t.Name).Where(KeyPredicate(k))
}

// DeleteByKey returns DELETE of the row matching k.
func (c *Clauses) DeleteByKey(t *schema.TableInfo, k schema.Key) Querier {
	return c.Delete(t.Name).Where(KeyPredicate(k))
}

// DeleteOne returns DELETE of the rows matching entity.
func (c *Clauses) DeleteOne(t *schema.TableInfo, entity reflect.Value) (Querier, error) {
	p, err := EntityPredicate(t, entity)
	if err != nil {
		return nil, err
	}
	return c.Delete(t.Name).Where(p), nil
}

// DeleteBatch returns one DELETE of the rows matching any of entities.
func (c *Clauses) DeleteBatch(t *schema.TableInfo, entities []reflect.Value) (Querier, error) {
	p, err := BatchPredicate(t, entities)
	if err != nil {
		return nil, err
	}
	return c.Delete(t.Name).Where(p), nil
}

// DeleteAll returns DELETE of every row.
func (c *Clauses) DeleteAll(t *schema.TableInfo) Querier {
	return c.Delete(t.Name)
}

// Insert returns the INSERT of entity. Null columns are bound as typed
// nulls when nullable and omitted otherwise, so that the column default
// applies; a null non-nullable column declared nodefault fails with a
// ConstraintError. A null auto-increment column is always omitted. With
// returning set, the statement reports the auto-increment column in the
// dialect's form.
func (c *Clauses) Insert(t *schema.TableInfo, entity reflect.Value, returning bool) (Querier, error) {
	ib := c.DialectBuilder.Insert(t.Name)
	for _, col := range t.Columns() {
		v, err := col.Get(entity)
		if err != nil {
			return nil, err
		}
		switch {
		case !col.IsNull(v):
			ib.Set(col.Name, schema.Bindable(v))
		case col.AutoIncrement:
		case col.Nullable:
			ib.Set(col.Name, TypedNull{Type: col.Type})
		case col.NoDefault:
			return nil, keel.Errorf(keel.KindConstraint, t.Label(), "column [%s] is null, not nullable and has no default", col.Name)
		}
	}
	if ai := t.AutoIncrement(); returning && ai != nil {
		ib.Returning(ai.Name)
	}
	return ib, nil
}

// Update returns the UPDATE of entity: every non-key column is set, nulls
// included, and the key columns select the row with IS NULL or "= ?". ok
// is false when the type has no non-key column and there is nothing to
// update.
func (c *Clauses) Update(t *schema.TableInfo, entity reflect.Value) (q Querier, ok bool, err error) {
	if !t.HasKey() {
		return nil, false, keel.Errorf(keel.KindConfiguration, t.Label(), "[%s] has no primary key", t.Name)
	}
	ub := c.DialectBuilder.Update(t.Name)
	for _, col := range t.Columns() {
		if col.PrimaryKey {
			continue
		}
		v, err := col.Get(entity)
		if err != nil {
			return nil, false, err
		}
		if schema.IsNull(v) {
			ub.Set(col.Name, TypedNull{Type: col.Type})
		} else {
			ub.Set(col.Name, schema.Bindable(v))
		}
	}
	if ub.Empty() {
		return nil, false, nil
	}
	p, err := KeyColumnsPredicate(t, entity)
	if err != nil {
		return nil, false, err
	}
	return ub.Where(p), true, nil
}

func columnNames(t *schema.TableInfo) []string {
	cols := t.Columns()
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.Name
	}
	return names
}
