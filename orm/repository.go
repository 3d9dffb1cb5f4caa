package orm

import (
	"context"
	"iter"
	"reflect"

	"github.com/syssam/keel"
	"github.com/syssam/keel/schema"
)

// Repository runs the table operations of entity type T, a struct that
// implements schema.Tabler.
type Repository[T any] struct {
	client *Client
	table  *schema.TableInfo
	err    error // metadata error, returned by every operation.
}

// For returns the repository of T on c. Metadata errors are reported by the
// first operation.
func For[T any](c *Client) *Repository[T] {
	r := &Repository[T]{client: c}
	if t := reflect.TypeFor[T](); t.Kind() == reflect.Pointer {
		r.err = keel.Errorf(keel.KindConfiguration, t.String(), "repository type must be the entity struct, not a pointer")
		return r
	}
	r.table, r.err = schema.TableOf[T](c.registry)
	return r
}

// Table returns the metadata of T.
func (r *Repository[T]) Table() (*schema.TableInfo, error) {
	return r.table, r.err
}

func (r *Repository[T]) writable() error {
	if r.err != nil {
		return r.err
	}
	return r.table.CheckWritable()
}

// Count returns the number of rows of the table.
func (r *Repository[T]) Count(ctx context.Context) (int64, error) {
	if r.err != nil {
		return 0, r.err
	}
	return r.client.count(ctx, r.client.clauses.Count(r.table))
}

// ExistsByID reports whether a row with the given key exists.
func (r *Repository[T]) ExistsByID(ctx context.Context, id any) (bool, error) {
	if r.err != nil {
		return false, r.err
	}
	k, err := r.table.KeyOf(id)
	if err != nil {
		return false, err
	}
	n, err := r.client.count(ctx, r.client.clauses.CountByKey(r.table, k))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Save inserts or updates entity:
//
//   - without a primary key, the entity is inserted.
//   - with a null key, the entity is inserted and the generated key is
//     written back into its auto-increment field. A SaveError is returned
//     when no auto-increment column is declared.
//   - otherwise, the row is updated if it exists and inserted if not.
//
// The existence check and the write are separate statements; run Save in
// a transaction (Client.WithTx) to make them atomic.
func (r *Repository[T]) Save(ctx context.Context, entity *T) error {
	if err := r.writable(); err != nil {
		return err
	}
	e, err := r.table.Entity(entity)
	if err != nil {
		return err
	}
	return r.client.save(ctx, r.table, e)
}

// FindByID returns the entity with the given key, or a *keel.NotFoundError.
func (r *Repository[T]) FindByID(ctx context.Context, id any) (*T, error) {
	if r.err != nil {
		return nil, r.err
	}
	k, err := r.table.KeyOf(id)
	if err != nil {
		return nil, err
	}
	query, args := r.client.clauses.SelectByKey(r.table, k).Query()
	for v, err := range r.seq(ctx, query, args) {
		if err != nil {
			return nil, err
		}
		return v, nil
	}
	return nil, keel.NewNotFoundErrorWithID(r.table.Label(), id)
}

// FindAll returns all rows of the table.
func (r *Repository[T]) FindAll(ctx context.Context) ([]*T, error) {
	if r.err != nil {
		return nil, r.err
	}
	query, args := r.client.clauses.SelectAll(r.table).Query()
	return collect(r.seq(ctx, query, args))
}

// All streams all rows of the table. The query runs when the iteration
// starts; breaking out of the loop releases the rows.
//
//	for u, err := range orm.For[User](client).All(ctx) {
//		if err != nil {
//			return err
//		}
//		fmt.Println(u.Email)
//	}
func (r *Repository[T]) All(ctx context.Context) iter.Seq2[*T, error] {
	if r.err != nil {
		return failed[*T](r.err)
	}
	query, args := r.client.clauses.SelectAll(r.table).Query()
	return r.seq(ctx, query, args)
}

// Select runs a custom query and maps its rows into entities. Columns are
// matched by declared column name, then by field name convention.
func (r *Repository[T]) Select(ctx context.Context, query string, args ...any) ([]*T, error) {
	if r.err != nil {
		return nil, r.err
	}
	if args == nil {
		args = []any{}
	}
	return collect(r.seq(ctx, query, args))
}

// Delete deletes the row of entity, matched by primary key or, without a
// key, by all of its columns. It returns the number of deleted rows, which
// may exceed one for identical keyless rows.
func (r *Repository[T]) Delete(ctx context.Context, entity *T) (int64, error) {
	if err := r.writable(); err != nil {
		return 0, err
	}
	e, err := r.table.Entity(entity)
	if err != nil {
		return 0, err
	}
	q, err := r.client.clauses.DeleteOne(r.table, e)
	if err != nil {
		return 0, err
	}
	return r.client.affected(ctx, q)
}

// DeleteMany deletes the rows of all entities in one statement. entities
// must not be empty.
func (r *Repository[T]) DeleteMany(ctx context.Context, entities []*T) (int64, error) {
	if err := r.writable(); err != nil {
		return 0, err
	}
	values := make([]reflect.Value, len(entities))
	for i, entity := range entities {
		e, err := r.table.Entity(entity)
		if err != nil {
			return 0, err
		}
		values[i] = e
	}
	q, err := r.client.clauses.DeleteBatch(r.table, values)
	if err != nil {
		return 0, err
	}
	return r.client.affected(ctx, q)
}

// DeleteByID deletes the row with the given key.
func (r *Repository[T]) DeleteByID(ctx context.Context, id any) (int64, error) {
	if err := r.writable(); err != nil {
		return 0, err
	}
	k, err := r.table.KeyOf(id)
	if err != nil {
		return 0, err
	}
	return r.client.affected(ctx, r.client.clauses.DeleteByKey(r.table, k))
}

// DeleteAll deletes every row of the table.
func (r *Repository[T]) DeleteAll(ctx context.Context) (int64, error) {
	if err := r.writable(); err != nil {
		return 0, err
	}
	return r.client.affected(ctx, r.client.clauses.DeleteAll(r.table))
}

// IDOf returns the key of entity as accepted by FindByID: the key field
// for a single-column key, a key type value for a composite key, or nil
// for keyless types.
func (r *Repository[T]) IDOf(entity *T) (any, error) {
	if r.err != nil {
		return nil, r.err
	}
	e, err := r.table.Entity(entity)
	if err != nil {
		return nil, err
	}
	return r.table.IDOf(e)
}

func (r *Repository[T]) seq(ctx context.Context, query string, args []any) iter.Seq2[*T, error] {
	m, err := r.client.registry.Mapper(r.table.Type)
	if err != nil {
		return failed[*T](err)
	}
	return rows(ctx, r.client, m, query, args, func(v reflect.Value) *T {
		return v.Addr().Interface().(*T)
	})
}
