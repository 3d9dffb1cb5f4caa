package sql

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/keel"
	"github.com/syssam/keel/dialect"
	"github.com/syssam/keel/schema"
)

type user struct {
	ID    int64   `db:"id,pk,autoincr"`
	Name  string  `db:"name"`
	Email *string `db:"email,nullable"`
	Age   int     `db:"age"`
}

func (user) TableName() string { return "users" }

type membershipKey struct {
	User   string `db:"user_id"`
	Tenant int    `db:"tenant_id"`
}

type membership struct {
	Tenant int    `db:"tenant_id,pk"`
	User   string `db:"user_id,pk"`
	Role   string `db:"role"`
}

func (membership) TableName() string { return "memberships" }
func (membership) KeyType() any      { return membershipKey{} }

type event struct {
	Kind    string  `db:"kind"`
	Payload *string `db:"payload,nullable"`
}

func (event) TableName() string { return "events" }

type account struct {
	ID     int64   `db:"id,pk"`
	Code   *string `db:"code"`
	Secret *string `db:"secret,nodefault"`
}

func (account) TableName() string { return "accounts" }

type slot struct {
	Day  *int   `db:"day,pk"`
	Room string `db:"room"`
}

func (slot) TableName() string { return "slots" }

type pair struct {
	A int `db:"a,pk"`
	B int `db:"b,pk"`
}

func (pair) TableName() string { return "pairs" }

func table[T any](t *testing.T) *schema.TableInfo {
	t.Helper()
	info, err := schema.Extract(reflect.TypeFor[T]())
	require.NoError(t, err)
	return info
}

func values[T any](vs ...T) []reflect.Value {
	rvs := make([]reflect.Value, len(vs))
	for i := range vs {
		rvs[i] = reflect.ValueOf(&vs[i]).Elem()
	}
	return rvs
}

func strp(s string) *string { return &s }

func TestClausesKeyLookup(t *testing.T) {
	c := NewClauses(syntax(t, dialect.SQLite))
	info := table[membership](t)

	k, err := info.KeyOf(membershipKey{User: "u1", Tenant: 7})
	require.NoError(t, err)
	query, args := c.SelectByKey(info, k).Query()
	assert.Equal(t, `SELECT "tenant_id", "user_id", "role" FROM "memberships" WHERE "tenant_id" = ? AND "user_id" = ?`, query)
	assert.Equal(t, []any{7, "u1"}, args)

	query, args = c.CountByKey(info, k).Query()
	assert.Equal(t, `SELECT COUNT(*) FROM "memberships" WHERE "tenant_id" = ? AND "user_id" = ?`, query)
	assert.Equal(t, []any{7, "u1"}, args)

	query, args = c.DeleteByKey(info, k).Query()
	assert.Equal(t, `DELETE FROM "memberships" WHERE "tenant_id" = ? AND "user_id" = ?`, query)
	assert.Equal(t, []any{7, "u1"}, args)
}

func TestClausesCountEntity(t *testing.T) {
	c := NewClauses(syntax(t, dialect.SQLite))

	q, err := c.CountEntity(table[membership](t), values(membership{Tenant: 7, User: "u1"})[0])
	require.NoError(t, err)
	query, args := q.Query()
	assert.Equal(t, `SELECT COUNT(*) FROM "memberships" WHERE "tenant_id" = ? AND "user_id" = ?`, query)
	assert.Equal(t, []any{7, "u1"}, args)

	// Same WHERE as the UPDATE that follows an existing key.
	q, err = c.CountEntity(table[slot](t), values(slot{Room: "A"})[0])
	require.NoError(t, err)
	query, args = q.Query()
	assert.Equal(t, `SELECT COUNT(*) FROM "slots" WHERE "day" IS NULL`, query)
	assert.Empty(t, args)

	_, err = c.CountEntity(table[event](t), values(event{Kind: "click"})[0])
	assert.True(t, keel.IsConfigurationError(err))
}

func TestClausesSelectAll(t *testing.T) {
	c := NewClauses(syntax(t, dialect.MySQL))
	info := table[user](t)
	query, args := c.SelectAll(info).Query()
	assert.Equal(t, "SELECT `id`, `name`, `email`, `age` FROM `users`", query)
	assert.Empty(t, args)

	query, _ = c.Count(info).Query()
	assert.Equal(t, "SELECT COUNT(*) FROM `users`", query)
	query, _ = c.DeleteAll(info).Query()
	assert.Equal(t, "DELETE FROM `users`", query)
}

func TestClausesDeleteOne(t *testing.T) {
	c := NewClauses(syntax(t, dialect.Postgres))

	t.Run("Key", func(t *testing.T) {
		q, err := c.DeleteOne(table[user](t), values(user{ID: 5, Name: "a8m"})[0])
		require.NoError(t, err)
		query, args := q.Query()
		assert.Equal(t, `DELETE FROM "users" WHERE "id" = $1`, query)
		assert.Equal(t, []any{int64(5)}, args)
	})

	t.Run("WholeRow", func(t *testing.T) {
		q, err := c.DeleteOne(table[event](t), values(event{Kind: "click"})[0])
		require.NoError(t, err)
		query, args := q.Query()
		assert.Equal(t, `DELETE FROM "events" WHERE "kind" = $1 AND "payload" IS NULL`, query)
		assert.Equal(t, []any{"click"}, args)
	})
}

func TestClausesDeleteBatch(t *testing.T) {
	c := NewClauses(syntax(t, dialect.SQLite))

	t.Run("SingleKey", func(t *testing.T) {
		q, err := c.DeleteBatch(table[user](t), values(user{ID: 3}, user{ID: 1}, user{ID: 2}))
		require.NoError(t, err)
		query, args := q.Query()
		assert.Equal(t, `DELETE FROM "users" WHERE "id" IN (?, ?, ?)`, query)
		assert.Equal(t, []any{int64(3), int64(1), int64(2)}, args)
	})

	t.Run("CompositeKey", func(t *testing.T) {
		q, err := c.DeleteBatch(table[membership](t), values(
			membership{Tenant: 1, User: "a", Role: "admin"},
			membership{Tenant: 2, User: "b", Role: "user"},
		))
		require.NoError(t, err)
		query, args := q.Query()
		assert.Equal(t, `DELETE FROM "memberships" WHERE ("tenant_id" = ? AND "user_id" = ?) OR ("tenant_id" = ? AND "user_id" = ?)`, query)
		assert.Equal(t, []any{1, "a", 2, "b"}, args)
	})

	t.Run("NoKey", func(t *testing.T) {
		info := table[event](t)
		q, err := c.DeleteBatch(info, values(
			event{Kind: "click", Payload: strp("a")},
			event{Kind: "view", Payload: strp("b")},
			event{Kind: "scroll"},
		))
		require.NoError(t, err)
		query, args := q.Query()
		assert.Equal(t, `DELETE FROM "events" WHERE ("kind" = ? AND "payload" = ?) OR ("kind" = ? AND "payload" = ?) OR ("kind" = ? AND "payload" IS NULL)`, query)
		assert.Equal(t, []any{"click", "a", "view", "b", "scroll"}, args)
		assert.Len(t, args, 3*len(info.Columns())-1, "a null column matches with IS NULL and binds nothing")
	})

	t.Run("Empty", func(t *testing.T) {
		_, err := c.DeleteBatch(table[user](t), nil)
		require.Error(t, err)
		assert.True(t, keel.IsArgumentError(err))
	})
}

func TestClausesInsert(t *testing.T) {
	t.Run("Returning", func(t *testing.T) {
		c := NewClauses(syntax(t, dialect.Postgres))
		q, err := c.Insert(table[user](t), values(user{Name: "a8m"})[0], true)
		require.NoError(t, err)
		query, args := q.Query()
		assert.Equal(t, `INSERT INTO "users" ("name", "email", "age") VALUES ($1, $2, $3) RETURNING "id"`, query)
		assert.Equal(t, []any{"a8m", TypedNull{Type: reflect.TypeFor[*string]()}, 0}, args)
	})

	t.Run("LastInsertID", func(t *testing.T) {
		c := NewClauses(syntax(t, dialect.MySQL))
		q, err := c.Insert(table[user](t), values(user{Name: "a8m", Email: strp("a8m@example.com"), Age: 30})[0], true)
		require.NoError(t, err)
		query, args := q.Query()
		assert.Equal(t, "INSERT INTO `users` (`name`, `email`, `age`) VALUES (?, ?, ?)", query)
		assert.Equal(t, []any{"a8m", "a8m@example.com", 30}, args)
	})

	t.Run("ExplicitKey", func(t *testing.T) {
		c := NewClauses(syntax(t, dialect.SQLite))
		q, err := c.Insert(table[user](t), values(user{ID: 9, Name: "a8m"})[0], false)
		require.NoError(t, err)
		query, args := q.Query()
		assert.Equal(t, `INSERT INTO "users" ("id", "name", "email", "age") VALUES (?, ?, ?, ?)`, query)
		assert.Equal(t, int64(9), args[0])
	})

	t.Run("DefaultOmitted", func(t *testing.T) {
		c := NewClauses(syntax(t, dialect.SQLite))
		q, err := c.Insert(table[account](t), values(account{ID: 1, Secret: strp("s")})[0], false)
		require.NoError(t, err)
		query, args := q.Query()
		assert.Equal(t, `INSERT INTO "accounts" ("id", "secret") VALUES (?, ?)`, query)
		assert.Equal(t, []any{int64(1), "s"}, args)
	})

	t.Run("NoDefault", func(t *testing.T) {
		c := NewClauses(syntax(t, dialect.SQLite))
		_, err := c.Insert(table[account](t), values(account{ID: 1})[0], false)
		require.Error(t, err)
		assert.True(t, keel.IsConstraintError(err))
		assert.Contains(t, err.Error(), "secret")
	})
}

func TestClausesUpdate(t *testing.T) {
	c := NewClauses(syntax(t, dialect.Postgres))

	t.Run("Key", func(t *testing.T) {
		q, ok, err := c.Update(table[user](t), values(user{ID: 1, Name: "a8m", Age: 30})[0])
		require.NoError(t, err)
		require.True(t, ok)
		query, args := q.Query()
		assert.Equal(t, `UPDATE "users" SET "name" = $1, "email" = $2, "age" = $3 WHERE "id" = $4`, query)
		assert.Equal(t, []any{"a8m", TypedNull{Type: reflect.TypeFor[*string]()}, 30, int64(1)}, args)
	})

	t.Run("NullKey", func(t *testing.T) {
		q, ok, err := c.Update(table[slot](t), values(slot{Room: "A"})[0])
		require.NoError(t, err)
		require.True(t, ok)
		query, args := q.Query()
		assert.Equal(t, `UPDATE "slots" SET "room" = $1 WHERE "day" IS NULL`, query)
		assert.Equal(t, []any{"A"}, args)
	})

	t.Run("KeyOnly", func(t *testing.T) {
		_, ok, err := c.Update(table[pair](t), values(pair{A: 1, B: 2})[0])
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("NoKey", func(t *testing.T) {
		_, _, err := c.Update(table[event](t), values(event{Kind: "click"})[0])
		require.Error(t, err)
		assert.True(t, keel.IsConfigurationError(err))
	})
}

func TestClausesQuoting(t *testing.T) {
	info := table[user](t)
	k, err := info.KeyOf(int64(1))
	require.NoError(t, err)
	for name, want := range map[string]string{
		dialect.MySQL:     "DELETE FROM `users` WHERE `id` = ?",
		dialect.Postgres:  `DELETE FROM "users" WHERE "id" = $1`,
		dialect.SQLite:    `DELETE FROM "users" WHERE "id" = ?`,
		dialect.SQLServer: "DELETE FROM [users] WHERE [id] = @p1",
		dialect.H2:        `DELETE FROM "users" WHERE "id" = ?`,
	} {
		query, _ := NewClauses(syntax(t, name)).DeleteByKey(info, k).Query()
		assert.Equal(t, want, query, name)
	}
}
