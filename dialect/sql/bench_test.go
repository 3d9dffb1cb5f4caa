package sql

import (
	"testing"

	"github.com/syssam/keel/dialect"
)

func benchSyntaxes(b *testing.B) []dialect.Syntax {
	var ss []dialect.Syntax
	for _, name := range []string{dialect.SQLite, dialect.MySQL, dialect.Postgres, dialect.SQLServer} {
		s, err := dialect.Lookup(name)
		if err != nil {
			b.Fatal(err)
		}
		ss = append(ss, s)
	}
	return ss
}

func BenchmarkInsertBuilder_Default(b *testing.B) {
	for _, s := range benchSyntaxes(b) {
		b.Run(s.Name, func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				Dialect(s).Insert("users").Returning("id").Query()
			}
		})
	}
}

func BenchmarkInsertBuilder_Small(b *testing.B) {
	for _, s := range benchSyntaxes(b) {
		b.Run(s.Name, func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				Dialect(s).Insert("users").
					Set("age", 30).
					Set("first_name", "Ariel").
					Set("last_name", "Mashraki").
					Set("nickname", "a8m").
					Set("created_at", "2009-11-10 23:00:00").
					Returning("id").
					Query()
			}
		})
	}
}

func BenchmarkSelectBuilder_Simple(b *testing.B) {
	for _, s := range benchSyntaxes(b) {
		b.Run(s.Name, func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				Dialect(s).Select("id", "name", "email").From("users").Query()
			}
		})
	}
}

func BenchmarkUpdateBuilder_Simple(b *testing.B) {
	for _, s := range benchSyntaxes(b) {
		b.Run(s.Name, func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				Dialect(s).Update("users").
					Set("name", "a8m").
					Set("email", nil).
					Where(And(EQ("tenant", 1), IsNull("id"))).
					Query()
			}
		})
	}
}

func BenchmarkDeleteBuilder_Batch(b *testing.B) {
	for _, s := range benchSyntaxes(b) {
		b.Run(s.Name, func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				Dialect(s).Delete("users").
					Where(Or(
						And(EQ("tenant", 1), EQ("id", 1)),
						And(EQ("tenant", 1), EQ("id", 2)),
						And(EQ("tenant", 2), EQ("id", 1)),
					)).
					Query()
			}
		})
	}
}
