package schema

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/go-openapi/inflect"
)

// rules converts Go field names to snake_case column names, keeping common
// acronyms intact (UserID -> user_id).
var rules = func() *inflect.Ruleset {
	r := inflect.NewDefaultRuleset()
	for _, w := range []string{"ID", "URL", "API", "HTTP", "JSON", "SQL"} {
		r.AddAcronym(w)
	}
	return r
}()

// ColumnName returns the default column name of a Go field.
func ColumnName(field string) string {
	return rules.Underscore(field)
}

// LowerCamel converts a column label to lowerCamelCase. The characters
// '_', '-', '@', '$', '#', ' ', '/' and '&' separate words; leading
// separators are dropped.
func LowerCamel(s string) string {
	var (
		b     strings.Builder
		upper bool
	)
	b.Grow(len(s))
	for _, r := range s {
		switch r {
		case '_', '-', '@', '$', '#', ' ', '/', '&':
			if b.Len() > 0 {
				upper = true
			}
			continue
		}
		if upper {
			b.WriteRune(unicode.ToUpper(r))
			upper = false
		} else {
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}

// UpperFirst upper-cases the first letter of s.
func UpperFirst(s string) string {
	r, n := utf8.DecodeRuneInString(s)
	if n == 0 {
		return s
	}
	return string(unicode.ToUpper(r)) + s[n:]
}
