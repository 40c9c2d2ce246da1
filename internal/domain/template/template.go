package template

import (
	"fmt"
	"strings"
)

// Placeholder is the single substitution point a load query must contain.
// It is replaced with an ISO calendar date on every iteration of a run.
const Placeholder = "{date}"

// Statements that alter or destroy schema are refused up front. The loader
// exists to insert rows, so INSERT itself stays allowed.
var forbidden = []string{"DROP", "TRUNCATE", "ALTER", "GRANT"}

// Template is a validated date-parameterized SQL statement.
type Template struct {
	sql string
}

// New validates the statement and wraps it. The statement must contain the
// date placeholder exactly once and none of the forbidden keywords.
func New(sql string) (Template, error) {
	trimmed := strings.TrimSpace(sql)
	if trimmed == "" {
		return Template{}, fmt.Errorf("query template is empty")
	}

	switch n := strings.Count(trimmed, Placeholder); {
	case n == 0:
		return Template{}, fmt.Errorf("query template must contain the %s placeholder", Placeholder)
	case n > 1:
		return Template{}, fmt.Errorf("query template must contain exactly one %s placeholder, found %d", Placeholder, n)
	}

	upper := strings.ToUpper(trimmed)
	for _, f := range forbidden {
		if containsKeyword(upper, f) {
			return Template{}, fmt.Errorf("forbidden operation: %s", f)
		}
	}

	return Template{sql: trimmed}, nil
}

// Render substitutes the formatted date into the template.
func (t Template) Render(date string) string {
	return strings.Replace(t.sql, Placeholder, date, 1)
}

// SQL returns the raw template text.
func (t Template) SQL() string {
	return t.sql
}

// containsKeyword reports whether the keyword occurs as a whole word, so
// that column names like "dropped_at" do not trip the guard.
func containsKeyword(upper, kw string) bool {
	for i := 0; ; {
		j := strings.Index(upper[i:], kw)
		if j < 0 {
			return false
		}
		j += i
		before := j == 0 || !isWordByte(upper[j-1])
		afterIdx := j + len(kw)
		after := afterIdx == len(upper) || !isWordByte(upper[afterIdx])
		if before && after {
			return true
		}
		i = j + len(kw)
	}
}

func isWordByte(b byte) bool {
	return b == '_' || (b >= '0' && b <= '9') || (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z')
}
