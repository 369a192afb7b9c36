package deparse

import (
	"strings"

	"github.com/xiaohui-zhangxh/pg_query_go/catalog"
)

// needsQuoting reports whether name must be rendered as a double-quoted
// identifier: the caller forces it, it contains a character other than a
// lowercase letter/digit/underscore (or doesn't start with one), or its
// lower-cased form is a reserved keyword.
func needsQuoting(name string, escapeAlways bool) bool {
	if escapeAlways {
		return true
	}
	if name == "" {
		return false
	}
	if catalog.IsReservedWord(name) {
		return true
	}
	first := name[0]
	if (first < 'a' || first > 'z') && first != '_' {
		return true
	}
	for i := 1; i < len(name); i++ {
		c := name[i]
		if (c < 'a' || c > 'z') && (c < '0' || c > '9') && c != '_' {
			return true
		}
	}
	return false
}

// quoteIdentifier double-quotes name (doubling any embedded quote) when
// needsQuoting requires it.
func quoteIdentifier(name string, escapeAlways bool) string {
	if !needsQuoting(name, escapeAlways) {
		return name
	}
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// identifier renders name the way every default (non-special-context)
// identifier-shaped leaf in this deparser renders: always double-quoted.
func identifier(name string) string {
	return quoteIdentifier(name, true)
}
