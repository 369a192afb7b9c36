package deparse

import (
	"fmt"
	"strings"

	pg_query "github.com/pganalyze/pg_query_go/v6"
)

// nodeKindName returns a short human-readable tag for an unhandled node,
// used only to populate UnsupportedNode.
func nodeKindName(node *pg_query.Node) string {
	if node == nil || node.Node == nil {
		return "nil"
	}
	return fmt.Sprintf("%T", node.Node)
}

// joinNonEmpty joins the non-empty strings in parts with sep.
func joinNonEmpty(parts []string, sep string) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, sep)
}

// parenthesize wraps s in parentheses.
func parenthesize(s string) string {
	return "(" + s + ")"
}

// deparseNodeList renders each node in nodes through deparseNode, dropping
// the comma-joining List semantics in favor of a caller-chosen separator.
func (d *deparser) deparseNodeList(nodes []*pg_query.Node, ctx context, sep string) (string, error) {
	parts := make([]string, 0, len(nodes))
	for _, n := range nodes {
		s, err := d.deparseNode(n, ctx)
		if err != nil {
			return "", err
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, sep), nil
}
