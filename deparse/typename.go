package deparse

import (
	"strconv"
	"strings"

	pg_query "github.com/pganalyze/pg_query_go/v6"

	"github.com/xiaohui-zhangxh/pg_query_go/catalog"
)

// typeName renders a TypeName node: pg_catalog builtins are canonicalized
// (interval gets its own bitmask decode), anything else is the dotted
// name list plus any typmods and array suffix.
func (d *deparser) typeName(tn *pg_query.TypeName) (string, error) {
	if tn == nil {
		return "", nil
	}

	names := stringListValues(tn.Names)
	catalogName, bare := splitCatalogName(names)

	var rendered string
	if catalogName == "pg_catalog" {
		if bare == "interval" {
			s, err := d.intervalTypeName(tn)
			if err != nil {
				return "", err
			}
			rendered = s
		} else {
			builtin, ok := catalog.BuiltinTypeName(bare)
			if !ok {
				return "", &UnsupportedType{Name: bare}
			}
			rendered = builtin.Canonical
			if builtin.ParenthesizeTypmods && len(tn.Typmods) > 0 {
				rendered += "(" + d.typmodArgs(tn.Typmods) + ")"
			}
		}
	} else {
		parts := make([]string, len(names))
		for i, n := range names {
			parts[i] = n
		}
		rendered = strings.Join(parts, ".")
		if len(tn.Typmods) > 0 {
			rendered += "(" + d.typmodArgs(tn.Typmods) + ")"
		}
	}

	for range tn.ArrayBounds {
		rendered += "[]"
	}

	if tn.Setof {
		rendered = "SETOF " + rendered
	}

	return rendered, nil
}

// typmodArgs renders a TypeName's typmod list as comma-separated literals
// (e.g. precision/scale for numeric, length for varchar).
func (d *deparser) typmodArgs(typmods []*pg_query.Node) string {
	parts := make([]string, 0, len(typmods))
	for _, t := range typmods {
		s, err := d.deparseNode(t, ctxTypeName)
		if err != nil {
			continue
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, ", ")
}

// intervalTypeName decodes the interval qualifier bitmask carried in the
// first typmod. A -1 (or missing) typmod means "unconstrained interval".
func (d *deparser) intervalTypeName(tn *pg_query.TypeName) (string, error) {
	if len(tn.Typmods) == 0 {
		return "interval", nil
	}

	mask, ok := constIntValue(tn.Typmods[0])
	if !ok || mask == -1 {
		return "interval", nil
	}

	decoded, ok := catalog.DecodeIntervalMask(mask)
	if !ok {
		return "", &UnsupportedType{Name: "interval"}
	}

	if len(tn.Typmods) > 1 && strings.HasSuffix(decoded, "second") {
		if precision, ok := constIntValue(tn.Typmods[1]); ok {
			decoded = strings.TrimSuffix(decoded, "second") + "second(" + strconv.FormatInt(int64(precision), 10) + ")"
		}
	}

	return "interval " + decoded, nil
}

// constIntValue extracts the integer value out of an A_Const wrapping an
// Integer node, which is how typmods arrive in the AST.
func constIntValue(n *pg_query.Node) (int32, bool) {
	ac := n.GetAConst()
	if ac == nil {
		return 0, false
	}
	if iv := ac.GetIval(); iv != nil {
		return iv.Ival, true
	}
	return 0, false
}

// stringListValues converts a []*pg_query.Node of String_ nodes into plain
// strings, skipping anything that isn't a String_.
func stringListValues(nodes []*pg_query.Node) []string {
	out := make([]string, 0, len(nodes))
	for _, n := range nodes {
		if s := n.GetString_(); s != nil {
			out = append(out, s.Sval)
		}
	}
	return out
}

// splitCatalogName returns ("pg_catalog", "int4") for a two-part
// pg_catalog-qualified name, ("", name) for a one-part name, and ("", "")
// for any other shape.
func splitCatalogName(names []string) (catalogName, bare string) {
	if len(names) == 2 && names[0] == "pg_catalog" {
		return names[0], names[1]
	}
	if len(names) == 1 {
		return "", names[0]
	}
	return "", ""
}
