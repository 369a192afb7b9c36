package deparse

import (
	"strings"

	pg_query "github.com/pganalyze/pg_query_go/v6"
)

// rangeVar renders a table reference: [catalog.][schema.]relname, with
// "ONLY " prefixed when Inh is explicitly false, and a trailing alias.
func (d *deparser) rangeVar(rv *pg_query.RangeVar) (string, error) {
	if rv == nil {
		return "", nil
	}

	var parts []string
	if rv.Catalogname != "" {
		parts = append(parts, identifier(rv.Catalogname))
	}
	if rv.Schemaname != "" {
		parts = append(parts, identifier(rv.Schemaname))
	}
	parts = append(parts, identifier(rv.Relname))
	name := strings.Join(parts, ".")

	if !rv.Inh {
		name = "ONLY " + name
	}

	alias, err := d.aliasClause(rv.Alias)
	if err != nil {
		return "", err
	}
	if alias != "" {
		name += " " + alias
	}
	return name, nil
}

// aliasClause renders "AS name(col, ...)", omitting AS is not done here
// since the teacher's contract always spells it out explicitly.
func (d *deparser) aliasClause(a *pg_query.Alias) (string, error) {
	if a == nil || a.Aliasname == "" {
		return "", nil
	}
	out := "AS " + identifier(a.Aliasname)
	if len(a.Colnames) > 0 {
		cols, err := d.deparseNodeList(a.Colnames, ctxFuncCall, ", ")
		if err != nil {
			return "", err
		}
		out += "(" + cols + ")"
	}
	return out, nil
}

// joinExpr renders a JOIN, choosing NATURAL / USING / ON qualification and
// rendering an inner join that carries neither as CROSS JOIN.
func (d *deparser) joinExpr(j *pg_query.JoinExpr) (string, error) {
	if j == nil {
		return "", nil
	}

	left, err := d.deparseNode(j.Larg, none)
	if err != nil {
		return "", err
	}
	right, err := d.deparseNode(j.Rarg, none)
	if err != nil {
		return "", err
	}

	if j.IsNatural && j.Jointype == pg_query.JoinType_JOIN_INNER && j.Quals == nil && len(j.UsingClause) == 0 {
		return left + " NATURAL JOIN " + right, nil
	}

	var verb string
	switch j.Jointype {
	case pg_query.JoinType_JOIN_INNER:
		verb = "JOIN"
		if j.Quals == nil && len(j.UsingClause) == 0 {
			verb = "CROSS JOIN"
		}
	case pg_query.JoinType_JOIN_LEFT:
		verb = "LEFT JOIN"
	case pg_query.JoinType_JOIN_RIGHT:
		verb = "RIGHT JOIN"
	case pg_query.JoinType_JOIN_FULL:
		verb = "FULL JOIN"
	default:
		verb = "JOIN"
	}
	if j.IsNatural {
		verb = "NATURAL " + verb
	}

	out := left + " " + verb + " " + right

	switch {
	case len(j.UsingClause) > 0:
		using, err := d.deparseNodeList(j.UsingClause, ctxFuncCall, ", ")
		if err != nil {
			return "", err
		}
		out += " USING (" + using + ")"
	case j.Quals != nil:
		quals, err := d.deparseNode(j.Quals, none)
		if err != nil {
			return "", err
		}
		out += " ON " + quals
	}

	if j.Alias != nil && j.Alias.Aliasname != "" {
		out = parenthesize(out)
		alias, err := d.aliasClause(j.Alias)
		if err != nil {
			return "", err
		}
		out += " " + alias
	}

	return out, nil
}

// rangeSubselect renders a parenthesized derived table with its alias.
func (d *deparser) rangeSubselect(r *pg_query.RangeSubselect) (string, error) {
	if r == nil {
		return "", nil
	}
	sub, err := d.deparseNode(r.Subquery, none)
	if err != nil {
		return "", err
	}
	out := parenthesize(sub)
	if r.Lateral {
		out = "LATERAL " + out
	}
	alias, err := d.aliasClause(r.Alias)
	if err != nil {
		return "", err
	}
	if alias != "" {
		out += " " + alias
	}
	return out, nil
}

// rangeFunction renders a function-as-rowsource FROM item. Only the first
// function of the first element is rendered; a RangeFunction carrying more
// than one function (ROWS FROM) is an UnsupportedNode, and a per-function
// column definition list is not rendered.
func (d *deparser) rangeFunction(r *pg_query.RangeFunction) (string, error) {
	if r == nil {
		return "", nil
	}
	if len(r.Functions) != 1 {
		return "", &UnsupportedNode{Kind: "RangeFunction", Payload: r}
	}

	first := r.Functions[0].GetList()
	if first == nil || len(first.Items) == 0 {
		return "", &UnsupportedNode{Kind: "RangeFunction", Payload: r}
	}

	fn, err := d.deparseNode(first.Items[0], none)
	if err != nil {
		return "", err
	}

	out := fn
	if r.Lateral {
		out = "LATERAL " + out
	}
	if r.Ordinality {
		out += " WITH ORDINALITY"
	}
	alias, err := d.aliasClause(r.Alias)
	if err != nil {
		return "", err
	}
	if alias != "" {
		out += " " + alias
	}
	return out, nil
}

// funcCall renders name(args) with DISTINCT/*, ORDER BY, FILTER and OVER.
func (d *deparser) funcCall(f *pg_query.FuncCall) (string, error) {
	if f == nil {
		return "", nil
	}

	name, err := d.deparseNodeList(f.Funcname, ctxFuncCall, ".")
	if err != nil {
		return "", err
	}

	var args string
	switch {
	case f.AggStar:
		args = "*"
	case f.AggDistinct:
		a, err := d.deparseNodeList(f.Args, none, ", ")
		if err != nil {
			return "", err
		}
		args = "DISTINCT " + a
	default:
		a, err := d.deparseNodeList(f.Args, none, ", ")
		if err != nil {
			return "", err
		}
		args = a
	}

	if f.FuncVariadic && len(f.Args) > 0 {
		parts := strings.Split(args, ", ")
		parts[len(parts)-1] = "VARIADIC " + parts[len(parts)-1]
		args = strings.Join(parts, ", ")
	}

	if len(f.AggOrder) > 0 {
		order, err := d.deparseNodeList(f.AggOrder, none, ", ")
		if err != nil {
			return "", err
		}
		if f.AggWithinGroup {
			args += ") WITHIN GROUP (ORDER BY " + order
		} else {
			args += " ORDER BY " + order
		}
	}

	out := name + "(" + args + ")"

	if f.AggFilter != nil {
		filter, err := d.deparseNode(f.AggFilter, none)
		if err != nil {
			return "", err
		}
		out += " FILTER (WHERE " + filter + ")"
	}

	if f.Over != nil {
		over, err := d.windowDef(f.Over)
		if err != nil {
			return "", err
		}
		out += " " + over
	}

	return out, nil
}

// typeCast renders arg::typename, special-casing a bare string constant
// cast to a type as a typed literal (e.g. DATE '2024-01-01').
func (d *deparser) typeCast(t *pg_query.TypeCast) (string, error) {
	if t == nil {
		return "", nil
	}
	tn, err := d.typeName(t.TypeName)
	if err != nil {
		return "", err
	}

	if c := t.Arg.GetAConst(); c != nil {
		if s, ok := c.Val.(*pg_query.A_Const_Sval); ok && !c.Isnull {
			lit := "'" + strings.ReplaceAll(s.Sval.Sval, "'", "''") + "'"
			return tn + " " + lit, nil
		}
	}

	arg, err := d.deparseNode(t.Arg, ctxPrecedence)
	if err != nil {
		return "", err
	}
	return arg + "::" + tn, nil
}
