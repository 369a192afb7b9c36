package deparse

import (
	"strings"

	pg_query "github.com/pganalyze/pg_query_go/v6"
)

// aConst renders a constant literal. The wrapped value carries its own kind
// (String_/Integer/Float/Boolval/BitString); a string value is wrapped in
// single quotes with embedded single quotes doubled.
func (d *deparser) aConst(c *pg_query.A_Const) (string, error) {
	if c == nil {
		return "", nil
	}
	if c.Isnull {
		return "NULL", nil
	}
	switch v := c.Val.(type) {
	case *pg_query.A_Const_Ival:
		return formatInteger(v.Ival.Ival), nil
	case *pg_query.A_Const_Fval:
		return v.Fval.Fval, nil
	case *pg_query.A_Const_Boolval:
		if v.Boolval.Boolval {
			return "true", nil
		}
		return "false", nil
	case *pg_query.A_Const_Sval:
		return "'" + strings.ReplaceAll(v.Sval.Sval, "'", "''") + "'", nil
	case *pg_query.A_Const_Bsval:
		return "B'" + v.Bsval.Bsval + "'", nil
	}
	return "", nil
}

// stringLeaf renders a bare String_ node, whose meaning depends entirely
// on the context it's rendered under.
func (d *deparser) stringLeaf(s *pg_query.String, ctx context) (string, error) {
	if s == nil {
		return "", nil
	}
	switch ctx {
	case ctxAConst:
		return "'" + strings.ReplaceAll(s.Sval, "'", "''") + "'", nil
	case ctxOperator:
		return s.Sval, nil
	case ctxFuncCall, ctxTypeName, ctxDefnameAs:
		return quoteIdentifier(s.Sval, false), nil
	case ctxExcluded:
		if strings.EqualFold(s.Sval, "excluded") {
			return "EXCLUDED", nil
		}
		return identifier(s.Sval), nil
	default:
		return identifier(s.Sval), nil
	}
}

// columnRef renders a (possibly qualified, possibly star-suffixed) column
// reference. Fields render as plain identifiers except under the EXCLUDED
// context, which is the only context that alters how a ColumnRef's parts
// are quoted (so "excluded.col" survives as EXCLUDED."col").
func (d *deparser) columnRef(cr *pg_query.ColumnRef, ctx context) (string, error) {
	if cr == nil {
		return "", nil
	}
	fieldCtx := none
	if ctx == ctxExcluded {
		fieldCtx = ctxExcluded
	}
	parts := make([]string, 0, len(cr.Fields))
	for _, f := range cr.Fields {
		if f.GetAStar() != nil {
			parts = append(parts, "*")
			continue
		}
		s, err := d.deparseNode(f, fieldCtx)
		if err != nil {
			return "", err
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, "."), nil
}

// paramRef renders a positional parameter placeholder ($1, $2, ...).
func (d *deparser) paramRef(p *pg_query.ParamRef) (string, error) {
	if p == nil {
		return "", nil
	}
	return "$" + formatInteger(p.Number), nil
}
