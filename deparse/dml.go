package deparse

import (
	"strings"

	pg_query "github.com/pganalyze/pg_query_go/v6"
)

// insertStmt renders INSERT ... [ON CONFLICT ...] [RETURNING ...].
func (d *deparser) insertStmt(s *pg_query.InsertStmt) (string, error) {
	if s == nil {
		return "", nil
	}

	var parts []string
	if with, err := d.withClause(s.WithClause); err != nil {
		return "", err
	} else if with != "" {
		parts = append(parts, with)
	}

	rel, err := d.rangeVar(s.Relation)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("INSERT INTO " + rel)

	if len(s.Cols) > 0 {
		cols, err := d.insertTargetColumns(s.Cols)
		if err != nil {
			return "", err
		}
		b.WriteString(" (" + cols + ")")
	}

	if s.SelectStmt != nil {
		sel, err := d.deparseNode(s.SelectStmt, none)
		if err != nil {
			return "", err
		}
		b.WriteString(" " + sel)
	} else {
		b.WriteString(" DEFAULT VALUES")
	}

	if s.OnConflictClause != nil {
		oc, err := d.onConflictClause(s.OnConflictClause)
		if err != nil {
			return "", err
		}
		b.WriteString(" " + oc)
	}

	if len(s.ReturningList) > 0 {
		r, err := d.deparseNodeList(s.ReturningList, ctxSelect, ", ")
		if err != nil {
			return "", err
		}
		b.WriteString(" RETURNING " + r)
	}

	parts = append(parts, b.String())
	return strings.Join(parts, " "), nil
}

// insertTargetColumns renders the INSERT target column list; each entry is
// a ResTarget whose Name is the column being assigned.
func (d *deparser) insertTargetColumns(cols []*pg_query.Node) (string, error) {
	parts := make([]string, 0, len(cols))
	for _, c := range cols {
		rt := c.GetResTarget()
		if rt == nil {
			continue
		}
		parts = append(parts, identifier(rt.Name))
	}
	return strings.Join(parts, ", "), nil
}

func (d *deparser) onConflictClause(oc *pg_query.OnConflictClause) (string, error) {
	var b strings.Builder
	b.WriteString("ON CONFLICT")

	if oc.Infer != nil {
		if oc.Infer.Conname != "" {
			b.WriteString(" ON CONSTRAINT " + identifier(oc.Infer.Conname))
		} else if len(oc.Infer.IndexElems) > 0 {
			cols, err := d.deparseNodeList(oc.Infer.IndexElems, none, ", ")
			if err != nil {
				return "", err
			}
			b.WriteString(" (" + cols + ")")
		}
	}

	switch oc.Action {
	case pg_query.OnConflictAction_ONCONFLICT_NOTHING:
		b.WriteString(" DO NOTHING")
	case pg_query.OnConflictAction_ONCONFLICT_UPDATE:
		set, err := d.deparseNodeList(oc.TargetList, ctxExcluded, ", ")
		if err != nil {
			return "", err
		}
		b.WriteString(" DO UPDATE SET " + set)
		if oc.WhereClause != nil {
			where, err := d.deparseNode(oc.WhereClause, ctxExcluded)
			if err != nil {
				return "", err
			}
			b.WriteString(" WHERE " + where)
		}
	}

	return b.String(), nil
}

// updateStmt renders UPDATE ... SET ... [FROM ...] [WHERE ...] [RETURNING ...].
func (d *deparser) updateStmt(s *pg_query.UpdateStmt) (string, error) {
	if s == nil {
		return "", nil
	}

	var parts []string
	if with, err := d.withClause(s.WithClause); err != nil {
		return "", err
	} else if with != "" {
		parts = append(parts, with)
	}

	rel, err := d.rangeVar(s.Relation)
	if err != nil {
		return "", err
	}

	set, err := d.deparseNodeList(s.TargetList, ctxUpdate, ", ")
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("UPDATE " + rel + " SET " + set)

	if len(s.FromClause) > 0 {
		from, err := d.deparseNodeList(s.FromClause, none, ", ")
		if err != nil {
			return "", err
		}
		b.WriteString(" FROM " + from)
	}

	if s.WhereClause != nil {
		where, err := d.deparseNode(s.WhereClause, none)
		if err != nil {
			return "", err
		}
		b.WriteString(" WHERE " + where)
	}

	if len(s.ReturningList) > 0 {
		r, err := d.deparseNodeList(s.ReturningList, ctxSelect, ", ")
		if err != nil {
			return "", err
		}
		b.WriteString(" RETURNING " + r)
	}

	parts = append(parts, b.String())
	return strings.Join(parts, " "), nil
}

// deleteStmt renders DELETE FROM ... [USING ...] [WHERE ...] [RETURNING ...].
func (d *deparser) deleteStmt(s *pg_query.DeleteStmt) (string, error) {
	if s == nil {
		return "", nil
	}

	var parts []string
	if with, err := d.withClause(s.WithClause); err != nil {
		return "", err
	} else if with != "" {
		parts = append(parts, with)
	}

	rel, err := d.rangeVar(s.Relation)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("DELETE FROM " + rel)

	if len(s.UsingClause) > 0 {
		using, err := d.deparseNodeList(s.UsingClause, none, ", ")
		if err != nil {
			return "", err
		}
		b.WriteString(" USING " + using)
	}

	if s.WhereClause != nil {
		where, err := d.deparseNode(s.WhereClause, none)
		if err != nil {
			return "", err
		}
		b.WriteString(" WHERE " + where)
	}

	if len(s.ReturningList) > 0 {
		r, err := d.deparseNodeList(s.ReturningList, ctxSelect, ", ")
		if err != nil {
			return "", err
		}
		b.WriteString(" RETURNING " + r)
	}

	parts = append(parts, b.String())
	return strings.Join(parts, " "), nil
}

// resTarget renders a ResTarget leaf. Under SELECT/RETURNING it formats as
// "val AS name"; under UPDATE/ON CONFLICT DO UPDATE SET it formats as
// "name = val". Under any other context an unnamed ResTarget renders as its
// value alone, and a named one is an UnsupportedResTargetContext error.
func (d *deparser) resTarget(rt *pg_query.ResTarget, ctx context) (string, error) {
	if rt == nil {
		return "", nil
	}

	switch ctx {
	case ctxSelect:
		val, err := d.deparseNode(rt.Val, none)
		if err != nil {
			return "", err
		}
		if rt.Name != "" {
			return val + " AS " + identifier(rt.Name), nil
		}
		return val, nil

	case ctxUpdate, ctxExcluded:
		valCtx := none
		if ctx == ctxExcluded {
			valCtx = ctxExcluded
		}
		val, err := d.deparseNode(rt.Val, valCtx)
		if err != nil {
			return "", err
		}
		return identifier(rt.Name) + " = " + val, nil

	default:
		if rt.Name == "" && rt.Val != nil {
			return d.deparseNode(rt.Val, none)
		}
		return "", &UnsupportedResTargetContext{Context: contextName(ctx)}
	}
}

func contextName(ctx context) string {
	switch ctx {
	case none:
		return "none"
	case ctxSelect:
		return "SELECT"
	case ctxUpdate:
		return "UPDATE"
	case ctxExcluded:
		return "EXCLUDED"
	case ctxAConst:
		return "A_CONST"
	case ctxFuncCall:
		return "FUNC_CALL"
	case ctxTypeName:
		return "TYPE_NAME"
	case ctxOperator:
		return "OPERATOR"
	case ctxDefnameAs:
		return "DEFNAME_AS"
	case ctxPrecedence:
		return "PRECEDENCE"
	default:
		return "unknown"
	}
}
