package deparse

import (
	"strings"

	pg_query "github.com/pganalyze/pg_query_go/v6"
)

// selectStmt renders a SELECT, handling the set-operation branches first
// and returning immediately rather than falling through into the leaf
// SELECT body builder below.
func (d *deparser) selectStmt(s *pg_query.SelectStmt) (string, error) {
	if s == nil {
		return "", nil
	}

	if s.Op != pg_query.SetOperation_SETOP_NONE {
		return d.setOpSelect(s)
	}

	var parts []string

	if with, err := d.withClause(s.WithClause); err != nil {
		return "", err
	} else if with != "" {
		parts = append(parts, with)
	}

	var sel strings.Builder
	// A bare VALUES list carries no target list and renders without SELECT.
	if len(s.TargetList) > 0 || len(s.ValuesLists) == 0 {
		sel.WriteString("SELECT")
	}

	if len(s.DistinctClause) > 0 {
		if len(s.DistinctClause) == 1 && s.DistinctClause[0].Node == nil {
			sel.WriteString(" DISTINCT")
		} else {
			on, err := d.deparseNodeList(s.DistinctClause, none, ", ")
			if err != nil {
				return "", err
			}
			sel.WriteString(" DISTINCT ON (" + on + ")")
		}
	}

	targets, err := d.deparseNodeList(s.TargetList, ctxSelect, ", ")
	if err != nil {
		return "", err
	}
	if targets != "" {
		sel.WriteString(" " + targets)
	}

	if s.IntoClause != nil && s.IntoClause.Rel != nil {
		into, err := d.rangeVar(s.IntoClause.Rel)
		if err != nil {
			return "", err
		}
		sel.WriteString(" INTO " + into)
	}

	if len(s.FromClause) > 0 {
		from, err := d.deparseNodeList(s.FromClause, none, ", ")
		if err != nil {
			return "", err
		}
		sel.WriteString(" FROM " + from)
	}

	if s.WhereClause != nil {
		where, err := d.deparseNode(s.WhereClause, none)
		if err != nil {
			return "", err
		}
		sel.WriteString(" WHERE " + where)
	}

	if len(s.ValuesLists) > 0 {
		rows := make([]string, 0, len(s.ValuesLists))
		for _, row := range s.ValuesLists {
			r, err := d.deparseNode(row, none)
			if err != nil {
				return "", err
			}
			rows = append(rows, parenthesize(r))
		}
		sel.WriteString(" VALUES " + strings.Join(rows, ", "))
	}

	if len(s.GroupClause) > 0 {
		g, err := d.deparseNodeList(s.GroupClause, none, ", ")
		if err != nil {
			return "", err
		}
		sel.WriteString(" GROUP BY " + g)
	}

	if s.HavingClause != nil {
		h, err := d.deparseNode(s.HavingClause, none)
		if err != nil {
			return "", err
		}
		sel.WriteString(" HAVING " + h)
	}

	if len(s.SortClause) > 0 {
		sc, err := d.deparseNodeList(s.SortClause, none, ", ")
		if err != nil {
			return "", err
		}
		sel.WriteString(" ORDER BY " + sc)
	}

	if s.LimitCount != nil {
		lc, err := d.deparseNode(s.LimitCount, none)
		if err != nil {
			return "", err
		}
		sel.WriteString(" LIMIT " + lc)
	}

	if s.LimitOffset != nil {
		lo, err := d.deparseNode(s.LimitOffset, none)
		if err != nil {
			return "", err
		}
		sel.WriteString(" OFFSET " + lo)
	}

	for _, lc := range s.LockingClause {
		s, err := d.deparseNode(lc, none)
		if err != nil {
			return "", err
		}
		sel.WriteString(" " + s)
	}

	parts = append(parts, strings.TrimPrefix(sel.String(), " "))
	return strings.Join(parts, " "), nil
}

// setOpSelect renders UNION/INTERSECT/EXCEPT, parenthesizing an operand
// that carries its own ORDER BY so the combination parses unambiguously.
func (d *deparser) setOpSelect(s *pg_query.SelectStmt) (string, error) {
	left, err := d.setOpOperand(s.Larg)
	if err != nil {
		return "", err
	}
	right, err := d.setOpOperand(s.Rarg)
	if err != nil {
		return "", err
	}

	var verb string
	switch s.Op {
	case pg_query.SetOperation_SETOP_UNION:
		verb = "UNION"
	case pg_query.SetOperation_SETOP_INTERSECT:
		verb = "INTERSECT"
	case pg_query.SetOperation_SETOP_EXCEPT:
		verb = "EXCEPT"
	}
	if s.All {
		verb += " ALL"
	}

	return left + " " + verb + " " + right, nil
}

func (d *deparser) setOpOperand(s *pg_query.SelectStmt) (string, error) {
	if s == nil {
		return "", nil
	}
	rendered, err := d.selectStmt(s)
	if err != nil {
		return "", err
	}
	if len(s.SortClause) > 0 {
		return parenthesize(rendered), nil
	}
	return rendered, nil
}

// withClause renders a WITH [RECURSIVE] prefix, or "" when absent.
func (d *deparser) withClause(w *pg_query.WithClause) (string, error) {
	if w == nil || len(w.Ctes) == 0 {
		return "", nil
	}
	ctes := make([]string, 0, len(w.Ctes))
	for _, c := range w.Ctes {
		cte := c.GetCommonTableExpr()
		if cte == nil {
			continue
		}
		query, err := d.deparseNode(cte.Ctequery, none)
		if err != nil {
			return "", err
		}
		ctes = append(ctes, identifier(cte.Ctename)+" AS ("+query+")")
	}
	prefix := "WITH "
	if w.Recursive {
		prefix = "WITH RECURSIVE "
	}
	return prefix + strings.Join(ctes, ", "), nil
}

// sortBy renders one ORDER BY entry.
func (d *deparser) sortBy(s *pg_query.SortBy) (string, error) {
	if s == nil {
		return "", nil
	}
	node, err := d.deparseNode(s.Node, none)
	if err != nil {
		return "", err
	}
	switch s.SortbyDir {
	case pg_query.SortByDir_SORTBY_ASC:
		node += " ASC"
	case pg_query.SortByDir_SORTBY_DESC:
		node += " DESC"
	}
	switch s.SortbyNulls {
	case pg_query.SortByNulls_SORTBY_NULLS_FIRST:
		node += " NULLS FIRST"
	case pg_query.SortByNulls_SORTBY_NULLS_LAST:
		node += " NULLS LAST"
	}
	return node, nil
}

// windowDef renders an OVER (...) window specification body.
func (d *deparser) windowDef(w *pg_query.WindowDef) (string, error) {
	if w == nil {
		return "OVER ()", nil
	}

	var parts []string
	if w.Name != "" {
		return "OVER " + identifier(w.Name), nil
	}
	if len(w.PartitionClause) > 0 {
		p, err := d.deparseNodeList(w.PartitionClause, none, ", ")
		if err != nil {
			return "", err
		}
		parts = append(parts, "PARTITION BY "+p)
	}
	if len(w.OrderClause) > 0 {
		o, err := d.deparseNodeList(w.OrderClause, none, ", ")
		if err != nil {
			return "", err
		}
		parts = append(parts, "ORDER BY "+o)
	}
	if frame, err := d.frameClause(w); err != nil {
		return "", err
	} else if frame != "" {
		parts = append(parts, frame)
	}
	return "OVER (" + strings.Join(parts, " ") + ")", nil
}

// lockingClause renders FOR UPDATE/SHARE/... row-locking clauses.
func (d *deparser) lockingClause(lc *pg_query.LockingClause) (string, error) {
	if lc == nil {
		return "", nil
	}
	switch lc.Strength {
	case pg_query.LockClauseStrength_LCS_FORKEYSHARE:
		return "FOR KEY SHARE", nil
	case pg_query.LockClauseStrength_LCS_FORSHARE:
		return "FOR SHARE", nil
	case pg_query.LockClauseStrength_LCS_FORNOKEYUPDATE:
		return "FOR NO KEY UPDATE", nil
	case pg_query.LockClauseStrength_LCS_FORUPDATE:
		return "FOR UPDATE", nil
	}
	return "", nil
}
