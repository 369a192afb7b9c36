package reference

import (
	"strings"

	pg_query "github.com/pganalyze/pg_query_go/v6"
)

// fromItem is a candidate relation reference carrying the reference Type
// it should be classified as once resolved down to a RangeVar.
type fromItem struct {
	node *pg_query.Node
	typ  Type
}

// extractor holds the three FIFO work queues the walk alternates between,
// plus the accumulators the final result is built from.
type extractor struct {
	statements     []*pg_query.Node
	subselectItems []*pg_query.Node
	fromItems      []fromItem

	tables      []Table
	seenTables  map[string]bool
	aliases     map[string]string
	cteNames    []string
	seenCTEs    map[string]bool
}

// Extract walks a parsed AST (a sequence of RawStmt roots, as produced by
// pg_query_go's Parse) and reports every table it references, classified
// by read/mutate/structural usage, plus CTE names and table aliases. It
// never fails: unknown node kinds and missing optional fields are simply
// skipped.
func Extract(stmts []*pg_query.RawStmt) *Result {
	e := &extractor{
		seenTables: make(map[string]bool),
		aliases:    make(map[string]string),
		seenCTEs:   make(map[string]bool),
	}

	for _, rs := range stmts {
		if rs != nil && rs.Stmt != nil {
			e.statements = append(e.statements, rs.Stmt)
		}
	}

	e.run()

	return &Result{
		Tables:   e.tables,
		Aliases:  e.aliases,
		CTENames: e.cteNames,
	}
}

// run alternates popping from the statement queue and the subselect-item
// queue until both are empty, then drains the from-clause-item queue.
func (e *extractor) run() {
	for len(e.statements) > 0 || len(e.subselectItems) > 0 {
		if len(e.statements) > 0 {
			node := e.statements[0]
			e.statements = e.statements[1:]
			e.dispatchStatement(node)
		}
		if len(e.subselectItems) > 0 {
			node := e.subselectItems[0]
			e.subselectItems = e.subselectItems[1:]
			e.dispatchExpression(node)
		}
	}

	e.drainFromItems()
}

func (e *extractor) pushStatement(n *pg_query.Node) {
	if n != nil {
		e.statements = append(e.statements, n)
	}
}

func (e *extractor) pushSubselect(n *pg_query.Node) {
	if n != nil {
		e.subselectItems = append(e.subselectItems, n)
	}
}

func (e *extractor) pushFromItem(n *pg_query.Node, typ Type) {
	if n != nil {
		e.fromItems = append(e.fromItems, fromItem{node: n, typ: typ})
	}
}

func (e *extractor) pushRangeVar(rv *pg_query.RangeVar, typ Type) {
	if rv == nil {
		return
	}
	e.pushFromItem(&pg_query.Node{Node: &pg_query.Node_RangeVar{RangeVar: rv}}, typ)
}

// dispatchStatement implements §4.1 step 1 (statement dispatch) and step 2
// (harvesting expression sources from the same payload) for one popped
// statement node.
func (e *extractor) dispatchStatement(node *pg_query.Node) {
	if node == nil {
		return
	}

	switch n := node.Node.(type) {
	case *pg_query.Node_RawStmt:
		if n.RawStmt != nil {
			e.pushStatement(n.RawStmt.Stmt)
		}

	case *pg_query.Node_SelectStmt:
		e.dispatchSelect(n.SelectStmt)

	case *pg_query.Node_InsertStmt:
		stmt := n.InsertStmt
		if stmt == nil {
			return
		}
		e.pushRangeVar(stmt.Relation, DML)
		e.pushStatement(stmt.SelectStmt)
		e.expandWithClause(stmt.WithClause)
		e.harvestResTargets(stmt.ReturningList)

	case *pg_query.Node_UpdateStmt:
		stmt := n.UpdateStmt
		if stmt == nil {
			return
		}
		e.pushRangeVar(stmt.Relation, DML)
		e.expandWithClause(stmt.WithClause)
		e.harvestResTargets(stmt.TargetList)
		e.pushSubselect(stmt.WhereClause)
		e.harvestResTargets(stmt.ReturningList)

	case *pg_query.Node_DeleteStmt:
		stmt := n.DeleteStmt
		if stmt == nil {
			return
		}
		e.pushRangeVar(stmt.Relation, DML)
		e.expandWithClause(stmt.WithClause)
		e.pushSubselect(stmt.WhereClause)
		e.harvestResTargets(stmt.ReturningList)

	case *pg_query.Node_CopyStmt:
		stmt := n.CopyStmt
		if stmt == nil {
			return
		}
		// COPY table FROM ... writes into the table (DML); COPY table TO
		// ... only reads it (select). stmt.Query is set for "COPY (SELECT
		// ...) TO ...", which never carries a Relation.
		typ := Select
		if stmt.IsFrom {
			typ = DML
		}
		e.pushRangeVar(stmt.Relation, typ)
		e.pushStatement(stmt.Query)

	case *pg_query.Node_AlterTableStmt:
		if n.AlterTableStmt != nil {
			e.pushRangeVar(n.AlterTableStmt.Relation, DDL)
		}

	case *pg_query.Node_CreateStmt:
		if n.CreateStmt != nil {
			e.pushRangeVar(n.CreateStmt.Relation, DDL)
		}

	case *pg_query.Node_IndexStmt:
		if n.IndexStmt != nil {
			e.pushRangeVar(n.IndexStmt.Relation, DDL)
		}

	case *pg_query.Node_CreateTrigStmt:
		if n.CreateTrigStmt != nil {
			e.pushRangeVar(n.CreateTrigStmt.Relation, DDL)
		}

	case *pg_query.Node_RuleStmt:
		if n.RuleStmt != nil {
			e.pushRangeVar(n.RuleStmt.Relation, DDL)
		}

	case *pg_query.Node_RefreshMatViewStmt:
		if n.RefreshMatViewStmt != nil {
			e.pushRangeVar(n.RefreshMatViewStmt.Relation, DDL)
		}

	case *pg_query.Node_ViewStmt:
		stmt := n.ViewStmt
		if stmt == nil {
			return
		}
		e.pushRangeVar(stmt.View, DDL)
		e.pushStatement(stmt.Query)

	case *pg_query.Node_CreateTableAsStmt:
		stmt := n.CreateTableAsStmt
		if stmt == nil {
			return
		}
		if stmt.Into != nil {
			e.pushRangeVar(stmt.Into.Rel, DDL)
		}
		e.pushStatement(stmt.Query)

	case *pg_query.Node_TruncateStmt:
		if n.TruncateStmt != nil {
			for _, rel := range n.TruncateStmt.Relations {
				e.pushFromItem(rel, DDL)
			}
		}

	case *pg_query.Node_LockStmt:
		if n.LockStmt != nil {
			for _, rel := range n.LockStmt.Relations {
				e.pushFromItem(rel, DDL)
			}
		}

	case *pg_query.Node_VacuumStmt:
		if n.VacuumStmt != nil {
			for _, rel := range n.VacuumStmt.Rels {
				if vr := rel.GetVacuumRelation(); vr != nil {
					e.pushRangeVar(vr.Relation, DDL)
				}
			}
		}

	case *pg_query.Node_GrantStmt:
		stmt := n.GrantStmt
		if stmt == nil || stmt.Objtype != pg_query.ObjectType_OBJECT_TABLE {
			return
		}
		for _, obj := range stmt.Objects {
			e.pushFromItem(obj, DDL)
		}

	case *pg_query.Node_DropStmt:
		e.dispatchDrop(n.DropStmt)

	case *pg_query.Node_ExplainStmt:
		if n.ExplainStmt != nil {
			e.pushStatement(n.ExplainStmt.Query)
		}
	}

	e.harvestCommonFields(node)
}

// harvestCommonFields implements §4.1 step 2 for a SelectStmt: pull its
// targetList/whereClause/sortClause/groupClause/havingClause into the
// subselect queue so its expressions get a chance to surface nested
// sub-selects. Any other statement kind is ignored here; INSERT/UPDATE/
// DELETE push their own expression lists in dispatchStatement.
func (e *extractor) harvestCommonFields(node *pg_query.Node) {
	stmt := node.GetSelectStmt()
	if stmt == nil {
		return
	}
	e.harvestResTargets(stmt.TargetList)
	e.pushSubselect(stmt.WhereClause)
	for _, g := range stmt.GroupClause {
		e.pushSubselect(g)
	}
	e.pushSubselect(stmt.HavingClause)
	for _, s := range stmt.SortClause {
		if sb := s.GetSortBy(); sb != nil {
			e.pushSubselect(sb.Node)
		}
	}
}

func (e *extractor) harvestResTargets(list []*pg_query.Node) {
	for _, item := range list {
		e.pushSubselect(item)
	}
}

func (e *extractor) dispatchSelect(stmt *pg_query.SelectStmt) {
	if stmt == nil {
		return
	}

	if stmt.Op != pg_query.SetOperation_SETOP_NONE {
		e.pushStatement(wrapSelect(stmt.Larg))
		e.pushStatement(wrapSelect(stmt.Rarg))
		return
	}

	for _, from := range stmt.FromClause {
		if rs := from.GetRangeSubselect(); rs != nil {
			e.pushStatement(rs.Subquery)
			continue
		}
		e.pushFromItem(from, Select)
	}

	e.expandWithClause(stmt.WithClause)
}

func wrapSelect(s *pg_query.SelectStmt) *pg_query.Node {
	if s == nil {
		return nil
	}
	return &pg_query.Node{Node: &pg_query.Node_SelectStmt{SelectStmt: s}}
}

// expandWithClause records each CTE's name (first occurrence wins) and
// enqueues its query for full statement-level traversal.
func (e *extractor) expandWithClause(with *pg_query.WithClause) {
	if with == nil {
		return
	}
	for _, c := range with.Ctes {
		cte := c.GetCommonTableExpr()
		if cte == nil {
			continue
		}
		if cte.Ctename != "" && !e.seenCTEs[cte.Ctename] {
			e.seenCTEs[cte.Ctename] = true
			e.cteNames = append(e.cteNames, cte.Ctename)
		}
		e.pushStatement(cte.Ctequery)
	}
}

// dispatchExpression implements §4.1 step 3: the only expression kinds
// that can surface nested sub-selects are A_Expr, BoolExpr, ResTarget, and
// SubLink. Anything else popped here is a dead end.
func (e *extractor) dispatchExpression(node *pg_query.Node) {
	if node == nil {
		return
	}

	switch n := node.Node.(type) {
	case *pg_query.Node_AExpr:
		if n.AExpr != nil {
			e.pushFlattened(n.AExpr.Lexpr)
			e.pushFlattened(n.AExpr.Rexpr)
		}
	case *pg_query.Node_BoolExpr:
		if n.BoolExpr != nil {
			for _, a := range n.BoolExpr.Args {
				e.pushSubselect(a)
			}
		}
	case *pg_query.Node_ResTarget:
		if n.ResTarget != nil {
			e.pushSubselect(n.ResTarget.Val)
		}
	case *pg_query.Node_SubLink:
		if n.SubLink != nil {
			e.pushStatement(n.SubLink.Subselect)
		}
	}
}

// pushFlattened pushes n back onto the subselect queue, expanding one
// level of List wrapping first (A_Expr operands such as the RHS of an IN
// list arrive as a List of values rather than a single node).
func (e *extractor) pushFlattened(n *pg_query.Node) {
	if n == nil {
		return
	}
	if l := n.GetList(); l != nil {
		for _, item := range l.Items {
			e.pushSubselect(item)
		}
		return
	}
	e.pushSubselect(n)
}

// dispatchDrop handles DropStmt directly: its objects are appended to
// tables immediately rather than routed through the from-clause queue,
// since a dropped object is identified by a dotted name list rather than
// a RangeVar.
func (e *extractor) dispatchDrop(stmt *pg_query.DropStmt) {
	if stmt == nil {
		return
	}

	switch stmt.RemoveType {
	case pg_query.ObjectType_OBJECT_TABLE,
		pg_query.ObjectType_OBJECT_VIEW,
		pg_query.ObjectType_OBJECT_MATVIEW,
		pg_query.ObjectType_OBJECT_SEQUENCE,
		pg_query.ObjectType_OBJECT_INDEX,
		pg_query.ObjectType_OBJECT_FOREIGN_TABLE:
		for _, obj := range stmt.Objects {
			if name := dottedStringName(obj, false); name != "" {
				e.addTable(Table{Name: name, Type: DDL})
			}
		}
	case pg_query.ObjectType_OBJECT_RULE,
		pg_query.ObjectType_OBJECT_TRIGGER,
		pg_query.ObjectType_OBJECT_POLICY:
		for _, obj := range stmt.Objects {
			if name := dottedStringName(obj, true); name != "" {
				e.addTable(Table{Name: name, Type: DDL})
			}
		}
	}
}

// dottedStringName joins the String_ leaves of a DROP object's List node
// with ".". When dropLast is true the final element (the trigger/rule/
// policy name itself, not the table it belongs to) is excluded.
func dottedStringName(obj *pg_query.Node, dropLast bool) string {
	list := obj.GetList()
	if list == nil {
		return ""
	}
	parts := make([]string, 0, len(list.Items))
	for _, item := range list.Items {
		if s := item.GetString_(); s != nil {
			parts = append(parts, s.Sval)
		}
	}
	if dropLast && len(parts) > 0 {
		parts = parts[:len(parts)-1]
	}
	return strings.Join(parts, ".")
}

// drainFromItems processes the from-clause-item queue to completion,
// expanding joins/subselects down to concrete RangeVars.
func (e *extractor) drainFromItems() {
	for len(e.fromItems) > 0 {
		item := e.fromItems[0]
		e.fromItems = e.fromItems[1:]
		e.dispatchFromItem(item)
	}
}

func (e *extractor) dispatchFromItem(item fromItem) {
	if item.node == nil {
		return
	}

	switch n := item.node.Node.(type) {
	case *pg_query.Node_JoinExpr:
		if n.JoinExpr != nil {
			e.pushFromItem(n.JoinExpr.Larg, item.typ)
			e.pushFromItem(n.JoinExpr.Rarg, item.typ)
		}
	case *pg_query.Node_RowExpr:
		if n.RowExpr != nil {
			for _, a := range n.RowExpr.Args {
				e.pushFromItem(a, item.typ)
			}
		}
	case *pg_query.Node_RangeSubselect:
		if n.RangeSubselect != nil {
			e.pushFromItem(n.RangeSubselect.Subquery, item.typ)
		}
	case *pg_query.Node_SelectStmt:
		for _, from := range n.SelectStmt.FromClause {
			e.pushFromItem(from, item.typ)
		}
	case *pg_query.Node_RangeVar:
		e.resolveRangeVar(n.RangeVar, item.typ)
	}
}

func (e *extractor) resolveRangeVar(rv *pg_query.RangeVar, typ Type) {
	if rv == nil {
		return
	}

	if rv.Schemaname == "" && e.seenCTEs[rv.Relname] {
		return
	}

	name := rv.Relname
	if rv.Schemaname != "" {
		name = rv.Schemaname + "." + rv.Relname
	}

	ref := Table{
		Name:    name,
		Type:    typ,
		Schema:  rv.Schemaname,
		Relname: rv.Relname,
		Inh:     rv.Inh,
	}
	if rv.Location != 0 {
		ref.Location = rv.Location
	}

	e.addTable(ref)

	if rv.Alias != nil && rv.Alias.Aliasname != "" {
		e.aliases[rv.Alias.Aliasname] = name
	}
}

func (e *extractor) addTable(t Table) {
	key := t.Name + "\x00" + string(t.Type) + "\x00" + t.Schema + "\x00" + t.Relname
	if e.seenTables[key] {
		return
	}
	e.seenTables[key] = true
	e.tables = append(e.tables, t)
}
