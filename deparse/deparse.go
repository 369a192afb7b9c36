// Package deparse reconstructs syntactically valid PostgreSQL SQL text
// from a parsed AST. A node kind, pg_catalog type, A_Expr kind, transaction
// kind, or ALTER TABLE / RENAME / DROP subtype it doesn't recognize is a
// typed error, not a best-effort rendering. Unrecognized lock modes,
// row-locking strengths, boolean-test kinds and GRANT object types are
// left out of the output instead.
package deparse

import (
	"strconv"
	"strings"

	pg_query "github.com/pganalyze/pg_query_go/v6"
)

// deparser carries no state across calls; it exists only so the recursive
// renderers can be methods instead of a long parameter list.
type deparser struct{}

// Deparse renders a parsed AST back to SQL text. Multiple statements are
// joined with "; " and no trailing separator or semicolon is added.
func Deparse(stmts []*pg_query.RawStmt) (string, error) {
	d := &deparser{}
	parts := make([]string, 0, len(stmts))
	for _, rs := range stmts {
		if rs == nil || rs.Stmt == nil {
			continue
		}
		s, err := d.deparseNode(rs.Stmt, none)
		if err != nil {
			return "", err
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, "; "), nil
}

// DeparseNode renders a single node (not wrapped in a RawStmt), useful for
// callers that already hold a bare statement or sub-expression node.
func DeparseNode(node *pg_query.Node) (string, error) {
	d := &deparser{}
	return d.deparseNode(node, none)
}

// deparseNode is the single recursive dispatch point every renderer in
// this package funnels through.
func (d *deparser) deparseNode(node *pg_query.Node, ctx context) (string, error) {
	if node == nil {
		return "", nil
	}

	switch n := node.Node.(type) {
	case *pg_query.Node_RawStmt:
		return d.deparseNode(n.RawStmt.Stmt, ctx)

	case *pg_query.Node_SelectStmt:
		return d.selectStmt(n.SelectStmt)
	case *pg_query.Node_InsertStmt:
		return d.insertStmt(n.InsertStmt)
	case *pg_query.Node_UpdateStmt:
		return d.updateStmt(n.UpdateStmt)
	case *pg_query.Node_DeleteStmt:
		return d.deleteStmt(n.DeleteStmt)

	case *pg_query.Node_AExpr:
		return d.aExpr(n.AExpr, ctx)
	case *pg_query.Node_BoolExpr:
		return d.boolExpr(n.BoolExpr, ctx)
	case *pg_query.Node_NullTest:
		return d.nullTest(n.NullTest)
	case *pg_query.Node_BooleanTest:
		return d.booleanTest(n.BooleanTest)
	case *pg_query.Node_SubLink:
		return d.subLink(n.SubLink)
	case *pg_query.Node_ResTarget:
		return d.resTarget(n.ResTarget, ctx)
	case *pg_query.Node_ColumnRef:
		return d.columnRef(n.ColumnRef, ctx)
	case *pg_query.Node_FuncCall:
		return d.funcCall(n.FuncCall)
	case *pg_query.Node_TypeCast:
		return d.typeCast(n.TypeCast)
	case *pg_query.Node_TypeName:
		return d.typeName(n.TypeName)
	case *pg_query.Node_CaseExpr:
		return d.caseExpr(n.CaseExpr)
	case *pg_query.Node_CaseWhen:
		return d.caseWhen(n.CaseWhen)
	case *pg_query.Node_CoalesceExpr:
		return d.coalesceExpr(n.CoalesceExpr)
	case *pg_query.Node_ParamRef:
		return d.paramRef(n.ParamRef)
	case *pg_query.Node_IndexElem:
		return d.indexElem(n.IndexElem)

	case *pg_query.Node_RangeVar:
		return d.rangeVar(n.RangeVar)
	case *pg_query.Node_JoinExpr:
		return d.joinExpr(n.JoinExpr)
	case *pg_query.Node_RangeSubselect:
		return d.rangeSubselect(n.RangeSubselect)
	case *pg_query.Node_RangeFunction:
		return d.rangeFunction(n.RangeFunction)

	case *pg_query.Node_SortBy:
		return d.sortBy(n.SortBy)
	case *pg_query.Node_WindowDef:
		return d.windowDef(n.WindowDef)
	case *pg_query.Node_LockingClause:
		return d.lockingClause(n.LockingClause)

	case *pg_query.Node_AConst:
		return d.aConst(n.AConst)
	case *pg_query.Node_String_:
		return d.stringLeaf(n.String_, ctx)
	case *pg_query.Node_Integer:
		return formatInteger(n.Integer.Ival), nil
	case *pg_query.Node_Float:
		return n.Float.Fval, nil
	case *pg_query.Node_AStar:
		return "*", nil
	case *pg_query.Node_SetToDefault:
		return "DEFAULT", nil
	case *pg_query.Node_List:
		return d.deparseList(n.List)

	case *pg_query.Node_AlterTableStmt:
		return d.alterTableStmt(n.AlterTableStmt)
	case *pg_query.Node_RenameStmt:
		return d.renameStmt(n.RenameStmt)
	case *pg_query.Node_DropStmt:
		return d.dropStmt(n.DropStmt)
	case *pg_query.Node_TruncateStmt:
		return d.truncateStmt(n.TruncateStmt)
	case *pg_query.Node_LockStmt:
		return d.lockStmt(n.LockStmt)
	case *pg_query.Node_VacuumStmt:
		return d.vacuumStmt(n.VacuumStmt)
	case *pg_query.Node_ExplainStmt:
		return d.explainStmt(n.ExplainStmt)
	case *pg_query.Node_GrantStmt:
		return d.grantStmt(n.GrantStmt)
	case *pg_query.Node_CreateStmt:
		return d.createStmt(n.CreateStmt)
	case *pg_query.Node_ColumnDef:
		return d.columnDef(n.ColumnDef)
	case *pg_query.Node_Constraint:
		return d.constraint(n.Constraint)
	case *pg_query.Node_TransactionStmt:
		return d.transactionStmt(n.TransactionStmt)

	default:
		return "", &UnsupportedNode{Kind: nodeKindName(node), Payload: node}
	}
}

// deparseList renders a List node's items, comma-separated. Most callers
// that need a different separator or wrapping handle Lists inline instead.
func (d *deparser) deparseList(list *pg_query.List) (string, error) {
	if list == nil {
		return "", nil
	}
	parts := make([]string, 0, len(list.Items))
	for _, item := range list.Items {
		s, err := d.deparseNode(item, none)
		if err != nil {
			return "", err
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, ", "), nil
}

func formatInteger(v int32) string {
	return strconv.FormatInt(int64(v), 10)
}
