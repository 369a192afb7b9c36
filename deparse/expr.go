package deparse

import (
	"strings"

	pg_query "github.com/pganalyze/pg_query_go/v6"
)

// aExpr renders a binary/unary operator expression. An A_Expr rendered
// under a non-none context (as the operands of another A_Expr are)
// self-parenthesizes; one rendered with none, such as a WHERE clause root
// or a direct AND/OR argument, does not.
func (d *deparser) aExpr(e *pg_query.A_Expr, ctx context) (string, error) {
	if e == nil {
		return "", nil
	}

	op, err := d.operatorName(e.Name)
	if err != nil {
		return "", err
	}

	var rendered string
	switch e.Kind {
	case pg_query.A_Expr_Kind_AEXPR_OP:
		left, err := d.deparseNode(e.Lexpr, ctxPrecedence)
		if err != nil {
			return "", err
		}
		right, err := d.deparseNode(e.Rexpr, ctxPrecedence)
		if err != nil {
			return "", err
		}
		if left == "" {
			rendered = op + " " + right
		} else {
			rendered = left + " " + op + " " + right
		}

	case pg_query.A_Expr_Kind_AEXPR_OP_ANY:
		left, right, err := d.binaryOperands(e)
		if err != nil {
			return "", err
		}
		rendered = left + " " + op + " ANY(" + right + ")"

	case pg_query.A_Expr_Kind_AEXPR_OP_ALL:
		left, right, err := d.binaryOperands(e)
		if err != nil {
			return "", err
		}
		rendered = left + " " + op + " ALL(" + right + ")"

	case pg_query.A_Expr_Kind_AEXPR_IN:
		left, right, err := d.binaryOperands(e)
		if err != nil {
			return "", err
		}
		verb := "IN"
		if op == "<>" {
			verb = "NOT IN"
		}
		rendered = left + " " + verb + " (" + right + ")"

	case pg_query.A_Expr_Kind_AEXPR_LIKE:
		left, right, err := d.binaryOperands(e)
		if err != nil {
			return "", err
		}
		verb := "LIKE"
		if op == "!~~" {
			verb = "NOT LIKE"
		}
		rendered = left + " " + verb + " " + right

	case pg_query.A_Expr_Kind_AEXPR_ILIKE:
		left, right, err := d.binaryOperands(e)
		if err != nil {
			return "", err
		}
		verb := "ILIKE"
		if op == "!~~*" {
			verb = "NOT ILIKE"
		}
		rendered = left + " " + verb + " " + right

	case pg_query.A_Expr_Kind_AEXPR_BETWEEN, pg_query.A_Expr_Kind_AEXPR_NOT_BETWEEN,
		pg_query.A_Expr_Kind_AEXPR_BETWEEN_SYM, pg_query.A_Expr_Kind_AEXPR_NOT_BETWEEN_SYM:
		left, err := d.deparseNode(e.Lexpr, ctxPrecedence)
		if err != nil {
			return "", err
		}
		bounds, err := d.deparseNodeList(listItems(e.Rexpr), ctxPrecedence, " AND ")
		if err != nil {
			return "", err
		}
		verb := "BETWEEN"
		switch e.Kind {
		case pg_query.A_Expr_Kind_AEXPR_NOT_BETWEEN:
			verb = "NOT BETWEEN"
		case pg_query.A_Expr_Kind_AEXPR_BETWEEN_SYM:
			verb = "BETWEEN SYMMETRIC"
		case pg_query.A_Expr_Kind_AEXPR_NOT_BETWEEN_SYM:
			verb = "NOT BETWEEN SYMMETRIC"
		}
		rendered = left + " " + verb + " " + bounds

	case pg_query.A_Expr_Kind_AEXPR_DISTINCT:
		left, right, err := d.binaryOperands(e)
		if err != nil {
			return "", err
		}
		rendered = left + " IS DISTINCT FROM " + right

	case pg_query.A_Expr_Kind_AEXPR_NOT_DISTINCT:
		left, right, err := d.binaryOperands(e)
		if err != nil {
			return "", err
		}
		rendered = left + " IS NOT DISTINCT FROM " + right

	case pg_query.A_Expr_Kind_AEXPR_NULLIF:
		left, right, err := d.binaryOperands(e)
		if err != nil {
			return "", err
		}
		return "NULLIF(" + left + ", " + right + ")", nil

	default:
		return "", &UnsupportedAExprKind{Kind: e.Kind.String()}
	}

	if ctx != none {
		return parenthesize(rendered), nil
	}
	return rendered, nil
}

func (d *deparser) binaryOperands(e *pg_query.A_Expr) (string, string, error) {
	left, err := d.deparseNode(e.Lexpr, ctxPrecedence)
	if err != nil {
		return "", "", err
	}
	right, err := d.deparseNode(e.Rexpr, ctxPrecedence)
	if err != nil {
		return "", "", err
	}
	return left, right, nil
}

// listItems unwraps a Node_List into its items, or returns a single-item
// slice when the node is not itself a List.
func listItems(n *pg_query.Node) []*pg_query.Node {
	if n == nil {
		return nil
	}
	if l := n.GetList(); l != nil {
		return l.Items
	}
	return []*pg_query.Node{n}
}

func (d *deparser) operatorName(name []*pg_query.Node) (string, error) {
	return d.deparseNodeList(name, ctxOperator, ".")
}

// boolExpr joins AND/OR args, parenthesizing children per the precedence
// rules: inside AND, a child OR is parenthesized; inside OR, a child AND
// or OR is parenthesized. NOT always parenthesizes its single argument
// when it is itself an AND/OR.
func (d *deparser) boolExpr(e *pg_query.BoolExpr, ctx context) (string, error) {
	if e == nil {
		return "", nil
	}

	switch e.Boolop {
	case pg_query.BoolExprType_NOT_EXPR:
		arg, err := d.deparseNode(e.Args[0], ctxPrecedence)
		if err != nil {
			return "", err
		}
		return "NOT " + arg, nil

	case pg_query.BoolExprType_AND_EXPR:
		parts := make([]string, 0, len(e.Args))
		for _, a := range e.Args {
			s, err := d.boolExprChild(a, pg_query.BoolExprType_AND_EXPR)
			if err != nil {
				return "", err
			}
			parts = append(parts, s)
		}
		rendered := strings.Join(parts, " AND ")
		if ctx != none {
			return parenthesize(rendered), nil
		}
		return rendered, nil

	case pg_query.BoolExprType_OR_EXPR:
		parts := make([]string, 0, len(e.Args))
		for _, a := range e.Args {
			s, err := d.boolExprChild(a, pg_query.BoolExprType_OR_EXPR)
			if err != nil {
				return "", err
			}
			parts = append(parts, s)
		}
		rendered := strings.Join(parts, " OR ")
		if ctx != none {
			return parenthesize(rendered), nil
		}
		return rendered, nil
	}

	return "", nil
}

// boolExprChild renders a BoolExpr argument, parenthesizing it when its
// own boolop would otherwise be ambiguous under parent.
func (d *deparser) boolExprChild(node *pg_query.Node, parent pg_query.BoolExprType) (string, error) {
	child := node.GetBoolExpr()
	if child == nil {
		return d.deparseNode(node, none)
	}

	needsParens := false
	switch parent {
	case pg_query.BoolExprType_AND_EXPR:
		needsParens = child.Boolop == pg_query.BoolExprType_OR_EXPR
	case pg_query.BoolExprType_OR_EXPR:
		needsParens = child.Boolop == pg_query.BoolExprType_AND_EXPR || child.Boolop == pg_query.BoolExprType_OR_EXPR
	}

	s, err := d.boolExpr(child, none)
	if err != nil {
		return "", err
	}
	if needsParens {
		return parenthesize(s), nil
	}
	return s, nil
}

func (d *deparser) nullTest(n *pg_query.NullTest) (string, error) {
	if n == nil {
		return "", nil
	}
	arg, err := d.deparseNode(n.Arg, ctxPrecedence)
	if err != nil {
		return "", err
	}
	if n.Nulltesttype == pg_query.NullTestType_IS_NOT_NULL {
		return arg + " IS NOT NULL", nil
	}
	return arg + " IS NULL", nil
}

func (d *deparser) booleanTest(b *pg_query.BooleanTest) (string, error) {
	if b == nil {
		return "", nil
	}
	arg, err := d.deparseNode(b.Arg, ctxPrecedence)
	if err != nil {
		return "", err
	}
	var suffix string
	switch b.Booltesttype {
	case pg_query.BoolTestType_IS_TRUE:
		suffix = "IS TRUE"
	case pg_query.BoolTestType_IS_NOT_TRUE:
		suffix = "IS NOT TRUE"
	case pg_query.BoolTestType_IS_FALSE:
		suffix = "IS FALSE"
	case pg_query.BoolTestType_IS_NOT_FALSE:
		suffix = "IS NOT FALSE"
	case pg_query.BoolTestType_IS_UNKNOWN:
		suffix = "IS UNKNOWN"
	case pg_query.BoolTestType_IS_NOT_UNKNOWN:
		suffix = "IS NOT UNKNOWN"
	}
	return arg + " " + suffix, nil
}

// subLink renders a sub-select expression: EXISTS/ANY/ALL/ARRAY forms, or
// a plain parenthesized scalar sub-select.
func (d *deparser) subLink(s *pg_query.SubLink) (string, error) {
	if s == nil {
		return "", nil
	}
	sub, err := d.deparseNode(s.Subselect, none)
	if err != nil {
		return "", err
	}

	switch s.SubLinkType {
	case pg_query.SubLinkType_EXISTS_SUBLINK:
		return "EXISTS (" + sub + ")", nil
	case pg_query.SubLinkType_ARRAY_SUBLINK:
		return "ARRAY(" + sub + ")", nil
	case pg_query.SubLinkType_ANY_SUBLINK:
		testexpr, err := d.deparseNode(s.Testexpr, ctxPrecedence)
		if err != nil {
			return "", err
		}
		op, err := d.operatorName(s.OperName)
		if err != nil {
			return "", err
		}
		if op == "" {
			op = "IN"
			return testexpr + " " + op + " (" + sub + ")", nil
		}
		return testexpr + " " + op + " ANY(" + sub + ")", nil
	case pg_query.SubLinkType_ALL_SUBLINK:
		testexpr, err := d.deparseNode(s.Testexpr, ctxPrecedence)
		if err != nil {
			return "", err
		}
		op, err := d.operatorName(s.OperName)
		if err != nil {
			return "", err
		}
		return testexpr + " " + op + " ALL(" + sub + ")", nil
	default:
		return parenthesize(sub), nil
	}
}

func (d *deparser) caseExpr(c *pg_query.CaseExpr) (string, error) {
	if c == nil {
		return "", nil
	}
	var b strings.Builder
	b.WriteString("CASE")
	if c.Arg != nil {
		s, err := d.deparseNode(c.Arg, none)
		if err != nil {
			return "", err
		}
		b.WriteString(" " + s)
	}
	for _, w := range c.Args {
		s, err := d.deparseNode(w, none)
		if err != nil {
			return "", err
		}
		b.WriteString(" " + s)
	}
	if c.Defresult != nil {
		s, err := d.deparseNode(c.Defresult, none)
		if err != nil {
			return "", err
		}
		b.WriteString(" ELSE " + s)
	}
	b.WriteString(" END")
	return b.String(), nil
}

func (d *deparser) caseWhen(w *pg_query.CaseWhen) (string, error) {
	if w == nil {
		return "", nil
	}
	expr, err := d.deparseNode(w.Expr, none)
	if err != nil {
		return "", err
	}
	result, err := d.deparseNode(w.Result, none)
	if err != nil {
		return "", err
	}
	return "WHEN " + expr + " THEN " + result, nil
}

func (d *deparser) coalesceExpr(c *pg_query.CoalesceExpr) (string, error) {
	if c == nil {
		return "", nil
	}
	args, err := d.deparseNodeList(c.Args, none, ", ")
	if err != nil {
		return "", err
	}
	return "COALESCE(" + args + ")", nil
}
