package deparse

import "fmt"

// UnsupportedNode is returned when the dispatcher meets a node kind it has
// no renderer for.
type UnsupportedNode struct {
	Kind    string
	Payload interface{}
}

func (e *UnsupportedNode) Error() string {
	return fmt.Sprintf("deparse: unsupported node kind %q", e.Kind)
}

// UnsupportedType is returned when the type-name renderer meets a
// pg_catalog type it does not know how to canonicalize.
type UnsupportedType struct {
	Name string
}

func (e *UnsupportedType) Error() string {
	return fmt.Sprintf("deparse: unsupported pg_catalog type %q", e.Name)
}

// UnsupportedAExprKind is returned when an A_Expr carries a sub-kind the
// renderer does not cover.
type UnsupportedAExprKind struct {
	Kind string
}

func (e *UnsupportedAExprKind) Error() string {
	return fmt.Sprintf("deparse: unsupported A_Expr kind %q", e.Kind)
}

// UnsupportedResTargetContext is returned when a ResTarget is rendered
// under a context the renderer has no rule for.
type UnsupportedResTargetContext struct {
	Context string
}

func (e *UnsupportedResTargetContext) Error() string {
	return fmt.Sprintf("deparse: unsupported ResTarget context %q", e.Context)
}

// UnsupportedTransactionKind is returned when a TransactionStmt carries an
// unrecognized kind.
type UnsupportedTransactionKind struct {
	Kind string
}

func (e *UnsupportedTransactionKind) Error() string {
	return fmt.Sprintf("deparse: unsupported transaction kind %q", e.Kind)
}
