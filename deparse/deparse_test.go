package deparse

import (
	"testing"

	pg_query "github.com/pganalyze/pg_query_go/v6"
)

func parse(t *testing.T, sql string) []*pg_query.RawStmt {
	t.Helper()
	result, err := pg_query.Parse(sql)
	if err != nil {
		t.Fatalf("parse(%q): %v", sql, err)
	}
	return result.Stmts
}

func mustDeparse(t *testing.T, sql string) string {
	t.Helper()
	stmts := parse(t, sql)
	out, err := Deparse(stmts)
	if err != nil {
		t.Fatalf("Deparse(%q): %v", sql, err)
	}
	return out
}

func TestDeparse_SimpleSelect(t *testing.T) {
	got := mustDeparse(t, "SELECT a FROM foo")
	want := `SELECT "a" FROM "foo"`
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestDeparse_OnConflictUpdateExcluded(t *testing.T) {
	got := mustDeparse(t, "INSERT INTO t(a) VALUES (1) ON CONFLICT (a) DO UPDATE SET a = excluded.a")
	if got != `INSERT INTO "t" ("a") VALUES (1) ON CONFLICT ("a") DO UPDATE SET "a" = EXCLUDED."a"` {
		t.Errorf("got %q", got)
	}
}

func TestDeparse_OnConflictDoNothing(t *testing.T) {
	got := mustDeparse(t, "INSERT INTO t(a) VALUES (1) ON CONFLICT DO NOTHING")
	if got != `INSERT INTO "t" ("a") VALUES (1) ON CONFLICT DO NOTHING` {
		t.Errorf("got %q", got)
	}
}

func TestDeparse_AndOrParenthesization(t *testing.T) {
	got := mustDeparse(t, "SELECT * FROM x WHERE a = 1 AND (b = 2 OR c = 3)")
	want := `SELECT * FROM "x" WHERE "a" = 1 AND ("b" = 2 OR "c" = 3)`
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestDeparse_OrParenthesizesAndChild(t *testing.T) {
	got := mustDeparse(t, "SELECT * FROM x WHERE a = 1 OR b = 2 AND c = 3")
	want := `SELECT * FROM "x" WHERE "a" = 1 OR ("b" = 2 AND "c" = 3)`
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

// TestDeparse_OrParenthesizesOrChild exercises the OR-wraps-OR branch of
// boolExprChild directly: parsing "(a OR b) OR c" flattens to one 3-arg
// OR_EXPR (pg_query's makeOrExpr merges same-boolop chains), so a nested
// OR-under-OR can only be produced by constructing the AST by hand.
func TestDeparse_OrParenthesizesOrChild(t *testing.T) {
	d := &deparser{}
	inner := &pg_query.BoolExpr{
		Boolop: pg_query.BoolExprType_OR_EXPR,
		Args: []*pg_query.Node{
			pg_query.MakeStrNode("a"),
			pg_query.MakeStrNode("b"),
		},
	}
	outer := &pg_query.BoolExpr{
		Boolop: pg_query.BoolExprType_OR_EXPR,
		Args: []*pg_query.Node{
			{Node: &pg_query.Node_BoolExpr{BoolExpr: inner}},
			pg_query.MakeStrNode("c"),
		},
	}
	got, err := d.boolExpr(outer, none)
	if err != nil {
		t.Fatalf("boolExpr: %v", err)
	}
	want := `("a" OR "b") OR "c"`
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestDeparse_WindowFrameRowsBetween(t *testing.T) {
	got := mustDeparse(t, "SELECT sum(a) OVER (ORDER BY a ROWS BETWEEN 1 PRECEDING AND CURRENT ROW) FROM foo")
	want := `SELECT sum("a") OVER (ORDER BY "a" ROWS BETWEEN 1 PRECEDING AND CURRENT ROW) FROM "foo"`
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestDeparse_WindowFrameRangeUnboundedPreceding(t *testing.T) {
	got := mustDeparse(t, "SELECT sum(a) OVER (ORDER BY a RANGE UNBOUNDED PRECEDING) FROM foo")
	want := `SELECT sum("a") OVER (ORDER BY "a" RANGE UNBOUNDED PRECEDING) FROM "foo"`
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestDeparse_InsertValueDefault(t *testing.T) {
	got := mustDeparse(t, "INSERT INTO t (a) VALUES (DEFAULT)")
	want := `INSERT INTO "t" ("a") VALUES (DEFAULT)`
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestDeparse_UpdateSetDefault(t *testing.T) {
	got := mustDeparse(t, "UPDATE t SET a = DEFAULT")
	want := `UPDATE "t" SET "a" = DEFAULT`
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestDeparse_ExclusionConstraint(t *testing.T) {
	got := mustDeparse(t, "CREATE TABLE t (a integer, EXCLUDE USING gist (a WITH =))")
	want := `CREATE TABLE "t" ("a" int, EXCLUDE USING "gist" ("a" WITH =))`
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestDeparse_ExplainWithOptions(t *testing.T) {
	got := mustDeparse(t, "EXPLAIN (ANALYZE, VERBOSE, FORMAT JSON) SELECT a FROM foo")
	want := `EXPLAIN (ANALYZE, VERBOSE, FORMAT JSON) SELECT "a" FROM "foo"`
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestDeparse_ExplainWithoutOptions(t *testing.T) {
	got := mustDeparse(t, "EXPLAIN SELECT a FROM foo")
	want := `EXPLAIN SELECT "a" FROM "foo"`
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestDeparse_IntervalTypmod(t *testing.T) {
	got := mustDeparse(t, "SELECT '1 year 2 months'::interval year to month")
	want := `SELECT interval year to month '1 year 2 months'`
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestDeparse_DropMultipleObjects(t *testing.T) {
	got := mustDeparse(t, "DROP TABLE a.b, c")
	want := `DROP TABLE "a"."b", "c"`
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestDeparse_CTEAndAlias(t *testing.T) {
	got := mustDeparse(t, "WITH c AS (SELECT 1) SELECT * FROM c, bar b")
	want := `WITH "c" AS (SELECT 1) SELECT * FROM "c", "bar" AS "b"`
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestDeparse_Deterministic(t *testing.T) {
	sql := "SELECT a, b FROM foo WHERE a = 1 ORDER BY b LIMIT 10 OFFSET 5"
	first := mustDeparse(t, sql)
	stmts := parse(t, sql)
	second, err := Deparse(stmts)
	if err != nil {
		t.Fatalf("Deparse: %v", err)
	}
	if first != second {
		t.Errorf("deparse not deterministic: %q != %q", first, second)
	}
}

func TestDeparse_JoinOnClause(t *testing.T) {
	got := mustDeparse(t, "SELECT * FROM a JOIN b ON a.id = b.id")
	want := `SELECT * FROM "a" JOIN "b" ON "a"."id" = "b"."id"`
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestDeparse_UnionReturnsImmediately(t *testing.T) {
	got := mustDeparse(t, "SELECT a FROM foo UNION SELECT b FROM bar")
	want := `SELECT "a" FROM "foo" UNION SELECT "b" FROM "bar"`
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestDeparse_UpdateStatement(t *testing.T) {
	got := mustDeparse(t, "UPDATE t SET a = 1 WHERE b = 2")
	want := `UPDATE "t" SET "a" = 1 WHERE "b" = 2`
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestDeparse_UnsupportedNodeIsTypedError(t *testing.T) {
	stmts := parse(t, "CREATE EXTENSION pg_trgm")
	_, err := Deparse(stmts)
	if err == nil {
		t.Fatal("expected an error for an unsupported statement kind")
	}
	if _, ok := err.(*UnsupportedNode); !ok {
		t.Errorf("got error of type %T, want *UnsupportedNode", err)
	}
}

func TestDeparse_UnsupportedCatalogTypeIsTypedError(t *testing.T) {
	stmts := parse(t, "SELECT a::pg_catalog.pg_node_tree")
	_, err := Deparse(stmts)
	if err == nil {
		t.Fatal("expected an error for an unrecognized pg_catalog type")
	}
	if _, ok := err.(*UnsupportedType); !ok {
		t.Errorf("got error of type %T, want *UnsupportedType", err)
	}
}

func TestDeparse_NeverPanics(t *testing.T) {
	inputs := []string{
		"SELECT a FROM foo",
		"SELECT count(*) FROM foo GROUP BY a HAVING count(*) > 1",
		"SELECT a FROM foo f WHERE f.a IN (SELECT b FROM bar)",
		"DELETE FROM t WHERE a = 1 RETURNING a",
		"ALTER TABLE t ADD COLUMN a integer",
		"LOCK TABLE t IN ACCESS EXCLUSIVE MODE",
	}
	for _, sql := range inputs {
		stmts := parse(t, sql)
		_, _ = Deparse(stmts)
	}
}
