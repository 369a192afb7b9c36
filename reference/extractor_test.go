package reference

import (
	"sort"
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

func tableNames(tables []Table) []string {
	names := make([]string, len(tables))
	for i, tbl := range tables {
		names[i] = tbl.Name
	}
	return names
}

func assertNames(t *testing.T, got []Table, want ...string) {
	t.Helper()
	gotNames := tableNames(got)
	if len(gotNames) != len(want) {
		t.Fatalf("table count = %d (%v), want %d (%v)", len(gotNames), gotNames, len(want), want)
	}
	for i := range want {
		if gotNames[i] != want[i] {
			t.Errorf("table[%d] = %q, want %q (full: %v)", i, gotNames[i], want[i], gotNames)
		}
	}
}

func TestExtract_SimpleSelect(t *testing.T) {
	r := Extract(parse(t, "SELECT a FROM foo"))
	assertNames(t, r.Tables, "foo")
	if r.Tables[0].Type != Select {
		t.Errorf("type = %q, want select", r.Tables[0].Type)
	}
	if len(r.CTENames) != 0 {
		t.Errorf("CTENames = %v, want empty", r.CTENames)
	}
}

func TestExtract_CTEAndAlias(t *testing.T) {
	r := Extract(parse(t, "WITH c AS (SELECT 1 FROM inner_tbl) SELECT * FROM c, bar b"))

	wantCTE := []string{"c"}
	if len(r.CTENames) != 1 || r.CTENames[0] != "c" {
		t.Errorf("CTENames = %v, want %v", r.CTENames, wantCTE)
	}

	names := tableNames(r.Tables)
	sort.Strings(names)
	wantNames := []string{"bar", "inner_tbl"}
	if len(names) != len(wantNames) {
		t.Fatalf("tables = %v, want %v", names, wantNames)
	}
	for i := range wantNames {
		if names[i] != wantNames[i] {
			t.Errorf("tables = %v, want %v", names, wantNames)
		}
	}

	if got := r.Aliases["b"]; got != "bar" {
		t.Errorf("Aliases[b] = %q, want bar", got)
	}
	if _, ok := r.Aliases["c"]; ok {
		t.Errorf("alias map should not contain the CTE name c")
	}
}

func TestExtract_DMLTargetAndSubquery(t *testing.T) {
	r := Extract(parse(t, "UPDATE users SET active = false WHERE id IN (SELECT user_id FROM inactive_sessions)"))

	byName := map[string]Type{}
	for _, tbl := range r.Tables {
		byName[tbl.Name] = tbl.Type
	}
	if byName["users"] != DML {
		t.Errorf("users classified as %q, want dml", byName["users"])
	}
	if byName["inactive_sessions"] != Select {
		t.Errorf("inactive_sessions classified as %q, want select", byName["inactive_sessions"])
	}
}

func TestExtract_InsertSelect(t *testing.T) {
	r := Extract(parse(t, "INSERT INTO audit (id) SELECT id FROM staging"))
	byName := map[string]Type{}
	for _, tbl := range r.Tables {
		byName[tbl.Name] = tbl.Type
	}
	if byName["audit"] != DML {
		t.Errorf("audit = %q, want dml", byName["audit"])
	}
	if byName["staging"] != Select {
		t.Errorf("staging = %q, want select", byName["staging"])
	}
}

func TestExtract_QualifiedAndInheritance(t *testing.T) {
	r := Extract(parse(t, "SELECT * FROM a.b"))
	assertNames(t, r.Tables, "a.b")
	if r.Tables[0].Schema != "a" || r.Tables[0].Relname != "b" {
		t.Errorf("schema/relname = %q/%q, want a/b", r.Tables[0].Schema, r.Tables[0].Relname)
	}

	ronly := Extract(parse(t, "SELECT * FROM ONLY b"))
	if ronly.Tables[0].Inh {
		t.Errorf("ONLY b should have Inh = false")
	}

	def := Extract(parse(t, "SELECT * FROM b"))
	if !def.Tables[0].Inh {
		t.Errorf("plain b should have Inh = true")
	}
}

func TestExtract_CopyFromIsDML(t *testing.T) {
	r := Extract(parse(t, "COPY foo FROM STDIN"))
	assertNames(t, r.Tables, "foo")
	if r.Tables[0].Type != DML {
		t.Errorf("type = %q, want dml", r.Tables[0].Type)
	}
}

func TestExtract_CopyToIsSelect(t *testing.T) {
	r := Extract(parse(t, "COPY foo TO STDOUT"))
	assertNames(t, r.Tables, "foo")
	if r.Tables[0].Type != Select {
		t.Errorf("type = %q, want select", r.Tables[0].Type)
	}
}

func TestExtract_DropTable(t *testing.T) {
	r := Extract(parse(t, "DROP TABLE a.b, c"))
	names := tableNames(r.Tables)
	want := []string{"a.b", "c"}
	if len(names) != len(want) {
		t.Fatalf("tables = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("tables = %v, want %v", names, want)
		}
	}
	for _, tbl := range r.Tables {
		if tbl.Type != DDL {
			t.Errorf("%s classified as %q, want ddl", tbl.Name, tbl.Type)
		}
	}
}

func TestExtract_DropTriggerDropsTrailingName(t *testing.T) {
	r := Extract(parse(t, "DROP TRIGGER my_trigger ON orders"))
	assertNames(t, r.Tables, "orders")
}

func TestExtract_Dedup(t *testing.T) {
	r := Extract(parse(t, "SELECT * FROM foo WHERE id IN (SELECT id FROM foo)"))
	assertNames(t, r.Tables, "foo")
}

func TestExtract_JoinExpandsBothSides(t *testing.T) {
	r := Extract(parse(t, "SELECT * FROM a JOIN b ON a.id = b.id"))
	names := tableNames(r.Tables)
	sort.Strings(names)
	want := []string{"a", "b"}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("tables = %v, want %v", names, want)
		}
	}
}

func TestExtract_UnionBranchesBothWalked(t *testing.T) {
	r := Extract(parse(t, "SELECT * FROM a UNION SELECT * FROM b"))
	names := tableNames(r.Tables)
	sort.Strings(names)
	want := []string{"a", "b"}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("tables = %v, want %v", names, want)
		}
	}
}

func TestExtract_NeverFails(t *testing.T) {
	stmts := parse(t, "SELECT 1")
	r := Extract(stmts)
	if r == nil {
		t.Fatal("Extract returned nil")
	}
}

func TestExtract_EmptyInput(t *testing.T) {
	r := Extract(nil)
	if len(r.Tables) != 0 || len(r.CTENames) != 0 || len(r.Aliases) != 0 {
		t.Errorf("Extract(nil) should be empty, got %+v", r)
	}
}
