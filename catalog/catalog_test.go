package catalog

import "testing"

func TestIsReservedWord(t *testing.T) {
	tests := []struct {
		word string
		want bool
	}{
		{"select", true},
		{"SELECT", true},
		{"Table", true},
		{"foo", false},
		{"id", false},
	}
	for _, tt := range tests {
		if got := IsReservedWord(tt.word); got != tt.want {
			t.Errorf("IsReservedWord(%q) = %v, want %v", tt.word, got, tt.want)
		}
	}
}

func TestBuiltinTypeName(t *testing.T) {
	tests := []struct {
		name      string
		canonical string
		ok        bool
	}{
		{"int4", "int", true},
		{"int8", "bigint", true},
		{"bool", "boolean", true},
		{"numeric", "numeric", true},
		{"bpchar", "char", true},
		{"interval", "", false},
		{"unknown_type", "", false},
	}
	for _, tt := range tests {
		b, ok := BuiltinTypeName(tt.name)
		if ok != tt.ok {
			t.Fatalf("BuiltinTypeName(%q) ok = %v, want %v", tt.name, ok, tt.ok)
		}
		if ok && b.Canonical != tt.canonical {
			t.Errorf("BuiltinTypeName(%q).Canonical = %q, want %q", tt.name, b.Canonical, tt.canonical)
		}
	}
}

func TestBuiltinTypeNameParenthesize(t *testing.T) {
	b, ok := BuiltinTypeName("varchar")
	if !ok || !b.ParenthesizeTypmods {
		t.Fatalf("varchar should parenthesize typmods, got %+v ok=%v", b, ok)
	}
	b, ok = BuiltinTypeName("int4")
	if !ok || b.ParenthesizeTypmods {
		t.Fatalf("int4 should not parenthesize typmods, got %+v ok=%v", b, ok)
	}
}

func TestDecodeIntervalMask(t *testing.T) {
	tests := []struct {
		mask int32
		want string
		ok   bool
	}{
		{4, "year", true},
		{2, "month", true},
		{6, "year to month", true},
		{120, "day to hour to minute to second", true},
		{9999, "", false},
	}
	for _, tt := range tests {
		got, ok := DecodeIntervalMask(tt.mask)
		if ok != tt.ok {
			t.Fatalf("DecodeIntervalMask(%d) ok = %v, want %v", tt.mask, ok, tt.ok)
		}
		if ok && got != tt.want {
			t.Errorf("DecodeIntervalMask(%d) = %q, want %q", tt.mask, got, tt.want)
		}
	}
}

func TestAlterTableCommandVerb(t *testing.T) {
	if v, ok := AlterTableCommandVerb("AT_AddColumn"); !ok || v != "ADD COLUMN" {
		t.Errorf("AT_AddColumn = %q, %v", v, ok)
	}
	if _, ok := AlterTableCommandVerb("AT_Unknown"); ok {
		t.Errorf("AT_Unknown should not resolve")
	}
}

func TestRenameObjectNoun(t *testing.T) {
	if v, ok := RenameObjectNoun("OBJECT_MATVIEW"); !ok || v != "MATERIALIZED VIEW" {
		t.Errorf("OBJECT_MATVIEW = %q, %v", v, ok)
	}
}

func TestDropObjectNoun(t *testing.T) {
	if v, ok := DropObjectNoun("OBJECT_TABLE"); !ok || v != "TABLE" {
		t.Errorf("OBJECT_TABLE = %q, %v", v, ok)
	}
	if _, ok := DropObjectNoun("OBJECT_CAST"); ok {
		t.Errorf("OBJECT_CAST should not resolve")
	}
}
