// Package catalog holds the frozen lookup tables the deparser needs but
// spec-wise are "supplied by a collaborator": reserved keywords, the
// pg_catalog builtin type-name map, the interval typmod bitmask table, and
// the ALTER TABLE / RENAME / DROP command-name dispatch tables. Each is
// embedded as YAML and parsed once at package init, the same mechanism the
// teacher repo uses for its migration-suggestion table.
package catalog

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed keywords.yaml
var keywordsYAML []byte

//go:embed typenames.yaml
var typenamesYAML []byte

//go:embed interval_bitmask.yaml
var intervalBitmaskYAML []byte

//go:embed altertable_commands.yaml
var alterTableCommandsYAML []byte

//go:embed renametype_commands.yaml
var renameTypeCommandsYAML []byte

//go:embed drop_object_words.yaml
var dropObjectWordsYAML []byte

type keywordsFile struct {
	Reserved []string `yaml:"reserved"`
}

type typenamesFile struct {
	Builtins []BuiltinType `yaml:"builtins"`
}

// BuiltinType is one row of the pg_catalog -> canonical SQL spelling table.
type BuiltinType struct {
	Name                string `yaml:"name"`
	Canonical           string `yaml:"canonical"`
	ParenthesizeTypmods bool   `yaml:"parenthesize_typmods"`
}

type intervalBitmaskFile struct {
	Masks []struct {
		Mask   int32    `yaml:"mask"`
		Tokens []string `yaml:"tokens"`
	} `yaml:"masks"`
}

type alterTableCommandsFile struct {
	Commands map[string]string `yaml:"commands"`
}

type renameTypeCommandsFile struct {
	Nouns map[string]string `yaml:"rename_nouns"`
}

type dropObjectWordsFile struct {
	Nouns map[string]string `yaml:"drop_nouns"`
}

var (
	reservedWords      map[string]bool
	builtinTypes       map[string]BuiltinType
	intervalMasks      map[int32][]string
	alterTableCommands map[string]string
	renameTypeNouns    map[string]string
	dropObjectNouns    map[string]string
)

func init() {
	var kw keywordsFile
	mustUnmarshal(keywordsYAML, &kw)
	reservedWords = make(map[string]bool, len(kw.Reserved))
	for _, w := range kw.Reserved {
		reservedWords[strings.ToLower(w)] = true
	}

	var tn typenamesFile
	mustUnmarshal(typenamesYAML, &tn)
	builtinTypes = make(map[string]BuiltinType, len(tn.Builtins))
	for _, b := range tn.Builtins {
		builtinTypes[b.Name] = b
	}

	var ib intervalBitmaskFile
	mustUnmarshal(intervalBitmaskYAML, &ib)
	intervalMasks = make(map[int32][]string, len(ib.Masks))
	for _, m := range ib.Masks {
		intervalMasks[m.Mask] = m.Tokens
	}

	var atc alterTableCommandsFile
	mustUnmarshal(alterTableCommandsYAML, &atc)
	alterTableCommands = atc.Commands

	var rtc renameTypeCommandsFile
	mustUnmarshal(renameTypeCommandsYAML, &rtc)
	renameTypeNouns = rtc.Nouns

	var dow dropObjectWordsFile
	mustUnmarshal(dropObjectWordsYAML, &dow)
	dropObjectNouns = dow.Nouns
}

func mustUnmarshal(data []byte, out interface{}) {
	if err := yaml.Unmarshal(data, out); err != nil {
		panic(fmt.Sprintf("catalog: failed to parse embedded table: %v", err))
	}
}

// IsReservedWord reports whether word (case-insensitively) is a reserved
// SQL keyword that must be double-quoted to use as a bare identifier.
func IsReservedWord(word string) bool {
	return reservedWords[strings.ToLower(word)]
}

// BuiltinTypeName looks up the canonical SQL spelling for a pg_catalog
// builtin type name (e.g. "int4" -> {Canonical: "int"}). ok is false for
// any name not in the table, including "interval" which the caller must
// route through DecodeIntervalMask instead.
func BuiltinTypeName(name string) (BuiltinType, bool) {
	b, ok := builtinTypes[name]
	return b, ok
}

// DecodeIntervalMask joins the qualifier tokens for an interval typmod
// bitmask with " to ", e.g. 6 -> "year to month". ok is false for a mask
// this table does not recognize (including the unconstrained -1 typmod,
// which callers should special-case before calling this).
func DecodeIntervalMask(mask int32) (string, bool) {
	tokens, ok := intervalMasks[mask]
	if !ok {
		return "", false
	}
	return strings.Join(tokens, " to "), true
}

// AlterTableCommandVerb returns the SQL verb phrase for an AlterTableType
// enum name (e.g. "AT_AddColumn" -> "ADD COLUMN"). ok is false for any
// subtype this table does not cover.
func AlterTableCommandVerb(subtype string) (string, bool) {
	v, ok := alterTableCommands[subtype]
	return v, ok
}

// RenameObjectNoun returns the noun phrase following RENAME for an
// ObjectType enum name (e.g. "OBJECT_TABLE" -> "TABLE").
func RenameObjectNoun(objectType string) (string, bool) {
	v, ok := renameTypeNouns[objectType]
	return v, ok
}

// DropObjectNoun returns the noun phrase following DROP for an ObjectType
// enum name (e.g. "OBJECT_MATVIEW" -> "MATERIALIZED VIEW").
func DropObjectNoun(objectType string) (string, bool) {
	v, ok := dropObjectNouns[objectType]
	return v, ok
}
