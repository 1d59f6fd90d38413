// Package sqlite renders SQLite DDL with "double-quoted" identifiers and
// CREATE TABLE IF NOT EXISTS.
package sqlite

import (
	"fmt"
	"strings"

	"yggdrasil/internal/ddl"
)

func init() { ddl.Register(Dialect{}) }

// Dialect is the SQLite ddl.Dialect.
type Dialect struct{}

func (Dialect) Name() string { return "sqlite" }

// MapType maps a logical type to a SQLite type affinity. Booleans are stored
// as 0/1 integers and temporal values as ISO-8601 text.
func (Dialect) MapType(kind string) string {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "int", "integer", "bigint", "bool", "boolean":
		return "INTEGER"
	case "float", "double", "real":
		return "REAL"
	case "number", "numeric", "decimal":
		return "NUMERIC"
	case "blob", "bytes":
		return "BLOB"
	default:
		return "TEXT"
	}
}

func quoteIdent(id string) string {
	return `"` + strings.ReplaceAll(id, `"`, `""`) + `"`
}

// BuildCreateTableSQL returns:
//
//	CREATE TABLE IF NOT EXISTS "table" (
//	  "col1" TYPE [NOT NULL],
//	  PRIMARY KEY ("pk1", "pk2")
//	);
func (Dialect) BuildCreateTableSQL(t ddl.TableDef) (string, error) {
	cols, err := ddl.RenderColumns(t, quoteIdent)
	if err != nil {
		return "", fmt.Errorf("sqlite ddl: %w", err)
	}
	return fmt.Sprintf(
		"CREATE TABLE IF NOT EXISTS %s (\n  %s\n);",
		ddl.QuoteFQN(t.FQN, quoteIdent),
		strings.Join(cols, ",\n  "),
	), nil
}
