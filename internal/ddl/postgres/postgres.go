// Package postgres renders PostgreSQL DDL. Identifiers are quoted with
// pgx.Identifier, so "analytics.Orders" becomes "analytics"."Orders".
package postgres

import (
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"yggdrasil/internal/ddl"
)

func init() { ddl.Register(Dialect{}) }

// Dialect is the PostgreSQL ddl.Dialect.
type Dialect struct{}

func (Dialect) Name() string { return "postgres" }

// MapType normalizes a logical type into a Postgres SQL type.
//
//	"integer"/"int"/"bigint" -> BIGINT
//	"number"/"decimal"       -> NUMERIC
//	"boolean"/"bool"         -> BOOLEAN
//	"date"                   -> DATE
//	"timestamp"              -> TIMESTAMPTZ
//	"time"                   -> TIME
//	"object"/"array"         -> JSONB
//	everything else          -> TEXT
func (Dialect) MapType(kind string) string {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "int", "integer", "bigint":
		return "BIGINT"
	case "number", "numeric", "decimal":
		return "NUMERIC"
	case "float", "double":
		return "DOUBLE PRECISION"
	case "bool", "boolean":
		return "BOOLEAN"
	case "date":
		return "DATE"
	case "timestamp", "timestamptz", "datetime":
		return "TIMESTAMPTZ"
	case "time":
		return "TIME"
	case "object", "array", "json":
		return "JSONB"
	case "uuid":
		return "UUID"
	default:
		return "TEXT"
	}
}

func quoteIdent(id string) string { return pgx.Identifier{id}.Sanitize() }

// BuildCreateTableSQL returns:
//
//	CREATE TABLE IF NOT EXISTS "schema"."table" (
//	  "col1" TYPE [NOT NULL],
//	  PRIMARY KEY ("pk1", "pk2")
//	);
func (Dialect) BuildCreateTableSQL(t ddl.TableDef) (string, error) {
	cols, err := ddl.RenderColumns(t, quoteIdent)
	if err != nil {
		return "", fmt.Errorf("postgres ddl: %w", err)
	}
	return fmt.Sprintf(
		"CREATE TABLE IF NOT EXISTS %s (\n  %s\n);",
		ddl.QuoteFQN(t.FQN, quoteIdent),
		strings.Join(cols, ",\n  "),
	), nil
}
