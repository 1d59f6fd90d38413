// Package mssql renders SQL Server DDL: [bracket] identifiers and an
// OBJECT_ID guard, since T-SQL has no CREATE TABLE IF NOT EXISTS.
package mssql

import (
	"fmt"
	"strings"

	"yggdrasil/internal/ddl"
)

func init() { ddl.Register(Dialect{}) }

// Dialect is the SQL Server ddl.Dialect.
type Dialect struct{}

func (Dialect) Name() string { return "mssql" }

// MapType maps a logical type into a SQL Server column type. Unknown or
// empty kinds fall back to NVARCHAR(MAX).
func (Dialect) MapType(kind string) string {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "int", "integer", "bigint":
		return "BIGINT"
	case "bool", "boolean":
		return "BIT"
	case "date":
		return "DATE"
	case "timestamp", "datetime", "timestamptz":
		return "DATETIME2"
	case "time":
		return "TIME"
	case "number", "float", "double", "numeric", "decimal":
		return "DECIMAL(38, 10)"
	case "uuid":
		return "UNIQUEIDENTIFIER"
	default:
		return "NVARCHAR(MAX)"
	}
}

// quoteIdent escapes closing brackets: weird]id -> [weird]]id].
func quoteIdent(id string) string {
	return "[" + strings.ReplaceAll(id, "]", "]]") + "]"
}

// BuildCreateTableSQL returns:
//
//	IF OBJECT_ID(N'[schema].[table]', N'U') IS NULL
//	BEGIN
//	  CREATE TABLE [schema].[table] (
//	    [col1] TYPE [NOT NULL],
//	    PRIMARY KEY ([pk1], [pk2])
//	  );
//	END;
func (Dialect) BuildCreateTableSQL(t ddl.TableDef) (string, error) {
	cols, err := ddl.RenderColumns(t, quoteIdent)
	if err != nil {
		return "", fmt.Errorf("mssql ddl: %w", err)
	}
	fqn := ddl.QuoteFQN(t.FQN, quoteIdent)
	return fmt.Sprintf(
		"IF OBJECT_ID(N'%s', N'U') IS NULL\nBEGIN\n  CREATE TABLE %s (\n    %s\n  );\nEND;",
		strings.ReplaceAll(fqn, "'", "''"),
		fqn,
		strings.Join(cols, ",\n    "),
	), nil
}
