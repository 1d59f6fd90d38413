package ddl

// ColumnDef describes a single column of a table definition.
//
// Fields:
//   - Name: column name, unquoted; quoting happens at render time
//   - SQLType: target SQL type (e.g., TEXT, BIGINT, TIMESTAMPTZ)
//   - Nullable: whether NULL is allowed
//   - PrimaryKey: whether the column is part of the primary key
type ColumnDef struct {
	Name       string
	SQLType    string
	Nullable   bool
	PrimaryKey bool
}

// TableDef holds the table name in dotted form ("schema.table") and its
// ordered columns.
//
// PrimaryKey, when set, lists the key columns in key order and takes
// precedence over the ColumnDef.PrimaryKey flags, which otherwise produce a
// key in column order.
type TableDef struct {
	FQN        string
	Columns    []ColumnDef
	PrimaryKey []string
}
