package ddl

import (
	"fmt"
	"sort"
	"strings"

	"yggdrasil/internal/contract"
)

// FromObject derives a table definition from a schema object.
//
// The table and column names are the physicalName when set, otherwise the
// normalized name. A column's type is its physicalType verbatim, otherwise
// d.MapType(logicalType). Columns are nullable unless required or part of
// the primary key. Key columns are ordered by primaryKeyPosition; those
// without a position follow in document order.
func FromObject(obj contract.Object, d Dialect) (TableDef, error) {
	td := TableDef{FQN: physicalOr(obj.PhysicalName, obj.Name)}
	if len(obj.Properties) == 0 {
		return td, fmt.Errorf("ddl: object %s has no properties", obj.Name)
	}

	type keyCol struct {
		name  string
		pos   int
		order int
	}
	var keys []keyCol

	for i, p := range obj.Properties {
		col := ColumnDef{
			Name:       physicalOr(p.PhysicalName, p.Name),
			SQLType:    strings.TrimSpace(p.PhysicalType),
			Nullable:   !p.Required && !p.PrimaryKey,
			PrimaryKey: p.PrimaryKey,
		}
		if col.SQLType == "" {
			col.SQLType = d.MapType(p.LogicalType)
		}
		td.Columns = append(td.Columns, col)

		if p.PrimaryKey {
			k := keyCol{name: col.Name, pos: int(^uint(0) >> 1), order: i}
			if p.PrimaryKeyPosition != nil {
				k.pos = *p.PrimaryKeyPosition
			}
			keys = append(keys, k)
		}
	}

	sort.SliceStable(keys, func(a, b int) bool { return keys[a].pos < keys[b].pos })
	for _, k := range keys {
		td.PrimaryKey = append(td.PrimaryKey, k.name)
	}
	return td, nil
}

func physicalOr(physical, name string) string {
	if s := strings.TrimSpace(physical); s != "" {
		return s
	}
	return NormalizeIdentifier(name)
}

// Option adjusts BuildContractSQL.
type Option func(*buildOptions)

type buildOptions struct {
	schema string
}

// WithSchema qualifies every table name that is not already qualified.
func WithSchema(schema string) Option {
	return func(o *buildOptions) { o.schema = strings.TrimSpace(schema) }
}

// BuildContractSQL renders one statement per schema object, in schema order.
func BuildContractSQL(dc *contract.DataContract, d Dialect, opts ...Option) ([]string, error) {
	var o buildOptions
	for _, opt := range opts {
		opt(&o)
	}

	stmts := make([]string, 0, len(dc.Schema))
	for i, obj := range dc.Schema {
		td, err := FromObject(obj, d)
		if err != nil {
			return nil, fmt.Errorf("schema[%d]: %w", i, err)
		}
		if o.schema != "" && !strings.Contains(td.FQN, ".") {
			td.FQN = o.schema + "." + td.FQN
		}
		stmt, err := d.BuildCreateTableSQL(td)
		if err != nil {
			return nil, fmt.Errorf("schema[%d]: %w", i, err)
		}
		stmts = append(stmts, stmt)
	}
	return stmts, nil
}
