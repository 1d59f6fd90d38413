// Package ddl renders CREATE TABLE statements for the objects of a data
// contract.
//
// TableDef and ColumnDef form a small dialect-agnostic model. FromObject
// derives a TableDef from a contract.Object; a Dialect maps logical types
// and renders the statement. Dialects live in subpackages and register
// themselves at init time; import yggdrasil/internal/ddl/all to enable every
// built-in one.
package ddl

import (
	"errors"
	"fmt"
	"strings"
)

// Quoter quotes a single identifier segment.
type Quoter func(string) string

// QuoteFQN splits a dotted name and quotes each non-empty segment with q.
func QuoteFQN(fqn string, q Quoter) string {
	parts := strings.Split(fqn, ".")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, q(p))
	}
	return strings.Join(out, ".")
}

// RenderColumns validates t and renders one line per column, followed by a
// PRIMARY KEY clause when the table has a key. Names are quoted with q.
//
// A column is rendered as:
//
//	<Name> <SQLType> [NOT NULL]
func RenderColumns(t TableDef, q Quoter) ([]string, error) {
	fqn := strings.TrimSpace(t.FQN)
	if fqn == "" {
		return nil, errors.New("table FQN must not be empty")
	}
	if len(t.Columns) == 0 {
		return nil, fmt.Errorf("table %s: at least one column is required", fqn)
	}

	cols := make([]string, 0, len(t.Columns)+1)
	seen := make(map[string]bool, len(t.Columns))
	var flagged []string

	for _, c := range t.Columns {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			return nil, fmt.Errorf("column with empty name in table %s", fqn)
		}
		if seen[name] {
			return nil, fmt.Errorf("duplicate column %s in table %s", name, fqn)
		}
		seen[name] = true
		typ := strings.TrimSpace(c.SQLType)
		if typ == "" {
			return nil, fmt.Errorf("column %s missing SQLType", name)
		}

		var sb strings.Builder
		sb.WriteString(q(name))
		sb.WriteByte(' ')
		sb.WriteString(typ)
		if !c.Nullable {
			sb.WriteString(" NOT NULL")
		}
		cols = append(cols, sb.String())

		if c.PrimaryKey {
			flagged = append(flagged, name)
		}
	}

	pks := flagged
	if len(t.PrimaryKey) > 0 {
		pks = t.PrimaryKey
	}
	if len(pks) > 0 {
		quoted := make([]string, len(pks))
		for i, pk := range pks {
			pk = strings.TrimSpace(pk)
			if !seen[pk] {
				return nil, fmt.Errorf("primary key column %s not found in table %s", pk, fqn)
			}
			quoted[i] = q(pk)
		}
		cols = append(cols, fmt.Sprintf("PRIMARY KEY (%s)", strings.Join(quoted, ", ")))
	}
	return cols, nil
}
