package ddl

import (
	"fmt"
	"sort"
	"sync"
)

// Dialect renders tables for one SQL engine.
type Dialect interface {
	// Name is the registry key, e.g. "postgres".
	Name() string
	// MapType maps an ODCS logical type (string, integer, number, boolean,
	// date, timestamp, time, object, array) to a column type. Unknown types
	// map to the dialect's text type.
	MapType(logicalType string) string
	BuildCreateTableSQL(t TableDef) (string, error)
}

var (
	dialectMu sync.RWMutex
	dialects  = map[string]Dialect{}
)

// Register adds or replaces a dialect. Dialect packages call it from init.
func Register(d Dialect) {
	dialectMu.Lock()
	defer dialectMu.Unlock()
	dialects[d.Name()] = d
}

// Lookup returns the dialect registered under name.
func Lookup(name string) (Dialect, error) {
	dialectMu.RLock()
	d, ok := dialects[name]
	dialectMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("ddl: no dialect registered for %q (have %v)", name, Dialects())
	}
	return d, nil
}

// Dialects lists registered dialect names in sorted order.
func Dialects() []string {
	dialectMu.RLock()
	defer dialectMu.RUnlock()
	names := make([]string, 0, len(dialects))
	for n := range dialects {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
