// Package all registers every built-in SQL dialect with the ddl package.
// Import it for side effects:
//
//	import _ "yggdrasil/internal/ddl/all"
package all

import (
	_ "yggdrasil/internal/ddl/mssql"
	_ "yggdrasil/internal/ddl/postgres"
	_ "yggdrasil/internal/ddl/sqlite"
)
