// Command odcs validates Open Data Contract Standard documents and derives
// artifacts from them.
//
//	odcs validate contracts/*.yaml
//	odcs normalize --format json orders.yaml
//	odcs fingerprint orders.yaml
//	odcs ddl --dialect sqlite orders.yaml
package main

import (
	"errors"
	"fmt"
	"os"

	_ "yggdrasil/internal/ddl/all"
	"yggdrasil/internal/logging"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	a := &app{
		stdout:  os.Stdout,
		stderr:  os.Stderr,
		stdin:   os.Stdin,
		getenv:  os.Getenv,
		initLog: logging.Init,
	}
	if err := a.run(os.Args[1:]); err != nil {
		// Rejected documents were already reported line by line.
		if !errors.Is(err, errRejected) {
			fmt.Fprintf(os.Stderr, "odcs: %v\n", err)
		}
		os.Exit(1)
	}
}
