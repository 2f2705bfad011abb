// Command tscanon converts exported TypeScript type declarations into a
// canonical type graph.
package main

import (
	"os"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "0.1.0-dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
