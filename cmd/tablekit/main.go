// Command tablekit is a terminal editor for curated database tables.
package main

import (
	"os"

	"github.com/tablekit/tablekit/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
