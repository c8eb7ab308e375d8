// Command nmsweep finds and deletes node_modules directories and reports the reclaimed space.
package main

import (
	"fmt"
	"os"

	"github.com/idelchi/nmsweep/internal/cli"
)

// Global variable for CI stamping.
var version = "unknown - unofficial & generated by unknown"

func main() {
	if err := cli.New(version).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)

		os.Exit(cli.ExitCode(err))
	}
}
