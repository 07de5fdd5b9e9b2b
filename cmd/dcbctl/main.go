// Command dcbctl operates an event log of the DCB runtime: schema setup, command batches,
// entity inspection, tailing, and a contention simulation.
package main

import (
	"fmt"
	"os"

	"github.com/dcbkit/dcb-runtime-go/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, "dcbctl:", err)
		os.Exit(1)
	}
}
