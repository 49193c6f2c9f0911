// Command oneof converts, validates and stores tagged union envelopes.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/oneof/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "oneof:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
