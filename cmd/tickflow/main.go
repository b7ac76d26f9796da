// Command tickflow runs tickflow demos from the command line.
package main

import (
	"fmt"
	"os"

	"github.com/randalmurphal/tickflow/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
