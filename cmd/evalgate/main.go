// Command evalgate gates releases on AI eval results.
package main

import (
	"fmt"
	"os"

	"github.com/evalgate/evalgate/internal/cli"
)

func main() {
	err := cli.Execute(os.Stdout, os.Stderr)
	if err != nil {
		if msg := err.Error(); msg != "" {
			fmt.Fprintf(os.Stderr, "evalgate: %s\n", msg)
		}
		os.Exit(cli.ExitCode(err))
	}
}
