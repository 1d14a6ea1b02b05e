// Command storyloom plays and tests branching stories.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/storyloom/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.GetExitCode(err))
	}
}
