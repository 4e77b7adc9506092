// Command affectgrid serves the affect grid and inspects its data.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/affectgrid/internal/cli"
)

func main() {
	err := cli.NewRootCommand().Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	os.Exit(cli.GetExitCode(err))
}
