// Command mend drives a reconciler over a text file.
package main

import (
	"fmt"
	"os"

	"github.com/zoobzio/capitan"
	"github.com/zoobzio/mend/internal/cli"
)

func main() {
	err := cli.NewRootCommand().Execute()
	capitan.Shutdown()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
