// Command postsync fetches social post drafts and edits them through their
// synchronized views.
package main

import (
	"fmt"
	"os"

	"github.com/1njure/mpit25-NetJaggers/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(cli.GetExitCode(err))
	}
}
