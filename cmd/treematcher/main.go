// Command treematcher searches Newick trees for nodes matching a tree pattern.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "treematcher:", err)
		os.Exit(GetExitCode(err))
	}
}
