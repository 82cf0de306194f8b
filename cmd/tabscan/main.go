// Command tabscan detects tables on page images and extracts their contents.
package main

import (
	"fmt"
	"os"

	"github.com/tsawler/tabscan/cmd/tabscan/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
