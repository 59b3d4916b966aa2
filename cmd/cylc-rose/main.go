// Package main provides the entry point for the cylc-rose CLI.
package main

import (
	"fmt"
	"os"

	"github.com/cylc/cylc-rose/cmd/cylc-rose/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
