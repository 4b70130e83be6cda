// Package main provides the entry point for the restring CLI tool.
package main

import (
	"fmt"
	"os"

	"github.com/Sumatoshi-tech/restring/cmd/restring/commands"
	"github.com/Sumatoshi-tech/restring/pkg/version"
)

func main() {
	version.InitBinaryVersion()

	err := commands.NewRootCommand().Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
