// Package main is the entry point for the ikconform CLI.
package main

import (
	"os"

	"github.com/tverberg/ikconform/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		os.Exit(cli.GetExitCode(err))
	}
}
