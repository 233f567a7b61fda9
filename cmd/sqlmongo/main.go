// Package main is the entry point for the sqlmongo CLI.
package main

import (
	"os"

	"github.com/roach88/sqlmongo/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(cli.GetExitCode(err))
	}
}
