// Package main provides the CLI entry point for DynSQL.
package main

import (
	"os"

	"github.com/leapstack-labs/dynsql/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
