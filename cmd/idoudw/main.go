// Package main provides the idoudw CLI for the IDOU-DW-PG formula compiler.
package main

import (
	"fmt"
	"os"

	"github.com/ProcedureOriented/IDOU-DW-PG/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
