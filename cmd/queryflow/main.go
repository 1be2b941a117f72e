// Package main is the entry point for the queryflow CLI.
package main

import (
	"os"

	"github.com/randalmurphal/queryflow/internal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
