package main

import (
	"fmt"
	"os"

	"github.com/hugo-lorenzo-mato/flowrunner/cmd/flowrunner/cmd"
)

// Version information - set by goreleaser at build time
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	cmd.SetVersion(version, commit, date)

	if err := cmd.Execute(); err != nil {
		// Diagnostics go to stderr; stdout stays machine readable.
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cmd.ExitCode(err))
	}
}
