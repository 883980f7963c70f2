package main

import (
	"os"

	"github.com/jandubois/scale-health/cmd"
	"github.com/jandubois/scale-health/internal/probe"
)

func main() {
	if err := cmd.Execute(); err != nil {
		// The agent reads any other failure as UNKNOWN too.
		os.Exit(probe.StatusUnknown.ExitCode())
	}
}
