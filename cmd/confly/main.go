package main

import (
	"errors"
	"fmt"
	"os"
	"runtime"

	"github.com/nauticalab/confly/internal/cli"
)

// Build-time variables (set with -ldflags "-X main.version=...")
var (
	version   = "dev"
	buildTime = "unknown"
	gitCommit = "unknown"
	goVersion = runtime.Version()
)

func main() {
	err := rootCmd.Execute()
	if logger != nil {
		_ = logger.Sync()
	}
	if err != nil {
		// Validation problems have already been printed
		if !errors.Is(err, cli.ErrValidationFailed) {
			fmt.Fprintf(os.Stderr, "❌ Error: %v\n", err)
		}
		os.Exit(1)
	}
}
