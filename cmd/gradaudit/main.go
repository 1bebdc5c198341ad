// Package main provides the entry point for the gradaudit CLI.
package main

import (
	"errors"
	"os"

	"github.com/gradaudit/gradaudit/internal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		// SilenceErrors suppresses Cobra's own output
		var exitErr *cmd.ExitError
		if errors.As(err, &exitErr) {
			if exitErr.Message != "" {
				os.Stderr.WriteString("Error: " + exitErr.Message + "\n")
			}
			os.Exit(exitErr.Code)
		}
		os.Stderr.WriteString("Error: " + err.Error() + "\n")
		os.Exit(1)
	}
}
