// cmd/archguide/main.go
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func versionString() string {
	return fmt.Sprintf("archguide %s (commit: %s, built: %s)", version, commit, date)
}

func main() {
	rootCmd := &cobra.Command{
		Use:           "archguide",
		Short:         "Generate architecture documentation from codebase analysis",
		Long:          "archguide analyzes a project tree for its technology stack and\narchitectural patterns, then drives an external content service to\nproduce confidence-scored documentation guides.",
		Version:       versionString(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(generateCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
