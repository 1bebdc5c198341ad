package cmd

import (
	"runtime"

	"github.com/spf13/cobra"

	"github.com/gradaudit/gradaudit/internal/policy"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Print the version, commit hash, build date, built-in policy version and Go version.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.Printf("gradaudit version %s\n", Version)
		cmd.Printf("  commit:  %s\n", Commit)
		cmd.Printf("  built:   %s\n", Date)
		cmd.Printf("  policy:  %s\n", policy.Default().Version)
		cmd.Printf("  go:      %s\n", runtime.Version())
		cmd.Printf("  os/arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		return nil
	},
}
