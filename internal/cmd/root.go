// Package cmd provides the CLI commands for gradaudit.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gradaudit/gradaudit/internal/config"
	"github.com/gradaudit/gradaudit/internal/logging"
	"github.com/gradaudit/gradaudit/internal/output"
)

var (
	// Version is set at build time via ldflags.
	Version = "dev"
	// Commit is set at build time via ldflags.
	Commit = "none"
	// Date is set at build time via ldflags.
	Date = "unknown"
)

var (
	cfgFile   string
	envFile   string
	noColor   bool
	logLevel  string
	logFormat string
)

// getenv is swapped in tests.
var getenv = os.Getenv

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "gradaudit",
	Short: "Graduate transcript auditing toolkit",
	Long: `gradaudit reads exported graduate transcripts and reports each doctoral
student's progress: required coursework, qualifying exams, ABD eligibility,
registration load and next-term credit award.

Configuration is read from .gradaudit/config.yaml or gradaudit.yaml (searched
upward from the working directory), then a .env file, then GRADAUDIT_*
environment variables, then command-line flags.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command. Interrupts cancel the running audit.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: .gradaudit/config.yaml or gradaudit.yaml)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "environment file loaded before GRADAUDIT_* overrides")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format: console, json")

	rootCmd.AddCommand(versionCmd)
}

// loadConfig builds the effective configuration: file, .env, environment,
// then the global flags. Any failure is fatal.
func loadConfig() (*config.Config, error) {
	if noColor {
		output.DisableColor()
	}

	var (
		cfg *config.Config
		err error
	)
	if cfgFile != "" {
		cfg, err = config.LoadResolved(cfgFile)
	} else {
		var cwd string
		cwd, err = os.Getwd()
		if err != nil {
			return nil, NewExitError(ExitFatal, fmt.Sprintf("failed to get working directory: %v", err))
		}
		cfg, err = config.LoadFromDir(cwd)
	}
	if err != nil {
		return nil, NewExitError(ExitFatal, fmt.Sprintf("failed to load config: %v", err))
	}

	if envFile != "" {
		if err := config.LoadEnvFile(envFile); err != nil {
			return nil, NewExitError(ExitFatal, err.Error())
		}
	}
	cfg.ApplyEnv(getenv)

	override(&cfg.Gradaudit.Log.Level, logLevel)
	override(&cfg.Gradaudit.Log.Format, logFormat)
	return cfg, nil
}

func override(dst *string, flag string) {
	if flag != "" {
		*dst = flag
	}
}

// newLogger returns the logger for cmd. Logs go to the command's error
// stream so they never mix with a report written to stdout.
func newLogger(cmd *cobra.Command, cfg *config.Config) (*zap.Logger, error) {
	w := cmd.ErrOrStderr()
	if w == os.Stderr {
		return logging.New(cfg.Gradaudit.Log.Level, cfg.Gradaudit.Log.Format)
	}
	return logging.NewWriter(w, cfg.Gradaudit.Log.Level, cfg.Gradaudit.Log.Format), nil
}
