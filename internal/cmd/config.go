package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/gradaudit/gradaudit/internal/config"
	"github.com/gradaudit/gradaudit/internal/output"
)

var (
	configValidate bool
	configInit     bool
	configFormat   string
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or validate gradaudit configuration",
	Long: `Display the effective configuration after merging defaults, the config
file, .env and GRADAUDIT_* variables.

Examples:
    gradaudit config                     # Show current config
    gradaudit config --validate          # Check config validity and paths
    gradaudit config --init              # Write gradaudit.yaml with the defaults
    gradaudit config --format yaml       # Output as YAML`,
	RunE: runConfig,
}

func init() {
	configCmd.Flags().BoolVar(&configValidate, "validate", false, "validate configuration and check paths")
	configCmd.Flags().BoolVar(&configInit, "init", false, "write a default config file (gradaudit.yaml, or the --config path)")
	configCmd.Flags().StringVar(&configFormat, "format", "terminal", "output format: terminal, yaml, json")

	rootCmd.AddCommand(configCmd)
}

func runConfig(cmd *cobra.Command, args []string) error {
	if configInit {
		return initConfig(cmd)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if configValidate {
		return validateConfig(cmd, cfg)
	}

	return displayConfig(cmd, cfg)
}

// initConfig writes the default configuration. An existing file is never
// overwritten.
func initConfig(cmd *cobra.Command) error {
	path := cfgFile
	if path == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return NewExitError(ExitFatal, fmt.Sprintf("failed to get current directory: %v", err))
		}
		path = filepath.Join(cwd, "gradaudit.yaml")
	}

	if _, err := os.Stat(path); err == nil {
		return NewExitError(ExitFatal, fmt.Sprintf("config file already exists: %s", path))
	}
	if err := config.DefaultConfig().Save(path); err != nil {
		return NewExitError(ExitFatal, err.Error())
	}

	cmd.Printf("%s Created %s\n", output.Pass("[PASS]"), path)
	return nil
}

// configPath returns the file the configuration came from, or "".
func configPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}
	path, _ := config.FindConfig(cwd)
	return path
}

func validateConfig(cmd *cobra.Command, cfg *config.Config) error {
	width := 80
	cmd.Println(output.Header("Configuration Validation", width))
	cmd.Println()

	errors := []string{}
	warnings := []string{}
	pass := func(format string, args ...any) {
		cmd.Printf("  %s %s\n", output.Pass("[PASS]"), fmt.Sprintf(format, args...))
	}

	if path := configPath(); path == "" {
		warnings = append(warnings, "Config file not found (using defaults)")
	} else {
		pass("Config file: %s", path)
	}

	if err := cfg.Validate(); err != nil {
		errors = append(errors, err.Error())
	} else {
		pass("Settings")
	}

	if cfg.Gradaudit.Term == "" {
		warnings = append(warnings, "No term configured (pass --term to audit)")
	} else {
		pass("Term: %s", cfg.Gradaudit.Term)
	}

	if p, err := loadPolicy(cfg.Gradaudit.Policy); err != nil {
		errors = append(errors, err.Error())
	} else if cfg.Gradaudit.Policy == "" {
		pass("Policy: built-in %s", p.Version)
	} else {
		pass("Policy: %s (%s)", cfg.Gradaudit.Policy, p.Version)
	}

	switch roster := cfg.Gradaudit.Roster; {
	case roster.File != "":
		if _, err := os.Stat(roster.File); err != nil {
			errors = append(errors, fmt.Sprintf("Roster not found: %s", roster.File))
		} else {
			pass("Roster: %s", roster.File)
		}
	case roster.DSN != "":
		pass("Roster: database")
	default:
		warnings = append(warnings, "No roster configured (records are not enriched)")
	}

	cmd.Println()

	for _, e := range errors {
		cmd.Printf("  %s %s\n", output.Fail("[FAIL]"), e)
	}
	for _, w := range warnings {
		cmd.Printf("  %s %s\n", output.Warn("[WARN]"), w)
	}

	cmd.Println()

	if len(errors) > 0 {
		cmd.Printf("Status: %s\n", output.Fail("INVALID"))
		return NewExitError(ExitFatal, "configuration validation failed")
	} else if len(warnings) > 0 {
		cmd.Printf("Status: %s\n", output.Warn("VALID (with warnings)"))
	} else {
		cmd.Printf("Status: %s\n", output.Pass("VALID"))
	}

	return nil
}

func displayConfig(cmd *cobra.Command, cfg *config.Config) error {
	shown := *cfg
	if shown.Gradaudit.Roster.DSN != "" {
		shown.Gradaudit.Roster.DSN = "(redacted)"
	}
	cfg = &shown

	switch configFormat {
	case "json":
		data, err := json.MarshalIndent(cfg.Gradaudit, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal config: %w", err)
		}
		cmd.Println(string(data))
		return nil
	case "yaml":
		data, err := yaml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("failed to marshal config: %w", err)
		}
		cmd.Print(string(data))
		return nil
	default:
		return displayConfigTerminal(cmd, cfg)
	}
}

func displayConfigTerminal(cmd *cobra.Command, cfg *config.Config) error {
	width := 80
	cmd.Println(output.Header("gradaudit Configuration", width))
	cmd.Println()

	g := cfg.Gradaudit
	path := configPath()
	if path == "" {
		path = "(defaults)"
	}
	policyPath := g.Policy
	if policyPath == "" {
		policyPath = "(built-in)"
	}

	cmd.Println("Audit:")
	cmd.Printf("  Config file: %s\n", path)
	cmd.Printf("  Term:        %s\n", g.Term)
	cmd.Printf("  Policy:      %s\n", policyPath)
	cmd.Println()

	cmd.Println("Roster:")
	switch {
	case g.Roster.File != "":
		cmd.Printf("  File: %s\n", g.Roster.File)
	case g.Roster.DSN != "":
		cmd.Println("  Database: (dsn set)")
	default:
		cmd.Println("  (none)")
	}
	cmd.Println()

	cmd.Println("Output:")
	cmd.Printf("  Format: %s\n", g.Output.Format)
	if g.Output.Path != "" {
		cmd.Printf("  Path:   %s\n", g.Output.Path)
	}
	cmd.Printf("  Log:    %s (%s)\n", g.Log.Level, g.Log.Format)
	cmd.Println()

	return nil
}
