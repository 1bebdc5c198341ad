package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gradaudit/gradaudit/internal/output"
	"github.com/gradaudit/gradaudit/internal/policy"
)

var (
	policyValidate bool
	policyFormat   string
)

var policyCmd = &cobra.Command{
	Use:   "policy [file]",
	Short: "Show or validate the program policy",
	Long: `Display the effective program policy: the built-in policy with the given
file (or the configured policy file) layered over it.

Examples:
    gradaudit policy                          # Show the effective policy
    gradaudit policy policies/2021.yaml       # Show a policy file merged with the defaults
    gradaudit policy --validate 2021.yaml     # Check a policy file
    gradaudit policy --format json            # Output as JSON`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPolicy,
}

func init() {
	policyCmd.Flags().BoolVar(&policyValidate, "validate", false, "validate the policy and print a summary")
	policyCmd.Flags().StringVar(&policyFormat, "format", "yaml", "output format: yaml, json")

	rootCmd.AddCommand(policyCmd)
}

func runPolicy(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	path := cfg.Gradaudit.Policy
	if len(args) == 1 {
		path = args[0]
	}

	p, err := loadPolicy(path)
	if policyValidate {
		return validatePolicy(cmd, p, path, err)
	}
	if err != nil {
		return NewExitError(ExitFatal, err.Error())
	}

	switch policyFormat {
	case "json":
		data, err := json.MarshalIndent(p, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal policy: %w", err)
		}
		cmd.Println(string(data))
	case "yaml":
		data, err := p.YAML()
		if err != nil {
			return err
		}
		cmd.Print(string(data))
	default:
		return NewExitError(ExitFatal, fmt.Sprintf("unknown policy format %q", policyFormat))
	}
	return nil
}

func validatePolicy(cmd *cobra.Command, p *policy.Policy, path string, loadErr error) error {
	source := path
	if source == "" {
		source = "(built-in)"
	}

	if loadErr != nil {
		cmd.Printf("%s %s\n", output.Fail("[FAIL]"), source)
		cmd.Printf("  %v\n", loadErr)
		return NewExitError(ExitFatal, "policy validation failed")
	}

	cmd.Printf("%s %s\n", output.Pass("[PASS]"), source)
	cmd.Printf("  Version:    %s\n", p.Version)
	cmd.Printf("  Program:    %s\n", p.Program)
	cmd.Printf("  Core:       %s\n", p.Core())
	cmd.Printf("  Skills:     %s\n", p.Skills())
	cmd.Printf("  Electives:  %d courses, %d credits each\n", len(p.Catalog.Electives), p.Catalog.ElectiveCredit)
	cmd.Printf("  ABD:        %d credits\n", p.Thresholds.ABDCredits)
	return nil
}
