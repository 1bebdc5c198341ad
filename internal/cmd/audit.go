package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gradaudit/gradaudit/internal/audit"
	"github.com/gradaudit/gradaudit/internal/config"
	"github.com/gradaudit/gradaudit/internal/output"
	"github.com/gradaudit/gradaudit/internal/policy"
	"github.com/gradaudit/gradaudit/internal/progress"
	"github.com/gradaudit/gradaudit/internal/report"
	"github.com/gradaudit/gradaudit/internal/roster"
)

var (
	auditTerm        string
	auditProgram     string
	auditPolicy      string
	auditRoster      string
	auditRosterDSN   string
	auditFormat      string
	auditOut         string
	auditMinSeverity string
	auditVerbose     bool
)

var auditCmd = &cobra.Command{
	Use:   "audit <transcripts>...",
	Short: "Evaluate transcripts and report student progress",
	Long: `Read transcript text files (pages separated by form feeds, "-" for stdin),
evaluate every graduate record against the program policy and report the
results.

Exit codes:
  0  All records evaluated or skipped
  1  Some records were rejected by the roster or failed to parse
  2  The audit could not run (bad config, policy, roster or input)

Examples:
    gradaudit audit --term "Fall 2020" transcripts.txt
    gradaudit audit --roster roster.csv --format pdf --out fall.pdf transcripts.txt
    pdftotext export.pdf - | gradaudit audit --term "Fall 2020" -`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAudit,
}

func init() {
	auditCmd.Flags().StringVarP(&auditTerm, "term", "t", "", `term being audited, e.g. "Fall 2020"`)
	auditCmd.Flags().StringVar(&auditProgram, "program", "", "program suffix of the term header (default from policy)")
	auditCmd.Flags().StringVarP(&auditPolicy, "policy", "p", "", "policy file layered over the built-in policy")
	auditCmd.Flags().StringVar(&auditRoster, "roster", "", "CSV roster file")
	auditCmd.Flags().StringVar(&auditRosterDSN, "roster-dsn", "", "PostgreSQL roster connection string")
	auditCmd.Flags().StringVarP(&auditFormat, "format", "f", "", "report format: table, json, csv, pdf")
	auditCmd.Flags().StringVarP(&auditOut, "out", "o", "", "report file (default: stdout)")
	auditCmd.Flags().StringVar(&auditMinSeverity, "min-severity", "warning", "lowest diagnostic severity shown in comments")
	auditCmd.Flags().BoolVarP(&auditVerbose, "verbose", "v", false, "list every diagnostic in table output")

	rootCmd.AddCommand(auditCmd)
}

func runAudit(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	g := &cfg.Gradaudit
	override(&g.Term, auditTerm)
	override(&g.Policy, auditPolicy)
	override(&g.Output.Format, auditFormat)
	override(&g.Output.Path, auditOut)
	if auditRoster != "" || auditRosterDSN != "" {
		g.Roster = config.RosterConfig{File: auditRoster, DSN: auditRosterDSN}
	}

	if err := cfg.Validate(); err != nil {
		return NewExitError(ExitFatal, err.Error())
	}
	if err := cfg.RequireTerm(); err != nil {
		return NewExitError(ExitFatal, err.Error())
	}
	minSeverity, err := progress.ParseSeverity(auditMinSeverity)
	if err != nil {
		return NewExitError(ExitFatal, err.Error())
	}

	logger, err := newLogger(cmd, cfg)
	if err != nil {
		return NewExitError(ExitFatal, fmt.Sprintf("failed to create logger: %v", err))
	}
	defer logger.Sync() //nolint:errcheck

	p, err := loadPolicy(g.Policy)
	if err != nil {
		return NewExitError(ExitFatal, err.Error())
	}
	if auditProgram != "" {
		p.Program = auditProgram
	}

	ctx := cmd.Context()
	opts := []audit.Option{audit.WithLogger(logger)}
	r, closeRoster, err := openRoster(ctx, g.Roster)
	if err != nil {
		return NewExitError(ExitFatal, err.Error())
	}
	defer closeRoster()
	if r != nil {
		opts = append(opts, audit.WithRoster(r))
	}

	pages, err := readPages(cmd.InOrStdin(), args)
	if err != nil {
		return NewExitError(ExitFatal, err.Error())
	}
	logger.Debug("pages loaded", zap.Int("pages", len(pages)), zap.Strings("files", args))

	runner := audit.NewRunner(p, g.Term, opts...)
	batch, runErr := runner.Run(ctx, pages)

	if err := writeReport(cmd, g.Output, batch, report.Options{
		MinSeverity:  minSeverity,
		TotalCredits: p.Thresholds.ABDCredits,
		Verbose:      auditVerbose,
	}); err != nil {
		return NewExitError(ExitFatal, err.Error())
	}

	if runErr != nil {
		return NewExitError(ExitFatal, fmt.Sprintf("audit interrupted: %v", runErr))
	}
	if !batch.Clean() {
		return NewExitError(ExitRecords, fmt.Sprintf("%d records rejected, %d failed", batch.Counts.Rejected, batch.Counts.Failed))
	}
	return nil
}

// loadPolicy returns the built-in policy, or path layered over it.
func loadPolicy(path string) (*policy.Policy, error) {
	if path == "" {
		return policy.Default(), nil
	}
	p, err := policy.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load policy: %w", err)
	}
	return p, nil
}

// openRoster opens the configured roster. It returns a nil roster when none
// is configured; the close func is always safe to call.
func openRoster(ctx context.Context, cfg config.RosterConfig) (roster.Roster, func(), error) {
	switch {
	case cfg.File != "":
		r, err := roster.LoadCSV(cfg.File)
		if err != nil {
			return nil, func() {}, err
		}
		return r, func() {}, nil
	case cfg.DSN != "":
		r, err := roster.OpenSQL(ctx, cfg.DSN)
		if err != nil {
			return nil, func() {}, err
		}
		return r, func() { _ = r.Close() }, nil
	default:
		return nil, func() {}, nil
	}
}

func readPages(stdin io.Reader, args []string) ([]audit.Page, error) {
	var pages []audit.Page
	for _, arg := range args {
		var (
			filePages []audit.Page
			err       error
		)
		if arg == "-" {
			filePages, err = audit.ReadPages(stdin, "stdin")
		} else {
			filePages, err = audit.ReadPageFile(arg)
		}
		if err != nil {
			return nil, err
		}
		pages = append(pages, filePages...)
	}
	return pages, nil
}

// createReport opens the report file. Tests replace it.
var createReport = func(path string) (io.WriteCloser, error) {
	return os.Create(path)
}

func writeReport(cmd *cobra.Command, cfg config.OutputConfig, batch *audit.Batch, opts report.Options) error {
	if cfg.Path == "" {
		return report.Write(cmd.OutOrStdout(), cfg.Format, batch, opts)
	}

	f, err := createReport(cfg.Path)
	if err != nil {
		return fmt.Errorf("failed to create report: %w", err)
	}
	output.DisableColor()
	if err := report.Write(f, cfg.Format, batch, opts); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	cmd.PrintErrf("Wrote %s report to %s (%s)\n", cfg.Format, cfg.Path, batch.Summary())
	return nil
}
