// Package audit runs transcript pages through parsing, roster enrichment and
// progress evaluation, one student at a time.
package audit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/gradaudit/gradaudit/internal/policy"
	"github.com/gradaudit/gradaudit/internal/progress"
	"github.com/gradaudit/gradaudit/internal/roster"
	"github.com/gradaudit/gradaudit/internal/transcript"
)

// Status is the outcome of processing one page.
type Status string

const (
	// StatusEvaluated means the page produced a progress result.
	StatusEvaluated Status = "evaluated"
	// StatusSkipped means the page is an undergraduate record.
	StatusSkipped Status = "skipped"
	// StatusRejected means the student is not in the roster.
	StatusRejected Status = "rejected"
	// StatusFailed means the page could not be parsed or enriched.
	StatusFailed Status = "failed"
)

// Outcome is the result of processing one page.
type Outcome struct {
	Page      Page             `json:"-"`
	Source    string           `json:"source"`
	PageNum   int              `json:"page"`
	StudentID string           `json:"student_id,omitempty"`
	Status    Status           `json:"status"`
	Result    *progress.Result `json:"result,omitempty"`
	Err       error            `json:"-"`
	Error     string           `json:"error,omitempty"`
}

// Counts tallies outcomes by status.
type Counts struct {
	Pages     int `json:"pages"`
	Evaluated int `json:"evaluated"`
	Skipped   int `json:"skipped"`
	Rejected  int `json:"rejected"`
	Failed    int `json:"failed"`
	// Flagged counts evaluated students whose registration is not OK.
	Flagged int `json:"flagged"`
}

// Batch is the outcome of a run.
type Batch struct {
	RunID         string    `json:"run_id"`
	Term          string    `json:"term"`
	PolicyVersion string    `json:"policy_version"`
	StartedAt     time.Time `json:"started_at"`
	Outcomes      []Outcome `json:"outcomes"`
	Counts        Counts    `json:"counts"`
}

// Clean reports whether no record was rejected or failed.
func (b *Batch) Clean() bool {
	return b.Counts.Rejected == 0 && b.Counts.Failed == 0
}

// Results returns the progress results of evaluated pages in input order.
func (b *Batch) Results() []*progress.Result {
	var out []*progress.Result
	for _, o := range b.Outcomes {
		if o.Result != nil {
			out = append(out, o.Result)
		}
	}
	return out
}

func (b *Batch) add(o Outcome) {
	b.Outcomes = append(b.Outcomes, o)
	b.Counts.Pages++
	switch o.Status {
	case StatusEvaluated:
		b.Counts.Evaluated++
		if !o.Result.Registration.IsOK() {
			b.Counts.Flagged++
		}
	case StatusSkipped:
		b.Counts.Skipped++
	case StatusRejected:
		b.Counts.Rejected++
	case StatusFailed:
		b.Counts.Failed++
	}
}

// Runner audits transcript pages against one policy and term.
type Runner struct {
	policy    *policy.Policy
	evaluator *progress.Evaluator
	options   transcript.ParseOptions
	term      string
	roster    roster.Roster
	logger    *zap.Logger
	runID     string
	now       func() time.Time
}

// Option configures a Runner.
type Option func(*Runner)

// WithRoster enriches each student from r and rejects students r does not
// know.
func WithRoster(r roster.Roster) Option {
	return func(rn *Runner) {
		rn.roster = r
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(rn *Runner) {
		rn.logger = l
	}
}

// WithRunID sets the run identifier instead of a random one.
func WithRunID(id string) Option {
	return func(rn *Runner) {
		rn.runID = id
	}
}

// WithClock sets the clock used for batch timestamps.
func WithClock(now func() time.Time) Option {
	return func(rn *Runner) {
		rn.now = now
	}
}

// NewRunner creates a runner for term under p.
func NewRunner(p *policy.Policy, term string, opts ...Option) *Runner {
	r := &Runner{
		policy:    p,
		evaluator: progress.NewEvaluator(p),
		options:   p.ParseOptions(term),
		term:      term,
		logger:    zap.NewNop(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.runID == "" {
		r.runID = uuid.NewString()
	}
	r.logger = r.logger.With(zap.String("run_id", r.runID))
	return r
}

// RunID returns the run identifier attached to every log entry.
func (r *Runner) RunID() string {
	return r.runID
}

// Run processes pages in order. A failing page is recorded in its outcome
// and the run continues; cancelling ctx stops the run and returns the
// outcomes gathered so far along with the context error.
func (r *Runner) Run(ctx context.Context, pages []Page) (*Batch, error) {
	batch := &Batch{
		RunID:         r.runID,
		Term:          r.term,
		PolicyVersion: r.policy.Version,
		StartedAt:     r.now().UTC(),
	}

	r.logger.Info("audit started",
		zap.String("term", r.term),
		zap.String("policy_version", r.policy.Version),
		zap.Int("pages", len(pages)))

	for _, page := range pages {
		if err := ctx.Err(); err != nil {
			r.logger.Warn("audit cancelled", zap.Int("processed", batch.Counts.Pages), zap.Error(err))
			return batch, err
		}
		batch.add(r.Process(ctx, page))
	}

	r.logger.Info("audit finished",
		zap.Int("evaluated", batch.Counts.Evaluated),
		zap.Int("skipped", batch.Counts.Skipped),
		zap.Int("rejected", batch.Counts.Rejected),
		zap.Int("failed", batch.Counts.Failed),
		zap.Int("flagged", batch.Counts.Flagged))

	return batch, nil
}

// Process audits a single page.
func (r *Runner) Process(ctx context.Context, page Page) Outcome {
	out := Outcome{Page: page, Source: page.Source, PageNum: page.Number}
	log := r.logger.With(zap.String("page", page.String()))

	summary, err := transcript.ParseStudent(page.Text, r.options)
	if err != nil {
		log.Error("failed to parse transcript", zap.Error(err))
		return out.fail(StatusFailed, err)
	}
	out.StudentID = summary.StudentID
	log = log.With(zap.String("student_id", summary.StudentID))

	if summary.Undergraduate {
		log.Debug("skipping undergraduate record")
		out.Status = StatusSkipped
		return out
	}

	if r.roster != nil {
		student, err := r.lookup(ctx, summary.StudentID)
		if err != nil {
			if errors.Is(err, roster.ErrNotFound) {
				log.Error("student not in roster", zap.Error(err))
				return out.fail(StatusRejected, err)
			}
			log.Error("roster lookup failed", zap.Error(err))
			return out.fail(StatusFailed, err)
		}
		summary.Name = student.Name
	}

	result := r.evaluator.Evaluate(summary)
	for _, d := range result.Diagnostics {
		logDiagnostic(log, d)
	}
	log.Info("student evaluated",
		zap.String("registration", result.Registration.String()),
		zap.String("program", result.Program.String()),
		zap.Stringer("max_severity", result.MaxSeverity()),
		zap.Int("credits_earned", result.CreditsEarned),
		zap.Int("next_term_award", result.NextTermAward))

	out.Status = StatusEvaluated
	out.Result = result
	return out
}

func (r *Runner) lookup(ctx context.Context, studentID string) (roster.Student, error) {
	id, err := roster.ParseID(studentID)
	if err != nil {
		return roster.Student{}, err
	}
	return r.roster.Lookup(ctx, id)
}

func (o Outcome) fail(status Status, err error) Outcome {
	o.Status = status
	o.Err = err
	o.Error = err.Error()
	return o
}

// LevelFor maps a diagnostic severity to a zap level. Critical has no zap
// counterpart below panic and is logged at error level.
func LevelFor(s progress.Severity) zapcore.Level {
	switch s {
	case progress.SeverityDebug:
		return zapcore.DebugLevel
	case progress.SeverityInfo:
		return zapcore.InfoLevel
	case progress.SeverityWarning:
		return zapcore.WarnLevel
	default:
		return zapcore.ErrorLevel
	}
}

func logDiagnostic(log *zap.Logger, d progress.Diagnostic) {
	if d.Severity == progress.SeverityCritical {
		log.Log(LevelFor(d.Severity), d.Message, zap.Bool("critical", true))
		return
	}
	log.Log(LevelFor(d.Severity), d.Message)
}

// Summary returns a one-line description of the batch counts.
func (b *Batch) Summary() string {
	return fmt.Sprintf("%d pages: %d evaluated, %d flagged, %d skipped, %d rejected, %d failed",
		b.Counts.Pages, b.Counts.Evaluated, b.Counts.Flagged, b.Counts.Skipped, b.Counts.Rejected, b.Counts.Failed)
}
