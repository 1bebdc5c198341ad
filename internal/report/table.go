package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/gradaudit/gradaudit/internal/audit"
	"github.com/gradaudit/gradaudit/internal/output"
	"github.com/gradaudit/gradaudit/internal/progress"
)

const (
	headerWidth   = 80
	commentsWidth = 60
)

// RenderTable writes a terminal report: a header, one table row per
// evaluated student, the pages that were not evaluated, and a summary.
// With opts.Verbose every diagnostic is listed under its student.
func RenderTable(w io.Writer, b *audit.Batch, opts Options) error {
	title := opts.Title
	if title == "" {
		title = "Graduate Progress " + b.Term
	}
	fmt.Fprintln(w, output.Header(title, headerWidth))
	fmt.Fprintln(w)

	results := output.NewTable("Student ID", "Name", "Registration", "Program", "Core", "Skills", "Elective", "Credits", "Award", "Comments")
	for _, o := range b.Outcomes {
		if o.Result == nil {
			continue
		}
		r := o.Result
		comment := ""
		if comments := r.Comments(opts.MinSeverity); len(comments) > 0 {
			comment = comments[0]
			if len(comments) > 1 {
				comment = fmt.Sprintf("%s (+%d)", comment, len(comments)-1)
			}
		}
		results.AddRow(
			r.StudentID,
			r.Name,
			output.Registration(r.Registration.String()),
			r.Program.String(),
			output.Checkmark(r.Core),
			output.Checkmark(r.Skills),
			output.Checkmark(r.Elective),
			credits(r, opts.TotalCredits),
			strconv.Itoa(r.NextTermAward),
			output.Truncate(comment, commentsWidth),
		)
	}
	if results.Len() > 0 {
		if _, err := results.WriteTo(w); err != nil {
			return err
		}
		fmt.Fprintln(w)
	}

	if opts.Verbose {
		for _, r := range b.Results() {
			if len(r.Diagnostics) == 0 {
				continue
			}
			fmt.Fprintln(w, output.SubHeader(r.StudentID, headerWidth))
			for _, d := range r.Diagnostics {
				if d.Severity < opts.MinSeverity {
					continue
				}
				fmt.Fprintf(w, "  %s %s\n", output.Severity(d.Severity.String()), d.Message)
			}
		}
		fmt.Fprintln(w)
	}

	other := output.NewTable("Source", "Student ID", "Outcome", "Reason")
	for _, o := range b.Outcomes {
		if o.Status == audit.StatusEvaluated {
			continue
		}
		other.AddRow(o.Page.String(), o.StudentID, string(o.Status), o.Error)
	}
	if other.Len() > 0 {
		fmt.Fprintln(w, output.SubHeader("Not evaluated", headerWidth))
		if _, err := other.WriteTo(w); err != nil {
			return err
		}
		fmt.Fprintln(w)
	}

	percent := 0.0
	if b.Counts.Evaluated > 0 {
		percent = float64(b.Counts.Evaluated-b.Counts.Flagged) / float64(b.Counts.Evaluated) * 100
	}
	_, err := fmt.Fprintf(w, "%s %.0f%% registered OK\n%s\n", output.ProgressBar(percent, 30), percent, b.Summary())
	return err
}

func credits(r *progress.Result, total int) string {
	if total <= 0 {
		return strconv.Itoa(r.CreditsEarned)
	}
	return output.Credits(r.CreditsEarned, total)
}
