// Package testutil provides fixtures and helpers for gradaudit tests.
package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// Milestone markers as they appear on a graduate record.
const (
	MarkerABD          = "(All But Dissertation)"
	MarkerQualifier    = "(Qualifying Exam 1)"
	MarkerResearchOral = "(Qualifying Exam 2)"
)

// CourseLine is one course row of a synthetic transcript.
type CourseLine struct {
	Subject string
	Number  string
	Title   string
	Units   float64
	Grade   string
}

// Course creates a course row with a generated title.
func Course(subject, number string, units float64, grade string) CourseLine {
	return CourseLine{
		Subject: subject,
		Number:  number,
		Title:   "Course " + subject + " " + number,
		Units:   units,
		Grade:   grade,
	}
}

// Render returns the row in the tagged-field layout.
func (c CourseLine) Render() string {
	return fmt.Sprintf("(%s%s)(%s)(LEC)(%.3f)(%s)", c.Subject, c.Number, c.Title, c.Units, c.Grade)
}

type term struct {
	label   string
	courses []CourseLine
}

// Page describes a synthetic transcript page.
type Page struct {
	id            string
	program       string
	undergraduate bool
	milestones    []string
	terms         []term
	earned        float64
	transfer      float64
	summary       bool
	trailer       []string
}

// PageOption configures a test page.
type PageOption func(*Page)

// NewPage renders a transcript page for the given student ID. By default the
// page has no terms, no milestones and a credit summary of zero credits.
func NewPage(id string, opts ...PageOption) string {
	p := &Page{
		id:      id,
		program: "Physics",
		summary: true,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p.render()
}

// WithProgram sets the program suffix used in term headers.
func WithProgram(program string) PageOption {
	return func(p *Page) {
		p.program = program
	}
}

// WithTerm appends a term header followed by its course rows.
func WithTerm(label string, courses ...CourseLine) PageOption {
	return func(p *Page) {
		p.terms = append(p.terms, term{label: label, courses: courses})
	}
}

// WithMilestones adds milestone markers such as MarkerQualifier.
func WithMilestones(markers ...string) PageOption {
	return func(p *Page) {
		p.milestones = append(p.milestones, markers...)
	}
}

// WithCredits sets the credit summary values.
func WithCredits(earned, transfer float64) PageOption {
	return func(p *Page) {
		p.earned = earned
		p.transfer = transfer
	}
}

// WithoutSummary omits the credit summary block.
func WithoutSummary() PageOption {
	return func(p *Page) {
		p.summary = false
	}
}

// AsUndergraduate renders an undergraduate record.
func AsUndergraduate() PageOption {
	return func(p *Page) {
		p.undergraduate = true
	}
}

// WithRaw appends raw text after the last term.
func WithRaw(text string) PageOption {
	return func(p *Page) {
		p.trailer = append(p.trailer, text)
	}
}

func (p *Page) render() string {
	var sb strings.Builder

	sb.WriteString("(Syracuse University)(Official Transcript)\n")
	if p.undergraduate {
		sb.WriteString("(Undergraduate Record)\n")
	} else {
		sb.WriteString("(Graduate Record)\n")
	}
	if p.id != "" {
		fmt.Fprintf(&sb, "(Student ID)(%s)\n", p.id)
	}

	for _, m := range p.milestones {
		sb.WriteString("(Milestone)" + m + "\n")
	}

	for _, t := range p.terms {
		fmt.Fprintf(&sb, "(%s-%s)\n", t.label, p.program)
		for _, c := range t.courses {
			sb.WriteString(c.Render() + "\n")
		}
	}

	for _, raw := range p.trailer {
		sb.WriteString(raw + "\n")
	}

	if p.summary {
		sb.WriteString("(** Graduate Record Credit Summary **)")
		fmt.Fprintf(&sb, "(Total Units Earned: %.3f)", p.earned)
		fmt.Fprintf(&sb, "(Transfer Credit: %.3f)", p.transfer)
		sb.WriteString("(End of Graduate Record)\n")
	}

	return sb.String()
}

// WriteFile writes content to name inside dir and returns the full path.
func WriteFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("Failed to create directory for %s: %v", name, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write %s: %v", name, err)
	}
	return path
}

// JoinPages joins pages with the form feed page separator.
func JoinPages(pages ...string) string {
	return strings.Join(pages, "\f")
}
