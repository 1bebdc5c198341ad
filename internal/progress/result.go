// Package progress evaluates a parsed transcript summary against a program
// policy and reports milestone progress and registration health.
package progress

import (
	"fmt"
	"strings"

	"github.com/gradaudit/gradaudit/internal/transcript"
)

// Registration is the registration-health status of a student.
type Registration string

const (
	RegistrationOK      Registration = "OK"
	RegistrationOver    Registration = "Over"
	RegistrationUnder   Registration = "Under"
	RegistrationProblem Registration = "Problem"
)

// String returns the string representation of the registration status.
func (r Registration) String() string {
	return string(r)
}

// IsOK returns true if no registration check fired.
func (r Registration) IsOK() bool {
	return r == RegistrationOK
}

// ProgramStatus is the furthest milestone a student has reached.
type ProgramStatus string

const (
	StatusPreQualifier       ProgramStatus = "Pre-qualifier"
	StatusPassedQualifier    ProgramStatus = "Passed qualifier"
	StatusPassedResearchOral ProgramStatus = "Passed research oral"
	StatusEligibleForABD     ProgramStatus = "Eligible for ABD"
	StatusABD                ProgramStatus = "ABD"
)

// String returns the string representation of the program status.
func (s ProgramStatus) String() string {
	return string(s)
}

// Severity ranks a diagnostic. Critical sits above Error and marks
// conditions that need immediate attention from the graduate office.
type Severity int

const (
	SeverityDebug Severity = iota
	SeverityInfo
	SeverityWarning
	SeverityError
	SeverityCritical
)

var severityNames = []string{"debug", "info", "warning", "error", "critical"}

// String returns the lowercase severity name.
func (s Severity) String() string {
	if s < SeverityDebug || s > SeverityCritical {
		return fmt.Sprintf("severity(%d)", int(s))
	}
	return severityNames[s]
}

// ParseSeverity parses a severity name, case-insensitive.
func ParseSeverity(s string) (Severity, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if name == "warn" {
		return SeverityWarning, nil
	}
	for i, n := range severityNames {
		if n == name {
			return Severity(i), nil
		}
	}
	return SeverityInfo, fmt.Errorf("invalid severity: %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Severity) UnmarshalText(text []byte) error {
	parsed, err := ParseSeverity(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Diagnostic is one entry of the evaluation log.
type Diagnostic struct {
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

// String formats the diagnostic as "[severity] message".
func (d Diagnostic) String() string {
	return fmt.Sprintf("[%s] %s", d.Severity, d.Message)
}

// Result is the evaluation of one student.
type Result struct {
	StudentID string `json:"student_id"`
	Name      string `json:"name,omitempty"`

	Registration Registration  `json:"registration"`
	Program      ProgramStatus `json:"program"`

	Core                bool `json:"core"`
	Skills              bool `json:"skills"`
	Elective            bool `json:"elective"`
	Qualifier           bool `json:"qualifier"`
	ResearchOral        bool `json:"research_oral"`
	ABD                 bool `json:"abd"`
	ResearchOralOverdue bool `json:"research_oral_overdue"`

	CreditsEarned          int `json:"credits_earned"`
	TransferCredits        int `json:"transfer_credits"`
	CreditsRemaining       int `json:"credits_remaining"`
	ElectiveCredits        int `json:"elective_credits"`
	PendingCredit          int `json:"pending_credit"`
	PendingNotPostedCredit int `json:"pending_not_posted_credit"`
	NextTermAward          int `json:"next_term_award"`

	CurrentTerm   transcript.CourseSet `json:"current_term"`
	MissingGrades transcript.CourseSet `json:"missing_grades"`

	// Diagnostics is append-only; it records every check that fired even
	// when a later check overwrote Registration.
	Diagnostics []Diagnostic `json:"diagnostics"`
}

func (r *Result) log(sev Severity, format string, args ...any) {
	r.Diagnostics = append(r.Diagnostics, Diagnostic{Severity: sev, Message: fmt.Sprintf(format, args...)})
}

// Comments returns the messages of diagnostics at or above min, in order.
func (r *Result) Comments(min Severity) []string {
	var out []string
	for _, d := range r.Diagnostics {
		if d.Severity >= min {
			out = append(out, d.Message)
		}
	}
	return out
}

// MaxSeverity returns the highest severity recorded, or SeverityDebug when
// there are no diagnostics.
func (r *Result) MaxSeverity() Severity {
	max := SeverityDebug
	for _, d := range r.Diagnostics {
		if d.Severity > max {
			max = d.Severity
		}
	}
	return max
}

// YesNo renders a flag the way reports print it.
func YesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
