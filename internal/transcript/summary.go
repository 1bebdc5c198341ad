package transcript

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Markers are the literal tokens that identify sections and milestones in a
// transcript page.
type Markers struct {
	Undergraduate  string `yaml:"undergraduate" json:"undergraduate" validate:"required"`
	ABD            string `yaml:"abd" json:"abd" validate:"required"`
	Qualifier      string `yaml:"qualifier" json:"qualifier" validate:"required"`
	ResearchOral   string `yaml:"research_oral" json:"research_oral" validate:"required"`
	SummaryStart   string `yaml:"summary_start" json:"summary_start" validate:"required"`
	SummaryEnd     string `yaml:"summary_end" json:"summary_end" validate:"required"`
	CreditsEarned  string `yaml:"credits_earned" json:"credits_earned" validate:"required"`
	TransferCredit string `yaml:"transfer_credit" json:"transfer_credit" validate:"required"`
}

// DefaultMarkers returns the markers of the graduate record layout.
func DefaultMarkers() Markers {
	return Markers{
		Undergraduate:  "Undergrad",
		ABD:            "(All But Dissertation)",
		Qualifier:      "(Qualifying Exam 1)",
		ResearchOral:   "(Qualifying Exam 2)",
		SummaryStart:   "(** Graduate Record Credit Summary **)",
		SummaryEnd:     "(End of Graduate Record)",
		CreditsEarned:  "Total Units Earned",
		TransferCredit: "Transfer Credit",
	}
}

// ParseOptions controls how a page is turned into a Summary.
type ParseOptions struct {
	// Term is the label of the term being evaluated, e.g. "Fall 2020".
	Term string
	// Program is the suffix that follows the term label in term headers,
	// e.g. "Physics" for "(Fall 2020-Physics)".
	Program string
	Markers Markers
	// History rules are applied to the whole page.
	History []Rule
	// Current rules are applied to the text after the current term header.
	Current []Rule
}

// TermMarker returns the header text that opens the current term section.
func (o ParseOptions) TermMarker() string {
	if o.Term == "" {
		return ""
	}
	if o.Program == "" {
		return o.Term + ")"
	}
	return o.Term + "-" + o.Program + ")"
}

// CurrentTermText returns the text following the last current term header,
// or "" if the page has no such header.
func (o ParseOptions) CurrentTermText(text string) string {
	marker := o.TermMarker()
	if marker == "" {
		return ""
	}
	i := strings.LastIndex(text, marker)
	if i < 0 {
		return ""
	}
	return text[i+len(marker):]
}

// Summary is everything the evaluator needs to know about one student.
type Summary struct {
	StudentID       string `json:"student_id"`
	Name            string `json:"name,omitempty"`
	Undergraduate   bool   `json:"undergraduate,omitempty"`
	CreditsEarned   int    `json:"credits_earned"`
	TransferCredits int    `json:"transfer_credits"`

	ABD                bool `json:"abd"`
	PassedQualifier    bool `json:"passed_qualifier"`
	PassedResearchOral bool `json:"passed_research_oral"`

	Completed   CourseSet `json:"completed"`
	InProgress  CourseSet `json:"in_progress"`
	CurrentTerm CourseSet `json:"current_term"`
}

var studentIDPattern = regexp.MustCompile(`\((?P<id>[0-9]{5}-[0-9]{4})\)`)

// summaryFieldPattern matches "(Label: value)" tokens in the credit summary.
var summaryFieldPattern = regexp.MustCompile(`\((?P<label>[^():]*):(?P<value>[^()]*)\)`)

// ParseStudent builds a Summary from one page of transcript text.
//
// Undergraduate pages return a Summary with Undergraduate set and nothing
// else guaranteed. A missing student ID, a missing credit summary or any
// malformed course entry is a *ParseError.
func ParseStudent(text string, opts ParseOptions) (*Summary, error) {
	if m := opts.Markers.Undergraduate; m != "" && strings.Contains(text, m) {
		id, _ := ParseStudentID(text)
		return &Summary{StudentID: id, Undergraduate: true}, nil
	}

	id, err := ParseStudentID(text)
	if err != nil {
		return nil, err
	}

	s := &Summary{
		StudentID:          id,
		ABD:                hasMarker(text, opts.Markers.ABD),
		PassedQualifier:    hasMarker(text, opts.Markers.Qualifier),
		PassedResearchOral: hasMarker(text, opts.Markers.ResearchOral),
	}

	s.CreditsEarned, s.TransferCredits, err = ParseCreditSummary(text, opts.Markers)
	if err != nil {
		return nil, err
	}

	history := NewExtraction()
	for _, rule := range opts.History {
		if history, err = Extract(text, rule, history); err != nil {
			return nil, err
		}
	}

	section := opts.CurrentTermText(text)
	current := NewExtraction()
	var repeatable []string
	for _, rule := range opts.Current {
		repeatable = append(repeatable, rule.Repeatable...)
		if current, err = Extract(section, rule, current); err != nil {
			return nil, fmt.Errorf("current term %q: %w", opts.Term, err)
		}
	}

	s.Completed = history.Completed
	s.InProgress = history.InProgress
	s.CurrentTerm = current.Combined(repeatable)
	return s, nil
}

// ParseStudentID returns the first NNNNN-NNNN identifier on the page.
func ParseStudentID(text string) (string, error) {
	m := studentIDPattern.FindStringSubmatch(text)
	if m == nil {
		return "", missingField("student id")
	}
	return m[studentIDPattern.SubexpIndex("id")], nil
}

// ParseCreditSummary reads total earned and transfer credits from the
// credit summary block. The block and its earned-credit line are required;
// transfer credit defaults to zero.
func ParseCreditSummary(text string, markers Markers) (earned, transfer int, err error) {
	start := strings.Index(text, markers.SummaryStart)
	if markers.SummaryStart == "" || start < 0 {
		return 0, 0, missingField("credit summary")
	}
	block := text[start+len(markers.SummaryStart):]
	if end := strings.Index(block, markers.SummaryEnd); markers.SummaryEnd != "" && end >= 0 {
		block = block[:end]
	}

	foundEarned := false
	for _, m := range summaryFieldPattern.FindAllStringSubmatchIndex(block, -1) {
		label := strings.TrimSpace(block[m[2]:m[3]])
		value := strings.TrimSpace(block[m[4]:m[5]])

		switch label {
		case markers.CreditsEarned:
			if earned, err = summaryValue(label, value, start+len(markers.SummaryStart)+m[0]); err != nil {
				return 0, 0, err
			}
			foundEarned = true
		case markers.TransferCredit:
			if transfer, err = summaryValue(label, value, start+len(markers.SummaryStart)+m[0]); err != nil {
				return 0, 0, err
			}
		}
	}

	if !foundEarned {
		return 0, 0, missingField(markers.CreditsEarned)
	}
	return earned, transfer, nil
}

func summaryValue(label, value string, offset int) (int, error) {
	f, err := strconv.ParseFloat(value, 64)
	if err != nil || f < 0 {
		if err == nil {
			err = errors.New("negative value")
		}
		return 0, &ParseError{
			Offset: offset,
			Field:  label,
			Err:    fmt.Errorf("%w: %q: %v", ErrMalformed, value, err),
		}
	}
	return int(f), nil
}

func hasMarker(text, marker string) bool {
	return marker != "" && strings.Contains(text, marker)
}
