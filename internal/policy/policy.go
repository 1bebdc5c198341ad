// Package policy holds the institutional rules a transcript is audited
// against: course catalogs, credit thresholds, grade tables and the textual
// markers of the transcript layout.
package policy

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/gradaudit/gradaudit/internal/transcript"
)

//go:embed default.yaml
var defaultPolicy []byte

// Policy is a versioned set of program rules.
type Policy struct {
	Version    string             `yaml:"version" json:"version" validate:"required"`
	Program    string             `yaml:"program" json:"program" validate:"required"`
	Layout     transcript.Markers `yaml:"layout" json:"layout"`
	Subjects   []Subject          `yaml:"subjects" json:"subjects" validate:"required,min=1,dive"`
	Grading    Grading            `yaml:"grading" json:"grading"`
	Catalog    Catalog            `yaml:"catalog" json:"catalog"`
	Thresholds Thresholds         `yaml:"thresholds" json:"thresholds"`
}

// Subject selects the scans a subject code takes part in.
type Subject struct {
	Code    string `yaml:"code" json:"code" validate:"required,alpha,uppercase"`
	History bool   `yaml:"history" json:"history"`
	Current bool   `yaml:"current" json:"current"`
}

// Grading holds the grade table of each scanning context. History applies
// to the whole record; Current applies to the current term section, where
// grades that are not yet posted still count as registrations.
type Grading struct {
	History transcript.GradeTable `yaml:"history" json:"history"`
	Current transcript.GradeTable `yaml:"current" json:"current"`
}

// Catalog lists the course requirements of the program.
type Catalog struct {
	Core      []transcript.Course `yaml:"core" json:"core" validate:"required,min=1,dive"`
	Skills    []transcript.Course `yaml:"skills" json:"skills" validate:"required,min=1,dive"`
	Electives []transcript.Course `yaml:"electives" json:"electives" validate:"dive"`
	// ElectiveCredit is the credit counted for each completed elective.
	ElectiveCredit int `yaml:"elective_credit" json:"elective_credit" validate:"gt=0"`
	// Repeatable courses may be taken in several terms; their credits count
	// toward the elective requirement.
	Repeatable []string `yaml:"repeatable" json:"repeatable" validate:"dive,required"`
	// Continuation is the zero-credit course ABD students register for.
	Continuation transcript.Course `yaml:"continuation" json:"continuation"`
	// Terminal is the dissertation course code. It is excluded from the
	// pending credit of the current term and must carry credit.
	Terminal string `yaml:"terminal" json:"terminal" validate:"required"`
}

// Thresholds are the credit-hour limits of the program.
type Thresholds struct {
	ABDCredits           int `yaml:"abd_credits" json:"abd_credits" validate:"gt=0"`
	FullLoad             int `yaml:"full_load" json:"full_load" validate:"gt=0"`
	ElectiveMinimum      int `yaml:"elective_minimum" json:"elective_minimum" validate:"gte=0"`
	ResearchOralDeadline int `yaml:"research_oral_deadline" json:"research_oral_deadline" validate:"gt=0"`
}

// Default returns the built-in policy. It panics if the embedded policy is
// invalid.
func Default() *Policy {
	p, err := Parse(defaultPolicy)
	if err != nil {
		panic(fmt.Sprintf("policy: embedded default is invalid: %v", err))
	}
	return p
}

// Parse reads a complete policy document.
func Parse(data []byte) (*Policy, error) {
	p := &Policy{}
	if err := decode(data, p); err != nil {
		return nil, err
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Load reads a policy file and layers it over the default policy. Fields the
// file omits keep their default values; lists given in the file replace the
// default lists.
func Load(path string) (*Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read policy file: %w", err)
	}

	p := Default()
	if err := decode(data, p); err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return p, nil
}

func decode(data []byte, p *Policy) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(p); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to parse policy: %w", err)
	}
	return nil
}

// YAML serializes the policy.
func (p *Policy) YAML() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(p); err != nil {
		return nil, fmt.Errorf("failed to serialize policy: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Core returns the required core courses.
func (p *Policy) Core() transcript.CourseSet {
	return transcript.NewCourseSet(p.Catalog.Core...)
}

// Skills returns the skills courses, any one of which satisfies the
// requirement.
func (p *Policy) Skills() transcript.CourseSet {
	return transcript.NewCourseSet(p.Catalog.Skills...)
}

// Electives returns the elective catalog.
func (p *Policy) Electives() transcript.CourseSet {
	return transcript.NewCourseSet(p.Catalog.Electives...)
}

// IsRepeatable reports whether code is a repeatable course.
func (p *Policy) IsRepeatable(code string) bool {
	for _, c := range p.Catalog.Repeatable {
		if c == code {
			return true
		}
	}
	return false
}

// ParseOptions returns the transcript parse options for auditing term.
func (p *Policy) ParseOptions(term string) transcript.ParseOptions {
	opts := transcript.ParseOptions{
		Term:    term,
		Program: p.Program,
		Markers: p.Layout,
	}
	for _, s := range p.Subjects {
		if s.History {
			opts.History = append(opts.History, transcript.Rule{
				Subject:    s.Code,
				Grades:     p.Grading.History,
				Repeatable: p.Catalog.Repeatable,
			})
		}
		if s.Current {
			opts.Current = append(opts.Current, transcript.Rule{
				Subject:    s.Code,
				Grades:     p.Grading.Current,
				Repeatable: p.Catalog.Repeatable,
			})
		}
	}
	return opts
}
