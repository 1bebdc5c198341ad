// Package roster resolves student identifiers to student records.
package roster

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrNotFound is returned when a roster has no record for an identifier.
var ErrNotFound = errors.New("student not found in roster")

// Student is one roster record.
type Student struct {
	ID          int64  `db:"id" json:"id"`
	Name        string `db:"name" json:"name"`
	Citizenship string `db:"citizenship" json:"citizenship,omitempty"`
	Email       string `db:"email" json:"email,omitempty"`
}

// Roster looks up students by numeric identifier.
type Roster interface {
	// Lookup returns the student with the given ID. A miss is reported as
	// an error wrapping ErrNotFound.
	Lookup(ctx context.Context, id int64) (Student, error)
}

// ParseID converts a transcript identifier such as "12345-6789" to its
// numeric form 123456789. The undashed form is accepted as well.
func ParseID(s string) (int64, error) {
	s = strings.TrimSpace(s)
	digits := s
	if len(s) == 10 && s[5] == '-' {
		digits = s[:5] + s[6:]
	}
	if len(digits) != 9 || strings.Trim(digits, "0123456789") != "" {
		return 0, fmt.Errorf("invalid student id: %q", s)
	}
	return strconv.ParseInt(digits, 10, 64)
}

// FormatID returns the dashed transcript form of a numeric identifier.
func FormatID(id int64) string {
	s := fmt.Sprintf("%09d", id)
	return s[:5] + "-" + s[5:]
}

// Static is an in-memory roster.
type Static struct {
	students map[int64]Student
}

// NewStatic creates a roster holding the given students.
func NewStatic(students ...Student) *Static {
	r := &Static{students: make(map[int64]Student, len(students))}
	for _, s := range students {
		r.students[s.ID] = s
	}
	return r
}

// Lookup implements Roster.
func (r *Static) Lookup(_ context.Context, id int64) (Student, error) {
	s, ok := r.students[id]
	if !ok {
		return Student{}, fmt.Errorf("%s: %w", FormatID(id), ErrNotFound)
	}
	return s, nil
}

// Len returns the number of students.
func (r *Static) Len() int {
	return len(r.students)
}
