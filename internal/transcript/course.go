// Package transcript parses extracted transcript page text into course sets
// and student summaries.
package transcript

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Course is a (code, credits) pair. Two courses are the same course only if
// both the code and the credit hours match.
type Course struct {
	Code    string `json:"code" yaml:"code"`
	Credits int    `json:"credits" yaml:"credits"`
}

// String returns the course as CODE(credits), e.g. PHY621(3).
func (c Course) String() string {
	return fmt.Sprintf("%s(%d)", c.Code, c.Credits)
}

// CourseSet is a set of courses.
//
// Set operations return new sets and never modify their receiver; Add is
// only meant for building a set that has not been shared yet.
type CourseSet map[Course]struct{}

// NewCourseSet creates a set from the given courses.
func NewCourseSet(courses ...Course) CourseSet {
	s := make(CourseSet, len(courses))
	for _, c := range courses {
		s[c] = struct{}{}
	}
	return s
}

// Add adds a course to the set.
func (s CourseSet) Add(c Course) {
	s[c] = struct{}{}
}

// Contains reports whether the exact (code, credits) pair is in the set.
func (s CourseSet) Contains(c Course) bool {
	_, ok := s[c]
	return ok
}

// FindCode returns the first course with the given code, ignoring credits.
func (s CourseSet) FindCode(code string) (Course, bool) {
	for c := range s {
		if c.Code == code {
			return c, true
		}
	}
	return Course{}, false
}

// Len returns the number of courses.
func (s CourseSet) Len() int {
	return len(s)
}

// Clone returns a copy of the set.
func (s CourseSet) Clone() CourseSet {
	out := make(CourseSet, len(s))
	for c := range s {
		out[c] = struct{}{}
	}
	return out
}

// Union returns the courses in either set.
func (s CourseSet) Union(other CourseSet) CourseSet {
	out := s.Clone()
	for c := range other {
		out[c] = struct{}{}
	}
	return out
}

// Difference returns the courses in s that are not in other.
func (s CourseSet) Difference(other CourseSet) CourseSet {
	out := make(CourseSet)
	for c := range s {
		if !other.Contains(c) {
			out[c] = struct{}{}
		}
	}
	return out
}

// Intersect returns the courses present in both sets.
func (s CourseSet) Intersect(other CourseSet) CourseSet {
	out := make(CourseSet)
	for c := range s {
		if other.Contains(c) {
			out[c] = struct{}{}
		}
	}
	return out
}

// IsSuperset reports whether every course of other is in s.
func (s CourseSet) IsSuperset(other CourseSet) bool {
	for c := range other {
		if !s.Contains(c) {
			return false
		}
	}
	return true
}

// Credits returns the sum of credit hours in the set.
func (s CourseSet) Credits() int {
	total := 0
	for c := range s {
		total += c.Credits
	}
	return total
}

// Sorted returns the courses ordered by code, then credits.
func (s CourseSet) Sorted() []Course {
	out := make([]Course, 0, len(s))
	for c := range s {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Code != out[j].Code {
			return out[i].Code < out[j].Code
		}
		return out[i].Credits < out[j].Credits
	})
	return out
}

// String returns the set as {A(3), B(3)} in sorted order.
func (s CourseSet) String() string {
	parts := make([]string, 0, len(s))
	for _, c := range s.Sorted() {
		parts = append(parts, c.String())
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// MarshalJSON encodes the set as an array in sorted order.
func (s CourseSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Sorted())
}

// UnmarshalJSON decodes an array of courses.
func (s *CourseSet) UnmarshalJSON(data []byte) error {
	var courses []Course
	if err := json.Unmarshal(data, &courses); err != nil {
		return err
	}
	*s = NewCourseSet(courses...)
	return nil
}
