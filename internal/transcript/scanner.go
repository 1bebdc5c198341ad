package transcript

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Field names of a course entry, in layout order. An entry reads
//
//	(SUBJ<number>) (<title>) (<component>) (<units>) (<grade>)
//
// where any text without parentheses may sit between the fields.
const (
	FieldNumber    = "number"
	FieldTitle     = "title"
	FieldComponent = "component"
	FieldUnits     = "units"
	FieldGrade     = "grade"
)

var taggedFields = []string{FieldTitle, FieldComponent, FieldUnits, FieldGrade}

// entryGrammars[k] matches the course number followed by the first k tagged
// fields; the last element is the full entry grammar.
var entryGrammars = buildEntryGrammars()

func buildEntryGrammars() []*regexp.Regexp {
	pattern := `^(?P<` + FieldNumber + `>[^()]*)\)`
	grammars := []*regexp.Regexp{regexp.MustCompile(pattern)}
	for _, name := range taggedFields {
		pattern += `[^()]*\((?P<` + name + `>[^()]*)\)`
		grammars = append(grammars, regexp.MustCompile(pattern))
	}
	return grammars
}

// Entry is one course occurrence read from page text.
type Entry struct {
	Subject   string
	Number    string
	Title     string
	Component string
	Units     int
	Grade     string
	// Offset is the byte offset of the subject marker in the scanned text.
	Offset int
}

// Code returns the subject and number joined, e.g. PHY621.
func (e Entry) Code() string {
	return e.Subject + e.Number
}

// Course returns the (code, credits) pair of the entry.
func (e Entry) Course() Course {
	return Course{Code: e.Code(), Credits: e.Units}
}

// nextEntryPattern matches the start of another entry for subject: the
// marker directly followed by a course number. Titles such as
// "(PHYSICS LAB)" do not match.
func nextEntryPattern(subject string) *regexp.Regexp {
	return regexp.MustCompile(`\(` + regexp.QuoteMeta(subject) + `\s*[0-9]`)
}

// Scan returns every course entry for subject in text, in text order.
// Several entries may share a line. An occurrence of the subject marker
// that does not carry all four tagged fields before the next entry starts
// is a *ParseError.
func Scan(text, subject string) ([]Entry, error) {
	if subject == "" {
		return nil, errors.New("transcript: empty subject code")
	}

	marker := "(" + subject
	grammar := entryGrammars[len(entryGrammars)-1]
	next := nextEntryPattern(subject)

	var entries []Entry
	pos := 0
	for pos < len(text) {
		i := strings.Index(text[pos:], marker)
		if i < 0 {
			break
		}
		start := pos + i
		body := text[start+len(marker):]
		if loc := next.FindStringIndex(body); loc != nil {
			body = body[:loc[0]]
		}

		m := grammar.FindStringSubmatch(body)
		if m == nil {
			return nil, &ParseError{
				Subject: subject,
				Offset:  start,
				Field:   firstMissingField(body),
				Snippet: snippet(text, start),
				Err:     ErrMalformed,
			}
		}

		entry, err := newEntry(subject, start, grammar, m)
		if err != nil {
			var perr *ParseError
			if errors.As(err, &perr) {
				perr.Snippet = snippet(text, start)
			}
			return nil, err
		}
		entries = append(entries, entry)
		pos = start + len(marker) + len(m[0])
	}

	return entries, nil
}

// firstMissingField names the first field the entry grammar could not read.
func firstMissingField(body string) string {
	if !entryGrammars[0].MatchString(body) {
		return FieldNumber
	}
	for k := 1; k < len(entryGrammars); k++ {
		if !entryGrammars[k].MatchString(body) {
			return taggedFields[k-1]
		}
	}
	return FieldGrade
}

func newEntry(subject string, offset int, grammar *regexp.Regexp, m []string) (Entry, error) {
	get := func(name string) string {
		return strings.TrimSpace(m[grammar.SubexpIndex(name)])
	}

	entry := Entry{
		Subject:   subject,
		Number:    get(FieldNumber),
		Title:     get(FieldTitle),
		Component: get(FieldComponent),
		Grade:     get(FieldGrade),
		Offset:    offset,
	}
	if entry.Number == "" {
		return Entry{}, &ParseError{Subject: subject, Offset: offset, Field: FieldNumber, Err: ErrMalformed}
	}

	units, err := ParseUnits(get(FieldUnits))
	if err != nil {
		return Entry{}, &ParseError{Subject: subject, Offset: offset, Field: FieldUnits, Err: err}
	}
	entry.Units = units

	return entry, nil
}

// maxUnits bounds a single entry's credit value.
const maxUnits = 999

// ParseUnits reads a float-formatted credit value such as "3.000" and
// truncates it to whole credit hours.
func ParseUnits(s string) (int, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid credit value %q", ErrMalformed, s)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 || f > maxUnits {
		return 0, fmt.Errorf("%w: invalid credit value %q", ErrMalformed, s)
	}
	return int(f), nil
}
