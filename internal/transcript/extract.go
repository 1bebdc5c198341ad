package transcript

import (
	"slices"
	"sort"
)

// Extraction holds the completed and in-progress course sets built up by
// one or more calls to Extract.
type Extraction struct {
	Completed  CourseSet `json:"completed"`
	InProgress CourseSet `json:"in_progress"`
}

// NewExtraction returns an extraction with two empty sets.
func NewExtraction() Extraction {
	return Extraction{
		Completed:  make(CourseSet),
		InProgress: make(CourseSet),
	}
}

// Clone returns a deep copy.
func (x Extraction) Clone() Extraction {
	out := NewExtraction()
	for c := range x.Completed {
		out.Completed[c] = struct{}{}
	}
	for c := range x.InProgress {
		out.InProgress[c] = struct{}{}
	}
	return out
}

// Combined returns the union of both sets. Each repeatable course is
// folded into one entry carrying its credits from both sets.
func (x Extraction) Combined(repeatable []string) CourseSet {
	out := make(CourseSet, x.Completed.Len()+x.InProgress.Len())
	totals := map[string]int{}
	for _, set := range []CourseSet{x.Completed, x.InProgress} {
		for c := range set {
			if slices.Contains(repeatable, c.Code) {
				totals[c.Code] += c.Credits
				continue
			}
			out.Add(c)
		}
	}
	for code, credits := range totals {
		if credits > 0 {
			out.Add(Course{Code: code, Credits: credits})
		}
	}
	return out
}

func (x Extraction) bucket(b Bucket) CourseSet {
	if b == BucketValid {
		return x.Completed
	}
	return x.InProgress
}

// Rule scopes one Extract call.
type Rule struct {
	// Subject is the subject code whose entries are read, e.g. PHY.
	Subject string
	// Grades classifies each entry's grade.
	Grades GradeTable
	// Repeatable lists course codes that may be taken several times for
	// varying credit. Their credits are summed into one entry per set.
	Repeatable []string
}

func (r Rule) isRepeatable(code string) bool {
	for _, c := range r.Repeatable {
		if c == code {
			return true
		}
	}
	return false
}

// Extract scans text for entries of rule.Subject and folds them into acc,
// returning a new Extraction. acc is not modified, so extractions for
// several subjects can be chained:
//
//	x, err := Extract(text, phy, NewExtraction())
//	x, err = Extract(text, grd, x)
//
// Text without any entry for the subject returns a copy of acc. A malformed
// entry aborts the extraction with a *ParseError.
func Extract(text string, rule Rule, acc Extraction) (Extraction, error) {
	entries, err := Scan(text, rule.Subject)
	if err != nil {
		return acc, err
	}

	out := acc.Clone()

	// repeated[bucket][code] accumulates repeatable course credits.
	repeated := map[Bucket]map[string]int{}
	for _, e := range entries {
		b := rule.Grades.Classify(e.Grade)
		if b == BucketSkip {
			continue
		}
		if rule.isRepeatable(e.Code()) {
			if repeated[b] == nil {
				repeated[b] = map[string]int{}
			}
			repeated[b][e.Code()] += e.Units
			continue
		}
		out.bucket(b).Add(e.Course())
	}

	for _, b := range []Bucket{BucketValid, BucketPending} {
		totals := repeated[b]
		codes := make([]string, 0, len(totals))
		for code := range totals {
			codes = append(codes, code)
		}
		sort.Strings(codes)

		set := out.bucket(b)
		for _, code := range codes {
			credits := totals[code]
			if prior, ok := set.FindCode(code); ok {
				delete(set, prior)
				credits += prior.Credits
			}
			if credits > 0 {
				set.Add(Course{Code: code, Credits: credits})
			}
		}
	}

	return out, nil
}
