package transcript

import (
	"fmt"
	"strings"
)

// Bucket is the classification of a posted grade.
type Bucket int

const (
	// BucketPending marks a course still in progress. It is the zero value so
	// unknown grades stay in progress.
	BucketPending Bucket = iota
	// BucketValid marks a completed course.
	BucketValid
	// BucketSkip marks a course that contributes nothing (withdrawn, audited, failed).
	BucketSkip
)

// String returns the lowercase bucket name.
func (b Bucket) String() string {
	switch b {
	case BucketValid:
		return "valid"
	case BucketSkip:
		return "skip"
	default:
		return "pending"
	}
}

// ParseBucket parses a bucket name, case-insensitive.
func ParseBucket(s string) (Bucket, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "valid", "completed":
		return BucketValid, nil
	case "skip":
		return BucketSkip, nil
	case "pending", "in_progress", "":
		return BucketPending, nil
	default:
		return BucketPending, fmt.Errorf("invalid grade bucket: %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (b Bucket) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (b *Bucket) UnmarshalText(text []byte) error {
	parsed, err := ParseBucket(string(text))
	if err != nil {
		return err
	}
	*b = parsed
	return nil
}

// GradeTable maps grade tokens to buckets for one scanning context.
// Skip is consulted first, then Valid, then Pending; anything else falls
// into Default.
type GradeTable struct {
	Valid   []string `yaml:"valid,omitempty" json:"valid,omitempty"`
	Pending []string `yaml:"pending,omitempty" json:"pending,omitempty"`
	Skip    []string `yaml:"skip,omitempty" json:"skip,omitempty"`
	Default Bucket   `yaml:"default" json:"default"`
}

// Classify returns the bucket for a grade token. Surrounding whitespace is
// ignored.
func (g GradeTable) Classify(grade string) Bucket {
	grade = strings.TrimSpace(grade)
	switch {
	case containsToken(g.Skip, grade):
		return BucketSkip
	case containsToken(g.Valid, grade):
		return BucketValid
	case containsToken(g.Pending, grade):
		return BucketPending
	default:
		return g.Default
	}
}

func containsToken(list []string, token string) bool {
	for _, item := range list {
		if item == token {
			return true
		}
	}
	return false
}
