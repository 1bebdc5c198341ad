package policy

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/gradaudit/gradaudit/internal/transcript"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	v.RegisterStructValidation(validateCourse, transcript.Course{})
	return v
}

func validateCourse(sl validator.StructLevel) {
	c := sl.Current().Interface().(transcript.Course)
	if strings.TrimSpace(c.Code) == "" {
		sl.ReportError(c.Code, "code", "Code", "required", "")
	}
	if c.Credits < 0 {
		sl.ReportError(c.Credits, "credits", "Credits", "gte", "0")
	}
}

// Validate checks the policy for missing or out-of-range values.
func (p *Policy) Validate() error {
	if err := validate.Struct(p); err != nil {
		return formatValidation(err)
	}

	var problems []string
	hasHistory := false
	for _, s := range p.Subjects {
		hasHistory = hasHistory || s.History
	}
	if !hasHistory {
		problems = append(problems, "subjects: at least one subject must be scanned in history")
	}
	if p.Catalog.Continuation.Credits != 0 {
		problems = append(problems, fmt.Sprintf("catalog.continuation: %s must be a zero-credit course", p.Catalog.Continuation))
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid policy: %s", strings.Join(problems, "; "))
	}
	return nil
}

func formatValidation(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("invalid policy: %w", err)
	}

	problems := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := fe.Namespace()
		if i := strings.Index(field, "."); i >= 0 {
			field = field[i+1:]
		}
		if fe.Param() != "" {
			problems = append(problems, fmt.Sprintf("%s: failed %s=%s", field, fe.Tag(), fe.Param()))
		} else {
			problems = append(problems, fmt.Sprintf("%s: failed %s", field, fe.Tag()))
		}
	}
	return fmt.Errorf("invalid policy: %s", strings.Join(problems, "; "))
}
