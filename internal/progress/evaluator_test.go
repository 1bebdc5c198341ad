package progress

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gradaudit/gradaudit/internal/policy"
	"github.com/gradaudit/gradaudit/internal/testutil"
	"github.com/gradaudit/gradaudit/internal/transcript"
)

func course(code string, credits int) transcript.Course {
	return transcript.Course{Code: code, Credits: credits}
}

func set(courses ...transcript.Course) transcript.CourseSet {
	return transcript.NewCourseSet(courses...)
}

func requiredCore() []transcript.Course {
	return []transcript.Course{
		course("PHY621", 3), course("PHY641", 3), course("PHY661", 3),
		course("PHY662", 3), course("PHY731", 3),
	}
}

// summary returns a graduate summary with empty course sets.
func summary(earned int) *transcript.Summary {
	return &transcript.Summary{
		StudentID:     "12345-6789",
		CreditsEarned: earned,
		Completed:     set(),
		InProgress:    set(),
		CurrentTerm:   set(),
	}
}

func TestEvaluateScenarioNoMilestones(t *testing.T) {
	s := summary(12)
	s.Completed = set(course("PHY601", 3), course("PHY602", 3))
	s.CurrentTerm = set(course("PHY610", 3), course("PHY620", 3), course("PHY630", 3))

	r := Evaluate(s, policy.Default())
	require.NotNil(t, r)

	assert.False(t, r.Core)
	assert.False(t, r.Skills)
	assert.False(t, r.Elective)
	assert.Equal(t, "No", YesNo(r.ABD))
	assert.Equal(t, RegistrationOK, r.Registration)
	assert.Equal(t, StatusPreQualifier, r.Program)
	assert.Equal(t, 36, r.CreditsRemaining)
	assert.Equal(t, 9, r.PendingCredit)
	assert.Equal(t, 9, r.NextTermAward)
	assert.Empty(t, r.Comments(SeverityError))
	assert.Contains(t, r.Comments(SeverityWarning), "Needs to pass written qualifier")
}

func TestEvaluateScenarioABDWithoutContinuation(t *testing.T) {
	s := summary(50)
	s.ABD = true
	s.PassedQualifier = true
	s.PassedResearchOral = true
	s.CurrentTerm = set(course("PHY999", 9))

	r := Evaluate(s, policy.Default())
	require.NotNil(t, r)

	assert.Equal(t, RegistrationProblem, r.Registration)
	assert.Equal(t, StatusABD, r.Program)
	require.Len(t, r.Comments(SeverityError), 1)
	assert.Contains(t, r.Comments(SeverityError)[0], "{PHY999(9)}")
	assert.Contains(t, r.Comments(SeverityError)[0], "GRD998(0)")
}

func TestEvaluateABDWithContinuation(t *testing.T) {
	s := summary(50)
	s.ABD = true
	s.PassedQualifier = true
	s.PassedResearchOral = true
	s.CurrentTerm = set(course("PHY999", 9), course("GRD998", 0))

	r := Evaluate(s, policy.Default())
	require.NotNil(t, r)
	assert.Equal(t, RegistrationOK, r.Registration)
	assert.Empty(t, r.Comments(SeverityError))
}

func TestEvaluateScenarioRequirementsMet(t *testing.T) {
	s := summary(30)
	s.Completed = set(append(requiredCore(),
		course("PHY514", 3),
		course("PHY607", 3),
		course("PHY690", 3),
	)...)
	s.CurrentTerm = set(course("PHY635", 3), course("PHY638", 3), course("PHY750", 3))

	r := Evaluate(s, policy.Default())
	require.NotNil(t, r)

	assert.True(t, r.Core)
	assert.True(t, r.Skills)
	assert.True(t, r.Elective)
	// PHY731 is both core and elective; with PHY607 and 3 credits of PHY690.
	assert.Equal(t, 9, r.ElectiveCredits)
}

func TestEvaluateScenarioOverRegistered(t *testing.T) {
	s := summary(45)
	s.PassedQualifier = true
	s.PassedResearchOral = true
	s.CurrentTerm = set(course("PHY885", 3), course("PHY890", 3))

	r := Evaluate(s, policy.Default())
	require.NotNil(t, r)

	assert.Equal(t, RegistrationOver, r.Registration)
	assert.Equal(t, 6, r.PendingCredit)
	assert.Equal(t, 3, r.CreditsRemaining)
	assert.Equal(t, 0, r.NextTermAward)

	assert.Contains(t, r.Comments(SeverityWarning), "Over-registered: pending 6, remaining 3")
}

func TestEvaluateCoreRequiresExactPairs(t *testing.T) {
	p := policy.Default()

	full := summary(30)
	full.Completed = set(requiredCore()...)
	require.True(t, Evaluate(full, p).Core)

	for i, c := range requiredCore() {
		mutations := map[string]transcript.Course{
			"credits": course(c.Code, c.Credits+1),
			"code":    course(c.Code+"0", c.Credits),
		}
		for name, replacement := range mutations {
			t.Run(fmt.Sprintf("%s/%s", c.Code, name), func(t *testing.T) {
				courses := requiredCore()
				courses[i] = replacement

				s := summary(30)
				s.Completed = set(courses...)
				assert.False(t, Evaluate(s, p).Core)
			})
		}
	}
}

func TestEvaluateMissingGrades(t *testing.T) {
	s := summary(20)
	s.PassedQualifier = true
	s.InProgress = set(course("PHY641", 3), course("PHY690", 3))
	s.CurrentTerm = set(course("PHY690", 3), course("PHY885", 3), course("PHY886", 3))

	r := Evaluate(s, policy.Default())
	require.NotNil(t, r)

	assert.Equal(t, set(course("PHY641", 3)), r.MissingGrades)
	assert.True(t, s.InProgress.IsSuperset(r.MissingGrades))
	assert.Equal(t, RegistrationProblem, r.Registration)
	assert.Contains(t, r.Comments(SeverityError), "Missing grades for {PHY641(3)}")
}

func TestEvaluateMissingGradesIsSubsetOfInProgress(t *testing.T) {
	p := policy.Default()
	inProgress := set(course("PHY641", 3), course("PHY661", 3), course("PHY690", 6))
	terms := []transcript.CourseSet{
		set(),
		set(course("PHY641", 3)),
		set(course("PHY641", 3), course("PHY661", 3), course("PHY690", 6)),
		set(course("PHY999", 9), course("GRD998", 0)),
	}

	for _, current := range terms {
		s := summary(24)
		s.InProgress = inProgress
		s.CurrentTerm = current

		r := Evaluate(s, p)
		assert.True(t, inProgress.IsSuperset(r.MissingGrades), "missing %s", r.MissingGrades)
		assert.Equal(t, inProgress.Difference(current), r.MissingGrades)
	}
}

func TestEvaluateAwardBounds(t *testing.T) {
	p := policy.Default()
	for earned := 0; earned <= 60; earned += 3 {
		for _, pending := range []int{0, 3, 6, 9, 12} {
			s := summary(earned)
			if pending > 0 {
				s.CurrentTerm = set(course("PHY885", pending))
			}

			r := Evaluate(s, p)
			assert.GreaterOrEqual(t, r.NextTermAward, 0, "earned %d pending %d", earned, pending)
			assert.LessOrEqual(t, r.NextTermAward, 9, "earned %d pending %d", earned, pending)
		}
	}
}

func TestEvaluateSkipsOverCheckPastThreshold(t *testing.T) {
	s := summary(60)
	s.PassedQualifier = true
	s.PassedResearchOral = true
	s.CurrentTerm = set(course("PHY885", 6), course("PHY886", 6))

	r := Evaluate(s, policy.Default())
	require.NotNil(t, r)

	assert.Equal(t, -12, r.CreditsRemaining)
	assert.Equal(t, RegistrationOK, r.Registration)
	assert.Equal(t, 0, r.NextTermAward)
}

func TestEvaluateTerminalAtZeroCredits(t *testing.T) {
	s := summary(40)
	s.PassedQualifier = true
	s.PassedResearchOral = true
	s.CurrentTerm = set(course("PHY999", 0))

	r := Evaluate(s, policy.Default())
	require.NotNil(t, r)

	assert.Equal(t, 0, r.PendingCredit)
	assert.Equal(t, 0, r.PendingNotPostedCredit)
	assert.Equal(t, RegistrationProblem, r.Registration, "problem is written after under")
	assert.Contains(t, r.Comments(SeverityWarning), "Under-registered: registered 0, expected at least 8")
	assert.Contains(t, r.Comments(SeverityError), "Registered for PHY999 with zero credit hours")
}

func TestEvaluateTerminalExcludedFromPending(t *testing.T) {
	s := summary(42)
	s.PassedQualifier = true
	s.PassedResearchOral = true
	s.CurrentTerm = set(course("PHY999", 9))

	r := Evaluate(s, policy.Default())
	require.NotNil(t, r)

	assert.Equal(t, 0, r.PendingCredit)
	assert.Equal(t, 9, r.PendingNotPostedCredit)
	assert.Equal(t, RegistrationOK, r.Registration)
	assert.Equal(t, 6, r.NextTermAward)
}

func TestEvaluatePartialAward(t *testing.T) {
	tests := []struct {
		name         string
		qualifier    bool
		researchOral bool
		want         Registration
		overdue      bool
	}{
		{"oral without qualifier", false, true, RegistrationProblem, false},
		{"overdue oral suppresses", true, false, RegistrationUnder, true},
		{"both exams passed", true, true, RegistrationUnder, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := summary(40)
			s.PassedQualifier = tt.qualifier
			s.PassedResearchOral = tt.researchOral
			s.CurrentTerm = set(course("PHY607", 3))

			r := Evaluate(s, policy.Default())
			require.NotNil(t, r)

			assert.Equal(t, 5, r.NextTermAward)
			assert.Equal(t, tt.overdue, r.ResearchOralOverdue)
			assert.Equal(t, tt.want, r.Registration)
			assert.Contains(t, r.Comments(SeverityWarning), "Under-registered: registered 3, expected at least 8")
		})
	}
}

func TestEvaluateResearchOral(t *testing.T) {
	tests := []struct {
		name      string
		earned    int
		qualifier bool
		want      string
		severity  Severity
	}{
		{"overdue", 37, true, "Research oral overdue with 37 credits earned", SeverityCritical},
		{"overdue without qualifier", 40, false, "Research oral overdue with 40 credits earned", SeverityCritical},
		{"needs oral", 36, true, "Needs to take research oral", SeverityWarning},
		{"needs qualifier", 18, false, "Needs to pass written qualifier", SeverityWarning},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := summary(tt.earned)
			s.PassedQualifier = tt.qualifier

			r := Evaluate(s, policy.Default())
			require.NotNil(t, r)

			assert.Contains(t, r.Diagnostics, Diagnostic{Severity: tt.severity, Message: tt.want})
			assert.Equal(t, tt.severity == SeverityCritical, r.ResearchOralOverdue)
		})
	}
}

func TestEvaluateABDEligibility(t *testing.T) {
	s := summary(48)
	s.PassedQualifier = true
	s.PassedResearchOral = true
	s.Completed = set(append(requiredCore(), course("PHY651", 3))...)
	s.CurrentTerm = set(course("PHY999", 9))

	r := Evaluate(s, policy.Default())
	require.NotNil(t, r)

	assert.Equal(t, StatusEligibleForABD, r.Program)
	assert.Equal(t, RegistrationOK, r.Registration)
	assert.Contains(t, r.Comments(SeverityWarning), "Eligible/overdue to apply for ABD")

	s.CreditsEarned = 39
	r = Evaluate(s, policy.Default())
	assert.Equal(t, StatusPassedResearchOral, r.Program)
	assert.Contains(t, r.Comments(SeverityInfo), "Needs 9 more credits for ABD status")
}

func TestEvaluateDiagnosticsAccumulate(t *testing.T) {
	s := summary(40)
	s.ABD = true
	s.InProgress = set(course("PHY641", 3))
	s.CurrentTerm = set(course("PHY999", 0))

	r := Evaluate(s, policy.Default())
	require.NotNil(t, r)

	errs := r.Comments(SeverityError)
	assert.Contains(t, errs, "Missing grades for {PHY641(3)}")
	assert.Contains(t, errs, "Registered for PHY999 with zero credit hours")
	assert.Contains(t, errs, "Research oral overdue with 40 credits earned")
	assert.Len(t, errs, 4)
	assert.Equal(t, SeverityCritical, r.MaxSeverity())
}

func TestEvaluateSkipsUndergraduate(t *testing.T) {
	assert.Nil(t, Evaluate(&transcript.Summary{Undergraduate: true}, policy.Default()))
	assert.Nil(t, Evaluate(nil, policy.Default()))
}

func TestEvaluateDoesNotAliasCurrentTerm(t *testing.T) {
	s := summary(12)
	s.CurrentTerm = set(course("PHY885", 9))

	r := Evaluate(s, policy.Default())
	r.CurrentTerm.Add(course("PHY886", 3))
	assert.Equal(t, 1, s.CurrentTerm.Len())
}

func TestEvaluateBlob(t *testing.T) {
	p := policy.Default()
	page := testutil.NewPage("12345-6789",
		testutil.WithMilestones(testutil.MarkerQualifier, testutil.MarkerResearchOral),
		testutil.WithCredits(27, 3),
		testutil.WithTerm("Spring 2020",
			testutil.Course("PHY", "621", 3, "A"),
			testutil.Course("PHY", "641", 3, "A-"),
			testutil.Course("PHY", "514", 3, "B+"),
		),
		testutil.WithTerm("Fall 2020",
			testutil.Course("PHY", "661", 3, "NR"),
			testutil.Course("PHY", "662", 3, "NR"),
			testutil.Course("PHY", "731", 3, "NR"),
		),
	)

	r, err := EvaluateBlob(page, "Fall 2020", p)
	require.NoError(t, err)
	require.NotNil(t, r)

	assert.Equal(t, "12345-6789", r.StudentID)
	assert.Equal(t, 27, r.CreditsEarned)
	assert.Equal(t, 3, r.TransferCredits)
	assert.False(t, r.Core)
	assert.True(t, r.Skills)
	assert.Equal(t, StatusPassedResearchOral, r.Program)
	assert.Equal(t, set(course("PHY661", 3), course("PHY662", 3), course("PHY731", 3)), r.CurrentTerm)
	assert.Empty(t, r.MissingGrades)
	assert.Equal(t, RegistrationOK, r.Registration)
	assert.Equal(t, 9, r.NextTermAward)
}

func TestEvaluateBlobRepeatableWithMixedGrades(t *testing.T) {
	page := testutil.NewPage("12345-6789",
		testutil.WithMilestones(testutil.MarkerQualifier),
		testutil.WithCredits(18, 0),
		testutil.WithTerm("Fall 2020",
			testutil.Course("PHY", "690", 3, "NR"),
			testutil.Course("PHY", "690", 3, ""),
			testutil.Course("PHY", "885", 3, "NR"),
		),
	)

	r, err := EvaluateBlob(page, "Fall 2020", policy.Default())
	require.NoError(t, err)
	require.NotNil(t, r)

	assert.Equal(t, set(course("PHY690", 6), course("PHY885", 3)), r.CurrentTerm)
	assert.Equal(t, 9, r.PendingCredit)
	assert.Empty(t, r.MissingGrades)
	assert.NotEqual(t, RegistrationUnder, r.Registration)
	for _, c := range r.Comments(SeverityWarning) {
		assert.NotContains(t, c, "Missing grades")
		assert.NotContains(t, c, "Under-registered")
	}
}

func TestEvaluateBlobUndergraduate(t *testing.T) {
	page := testutil.NewPage("12345-6789", testutil.AsUndergraduate())

	r, err := EvaluateBlob(page, "Fall 2020", policy.Default())
	require.NoError(t, err)
	assert.Nil(t, r)
}

func TestEvaluateBlobMalformed(t *testing.T) {
	page := testutil.NewPage("12345-6789", testutil.WithoutSummary())

	_, err := EvaluateBlob(page, "Fall 2020", policy.Default())
	var perr *transcript.ParseError
	require.True(t, errors.As(err, &perr), "got %v", err)
}
