package progress

import (
	"github.com/gradaudit/gradaudit/internal/policy"
	"github.com/gradaudit/gradaudit/internal/transcript"
)

// Evaluator applies one policy to any number of student summaries. It holds
// no per-student state and is safe for concurrent use.
type Evaluator struct {
	policy    *policy.Policy
	core      transcript.CourseSet
	skills    transcript.CourseSet
	electives transcript.CourseSet
}

// NewEvaluator creates an evaluator for p.
func NewEvaluator(p *policy.Policy) *Evaluator {
	return &Evaluator{
		policy:    p,
		core:      p.Core(),
		skills:    p.Skills(),
		electives: p.Electives(),
	}
}

// Evaluate runs the progress checks against s with the policy p.
func Evaluate(s *transcript.Summary, p *policy.Policy) *Result {
	return NewEvaluator(p).Evaluate(s)
}

// EvaluateBlob parses one page of transcript text for term and evaluates it.
// Both return values are nil for undergraduate records.
func EvaluateBlob(text, term string, p *policy.Policy) (*Result, error) {
	s, err := transcript.ParseStudent(text, p.ParseOptions(term))
	if err != nil {
		return nil, err
	}
	return Evaluate(s, p), nil
}

// Evaluate returns the progress result for s, or nil for undergraduate
// records. Checks run in a fixed order; a later check may overwrite the
// registration status but never removes an earlier diagnostic.
func (e *Evaluator) Evaluate(s *transcript.Summary) *Result {
	if s == nil || s.Undergraduate {
		return nil
	}

	r := &Result{
		StudentID:       s.StudentID,
		Name:            s.Name,
		Registration:    RegistrationOK,
		Program:         StatusPreQualifier,
		Qualifier:       s.PassedQualifier,
		ResearchOral:    s.PassedResearchOral,
		ABD:             s.ABD,
		CreditsEarned:   s.CreditsEarned,
		TransferCredits: s.TransferCredits,
		CurrentTerm:     s.CurrentTerm.Clone(),
	}

	e.checkCore(r, s)
	e.checkSkills(r, s)
	e.checkElectives(r, s)
	e.checkMissingGrades(r, s)
	e.checkContinuation(r)
	e.checkABDEligibility(r)
	e.checkResearchOral(r)
	e.checkLoad(r)
	e.checkAward(r)
	r.Program = programStatus(r)

	return r
}

func (e *Evaluator) checkCore(r *Result, s *transcript.Summary) {
	r.Core = s.Completed.IsSuperset(e.core)
	if r.Core {
		r.log(SeverityInfo, "Has completed required core courses")
		return
	}
	r.log(SeverityInfo, "Needs to complete required core courses %s", e.core.Difference(s.Completed))
}

func (e *Evaluator) checkSkills(r *Result, s *transcript.Summary) {
	r.Skills = s.Completed.Intersect(e.skills).Len() > 0
	if r.Skills {
		r.log(SeverityInfo, "Has completed required skills courses")
		return
	}
	r.log(SeverityInfo, "Needs to complete one of the required skills courses %s", e.skills)
}

func (e *Evaluator) checkElectives(r *Result, s *transcript.Summary) {
	credits := e.policy.Catalog.ElectiveCredit * s.Completed.Intersect(e.electives).Len()
	for c := range s.Completed {
		if e.policy.IsRepeatable(c.Code) {
			credits += c.Credits
		}
	}
	r.ElectiveCredits = credits
	r.Elective = credits > e.policy.Thresholds.ElectiveMinimum
	if r.Elective {
		r.log(SeverityInfo, "Has completed elective courses (%d credits)", credits)
		return
	}
	r.log(SeverityInfo, "Needs to complete elective courses (%d credits)", credits)
}

func (e *Evaluator) checkMissingGrades(r *Result, s *transcript.Summary) {
	r.log(SeverityInfo, "Currently taking %s", s.CurrentTerm)
	r.MissingGrades = s.InProgress.Difference(s.CurrentTerm)
	if r.MissingGrades.Len() > 0 {
		r.Registration = RegistrationProblem
		r.log(SeverityError, "Missing grades for %s", r.MissingGrades)
	}
}

func (e *Evaluator) checkContinuation(r *Result) {
	if !r.ABD {
		return
	}
	r.log(SeverityInfo, "Has ABD status")
	cont := e.policy.Catalog.Continuation
	if !r.CurrentTerm.Contains(cont) {
		r.Registration = RegistrationProblem
		r.log(SeverityError, "ABD student is not registered for %s; currently taking %s", cont, r.CurrentTerm)
	}
}

func (e *Evaluator) checkABDEligibility(r *Result) {
	r.log(SeverityInfo, "Total %d credits with %d transfer credits", r.CreditsEarned, r.TransferCredits)
	if r.ABD || !(r.Qualifier && r.ResearchOral && r.Core && r.Skills) {
		return
	}
	if r.CreditsEarned >= e.policy.Thresholds.ABDCredits {
		r.log(SeverityWarning, "Eligible/overdue to apply for ABD")
		return
	}
	r.log(SeverityInfo, "Needs %d more credits for ABD status", e.policy.Thresholds.ABDCredits-r.CreditsEarned)
}

func (e *Evaluator) checkResearchOral(r *Result) {
	if r.ResearchOral {
		return
	}
	switch {
	case r.CreditsEarned > e.policy.Thresholds.ResearchOralDeadline:
		r.ResearchOralOverdue = true
		r.log(SeverityCritical, "Research oral overdue with %d credits earned", r.CreditsEarned)
	case r.Qualifier:
		r.log(SeverityWarning, "Needs to take research oral")
	default:
		r.log(SeverityWarning, "Needs to pass written qualifier")
	}
}

func (e *Evaluator) checkLoad(r *Result) {
	terminal := e.policy.Catalog.Terminal
	fullLoad := e.policy.Thresholds.FullLoad

	r.CreditsRemaining = e.policy.Thresholds.ABDCredits - r.CreditsEarned
	r.PendingCredit = 0
	terminalAtZero := false
	for c := range r.CurrentTerm {
		if c.Code == terminal {
			terminalAtZero = terminalAtZero || c.Credits == 0
			continue
		}
		r.PendingCredit += c.Credits
	}
	r.PendingNotPostedCredit = r.CurrentTerm.Credits()

	if r.CreditsRemaining >= 0 && r.PendingCredit > r.CreditsRemaining {
		r.Registration = RegistrationOver
		r.log(SeverityWarning, "Over-registered: pending %d, remaining %d", r.PendingCredit, r.CreditsRemaining)
	}
	if expected := min(fullLoad, r.CreditsRemaining); r.PendingNotPostedCredit < expected {
		r.Registration = RegistrationUnder
		r.log(SeverityWarning, "Under-registered: registered %d, expected at least %d", r.PendingNotPostedCredit, expected)
	}
	if terminalAtZero {
		r.Registration = RegistrationProblem
		r.log(SeverityError, "Registered for %s with zero credit hours", terminal)
	}
}

func (e *Evaluator) checkAward(r *Result) {
	fullLoad := e.policy.Thresholds.FullLoad
	award := min(fullLoad, e.policy.Thresholds.ABDCredits-(r.CreditsEarned+r.PendingCredit))
	if award <= 0 {
		r.NextTermAward = 0
		return
	}
	r.NextTermAward = award
	r.log(SeverityInfo, "Next term award %d credits", award)

	if award < fullLoad && !(r.Qualifier && r.ResearchOral) && !r.ResearchOralOverdue {
		r.Registration = RegistrationProblem
		r.log(SeverityError, "Partial award of %d credits with qualifying exams outstanding", award)
	}
}

func programStatus(r *Result) ProgramStatus {
	switch {
	case r.ABD:
		return StatusABD
	case r.Qualifier && r.ResearchOral && r.Core && r.Skills && r.CreditsRemaining <= 0:
		return StatusEligibleForABD
	case r.ResearchOral:
		return StatusPassedResearchOral
	case r.Qualifier:
		return StatusPassedQualifier
	default:
		return StatusPreQualifier
	}
}
