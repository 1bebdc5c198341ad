// Package report renders audit batches as tables, JSON, CSV and PDF.
package report

import (
	"strconv"
	"strings"

	"github.com/gradaudit/gradaudit/internal/audit"
	"github.com/gradaudit/gradaudit/internal/progress"
	"github.com/gradaudit/gradaudit/internal/transcript"
)

// Column names of the progress report.
const (
	ColSource           = "Source"
	ColStudentID        = "Student ID"
	ColName             = "Name"
	ColOutcome          = "Outcome"
	ColRegistration     = "Registration"
	ColProgram          = "Program Status"
	ColCore             = "Core"
	ColSkills           = "Skills"
	ColElective         = "Elective"
	ColQualifier        = "Qualifier"
	ColResearchOral     = "Research Oral"
	ColABD              = "ABD"
	ColCreditsEarned    = "Credits Earned"
	ColTransferCredits  = "Transfer Credits"
	ColCreditsRemaining = "Credits Remaining"
	ColElectiveCredits  = "Elective Credits"
	ColPendingCredit    = "Pending Credit"
	ColNextTermAward    = "Next Term Award"
	ColCurrentTerm      = "Current Term"
	ColMissingGrades    = "Missing Grades"
	ColComments         = "Comments"
)

// Columns is the full column order of the progress report.
var Columns = []string{
	ColSource, ColStudentID, ColName, ColOutcome, ColRegistration, ColProgram,
	ColCore, ColSkills, ColElective, ColQualifier, ColResearchOral, ColABD,
	ColCreditsEarned, ColTransferCredits, ColCreditsRemaining, ColElectiveCredits,
	ColPendingCredit, ColNextTermAward, ColCurrentTerm, ColMissingGrades, ColComments,
}

// Dataset defines tabular report content.
type Dataset struct {
	Headers []string
	Rows    []map[string]string
}

// FromBatch builds the report dataset. Every outcome becomes one row;
// rows of pages that were not evaluated carry the outcome and error only.
// Comments hold diagnostics at or above minSeverity.
func FromBatch(b *audit.Batch, minSeverity progress.Severity) Dataset {
	data := Dataset{Headers: Columns}
	for _, o := range b.Outcomes {
		row := map[string]string{
			ColSource:    o.Page.String(),
			ColStudentID: o.StudentID,
			ColOutcome:   string(o.Status),
		}
		if o.Result == nil {
			row[ColComments] = o.Error
			data.Rows = append(data.Rows, row)
			continue
		}

		r := o.Result
		row[ColName] = r.Name
		row[ColRegistration] = r.Registration.String()
		row[ColProgram] = r.Program.String()
		row[ColCore] = progress.YesNo(r.Core)
		row[ColSkills] = progress.YesNo(r.Skills)
		row[ColElective] = progress.YesNo(r.Elective)
		row[ColQualifier] = progress.YesNo(r.Qualifier)
		row[ColResearchOral] = progress.YesNo(r.ResearchOral)
		row[ColABD] = progress.YesNo(r.ABD)
		row[ColCreditsEarned] = strconv.Itoa(r.CreditsEarned)
		row[ColTransferCredits] = strconv.Itoa(r.TransferCredits)
		row[ColCreditsRemaining] = strconv.Itoa(r.CreditsRemaining)
		row[ColElectiveCredits] = strconv.Itoa(r.ElectiveCredits)
		row[ColPendingCredit] = strconv.Itoa(r.PendingCredit)
		row[ColNextTermAward] = strconv.Itoa(r.NextTermAward)
		row[ColCurrentTerm] = courseList(r.CurrentTerm.Sorted())
		row[ColMissingGrades] = courseList(r.MissingGrades.Sorted())
		row[ColComments] = strings.Join(r.Comments(minSeverity), "; ")
		data.Rows = append(data.Rows, row)
	}
	return data
}

func courseList(courses []transcript.Course) string {
	parts := make([]string, len(courses))
	for i, c := range courses {
		parts[i] = c.String()
	}
	return strings.Join(parts, " ")
}
