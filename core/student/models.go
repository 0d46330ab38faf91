package student

import (
	"strings"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/DARIENBATHALTER/wasabi/core"
)

// RecordKind identifies one of the raw record tables. A student is not keyed
// consistently across tables (see Service.ResolveID), so every cross-table
// operation is parameterized by kind.
type RecordKind string

const (
	KindAttendance  RecordKind = "attendance"
	KindGrades      RecordKind = "grades"
	KindDiscipline  RecordKind = "discipline"
	KindAssessments RecordKind = "assessments"
)

type Student struct {
	ID        string    `json:"id" db:"id"`
	FirstName string    `json:"first_name" db:"first_name"`
	LastName  string    `json:"last_name" db:"last_name"`
	Grade     string    `json:"grade" db:"grade"`
	ClassName string    `json:"class_name" db:"class_name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"` // UTC
}

func (s Student) FullName() string {
	return strings.TrimSpace(s.FirstName + " " + s.LastName)
}

type AttendanceRecord struct {
	StudentID string    `json:"student_id" db:"student_id"`
	Date      time.Time `json:"date" db:"date"`
	Status    string    `json:"status" db:"status"` // "P", "A", "T", "Present", ...
}

type GradeRecord struct {
	StudentID  string `json:"student_id" db:"student_id"`
	Course     string `json:"course" db:"course"`
	FinalGrade string `json:"final_grade" db:"final_grade"` // letter, plain numeric, or "NN X" composite
}

type DisciplineRecord struct {
	StudentID string      `json:"student_id" db:"student_id"`
	Date      time.Time   `json:"date" db:"date"`
	Incident  string      `json:"incident" db:"incident"`
	Action    null.String `json:"action" db:"action"`
}

type AssessmentRecord struct {
	StudentID string    `json:"student_id" db:"student_id"`
	Source    string    `json:"source" db:"source"` // "iReady", "iReady Math", "FAST", "FAST PM1", ...
	Subject   string    `json:"subject" db:"subject"`
	Score     float64   `json:"score" db:"score"`
	TestDate  null.Time `json:"test_date" db:"test_date"`
}

type QueryFilter struct {
	Search    string `query:"search"`
	Grade     string `query:"grade"`
	ClassName string `query:"className"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Search == "" && qf.Grade == "" && qf.ClassName == ""
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.Grade = core.CleanString(qf.Grade)
	qf.ClassName = core.CleanString(qf.ClassName)
}
