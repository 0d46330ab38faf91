package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/DARIENBATHALTER/wasabi/core"
	"github.com/DARIENBATHALTER/wasabi/core/flag"
	"github.com/DARIENBATHALTER/wasabi/core/student"
	dummydb "github.com/DARIENBATHALTER/wasabi/storage/database/dummy"
)

// NewValidator returns a validator with all app validations and translations
// registered.
func NewValidator() (*validator.Validate, ut.Translator) {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")

	validate := validator.New()
	core.InitValidators(validate, translator)
	flag.InitValidators(validate, translator)
	return validate, translator
}

// Logger is a no-op core.Logger.
type Logger struct{}

var _ core.Logger = (*Logger)(nil)

func (l Logger) Enable(bool)                        {}
func (l Logger) Debug(string, ...interface{})       {}
func (l Logger) Info(string, ...interface{})        {}
func (l Logger) Warn(string, ...interface{})        {}
func (l Logger) Error(string, ...interface{})       {}
func (l Logger) Fatal(msg string, _ ...interface{}) { panic(msg) }

func OpenDB(t *testing.T) *dummydb.DB {
	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("openDB() failed: %v", err)
	}
	return db
}

func CreateStudent(t *testing.T, db *dummydb.DB, id, firstName, lastName, grade, className string) student.Student {
	stu := student.Student{
		ID:        id,
		FirstName: firstName,
		LastName:  lastName,
		Grade:     grade,
		ClassName: className,
		CreatedAt: time.Now().UTC(),
	}
	db.AddStudent(stu)
	return stu
}

func CreateRule(
	t *testing.T,
	repo flag.Repository,
	name string,
	category flag.Category,
	condition flag.Condition,
	threshold float64,
	color flag.Color,
	isActive bool,
) flag.Rule {
	rule, err := repo.CreateRule(context.Background(), flag.Rule{
		Name:     name,
		Category: category,
		Criteria: flag.Criteria{
			Type:      string(category),
			Threshold: flag.Threshold(threshold),
			Condition: condition,
		},
		Color:     color,
		IsActive:  isActive,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("createRule() failed: %v", err)
	}
	return rule
}

// Attendance appends one attendance record per status for the given student.
func Attendance(t *testing.T, db *dummydb.DB, studentID string, statuses ...string) {
	recs := make([]student.AttendanceRecord, 0, len(statuses))
	day := time.Date(2024, 8, 12, 0, 0, 0, 0, time.UTC)
	for i, status := range statuses {
		recs = append(recs, student.AttendanceRecord{
			StudentID: studentID,
			Date:      day.AddDate(0, 0, i),
			Status:    status,
		})
	}
	db.AddAttendance(recs...)
}

// Grades appends one grade record per final grade for the given student.
func Grades(t *testing.T, db *dummydb.DB, studentID string, finalGrades ...string) {
	recs := make([]student.GradeRecord, 0, len(finalGrades))
	for i, fg := range finalGrades {
		recs = append(recs, student.GradeRecord{
			StudentID:  studentID,
			Course:     "Course " + string(rune('A'+i)),
			FinalGrade: fg,
		})
	}
	db.AddGrades(recs...)
}

// Discipline appends n discipline incidents for the given student.
func Discipline(t *testing.T, db *dummydb.DB, studentID string, n int) {
	recs := make([]student.DisciplineRecord, 0, n)
	day := time.Date(2024, 9, 2, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		recs = append(recs, student.DisciplineRecord{
			StudentID: studentID,
			Date:      day.AddDate(0, 0, i),
			Incident:  "Disruption",
		})
	}
	db.AddDiscipline(recs...)
}
