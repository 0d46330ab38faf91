package sqlxrepos

import (
	"context"
	"database/sql"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/DARIENBATHALTER/wasabi/core/student"
)

// record tables per kind; every one is keyed by a student_id column
var kindTables = map[student.RecordKind]string{
	student.KindAttendance:  "attendance_records",
	student.KindGrades:      "grade_records",
	student.KindDiscipline:  "discipline_records",
	student.KindAssessments: "assessment_records",
}

type studentRepository struct {
	db *sqlx.DB
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(db *sqlx.DB) *studentRepository {
	return &studentRepository{db: db}
}

// trapNoRowsErr maps psql "no rows" err to student.ErrNotFound
func trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return student.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo *studentRepository) GetStudentByID(ctx context.Context, id string) (student.Student, error) {
	const q = `SELECT id, first_name, last_name, grade, class_name, created_at FROM students WHERE id = $1`

	var stu student.Student
	if err := repo.db.GetContext(ctx, &stu, q, id); err != nil {
		return student.Student{}, trapNoRowsErr(err, "getting student")
	}
	return stu, nil
}

func (repo *studentRepository) QueryStudents(ctx context.Context, filter student.QueryFilter) ([]student.Student, error) {
	q := `SELECT id, first_name, last_name, grade, class_name, created_at FROM students`

	var conds []string
	var args []interface{}
	arg := func(val interface{}) string {
		args = append(args, val)
		return "$" + strconv.Itoa(len(args))
	}
	if filter.Search != "" {
		p := arg("%" + strings.ToLower(filter.Search) + "%")
		conds = append(conds, "(lower(first_name || ' ' || last_name) LIKE "+p+" OR id = "+arg(filter.Search)+")")
	}
	if filter.Grade != "" {
		conds = append(conds, "grade = "+arg(filter.Grade))
	}
	if filter.ClassName != "" {
		conds = append(conds, "class_name = "+arg(filter.ClassName))
	}
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY last_name, first_name, id"

	students := make([]student.Student, 0)
	if err := repo.db.SelectContext(ctx, &students, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying students")
	}
	return students, nil
}

func (repo *studentRepository) AttendanceByStudent(ctx context.Context, id string) ([]student.AttendanceRecord, error) {
	const q = `SELECT student_id, date, status FROM attendance_records WHERE student_id = $1`

	recs := make([]student.AttendanceRecord, 0)
	if err := repo.db.SelectContext(ctx, &recs, q, id); err != nil {
		return nil, errors.Wrap(err, "querying attendance records")
	}
	return recs, nil
}

func (repo *studentRepository) GradesByStudent(ctx context.Context, id string) ([]student.GradeRecord, error) {
	const q = `SELECT student_id, course, final_grade FROM grade_records WHERE student_id = $1`

	recs := make([]student.GradeRecord, 0)
	if err := repo.db.SelectContext(ctx, &recs, q, id); err != nil {
		return nil, errors.Wrap(err, "querying grade records")
	}
	return recs, nil
}

func (repo *studentRepository) DisciplineByStudent(ctx context.Context, id string) ([]student.DisciplineRecord, error) {
	const q = `SELECT student_id, date, incident, action FROM discipline_records WHERE student_id = $1`

	recs := make([]student.DisciplineRecord, 0)
	if err := repo.db.SelectContext(ctx, &recs, q, id); err != nil {
		return nil, errors.Wrap(err, "querying discipline records")
	}
	return recs, nil
}

func (repo *studentRepository) AssessmentsByStudent(ctx context.Context, id string) ([]student.AssessmentRecord, error) {
	const q = `SELECT student_id, source, subject, score, test_date FROM assessment_records WHERE student_id = $1`

	recs := make([]student.AssessmentRecord, 0)
	if err := repo.db.SelectContext(ctx, &recs, q, id); err != nil {
		return nil, errors.Wrap(err, "querying assessment records")
	}
	return recs, nil
}

func (repo *studentRepository) HasRecords(ctx context.Context, kind student.RecordKind, id string) (bool, error) {
	table, ok := kindTables[kind]
	if !ok {
		return false, errors.Errorf("unknown record kind %q", kind)
	}

	var found bool
	q := `SELECT EXISTS (SELECT 1 FROM ` + table + ` WHERE student_id = $1)`
	if err := repo.db.GetContext(ctx, &found, q, id); err != nil {
		return false, errors.Wrapf(err, "probing %s", table)
	}
	return found, nil
}

func (repo *studentRepository) FindCompoundID(ctx context.Context, kind student.RecordKind, id string) (string, error) {
	table, ok := kindTables[kind]
	if !ok {
		return "", errors.Errorf("unknown record kind %q", kind)
	}

	// LIKE is unusable here: "_" is a single-char wildcard, and the needle
	// is all underscores. strpos does a plain substring match.
	var cid string
	q := `SELECT student_id FROM ` + table + ` WHERE strpos(student_id, $1) > 0 ORDER BY student_id LIMIT 1`
	if err := repo.db.GetContext(ctx, &cid, q, "_"+id+"_"); err != nil {
		return "", trapNoRowsErr(err, "scanning "+table+" for compound id")
	}
	return cid, nil
}
