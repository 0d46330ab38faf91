package dummydb

import (
	"context"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/DARIENBATHALTER/wasabi/core/student"
)

type studentRepository struct {
	db *DB
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(db *DB) *studentRepository {
	return &studentRepository{db: db}
}

func (repo *studentRepository) GetStudentByID(ctx context.Context, id string) (student.Student, error) {
	repo.db.students.RLock()
	defer repo.db.students.RUnlock()

	if stu, ok := repo.db.students.table[id]; ok {
		return *stu, nil
	}
	return student.Student{}, student.ErrNotFound
}

func (repo *studentRepository) QueryStudents(ctx context.Context, filter student.QueryFilter) ([]student.Student, error) {
	repo.db.students.RLock()
	defer repo.db.students.RUnlock()

	search := strings.ToLower(filter.Search)
	students := make([]student.Student, 0, len(repo.db.students.table))
	for _, stu := range repo.db.students.table {
		if search != "" && !strings.Contains(strings.ToLower(stu.FullName()), search) && stu.ID != filter.Search {
			continue
		}
		if filter.Grade != "" && stu.Grade != filter.Grade {
			continue
		}
		if filter.ClassName != "" && stu.ClassName != filter.ClassName {
			continue
		}
		students = append(students, *stu)
	}
	sort.Slice(students, func(i, j int) bool {
		if students[i].LastName != students[j].LastName {
			return students[i].LastName < students[j].LastName
		}
		return students[i].ID < students[j].ID
	})
	return students, nil
}

func (repo *studentRepository) AttendanceByStudent(ctx context.Context, id string) ([]student.AttendanceRecord, error) {
	repo.db.attendance.RLock()
	defer repo.db.attendance.RUnlock()

	recs := make([]student.AttendanceRecord, 0)
	for _, rec := range repo.db.attendance.rows {
		if rec.StudentID == id {
			recs = append(recs, rec)
		}
	}
	return recs, nil
}

func (repo *studentRepository) GradesByStudent(ctx context.Context, id string) ([]student.GradeRecord, error) {
	repo.db.grades.RLock()
	defer repo.db.grades.RUnlock()

	recs := make([]student.GradeRecord, 0)
	for _, rec := range repo.db.grades.rows {
		if rec.StudentID == id {
			recs = append(recs, rec)
		}
	}
	return recs, nil
}

func (repo *studentRepository) DisciplineByStudent(ctx context.Context, id string) ([]student.DisciplineRecord, error) {
	repo.db.discipline.RLock()
	defer repo.db.discipline.RUnlock()

	recs := make([]student.DisciplineRecord, 0)
	for _, rec := range repo.db.discipline.rows {
		if rec.StudentID == id {
			recs = append(recs, rec)
		}
	}
	return recs, nil
}

func (repo *studentRepository) AssessmentsByStudent(ctx context.Context, id string) ([]student.AssessmentRecord, error) {
	repo.db.assessments.RLock()
	defer repo.db.assessments.RUnlock()

	recs := make([]student.AssessmentRecord, 0)
	for _, rec := range repo.db.assessments.rows {
		if rec.StudentID == id {
			recs = append(recs, rec)
		}
	}
	return recs, nil
}

func (repo *studentRepository) recordIDs(kind student.RecordKind) ([]string, error) {
	switch kind {
	case student.KindAttendance:
		repo.db.attendance.RLock()
		defer repo.db.attendance.RUnlock()
		ids := make([]string, 0, len(repo.db.attendance.rows))
		for _, rec := range repo.db.attendance.rows {
			ids = append(ids, rec.StudentID)
		}
		return ids, nil
	case student.KindGrades:
		repo.db.grades.RLock()
		defer repo.db.grades.RUnlock()
		ids := make([]string, 0, len(repo.db.grades.rows))
		for _, rec := range repo.db.grades.rows {
			ids = append(ids, rec.StudentID)
		}
		return ids, nil
	case student.KindDiscipline:
		repo.db.discipline.RLock()
		defer repo.db.discipline.RUnlock()
		ids := make([]string, 0, len(repo.db.discipline.rows))
		for _, rec := range repo.db.discipline.rows {
			ids = append(ids, rec.StudentID)
		}
		return ids, nil
	case student.KindAssessments:
		repo.db.assessments.RLock()
		defer repo.db.assessments.RUnlock()
		ids := make([]string, 0, len(repo.db.assessments.rows))
		for _, rec := range repo.db.assessments.rows {
			ids = append(ids, rec.StudentID)
		}
		return ids, nil
	}
	return nil, errors.Errorf("unknown record kind %q", kind)
}

func (repo *studentRepository) HasRecords(ctx context.Context, kind student.RecordKind, id string) (bool, error) {
	ids, err := repo.recordIDs(kind)
	if err != nil {
		return false, err
	}
	for _, recID := range ids {
		if recID == id {
			return true, nil
		}
	}
	return false, nil
}

func (repo *studentRepository) FindCompoundID(ctx context.Context, kind student.RecordKind, id string) (string, error) {
	ids, err := repo.recordIDs(kind)
	if err != nil {
		return "", err
	}
	needle := "_" + id + "_"
	matches := make([]string, 0)
	for _, recID := range ids {
		if strings.Contains(recID, needle) {
			matches = append(matches, recID)
		}
	}
	if len(matches) == 0 {
		return "", student.ErrNotFound
	}
	sort.Strings(matches) // deterministic "first match"
	return matches[0], nil
}
