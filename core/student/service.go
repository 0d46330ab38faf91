package student

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("student not found")

type (
	Repository interface {
		GetStudentByID(ctx context.Context, id string) (Student, error)
		// QueryStudents applies AND operation on available QueryFilter fields.
		// QueryFilter.Search does a case-insensitive match on the student's name or id.
		QueryStudents(ctx context.Context, filter QueryFilter) ([]Student, error)

		AttendanceByStudent(ctx context.Context, id string) ([]AttendanceRecord, error)
		GradesByStudent(ctx context.Context, id string) ([]GradeRecord, error)
		DisciplineByStudent(ctx context.Context, id string) ([]DisciplineRecord, error)
		AssessmentsByStudent(ctx context.Context, id string) ([]AssessmentRecord, error)

		// HasRecords reports whether kind's table holds at least one row keyed exactly by id.
		HasRecords(ctx context.Context, kind RecordKind, id string) (bool, error)
		// FindCompoundID scans kind's table for the first student id embedding
		// "_<id>_" and returns it. Returns ErrNotFound when no such id exists.
		FindCompoundID(ctx context.Context, kind RecordKind, id string) (string, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Get(ctx context.Context, id string) (Student, error) {
	return svc.repo.GetStudentByID(ctx, id)
}

func (svc *Service) Query(ctx context.Context, filter QueryFilter) ([]Student, error) {
	filter.Clean()
	return svc.repo.QueryStudents(ctx, filter)
}

// Attendance returns the student's attendance rows, resolving the canonical
// id for the attendance table first.
func (svc *Service) Attendance(ctx context.Context, id string) ([]AttendanceRecord, error) {
	cid, err := svc.ResolveID(ctx, KindAttendance, id)
	if err != nil {
		return nil, err
	}
	return svc.repo.AttendanceByStudent(ctx, cid)
}

func (svc *Service) Grades(ctx context.Context, id string) ([]GradeRecord, error) {
	cid, err := svc.ResolveID(ctx, KindGrades, id)
	if err != nil {
		return nil, err
	}
	return svc.repo.GradesByStudent(ctx, cid)
}

func (svc *Service) Discipline(ctx context.Context, id string) ([]DisciplineRecord, error) {
	cid, err := svc.ResolveID(ctx, KindDiscipline, id)
	if err != nil {
		return nil, err
	}
	return svc.repo.DisciplineByStudent(ctx, cid)
}

func (svc *Service) Assessments(ctx context.Context, id string) ([]AssessmentRecord, error) {
	cid, err := svc.ResolveID(ctx, KindAssessments, id)
	if err != nil {
		return nil, err
	}
	return svc.repo.AssessmentsByStudent(ctx, cid)
}
