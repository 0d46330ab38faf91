package dummydb

import (
	"sync"

	"github.com/DARIENBATHALTER/wasabi/core/flag"
	"github.com/DARIENBATHALTER/wasabi/core/student"
)

type (
	DB struct {
		students    *studentTable
		attendance  *attendanceTable
		grades      *gradeTable
		discipline  *disciplineTable
		assessments *assessmentTable
		rules       *ruleTable
	}

	studentTable struct {
		sync.RWMutex
		table map[string]*student.Student
	}

	attendanceTable struct {
		sync.RWMutex
		rows []student.AttendanceRecord
	}

	gradeTable struct {
		sync.RWMutex
		rows []student.GradeRecord
	}

	disciplineTable struct {
		sync.RWMutex
		rows []student.DisciplineRecord
	}

	assessmentTable struct {
		sync.RWMutex
		rows []student.AssessmentRecord
	}

	ruleTable struct {
		sync.RWMutex
		table map[string]*flag.Rule
	}
)

func Open() (*DB, error) {
	db := &DB{
		students:    &studentTable{table: make(map[string]*student.Student)},
		attendance:  new(attendanceTable),
		grades:      new(gradeTable),
		discipline:  new(disciplineTable),
		assessments: new(assessmentTable),
		rules:       &ruleTable{table: make(map[string]*flag.Rule)},
	}
	return db, nil
}

// fixture seams; the engine itself only reads records

func (db *DB) AddStudent(stu student.Student) {
	db.students.Lock()
	defer db.students.Unlock()
	db.students.table[stu.ID] = &stu
}

func (db *DB) AddAttendance(recs ...student.AttendanceRecord) {
	db.attendance.Lock()
	defer db.attendance.Unlock()
	db.attendance.rows = append(db.attendance.rows, recs...)
}

func (db *DB) AddGrades(recs ...student.GradeRecord) {
	db.grades.Lock()
	defer db.grades.Unlock()
	db.grades.rows = append(db.grades.rows, recs...)
}

func (db *DB) AddDiscipline(recs ...student.DisciplineRecord) {
	db.discipline.Lock()
	defer db.discipline.Unlock()
	db.discipline.rows = append(db.discipline.rows, recs...)
}

func (db *DB) AddAssessments(recs ...student.AssessmentRecord) {
	db.assessments.Lock()
	defer db.assessments.Unlock()
	db.assessments.rows = append(db.assessments.rows, recs...)
}
