package flag

import (
	"context"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/DARIENBATHALTER/wasabi/core/student"
)

// Metric is the single aggregated value computed for a (student, category)
// pair. HasData distinguishes a computed zero from "no rows matched": a
// student with no attendance history has no rate, not a rate of 0. Metrics
// are cheap to compute and the record store is authoritative, so they are
// recomputed on demand and never cached.
type Metric struct {
	Value   float64
	HasData bool
}

// Metric computes the aggregated value for the category. Identifier
// resolution for the backing table happens inside the student service.
func (svc *Service) Metric(ctx context.Context, c Category, studentID string) (Metric, error) {
	switch c {
	case CategoryAttendance:
		return svc.attendanceRate(ctx, studentID)
	case CategoryGrades:
		return svc.gradePointAverage(ctx, studentID)
	case CategoryDiscipline:
		return svc.disciplineCount(ctx, studentID)
	case CategoryIReadyReading, CategoryIReadyMath,
		CategoryFASTMath, CategoryFASTELA, CategoryFASTScience, CategoryFASTWriting:
		return svc.latestAssessmentScore(ctx, c, studentID)
	}
	return Metric{}, errors.Errorf("unknown flag category %q", c)
}

// statuses counted as "present" when computing the attendance rate.
// Tardy students were in attendance.
var presentStatuses = map[string]bool{
	"p":       true,
	"present": true,
	"t":       true,
	"tardy":   true,
}

func (svc *Service) attendanceRate(ctx context.Context, studentID string) (Metric, error) {
	recs, err := svc.students.Attendance(ctx, studentID)
	if err != nil {
		return Metric{}, errors.Wrap(err, "fetching attendance")
	}
	if len(recs) == 0 {
		return Metric{}, nil
	}

	var present int
	for _, rec := range recs {
		if presentStatuses[strings.ToLower(strings.TrimSpace(rec.Status))] {
			present++
		}
	}
	return Metric{
		Value:   float64(present) / float64(len(recs)) * 100,
		HasData: true,
	}, nil
}

func (svc *Service) gradePointAverage(ctx context.Context, studentID string) (Metric, error) {
	recs, err := svc.students.Grades(ctx, studentID)
	if err != nil {
		return Metric{}, errors.Wrap(err, "fetching grades")
	}

	var sum float64
	var n int
	for _, rec := range recs {
		if pts, ok := gradePoints(rec.FinalGrade); ok {
			sum += pts
			n++
		}
	}
	if n == 0 {
		// no grade rows, or none convertible
		return Metric{}, nil
	}
	return Metric{Value: sum / float64(n), HasData: true}, nil
}

func (svc *Service) disciplineCount(ctx context.Context, studentID string) (Metric, error) {
	recs, err := svc.students.Discipline(ctx, studentID)
	if err != nil {
		return Metric{}, errors.Wrap(err, "fetching discipline records")
	}
	if len(recs) == 0 {
		return Metric{}, nil
	}
	return Metric{Value: float64(len(recs)), HasData: true}, nil
}

func (svc *Service) latestAssessmentScore(ctx context.Context, c Category, studentID string) (Metric, error) {
	recs, err := svc.students.Assessments(ctx, studentID)
	if err != nil {
		return Metric{}, errors.Wrap(err, "fetching assessments")
	}

	var latest *student.AssessmentRecord
	for i := range recs {
		rec := &recs[i]
		if !matchesCategory(c, *rec) {
			continue
		}
		if latest == nil || moreRecent(*rec, *latest) {
			latest = rec
		}
	}
	if latest == nil {
		return Metric{}, nil
	}
	return Metric{Value: latest.Score, HasData: true}, nil
}

// moreRecent reports whether a was tested strictly later than b.
// A missing test date sorts as earliest.
func moreRecent(a, b student.AssessmentRecord) bool {
	if !a.TestDate.Valid {
		return false
	}
	if !b.TestDate.Valid {
		return true
	}
	return a.TestDate.Time.After(b.TestDate.Time)
}

// matchesCategory reports whether an assessment row belongs to the category's
// source/subject combination.
func matchesCategory(c Category, rec student.AssessmentRecord) bool {
	source := strings.ToLower(strings.TrimSpace(rec.Source))
	subject := strings.ToLower(strings.TrimSpace(rec.Subject))

	switch c {
	case CategoryIReadyReading:
		return (source == "iready" || source == "iready reading") && isReadingSubject(subject)
	case CategoryIReadyMath:
		return (source == "iready" || source == "iready math") && strings.Contains(subject, "math")
	case CategoryFASTMath, CategoryFASTELA, CategoryFASTScience, CategoryFASTWriting:
		// FAST sources come in composite forms ("FAST", "FAST PM2", ...)
		return strings.Contains(source, "fast") && subject == fastSubjects[c]
	}
	return false
}

// reading-family subjects as they appear across assessment imports
func isReadingSubject(subject string) bool {
	return strings.Contains(subject, "read") || subject == "ela"
}

var fastSubjects = map[Category]string{
	CategoryFASTMath:    "math",
	CategoryFASTELA:     "ela",
	CategoryFASTScience: "science",
	CategoryFASTWriting: "writing",
}

var letterPoints = map[string]float64{
	"A": 4.0,
	"B": 3.0,
	"C": 2.0,
	"D": 1.0,
	"F": 0.0,
}

// gradePoints converts a raw final grade to a 4.0-scale value. Grades come in
// three shapes: a pure letter ("A"), a plain number ("85"), or a composite
// "<number> <letter>" string ("77 C") where the number wins. Unconvertible
// grades report ok=false and are excluded from the GPA mean, never counted
// as zero.
func gradePoints(finalGrade string) (pts float64, ok bool) {
	g := strings.ToUpper(strings.TrimSpace(finalGrade))
	if pts, ok := letterPoints[g]; ok {
		return pts, true
	}

	fields := strings.Fields(g)
	if len(fields) == 0 {
		return 0, false
	}
	n, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return 0, false
	}

	switch {
	case n >= 90:
		return 4.0, true
	case n >= 80:
		return 3.0, true
	case n >= 70:
		return 2.0, true
	case n >= 60:
		return 1.0, true
	}
	return 0.0, true
}
