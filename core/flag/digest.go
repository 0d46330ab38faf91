package flag

import (
	"context"
	"fmt"
	"net/mail"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/DARIENBATHALTER/wasabi/core"
	"github.com/DARIENBATHALTER/wasabi/core/student"
)

// StudentFlags pairs a student with their matched flags for one pass.
type StudentFlags struct {
	Student student.Student
	Results map[Category][]Result
}

// EvaluateAll runs every active rule against every student and returns the
// students that matched at least one flag, ordered by name. Rules are loaded
// once for the whole pass.
func (svc *Service) EvaluateAll(ctx context.Context) ([]StudentFlags, error) {
	rules, err := svc.repo.QueryActiveRules(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "querying active rules")
	}
	students, err := svc.students.Query(ctx, student.QueryFilter{})
	if err != nil {
		return nil, errors.Wrap(err, "querying students")
	}

	flagged := make([]StudentFlags, 0)
	for _, stu := range students {
		results := svc.evaluateRules(ctx, stu, rules)
		if len(results) == 0 {
			continue
		}
		flagged = append(flagged, StudentFlags{Student: stu, Results: results})
	}
	sort.Slice(flagged, func(i, j int) bool {
		return flagged[i].Student.FullName() < flagged[j].Student.FullName()
	})
	return flagged, nil
}

// BuildDigestEmail renders the flagged-students summary sent to school admins.
func BuildDigestEmail(recipients []mail.Address, flagged []StudentFlags) *core.EmailMessage {
	body := new(strings.Builder)
	if len(flagged) == 0 {
		body.WriteString("No students are currently flagged.\n")
	} else {
		fmt.Fprintf(body, "%d student(s) currently flagged:\n\n", len(flagged))
	}
	for _, sf := range flagged {
		fmt.Fprintf(body, "%s (grade %s, %s)\n", sf.Student.FullName(), sf.Student.Grade, sf.Student.ClassName)
		for _, cat := range AllCategories { // stable category order
			for _, res := range sf.Results[cat] {
				fmt.Fprintf(body, "  [%s/%s] %s: %s\n", res.Color, res.Severity, res.RuleName, res.Message)
			}
		}
		body.WriteString("\n")
	}

	return &core.EmailMessage{
		To:      recipients,
		Subject: "Flagged students digest",
		BodyStr: body.String(),
	}
}
