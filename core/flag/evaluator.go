package flag

import (
	"context"
	"fmt"
	"math"

	"github.com/pkg/errors"

	"github.com/DARIENBATHALTER/wasabi/core/student"
)

type (
	// Evaluation is the outcome of one (student, rule) pair. Message is
	// always populated when the rule applied and a metric existed,
	// flagged or not; the dashboard shows it as hover text.
	Evaluation struct {
		IsFlagged bool   `json:"isFlagged"`
		Message   string `json:"message"`
	}

	// Result is one matched flag, as consumed by the dashboard views.
	// Results live for a single evaluation pass and are never persisted.
	Result struct {
		RuleID   string   `json:"flagId"`
		RuleName string   `json:"flagName"`
		Category Category `json:"category"`
		Message  string   `json:"message"`
		Color    Color    `json:"color"`
		Severity Severity `json:"severity"`
	}
)

// Evaluate applies one rule to one student:
//  1. cohort filters: a rule scoped to other grades/classes does not apply,
//     and reports neither a flag nor a message;
//  2. the category metric is computed (resolving the canonical student id
//     for the backing table on the way);
//  3. no data short-circuits to not-flagged with a "No X data" message;
//  4. otherwise the rule's condition decides, and the message embeds the
//     computed value, condition and threshold.
func (svc *Service) Evaluate(ctx context.Context, stu student.Student, rule Rule) (Evaluation, error) {
	if !ruleApplies(stu, rule) {
		return Evaluation{}, nil
	}

	metric, err := svc.Metric(ctx, rule.Category, stu.ID)
	if err != nil {
		return Evaluation{}, err
	}
	if !metric.HasData {
		return Evaluation{Message: fmt.Sprintf("No %s data", rule.Category.Label())}, nil
	}

	threshold := float64(rule.Criteria.Threshold)
	return Evaluation{
		IsFlagged: conditionMet(rule.Category, rule.Criteria.Condition, metric.Value, threshold),
		Message:   evaluationMessage(rule.Category, rule.Criteria.Condition, metric.Value, threshold),
	}, nil
}

// EvaluateStudent batches all active rules for one student and groups the
// matched flags by category. A rule that fails to evaluate is logged and
// skipped; one bad rule never aborts the pass. An unevaluable rule simply
// does not appear in the student's flag list.
func (svc *Service) EvaluateStudent(ctx context.Context, studentID string) (map[Category][]Result, error) {
	stu, err := svc.students.Get(ctx, studentID)
	if err != nil {
		return nil, err
	}
	rules, err := svc.repo.QueryActiveRules(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "querying active rules")
	}
	return svc.evaluateRules(ctx, stu, rules), nil
}

// EvaluateRule applies a single stored rule to a single student. The
// dashboard uses it to preview a rule before activating it.
func (svc *Service) EvaluateRule(ctx context.Context, ruleID, studentID string) (Evaluation, error) {
	rule, err := svc.GetByID(ctx, ruleID)
	if err != nil {
		return Evaluation{}, err
	}
	stu, err := svc.students.Get(ctx, studentID)
	if err != nil {
		return Evaluation{}, err
	}
	return svc.Evaluate(ctx, stu, rule)
}

func (svc *Service) evaluateRules(ctx context.Context, stu student.Student, rules []Rule) map[Category][]Result {
	results := make(map[Category][]Result)
	for _, rule := range rules {
		ev, err := svc.evaluateSafe(ctx, stu, rule)
		if err != nil {
			svc.logger.Error(
				fmt.Sprintf("evaluating rule %q for student %s: %v", rule.Name, stu.ID, err), err)
			continue
		}
		if !ev.IsFlagged {
			continue
		}
		results[rule.Category] = append(results[rule.Category], Result{
			RuleID:   rule.ID,
			RuleName: rule.Name,
			Category: rule.Category,
			Message:  ev.Message,
			Color:    rule.Color,
			Severity: severityFor(rule),
		})
	}
	return results
}

// evaluateSafe traps panics from malformed rules or record data so they
// degrade into a skipped rule instead of aborting the whole pass.
func (svc *Service) evaluateSafe(ctx context.Context, stu student.Student, rule Rule) (ev Evaluation, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("panic: %v", r)
		}
	}()
	return svc.Evaluate(ctx, stu, rule)
}

func ruleApplies(stu student.Student, rule Rule) bool {
	if len(rule.Filters.Grades) > 0 && !containsString(rule.Filters.Grades, stu.Grade) {
		return false
	}
	if len(rule.Filters.Classes) > 0 && !containsString(rule.Filters.Classes, stu.ClassName) {
		return false
	}
	return true
}

func containsString(vals []string, s string) bool {
	for _, v := range vals {
		if v == s {
			return true
		}
	}
	return false
}

// epsilon is the tolerance used by the "equals" condition. Percentage and
// GPA-scale categories compare within 0.1, raw assessment scores within 1,
// discipline counts exactly.
func epsilon(c Category) float64 {
	switch c {
	case CategoryAttendance, CategoryGrades:
		return 0.1
	case CategoryDiscipline:
		return 0
	}
	return 1
}

func conditionMet(c Category, cond Condition, value, threshold float64) bool {
	switch cond {
	case ConditionBelow:
		return value < threshold
	case ConditionAbove:
		return value > threshold
	case ConditionEquals:
		eps := epsilon(c)
		if eps == 0 {
			return value == threshold
		}
		return math.Abs(value-threshold) < eps
	}
	return false
}

func evaluationMessage(c Category, cond Condition, value, threshold float64) string {
	switch c {
	case CategoryAttendance:
		return fmt.Sprintf("Attendance rate %.1f%% (rule: %s %s%%)", value, cond, trimFloat(threshold))
	case CategoryGrades:
		return fmt.Sprintf("GPA %.2f (rule: %s %s)", value, cond, trimFloat(threshold))
	case CategoryDiscipline:
		return fmt.Sprintf("%d discipline incidents (rule: %s %s)", int(value), cond, trimFloat(threshold))
	}
	return fmt.Sprintf("%s score %s (rule: %s %s)", c.Label(), trimFloat(value), cond, trimFloat(threshold))
}

func trimFloat(f float64) string {
	return fmt.Sprintf("%g", f)
}
