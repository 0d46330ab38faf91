package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/DARIENBATHALTER/wasabi/core/flag"
)

type ruleRepository struct {
	db *sqlx.DB
}

var _ flag.Repository = (*ruleRepository)(nil) // interface compliance check

func NewRuleRepository(db *sqlx.DB) *ruleRepository {
	return &ruleRepository{db: db}
}

// ruleRow is the flat flag_rules row; Rule nests criteria/filters.
type ruleRow struct {
	ID           string         `db:"id"`
	Name         string         `db:"name"`
	Category     string         `db:"category"`
	CriteriaType string         `db:"criteria_type"`
	Threshold    float64        `db:"threshold"`
	Condition    string         `db:"condition"`
	Grades       pq.StringArray `db:"grades"`
	Classes      pq.StringArray `db:"classes"`
	Color        string         `db:"color"`
	Description  string         `db:"description"`
	IsActive     bool           `db:"is_active"`
	CreatedAt    time.Time      `db:"created_at"`
}

func pack(rule flag.Rule) ruleRow {
	return ruleRow{
		ID:           rule.ID,
		Name:         rule.Name,
		Category:     string(rule.Category),
		CriteriaType: rule.Criteria.Type,
		Threshold:    float64(rule.Criteria.Threshold),
		Condition:    string(rule.Criteria.Condition),
		Grades:       rule.Filters.Grades,
		Classes:      rule.Filters.Classes,
		Color:        string(rule.Color),
		Description:  rule.Description,
		IsActive:     rule.IsActive,
		CreatedAt:    rule.CreatedAt.UTC(),
	}
}

func unpack(row ruleRow) flag.Rule {
	return flag.Rule{
		ID:       row.ID,
		Name:     row.Name,
		Category: flag.Category(row.Category),
		Criteria: flag.Criteria{
			Type:      row.CriteriaType,
			Threshold: flag.Threshold(row.Threshold),
			Condition: flag.Condition(row.Condition),
		},
		Filters: flag.Filters{
			Grades:  row.Grades,
			Classes: row.Classes,
		},
		Color:       flag.Color(row.Color),
		Description: row.Description,
		IsActive:    row.IsActive,
		CreatedAt:   row.CreatedAt,
	}
}

const ruleColumns = `id, name, category, criteria_type, threshold, condition, grades, classes, color, description, is_active, created_at`

func (repo *ruleRepository) query(ctx context.Context, q string, args ...interface{}) ([]flag.Rule, error) {
	rows := make([]ruleRow, 0)
	if err := repo.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying flag rules")
	}
	rules := make([]flag.Rule, 0, len(rows))
	for _, row := range rows {
		rules = append(rules, unpack(row))
	}
	return rules, nil
}

func (repo *ruleRepository) QueryAllRules(ctx context.Context) ([]flag.Rule, error) {
	return repo.query(ctx, `SELECT `+ruleColumns+` FROM flag_rules ORDER BY created_at, id`)
}

func (repo *ruleRepository) QueryActiveRules(ctx context.Context) ([]flag.Rule, error) {
	return repo.query(ctx, `SELECT `+ruleColumns+` FROM flag_rules WHERE is_active ORDER BY created_at, id`)
}

func (repo *ruleRepository) GetRuleByID(ctx context.Context, id string) (flag.Rule, error) {
	var row ruleRow
	q := `SELECT ` + ruleColumns + ` FROM flag_rules WHERE id = $1`
	if err := repo.db.GetContext(ctx, &row, q, id); err != nil {
		if err == sql.ErrNoRows {
			return flag.Rule{}, flag.ErrNotFound
		}
		return flag.Rule{}, errors.Wrap(err, "getting flag rule")
	}
	return unpack(row), nil
}

func (repo *ruleRepository) CreateRule(ctx context.Context, rule flag.Rule) (flag.Rule, error) {
	rule.ID = uuid.New().String()
	row := pack(rule)

	const q = `
		INSERT INTO flag_rules (` + ruleColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := repo.db.ExecContext(ctx, q,
		row.ID, row.Name, row.Category, row.CriteriaType, row.Threshold, row.Condition,
		row.Grades, row.Classes, row.Color, row.Description, row.IsActive, row.CreatedAt,
	)
	if err != nil {
		return flag.Rule{}, errors.Wrap(err, "inserting flag rule")
	}
	return unpack(row), nil
}

// UpdateRule reads the stored rule, overlays the set fields and writes the
// whole row back. The rule store is single-writer, so the read-modify-write
// needs no further isolation.
func (repo *ruleRepository) UpdateRule(ctx context.Context, rule flag.Rule, isActive *bool) (flag.Rule, error) {
	orig, err := repo.GetRuleByID(ctx, rule.ID)
	if err != nil {
		return flag.Rule{}, err
	}
	merged := mergeRule(orig, rule, isActive)
	row := pack(merged)

	const q = `
		UPDATE flag_rules
		SET name = $2, category = $3, criteria_type = $4, threshold = $5, condition = $6,
		    grades = $7, classes = $8, color = $9, description = $10, is_active = $11
		WHERE id = $1`
	_, err = repo.db.ExecContext(ctx, q,
		row.ID, row.Name, row.Category, row.CriteriaType, row.Threshold, row.Condition,
		row.Grades, row.Classes, row.Color, row.Description, row.IsActive,
	)
	if err != nil {
		return flag.Rule{}, errors.Wrap(err, "updating flag rule")
	}
	return merged, nil
}

func (repo *ruleRepository) DeleteRuleByID(ctx context.Context, id string) error {
	if _, err := repo.db.ExecContext(ctx, `DELETE FROM flag_rules WHERE id = $1`, id); err != nil {
		return errors.Wrap(err, "deleting flag rule")
	}
	return nil
}

func mergeRule(orig, rule flag.Rule, isActive *bool) flag.Rule {
	merged := orig
	if rule.Name != "" {
		merged.Name = rule.Name
	}
	if rule.Category != "" {
		merged.Category = rule.Category
	}
	if rule.Criteria.Condition != "" {
		merged.Criteria = rule.Criteria
	}
	if !rule.Filters.IsEmpty() {
		merged.Filters = rule.Filters
	}
	if rule.Color != "" {
		merged.Color = rule.Color
	}
	if rule.Description != "" {
		merged.Description = rule.Description
	}
	if isActive != nil {
		merged.IsActive = *isActive
	}
	return merged
}
