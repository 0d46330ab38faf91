package dummydb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/DARIENBATHALTER/wasabi/core/flag"
)

type ruleRepository struct {
	db *DB
}

var _ flag.Repository = (*ruleRepository)(nil) // interface compliance check

func NewRuleRepository(db *DB) *ruleRepository {
	return &ruleRepository{db: db}
}

func (repo *ruleRepository) query(activeOnly bool) []flag.Rule {
	rules := make([]flag.Rule, 0, len(repo.db.rules.table))
	for _, rule := range repo.db.rules.table {
		if activeOnly && !rule.IsActive {
			continue
		}
		rules = append(rules, *rule)
	}
	sort.Slice(rules, func(i, j int) bool {
		if !rules[i].CreatedAt.Equal(rules[j].CreatedAt) {
			return rules[i].CreatedAt.Before(rules[j].CreatedAt)
		}
		return rules[i].ID < rules[j].ID
	})
	return rules
}

func (repo *ruleRepository) QueryAllRules(ctx context.Context) ([]flag.Rule, error) {
	repo.db.rules.RLock()
	defer repo.db.rules.RUnlock()
	return repo.query(false), nil
}

func (repo *ruleRepository) QueryActiveRules(ctx context.Context) ([]flag.Rule, error) {
	repo.db.rules.RLock()
	defer repo.db.rules.RUnlock()
	return repo.query(true), nil
}

func (repo *ruleRepository) GetRuleByID(ctx context.Context, id string) (flag.Rule, error) {
	repo.db.rules.RLock()
	defer repo.db.rules.RUnlock()

	if rule, ok := repo.db.rules.table[id]; ok {
		return *rule, nil
	}
	return flag.Rule{}, flag.ErrNotFound
}

func (repo *ruleRepository) CreateRule(ctx context.Context, rule flag.Rule) (flag.Rule, error) {
	repo.db.rules.Lock()
	defer repo.db.rules.Unlock()

	rule.ID = uuid.New().String()
	repo.db.rules.table[rule.ID] = &rule
	return rule, nil
}

func (repo *ruleRepository) UpdateRule(ctx context.Context, rule flag.Rule, isActive *bool) (flag.Rule, error) {
	repo.db.rules.Lock()
	defer repo.db.rules.Unlock()

	// only save set fields
	orig, ok := repo.db.rules.table[rule.ID]
	if !ok {
		return flag.Rule{}, flag.ErrNotFound
	}
	if rule.Name != "" {
		orig.Name = rule.Name
	}
	if rule.Category != "" {
		orig.Category = rule.Category
	}
	if rule.Criteria.Condition != "" {
		orig.Criteria = rule.Criteria
	}
	if !rule.Filters.IsEmpty() {
		orig.Filters = rule.Filters
	}
	if rule.Color != "" {
		orig.Color = rule.Color
	}
	if rule.Description != "" {
		orig.Description = rule.Description
	}
	if isActive != nil {
		orig.IsActive = *isActive
	}
	return *orig, nil
}

func (repo *ruleRepository) DeleteRuleByID(ctx context.Context, id string) error {
	repo.db.rules.Lock()
	defer repo.db.rules.Unlock()

	delete(repo.db.rules.table, id)
	return nil
}
