package flag

import (
	"context"
	"errors"
	"time"

	"github.com/DARIENBATHALTER/wasabi/core"
	"github.com/DARIENBATHALTER/wasabi/core/student"
)

var ErrNotFound = errors.New("flag rule not found")

type (
	// Repository is the Rule Store. It owns the Rule lifecycle; all other
	// entities are read through student.Repository. The store is
	// single-writer by construction (rules are edited by one admin at a
	// time), so mutations need no isolation beyond acting on a snapshot.
	Repository interface {
		QueryAllRules(ctx context.Context) ([]Rule, error)
		// QueryActiveRules returns rules with IsActive set, ordered by CreatedAt.
		QueryActiveRules(ctx context.Context) ([]Rule, error)
		GetRuleByID(ctx context.Context, id string) (Rule, error)
		CreateRule(ctx context.Context, rule Rule) (Rule, error)
		UpdateRule(ctx context.Context, rule Rule, isActive *bool) (Rule, error)
		DeleteRuleByID(ctx context.Context, id string) error
	}

	Service struct {
		repo     Repository
		students *student.Service
		logger   core.Logger
	}
)

func NewService(repo Repository, students *student.Service, logger core.Logger) *Service {
	return &Service{
		repo:     repo,
		students: students,
		logger:   logger,
	}
}

func (svc *Service) Create(ctx context.Context, nr NewRule) (Rule, error) {
	rule := Rule{
		Name:        nr.Name,
		Category:    nr.Category,
		Criteria:    nr.Criteria,
		Filters:     nr.Filters,
		Color:       nr.Color,
		Description: nr.Description,
		IsActive:    true,
		CreatedAt:   time.Now().UTC(),
	}
	return svc.repo.CreateRule(ctx, rule)
}

func (svc *Service) QueryAll(ctx context.Context) ([]Rule, error) {
	return svc.repo.QueryAllRules(ctx)
}

func (svc *Service) QueryActive(ctx context.Context) ([]Rule, error) {
	return svc.repo.QueryActiveRules(ctx)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Rule, error) {
	return svc.repo.GetRuleByID(ctx, id)
}

func (svc *Service) Update(ctx context.Context, id string, ur UpdateRule) (Rule, error) {
	rule := Rule{
		ID:          id,
		Name:        ur.Name,
		Category:    ur.Category,
		Criteria:    ur.Criteria,
		Filters:     ur.Filters,
		Color:       ur.Color,
		Description: ur.Description,
	}
	return svc.repo.UpdateRule(ctx, rule, ur.IsActive)
}

func (svc *Service) Delete(ctx context.Context, id string) error {
	return svc.repo.DeleteRuleByID(ctx, id)
}

// ToggleActive flips the rule's active flag and returns the updated rule.
func (svc *Service) ToggleActive(ctx context.Context, id string) (Rule, error) {
	rule, err := svc.repo.GetRuleByID(ctx, id)
	if err != nil {
		return Rule{}, err
	}
	active := !rule.IsActive
	return svc.repo.UpdateRule(ctx, Rule{ID: rule.ID}, &active)
}
