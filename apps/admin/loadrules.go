package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/pkg/errors"

	"github.com/DARIENBATHALTER/wasabi/core"
	"github.com/DARIENBATHALTER/wasabi/core/flag"
)

// loadRules bulk-loads flag rules from a JSON file (an array of rules, in the
// same shape the API serves). Loaded rules keep their isActive value; ids are
// reassigned by the store. With replace, all existing rules are deleted first.
func (cli *commandLine) loadRules(path string, replace bool) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "reading %s", path)
	}

	var rules []flag.Rule
	if err := json.Unmarshal(raw, &rules); err != nil {
		return errors.Wrapf(err, "parsing %s", path)
	}
	for i, rule := range rules {
		if rule.Name == "" {
			return errors.Errorf("rule %d: name is required", i)
		}
		if !rule.Category.Valid() {
			return errors.Errorf("rule %d (%s): invalid category %q", i, rule.Name, rule.Category)
		}
		if !rule.Criteria.Condition.Valid() {
			return errors.Errorf("rule %d (%s): invalid condition %q", i, rule.Name, rule.Criteria.Condition)
		}
		if !rule.Color.Valid() {
			return errors.Errorf("rule %d (%s): invalid color %q", i, rule.Name, rule.Color)
		}
	}

	ctx := context.Background()

	if replace {
		existing, err := cli.ruleRepo.QueryAllRules(ctx)
		if err != nil {
			return errors.Wrap(err, "querying existing rules")
		}
		for _, rule := range existing {
			if err := cli.ruleRepo.DeleteRuleByID(ctx, rule.ID); err != nil {
				return errors.Wrapf(err, "deleting rule %s", rule.ID)
			}
		}
		fmt.Printf("deleted %d existing rule(s)\n", len(existing))
	}

	for i, rule := range rules {
		rule.Name = core.CleanString(rule.Name)
		if rule.CreatedAt.IsZero() {
			rule.CreatedAt = time.Now().UTC()
		}
		if _, err := cli.ruleRepo.CreateRule(ctx, rule); err != nil {
			return errors.Wrapf(err, "creating rule %d (%s)", i, rule.Name)
		}
	}
	fmt.Printf("loaded %d rule(s)\n", len(rules))
	return nil
}
