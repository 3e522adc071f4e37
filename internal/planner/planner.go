// Package planner computes which components a release run will advance and
// to which versions. Planning only reads manifests; it never writes.
package planner

import (
	"fmt"

	"github.com/mrz1836/ratchet/internal/domain"
)

// VersionReader reads a component's declared version.
// *manifest.Store satisfies this interface.
type VersionReader interface {
	Read(c domain.Component) (domain.Version, error)
}

// Plan is the outcome of planning a release.
type Plan struct {
	// Policy is the bump rule the plan was computed with.
	Policy domain.BumpPolicy `json:"policy"`

	// Items are the components to release, in request order.
	Items []domain.PlanItem `json:"items"`

	// Skipped are requested components already at their target version.
	Skipped []domain.SkippedItem `json:"skipped,omitempty"`

	// Warnings are human-readable notices, such as downgrades.
	Warnings []string `json:"warnings,omitempty"`
}

// Empty reports whether the plan has nothing to release.
func (p *Plan) Empty() bool {
	return p == nil || len(p.Items) == 0
}

// Build reads each requested component's current version and applies policy.
// Components appearing more than once are planned once, at their first
// position. The first read or bump failure aborts planning.
func Build(reader VersionReader, components []domain.Component, policy domain.BumpPolicy) (*Plan, error) {
	plan := &Plan{
		Policy: policy,
		Items:  make([]domain.PlanItem, 0, len(components)),
	}
	seen := make(map[string]struct{}, len(components))

	for _, c := range components {
		if _, dup := seen[c.Name]; dup {
			continue
		}
		seen[c.Name] = struct{}{}

		current, err := reader.Read(c)
		if err != nil {
			return nil, err
		}

		target, err := policy.Apply(current)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", c.Name, err)
		}

		if target.Compare(current) == 0 {
			plan.Skipped = append(plan.Skipped, domain.SkippedItem{Component: c, Version: current})
			continue
		}

		item := domain.PlanItem{Component: c, Current: current, Target: target}
		if item.IsDowngrade() {
			plan.Warnings = append(plan.Warnings,
				fmt.Sprintf("%s: target %s is lower than current %s", c.Name, target, current))
		}
		plan.Items = append(plan.Items, item)
	}

	return plan, nil
}
