package domain

import (
	"fmt"

	"github.com/mrz1836/ratchet/internal/errors"
)

// BumpKind selects how a target version is computed from the current one.
type BumpKind string

// Bump kinds. Exactly one is chosen per release invocation.
const (
	BumpMajor    BumpKind = "major"
	BumpMinor    BumpKind = "minor"
	BumpPatch    BumpKind = "patch"
	BumpExplicit BumpKind = "explicit"
)

// BumpPolicy is the rule that computes a new version from the current one.
type BumpPolicy struct {
	Kind BumpKind `json:"kind"`

	// Explicit is the literal target used when Kind is BumpExplicit.
	Explicit Version `json:"explicit,omitzero"`
}

// Apply computes the target version for current. It is pure.
func (p BumpPolicy) Apply(current Version) (Version, error) {
	switch p.Kind {
	case BumpMajor:
		return current.NextMajor(), nil
	case BumpMinor:
		return current.NextMinor(), nil
	case BumpPatch:
		return current.NextPatch(), nil
	case BumpExplicit:
		return p.Explicit, nil
	default:
		return Version{}, fmt.Errorf("bump policy %q: %w", p.Kind, errors.ErrInvalidArgument)
	}
}

// String describes the policy for display, e.g. "patch" or "explicit 2.0.0".
func (p BumpPolicy) String() string {
	if p.Kind == BumpExplicit {
		return fmt.Sprintf("%s %s", p.Kind, p.Explicit)
	}
	return string(p.Kind)
}

// PlanItem is one component scheduled for release. Items are created only
// during planning and are never mutated afterwards.
type PlanItem struct {
	Component Component `json:"component"`
	Current   Version   `json:"current"`
	Target    Version   `json:"target"`
}

// IsDowngrade reports whether the target orders before the current version.
func (i PlanItem) IsDowngrade() bool {
	return i.Target.Less(i.Current)
}

// SkippedItem is a requested component already at its target version.
type SkippedItem struct {
	Component Component `json:"component"`
	Version   Version   `json:"version"`
}
