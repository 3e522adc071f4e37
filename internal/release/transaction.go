package release

import (
	"slices"
	"strings"

	"github.com/mrz1836/ratchet/internal/domain"
)

// Transaction is the in-memory record of one release run. It is never
// persisted. CreatedTags grows only through WithTag, so rollback can be
// computed from the value alone.
type Transaction struct {
	RunID string `json:"run_id"`

	// Items are the planned components in execution order.
	Items []domain.PlanItem `json:"items"`

	// StartRevision is HEAD captured before the first manifest write.
	// Empty in dry runs and before capture.
	StartRevision string `json:"start_revision,omitempty"`

	// CreatedTags are the tags this run created, in creation order.
	CreatedTags []string `json:"created_tags,omitempty"`
}

// WithTag returns a copy of tx with tag appended to CreatedTags.
// The receiver's slice is never shared with the result.
func (tx Transaction) WithTag(tag string) Transaction {
	tags := make([]string, 0, len(tx.CreatedTags)+1)
	tags = append(tags, tx.CreatedTags...)
	tx.CreatedTags = append(tags, tag)
	return tx
}

// PlannedTags returns the tags the run creates when every item succeeds.
func (tx Transaction) PlannedTags(template string) []string {
	tags := make([]string, 0, len(tx.Items))
	for _, item := range tx.Items {
		tags = append(tags, Render(template, item.Component.Name, item.Target))
	}
	return tags
}

// Render fills the {component} and {version} placeholders of a commit or
// tag template.
func Render(template, component string, v domain.Version) string {
	return strings.NewReplacer("{component}", component, "{version}", v.String()).Replace(template)
}

// reversed returns a copy of tags in reverse order.
func reversed(tags []string) []string {
	out := slices.Clone(tags)
	slices.Reverse(out)
	return out
}
