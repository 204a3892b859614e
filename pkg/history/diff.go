package history

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mcpadm/mcpadm/pkg/models"
)

// Change types recorded in comparison details.
const (
	ChangeAdded    = "added"
	ChangeModified = "modified"
	ChangeRemoved  = "removed"
)

// ChangeDetail describes one differing key between two versions.
type ChangeDetail struct {
	Key        string `json:"key"`
	ChangeType string `json:"changeType"`
	OldValue   any    `json:"oldValue,omitempty"`
	NewValue   any    `json:"newValue,omitempty"`
}

// Comparison is the structured difference between two versions.
type Comparison struct {
	Changes models.ChangeSet `json:"changes"`
	Details []ChangeDetail   `json:"details"`
}

// Compare computes the structured difference between two versions of a
// config.
func (m *Manager) Compare(configID string, from, to int) (*Comparison, error) {
	a := m.Get(configID, from)
	b := m.Get(configID, to)

	if a == nil || b == nil {
		return nil, fmt.Errorf("%w: comparing versions %d and %d of config %s",
			ErrVersionNotFound, from, to, configID)
	}

	comparison := &Comparison{
		Changes: computeChanges(a.Config, b.Config),
		Details: []ChangeDetail{},
	}

	for _, key := range comparison.Changes.Added {
		comparison.Details = append(comparison.Details, ChangeDetail{
			Key:        key,
			ChangeType: ChangeAdded,
			NewValue:   b.Config[key],
		})
	}

	for _, key := range comparison.Changes.Modified {
		comparison.Details = append(comparison.Details, ChangeDetail{
			Key:        key,
			ChangeType: ChangeModified,
			OldValue:   a.Config[key],
			NewValue:   b.Config[key],
		})
	}

	for _, key := range comparison.Changes.Removed {
		comparison.Details = append(comparison.Details, ChangeDetail{
			Key:        key,
			ChangeType: ChangeRemoved,
			OldValue:   a.Config[key],
		})
	}

	return comparison, nil
}

// Diff renders a comparison as human-readable text with +/~/- markers.
func (m *Manager) Diff(configID string, from, to int) (string, error) {
	comparison, err := m.Compare(configID, from, to)
	if err != nil {
		return "", err
	}

	var b strings.Builder

	fmt.Fprintf(&b, "Changes from version %d to version %d:\n", from, to)

	if len(comparison.Details) == 0 {
		b.WriteString("  (no changes)\n")

		return b.String(), nil
	}

	for _, detail := range comparison.Details {
		switch detail.ChangeType {
		case ChangeAdded:
			fmt.Fprintf(&b, "  + %s: %s\n", detail.Key, models.CanonicalJSON(detail.NewValue))
		case ChangeModified:
			fmt.Fprintf(&b, "  ~ %s: - %s / + %s\n", detail.Key,
				models.CanonicalJSON(detail.OldValue), models.CanonicalJSON(detail.NewValue))
		case ChangeRemoved:
			fmt.Fprintf(&b, "  - %s: %s\n", detail.Key, models.CanonicalJSON(detail.OldValue))
		}
	}

	return b.String(), nil
}

// computeChanges summarises the non-reserved keys that differ between two
// configs. When either side is absent, the present side's keys become added
// or removed entirely.
func computeChanges(old, updated models.ConfigDocument) models.ChangeSet {
	changes := models.ChangeSet{
		Added:    []string{},
		Modified: []string{},
		Removed:  []string{},
	}

	for _, key := range sortedConfigKeys(updated) {
		if _, existed := old[key]; !existed {
			changes.Added = append(changes.Added, key)

			continue
		}

		if models.CanonicalJSON(old[key]) != models.CanonicalJSON(updated[key]) {
			changes.Modified = append(changes.Modified, key)
		}
	}

	for _, key := range sortedConfigKeys(old) {
		if _, exists := updated[key]; !exists {
			changes.Removed = append(changes.Removed, key)
		}
	}

	return changes
}

func sortedConfigKeys(doc models.ConfigDocument) []string {
	keys := make([]string, 0, len(doc))

	for key := range doc {
		if models.IsReservedKey(key) {
			continue
		}

		keys = append(keys, key)
	}

	sort.Strings(keys)

	return keys
}
