package domain

import (
	"reflect"
)

// GraphDiff represents the changes between two graph snapshots.
// It is designed to be serialized to JSON for editor-side change reporting.
type GraphDiff struct {
	// RootChanged carries the new root id when it moved.
	RootChanged *string `json:"rootChanged,omitempty"`

	// Added lists step ids present only in the new snapshot.
	Added []string `json:"added,omitempty"`

	// Removed lists step ids present only in the old snapshot.
	Removed []string `json:"removed,omitempty"`

	// Changed lists step ids whose content differs between snapshots.
	Changed []string `json:"changed,omitempty"`
}

// DiffGraphs calculates the difference between two graph snapshots.
// If old is nil, every step of the new snapshot is reported as added.
func DiffGraphs(old, new *FormGraph) *GraphDiff {
	if new == nil {
		return nil
	}

	diff := &GraphDiff{}

	if old == nil || old.RootStepID != new.RootStepID {
		root := new.RootStepID
		diff.RootChanged = &root
	}

	for id, step := range new.Steps {
		if old == nil {
			diff.Added = append(diff.Added, id)
			continue
		}
		oldStep, exists := old.Steps[id]
		if !exists {
			diff.Added = append(diff.Added, id)
		} else if !reflect.DeepEqual(oldStep, step) {
			diff.Changed = append(diff.Changed, id)
		}
	}

	if old != nil {
		for id := range old.Steps {
			if _, exists := new.Steps[id]; !exists {
				diff.Removed = append(diff.Removed, id)
			}
		}
	}

	if diff.IsEmpty() {
		return nil
	}
	return diff
}

// IsEmpty checks if the diff contains any actionable changes.
func (d *GraphDiff) IsEmpty() bool {
	return d.RootChanged == nil &&
		len(d.Added) == 0 &&
		len(d.Removed) == 0 &&
		len(d.Changed) == 0
}
