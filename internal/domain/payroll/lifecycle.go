package payroll

import "fmt"

// ValidateTransition checks entry status changes against the lifecycle:
//
//	pending -> released -> archived
//
// Pending entries may also be archived directly by bulk maintenance
// (clear-pending). Nothing moves backwards.
func ValidateTransition(current, target EntryStatus) error {
	if current == target {
		return nil
	}
	switch current {
	case EntryStatusPending:
		if target == EntryStatusReleased || target == EntryStatusArchived {
			return nil
		}
	case EntryStatusReleased:
		if target == EntryStatusArchived {
			return nil
		}
	}
	return fmt.Errorf("%w: %s -> %s", ErrIllegalStateTransition, current, target)
}

// CanEdit reports whether an entry's monetary fields may still change.
// Released and archived entries are edit-locked; the reconciliation
// engine's cache-field correction is the sole exception and bypasses this
// gate deliberately.
func (e PayrollEntry) CanEdit() bool {
	return e.Status == EntryStatusPending
}
