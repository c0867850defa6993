package payroll

import "errors"

var (
	ErrEntryNotFound          = errors.New("payroll entry not found")
	ErrEntryAlreadyExists     = errors.New("payroll entry already exists for this period")
	ErrEntryNotPending        = errors.New("payroll entry is not pending, cannot modify")
	ErrIllegalStateTransition = errors.New("illegal payroll entry state transition")
	ErrGenerationNotConfirmed = errors.New("payroll generation requires explicit confirmation")
	ErrInvalidPeriod          = errors.New("invalid payroll period")
	ErrSnapshotUnparseable    = errors.New("breakdown snapshot unparseable")
	ErrNothingToRelease       = errors.New("no pending entries in period")
)
