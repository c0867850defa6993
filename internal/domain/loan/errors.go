package loan

import "errors"

var (
	ErrLoanNotFound          = errors.New("loan not found")
	ErrLoanNotPending        = errors.New("loan is not pending, cannot approve or reject")
	ErrLoanAlreadyArchived   = errors.New("loan already archived")
	ErrIllegalLoanTransition = errors.New("illegal loan status transition")
)
