package response

import (
	"errors"
	"net/http"

	"github.com/barangay-hris/payroll-backend-go/internal/domain/deduction"
	"github.com/barangay-hris/payroll-backend-go/internal/domain/employee"
	"github.com/barangay-hris/payroll-backend-go/internal/domain/loan"
	"github.com/barangay-hris/payroll-backend-go/internal/domain/notification"
	"github.com/barangay-hris/payroll-backend-go/internal/domain/payroll"
	"github.com/barangay-hris/payroll-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Payroll domain errors
	case errors.Is(err, payroll.ErrEntryNotFound):
		NotFound(w, "Payroll entry not found")
	case errors.Is(err, payroll.ErrEntryAlreadyExists):
		Conflict(w, "Payroll entry already exists for this period")
	case errors.Is(err, payroll.ErrEntryNotPending):
		Conflict(w, "Payroll entry is no longer pending")
	case errors.Is(err, payroll.ErrIllegalStateTransition):
		Conflict(w, "Illegal payroll entry state transition")
	case errors.Is(err, payroll.ErrGenerationNotConfirmed):
		BadRequest(w, "Payroll generation requires explicit confirmation", nil)
	case errors.Is(err, payroll.ErrInvalidPeriod):
		BadRequest(w, "Invalid payroll period", nil)
	case errors.Is(err, payroll.ErrNothingToRelease):
		NotFound(w, "No pending entries in period")

	// Employee domain errors
	case errors.Is(err, employee.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")
	case errors.Is(err, employee.ErrNoSalaryProfile):
		BadRequest(w, "Employee has no salary profile", nil)

	// Deduction domain errors
	case errors.Is(err, deduction.ErrDeductionTypeNotFound):
		NotFound(w, "Deduction type not found")
	case errors.Is(err, deduction.ErrDeductionTypeNameExists):
		Conflict(w, "Deduction type name already exists")
	case errors.Is(err, deduction.ErrDeductionInstanceNotFound):
		NotFound(w, "Deduction instance not found")
	case errors.Is(err, deduction.ErrInstanceAlreadyArchived):
		Conflict(w, "Deduction instance already archived")

	// Loan domain errors
	case errors.Is(err, loan.ErrLoanNotFound):
		NotFound(w, "Loan not found")
	case errors.Is(err, loan.ErrLoanNotPending):
		Conflict(w, "Loan is not pending")
	case errors.Is(err, loan.ErrIllegalLoanTransition):
		Conflict(w, "Illegal loan status transition")
	case errors.Is(err, loan.ErrLoanAlreadyArchived):
		Conflict(w, "Loan already archived")

	// Notification domain errors
	case errors.Is(err, notification.ErrNotificationNotFound):
		NotFound(w, "Notification not found")

	// Default
	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}
