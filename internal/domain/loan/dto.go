package loan

import (
	"github.com/barangay-hris/payroll-backend-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

type CreateLoanRequest struct {
	EmployeeID            string          `json:"employee_id"`
	Amount                decimal.Decimal `json:"amount"`
	MonthlyPaymentPercent decimal.Decimal `json:"monthly_payment_percent"`
	TermMonths            int             `json:"term_months"`
}

func (r *CreateLoanRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.EmployeeID == "" {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "is required"})
	}
	if !r.Amount.IsPositive() {
		errs = append(errs, validator.ValidationError{Field: "amount", Message: "must be positive"})
	}
	if !validator.IsValidPercentage(r.MonthlyPaymentPercent) || r.MonthlyPaymentPercent.IsZero() {
		errs = append(errs, validator.ValidationError{Field: "monthly_payment_percent", Message: "must be between 0 (exclusive) and 100"})
	}
	if r.TermMonths < 1 {
		errs = append(errs, validator.ValidationError{Field: "term_months", Message: "must be at least 1"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type LoanResponse struct {
	ID                    string          `json:"id"`
	EmployeeID            string          `json:"employee_id"`
	Amount                decimal.Decimal `json:"amount"`
	Balance               decimal.Decimal `json:"balance"`
	MonthlyPaymentPercent decimal.Decimal `json:"monthly_payment_percent"`
	TermMonths            int             `json:"term_months"`
	Status                string          `json:"status"`
	StartDate             *string         `json:"start_date,omitempty"`
	EndDate               *string         `json:"end_date,omitempty"`
	ArchivedAt            *string         `json:"archived_at,omitempty"`
}
