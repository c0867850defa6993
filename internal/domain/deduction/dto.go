package deduction

import (
	"github.com/barangay-hris/payroll-backend-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// ========== TYPE DTOs ==========

type CreateDeductionTypeRequest struct {
	Name            string           `json:"name"`
	CalculationType string           `json:"calculation_type"` // "fixed" or "percentage"
	Amount          *decimal.Decimal `json:"amount,omitempty"`
	PercentageValue *decimal.Decimal `json:"percentage_value,omitempty"`
	IsMandatory     *bool            `json:"is_mandatory,omitempty"`
	IsAttendance    *bool            `json:"is_attendance,omitempty"`
}

func (r *CreateDeductionTypeRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Name) {
		errs = append(errs, validator.ValidationError{Field: "name", Message: "is required"})
	}
	if r.CalculationType != string(CalculationTypeFixed) && r.CalculationType != string(CalculationTypePercentage) {
		errs = append(errs, validator.ValidationError{Field: "calculation_type", Message: "must be 'fixed' or 'percentage'"})
	}
	if r.CalculationType == string(CalculationTypeFixed) {
		if r.Amount == nil {
			errs = append(errs, validator.ValidationError{Field: "amount", Message: "is required for fixed deductions"})
		} else if r.Amount.IsNegative() {
			errs = append(errs, validator.ValidationError{Field: "amount", Message: "must be non-negative"})
		}
	}
	if r.CalculationType == string(CalculationTypePercentage) {
		if r.PercentageValue == nil {
			errs = append(errs, validator.ValidationError{Field: "percentage_value", Message: "is required for percentage deductions"})
		} else if !validator.IsValidPercentage(*r.PercentageValue) {
			errs = append(errs, validator.ValidationError{Field: "percentage_value", Message: "must be between 0 and 100"})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type UpdateDeductionTypeRequest struct {
	ID          string
	Name        *string `json:"name,omitempty"`
	IsMandatory *bool   `json:"is_mandatory,omitempty"`
	IsActive    *bool   `json:"is_active,omitempty"`
}

// UpdateDeductionRateRequest changes the authoritative rate of a type and
// triggers the cascading recomputation of non-archived instances.
type UpdateDeductionRateRequest struct {
	ID              string
	Amount          *decimal.Decimal `json:"amount,omitempty"`
	PercentageValue *decimal.Decimal `json:"percentage_value,omitempty"`
}

func (r *UpdateDeductionRateRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.Amount == nil && r.PercentageValue == nil {
		errs = append(errs, validator.ValidationError{Field: "amount", Message: "either amount or percentage_value is required"})
	}
	if r.Amount != nil && r.Amount.IsNegative() {
		errs = append(errs, validator.ValidationError{Field: "amount", Message: "must be non-negative"})
	}
	if r.PercentageValue != nil && !validator.IsValidPercentage(*r.PercentageValue) {
		errs = append(errs, validator.ValidationError{Field: "percentage_value", Message: "must be between 0 and 100"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type DeductionTypeResponse struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	CalculationType string          `json:"calculation_type"`
	Amount          decimal.Decimal `json:"amount"`
	PercentageValue decimal.Decimal `json:"percentage_value"`
	IsMandatory     bool            `json:"is_mandatory"`
	IsAttendance    bool            `json:"is_attendance"`
	IsActive        bool            `json:"is_active"`
}

// ========== INSTANCE DTOs ==========

type ApplyDeductionRequest struct {
	EmployeeID      string  `json:"-"`
	DeductionTypeID string  `json:"deduction_type_id"`
	Notes           *string `json:"notes,omitempty"`
}

func (r *ApplyDeductionRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.DeductionTypeID == "" {
		errs = append(errs, validator.ValidationError{Field: "deduction_type_id", Message: "is required"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type DeductionInstanceResponse struct {
	ID              string          `json:"id"`
	EmployeeID      string          `json:"employee_id"`
	DeductionTypeID string          `json:"deduction_type_id"`
	TypeName        string          `json:"type_name"`
	Amount          decimal.Decimal `json:"amount"`
	AppliedAt       string          `json:"applied_at"`
	Notes           *string         `json:"notes,omitempty"`
	ArchivedAt      *string         `json:"archived_at,omitempty"`
}

// CascadeResult reports a cascading rate update.
type CascadeResult struct {
	Type             DeductionTypeResponse `json:"type"`
	InstancesUpdated int                   `json:"instances_updated"`
}
