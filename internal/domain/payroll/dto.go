package payroll

import (
	"github.com/barangay-hris/payroll-backend-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// ========== GENERATION DTOs ==========

type GeneratePayrollRequest struct {
	// Explicit boundaries; when absent the caller-resolved anchor date
	// picks the period under the configured policy.
	PeriodStart *string `json:"period_start,omitempty"`
	PeriodEnd   *string `json:"period_end,omitempty"`
	// Generation is never implicit. Requests without confirmation are
	// refused before any employee is touched.
	Confirmed bool `json:"confirmed"`
	// Force supersedes an existing pending entry for the same period.
	// Released and archived entries are never superseded.
	Force bool `json:"force,omitempty"`
	// RecomputeRates re-evaluates database deductions against current
	// type definitions instead of stored instance amounts.
	RecomputeRates bool `json:"recompute_rates,omitempty"`
}

func (r *GeneratePayrollRequest) Validate() error {
	var errs validator.ValidationErrors

	if !r.Confirmed {
		errs = append(errs, validator.ValidationError{Field: "confirmed", Message: "explicit confirmation is required"})
	}
	if (r.PeriodStart == nil) != (r.PeriodEnd == nil) {
		errs = append(errs, validator.ValidationError{Field: "period_start", Message: "period_start and period_end must be provided together"})
	}
	if r.PeriodStart != nil {
		if _, ok := validator.IsValidDate(*r.PeriodStart); !ok {
			errs = append(errs, validator.ValidationError{Field: "period_start", Message: "must be YYYY-MM-DD"})
		}
	}
	if r.PeriodEnd != nil {
		if _, ok := validator.IsValidDate(*r.PeriodEnd); !ok {
			errs = append(errs, validator.ValidationError{Field: "period_end", Message: "must be YYYY-MM-DD"})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// SkippedEmployee records why one employee got no entry this run.
type SkippedEmployee struct {
	EmployeeID   string `json:"employee_id"`
	EmployeeName string `json:"employee_name"`
	Reason       string `json:"reason"`
}

// GenerateResult is the per-run aggregate: batch failures for individual
// employees are collected here, never fatal to the batch.
type GenerateResult struct {
	Period    string            `json:"period"`
	Created   int               `json:"created"`
	Existing  int               `json:"existing"`
	Skipped   []SkippedEmployee `json:"skipped"`
	Failed    []SkippedEmployee `json:"failed"`
	EntryIDs  []string          `json:"entry_ids"`
	Generated []EntryResponse   `json:"generated,omitempty"`
}

// ========== RELEASE / MAINTENANCE DTOs ==========

type ReleasePayrollRequest struct {
	PeriodStart string `json:"period_start"`
	PeriodEnd   string `json:"period_end"`
}

func (r *ReleasePayrollRequest) Validate() error {
	var errs validator.ValidationErrors

	if _, ok := validator.IsValidDate(r.PeriodStart); !ok {
		errs = append(errs, validator.ValidationError{Field: "period_start", Message: "must be YYYY-MM-DD"})
	}
	if _, ok := validator.IsValidDate(r.PeriodEnd); !ok {
		errs = append(errs, validator.ValidationError{Field: "period_end", Message: "must be YYYY-MM-DD"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type BulkActionResult struct {
	Period   string `json:"period"`
	Affected int64  `json:"affected"`
}

// ========== RECONCILIATION DTOs ==========

// ReconcileResult reports counts only; discrepancies are never silently
// dropped, every inspected entry lands in exactly one bucket.
type ReconcileResult struct {
	Inspected int `json:"inspected"`
	Corrected int `json:"corrected"`
	Skipped   int `json:"skipped"`
}

// ========== ENTRY DTOs ==========

type UpdateEntryRequest struct {
	ID       string
	Overtime *decimal.Decimal `json:"overtime,omitempty"`
	NetPay   *decimal.Decimal `json:"net_pay,omitempty"`
}

type EntryFilter struct {
	PeriodStart *string
	PeriodEnd   *string
	Status      *EntryStatus
	EmployeeID  *string
	Page        int
	Limit       int
}

type EntryResponse struct {
	ID           string             `json:"id"`
	EmployeeID   string             `json:"employee_id"`
	EmployeeName string             `json:"employee_name,omitempty"`
	Department   string             `json:"department,omitempty"`
	PeriodStart  string             `json:"period_start"`
	PeriodEnd    string             `json:"period_end"`
	BasicSalary  decimal.Decimal    `json:"basic_salary"`
	Overtime     decimal.Decimal    `json:"overtime"`
	Deductions   decimal.Decimal    `json:"deductions"`
	NetPay       decimal.Decimal    `json:"net_pay"`
	Status       string             `json:"status"`
	Breakdown    *BreakdownSnapshot `json:"breakdown,omitempty"`
	ProcessedAt  string             `json:"processed_at"`
	ReleasedAt   *string            `json:"released_at,omitempty"`
	ArchivedAt   *string            `json:"archived_at,omitempty"`
}

type ListEntriesResponse struct {
	Data       []EntryResponse `json:"data"`
	TotalCount int64           `json:"total_count"`
	Page       int             `json:"page"`
	Limit      int             `json:"limit"`
}

// PayrollSummaryResponse aggregates one period for the dashboard.
type PayrollSummaryResponse struct {
	Period          string          `json:"period"`
	EmployeeCount   int             `json:"employee_count"`
	TotalGrossPay   decimal.Decimal `json:"total_gross_pay"`
	TotalDeductions decimal.Decimal `json:"total_deductions"`
	TotalNetPay     decimal.Decimal `json:"total_net_pay"`
	PendingCount    int             `json:"pending_count"`
	ReleasedCount   int             `json:"released_count"`
	ArchivedCount   int             `json:"archived_count"`
}
