package employee

import (
	"time"

	"github.com/shopspring/decimal"
)

type Role string

const (
	RolePersonnel Role = "personnel"
	RoleAdmin     Role = "admin"
	RoleTreasurer Role = "treasurer"
)

// Employee is owned by the roster collaborator. The payroll engine only
// reads it; only active personnel are payroll subjects.
type Employee struct {
	ID            string
	FullName      string
	Role          Role
	IsActive      bool
	SalaryProfile *SalaryProfile
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// SalaryProfile is immutable input for a given period. Edits take effect
// only in periods generated after the change.
type SalaryProfile struct {
	ID            string
	EmployeeID    string
	MonthlySalary decimal.Decimal
	Department    string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// IsPayrollSubject reports whether the employee should receive a payroll
// entry when a period is generated.
func (e Employee) IsPayrollSubject() bool {
	return e.IsActive && e.Role == RolePersonnel
}
