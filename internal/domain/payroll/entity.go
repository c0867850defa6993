package payroll

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntryStatus enum
type EntryStatus string

const (
	EntryStatusPending  EntryStatus = "pending"
	EntryStatusReleased EntryStatus = "released"
	EntryStatusArchived EntryStatus = "archived"
)

// PayrollEntry is one row per (employee, period).
//
// The invariant the whole engine protects:
//
//	NetPay == (BasicSalary + Overtime) - Deductions
//
// and Deductions must equal the total described by the breakdown snapshot.
// The stored Deductions/NetPay fields are a denormalized cache of values
// inside the snapshot; the reconciliation engine is the only sanctioned
// writer of those two fields after release.
type PayrollEntry struct {
	ID          string
	EmployeeID  string
	PeriodStart time.Time
	PeriodEnd   time.Time
	BasicSalary decimal.Decimal
	Overtime    decimal.Decimal
	Deductions  decimal.Decimal
	NetPay      decimal.Decimal
	Status      EntryStatus
	Snapshot    []byte // serialized BreakdownSnapshot, owned exclusively by this entry
	ProcessedAt time.Time
	ReleasedAt  *time.Time
	ArchivedAt  *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time

	// Joined fields
	EmployeeName *string
	Department   *string
}

// OverloadPayRecord is an approved additional-pay record supplied by a
// collaborator; the builder only sums the ones falling inside the period.
type OverloadPayRecord struct {
	ID         string
	EmployeeID string
	Amount     decimal.Decimal
	Reason     *string
	GrantedAt  time.Time
}
