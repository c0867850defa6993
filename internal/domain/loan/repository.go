package loan

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// LoanRepository defines data access for employee loans.
type LoanRepository interface {
	Create(ctx context.Context, l Loan) (Loan, error)
	GetByID(ctx context.Context, id string) (Loan, error)
	ListByEmployee(ctx context.Context, employeeID string, includeArchived bool) ([]Loan, error)
	// ListActiveByEmployee returns loans that may contribute an
	// installment: status active and not archived.
	ListActiveByEmployee(ctx context.Context, employeeID string) ([]Loan, error)
	UpdateStatus(ctx context.Context, id string, status LoanStatus, startDate *time.Time) error
	// UpdateBalance persists the post-settlement balance and, when the
	// loan is paid off, flips it to completed in the same statement.
	UpdateBalance(ctx context.Context, id string, balance decimal.Decimal, completed bool) error
	// RestoreBalance reverses one settled installment: the amount is
	// added back and a loan completed by that settlement returns to
	// active. Runs when a pending entry is superseded or cleared, inside
	// the same transaction that removes the entry.
	RestoreBalance(ctx context.Context, id string, amount decimal.Decimal) error
	Archive(ctx context.Context, id string, archivedAt time.Time) error
}
