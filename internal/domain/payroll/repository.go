package payroll

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// PayrollRepository defines data access for payroll entries and the
// period-scoped aggregates around them.
type PayrollRepository interface {
	// CreateEntry inserts one entry. The (employee_id, period_start,
	// period_end) uniqueness constraint makes concurrent duplicate
	// generation surface as ErrEntryAlreadyExists, never a silent
	// duplicate row.
	CreateEntry(ctx context.Context, entry PayrollEntry) (PayrollEntry, error)
	GetEntryByID(ctx context.Context, id string) (PayrollEntry, error)
	GetEntryByEmployeePeriod(ctx context.Context, employeeID string, period Period) (PayrollEntry, error)
	ListEntries(ctx context.Context, filter EntryFilter) ([]PayrollEntry, int64, error)
	ListEntriesByStatus(ctx context.Context, status EntryStatus) ([]PayrollEntry, error)
	// ListPendingByPeriod returns the period's pending entries with
	// their snapshots, so bulk deletion can reverse the loan
	// settlements those entries carried.
	ListPendingByPeriod(ctx context.Context, period Period) ([]PayrollEntry, error)

	// UpdatePendingEntry rewrites monetary fields and the snapshot; the
	// statement refuses non-pending rows.
	UpdatePendingEntry(ctx context.Context, entry PayrollEntry) error
	// DeletePendingEntry is the force-regenerate path; it never touches
	// released or archived rows.
	DeletePendingEntry(ctx context.Context, employeeID string, period Period) error

	// Lifecycle
	ReleaseByPeriod(ctx context.Context, period Period, releasedAt time.Time) (int64, error)
	ArchiveByPeriod(ctx context.Context, period Period, archivedAt time.Time) (int64, error)
	ClearPendingByPeriod(ctx context.Context, period Period) (int64, error)

	// Reconciliation is the sole sanctioned writer of the two cache
	// fields on non-pending entries. The snapshot column is never
	// touched.
	UpdateCacheFields(ctx context.Context, id string, deductions, netPay decimal.Decimal) error

	// Collaborator-supplied additional pay.
	ListOverloadPay(ctx context.Context, employeeID string, period Period) ([]OverloadPayRecord, error)

	GetSummary(ctx context.Context, period Period) (PayrollSummaryResponse, error)
}
