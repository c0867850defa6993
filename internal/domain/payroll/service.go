package payroll

import (
	"context"
	"time"
)

// Service is the payroll engine surface exposed to collaborators.
type Service interface {
	// Generate builds one pending entry per active personnel for the
	// period. The anchor resolves the period when the request carries no
	// explicit boundaries; callers resolve "now", never the engine.
	Generate(ctx context.Context, req GeneratePayrollRequest, anchor time.Time) (GenerateResult, error)
	Release(ctx context.Context, req ReleasePayrollRequest) (BulkActionResult, error)
	ArchivePeriod(ctx context.Context, req ReleasePayrollRequest) (BulkActionResult, error)
	ClearPending(ctx context.Context, req ReleasePayrollRequest) (BulkActionResult, error)

	// ReconcileArchived recomputes stored totals from each archived
	// entry's own snapshot and corrects the ones off by more than a cent.
	ReconcileArchived(ctx context.Context) (ReconcileResult, error)

	GetEntry(ctx context.Context, id string) (EntryResponse, error)
	GetEntryByEmployeePeriod(ctx context.Context, employeeID string, periodStart, periodEnd string) (EntryResponse, error)
	ListEntries(ctx context.Context, filter EntryFilter) (ListEntriesResponse, error)
	UpdateEntry(ctx context.Context, req UpdateEntryRequest) (EntryResponse, error)
	GetSummary(ctx context.Context, periodStart, periodEnd string) (PayrollSummaryResponse, error)
}
