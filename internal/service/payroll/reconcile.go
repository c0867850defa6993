package payroll

import (
	"context"
	"fmt"

	"github.com/barangay-hris/payroll-backend-go/internal/domain/payroll"
	"github.com/shopspring/decimal"
)

// centTolerance absorbs historical rounding drift; discrepancies at or
// below one cent are left alone.
var centTolerance = decimal.RequireFromString("0.01")

// correction is the outcome of checking one entry against its snapshot.
type correction struct {
	Deductions decimal.Decimal
	NetPay     decimal.Decimal
	Needed     bool
}

// decideCorrection recomputes an entry's cache fields from its own frozen
// snapshot. The snapshot is the source of truth; only when it carries no
// usable total does the chain fall back to the stored value and finally to
// summing the detail lines.
func decideCorrection(entry payroll.PayrollEntry) (correction, error) {
	snap, err := payroll.ParseSnapshot(entry.Snapshot)
	if err != nil {
		return correction{}, fmt.Errorf("entry %s: %w", entry.ID, err)
	}

	deductions := snap.TotalDeductions
	if deductions.IsZero() {
		deductions = entry.Deductions
	}
	if deductions.IsZero() {
		deductions = snap.SumDetails()
	}

	gross := snap.GrossPay
	if gross.IsZero() {
		gross = snap.BasicSalary.Add(snap.OverloadPay)
	}
	if gross.IsZero() {
		gross = entry.BasicSalary.Add(entry.Overtime)
	}
	netPay := gross.Sub(deductions)

	deductionsDrift := entry.Deductions.Sub(deductions).Abs()
	netPayDrift := entry.NetPay.Sub(netPay).Abs()

	return correction{
		Deductions: deductions,
		NetPay:     netPay,
		Needed:     deductionsDrift.GreaterThan(centTolerance) || netPayDrift.GreaterThan(centTolerance),
	}, nil
}

// ReconcileArchived sweeps every archived entry and rewrites the two cache
// fields where the stored values drifted from the snapshot by more than a
// cent. Snapshots themselves are never modified, so the sweep converges:
// a second run over corrected data finds nothing to do.
func (s *PayrollServiceImpl) ReconcileArchived(ctx context.Context) (payroll.ReconcileResult, error) {
	entries, err := s.payrollRepo.ListEntriesByStatus(ctx, payroll.EntryStatusArchived)
	if err != nil {
		return payroll.ReconcileResult{}, fmt.Errorf("list archived entries: %w", err)
	}

	result := payroll.ReconcileResult{Inspected: len(entries)}
	for _, entry := range entries {
		fix, err := decideCorrection(entry)
		if err != nil {
			s.logger.Warn("reconciliation skipped entry", "entry_id", entry.ID, "error", err)
			result.Skipped++
			continue
		}
		if !fix.Needed {
			result.Skipped++
			continue
		}

		if err := s.payrollRepo.UpdateCacheFields(ctx, entry.ID, fix.Deductions, fix.NetPay); err != nil {
			s.logger.Error("reconciliation correction failed", "entry_id", entry.ID, "error", err)
			result.Skipped++
			continue
		}

		s.logger.Info("reconciliation corrected entry",
			"entry_id", entry.ID,
			"stored_deductions", entry.Deductions.String(),
			"correct_deductions", fix.Deductions.String(),
			"stored_net_pay", entry.NetPay.String(),
			"correct_net_pay", fix.NetPay.String())
		result.Corrected++
	}

	return result, nil
}
