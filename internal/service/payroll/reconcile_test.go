package payroll

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/barangay-hris/payroll-backend-go/internal/domain/payroll"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func archivedEntry(t *testing.T, id string, storedDeductions, storedNetPay float64, snap payroll.BreakdownSnapshot) payroll.PayrollEntry {
	t.Helper()
	raw, err := snap.Marshal()
	require.NoError(t, err)
	return payroll.PayrollEntry{
		ID:          id,
		Status:      payroll.EntryStatusArchived,
		BasicSalary: snap.BasicSalary,
		Overtime:    snap.OverloadPay,
		Deductions:  decimal.NewFromFloat(storedDeductions),
		NetPay:      decimal.NewFromFloat(storedNetPay),
		Snapshot:    raw,
	}
}

func consistentSnapshot() payroll.BreakdownSnapshot {
	return payroll.BreakdownSnapshot{
		SchemaVersion:        payroll.SnapshotSchemaVersion,
		BasicSalary:          decimal.NewFromInt(6000),
		OverloadPay:          decimal.NewFromInt(1000),
		TotalDeductions:      decimal.NewFromInt(350),
		DatabaseDeductions:   decimal.NewFromInt(250),
		AttendanceDeductions: decimal.NewFromInt(100),
		GrossPay:             decimal.NewFromInt(7000),
		NetPay:               decimal.NewFromInt(6650),
	}
}

func TestDecideCorrectionTrustsSnapshotTotals(t *testing.T) {
	t.Parallel()

	entry := archivedEntry(t, "entry-1", 300, 6700, consistentSnapshot())

	fix, err := decideCorrection(entry)
	require.NoError(t, err)

	assert.True(t, fix.Needed)
	assert.True(t, fix.Deductions.Equal(decimal.NewFromInt(350)), "got %s", fix.Deductions)
	assert.True(t, fix.NetPay.Equal(decimal.NewFromInt(6650)), "got %s", fix.NetPay)
}

func TestDecideCorrectionWithinTolerance(t *testing.T) {
	t.Parallel()

	// A single cent of rounding drift is not a discrepancy.
	entry := archivedEntry(t, "entry-1", 350.01, 6649.99, consistentSnapshot())

	fix, err := decideCorrection(entry)
	require.NoError(t, err)
	assert.False(t, fix.Needed)
}

func TestDecideCorrectionFallsBackToDetailSum(t *testing.T) {
	t.Parallel()

	// Legacy snapshot: no totals, only detail lines.
	snap := payroll.BreakdownSnapshot{
		BasicSalary: decimal.NewFromInt(6000),
		GrossPay:    decimal.NewFromInt(6000),
		DeductionDetails: []payroll.DeductionDetail{
			{Type: "SSS Contribution", Amount: decimal.NewFromInt(150)},
		},
		LoanDetails: []payroll.LoanDetail{
			{LoanID: "loan-1", Amount: decimal.NewFromInt(100), NewBalance: decimal.NewFromInt(900)},
		},
	}
	raw, err := snap.Marshal()
	require.NoError(t, err)
	entry := payroll.PayrollEntry{
		ID:       "entry-1",
		Status:   payroll.EntryStatusArchived,
		Snapshot: raw,
		NetPay:   decimal.NewFromInt(6000),
	}

	fix, err := decideCorrection(entry)
	require.NoError(t, err)

	assert.True(t, fix.Needed)
	assert.True(t, fix.Deductions.Equal(decimal.NewFromInt(250)), "got %s", fix.Deductions)
	assert.True(t, fix.NetPay.Equal(decimal.NewFromInt(5750)), "got %s", fix.NetPay)
}

func TestDecideCorrectionUnparseableSnapshot(t *testing.T) {
	t.Parallel()

	entry := payroll.PayrollEntry{ID: "entry-1", Snapshot: []byte("{broken")}

	_, err := decideCorrection(entry)
	assert.ErrorIs(t, err, payroll.ErrSnapshotUnparseable)
}

func TestDecideCorrectionDoubleEncodedSnapshot(t *testing.T) {
	t.Parallel()

	raw, err := consistentSnapshot().Marshal()
	require.NoError(t, err)
	doubled, err := json.Marshal(string(raw))
	require.NoError(t, err)

	entry := payroll.PayrollEntry{
		ID:         "entry-1",
		Status:     payroll.EntryStatusArchived,
		Deductions: decimal.NewFromInt(350),
		NetPay:     decimal.NewFromInt(6650),
		Snapshot:   doubled,
	}

	fix, err := decideCorrection(entry)
	require.NoError(t, err)
	assert.False(t, fix.Needed)
}

func TestReconcileArchivedCorrectsAndConverges(t *testing.T) {
	t.Parallel()

	drifted := archivedEntry(t, "entry-1", 300, 6700, consistentSnapshot())
	clean := archivedEntry(t, "entry-2", 350, 6650, consistentSnapshot())
	broken := payroll.PayrollEntry{ID: "entry-3", Status: payroll.EntryStatusArchived, Snapshot: []byte("not json")}

	store := map[string]payroll.PayrollEntry{
		drifted.ID: drifted,
		clean.ID:   clean,
		broken.ID:  broken,
	}

	payrollRepo := &fakePayrollRepo{
		ListEntriesByStatusFn: func(ctx context.Context, status payroll.EntryStatus) ([]payroll.PayrollEntry, error) {
			assert.Equal(t, payroll.EntryStatusArchived, status)
			return []payroll.PayrollEntry{store["entry-1"], store["entry-2"], store["entry-3"]}, nil
		},
		UpdateCacheFieldsFn: func(ctx context.Context, id string, deductions, netPay decimal.Decimal) error {
			entry := store[id]
			entry.Deductions = deductions
			entry.NetPay = netPay
			store[id] = entry
			return nil
		},
	}
	svc := newTestService(payrollRepo, &fakeEmployeeRepo{}, &fakeDeductionRepo{}, &fakeLoanRepo{})

	first, err := svc.ReconcileArchived(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, first.Inspected)
	assert.Equal(t, 1, first.Corrected)
	assert.Equal(t, 2, first.Skipped)

	assert.True(t, store["entry-1"].Deductions.Equal(decimal.NewFromInt(350)))
	assert.True(t, store["entry-1"].NetPay.Equal(decimal.NewFromInt(6650)))

	// Snapshots were never rewritten, so a second sweep is a no-op.
	second, err := svc.ReconcileArchived(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, second.Corrected)
	assert.Equal(t, 3, second.Skipped)
}
