package payroll

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/barangay-hris/payroll-backend-go/internal/domain/deduction"
	"github.com/barangay-hris/payroll-backend-go/internal/domain/employee"
	"github.com/barangay-hris/payroll-backend-go/internal/domain/loan"
	"github.com/barangay-hris/payroll-backend-go/internal/domain/payroll"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ========== FAKES ==========

type fakePayrollRepo struct {
	CreateEntryFn              func(ctx context.Context, entry payroll.PayrollEntry) (payroll.PayrollEntry, error)
	GetEntryByIDFn             func(ctx context.Context, id string) (payroll.PayrollEntry, error)
	GetEntryByEmployeePeriodFn func(ctx context.Context, employeeID string, period payroll.Period) (payroll.PayrollEntry, error)
	ListEntriesFn              func(ctx context.Context, filter payroll.EntryFilter) ([]payroll.PayrollEntry, int64, error)
	ListEntriesByStatusFn      func(ctx context.Context, status payroll.EntryStatus) ([]payroll.PayrollEntry, error)
	ListPendingByPeriodFn      func(ctx context.Context, period payroll.Period) ([]payroll.PayrollEntry, error)
	UpdatePendingEntryFn       func(ctx context.Context, entry payroll.PayrollEntry) error
	DeletePendingEntryFn       func(ctx context.Context, employeeID string, period payroll.Period) error
	ReleaseByPeriodFn          func(ctx context.Context, period payroll.Period, releasedAt time.Time) (int64, error)
	ArchiveByPeriodFn          func(ctx context.Context, period payroll.Period, archivedAt time.Time) (int64, error)
	ClearPendingByPeriodFn     func(ctx context.Context, period payroll.Period) (int64, error)
	UpdateCacheFieldsFn        func(ctx context.Context, id string, deductions, netPay decimal.Decimal) error
	ListOverloadPayFn          func(ctx context.Context, employeeID string, period payroll.Period) ([]payroll.OverloadPayRecord, error)
	GetSummaryFn               func(ctx context.Context, period payroll.Period) (payroll.PayrollSummaryResponse, error)
}

func (f *fakePayrollRepo) CreateEntry(ctx context.Context, entry payroll.PayrollEntry) (payroll.PayrollEntry, error) {
	return f.CreateEntryFn(ctx, entry)
}
func (f *fakePayrollRepo) GetEntryByID(ctx context.Context, id string) (payroll.PayrollEntry, error) {
	return f.GetEntryByIDFn(ctx, id)
}
func (f *fakePayrollRepo) GetEntryByEmployeePeriod(ctx context.Context, employeeID string, period payroll.Period) (payroll.PayrollEntry, error) {
	return f.GetEntryByEmployeePeriodFn(ctx, employeeID, period)
}
func (f *fakePayrollRepo) ListEntries(ctx context.Context, filter payroll.EntryFilter) ([]payroll.PayrollEntry, int64, error) {
	return f.ListEntriesFn(ctx, filter)
}
func (f *fakePayrollRepo) ListEntriesByStatus(ctx context.Context, status payroll.EntryStatus) ([]payroll.PayrollEntry, error) {
	return f.ListEntriesByStatusFn(ctx, status)
}
func (f *fakePayrollRepo) ListPendingByPeriod(ctx context.Context, period payroll.Period) ([]payroll.PayrollEntry, error) {
	if f.ListPendingByPeriodFn == nil {
		return nil, nil
	}
	return f.ListPendingByPeriodFn(ctx, period)
}
func (f *fakePayrollRepo) UpdatePendingEntry(ctx context.Context, entry payroll.PayrollEntry) error {
	return f.UpdatePendingEntryFn(ctx, entry)
}
func (f *fakePayrollRepo) DeletePendingEntry(ctx context.Context, employeeID string, period payroll.Period) error {
	return f.DeletePendingEntryFn(ctx, employeeID, period)
}
func (f *fakePayrollRepo) ReleaseByPeriod(ctx context.Context, period payroll.Period, releasedAt time.Time) (int64, error) {
	return f.ReleaseByPeriodFn(ctx, period, releasedAt)
}
func (f *fakePayrollRepo) ArchiveByPeriod(ctx context.Context, period payroll.Period, archivedAt time.Time) (int64, error) {
	return f.ArchiveByPeriodFn(ctx, period, archivedAt)
}
func (f *fakePayrollRepo) ClearPendingByPeriod(ctx context.Context, period payroll.Period) (int64, error) {
	return f.ClearPendingByPeriodFn(ctx, period)
}
func (f *fakePayrollRepo) UpdateCacheFields(ctx context.Context, id string, deductions, netPay decimal.Decimal) error {
	return f.UpdateCacheFieldsFn(ctx, id, deductions, netPay)
}
func (f *fakePayrollRepo) ListOverloadPay(ctx context.Context, employeeID string, period payroll.Period) ([]payroll.OverloadPayRecord, error) {
	if f.ListOverloadPayFn == nil {
		return nil, nil
	}
	return f.ListOverloadPayFn(ctx, employeeID, period)
}
func (f *fakePayrollRepo) GetSummary(ctx context.Context, period payroll.Period) (payroll.PayrollSummaryResponse, error) {
	return f.GetSummaryFn(ctx, period)
}

type fakeEmployeeRepo struct {
	GetByIDFn             func(ctx context.Context, id string) (employee.Employee, error)
	ListActivePersonnelFn func(ctx context.Context) ([]employee.Employee, error)
}

func (f *fakeEmployeeRepo) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	return f.GetByIDFn(ctx, id)
}
func (f *fakeEmployeeRepo) ListActivePersonnel(ctx context.Context) ([]employee.Employee, error) {
	return f.ListActivePersonnelFn(ctx)
}

type fakeDeductionRepo struct {
	deduction.DeductionRepository

	ListTypesFn               func(ctx context.Context, activeOnly bool) ([]deduction.DeductionType, error)
	ListInstancesByEmployeeFn func(ctx context.Context, employeeID string, includeArchived bool) ([]deduction.DeductionInstance, error)
}

func (f *fakeDeductionRepo) ListTypes(ctx context.Context, activeOnly bool) ([]deduction.DeductionType, error) {
	if f.ListTypesFn == nil {
		return nil, nil
	}
	return f.ListTypesFn(ctx, activeOnly)
}
func (f *fakeDeductionRepo) ListInstancesByEmployee(ctx context.Context, employeeID string, includeArchived bool) ([]deduction.DeductionInstance, error) {
	if f.ListInstancesByEmployeeFn == nil {
		return nil, nil
	}
	return f.ListInstancesByEmployeeFn(ctx, employeeID, includeArchived)
}

type fakeLoanRepo struct {
	loan.LoanRepository

	GetByIDFn              func(ctx context.Context, id string) (loan.Loan, error)
	ListActiveByEmployeeFn func(ctx context.Context, employeeID string) ([]loan.Loan, error)
	UpdateBalanceFn        func(ctx context.Context, id string, balance decimal.Decimal, completed bool) error
	RestoreBalanceFn       func(ctx context.Context, id string, amount decimal.Decimal) error
}

func (f *fakeLoanRepo) GetByID(ctx context.Context, id string) (loan.Loan, error) {
	if f.GetByIDFn == nil {
		return loan.Loan{}, loan.ErrLoanNotFound
	}
	return f.GetByIDFn(ctx, id)
}
func (f *fakeLoanRepo) ListActiveByEmployee(ctx context.Context, employeeID string) ([]loan.Loan, error) {
	if f.ListActiveByEmployeeFn == nil {
		return nil, nil
	}
	return f.ListActiveByEmployeeFn(ctx, employeeID)
}
func (f *fakeLoanRepo) UpdateBalance(ctx context.Context, id string, balance decimal.Decimal, completed bool) error {
	if f.UpdateBalanceFn == nil {
		return nil
	}
	return f.UpdateBalanceFn(ctx, id, balance, completed)
}
func (f *fakeLoanRepo) RestoreBalance(ctx context.Context, id string, amount decimal.Decimal) error {
	if f.RestoreBalanceFn == nil {
		return nil
	}
	return f.RestoreBalanceFn(ctx, id, amount)
}

// ========== FIXTURES ==========

func newTestService(payrollRepo *fakePayrollRepo, employeeRepo *fakeEmployeeRepo, deductionRepo *fakeDeductionRepo, loanRepo *fakeLoanRepo) *PayrollServiceImpl {
	policy, _ := payroll.NewPeriodPolicy(payroll.ConventionMonthly, time.UTC)
	return &PayrollServiceImpl{
		payrollRepo:   payrollRepo,
		employeeRepo:  employeeRepo,
		deductionRepo: deductionRepo,
		loanRepo:      loanRepo,
		policy:        policy,
		logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
		runTx: func(ctx context.Context, fn func(tx pgx.Tx) error) error {
			return fn(nil)
		},
	}
}

func testEmployee(id string, monthly float64) employee.Employee {
	return employee.Employee{
		ID:       id,
		FullName: "Test Personnel " + id,
		Role:     employee.RolePersonnel,
		IsActive: true,
		SalaryProfile: &employee.SalaryProfile{
			EmployeeID:    id,
			MonthlySalary: decimal.NewFromFloat(monthly),
			Department:    "Administration",
		},
	}
}

func anchorDate() time.Time {
	return time.Date(2026, time.August, 10, 9, 0, 0, 0, time.UTC)
}

// ========== GENERATION ==========

func TestGenerateRequiresConfirmation(t *testing.T) {
	t.Parallel()

	svc := newTestService(&fakePayrollRepo{}, &fakeEmployeeRepo{}, &fakeDeductionRepo{}, &fakeLoanRepo{})

	_, err := svc.Generate(context.Background(), payroll.GeneratePayrollRequest{Confirmed: false}, anchorDate())
	require.Error(t, err)
}

func TestGenerateCreatesPendingEntries(t *testing.T) {
	t.Parallel()

	var createdEntries []payroll.PayrollEntry
	payrollRepo := &fakePayrollRepo{
		GetEntryByEmployeePeriodFn: func(ctx context.Context, employeeID string, period payroll.Period) (payroll.PayrollEntry, error) {
			return payroll.PayrollEntry{}, payroll.ErrEntryNotFound
		},
		CreateEntryFn: func(ctx context.Context, entry payroll.PayrollEntry) (payroll.PayrollEntry, error) {
			entry.ID = "entry-" + entry.EmployeeID
			createdEntries = append(createdEntries, entry)
			return entry, nil
		},
	}
	employeeRepo := &fakeEmployeeRepo{
		ListActivePersonnelFn: func(ctx context.Context) ([]employee.Employee, error) {
			return []employee.Employee{testEmployee("emp-1", 6000), testEmployee("emp-2", 8000)}, nil
		},
	}

	svc := newTestService(payrollRepo, employeeRepo, &fakeDeductionRepo{}, &fakeLoanRepo{})

	result, err := svc.Generate(context.Background(), payroll.GeneratePayrollRequest{Confirmed: true}, anchorDate())
	require.NoError(t, err)

	assert.Equal(t, 2, result.Created)
	assert.Equal(t, 0, result.Existing)
	assert.Empty(t, result.Skipped)
	assert.Empty(t, result.Failed)
	assert.Equal(t, "2026-08-01_2026-08-31", result.Period)
	require.Len(t, createdEntries, 2)

	for _, entry := range createdEntries {
		assert.Equal(t, payroll.EntryStatusPending, entry.Status)
		assert.NotEmpty(t, entry.Snapshot)
	}
	assert.True(t, createdEntries[0].NetPay.Equal(decimal.NewFromInt(6000)))
	assert.True(t, createdEntries[1].NetPay.Equal(decimal.NewFromInt(8000)))
}

func TestGenerateIsIdempotent(t *testing.T) {
	t.Parallel()

	created := 0
	payrollRepo := &fakePayrollRepo{
		GetEntryByEmployeePeriodFn: func(ctx context.Context, employeeID string, period payroll.Period) (payroll.PayrollEntry, error) {
			if created > 0 {
				return payroll.PayrollEntry{ID: "entry-1", EmployeeID: employeeID, Status: payroll.EntryStatusPending}, nil
			}
			return payroll.PayrollEntry{}, payroll.ErrEntryNotFound
		},
		CreateEntryFn: func(ctx context.Context, entry payroll.PayrollEntry) (payroll.PayrollEntry, error) {
			created++
			entry.ID = "entry-1"
			return entry, nil
		},
	}
	employeeRepo := &fakeEmployeeRepo{
		ListActivePersonnelFn: func(ctx context.Context) ([]employee.Employee, error) {
			return []employee.Employee{testEmployee("emp-1", 6000)}, nil
		},
	}

	svc := newTestService(payrollRepo, employeeRepo, &fakeDeductionRepo{}, &fakeLoanRepo{})
	req := payroll.GeneratePayrollRequest{Confirmed: true}

	first, err := svc.Generate(context.Background(), req, anchorDate())
	require.NoError(t, err)
	assert.Equal(t, 1, first.Created)

	second, err := svc.Generate(context.Background(), req, anchorDate())
	require.NoError(t, err)
	assert.Equal(t, 0, second.Created)
	assert.Equal(t, 1, second.Existing)
	assert.Equal(t, 1, created)
}

func TestGenerateSkipsEmployeeWithoutSalaryProfile(t *testing.T) {
	t.Parallel()

	payrollRepo := &fakePayrollRepo{
		GetEntryByEmployeePeriodFn: func(ctx context.Context, employeeID string, period payroll.Period) (payroll.PayrollEntry, error) {
			return payroll.PayrollEntry{}, payroll.ErrEntryNotFound
		},
		CreateEntryFn: func(ctx context.Context, entry payroll.PayrollEntry) (payroll.PayrollEntry, error) {
			entry.ID = "entry-" + entry.EmployeeID
			return entry, nil
		},
	}
	noProfile := employee.Employee{ID: "emp-2", FullName: "No Profile", Role: employee.RolePersonnel, IsActive: true}
	employeeRepo := &fakeEmployeeRepo{
		ListActivePersonnelFn: func(ctx context.Context) ([]employee.Employee, error) {
			return []employee.Employee{testEmployee("emp-1", 6000), noProfile}, nil
		},
	}

	svc := newTestService(payrollRepo, employeeRepo, &fakeDeductionRepo{}, &fakeLoanRepo{})

	result, err := svc.Generate(context.Background(), payroll.GeneratePayrollRequest{Confirmed: true}, anchorDate())
	require.NoError(t, err)

	assert.Equal(t, 1, result.Created)
	require.Len(t, result.Skipped, 1)
	assert.Equal(t, "emp-2", result.Skipped[0].EmployeeID)
	assert.Equal(t, "no salary profile", result.Skipped[0].Reason)
	assert.Empty(t, result.Failed)
}

func TestGenerateForceSupersedesPendingOnly(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		existing      payroll.EntryStatus
		wantDeleted   bool
		wantCreated   int
		wantExisting  int
	}{
		{name: "pending entry superseded", existing: payroll.EntryStatusPending, wantDeleted: true, wantCreated: 1},
		{name: "released entry untouched", existing: payroll.EntryStatusReleased, wantExisting: 1},
		{name: "archived entry untouched", existing: payroll.EntryStatusArchived, wantExisting: 1},
	}

	priorSnap := payroll.BreakdownSnapshot{
		SchemaVersion: payroll.SnapshotSchemaVersion,
		BasicSalary:   decimal.NewFromInt(6000),
		GrossPay:      decimal.NewFromInt(6000),
		NetPay:        decimal.NewFromInt(6000),
	}
	priorRaw, err := priorSnap.Marshal()
	require.NoError(t, err)

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			deleted := false
			payrollRepo := &fakePayrollRepo{
				GetEntryByEmployeePeriodFn: func(ctx context.Context, employeeID string, period payroll.Period) (payroll.PayrollEntry, error) {
					return payroll.PayrollEntry{ID: "entry-old", EmployeeID: employeeID, Status: tt.existing, Snapshot: priorRaw}, nil
				},
				DeletePendingEntryFn: func(ctx context.Context, employeeID string, period payroll.Period) error {
					deleted = true
					return nil
				},
				CreateEntryFn: func(ctx context.Context, entry payroll.PayrollEntry) (payroll.PayrollEntry, error) {
					entry.ID = "entry-new"
					return entry, nil
				},
			}
			employeeRepo := &fakeEmployeeRepo{
				ListActivePersonnelFn: func(ctx context.Context) ([]employee.Employee, error) {
					return []employee.Employee{testEmployee("emp-1", 6000)}, nil
				},
			}

			svc := newTestService(payrollRepo, employeeRepo, &fakeDeductionRepo{}, &fakeLoanRepo{})

			result, err := svc.Generate(context.Background(), payroll.GeneratePayrollRequest{Confirmed: true, Force: true}, anchorDate())
			require.NoError(t, err)

			assert.Equal(t, tt.wantDeleted, deleted)
			assert.Equal(t, tt.wantCreated, result.Created)
			assert.Equal(t, tt.wantExisting, result.Existing)
		})
	}
}

func TestGenerateSettlesActiveLoans(t *testing.T) {
	t.Parallel()

	type balanceUpdate struct {
		id        string
		balance   decimal.Decimal
		completed bool
	}
	var updates []balanceUpdate

	payrollRepo := &fakePayrollRepo{
		GetEntryByEmployeePeriodFn: func(ctx context.Context, employeeID string, period payroll.Period) (payroll.PayrollEntry, error) {
			return payroll.PayrollEntry{}, payroll.ErrEntryNotFound
		},
		CreateEntryFn: func(ctx context.Context, entry payroll.PayrollEntry) (payroll.PayrollEntry, error) {
			entry.ID = "entry-1"
			return entry, nil
		},
	}
	employeeRepo := &fakeEmployeeRepo{
		ListActivePersonnelFn: func(ctx context.Context) ([]employee.Employee, error) {
			return []employee.Employee{testEmployee("emp-1", 6000)}, nil
		},
	}
	loanRepo := &fakeLoanRepo{
		ListActiveByEmployeeFn: func(ctx context.Context, employeeID string) ([]loan.Loan, error) {
			return []loan.Loan{{
				ID:                    "loan-1",
				EmployeeID:            employeeID,
				Amount:                decimal.NewFromInt(12000),
				Balance:               decimal.NewFromInt(12000),
				MonthlyPaymentPercent: decimal.NewFromInt(10),
				Status:                loan.LoanStatusActive,
			}}, nil
		},
		UpdateBalanceFn: func(ctx context.Context, id string, balance decimal.Decimal, completed bool) error {
			updates = append(updates, balanceUpdate{id: id, balance: balance, completed: completed})
			return nil
		},
	}

	svc := newTestService(payrollRepo, employeeRepo, &fakeDeductionRepo{}, loanRepo)

	result, err := svc.Generate(context.Background(), payroll.GeneratePayrollRequest{Confirmed: true}, anchorDate())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Created)

	require.Len(t, updates, 1)
	assert.Equal(t, "loan-1", updates[0].id)
	assert.True(t, updates[0].balance.Equal(decimal.NewFromInt(10800)), "got %s", updates[0].balance)
	assert.False(t, updates[0].completed)

	require.Len(t, result.Generated, 1)
	assert.True(t, result.Generated[0].NetPay.Equal(decimal.NewFromInt(4800)), "got %s", result.Generated[0].NetPay)
}

func TestGenerateSplitsAttendanceFromDatabaseDeductions(t *testing.T) {
	t.Parallel()

	var created payroll.PayrollEntry
	payrollRepo := &fakePayrollRepo{
		GetEntryByEmployeePeriodFn: func(ctx context.Context, employeeID string, period payroll.Period) (payroll.PayrollEntry, error) {
			return payroll.PayrollEntry{}, payroll.ErrEntryNotFound
		},
		CreateEntryFn: func(ctx context.Context, entry payroll.PayrollEntry) (payroll.PayrollEntry, error) {
			entry.ID = "entry-1"
			created = entry
			return entry, nil
		},
	}
	employeeRepo := &fakeEmployeeRepo{
		ListActivePersonnelFn: func(ctx context.Context) ([]employee.Employee, error) {
			return []employee.Employee{testEmployee("emp-1", 6000)}, nil
		},
	}
	sssName := "SSS Contribution"
	lateName := "Late Penalty"
	lateNote := "late 30m"
	isAttendance := true
	notAttendance := false
	deductionRepo := &fakeDeductionRepo{
		ListInstancesByEmployeeFn: func(ctx context.Context, employeeID string, includeArchived bool) ([]deduction.DeductionInstance, error) {
			return []deduction.DeductionInstance{
				{ID: "inst-1", EmployeeID: employeeID, Amount: decimal.NewFromInt(150), TypeName: &sssName, TypeIsAttendance: &notAttendance},
				{ID: "inst-2", EmployeeID: employeeID, Amount: decimal.NewFromInt(100), Notes: &lateNote, TypeName: &lateName, TypeIsAttendance: &isAttendance},
			}, nil
		},
	}

	svc := newTestService(payrollRepo, employeeRepo, deductionRepo, &fakeLoanRepo{})

	result, err := svc.Generate(context.Background(), payroll.GeneratePayrollRequest{Confirmed: true}, anchorDate())
	require.NoError(t, err)
	require.Equal(t, 1, result.Created)

	snap, err := payroll.ParseSnapshot(created.Snapshot)
	require.NoError(t, err)

	assert.True(t, snap.DatabaseDeductions.Equal(decimal.NewFromInt(150)), "got %s", snap.DatabaseDeductions)
	assert.True(t, snap.AttendanceDeductions.Equal(decimal.NewFromInt(100)), "got %s", snap.AttendanceDeductions)
	assert.True(t, snap.TotalDeductions.Equal(decimal.NewFromInt(250)))
	assert.True(t, created.NetPay.Equal(decimal.NewFromInt(5750)))

	require.Len(t, snap.AttendanceDeductionDetails, 1)
	require.NotNil(t, snap.AttendanceDeductionDetails[0].LateMinutes)
	assert.Equal(t, 30, *snap.AttendanceDeductionDetails[0].LateMinutes)
}

func TestGenerateForceChargesOneInstallmentPerPeriod(t *testing.T) {
	t.Parallel()

	entries := map[string]payroll.PayrollEntry{}
	balance := decimal.NewFromInt(12000)

	payrollRepo := &fakePayrollRepo{
		GetEntryByEmployeePeriodFn: func(ctx context.Context, employeeID string, period payroll.Period) (payroll.PayrollEntry, error) {
			if e, ok := entries[employeeID+"|"+period.Key()]; ok {
				return e, nil
			}
			return payroll.PayrollEntry{}, payroll.ErrEntryNotFound
		},
		CreateEntryFn: func(ctx context.Context, entry payroll.PayrollEntry) (payroll.PayrollEntry, error) {
			entry.ID = "entry-" + entry.EmployeeID
			key := payroll.Period{Start: entry.PeriodStart, End: entry.PeriodEnd}.Key()
			entries[entry.EmployeeID+"|"+key] = entry
			return entry, nil
		},
		DeletePendingEntryFn: func(ctx context.Context, employeeID string, period payroll.Period) error {
			delete(entries, employeeID+"|"+period.Key())
			return nil
		},
	}
	employeeRepo := &fakeEmployeeRepo{
		ListActivePersonnelFn: func(ctx context.Context) ([]employee.Employee, error) {
			return []employee.Employee{testEmployee("emp-1", 6000)}, nil
		},
	}
	loanRepo := &fakeLoanRepo{
		ListActiveByEmployeeFn: func(ctx context.Context, employeeID string) ([]loan.Loan, error) {
			return []loan.Loan{{
				ID:                    "loan-1",
				EmployeeID:            employeeID,
				Amount:                decimal.NewFromInt(12000),
				Balance:               balance,
				MonthlyPaymentPercent: decimal.NewFromInt(10),
				Status:                loan.LoanStatusActive,
			}}, nil
		},
		UpdateBalanceFn: func(ctx context.Context, id string, b decimal.Decimal, completed bool) error {
			balance = b
			return nil
		},
		RestoreBalanceFn: func(ctx context.Context, id string, amount decimal.Decimal) error {
			balance = balance.Add(amount)
			return nil
		},
	}

	svc := newTestService(payrollRepo, employeeRepo, &fakeDeductionRepo{}, loanRepo)

	first, err := svc.Generate(context.Background(), payroll.GeneratePayrollRequest{Confirmed: true}, anchorDate())
	require.NoError(t, err)
	require.Equal(t, 1, first.Created)
	require.True(t, balance.Equal(decimal.NewFromInt(10800)), "got %s", balance)

	second, err := svc.Generate(context.Background(), payroll.GeneratePayrollRequest{Confirmed: true, Force: true}, anchorDate())
	require.NoError(t, err)
	require.Equal(t, 1, second.Created)
	assert.Empty(t, second.Failed)

	// One pay period, one installment, even after a forced rerun.
	assert.True(t, balance.Equal(decimal.NewFromInt(10800)), "got %s", balance)

	entry, ok := entries["emp-1|2026-08-01_2026-08-31"]
	require.True(t, ok)
	snap, err := payroll.ParseSnapshot(entry.Snapshot)
	require.NoError(t, err)
	require.Len(t, snap.LoanDetails, 1)
	assert.True(t, snap.LoanDetails[0].NewBalance.Equal(balance), "snapshot disagrees with ledger: %s vs %s", snap.LoanDetails[0].NewBalance, balance)
	assert.True(t, entry.NetPay.Equal(decimal.NewFromInt(4800)), "got %s", entry.NetPay)
}

func TestClearPendingRestoresLoanBalances(t *testing.T) {
	t.Parallel()

	snap := payroll.BreakdownSnapshot{
		SchemaVersion:   payroll.SnapshotSchemaVersion,
		BasicSalary:     decimal.NewFromInt(6000),
		TotalDeductions: decimal.NewFromInt(1200),
		LoanPayments:    decimal.NewFromInt(1200),
		LoanDetails: []payroll.LoanDetail{
			{LoanID: "loan-1", Amount: decimal.NewFromInt(1200), NewBalance: decimal.NewFromInt(10800)},
		},
		GrossPay: decimal.NewFromInt(6000),
		NetPay:   decimal.NewFromInt(4800),
	}
	raw, err := snap.Marshal()
	require.NoError(t, err)

	cleared := false
	payrollRepo := &fakePayrollRepo{
		ListPendingByPeriodFn: func(ctx context.Context, period payroll.Period) ([]payroll.PayrollEntry, error) {
			return []payroll.PayrollEntry{{ID: "entry-1", EmployeeID: "emp-1", Status: payroll.EntryStatusPending, Snapshot: raw}}, nil
		},
		ClearPendingByPeriodFn: func(ctx context.Context, period payroll.Period) (int64, error) {
			cleared = true
			return 1, nil
		},
	}
	type restore struct {
		id     string
		amount decimal.Decimal
	}
	var restored []restore
	loanRepo := &fakeLoanRepo{
		RestoreBalanceFn: func(ctx context.Context, id string, amount decimal.Decimal) error {
			restored = append(restored, restore{id: id, amount: amount})
			return nil
		},
	}

	svc := newTestService(payrollRepo, &fakeEmployeeRepo{}, &fakeDeductionRepo{}, loanRepo)

	result, err := svc.ClearPending(context.Background(), payroll.ReleasePayrollRequest{PeriodStart: "2026-08-01", PeriodEnd: "2026-08-31"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), result.Affected)
	assert.True(t, cleared)

	require.Len(t, restored, 1)
	assert.Equal(t, "loan-1", restored[0].id)
	assert.True(t, restored[0].amount.Equal(decimal.NewFromInt(1200)), "got %s", restored[0].amount)
}

func TestGenerateExcludesAttendanceOutsidePeriod(t *testing.T) {
	t.Parallel()

	var created payroll.PayrollEntry
	payrollRepo := &fakePayrollRepo{
		GetEntryByEmployeePeriodFn: func(ctx context.Context, employeeID string, period payroll.Period) (payroll.PayrollEntry, error) {
			return payroll.PayrollEntry{}, payroll.ErrEntryNotFound
		},
		CreateEntryFn: func(ctx context.Context, entry payroll.PayrollEntry) (payroll.PayrollEntry, error) {
			entry.ID = "entry-1"
			created = entry
			return entry, nil
		},
	}
	employeeRepo := &fakeEmployeeRepo{
		ListActivePersonnelFn: func(ctx context.Context) ([]employee.Employee, error) {
			return []employee.Employee{testEmployee("emp-1", 6000)}, nil
		},
	}
	lateName := "Late Penalty"
	isAttendance := true
	deductionRepo := &fakeDeductionRepo{
		ListInstancesByEmployeeFn: func(ctx context.Context, employeeID string, includeArchived bool) ([]deduction.DeductionInstance, error) {
			return []deduction.DeductionInstance{
				{
					ID: "inst-july", EmployeeID: employeeID, Amount: decimal.NewFromInt(100),
					AppliedAt: time.Date(2026, time.July, 15, 8, 30, 0, 0, time.UTC),
					TypeName:  &lateName, TypeIsAttendance: &isAttendance,
				},
				{
					ID: "inst-mid", EmployeeID: employeeID, Amount: decimal.NewFromInt(100),
					AppliedAt: time.Date(2026, time.August, 20, 8, 30, 0, 0, time.UTC),
					TypeName:  &lateName, TypeIsAttendance: &isAttendance,
				},
				{
					// Afternoon of the period's closing day still counts.
					ID: "inst-closing", EmployeeID: employeeID, Amount: decimal.NewFromInt(100),
					AppliedAt: time.Date(2026, time.August, 31, 16, 0, 0, 0, time.UTC),
					TypeName:  &lateName, TypeIsAttendance: &isAttendance,
				},
			}, nil
		},
	}

	svc := newTestService(payrollRepo, employeeRepo, deductionRepo, &fakeLoanRepo{})

	result, err := svc.Generate(context.Background(), payroll.GeneratePayrollRequest{Confirmed: true}, anchorDate())
	require.NoError(t, err)
	require.Equal(t, 1, result.Created)

	snap, err := payroll.ParseSnapshot(created.Snapshot)
	require.NoError(t, err)

	assert.True(t, snap.AttendanceDeductions.Equal(decimal.NewFromInt(200)), "got %s", snap.AttendanceDeductions)
	assert.Len(t, snap.AttendanceDeductionDetails, 2)
	assert.True(t, created.NetPay.Equal(decimal.NewFromInt(5800)), "got %s", created.NetPay)
}

// ========== LIFECYCLE ==========

func TestReleaseRequiresPendingEntries(t *testing.T) {
	t.Parallel()

	payrollRepo := &fakePayrollRepo{
		ReleaseByPeriodFn: func(ctx context.Context, period payroll.Period, releasedAt time.Time) (int64, error) {
			return 0, nil
		},
	}
	svc := newTestService(payrollRepo, &fakeEmployeeRepo{}, &fakeDeductionRepo{}, &fakeLoanRepo{})

	_, err := svc.Release(context.Background(), payroll.ReleasePayrollRequest{PeriodStart: "2026-08-01", PeriodEnd: "2026-08-31"})
	assert.ErrorIs(t, err, payroll.ErrNothingToRelease)
}

func TestReleaseReportsAffectedCount(t *testing.T) {
	t.Parallel()

	payrollRepo := &fakePayrollRepo{
		ReleaseByPeriodFn: func(ctx context.Context, period payroll.Period, releasedAt time.Time) (int64, error) {
			assert.Equal(t, "2026-08-01_2026-08-31", period.Key())
			return 7, nil
		},
	}
	svc := newTestService(payrollRepo, &fakeEmployeeRepo{}, &fakeDeductionRepo{}, &fakeLoanRepo{})

	result, err := svc.Release(context.Background(), payroll.ReleasePayrollRequest{PeriodStart: "2026-08-01", PeriodEnd: "2026-08-31"})
	require.NoError(t, err)
	assert.Equal(t, int64(7), result.Affected)
	assert.Equal(t, "2026-08-01_2026-08-31", result.Period)
}

func TestUpdateEntryRefusesNonPending(t *testing.T) {
	t.Parallel()

	payrollRepo := &fakePayrollRepo{
		GetEntryByIDFn: func(ctx context.Context, id string) (payroll.PayrollEntry, error) {
			return payroll.PayrollEntry{ID: id, Status: payroll.EntryStatusReleased}, nil
		},
	}
	svc := newTestService(payrollRepo, &fakeEmployeeRepo{}, &fakeDeductionRepo{}, &fakeLoanRepo{})

	overtime := decimal.NewFromInt(500)
	_, err := svc.UpdateEntry(context.Background(), payroll.UpdateEntryRequest{ID: "entry-1", Overtime: &overtime})
	assert.ErrorIs(t, err, payroll.ErrEntryNotPending)
}

func TestUpdateEntryKeepsSnapshotConsistent(t *testing.T) {
	t.Parallel()

	snap := payroll.BreakdownSnapshot{
		SchemaVersion:   payroll.SnapshotSchemaVersion,
		BasicSalary:     decimal.NewFromInt(6000),
		OverloadPay:     decimal.Zero,
		TotalDeductions: decimal.NewFromInt(350),
		GrossPay:        decimal.NewFromInt(6000),
		NetPay:          decimal.NewFromInt(5650),
	}
	raw, err := snap.Marshal()
	require.NoError(t, err)

	var saved payroll.PayrollEntry
	payrollRepo := &fakePayrollRepo{
		GetEntryByIDFn: func(ctx context.Context, id string) (payroll.PayrollEntry, error) {
			return payroll.PayrollEntry{
				ID:          id,
				Status:      payroll.EntryStatusPending,
				BasicSalary: decimal.NewFromInt(6000),
				Deductions:  decimal.NewFromInt(350),
				NetPay:      decimal.NewFromInt(5650),
				Snapshot:    raw,
			}, nil
		},
		UpdatePendingEntryFn: func(ctx context.Context, entry payroll.PayrollEntry) error {
			saved = entry
			return nil
		},
	}
	svc := newTestService(payrollRepo, &fakeEmployeeRepo{}, &fakeDeductionRepo{}, &fakeLoanRepo{})

	overtime := decimal.NewFromInt(1000)
	resp, err := svc.UpdateEntry(context.Background(), payroll.UpdateEntryRequest{ID: "entry-1", Overtime: &overtime})
	require.NoError(t, err)

	assert.True(t, resp.NetPay.Equal(decimal.NewFromInt(6650)), "got %s", resp.NetPay)

	updated, err := payroll.ParseSnapshot(saved.Snapshot)
	require.NoError(t, err)
	assert.True(t, updated.OverloadPay.Equal(decimal.NewFromInt(1000)))
	assert.True(t, updated.GrossPay.Equal(decimal.NewFromInt(7000)))
	assert.True(t, updated.NetPay.Equal(saved.NetPay))
	assert.True(t, updated.NetPay.Equal(updated.GrossPay.Sub(updated.TotalDeductions)))
}

func TestUpdateEntryNetPayBooksDeductionAdjustment(t *testing.T) {
	t.Parallel()

	snap := payroll.BreakdownSnapshot{
		SchemaVersion:      payroll.SnapshotSchemaVersion,
		BasicSalary:        decimal.NewFromInt(6000),
		TotalDeductions:    decimal.NewFromInt(350),
		DatabaseDeductions: decimal.NewFromInt(350),
		DeductionDetails: []payroll.DeductionDetail{
			{Type: "SSS Contribution", Amount: decimal.NewFromInt(350)},
		},
		GrossPay: decimal.NewFromInt(6000),
		NetPay:   decimal.NewFromInt(5650),
	}
	raw, err := snap.Marshal()
	require.NoError(t, err)

	var saved payroll.PayrollEntry
	payrollRepo := &fakePayrollRepo{
		GetEntryByIDFn: func(ctx context.Context, id string) (payroll.PayrollEntry, error) {
			return payroll.PayrollEntry{
				ID:          id,
				Status:      payroll.EntryStatusPending,
				BasicSalary: decimal.NewFromInt(6000),
				Deductions:  decimal.NewFromInt(350),
				NetPay:      decimal.NewFromInt(5650),
				Snapshot:    raw,
			}, nil
		},
		UpdatePendingEntryFn: func(ctx context.Context, entry payroll.PayrollEntry) error {
			saved = entry
			return nil
		},
	}
	svc := newTestService(payrollRepo, &fakeEmployeeRepo{}, &fakeDeductionRepo{}, &fakeLoanRepo{})

	netPay := decimal.NewFromInt(4000)
	resp, err := svc.UpdateEntry(context.Background(), payroll.UpdateEntryRequest{ID: "entry-1", NetPay: &netPay})
	require.NoError(t, err)

	assert.True(t, resp.NetPay.Equal(decimal.NewFromInt(4000)), "got %s", resp.NetPay)
	assert.True(t, saved.Deductions.Equal(decimal.NewFromInt(2000)), "got %s", saved.Deductions)

	updated, err := payroll.ParseSnapshot(saved.Snapshot)
	require.NoError(t, err)
	assert.True(t, updated.TotalDeductions.Equal(decimal.NewFromInt(2000)))
	assert.True(t, updated.NetPay.Equal(updated.GrossPay.Sub(updated.TotalDeductions)))

	require.Len(t, updated.DeductionDetails, 2)
	adjustment := updated.DeductionDetails[1]
	assert.Equal(t, "Manual adjustment", adjustment.Type)
	assert.True(t, adjustment.Amount.Equal(decimal.NewFromInt(1650)), "got %s", adjustment.Amount)

	// The edit survives reconciliation: the corrected snapshot is now the
	// authority the sweep checks against.
	archived := saved
	archived.Status = payroll.EntryStatusArchived
	corr, err := decideCorrection(archived)
	require.NoError(t, err)
	assert.False(t, corr.Needed)
}
