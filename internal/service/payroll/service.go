package payroll

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/barangay-hris/payroll-backend-go/internal/domain/deduction"
	"github.com/barangay-hris/payroll-backend-go/internal/domain/employee"
	"github.com/barangay-hris/payroll-backend-go/internal/domain/loan"
	"github.com/barangay-hris/payroll-backend-go/internal/domain/notification"
	"github.com/barangay-hris/payroll-backend-go/internal/domain/payroll"
	"github.com/barangay-hris/payroll-backend-go/internal/pkg/database"
	"github.com/barangay-hris/payroll-backend-go/internal/pkg/validator"
	"github.com/barangay-hris/payroll-backend-go/internal/repository/postgresql"
	"github.com/jackc/pgx/v5"
)

type PayrollServiceImpl struct {
	db              *database.DB
	payrollRepo     payroll.PayrollRepository
	employeeRepo    employee.EmployeeRepository
	deductionRepo   deduction.DeductionRepository
	loanRepo        loan.LoanRepository
	notificationSvc notification.Service
	policy          payroll.PeriodPolicy
	logger          *slog.Logger

	// runTx wraps per-employee writes; swapped for a pass-through in tests.
	runTx func(ctx context.Context, fn func(tx pgx.Tx) error) error
}

func NewPayrollService(
	db *database.DB,
	payrollRepo payroll.PayrollRepository,
	employeeRepo employee.EmployeeRepository,
	deductionRepo deduction.DeductionRepository,
	loanRepo loan.LoanRepository,
	notificationSvc notification.Service,
	policy payroll.PeriodPolicy,
	logger *slog.Logger,
) payroll.Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &PayrollServiceImpl{
		db:              db,
		payrollRepo:     payrollRepo,
		employeeRepo:    employeeRepo,
		deductionRepo:   deductionRepo,
		loanRepo:        loanRepo,
		notificationSvc: notificationSvc,
		policy:          policy,
		logger:          logger,
		runTx: func(ctx context.Context, fn func(tx pgx.Tx) error) error {
			return postgresql.WithTransaction(ctx, db, fn)
		},
	}
}

// ========== GENERATION ==========

// Generate builds one pending entry per active personnel. Failures are
// per-employee: one bad record lands in the Failed bucket and the batch
// keeps going. Each entry and its loan settlements commit atomically per
// employee, so a crash mid-batch leaves complete entries, never torn ones.
func (s *PayrollServiceImpl) Generate(ctx context.Context, req payroll.GeneratePayrollRequest, anchor time.Time) (payroll.GenerateResult, error) {
	if err := req.Validate(); err != nil {
		return payroll.GenerateResult{}, err
	}
	if !req.Confirmed {
		return payroll.GenerateResult{}, payroll.ErrGenerationNotConfirmed
	}

	period, err := s.resolvePeriod(req.PeriodStart, req.PeriodEnd, anchor)
	if err != nil {
		return payroll.GenerateResult{}, err
	}

	employees, err := s.employeeRepo.ListActivePersonnel(ctx)
	if err != nil {
		return payroll.GenerateResult{}, fmt.Errorf("list active personnel: %w", err)
	}

	var types map[string]deduction.DeductionType
	if req.RecomputeRates {
		defs, err := s.deductionRepo.ListTypes(ctx, false)
		if err != nil {
			return payroll.GenerateResult{}, fmt.Errorf("list deduction types: %w", err)
		}
		types = make(map[string]deduction.DeductionType, len(defs))
		for _, def := range defs {
			types[def.ID] = def
		}
	}

	processedAt := time.Now()
	result := payroll.GenerateResult{
		Period:   period.Key(),
		Skipped:  []payroll.SkippedEmployee{},
		Failed:   []payroll.SkippedEmployee{},
		EntryIDs: []string{},
	}
	notifyIDs := make([]string, 0, len(employees))

	for _, emp := range employees {
		if !emp.IsPayrollSubject() {
			continue
		}

		created, err := s.generateOne(ctx, emp, period, processedAt, req, types)
		switch {
		case err == nil && created == nil:
			result.Existing++
		case err == nil:
			result.Created++
			result.EntryIDs = append(result.EntryIDs, created.ID)
			result.Generated = append(result.Generated, s.toEntryResponse(*created, false))
			notifyIDs = append(notifyIDs, emp.ID)
		case errors.Is(err, employee.ErrNoSalaryProfile):
			result.Skipped = append(result.Skipped, payroll.SkippedEmployee{
				EmployeeID:   emp.ID,
				EmployeeName: emp.FullName,
				Reason:       "no salary profile",
			})
		case errors.Is(err, payroll.ErrEntryAlreadyExists):
			// Lost a race against a concurrent run for the same period.
			result.Existing++
		default:
			s.logger.Error("payroll generation failed for employee",
				"employee_id", emp.ID, "period", period.Key(), "error", err)
			result.Failed = append(result.Failed, payroll.SkippedEmployee{
				EmployeeID:   emp.ID,
				EmployeeName: emp.FullName,
				Reason:       err.Error(),
			})
		}
	}

	if len(notifyIDs) > 0 && s.notificationSvc != nil {
		if err := s.notificationSvc.NotifyBatch(ctx, notifyIDs,
			notification.TypePayrollGenerated,
			"Payroll Generated",
			fmt.Sprintf("Your payroll for %s has been generated.", period.Key()),
			map[string]interface{}{"period": period.Key()},
		); err != nil {
			s.logger.Warn("payroll generated notification failed", "error", err)
		}
	}

	return result, nil
}

// generateOne returns (nil, nil) when an entry already exists and the run
// leaves it alone.
func (s *PayrollServiceImpl) generateOne(
	ctx context.Context,
	emp employee.Employee,
	period payroll.Period,
	processedAt time.Time,
	req payroll.GeneratePayrollRequest,
	types map[string]deduction.DeductionType,
) (*payroll.PayrollEntry, error) {
	existing, err := s.payrollRepo.GetEntryByEmployeePeriod(ctx, emp.ID, period)
	supersede := false
	var priorSettlements []payroll.LoanDetail
	switch {
	case err == nil:
		if !req.Force {
			return nil, nil
		}
		if existing.Status != payroll.EntryStatusPending {
			// Force never touches released or archived history.
			return nil, nil
		}
		// The superseded entry already settled its loans; its snapshot
		// says exactly what to give back so this period charges one
		// installment, not two.
		prior, perr := payroll.ParseSnapshot(existing.Snapshot)
		if perr != nil {
			return nil, fmt.Errorf("superseded entry %s: %w", existing.ID, perr)
		}
		priorSettlements = prior.LoanDetails
		supersede = true
	case errors.Is(err, payroll.ErrEntryNotFound):
		// proceed
	default:
		return nil, fmt.Errorf("check existing entry: %w", err)
	}

	if emp.SalaryProfile == nil {
		return nil, fmt.Errorf("employee %s: %w", emp.ID, employee.ErrNoSalaryProfile)
	}

	instances, err := s.deductionRepo.ListInstancesByEmployee(ctx, emp.ID, false)
	if err != nil {
		return nil, fmt.Errorf("list deductions: %w", err)
	}
	dbDeductions := make([]deduction.DeductionInstance, 0, len(instances))
	attendanceDeductions := make([]deduction.DeductionInstance, 0)
	for _, inst := range instances {
		if inst.TypeIsAttendance != nil && *inst.TypeIsAttendance {
			// Attendance penalties are dated events; only the ones
			// applied inside this period land in this run.
			if period.CoversInstant(inst.AppliedAt) {
				attendanceDeductions = append(attendanceDeductions, inst)
			}
			continue
		}
		dbDeductions = append(dbDeductions, inst)
	}

	loans, err := s.loanRepo.ListActiveByEmployee(ctx, emp.ID)
	if err != nil {
		return nil, fmt.Errorf("list active loans: %w", err)
	}
	if len(priorSettlements) > 0 {
		loans, err = s.unsettleLoans(ctx, loans, priorSettlements)
		if err != nil {
			return nil, err
		}
	}

	overload, err := s.payrollRepo.ListOverloadPay(ctx, emp.ID, period)
	if err != nil {
		return nil, fmt.Errorf("list overload pay: %w", err)
	}

	built, err := payroll.BuildEntry(payroll.BuildInput{
		Employee:             emp,
		Period:               period,
		Policy:               s.policy,
		ProcessedAt:          processedAt,
		Deductions:           dbDeductions,
		AttendanceDeductions: attendanceDeductions,
		Loans:                loans,
		OverloadPay:          overload,
		RecomputeRates:       req.RecomputeRates,
		Types:                types,
	})
	if err != nil {
		return nil, err
	}

	var entry payroll.PayrollEntry
	err = s.runTx(ctx, func(tx pgx.Tx) error {
		txCtx := context.WithValue(ctx, "tx", tx)

		if supersede {
			for _, det := range priorSettlements {
				if err := s.loanRepo.RestoreBalance(txCtx, det.LoanID, det.Amount); err != nil {
					return fmt.Errorf("revert loan %s: %w", det.LoanID, err)
				}
			}
			if err := s.payrollRepo.DeletePendingEntry(txCtx, emp.ID, period); err != nil {
				return fmt.Errorf("supersede pending entry: %w", err)
			}
		}

		entry, err = s.payrollRepo.CreateEntry(txCtx, built.Entry)
		if err != nil {
			return err
		}

		for _, settlement := range built.Settlements {
			if err := s.loanRepo.UpdateBalance(txCtx, settlement.LoanID, settlement.NewBalance, settlement.Completed); err != nil {
				return fmt.Errorf("settle loan %s: %w", settlement.LoanID, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, settlement := range built.Settlements {
		if settlement.Completed && s.notificationSvc != nil && !alreadyCompleted(priorSettlements, settlement.LoanID) {
			if err := s.notificationSvc.Notify(ctx, emp.ID,
				notification.TypeLoanCompleted,
				"Loan Fully Paid",
				"Your loan has been fully paid through payroll deductions.",
				map[string]interface{}{"loan_id": settlement.LoanID},
			); err != nil {
				s.logger.Warn("loan completed notification failed", "loan_id", settlement.LoanID, "error", err)
			}
		}
	}

	return &entry, nil
}

// unsettleLoans returns the loan set as it stood before the superseded
// entry charged it, so the rebuilt entry settles exactly one installment
// for the period. A loan the prior run paid off comes back as active.
func (s *PayrollServiceImpl) unsettleLoans(ctx context.Context, loans []loan.Loan, prior []payroll.LoanDetail) ([]loan.Loan, error) {
	byID := make(map[string]int, len(loans))
	for i, l := range loans {
		byID[l.ID] = i
	}

	for _, det := range prior {
		if i, ok := byID[det.LoanID]; ok {
			loans[i].Balance = loans[i].Balance.Add(det.Amount)
			continue
		}
		// Not in the active list: the prior settlement completed it, or
		// it was archived since. Either way the balance comes back.
		l, err := s.loanRepo.GetByID(ctx, det.LoanID)
		if err != nil {
			return nil, fmt.Errorf("revert loan %s: %w", det.LoanID, err)
		}
		l.Balance = l.Balance.Add(det.Amount)
		if l.Status == loan.LoanStatusCompleted {
			l.Status = loan.LoanStatusActive
		}
		loans = append(loans, l)
	}

	return loans, nil
}

// alreadyCompleted reports whether the superseded entry had already paid
// this loan off; the employee was notified then, not again on the rerun.
func alreadyCompleted(prior []payroll.LoanDetail, loanID string) bool {
	for _, det := range prior {
		if det.LoanID == loanID && det.NewBalance.IsZero() {
			return true
		}
	}
	return false
}

// ========== LIFECYCLE ==========

func (s *PayrollServiceImpl) Release(ctx context.Context, req payroll.ReleasePayrollRequest) (payroll.BulkActionResult, error) {
	period, err := s.parsePeriod(req)
	if err != nil {
		return payroll.BulkActionResult{}, err
	}

	affected, err := s.payrollRepo.ReleaseByPeriod(ctx, period, time.Now())
	if err != nil {
		return payroll.BulkActionResult{}, err
	}
	if affected == 0 {
		return payroll.BulkActionResult{}, payroll.ErrNothingToRelease
	}

	s.notifyReleased(ctx, period)

	return payroll.BulkActionResult{Period: period.Key(), Affected: affected}, nil
}

func (s *PayrollServiceImpl) notifyReleased(ctx context.Context, period payroll.Period) {
	if s.notificationSvc == nil {
		return
	}

	status := payroll.EntryStatusReleased
	start := period.Start.Format("2006-01-02")
	end := period.End.Format("2006-01-02")
	entries, _, err := s.payrollRepo.ListEntries(ctx, payroll.EntryFilter{
		PeriodStart: &start,
		PeriodEnd:   &end,
		Status:      &status,
		Page:        1,
		Limit:       1000,
	})
	if err != nil {
		s.logger.Warn("listing released entries for notification failed", "error", err)
		return
	}

	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.EmployeeID)
	}
	if len(ids) == 0 {
		return
	}
	if err := s.notificationSvc.NotifyBatch(ctx, ids,
		notification.TypePayrollReleased,
		"Payroll Released",
		fmt.Sprintf("Your payroll for %s has been released.", period.Key()),
		map[string]interface{}{"period": period.Key()},
	); err != nil {
		s.logger.Warn("payroll released notification failed", "error", err)
	}
}

func (s *PayrollServiceImpl) ArchivePeriod(ctx context.Context, req payroll.ReleasePayrollRequest) (payroll.BulkActionResult, error) {
	period, err := s.parsePeriod(req)
	if err != nil {
		return payroll.BulkActionResult{}, err
	}

	affected, err := s.payrollRepo.ArchiveByPeriod(ctx, period, time.Now())
	if err != nil {
		return payroll.BulkActionResult{}, err
	}
	return payroll.BulkActionResult{Period: period.Key(), Affected: affected}, nil
}

// ClearPending deletes the period's pending entries so it can be
// regenerated from scratch. Released and archived entries are untouched.
// Loan installments the deleted entries had settled are restored in the
// same transaction; otherwise the regenerated period would charge each
// loan a second time.
func (s *PayrollServiceImpl) ClearPending(ctx context.Context, req payroll.ReleasePayrollRequest) (payroll.BulkActionResult, error) {
	period, err := s.parsePeriod(req)
	if err != nil {
		return payroll.BulkActionResult{}, err
	}

	var affected int64
	err = s.runTx(ctx, func(tx pgx.Tx) error {
		txCtx := context.WithValue(ctx, "tx", tx)

		entries, err := s.payrollRepo.ListPendingByPeriod(txCtx, period)
		if err != nil {
			return err
		}
		for _, entry := range entries {
			snap, err := payroll.ParseSnapshot(entry.Snapshot)
			if err != nil {
				return fmt.Errorf("entry %s: %w", entry.ID, err)
			}
			for _, det := range snap.LoanDetails {
				if err := s.loanRepo.RestoreBalance(txCtx, det.LoanID, det.Amount); err != nil {
					return fmt.Errorf("revert loan %s: %w", det.LoanID, err)
				}
			}
		}

		affected, err = s.payrollRepo.ClearPendingByPeriod(txCtx, period)
		return err
	})
	if err != nil {
		return payroll.BulkActionResult{}, err
	}
	return payroll.BulkActionResult{Period: period.Key(), Affected: affected}, nil
}

// ========== QUERIES ==========

func (s *PayrollServiceImpl) GetEntry(ctx context.Context, id string) (payroll.EntryResponse, error) {
	entry, err := s.payrollRepo.GetEntryByID(ctx, id)
	if err != nil {
		return payroll.EntryResponse{}, err
	}
	return s.toEntryResponse(entry, true), nil
}

func (s *PayrollServiceImpl) GetEntryByEmployeePeriod(ctx context.Context, employeeID string, periodStart, periodEnd string) (payroll.EntryResponse, error) {
	period, err := s.parsePeriod(payroll.ReleasePayrollRequest{PeriodStart: periodStart, PeriodEnd: periodEnd})
	if err != nil {
		return payroll.EntryResponse{}, err
	}

	entry, err := s.payrollRepo.GetEntryByEmployeePeriod(ctx, employeeID, period)
	if err != nil {
		return payroll.EntryResponse{}, err
	}
	return s.toEntryResponse(entry, true), nil
}

func (s *PayrollServiceImpl) ListEntries(ctx context.Context, filter payroll.EntryFilter) (payroll.ListEntriesResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 || filter.Limit > 100 {
		filter.Limit = 20
	}

	entries, total, err := s.payrollRepo.ListEntries(ctx, filter)
	if err != nil {
		return payroll.ListEntriesResponse{}, err
	}

	data := make([]payroll.EntryResponse, 0, len(entries))
	for _, entry := range entries {
		data = append(data, s.toEntryResponse(entry, false))
	}

	return payroll.ListEntriesResponse{
		Data:       data,
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
	}, nil
}

// UpdateEntry edits a pending entry's overtime or net pay. The snapshot is
// rewritten in the same statement so the cache fields stay derivable from
// it; once released, the entry is immutable and this returns
// ErrEntryNotPending.
func (s *PayrollServiceImpl) UpdateEntry(ctx context.Context, req payroll.UpdateEntryRequest) (payroll.EntryResponse, error) {
	entry, err := s.payrollRepo.GetEntryByID(ctx, req.ID)
	if err != nil {
		return payroll.EntryResponse{}, err
	}
	if !entry.CanEdit() {
		return payroll.EntryResponse{}, payroll.ErrEntryNotPending
	}

	snap, err := payroll.ParseSnapshot(entry.Snapshot)
	if err != nil {
		return payroll.EntryResponse{}, fmt.Errorf("entry %s: %w", entry.ID, err)
	}

	if req.Overtime != nil {
		entry.Overtime = req.Overtime.Round(2)
		snap.OverloadPay = entry.Overtime
		snap.GrossPay = snap.BasicSalary.Add(entry.Overtime)
		snap.NetPay = snap.GrossPay.Sub(snap.TotalDeductions)
		entry.NetPay = snap.NetPay
	}
	if req.NetPay != nil {
		// A direct net-pay edit is booked as a deduction adjustment, so
		// net pay stays gross minus deductions and reconciliation has
		// nothing to undo.
		netPay := req.NetPay.Round(2)
		adjusted := snap.GrossPay.Sub(netPay)
		delta := adjusted.Sub(snap.TotalDeductions)
		if !delta.IsZero() {
			snap.DeductionDetails = append(snap.DeductionDetails, payroll.DeductionDetail{
				Type:   "Manual adjustment",
				Amount: delta,
			})
			snap.DatabaseDeductions = snap.DatabaseDeductions.Add(delta)
			snap.TotalDeductions = adjusted
			entry.Deductions = adjusted
		}
		snap.NetPay = netPay
		entry.NetPay = netPay
	}

	raw, err := snap.Marshal()
	if err != nil {
		return payroll.EntryResponse{}, fmt.Errorf("marshal breakdown snapshot: %w", err)
	}
	entry.Snapshot = raw

	if err := s.payrollRepo.UpdatePendingEntry(ctx, entry); err != nil {
		return payroll.EntryResponse{}, err
	}

	return s.toEntryResponse(entry, true), nil
}

func (s *PayrollServiceImpl) GetSummary(ctx context.Context, periodStart, periodEnd string) (payroll.PayrollSummaryResponse, error) {
	period, err := s.parsePeriod(payroll.ReleasePayrollRequest{PeriodStart: periodStart, PeriodEnd: periodEnd})
	if err != nil {
		return payroll.PayrollSummaryResponse{}, err
	}
	return s.payrollRepo.GetSummary(ctx, period)
}

// ========== HELPERS ==========

func (s *PayrollServiceImpl) resolvePeriod(startStr, endStr *string, anchor time.Time) (payroll.Period, error) {
	if startStr == nil || endStr == nil {
		return s.policy.Resolve(anchor), nil
	}
	return s.parsePeriod(payroll.ReleasePayrollRequest{PeriodStart: *startStr, PeriodEnd: *endStr})
}

func (s *PayrollServiceImpl) parsePeriod(req payroll.ReleasePayrollRequest) (payroll.Period, error) {
	if err := req.Validate(); err != nil {
		return payroll.Period{}, err
	}
	start, _ := validator.IsValidDate(req.PeriodStart)
	end, _ := validator.IsValidDate(req.PeriodEnd)
	return s.policy.Normalize(start, end)
}

func (s *PayrollServiceImpl) toEntryResponse(entry payroll.PayrollEntry, includeBreakdown bool) payroll.EntryResponse {
	resp := payroll.EntryResponse{
		ID:          entry.ID,
		EmployeeID:  entry.EmployeeID,
		PeriodStart: entry.PeriodStart.Format("2006-01-02"),
		PeriodEnd:   entry.PeriodEnd.Format("2006-01-02"),
		BasicSalary: entry.BasicSalary,
		Overtime:    entry.Overtime,
		Deductions:  entry.Deductions,
		NetPay:      entry.NetPay,
		Status:      string(entry.Status),
		ProcessedAt: entry.ProcessedAt.Format(time.RFC3339),
	}
	if entry.EmployeeName != nil {
		resp.EmployeeName = *entry.EmployeeName
	}
	if entry.Department != nil {
		resp.Department = *entry.Department
	}
	if entry.ReleasedAt != nil {
		str := entry.ReleasedAt.Format(time.RFC3339)
		resp.ReleasedAt = &str
	}
	if entry.ArchivedAt != nil {
		str := entry.ArchivedAt.Format(time.RFC3339)
		resp.ArchivedAt = &str
	}

	if includeBreakdown {
		if snap, err := payroll.ParseSnapshot(entry.Snapshot); err == nil {
			resp.Breakdown = &snap
		} else {
			s.logger.Warn("unparseable breakdown snapshot", "entry_id", entry.ID, "error", err)
		}
	}
	return resp
}
