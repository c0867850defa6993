package payroll

import (
	"fmt"
	"time"

	"github.com/barangay-hris/payroll-backend-go/internal/domain/deduction"
	"github.com/barangay-hris/payroll-backend-go/internal/domain/employee"
	"github.com/barangay-hris/payroll-backend-go/internal/domain/loan"
	"github.com/shopspring/decimal"
)

// BuildInput carries everything one entry needs. All collaborator data is
// resolved by the caller; the builder itself touches no store and no
// clock, which is what makes it deterministic.
type BuildInput struct {
	Employee    employee.Employee
	Period      Period
	Policy      PeriodPolicy
	ProcessedAt time.Time

	// Database deductions: active mandatory and optional instances,
	// already filtered to non-archived.
	Deductions []deduction.DeductionInstance
	// Attendance-derived instances for the period, priced upstream.
	AttendanceDeductions []deduction.DeductionInstance
	// Loans that may settle an installment this period.
	Loans []loan.Loan
	// Approved additional-pay records inside the period.
	OverloadPay []OverloadPayRecord

	// RecomputeRates re-evaluates each database deduction against its
	// current type definition instead of taking the stored amount.
	RecomputeRates bool
	Types          map[string]deduction.DeductionType
}

// LoanSettlement is the balance movement the caller must persist for one
// settled loan.
type LoanSettlement struct {
	LoanID      string
	Installment decimal.Decimal
	NewBalance  decimal.Decimal
	Completed   bool
}

// BuildResult is one composed entry plus the side effects the caller owns.
type BuildResult struct {
	Entry       PayrollEntry
	Snapshot    BreakdownSnapshot
	Settlements []LoanSettlement
}

// BuildEntry composes the prorated salary base, overload pay and the three
// deduction sources into one pending entry and its frozen snapshot.
// Calling it twice with identical inputs yields byte-identical snapshot
// content.
func BuildEntry(in BuildInput) (BuildResult, error) {
	if in.Employee.SalaryProfile == nil {
		return BuildResult{}, fmt.Errorf("employee %s: %w", in.Employee.ID, employee.ErrNoSalaryProfile)
	}

	basicSalary := in.Policy.ProrateMonthly(in.Employee.SalaryProfile.MonthlySalary).Round(2)

	overload := decimal.Zero
	for _, rec := range in.OverloadPay {
		if in.Period.CoversInstant(rec.GrantedAt) {
			overload = overload.Add(rec.Amount)
		}
	}

	// 3a. Database deductions, captured by value into the snapshot so
	// later edits of the instances cannot reach this period.
	dbTotal := decimal.Zero
	dbDetails := make([]DeductionDetail, 0, len(in.Deductions))
	salaryBase := in.Employee.SalaryProfile.MonthlySalary
	for _, inst := range in.Deductions {
		if inst.IsArchived() {
			continue
		}
		amount := inst.Amount
		if in.RecomputeRates {
			def, ok := in.Types[inst.DeductionTypeID]
			if !ok {
				return BuildResult{}, fmt.Errorf("deduction type %s: %w", inst.DeductionTypeID, deduction.ErrDeductionTypeNotFound)
			}
			amount = deduction.EvaluateAmount(def, &salaryBase).Round(2)
		}
		dbTotal = dbTotal.Add(amount)
		dbDetails = append(dbDetails, DeductionDetail{Type: dbDetailType(inst), Amount: amount})
	}

	// 3b. Attendance penalties.
	attendance := AggregateAttendance(in.AttendanceDeductions)

	// 3c. Loan installments.
	loanTotal := decimal.Zero
	loanDetails := make([]LoanDetail, 0, len(in.Loans))
	settlements := make([]LoanSettlement, 0, len(in.Loans))
	for _, l := range in.Loans {
		installment, newBalance, completed := l.Installment(in.Policy.PeriodsPerMonth())
		if installment.IsZero() {
			continue
		}
		installment = installment.Round(2)
		loanTotal = loanTotal.Add(installment)
		loanDetails = append(loanDetails, LoanDetail{LoanID: l.ID, Amount: installment, NewBalance: newBalance})
		settlements = append(settlements, LoanSettlement{
			LoanID:      l.ID,
			Installment: installment,
			NewBalance:  newBalance,
			Completed:   completed,
		})
	}

	grossPay := basicSalary.Add(overload)
	totalDeductions := dbTotal.Add(attendance.Total).Add(loanTotal)
	netPay := grossPay.Sub(totalDeductions)

	snap := BreakdownSnapshot{
		SchemaVersion:              SnapshotSchemaVersion,
		BasicSalary:                basicSalary,
		OverloadPay:                overload,
		TotalDeductions:            totalDeductions,
		AttendanceDeductions:       attendance.Total,
		DatabaseDeductions:         dbTotal,
		LoanPayments:               loanTotal,
		DeductionDetails:           dbDetails,
		AttendanceDeductionDetails: attendance.Details,
		LoanDetails:                loanDetails,
		GrossPay:                   grossPay,
		NetPay:                     netPay,
	}

	raw, err := snap.Marshal()
	if err != nil {
		return BuildResult{}, fmt.Errorf("marshal breakdown snapshot: %w", err)
	}

	entry := PayrollEntry{
		EmployeeID:  in.Employee.ID,
		PeriodStart: in.Period.Start,
		PeriodEnd:   in.Period.End,
		BasicSalary: basicSalary,
		Overtime:    overload,
		Deductions:  totalDeductions,
		NetPay:      netPay,
		Status:      EntryStatusPending,
		Snapshot:    raw,
		ProcessedAt: in.ProcessedAt,
	}

	return BuildResult{Entry: entry, Snapshot: snap, Settlements: settlements}, nil
}

func dbDetailType(inst deduction.DeductionInstance) string {
	if inst.TypeName != nil && *inst.TypeName != "" {
		return *inst.TypeName
	}
	return inst.DeductionTypeID
}
