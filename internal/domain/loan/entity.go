package loan

import (
	"time"

	"github.com/shopspring/decimal"
)

// LoanStatus enum
type LoanStatus string

const (
	LoanStatusPending   LoanStatus = "pending"
	LoanStatusActive    LoanStatus = "active"
	LoanStatusRejected  LoanStatus = "rejected"
	LoanStatusCompleted LoanStatus = "completed"
)

// Loan is an employee loan amortized against payroll. Balance never
// exceeds Amount; only active, non-archived loans contribute an
// installment to a period's deductions.
type Loan struct {
	ID                    string
	EmployeeID            string
	Amount                decimal.Decimal
	Balance               decimal.Decimal
	MonthlyPaymentPercent decimal.Decimal
	TermMonths            int
	Status                LoanStatus
	StartDate             *time.Time
	EndDate               *time.Time
	ArchivedAt            *time.Time
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

var oneHundred = decimal.NewFromInt(100)

// Installment computes the settlement for one pay period.
// MonthlyPaymentPercent is a rate per calendar month; sub-monthly runs
// divide it by periodsPerMonth (semi-monthly pays half per cutoff). The
// installment is clipped so the balance never goes negative; completed
// reports whether the loan is paid off after this settlement.
//
// Loans in any status other than active, or already archived, settle
// nothing and are skipped by the builder.
func (l Loan) Installment(periodsPerMonth int) (installment, newBalance decimal.Decimal, completed bool) {
	if l.Status != LoanStatusActive || l.ArchivedAt != nil {
		return decimal.Zero, l.Balance, false
	}
	if periodsPerMonth < 1 {
		periodsPerMonth = 1
	}

	installment = l.Amount.Mul(l.MonthlyPaymentPercent).Div(oneHundred).
		Div(decimal.NewFromInt(int64(periodsPerMonth)))
	if installment.GreaterThan(l.Balance) {
		installment = l.Balance
	}

	newBalance = l.Balance.Sub(installment)
	return installment, newBalance, newBalance.IsZero()
}

// CanTransitionTo validates loan lifecycle changes. Approval and
// rejection act only on pending loans; completion only on active ones.
func (l Loan) CanTransitionTo(target LoanStatus) bool {
	switch l.Status {
	case LoanStatusPending:
		return target == LoanStatusActive || target == LoanStatusRejected
	case LoanStatusActive:
		return target == LoanStatusCompleted
	}
	return false
}
