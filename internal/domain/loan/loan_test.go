package loan

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func activeLoan(amount, balance int64, percent int64) Loan {
	return Loan{
		Amount:                decimal.NewFromInt(amount),
		Balance:               decimal.NewFromInt(balance),
		MonthlyPaymentPercent: decimal.NewFromInt(percent),
		TermMonths:            10,
		Status:                LoanStatusActive,
	}
}

func TestInstallment_MonthlyPeriod(t *testing.T) {
	t.Parallel()

	l := activeLoan(12000, 12000, 10)

	installment, newBalance, completed := l.Installment(1)

	assert.True(t, decimal.NewFromInt(1200).Equal(installment), "installment = %s", installment)
	assert.True(t, decimal.NewFromInt(10800).Equal(newBalance), "balance = %s", newBalance)
	assert.False(t, completed)
}

func TestInstallment_SemiMonthlyHalves(t *testing.T) {
	t.Parallel()

	l := activeLoan(12000, 12000, 10)

	installment, newBalance, _ := l.Installment(2)

	assert.True(t, decimal.NewFromInt(600).Equal(installment), "installment = %s", installment)
	assert.True(t, decimal.NewFromInt(11400).Equal(newBalance))
}

func TestInstallment_ClippedToBalance(t *testing.T) {
	t.Parallel()

	l := activeLoan(12000, 500, 10)

	installment, newBalance, completed := l.Installment(1)

	assert.True(t, decimal.NewFromInt(500).Equal(installment), "installment clipped to remaining balance")
	assert.True(t, newBalance.IsZero())
	assert.True(t, completed, "loan must be flagged completed when balance reaches zero")
}

func TestInstallment_SkipsNonActive(t *testing.T) {
	t.Parallel()

	for _, status := range []LoanStatus{LoanStatusPending, LoanStatusRejected, LoanStatusCompleted} {
		l := activeLoan(12000, 6000, 10)
		l.Status = status

		installment, newBalance, completed := l.Installment(1)

		assert.True(t, installment.IsZero(), "status %s must contribute zero", status)
		assert.True(t, decimal.NewFromInt(6000).Equal(newBalance))
		assert.False(t, completed)
	}
}

func TestInstallment_SkipsArchived(t *testing.T) {
	t.Parallel()

	archivedAt := time.Now()
	l := activeLoan(12000, 6000, 10)
	l.ArchivedAt = &archivedAt

	installment, _, _ := l.Installment(1)

	assert.True(t, installment.IsZero())
}

func TestCanTransitionTo(t *testing.T) {
	t.Parallel()

	pending := Loan{Status: LoanStatusPending}
	assert.True(t, pending.CanTransitionTo(LoanStatusActive))
	assert.True(t, pending.CanTransitionTo(LoanStatusRejected))
	assert.False(t, pending.CanTransitionTo(LoanStatusCompleted))

	active := Loan{Status: LoanStatusActive}
	assert.True(t, active.CanTransitionTo(LoanStatusCompleted))
	assert.False(t, active.CanTransitionTo(LoanStatusActive))

	rejected := Loan{Status: LoanStatusRejected}
	assert.False(t, rejected.CanTransitionTo(LoanStatusActive))
}
