package payroll

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPeriodPolicy_RejectsUnknownConvention(t *testing.T) {
	t.Parallel()

	_, err := NewPeriodPolicy("weekly", time.UTC)
	assert.ErrorIs(t, err, ErrInvalidPeriod)
}

func TestResolve_Monthly(t *testing.T) {
	t.Parallel()

	policy, err := NewPeriodPolicy(ConventionMonthly, time.UTC)
	require.NoError(t, err)

	anchor := time.Date(2026, time.August, 19, 14, 30, 0, 0, time.UTC)
	period := policy.Resolve(anchor)

	assert.Equal(t, time.Date(2026, time.August, 1, 0, 0, 0, 0, time.UTC), period.Start)
	assert.Equal(t, time.Date(2026, time.August, 31, 0, 0, 0, 0, time.UTC), period.End)
	assert.Equal(t, 1, policy.PeriodsPerMonth())
}

func TestResolve_SemiMonthly(t *testing.T) {
	t.Parallel()

	policy, err := NewPeriodPolicy(ConventionSemiMonthly, time.UTC)
	require.NoError(t, err)

	firstHalf := policy.Resolve(time.Date(2026, time.February, 10, 9, 0, 0, 0, time.UTC))
	assert.Equal(t, time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC), firstHalf.Start)
	assert.Equal(t, time.Date(2026, time.February, 15, 0, 0, 0, 0, time.UTC), firstHalf.End)

	secondHalf := policy.Resolve(time.Date(2026, time.February, 16, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, time.Date(2026, time.February, 16, 0, 0, 0, 0, time.UTC), secondHalf.Start)
	assert.Equal(t, time.Date(2026, time.February, 28, 0, 0, 0, 0, time.UTC), secondHalf.End)

	assert.Equal(t, 2, policy.PeriodsPerMonth())
}

func TestNormalize_MidnightAndOrdering(t *testing.T) {
	t.Parallel()

	policy, err := NewPeriodPolicy(ConventionMonthly, time.UTC)
	require.NoError(t, err)

	period, err := policy.Normalize(
		time.Date(2026, time.August, 1, 13, 45, 12, 99, time.UTC),
		time.Date(2026, time.August, 31, 23, 59, 59, 0, time.UTC),
	)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, time.August, 1, 0, 0, 0, 0, time.UTC), period.Start)
	assert.Equal(t, time.Date(2026, time.August, 31, 0, 0, 0, 0, time.UTC), period.End)

	_, err = policy.Normalize(
		time.Date(2026, time.August, 31, 0, 0, 0, 0, time.UTC),
		time.Date(2026, time.August, 1, 0, 0, 0, 0, time.UTC),
	)
	assert.ErrorIs(t, err, ErrInvalidPeriod)
}

func TestPeriodKey(t *testing.T) {
	t.Parallel()

	period := Period{
		Start: time.Date(2026, time.August, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2026, time.August, 15, 0, 0, 0, 0, time.UTC),
	}
	assert.Equal(t, "2026-08-01_2026-08-15", period.Key())
}

func TestPeriodCoversInstant(t *testing.T) {
	t.Parallel()

	period := Period{
		Start: time.Date(2026, time.August, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2026, time.August, 31, 0, 0, 0, 0, time.UTC),
	}

	assert.True(t, period.CoversInstant(time.Date(2026, time.August, 1, 0, 0, 0, 0, time.UTC)))
	assert.True(t, period.CoversInstant(time.Date(2026, time.August, 20, 8, 30, 0, 0, time.UTC)))
	// Afternoon of the closing day: past End's midnight boundary but
	// still inside the period.
	assert.True(t, period.CoversInstant(time.Date(2026, time.August, 31, 16, 0, 0, 0, time.UTC)))

	assert.False(t, period.CoversInstant(time.Date(2026, time.July, 31, 23, 59, 0, 0, time.UTC)))
	assert.False(t, period.CoversInstant(time.Date(2026, time.September, 1, 0, 0, 0, 0, time.UTC)))
}

func TestProrateMonthly(t *testing.T) {
	t.Parallel()

	monthly, _ := NewPeriodPolicy(ConventionMonthly, time.UTC)
	semi, _ := NewPeriodPolicy(ConventionSemiMonthly, time.UTC)

	salary := decimal.NewFromInt(6000)
	assert.True(t, decimal.NewFromInt(6000).Equal(monthly.ProrateMonthly(salary)))
	assert.True(t, decimal.NewFromInt(3000).Equal(semi.ProrateMonthly(salary)))
}
