package payroll

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// PeriodConvention enum
type PeriodConvention string

const (
	ConventionMonthly     PeriodConvention = "monthly"
	ConventionSemiMonthly PeriodConvention = "semi_monthly"
)

// Period is the half-open date interval a payroll run covers, boundaries
// normalized to local midnight.
type Period struct {
	Start time.Time
	End   time.Time
}

// Key renders the canonical identifier used to address a period in
// release/listing operations, e.g. "2026-08-01_2026-08-15".
func (p Period) Key() string {
	return p.Start.Format("2006-01-02") + "_" + p.End.Format("2006-01-02")
}

// Contains reports whether t falls inside the period (inclusive bounds).
func (p Period) Contains(t time.Time) bool {
	return !t.Before(p.Start) && !t.After(p.End)
}

// CoversInstant reports whether a timestamp falls on any day of the
// period. End is a midnight boundary, so the whole closing day counts.
func (p Period) CoversInstant(t time.Time) bool {
	return !t.Before(p.Start) && t.Before(p.End.AddDate(0, 0, 1))
}

// PeriodPolicy is the explicit value object replacing wall-clock-derived
// "current period" state. The engine never reads ambient time; callers
// resolve an anchor date and pass it in.
type PeriodPolicy struct {
	Convention PeriodConvention
	Location   *time.Location
}

func NewPeriodPolicy(convention PeriodConvention, loc *time.Location) (PeriodPolicy, error) {
	if convention != ConventionMonthly && convention != ConventionSemiMonthly {
		return PeriodPolicy{}, fmt.Errorf("%w: unknown convention %q", ErrInvalidPeriod, convention)
	}
	if loc == nil {
		loc = time.Local
	}
	return PeriodPolicy{Convention: convention, Location: loc}, nil
}

// PeriodsPerMonth is the divisor applied to monthly figures (salary base,
// loan monthly payment percent) for one run under this policy.
func (p PeriodPolicy) PeriodsPerMonth() int {
	if p.Convention == ConventionSemiMonthly {
		return 2
	}
	return 1
}

// Resolve maps an anchor date to the period containing it. Monthly runs
// cover the whole calendar month; semi-monthly runs cut on the 15th.
func (p PeriodPolicy) Resolve(anchor time.Time) Period {
	loc := p.Location
	if loc == nil {
		loc = time.Local
	}
	y, m, d := anchor.In(loc).Date()

	switch p.Convention {
	case ConventionSemiMonthly:
		if d <= 15 {
			return Period{
				Start: time.Date(y, m, 1, 0, 0, 0, 0, loc),
				End:   time.Date(y, m, 15, 0, 0, 0, 0, loc),
			}
		}
		return Period{
			Start: time.Date(y, m, 16, 0, 0, 0, 0, loc),
			End:   lastDayOfMonth(y, m, loc),
		}
	default:
		return Period{
			Start: time.Date(y, m, 1, 0, 0, 0, 0, loc),
			End:   lastDayOfMonth(y, m, loc),
		}
	}
}

// Normalize clamps explicit caller-supplied boundaries to local midnight
// and validates ordering.
func (p PeriodPolicy) Normalize(start, end time.Time) (Period, error) {
	loc := p.Location
	if loc == nil {
		loc = time.Local
	}
	sy, sm, sd := start.In(loc).Date()
	ey, em, ed := end.In(loc).Date()

	period := Period{
		Start: time.Date(sy, sm, sd, 0, 0, 0, 0, loc),
		End:   time.Date(ey, em, ed, 0, 0, 0, 0, loc),
	}
	if period.End.Before(period.Start) {
		return Period{}, fmt.Errorf("%w: end %s before start %s", ErrInvalidPeriod,
			period.End.Format("2006-01-02"), period.Start.Format("2006-01-02"))
	}
	return period, nil
}

// ProrateMonthly converts a monthly salary to this policy's per-period
// base.
func (p PeriodPolicy) ProrateMonthly(monthly decimal.Decimal) decimal.Decimal {
	return monthly.Div(decimal.NewFromInt(int64(p.PeriodsPerMonth())))
}

func lastDayOfMonth(y int, m time.Month, loc *time.Location) time.Time {
	return time.Date(y, m+1, 1, 0, 0, 0, 0, loc).AddDate(0, 0, -1)
}
