package payroll

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/barangay-hris/payroll-backend-go/internal/domain/deduction"
	"github.com/shopspring/decimal"
)

// AttendanceAggregate is the aggregator's output: a monetary total, the
// ordered detail lines destined for the snapshot, and the late-minutes
// tally recovered from parseable notes.
type AttendanceAggregate struct {
	Total            decimal.Decimal
	Details          []AttendanceDeductionDetail
	TotalLateMinutes int
}

// Patterns the attendance collaborator has historically written into the
// notes field: "late 1h 20m", "late 45m", "85 minutes late", "late 85
// minutes". Pricing happens upstream; only the minute counts are parsed
// back out here.
var (
	lateHourMinRe = regexp.MustCompile(`(?i)late\s+(\d+)\s*h(?:ours?)?(?:\s*(\d+)\s*m(?:in(?:utes?)?)?)?`)
	lateMinOnlyRe = regexp.MustCompile(`(?i)late\s+(\d+)\s*m(?:in(?:utes?)?)?\b`)
	minutesLateRe = regexp.MustCompile(`(?i)(\d+)\s*min(?:ute)?s?\s+late`)
)

// AggregateAttendance folds attendance-derived deduction instances into
// the monetary breakdown. Pure aggregation: amounts were priced upstream
// by the attendance collaborator's daily-rate formula. Unparsable notes
// still count toward the total, just not toward the minutes tally.
func AggregateAttendance(instances []deduction.DeductionInstance) AttendanceAggregate {
	agg := AttendanceAggregate{
		Total:   decimal.Zero,
		Details: make([]AttendanceDeductionDetail, 0, len(instances)),
	}

	for _, inst := range instances {
		if inst.IsArchived() {
			continue
		}

		detail := AttendanceDeductionDetail{
			Type:   detailType(inst),
			Amount: inst.Amount,
		}
		if inst.Notes != nil {
			if minutes, ok := ParseLateMinutes(*inst.Notes); ok {
				m := minutes
				detail.LateMinutes = &m
				agg.TotalLateMinutes += minutes
			}
		}

		agg.Total = agg.Total.Add(inst.Amount)
		agg.Details = append(agg.Details, detail)
	}

	return agg
}

// ParseLateMinutes recovers a lateness duration in minutes from free-text
// notes. Returns false when no recognizable pattern is present.
func ParseLateMinutes(notes string) (int, bool) {
	if m := lateHourMinRe.FindStringSubmatch(notes); m != nil {
		hours, _ := strconv.Atoi(m[1])
		minutes := 0
		if m[2] != "" {
			minutes, _ = strconv.Atoi(m[2])
		}
		return hours*60 + minutes, true
	}
	if m := lateMinOnlyRe.FindStringSubmatch(notes); m != nil {
		minutes, _ := strconv.Atoi(m[1])
		return minutes, true
	}
	if m := minutesLateRe.FindStringSubmatch(notes); m != nil {
		minutes, _ := strconv.Atoi(m[1])
		return minutes, true
	}
	return 0, false
}

func detailType(inst deduction.DeductionInstance) string {
	if inst.TypeName != nil && *inst.TypeName != "" {
		return *inst.TypeName
	}
	if inst.Notes != nil {
		lower := strings.ToLower(*inst.Notes)
		switch {
		case strings.Contains(lower, "absen"):
			return "absence"
		case strings.Contains(lower, "late"):
			return "lateness"
		}
	}
	return "attendance"
}
