package payroll

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// SnapshotSchemaVersion tags snapshots written by this engine. Legacy
// snapshots carry no version field and parse as version 1. The layout is
// additive-only: historical archived entries are never rewritten.
const SnapshotSchemaVersion = 2

// DeductionDetail is one named line inside the snapshot.
type DeductionDetail struct {
	Type   string          `json:"type"`
	Amount decimal.Decimal `json:"amount"`
}

// AttendanceDeductionDetail is one attendance penalty line. LateMinutes is
// present only when the source note carried parseable minute data.
type AttendanceDeductionDetail struct {
	Type        string          `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	LateMinutes *int            `json:"lateMinutes,omitempty"`
}

// LoanDetail is one settled installment line.
type LoanDetail struct {
	LoanID     string          `json:"loanId"`
	Amount     decimal.Decimal `json:"amount"`
	NewBalance decimal.Decimal `json:"newBalance"`
}

// BreakdownSnapshot is the frozen record of how an entry's net pay was
// derived. It is the single source of truth: the entry's stored
// Deductions/NetPay fields must always be derivable from it.
type BreakdownSnapshot struct {
	SchemaVersion              int                         `json:"schemaVersion"`
	BasicSalary                decimal.Decimal             `json:"basicSalary"`
	OverloadPay                decimal.Decimal             `json:"overloadPay"`
	TotalDeductions            decimal.Decimal             `json:"totalDeductions"`
	AttendanceDeductions       decimal.Decimal             `json:"attendanceDeductions"`
	DatabaseDeductions         decimal.Decimal             `json:"databaseDeductions"`
	LoanPayments               decimal.Decimal             `json:"loanPayments"`
	DeductionDetails           []DeductionDetail           `json:"deductionDetails"`
	AttendanceDeductionDetails []AttendanceDeductionDetail `json:"attendanceDeductionDetails"`
	LoanDetails                []LoanDetail                `json:"loanDetails"`
	GrossPay                   decimal.Decimal             `json:"grossPay"`
	NetPay                     decimal.Decimal             `json:"netPay"`
}

// Marshal serializes the snapshot deterministically: encoding/json emits
// struct fields in declaration order, so identical inputs produce
// byte-identical output. Required for idempotent regeneration.
func (s BreakdownSnapshot) Marshal() ([]byte, error) {
	return json.Marshal(s)
}

// SumDetails adds up every detail line. Used as the last resort of the
// reconciliation fallback chain when the snapshot totals are absent.
func (s BreakdownSnapshot) SumDetails() decimal.Decimal {
	total := decimal.Zero
	for _, d := range s.DeductionDetails {
		total = total.Add(d.Amount)
	}
	for _, d := range s.AttendanceDeductionDetails {
		total = total.Add(d.Amount)
	}
	for _, d := range s.LoanDetails {
		total = total.Add(d.Amount)
	}
	return total
}

// ComponentTotal sums the three component totals. Must equal
// TotalDeductions within a cent on every snapshot this engine writes.
func (s BreakdownSnapshot) ComponentTotal() decimal.Decimal {
	return s.AttendanceDeductions.Add(s.DatabaseDeductions).Add(s.LoanPayments)
}

// ParseSnapshot decodes a stored snapshot. Historical rows stored it
// either as a JSON object or as a JSON string wrapping the object
// (double-encoded by an earlier writer), so parsing tries both before
// giving up.
func ParseSnapshot(raw []byte) (BreakdownSnapshot, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return BreakdownSnapshot{}, fmt.Errorf("%w: empty", ErrSnapshotUnparseable)
	}

	var snap BreakdownSnapshot
	if err := json.Unmarshal(raw, &snap); err == nil {
		if snap.SchemaVersion == 0 {
			snap.SchemaVersion = 1
		}
		return snap, nil
	}

	// Double-encoded: a JSON string whose content is the object.
	var inner string
	if err := json.Unmarshal(raw, &inner); err == nil {
		if err := json.Unmarshal([]byte(inner), &snap); err == nil {
			if snap.SchemaVersion == 0 {
				snap.SchemaVersion = 1
			}
			return snap, nil
		}
	}

	return BreakdownSnapshot{}, fmt.Errorf("%w: not valid JSON", ErrSnapshotUnparseable)
}
