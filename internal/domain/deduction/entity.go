package deduction

import (
	"time"

	"github.com/shopspring/decimal"
)

// CalculationType enum
type CalculationType string

const (
	CalculationTypeFixed      CalculationType = "fixed"
	CalculationTypePercentage CalculationType = "percentage"
)

// DeductionType - master definition of a deduction. Exactly one of
// Amount/PercentageValue is authoritative depending on CalculationType;
// the other may still be stored but is ignored.
type DeductionType struct {
	ID              string
	Name            string
	CalculationType CalculationType
	Amount          decimal.Decimal
	PercentageValue decimal.Decimal
	IsMandatory     bool
	// IsAttendance marks types the attendance collaborator writes
	// through (lateness, absence). Their instances are aggregated
	// separately into the snapshot's attendance component.
	IsAttendance bool
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// DeductionInstance links one employee to one DeductionType. Amount is a
// snapshot of what was owed when applied, not recomputed on read. Once a
// period has been processed, archiving is the only deletion path.
type DeductionInstance struct {
	ID              string
	EmployeeID      string
	DeductionTypeID string
	Amount          decimal.Decimal
	AppliedAt       time.Time
	Notes           *string
	ArchivedAt      *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time

	// Joined fields
	TypeName         *string
	TypeIsMandatory  *bool
	TypeIsAttendance *bool
}

// IsArchived reports whether the instance has been moved out of the
// current period's computation.
func (i DeductionInstance) IsArchived() bool {
	return i.ArchivedAt != nil
}
