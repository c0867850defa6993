package deduction

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// DeductionRepository defines data access for deduction types and the
// per-employee instances derived from them.
type DeductionRepository interface {
	// Types
	CreateType(ctx context.Context, def DeductionType) (DeductionType, error)
	GetTypeByID(ctx context.Context, id string) (DeductionType, error)
	ListTypes(ctx context.Context, activeOnly bool) ([]DeductionType, error)
	UpdateType(ctx context.Context, req UpdateDeductionTypeRequest) error
	// UpdateTypeRate rewrites the authoritative rate fields. Must run
	// inside the cascade transaction (see service) so concurrent
	// per-employee recomputation never observes a mixed-version rate.
	UpdateTypeRate(ctx context.Context, id string, amount, percentageValue decimal.Decimal) (DeductionType, error)

	// Instances
	CreateInstance(ctx context.Context, inst DeductionInstance) (DeductionInstance, error)
	GetInstanceByID(ctx context.Context, id string) (DeductionInstance, error)
	ListInstancesByEmployee(ctx context.Context, employeeID string, includeArchived bool) ([]DeductionInstance, error)
	ListActiveInstancesByType(ctx context.Context, typeID string) ([]DeductionInstance, error)
	UpdateInstanceAmount(ctx context.Context, id string, amount decimal.Decimal) error
	ArchiveInstance(ctx context.Context, id string, archivedAt time.Time) error
}
