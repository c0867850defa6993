package deduction

import "context"

// Service is the deduction use-case surface exposed to handlers.
type Service interface {
	CreateType(ctx context.Context, req CreateDeductionTypeRequest) (DeductionTypeResponse, error)
	GetType(ctx context.Context, id string) (DeductionTypeResponse, error)
	ListTypes(ctx context.Context, activeOnly bool) ([]DeductionTypeResponse, error)
	UpdateType(ctx context.Context, req UpdateDeductionTypeRequest) error
	// UpdateTypeRate changes the authoritative rate and recomputes every
	// non-archived instance of the type in one transaction.
	UpdateTypeRate(ctx context.Context, req UpdateDeductionRateRequest) (CascadeResult, error)

	ApplyToEmployee(ctx context.Context, req ApplyDeductionRequest) (DeductionInstanceResponse, error)
	ListEmployeeDeductions(ctx context.Context, employeeID string, includeArchived bool) ([]DeductionInstanceResponse, error)
	// ArchiveInstance removes the instance from all future period
	// computations without touching any persisted snapshot.
	ArchiveInstance(ctx context.Context, id string) error
}
