package loan

import "context"

// Service is the loan use-case surface exposed to handlers.
type Service interface {
	Create(ctx context.Context, req CreateLoanRequest) (LoanResponse, error)
	Get(ctx context.Context, id string) (LoanResponse, error)
	ListByEmployee(ctx context.Context, employeeID string, includeArchived bool) ([]LoanResponse, error)
	Approve(ctx context.Context, id string) (LoanResponse, error)
	Reject(ctx context.Context, id string) (LoanResponse, error)
	Archive(ctx context.Context, id string) error
}
