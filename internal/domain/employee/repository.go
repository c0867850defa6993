package employee

import "context"

// EmployeeRepository is the read-only contract against the roster store.
type EmployeeRepository interface {
	GetByID(ctx context.Context, id string) (Employee, error)
	// ListActivePersonnel returns active personnel with their salary
	// profile joined in when one exists.
	ListActivePersonnel(ctx context.Context) ([]Employee, error)
}
