package employee

import "errors"

var (
	ErrEmployeeNotFound = errors.New("employee not found")
	ErrNoSalaryProfile  = errors.New("employee has no salary profile configured")
)
