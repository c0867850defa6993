package deduction

import "errors"

var (
	ErrDeductionTypeNotFound     = errors.New("deduction type not found")
	ErrDeductionTypeNameExists   = errors.New("deduction type name already exists")
	ErrDeductionInstanceNotFound = errors.New("deduction instance not found")
	ErrInstanceAlreadyArchived   = errors.New("deduction instance already archived")
	ErrInvalidCalculationType    = errors.New("invalid calculation type")
)
