package deduction

import (
	"context"
	"fmt"
	"time"

	"github.com/barangay-hris/payroll-backend-go/internal/domain/deduction"
	"github.com/barangay-hris/payroll-backend-go/internal/domain/employee"
	"github.com/barangay-hris/payroll-backend-go/internal/pkg/database"
	"github.com/barangay-hris/payroll-backend-go/internal/repository/postgresql"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type DeductionServiceImpl struct {
	db            *database.DB
	deductionRepo deduction.DeductionRepository
	employeeRepo  employee.EmployeeRepository

	// runTx wraps the cascade; swapped for a pass-through in tests.
	runTx func(ctx context.Context, fn func(tx pgx.Tx) error) error
}

func NewDeductionService(
	db *database.DB,
	deductionRepo deduction.DeductionRepository,
	employeeRepo employee.EmployeeRepository,
) deduction.Service {
	return &DeductionServiceImpl{
		db:            db,
		deductionRepo: deductionRepo,
		employeeRepo:  employeeRepo,
		runTx: func(ctx context.Context, fn func(tx pgx.Tx) error) error {
			return postgresql.WithTransaction(ctx, db, fn)
		},
	}
}

// ========== TYPES ==========

func (s *DeductionServiceImpl) CreateType(ctx context.Context, req deduction.CreateDeductionTypeRequest) (deduction.DeductionTypeResponse, error) {
	if err := req.Validate(); err != nil {
		return deduction.DeductionTypeResponse{}, err
	}

	def := deduction.DeductionType{
		Name:            req.Name,
		CalculationType: deduction.CalculationType(req.CalculationType),
		IsActive:        true,
	}
	if req.Amount != nil {
		def.Amount = *req.Amount
	}
	if req.PercentageValue != nil {
		def.PercentageValue = *req.PercentageValue
	}
	if req.IsMandatory != nil {
		def.IsMandatory = *req.IsMandatory
	}
	if req.IsAttendance != nil {
		def.IsAttendance = *req.IsAttendance
	}

	created, err := s.deductionRepo.CreateType(ctx, def)
	if err != nil {
		return deduction.DeductionTypeResponse{}, err
	}

	return mapTypeResponse(created), nil
}

func (s *DeductionServiceImpl) GetType(ctx context.Context, id string) (deduction.DeductionTypeResponse, error) {
	def, err := s.deductionRepo.GetTypeByID(ctx, id)
	if err != nil {
		return deduction.DeductionTypeResponse{}, err
	}
	return mapTypeResponse(def), nil
}

func (s *DeductionServiceImpl) ListTypes(ctx context.Context, activeOnly bool) ([]deduction.DeductionTypeResponse, error) {
	defs, err := s.deductionRepo.ListTypes(ctx, activeOnly)
	if err != nil {
		return nil, err
	}

	result := make([]deduction.DeductionTypeResponse, 0, len(defs))
	for _, def := range defs {
		result = append(result, mapTypeResponse(def))
	}
	return result, nil
}

func (s *DeductionServiceImpl) UpdateType(ctx context.Context, req deduction.UpdateDeductionTypeRequest) error {
	return s.deductionRepo.UpdateType(ctx, req)
}

// UpdateTypeRate rewrites the authoritative rate and re-evaluates every
// non-archived instance of the type against each holder's salary base.
// The whole cascade is one transaction: a half-applied rate change would
// leave per-employee amounts computed from mixed-version rates.
func (s *DeductionServiceImpl) UpdateTypeRate(ctx context.Context, req deduction.UpdateDeductionRateRequest) (deduction.CascadeResult, error) {
	if err := req.Validate(); err != nil {
		return deduction.CascadeResult{}, err
	}

	current, err := s.deductionRepo.GetTypeByID(ctx, req.ID)
	if err != nil {
		return deduction.CascadeResult{}, err
	}

	amount := current.Amount
	percentage := current.PercentageValue
	if req.Amount != nil {
		amount = *req.Amount
	}
	if req.PercentageValue != nil {
		percentage = *req.PercentageValue
	}

	var result deduction.CascadeResult
	err = s.runTx(ctx, func(tx pgx.Tx) error {
		txCtx := context.WithValue(ctx, "tx", tx)

		updated, err := s.deductionRepo.UpdateTypeRate(txCtx, req.ID, amount, percentage)
		if err != nil {
			return err
		}

		instances, err := s.deductionRepo.ListActiveInstancesByType(txCtx, req.ID)
		if err != nil {
			return err
		}

		for _, inst := range instances {
			newAmount, err := s.evaluateForEmployee(txCtx, updated, inst.EmployeeID)
			if err != nil {
				return fmt.Errorf("recompute instance %s: %w", inst.ID, err)
			}
			if err := s.deductionRepo.UpdateInstanceAmount(txCtx, inst.ID, newAmount); err != nil {
				return fmt.Errorf("update instance %s: %w", inst.ID, err)
			}
		}

		result = deduction.CascadeResult{
			Type:             mapTypeResponse(updated),
			InstancesUpdated: len(instances),
		}
		return nil
	})
	if err != nil {
		return deduction.CascadeResult{}, err
	}

	return result, nil
}

func (s *DeductionServiceImpl) evaluateForEmployee(ctx context.Context, def deduction.DeductionType, employeeID string) (decimal.Decimal, error) {
	emp, err := s.employeeRepo.GetByID(ctx, employeeID)
	if err != nil {
		return decimal.Zero, err
	}

	var salaryBase *decimal.Decimal
	if emp.SalaryProfile != nil {
		salaryBase = &emp.SalaryProfile.MonthlySalary
	}
	return deduction.EvaluateAmount(def, salaryBase).Round(2), nil
}

// ========== INSTANCES ==========

func (s *DeductionServiceImpl) ApplyToEmployee(ctx context.Context, req deduction.ApplyDeductionRequest) (deduction.DeductionInstanceResponse, error) {
	if err := req.Validate(); err != nil {
		return deduction.DeductionInstanceResponse{}, err
	}

	def, err := s.deductionRepo.GetTypeByID(ctx, req.DeductionTypeID)
	if err != nil {
		return deduction.DeductionInstanceResponse{}, err
	}

	amount, err := s.evaluateForEmployee(ctx, def, req.EmployeeID)
	if err != nil {
		return deduction.DeductionInstanceResponse{}, err
	}

	inst := deduction.DeductionInstance{
		EmployeeID:      req.EmployeeID,
		DeductionTypeID: req.DeductionTypeID,
		Amount:          amount,
		AppliedAt:       time.Now(),
		Notes:           req.Notes,
	}

	created, err := s.deductionRepo.CreateInstance(ctx, inst)
	if err != nil {
		return deduction.DeductionInstanceResponse{}, err
	}

	return mapInstanceResponse(created), nil
}

func (s *DeductionServiceImpl) ListEmployeeDeductions(ctx context.Context, employeeID string, includeArchived bool) ([]deduction.DeductionInstanceResponse, error) {
	instances, err := s.deductionRepo.ListInstancesByEmployee(ctx, employeeID, includeArchived)
	if err != nil {
		return nil, err
	}

	result := make([]deduction.DeductionInstanceResponse, 0, len(instances))
	for _, inst := range instances {
		result = append(result, mapInstanceResponse(inst))
	}
	return result, nil
}

// ArchiveInstance is the only deletion path once a period has been
// processed. Periods already generated keep the instance's contribution
// by value inside their snapshots.
func (s *DeductionServiceImpl) ArchiveInstance(ctx context.Context, id string) error {
	inst, err := s.deductionRepo.GetInstanceByID(ctx, id)
	if err != nil {
		return err
	}
	if inst.IsArchived() {
		return deduction.ErrInstanceAlreadyArchived
	}

	return s.deductionRepo.ArchiveInstance(ctx, id, time.Now())
}

// ========== HELPERS ==========

func mapTypeResponse(def deduction.DeductionType) deduction.DeductionTypeResponse {
	return deduction.DeductionTypeResponse{
		ID:              def.ID,
		Name:            def.Name,
		CalculationType: string(def.CalculationType),
		Amount:          def.Amount,
		PercentageValue: def.PercentageValue,
		IsMandatory:     def.IsMandatory,
		IsAttendance:    def.IsAttendance,
		IsActive:        def.IsActive,
	}
}

func mapInstanceResponse(inst deduction.DeductionInstance) deduction.DeductionInstanceResponse {
	typeName := ""
	if inst.TypeName != nil {
		typeName = *inst.TypeName
	}

	var archivedAt *string
	if inst.ArchivedAt != nil {
		str := inst.ArchivedAt.Format(time.RFC3339)
		archivedAt = &str
	}

	return deduction.DeductionInstanceResponse{
		ID:              inst.ID,
		EmployeeID:      inst.EmployeeID,
		DeductionTypeID: inst.DeductionTypeID,
		TypeName:        typeName,
		Amount:          inst.Amount,
		AppliedAt:       inst.AppliedAt.Format(time.RFC3339),
		Notes:           inst.Notes,
		ArchivedAt:      archivedAt,
	}
}
