package postgresql

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/barangay-hris/payroll-backend-go/internal/domain/deduction"
	"github.com/barangay-hris/payroll-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type deductionRepository struct {
	db *database.DB
}

func NewDeductionRepository(db *database.DB) deduction.DeductionRepository {
	return &deductionRepository{db: db}
}

// ========== TYPES ==========

func (r *deductionRepository) CreateType(ctx context.Context, def deduction.DeductionType) (deduction.DeductionType, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO deduction_types (name, calculation_type, amount, percentage_value, is_mandatory, is_attendance, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, name, calculation_type, amount, percentage_value, is_mandatory, is_attendance, is_active, created_at, updated_at
	`

	var created deduction.DeductionType
	err := q.QueryRow(ctx, query,
		def.Name, def.CalculationType, def.Amount, def.PercentageValue, def.IsMandatory, def.IsAttendance, def.IsActive,
	).Scan(
		&created.ID, &created.Name, &created.CalculationType, &created.Amount, &created.PercentageValue,
		&created.IsMandatory, &created.IsAttendance, &created.IsActive, &created.CreatedAt, &created.UpdatedAt,
	)
	if err != nil {
		if strings.Contains(err.Error(), "uk_deduction_type_name") {
			return deduction.DeductionType{}, deduction.ErrDeductionTypeNameExists
		}
		return deduction.DeductionType{}, fmt.Errorf("failed to create deduction type: %w", err)
	}

	return created, nil
}

func (r *deductionRepository) GetTypeByID(ctx context.Context, id string) (deduction.DeductionType, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, name, calculation_type, amount, percentage_value, is_mandatory, is_attendance, is_active, created_at, updated_at
		FROM deduction_types
		WHERE id = $1
	`

	var def deduction.DeductionType
	err := q.QueryRow(ctx, query, id).Scan(
		&def.ID, &def.Name, &def.CalculationType, &def.Amount, &def.PercentageValue,
		&def.IsMandatory, &def.IsAttendance, &def.IsActive, &def.CreatedAt, &def.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return deduction.DeductionType{}, deduction.ErrDeductionTypeNotFound
		}
		return deduction.DeductionType{}, fmt.Errorf("failed to get deduction type: %w", err)
	}

	return def, nil
}

func (r *deductionRepository) ListTypes(ctx context.Context, activeOnly bool) ([]deduction.DeductionType, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, name, calculation_type, amount, percentage_value, is_mandatory, is_attendance, is_active, created_at, updated_at
		FROM deduction_types
	`
	if activeOnly {
		query += " WHERE is_active = true"
	}
	query += " ORDER BY name"

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list deduction types: %w", err)
	}
	defer rows.Close()

	var defs []deduction.DeductionType
	for rows.Next() {
		var def deduction.DeductionType
		if err := rows.Scan(
			&def.ID, &def.Name, &def.CalculationType, &def.Amount, &def.PercentageValue,
			&def.IsMandatory, &def.IsAttendance, &def.IsActive, &def.CreatedAt, &def.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan deduction type: %w", err)
		}
		defs = append(defs, def)
	}

	return defs, nil
}

func (r *deductionRepository) UpdateType(ctx context.Context, req deduction.UpdateDeductionTypeRequest) error {
	q := GetQuerier(ctx, r.db)

	setParts := []string{"updated_at = NOW()"}
	args := []interface{}{req.ID}
	argIdx := 2

	if req.Name != nil {
		setParts = append(setParts, fmt.Sprintf("name = $%d", argIdx))
		args = append(args, *req.Name)
		argIdx++
	}
	if req.IsMandatory != nil {
		setParts = append(setParts, fmt.Sprintf("is_mandatory = $%d", argIdx))
		args = append(args, *req.IsMandatory)
		argIdx++
	}
	if req.IsActive != nil {
		setParts = append(setParts, fmt.Sprintf("is_active = $%d", argIdx))
		args = append(args, *req.IsActive)
		argIdx++
	}

	query := fmt.Sprintf(`
		UPDATE deduction_types
		SET %s
		WHERE id = $1
		RETURNING id
	`, strings.Join(setParts, ", "))

	var updatedID string
	err := q.QueryRow(ctx, query, args...).Scan(&updatedID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return deduction.ErrDeductionTypeNotFound
		}
		if strings.Contains(err.Error(), "uk_deduction_type_name") {
			return deduction.ErrDeductionTypeNameExists
		}
		return fmt.Errorf("failed to update deduction type: %w", err)
	}

	return nil
}

func (r *deductionRepository) UpdateTypeRate(ctx context.Context, id string, amount, percentageValue decimal.Decimal) (deduction.DeductionType, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE deduction_types
		SET amount = $2, percentage_value = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING id, name, calculation_type, amount, percentage_value, is_mandatory, is_attendance, is_active, created_at, updated_at
	`

	var def deduction.DeductionType
	err := q.QueryRow(ctx, query, id, amount, percentageValue).Scan(
		&def.ID, &def.Name, &def.CalculationType, &def.Amount, &def.PercentageValue,
		&def.IsMandatory, &def.IsAttendance, &def.IsActive, &def.CreatedAt, &def.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return deduction.DeductionType{}, deduction.ErrDeductionTypeNotFound
		}
		return deduction.DeductionType{}, fmt.Errorf("failed to update deduction type rate: %w", err)
	}

	return def, nil
}

// ========== INSTANCES ==========

const instanceColumns = `
	di.id, di.employee_id, di.deduction_type_id, di.amount, di.applied_at,
	di.notes, di.archived_at, di.created_at, di.updated_at,
	dt.name as type_name, dt.is_mandatory as type_is_mandatory, dt.is_attendance as type_is_attendance
`

func scanInstance(row pgx.Row) (deduction.DeductionInstance, error) {
	var inst deduction.DeductionInstance
	err := row.Scan(
		&inst.ID, &inst.EmployeeID, &inst.DeductionTypeID, &inst.Amount, &inst.AppliedAt,
		&inst.Notes, &inst.ArchivedAt, &inst.CreatedAt, &inst.UpdatedAt,
		&inst.TypeName, &inst.TypeIsMandatory, &inst.TypeIsAttendance,
	)
	return inst, err
}

func (r *deductionRepository) CreateInstance(ctx context.Context, inst deduction.DeductionInstance) (deduction.DeductionInstance, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO deduction_instances (employee_id, deduction_type_id, amount, applied_at, notes)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, employee_id, deduction_type_id, amount, applied_at, notes, archived_at, created_at, updated_at
	`

	var created deduction.DeductionInstance
	err := q.QueryRow(ctx, query,
		inst.EmployeeID, inst.DeductionTypeID, inst.Amount, inst.AppliedAt, inst.Notes,
	).Scan(
		&created.ID, &created.EmployeeID, &created.DeductionTypeID, &created.Amount, &created.AppliedAt,
		&created.Notes, &created.ArchivedAt, &created.CreatedAt, &created.UpdatedAt,
	)
	if err != nil {
		if strings.Contains(err.Error(), "fk_deduction_instance_type") {
			return deduction.DeductionInstance{}, deduction.ErrDeductionTypeNotFound
		}
		return deduction.DeductionInstance{}, fmt.Errorf("failed to create deduction instance: %w", err)
	}

	return created, nil
}

func (r *deductionRepository) GetInstanceByID(ctx context.Context, id string) (deduction.DeductionInstance, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + instanceColumns + `
		FROM deduction_instances di
		JOIN deduction_types dt ON di.deduction_type_id = dt.id
		WHERE di.id = $1
	`

	inst, err := scanInstance(q.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return deduction.DeductionInstance{}, deduction.ErrDeductionInstanceNotFound
		}
		return deduction.DeductionInstance{}, fmt.Errorf("failed to get deduction instance: %w", err)
	}

	return inst, nil
}

func (r *deductionRepository) ListInstancesByEmployee(ctx context.Context, employeeID string, includeArchived bool) ([]deduction.DeductionInstance, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + instanceColumns + `
		FROM deduction_instances di
		JOIN deduction_types dt ON di.deduction_type_id = dt.id
		WHERE di.employee_id = $1
	`
	if !includeArchived {
		query += " AND di.archived_at IS NULL"
	}
	query += " ORDER BY di.applied_at DESC"

	rows, err := q.Query(ctx, query, employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list deduction instances: %w", err)
	}
	defer rows.Close()

	var instances []deduction.DeductionInstance
	for rows.Next() {
		inst, err := scanInstance(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan deduction instance: %w", err)
		}
		instances = append(instances, inst)
	}

	return instances, nil
}

func (r *deductionRepository) ListActiveInstancesByType(ctx context.Context, typeID string) ([]deduction.DeductionInstance, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + instanceColumns + `
		FROM deduction_instances di
		JOIN deduction_types dt ON di.deduction_type_id = dt.id
		WHERE di.deduction_type_id = $1 AND di.archived_at IS NULL
		ORDER BY di.applied_at
	`

	rows, err := q.Query(ctx, query, typeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list deduction instances by type: %w", err)
	}
	defer rows.Close()

	var instances []deduction.DeductionInstance
	for rows.Next() {
		inst, err := scanInstance(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan deduction instance: %w", err)
		}
		instances = append(instances, inst)
	}

	return instances, nil
}

func (r *deductionRepository) UpdateInstanceAmount(ctx context.Context, id string, amount decimal.Decimal) error {
	q := GetQuerier(ctx, r.db)

	// Archived instances are frozen; the statement refuses them.
	query := `
		UPDATE deduction_instances
		SET amount = $2, updated_at = NOW()
		WHERE id = $1 AND archived_at IS NULL
		RETURNING id
	`

	var updatedID string
	err := q.QueryRow(ctx, query, id, amount).Scan(&updatedID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return deduction.ErrDeductionInstanceNotFound
		}
		return fmt.Errorf("failed to update deduction instance amount: %w", err)
	}

	return nil
}

func (r *deductionRepository) ArchiveInstance(ctx context.Context, id string, archivedAt time.Time) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE deduction_instances
		SET archived_at = $2, updated_at = NOW()
		WHERE id = $1 AND archived_at IS NULL
		RETURNING id
	`

	var archivedID string
	err := q.QueryRow(ctx, query, id, archivedAt).Scan(&archivedID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return deduction.ErrInstanceAlreadyArchived
		}
		return fmt.Errorf("failed to archive deduction instance: %w", err)
	}

	return nil
}
