package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/barangay-hris/payroll-backend-go/internal/domain/employee"
	"github.com/barangay-hris/payroll-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type employeeRepository struct {
	db *database.DB
}

func NewEmployeeRepository(db *database.DB) employee.EmployeeRepository {
	return &employeeRepository{db: db}
}

func (r *employeeRepository) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT e.id, e.full_name, e.role, e.is_active, e.created_at, e.updated_at,
			   sp.id, sp.employee_id, sp.monthly_salary, sp.department, sp.created_at, sp.updated_at
		FROM employees e
		LEFT JOIN salary_profiles sp ON sp.employee_id = e.id
		WHERE e.id = $1
	`

	var emp employee.Employee
	var sp nullableSalaryProfile
	err := q.QueryRow(ctx, query, id).Scan(
		&emp.ID, &emp.FullName, &emp.Role, &emp.IsActive, &emp.CreatedAt, &emp.UpdatedAt,
		&sp.ID, &sp.EmployeeID, &sp.MonthlySalary, &sp.Department, &sp.CreatedAt, &sp.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return employee.Employee{}, employee.ErrEmployeeNotFound
		}
		return employee.Employee{}, fmt.Errorf("failed to get employee: %w", err)
	}

	emp.SalaryProfile = sp.toDomain()

	return emp, nil
}

func (r *employeeRepository) ListActivePersonnel(ctx context.Context) ([]employee.Employee, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT e.id, e.full_name, e.role, e.is_active, e.created_at, e.updated_at,
			   sp.id, sp.employee_id, sp.monthly_salary, sp.department, sp.created_at, sp.updated_at
		FROM employees e
		LEFT JOIN salary_profiles sp ON sp.employee_id = e.id
		WHERE e.is_active = true AND e.role = 'personnel'
		ORDER BY e.full_name
	`

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list active personnel: %w", err)
	}
	defer rows.Close()

	var employees []employee.Employee
	for rows.Next() {
		var emp employee.Employee
		var sp nullableSalaryProfile
		if err := rows.Scan(
			&emp.ID, &emp.FullName, &emp.Role, &emp.IsActive, &emp.CreatedAt, &emp.UpdatedAt,
			&sp.ID, &sp.EmployeeID, &sp.MonthlySalary, &sp.Department, &sp.CreatedAt, &sp.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan employee: %w", err)
		}
		emp.SalaryProfile = sp.toDomain()
		employees = append(employees, emp)
	}

	return employees, nil
}

// nullableSalaryProfile absorbs the LEFT JOIN: every column may be NULL
// when the employee has no profile yet.
type nullableSalaryProfile struct {
	ID            *string
	EmployeeID    *string
	MonthlySalary *decimal.Decimal
	Department    *string
	CreatedAt     *time.Time
	UpdatedAt     *time.Time
}

func (n nullableSalaryProfile) toDomain() *employee.SalaryProfile {
	if n.ID == nil {
		return nil
	}
	profile := &employee.SalaryProfile{
		ID: *n.ID,
	}
	if n.EmployeeID != nil {
		profile.EmployeeID = *n.EmployeeID
	}
	if n.Department != nil {
		profile.Department = *n.Department
	}
	if n.MonthlySalary != nil {
		profile.MonthlySalary = *n.MonthlySalary
	}
	if n.CreatedAt != nil {
		profile.CreatedAt = *n.CreatedAt
	}
	if n.UpdatedAt != nil {
		profile.UpdatedAt = *n.UpdatedAt
	}
	return profile
}
