package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/barangay-hris/payroll-backend-go/internal/domain/loan"
	"github.com/barangay-hris/payroll-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type loanRepository struct {
	db *database.DB
}

func NewLoanRepository(db *database.DB) loan.LoanRepository {
	return &loanRepository{db: db}
}

const loanColumns = `
	id, employee_id, amount, balance, monthly_payment_percent, term_months,
	status, start_date, end_date, archived_at, created_at, updated_at
`

func scanLoan(row pgx.Row) (loan.Loan, error) {
	var l loan.Loan
	err := row.Scan(
		&l.ID, &l.EmployeeID, &l.Amount, &l.Balance, &l.MonthlyPaymentPercent, &l.TermMonths,
		&l.Status, &l.StartDate, &l.EndDate, &l.ArchivedAt, &l.CreatedAt, &l.UpdatedAt,
	)
	return l, err
}

func (r *loanRepository) Create(ctx context.Context, l loan.Loan) (loan.Loan, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO loans (employee_id, amount, balance, monthly_payment_percent, term_months, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + loanColumns

	created, err := scanLoan(q.QueryRow(ctx, query,
		l.EmployeeID, l.Amount, l.Balance, l.MonthlyPaymentPercent, l.TermMonths, l.Status,
	))
	if err != nil {
		return loan.Loan{}, fmt.Errorf("failed to create loan: %w", err)
	}

	return created, nil
}

func (r *loanRepository) GetByID(ctx context.Context, id string) (loan.Loan, error) {
	q := GetQuerier(ctx, r.db)

	query := "SELECT " + loanColumns + " FROM loans WHERE id = $1"

	l, err := scanLoan(q.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return loan.Loan{}, loan.ErrLoanNotFound
		}
		return loan.Loan{}, fmt.Errorf("failed to get loan: %w", err)
	}

	return l, nil
}

func (r *loanRepository) ListByEmployee(ctx context.Context, employeeID string, includeArchived bool) ([]loan.Loan, error) {
	q := GetQuerier(ctx, r.db)

	query := "SELECT " + loanColumns + " FROM loans WHERE employee_id = $1"
	if !includeArchived {
		query += " AND archived_at IS NULL"
	}
	query += " ORDER BY created_at DESC"

	rows, err := q.Query(ctx, query, employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list loans: %w", err)
	}
	defer rows.Close()

	var loans []loan.Loan
	for rows.Next() {
		l, err := scanLoan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan loan: %w", err)
		}
		loans = append(loans, l)
	}

	return loans, nil
}

func (r *loanRepository) ListActiveByEmployee(ctx context.Context, employeeID string) ([]loan.Loan, error) {
	q := GetQuerier(ctx, r.db)

	query := "SELECT " + loanColumns + ` FROM loans
		WHERE employee_id = $1 AND status = 'active' AND archived_at IS NULL
		ORDER BY created_at`

	rows, err := q.Query(ctx, query, employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list active loans: %w", err)
	}
	defer rows.Close()

	var loans []loan.Loan
	for rows.Next() {
		l, err := scanLoan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan loan: %w", err)
		}
		loans = append(loans, l)
	}

	return loans, nil
}

func (r *loanRepository) UpdateStatus(ctx context.Context, id string, status loan.LoanStatus, startDate *time.Time) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE loans
		SET status = $2, start_date = COALESCE($3, start_date), updated_at = NOW()
		WHERE id = $1
		RETURNING id
	`

	var updatedID string
	err := q.QueryRow(ctx, query, id, status, startDate).Scan(&updatedID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return loan.ErrLoanNotFound
		}
		return fmt.Errorf("failed to update loan status: %w", err)
	}

	return nil
}

func (r *loanRepository) UpdateBalance(ctx context.Context, id string, balance decimal.Decimal, completed bool) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE loans
		SET balance = $2,
			status = CASE WHEN $3 THEN 'completed' ELSE status END,
			end_date = CASE WHEN $3 THEN NOW() ELSE end_date END,
			updated_at = NOW()
		WHERE id = $1
		RETURNING id
	`

	var updatedID string
	err := q.QueryRow(ctx, query, id, balance, completed).Scan(&updatedID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return loan.ErrLoanNotFound
		}
		return fmt.Errorf("failed to update loan balance: %w", err)
	}

	return nil
}

func (r *loanRepository) RestoreBalance(ctx context.Context, id string, amount decimal.Decimal) error {
	q := GetQuerier(ctx, r.db)

	// Both CASE expressions read the pre-update status, so a loan the
	// reversed settlement completed reopens with its end date cleared.
	query := `
		UPDATE loans
		SET balance = balance + $2,
			status = CASE WHEN status = 'completed' THEN 'active' ELSE status END,
			end_date = CASE WHEN status = 'completed' THEN NULL ELSE end_date END,
			updated_at = NOW()
		WHERE id = $1
		RETURNING id
	`

	var restoredID string
	err := q.QueryRow(ctx, query, id, amount).Scan(&restoredID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return loan.ErrLoanNotFound
		}
		return fmt.Errorf("failed to restore loan balance: %w", err)
	}

	return nil
}

func (r *loanRepository) Archive(ctx context.Context, id string, archivedAt time.Time) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE loans
		SET archived_at = $2, updated_at = NOW()
		WHERE id = $1 AND archived_at IS NULL
		RETURNING id
	`

	var archivedID string
	err := q.QueryRow(ctx, query, id, archivedAt).Scan(&archivedID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return loan.ErrLoanAlreadyArchived
		}
		return fmt.Errorf("failed to archive loan: %w", err)
	}

	return nil
}
