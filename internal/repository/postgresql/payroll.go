package postgresql

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/barangay-hris/payroll-backend-go/internal/domain/payroll"
	"github.com/barangay-hris/payroll-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type payrollRepository struct {
	db *database.DB
}

func NewPayrollRepository(db *database.DB) payroll.PayrollRepository {
	return &payrollRepository{db: db}
}

const entryColumns = `
	pe.id, pe.employee_id, pe.period_start, pe.period_end,
	pe.basic_salary, pe.overtime, pe.deductions, pe.net_pay,
	pe.status, pe.breakdown_snapshot, pe.processed_at, pe.released_at, pe.archived_at,
	pe.created_at, pe.updated_at,
	e.full_name as employee_name, sp.department
`

const entryJoins = `
	FROM payroll_entries pe
	JOIN employees e ON pe.employee_id = e.id
	LEFT JOIN salary_profiles sp ON sp.employee_id = e.id
`

func scanEntry(row pgx.Row) (payroll.PayrollEntry, error) {
	var entry payroll.PayrollEntry
	err := row.Scan(
		&entry.ID, &entry.EmployeeID, &entry.PeriodStart, &entry.PeriodEnd,
		&entry.BasicSalary, &entry.Overtime, &entry.Deductions, &entry.NetPay,
		&entry.Status, &entry.Snapshot, &entry.ProcessedAt, &entry.ReleasedAt, &entry.ArchivedAt,
		&entry.CreatedAt, &entry.UpdatedAt,
		&entry.EmployeeName, &entry.Department,
	)
	return entry, err
}

func (r *payrollRepository) CreateEntry(ctx context.Context, entry payroll.PayrollEntry) (payroll.PayrollEntry, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO payroll_entries (
			employee_id, period_start, period_end, basic_salary, overtime,
			deductions, net_pay, status, breakdown_snapshot, processed_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, employee_id, period_start, period_end, basic_salary, overtime,
			deductions, net_pay, status, breakdown_snapshot, processed_at,
			released_at, archived_at, created_at, updated_at
	`

	var created payroll.PayrollEntry
	err := q.QueryRow(ctx, query,
		entry.EmployeeID, entry.PeriodStart, entry.PeriodEnd, entry.BasicSalary, entry.Overtime,
		entry.Deductions, entry.NetPay, entry.Status, entry.Snapshot, entry.ProcessedAt,
	).Scan(
		&created.ID, &created.EmployeeID, &created.PeriodStart, &created.PeriodEnd,
		&created.BasicSalary, &created.Overtime, &created.Deductions, &created.NetPay,
		&created.Status, &created.Snapshot, &created.ProcessedAt,
		&created.ReleasedAt, &created.ArchivedAt, &created.CreatedAt, &created.UpdatedAt,
	)
	if err != nil {
		if strings.Contains(err.Error(), "uk_payroll_entry_employee_period") {
			return payroll.PayrollEntry{}, payroll.ErrEntryAlreadyExists
		}
		return payroll.PayrollEntry{}, fmt.Errorf("failed to create payroll entry: %w", err)
	}

	return created, nil
}

func (r *payrollRepository) GetEntryByID(ctx context.Context, id string) (payroll.PayrollEntry, error) {
	q := GetQuerier(ctx, r.db)

	query := "SELECT " + entryColumns + entryJoins + " WHERE pe.id = $1"

	entry, err := scanEntry(q.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return payroll.PayrollEntry{}, payroll.ErrEntryNotFound
		}
		return payroll.PayrollEntry{}, fmt.Errorf("failed to get payroll entry: %w", err)
	}

	return entry, nil
}

func (r *payrollRepository) GetEntryByEmployeePeriod(ctx context.Context, employeeID string, period payroll.Period) (payroll.PayrollEntry, error) {
	q := GetQuerier(ctx, r.db)

	query := "SELECT " + entryColumns + entryJoins +
		" WHERE pe.employee_id = $1 AND pe.period_start = $2 AND pe.period_end = $3"

	entry, err := scanEntry(q.QueryRow(ctx, query, employeeID, period.Start, period.End))
	if err != nil {
		if err == pgx.ErrNoRows {
			return payroll.PayrollEntry{}, payroll.ErrEntryNotFound
		}
		return payroll.PayrollEntry{}, fmt.Errorf("failed to get payroll entry: %w", err)
	}

	return entry, nil
}

func (r *payrollRepository) ListEntries(ctx context.Context, filter payroll.EntryFilter) ([]payroll.PayrollEntry, int64, error) {
	q := GetQuerier(ctx, r.db)

	baseQuery := entryJoins + " WHERE 1=1"
	args := []interface{}{}
	argIdx := 1

	if filter.PeriodStart != nil {
		baseQuery += fmt.Sprintf(" AND pe.period_start = $%d", argIdx)
		args = append(args, *filter.PeriodStart)
		argIdx++
	}
	if filter.PeriodEnd != nil {
		baseQuery += fmt.Sprintf(" AND pe.period_end = $%d", argIdx)
		args = append(args, *filter.PeriodEnd)
		argIdx++
	}
	if filter.Status != nil {
		baseQuery += fmt.Sprintf(" AND pe.status = $%d", argIdx)
		args = append(args, *filter.Status)
		argIdx++
	}
	if filter.EmployeeID != nil {
		baseQuery += fmt.Sprintf(" AND pe.employee_id = $%d", argIdx)
		args = append(args, *filter.EmployeeID)
		argIdx++
	}

	var totalCount int64
	countQuery := "SELECT COUNT(*) " + baseQuery
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&totalCount); err != nil {
		return nil, 0, fmt.Errorf("failed to count payroll entries: %w", err)
	}

	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	offset := (filter.Page - 1) * filter.Limit

	selectQuery := fmt.Sprintf(
		"SELECT "+entryColumns+" %s ORDER BY pe.period_start DESC, e.full_name LIMIT $%d OFFSET $%d",
		baseQuery, argIdx, argIdx+1,
	)
	args = append(args, filter.Limit, offset)

	rows, err := q.Query(ctx, selectQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list payroll entries: %w", err)
	}
	defer rows.Close()

	var entries []payroll.PayrollEntry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan payroll entry: %w", err)
		}
		entries = append(entries, entry)
	}

	return entries, totalCount, nil
}

func (r *payrollRepository) ListEntriesByStatus(ctx context.Context, status payroll.EntryStatus) ([]payroll.PayrollEntry, error) {
	q := GetQuerier(ctx, r.db)

	query := "SELECT " + entryColumns + entryJoins +
		" WHERE pe.status = $1 ORDER BY pe.period_start, pe.employee_id"

	rows, err := q.Query(ctx, query, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list payroll entries by status: %w", err)
	}
	defer rows.Close()

	var entries []payroll.PayrollEntry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payroll entry: %w", err)
		}
		entries = append(entries, entry)
	}

	return entries, nil
}

func (r *payrollRepository) ListPendingByPeriod(ctx context.Context, period payroll.Period) ([]payroll.PayrollEntry, error) {
	q := GetQuerier(ctx, r.db)

	query := "SELECT " + entryColumns + entryJoins +
		" WHERE pe.status = 'pending' AND pe.period_start = $1 AND pe.period_end = $2 ORDER BY pe.employee_id"

	rows, err := q.Query(ctx, query, period.Start, period.End)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending payroll entries: %w", err)
	}
	defer rows.Close()

	var entries []payroll.PayrollEntry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payroll entry: %w", err)
		}
		entries = append(entries, entry)
	}

	return entries, nil
}

func (r *payrollRepository) UpdatePendingEntry(ctx context.Context, entry payroll.PayrollEntry) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE payroll_entries
		SET overtime = $2, deductions = $3, net_pay = $4, breakdown_snapshot = $5, updated_at = NOW()
		WHERE id = $1 AND status = 'pending'
		RETURNING id
	`

	var updatedID string
	err := q.QueryRow(ctx, query,
		entry.ID, entry.Overtime, entry.Deductions, entry.NetPay, entry.Snapshot,
	).Scan(&updatedID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return payroll.ErrEntryNotPending
		}
		return fmt.Errorf("failed to update payroll entry: %w", err)
	}

	return nil
}

func (r *payrollRepository) DeletePendingEntry(ctx context.Context, employeeID string, period payroll.Period) error {
	q := GetQuerier(ctx, r.db)

	query := `
		DELETE FROM payroll_entries
		WHERE employee_id = $1 AND period_start = $2 AND period_end = $3 AND status = 'pending'
		RETURNING id
	`

	var deletedID string
	err := q.QueryRow(ctx, query, employeeID, period.Start, period.End).Scan(&deletedID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return payroll.ErrEntryNotFound
		}
		return fmt.Errorf("failed to delete pending payroll entry: %w", err)
	}

	return nil
}

func (r *payrollRepository) ReleaseByPeriod(ctx context.Context, period payroll.Period, releasedAt time.Time) (int64, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE payroll_entries
		SET status = 'released', released_at = $3, updated_at = NOW()
		WHERE period_start = $1 AND period_end = $2 AND status = 'pending'
	`

	tag, err := q.Exec(ctx, query, period.Start, period.End, releasedAt)
	if err != nil {
		return 0, fmt.Errorf("failed to release payroll entries: %w", err)
	}

	return tag.RowsAffected(), nil
}

func (r *payrollRepository) ArchiveByPeriod(ctx context.Context, period payroll.Period, archivedAt time.Time) (int64, error) {
	q := GetQuerier(ctx, r.db)

	// Pending entries archive too: an abandoned draft period may be put
	// away without ever being released.
	query := `
		UPDATE payroll_entries
		SET status = 'archived', archived_at = $3, updated_at = NOW()
		WHERE period_start = $1 AND period_end = $2 AND status IN ('pending', 'released')
	`

	tag, err := q.Exec(ctx, query, period.Start, period.End, archivedAt)
	if err != nil {
		return 0, fmt.Errorf("failed to archive payroll entries: %w", err)
	}

	return tag.RowsAffected(), nil
}

func (r *payrollRepository) ClearPendingByPeriod(ctx context.Context, period payroll.Period) (int64, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		DELETE FROM payroll_entries
		WHERE period_start = $1 AND period_end = $2 AND status = 'pending'
	`

	tag, err := q.Exec(ctx, query, period.Start, period.End)
	if err != nil {
		return 0, fmt.Errorf("failed to clear pending payroll entries: %w", err)
	}

	return tag.RowsAffected(), nil
}

func (r *payrollRepository) UpdateCacheFields(ctx context.Context, id string, deductions, netPay decimal.Decimal) error {
	q := GetQuerier(ctx, r.db)

	// breakdown_snapshot is deliberately absent from the SET list.
	query := `
		UPDATE payroll_entries
		SET deductions = $2, net_pay = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING id
	`

	var updatedID string
	err := q.QueryRow(ctx, query, id, deductions, netPay).Scan(&updatedID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return payroll.ErrEntryNotFound
		}
		return fmt.Errorf("failed to update payroll entry cache fields: %w", err)
	}

	return nil
}

func (r *payrollRepository) ListOverloadPay(ctx context.Context, employeeID string, period payroll.Period) ([]payroll.OverloadPayRecord, error) {
	q := GetQuerier(ctx, r.db)

	// period_end is a midnight boundary; grants later that same day
	// still belong to the period.
	query := `
		SELECT id, employee_id, amount, reason, granted_at
		FROM overload_pay
		WHERE employee_id = $1 AND granted_at >= $2 AND granted_at < $3 + interval '1 day'
		ORDER BY granted_at
	`

	rows, err := q.Query(ctx, query, employeeID, period.Start, period.End)
	if err != nil {
		return nil, fmt.Errorf("failed to list overload pay: %w", err)
	}
	defer rows.Close()

	var records []payroll.OverloadPayRecord
	for rows.Next() {
		var rec payroll.OverloadPayRecord
		if err := rows.Scan(&rec.ID, &rec.EmployeeID, &rec.Amount, &rec.Reason, &rec.GrantedAt); err != nil {
			return nil, fmt.Errorf("failed to scan overload pay record: %w", err)
		}
		records = append(records, rec)
	}

	return records, nil
}

func (r *payrollRepository) GetSummary(ctx context.Context, period payroll.Period) (payroll.PayrollSummaryResponse, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT
			COUNT(*) as employee_count,
			COALESCE(SUM(basic_salary + overtime), 0) as total_gross_pay,
			COALESCE(SUM(deductions), 0) as total_deductions,
			COALESCE(SUM(net_pay), 0) as total_net_pay,
			COUNT(*) FILTER (WHERE status = 'pending') as pending_count,
			COUNT(*) FILTER (WHERE status = 'released') as released_count,
			COUNT(*) FILTER (WHERE status = 'archived') as archived_count
		FROM payroll_entries
		WHERE period_start = $1 AND period_end = $2
	`

	var summary payroll.PayrollSummaryResponse
	err := q.QueryRow(ctx, query, period.Start, period.End).Scan(
		&summary.EmployeeCount, &summary.TotalGrossPay, &summary.TotalDeductions,
		&summary.TotalNetPay, &summary.PendingCount, &summary.ReleasedCount, &summary.ArchivedCount,
	)
	if err != nil {
		return payroll.PayrollSummaryResponse{}, fmt.Errorf("failed to get payroll summary: %w", err)
	}

	summary.Period = period.Key()

	return summary, nil
}
