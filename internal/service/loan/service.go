package loan

import (
	"context"
	"fmt"
	"time"

	"github.com/barangay-hris/payroll-backend-go/internal/domain/loan"
	"github.com/barangay-hris/payroll-backend-go/internal/domain/notification"
	"github.com/barangay-hris/payroll-backend-go/internal/pkg/database"
)

type LoanServiceImpl struct {
	db              *database.DB
	loanRepo        loan.LoanRepository
	notificationSvc notification.Service
}

func NewLoanService(
	db *database.DB,
	loanRepo loan.LoanRepository,
	notificationSvc notification.Service,
) loan.Service {
	return &LoanServiceImpl{
		db:              db,
		loanRepo:        loanRepo,
		notificationSvc: notificationSvc,
	}
}

func (s *LoanServiceImpl) Create(ctx context.Context, req loan.CreateLoanRequest) (loan.LoanResponse, error) {
	if err := req.Validate(); err != nil {
		return loan.LoanResponse{}, err
	}

	l := loan.Loan{
		EmployeeID:            req.EmployeeID,
		Amount:                req.Amount,
		Balance:               req.Amount,
		MonthlyPaymentPercent: req.MonthlyPaymentPercent,
		TermMonths:            req.TermMonths,
		Status:                loan.LoanStatusPending,
	}

	created, err := s.loanRepo.Create(ctx, l)
	if err != nil {
		return loan.LoanResponse{}, err
	}

	return mapLoanResponse(created), nil
}

func (s *LoanServiceImpl) Get(ctx context.Context, id string) (loan.LoanResponse, error) {
	l, err := s.loanRepo.GetByID(ctx, id)
	if err != nil {
		return loan.LoanResponse{}, err
	}
	return mapLoanResponse(l), nil
}

func (s *LoanServiceImpl) ListByEmployee(ctx context.Context, employeeID string, includeArchived bool) ([]loan.LoanResponse, error) {
	loans, err := s.loanRepo.ListByEmployee(ctx, employeeID, includeArchived)
	if err != nil {
		return nil, err
	}

	result := make([]loan.LoanResponse, 0, len(loans))
	for _, l := range loans {
		result = append(result, mapLoanResponse(l))
	}
	return result, nil
}

func (s *LoanServiceImpl) Approve(ctx context.Context, id string) (loan.LoanResponse, error) {
	l, err := s.transition(ctx, id, loan.LoanStatusActive)
	if err != nil {
		return loan.LoanResponse{}, err
	}

	s.notify(ctx, l, notification.TypeLoanApproved, "Loan approved",
		fmt.Sprintf("Your loan of %s has been approved.", l.Amount.StringFixed(2)))
	return mapLoanResponse(l), nil
}

func (s *LoanServiceImpl) Reject(ctx context.Context, id string) (loan.LoanResponse, error) {
	l, err := s.transition(ctx, id, loan.LoanStatusRejected)
	if err != nil {
		return loan.LoanResponse{}, err
	}

	s.notify(ctx, l, notification.TypeLoanRejected, "Loan rejected",
		fmt.Sprintf("Your loan request of %s has been rejected.", l.Amount.StringFixed(2)))
	return mapLoanResponse(l), nil
}

func (s *LoanServiceImpl) Archive(ctx context.Context, id string) error {
	l, err := s.loanRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if l.ArchivedAt != nil {
		return loan.ErrLoanAlreadyArchived
	}

	return s.loanRepo.Archive(ctx, id, time.Now())
}

// transition validates and applies a lifecycle change. Approving or
// rejecting anything but a pending loan fails without touching the row.
func (s *LoanServiceImpl) transition(ctx context.Context, id string, target loan.LoanStatus) (loan.Loan, error) {
	l, err := s.loanRepo.GetByID(ctx, id)
	if err != nil {
		return loan.Loan{}, err
	}

	if !l.CanTransitionTo(target) {
		if target == loan.LoanStatusActive || target == loan.LoanStatusRejected {
			return loan.Loan{}, fmt.Errorf("%w (current status: %s)", loan.ErrLoanNotPending, l.Status)
		}
		return loan.Loan{}, fmt.Errorf("%w: %s -> %s", loan.ErrIllegalLoanTransition, l.Status, target)
	}

	var startDate *time.Time
	if target == loan.LoanStatusActive {
		now := time.Now()
		startDate = &now
	}

	if err := s.loanRepo.UpdateStatus(ctx, id, target, startDate); err != nil {
		return loan.Loan{}, err
	}

	l.Status = target
	if startDate != nil {
		l.StartDate = startDate
	}
	return l, nil
}

func (s *LoanServiceImpl) notify(ctx context.Context, l loan.Loan, notifType notification.NotificationType, title, message string) {
	if s.notificationSvc == nil {
		return
	}
	// Notification failure never fails the loan operation.
	_ = s.notificationSvc.Notify(ctx, l.EmployeeID, notifType, title, message, map[string]interface{}{
		"loan_id": l.ID,
	})
}

func mapLoanResponse(l loan.Loan) loan.LoanResponse {
	resp := loan.LoanResponse{
		ID:                    l.ID,
		EmployeeID:            l.EmployeeID,
		Amount:                l.Amount,
		Balance:               l.Balance,
		MonthlyPaymentPercent: l.MonthlyPaymentPercent,
		TermMonths:            l.TermMonths,
		Status:                string(l.Status),
	}
	if l.StartDate != nil {
		str := l.StartDate.Format("2006-01-02")
		resp.StartDate = &str
	}
	if l.EndDate != nil {
		str := l.EndDate.Format("2006-01-02")
		resp.EndDate = &str
	}
	if l.ArchivedAt != nil {
		str := l.ArchivedAt.Format(time.RFC3339)
		resp.ArchivedAt = &str
	}
	return resp
}
