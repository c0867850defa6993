package notification

import (
	"time"
)

// NotificationType represents the type of notification
type NotificationType string

const (
	TypePayrollGenerated NotificationType = "payroll_generated"
	TypePayrollReleased  NotificationType = "payroll_released"
	TypeLoanApproved     NotificationType = "loan_approved"
	TypeLoanRejected     NotificationType = "loan_rejected"
	TypeLoanCompleted    NotificationType = "loan_completed"
	TypeDeductionApplied NotificationType = "deduction_applied"
)

// AllNotificationTypes returns all available notification types
func AllNotificationTypes() []NotificationType {
	return []NotificationType{
		TypePayrollGenerated,
		TypePayrollReleased,
		TypeLoanApproved,
		TypeLoanRejected,
		TypeLoanCompleted,
		TypeDeductionApplied,
	}
}

// Notification is one persisted, recipient-keyed log row with an explicit
// created -> read lifecycle. Nothing lives in process memory; a restart
// loses nothing.
type Notification struct {
	ID          string
	RecipientID string
	Type        NotificationType
	Title       string
	Message     string
	Data        map[string]interface{}
	IsRead      bool
	ReadAt      *time.Time
	CreatedAt   time.Time
}
