package leave

import (
	"time"

	"github.com/google/uuid"
)

const (
	StatusPending  = "Pending"
	StatusApproved = "Approved"
	StatusRejected = "Rejected"
)

const (
	TypeVacation     = "Vacation"
	TypeSickness     = "Sickness"
	TypeErrand       = "Errand"
	TypeRemoteWork   = "RemoteWork"
	TypeSpecialLeave = "SpecialLeave"
)

// AbsenceTypes lists every accepted absence type, in form order.
var AbsenceTypes = []string{
	TypeVacation,
	TypeSickness,
	TypeErrand,
	TypeRemoteWork,
	TypeSpecialLeave,
}

// LeaveRequest is one row of the requests sheet. RequestID is the
// human-facing token (REQ-1001, REQ-1002, ...). EmployeeName is a
// display cache copied from the employee record at submission; the
// join key is always EmployeeID.
type LeaveRequest struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	RequestID string    `gorm:"type:varchar(20);not null;uniqueIndex"`

	EmployeeID   string `gorm:"type:varchar(30);not null;index:idx_leave_requests_employee"`
	EmployeeName string `gorm:"type:varchar(120);not null"`

	AbsenceType string    `gorm:"type:varchar(20);not null"`
	StartDate   time.Time `gorm:"type:date;not null"`
	EndDate     time.Time `gorm:"type:date;not null"`

	// ChargeableDays is computed once at submission and never
	// recomputed; it is the only quantity a later approval debits.
	ChargeableDays int `gorm:"type:int;not null"`

	SubstituteName string `gorm:"type:varchar(120);not null;default:'none'"`
	Comment        string `gorm:"type:text"`

	Status     string     `gorm:"type:varchar(10);not null;default:'Pending';index:idx_leave_requests_status"`
	ApprovedBy *string    `gorm:"type:varchar(120)"`
	ApprovedAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (LeaveRequest) TableName() string { return "leave_requests" }

// IsValidAbsenceType reports whether t is one of the enumerated types.
func IsValidAbsenceType(t string) bool {
	for _, known := range AbsenceTypes {
		if t == known {
			return true
		}
	}
	return false
}

// IsBalanceChecked reports whether an absence type is charged against
// the remaining balance. Only vacation is; every other type is
// approvable regardless of balance.
func IsBalanceChecked(absenceType string) bool {
	return absenceType == TypeVacation
}

// CanTransition encodes the lifecycle: Pending may move to Approved or
// Rejected exactly once; both of those are terminal.
func CanTransition(from, to string) bool {
	if from != StatusPending {
		return false
	}
	return to == StatusApproved || to == StatusRejected
}
