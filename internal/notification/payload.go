package notification

import (
	"time"

	"github.com/Nahue18R/sistema-vacaciones/internal/calendar"
)

// Kind selects which webhook endpoint receives the event.
type Kind string

const (
	KindSubmitted Kind = "submitted"
	KindApproved  Kind = "approved"
)

// Event is the webhook payload. The field set and the DD/MM/YYYY date
// format are a stable contract with the downstream automation flows;
// do not rename fields without coordinating with that side.
type Event struct {
	EmployeeID    string `json:"employee_id"`
	EmployeeName  string `json:"employee_name"`
	AbsenceType   string `json:"absence_type"`
	StartDate     string `json:"start_date"`
	EndDate       string `json:"end_date"`
	ReturnDate    string `json:"return_date"`
	DaysCharged   int    `json:"days_charged"`
	RemainingDays int    `json:"remaining_days"`
	ApproverEmail string `json:"approver_email"`
}

// NewEvent formats the dates for the wire. remainingDays is the balance
// after this event from the caller's point of view: advisory (not yet
// persisted) on submission, post-debit on approval.
func NewEvent(
	employeeID, employeeName, absenceType string,
	start, end time.Time,
	daysCharged, remainingDays int,
	approverEmail string,
) Event {
	return Event{
		EmployeeID:    employeeID,
		EmployeeName:  employeeName,
		AbsenceType:   absenceType,
		StartDate:     calendar.FormatDisplay(start),
		EndDate:       calendar.FormatDisplay(end),
		ReturnDate:    calendar.FormatDisplay(calendar.ReturnDate(end)),
		DaysCharged:   daysCharged,
		RemainingDays: remainingDays,
		ApproverEmail: approverEmail,
	}
}
