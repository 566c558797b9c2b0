package events

import "time"

const LeaveLifecycleTopic = "hr.leave.lifecycle.v1"

const (
	LeaveSubmittedEventType = "leave_request_submitted"
	LeaveApprovedEventType  = "leave_request_approved"
	LeaveRejectedEventType  = "leave_request_rejected"
)

// LeaveLifecycleEvent is the durable record of a request transition,
// published to Kafka through the outbox. RequestID here is the HTTP
// trace id; LeaveRequestID is the domain id (REQ-...).
type LeaveLifecycleEvent struct {
	EventType      string    `json:"event_type"`
	RequestID      string    `json:"request_id"`
	LeaveRequestID string    `json:"leave_request_id"`
	EmployeeID     string    `json:"employee_id"`
	AbsenceType    string    `json:"absence_type"`
	Status         string    `json:"status"`
	OccurredAt     time.Time `json:"occurred_at"`
}
