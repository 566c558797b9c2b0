package leave

type SubmitLeaveRequest struct {
	EmployeeID  string `json:"employee_id" binding:"required"`
	AbsenceType string `json:"absence_type" binding:"required,oneof=Vacation Sickness Errand RemoteWork SpecialLeave"`
	StartDate   string `json:"start_date" binding:"required"`
	EndDate     string `json:"end_date" binding:"required"`
	Substitute  string `json:"substitute"`
	Comment     string `json:"comment"`
}

type LeaveResponse struct {
	RequestID      string  `json:"request_id"`
	EmployeeID     string  `json:"employee_id"`
	EmployeeName   string  `json:"employee_name"`
	AbsenceType    string  `json:"absence_type"`
	StartDate      string  `json:"start_date"`
	EndDate        string  `json:"end_date"`
	ChargeableDays int     `json:"chargeable_days"`
	Substitute     string  `json:"substitute"`
	Comment        string  `json:"comment,omitempty"`
	Status         string  `json:"status"`
	ApprovedBy     *string `json:"approved_by,omitempty"`
	ApprovedAt     *string `json:"approved_at,omitempty"`
}

// CalendarEvent feeds the team timeline view. End is exclusive, so a
// request is rendered through its last day inclusive.
type CalendarEvent struct {
	Title string `json:"title"`
	Start string `json:"start"`
	End   string `json:"end"`
	Color string `json:"color"`
}
