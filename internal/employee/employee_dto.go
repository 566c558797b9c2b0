package employee

type EmployeeResponse struct {
	EmployeeID    string `json:"employee_id"`
	FullName      string `json:"full_name"`
	HireDate      string `json:"hire_date,omitempty"`
	RemainingDays int    `json:"remaining_days"`
}

// EmployeeCardResponse is the dashboard card for one employee: balance,
// seniority and how many of their requests are still waiting.
type EmployeeCardResponse struct {
	EmployeeID      string `json:"employee_id"`
	FullName        string `json:"full_name"`
	RemainingDays   int    `json:"remaining_days"`
	Seniority       string `json:"seniority"`
	PendingRequests int64  `json:"pending_requests"`
}

// SubstituteOption is one entry of the substitute dropdown. The first
// option is always the "none" sentinel.
type SubstituteOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}
