package entity

import "time"

type LeaveStatus string

const (
	LeaveStatusPending   LeaveStatus = "PENDING"
	LeaveStatusApproved  LeaveStatus = "APPROVED"
	LeaveStatusRejected  LeaveStatus = "REJECTED"
	LeaveStatusCancelled LeaveStatus = "CANCELLED"
)

func (s LeaveStatus) Valid() bool {
	switch s {
	case LeaveStatusPending, LeaveStatusApproved, LeaveStatusRejected, LeaveStatusCancelled:
		return true
	}

	return false
}

// Terminal reports whether no further transition is allowed.
func (s LeaveStatus) Terminal() bool {
	return s != LeaveStatusPending
}

type LeaveRequest struct {
	ID           int64       `json:"id" db:"id"`
	EmployeeID   int64       `json:"employee_id" db:"employee_id"`
	StartDate    Date        `json:"start_date" db:"start_date"`
	EndDate      Date        `json:"end_date" db:"end_date"`
	Reason       string      `json:"reason" db:"reason"`
	Status       LeaveStatus `json:"status" db:"status"`
	AdminRemarks string      `json:"admin_remarks,omitempty" db:"admin_remarks"`
	ActionedByID *int64      `json:"actioned_by_id,omitempty" db:"actioned_by_id"`
	CreatedAt    time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at" db:"updated_at"`

	// Read-only, filled by joins.
	EmployeeName   string `json:"employee_name,omitempty" db:"employee_name"`
	EmployeeEmail  string `json:"employee_email,omitempty" db:"employee_email"`
	ActionedByName string `json:"actioned_by_name,omitempty" db:"actioned_by_name"`
}

type LeaveApplication struct {
	EmployeeID int64  `json:"employee_id"`
	StartDate  *Date  `json:"start_date"`
	EndDate    *Date  `json:"end_date"`
	Reason     string `json:"reason"`
}

type LeaveAction struct {
	NewStatus    LeaveStatus `json:"new_status"`
	AdminRemarks string      `json:"admin_remarks"`
}
