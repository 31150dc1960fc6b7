package leave

import (
	"strings"
	"time"
)

// LeaveRequest is a single-day leave application. Multi-day leave is stored
// as one row per day.
type LeaveRequest struct {
	ID         string
	EmployeeID string
	CompanyID  string
	Date       time.Time
	LeaveType  string // free text, e.g. "Annual", "Medical", "Unpaid Leave"
	Status     LeaveRequestStatus
	Reason     *string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type LeaveRequestStatus string

const (
	LeaveRequestStatusPending  LeaveRequestStatus = "Pending"
	LeaveRequestStatusApproved LeaveRequestStatus = "Approved"
	LeaveRequestStatusRejected LeaveRequestStatus = "Rejected"
)

// IsApproved reports whether the request affects pay.
func (l LeaveRequest) IsApproved() bool {
	return l.Status == LeaveRequestStatusApproved
}

// IsUnpaid matches the substring "Unpaid" anywhere in the leave type.
func (l LeaveRequest) IsUnpaid() bool {
	return strings.Contains(l.LeaveType, "Unpaid")
}
