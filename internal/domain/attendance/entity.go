package attendance

import (
	"time"
)

// Attendance is one employee's record for one calendar day.
type Attendance struct {
	ID              string
	EmployeeID      string
	CompanyID       string
	Date            time.Time
	Status          Status
	LateMinutes     *int
	OvertimeMinutes *int
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type Status string

const (
	StatusPresent Status = "Present"
	StatusLate    Status = "Late"
	StatusAbsent  Status = "Absent"
	StatusLeave   Status = "Leave"
	StatusRestDay Status = "Rest Day"
)

// Late returns the recorded lateness in minutes, zero when absent.
func (a Attendance) Late() int {
	if a.LateMinutes == nil {
		return 0
	}
	return *a.LateMinutes
}

// Overtime returns the recorded overtime in minutes, zero when absent.
func (a Attendance) Overtime() int {
	if a.OvertimeMinutes == nil {
		return 0
	}
	return *a.OvertimeMinutes
}
