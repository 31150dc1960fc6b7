package attendance

import (
	"context"
	"time"
)

// AttendanceRepository defines data access methods for attendance records.
// All methods include companyID parameter to prevent cross-company data access attacks.
type AttendanceRepository interface {
	// ListByCompanyMonth returns every record dated within the given month.
	ListByCompanyMonth(ctx context.Context, companyID string, year int, month time.Month) ([]Attendance, error)
}
