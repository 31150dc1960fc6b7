package leave

import (
	"context"
	"time"
)

type LeaveRequestRepository interface {
	// ListByCompanyMonth returns requests of any status dated within the month.
	ListByCompanyMonth(ctx context.Context, companyID string, year int, month time.Month) ([]LeaveRequest, error)
}
