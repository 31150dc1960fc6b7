package claim

import (
	"context"
	"time"
)

type ClaimRepository interface {
	// ListByCompanyMonth returns general requests of every type and status
	// dated within the month.
	ListByCompanyMonth(ctx context.Context, companyID string, year int, month time.Month) ([]Claim, error)
}
