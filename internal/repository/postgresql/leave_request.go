package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/sme-hris/payroll-backend-go/internal/domain/leave"
	"github.com/sme-hris/payroll-backend-go/internal/pkg/database"
)

type leaveRequestRepositoryImpl struct {
	db *database.DB
}

func NewLeaveRequestRepository(db *database.DB) leave.LeaveRequestRepository {
	return &leaveRequestRepositoryImpl{db: db}
}

// ListByCompanyMonth implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) ListByCompanyMonth(ctx context.Context, companyID string, year int, month time.Month) ([]leave.LeaveRequest, error) {
	q := GetQuerier(ctx, r.db)
	start, end := monthRange(year, month)

	query := `
		SELECT id, employee_id, company_id, date, leave_type, status, reason, created_at, updated_at
		FROM leave_requests
		WHERE company_id = $1 AND date >= $2 AND date < $3
		ORDER BY date, created_at, id
	`

	rows, err := q.Query(ctx, query, companyID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to list leave requests: %w", err)
	}
	defer rows.Close()

	var requests []leave.LeaveRequest
	for rows.Next() {
		var l leave.LeaveRequest
		if err := rows.Scan(
			&l.ID, &l.EmployeeID, &l.CompanyID, &l.Date, &l.LeaveType, &l.Status, &l.Reason,
			&l.CreatedAt, &l.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan leave request: %w", err)
		}
		requests = append(requests, l)
	}

	return requests, rows.Err()
}
