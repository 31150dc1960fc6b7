package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/sme-hris/payroll-backend-go/internal/domain/attendance"
	"github.com/sme-hris/payroll-backend-go/internal/pkg/database"
)

type attendanceRepositoryImpl struct {
	db *database.DB
}

func NewAttendanceRepository(db *database.DB) attendance.AttendanceRepository {
	return &attendanceRepositoryImpl{db: db}
}

// ListByCompanyMonth implements attendance.AttendanceRepository.
func (r *attendanceRepositoryImpl) ListByCompanyMonth(ctx context.Context, companyID string, year int, month time.Month) ([]attendance.Attendance, error) {
	q := GetQuerier(ctx, r.db)
	start, end := monthRange(year, month)

	query := `
		SELECT id, employee_id, company_id, date, status, late_minutes, overtime_minutes,
			created_at, updated_at
		FROM attendances
		WHERE company_id = $1 AND date >= $2 AND date < $3
		ORDER BY date, created_at, id
	`

	rows, err := q.Query(ctx, query, companyID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance: %w", err)
	}
	defer rows.Close()

	var records []attendance.Attendance
	for rows.Next() {
		var a attendance.Attendance
		if err := rows.Scan(
			&a.ID, &a.EmployeeID, &a.CompanyID, &a.Date, &a.Status, &a.LateMinutes, &a.OvertimeMinutes,
			&a.CreatedAt, &a.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan attendance: %w", err)
		}
		records = append(records, a)
	}

	return records, rows.Err()
}
