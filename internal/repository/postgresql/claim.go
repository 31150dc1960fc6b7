package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/sme-hris/payroll-backend-go/internal/domain/claim"
	"github.com/sme-hris/payroll-backend-go/internal/pkg/database"
)

type claimRepositoryImpl struct {
	db *database.DB
}

func NewClaimRepository(db *database.DB) claim.ClaimRepository {
	return &claimRepositoryImpl{db: db}
}

// ListByCompanyMonth implements claim.ClaimRepository.
func (r *claimRepositoryImpl) ListByCompanyMonth(ctx context.Context, companyID string, year int, month time.Month) ([]claim.Claim, error) {
	q := GetQuerier(ctx, r.db)
	start, end := monthRange(year, month)

	query := `
		SELECT id, employee_id, company_id, type, details, amount, status, date, created_at, updated_at
		FROM general_requests
		WHERE company_id = $1 AND date >= $2 AND date < $3
		ORDER BY date, created_at, id
	`

	rows, err := q.Query(ctx, query, companyID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to list claims: %w", err)
	}
	defer rows.Close()

	var claims []claim.Claim
	for rows.Next() {
		var c claim.Claim
		if err := rows.Scan(
			&c.ID, &c.EmployeeID, &c.CompanyID, &c.Type, &c.Details, &c.Amount, &c.Status, &c.Date,
			&c.CreatedAt, &c.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan claim: %w", err)
		}
		claims = append(claims, c)
	}

	return claims, rows.Err()
}
