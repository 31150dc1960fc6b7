package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/sme-hris/payroll-backend-go/internal/domain/payroll"
	"github.com/sme-hris/payroll-backend-go/internal/pkg/database"
)

type payrollRepository struct {
	db *database.DB
}

func NewPayrollSettingsRepository(db *database.DB) payroll.SettingsRepository {
	return &payrollRepository{db: db}
}

const payrollSettingsColumns = `
	id, company_id, transport_allowance, phone_allowance, meal_allowance,
	epf_employee_rate, epf_employer_rate, socso_employee_rate, eis_employee_rate,
	created_at, updated_at`

func scanPayrollSettings(row pgx.Row) (payroll.PayrollSettings, error) {
	var s payroll.PayrollSettings
	err := row.Scan(
		&s.ID, &s.CompanyID, &s.TransportAllowance, &s.PhoneAllowance, &s.MealAllowance,
		&s.StatutoryRates.EPFEmployee, &s.StatutoryRates.EPFEmployer,
		&s.StatutoryRates.SOCSOEmployee, &s.StatutoryRates.EISEmployee,
		&s.CreatedAt, &s.UpdatedAt,
	)
	return s, err
}

func (r *payrollRepository) GetSettings(ctx context.Context, companyID string) (payroll.PayrollSettings, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + payrollSettingsColumns + `
		FROM payroll_settings
		WHERE company_id = $1
	`

	s, err := scanPayrollSettings(q.QueryRow(ctx, query, companyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.PayrollSettings{}, payroll.ErrPayrollSettingsNotFound
		}
		return payroll.PayrollSettings{}, fmt.Errorf("failed to get payroll settings: %w", err)
	}

	return s, nil
}

func (r *payrollRepository) UpsertSettings(ctx context.Context, settings payroll.PayrollSettings) (payroll.PayrollSettings, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO payroll_settings (
			company_id, transport_allowance, phone_allowance, meal_allowance,
			epf_employee_rate, epf_employer_rate, socso_employee_rate, eis_employee_rate
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (company_id) DO UPDATE SET
			transport_allowance = EXCLUDED.transport_allowance,
			phone_allowance = EXCLUDED.phone_allowance,
			meal_allowance = EXCLUDED.meal_allowance,
			epf_employee_rate = EXCLUDED.epf_employee_rate,
			epf_employer_rate = EXCLUDED.epf_employer_rate,
			socso_employee_rate = EXCLUDED.socso_employee_rate,
			eis_employee_rate = EXCLUDED.eis_employee_rate,
			updated_at = NOW()
		RETURNING ` + payrollSettingsColumns

	rates := settings.StatutoryRates
	s, err := scanPayrollSettings(q.QueryRow(ctx, query,
		settings.CompanyID, settings.TransportAllowance, settings.PhoneAllowance, settings.MealAllowance,
		rates.EPFEmployee, rates.EPFEmployer, rates.SOCSOEmployee, rates.EISEmployee,
	))
	if err != nil {
		return payroll.PayrollSettings{}, fmt.Errorf("failed to upsert payroll settings: %w", err)
	}

	return s, nil
}

func (r *payrollRepository) ListCompanyIDs(ctx context.Context) ([]string, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `SELECT company_id FROM payroll_settings ORDER BY company_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list payroll companies: %w", err)
	}

	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("failed to scan payroll companies: %w", err)
	}
	return ids, nil
}
