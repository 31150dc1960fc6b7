package postgresql_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sme-hris/payroll-backend-go/internal/pkg/database"
)

// TestDatabaseSetup holds a connection to a scratch database.
type TestDatabaseSetup struct {
	DB *database.DB
}

// NewTestDatabase connects to TEST_DATABASE_URL and applies the schema.
// It returns nil without error when the variable is not set.
func NewTestDatabase(ctx context.Context) (*TestDatabaseSetup, error) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		return nil, nil
	}

	db, err := database.NewPostgreSQLDB(ctx, dsn, database.PoolConfig{MaxConns: 4})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to test database: %w", err)
	}

	schema, err := os.ReadFile(migrationPath())
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to read schema: %w", err)
	}
	if _, err := db.Exec(ctx, string(schema)); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &TestDatabaseSetup{DB: db}, nil
}

func migrationPath() string {
	_, file, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(file), "..", "..", "..", "..", "migrations", "001_payroll.sql")
}

// DeleteCompany removes every row owned by a test company.
func (t *TestDatabaseSetup) DeleteCompany(ctx context.Context, companyID string) error {
	for _, table := range []string{"general_requests", "leave_requests", "attendances", "employees", "payroll_settings"} {
		if _, err := t.DB.Exec(ctx, fmt.Sprintf("DELETE FROM %s WHERE company_id = $1", table), companyID); err != nil {
			return fmt.Errorf("failed to clean table %s: %w", table, err)
		}
	}
	return nil
}

func (t *TestDatabaseSetup) InsertEmployee(ctx context.Context, companyID, code, status string, salary *decimal.Decimal) (string, error) {
	id := uuid.NewString()
	_, err := t.DB.Exec(ctx, `
		INSERT INTO employees (id, company_id, employee_code, full_name, hire_date, employment_type, employment_status, base_salary)
		VALUES ($1, $2, $3, $4, $5, 'Permanent', $6, $7)
	`, id, companyID, code, "Employee "+code, time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC), status, salary)
	return id, err
}

// Close closes the pool.
func (t *TestDatabaseSetup) Close() {
	t.DB.Close()
}
