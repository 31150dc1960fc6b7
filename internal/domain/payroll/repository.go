package payroll

import "context"

// SettingsRepository persists per-company payroll settings.
// GetSettings returns ErrPayrollSettingsNotFound when nothing is saved.
type SettingsRepository interface {
	GetSettings(ctx context.Context, companyID string) (PayrollSettings, error)
	UpsertSettings(ctx context.Context, settings PayrollSettings) (PayrollSettings, error)
	ListCompanyIDs(ctx context.Context) ([]string, error)
}

// Transactor runs fn inside a database transaction. Repositories called
// with the ctx handed to fn join that transaction.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
