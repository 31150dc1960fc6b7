package payroll

import (
	"context"
	"io"
)

type PayrollService interface {
	// Settings
	GetSettings(ctx context.Context, companyID string) (PayrollSettingsResponse, error)
	UpdateSettings(ctx context.Context, companyID string, req UpdatePayrollSettingsRequest) (PayrollSettingsResponse, error)

	// Payroll runs are recomputed on every call and never stored.
	GeneratePayroll(ctx context.Context, companyID string, period Period) (PayrollRun, error)
	GetPayrollSummary(ctx context.Context, companyID string, period Period) (PayrollSummaryResponse, error)

	// Tax
	CalculatePCB(ctx context.Context, req CalculatePCBRequest) (CalculatePCBResponse, error)

	// Documents
	RenderPayslip(ctx context.Context, companyID string, period Period, employeeID string, w io.Writer) error
	ExportStatutory(ctx context.Context, companyID string, period Period, kind ExportKind, w io.Writer) error
}
