package payroll

import (
	"context"
	"time"

	"github.com/sme-hris/payroll-backend-go/internal/domain/attendance"
	"github.com/sme-hris/payroll-backend-go/internal/domain/claim"
	"github.com/sme-hris/payroll-backend-go/internal/domain/employee"
	"github.com/sme-hris/payroll-backend-go/internal/domain/leave"
	"github.com/sme-hris/payroll-backend-go/internal/domain/payroll"
)

type fakeSettingsRepo struct {
	getFn    func(ctx context.Context, companyID string) (payroll.PayrollSettings, error)
	upsertFn func(ctx context.Context, settings payroll.PayrollSettings) (payroll.PayrollSettings, error)
	listFn   func(ctx context.Context) ([]string, error)
}

func (f *fakeSettingsRepo) GetSettings(ctx context.Context, companyID string) (payroll.PayrollSettings, error) {
	if f.getFn == nil {
		return payroll.PayrollSettings{}, payroll.ErrPayrollSettingsNotFound
	}
	return f.getFn(ctx, companyID)
}

func (f *fakeSettingsRepo) UpsertSettings(ctx context.Context, settings payroll.PayrollSettings) (payroll.PayrollSettings, error) {
	return f.upsertFn(ctx, settings)
}

func (f *fakeSettingsRepo) ListCompanyIDs(ctx context.Context) ([]string, error) {
	if f.listFn == nil {
		return nil, nil
	}
	return f.listFn(ctx)
}

type fakeEmployeeRepo struct {
	getByIDFn func(ctx context.Context, id, companyID string) (employee.Employee, error)
	listFn    func(ctx context.Context, companyID string) ([]employee.Employee, error)
}

func (f *fakeEmployeeRepo) GetByID(ctx context.Context, id, companyID string) (employee.Employee, error) {
	return f.getByIDFn(ctx, id, companyID)
}

func (f *fakeEmployeeRepo) ListByCompanyID(ctx context.Context, companyID string) ([]employee.Employee, error) {
	return f.listFn(ctx, companyID)
}

type fakeAttendanceRepo struct {
	listFn func(ctx context.Context, companyID string, year int, month time.Month) ([]attendance.Attendance, error)
}

func (f *fakeAttendanceRepo) ListByCompanyMonth(ctx context.Context, companyID string, year int, month time.Month) ([]attendance.Attendance, error) {
	if f.listFn == nil {
		return nil, nil
	}
	return f.listFn(ctx, companyID, year, month)
}

type fakeLeaveRepo struct {
	listFn func(ctx context.Context, companyID string, year int, month time.Month) ([]leave.LeaveRequest, error)
}

func (f *fakeLeaveRepo) ListByCompanyMonth(ctx context.Context, companyID string, year int, month time.Month) ([]leave.LeaveRequest, error) {
	if f.listFn == nil {
		return nil, nil
	}
	return f.listFn(ctx, companyID, year, month)
}

type fakeClaimRepo struct {
	listFn func(ctx context.Context, companyID string, year int, month time.Month) ([]claim.Claim, error)
}

func (f *fakeClaimRepo) ListByCompanyMonth(ctx context.Context, companyID string, year int, month time.Month) ([]claim.Claim, error) {
	if f.listFn == nil {
		return nil, nil
	}
	return f.listFn(ctx, companyID, year, month)
}

type fakeTransactor struct {
	calls  int
	active bool
}

func (f *fakeTransactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	f.calls++
	f.active = true
	defer func() { f.active = false }()
	return fn(ctx)
}
