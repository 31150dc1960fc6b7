package payroll

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sme-hris/payroll-backend-go/internal/domain/attendance"
	"github.com/sme-hris/payroll-backend-go/internal/domain/claim"
	"github.com/sme-hris/payroll-backend-go/internal/domain/employee"
	"github.com/sme-hris/payroll-backend-go/internal/domain/leave"
	"github.com/sme-hris/payroll-backend-go/internal/domain/payroll"
	"github.com/sme-hris/payroll-backend-go/internal/pkg/validator"
)

const companyID = "company-1"

var june2024 = payroll.Period{Year: 2024, Month: time.June}

func dec(v string) decimal.Decimal { return decimal.RequireFromString(v) }

func decPtr(v string) *decimal.Decimal {
	d := dec(v)
	return &d
}

func strPtr(v string) *string { return &v }

func assertAmount(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, dec(want).Equal(got), "want %s, got %s", want, got.String())
}

func newEmployee(id, code, salary string, typ employee.EmploymentType, status employee.EmploymentStatus) employee.Employee {
	return employee.Employee{
		ID:               id,
		CompanyID:        companyID,
		EmployeeCode:     code,
		FullName:         "Employee " + code,
		ICNumber:         "900101-14-5678",
		EPFNumber:        strPtr("EPF-" + code),
		SOCSONumber:      strPtr("SOCSO-" + code),
		TaxNumber:        strPtr("SG-" + code),
		EmploymentType:   typ,
		EmploymentStatus: status,
		BaseSalary:       decPtr(salary),
	}
}

type fixture struct {
	settings   *fakeSettingsRepo
	employees  *fakeEmployeeRepo
	attendance *fakeAttendanceRepo
	leaves     *fakeLeaveRepo
	claims     *fakeClaimRepo
	clock      *clockwork.FakeClock
}

func newFixture(list ...employee.Employee) *fixture {
	byID := make(map[string]employee.Employee, len(list))
	for _, e := range list {
		byID[e.ID] = e
	}
	return &fixture{
		settings: &fakeSettingsRepo{},
		employees: &fakeEmployeeRepo{
			listFn: func(ctx context.Context, cid string) ([]employee.Employee, error) {
				return list, nil
			},
			getByIDFn: func(ctx context.Context, id, cid string) (employee.Employee, error) {
				e, ok := byID[id]
				if !ok || cid != companyID {
					return employee.Employee{}, employee.ErrEmployeeNotFound
				}
				return e, nil
			},
		},
		attendance: &fakeAttendanceRepo{},
		leaves:     &fakeLeaveRepo{},
		claims:     &fakeClaimRepo{},
		clock:      clockwork.NewFakeClockAt(time.Date(2024, time.June, 10, 9, 0, 0, 0, time.UTC)),
	}
}

func (f *fixture) service(opts Options) *PayrollServiceImpl {
	opts.Clock = f.clock
	opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewPayrollService(f.settings, f.employees, f.attendance, f.leaves, f.claims, opts)
}

func TestGeneratePayroll_ActiveEmployeesOnly(t *testing.T) {
	f := newFixture(
		newEmployee("e1", "0001", "3500", employee.EmploymentTypePermanent, employee.EmploymentStatusActive),
		newEmployee("e2", "0002", "4200", employee.EmploymentTypePermanent, employee.EmploymentStatusResigned),
		newEmployee("e3", "0003", "2000", employee.EmploymentTypeContract, employee.EmploymentStatusActive),
		newEmployee("e4", "0004", "5000", employee.EmploymentTypeIntern, employee.EmploymentStatusTerminated),
	)
	svc := f.service(Options{})

	run, err := svc.GeneratePayroll(context.Background(), companyID, june2024)
	require.NoError(t, err)

	require.Len(t, run.Entries, 2)
	assert.Equal(t, "e1", run.Entries[0].EmployeeID)
	assert.Equal(t, "e3", run.Entries[1].EmployeeID)
	for _, e := range run.Entries {
		assert.NotEqual(t, "e2", e.EmployeeID)
		assert.NotEqual(t, "e4", e.EmployeeID)
	}

	assertAmount(t, "3055.5", run.Entries[0].NetSalary)
	assertAmount(t, "2000", run.Entries[1].NetSalary)
	assertAmount(t, "0", run.Entries[1].EPF)

	id, err := uuid.Parse(run.RunID)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), id.Version())
	assert.Equal(t, f.clock.Now(), run.GeneratedAt)
	assert.Equal(t, "MY-YA2023", run.TaxTable)
	assert.Equal(t, companyID, run.CompanyID)
}

func TestGeneratePayroll_ForeignWorkerWithPassport(t *testing.T) {
	foreign := newEmployee("e2", "0002", "2800", employee.EmploymentTypeContract, employee.EmploymentStatusActive)
	foreign.ICNumber = "A12345678"
	f := newFixture(
		newEmployee("e1", "0001", "3500", employee.EmploymentTypePermanent, employee.EmploymentStatusActive),
		foreign,
	)
	svc := f.service(Options{})

	run, err := svc.GeneratePayroll(context.Background(), companyID, june2024)
	require.NoError(t, err)
	require.Len(t, run.Entries, 2)
	assert.Equal(t, "e2", run.Entries[1].EmployeeID)
	assertAmount(t, "2800", run.Entries[1].GrossPay)

	var buf bytes.Buffer
	require.NoError(t, svc.ExportStatutory(context.Background(), companyID, june2024, payroll.ExportEPF, &buf))
	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "A12345678", records[2][2])
}

func TestGeneratePayroll_PreservesOrderUnderConcurrency(t *testing.T) {
	var list []employee.Employee
	for i := 0; i < 40; i++ {
		salary := fmt.Sprintf("%d", 2000+i*100)
		list = append(list, newEmployee(fmt.Sprintf("e%02d", i), fmt.Sprintf("%04d", i), salary, employee.EmploymentTypePermanent, employee.EmploymentStatusActive))
	}
	f := newFixture(list...)
	svc := f.service(Options{Workers: 3})

	run, err := svc.GeneratePayroll(context.Background(), companyID, june2024)
	require.NoError(t, err)
	require.Len(t, run.Entries, len(list))
	for i, e := range run.Entries {
		assert.Equal(t, list[i].ID, e.EmployeeID)
		assert.True(t, list[i].BaseSalary.Equal(e.BasicSalary))
		assert.True(t, e.NetSalary.Equal(e.GrossPay.Sub(e.TotalStatutory())))
	}
}

func TestGeneratePayroll_UsesMonthRecords(t *testing.T) {
	f := newFixture(newEmployee("e1", "0001", "3500", employee.EmploymentTypePermanent, employee.EmploymentStatusActive))
	f.settings.getFn = func(ctx context.Context, cid string) (payroll.PayrollSettings, error) {
		s := payroll.DefaultSettings(cid)
		s.TransportAllowance = dec("100")
		return s, nil
	}
	f.attendance.listFn = func(ctx context.Context, cid string, year int, month time.Month) ([]attendance.Attendance, error) {
		assert.Equal(t, 2024, year)
		assert.Equal(t, time.June, month)
		ot := 120
		return []attendance.Attendance{
			{EmployeeID: "e1", Date: june2024.Date(3), Status: attendance.StatusPresent, OvertimeMinutes: &ot},
		}, nil
	}
	f.leaves.listFn = func(ctx context.Context, cid string, year int, month time.Month) ([]leave.LeaveRequest, error) {
		return []leave.LeaveRequest{
			{EmployeeID: "e1", Date: june2024.Date(4), LeaveType: "Unpaid Leave", Status: leave.LeaveRequestStatusApproved},
		}, nil
	}
	f.claims.listFn = func(ctx context.Context, cid string, year int, month time.Month) ([]claim.Claim, error) {
		return []claim.Claim{
			{EmployeeID: "e1", Type: claim.TypeClaim, Details: "Parking (RM 20)", Status: claim.StatusApproved, Date: june2024.Date(5)},
		}, nil
	}
	svc := f.service(Options{})

	run, err := svc.GeneratePayroll(context.Background(), companyID, june2024)
	require.NoError(t, err)
	require.Len(t, run.Entries, 1)

	e := run.Entries[0]
	assert.Equal(t, 1, e.DaysWorked)
	assert.Equal(t, 1, e.UnpaidLeaveDays)
	assertAmount(t, "20", e.ClaimsAmount)
	assertAmount(t, "120", e.Allowances)
	assert.Equal(t, "50.48", e.OvertimeAmount.StringFixed(2))
	assert.Equal(t, "134.62", e.UnpaidLeaveDeduction.StringFixed(2))
}

func TestGeneratePayroll_PaymentStatusFollowsClock(t *testing.T) {
	f := newFixture(newEmployee("e1", "0001", "3500", employee.EmploymentTypePermanent, employee.EmploymentStatusActive))
	svc := f.service(Options{})

	run, err := svc.GeneratePayroll(context.Background(), companyID, june2024)
	require.NoError(t, err)
	assert.Equal(t, payroll.PaymentStatusPending, run.Entries[0].PaymentStatus)

	f.clock.Advance(16 * 24 * time.Hour) // June 26
	run, err = svc.GeneratePayroll(context.Background(), companyID, june2024)
	require.NoError(t, err)
	assert.Equal(t, payroll.PaymentStatusPaid, run.Entries[0].PaymentStatus)
}

func TestGeneratePayroll_CoalescesConcurrentRequests(t *testing.T) {
	f := newFixture(newEmployee("e1", "0001", "3500", employee.EmploymentTypePermanent, employee.EmploymentStatusActive))
	list := f.employees.listFn

	var calls atomic.Int32
	entered := make(chan struct{})
	release := make(chan struct{})
	f.employees.listFn = func(ctx context.Context, cid string) ([]employee.Employee, error) {
		if calls.Add(1) == 1 {
			close(entered)
		}
		<-release
		return list(ctx, cid)
	}
	svc := f.service(Options{})

	runs := make([]payroll.PayrollRun, 2)
	var wg sync.WaitGroup
	for i := range runs {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			run, err := svc.GeneratePayroll(context.Background(), companyID, june2024)
			assert.NoError(t, err)
			runs[i] = run
		}()
		if i == 0 {
			<-entered
		}
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, runs[0].RunID, runs[1].RunID)

	// A later request computes a fresh run.
	next, err := svc.GeneratePayroll(context.Background(), companyID, june2024)
	require.NoError(t, err)
	assert.NotEqual(t, runs[0].RunID, next.RunID)
}

func TestGeneratePayroll_CancelledCallerDoesNotFailOthers(t *testing.T) {
	f := newFixture(newEmployee("e1", "0001", "3500", employee.EmploymentTypePermanent, employee.EmploymentStatusActive))
	list := f.employees.listFn

	entered := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	f.employees.listFn = func(ctx context.Context, cid string) ([]employee.Employee, error) {
		once.Do(func() { close(entered) })
		select {
		case <-release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		return list(ctx, cid)
	}
	svc := f.service(Options{})

	firstCtx, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := svc.GeneratePayroll(firstCtx, companyID, june2024)
		firstErr <- err
	}()
	<-entered

	type result struct {
		run payroll.PayrollRun
		err error
	}
	second := make(chan result, 1)
	go func() {
		run, err := svc.GeneratePayroll(context.Background(), companyID, june2024)
		second <- result{run, err}
	}()

	cancel()
	assert.ErrorIs(t, <-firstErr, context.Canceled)

	close(release)
	got := <-second
	require.NoError(t, got.err)
	require.Len(t, got.run.Entries, 1)
	assertAmount(t, "3055.5", got.run.Entries[0].NetSalary)
}

func TestGeneratePayroll_Errors(t *testing.T) {
	t.Run("invalid period", func(t *testing.T) {
		svc := newFixture().service(Options{})
		_, err := svc.GeneratePayroll(context.Background(), companyID, payroll.Period{Year: 2024, Month: 13})
		assert.ErrorIs(t, err, payroll.ErrInvalidPeriod)
	})

	t.Run("repository failure", func(t *testing.T) {
		f := newFixture()
		boom := errors.New("connection reset")
		f.claims.listFn = func(ctx context.Context, cid string, year int, month time.Month) ([]claim.Claim, error) {
			return nil, boom
		}
		_, err := f.service(Options{}).GeneratePayroll(context.Background(), companyID, june2024)
		assert.ErrorIs(t, err, boom)
	})

	t.Run("settings failure", func(t *testing.T) {
		f := newFixture()
		f.settings.getFn = func(ctx context.Context, cid string) (payroll.PayrollSettings, error) {
			return payroll.PayrollSettings{}, assert.AnError
		}
		_, err := f.service(Options{}).GeneratePayroll(context.Background(), companyID, june2024)
		assert.ErrorIs(t, err, assert.AnError)
	})

	t.Run("active employee without salary", func(t *testing.T) {
		emp := newEmployee("e1", "0001", "0", employee.EmploymentTypePermanent, employee.EmploymentStatusActive)
		emp.BaseSalary = nil
		_, err := newFixture(emp).service(Options{}).GeneratePayroll(context.Background(), companyID, june2024)
		assert.ErrorIs(t, err, payroll.ErrEmployeeHasNoBaseSalary)
		assert.Equal(t, 1, strings.Count(err.Error(), "employee e1"), err.Error())
	})

	t.Run("inactive employee without salary is ignored", func(t *testing.T) {
		emp := newEmployee("e1", "0001", "0", employee.EmploymentTypePermanent, employee.EmploymentStatusResigned)
		emp.BaseSalary = nil
		run, err := newFixture(emp).service(Options{}).GeneratePayroll(context.Background(), companyID, june2024)
		require.NoError(t, err)
		assert.Empty(t, run.Entries)
	})
}

func TestGeneratePayroll_HonorEPFSetting(t *testing.T) {
	f := newFixture(newEmployee("e1", "0001", "3500", employee.EmploymentTypePermanent, employee.EmploymentStatusActive))
	f.settings.getFn = func(ctx context.Context, cid string) (payroll.PayrollSettings, error) {
		s := payroll.DefaultSettings(cid)
		s.StatutoryRates.EPFEmployee = dec("12")
		return s, nil
	}

	run, err := f.service(Options{}).GeneratePayroll(context.Background(), companyID, june2024)
	require.NoError(t, err)
	assertAmount(t, "385", run.Entries[0].EPF)

	run, err = f.service(Options{HonorEPFSetting: true}).GeneratePayroll(context.Background(), companyID, june2024)
	require.NoError(t, err)
	assertAmount(t, "420", run.Entries[0].EPF)
}

func TestGetPayrollSummary(t *testing.T) {
	f := newFixture(
		newEmployee("e1", "0001", "3500", employee.EmploymentTypePermanent, employee.EmploymentStatusActive),
		newEmployee("e2", "0002", "2000", employee.EmploymentTypeContract, employee.EmploymentStatusActive),
	)

	summary, err := f.service(Options{}).GetPayrollSummary(context.Background(), companyID, june2024)
	require.NoError(t, err)

	assert.Equal(t, 2, summary.TotalEmployees)
	assertAmount(t, "5500", summary.TotalGrossSalary)
	assertAmount(t, "385", summary.TotalEPF)
	assertAmount(t, "35", summary.TotalPCB)
	assertAmount(t, "5055.5", summary.TotalNetSalary)
	assert.Equal(t, 2, summary.PendingCount)
}

func TestSettings(t *testing.T) {
	t.Run("defaults when nothing saved", func(t *testing.T) {
		resp, err := newFixture().service(Options{}).GetSettings(context.Background(), companyID)
		require.NoError(t, err)
		assert.Equal(t, companyID, resp.CompanyID)
		assertAmount(t, "11", resp.StatutoryRates.EPFEmployee)
		assertAmount(t, "0", resp.TransportAllowance)
	})

	t.Run("update merges onto current settings", func(t *testing.T) {
		f := newFixture()
		var saved payroll.PayrollSettings
		f.settings.upsertFn = func(ctx context.Context, s payroll.PayrollSettings) (payroll.PayrollSettings, error) {
			saved = s
			s.ID = "settings-1"
			return s, nil
		}

		resp, err := f.service(Options{}).UpdateSettings(context.Background(), companyID, payroll.UpdatePayrollSettingsRequest{
			MealAllowance: decPtr("80"),
		})
		require.NoError(t, err)
		assert.Equal(t, "settings-1", resp.ID)
		assertAmount(t, "80", resp.MealAllowance)
		assert.Equal(t, companyID, saved.CompanyID)
		assertAmount(t, "13", saved.StatutoryRates.EPFEmployer)
	})

	t.Run("update runs load and save in one transaction", func(t *testing.T) {
		f := newFixture()
		tx := &fakeTransactor{}
		var loadedInTx, savedInTx bool
		f.settings.getFn = func(ctx context.Context, cid string) (payroll.PayrollSettings, error) {
			loadedInTx = tx.active
			return payroll.DefaultSettings(cid), nil
		}
		f.settings.upsertFn = func(ctx context.Context, s payroll.PayrollSettings) (payroll.PayrollSettings, error) {
			savedInTx = tx.active
			return s, nil
		}

		_, err := f.service(Options{Transactor: tx}).UpdateSettings(context.Background(), companyID, payroll.UpdatePayrollSettingsRequest{
			MealAllowance: decPtr("80"),
		})
		require.NoError(t, err)
		assert.Equal(t, 1, tx.calls)
		assert.True(t, loadedInTx)
		assert.True(t, savedInTx)
	})

	t.Run("save failure is returned from the transaction", func(t *testing.T) {
		f := newFixture()
		tx := &fakeTransactor{}
		f.settings.upsertFn = func(ctx context.Context, s payroll.PayrollSettings) (payroll.PayrollSettings, error) {
			return payroll.PayrollSettings{}, assert.AnError
		}

		_, err := f.service(Options{Transactor: tx}).UpdateSettings(context.Background(), companyID, payroll.UpdatePayrollSettingsRequest{
			MealAllowance: decPtr("80"),
		})
		assert.ErrorIs(t, err, assert.AnError)
		assert.Equal(t, 1, tx.calls)
	})

	t.Run("invalid update is not saved", func(t *testing.T) {
		f := newFixture()
		f.settings.upsertFn = func(ctx context.Context, s payroll.PayrollSettings) (payroll.PayrollSettings, error) {
			t.Fatal("upsert must not be called")
			return s, nil
		}

		_, err := f.service(Options{}).UpdateSettings(context.Background(), companyID, payroll.UpdatePayrollSettingsRequest{
			PhoneAllowance: decPtr("-10"),
		})
		var verrs validator.ValidationErrors
		assert.ErrorAs(t, err, &verrs)
	})
}

func TestCalculatePCB(t *testing.T) {
	svc := newFixture().service(Options{})

	resp, err := svc.CalculatePCB(context.Background(), payroll.CalculatePCBRequest{
		MonthlyGross: decPtr("3500"),
		MonthlyEPF:   decPtr("385"),
	})
	require.NoError(t, err)
	assertAmount(t, "35", resp.MonthlyPCB)
	assertAmount(t, "29000", resp.ChargeableIncome)
	assert.Equal(t, "MY-YA2023", resp.TaxTable)

	_, err = svc.CalculatePCB(context.Background(), payroll.CalculatePCBRequest{})
	assert.Error(t, err)
}

func TestCalculatePCB_CustomTable(t *testing.T) {
	table, err := payroll.ParseTaxTable([]byte(`
version: FLAT-10
personal_relief: "0"
epf_relief_cap: "0"
threshold: "0"
brackets:
  - { floor: "0", base_tax: "0", rate: "0.10" }
`))
	require.NoError(t, err)

	svc := newFixture().service(Options{TaxTable: table})
	resp, err := svc.CalculatePCB(context.Background(), payroll.CalculatePCBRequest{MonthlyGross: decPtr("1000")})
	require.NoError(t, err)
	assertAmount(t, "100", resp.MonthlyPCB)
	assert.Equal(t, "FLAT-10", resp.TaxTable)
}

func TestRenderPayslip(t *testing.T) {
	f := newFixture(
		newEmployee("e1", "0001", "3500", employee.EmploymentTypePermanent, employee.EmploymentStatusActive),
		newEmployee("e2", "0002", "3500", employee.EmploymentTypePermanent, employee.EmploymentStatusResigned),
	)
	svc := f.service(Options{})

	var buf bytes.Buffer
	require.NoError(t, svc.RenderPayslip(context.Background(), companyID, june2024, "e1", &buf))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))

	err := svc.RenderPayslip(context.Background(), companyID, june2024, "e2", io.Discard)
	assert.ErrorIs(t, err, payroll.ErrEmployeeNotFound)

	err = svc.RenderPayslip(context.Background(), companyID, june2024, "missing", io.Discard)
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)

	err = svc.RenderPayslip(context.Background(), companyID, payroll.Period{Year: 2024}, "e1", io.Discard)
	assert.ErrorIs(t, err, payroll.ErrInvalidPeriod)
}

func TestExportStatutory(t *testing.T) {
	f := newFixture(
		newEmployee("e1", "0001", "3500", employee.EmploymentTypePermanent, employee.EmploymentStatusActive),
		newEmployee("e2", "0002", "2000", employee.EmploymentTypeContract, employee.EmploymentStatusActive),
		newEmployee("e3", "0003", "5000", employee.EmploymentTypePermanent, employee.EmploymentStatusResigned),
	)
	svc := f.service(Options{})

	cases := []struct {
		kind payroll.ExportKind
		want []string
	}{
		{payroll.ExportEPF, []string{"0001", "Employee 0001", "900101-14-5678", "EPF-0001", "3500.00", "385.00", "455.00"}},
		{payroll.ExportSOCSOEIS, []string{"0001", "Employee 0001", "900101-14-5678", "SOCSO-0001", "3500.00", "17.50", "7.00"}},
		{payroll.ExportPCB, []string{"0001", "Employee 0001", "900101-14-5678", "SG-0001", "3500.00", "385.00", "35.00"}},
	}
	for _, c := range cases {
		t.Run(string(c.kind), func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, svc.ExportStatutory(context.Background(), companyID, june2024, c.kind, &buf))

			records, err := csv.NewReader(&buf).ReadAll()
			require.NoError(t, err)
			require.Len(t, records, 2)
			assert.Equal(t, "employee_code", records[0][0])
			assert.Equal(t, c.want, records[1])
		})
	}

	err := svc.ExportStatutory(context.Background(), companyID, june2024, payroll.ExportKind("hrdf"), io.Discard)
	assert.ErrorIs(t, err, payroll.ErrUnknownExportKind)
}
