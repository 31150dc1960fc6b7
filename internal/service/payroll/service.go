package payroll

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/sme-hris/payroll-backend-go/internal/domain/attendance"
	"github.com/sme-hris/payroll-backend-go/internal/domain/claim"
	"github.com/sme-hris/payroll-backend-go/internal/domain/employee"
	"github.com/sme-hris/payroll-backend-go/internal/domain/leave"
	"github.com/sme-hris/payroll-backend-go/internal/domain/payroll"
)

// Options tunes how runs are computed. Zero values select defaults.
type Options struct {
	// Transactor wraps read-modify-write operations. Nil runs them
	// without a transaction.
	Transactor       payroll.Transactor
	TaxTable         *payroll.TaxTable
	Clock            clockwork.Clock
	Logger           *slog.Logger
	HonorEPFSetting  bool
	PaymentCutoffDay int
	Workers          int
}

type PayrollServiceImpl struct {
	settingsRepo   payroll.SettingsRepository
	employeeRepo   employee.EmployeeRepository
	attendanceRepo attendance.AttendanceRepository
	leaveRepo      leave.LeaveRequestRepository
	claimRepo      claim.ClaimRepository
	tx             payroll.Transactor

	taxTable        *payroll.TaxTable
	clock           clockwork.Clock
	logger          *slog.Logger
	honorEPFSetting bool
	cutoffDay       int
	workers         int

	runs *singleflight.Group
}

func NewPayrollService(
	settingsRepo payroll.SettingsRepository,
	employeeRepo employee.EmployeeRepository,
	attendanceRepo attendance.AttendanceRepository,
	leaveRepo leave.LeaveRequestRepository,
	claimRepo claim.ClaimRepository,
	opts Options,
) *PayrollServiceImpl {
	s := &PayrollServiceImpl{
		settingsRepo:    settingsRepo,
		employeeRepo:    employeeRepo,
		attendanceRepo:  attendanceRepo,
		leaveRepo:       leaveRepo,
		claimRepo:       claimRepo,
		tx:              opts.Transactor,
		taxTable:        opts.TaxTable,
		clock:           opts.Clock,
		logger:          opts.Logger,
		honorEPFSetting: opts.HonorEPFSetting,
		cutoffDay:       opts.PaymentCutoffDay,
		workers:         opts.Workers,
		runs:            &singleflight.Group{},
	}
	if s.tx == nil {
		s.tx = noTransaction{}
	}
	if s.taxTable == nil {
		s.taxTable = payroll.DefaultTaxTable()
	}
	if s.clock == nil {
		s.clock = clockwork.NewRealClock()
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.cutoffDay <= 0 {
		s.cutoffDay = payroll.DefaultPaymentCutoffDay
	}
	if s.workers <= 0 {
		s.workers = runtime.GOMAXPROCS(0)
	}
	return s
}

var _ payroll.PayrollService = (*PayrollServiceImpl)(nil)

type noTransaction struct{}

func (noTransaction) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// ========== SETTINGS ==========

func (s *PayrollServiceImpl) loadSettings(ctx context.Context, companyID string) (payroll.PayrollSettings, error) {
	settings, err := s.settingsRepo.GetSettings(ctx, companyID)
	if err != nil {
		if errors.Is(err, payroll.ErrPayrollSettingsNotFound) {
			return payroll.DefaultSettings(companyID), nil
		}
		return payroll.PayrollSettings{}, fmt.Errorf("failed to get payroll settings: %w", err)
	}
	return settings, nil
}

func (s *PayrollServiceImpl) GetSettings(ctx context.Context, companyID string) (payroll.PayrollSettingsResponse, error) {
	settings, err := s.loadSettings(ctx, companyID)
	if err != nil {
		return payroll.PayrollSettingsResponse{}, err
	}
	return payroll.NewPayrollSettingsResponse(settings), nil
}

func (s *PayrollServiceImpl) UpdateSettings(ctx context.Context, companyID string, req payroll.UpdatePayrollSettingsRequest) (payroll.PayrollSettingsResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.PayrollSettingsResponse{}, err
	}

	var updated payroll.PayrollSettings
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		current, err := s.loadSettings(ctx, companyID)
		if err != nil {
			return err
		}
		updated, err = s.settingsRepo.UpsertSettings(ctx, req.Apply(current))
		return err
	})
	if err != nil {
		return payroll.PayrollSettingsResponse{}, err
	}

	s.logger.InfoContext(ctx, "payroll settings updated", slog.String("company_id", companyID))
	return payroll.NewPayrollSettingsResponse(updated), nil
}

// ========== RUNS ==========

// monthData is everything a run reads for one company and month.
type monthData struct {
	settings   payroll.PayrollSettings
	employees  []employee.Employee
	attendance []attendance.Attendance
	leaves     []leave.LeaveRequest
	claims     []claim.Claim
}

func (s *PayrollServiceImpl) loadMonth(ctx context.Context, companyID string, period payroll.Period, withEmployees bool) (monthData, error) {
	var data monthData

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		settings, err := s.loadSettings(gCtx, companyID)
		data.settings = settings
		return err
	})

	if withEmployees {
		g.Go(func() error {
			employees, err := s.employeeRepo.ListByCompanyID(gCtx, companyID)
			if err != nil {
				return fmt.Errorf("failed to get employees: %w", err)
			}
			data.employees = employees
			return nil
		})
	}

	g.Go(func() error {
		records, err := s.attendanceRepo.ListByCompanyMonth(gCtx, companyID, period.Year, period.Month)
		if err != nil {
			return fmt.Errorf("failed to get attendance: %w", err)
		}
		data.attendance = records
		return nil
	})

	g.Go(func() error {
		requests, err := s.leaveRepo.ListByCompanyMonth(gCtx, companyID, period.Year, period.Month)
		if err != nil {
			return fmt.Errorf("failed to get leave requests: %w", err)
		}
		data.leaves = requests
		return nil
	})

	g.Go(func() error {
		claims, err := s.claimRepo.ListByCompanyMonth(gCtx, companyID, period.Year, period.Month)
		if err != nil {
			return fmt.Errorf("failed to get claims: %w", err)
		}
		data.claims = claims
		return nil
	})

	if err := g.Wait(); err != nil {
		return monthData{}, err
	}
	return data, nil
}

func (s *PayrollServiceImpl) entryInput(data monthData, emp employee.Employee, period payroll.Period, now time.Time) payroll.EntryInput {
	return payroll.EntryInput{
		Employee:         emp,
		Period:           period,
		Attendance:       data.attendance,
		Leaves:           data.leaves,
		Claims:           data.claims,
		Settings:         data.settings,
		TaxTable:         s.taxTable,
		HonorEPFSetting:  s.honorEPFSetting,
		Now:              now,
		PaymentCutoffDay: s.cutoffDay,
	}
}

// computedRun keeps the inputs next to the run. employees holds the
// active employees, index aligned with run.Entries.
type computedRun struct {
	run       payroll.PayrollRun
	employees []employee.Employee
	settings  payroll.PayrollSettings
}

// computeRun coalesces concurrent requests for the same company and month
// into one computation. The shared work is detached from any single
// caller's cancellation; each caller stops waiting when its own ctx ends.
func (s *PayrollServiceImpl) computeRun(ctx context.Context, companyID string, period payroll.Period) (computedRun, error) {
	if err := period.Validate(); err != nil {
		return computedRun{}, err
	}

	shared := context.WithoutCancel(ctx)
	ch := s.runs.DoChan(companyID+"/"+period.String(), func() (any, error) {
		return s.buildRun(shared, companyID, period)
	})

	select {
	case <-ctx.Done():
		return computedRun{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return computedRun{}, res.Err
		}
		return res.Val.(computedRun), nil
	}
}

func (s *PayrollServiceImpl) buildRun(ctx context.Context, companyID string, period payroll.Period) (computedRun, error) {
	data, err := s.loadMonth(ctx, companyID, period, true)
	if err != nil {
		return computedRun{}, err
	}

	active := make([]employee.Employee, 0, len(data.employees))
	for _, emp := range data.employees {
		if emp.IsActive() {
			active = append(active, emp)
		}
	}

	now := s.clock.Now()
	entries := make([]payroll.PayrollEntry, len(active))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, emp := range active {
		i, emp := i, emp
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			entry, err := payroll.CalculateEntry(s.entryInput(data, emp, period, now))
			if err != nil {
				return fmt.Errorf("employee %s: %w", emp.ID, err)
			}
			entries[i] = entry
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return computedRun{}, err
	}

	runID, err := uuid.NewV7()
	if err != nil {
		return computedRun{}, fmt.Errorf("failed to generate run id: %w", err)
	}

	run := payroll.PayrollRun{
		RunID:       runID.String(),
		CompanyID:   companyID,
		Period:      period,
		TaxTable:    s.taxTable.Version,
		GeneratedAt: now,
		Entries:     entries,
	}
	return computedRun{run: run, employees: active, settings: data.settings}, nil
}

func (s *PayrollServiceImpl) GeneratePayroll(ctx context.Context, companyID string, period payroll.Period) (payroll.PayrollRun, error) {
	c, err := s.computeRun(ctx, companyID, period)
	if err != nil {
		return payroll.PayrollRun{}, err
	}
	run := c.run

	net := decimal.Zero
	for _, e := range run.Entries {
		net = net.Add(e.NetSalary)
	}
	s.logger.InfoContext(ctx, "payroll generated",
		slog.String("run_id", run.RunID),
		slog.String("company_id", companyID),
		slog.String("period", period.String()),
		slog.Int("employees", len(run.Entries)),
		slog.String("total_net", net.StringFixed(2)),
		slog.String("tax_table", run.TaxTable),
	)
	return run, nil
}

// ========== SUMMARY ==========

func (s *PayrollServiceImpl) GetPayrollSummary(ctx context.Context, companyID string, period payroll.Period) (payroll.PayrollSummaryResponse, error) {
	c, err := s.computeRun(ctx, companyID, period)
	if err != nil {
		return payroll.PayrollSummaryResponse{}, err
	}
	return payroll.Summarize(c.run), nil
}

// ========== TAX ==========

func (s *PayrollServiceImpl) CalculatePCB(ctx context.Context, req payroll.CalculatePCBRequest) (payroll.CalculatePCBResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.CalculatePCBResponse{}, err
	}

	gross := *req.MonthlyGross
	epf := decimal.Zero
	if req.MonthlyEPF != nil {
		epf = *req.MonthlyEPF
	}

	return payroll.CalculatePCBResponse{
		MonthlyGross:     gross,
		MonthlyEPF:       epf,
		ChargeableIncome: s.taxTable.ChargeableIncome(gross, epf).Round(2),
		MonthlyPCB:       s.taxTable.MonthlyPCB(gross, epf),
		TaxTable:         s.taxTable.Version,
	}, nil
}
