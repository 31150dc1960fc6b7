package cron

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/sme-hris/payroll-backend-go/internal/domain/payroll"
)

// CompanyLister lists the companies that have saved payroll settings.
type CompanyLister interface {
	ListCompanyIDs(ctx context.Context) ([]string, error)
}

// PayrollJobs dry-runs the current month's payroll for every company so
// data problems surface before payday.
type PayrollJobs struct {
	companies CompanyLister
	service   payroll.PayrollService
	clock     clockwork.Clock
	logger    *slog.Logger
	interval  time.Duration
}

func NewPayrollJobs(companies CompanyLister, service payroll.PayrollService, clock clockwork.Clock, logger *slog.Logger, interval time.Duration) *PayrollJobs {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PayrollJobs{
		companies: companies,
		service:   service,
		clock:     clock,
		logger:    logger,
		interval:  interval,
	}
}

func (j *PayrollJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob("payroll_readiness_check", j.interval, j.CheckReadiness)
}

// CheckReadiness generates the current month's run for each company and
// reports the ones that fail. One company failing does not stop the rest.
func (j *PayrollJobs) CheckReadiness(ctx context.Context) error {
	companyIDs, err := j.companies.ListCompanyIDs(ctx)
	if err != nil {
		return fmt.Errorf("failed to list companies: %w", err)
	}

	now := j.clock.Now()
	period := payroll.Period{Year: now.Year(), Month: now.Month()}

	var errs []error
	for _, companyID := range companyIDs {
		if err := ctx.Err(); err != nil {
			return err
		}

		run, err := j.service.GeneratePayroll(ctx, companyID, period)
		if err != nil {
			j.logger.Warn("Payroll not ready",
				"company_id", companyID,
				"period", period.String(),
				"error", err,
			)
			errs = append(errs, fmt.Errorf("company %s: %w", companyID, err))
			continue
		}

		summary := payroll.Summarize(run)
		j.logger.Info("Payroll ready",
			"company_id", companyID,
			"period", period.String(),
			"employees", summary.TotalEmployees,
			"total_net", summary.TotalNetSalary.StringFixed(2),
		)
	}

	return errors.Join(errs...)
}
