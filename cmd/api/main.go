package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/httplog/v3"
	"github.com/jonboulle/clockwork"

	"github.com/sme-hris/payroll-backend-go/internal/config"
	"github.com/sme-hris/payroll-backend-go/internal/domain/payroll"
	appHTTP "github.com/sme-hris/payroll-backend-go/internal/handler/http"
	"github.com/sme-hris/payroll-backend-go/internal/pkg/cron"
	"github.com/sme-hris/payroll-backend-go/internal/pkg/database"
	"github.com/sme-hris/payroll-backend-go/internal/repository/postgresql"
	payrollService "github.com/sme-hris/payroll-backend-go/internal/service/payroll"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := newLogger(cfg.App)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL(), database.PoolConfig{
		MaxConns: cfg.Database.MaxConns,
		MinConns: cfg.Database.MinConns,
	})
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer db.Close()

	taxTable := payroll.DefaultTaxTable()
	if cfg.Payroll.TaxTablePath != "" {
		taxTable, err = payroll.LoadTaxTableFile(cfg.Payroll.TaxTablePath)
		if err != nil {
			return fmt.Errorf("loading tax table: %w", err)
		}
	}
	logger.Info("Tax table loaded", "version", taxTable.Version, "effective_year", taxTable.EffectiveYear)

	clock := clockwork.NewRealClock()

	settingsRepo := postgresql.NewPayrollSettingsRepository(db)
	employeeRepo := postgresql.NewEmployeeRepository(db)
	attendanceRepo := postgresql.NewAttendanceRepository(db)
	leaveRequestRepo := postgresql.NewLeaveRequestRepository(db)
	claimRepo := postgresql.NewClaimRepository(db)

	payrollSvc := payrollService.NewPayrollService(
		settingsRepo,
		employeeRepo,
		attendanceRepo,
		leaveRequestRepo,
		claimRepo,
		payrollService.Options{
			Transactor:       postgresql.NewTxManager(db),
			TaxTable:         taxTable,
			Clock:            clock,
			Logger:           logger,
			HonorEPFSetting:  cfg.Payroll.HonorEPFSetting,
			PaymentCutoffDay: cfg.Payroll.PaymentCutoffDay,
			Workers:          cfg.Payroll.Workers,
		},
	)

	scheduler := cron.NewScheduler(clock, logger)
	cron.NewPayrollJobs(settingsRepo, payrollSvc, clock, logger, cfg.Payroll.CheckInterval).RegisterJobs(scheduler)
	scheduler.Start(ctx)
	defer scheduler.Stop()

	router := appHTTP.NewRouter(appHTTP.RouterOptions{
		Logger:         logger,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
	}, appHTTP.NewPayrollHandler(payrollSvc))

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server running", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}
	logger.Info("Server exited gracefully")
	return nil
}

func newLogger(app config.AppConfig) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(app.LogLevel)); err != nil {
		level = slog.LevelInfo
	}

	logFormat := httplog.SchemaECS.Concise(app.Env != "production")
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "sme-payroll"),
		slog.String("env", app.Env),
	)
}
