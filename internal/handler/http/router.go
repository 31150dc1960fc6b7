package http

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"

	"github.com/sme-hris/payroll-backend-go/internal/handler/http/middleware"
)

// RouterOptions carries the cross-cutting settings of the HTTP stack.
type RouterOptions struct {
	Logger         *slog.Logger
	AllowedOrigins []string
}

func NewRouter(opts RouterOptions, payrollHandler PayrollHandler) *chi.Mux {
	r := chi.NewRouter()

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Content-Disposition"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelInfo,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/healthz"))

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/companies/{companyID}/payroll", func(r chi.Router) {
			r.Use(middleware.RequireCompany)

			r.Get("/", payrollHandler.GeneratePayroll)
			r.Get("/summary", payrollHandler.GetPayrollSummary)
			r.Post("/pcb", payrollHandler.CalculatePCB)

			r.Route("/settings", func(r chi.Router) {
				r.Get("/", payrollHandler.GetSettings)
				r.Put("/", payrollHandler.UpdateSettings)
			})

			r.Get("/employees/{employeeID}/payslip", payrollHandler.DownloadPayslip)
			r.Get("/exports/{kind}", payrollHandler.ExportStatutory)
		})
	})
	return r
}
