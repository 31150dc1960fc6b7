package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/sme-hris/payroll-backend-go/internal/domain/payroll"
	"github.com/sme-hris/payroll-backend-go/internal/handler/http/middleware"
	"github.com/sme-hris/payroll-backend-go/internal/handler/http/response"
	"github.com/sme-hris/payroll-backend-go/internal/pkg/validator"
)

type PayrollHandler interface {
	// Settings
	GetSettings(w http.ResponseWriter, r *http.Request)
	UpdateSettings(w http.ResponseWriter, r *http.Request)

	// Runs
	GeneratePayroll(w http.ResponseWriter, r *http.Request)
	GetPayrollSummary(w http.ResponseWriter, r *http.Request)

	// Tax
	CalculatePCB(w http.ResponseWriter, r *http.Request)

	// Documents
	DownloadPayslip(w http.ResponseWriter, r *http.Request)
	ExportStatutory(w http.ResponseWriter, r *http.Request)
}

type payrollHandlerImpl struct {
	payrollService payroll.PayrollService
}

func NewPayrollHandler(payrollService payroll.PayrollService) PayrollHandler {
	return &payrollHandlerImpl{payrollService: payrollService}
}

// parsePeriod reads the year and month query parameters.
func parsePeriod(r *http.Request) (payroll.Period, error) {
	var errs validator.ValidationErrors
	q := r.URL.Query()

	year, err := strconv.Atoi(q.Get("year"))
	if err != nil {
		errs = append(errs, validator.ValidationError{Field: "year", Message: "must be a number"})
	}
	month, err := strconv.Atoi(q.Get("month"))
	if err != nil {
		errs = append(errs, validator.ValidationError{Field: "month", Message: "must be a number"})
	}
	if len(errs) > 0 {
		return payroll.Period{}, errs
	}

	query := payroll.PeriodQuery{Year: year, Month: month}
	if err := query.Validate(); err != nil {
		return payroll.Period{}, err
	}
	return query.Period(), nil
}

// ========== SETTINGS ==========

func (h *payrollHandlerImpl) GetSettings(w http.ResponseWriter, r *http.Request) {
	result, err := h.payrollService.GetSettings(r.Context(), middleware.CompanyID(r.Context()))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *payrollHandlerImpl) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req payroll.UpdatePayrollSettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.payrollService.UpdateSettings(r.Context(), middleware.CompanyID(r.Context()), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Payroll settings updated", result)
}

// ========== RUNS ==========

func (h *payrollHandlerImpl) GeneratePayroll(w http.ResponseWriter, r *http.Request) {
	period, err := parsePeriod(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	run, err := h.payrollService.GeneratePayroll(r.Context(), middleware.CompanyID(r.Context()), period)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, payroll.NewPayrollRunResponse(run))
}

func (h *payrollHandlerImpl) GetPayrollSummary(w http.ResponseWriter, r *http.Request) {
	period, err := parsePeriod(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.payrollService.GetPayrollSummary(r.Context(), middleware.CompanyID(r.Context()), period)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// ========== TAX ==========

func (h *payrollHandlerImpl) CalculatePCB(w http.ResponseWriter, r *http.Request) {
	var req payroll.CalculatePCBRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.payrollService.CalculatePCB(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// ========== DOCUMENTS ==========

// Documents are rendered into memory first so failures still produce a
// JSON error instead of a truncated file.

func (h *payrollHandlerImpl) DownloadPayslip(w http.ResponseWriter, r *http.Request) {
	period, err := parsePeriod(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	employeeID := chi.URLParam(r, "employeeID")

	var buf bytes.Buffer
	if err := h.payrollService.RenderPayslip(r.Context(), middleware.CompanyID(r.Context()), period, employeeID, &buf); err != nil {
		response.HandleError(w, err)
		return
	}

	writeAttachment(w, "application/pdf", fmt.Sprintf("payslip-%s-%s.pdf", employeeID, period), buf.Bytes())
}

func (h *payrollHandlerImpl) ExportStatutory(w http.ResponseWriter, r *http.Request) {
	kind, err := payroll.ParseExportKind(chi.URLParam(r, "kind"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	period, err := parsePeriod(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	var buf bytes.Buffer
	if err := h.payrollService.ExportStatutory(r.Context(), middleware.CompanyID(r.Context()), period, kind, &buf); err != nil {
		response.HandleError(w, err)
		return
	}

	writeAttachment(w, "text/csv; charset=utf-8", fmt.Sprintf("%s-%s.csv", kind, period), buf.Bytes())
}

func writeAttachment(w http.ResponseWriter, contentType, filename string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
