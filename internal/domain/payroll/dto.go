package payroll

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/sme-hris/payroll-backend-go/internal/pkg/validator"
)

// ========== SETTINGS DTOs ==========

type StatutoryRatesResponse struct {
	EPFEmployee   decimal.Decimal `json:"epf_employee"`
	EPFEmployer   decimal.Decimal `json:"epf_employer"`
	SOCSOEmployee decimal.Decimal `json:"socso_employee"`
	EISEmployee   decimal.Decimal `json:"eis_employee"`
}

type PayrollSettingsResponse struct {
	ID                 string                 `json:"id,omitempty"`
	CompanyID          string                 `json:"company_id"`
	TransportAllowance decimal.Decimal        `json:"transport_allowance"`
	PhoneAllowance     decimal.Decimal        `json:"phone_allowance"`
	MealAllowance      decimal.Decimal        `json:"meal_allowance"`
	StatutoryRates     StatutoryRatesResponse `json:"statutory_rates"`
}

func NewPayrollSettingsResponse(s PayrollSettings) PayrollSettingsResponse {
	return PayrollSettingsResponse{
		ID:                 s.ID,
		CompanyID:          s.CompanyID,
		TransportAllowance: s.TransportAllowance,
		PhoneAllowance:     s.PhoneAllowance,
		MealAllowance:      s.MealAllowance,
		StatutoryRates: StatutoryRatesResponse{
			EPFEmployee:   s.StatutoryRates.EPFEmployee,
			EPFEmployer:   s.StatutoryRates.EPFEmployer,
			SOCSOEmployee: s.StatutoryRates.SOCSOEmployee,
			EISEmployee:   s.StatutoryRates.EISEmployee,
		},
	}
}

type UpdateStatutoryRatesRequest struct {
	EPFEmployee   *decimal.Decimal `json:"epf_employee,omitempty"`
	EPFEmployer   *decimal.Decimal `json:"epf_employer,omitempty"`
	SOCSOEmployee *decimal.Decimal `json:"socso_employee,omitempty"`
	EISEmployee   *decimal.Decimal `json:"eis_employee,omitempty"`
}

type UpdatePayrollSettingsRequest struct {
	TransportAllowance *decimal.Decimal             `json:"transport_allowance,omitempty"`
	PhoneAllowance     *decimal.Decimal             `json:"phone_allowance,omitempty"`
	MealAllowance      *decimal.Decimal             `json:"meal_allowance,omitempty"`
	StatutoryRates     *UpdateStatutoryRatesRequest `json:"statutory_rates,omitempty"`
}

func (r *UpdatePayrollSettingsRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsNonNegative(r.TransportAllowance) {
		errs = append(errs, validator.ValidationError{Field: "transport_allowance", Message: "must be non-negative"})
	}
	if !validator.IsNonNegative(r.PhoneAllowance) {
		errs = append(errs, validator.ValidationError{Field: "phone_allowance", Message: "must be non-negative"})
	}
	if !validator.IsNonNegative(r.MealAllowance) {
		errs = append(errs, validator.ValidationError{Field: "meal_allowance", Message: "must be non-negative"})
	}

	if rates := r.StatutoryRates; rates != nil {
		check := func(field string, v *decimal.Decimal) {
			if v != nil && !validator.IsValidPercentage(*v) {
				errs = append(errs, validator.ValidationError{Field: "statutory_rates." + field, Message: "must be a percentage between 0 and 100"})
			}
		}
		check("epf_employee", rates.EPFEmployee)
		check("epf_employer", rates.EPFEmployer)
		check("socso_employee", rates.SOCSOEmployee)
		check("eis_employee", rates.EISEmployee)
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Apply merges the non-nil fields of the request into s.
func (r *UpdatePayrollSettingsRequest) Apply(s PayrollSettings) PayrollSettings {
	if r.TransportAllowance != nil {
		s.TransportAllowance = *r.TransportAllowance
	}
	if r.PhoneAllowance != nil {
		s.PhoneAllowance = *r.PhoneAllowance
	}
	if r.MealAllowance != nil {
		s.MealAllowance = *r.MealAllowance
	}
	if rates := r.StatutoryRates; rates != nil {
		if rates.EPFEmployee != nil {
			s.StatutoryRates.EPFEmployee = *rates.EPFEmployee
		}
		if rates.EPFEmployer != nil {
			s.StatutoryRates.EPFEmployer = *rates.EPFEmployer
		}
		if rates.SOCSOEmployee != nil {
			s.StatutoryRates.SOCSOEmployee = *rates.SOCSOEmployee
		}
		if rates.EISEmployee != nil {
			s.StatutoryRates.EISEmployee = *rates.EISEmployee
		}
	}
	return s
}

// ========== PAYROLL DTOs ==========

type PeriodQuery struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

func (q PeriodQuery) Validate() error {
	var errs validator.ValidationErrors

	if q.Year < 1 || q.Year > 9999 {
		errs = append(errs, validator.ValidationError{Field: "year", Message: "must be between 1 and 9999"})
	}
	if q.Month < 1 || q.Month > 12 {
		errs = append(errs, validator.ValidationError{Field: "month", Message: "must be between 1 and 12"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (q PeriodQuery) Period() Period {
	p, _ := NewPeriod(q.Year, q.Month)
	return p
}

type PayrollEntryResponse struct {
	EmployeeID           string          `json:"employee_id"`
	EmployeeCode         string          `json:"employee_code"`
	EmployeeName         string          `json:"employee_name"`
	EmploymentType       string          `json:"employment_type"`
	Period               string          `json:"period"`
	StandardDays         int             `json:"standard_days"`
	DaysWorked           int             `json:"days_worked"`
	UnpaidLeaveDays      int             `json:"unpaid_leave_days"`
	TotalLateMinutes     int             `json:"total_late_minutes"`
	TotalOvertimeMinutes int             `json:"total_overtime_minutes"`
	BasicSalary          decimal.Decimal `json:"basic_salary"`
	HourlyRate           decimal.Decimal `json:"hourly_rate"`
	ClaimsAmount         decimal.Decimal `json:"claims_amount"`
	Allowances           decimal.Decimal `json:"allowances"`
	OvertimeAmount       decimal.Decimal `json:"overtime_amount"`
	LateDeduction        decimal.Decimal `json:"late_deduction"`
	UnpaidLeaveDeduction decimal.Decimal `json:"unpaid_leave_deduction"`
	GrossPay             decimal.Decimal `json:"gross_pay"`
	EPF                  decimal.Decimal `json:"epf"`
	SOCSO                decimal.Decimal `json:"socso"`
	EIS                  decimal.Decimal `json:"eis"`
	PCB                  decimal.Decimal `json:"pcb"`
	NetSalary            decimal.Decimal `json:"net_salary"`
	PaymentStatus        string          `json:"payment_status"`
}

// NewPayrollEntryResponse rounds every amount to sen for display.
func NewPayrollEntryResponse(e PayrollEntry) PayrollEntryResponse {
	return PayrollEntryResponse{
		EmployeeID:           e.EmployeeID,
		EmployeeCode:         e.EmployeeCode,
		EmployeeName:         e.EmployeeName,
		EmploymentType:       e.EmploymentType,
		Period:               e.Period.String(),
		StandardDays:         e.StandardDays,
		DaysWorked:           e.DaysWorked,
		UnpaidLeaveDays:      e.UnpaidLeaveDays,
		TotalLateMinutes:     e.TotalLateMinutes,
		TotalOvertimeMinutes: e.TotalOvertimeMinutes,
		BasicSalary:          e.BasicSalary.Round(2),
		HourlyRate:           e.HourlyRate.Round(2),
		ClaimsAmount:         e.ClaimsAmount.Round(2),
		Allowances:           e.Allowances.Round(2),
		OvertimeAmount:       e.OvertimeAmount.Round(2),
		LateDeduction:        e.LateDeduction.Round(2),
		UnpaidLeaveDeduction: e.UnpaidLeaveDeduction.Round(2),
		GrossPay:             e.GrossPay.Round(2),
		EPF:                  e.EPF.Round(2),
		SOCSO:                e.SOCSO.Round(2),
		EIS:                  e.EIS.Round(2),
		PCB:                  e.PCB.Round(2),
		NetSalary:            e.NetSalary.Round(2),
		PaymentStatus:        string(e.PaymentStatus),
	}
}

type PayrollRunResponse struct {
	RunID       string                 `json:"run_id"`
	CompanyID   string                 `json:"company_id"`
	Period      string                 `json:"period"`
	TaxTable    string                 `json:"tax_table"`
	GeneratedAt string                 `json:"generated_at"`
	Entries     []PayrollEntryResponse `json:"entries"`
}

func NewPayrollRunResponse(run PayrollRun) PayrollRunResponse {
	entries := make([]PayrollEntryResponse, 0, len(run.Entries))
	for _, e := range run.Entries {
		entries = append(entries, NewPayrollEntryResponse(e))
	}
	return PayrollRunResponse{
		RunID:       run.RunID,
		CompanyID:   run.CompanyID,
		Period:      run.Period.String(),
		TaxTable:    run.TaxTable,
		GeneratedAt: run.GeneratedAt.Format(time.RFC3339),
		Entries:     entries,
	}
}

type PayrollSummaryResponse struct {
	PeriodMonth          int             `json:"period_month"`
	PeriodYear           int             `json:"period_year"`
	TotalEmployees       int             `json:"total_employees"`
	TotalBaseSalary      decimal.Decimal `json:"total_base_salary"`
	TotalAllowances      decimal.Decimal `json:"total_allowances"`
	TotalOvertime        decimal.Decimal `json:"total_overtime"`
	TotalLateDeduction   decimal.Decimal `json:"total_late_deduction"`
	TotalUnpaidDeduction decimal.Decimal `json:"total_unpaid_leave_deduction"`
	TotalGrossSalary     decimal.Decimal `json:"total_gross_salary"`
	TotalEPF             decimal.Decimal `json:"total_epf"`
	TotalSOCSO           decimal.Decimal `json:"total_socso"`
	TotalEIS             decimal.Decimal `json:"total_eis"`
	TotalPCB             decimal.Decimal `json:"total_pcb"`
	TotalNetSalary       decimal.Decimal `json:"total_net_salary"`
	PendingCount         int             `json:"pending_count"`
	PaidCount            int             `json:"paid_count"`
}

// Summarize totals a run. Sums use full precision and are rounded once.
func Summarize(run PayrollRun) PayrollSummaryResponse {
	var s PayrollSummaryResponse
	s.PeriodMonth = int(run.Period.Month)
	s.PeriodYear = run.Period.Year
	s.TotalEmployees = len(run.Entries)

	for _, e := range run.Entries {
		s.TotalBaseSalary = s.TotalBaseSalary.Add(e.BasicSalary)
		s.TotalAllowances = s.TotalAllowances.Add(e.Allowances)
		s.TotalOvertime = s.TotalOvertime.Add(e.OvertimeAmount)
		s.TotalLateDeduction = s.TotalLateDeduction.Add(e.LateDeduction)
		s.TotalUnpaidDeduction = s.TotalUnpaidDeduction.Add(e.UnpaidLeaveDeduction)
		s.TotalGrossSalary = s.TotalGrossSalary.Add(e.GrossPay)
		s.TotalEPF = s.TotalEPF.Add(e.EPF)
		s.TotalSOCSO = s.TotalSOCSO.Add(e.SOCSO)
		s.TotalEIS = s.TotalEIS.Add(e.EIS)
		s.TotalPCB = s.TotalPCB.Add(e.PCB)
		s.TotalNetSalary = s.TotalNetSalary.Add(e.NetSalary)
		if e.PaymentStatus == PaymentStatusPaid {
			s.PaidCount++
		} else {
			s.PendingCount++
		}
	}

	for _, d := range []*decimal.Decimal{
		&s.TotalBaseSalary, &s.TotalAllowances, &s.TotalOvertime, &s.TotalLateDeduction,
		&s.TotalUnpaidDeduction, &s.TotalGrossSalary, &s.TotalEPF, &s.TotalSOCSO,
		&s.TotalEIS, &s.TotalPCB, &s.TotalNetSalary,
	} {
		*d = d.Round(2)
	}
	return s
}

// ========== PCB DTOs ==========

type CalculatePCBRequest struct {
	MonthlyGross *decimal.Decimal `json:"monthly_gross"`
	MonthlyEPF   *decimal.Decimal `json:"monthly_epf"`
}

func (r *CalculatePCBRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.MonthlyGross == nil {
		errs = append(errs, validator.ValidationError{Field: "monthly_gross", Message: "is required"})
	} else if r.MonthlyGross.IsNegative() {
		errs = append(errs, validator.ValidationError{Field: "monthly_gross", Message: "must be non-negative"})
	}
	if !validator.IsNonNegative(r.MonthlyEPF) {
		errs = append(errs, validator.ValidationError{Field: "monthly_epf", Message: "must be non-negative"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type CalculatePCBResponse struct {
	MonthlyGross     decimal.Decimal `json:"monthly_gross"`
	MonthlyEPF       decimal.Decimal `json:"monthly_epf"`
	ChargeableIncome decimal.Decimal `json:"chargeable_income"`
	MonthlyPCB       decimal.Decimal `json:"monthly_pcb"`
	TaxTable         string          `json:"tax_table"`
}

// ========== EXPORT ==========

// ExportKind selects a statutory submission file.
type ExportKind string

const (
	ExportEPF      ExportKind = "epf"
	ExportSOCSOEIS ExportKind = "socso"
	ExportPCB      ExportKind = "pcb"
)

func ParseExportKind(s string) (ExportKind, error) {
	switch k := ExportKind(s); k {
	case ExportEPF, ExportSOCSOEIS, ExportPCB:
		return k, nil
	}
	return "", ErrUnknownExportKind
}
