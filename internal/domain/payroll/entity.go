package payroll

import (
	"time"

	"github.com/shopspring/decimal"
)

// PayrollSettings - Company payroll configuration
type PayrollSettings struct {
	ID                 string
	CompanyID          string
	TransportAllowance decimal.Decimal
	PhoneAllowance     decimal.Decimal
	MealAllowance      decimal.Decimal
	StatutoryRates     StatutoryRates
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// StatutoryRates are contribution percentages (11 means 11%).
type StatutoryRates struct {
	EPFEmployee   decimal.Decimal
	EPFEmployer   decimal.Decimal
	SOCSOEmployee decimal.Decimal
	EISEmployee   decimal.Decimal
}

// FixedAllowances is the monthly allowance paid to every employee.
func (s PayrollSettings) FixedAllowances() decimal.Decimal {
	return s.TransportAllowance.Add(s.PhoneAllowance).Add(s.MealAllowance)
}

// DefaultSettings is used when a company has not saved any settings yet.
func DefaultSettings(companyID string) PayrollSettings {
	return PayrollSettings{
		CompanyID:          companyID,
		TransportAllowance: decimal.Zero,
		PhoneAllowance:     decimal.Zero,
		MealAllowance:      decimal.Zero,
		StatutoryRates: StatutoryRates{
			EPFEmployee:   decimal.NewFromInt(11),
			EPFEmployer:   decimal.NewFromInt(13),
			SOCSOEmployee: decimal.RequireFromString("0.5"),
			EISEmployee:   decimal.RequireFromString("0.2"),
		},
	}
}

// PaymentStatus enum
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "PENDING"
	PaymentStatusPaid    PaymentStatus = "PAID"
)

// DefaultPaymentCutoffDay is the last day of the month that still reports
// PENDING.
const DefaultPaymentCutoffDay = 25

// PaymentStatusAt derives the display status from the wall clock. It
// depends on today's day-of-month only, not on the period being viewed.
func PaymentStatusAt(now time.Time, cutoffDay int) PaymentStatus {
	if cutoffDay <= 0 {
		cutoffDay = DefaultPaymentCutoffDay
	}
	if now.Day() > cutoffDay {
		return PaymentStatusPaid
	}
	return PaymentStatusPending
}

// PayrollEntry - one computed payroll line for an employee and month
type PayrollEntry struct {
	EmployeeID     string
	EmployeeCode   string
	EmployeeName   string
	EmploymentType string
	Period         Period

	StandardDays         int
	DaysWorked           int
	UnpaidLeaveDays      int
	TotalLateMinutes     int
	TotalOvertimeMinutes int

	BasicSalary          decimal.Decimal
	HourlyRate           decimal.Decimal
	ClaimsAmount         decimal.Decimal
	Allowances           decimal.Decimal // fixed allowances plus approved claims
	OvertimeAmount       decimal.Decimal
	LateDeduction        decimal.Decimal
	UnpaidLeaveDeduction decimal.Decimal
	GrossPay             decimal.Decimal

	EPF   decimal.Decimal
	SOCSO decimal.Decimal
	EIS   decimal.Decimal
	PCB   decimal.Decimal

	NetSalary     decimal.Decimal
	PaymentStatus PaymentStatus
}

// TotalStatutory is the sum of the employee-side statutory deductions.
func (e PayrollEntry) TotalStatutory() decimal.Decimal {
	return e.EPF.Add(e.SOCSO).Add(e.EIS).Add(e.PCB)
}

// PayrollRun is the result of computing a whole company for one month.
type PayrollRun struct {
	RunID       string
	CompanyID   string
	Period      Period
	TaxTable    string
	GeneratedAt time.Time
	Entries     []PayrollEntry
}
