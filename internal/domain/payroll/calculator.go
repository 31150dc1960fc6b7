package payroll

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sme-hris/payroll-backend-go/internal/domain/attendance"
	"github.com/sme-hris/payroll-backend-go/internal/domain/claim"
	"github.com/sme-hris/payroll-backend-go/internal/domain/employee"
	"github.com/sme-hris/payroll-backend-go/internal/domain/leave"
)

var (
	standardDaysPerMonth = decimal.NewFromInt(26)
	standardHoursPerDay  = decimal.NewFromInt(8)
	minutesPerHour       = decimal.NewFromInt(60)
	overtimeMultiplier   = decimal.RequireFromString("1.5")

	defaultEPFRate = decimal.RequireFromString("0.11")
	hundred        = decimal.NewFromInt(100)

	// SOCSO and EIS switch to flat contributions above the wage ceiling.
	contributionCeiling = decimal.NewFromInt(4000)
	socsoRate           = decimal.RequireFromString("0.005")
	socsoCeilingAmount  = decimal.RequireFromString("19.75")
	eisRate             = decimal.RequireFromString("0.002")
	eisCeilingAmount    = decimal.RequireFromString("7.90")
)

// EntryInput holds everything CalculateEntry reads. Records may be sparse,
// may belong to other employees, and may fall outside Period.
type EntryInput struct {
	Employee   employee.Employee
	Period     Period
	Attendance []attendance.Attendance
	Leaves     []leave.LeaveRequest
	Claims     []claim.Claim
	Settings   PayrollSettings

	// TaxTable defaults to DefaultTaxTable when nil.
	TaxTable *TaxTable
	// HonorEPFSetting uses Settings.StatutoryRates.EPFEmployee instead of
	// the fixed 11% when the setting is positive.
	HonorEPFSetting bool

	Now              time.Time
	PaymentCutoffDay int
}

// HourlyRate assumes a 26-day month of 8-hour days regardless of the
// actual calendar.
func HourlyRate(baseSalary decimal.Decimal) decimal.Decimal {
	return baseSalary.Div(standardDaysPerMonth).Div(standardHoursPerDay)
}

// DailyRate is the pay for one of the 26 standard days.
func DailyRate(baseSalary decimal.Decimal) decimal.Decimal {
	return baseSalary.Div(standardDaysPerMonth)
}

// CalculateEntry computes one employee's payroll line for the period. It
// is a pure function of its input apart from the payment status, which
// comes from in.Now. Callers filter out inactive employees.
func CalculateEntry(in EntryInput) (PayrollEntry, error) {
	if err := in.Period.Validate(); err != nil {
		return PayrollEntry{}, err
	}
	emp := in.Employee
	if err := emp.Validate(); err != nil {
		if errors.Is(err, employee.ErrBaseSalaryRequired) {
			return PayrollEntry{}, ErrEmployeeHasNoBaseSalary
		}
		return PayrollEntry{}, err
	}
	table := in.TaxTable
	if table == nil {
		table = DefaultTaxTable()
	}

	baseSalary := *emp.BaseSalary
	hourlyRate := HourlyRate(baseSalary)

	entry := PayrollEntry{
		EmployeeID:     emp.ID,
		EmployeeCode:   emp.EmployeeCode,
		EmployeeName:   emp.FullName,
		EmploymentType: string(emp.EmploymentType),
		Period:         in.Period,
		StandardDays:   in.Period.StandardWorkingDays(),
		BasicSalary:    baseSalary,
		HourlyRate:     hourlyRate,
		OvertimeAmount: decimal.Zero,
	}

	attendanceByDay := indexAttendance(emp.ID, in.Attendance)
	unpaidLeaveDays := indexUnpaidLeave(emp.ID, in.Leaves)

	for day := 1; day <= in.Period.DaysInMonth(); day++ {
		key := dayKey(in.Period.Date(day))

		if rec, ok := attendanceByDay[key]; ok && rec.Status != attendance.StatusAbsent {
			entry.DaysWorked++
			entry.TotalLateMinutes += rec.Late()
			if ot := rec.Overtime(); ot > 0 {
				entry.TotalOvertimeMinutes += ot
				entry.OvertimeAmount = entry.OvertimeAmount.Add(
					decimal.NewFromInt(int64(ot)).Div(minutesPerHour).Mul(hourlyRate).Mul(overtimeMultiplier),
				)
			}
		}
		if unpaidLeaveDays[key] {
			entry.UnpaidLeaveDays++
		}
	}

	entry.ClaimsAmount = approvedClaimsValue(emp.ID, in.Period, in.Claims)
	entry.Allowances = in.Settings.FixedAllowances().Add(entry.ClaimsAmount)
	entry.LateDeduction = decimal.NewFromInt(int64(entry.TotalLateMinutes)).Div(minutesPerHour).Mul(hourlyRate)
	entry.UnpaidLeaveDeduction = decimal.NewFromInt(int64(entry.UnpaidLeaveDays)).Mul(DailyRate(baseSalary))

	gross := baseSalary.
		Add(entry.Allowances).
		Add(entry.OvertimeAmount).
		Sub(entry.UnpaidLeaveDeduction).
		Sub(entry.LateDeduction)
	entry.GrossPay = decimal.Max(decimal.Zero, gross)

	entry.EPF, entry.SOCSO, entry.EIS, entry.PCB = decimal.Zero, decimal.Zero, decimal.Zero, decimal.Zero
	if emp.EmploymentType == employee.EmploymentTypePermanent {
		entry.EPF = entry.GrossPay.Mul(epfRate(in)).Round(0)
		entry.SOCSO = contribution(entry.GrossPay, socsoRate, socsoCeilingAmount)
		entry.EIS = contribution(entry.GrossPay, eisRate, eisCeilingAmount)
		entry.PCB = table.MonthlyPCB(entry.GrossPay, entry.EPF)
	}

	entry.NetSalary = entry.GrossPay.Sub(entry.EPF).Sub(entry.SOCSO).Sub(entry.EIS).Sub(entry.PCB)
	entry.PaymentStatus = PaymentStatusAt(in.Now, in.PaymentCutoffDay)
	return entry, nil
}

func epfRate(in EntryInput) decimal.Decimal {
	if in.HonorEPFSetting && in.Settings.StatutoryRates.EPFEmployee.IsPositive() {
		return in.Settings.StatutoryRates.EPFEmployee.Div(hundred)
	}
	return defaultEPFRate
}

// contribution is rounded to sen so that net pay, rounded for display,
// still equals gross minus the displayed deductions.
func contribution(gross, rate, ceilingAmount decimal.Decimal) decimal.Decimal {
	if gross.GreaterThan(contributionCeiling) {
		return ceilingAmount
	}
	return gross.Mul(rate).Round(2)
}

func dayKey(t time.Time) string {
	return t.Format(time.DateOnly)
}

// indexAttendance keeps the first record seen for each of the employee's
// dates.
func indexAttendance(employeeID string, records []attendance.Attendance) map[string]attendance.Attendance {
	out := make(map[string]attendance.Attendance)
	for _, rec := range records {
		if rec.EmployeeID != employeeID {
			continue
		}
		key := dayKey(rec.Date)
		if _, seen := out[key]; !seen {
			out[key] = rec
		}
	}
	return out
}

// indexUnpaidLeave marks dates covered by an approved unpaid leave request.
// Duplicate requests on the same date count once.
func indexUnpaidLeave(employeeID string, requests []leave.LeaveRequest) map[string]bool {
	out := make(map[string]bool)
	for _, req := range requests {
		if req.EmployeeID != employeeID || !req.IsApproved() {
			continue
		}
		key := dayKey(req.Date)
		if _, seen := out[key]; !seen {
			// the first approved request for the date decides
			out[key] = req.IsUnpaid()
		}
	}
	return out
}

func approvedClaimsValue(employeeID string, period Period, claims []claim.Claim) decimal.Decimal {
	total := decimal.Zero
	for _, c := range claims {
		if c.EmployeeID != employeeID || !c.IsApprovedClaim() || !period.Contains(c.Date) {
			continue
		}
		total = total.Add(c.Value())
	}
	return total
}
